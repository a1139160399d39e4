package html2pdf

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/go-pdf/fpdf"
	"github.com/go-rod/rod/lib/proto"
)

// ---------------------------------------------------------------------------
// Fake Engine and Session
// ---------------------------------------------------------------------------

// fakeSession records what the pipeline asked of it.
type fakeSession struct {
	pdf      []byte
	loadErr  error
	printErr error
	closeErr error

	// onLoad, when set, runs inside Load before loadErr is returned.
	onLoad func(ctx context.Context, html string) error

	mu       sync.Mutex
	html     string
	timeout  time.Duration
	opts     *proto.PagePrintToPDF
	loads    int
	prints   int
	closes   int
	closedAt time.Time
}

func (s *fakeSession) Load(ctx context.Context, html string, timeout time.Duration) error {
	s.mu.Lock()
	s.html = html
	s.timeout = timeout
	s.loads++
	s.mu.Unlock()

	if s.onLoad != nil {
		if err := s.onLoad(ctx, html); err != nil {
			return err
		}
	}
	return s.loadErr
}

func (s *fakeSession) PrintPDF(_ context.Context, opts *proto.PagePrintToPDF) ([]byte, error) {
	s.mu.Lock()
	s.opts = opts
	s.prints++
	s.mu.Unlock()

	if s.printErr != nil {
		return nil, s.printErr
	}
	return s.pdf, nil
}

func (s *fakeSession) Close() error {
	s.mu.Lock()
	s.closes++
	s.closedAt = time.Now()
	s.mu.Unlock()
	return s.closeErr
}

func (s *fakeSession) closeCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closes
}

// fakeEngine hands out sessions built by newSession, or a default session
// printing pdf.
type fakeEngine struct {
	id         int
	pdf        []byte
	closeErr   error
	sessionErr error
	newSession func() *fakeSession

	disconnected atomic.Bool
	closes       atomic.Int32

	mu       sync.Mutex
	sessions []*fakeSession
}

func (e *fakeEngine) Connected() bool {
	return !e.disconnected.Load()
}

func (e *fakeEngine) NewSession(ctx context.Context) (Session, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if e.sessionErr != nil {
		return nil, e.sessionErr
	}

	var s *fakeSession
	if e.newSession != nil {
		s = e.newSession()
	} else {
		s = &fakeSession{pdf: e.pdf}
	}

	e.mu.Lock()
	e.sessions = append(e.sessions, s)
	e.mu.Unlock()
	return s, nil
}

func (e *fakeEngine) Close() error {
	e.closes.Add(1)
	return e.closeErr
}

func (e *fakeEngine) allSessions() []*fakeSession {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]*fakeSession(nil), e.sessions...)
}

// ---------------------------------------------------------------------------
// Fake Launcher and Clock
// ---------------------------------------------------------------------------

// fakeLauncher builds fakeEngines and counts launches.
type fakeLauncher struct {
	pdf      []byte
	closeErr error

	// gate, when set, blocks every launch until it is closed.
	gate chan struct{}

	mu      sync.Mutex
	errs    []error // consumed one per launch; nil entries succeed
	engines []*fakeEngine
	count   atomic.Int32
}

func (l *fakeLauncher) launch() (Engine, error) {
	n := int(l.count.Add(1))
	if l.gate != nil {
		<-l.gate
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	if len(l.errs) > 0 {
		err := l.errs[0]
		l.errs = l.errs[1:]
		if err != nil {
			return nil, err
		}
	}
	eng := &fakeEngine{id: n, pdf: l.pdf, closeErr: l.closeErr}
	l.engines = append(l.engines, eng)
	return eng, nil
}

func (l *fakeLauncher) launches() int {
	return int(l.count.Load())
}

func (l *fakeLauncher) engine(i int) *fakeEngine {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.engines[i]
}

// waitForLaunches blocks until l has started n launches.
func waitForLaunches(t *testing.T, l *fakeLauncher, n int) {
	t.Helper()

	deadline := time.Now().Add(2 * time.Second)
	for l.launches() < n {
		if time.Now().After(deadline) {
			t.Fatalf("timed out waiting for %d launches, got %d", n, l.launches())
		}
		time.Sleep(time.Millisecond)
	}
}

// fakeClock is a manually advanced clock.
type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

// ---------------------------------------------------------------------------
// PDF Fixtures
// ---------------------------------------------------------------------------

// testPDF builds an A4 document with the given number of pages, each with a
// body line and a footer line inside the bottom 15mm.
func testPDF(t testing.TB, pages int) []byte {
	t.Helper()

	doc := fpdf.New("P", "mm", "A4", "")
	doc.SetAutoPageBreak(false, 0)
	doc.SetFont("Helvetica", "", 12)
	for i := 1; i <= pages; i++ {
		doc.AddPage()
		doc.SetXY(20, 20)
		doc.Cell(0, 10, fmt.Sprintf("Page %d body", i))
		doc.SetXY(20, 285)
		doc.Cell(0, 8, fmt.Sprintf("Footer %d", i))
	}

	var buf bytes.Buffer
	if err := doc.Output(&buf); err != nil {
		t.Fatalf("building test PDF: %v", err)
	}
	return buf.Bytes()
}

var errBoom = errors.New("boom")
