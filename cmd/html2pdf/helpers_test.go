package main

import (
	"bytes"
	"context"
	"sort"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/go-rod/rod/lib/proto"
	"go.uber.org/zap"

	html2pdf "github.com/alnah/go-html2pdf"
)

// ---------------------------------------------------------------------------
// Test Infrastructure - Stub engine
// ---------------------------------------------------------------------------

const stubPDF = "%PDF-1.4 stub"

type stubSession struct {
	engine *stubEngine
}

func (s *stubSession) Load(_ context.Context, html string, _ time.Duration) error {
	s.engine.lastHTML.Store(&html)
	return nil
}

func (s *stubSession) PrintPDF(context.Context, *proto.PagePrintToPDF) ([]byte, error) {
	return []byte(stubPDF), nil
}

func (s *stubSession) Close() error { return nil }

type stubEngine struct {
	lastHTML atomic.Pointer[string]
}

func (e *stubEngine) Connected() bool { return true }

func (e *stubEngine) NewSession(context.Context) (html2pdf.Session, error) {
	return &stubSession{engine: e}, nil
}

func (e *stubEngine) Close() error { return nil }

func (e *stubEngine) html() string {
	if p := e.lastHTML.Load(); p != nil {
		return *p
	}
	return ""
}

// ---------------------------------------------------------------------------
// Test Infrastructure - Environment
// ---------------------------------------------------------------------------

type testEnvironment struct {
	*Environment
	stdout   *bytes.Buffer
	stderr   *bytes.Buffer
	engine   *stubEngine
	launches atomic.Int32
}

// newTestEnv returns an Environment backed by vars and a stub engine.
// Settle delay is zeroed so renders are instant.
func newTestEnv(t *testing.T, vars map[string]string) *testEnvironment {
	t.Helper()

	all := map[string]string{"HTML2PDF_SETTLE_DELAY": "0s"}
	for k, v := range vars {
		all[k] = v
	}

	te := &testEnvironment{
		stdout: &bytes.Buffer{},
		stderr: &bytes.Buffer{},
		engine: &stubEngine{},
	}
	te.Environment = &Environment{
		Stdin:  strings.NewReader(""),
		Stdout: te.stdout,
		Stderr: te.stderr,
		Getenv: func(k string) string { return all[k] },
		Environ: func() []string {
			out := make([]string, 0, len(all))
			for k, v := range all {
				out = append(out, k+"="+v)
			}
			sort.Strings(out)
			return out
		},
		Launch: func(html2pdf.BrowserConfig, *zap.Logger) html2pdf.LaunchFunc {
			return func() (html2pdf.Engine, error) {
				te.launches.Add(1)
				return te.engine, nil
			}
		},
	}
	return te
}

// failingLaunch makes every launch fail with ErrBrowserConnect.
func (te *testEnvironment) failingLaunch() {
	te.Launch = func(html2pdf.BrowserConfig, *zap.Logger) html2pdf.LaunchFunc {
		return func() (html2pdf.Engine, error) {
			te.launches.Add(1)
			return nil, html2pdf.ErrBrowserConnect
		}
	}
}
