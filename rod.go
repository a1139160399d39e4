package html2pdf

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/launcher/flags"
	"github.com/go-rod/rod/lib/proto"
	"go.uber.org/zap"

	"github.com/alnah/go-html2pdf/internal/hints"
	"github.com/alnah/go-html2pdf/internal/process"
)

// Compile-time interface checks
var (
	_ Engine  = (*rodEngine)(nil)
	_ Session = (*rodSession)(nil)
)

// A4 at 96 dpi, in CSS pixels.
const (
	a4ViewportWidth   = 794
	a4ViewportHeight  = 1123
	deviceScaleFactor = 2
)

// minimalFlags keep an idle Chrome small: no GPU, no shared memory in
// /dev/shm, no background work.
var minimalFlags = []flags.Flag{
	"disable-gpu",
	"disable-dev-shm-usage",
	"disable-background-networking",
	"disable-background-timer-throttling",
	"disable-backgrounding-occluded-windows",
	"disable-renderer-backgrounding",
	"disable-extensions",
	"no-first-run",
	"mute-audio",
}

// DefaultHeapSizeMB caps the V8 heap of each renderer process.
const DefaultHeapSizeMB = 256

// connectedProbeTimeout bounds the liveness probe run by Connected.
const connectedProbeTimeout = 2 * time.Second

// BrowserConfig controls how LaunchRod starts Chrome.
type BrowserConfig struct {
	Bin        string // Chrome binary; empty lets rod find or download one
	NoSandbox  bool   // required when running as root in containers
	HeapSizeMB int    // 0 uses DefaultHeapSizeMB
}

// DefaultBrowserConfig returns the container-friendly launch settings.
func DefaultBrowserConfig() BrowserConfig {
	return BrowserConfig{
		NoSandbox:  true,
		HeapSizeMB: DefaultHeapSizeMB,
	}
}

// LaunchRod returns a LaunchFunc that starts a headless Chrome through go-rod.
// Rod downloads a managed Chromium on first run if no browser is found.
func LaunchRod(cfg BrowserConfig, logger *zap.Logger) LaunchFunc {
	if logger == nil {
		logger = zap.NewNop()
	}
	return func() (Engine, error) {
		l := newLauncher(cfg)

		u, err := l.Launch()
		if err != nil {
			return nil, fmt.Errorf("%w: %v%s", ErrBrowserConnect, err, hints.ForBrowserLaunch())
		}

		browser := rod.New().ControlURL(u)
		if err := browser.Connect(); err != nil {
			l.Kill()
			return nil, fmt.Errorf("%w: %v%s", ErrBrowserConnect, err, hints.ForBrowserLaunch())
		}

		logger.Info("browser launched", zap.Int("pid", l.PID()))
		return &rodEngine{browser: browser, launcher: l}, nil
	}
}

// newLauncher builds the minimal-footprint launcher configuration.
func newLauncher(cfg BrowserConfig) *launcher.Launcher {
	heap := cfg.HeapSizeMB
	if heap <= 0 {
		heap = DefaultHeapSizeMB
	}

	l := launcher.New().Headless(true)
	for _, f := range minimalFlags {
		l = l.Set(f)
	}
	l = l.Set("js-flags", "--max-old-space-size="+strconv.Itoa(heap))

	if cfg.Bin != "" {
		l = l.Bin(cfg.Bin)
	}
	if cfg.NoSandbox {
		l = l.NoSandbox(true).Set("disable-setuid-sandbox")
	}
	return l
}

// rodEngine is a launched Chrome and its CDP connection.
type rodEngine struct {
	browser  *rod.Browser
	launcher *launcher.Launcher
}

// Connected probes the browser over CDP. A crashed or killed Chrome fails the
// probe because its websocket is gone.
func (e *rodEngine) Connected() bool {
	ctx, cancel := context.WithTimeout(context.Background(), connectedProbeTimeout)
	defer cancel()

	_, err := proto.BrowserGetVersion{}.Call(e.browser.Context(ctx))
	return err == nil
}

// NewSession opens an incognito context so cookies and storage are never shared
// between requests, then one A4-sized page inside it.
func (e *rodEngine) NewSession(ctx context.Context) (Session, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	incognito, err := e.browser.Incognito()
	if err != nil {
		return nil, fmt.Errorf("%w: creating context: %v", ErrPageCreate, err)
	}

	page, err := incognito.Page(proto.TargetCreateTarget{URL: "about:blank"})
	if err != nil {
		_ = incognito.Close()
		return nil, fmt.Errorf("%w: %v", ErrPageCreate, err)
	}

	err = page.SetViewport(&proto.EmulationSetDeviceMetricsOverride{
		Width:             a4ViewportWidth,
		Height:            a4ViewportHeight,
		DeviceScaleFactor: deviceScaleFactor,
	})
	if err != nil {
		_ = page.Close()
		_ = incognito.Close()
		return nil, fmt.Errorf("%w: setting viewport: %v", ErrPageCreate, err)
	}

	return &rodSession{browser: incognito, page: page}, nil
}

// Close shuts the browser down, then kills what is left of its process tree.
func (e *rodEngine) Close() error {
	err := e.browser.Close()

	// Best effort; launcher.Kill below covers the parent process.
	_ = process.KillProcessGroup(e.launcher.PID())
	e.launcher.Kill()
	e.launcher.Cleanup()

	if err != nil {
		return fmt.Errorf("closing browser: %w", err)
	}
	return nil
}

// rodSession is an incognito browser context holding one page.
type rodSession struct {
	browser *rod.Browser
	page    *rod.Page
}

// Load sets the page document and waits for the load event.
func (s *rodSession) Load(ctx context.Context, html string, timeout time.Duration) error {
	page := s.page.Context(ctx).Timeout(timeout)
	defer page.CancelTimeout()

	if err := page.SetDocumentContent(html); err != nil {
		return loadError(ctx, timeout, err)
	}
	if err := page.WaitLoad(); err != nil {
		return loadError(ctx, timeout, err)
	}
	return nil
}

// loadError tells a load timeout apart from a caller cancellation or a
// browser failure.
func loadError(ctx context.Context, timeout time.Duration, err error) error {
	if ctxErr := ctx.Err(); ctxErr != nil {
		return fmt.Errorf("%w: %w", ErrPageLoad, ctxErr)
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%w after %s", ErrLoadTimeout, timeout)
	}
	return fmt.Errorf("%w: %v", ErrPageLoad, err)
}

// PrintPDF captures the page as PDF bytes.
func (s *rodSession) PrintPDF(ctx context.Context, opts *proto.PagePrintToPDF) ([]byte, error) {
	reader, err := s.page.Context(ctx).PDF(opts)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPDFGeneration, err)
	}

	buf, err := io.ReadAll(reader)
	if err != nil {
		return nil, fmt.Errorf("%w: reading PDF stream: %v", ErrPDFGeneration, err)
	}
	return buf, nil
}

// Close closes the page, then disposes the incognito context.
func (s *rodSession) Close() error {
	return errors.Join(s.page.Close(), s.browser.Close())
}
