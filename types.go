package html2pdf

import (
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
)

// Request defaults and fixed output metadata.
const (
	DefaultFilename = "document.pdf"
	ContentTypePDF  = "application/pdf"

	// DefaultMaxHTMLBytes caps the HTML payload accepted by Render.
	DefaultMaxHTMLBytes = 10 << 20
)

// Pipeline timing defaults.
const (
	DefaultLoadTimeout = 30 * time.Second
	DefaultSettleDelay = 500 * time.Millisecond
	DefaultIdleTimeout = 5 * time.Minute
)

// DefaultFooterBandMM is the height of the band masked by FooterFirstPageOnly.
const DefaultFooterBandMM = 15.0

// FooterDisplay selects on which pages the document footer stays visible.
type FooterDisplay int

// Footer display modes.
const (
	// FooterAll leaves the document untouched.
	FooterAll FooterDisplay = iota
	// FooterFirstPageOnly masks the footer band on every page after the first.
	FooterFirstPageOnly
)

// String returns the wire name of the mode ("all" or "firstPage").
func (f FooterDisplay) String() string {
	switch f {
	case FooterAll:
		return "all"
	case FooterFirstPageOnly:
		return "firstPage"
	default:
		return fmt.Sprintf("FooterDisplay(%d)", int(f))
	}
}

// ParseFooterDisplay parses a footer display mode. Empty input means FooterAll.
// Matching is case-insensitive and accepts "first-page" and "first_page".
func ParseFooterDisplay(s string) (FooterDisplay, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "all":
		return FooterAll, nil
	case "firstpage", "first-page", "first_page":
		return FooterFirstPageOnly, nil
	default:
		return FooterAll, fmt.Errorf("%w: %q (must be all or firstPage)", ErrInvalidFooterDisplay, s)
	}
}

// Request is a single render call.
type Request struct {
	HTML          string
	Filename      string        // defaults to DefaultFilename
	FooterDisplay FooterDisplay // defaults to FooterAll
}

// Result is the rendered document and its response metadata.
type Result struct {
	PDF         []byte
	Filename    string
	ContentType string
	Duration    time.Duration
}

// rendererConfig holds Renderer settings applied by options.
type rendererConfig struct {
	maxHTMLBytes int
	loadTimeout  time.Duration
	settleDelay  time.Duration
	footerBandMM float64
	browser      BrowserConfig
}

// Option configures a Renderer.
type Option func(*Renderer)

// WithEnginePool makes the renderer use a caller-owned pool.
// Renderer.Close does not close an injected pool.
func WithEnginePool(p *EnginePool) Option {
	return func(r *Renderer) {
		r.pool = p
		r.ownsPool = false
	}
}

// WithLogger sets the logger used by the renderer.
func WithLogger(l *zap.Logger) Option {
	return func(r *Renderer) {
		if l != nil {
			r.logger = l
		}
	}
}

// WithMaxHTMLBytes sets the HTML size ceiling. Values <= 0 are ignored.
func WithMaxHTMLBytes(n int) Option {
	return func(r *Renderer) {
		if n > 0 {
			r.cfg.maxHTMLBytes = n
		}
	}
}

// WithLoadTimeout bounds the content load step. Values <= 0 are ignored.
func WithLoadTimeout(d time.Duration) Option {
	return func(r *Renderer) {
		if d > 0 {
			r.cfg.loadTimeout = d
		}
	}
}

// WithSettleDelay sets the pause between load and capture. Zero disables it.
func WithSettleDelay(d time.Duration) Option {
	return func(r *Renderer) {
		if d >= 0 {
			r.cfg.settleDelay = d
		}
	}
}

// WithFooterBand sets the masked band height in millimeters. Values <= 0 are ignored.
func WithFooterBand(mm float64) Option {
	return func(r *Renderer) {
		if mm > 0 {
			r.cfg.footerBandMM = mm
		}
	}
}

// WithBrowserConfig configures the browser launched by an owned pool.
func WithBrowserConfig(cfg BrowserConfig) Option {
	return func(r *Renderer) {
		r.cfg.browser = cfg
	}
}
