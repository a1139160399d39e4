package html2pdf

import (
	"context"
	"time"

	"github.com/go-rod/rod/lib/proto"
)

// Engine is a live browser connection shared by all requests.
// Implementations must be safe for concurrent NewSession calls.
type Engine interface {
	// Connected reports whether the browser still answers.
	Connected() bool
	// NewSession opens an isolated context with one page.
	NewSession(ctx context.Context) (Session, error)
	// Close disposes the browser.
	Close() error
}

// Session is an isolated browsing context with a single page, owned by one
// request. It is never reused.
type Session interface {
	// Load replaces the page document with html and waits for it to load,
	// failing with ErrLoadTimeout once timeout elapses.
	Load(ctx context.Context, html string, timeout time.Duration) error
	// PrintPDF captures the loaded page.
	PrintPDF(ctx context.Context, opts *proto.PagePrintToPDF) ([]byte, error)
	// Close tears down the page, then the context.
	Close() error
}

// LaunchFunc starts a new engine. The pool calls it outside of any request
// context, so a launch is never cut short by the caller that triggered it.
type LaunchFunc func() (Engine, error)

// EngineState describes the pool's engine.
type EngineState int

// Engine states.
const (
	StateAbsent EngineState = iota
	StateLive
	StateDisconnected
)

func (s EngineState) String() string {
	switch s {
	case StateAbsent:
		return "absent"
	case StateLive:
		return "live"
	case StateDisconnected:
		return "disconnected"
	default:
		return "unknown"
	}
}
