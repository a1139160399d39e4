package html2pdf

import (
	"context"
	"errors"
)

// Sentinel errors for library operations.
var (
	// Request validation errors.
	ErrEmptyHTML            = errors.New("HTML content is required")
	ErrInvalidHTML          = errors.New("HTML content must be valid UTF-8 text")
	ErrHTMLTooLarge         = errors.New("HTML content exceeds size limit")
	ErrInvalidFooterDisplay = errors.New("invalid footer display mode")

	// Engine lifecycle errors.
	ErrBrowserConnect = errors.New("failed to launch browser")
	ErrPoolClosed     = errors.New("engine pool is closed")

	// Rendering errors.
	ErrPageCreate    = errors.New("failed to create browser page")
	ErrPageLoad      = errors.New("failed to load page")
	ErrLoadTimeout   = errors.New("page load timed out")
	ErrPDFGeneration = errors.New("PDF generation failed")

	// ErrPostProcess is logged by the footer mask and never returned by Render.
	ErrPostProcess = errors.New("PDF post-processing failed")
)

// ErrorKind classifies a Render error for transport layers.
type ErrorKind string

// Error kinds returned by KindOf.
const (
	KindValidation  ErrorKind = "validation"
	KindLaunch      ErrorKind = "launch"
	KindLoadTimeout ErrorKind = "load_timeout"
	KindRender      ErrorKind = "render"
	KindInternal    ErrorKind = "internal"
)

// KindOf returns the kind of err. It uses errors.Is, so wrapped errors are
// classified by the sentinel they carry.
func KindOf(err error) ErrorKind {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrEmptyHTML),
		errors.Is(err, ErrInvalidHTML),
		errors.Is(err, ErrHTMLTooLarge),
		errors.Is(err, ErrInvalidFooterDisplay):
		return KindValidation
	case errors.Is(err, ErrBrowserConnect),
		errors.Is(err, ErrPoolClosed):
		return KindLaunch
	case errors.Is(err, ErrLoadTimeout):
		return KindLoadTimeout
	case errors.Is(err, ErrPageCreate),
		errors.Is(err, ErrPageLoad),
		errors.Is(err, ErrPDFGeneration),
		errors.Is(err, context.Canceled),
		errors.Is(err, context.DeadlineExceeded):
		return KindRender
	default:
		return KindInternal
	}
}
