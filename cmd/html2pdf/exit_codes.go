package main

import (
	"errors"
	"fmt"
	"os"

	flag "github.com/spf13/pflag"

	html2pdf "github.com/alnah/go-html2pdf"
	"github.com/alnah/go-html2pdf/internal/config"
)

// Exit codes for the html2pdf CLI.
// Follows Unix conventions: 0=success, 1=general, 2=usage, and custom codes < 126.
const (
	ExitSuccess = 0 // Success
	ExitGeneral = 1 // General/unexpected error
	ExitUsage   = 2 // Invalid flags, config, or input
	ExitIO      = 3 // File not found, permission denied, write failure
	ExitBrowser = 4 // Browser launch or render failure
)

// CLI errors.
var (
	ErrUsage     = errors.New("usage error")
	ErrReadInput = errors.New("failed to read input")
	ErrWritePDF  = errors.New("failed to write PDF")
	ErrListen    = errors.New("failed to listen")
)

func usageError(format string, args ...any) error {
	return fmt.Errorf("%w: "+format, append([]any{ErrUsage}, args...)...)
}

// exitCodeFor returns the exit code for err. It uses errors.Is, so callers
// must wrap with %w.
func exitCodeFor(err error) int {
	if err == nil {
		return ExitSuccess
	}

	if errors.Is(err, ErrReadInput) ||
		errors.Is(err, ErrWritePDF) ||
		errors.Is(err, ErrListen) ||
		errors.Is(err, os.ErrNotExist) ||
		errors.Is(err, os.ErrPermission) {
		return ExitIO
	}

	if errors.Is(err, ErrUsage) ||
		errors.Is(err, flag.ErrHelp) ||
		errors.Is(err, config.ErrConfigNotFound) ||
		errors.Is(err, config.ErrConfigParse) ||
		errors.Is(err, config.ErrInvalidConfig) ||
		errors.Is(err, config.ErrFieldTooLong) {
		return ExitUsage
	}

	switch html2pdf.KindOf(err) {
	case html2pdf.KindValidation:
		return ExitUsage
	case html2pdf.KindLaunch, html2pdf.KindLoadTimeout, html2pdf.KindRender:
		return ExitBrowser
	}
	return ExitGeneral
}
