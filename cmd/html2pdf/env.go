package main

import (
	"io"
	"os"

	"go.uber.org/zap"

	html2pdf "github.com/alnah/go-html2pdf"
)

// Environment holds injectable dependencies for testability.
type Environment struct {
	Stdin   io.Reader
	Stdout  io.Writer
	Stderr  io.Writer
	Getenv  func(string) string
	Environ func() []string
	// Launch builds the engine launcher used by the pool.
	Launch func(html2pdf.BrowserConfig, *zap.Logger) html2pdf.LaunchFunc
}

// DefaultEnv returns the production environment.
func DefaultEnv() *Environment {
	return &Environment{
		Stdin:   os.Stdin,
		Stdout:  os.Stdout,
		Stderr:  os.Stderr,
		Getenv:  os.Getenv,
		Environ: os.Environ,
		Launch:  html2pdf.LaunchRod,
	}
}
