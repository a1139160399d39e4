package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	html2pdf "github.com/alnah/go-html2pdf"
	"github.com/alnah/go-html2pdf/internal/config"
	"github.com/alnah/go-html2pdf/internal/hints"
)

// stdio names stdin as input and stdout as output.
const stdio = "-"

// runRender converts one HTML file through the same core as the service.
func runRender(ctx context.Context, args []string, env *Environment) error {
	flags, positional, err := parseRenderFlags(args, env.Stderr)
	if err != nil {
		return err
	}
	if len(positional) != 1 {
		printRenderUsage(env.Stderr)
		return usageError("render takes exactly one input, got %d", len(positional))
	}
	input := positional[0]

	footer, err := html2pdf.ParseFooterDisplay(flags.footerDisplay)
	if err != nil {
		return err
	}

	cfg, err := loadConfig(flags.common.config, env)
	if err != nil {
		return err
	}
	if flags.timeout != "" {
		d, err := time.ParseDuration(flags.timeout)
		if err != nil || d <= 0 {
			return usageError("invalid --timeout %q (e.g. 30s, 1m)", flags.timeout)
		}
		cfg.Engine.LoadTimeout = config.Duration(d)
	}

	output := resolveOutputPath(input, flags.output)

	html, err := readInput(input, env.Stdin)
	if err != nil {
		return err
	}

	// Logs go to stderr so stdout stays clean for "-o -".
	logCfg := cfg.Log
	logCfg.Output = "stderr"
	logCfg.Format = "console"
	if !flags.common.verbose {
		logCfg.Level = "warn"
	}
	log, err := newLogger(logCfg, flags.common.verbose)
	if err != nil {
		return usageError("logger: %v", err)
	}
	defer func() { _ = log.Sync() }()

	renderer, pool := buildRenderer(cfg, log, env)
	defer pool.Close()

	res, err := renderer.Render(ctx, html2pdf.Request{
		HTML:          html,
		Filename:      filepath.Base(output),
		FooterDisplay: footer,
	})
	if err != nil {
		if errors.Is(err, html2pdf.ErrLoadTimeout) {
			return fmt.Errorf("rendering %s: %w%s", input, err, hints.ForLoadTimeout())
		}
		return fmt.Errorf("rendering %s: %w", input, err)
	}

	if err := writeOutput(output, res.PDF, env.Stdout); err != nil {
		return err
	}
	if output != stdio {
		fmt.Fprintf(env.Stderr, "%s -> %s (%d bytes, %s)\n",
			input, output, len(res.PDF), res.Duration.Round(time.Millisecond))
	}
	return nil
}

// resolveOutputPath returns explicit when set, stdout for stdin input, or the
// input path with a .pdf extension.
func resolveOutputPath(input, explicit string) string {
	if explicit != "" {
		return explicit
	}
	if input == stdio {
		return stdio
	}
	return strings.TrimSuffix(input, filepath.Ext(input)) + ".pdf"
}

func readInput(input string, stdin io.Reader) (string, error) {
	var (
		data []byte
		err  error
	)
	if input == stdio {
		data, err = io.ReadAll(io.LimitReader(stdin, html2pdf.DefaultMaxHTMLBytes+1))
	} else {
		data, err = os.ReadFile(input)
	}
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrReadInput, err)
	}
	return string(data), nil
}

func writeOutput(output string, pdf []byte, stdout io.Writer) error {
	if output == stdio {
		if _, err := stdout.Write(pdf); err != nil {
			return fmt.Errorf("%w: %w", ErrWritePDF, err)
		}
		return nil
	}
	if err := os.WriteFile(output, pdf, 0o644); err != nil {
		return fmt.Errorf("%w: %w", ErrWritePDF, err)
	}
	return nil
}
