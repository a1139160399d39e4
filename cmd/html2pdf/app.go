package main

import (
	"context"
	"errors"
	"fmt"
	"strings"

	flag "github.com/spf13/pflag"
	"go.uber.org/automaxprocs/maxprocs"
	"go.uber.org/zap"

	html2pdf "github.com/alnah/go-html2pdf"
	"github.com/alnah/go-html2pdf/internal/config"
	"github.com/alnah/go-html2pdf/internal/logger"
)

// runMain dispatches the command in args and returns the process exit code.
func runMain(args []string, env *Environment) int {
	cmd, rest := "serve", []string(nil)
	if len(args) > 1 {
		cmd, rest = args[1], args[2:]
		if strings.HasPrefix(cmd, "-") && cmd != "-h" && cmd != "--help" {
			cmd, rest = "serve", args[1:]
		}
	}

	ctx, stop := notifyContext(context.Background())
	defer stop()

	var err error
	switch cmd {
	case "serve":
		err = runServe(ctx, rest, env)
	case "render":
		err = runRender(ctx, rest, env)
	case "config":
		err = runConfig(rest, env)
	case "doctor":
		return runDoctorCmd(rest, env)
	case "version", "--version":
		fmt.Fprintf(env.Stdout, "go-html2pdf %s\n", Version)
		return ExitSuccess
	case "help", "-h", "--help":
		topic := ""
		if len(rest) > 0 {
			topic = rest[0]
		}
		err = printHelp(env.Stdout, topic)
	default:
		printUsage(env.Stderr)
		err = usageError("unknown command %q", cmd)
	}

	if errors.Is(err, flag.ErrHelp) {
		return ExitSuccess
	}
	if err != nil {
		fmt.Fprintln(env.Stderr, "error:", err)
		return exitCodeFor(err)
	}
	return ExitSuccess
}

// setMaxProcs aligns GOMAXPROCS with the container CPU quota.
// Error ignored: maxprocs.Set only fails if GOMAXPROCS env is invalid,
// in which case Go runtime defaults apply.
func setMaxProcs(log *zap.Logger) func() {
	undo, _ := maxprocs.Set(maxprocs.Logger(log.Sugar().Debugf))
	return undo
}

// newLogger builds the logger from cfg; verbose forces debug level.
func newLogger(cfg config.LogConfig, verbose bool) (*zap.Logger, error) {
	lc := logger.Config{Level: cfg.Level, Format: cfg.Format, Output: cfg.Output}
	if verbose {
		lc.Level = "debug"
	}
	return logger.New(lc)
}

// warnUnknownEnvVars logs HTML2PDF_* variables that nothing reads.
func warnUnknownEnvVars(log *zap.Logger, env *Environment) {
	if unknown := config.UnknownEnvVars(env.Environ()); len(unknown) > 0 {
		log.Warn("unknown environment variables ignored", zap.Strings("names", unknown))
	}
}

// browserConfig maps the engine section onto the launcher settings.
func browserConfig(cfg *config.Config) html2pdf.BrowserConfig {
	return html2pdf.BrowserConfig{
		Bin:        cfg.Engine.BrowserBin,
		NoSandbox:  cfg.Engine.NoSandbox,
		HeapSizeMB: cfg.Engine.HeapSizeMB,
	}
}

// buildRenderer assembles the engine pool and the renderer. The caller
// closes the pool.
func buildRenderer(cfg *config.Config, log *zap.Logger, env *Environment) (*html2pdf.Renderer, *html2pdf.EnginePool) {
	browser := browserConfig(cfg)
	pool := html2pdf.NewEnginePool(
		env.Launch(browser, log),
		html2pdf.WithIdleTimeout(cfg.Engine.IdleTimeout.Std()),
		html2pdf.WithPoolLogger(log),
	)
	r := html2pdf.New(
		html2pdf.WithEnginePool(pool),
		html2pdf.WithLogger(log),
		html2pdf.WithBrowserConfig(browser),
		html2pdf.WithMaxHTMLBytes(cfg.Limits.MaxHTMLBytes),
		html2pdf.WithLoadTimeout(cfg.Engine.LoadTimeout.Std()),
		html2pdf.WithSettleDelay(cfg.Engine.SettleDelay.Std()),
		html2pdf.WithFooterBand(cfg.Footer.BandHeightMM),
	)
	return r, pool
}
