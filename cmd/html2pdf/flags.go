package main

import (
	"errors"
	"fmt"
	"io"

	flag "github.com/spf13/pflag"

	"github.com/alnah/go-html2pdf/internal/config"
	"github.com/alnah/go-html2pdf/internal/hints"
)

// commonFlags holds flags shared across commands.
type commonFlags struct {
	config  string
	verbose bool
}

// serveFlags holds flags for the serve command.
type serveFlags struct {
	common commonFlags
	host   string
	port   int
}

// renderFlags holds flags for the render command.
type renderFlags struct {
	common        commonFlags
	output        string
	footerDisplay string
	timeout       string
}

func addCommonFlags(fs *flag.FlagSet, f *commonFlags) {
	fs.StringVarP(&f.config, "config", "c", "", "config file path (or HTML2PDF_CONFIG)")
	fs.BoolVarP(&f.verbose, "verbose", "v", false, "debug logging")
}

func newFlagSet(name string, stderr io.Writer, usage func(io.Writer)) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.Usage = func() { usage(stderr) }
	return fs
}

// parse runs fs.Parse and reports malformed flags as usage errors.
func parse(fs *flag.FlagSet, args []string) error {
	err := fs.Parse(args)
	if err == nil || errors.Is(err, flag.ErrHelp) {
		return err
	}
	return usageError("%v", err)
}

func parseServeFlags(args []string, stderr io.Writer) (*serveFlags, error) {
	f := &serveFlags{}
	fs := newFlagSet("serve", stderr, printServeUsage)
	addCommonFlags(fs, &f.common)
	fs.StringVar(&f.host, "host", "", "listen host (default from config)")
	fs.IntVarP(&f.port, "port", "p", 0, "listen port (default from config)")

	if err := parse(fs, args); err != nil {
		return nil, err
	}
	if fs.NArg() > 0 {
		return nil, usageError("serve takes no arguments, got %q", fs.Args())
	}
	return f, nil
}

func parseRenderFlags(args []string, stderr io.Writer) (*renderFlags, []string, error) {
	f := &renderFlags{}
	fs := newFlagSet("render", stderr, printRenderUsage)
	addCommonFlags(fs, &f.common)
	fs.StringVarP(&f.output, "output", "o", "", "output PDF path (default: input with .pdf)")
	fs.StringVarP(&f.footerDisplay, "footer-display", "f", "all", "footer display: all or firstPage")
	fs.StringVarP(&f.timeout, "timeout", "t", "", "page load timeout, e.g. 30s")

	if err := parse(fs, args); err != nil {
		return nil, nil, err
	}
	return f, fs.Args(), nil
}

// loadConfig loads the file named by path or HTML2PDF_CONFIG, then
// environment overrides.
func loadConfig(path string, env *Environment) (*config.Config, error) {
	if path == "" {
		path = env.Getenv("HTML2PDF_CONFIG")
	}
	cfg, err := config.Load(path, env.Getenv)
	if errors.Is(err, config.ErrConfigNotFound) {
		return nil, fmt.Errorf("%w%s", err, hints.ForConfigNotFound(path))
	}
	return cfg, err
}
