package main

import (
	"fmt"
	"io"
)

func printUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: html2pdf <command> [flags] [args]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Commands:")
	fmt.Fprintln(w, "  serve      Run the HTTP service (default)")
	fmt.Fprintln(w, "  render     Convert an HTML file to PDF")
	fmt.Fprintln(w, "  config     Print the effective configuration")
	fmt.Fprintln(w, "  doctor     Check the browser setup")
	fmt.Fprintln(w, "  version    Show version information")
	fmt.Fprintln(w, "  help       Show help for a command")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Run 'html2pdf help <command>' for details on a specific command.")
}

func printServeUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: html2pdf serve [flags]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Serve GET /, GET /health and POST /generate.")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Flags:")
	fmt.Fprintln(w, "  -c, --config <path>       Config file (or HTML2PDF_CONFIG)")
	fmt.Fprintln(w, "      --host <host>         Listen host")
	fmt.Fprintln(w, "  -p, --port <n>            Listen port (or PORT)")
	fmt.Fprintln(w, "  -v, --verbose             Debug logging")
}

func printRenderUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: html2pdf render <input.html> [flags]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Render one HTML file to an A4 PDF. Use - to read from stdin.")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Flags:")
	fmt.Fprintln(w, "  -o, --output <path>       Output file (default: input with .pdf, stdout for -)")
	fmt.Fprintln(w, "  -f, --footer-display <s>  all or firstPage")
	fmt.Fprintln(w, "  -t, --timeout <d>         Page load timeout (e.g. 30s, 1m)")
	fmt.Fprintln(w, "  -c, --config <path>       Config file (or HTML2PDF_CONFIG)")
	fmt.Fprintln(w, "  -v, --verbose             Debug logging")
}

func printConfigUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: html2pdf config [--config <path>]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Print the configuration after file and environment overrides, as YAML.")
	fmt.Fprintln(w, "The JWT secret is redacted.")
}

func printDoctorUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: html2pdf doctor [--json] [--launch]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Check the Chrome installation and container settings.")
	fmt.Fprintln(w, "  --json     Machine-readable output")
	fmt.Fprintln(w, "  --launch   Also start the browser once")
}

func printHelp(w io.Writer, topic string) error {
	switch topic {
	case "":
		printUsage(w)
	case "serve":
		printServeUsage(w)
	case "render":
		printRenderUsage(w)
	case "config":
		printConfigUsage(w)
	case "doctor":
		printDoctorUsage(w)
	case "version":
		fmt.Fprintln(w, "Usage: html2pdf version")
	default:
		return usageError("unknown help topic %q", topic)
	}
	return nil
}
