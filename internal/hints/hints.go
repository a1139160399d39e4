// Package hints provides actionable error hints for common failure scenarios.
// Hints are formatted consistently as "\n  hint: <text>" for appending to error messages.
package hints

import (
	"os"
	"strings"
)

// IsInContainer detects if running inside a Docker container or similar.
// Checks for /.dockerenv, which Docker creates, and the KUBERNETES_SERVICE_HOST
// variable set in every pod.
var IsInContainer = func() bool {
	if os.Getenv("KUBERNETES_SERVICE_HOST") != "" {
		return true
	}
	_, err := os.Stat("/.dockerenv")
	return err == nil
}

// inCI reports whether a known CI provider is running us.
func inCI() bool {
	return os.Getenv("CI") != "" ||
		os.Getenv("GITHUB_ACTIONS") != "" ||
		os.Getenv("GITLAB_CI") != "" ||
		os.Getenv("JENKINS_URL") != ""
}

// ForBrowserLaunch returns hints for browser launch and connection errors.
// Suggests the HTML2PDF_* variables that usually fix a failed launch.
func ForBrowserLaunch() string {
	var hints []string

	if (inCI() || IsInContainer()) && !isTruthy(os.Getenv("HTML2PDF_NO_SANDBOX")) {
		hints = append(hints, "set HTML2PDF_NO_SANDBOX=1 in containers")
	}
	if os.Getenv("HTML2PDF_BROWSER_BIN") == "" {
		hints = append(hints, "set HTML2PDF_BROWSER_BIN to use an installed Chrome")
	}

	return formatHints(hints)
}

// ForLoadTimeout returns a hint for documents that never finish loading.
func ForLoadTimeout() string {
	return format("external resources (fonts, images, scripts) must load within the timeout; set HTML2PDF_LOAD_TIMEOUT to raise it")
}

// ForConfigNotFound returns a hint for a missing config file.
func ForConfigNotFound(path string) string {
	return format("check the path passed to --config or HTML2PDF_CONFIG (" + path + ")")
}

// ForPortInUse returns a hint for listen failures.
func ForPortInUse(addr string) string {
	return format(addr + " is taken; use --port or PORT to pick another")
}

func isTruthy(v string) bool {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "1", "true", "yes", "on":
		return true
	}
	return false
}

// format creates a single hint string with consistent formatting.
func format(hint string) string {
	if hint == "" {
		return ""
	}
	return "\n  hint: " + hint
}

// formatHints joins multiple hints with consistent formatting.
func formatHints(hints []string) string {
	if len(hints) == 0 {
		return ""
	}
	return format(strings.Join(hints, "; "))
}
