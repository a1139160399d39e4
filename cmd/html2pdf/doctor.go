package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/exec"
	"runtime"
	"strconv"
	"strings"
	"time"

	"github.com/go-rod/rod/lib/launcher"
	"go.uber.org/zap"

	html2pdf "github.com/alnah/go-html2pdf"
	"github.com/alnah/go-html2pdf/internal/config"
	"github.com/alnah/go-html2pdf/internal/hints"
)

// doctorLaunchTimeout bounds the optional test launch.
const doctorLaunchTimeout = 60 * time.Second

// Doctor statuses.
const (
	statusReady    = "ready"
	statusWarnings = "warnings"
	statusErrors   = "errors"
)

// doctorResult holds all diagnostic information.
type doctorResult struct {
	Status   string     `json:"status"`
	Chrome   chromeInfo `json:"chrome"`
	Env      envInfo    `json:"environment"`
	Launch   string     `json:"launch,omitempty"` // engine state after --launch
	Warnings []string   `json:"warnings,omitempty"`
	Errors   []string   `json:"errors,omitempty"`
}

// chromeInfo holds Chrome/Chromium detection results.
type chromeInfo struct {
	Found   bool   `json:"found"`
	Path    string `json:"path,omitempty"`
	Version string `json:"version,omitempty"`
	Sandbox bool   `json:"sandbox"`
}

// envInfo holds environment detection results.
type envInfo struct {
	OS         string   `json:"os"`
	Arch       string   `json:"arch"`
	Container  bool     `json:"container"`
	NoSandbox  string   `json:"no_sandbox"`
	BrowserBin string   `json:"browser_bin"`
	Unknown    []string `json:"unknown_vars,omitempty"`
}

// runDoctorCmd executes the doctor command and returns an exit code.
// Warnings still exit 0.
func runDoctorCmd(args []string, env *Environment) int {
	var jsonOutput, launch bool
	for _, arg := range args {
		switch arg {
		case "--json":
			jsonOutput = true
		case "--launch":
			launch = true
		case "-h", "--help":
			printDoctorUsage(env.Stdout)
			return ExitSuccess
		default:
			fmt.Fprintf(env.Stderr, "error: unknown doctor flag %q\n", arg)
			return ExitUsage
		}
	}

	result := runDoctor(env, launch)

	if jsonOutput {
		enc := json.NewEncoder(env.Stdout)
		enc.SetIndent("", "  ")
		_ = enc.Encode(result)
	} else {
		printDoctorResult(env.Stdout, result)
	}

	if result.Status == statusErrors {
		return ExitGeneral
	}
	return ExitSuccess
}

func runDoctor(env *Environment, launch bool) *doctorResult {
	r := &doctorResult{
		Status: statusReady,
		Env: envInfo{
			OS:         runtime.GOOS,
			Arch:       runtime.GOARCH,
			Container:  hints.IsInContainer(),
			NoSandbox:  env.Getenv("HTML2PDF_NO_SANDBOX"),
			BrowserBin: env.Getenv("HTML2PDF_BROWSER_BIN"),
		},
	}

	cfg, err := loadConfig("", env)
	if err != nil {
		r.Errors = append(r.Errors, err.Error())
	}

	if cfg != nil && cfg.Engine.BrowserBin != "" {
		r.Env.BrowserBin = cfg.Engine.BrowserBin
	}
	checkChrome(r)

	if cfg != nil {
		r.Chrome.Sandbox = !cfg.Engine.NoSandbox
		if r.Env.Container && !cfg.Engine.NoSandbox {
			r.Warnings = append(r.Warnings,
				"Container detected with the Chrome sandbox enabled. Set HTML2PDF_NO_SANDBOX=1")
		}
		if launch && len(r.Errors) == 0 {
			r.Launch = tryLaunch(browserConfig(cfg), env, r)
		}
	}

	if r.Env.Unknown = unknownVars(env); len(r.Env.Unknown) > 0 {
		r.Warnings = append(r.Warnings,
			"Unknown variables ignored: "+strings.Join(r.Env.Unknown, ", "))
	}

	switch {
	case len(r.Errors) > 0:
		r.Status = statusErrors
	case len(r.Warnings) > 0:
		r.Status = statusWarnings
	}
	return r
}

// checkChrome locates Chrome and reads its version. A missing browser is a
// warning: rod downloads one on first launch.
func checkChrome(r *doctorResult) {
	path := r.Env.BrowserBin
	if path == "" {
		var found bool
		if path, found = launcher.LookPath(); !found {
			r.Warnings = append(r.Warnings,
				"Chrome/Chromium not found; a managed Chromium will be downloaded on first launch. Set HTML2PDF_BROWSER_BIN to use an installed browser")
			return
		}
	}

	if _, err := os.Stat(path); err != nil {
		r.Errors = append(r.Errors, fmt.Sprintf("Chrome not found at %s", path))
		return
	}
	r.Chrome.Found = true
	r.Chrome.Path = path

	out, err := exec.Command(path, "--version").Output()
	if err != nil {
		r.Warnings = append(r.Warnings, fmt.Sprintf("Could not get Chrome version: %v", err))
		return
	}
	r.Chrome.Version = strings.TrimSpace(string(out))
}

// tryLaunch starts and disposes one engine.
func tryLaunch(cfg html2pdf.BrowserConfig, env *Environment, r *doctorResult) string {
	pool := html2pdf.NewEnginePool(env.Launch(cfg, zap.NewNop()))
	defer pool.Close()

	ctx, cancel := context.WithTimeout(context.Background(), doctorLaunchTimeout)
	defer cancel()

	if _, err := pool.Acquire(ctx); err != nil {
		r.Errors = append(r.Errors, err.Error())
	}
	return pool.State().String()
}

func unknownVars(env *Environment) []string {
	if env.Environ == nil {
		return nil
	}
	return config.UnknownEnvVars(env.Environ())
}

func printDoctorResult(w io.Writer, r *doctorResult) {
	fmt.Fprintln(w, "html2pdf doctor")
	fmt.Fprintln(w)

	fmt.Fprintln(w, "Chrome/Chromium")
	if r.Chrome.Found {
		fmt.Fprintf(w, "  [OK] Found at %s\n", r.Chrome.Path)
		if r.Chrome.Version != "" {
			fmt.Fprintf(w, "  [OK] Version: %s\n", r.Chrome.Version)
		}
	} else {
		fmt.Fprintln(w, "  [--] Not found")
	}
	if r.Chrome.Sandbox {
		fmt.Fprintln(w, "  [OK] Sandbox: enabled")
	} else {
		fmt.Fprintln(w, "  [OK] Sandbox: disabled")
	}
	if r.Launch != "" {
		fmt.Fprintf(w, "  [OK] Test launch: engine %s\n", r.Launch)
	}
	fmt.Fprintln(w)

	fmt.Fprintln(w, "Environment")
	fmt.Fprintf(w, "  [OK] Platform: %s/%s\n", r.Env.OS, r.Env.Arch)
	fmt.Fprintf(w, "  [OK] Container: %s\n", strconv.FormatBool(r.Env.Container))
	fmt.Fprintln(w)

	if len(r.Warnings) > 0 {
		fmt.Fprintln(w, "Warnings:")
		for _, warn := range r.Warnings {
			fmt.Fprintf(w, "  [WARN] %s\n", warn)
		}
		fmt.Fprintln(w)
	}
	if len(r.Errors) > 0 {
		fmt.Fprintln(w, "Errors:")
		for _, err := range r.Errors {
			fmt.Fprintf(w, "  [ERROR] %s\n", err)
		}
		fmt.Fprintln(w)
	}

	switch r.Status {
	case statusReady:
		fmt.Fprintln(w, "Status: Ready")
	case statusWarnings:
		fmt.Fprintln(w, "Status: Ready with warnings")
	case statusErrors:
		fmt.Fprintln(w, "Status: Not ready (see errors above)")
	}
}
