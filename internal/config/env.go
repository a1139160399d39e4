package config

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"
)

// EnvPrefix namespaces every service variable.
const EnvPrefix = "HTML2PDF_"

// knownEnvVars lists valid HTML2PDF_* environment variables.
// Used to detect typos and warn about unknown variables.
var knownEnvVars = map[string]bool{
	"HTML2PDF_CONFIG":           true,
	"HTML2PDF_HOST":             true,
	"HTML2PDF_PORT":             true,
	"HTML2PDF_ENV":              true,
	"HTML2PDF_JWT_SECRET":       true,
	"HTML2PDF_JWT_AUDIENCE":     true,
	"HTML2PDF_CORS_ORIGINS":     true,
	"HTML2PDF_MAX_BODY_BYTES":   true,
	"HTML2PDF_MAX_HTML_BYTES":   true,
	"HTML2PDF_BROWSER_BIN":      true,
	"HTML2PDF_NO_SANDBOX":       true,
	"HTML2PDF_HEAP_SIZE_MB":     true,
	"HTML2PDF_IDLE_TIMEOUT":     true,
	"HTML2PDF_LOAD_TIMEOUT":     true,
	"HTML2PDF_SETTLE_DELAY":     true,
	"HTML2PDF_FOOTER_BAND_MM":   true,
	"HTML2PDF_LOG_LEVEL":        true,
	"HTML2PDF_LOG_FORMAT":       true,
	"HTML2PDF_LOG_OUTPUT":       true,
	"HTML2PDF_SHUTDOWN_TIMEOUT": true,
}

// ApplyEnv overrides cfg with environment values read through getenv.
// Set variables always win over the file. Besides HTML2PDF_* it honors PORT
// (set by most PaaS hosts) and ALLOWED_ORIGINS; the prefixed names win when
// both are set. Malformed values are errors rather than silently ignored.
func ApplyEnv(cfg *Config, getenv func(string) string) error {
	e := envReader{getenv: getenv}

	e.str(&cfg.Server.Host, "HTML2PDF_HOST")
	e.int(&cfg.Server.Port, "PORT")
	e.int(&cfg.Server.Port, "HTML2PDF_PORT")
	e.str(&cfg.Server.Environment, "HTML2PDF_ENV")
	e.duration(&cfg.Server.ShutdownTimeout, "HTML2PDF_SHUTDOWN_TIMEOUT")

	e.str(&cfg.Auth.JWTSecret, "HTML2PDF_JWT_SECRET")
	e.str(&cfg.Auth.Audience, "HTML2PDF_JWT_AUDIENCE")

	e.list(&cfg.CORS.AllowedOrigins, "ALLOWED_ORIGINS")
	e.list(&cfg.CORS.AllowedOrigins, "HTML2PDF_CORS_ORIGINS")

	e.int64(&cfg.Limits.MaxBodyBytes, "HTML2PDF_MAX_BODY_BYTES")
	e.int(&cfg.Limits.MaxHTMLBytes, "HTML2PDF_MAX_HTML_BYTES")

	e.str(&cfg.Engine.BrowserBin, "HTML2PDF_BROWSER_BIN")
	e.bool(&cfg.Engine.NoSandbox, "HTML2PDF_NO_SANDBOX")
	e.int(&cfg.Engine.HeapSizeMB, "HTML2PDF_HEAP_SIZE_MB")
	e.duration(&cfg.Engine.IdleTimeout, "HTML2PDF_IDLE_TIMEOUT")
	e.duration(&cfg.Engine.LoadTimeout, "HTML2PDF_LOAD_TIMEOUT")
	e.duration(&cfg.Engine.SettleDelay, "HTML2PDF_SETTLE_DELAY")

	e.float(&cfg.Footer.BandHeightMM, "HTML2PDF_FOOTER_BAND_MM")

	e.str(&cfg.Log.Level, "HTML2PDF_LOG_LEVEL")
	e.str(&cfg.Log.Format, "HTML2PDF_LOG_FORMAT")
	e.str(&cfg.Log.Output, "HTML2PDF_LOG_OUTPUT")

	return e.err
}

// UnknownEnvVars returns the HTML2PDF_* names in environ that are not
// recognized, sorted. Helps catch typos like HTML2PDF_LOAD_TIMOUT.
func UnknownEnvVars(environ []string) []string {
	var unknown []string
	for _, env := range environ {
		if !strings.HasPrefix(env, EnvPrefix) {
			continue
		}
		name, _, _ := strings.Cut(env, "=")
		if !knownEnvVars[name] {
			unknown = append(unknown, name)
		}
	}
	sort.Strings(unknown)
	return unknown
}

// envReader applies variables and keeps the first parse error.
type envReader struct {
	getenv func(string) string
	err    error
}

func (e *envReader) lookup(name string) (string, bool) {
	v := strings.TrimSpace(e.getenv(name))
	return v, v != ""
}

func (e *envReader) fail(name, v string, err error) {
	if e.err == nil {
		e.err = fmt.Errorf("%w: %s=%q: %v", ErrInvalidConfig, name, v, err)
	}
}

func (e *envReader) str(dst *string, name string) {
	if v, ok := e.lookup(name); ok {
		*dst = v
	}
}

func (e *envReader) list(dst *[]string, name string) {
	v, ok := e.lookup(name)
	if !ok {
		return
	}
	var out []string
	for _, part := range strings.Split(v, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	*dst = out
}

func (e *envReader) int(dst *int, name string) {
	v, ok := e.lookup(name)
	if !ok {
		return
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		e.fail(name, v, err)
		return
	}
	*dst = n
}

func (e *envReader) int64(dst *int64, name string) {
	v, ok := e.lookup(name)
	if !ok {
		return
	}
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		e.fail(name, v, err)
		return
	}
	*dst = n
}

func (e *envReader) float(dst *float64, name string) {
	v, ok := e.lookup(name)
	if !ok {
		return
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		e.fail(name, v, err)
		return
	}
	*dst = f
}

func (e *envReader) bool(dst *bool, name string) {
	v, ok := e.lookup(name)
	if !ok {
		return
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		e.fail(name, v, err)
		return
	}
	*dst = b
}

func (e *envReader) duration(dst *Duration, name string) {
	v, ok := e.lookup(name)
	if !ok {
		return
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		e.fail(name, v, err)
		return
	}
	*dst = Duration(d)
}
