// Package config loads the service configuration from a YAML file and
// HTML2PDF_* environment variables.
package config

import (
	"errors"
	"fmt"
	"net"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/alnah/go-html2pdf/internal/yamlutil"
)

// Sentinel errors for config operations.
var (
	ErrConfigNotFound = errors.New("config file not found")
	ErrConfigParse    = errors.New("failed to parse config")
	ErrInvalidConfig  = errors.New("invalid config")
	ErrFieldTooLong   = errors.New("field exceeds maximum length")
)

// Environments accepted by server.environment.
const (
	EnvDevelopment = "development"
	EnvProduction  = "production"
)

// Field length limits.
const (
	MaxOriginLength   = 2048 // Browser URL limit
	MaxAudienceLength = 256
	MaxPathLength     = 4096
)

// Bounds for numeric settings.
const (
	MinHeapSizeMB = 64
	MaxFooterMM   = 100.0
)

// Config holds all service configuration.
type Config struct {
	Server ServerConfig `yaml:"server"`
	Auth   AuthConfig   `yaml:"auth"`
	CORS   CORSConfig   `yaml:"cors"`
	Limits LimitsConfig `yaml:"limits"`
	Engine EngineConfig `yaml:"engine"`
	Footer FooterConfig `yaml:"footer"`
	Log    LogConfig    `yaml:"log"`
}

// ServerConfig defines the HTTP listener.
type ServerConfig struct {
	Host            string   `yaml:"host"`
	Port            int      `yaml:"port"`
	Environment     string   `yaml:"environment"` // "development" or "production"
	ReadTimeout     Duration `yaml:"readTimeout"`
	WriteTimeout    Duration `yaml:"writeTimeout"`
	ShutdownTimeout Duration `yaml:"shutdownTimeout"`
}

// AuthConfig defines bearer token verification. An empty secret disables
// authentication.
type AuthConfig struct {
	JWTSecret string `yaml:"jwtSecret"`
	Audience  string `yaml:"audience"` // Optional, e.g. "authenticated"
}

// CORSConfig defines allowed browser origins.
type CORSConfig struct {
	AllowedOrigins []string `yaml:"allowedOrigins"` // ["*"] allows any origin
}

// LimitsConfig caps request sizes.
type LimitsConfig struct {
	MaxBodyBytes int64 `yaml:"maxBodyBytes"` // JSON body, default 5 MiB
	MaxHTMLBytes int   `yaml:"maxHTMLBytes"` // html field, default 10 MiB
}

// EngineConfig defines the browser engine and render timings.
type EngineConfig struct {
	BrowserBin  string   `yaml:"browserBin"` // Empty = rod locates or downloads Chrome
	NoSandbox   bool     `yaml:"noSandbox"`
	HeapSizeMB  int      `yaml:"heapSizeMB"`
	IdleTimeout Duration `yaml:"idleTimeout"`
	LoadTimeout Duration `yaml:"loadTimeout"`
	SettleDelay Duration `yaml:"settleDelay"`
}

// FooterConfig defines footer masking geometry.
type FooterConfig struct {
	BandHeightMM float64 `yaml:"bandHeightMM"`
}

// LogConfig defines logger output.
type LogConfig struct {
	Level  string `yaml:"level"`  // debug, info, warn, error
	Format string `yaml:"format"` // json or console
	Output string `yaml:"output"` // stdout, stderr or a file path
}

// DefaultConfig returns the production-ready defaults.
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Host:            "0.0.0.0",
			Port:            3001,
			Environment:     EnvDevelopment,
			ReadTimeout:     Duration(30 * time.Second),
			WriteTimeout:    Duration(90 * time.Second),
			ShutdownTimeout: Duration(15 * time.Second),
		},
		CORS: CORSConfig{AllowedOrigins: []string{"*"}},
		Limits: LimitsConfig{
			MaxBodyBytes: 5 << 20,
			MaxHTMLBytes: 10 << 20,
		},
		Engine: EngineConfig{
			NoSandbox:   true,
			HeapSizeMB:  256,
			IdleTimeout: Duration(5 * time.Minute),
			LoadTimeout: Duration(30 * time.Second),
			SettleDelay: Duration(500 * time.Millisecond),
		},
		Footer: FooterConfig{BandHeightMM: 15},
		Log: LogConfig{
			Level:  "info",
			Format: "json",
			Output: "stdout",
		},
	}
}

// Load builds the configuration: defaults, then the YAML file at path (if
// path is not empty), then environment variables read through getenv.
// The result is validated.
func Load(path string, getenv func(string) string) (*Config, error) {
	cfg := DefaultConfig()

	if path != "" {
		if err := yamlutil.ReadFile(path, cfg); err != nil {
			if errors.Is(err, os.ErrNotExist) {
				return nil, fmt.Errorf("%w: %s", ErrConfigNotFound, path)
			}
			return nil, fmt.Errorf("%w: %v", ErrConfigParse, err)
		}
	}

	if getenv != nil {
		if err := ApplyEnv(cfg, getenv); err != nil {
			return nil, err
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks ranges and field lengths.
// Called by Load, but available for callers who build Config by hand.
func (c *Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return invalid("server.port: must be between 1 and 65535, got %d", c.Server.Port)
	}
	switch c.Server.Environment {
	case EnvDevelopment, EnvProduction:
	default:
		return invalid("server.environment: invalid value %q (must be development or production)", c.Server.Environment)
	}
	if c.Server.ReadTimeout < 0 || c.Server.WriteTimeout < 0 || c.Server.ShutdownTimeout < 0 {
		return invalid("server timeouts must not be negative")
	}

	if err := validateFieldLength("auth.audience", c.Auth.Audience, MaxAudienceLength); err != nil {
		return err
	}
	if c.Server.Environment == EnvProduction && c.Auth.JWTSecret == "" {
		return invalid("auth.jwtSecret: required in production")
	}

	if len(c.CORS.AllowedOrigins) == 0 {
		return invalid("cors.allowedOrigins: at least one origin is required (use \"*\" for any)")
	}
	for i, o := range c.CORS.AllowedOrigins {
		if err := validateFieldLength(fmt.Sprintf("cors.allowedOrigins[%d]", i), o, MaxOriginLength); err != nil {
			return err
		}
		if strings.TrimSpace(o) == "" {
			return invalid("cors.allowedOrigins[%d]: empty origin", i)
		}
	}

	if c.Limits.MaxBodyBytes <= 0 {
		return invalid("limits.maxBodyBytes: must be positive, got %d", c.Limits.MaxBodyBytes)
	}
	if c.Limits.MaxHTMLBytes <= 0 {
		return invalid("limits.maxHTMLBytes: must be positive, got %d", c.Limits.MaxHTMLBytes)
	}

	if err := validateFieldLength("engine.browserBin", c.Engine.BrowserBin, MaxPathLength); err != nil {
		return err
	}
	if c.Engine.HeapSizeMB != 0 && c.Engine.HeapSizeMB < MinHeapSizeMB {
		return invalid("engine.heapSizeMB: must be at least %d, got %d", MinHeapSizeMB, c.Engine.HeapSizeMB)
	}
	if c.Engine.IdleTimeout <= 0 {
		return invalid("engine.idleTimeout: must be positive")
	}
	if c.Engine.LoadTimeout <= 0 {
		return invalid("engine.loadTimeout: must be positive")
	}
	if c.Engine.SettleDelay < 0 {
		return invalid("engine.settleDelay: must not be negative")
	}

	if c.Footer.BandHeightMM <= 0 || c.Footer.BandHeightMM > MaxFooterMM {
		return invalid("footer.bandHeightMM: must be in (0, %.0f], got %.2f", MaxFooterMM, c.Footer.BandHeightMM)
	}

	switch strings.ToLower(c.Log.Level) {
	case "debug", "info", "warn", "error":
	default:
		return invalid("log.level: invalid value %q (must be debug, info, warn or error)", c.Log.Level)
	}
	switch strings.ToLower(c.Log.Format) {
	case "json", "console":
	default:
		return invalid("log.format: invalid value %q (must be json or console)", c.Log.Format)
	}
	if err := validateFieldLength("log.output", c.Log.Output, MaxPathLength); err != nil {
		return err
	}

	return nil
}

// Addr returns the listen address.
func (c *Config) Addr() string {
	return net.JoinHostPort(c.Server.Host, strconv.Itoa(c.Server.Port))
}

// IsDevelopment reports whether the service runs in development mode.
func (c *Config) IsDevelopment() bool {
	return c.Server.Environment == EnvDevelopment
}

// AuthEnabled reports whether bearer tokens are verified.
func (c *Config) AuthEnabled() bool {
	return c.Auth.JWTSecret != ""
}

func invalid(format string, args ...any) error {
	return fmt.Errorf("%w: "+format, append([]any{ErrInvalidConfig}, args...)...)
}

// validateFieldLength checks if a field exceeds its maximum allowed length.
func validateFieldLength(fieldName, value string, maxLength int) error {
	if len(value) > maxLength {
		return fmt.Errorf("%w: %s (%d chars, max %d)", ErrFieldTooLong, fieldName, len(value), maxLength)
	}
	return nil
}
