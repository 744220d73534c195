// Package config loads runtime settings from the environment and an optional
// .env file.
package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	envPrefix = "TOTALCALC_WEB_"

	defaultEnvFile         = ".env"
	defaultPort            = "8080"
	defaultReadTimeout     = 15 * time.Second
	defaultWriteTimeout    = 30 * time.Second
	defaultIdleTimeout     = 120 * time.Second
	defaultShutdownTimeout = 10 * time.Second
	defaultBaseURL         = "https://thetotalcalc.com"
	defaultSiteName        = "TheTotalCalc"
	defaultEnvironment     = "local"
	defaultTemplatesDir    = "internal/view/templates"
	defaultCurrency        = "USD"
	defaultLogLevel        = "info"
)

// Config captures all runtime configuration organised by concern.
type Config struct {
	Server        ServerConfig
	Site          SiteConfig
	Cookie        CookieConfig
	Observability ObservabilityConfig
	Environment   string
	Dev           bool
	TemplatesDir  string
}

// ServerConfig configures HTTP server parameters.
type ServerConfig struct {
	Port            string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	IdleTimeout     time.Duration
	ShutdownTimeout time.Duration
}

// SiteConfig holds public site identity.
type SiteConfig struct {
	BaseURL         string
	Name            string
	DefaultCurrency string
	// GAMeasurementID enables the GA4 snippet when set (G-XXXXXXXXXX).
	GAMeasurementID string
}

// CookieConfig holds the preference cookie keys. Empty keys mean the server
// generates ephemeral ones at startup.
type CookieConfig struct {
	HashKey  []byte
	BlockKey []byte
}

type ObservabilityConfig struct {
	LogLevel  string
	ProjectID string
}

// Production reports whether the site runs in the prod environment.
func (c Config) Production() bool { return c.Environment == "prod" }

// Addr is the listen address.
func (c Config) Addr() string { return ":" + c.Server.Port }

// ValidationError lists every field that failed validation.
type ValidationError struct {
	fields []string
}

func (e *ValidationError) Error() string {
	return "config: invalid fields: " + strings.Join(e.fields, ", ")
}

// Fields returns the invalid field names.
func (e *ValidationError) Fields() []string {
	return append([]string(nil), e.fields...)
}

// Option customises Load behaviour.
type Option func(*loaderOptions)

type loaderOptions struct {
	envFile      string
	envMap       map[string]string
	useSystemEnv bool
}

// WithEnvFile overrides the .env path. An empty path disables the file.
func WithEnvFile(path string) Option {
	return func(o *loaderOptions) { o.envFile = path }
}

// WithEnvMap injects values that take precedence over the OS environment.
func WithEnvMap(values map[string]string) Option {
	return func(o *loaderOptions) { o.envMap = values }
}

// WithoutSystemEnv ignores os.Environ.
func WithoutSystemEnv() Option {
	return func(o *loaderOptions) { o.useSystemEnv = false }
}

// Load resolves configuration with precedence explicit map > OS env > .env.
func Load(opts ...Option) (Config, error) {
	options := loaderOptions{envFile: defaultEnvFile, useSystemEnv: true}
	for _, opt := range opts {
		opt(&options)
	}

	values, err := loadDotEnv(options.envFile)
	if err != nil {
		return Config{}, err
	}
	if options.useSystemEnv {
		for _, entry := range os.Environ() {
			if key, value, ok := strings.Cut(entry, "="); ok && key != "" {
				values[key] = value
			}
		}
	}
	for key, value := range options.envMap {
		values[key] = value
	}
	lookup := func(key string) (string, bool) {
		v, ok := values[key]
		return strings.TrimSpace(v), ok
	}

	var invalid []string
	port := stringWithDefault(lookup, envPrefix+"PORT", stringWithDefault(lookup, "PORT", defaultPort))
	cfg := Config{
		Server: ServerConfig{
			Port:            port,
			ReadTimeout:     durationWithDefault(lookup, envPrefix+"READ_TIMEOUT", defaultReadTimeout, &invalid),
			WriteTimeout:    durationWithDefault(lookup, envPrefix+"WRITE_TIMEOUT", defaultWriteTimeout, &invalid),
			IdleTimeout:     durationWithDefault(lookup, envPrefix+"IDLE_TIMEOUT", defaultIdleTimeout, &invalid),
			ShutdownTimeout: durationWithDefault(lookup, envPrefix+"SHUTDOWN_TIMEOUT", defaultShutdownTimeout, &invalid),
		},
		Site: SiteConfig{
			BaseURL:         strings.TrimRight(stringWithDefault(lookup, envPrefix+"BASE_URL", defaultBaseURL), "/"),
			Name:            stringWithDefault(lookup, envPrefix+"SITE_NAME", defaultSiteName),
			DefaultCurrency: strings.ToUpper(stringWithDefault(lookup, envPrefix+"DEFAULT_CURRENCY", defaultCurrency)),
			GAMeasurementID: stringWithDefault(lookup, envPrefix+"GA_MEASUREMENT_ID", ""),
		},
		Cookie: CookieConfig{
			HashKey:  bytesOrNil(lookup, envPrefix+"COOKIE_HASH_KEY"),
			BlockKey: bytesOrNil(lookup, envPrefix+"COOKIE_BLOCK_KEY"),
		},
		Observability: ObservabilityConfig{
			LogLevel:  stringWithDefault(lookup, "LOG_LEVEL", defaultLogLevel),
			ProjectID: stringWithDefault(lookup, "GOOGLE_CLOUD_PROJECT", ""),
		},
		Environment:  strings.ToLower(stringWithDefault(lookup, envPrefix+"ENV", defaultEnvironment)),
		Dev:          boolWithDefault(lookup, envPrefix+"DEV", false, &invalid),
		TemplatesDir: stringWithDefault(lookup, envPrefix+"TEMPLATES_DIR", defaultTemplatesDir),
	}

	invalid = append(invalid, validate(cfg)...)
	if len(invalid) > 0 {
		return Config{}, &ValidationError{fields: invalid}
	}
	return cfg, nil
}

func validate(cfg Config) []string {
	var invalid []string
	if n, err := strconv.Atoi(cfg.Server.Port); err != nil || n <= 0 || n > 65535 {
		invalid = append(invalid, "Server.Port")
	}
	for name, d := range map[string]time.Duration{
		"Server.ReadTimeout":     cfg.Server.ReadTimeout,
		"Server.WriteTimeout":    cfg.Server.WriteTimeout,
		"Server.IdleTimeout":     cfg.Server.IdleTimeout,
		"Server.ShutdownTimeout": cfg.Server.ShutdownTimeout,
	} {
		if d <= 0 {
			invalid = append(invalid, name)
		}
	}
	if u, err := url.Parse(cfg.Site.BaseURL); err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		invalid = append(invalid, "Site.BaseURL")
	}
	if cfg.Site.Name == "" {
		invalid = append(invalid, "Site.Name")
	}
	if len(cfg.Site.DefaultCurrency) != 3 {
		invalid = append(invalid, "Site.DefaultCurrency")
	}
	if id := cfg.Site.GAMeasurementID; id != "" && !strings.HasPrefix(id, "G-") {
		invalid = append(invalid, "Site.GAMeasurementID")
	}
	if k := cfg.Cookie.HashKey; k != nil && len(k) < 32 {
		invalid = append(invalid, "Cookie.HashKey")
	}
	if k := len(cfg.Cookie.BlockKey); k != 0 && k != 16 && k != 24 && k != 32 {
		invalid = append(invalid, "Cookie.BlockKey")
	}
	if cfg.Environment != "local" && cfg.Environment != "prod" {
		invalid = append(invalid, "Environment")
	}
	sort.Strings(invalid)
	return invalid
}

func loadDotEnv(path string) (map[string]string, error) {
	if path == "" {
		return map[string]string{}, nil
	}
	values, err := godotenv.Read(path)
	if errors.Is(err, os.ErrNotExist) {
		return map[string]string{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("config: read %s: %w", path, err)
	}
	return values, nil
}

func stringWithDefault(lookup func(string) (string, bool), key, fallback string) string {
	if value, ok := lookup(key); ok && value != "" {
		return value
	}
	return fallback
}

func bytesOrNil(lookup func(string) (string, bool), key string) []byte {
	if value, ok := lookup(key); ok && value != "" {
		return []byte(value)
	}
	return nil
}

func durationWithDefault(lookup func(string) (string, bool), key string, fallback time.Duration, invalid *[]string) time.Duration {
	value, ok := lookup(key)
	if !ok || value == "" {
		return fallback
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		*invalid = append(*invalid, key)
		return fallback
	}
	return d
}

func boolWithDefault(lookup func(string) (string, bool), key string, fallback bool, invalid *[]string) bool {
	value, ok := lookup(key)
	if !ok || value == "" {
		return fallback
	}
	switch strings.ToLower(value) {
	case "true", "1", "yes", "on":
		return true
	case "false", "0", "no", "off":
		return false
	}
	*invalid = append(*invalid, key)
	return fallback
}
