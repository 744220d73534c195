// Package currency enumerates the currencies the site can display and keeps
// track of each client's preferred one.
package currency

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	xcurrency "golang.org/x/text/currency"
)

// DefaultCode is the currency used when no valid preference exists.
const DefaultCode = "USD"

var codePattern = regexp.MustCompile(`^[A-Z]{3}$`)

// ErrInvalidCurrency indicates a code that is not part of the registry.
var ErrInvalidCurrency = errors.New("currency: invalid currency")

// Config describes a supported currency.
type Config struct {
	Code   string `json:"code"`
	Symbol string `json:"symbol"`
	Name   string `json:"name"`
}

// Registry is the fixed, ordered set of supported currencies.
type Registry struct {
	configs []Config
	index   map[string]int
	def     string
}

// NewRegistry validates configs and returns a registry whose default is
// defaultCode. Codes must be unique, registered ISO 4217 codes.
func NewRegistry(defaultCode string, configs ...Config) (*Registry, error) {
	if len(configs) == 0 {
		return nil, errors.New("currency: registry requires at least one currency")
	}
	r := &Registry{
		configs: make([]Config, 0, len(configs)),
		index:   make(map[string]int, len(configs)),
	}
	for i, cfg := range configs {
		cfg.Code = strings.TrimSpace(cfg.Code)
		if !codePattern.MatchString(cfg.Code) {
			return nil, fmt.Errorf("currency: config[%d]: code %q must be three upper-case letters", i, cfg.Code)
		}
		if _, err := xcurrency.ParseISO(cfg.Code); err != nil {
			return nil, fmt.Errorf("currency: config[%d]: %q is not an ISO 4217 code: %w", i, cfg.Code, err)
		}
		if _, dup := r.index[cfg.Code]; dup {
			return nil, fmt.Errorf("currency: config[%d]: duplicate code %q", i, cfg.Code)
		}
		if strings.TrimSpace(cfg.Symbol) == "" {
			cfg.Symbol = cfg.Code
		}
		if strings.TrimSpace(cfg.Name) == "" {
			cfg.Name = cfg.Code
		}
		r.index[cfg.Code] = len(r.configs)
		r.configs = append(r.configs, cfg)
	}

	def := normalizeCode(defaultCode)
	if def == "" {
		def = r.configs[0].Code
	}
	if _, ok := r.index[def]; !ok {
		return nil, fmt.Errorf("%w: default %q is not registered", ErrInvalidCurrency, def)
	}
	r.def = def
	return r, nil
}

// DefaultRegistry returns the currencies offered by the site, USD first.
func DefaultRegistry() *Registry {
	r, err := NewRegistry(DefaultCode, defaultConfigs...)
	if err != nil {
		panic(err)
	}
	return r
}

// WithDefault returns a copy of the registry using code as its default.
func (r *Registry) WithDefault(code string) (*Registry, error) {
	return NewRegistry(code, r.configs...)
}

var defaultConfigs = []Config{
	{Code: "USD", Symbol: "$", Name: "US Dollar"},
	{Code: "EUR", Symbol: "€", Name: "Euro"},
	{Code: "GBP", Symbol: "£", Name: "British Pound"},
	{Code: "INR", Symbol: "₹", Name: "Indian Rupee"},
	{Code: "JPY", Symbol: "¥", Name: "Japanese Yen"},
	{Code: "AUD", Symbol: "A$", Name: "Australian Dollar"},
	{Code: "CAD", Symbol: "C$", Name: "Canadian Dollar"},
	{Code: "CNY", Symbol: "¥", Name: "Chinese Yuan"},
	{Code: "CHF", Symbol: "CHF", Name: "Swiss Franc"},
	{Code: "SGD", Symbol: "S$", Name: "Singapore Dollar"},
}

// Currencies lists supported currencies in declaration order.
func (r *Registry) Currencies() []Config {
	out := make([]Config, len(r.configs))
	copy(out, r.configs)
	return out
}

// Lookup finds a currency by code, ignoring case and surrounding space.
func (r *Registry) Lookup(code string) (Config, bool) {
	idx, ok := r.index[normalizeCode(code)]
	if !ok {
		return Config{}, false
	}
	return r.configs[idx], true
}

// Default returns the registry's default currency.
func (r *Registry) Default() Config {
	return r.configs[r.index[r.def]]
}

func normalizeCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}
