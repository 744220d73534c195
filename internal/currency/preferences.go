package currency

import "fmt"

// Preferences reads and writes one client's preferred currency.
type Preferences struct {
	registry *Registry
	store    Store
}

// NewPreferences binds the registry to a client-scoped store.
func NewPreferences(registry *Registry, store Store) *Preferences {
	if store == nil {
		store = NewMemoryStore()
	}
	return &Preferences{registry: registry, store: store}
}

// Preferred returns the persisted currency when it is still registered,
// otherwise the registry default. A stale value is not an error.
func (p *Preferences) Preferred() Config {
	cfg, _ := p.resolve()
	return cfg
}

// Stale reports whether a persisted code exists but is no longer registered.
func (p *Preferences) Stale() bool {
	_, stale := p.resolve()
	return stale
}

func (p *Preferences) resolve() (Config, bool) {
	code, ok := p.store.Get(PreferenceKey)
	if !ok || code == "" {
		return p.registry.Default(), false
	}
	if cfg, ok := p.registry.Lookup(code); ok {
		return cfg, false
	}
	return p.registry.Default(), true
}

// SetPreferred validates code and persists it. An unknown code returns
// ErrInvalidCurrency and leaves the stored preference untouched.
func (p *Preferences) SetPreferred(code string) (Config, error) {
	cfg, ok := p.registry.Lookup(code)
	if !ok {
		return Config{}, fmt.Errorf("%w: %q", ErrInvalidCurrency, code)
	}
	if err := p.store.Set(PreferenceKey, cfg.Code); err != nil {
		return Config{}, fmt.Errorf("currency: persist preference: %w", err)
	}
	return cfg, nil
}
