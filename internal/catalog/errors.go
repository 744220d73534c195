package catalog

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrNotFound indicates an unknown category or calculator identifier.
	ErrNotFound = errors.New("catalog: not found")
	// ErrInvalidCatalog indicates the declaration failed validation.
	ErrInvalidCatalog = errors.New("catalog: invalid declaration")
)

// ConfigError lists every validation problem found in a catalog declaration.
type ConfigError struct {
	problems []string
}

// Error implements the error interface.
func (e *ConfigError) Error() string {
	return fmt.Sprintf("catalog: invalid declaration: %s", strings.Join(e.problems, "; "))
}

// Unwrap allows errors.Is(err, ErrInvalidCatalog).
func (e *ConfigError) Unwrap() error { return ErrInvalidCatalog }

// Problems returns a copy of the validation problems.
func (e *ConfigError) Problems() []string {
	out := make([]string, len(e.problems))
	copy(out, e.problems)
	return out
}

func notFound(kind, key string) error {
	return fmt.Errorf("%w: %s %q", ErrNotFound, kind, key)
}
