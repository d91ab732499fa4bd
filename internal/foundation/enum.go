// Package foundation holds small generic helpers shared across packages.
package foundation

import (
	"errors"
	"fmt"
	"strings"
)

// ErrUnknownValue is returned for input that maps to no enum value.
var ErrUnknownValue = errors.New("unknown value")

// Normalizer maps free-form configuration strings to enum values. Matching
// trims surrounding space and ignores case, so "FS" and " fs" are equal.
type Normalizer[T comparable] struct {
	values map[string]T
	zero   T
}

// NewNormalizer creates a normalizer. values maps every accepted spelling,
// aliases included, to its enum value. Unknown input yields fallback.
func NewNormalizer[T comparable](values map[string]T, fallback T) *Normalizer[T] {
	n := &Normalizer[T]{values: make(map[string]T, len(values)), zero: fallback}
	for k, v := range values {
		n.values[clean(k)] = v
	}
	return n
}

func clean(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// Normalize returns the value for raw, or the fallback.
func (n *Normalizer[T]) Normalize(raw string) T {
	if v, ok := n.values[clean(raw)]; ok {
		return v
	}
	return n.zero
}

// Lookup returns the value for raw or ErrUnknownValue.
func (n *Normalizer[T]) Lookup(raw string) (T, error) {
	if v, ok := n.values[clean(raw)]; ok {
		return v, nil
	}
	var zero T
	return zero, fmt.Errorf("%w: %q", ErrUnknownValue, raw)
}
