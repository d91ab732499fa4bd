// Package versioning parses documentation version directory names and orders
// the version index.
package versioning

import (
	"errors"
	"fmt"
	"regexp"
	"slices"
	"strconv"
	"strings"
)

// ErrInvalidVersion is returned when a string is not major.minor.patch.
var ErrInvalidVersion = errors.New("invalid version")

var versionPattern = regexp.MustCompile(`^\d+\.\d+\.\d+$`)

// IsVersion reports whether name is strictly major.minor.patch with numeric parts.
func IsVersion(name string) bool {
	return versionPattern.MatchString(name)
}

// Parse parses a major.minor.patch string.
func Parse(s string) (Number, error) {
	if !IsVersion(s) {
		return Number{}, fmt.Errorf("%w: %q", ErrInvalidVersion, s)
	}
	parts := strings.Split(s, ".")
	var vals [3]int
	for i, p := range parts {
		v, err := strconv.Atoi(p)
		if err != nil {
			return Number{}, fmt.Errorf("%w: %q: %w", ErrInvalidVersion, s, err)
		}
		vals[i] = v
	}
	return Number{Major: vals[0], Minor: vals[1], Patch: vals[2]}, nil
}

// Filter returns the names that are valid versions, preserving input order.
func Filter(names []string) []string {
	out := make([]string, 0, len(names))
	for _, n := range names {
		if IsVersion(n) {
			out = append(out, n)
		}
	}
	return out
}

// SortDescending filters names to valid versions and orders them newest first
// according to order. The input slice is not modified.
func SortDescending(names []string, order SortOrder) []string {
	out := Filter(names)
	if order == SortSemantic {
		slices.SortStableFunc(out, func(a, b string) int {
			na, _ := Parse(a)
			nb, _ := Parse(b)
			if c := nb.Compare(na); c != 0 {
				return c
			}
			return strings.Compare(b, a)
		})
		return out
	}
	slices.SortStableFunc(out, func(a, b string) int { return strings.Compare(b, a) })
	return out
}

// ParseSortOrder normalizes a configured sort order. Empty means lexical.
func ParseSortOrder(raw string) (SortOrder, error) {
	switch SortOrder(strings.ToLower(strings.TrimSpace(raw))) {
	case "", SortLexical:
		return SortLexical, nil
	case SortSemantic:
		return SortSemantic, nil
	default:
		return "", fmt.Errorf("unknown version sort order %q (want lexical or semantic)", raw)
	}
}
