package versioning

import "fmt"

// Number is a major.minor.patch documentation version.
type Number struct {
	Major int `json:"major" yaml:"major"`
	Minor int `json:"minor" yaml:"minor"`
	Patch int `json:"patch" yaml:"patch"`
}

// String formats the number as major.minor.patch.
func (n Number) String() string {
	return fmt.Sprintf("%d.%d.%d", n.Major, n.Minor, n.Patch)
}

// Compare returns -1, 0 or 1 comparing n to other component by component.
func (n Number) Compare(other Number) int {
	switch {
	case n.Major != other.Major:
		return cmpInt(n.Major, other.Major)
	case n.Minor != other.Minor:
		return cmpInt(n.Minor, other.Minor)
	default:
		return cmpInt(n.Patch, other.Patch)
	}
}

func cmpInt(a, b int) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

// SortOrder selects how the version index is ordered.
type SortOrder string

const (
	// SortLexical orders version strings as plain strings, descending. "10.0.0"
	// sorts below "2.0.0". This is the default and matches published indexes.
	SortLexical SortOrder = "lexical"

	// SortSemantic orders by numeric major, minor and patch, descending.
	SortSemantic SortOrder = "semantic"
)
