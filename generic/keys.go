package generic

import "strings"

// =============================================================================
// KEY SET - Normalized multi-key matching
// =============================================================================

// NormalizeKey trims and lowercases an identifier for loose comparison.
func NormalizeKey(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// KeySet holds every identifier an entity may be known by. Records from
// different vintages reference the same entity through different keys, so a
// reference matches when it equals any of them after normalization.
type KeySet struct {
	keys []string
}

// NewKeySet builds a set from candidate keys. Blank keys are dropped.
func NewKeySet(keys ...string) KeySet {
	ks := KeySet{}
	for _, k := range keys {
		if n := NormalizeKey(k); n != "" && !ks.Matches(n) {
			ks.keys = append(ks.keys, n)
		}
	}
	return ks
}

// Matches reports whether ref equals one of the keys. A blank ref never matches.
func (ks KeySet) Matches(ref string) bool {
	n := NormalizeKey(ref)
	if n == "" {
		return false
	}
	for _, k := range ks.keys {
		if k == n {
			return true
		}
	}
	return false
}

func (ks KeySet) Empty() bool { return len(ks.keys) == 0 }

// FirstNonBlank returns the first value that is not blank after trimming.
func FirstNonBlank(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}
