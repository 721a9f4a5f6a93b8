package utils

import (
	"errors"
	"strings"

	"github.com/JustUsingaWebsite/resource-formatter/backend/internal/types"
)

// ErrKeyNotFound is returned when a column key matches no header.
var ErrKeyNotFound = errors.New("key not found in header")

// WhitespaceTrimmer removes leading/trailing whitespace and collapses internal whitespace.
func WhitespaceTrimmer(s string) string {
	// strings.Fields will collapse all whitespace runs into single spaces
	parts := strings.Fields(s)
	return strings.Join(parts, " ")
}

// ResolveKeyIndex returns the column index for a header name.
// An exact match always wins; opts widen matching to trimmed and/or
// case-insensitive comparison, first match in header order.
func ResolveKeyIndex(columns []string, key string, opts types.OpOptions) (int, error) {
	for i, c := range columns {
		if c == key {
			return i, nil
		}
	}
	if !opts.TrimSpaces && !opts.KeyCaseInsensitive {
		return -1, ErrKeyNotFound
	}
	want := Normalize(key, opts.TrimSpaces, opts.KeyCaseInsensitive)
	for i, c := range columns {
		if Normalize(c, opts.TrimSpaces, opts.KeyCaseInsensitive) == want {
			return i, nil
		}
	}
	return -1, ErrKeyNotFound
}

// Normalize applies trimming and case normalization according to flags.
func Normalize(val string, trim bool, caseInsensitive bool) string {
	if trim {
		val = WhitespaceTrimmer(val)
	}
	if caseInsensitive {
		val = strings.ToLower(val)
	}
	return val
}
