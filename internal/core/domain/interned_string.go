package domain

import (
	"strings"
	"unique"
)

// InternedString is a value object that wraps a unique.Handle[string].
// Module identifiers repeat heavily across edges, chunks and load lists,
// so interning them keeps the graph compact and makes equality O(1).
type InternedString struct {
	h unique.Handle[string]
}

// NewInternedString creates a new InternedString from a string.
func NewInternedString(s string) InternedString {
	return InternedString{
		h: unique.Make(s),
	}
}

// NewInternedStrings creates a new InternedString slice from a string slice.
func NewInternedStrings(s []string) []InternedString {
	res := make([]InternedString, len(s))
	for i, s := range s {
		res[i] = NewInternedString(s)
	}
	return res
}

// String returns the underlying string value.
func (is InternedString) String() string {
	return is.h.Value()
}

// Compare lexically compares the underlying string values.
// Used wherever deterministic ordering over identifiers is required.
func (is InternedString) Compare(other InternedString) int {
	return strings.Compare(is.h.Value(), other.h.Value())
}

// MarshalText implements encoding.TextMarshaler.
func (is InternedString) MarshalText() ([]byte, error) {
	return []byte(is.h.Value()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (is *InternedString) UnmarshalText(text []byte) error {
	is.h = unique.Make(string(text))
	return nil
}
