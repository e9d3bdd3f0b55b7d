package shortener

import (
	"fmt"
	"strings"
)

const (
	shortIDMinLen = 6
	shortIDMaxLen = 16
)

// ShortID is a validated short URL identifier: 6 to 16 ASCII alphanumeric
// characters. The zero value is invalid; construct via NewShortID.
type ShortID struct {
	value string
}

// NewShortID validates raw and wraps it as a ShortID.
func NewShortID(raw string) (ShortID, error) {
	if len(raw) < shortIDMinLen || len(raw) > shortIDMaxLen {
		return ShortID{}, &InvalidLengthError{Min: shortIDMinLen, Max: shortIDMaxLen}
	}

	var invalid strings.Builder

	for _, r := range raw {
		if !isASCIIAlphanumeric(r) {
			invalid.WriteRune(r)
		}
	}

	if invalid.Len() > 0 {
		return ShortID{}, &InvalidCharactersError{Chars: invalid.String()}
	}

	return ShortID{value: raw}, nil
}

// String returns the underlying identifier.
func (id ShortID) String() string {
	return id.value
}

func isASCIIAlphanumeric(r rune) bool {
	return r >= '0' && r <= '9' || r >= 'a' && r <= 'z' || r >= 'A' && r <= 'Z'
}

// InvalidLengthError reports an identifier outside the allowed length bounds.
type InvalidLengthError struct {
	Min int
	Max int
}

func (e *InvalidLengthError) Error() string {
	return fmt.Sprintf("short ID length must be between %d and %d", e.Min, e.Max)
}

// InvalidCharactersError reports an identifier containing characters outside
// the ASCII alphanumeric set. Chars holds each offending character.
type InvalidCharactersError struct {
	Chars string
}

func (e *InvalidCharactersError) Error() string {
	return fmt.Sprintf("short ID must only contain alphanumeric characters; invalid chars: %q", e.Chars)
}
