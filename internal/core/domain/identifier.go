package domain

import (
	"regexp"
	"strings"
	"unique"

	"go.trai.ch/zerr"
)

const maxIdentifierLen = 32

var validIdentifierRegex = regexp.MustCompile(`^[A-Z0-9.^=\-]+$`)

// Identifier is the normalized key naming one forecastable entity, such as a ticker symbol.
// It wraps a unique.Handle so that equal identifiers compare and hash identically everywhere
// they are used as keys (cache entries, artifact files, data files, log attributes).
//
// The zero value is not a valid identifier. Construct identifiers with ParseIdentifier.
type Identifier struct {
	h unique.Handle[string]
}

// ParseIdentifier normalizes raw input into an Identifier.
// Surrounding whitespace is trimmed and the value is upper-cased before validation.
func ParseIdentifier(raw string) (Identifier, error) {
	normalized := strings.ToUpper(strings.TrimSpace(raw))
	if normalized == "" {
		return Identifier{}, zerr.Wrap(ErrInvalidIdentifier, "identifier must not be empty")
	}
	if len(normalized) > maxIdentifierLen || !validIdentifierRegex.MatchString(normalized) {
		return Identifier{}, zerr.With(zerr.Wrap(ErrInvalidIdentifier, "identifier contains invalid characters"),
			"identifier", raw)
	}
	return Identifier{h: unique.Make(normalized)}, nil
}

// MustIdentifier is like ParseIdentifier but panics on invalid input.
// It is intended for constants and tests.
func MustIdentifier(raw string) Identifier {
	id, err := ParseIdentifier(raw)
	if err != nil {
		panic(err)
	}
	return id
}

// String returns the normalized form.
func (id Identifier) String() string {
	var zero unique.Handle[string]
	if id.h == zero {
		return ""
	}
	return id.h.Value()
}

// IsZero reports whether the identifier was never initialized.
func (id Identifier) IsZero() bool {
	var zero unique.Handle[string]
	return id.h == zero
}

// MarshalText implements encoding.TextMarshaler.
func (id Identifier) MarshalText() ([]byte, error) {
	return []byte(id.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
// The text is normalized and validated exactly like ParseIdentifier.
func (id *Identifier) UnmarshalText(text []byte) error {
	parsed, err := ParseIdentifier(string(text))
	if err != nil {
		return err
	}
	*id = parsed
	return nil
}
