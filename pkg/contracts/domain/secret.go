package domain

import (
	"log/slog"
)

const redacted = "[REDACTED]"

// Secret holds a password that must never reach logs or reports.
// Printing it with any verb yields a placeholder; Reveal returns the raw value.
type Secret string

// NewSecret wraps a raw password
func NewSecret(raw string) Secret {
	return Secret(raw)
}

// Reveal returns the underlying value for use in authentication
func (s Secret) Reveal() string {
	return string(s)
}

// IsZero reports whether no secret was provided
func (s Secret) IsZero() bool {
	return s == ""
}

// String implements fmt.Stringer
func (s Secret) String() string {
	if s == "" {
		return ""
	}
	return redacted
}

// GoString implements fmt.GoStringer so %#v does not leak the value
func (s Secret) GoString() string {
	return s.String()
}

// LogValue implements slog.LogValuer
func (s Secret) LogValue() slog.Value {
	return slog.StringValue(s.String())
}

// MarshalText keeps the value out of JSON and YAML encodings
func (s Secret) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// UnmarshalText accepts the raw value from configuration files
func (s *Secret) UnmarshalText(text []byte) error {
	*s = Secret(text)
	return nil
}
