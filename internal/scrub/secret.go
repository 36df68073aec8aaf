// Package scrub provides security helpers for removing sensitive data from errors.
package scrub

import "strings"

// Secret holds a credential that must never appear in logs or error
// messages. Its String and formatting output is always redacted; use
// Value to read the credential at the point of use.
type Secret string

// Value returns the underlying credential.
func (s Secret) Value() string { return string(s) }

// String implements fmt.Stringer with a redacted value.
func (s Secret) String() string {
	if s == "" {
		return ""
	}
	return "[REDACTED]"
}

// GoString keeps %#v output redacted as well.
func (s Secret) GoString() string { return s.String() }

// MarshalText keeps text and slog output redacted.
func (s Secret) MarshalText() ([]byte, error) { return []byte(s.String()), nil }

// FromError removes the secret from an error message.
// Go's http.Client.Do() includes the request URL (which may carry the
// credential) in error strings. Preserves the error chain for
// errors.Is/As via Unwrap().
func FromError(err error, secret Secret) error {
	if err == nil {
		return nil
	}
	val := secret.Value()
	if val == "" {
		return err
	}
	msg := err.Error()
	if strings.Contains(msg, val) {
		return &scrubbedError{
			msg: strings.ReplaceAll(msg, val, "[REDACTED]"),
			err: err,
		}
	}
	return err
}

type scrubbedError struct {
	msg string
	err error
}

func (e *scrubbedError) Error() string { return e.msg }
func (e *scrubbedError) Unwrap() error { return e.err }
