package api

import (
	_ "crypto/sha256"
	_ "crypto/sha512"
	"errors"
	"fmt"

	"github.com/opencontainers/go-digest"
)

// ErrPrecondition marks failures detected locally, before any request is sent.
var ErrPrecondition = errors.New("precondition failed")

// TransportError wraps network failures and undecodable bodies.
type TransportError struct {
	Op  string
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// APIError is a non-2xx response. Message comes from the body's "error"
// field, or the status text when the body has none.
type APIError struct {
	Op         string
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%s failed (%d): %s", e.Op, e.StatusCode, e.Message)
}

// IsTransport reports whether err is, or wraps, a TransportError.
func IsTransport(err error) bool {
	var target *TransportError
	return errors.As(err, &target)
}

// IsPrecondition reports whether err wraps ErrPrecondition.
func IsPrecondition(err error) bool {
	return errors.Is(err, ErrPrecondition)
}

// Preconditionf builds an error wrapping ErrPrecondition.
func Preconditionf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrPrecondition, fmt.Sprintf(format, args...))
}

// ValidateDigest checks that value is a well formed "algorithm:hex" digest
// of any registered algorithm.
func ValidateDigest(value string) error {
	if value == "" {
		return Preconditionf("manifest has no digest")
	}
	if _, err := digest.Parse(value); err != nil {
		return Preconditionf("invalid digest %q: %v", value, err)
	}
	return nil
}
