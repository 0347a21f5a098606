// Package errors provides error helpers used across the project:
// standard wrapping, prefixed errors and a multi error container.
package errors

import (
	"errors"
	"fmt"
)

func New(text string) error {
	return errors.New(text)
}

func Errorf(format string, a ...any) error {
	return fmt.Errorf(format, a...)
}

func Is(err, target error) bool {
	return errors.Is(err, target)
}

func As(err error, target any) bool {
	return errors.As(err, target)
}

// PrefixError returns an error with the message "<prefix>: <err>", Unwrap returns the original error.
func PrefixError(err error, prefix string) error {
	if err == nil {
		panic("error cannot be nil")
	}
	return &prefixError{prefix: prefix, err: err}
}

func PrefixErrorf(err error, format string, a ...any) error {
	return PrefixError(err, fmt.Sprintf(format, a...))
}

type prefixError struct {
	prefix string
	err    error
}

func (e *prefixError) Error() string {
	return e.prefix + ": " + e.err.Error()
}

func (e *prefixError) Unwrap() error {
	return e.err
}
