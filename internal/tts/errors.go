package tts

import (
	"errors"
	"fmt"
	"unicode/utf8"
)

// ErrorKind classifies a synthesis failure.
type ErrorKind string

const (
	KindFileNotFound ErrorKind = "file_not_found"
	KindInvalidInput ErrorKind = "invalid_input"
	KindModelLoad    ErrorKind = "model_load"
	KindInference    ErrorKind = "inference"
	KindConnection   ErrorKind = "connection"
	KindHTTPStatus   ErrorKind = "http_status"
	KindTransport    ErrorKind = "transport"
	KindWrite        ErrorKind = "write"
)

// Remediable reports whether the user can fix the failure by changing
// configuration or starting a missing process.
func (k ErrorKind) Remediable() bool {
	switch k {
	case KindFileNotFound, KindInvalidInput, KindConnection:
		return true
	default:
		return false
	}
}

// Error is the failure value returned by synthesizers and the workflow runner.
type Error struct {
	Kind    ErrorKind
	Message string
	Hint    string

	// Set only for KindHTTPStatus.
	StatusCode int
	Body       string

	Err error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Err }

// NewError builds an *Error of the given kind.
func NewError(kind ErrorKind, hint string, cause error, format string, args ...any) *Error {
	return &Error{
		Kind:    kind,
		Message: fmt.Sprintf(format, args...),
		Hint:    hint,
		Err:     cause,
	}
}

// KindOf returns the ErrorKind carried by err, or "" when err is not an *Error.
func KindOf(err error) ErrorKind {
	var te *Error
	if errors.As(err, &te) {
		return te.Kind
	}
	return ""
}

// HintOf returns the remediation hint carried by err, if any.
func HintOf(err error) string {
	var te *Error
	if errors.As(err, &te) {
		return te.Hint
	}
	return ""
}

// Snippet truncates s to at most n runes.
func Snippet(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	r := []rune(s)
	return string(r[:n])
}
