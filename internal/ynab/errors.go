package ynab

import (
	"errors"
	"fmt"
)

// Kind classifies an upstream failure. The set is closed.
type Kind string

const (
	KindNetwork    Kind = "network"
	KindAPI        Kind = "api"
	KindValidation Kind = "validation"
	KindParse      Kind = "parse"
	KindUnknown    Kind = "unknown"
)

// Issue is one shape-validation finding.
type Issue struct {
	Path   string `json:"path"`
	Reason string `json:"reason"`
}

// Error is the classified failure produced by the request pipeline and the
// response decoders. Message is always safe to show to an end user.
type Error struct {
	Kind    Kind
	Message string

	// Status and Detail are set for KindAPI.
	Status int
	Detail string

	// Issues is set for KindValidation.
	Issues []Issue

	// Original holds diagnostic context: the raw body, the upstream error
	// document or the underlying Go error. Never shown to users.
	Original any
}

func (e *Error) Error() string {
	return e.Message
}

func (e *Error) Unwrap() error {
	if err, ok := e.Original.(error); ok {
		return err
	}
	return nil
}

// AsError extracts a *Error from err's chain.
func AsError(err error) (*Error, bool) {
	var ye *Error
	if errors.As(err, &ye) {
		return ye, true
	}
	return nil, false
}

func networkError(err error) *Error {
	msg := "Network request failed."
	if err != nil && err.Error() != "" {
		msg = err.Error()
	}
	return &Error{Kind: KindNetwork, Message: msg, Original: err}
}

func apiError(status int, detail string, original any) *Error {
	return &Error{
		Kind:     KindAPI,
		Message:  "YNAB API Error: " + detail,
		Status:   status,
		Detail:   detail,
		Original: original,
	}
}

// ParseError reports a response that was well-formed HTTP but could not be
// interpreted.
func ParseError(message string, original any) *Error {
	return &Error{Kind: KindParse, Message: message, Original: original}
}

// ValidationError reports a response whose shape did not match the expected
// envelope.
func ValidationError(issues []Issue, original any) *Error {
	return &Error{
		Kind:     KindValidation,
		Message:  "YNAB API response validation failed.",
		Issues:   issues,
		Original: original,
	}
}

// UnknownError covers conditions outside the other kinds, such as an empty
// body where one is mandatory.
func UnknownError(message string) *Error {
	return &Error{Kind: KindUnknown, Message: message}
}

func fallbackDetail(status int) string {
	return fmt.Sprintf("Request failed with status %d", status)
}
