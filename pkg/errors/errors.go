// Package errors provides structured error types for mapdraw.
//
// Every error that crosses a package boundary carries a [Code], so the CLI
// can print a clean message and the HTTP API can pick a status without
// matching on strings.
//
// # Error Codes
//
//   - INVALID_*: Input validation failures
//   - MALFORMED_*: Structurally broken input data
//   - *_DEADLOCK, UNRESOLVABLE_*, *_CYCLE, ROUND_*: districting outcomes
//   - NOT_FOUND: Resource not found
//   - INTERNAL_*: Unexpected internal errors
//
// The districting outcome codes are reported, never fatal: a run always ends
// with a partition and a diagnostics record that carries these errors.
//
// # Usage
//
//	err := errors.New(errors.ErrCodeMalformedGraph, "unit %q lists unknown neighbor %q", id, nb)
//	if errors.Is(err, errors.ErrCodeMalformedGraph) {
//	    // Handle broken adjacency
//	}
//
//	// Wrap existing errors
//	err := errors.Wrap(errors.ErrCodeInvalidInput, origErr, "read graph %s", path)
package errors

import (
	"errors"
	"fmt"
)

// Code is a machine-readable error code. It is stable across releases and
// part of the HTTP API's error bodies.
type Code string

const (
	// Input validation errors
	ErrCodeInvalidInput  Code = "INVALID_INPUT"
	ErrCodeInvalidConfig Code = "INVALID_CONFIG"
	ErrCodeInvalidPath   Code = "INVALID_PATH"

	// Graph construction errors
	ErrCodeMalformedGraph Code = "MALFORMED_GRAPH"

	// Districting outcomes
	ErrCodeGrowthDeadlock     Code = "GROWTH_DEADLOCK"
	ErrCodeUnresolvableGap    Code = "UNRESOLVABLE_GAP"
	ErrCodeBalancingCycle     Code = "BALANCING_CYCLE"
	ErrCodeRoundLimitExceeded Code = "ROUND_LIMIT_EXCEEDED"
	ErrCodeOrphanCycle        Code = "ORPHAN_CYCLE"

	// Resource not found errors
	ErrCodeNotFound     Code = "NOT_FOUND"
	ErrCodeFileNotFound Code = "FILE_NOT_FOUND"

	// Internal errors
	ErrCodeInternal    Code = "INTERNAL_ERROR"
	ErrCodeUnsupported Code = "UNSUPPORTED"
)

// Outcome reports whether c describes how a districting run ended rather
// than a failure to run. Outcome codes end up in run diagnostics and are
// never returned as errors from a draw.
func (c Code) Outcome() bool {
	switch c {
	case ErrCodeGrowthDeadlock, ErrCodeUnresolvableGap, ErrCodeBalancingCycle, ErrCodeRoundLimitExceeded,
		ErrCodeOrphanCycle:
		return true
	}
	return false
}

// Error carries a Code next to a human-readable message and, optionally,
// the error that caused it.
type Error struct {
	Code    Code
	Message string
	Cause   error
}

func (e *Error) Error() string {
	msg := string(e.Code) + ": " + e.Message
	if e.Cause != nil {
		msg += ": " + e.Cause.Error()
	}
	return msg
}

func (e *Error) Unwrap() error { return e.Cause }

// New returns an Error with a formatted message.
func New(code Code, format string, args ...any) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...)}
}

// Wrap is New with a cause.
func Wrap(code Code, cause error, format string, args ...any) *Error {
	e := New(code, format, args...)
	e.Cause = cause
	return e
}

// Is reports whether the first *Error in err's chain has the given code.
func Is(err error, code Code) bool {
	return GetCode(err) == code && code != ""
}

// GetCode returns the code of the first *Error in err's chain, or "".
func GetCode(err error) Code {
	if e, ok := asError(err); ok {
		return e.Code
	}
	return ""
}

// UserMessage returns err's message without the code prefix or cause, for
// display. Errors without a code are returned as-is.
func UserMessage(err error) string {
	if e, ok := asError(err); ok {
		return e.Message
	}
	return err.Error()
}

func asError(err error) (*Error, bool) {
	var e *Error
	ok := errors.As(err, &e)
	return e, ok
}
