// Package apperrors defines the error taxonomy for the query pipeline.
// Every failure that crosses the caller-facing API is one of these kinds,
// carrying a short user-displayable message alongside the wrapped cause.
package apperrors

import (
	"errors"
	"fmt"
)

// Kind classifies pipeline failures.
type Kind string

const (
	// KindConnectivity means the underlying store could not be reached.
	KindConnectivity Kind = "connectivity"
	// KindQueryExecution means the store rejected a generated SQL statement.
	KindQueryExecution Kind = "query_execution"
	// KindGeneration means the language model call failed or returned
	// unusable output.
	KindGeneration Kind = "generation"
	// KindParse means a structured-data block could not be parsed. Parse
	// errors never reach users; the kind exists for internal logging.
	KindParse Kind = "parse"
)

// Error is a structured pipeline error. UserMessage is safe to surface at
// the caller boundary; Cause keeps the full detail for logs.
type Error struct {
	Kind        Kind
	UserMessage string
	SQL         string // failing statement, when applicable
	Cause       error
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.UserMessage, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.UserMessage)
}

// Unwrap returns the underlying cause for errors.Is/As.
func (e *Error) Unwrap() error {
	return e.Cause
}

// Connectivity wraps a failure to reach the underlying store.
func Connectivity(cause error) *Error {
	return &Error{
		Kind:        KindConnectivity,
		UserMessage: "The database is currently unreachable. Please try again shortly.",
		Cause:       cause,
	}
}

// QueryExecution wraps a statement rejected by the store. The original SQL
// is retained for display and debugging.
func QueryExecution(sql string, cause error) *Error {
	return &Error{
		Kind:        KindQueryExecution,
		UserMessage: "The generated query could not be run against the database.",
		SQL:         sql,
		Cause:       cause,
	}
}

// Generation wraps a failed or unusable language-model invocation.
func Generation(cause error) *Error {
	return &Error{
		Kind:        KindGeneration,
		UserMessage: "Sorry, the question could not be processed. Please try rephrasing it.",
		Cause:       cause,
	}
}

// Parse wraps a malformed structured-data payload.
func Parse(cause error) *Error {
	return &Error{
		Kind:        KindParse,
		UserMessage: "The response could not be fully interpreted.",
		Cause:       cause,
	}
}

// KindOf reports the Kind of err if it is (or wraps) an *Error.
func KindOf(err error) (Kind, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind, true
	}
	return "", false
}

// UserMessage extracts the user-displayable message from err, falling back
// to a generic message so raw error detail never leaks to callers.
func UserMessage(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.UserMessage
	}
	return "Something went wrong while processing your question. Please try again."
}
