// Package apperr defines the error taxonomy shared across ctxsearch's core
// and its transports. Every boundary (HTTP, MCP, CLI) translates an *Error
// to its own surface instead of re-parsing error strings.
package apperr

import (
	"errors"
	"fmt"
)

// Kind identifies the behavioral category of an error, independent of the
// Go type that produced it.
type Kind string

const (
	// ConfigErrorKind indicates missing or invalid settings; fatal at startup.
	ConfigErrorKind Kind = "config_error"
	// NotFoundKind indicates a collection/framework/project is not indexed.
	NotFoundKind Kind = "not_found"
	// ConflictKind indicates a collection exists with an incompatible mode.
	ConflictKind Kind = "conflict"
	// ReadErrorKind indicates a source was unreachable or malformed.
	ReadErrorKind Kind = "read_error"
	// BackendErrorKind indicates a vector store, embedder, LLM, or cache failure.
	BackendErrorKind Kind = "backend_error"
	// ShutdownErrorKind indicates a resource was accessed after teardown.
	ShutdownErrorKind Kind = "shutdown_error"
)

// Error is the result-variant error type used at every component boundary.
type Error struct {
	Kind    Kind
	Message string
	Cause   error

	// Retries is a retry count for BackendErrorKind errors. Nothing in this
	// module sets it: the LLM clients make a single attempt per call, so it
	// is zero on the errors they produce.
	Retries int
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error { return e.Cause }

// New builds an *Error of the given kind.
func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

// Wrap builds an *Error of the given kind around an existing error.
func Wrap(kind Kind, message string, cause error) *Error {
	return &Error{Kind: kind, Message: message, Cause: cause}
}

// NotFound is a convenience constructor for the common "<thing> not indexed" case.
func NotFound(message string) *Error {
	return &Error{Kind: NotFoundKind, Message: message}
}

// KindOf extracts the Kind from err, walking the Unwrap chain. Returns
// BackendErrorKind for unrecognized errors, matching the spec's policy that
// the core never swallows an error it did not cause.
func KindOf(err error) Kind {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Kind
	}
	return BackendErrorKind
}

// Is reports whether err (or something it wraps) carries the given Kind.
func Is(err error, kind Kind) bool {
	return KindOf(err) == kind
}

// ToHTTPStatus maps an error's Kind to the HTTP status the httpapi
// transport responds with. nil maps to 200, handled by callers before
// reaching here in practice.
func ToHTTPStatus(err error) int {
	switch KindOf(err) {
	case ConfigErrorKind:
		return 500
	case NotFoundKind:
		return 404
	case ConflictKind:
		return 409
	case ReadErrorKind:
		return 400
	case ShutdownErrorKind:
		return 503
	case BackendErrorKind:
		return 502
	default:
		return 500
	}
}

// ToExitCode maps an error's Kind to the CLI process exit code. Any
// non-nil error exits 1; this exists for symmetry with ToHTTPStatus and
// to give each transport a single, consistent translation point.
func ToExitCode(err error) int {
	if err == nil {
		return 0
	}
	return 1
}
