package common

import (
	"errors"
	"fmt"
)

// --------------------------------------------------------------------------
// Error Taxonomy
// --------------------------------------------------------------------------

// ErrKind is a machine-readable error category. Every failure surfaced by
// the client or daemon belongs to exactly one kind; nothing is swallowed.
type ErrKind string

const (
	// ErrKindProtocol indicates a malformed frame, an implausible length
	// field or an unknown request kind. Non-retryable: it signals a version
	// or framing mismatch, not a transient fault.
	ErrKindProtocol ErrKind = "protocol_error"

	// ErrKindConnectionLost indicates the channel closed before the response
	// arrived. Retried exactly once after an auto-start cycle.
	ErrKindConnectionLost ErrKind = "connection_lost"

	// ErrKindTimeout indicates the daemon accepted the request but no
	// response arrived within the client deadline. Never retried
	// automatically: the request may still be executing.
	ErrKindTimeout ErrKind = "timeout"

	// ErrKindDaemonUnavailable indicates no daemon is reachable and
	// auto-start failed. The write did not apply.
	ErrKindDaemonUnavailable ErrKind = "daemon_unavailable"

	// ErrKindEngine indicates the storage engine rejected a statement
	// (constraint violation, type mismatch, ...). Reported per batch
	// semantics, never fatal to the daemon.
	ErrKindEngine ErrKind = "engine_error"

	// ErrKindLifecycle indicates an install, download or integrity failure.
	// Surfaces as DaemonUnavailable to writers until resolved.
	ErrKindLifecycle ErrKind = "lifecycle_error"
)

// Error wraps an underlying error with its taxonomy kind. For engine errors
// it also carries the index of the failing statement.
type Error struct {
	Kind           ErrKind
	Message        string
	StatementIndex int // -1 unless the failure is bound to one statement
	Err            error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error { return e.Err }

// NewError creates a typed error without an underlying cause.
func NewError(kind ErrKind, msg string) *Error {
	return &Error{Kind: kind, Message: msg, StatementIndex: -1}
}

// WrapError wraps an underlying error with a taxonomy kind.
func WrapError(kind ErrKind, msg string, err error) *Error {
	return &Error{Kind: kind, Message: msg, StatementIndex: -1, Err: err}
}

// NewEngineError creates an engine error bound to the failing statement.
func NewEngineError(index int, msg string) *Error {
	return &Error{Kind: ErrKindEngine, Message: msg, StatementIndex: index}
}

// IsKind reports whether err is (or wraps) a typed error of the given kind.
func IsKind(err error, kind ErrKind) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind == kind
	}
	return false
}
