// Package dberrors defines the typed error vocabulary shared by every layer
// of the storage and execution engine. Callers several layers removed from
// where an error originated can still recover its Kind with KindOf (which
// reports the innermost Kind; errors.As finds the outermost *Error), the
// same way the engine's own boundaries (BufferPool, LockManager,
// operators) need to distinguish "retry after abort" from "programmer error"
// from "this record genuinely doesn't exist".
package dberrors

import (
	"errors"
	"fmt"
)

// Kind classifies the failure so a caller can react without string-matching
// the message.
type Kind int

const (
	// Unknown is the zero value; it should never appear on an error actually
	// constructed through this package.
	Unknown Kind = iota

	// InvalidArgument marks malformed input — a programmer error at the call
	// site (nil pointer, out-of-range index, wrong field type).
	InvalidArgument

	// NotFound marks a lookup (catalog table, schema field) that found
	// nothing.
	NotFound

	// DbError marks an unrecoverable local condition: a full page on insert,
	// a missing slot on delete, or no clean page available to evict under
	// NO-STEAL.
	DbError

	// IoError marks a file read/write failure. The BufferPool returns these
	// to its callers unchanged; it does not convert them to DbError.
	IoError

	// TransactionAborted marks a lock-acquisition timeout. The holder of
	// this error must call TransactionComplete(tid, false) and propagate.
	TransactionAborted

	// InvalidState marks iterator misuse: Next before Open, Rewind before
	// ever Opening, or any call after Close.
	InvalidState
)

func (k Kind) String() string {
	switch k {
	case InvalidArgument:
		return "invalid_argument"
	case NotFound:
		return "not_found"
	case DbError:
		return "db_error"
	case IoError:
		return "io_error"
	case TransactionAborted:
		return "transaction_aborted"
	case InvalidState:
		return "invalid_state"
	default:
		return "unknown"
	}
}

// Error is the concrete error type every exported function in this module
// returns for a classified failure. Op names the operation that failed
// ("BufferPool.GetPage", "HeapPage.InsertTuple") so a log line built from
// the error alone is still useful.
type Error struct {
	Kind Kind
	Op   string
	Err  error
}

func (e *Error) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s: %s", e.Op, e.Kind)
	}
	return fmt.Sprintf("%s: %s: %v", e.Op, e.Kind, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// New constructs a classified error with no underlying cause.
func New(kind Kind, op, msg string) error {
	return &Error{Kind: kind, Op: op, Err: errors.New(msg)}
}

// Wrap classifies an existing error, preserving it for errors.Is/As and for
// %w formatting further up the call stack.
func Wrap(kind Kind, op string, err error) error {
	if err == nil {
		return nil
	}
	return &Error{Kind: kind, Op: op, Err: err}
}

// KindOf walks the error chain and returns the Kind of the innermost
// *Error found, or Unknown if none is present. Wrapping a classified error
// with fmt.Errorf("...: %w", err) anywhere up the stack does not lose the
// original Kind — KindOf still finds it.
func KindOf(err error) Kind {
	var innermost *Error
	for err != nil {
		if e, ok := err.(*Error); ok {
			innermost = e
		}
		err = errors.Unwrap(err)
	}
	if innermost == nil {
		return Unknown
	}
	return innermost.Kind
}

// Is reports whether err's innermost classified error has the given Kind.
func Is(err error, kind Kind) bool {
	return KindOf(err) == kind
}
