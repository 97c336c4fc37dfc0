// Package errs defines the abstract error kinds of the core (§7) as a
// typed sentinel-wrapping error, mirroring the teacher's
// service.HTTPStatusError so callers can errors.As/errors.Is to branch
// instead of parsing messages.
package errs

import (
	"errors"
	"fmt"
)

// Kind is one of the abstract error kinds enumerated in §7.
type Kind string

const (
	ValidationFailed      Kind = "validation_failed"
	NotFound              Kind = "not_found"
	ChunkChecksumMismatch Kind = "chunk_checksum_mismatch"
	FileChecksumMismatch  Kind = "file_checksum_mismatch"
	NoChunks              Kind = "no_chunks"
	MissingChunks         Kind = "missing_chunks"
	NotAcceptingChunks    Kind = "not_accepting_chunks"
	NotReady              Kind = "not_ready"
	InconsistentState     Kind = "inconsistent_state"
	ProcessingTimeout     Kind = "processing_timeout"
	ProcessingFailed      Kind = "processing_failed"
	InternalIO            Kind = "internal_io"
)

// Error is a typed error carrying a machine-branchable kind.
type Error struct {
	Kind Kind
	Msg  string
	Err  error
}

func (e *Error) Error() string {
	if e.Msg == "" {
		return string(e.Kind)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Msg)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is lets errors.Is(err, errs.NotFound) work by comparing kinds via a
// sentinel *Error carrying only a Kind.
func (e *Error) Is(target error) bool {
	other, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Kind == other.Kind
}

// New builds an *Error of the given kind with a message.
func New(kind Kind, msg string) *Error {
	return &Error{Kind: kind, Msg: msg}
}

// Wrap builds an *Error of the given kind wrapping a cause.
func Wrap(kind Kind, msg string, err error) *Error {
	return &Error{Kind: kind, Msg: msg, Err: err}
}

// Sentinel returns an *Error usable only with errors.Is, carrying no
// message or cause.
func Sentinel(kind Kind) *Error {
	return &Error{Kind: kind}
}

// KindOf extracts the Kind of err if it is (or wraps) an *Error.
func KindOf(err error) (Kind, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind, true
	}
	return "", false
}
