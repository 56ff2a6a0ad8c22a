// Package apperr defines the error kinds surfaced by indexing and search.
package apperr

import (
	"errors"
	"fmt"
)

// Kind classifies an error by the layer that produced it.
type Kind int

const (
	// IO is an unreadable file, permission problem, or failed directory walk.
	IO Kind = iota + 1
	// Decode means file content does not match its claimed media type.
	Decode
	// Label means the labeler was unavailable or refused to label a file.
	Label
	// Provider is a network, auth, rate-limit, or malformed-response failure from the embedding service.
	Provider
	// Store is a read/write failure, dimension mismatch, or corruption in the index store.
	Store
	// Config means a required setting is missing or invalid.
	Config
)

func (k Kind) String() string {
	switch k {
	case IO:
		return "io"
	case Decode:
		return "decode"
	case Label:
		return "label"
	case Provider:
		return "provider"
	case Store:
		return "store"
	case Config:
		return "config"
	default:
		return "unknown"
	}
}

// Error is a Kind-tagged error. Path is empty when the failure is not tied to one file.
type Error struct {
	Kind Kind
	Op   string
	Path string
	Err  error
}

// New returns an *Error wrapping err.
func New(kind Kind, op, path string, err error) *Error {
	return &Error{Kind: kind, Op: op, Path: path, Err: err}
}

// Errorf is New with a formatted cause.
func Errorf(kind Kind, op, path, format string, args ...interface{}) *Error {
	return New(kind, op, path, fmt.Errorf(format, args...))
}

func (e *Error) Error() string {
	msg := e.Kind.String() + " error"
	if e.Op != "" {
		msg += ": " + e.Op
	}
	if e.Path != "" {
		msg += " " + e.Path
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *Error) Unwrap() error { return e.Err }

// Is reports whether target is an *Error of the same kind with no cause of its own,
// so errors.Is(err, &apperr.Error{Kind: apperr.Store}) matches any store error.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Err == nil && t.Kind == e.Kind
}

// KindOf returns the kind of the first *Error in err's chain.
func KindOf(err error) (Kind, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind, true
	}
	return 0, false
}

// Is reports whether err carries the given kind.
func Is(err error, kind Kind) bool {
	k, ok := KindOf(err)
	return ok && k == kind
}
