// Package diarcerr defines the error kinds spec.md §7 names. Every
// constructor wraps its cause with github.com/pkg/errors so a stack
// trace travels with the error back to compress()'s caller.
package diarcerr

import "github.com/pkg/errors"

// Kind discriminates the five error categories spec.md §7 names.
type Kind int

const (
	KindIO Kind = iota + 1
	KindWalk
	KindChunking
	KindObjectID
	KindInternal
)

// Error wraps a cause (or a message, for InternalError) with a Kind and
// a source location via github.com/pkg/errors.
type Error struct {
	Kind Kind
	msg  string
	err  error
}

func (e *Error) Error() string {
	if e.err != nil {
		return e.msg + ": " + e.err.Error()
	}
	return e.msg
}

func (e *Error) Unwrap() error { return e.err }

// IO wraps a filesystem or stream I/O failure.
func IO(cause error, context string) error {
	return &Error{Kind: KindIO, msg: context, err: errors.WithStack(cause)}
}

// Walk wraps a directory iteration failure.
func Walk(cause error, context string) error {
	return &Error{Kind: KindWalk, msg: context, err: errors.WithStack(cause)}
}

// Chunking wraps a failure from the content-defined chunker layer.
func Chunking(cause error, context string) error {
	return &Error{Kind: KindChunking, msg: context, err: errors.WithStack(cause)}
}

// ObjectID reports that id was referenced but does not belong to the
// writer that issued it: a programming error, never swallowed.
func ObjectID(id interface{}) error {
	return &Error{Kind: KindObjectID, msg: "archive: unknown ObjectId", err: errors.Errorf("%v", id)}
}

// Internal reports a violated invariant.
func Internal(msg string) error {
	return &Error{Kind: KindInternal, msg: msg, err: errors.WithStack(errors.New(msg))}
}

// Is reports whether err (or something it wraps) is a *Error of kind
// k, supporting errors.Is-style kind checks.
func Is(err error, k Kind) bool {
	var e *Error
	for err != nil {
		if ae, ok := err.(*Error); ok {
			e = ae
			break
		}
		u, ok := err.(interface{ Unwrap() error })
		if !ok {
			break
		}
		err = u.Unwrap()
	}
	return e != nil && e.Kind == k
}
