package symalg

import (
	"context"
	"errors"
	"fmt"
)

// ErrorKind classifies failures surfaced by the engine.
type ErrorKind string

const (
	KindMalformed          ErrorKind = "MalformedExpression"
	KindUndefinedValue     ErrorKind = "UndefinedValue"
	KindNotDifferentiable  ErrorKind = "NotDifferentiable"
	KindComputationAborted ErrorKind = "ComputationAborted"
	KindStackExhausted     ErrorKind = "StackExhausted"
)

// Error is the typed failure returned by every fallible operation.
type Error struct {
	Kind ErrorKind
	Msg  string
	Err  error
}

func (e *Error) Error() string {
	if e.Msg == "" {
		return fmt.Sprintf("[%s]", e.Kind)
	}
	return fmt.Sprintf("[%s] %s", e.Kind, e.Msg)
}

func (e *Error) Unwrap() error { return e.Err }

// Is reports whether target is an *Error of the same kind, so the sentinels
// below can be used with errors.Is.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Kind == e.Kind
}

var (
	ErrMalformed         = &Error{Kind: KindMalformed}
	ErrUndefinedValue    = &Error{Kind: KindUndefinedValue}
	ErrNotDifferentiable = &Error{Kind: KindNotDifferentiable}
	ErrAborted           = &Error{Kind: KindComputationAborted}
	ErrStackExhausted    = &Error{Kind: KindStackExhausted}
)

// KindOf returns the kind of err, or "" when err was not produced here.
func KindOf(err error) ErrorKind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ""
}

func malformed(format string, args ...interface{}) error {
	return &Error{Kind: KindMalformed, Msg: fmt.Sprintf(format, args...)}
}

func undefinedValue(format string, args ...interface{}) error {
	return &Error{Kind: KindUndefinedValue, Msg: fmt.Sprintf(format, args...)}
}

func notDifferentiable(format string, args ...interface{}) error {
	return &Error{Kind: KindNotDifferentiable, Msg: fmt.Sprintf(format, args...)}
}

func aborted(cause error) error {
	return &Error{Kind: KindComputationAborted, Msg: "computation aborted", Err: cause}
}

// checkContext maps an observed cancellation to ErrAborted.
func checkContext(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return aborted(err)
	}
	return nil
}
