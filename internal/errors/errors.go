// Package errors contains helper functions for wrapping errors with stack traces and panic recovery.
package errors

import (
	"errors"
	"fmt"

	goerrors "github.com/go-errors/errors"
)

// As finds the first error in err's tree that matches target, and if one is found, sets
// target to that error value and returns true. Otherwise, it returns false.
func As(err error, target any) bool {
	return errors.As(err, target)
}

// Is reports whether any error in err's tree matches target.
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// Unwrap returns the result of calling the Unwrap method on err, if err's type contains
// an Unwrap method returning error. Otherwise, Unwrap returns nil.
func Unwrap(err error) error {
	return errors.Unwrap(err)
}

// New wraps the given error in an error type that contains the stack trace. If the given error
// already has a stack trace, it is used directly. If the given error is nil, returns nil.
func New(err error) error {
	if err == nil {
		return nil
	}

	return goerrors.Wrap(err, 1)
}

// Errorf creates a new error and wraps it in an error type that contains the stack trace.
func Errorf(message string, args ...any) error {
	err := fmt.Errorf(message, args...)
	return goerrors.Wrap(err, 1)
}

// ErrorWithExitCode is a custom error that is used to specify the app exit code.
type ErrorWithExitCode struct {
	Err      error
	ExitCode int
}

func (err ErrorWithExitCode) Error() string {
	return err.Err.Error()
}

func (err ErrorWithExitCode) Unwrap() error {
	return err.Err
}

// StackTrace returns the callstack formatted the same way that go does in runtime/debug.Stack().
func StackTrace(err error) string {
	if err == nil {
		return ""
	}

	goerr := new(goerrors.Error)
	if !As(err, &goerr) {
		return ""
	}

	return string(goerr.Stack())
}

// Recover tries to recover from panics, and if it succeeds, calls the given onPanic function with
// an error that explains the cause of the panic. This function should only be called from a defer
// statement.
func Recover(onPanic func(cause error)) {
	if rec := recover(); rec != nil {
		err, isError := rec.(error)
		if !isError {
			err = fmt.Errorf("%v", rec)
		}

		onPanic(New(err))
	}
}
