// Package errors implements the Go-side error types of rhoc (spec.md §7):
// FatalError for internal, non-catchable failures, and CompileError for
// the compiler. User-catchable exceptions are not defined here; they are
// values.Value instances tagged TagExc (see the values package).
package errors

import "fmt"

// FatalErrorKind enumerates the internal failure kinds of spec.md §7.
type FatalErrorKind string

const (
	InvalidBytecode               FatalErrorKind = "invalid bytecode"
	UnboundVariable                FatalErrorKind = "unbound variable"
	InvalidFileSignature            FatalErrorKind = "invalid file signature"
	DivisionByZero                  FatalErrorKind = "division by zero"
	MultithreadingNotSupported      FatalErrorKind = "multithreading not supported"
	NotFound                        FatalErrorKind = "not found"
)

// FatalError aborts the current frame with a traceback; it is never
// catchable by user try/catch (spec.md §7).
type FatalError struct {
	Kind    FatalErrorKind
	Message string
}

func (e *FatalError) Error() string {
	if e.Message == "" {
		return string(e.Kind)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func NewFatal(kind FatalErrorKind, format string, args ...interface{}) *FatalError {
	return &FatalError{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// CompileError is raised by the compiler (C3) for statically-detectable
// mistakes, such as an `export global` of an unbound name (SPEC_FULL §12).
type CompileError struct {
	Message string
	Line    int
}

func (e *CompileError) Error() string {
	return fmt.Sprintf("compile error at line %d: %s", e.Line, e.Message)
}
