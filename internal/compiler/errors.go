package compiler

import (
	"fmt"

	"jitscript/internal/diag"
	"jitscript/internal/source"
)

// Error is an emitter-level failure: a name, arity or annotation problem
// found while walking a method body.
type Error struct {
	Code diag.Code
	Span source.Span
	Msg  string
}

func (e *Error) Error() string { return e.Msg }

func (e *Error) Diagnostic() diag.Diagnostic {
	return diag.NewError(e.Code, e.Span, e.Msg)
}

func errorf(code diag.Code, sp source.Span, format string, args ...any) *Error {
	return &Error{Code: code, Span: sp, Msg: fmt.Sprintf(format, args...)}
}
