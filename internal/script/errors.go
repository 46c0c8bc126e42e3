package script

import (
	"fmt"
	"strings"

	"jitscript/internal/diag"
	"jitscript/internal/source"
	"jitscript/internal/symbols"
)

// ErrorKind classifies resolution failures.
type ErrorKind uint8

const (
	NotAValue ErrorKind = iota + 1
	AttributeNotSupported
	NotATuple
	NotCallable
	NoMatchingOverload
	InternalControlMarkerMisuse
)

func (k ErrorKind) String() string {
	switch k {
	case NotAValue:
		return "NotAValue"
	case AttributeNotSupported:
		return "AttributeNotSupported"
	case NotATuple:
		return "NotATuple"
	case NotCallable:
		return "NotCallable"
	case NoMatchingOverload:
		return "NoMatchingOverload"
	case InternalControlMarkerMisuse:
		return "InternalControlMarkerMisuse"
	}
	return fmt.Sprintf("ErrorKind(%d)", k)
}

// Code maps the kind onto its diagnostic code.
func (k ErrorKind) Code() diag.Code {
	switch k {
	case NotAValue:
		return diag.SugarNotAValue
	case AttributeNotSupported:
		return diag.SugarAttrNotSupported
	case NotATuple:
		return diag.SugarNotATuple
	case NotCallable:
		return diag.SugarNotCallable
	case NoMatchingOverload:
		return diag.SugarNoMatchingOverload
	case InternalControlMarkerMisuse:
		return diag.SugarInternalMarkerMisuse
	}
	return diag.UnknownCode
}

// Error is a located resolution failure. What is the Kind() of the value that
// failed; Symbol and Candidates are set for overload failures.
type Error struct {
	Kind       ErrorKind
	Span       source.Span
	What       string
	Symbol     symbols.Symbol
	Candidates []string
	Msg        string
	Err        error
}

func (e *Error) Error() string { return e.Msg }

func (e *Error) Unwrap() error { return e.Err }

// Internal reports whether the failure is a compiler bug rather than a user error.
func (e *Error) Internal() bool { return e.Kind == InternalControlMarkerMisuse }

// Diagnostic converts e for the reporter; candidate signatures become notes.
func (e *Error) Diagnostic() diag.Diagnostic {
	msg := e.Msg
	if i := strings.IndexByte(msg, '\n'); i >= 0 {
		msg = msg[:i]
	}
	d := diag.NewError(e.Kind.Code(), e.Span, msg)
	for _, c := range e.Candidates {
		d = d.WithNote(e.Span, "candidate: "+c)
	}
	if e.Internal() {
		d = d.WithNote(e.Span, "this is a compiler bug, please report it")
	}
	return d
}

func unsupported(kind ErrorKind, loc source.Span, v Value, format string, args ...any) *Error {
	return &Error{Kind: kind, Span: loc, What: v.Kind(), Msg: fmt.Sprintf(format, args...)}
}

func errNotAValue(loc source.Span, v Value) *Error {
	return unsupported(NotAValue, loc, v, "%s cannot be used as a value", v.Kind())
}

func errNoAttr(loc source.Span, v Value, field string) *Error {
	return unsupported(AttributeNotSupported, loc, v, "attribute lookup is not defined on %s (looking up %q)", v.Kind(), field)
}

func errNotATuple(loc source.Span, v Value) *Error {
	return unsupported(NotATuple, loc, v, "%s cannot be used as a tuple", v.Kind())
}

func errNotCallable(loc source.Span, v Value) *Error {
	return unsupported(NotCallable, loc, v, "cannot call a %s", v.Kind())
}

// errMarker: a control marker escaped the emitter's pre-dispatch.
func errMarker(loc source.Span, v Value, capability string) *Error {
	return unsupported(InternalControlMarkerMisuse, loc, v,
		"internal error: %s marker reached generic %s dispatch", v.Kind(), capability)
}
