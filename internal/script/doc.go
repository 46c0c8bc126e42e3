// Package script resolves sugared values: compiler-side stand-ins for
// expressions that have no IR value of their own until the emitter decides how
// they are used (`self`, `torch`, `m.forward`, `int`, `print`, `fork`, ...).
//
// Value is a closed sum type. The capabilities AsValue, Attr, IsNone, AsTuple
// and Call are package functions that switch over every variant; variants
// without a behaviour fail with a typed *Error carrying the variant's Kind.
// The control markers (fork, annotate, getattr, isinstance) are matched by the
// emitter before generic dispatch; reaching them through a capability is an
// internal compiler error.
package script
