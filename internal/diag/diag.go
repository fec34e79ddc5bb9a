// Package diag implements the compiler's error taxonomy: a single typed
// diagnostic that aborts a compilation, instead of a raw Go panic trace.
package diag

import (
	"fmt"

	"github.com/pkg/errors"
)

// Kind is one of the fixed diagnostic categories the compiler can raise.
type Kind int

const (
	SyntaxError Kind = iota
	TypeError
	UnsupportedConstruct
	MissingSymbol
	NoFreeRegisters
	InvalidOperand
)

func (k Kind) String() string {
	switch k {
	case SyntaxError:
		return "syntax error"
	case TypeError:
		return "type error"
	case UnsupportedConstruct:
		return "unsupported construct"
	case MissingSymbol:
		return "missing symbol"
	case NoFreeRegisters:
		return "no free registers"
	case InvalidOperand:
		return "invalid operand"
	default:
		return "unknown error"
	}
}

// Error is the single diagnostic value that aborts a compilation. Op names
// the failing operation or node kind; Detail carries additional context.
type Error struct {
	Kind   Kind
	Op     string
	Detail string
	cause  error
}

// New constructs a diagnostic with no underlying cause.
func New(kind Kind, op, detail string) *Error {
	return &Error{Kind: kind, Op: op, Detail: detail}
}

// Wrap annotates an error from a lower layer (e.g. os.ReadFile) as a
// diagnostic of the given kind, preserving a stack trace via pkg/errors.
func Wrap(cause error, kind Kind, op string) *Error {
	return &Error{Kind: kind, Op: op, Detail: cause.Error(), cause: errors.WithStack(cause)}
}

func (e *Error) Error() string {
	if e.Detail == "" {
		return fmt.Sprintf("%s: %s", e.Kind, e.Op)
	}
	return fmt.Sprintf("%s: %s: %s", e.Kind, e.Op, e.Detail)
}

// Unwrap exposes the underlying cause, if any, to errors.Is/errors.As.
func (e *Error) Unwrap() error { return e.cause }
