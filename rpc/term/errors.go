package term

import (
	"errors"
	"fmt"
)

// Decode failure kinds. A *DecodeError always wraps exactly one of them.
var (
	// ErrMalformedTerm is returned when the cursor is out of range, the tag is
	// unknown, the tag is not the one the caller asked for, or a declared
	// length runs past the end of the buffer
	ErrMalformedTerm = errors.New("malformed term")
	// ErrArityMismatch is returned when a tuple has a different arity than expected
	ErrArityMismatch = errors.New("arity mismatch")
	// ErrUnexpectedAtom is returned when an atom decodes fine but has the wrong text
	ErrUnexpectedAtom = errors.New("unexpected atom")
)

// DecodeError describes where and why decoding stopped
type DecodeError struct {
	Kind   error  // one of ErrMalformedTerm, ErrArityMismatch, ErrUnexpectedAtom
	Offset int    // cursor position of the value that failed
	Detail string // human readable context (offending text, arities, ...)
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("%s at offset %d: %s", e.Kind, e.Offset, e.Detail)
}

func (e *DecodeError) Unwrap() error {
	return e.Kind
}

func malformed(offset int, format string, args ...interface{}) error {
	return &DecodeError{Kind: ErrMalformedTerm, Offset: offset, Detail: fmt.Sprintf(format, args...)}
}
