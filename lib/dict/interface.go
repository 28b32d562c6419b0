package dict

import (
	"fmt"
)

// --------------------------------------------------------------------------
// Interface Definition
// --------------------------------------------------------------------------

// IDict is the generic interface of a read-only lookup table.
type IDict interface {
	// Lookup returns the value for key. found is false if the key does not exist.
	// A non-nil err is a *Error, RetCRetry means the lookup may succeed later.
	Lookup(key string) (value string, found bool, err error)
	// Name returns the "type:name" the map was opened with
	Name() string
	// Close releases all resources of the map
	Close() error
}

// --------------------------------------------------------------------------
// Open Mode and Flags
// --------------------------------------------------------------------------

// OpenMode is the requested access mode
type OpenMode int

const (
	ReadOnly OpenMode = iota
	WriteOnly
	ReadWrite
)

func (m OpenMode) String() string {
	switch m {
	case ReadOnly:
		return "read-only"
	case WriteOnly:
		return "write-only"
	case ReadWrite:
		return "read-write"
	default:
		return fmt.Sprintf("mode(%d)", int(m))
	}
}

// Flags modify the behaviour of an opened map
type Flags uint32

const (
	// FlagFoldFix lowercases keys before lookup
	FlagFoldFix Flags = 1 << iota
)

// --------------------------------------------------------------------------
// Custom Error Type
// --------------------------------------------------------------------------

// Error is a custom error type that wraps a return code (of type RetCode)
// and an error message.
type Error struct {
	Code RetCode // The return code
	Msg  string  // The error message.
}

// Error implements the error interface.
func (e *Error) Error() string {
	return fmt.Sprintf("dict error (%s): %s", e.Code, e.Msg)
}

// NewError creates a new Error with the given code and message.
func NewError(code RetCode, msg string) *Error {
	return &Error{
		Code: code,
		Msg:  msg,
	}
}

// IsRetry reports whether err is a *Error with RetCRetry
func IsRetry(err error) bool {
	e, ok := err.(*Error)
	return ok && e.Code == RetCRetry
}

// --------------------------------------------------------------------------
// Return Codes
// --------------------------------------------------------------------------

type RetCode uint64

const (
	RetCSuccess RetCode = iota // 0: Lookup executed successfully.
	RetCRetry                  // 1: Lookup failed temporarily, try again later.
	RetCConfig                 // 2: The map is misconfigured or was opened in an unsupported mode.
)

func (c RetCode) String() string {
	switch c {
	case RetCSuccess:
		return "success"
	case RetCRetry:
		return "retry"
	case RetCConfig:
		return "config"
	default:
		return "unknown"
	}
}
