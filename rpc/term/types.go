package term

import (
	"fmt"
	"strconv"
	"strings"
)

// --------------------------------------------------------------------------
// Wire Types
// --------------------------------------------------------------------------

// WireType is the tag byte that precedes every encoded value
type WireType byte

const (
	// Version is the magic byte that starts a complete external term
	Version byte = 131

	TagNewPid        WireType = 88
	TagSmallInteger  WireType = 97
	TagInteger       WireType = 98
	TagAtom          WireType = 100
	TagPid           WireType = 103
	TagSmallTuple    WireType = 104
	TagLargeTuple    WireType = 105
	TagNil           WireType = 106
	TagString        WireType = 107
	TagList          WireType = 108
	TagBinary        WireType = 109
	TagSmallAtom     WireType = 115
	TagAtomUTF8      WireType = 118
	TagSmallAtomUTF8 WireType = 119
)

const (
	maxSmallTupleSize = 255
	maxSmallAtomSize  = 255
)

// IsAtom reports whether the tag is one of the four atom encodings
func (t WireType) IsAtom() bool {
	switch t {
	case TagAtom, TagSmallAtom, TagAtomUTF8, TagSmallAtomUTF8:
		return true
	}
	return false
}

// IsTuple reports whether the tag is a small or large tuple
func (t WireType) IsTuple() bool {
	return t == TagSmallTuple || t == TagLargeTuple
}

// IsList reports whether the tag starts a list (including the empty list)
func (t WireType) IsList() bool {
	return t == TagList || t == TagNil
}

func (t WireType) String() string {
	switch t {
	case TagNewPid, TagPid:
		return "pid"
	case TagSmallInteger, TagInteger:
		return "integer"
	case TagAtom, TagSmallAtom, TagAtomUTF8, TagSmallAtomUTF8:
		return "atom"
	case TagSmallTuple:
		return "small tuple"
	case TagLargeTuple:
		return "large tuple"
	case TagNil:
		return "nil"
	case TagString:
		return "string"
	case TagList:
		return "list"
	case TagBinary:
		return "binary"
	default:
		return fmt.Sprintf("unknown(%d)", byte(t))
	}
}

// known reports whether the decoder can handle the tag at all
func (t WireType) known() bool {
	switch t {
	case TagNewPid, TagPid, TagSmallInteger, TagInteger, TagSmallTuple, TagLargeTuple,
		TagNil, TagString, TagList, TagBinary:
		return true
	}
	return t.IsAtom()
}

// --------------------------------------------------------------------------
// Decoded Terms
// --------------------------------------------------------------------------

// Term is a decoded value. The concrete type is one of Atom, Tuple, List,
// Binary, Int or Pid.
type Term interface {
	fmt.Stringer
	isTerm()
}

// Atom is a symbolic constant such as ok or not_found
type Atom string

// Tuple is a fixed arity sequence of terms
type Tuple []Term

// List is a proper list. The empty list is a List of length zero.
type List []Term

// Binary is a raw byte string
type Binary []byte

// Int is any integer that fits into 64 bits
type Int int64

// Pid identifies a process on a node
type Pid struct {
	Node     Atom
	ID       uint32
	Serial   uint32
	Creation uint32
}

func (Atom) isTerm()   {}
func (Tuple) isTerm()  {}
func (List) isTerm()   {}
func (Binary) isTerm() {}
func (Int) isTerm()    {}
func (Pid) isTerm()    {}

func (a Atom) String() string { return string(a) }

func (t Tuple) String() string { return "{" + join(t) + "}" }

func (l List) String() string { return "[" + join(l) + "]" }

func (b Binary) String() string { return "<<" + strconv.Quote(string(b)) + ">>" }

func (i Int) String() string { return strconv.FormatInt(int64(i), 10) }

func (p Pid) String() string {
	return fmt.Sprintf("<%s.%d.%d>", p.Node, p.ID, p.Serial)
}

func join(terms []Term) string {
	parts := make([]string, len(terms))
	for i, t := range terms {
		parts[i] = t.String()
	}
	return strings.Join(parts, ",")
}
