package term

import (
	"encoding/binary"
	"fmt"
)

// MaxDepth is the deepest nesting of tuples and lists that Decode accepts
const MaxDepth = 512

// Decoder is a read cursor over an encoded reply.
// On success every method advances the cursor past the value it consumed;
// after a failure the cursor position is unspecified and decoding must stop.
type Decoder struct {
	buf []byte
	pos int
}

// NewDecoder creates a decoder positioned at the start of buf
func NewDecoder(buf []byte) *Decoder {
	return &Decoder{buf: buf}
}

// Pos returns the current cursor offset
func (d *Decoder) Pos() int {
	return d.pos
}

// Remaining returns the bytes after the cursor. The slice aliases the buffer.
func (d *Decoder) Remaining() []byte {
	if d.pos >= len(d.buf) {
		return nil
	}
	return d.buf[d.pos:]
}

// --------------------------------------------------------------------------
// Primitive Operations
// --------------------------------------------------------------------------

// PeekType returns the tag of the next value together with its declared size
// without consuming anything. The size is the text length for atoms, the
// arity for tuples and lists, the byte length for binaries and strings, and
// zero for everything else.
func (d *Decoder) PeekType() (WireType, int, error) {
	if d.pos < 0 || d.pos >= len(d.buf) {
		return 0, 0, malformed(d.pos, "cursor out of range (buffer size %d)", len(d.buf))
	}
	tag := WireType(d.buf[d.pos])
	if !tag.known() {
		return 0, 0, malformed(d.pos, "unknown tag %d", byte(tag))
	}

	var size int
	var err error
	switch tag {
	case TagSmallAtom, TagSmallAtomUTF8, TagSmallTuple:
		size, err = d.peekUint(1)
	case TagAtom, TagAtomUTF8, TagString:
		size, err = d.peekUint(2)
	case TagLargeTuple, TagList, TagBinary:
		size, err = d.peekUint(4)
	}
	if err != nil {
		return 0, 0, err
	}
	return tag, size, nil
}

// DecodeAtom consumes an atom and checks that its text equals expected.
// A well-formed atom with different text fails with ErrUnexpectedAtom.
func (d *Decoder) DecodeAtom(expected string) error {
	start := d.pos
	text, err := d.ReadAtom()
	if err != nil {
		return err
	}
	if text != expected {
		return &DecodeError{
			Kind:   ErrUnexpectedAtom,
			Offset: start,
			Detail: fmt.Sprintf("bad atom: %s (expected %s)", text, expected),
		}
	}
	return nil
}

// DecodeTupleHeader consumes a tuple header and checks its arity
func (d *Decoder) DecodeTupleHeader(expected int) error {
	start := d.pos
	arity, err := d.ReadTupleHeader()
	if err != nil {
		return err
	}
	if arity != expected {
		return &DecodeError{
			Kind:   ErrArityMismatch,
			Offset: start,
			Detail: fmt.Sprintf("bad tuple arity: got %d, expected %d", arity, expected),
		}
	}
	return nil
}

// DecodeListHeader consumes a list header and returns the declared element
// count. The empty list decodes as a list header with arity zero.
func (d *Decoder) DecodeListHeader() (int, error) {
	tag, size, err := d.PeekType()
	if err != nil {
		return 0, err
	}
	switch tag {
	case TagNil:
		d.pos++
		return 0, nil
	case TagList:
		// every element needs at least one byte
		if size < 0 || size > len(d.buf)-d.pos-5 {
			return 0, malformed(d.pos, "list arity %d exceeds remaining %d bytes", size, len(d.buf)-d.pos-5)
		}
		d.pos += 5
		return size, nil
	default:
		return 0, malformed(d.pos, "expected list, got %s", tag)
	}
}

// DecodeBinary consumes a byte string and returns a copy that does not alias
// the decoder's buffer. The copy has one spare byte of capacity.
func (d *Decoder) DecodeBinary() ([]byte, error) {
	tag, size, err := d.PeekType()
	if err != nil {
		return nil, err
	}
	if tag != TagBinary {
		return nil, malformed(d.pos, "expected binary, got %s", tag)
	}
	data, err := d.take(5, size)
	if err != nil {
		return nil, err
	}
	out := make([]byte, size, size+1)
	copy(out, data)
	return out, nil
}

// --------------------------------------------------------------------------
// Additional Operations
// --------------------------------------------------------------------------

// DecodeVersion consumes the version magic byte
func (d *Decoder) DecodeVersion() error {
	if d.pos >= len(d.buf) {
		return malformed(d.pos, "missing version byte")
	}
	if d.buf[d.pos] != Version {
		return malformed(d.pos, "bad version byte %d", d.buf[d.pos])
	}
	d.pos++
	return nil
}

// ReadAtom consumes an atom of any encoding and returns its text
func (d *Decoder) ReadAtom() (string, error) {
	tag, size, err := d.PeekType()
	if err != nil {
		return "", err
	}
	if !tag.IsAtom() {
		return "", malformed(d.pos, "expected atom, got %s", tag)
	}
	header := 3
	if tag == TagSmallAtom || tag == TagSmallAtomUTF8 {
		header = 2
	}
	data, err := d.take(header, size)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// ReadTupleHeader consumes a small or large tuple header and returns its arity
func (d *Decoder) ReadTupleHeader() (int, error) {
	tag, size, err := d.PeekType()
	if err != nil {
		return 0, err
	}
	switch tag {
	case TagSmallTuple:
		d.pos += 2
	case TagLargeTuple:
		d.pos += 5
	default:
		return 0, malformed(d.pos, "expected tuple, got %s", tag)
	}
	if size < 0 {
		return 0, malformed(d.pos, "tuple arity %d out of range", size)
	}
	return size, nil
}

// DecodeInt consumes a small integer or a 32 bit integer
func (d *Decoder) DecodeInt() (int64, error) {
	tag, _, err := d.PeekType()
	if err != nil {
		return 0, err
	}
	switch tag {
	case TagSmallInteger:
		data, err := d.take(1, 1)
		if err != nil {
			return 0, err
		}
		return int64(data[0]), nil
	case TagInteger:
		data, err := d.take(1, 4)
		if err != nil {
			return 0, err
		}
		return int64(int32(binary.BigEndian.Uint32(data))), nil
	default:
		return 0, malformed(d.pos, "expected integer, got %s", tag)
	}
}

// DecodePid consumes a process identifier in the old or the new encoding
func (d *Decoder) DecodePid() (Pid, error) {
	tag, _, err := d.PeekType()
	if err != nil {
		return Pid{}, err
	}
	if tag != TagNewPid && tag != TagPid {
		return Pid{}, malformed(d.pos, "expected pid, got %s", tag)
	}
	d.pos++

	node, err := d.ReadAtom()
	if err != nil {
		return Pid{}, err
	}
	creationSize := 4
	if tag == TagPid {
		creationSize = 1
	}
	data, err := d.take(0, 8+creationSize)
	if err != nil {
		return Pid{}, err
	}
	pid := Pid{
		Node:   Atom(node),
		ID:     binary.BigEndian.Uint32(data[0:4]),
		Serial: binary.BigEndian.Uint32(data[4:8]),
	}
	if creationSize == 4 {
		pid.Creation = binary.BigEndian.Uint32(data[8:12])
	} else {
		pid.Creation = uint32(data[8])
	}
	return pid, nil
}

// Decode consumes the next value whatever its type and returns it as a Term.
// Values nested deeper than MaxDepth fail with ErrMalformedTerm.
func (d *Decoder) Decode() (Term, error) {
	return d.decode(0)
}

// decode decodes the next value at the given nesting depth
func (d *Decoder) decode(depth int) (Term, error) {
	if depth > MaxDepth {
		return nil, malformed(d.pos, "term nested deeper than %d", MaxDepth)
	}
	tag, size, err := d.PeekType()
	if err != nil {
		return nil, err
	}

	switch {
	case tag.IsAtom():
		text, err := d.ReadAtom()
		return Atom(text), err

	case tag.IsTuple():
		if _, err := d.ReadTupleHeader(); err != nil {
			return nil, err
		}
		elems, err := d.decodeElements(size, depth+1)
		if err != nil {
			return nil, err
		}
		return Tuple(elems), nil

	case tag.IsList():
		start := d.pos
		arity, err := d.DecodeListHeader()
		if err != nil {
			return nil, err
		}
		if arity == 0 {
			return List{}, nil
		}
		elems, err := d.decodeElements(arity, depth+1)
		if err != nil {
			return nil, err
		}
		if tail, _, err := d.PeekType(); err != nil || tail != TagNil {
			return nil, malformed(start, "improper list")
		}
		d.pos++
		return List(elems), nil

	case tag == TagString:
		data, err := d.take(3, size)
		if err != nil {
			return nil, err
		}
		elems := make(List, len(data))
		for i, c := range data {
			elems[i] = Int(c)
		}
		return elems, nil

	case tag == TagBinary:
		data, err := d.DecodeBinary()
		return Binary(data), err

	case tag == TagSmallInteger || tag == TagInteger:
		n, err := d.DecodeInt()
		return Int(n), err

	default:
		return d.DecodePid()
	}
}

// Skip consumes the next value without returning it
func (d *Decoder) Skip() error {
	_, err := d.Decode()
	return err
}

// --------------------------------------------------------------------------
// Helper Methods
// --------------------------------------------------------------------------

// decodeElements decodes n consecutive values at the given depth
func (d *Decoder) decodeElements(n, depth int) ([]Term, error) {
	if n > len(d.buf)-d.pos {
		return nil, malformed(d.pos, "arity %d exceeds remaining %d bytes", n, len(d.buf)-d.pos)
	}
	elems := make([]Term, 0, n)
	for i := 0; i < n; i++ {
		t, err := d.decode(depth)
		if err != nil {
			return nil, err
		}
		elems = append(elems, t)
	}
	return elems, nil
}

// peekUint reads an n byte big endian length directly after the tag
func (d *Decoder) peekUint(n int) (int, error) {
	start := d.pos + 1
	if start+n > len(d.buf) {
		return 0, malformed(d.pos, "truncated %s header", WireType(d.buf[d.pos]))
	}
	switch n {
	case 1:
		return int(d.buf[start]), nil
	case 2:
		return int(binary.BigEndian.Uint16(d.buf[start:])), nil
	default:
		size := int(binary.BigEndian.Uint32(d.buf[start:]))
		if size < 0 {
			return 0, malformed(d.pos, "declared size %d out of range", uint32(size))
		}
		return size, nil
	}
}

// take skips a header of the given size and consumes size bytes of payload
func (d *Decoder) take(header, size int) ([]byte, error) {
	start := d.pos + header
	if size < 0 || start+size > len(d.buf) || start+size < start {
		return nil, malformed(d.pos, "declared size %d exceeds buffer", size)
	}
	d.pos = start + size
	return d.buf[start:d.pos], nil
}
