package term

import (
	"encoding/binary"
	"sync"
)

// initialBufferSize fits a lookup request for any reasonable key
const initialBufferSize = 256

var bufferPool = sync.Pool{
	New: func() interface{} {
		return &Buffer{buf: make([]byte, 0, initialBufferSize)}
	},
}

// Buffer is a growable write buffer for encoded terms
type Buffer struct {
	buf []byte
}

// AcquireBuffer returns an empty buffer from the pool.
// The caller owns it until Release is called.
func AcquireBuffer() *Buffer {
	b := bufferPool.Get().(*Buffer)
	b.Reset()
	return b
}

// Release returns the buffer to the pool. The buffer and any slice obtained
// from Bytes must not be used afterward.
func (b *Buffer) Release() {
	if b == nil {
		return
	}
	b.Reset()
	bufferPool.Put(b)
}

// NewLookupRequest encodes the argument list of a lookup call: a list with
// the key as its only element, terminated by the empty list
func NewLookupRequest(key []byte) *Buffer {
	b := AcquireBuffer()
	b.EncodeListHeader(1)
	b.EncodeBinary(key)
	b.EncodeEmptyList()
	return b
}

// --------------------------------------------------------------------------
// Buffer Access
// --------------------------------------------------------------------------

// Bytes returns the encoded data. The slice aliases the buffer.
func (b *Buffer) Bytes() []byte {
	return b.buf
}

// Len returns the number of encoded bytes
func (b *Buffer) Len() int {
	return len(b.buf)
}

// Reset empties the buffer but keeps the allocated memory
func (b *Buffer) Reset() {
	b.buf = b.buf[:0]
}

// --------------------------------------------------------------------------
// Encode Methods
// --------------------------------------------------------------------------

// EncodeVersion writes the version magic byte
func (b *Buffer) EncodeVersion() {
	b.buf = append(b.buf, Version)
}

// EncodeAtom writes a UTF-8 atom, using the small form when possible
func (b *Buffer) EncodeAtom(s string) {
	if len(s) <= maxSmallAtomSize {
		b.buf = append(b.buf, byte(TagSmallAtomUTF8), byte(len(s)))
	} else {
		b.buf = append(b.buf, byte(TagAtomUTF8))
		b.buf = binary.BigEndian.AppendUint16(b.buf, uint16(len(s)))
	}
	b.buf = append(b.buf, s...)
}

// EncodeInt writes an integer, using the one byte form for 0..255
func (b *Buffer) EncodeInt(n int32) {
	if n >= 0 && n <= 255 {
		b.buf = append(b.buf, byte(TagSmallInteger), byte(n))
		return
	}
	b.buf = append(b.buf, byte(TagInteger))
	b.buf = binary.BigEndian.AppendUint32(b.buf, uint32(n))
}

// EncodeTupleHeader writes the header of a tuple with n elements.
// The elements must follow.
func (b *Buffer) EncodeTupleHeader(n int) {
	if n <= maxSmallTupleSize {
		b.buf = append(b.buf, byte(TagSmallTuple), byte(n))
		return
	}
	b.buf = append(b.buf, byte(TagLargeTuple))
	b.buf = binary.BigEndian.AppendUint32(b.buf, uint32(n))
}

// EncodeListHeader writes the header of a list with n elements.
// The elements and the tail (usually EncodeEmptyList) must follow.
func (b *Buffer) EncodeListHeader(n int) {
	if n == 0 {
		b.EncodeEmptyList()
		return
	}
	b.buf = append(b.buf, byte(TagList))
	b.buf = binary.BigEndian.AppendUint32(b.buf, uint32(n))
}

// EncodeEmptyList writes the empty list, which also terminates proper lists
func (b *Buffer) EncodeEmptyList() {
	b.buf = append(b.buf, byte(TagNil))
}

// EncodeBinary writes a length prefixed byte string
func (b *Buffer) EncodeBinary(p []byte) {
	b.buf = append(b.buf, byte(TagBinary))
	b.buf = binary.BigEndian.AppendUint32(b.buf, uint32(len(p)))
	b.buf = append(b.buf, p...)
}

// EncodePid writes a process identifier
func (b *Buffer) EncodePid(p Pid) {
	b.buf = append(b.buf, byte(TagNewPid))
	b.EncodeAtom(string(p.Node))
	b.buf = binary.BigEndian.AppendUint32(b.buf, p.ID)
	b.buf = binary.BigEndian.AppendUint32(b.buf, p.Serial)
	b.buf = binary.BigEndian.AppendUint32(b.buf, p.Creation)
}

// AppendRaw copies an already encoded term into the buffer
func (b *Buffer) AppendRaw(p []byte) {
	b.buf = append(b.buf, p...)
}
