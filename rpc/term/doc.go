// Package term implements the subset of the Erlang external term format that
// the lookup client and the distribution transport speak.
//
// The package focuses on:
//   - Encoding requests into pooled, growable wire buffers
//   - Decoding replies with exactly one type check per primitive
//   - Reporting decode failures as typed errors instead of guessing
//
// Key Components:
//
//   - Buffer: A growable write buffer with one encode method per wire type.
//     Buffers are pooled; AcquireBuffer hands one out and Release returns it.
//     NewLookupRequest builds the argument list of a lookup call: [<<Key>>].
//
//   - Decoder: A read cursor over a reply. PeekType inspects the next tag
//     without consuming it; DecodeAtom, DecodeTupleHeader, DecodeListHeader
//     and DecodeBinary consume one value each and fail with a *DecodeError
//     whose Kind is ErrMalformedTerm, ErrArityMismatch or ErrUnexpectedAtom.
//
//   - Term: A tagged variant (Atom, Tuple, List, Binary, Int, Pid) produced by
//     Decoder.Decode for values whose shape is not known in advance, such as
//     distribution control messages or replies that have to be logged.
//
// Encoded values never carry the version magic byte unless EncodeVersion is
// called explicitly. The transport adds it when a term becomes a distribution
// message, and strips it from replies before they reach the Decoder.
package term
