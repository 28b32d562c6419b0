package client

import (
	"errors"
	"fmt"
	"github.com/ValentinKolb/erlmap/rpc/term"
	"strings"
)

// interpretResponse classifies a reply term. Any decode failure is logged
// with its details and becomes a RetryableError, partial results are dropped.
func interpretResponse(resp []byte, key string, assembler ResultAssembler, limit int) LookupOutcome {
	d := term.NewDecoder(resp)

	wireType, _, err := d.PeekType()
	if err != nil {
		Logger.Warningf("cannot get response type: %v", err)
		return retry(err)
	}

	switch {
	case wireType.IsAtom():
		if err := d.DecodeAtom("not_found"); err != nil {
			logDecodeError("atom", err)
			return retry(err)
		}
		return notFound()

	case wireType.IsTuple():
		if err := d.DecodeTupleHeader(2); err != nil {
			logDecodeError("tuple", err)
			return retry(err)
		}
		if err := d.DecodeAtom("ok"); err != nil {
			logDecodeError("atom", err)
			return retry(err)
		}
		value, err := decodeBinaryList(d, key, assembler, limit)
		if err != nil {
			return retry(err)
		}
		return found(value)

	default:
		logUnexpected(resp)
		return retry(fmt.Errorf("%w: outer type %s", ErrUnexpectedResponse, wireType))
	}
}

// decodeBinaryList decodes [Binary, ...] and feeds each element to the assembler
func decodeBinaryList(d *term.Decoder, key string, assembler ResultAssembler, limit int) (string, error) {
	arity, err := d.DecodeListHeader()
	if err != nil {
		Logger.Warningf("cannot decode response list: %v", err)
		return "", err
	}
	if arity == 0 {
		Logger.Warningf("found alias with no destinations")
		return "", fmt.Errorf("%w: empty destination list", ErrUnexpectedResponse)
	}
	if limit > 0 && arity > limit {
		Logger.Warningf("%s: expansion limit exceeded (%d values, limit %d)", key, arity, limit)
		return "", fmt.Errorf("%w: %d values exceed expansion limit %d", ErrUnexpectedResponse, arity, limit)
	}

	var result strings.Builder
	for i := 0; i < arity; i++ {
		value, err := d.DecodeBinary()
		if err != nil {
			Logger.Warningf("cannot decode destination %d of %d: %v", i+1, arity, err)
			return "", err
		}
		assembler.Expand(&result, string(value), key)
	}
	return result.String(), nil
}

func logDecodeError(what string, err error) {
	switch {
	case errors.Is(err, term.ErrUnexpectedAtom), errors.Is(err, term.ErrArityMismatch):
		// the detail already names the offending atom or arity
		Logger.Warningf("rejected response: %v", err)
	default:
		Logger.Warningf("cannot decode %s: %v", what, err)
	}
}

// logUnexpected logs the whole reply term, as far as it can be decoded
func logUnexpected(resp []byte) {
	t, err := term.NewDecoder(resp).Decode()
	if err != nil {
		Logger.Warningf("unexpected response type (undecodable: %v)", err)
		return
	}
	Logger.Warningf("unexpected response type: %s", t)
}
