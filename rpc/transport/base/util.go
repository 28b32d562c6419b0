package base

import (
	"bufio"
	"errors"
	"fmt"
	"github.com/ValentinKolb/erlmap/rpc/common"
	"io"
	"net"
	"strconv"
)

// ErrNetstring is returned for input that is not a valid netstring
var ErrNetstring = errors.New("invalid netstring")

// maxLengthDigits is the number of digits of common.MaxMessageSize
var maxLengthDigits = len(strconv.Itoa(common.MaxMessageSize))

// writeNetstring writes data with the format:
// - decimal length
// - ':'
// - N bytes: data payload
// - ','
func writeNetstring(conn net.Conn, data []byte) error {
	header := strconv.AppendInt(make([]byte, 0, maxLengthDigits+1), int64(len(data)), 10)
	header = append(header, ':')

	b := net.Buffers{header, data, []byte{','}}
	_, err := b.WriteTo(conn)
	return err
}

// readNetstring reads one netstring into buf.
// If the buffer is too small, it will allocate a new temporary buffer for the data.
// io.EOF is only returned if the connection was closed before the first byte.
func readNetstring(r *bufio.Reader, buf []byte) ([]byte, error) {
	length := 0
	for digits := 0; ; digits++ {
		c, err := r.ReadByte()
		if err != nil {
			if digits > 0 && err == io.EOF {
				err = io.ErrUnexpectedEOF
			}
			return nil, err
		}
		if c == ':' && digits > 0 {
			break
		}
		if c < '0' || c > '9' || digits == maxLengthDigits {
			return nil, fmt.Errorf("%w: bad length byte %q", ErrNetstring, c)
		}
		length = length*10 + int(c-'0')
	}
	if length > common.MaxMessageSize {
		return nil, fmt.Errorf("%w: length %d exceeds %d", ErrNetstring, length, common.MaxMessageSize)
	}

	// Check if buffer is large enough for data and the trailing comma
	if cap(buf) < length+1 {
		buf = make([]byte, length+1)
	}
	buf = buf[:length+1]

	if _, err := io.ReadFull(r, buf); err != nil {
		if err == io.EOF {
			err = io.ErrUnexpectedEOF
		}
		return nil, err
	}
	if buf[length] != ',' {
		return nil, fmt.Errorf("%w: missing trailing comma", ErrNetstring)
	}
	return buf[:length], nil
}
