package dist

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"net"
	"strconv"
	"time"
)

const (
	epmdPortPlease2Req = 122
	epmdPort2Resp      = 119
)

// ErrNodeNotRegistered is returned when EPMD does not know the node name
var ErrNodeNotRegistered = errors.New("node not registered with epmd")

// lookupPort asks the EPMD on host for the distribution port of alive
func lookupPort(host, alive string, epmdPort int, timeout time.Duration) (int, error) {
	conn, err := net.DialTimeout("tcp", net.JoinHostPort(host, strconv.Itoa(epmdPort)), timeout)
	if err != nil {
		return 0, fmt.Errorf("failed to connect to epmd on %s: %w", host, err)
	}
	defer conn.Close()

	if timeout > 0 {
		if err := conn.SetDeadline(time.Now().Add(timeout)); err != nil {
			return 0, err
		}
	}

	// Request: 2 bytes length, 1 byte request code, alive name
	req := make([]byte, 3, 3+len(alive))
	binary.BigEndian.PutUint16(req[0:2], uint16(1+len(alive)))
	req[2] = epmdPortPlease2Req
	req = append(req, alive...)
	if _, err := conn.Write(req); err != nil {
		return 0, fmt.Errorf("failed to send epmd request: %w", err)
	}

	// Response: 1 byte response code, 1 byte result, then on success
	// 2 bytes port followed by node type, protocol, versions and names
	// which are not needed here
	header := make([]byte, 2)
	if _, err := io.ReadFull(conn, header); err != nil {
		return 0, fmt.Errorf("failed to read epmd response: %w", err)
	}
	if header[0] != epmdPort2Resp {
		return 0, fmt.Errorf("unexpected epmd response code %d", header[0])
	}
	if header[1] != 0 {
		return 0, fmt.Errorf("%w: %s@%s", ErrNodeNotRegistered, alive, host)
	}

	portBytes := make([]byte, 2)
	if _, err := io.ReadFull(conn, portBytes); err != nil {
		return 0, fmt.Errorf("failed to read epmd port: %w", err)
	}
	return int(binary.BigEndian.Uint16(portBytes)), nil
}
