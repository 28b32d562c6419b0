package dist

import (
	"encoding/binary"
	"fmt"
	"github.com/ValentinKolb/erlmap/rpc/term"
	"io"
	"net"
	"time"
)

const (
	// passThrough prefixes every message when no atom cache is negotiated
	passThrough = 'p'

	// control message operations
	opSend       = 2
	opRegSend    = 6
	opSendSender = 22

	maxPacketSize = 1 << 26 // 64 MB
)

// distConn is one authenticated connection to a node, used for a single query
type distConn struct {
	conn    net.Conn
	self    term.Pid
	peer    *peerInfo
	timeout time.Duration
}

// --------------------------------------------------------------------------
// Interface Methods (docu see transport.IRPCConn)
// --------------------------------------------------------------------------

func (c *distConn) Call(module, function string, args []byte) ([]byte, error) {
	if c.timeout > 0 {
		if err := c.conn.SetDeadline(time.Now().Add(c.timeout)); err != nil {
			return nil, err
		}
	}

	if err := c.sendCall(module, function, args); err != nil {
		return nil, fmt.Errorf("failed to send rpc to %s: %w", c.peer.name, err)
	}

	for {
		packet, err := c.readPacket()
		if err != nil {
			return nil, fmt.Errorf("failed to read rpc reply from %s: %w", c.peer.name, err)
		}

		// Tick: answer with an empty packet
		if len(packet) == 0 {
			if _, err := c.conn.Write([]byte{0, 0, 0, 0}); err != nil {
				return nil, fmt.Errorf("failed to answer tick: %w", err)
			}
			continue
		}

		reply, ok, err := c.parseReply(packet)
		if err != nil {
			return nil, fmt.Errorf("invalid message from %s: %w", c.peer.name, err)
		}
		if ok {
			return reply, nil
		}
	}
}

func (c *distConn) Close() error {
	return c.conn.Close()
}

// --------------------------------------------------------------------------
// Helper Methods
// --------------------------------------------------------------------------

// sendCall writes the rex call as one pass through message:
// control {REG_SEND, Self, '', rex}, payload {Self, {call, M, F, A, user}}
func (c *distConn) sendCall(module, function string, args []byte) error {
	buf := term.AcquireBuffer()
	defer buf.Release()

	// length placeholder, filled in below
	buf.AppendRaw([]byte{0, 0, 0, 0, passThrough})

	buf.EncodeVersion()
	buf.EncodeTupleHeader(4)
	buf.EncodeInt(opRegSend)
	buf.EncodePid(c.self)
	buf.EncodeAtom("")
	buf.EncodeAtom("rex")

	buf.EncodeVersion()
	buf.EncodeTupleHeader(2)
	buf.EncodePid(c.self)
	buf.EncodeTupleHeader(5)
	buf.EncodeAtom("call")
	buf.EncodeAtom(module)
	buf.EncodeAtom(function)
	buf.AppendRaw(args)
	buf.EncodeAtom("user")

	data := buf.Bytes()
	binary.BigEndian.PutUint32(data[0:4], uint32(len(data)-4))
	_, err := c.conn.Write(data)
	return err
}

// readPacket reads one packet; an empty packet is a tick
func (c *distConn) readPacket() ([]byte, error) {
	var header [4]byte
	if _, err := io.ReadFull(c.conn, header[:]); err != nil {
		return nil, err
	}
	length := binary.BigEndian.Uint32(header[:])
	if length > maxPacketSize {
		return nil, fmt.Errorf("packet too large (%d bytes)", length)
	}
	packet := make([]byte, length)
	if _, err := io.ReadFull(c.conn, packet); err != nil {
		return nil, err
	}
	return packet, nil
}

// parseReply extracts Reply from a {rex, Reply} message sent to self.
// ok is false for any other message, which the caller skips.
func (c *distConn) parseReply(packet []byte) (reply []byte, ok bool, err error) {
	if packet[0] != passThrough {
		Logger.Debugf("ignoring message with type %d from %s", packet[0], c.peer.name)
		return nil, false, nil
	}

	d := term.NewDecoder(packet[1:])
	if err := d.DecodeVersion(); err != nil {
		return nil, false, err
	}
	arity, err := d.ReadTupleHeader()
	if err != nil {
		return nil, false, err
	}
	op, err := d.DecodeInt()
	if err != nil {
		return nil, false, err
	}

	switch {
	case op == opSend && arity == 3, op == opSendSender && arity == 3:
		// SEND has an unused field, SEND_SENDER the sender pid, before the receiver
		if err := d.Skip(); err != nil {
			return nil, false, err
		}
	default:
		Logger.Debugf("ignoring control message %d from %s", op, c.peer.name)
		return nil, false, nil
	}

	to, err := d.DecodePid()
	if err != nil {
		return nil, false, err
	}
	if to.Node != c.self.Node || to.ID != c.self.ID || to.Serial != c.self.Serial {
		Logger.Debugf("ignoring message for %s", to)
		return nil, false, nil
	}

	if err := d.DecodeVersion(); err != nil {
		return nil, false, err
	}
	if err := d.DecodeTupleHeader(2); err != nil {
		return nil, false, err
	}
	if err := d.DecodeAtom("rex"); err != nil {
		return nil, false, err
	}
	return d.Remaining(), true, nil
}
