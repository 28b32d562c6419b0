package dist

import (
	"bytes"
	"crypto/md5"
	"crypto/rand"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"net"
	"strconv"
)

// Distribution capability flags
const (
	flagExtendedReferences uint64 = 0x4
	flagDistMonitor        uint64 = 0x8
	flagFunTags            uint64 = 0x10
	flagNewFunTags         uint64 = 0x80
	flagExtendedPidsPorts  uint64 = 0x100
	flagExportPtrTag       uint64 = 0x200
	flagBitBinaries        uint64 = 0x400
	flagNewFloats          uint64 = 0x800
	flagSmallAtomTags      uint64 = 0x4000
	flagUTF8Atoms          uint64 = 0x10000
	flagMapTag             uint64 = 0x20000
	flagBigCreation        uint64 = 0x40000
	flagHandshake23        uint64 = 0x1000000
	flagUnlinkID           uint64 = 0x2000000
	flagMandatory25Digest  uint64 = 0x4000000
	flagV4NC               uint64 = 1 << 34

	// localFlags never contains DFLAG_PUBLISHED, the node stays hidden
	localFlags = flagExtendedReferences | flagDistMonitor | flagFunTags | flagNewFunTags |
		flagExtendedPidsPorts | flagExportPtrTag | flagBitBinaries | flagNewFloats |
		flagSmallAtomTags | flagUTF8Atoms | flagMapTag | flagBigCreation |
		flagHandshake23 | flagUnlinkID | flagMandatory25Digest | flagV4NC
)

const (
	tagSendName        = 'N'
	tagSendNameOld     = 'n'
	tagStatus          = 's'
	tagChallengeReply  = 'r'
	tagChallengeAck    = 'a'
	maxHandshakeLength = 1 << 12
)

// ErrAuthentication is returned when the peer rejects us or proves a different cookie
var ErrAuthentication = errors.New("authentication failed")

// peerInfo is what the handshake learns about the other node
type peerInfo struct {
	name     string
	flags    uint64
	creation uint32
}

// handshake authenticates an open connection as the initiating side
func handshake(conn net.Conn, localName, cookie string, creation uint32) (*peerInfo, error) {
	// send_name
	msg := []byte{tagSendName}
	msg = binary.BigEndian.AppendUint64(msg, localFlags)
	msg = binary.BigEndian.AppendUint32(msg, creation)
	msg = binary.BigEndian.AppendUint16(msg, uint16(len(localName)))
	msg = append(msg, localName...)
	if err := writeHandshakeMessage(conn, msg); err != nil {
		return nil, fmt.Errorf("failed to send name: %w", err)
	}

	// recv_status
	msg, err := readHandshakeMessage(conn)
	if err != nil {
		return nil, fmt.Errorf("failed to read status: %w", err)
	}
	if len(msg) < 1 || msg[0] != tagStatus {
		return nil, fmt.Errorf("unexpected handshake message %q, expected status", msg)
	}
	switch status := string(msg[1:]); status {
	case "ok", "ok_simultaneous":
	case "nok", "not_allowed":
		return nil, fmt.Errorf("%w: peer answered %s", ErrAuthentication, status)
	default:
		return nil, fmt.Errorf("peer answered unsupported status %q", status)
	}

	// recv_challenge
	msg, err = readHandshakeMessage(conn)
	if err != nil {
		return nil, fmt.Errorf("failed to read challenge: %w", err)
	}
	peer, peerChallenge, err := parseChallenge(msg)
	if err != nil {
		return nil, err
	}

	// send_challenge_reply
	var challengeBytes [4]byte
	if _, err := rand.Read(challengeBytes[:]); err != nil {
		return nil, err
	}
	ownChallenge := binary.BigEndian.Uint32(challengeBytes[:])
	peerDigest := digest(cookie, peerChallenge)

	msg = []byte{tagChallengeReply}
	msg = binary.BigEndian.AppendUint32(msg, ownChallenge)
	msg = append(msg, peerDigest[:]...)
	if err := writeHandshakeMessage(conn, msg); err != nil {
		return nil, fmt.Errorf("failed to send challenge reply: %w", err)
	}

	// recv_challenge_ack
	msg, err = readHandshakeMessage(conn)
	if err != nil {
		// a peer with a different cookie simply closes the connection here
		return nil, fmt.Errorf("%w: no challenge ack from %s: %v", ErrAuthentication, peer.name, err)
	}
	if len(msg) != 17 || msg[0] != tagChallengeAck {
		return nil, fmt.Errorf("unexpected handshake message %q, expected challenge ack", msg)
	}
	expected := digest(cookie, ownChallenge)
	if !bytes.Equal(msg[1:], expected[:]) {
		return nil, fmt.Errorf("%w: %s sent a wrong digest", ErrAuthentication, peer.name)
	}

	return peer, nil
}

// parseChallenge reads both the version 6 ('N') and the version 5 ('n') challenge
func parseChallenge(msg []byte) (*peerInfo, uint32, error) {
	if len(msg) < 1 {
		return nil, 0, fmt.Errorf("empty challenge")
	}
	switch msg[0] {
	case tagSendName:
		// 'N', flags(8), challenge(4), creation(4), nlen(2), name
		if len(msg) < 19 {
			return nil, 0, fmt.Errorf("challenge too short (%d bytes)", len(msg))
		}
		nameLen := int(binary.BigEndian.Uint16(msg[17:19]))
		if len(msg) < 19+nameLen {
			return nil, 0, fmt.Errorf("challenge name truncated")
		}
		peer := &peerInfo{
			flags:    binary.BigEndian.Uint64(msg[1:9]),
			creation: binary.BigEndian.Uint32(msg[13:17]),
			name:     string(msg[19 : 19+nameLen]),
		}
		return peer, binary.BigEndian.Uint32(msg[9:13]), nil
	case tagSendNameOld:
		// 'n', version(2), flags(4), challenge(4), name
		if len(msg) < 11 {
			return nil, 0, fmt.Errorf("challenge too short (%d bytes)", len(msg))
		}
		peer := &peerInfo{
			flags: uint64(binary.BigEndian.Uint32(msg[3:7])),
			name:  string(msg[11:]),
		}
		return peer, binary.BigEndian.Uint32(msg[7:11]), nil
	default:
		return nil, 0, fmt.Errorf("unexpected handshake message tag %q, expected challenge", msg[0])
	}
}

// digest computes md5(cookie ++ decimal(challenge))
func digest(cookie string, challenge uint32) [16]byte {
	return md5.Sum([]byte(cookie + strconv.FormatUint(uint64(challenge), 10)))
}

// --------------------------------------------------------------------------
// Framing (2 byte length prefix during the handshake)
// --------------------------------------------------------------------------

func writeHandshakeMessage(w io.Writer, msg []byte) error {
	frame := make([]byte, 2, 2+len(msg))
	binary.BigEndian.PutUint16(frame, uint16(len(msg)))
	frame = append(frame, msg...)
	_, err := w.Write(frame)
	return err
}

func readHandshakeMessage(r io.Reader) ([]byte, error) {
	var header [2]byte
	if _, err := io.ReadFull(r, header[:]); err != nil {
		return nil, err
	}
	length := int(binary.BigEndian.Uint16(header[:]))
	if length > maxHandshakeLength {
		return nil, fmt.Errorf("handshake message too large (%d bytes)", length)
	}
	msg := make([]byte, length)
	if _, err := io.ReadFull(r, msg); err != nil {
		return nil, err
	}
	return msg, nil
}
