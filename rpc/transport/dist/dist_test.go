package dist

import (
	"encoding/binary"
	"errors"
	"io"
	"net"
	"strconv"
	"testing"
	"time"

	"github.com/ValentinKolb/erlmap/rpc/common"
	"github.com/ValentinKolb/erlmap/rpc/term"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

const testCookie = "secret"

// fakeNode plays the accepting side of the distribution protocol on a loopback listener
type fakeNode struct {
	t        *testing.T
	listener net.Listener
	cookie   string
	// reply is the encoded Reply term sent back as {rex, Reply}
	reply []byte
	// noise sends a tick and an unrelated control message before the reply
	noise bool
	// calls receives the decoded {call, M, F, A, user} tuple of every request
	calls chan term.Term
	done  chan struct{}
}

func newFakeNode(t *testing.T, cookie string, reply []byte) *fakeNode {
	listener, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	n := &fakeNode{
		t:        t,
		listener: listener,
		cookie:   cookie,
		reply:    reply,
		calls:    make(chan term.Term, 1),
		done:     make(chan struct{}),
	}
	go n.serve()
	return n
}

func (n *fakeNode) port() int {
	return n.listener.Addr().(*net.TCPAddr).Port
}

func (n *fakeNode) close() {
	n.listener.Close()
	<-n.done
}

func (n *fakeNode) transport() *clientTransport {
	return &clientTransport{
		creation: 5,
		hostname: func() (string, error) { return "client.example.org", nil },
		lookup: func(host, alive string, epmdPort int, timeout time.Duration) (int, error) {
			return n.port(), nil
		},
	}
}

func (n *fakeNode) serve() {
	defer close(n.done)
	conn, err := n.listener.Accept()
	if err != nil {
		return
	}
	defer conn.Close()
	_ = conn.SetDeadline(time.Now().Add(5 * time.Second))

	if !n.acceptHandshake(conn) {
		return
	}

	packet, err := readPacket(conn)
	if err != nil {
		return
	}
	self, call := decodeCall(n.t, packet)
	n.calls <- call

	if n.noise {
		_, _ = conn.Write([]byte{0, 0, 0, 0})
		// expect the tick to be answered
		if tick, err := readPacket(conn); err != nil || len(tick) != 0 {
			n.t.Errorf("tick was not answered: %v %v", tick, err)
			return
		}
		other := term.AcquireBuffer()
		other.AppendRaw([]byte{'p'})
		other.EncodeVersion()
		other.EncodeTupleHeader(3)
		other.EncodeInt(1) // LINK
		other.EncodePid(term.Pid{Node: "node@peer", ID: 9})
		other.EncodePid(self)
		_ = writePacket(conn, other.Bytes())
		other.Release()
	}

	resp := term.AcquireBuffer()
	defer resp.Release()
	resp.AppendRaw([]byte{'p'})
	resp.EncodeVersion()
	resp.EncodeTupleHeader(3)
	resp.EncodeInt(opSend)
	resp.EncodeAtom("")
	resp.EncodePid(self)
	resp.EncodeVersion()
	resp.EncodeTupleHeader(2)
	resp.EncodeAtom("rex")
	resp.AppendRaw(n.reply)
	_ = writePacket(conn, resp.Bytes())

	// wait for the client to close the connection
	_, _ = io.Copy(io.Discard, conn)
}

func (n *fakeNode) acceptHandshake(conn net.Conn) bool {
	msg, err := readHandshakeMessage(conn)
	if err != nil || msg[0] != tagSendName {
		n.t.Errorf("expected send_name, got %q (%v)", msg, err)
		return false
	}
	_ = writeHandshakeMessage(conn, []byte("sok"))

	challenge := uint32(424242)
	out := []byte{tagSendName}
	out = binary.BigEndian.AppendUint64(out, localFlags)
	out = binary.BigEndian.AppendUint32(out, challenge)
	out = binary.BigEndian.AppendUint32(out, 3)
	out = binary.BigEndian.AppendUint16(out, uint16(len("node@peer")))
	out = append(out, "node@peer"...)
	_ = writeHandshakeMessage(conn, out)

	msg, err = readHandshakeMessage(conn)
	if err != nil || len(msg) != 21 || msg[0] != tagChallengeReply {
		return false
	}
	expected := digest(n.cookie, challenge)
	if string(msg[5:]) != string(expected[:]) {
		// wrong cookie: close without ack like a real node
		return false
	}
	ack := digest(n.cookie, binary.BigEndian.Uint32(msg[1:5]))
	_ = writeHandshakeMessage(conn, append([]byte{tagChallengeAck}, ack[:]...))
	return true
}

func readPacket(conn net.Conn) ([]byte, error) {
	c := &distConn{conn: conn}
	return c.readPacket()
}

func writePacket(conn net.Conn, data []byte) error {
	frame := binary.BigEndian.AppendUint32(nil, uint32(len(data)))
	_, err := conn.Write(append(frame, data...))
	return err
}

// decodeCall checks the REG_SEND control message and returns the caller pid and the call tuple
func decodeCall(t *testing.T, packet []byte) (term.Pid, term.Term) {
	require.Equal(t, byte('p'), packet[0])
	d := term.NewDecoder(packet[1:])
	require.NoError(t, d.DecodeVersion())
	control, err := d.Decode()
	require.NoError(t, err)
	ctrl := control.(term.Tuple)
	require.Len(t, ctrl, 4)
	assert.Equal(t, term.Int(opRegSend), ctrl[0])
	assert.Equal(t, term.Atom("rex"), ctrl[3])

	require.NoError(t, d.DecodeVersion())
	msg, err := d.Decode()
	require.NoError(t, err)
	tuple := msg.(term.Tuple)
	require.Len(t, tuple, 2)
	return tuple[0].(term.Pid), tuple[1]
}

func testConfig() common.ClientConfig {
	return common.ClientConfig{
		Nodes:         []string{"node@127.0.0.1"},
		Cookie:        testCookie,
		Module:        "aliases",
		Function:      "lookup",
		NodeName:      "erlmap",
		TimeoutSecond: 5,
	}
}

func TestCall(t *testing.T) {
	defer goleak.VerifyNone(t)

	for _, noise := range []bool{false, true} {
		t.Run("noise="+strconv.FormatBool(noise), func(t *testing.T) {
			reply := []byte{119, 9, 'n', 'o', 't', '_', 'f', 'o', 'u', 'n', 'd'}
			node := newFakeNode(t, testCookie, reply)
			node.noise = noise
			defer node.close()

			conn, err := node.transport().Connect("node@127.0.0.1", testConfig())
			require.NoError(t, err)

			args := term.NewLookupRequest([]byte("alice"))
			defer args.Release()

			resp, err := conn.Call("aliases", "lookup", args.Bytes())
			require.NoError(t, err)
			assert.Equal(t, reply, resp)
			require.NoError(t, conn.Close())

			call := <-node.calls
			expected := term.Tuple{
				term.Atom("call"),
				term.Atom("aliases"),
				term.Atom("lookup"),
				term.List{term.Binary("alice")},
				term.Atom("user"),
			}
			assert.Equal(t, expected, call)
		})
	}
}

func TestConnectWrongCookie(t *testing.T) {
	defer goleak.VerifyNone(t)

	node := newFakeNode(t, "other", nil)
	defer node.close()

	_, err := node.transport().Connect("node@127.0.0.1", testConfig())
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrAuthentication), "unexpected error: %v", err)
}

func TestConnectInvalidNodeName(t *testing.T) {
	_, err := NewDistClientTransport().Connect("no-host", testConfig())
	assert.Error(t, err)
}

func TestLocalNodeName(t *testing.T) {
	tr := &clientTransport{hostname: func() (string, error) { return "mail.example.org", nil }}

	name, err := tr.localNodeName("erlmap", "peer")
	require.NoError(t, err)
	assert.Equal(t, "erlmap@mail", name)

	name, err = tr.localNodeName("", "peer.example.org")
	require.NoError(t, err)
	assert.Equal(t, "erlmap@mail.example.org", name)

	name, err = tr.localNodeName("postfix@relay", "peer")
	require.NoError(t, err)
	assert.Equal(t, "postfix@relay", name)
}

func TestLookupPort(t *testing.T) {
	defer goleak.VerifyNone(t)

	listener, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer listener.Close()

	done := make(chan struct{})
	go func() {
		defer close(done)
		for i := 0; i < 2; i++ {
			conn, err := listener.Accept()
			if err != nil {
				return
			}
			req, err := readHandshakeMessage(conn)
			if err == nil && req[0] == epmdPortPlease2Req && string(req[1:]) == "node" {
				resp := []byte{epmdPort2Resp, 0}
				resp = binary.BigEndian.AppendUint16(resp, 45678)
				resp = append(resp, 77, 0, 0, 6, 0, 5, 0, 4)
				resp = append(resp, "node"...)
				_, _ = conn.Write(append(resp, 0, 0))
			} else {
				_, _ = conn.Write([]byte{epmdPort2Resp, 1})
			}
			conn.Close()
		}
	}()

	epmdPort := listener.Addr().(*net.TCPAddr).Port

	port, err := lookupPort("127.0.0.1", "node", epmdPort, time.Second)
	require.NoError(t, err)
	assert.Equal(t, 45678, port)

	_, err = lookupPort("127.0.0.1", "missing", epmdPort, time.Second)
	assert.True(t, errors.Is(err, ErrNodeNotRegistered), "unexpected error: %v", err)

	<-done
}

func TestParseChallengeOldFormat(t *testing.T) {
	msg := []byte{tagSendNameOld, 0, 5}
	msg = binary.BigEndian.AppendUint32(msg, 0x7fffd)
	msg = binary.BigEndian.AppendUint32(msg, 99)
	msg = append(msg, "old@host"...)

	peer, challenge, err := parseChallenge(msg)
	require.NoError(t, err)
	assert.Equal(t, uint32(99), challenge)
	assert.Equal(t, "old@host", peer.name)
}
