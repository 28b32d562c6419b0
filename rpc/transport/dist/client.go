package dist

import (
	"fmt"
	"github.com/ValentinKolb/erlmap/rpc/common"
	"github.com/ValentinKolb/erlmap/rpc/term"
	"github.com/ValentinKolb/erlmap/rpc/transport"
	"github.com/lni/dragonboat/v4/logger"
	"math/rand"
	"net"
	"os"
	"strconv"
	"strings"
	"time"
)

var Logger = logger.GetLogger("transport/dist")

// clientTransport implements transport.IRPCClientTransport for the Erlang distribution protocol
type clientTransport struct {
	creation uint32
	hostname func() (string, error)
	// lookup resolves the distribution port of a node, replaced in tests
	lookup func(host, alive string, epmdPort int, timeout time.Duration) (int, error)
}

// NewDistClientTransport creates a new Erlang distribution client transport
func NewDistClientTransport() transport.IRPCClientTransport {
	return &clientTransport{
		// any non-zero value works for a hidden node that never registers with epmd
		creation: rand.Uint32() | 1,
		hostname: os.Hostname,
		lookup:   lookupPort,
	}
}

// --------------------------------------------------------------------------
// Interface Methods (docu see transport.IRPCClientTransport)
// --------------------------------------------------------------------------

func (t *clientTransport) GetName() string {
	return "dist"
}

func (t *clientTransport) Connect(node string, config common.ClientConfig) (transport.IRPCConn, error) {
	alive, host, err := splitNodeName(node)
	if err != nil {
		return nil, err
	}
	localName, err := t.localNodeName(config.NodeName, host)
	if err != nil {
		return nil, err
	}
	timeout := time.Duration(config.TimeoutSecond) * time.Second

	epmdPort := config.Transport.EPMDPort
	if epmdPort == 0 {
		epmdPort = common.DefaultEPMDPort
	}
	port, err := t.lookup(host, alive, epmdPort, timeout)
	if err != nil {
		return nil, err
	}

	conn, err := net.DialTimeout("tcp", net.JoinHostPort(host, strconv.Itoa(port)), timeout)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to %s: %w", node, err)
	}

	// Upgrade the connection with the configured socket settings
	if err := upgradeConnection(conn, config.Transport); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to upgrade connection to %s: %w", node, err)
	}

	if timeout > 0 {
		if err := conn.SetDeadline(time.Now().Add(timeout)); err != nil {
			conn.Close()
			return nil, err
		}
	}

	peer, err := handshake(conn, localName, config.Cookie, t.creation)
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("handshake with %s failed: %w", node, err)
	}
	Logger.Debugf("connected to %s as %s (peer flags %#x)", peer.name, localName, peer.flags)

	return &distConn{
		conn: conn,
		self: term.Pid{
			Node:     term.Atom(localName),
			ID:       1,
			Creation: t.creation,
		},
		peer:    peer,
		timeout: timeout,
	}, nil
}

// --------------------------------------------------------------------------
// Helper Methods
// --------------------------------------------------------------------------

// splitNodeName splits name@host
func splitNodeName(node string) (alive, host string, err error) {
	alive, host, ok := strings.Cut(node, "@")
	if !ok || alive == "" || host == "" {
		return "", "", fmt.Errorf("invalid node name %q (expected name@host)", node)
	}
	return alive, host, nil
}

// localNodeName builds the local node name. A configured name without a host
// gets the local host name, shortened unless the peer uses long names.
func (t *clientTransport) localNodeName(name, peerHost string) (string, error) {
	if name == "" {
		name = common.DefaultNodeName
	}
	if strings.Contains(name, "@") {
		return name, nil
	}

	hostname, err := t.hostname()
	if err != nil {
		return "", fmt.Errorf("failed to get host name: %w", err)
	}
	if !strings.Contains(peerHost, ".") {
		hostname, _, _ = strings.Cut(hostname, ".")
	}
	return name + "@" + hostname, nil
}
