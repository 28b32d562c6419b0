package base

import (
	"bufio"
	"fmt"
	"github.com/ValentinKolb/erlmap/rpc/transport"
	"github.com/lni/dragonboat/v4/logger"
	"net"
	"sync"
	"time"
)

var Logger = logger.GetLogger("transport/rpc")

// -----------------------------------------------------------
// Interface Definitions for dependency injection
// -----------------------------------------------------------

// IClientConnector defines the interface for transport-specific connection operations
type IClientConnector interface {
	// Connect establishes a single connection to the endpoint
	Connect(endpoint string, timeout time.Duration) (net.Conn, error)

	// GetName returns the name of the transport type (e.g., "unix", "tcp")
	GetName() string
}

// -----------------------------------------------------------
// Helper Types
// -----------------------------------------------------------

// clientTransport implements a socketmap client independent of the specific
// transport medium (unix, tcp, etc.). Requests are sent one at a time.
type clientTransport struct {
	connector IClientConnector
	endpoints []string
	timeout   time.Duration

	mu     sync.Mutex
	conn   net.Conn
	reader *bufio.Reader
}

// -----------------------------------------------------------
// Transport Factory Method (used for tcp, unix, etc.)
// -----------------------------------------------------------

// NewBaseClientTransport creates a new base client transport with the specified connector
func NewBaseClientTransport(connector IClientConnector) transport.ISocketmapClientTransport {
	return &clientTransport{
		connector: connector,
	}
}

// --------------------------------------------------------------------------
// Interface Methods (docu see transport.ISocketmapClientTransport)
// --------------------------------------------------------------------------

func (t *clientTransport) Connect(endpoints []string, timeoutSecond int) error {
	if len(endpoints) == 0 {
		return fmt.Errorf("no endpoints provided")
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	t.endpoints = endpoints
	t.timeout = time.Duration(timeoutSecond) * time.Second
	return t.reconnect()
}

func (t *clientTransport) Send(req []byte) ([]byte, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.conn == nil {
		if err := t.reconnect(); err != nil {
			return nil, err
		}
	}

	// A server may close idle connections, retry once on a fresh connection
	resp, err := t.roundTrip(req)
	if err != nil {
		Logger.Debugf("Request failed, reconnecting: %v", err)
		if err := t.reconnect(); err != nil {
			return nil, err
		}
		resp, err = t.roundTrip(req)
	}
	if err != nil {
		t.closeConn()
		return nil, err
	}
	return resp, nil
}

func (t *clientTransport) Close() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.closeConn()
	return nil
}

// --------------------------------------------------------------------------
// Helper Methods
// --------------------------------------------------------------------------

// roundTrip writes one request and reads its response
func (t *clientTransport) roundTrip(req []byte) ([]byte, error) {
	if t.timeout > 0 {
		if err := t.conn.SetDeadline(time.Now().Add(t.timeout)); err != nil {
			return nil, err
		}
	}
	if err := writeNetstring(t.conn, req); err != nil {
		return nil, err
	}
	return readNetstring(t.reader, nil)
}

// reconnect connects to the first reachable endpoint
func (t *clientTransport) reconnect() error {
	t.closeConn()

	var lastErr error
	for _, endpoint := range t.endpoints {
		conn, err := t.connector.Connect(endpoint, t.timeout)
		if err != nil {
			Logger.Warningf("Failed to connect to %s: %v", endpoint, err)
			lastErr = err
			continue
		}
		Logger.Debugf("Connected to %s using %s transport", endpoint, t.connector.GetName())
		t.conn = conn
		t.reader = bufio.NewReader(conn)
		return nil
	}
	return fmt.Errorf("failed to connect to any endpoint: %v", lastErr)
}

func (t *clientTransport) closeConn() {
	if t.conn != nil {
		t.conn.Close()
		t.conn = nil
		t.reader = nil
	}
}
