package tcp

import (
	"github.com/ValentinKolb/erlmap/rpc/transport"
	"github.com/ValentinKolb/erlmap/rpc/transport/base"
	"net"
	"time"
)

// clientConnector implements the IClientConnector interface for TCP sockets
type clientConnector struct{}

// --------------------------------------------------------------------------
// Interface Methods (docu see base.IClientConnector)
// --------------------------------------------------------------------------

func (c *clientConnector) GetName() string {
	return "tcp"
}

func (c *clientConnector) Connect(endpoint string, timeout time.Duration) (net.Conn, error) {
	return net.DialTimeout("tcp", endpoint, timeout)
}

// --------------------------------------------------------------------------
// Client Transport Factory Method
// --------------------------------------------------------------------------

// NewTCPClientTransport creates a new TCP socketmap client transport
func NewTCPClientTransport() transport.ISocketmapClientTransport {
	return base.NewBaseClientTransport(&clientConnector{})
}
