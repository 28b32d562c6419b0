package unix

import (
	"github.com/ValentinKolb/erlmap/rpc/transport"
	"github.com/ValentinKolb/erlmap/rpc/transport/base"
	"net"
	"time"
)

// clientConnector implements the IClientConnector interface for Unix sockets
type clientConnector struct{}

// --------------------------------------------------------------------------
// Interface Methods (docu see base.IClientConnector)
// --------------------------------------------------------------------------

func (c *clientConnector) GetName() string {
	return "unix"
}

func (c *clientConnector) Connect(endpoint string, timeout time.Duration) (net.Conn, error) {
	return net.DialTimeout("unix", endpoint, timeout)
}

// --------------------------------------------------------------------------
// Client Transport Factory Method
// --------------------------------------------------------------------------

// NewUnixClientTransport creates a new Unix socketmap client transport
func NewUnixClientTransport() transport.ISocketmapClientTransport {
	return base.NewBaseClientTransport(&clientConnector{})
}
