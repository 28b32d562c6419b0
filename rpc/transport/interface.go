package transport

import (
	"github.com/ValentinKolb/erlmap/rpc/common"
)

// --------------------------------------------------------------------------
// Erlang Client Transport
// --------------------------------------------------------------------------

// IRPCClientTransport opens connections to remote Erlang nodes.
// One transport instance is shared by all queries of a client.
type IRPCClientTransport interface {
	// Connect makes a single connection attempt to the given node (name@host),
	// authenticating with the cookie from the configuration
	Connect(node string, config common.ClientConfig) (IRPCConn, error)
	// GetName returns the name of the transport type (e.g., "dist")
	GetName() string
}

// IRPCConn is an open, authenticated connection to one node.
// It is used by exactly one query and closed when that query ends.
type IRPCConn interface {
	// Call invokes module:function with the encoded argument list and returns
	// the encoded reply term (without version byte)
	Call(module, function string, args []byte) (resp []byte, err error)
	// Close closes the connection
	Close() error
}

// --------------------------------------------------------------------------
// Socketmap Server Transport
// --------------------------------------------------------------------------

// ServerHandleFunc is a function type that handles incoming requests
// This function is called by a server transport layer when a request is received
// It takes a request payload and returns the response payload
type ServerHandleFunc func(req []byte) (resp []byte)

// IRPCServerTransport is the interface for the socketmap transport layer
type IRPCServerTransport interface {
	// RegisterHandler registers a handler for the transport layer
	// This handler should be called when a request is received
	RegisterHandler(handler ServerHandleFunc)
	// Listen starts the transport layer and listens for incoming requests.
	// It blocks until Close is called or the listener fails.
	Listen(config common.ServerConfig) error
	// Close stops listening and closes all open connections
	Close() error
}

// --------------------------------------------------------------------------
// Socketmap Client Transport
// --------------------------------------------------------------------------

// ISocketmapClientTransport is the interface for socketmap client transports
type ISocketmapClientTransport interface {
	// Connect connects to the first reachable endpoint
	Connect(endpoints []string, timeoutSecond int) error
	// Send sends a request payload and returns the response payload
	Send(req []byte) (resp []byte, err error)
	// Close closes the transport connection
	Close() error
}
