// Package transport defines the interfaces and abstractions for the network
// side of the lookup service. It provides a common contract that all transport
// implementations must fulfill.
//
// The package focuses on:
//   - Reaching remote Erlang nodes and calling a procedure on them
//   - Serving and querying maps over the socketmap protocol
//
// Key Components:
//
//   - IRPCClientTransport / IRPCConn: Client side of the Erlang RPC. The
//     dist subpackage implements them with the Erlang distribution protocol.
//
//   - IRPCServerTransport: Server side of the socketmap protocol; tcp and unix
//     provide listeners on top of the base implementation, http serves the
//     same requests as POST bodies.
//
//   - ISocketmapClientTransport: Client side of the socketmap protocol, used
//     by the command line client.
//
//   - ServerHandleFunc: Function type for request handling callbacks.
package transport
