// Package base provides the socketmap transport layer independent of the specific
// network protocol (TCP, Unix sockets, etc.). It serves as a base layer that can be
// extended with protocol-specific connectors.
//
// The package focuses on:
//   - Protocol-agnostic client and server transport implementations
//   - Netstring framing as used by the Postfix socketmap protocol ("<len>:<data>,")
//   - Buffer reuse on the server side
//
// Key Components:
//
//   - IClientConnector/IServerConnector: Interfaces for protocol-specific operations
//     that allow extending the base transport with different network protocols.
//
//   - clientTransport: Sends one request at a time over a single connection to the
//     first reachable endpoint and reconnects once if the server closed the connection.
//
//   - serverTransport: Accepts connections and passes every request to the registered
//     handler. Responses are written in request order, a request larger than
//     common.MaxMessageSize closes the connection.
//
// Thread Safety:
//
//	All public methods are thread-safe. The client serializes requests with a mutex,
//	the server creates a dedicated goroutine for each connection.
package base
