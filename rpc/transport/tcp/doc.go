// Package tcp implements the socketmap transport over TCP sockets. It provides concrete
// implementations of the base package's connector interfaces.
//
// Key Components:
//
//   - clientConnector: TCP-specific implementation of base.IClientConnector
//
//   - serverConnector: TCP-specific implementation of base.IServerConnector, applies the
//     TCPConf and SocketConf settings to every accepted connection
package tcp
