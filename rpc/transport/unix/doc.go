// Package unix implements the socketmap transport over Unix domain sockets, the usual
// setup when the MTA runs on the same machine.
//
// Key Components:
//
//   - clientConnector: Establishes connections using Unix domain sockets
//
//   - serverConnector: Creates the socket file (replacing a stale one) and accepts connections
package unix
