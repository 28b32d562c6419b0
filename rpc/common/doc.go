// Package common provides core data structures and utilities shared across
// the lookup service. It defines configuration structures, the socketmap
// protocol messages and the logging setup used by the other packages.
//
// The package focuses on:
//   - Configuration structures for the Erlang client and the socketmap server
//   - Socketmap request/response definition
//   - Custom logging implementation integrated with Dragonboat's logger facade
//
// Key Components:
//
//   - ClientConfig: Everything needed to reach the remote Erlang nodes: the
//     node set, the cookie, the target procedure and socket settings.
//     Validate reports missing mandatory values as configuration errors.
//
//   - ServerConfig: Listener endpoint, maps to serve and logging settings
//     of the socketmap server.
//
//   - Request / Response: The two socketmap messages. A request names a map
//     and a key, a response carries a status and optional data.
//
//   - Logger: Custom logging implementation that plugs into Dragonboat's
//     logger package, so every package logs with the same format.
package common
