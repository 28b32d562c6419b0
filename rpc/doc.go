// Package rpc provides the communication layer of erlmap: the calls to the
// remote Erlang nodes on one side and the socketmap protocol spoken to mail
// servers on the other.
//
// The package is organized into several subpackages:
//
//   - term: Encoder and decoder for the Erlang external term format.
//
//   - common: Core data structures and utilities used across the RPC system,
//     including the socketmap protocol, configuration structures, and logging.
//
//   - transport: Network communication abstractions with pluggable implementations
//     (Erlang distribution for the nodes; TCP, Unix sockets and HTTP for socketmap).
//
//   - client: The Erlang lookup client. It sends [Key] to the configured
//     function, fails over between nodes and interprets the reply.
//
//   - server: The socketmap server that answers lookups for named maps.
package rpc
