// Package cmd implements the command-line interface of erlmap. It provides
// a hierarchical command structure for querying Erlang nodes directly and
// for serving the lookups to a mail server.
//
// The package is organized into several subpackages:
//
//   - query: Look up keys on the Erlang nodes and benchmark the lookup (perf)
//   - serve: Start the socketmap server for one or more maps
//   - client: Query a running socketmap server
//   - util: Shared utilities for command-line processing and configuration (internal use)
//
// See erlmap -help for a list of all commands.
package cmd
