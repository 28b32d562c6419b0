// Package http carries socketmap requests over HTTP. It provides concrete
// implementations of the socketmap transport interfaces for setups where a
// plain TCP or unix socket cannot be used (e.g. behind an HTTP proxy).
//
// A request is a POST whose body is the socketmap request ("name key"); the
// response body is the socketmap reply ("OK value", "NOTFOUND ", ...). The
// server also answers GET /metrics with all metrics in the prometheus text
// format.
//
// Key Components:
//
//   - httpClientTransport: Implements ISocketmapClientTransport. Requests
//     are spread round-robin over the endpoints; a failed request is retried
//     on the next endpoint until every endpoint was tried once.
//
//   - httpServerTransport: Implements IRPCServerTransport with a net/http
//     server. Close shuts the server down gracefully.
//
//   - MetricsHandler: The /metrics handler, also used by the serve command
//     for a standalone metrics endpoint.
//
// Thread Safety:
//
//	The client transport can be used concurrently. It uses atomic operations
//	for the round-robin counter.
package http
