// Package client implements the lookup client that resolves keys on a remote Erlang node.
//
// A query runs synchronously: the client connects to one node of the configured node set,
// calls the configured module:function with a one element list holding the key as a binary
// and classifies the reply. The reply must be either the atom not_found or a tuple
// {ok, [Binary, ...]}; every other shape is a retryable error.
//
// Key Components:
//
//   - ErlangClient: The query orchestrator. Query(key) returns a LookupOutcome and releases
//     the connection and all wire buffers on every return path.
//
//   - Failover: Connections are made by a single linear scan over the node set that starts at
//     the node of the last successful connection. At most len(nodes) attempts are made per query.
//
//   - ResultAssembler: Folds the returned binaries into one result string (see lib/expand).
//
// Usage Example:
//
//	config := common.ClientConfig{
//	  Nodes:    []string{"aliases@mx1", "aliases@mx2"},
//	  Cookie:   "secret",
//	  Module:   "aliases",
//	  Function: "lookup",
//	}
//
//	c, _ := client.NewErlangClient(config, dist.NewDistClientTransport(), expand.Default())
//	outcome := c.Query("alice@example.org")
//	switch outcome.Kind {
//	case client.Found:
//	  fmt.Println(outcome.Value)
//	case client.NotFound:
//	  fmt.Println("not found")
//	default:
//	  fmt.Println("try again later:", outcome.Err)
//	}
//
// Thread Safety:
//
//	An ErlangClient can be used concurrently from multiple goroutines. Every query uses its
//	own connection and buffers, only the active node index is shared and guarded by a mutex.
package client
