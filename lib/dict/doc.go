// Package dict provides the generic lookup table ("map") interface used by the socketmap
// server and the command line tools, together with a registry of map types.
//
// The package focuses on:
//   - A unified read-only interface (IDict) for all map types
//   - Opening maps by "type:name", e.g. "erlang:/etc/erlmap/aliases.cf"
//   - Typed errors that tell the caller whether a failed lookup should be retried
//
// Key Components:
//
//   - IDict Interface: Lookup returns the value and whether the key was found. A failed
//     lookup returns a *Error with RetCRetry, the caller should answer with a temporary
//     failure and try again later.
//
//   - Registry: Map types register an Opener under their type name (see Register). Open
//     splits "type:name", checks the access mode and calls the opener. Only ReadOnly is
//     accepted, every other mode is a RetCConfig error.
//
//   - Flags: FlagFoldFix asks the map to lowercase keys before the lookup.
//
// Implementations:
//
//	- Erlang map (erlang): Resolves keys with an rpc call on a remote Erlang node.
//	  Available in the "github.com/ValentinKolb/erlmap/lib/dict/erlang" package, which
//	  registers itself as type "erlang" when imported.
package dict
