// Package server implements a Postfix socketmap server on top of the dict package.
//
// The server opens every configured map ("name" -> "type:path") read-only and answers
// requests of the form "name key" over the configured transport (tcp or unix).
//
// Responses:
//
//	OK <value>      the key was found
//	NOTFOUND        the key does not exist (or was rejected by the map's filter)
//	TEMP <reason>   the lookup failed temporarily, e.g. no Erlang node was reachable
//	PERM <reason>   the request is malformed, the map is unknown or the value is too long
//
// Usage Example:
//
//	config := common.ServerConfig{
//	  Maps: map[string]string{"aliases": "erlang:/etc/erlmap/aliases.cf"},
//	  Transport: common.ServerTransportConfig{Endpoint: "/var/spool/postfix/private/erlmap"},
//	}
//	s := server.NewSocketmapServer(config, unix.NewUnixServerTransport())
//	if err := s.Serve(); err != nil {
//	  panic(err)
//	}
//
// In Postfix the map is then used as "socketmap:unix:private/erlmap:aliases".
package server
