// Package erlang implements the "erlang" map type: keys are resolved by an rpc call on a
// remote Erlang node.
//
// The map is opened with the path of a configuration file as name:
//
//	dict.Open("erlang:/etc/erlmap/aliases.cf", dict.ReadOnly, dict.FlagFoldFix)
//
// The file holds one "name = value" pair per line, lines starting with # are comments:
//
//	# ordered list of nodes, separated by space or comma
//	nodes = aliases@mx1, aliases@mx2
//	cookie = secret
//	module = aliases
//	function = lookup
//
//	# optional, with defaults
//	node_name = erlmap
//	domain =
//	key_pattern =
//	result_format = %s
//	expansion_limit = 0
//	timeout = 10
//	epmd_port = 4369
//	tcp_nodelay = true
//	tcp_keepalive = 0
//
// node_name is the local alive name, the host is added automatically. domain and key_pattern
// restrict which keys are looked up (see package filter), result_format formats every value
// (see package expand). expansion_limit caps the number of values per reply, 0 means unlimited.
// timeout applies to connecting and to the rpc call, in seconds.
//
// The called function receives [Key] with Key as binary and must return not_found or
// {ok, [Binary, ...]}.
package erlang
