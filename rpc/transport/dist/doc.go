// Package dist implements the client side of the Erlang distribution protocol,
// just enough to run a remote procedure call on an Erlang node the way
// rpc:call/4 does.
//
// A connection to name@host is made in three steps:
//
//  1. Port lookup: the Erlang port mapper daemon (EPMD) on host is asked for
//     the distribution port of name (PORT_PLEASE2_REQ).
//
//  2. Handshake: the connection is authenticated with the shared cookie using
//     the version 6 handshake (OTP 23 and later). Both sides prove that they
//     know the cookie by sending md5(cookie ++ challenge) for the challenge
//     of the other side. The local node is hidden, it never shows up in the
//     peer's nodes() list.
//
//  3. RPC: Call sends {Self, {call, Module, Function, Args, user}} to the
//     registered process rex on the peer and waits for {rex, Reply}. Ticks
//     sent by the peer while waiting are answered.
//
// Connections are not multiplexed. Each connection serves one query and is
// closed afterward, so no background goroutine is ever started.
package dist
