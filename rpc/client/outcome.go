package client

import (
	"errors"
	"strings"
)

var (
	// ErrConnectionExhausted is returned when no node of the node set accepted a connection
	ErrConnectionExhausted = errors.New("no erlang node reachable")
	// ErrTransport is returned when the rpc call failed after the connection was established
	ErrTransport = errors.New("erlang rpc failed")
	// ErrUnexpectedResponse is returned when the reply has none of the accepted shapes
	ErrUnexpectedResponse = errors.New("unexpected response")
)

// OutcomeKind classifies the result of a lookup
type OutcomeKind int

const (
	NotFound OutcomeKind = iota
	Found
	RetryableError
)

func (k OutcomeKind) String() string {
	switch k {
	case NotFound:
		return "not_found"
	case Found:
		return "found"
	case RetryableError:
		return "retry"
	default:
		return "unknown"
	}
}

// LookupOutcome is the result of one query.
// Value is only set for Found, Err only for RetryableError.
type LookupOutcome struct {
	Kind  OutcomeKind
	Value string
	Err   error
}

func notFound() LookupOutcome {
	return LookupOutcome{Kind: NotFound}
}

func found(value string) LookupOutcome {
	return LookupOutcome{Kind: Found, Value: value}
}

func retry(err error) LookupOutcome {
	return LookupOutcome{Kind: RetryableError, Err: err}
}

// ResultAssembler folds the values of a reply into one result string
type ResultAssembler interface {
	// Expand appends value, formatted for the lookup key, to result.
	// It is called once per value in reply order.
	Expand(result *strings.Builder, value, key string)
}
