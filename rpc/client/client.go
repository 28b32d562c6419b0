package client

import (
	"fmt"
	"github.com/ValentinKolb/erlmap/rpc/common"
	"github.com/ValentinKolb/erlmap/rpc/term"
	"github.com/ValentinKolb/erlmap/rpc/transport"
	"github.com/lni/dragonboat/v4/logger"
	"time"
)

var (
	Logger = logger.GetLogger("rpc")
)

// ErlangClient resolves keys by calling a function on a remote Erlang node
type ErlangClient struct {
	config    common.ClientConfig
	conns     *connectionManager
	assembler ResultAssembler
}

// NewErlangClient creates a new lookup client.
// The configuration is validated, an empty node set or a missing cookie,
// module or function is a common.ErrConfiguration.
// No connection is made until the first query.
func NewErlangClient(
	config common.ClientConfig,
	transport transport.IRPCClientTransport,
	assembler ResultAssembler,
) (*ErlangClient, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	if transport == nil || assembler == nil {
		return nil, fmt.Errorf("%w: transport and result assembler are required", common.ErrConfiguration)
	}

	// Copy the node set so later changes by the caller have no effect
	config.Nodes = append([]string(nil), config.Nodes...)

	return &ErlangClient{
		config:    config,
		conns:     newConnectionManager(config, transport),
		assembler: assembler,
	}, nil
}

// Config returns the configuration the client was created with
func (c *ErlangClient) Config() common.ClientConfig {
	return c.config
}

// ActiveNode returns the node the next query tries first
func (c *ErlangClient) ActiveNode() string {
	return c.config.Nodes[c.conns.activeNode()]
}

// Query looks up key and returns NotFound, Found or RetryableError.
// The connection and both wire buffers are released before Query returns.
func (c *ErlangClient) Query(key string) (outcome LookupOutcome) {
	defer func() {
		lookupsTotal(outcome.Kind).Inc()
	}()

	conn, err := c.conns.connect()
	if err != nil {
		Logger.Warningf("%s: %v", key, err)
		return retry(err)
	}
	defer conn.Close()

	args := term.NewLookupRequest([]byte(key))
	defer args.Release()

	start := time.Now()
	resp, err := conn.Call(c.config.Module, c.config.Function, args.Bytes())
	observeRPC(start)
	if err != nil {
		Logger.Warningf("rpc %s:%s(%q) failed: %v", c.config.Module, c.config.Function, key, err)
		return retry(fmt.Errorf("%w: %v", ErrTransport, err))
	}

	return interpretResponse(resp, key, c.assembler, c.config.ExpansionLimit)
}
