package client

import (
	"fmt"
	"github.com/ValentinKolb/erlmap/rpc/common"
	"github.com/ValentinKolb/erlmap/rpc/transport"
	"sync"
)

// connectionManager opens connections to the node set, starting at the node
// that accepted the last connection
type connectionManager struct {
	nodes     []string
	config    common.ClientConfig
	transport transport.IRPCClientTransport

	mu     sync.Mutex
	active int
}

func newConnectionManager(config common.ClientConfig, transport transport.IRPCClientTransport) *connectionManager {
	return &connectionManager{
		nodes:     config.Nodes,
		config:    config,
		transport: transport,
	}
}

// activeNode returns the index the next scan starts at
func (m *connectionManager) activeNode() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.active
}

// connect makes one pass over the node set and returns the first connection
// that succeeds. The active index only moves on success.
func (m *connectionManager) connect() (transport.IRPCConn, error) {
	start := m.activeNode()

	var lastErr error
	for i := 0; i < len(m.nodes); i++ {
		idx := (start + i) % len(m.nodes)
		node := m.nodes[idx]

		conn, err := m.transport.Connect(node, m.config)
		if err != nil {
			Logger.Warningf("cannot connect to node %s: %v", node, err)
			connectFailures(node).Inc()
			lastErr = err
			continue
		}

		m.mu.Lock()
		m.active = idx
		m.mu.Unlock()

		Logger.Debugf("connected to node %s", node)
		return conn, nil
	}

	return nil, fmt.Errorf("%w: %d nodes tried, last error: %v", ErrConnectionExhausted, len(m.nodes), lastErr)
}
