package client

import (
	"bytes"
	"errors"
	"fmt"
	"github.com/ValentinKolb/erlmap/rpc/common"
	"github.com/ValentinKolb/erlmap/rpc/term"
	"github.com/ValentinKolb/erlmap/rpc/transport"
	"strings"
	"sync"
	"testing"
)

// --------------------------------------------------------------------------
// Test doubles
// --------------------------------------------------------------------------

// fakeTransport accepts connections only to the nodes in up and answers every call with reply
type fakeTransport struct {
	mu       sync.Mutex
	up       map[string]bool
	reply    []byte
	callErr  error
	attempts []string
	conns    []*fakeConn
}

func (f *fakeTransport) GetName() string { return "fake" }

func (f *fakeTransport) Connect(node string, config common.ClientConfig) (transport.IRPCConn, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.attempts = append(f.attempts, node)
	if !f.up[node] {
		return nil, fmt.Errorf("connection refused by %s", node)
	}
	conn := &fakeConn{transport: f, node: node}
	f.conns = append(f.conns, conn)
	return conn, nil
}

func (f *fakeTransport) resetAttempts() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.attempts = nil
}

type fakeConn struct {
	transport *fakeTransport
	node      string

	module, function string
	args             []byte
	closed           bool
}

func (c *fakeConn) Call(module, function string, args []byte) ([]byte, error) {
	c.module, c.function = module, function
	c.args = append([]byte(nil), args...)
	if c.transport.callErr != nil {
		return nil, c.transport.callErr
	}
	return c.transport.reply, nil
}

func (c *fakeConn) Close() error {
	c.closed = true
	return nil
}

// joinAssembler formats every value as "<value>" and separates them with a comma
type joinAssembler struct{}

func (joinAssembler) Expand(result *strings.Builder, value, key string) {
	if result.Len() > 0 {
		result.WriteByte(',')
	}
	result.WriteString("<" + value + ">")
}

func testConfig(nodes ...string) common.ClientConfig {
	return common.ClientConfig{
		Nodes:    nodes,
		Cookie:   "secret",
		Module:   "aliases",
		Function: "lookup",
	}
}

func encode(f func(b *term.Buffer)) []byte {
	b := term.AcquireBuffer()
	defer b.Release()
	f(b)
	return append([]byte(nil), b.Bytes()...)
}

func okReply(values ...string) []byte {
	return encode(func(b *term.Buffer) {
		b.EncodeTupleHeader(2)
		b.EncodeAtom("ok")
		b.EncodeListHeader(len(values))
		for _, v := range values {
			b.EncodeBinary([]byte(v))
		}
		b.EncodeEmptyList()
	})
}

// --------------------------------------------------------------------------
// Construction
// --------------------------------------------------------------------------

func TestNewErlangClientValidation(t *testing.T) {
	tests := []struct {
		name   string
		modify func(c *common.ClientConfig)
	}{
		{"no nodes", func(c *common.ClientConfig) { c.Nodes = nil }},
		{"no cookie", func(c *common.ClientConfig) { c.Cookie = "" }},
		{"no module", func(c *common.ClientConfig) { c.Module = "" }},
		{"no function", func(c *common.ClientConfig) { c.Function = "" }},
		{"negative limit", func(c *common.ClientConfig) { c.ExpansionLimit = -1 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			config := testConfig("a@host")
			tt.modify(&config)
			_, err := NewErlangClient(config, &fakeTransport{}, joinAssembler{})
			if !errors.Is(err, common.ErrConfiguration) {
				t.Errorf("Expected configuration error, got %v", err)
			}
		})
	}

	if _, err := NewErlangClient(testConfig("a@host"), &fakeTransport{}, joinAssembler{}); err != nil {
		t.Errorf("Valid configuration rejected: %v", err)
	}
}

// --------------------------------------------------------------------------
// Failover
// --------------------------------------------------------------------------

// TestFailover checks that k refusing nodes lead to exactly k+1 attempts
// and leave the active index at the accepting node
func TestFailover(t *testing.T) {
	nodes := []string{"n0@host", "n1@host", "n2@host", "n3@host"}

	for k := 0; k < len(nodes); k++ {
		t.Run(fmt.Sprintf("refused=%d", k), func(t *testing.T) {
			ft := &fakeTransport{
				up:    map[string]bool{nodes[k]: true},
				reply: encode(func(b *term.Buffer) { b.EncodeAtom("not_found") }),
			}
			c, err := NewErlangClient(testConfig(nodes...), ft, joinAssembler{})
			if err != nil {
				t.Fatalf("Failed to create client: %v", err)
			}

			outcome := c.Query("alice")
			if outcome.Kind != NotFound {
				t.Fatalf("Expected NotFound, got %v (%v)", outcome.Kind, outcome.Err)
			}
			if len(ft.attempts) != k+1 {
				t.Errorf("Expected %d attempts, got %d (%v)", k+1, len(ft.attempts), ft.attempts)
			}
			if c.conns.activeNode() != k {
				t.Errorf("Expected active index %d, got %d", k, c.conns.activeNode())
			}
		})
	}
}

// TestFailoverStartsAtActiveNode checks that the scan starts at the last good node and wraps around
func TestFailoverStartsAtActiveNode(t *testing.T) {
	nodes := []string{"n0@host", "n1@host", "n2@host"}
	ft := &fakeTransport{
		up:    map[string]bool{"n2@host": true},
		reply: encode(func(b *term.Buffer) { b.EncodeAtom("not_found") }),
	}
	c, err := NewErlangClient(testConfig(nodes...), ft, joinAssembler{})
	if err != nil {
		t.Fatalf("Failed to create client: %v", err)
	}

	c.Query("alice")
	if c.ActiveNode() != "n2@host" {
		t.Fatalf("Expected active node n2@host, got %s", c.ActiveNode())
	}

	// the next query starts at n2 and needs one attempt only
	ft.resetAttempts()
	c.Query("alice")
	if len(ft.attempts) != 1 || ft.attempts[0] != "n2@host" {
		t.Errorf("Expected a single attempt on n2@host, got %v", ft.attempts)
	}

	// n2 goes down, n0 comes up: n2, n0 in this order
	ft.up = map[string]bool{"n0@host": true}
	ft.resetAttempts()
	c.Query("alice")
	expected := []string{"n2@host", "n0@host"}
	if strings.Join(ft.attempts, " ") != strings.Join(expected, " ") {
		t.Errorf("Expected attempts %v, got %v", expected, ft.attempts)
	}
	if c.ActiveNode() != "n0@host" {
		t.Errorf("Expected active node n0@host, got %s", c.ActiveNode())
	}
}

// TestFailoverExhausted checks that a scan where every node refuses
// makes len(nodes) attempts and keeps the active index
func TestFailoverExhausted(t *testing.T) {
	nodes := []string{"n0@host", "n1@host", "n2@host"}
	ft := &fakeTransport{up: map[string]bool{"n1@host": true}, reply: okReply("x")}
	c, err := NewErlangClient(testConfig(nodes...), ft, joinAssembler{})
	if err != nil {
		t.Fatalf("Failed to create client: %v", err)
	}
	c.Query("alice")

	ft.up = nil
	ft.resetAttempts()
	outcome := c.Query("alice")

	if outcome.Kind != RetryableError {
		t.Fatalf("Expected RetryableError, got %v", outcome.Kind)
	}
	if !errors.Is(outcome.Err, ErrConnectionExhausted) {
		t.Errorf("Expected ErrConnectionExhausted, got %v", outcome.Err)
	}
	if len(ft.attempts) != len(nodes) {
		t.Errorf("Expected %d attempts, got %d", len(nodes), len(ft.attempts))
	}
	if c.conns.activeNode() != 1 {
		t.Errorf("Expected active index to stay at 1, got %d", c.conns.activeNode())
	}
}

// --------------------------------------------------------------------------
// Query
// --------------------------------------------------------------------------

func TestQueryOutcomes(t *testing.T) {
	tests := []struct {
		name     string
		reply    []byte
		limit    int
		expected LookupOutcome
	}{
		{
			name:     "not found",
			reply:    encode(func(b *term.Buffer) { b.EncodeAtom("not_found") }),
			expected: LookupOutcome{Kind: NotFound},
		},
		{
			name:     "found",
			reply:    okReply("a@x", "b@x"),
			expected: LookupOutcome{Kind: Found, Value: "<a@x>,<b@x>"},
		},
		{
			name:     "found within limit",
			reply:    okReply("a@x", "b@x"),
			limit:    2,
			expected: LookupOutcome{Kind: Found, Value: "<a@x>,<b@x>"},
		},
		{
			name: "large tuple",
			reply: encode(func(b *term.Buffer) {
				b.AppendRaw([]byte{byte(term.TagLargeTuple), 0, 0, 0, 2})
				b.EncodeAtom("ok")
				b.EncodeListHeader(1)
				b.EncodeBinary([]byte("a@x"))
				b.EncodeEmptyList()
			}),
			expected: LookupOutcome{Kind: Found, Value: "<a@x>"},
		},
		{
			name:     "expansion limit exceeded",
			reply:    okReply("a@x", "b@x", "c@x"),
			limit:    2,
			expected: LookupOutcome{Kind: RetryableError},
		},
		{
			name: "empty list",
			reply: encode(func(b *term.Buffer) {
				b.EncodeTupleHeader(2)
				b.EncodeAtom("ok")
				b.EncodeEmptyList()
			}),
			expected: LookupOutcome{Kind: RetryableError},
		},
		{
			name: "list shorter than declared",
			reply: encode(func(b *term.Buffer) {
				b.EncodeTupleHeader(2)
				b.EncodeAtom("ok")
				b.EncodeListHeader(3)
				b.EncodeBinary([]byte("a@x"))
				b.EncodeBinary([]byte("b@x"))
				b.EncodeEmptyList()
			}),
			expected: LookupOutcome{Kind: RetryableError},
		},
		{
			name: "list of atoms",
			reply: encode(func(b *term.Buffer) {
				b.EncodeTupleHeader(2)
				b.EncodeAtom("ok")
				b.EncodeListHeader(1)
				b.EncodeAtom("a@x")
				b.EncodeEmptyList()
			}),
			expected: LookupOutcome{Kind: RetryableError},
		},
		{
			name: "deeply nested list",
			reply: encode(func(b *term.Buffer) {
				for i := 0; i < 200000; i++ {
					b.EncodeListHeader(1)
				}
				b.EncodeEmptyList()
			}),
			expected: LookupOutcome{Kind: RetryableError},
		},
		{
			name:     "integer",
			reply:    encode(func(b *term.Buffer) { b.EncodeInt(42) }),
			expected: LookupOutcome{Kind: RetryableError},
		},
		{
			name:     "other atom",
			reply:    encode(func(b *term.Buffer) { b.EncodeAtom("undefined") }),
			expected: LookupOutcome{Kind: RetryableError},
		},
		{
			name: "error tuple",
			reply: encode(func(b *term.Buffer) {
				b.EncodeTupleHeader(2)
				b.EncodeAtom("badrpc")
				b.EncodeAtom("nodedown")
			}),
			expected: LookupOutcome{Kind: RetryableError},
		},
		{
			name: "tuple arity 3",
			reply: encode(func(b *term.Buffer) {
				b.EncodeTupleHeader(3)
				b.EncodeAtom("ok")
				b.EncodeEmptyList()
				b.EncodeEmptyList()
			}),
			expected: LookupOutcome{Kind: RetryableError},
		},
		{
			name:     "empty reply",
			reply:    []byte{},
			expected: LookupOutcome{Kind: RetryableError},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ft := &fakeTransport{up: map[string]bool{"a@host": true}, reply: tt.reply}
			config := testConfig("a@host")
			config.ExpansionLimit = tt.limit
			c, err := NewErlangClient(config, ft, joinAssembler{})
			if err != nil {
				t.Fatalf("Failed to create client: %v", err)
			}

			outcome := c.Query("alice")
			if outcome.Kind != tt.expected.Kind {
				t.Fatalf("Expected %v, got %v (%v)", tt.expected.Kind, outcome.Kind, outcome.Err)
			}
			if outcome.Value != tt.expected.Value {
				t.Errorf("Expected value %q, got %q", tt.expected.Value, outcome.Value)
			}
			if outcome.Kind == RetryableError && outcome.Err == nil {
				t.Errorf("Expected an error for RetryableError")
			}

			// the connection is always released and the call carries [<<"alice">>]
			if len(ft.conns) != 1 || !ft.conns[0].closed {
				t.Fatalf("Expected exactly one closed connection")
			}
			conn := ft.conns[0]
			if conn.module != "aliases" || conn.function != "lookup" {
				t.Errorf("Unexpected procedure %s:%s", conn.module, conn.function)
			}
			req := term.NewLookupRequest([]byte("alice"))
			defer req.Release()
			if !bytes.Equal(conn.args, req.Bytes()) {
				t.Errorf("Unexpected arguments %v", conn.args)
			}
		})
	}
}

func TestQueryTransportError(t *testing.T) {
	ft := &fakeTransport{up: map[string]bool{"a@host": true}, callErr: errors.New("connection reset")}
	c, err := NewErlangClient(testConfig("a@host"), ft, joinAssembler{})
	if err != nil {
		t.Fatalf("Failed to create client: %v", err)
	}

	outcome := c.Query("alice")
	if outcome.Kind != RetryableError || !errors.Is(outcome.Err, ErrTransport) {
		t.Errorf("Expected RetryableError wrapping ErrTransport, got %v (%v)", outcome.Kind, outcome.Err)
	}
	if !ft.conns[0].closed {
		t.Errorf("Connection was not closed after transport error")
	}
}

func TestQueryIdempotent(t *testing.T) {
	ft := &fakeTransport{up: map[string]bool{"a@host": true}, reply: okReply("a@x", "b@x")}
	c, err := NewErlangClient(testConfig("a@host"), ft, joinAssembler{})
	if err != nil {
		t.Fatalf("Failed to create client: %v", err)
	}

	first := c.Query("alice")
	for i := 0; i < 10; i++ {
		if next := c.Query("alice"); next != first {
			t.Fatalf("Query %d returned %+v, first returned %+v", i, next, first)
		}
	}
}

func TestQueryConcurrent(t *testing.T) {
	nodes := []string{"n0@host", "n1@host", "n2@host"}
	ft := &fakeTransport{up: map[string]bool{"n1@host": true, "n2@host": true}, reply: okReply("a@x")}
	c, err := NewErlangClient(testConfig(nodes...), ft, joinAssembler{})
	if err != nil {
		t.Fatalf("Failed to create client: %v", err)
	}

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if outcome := c.Query("alice"); outcome.Kind != Found {
				t.Errorf("Expected Found, got %v (%v)", outcome.Kind, outcome.Err)
			}
		}()
	}
	wg.Wait()

	if active := c.ActiveNode(); active != "n1@host" {
		t.Errorf("Expected active node n1@host, got %s", active)
	}
}
