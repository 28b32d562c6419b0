package server

import (
	"fmt"
	"github.com/ValentinKolb/erlmap/lib/dict"
	"github.com/ValentinKolb/erlmap/rpc/common"
	"github.com/ValentinKolb/erlmap/rpc/transport/unix"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

// memoryDict is an in-memory map, keys starting with "retry" fail temporarily, a key "broken" permanently
type memoryDict struct {
	values map[string]string
	closed bool
}

func (d *memoryDict) Lookup(key string) (string, bool, error) {
	switch {
	case strings.HasPrefix(key, "retry"):
		return "", false, dict.NewError(dict.RetCRetry, fmt.Sprintf("lookup of %q failed: node down", key))
	case key == "broken":
		return "", false, dict.NewError(dict.RetCConfig, "bad config")
	}
	v, ok := d.values[key]
	return v, ok, nil
}

func (d *memoryDict) Name() string { return "memory:test" }

func (d *memoryDict) Close() error {
	d.closed = true
	return nil
}

func TestAdapter(t *testing.T) {
	d := &memoryDict{values: map[string]string{
		"alice": "a@x,b@x",
		"huge":  strings.Repeat("x", common.MaxMessageSize),
	}}
	adapter := NewDictServerAdapter()

	tests := []struct {
		key    string
		status common.Status
		data   string
	}{
		{"alice", common.StatusOK, "a@x,b@x"},
		{"bob", common.StatusNotFound, ""},
		{"retry", common.StatusTemp, ""},
		{"broken", common.StatusPerm, ""},
		{"huge", common.StatusPerm, "value too long"},
	}
	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			resp := adapter.Handle(common.NewRequest("aliases", tt.key), d)
			assert.Equal(t, tt.status, resp.Status)
			if tt.data != "" {
				assert.Equal(t, tt.data, resp.Data)
			}
		})
	}

	assert.Equal(t, common.StatusPerm, adapter.Handle(common.NewRequest("aliases", "alice"), nil).Status)
}

func TestAdapterLongKeyReason(t *testing.T) {
	d := &memoryDict{}
	key := "retry" + strings.Repeat("k", common.MaxMessageSize-20)

	resp := NewDictServerAdapter().Handle(common.NewRequest("aliases", key), d)
	assert.Equal(t, common.StatusTemp, resp.Status)
	assert.LessOrEqual(t, len(resp.Data), maxReasonSize)
	assert.LessOrEqual(t, len(resp.Bytes()), common.MaxMessageSize)
	assert.Contains(t, resp.Data, "lookup of")
	assert.True(t, strings.HasSuffix(resp.Data, "..."), resp.Data)
}

func TestHandle(t *testing.T) {
	s := NewSocketmapServer(common.ServerConfig{}, unix.NewUnixServerTransport())
	s.AddDict("aliases", &memoryDict{values: map[string]string{"alice": "a@x"}})

	tests := map[string]string{
		"aliases alice":       "OK a@x",
		"aliases bob":         "NOTFOUND ",
		"aliases retry":       "TEMP ",
		"other alice":         "PERM unknown map other",
		"aliases":             "PERM ",
		"aliases key with sp": "NOTFOUND ",
	}
	for req, expected := range tests {
		resp := string(s.handle([]byte(req)))
		assert.True(t, strings.HasPrefix(resp, expected), "%q -> %q, expected prefix %q", req, resp, expected)
	}
	assert.Equal(t, []string{"aliases"}, s.Names())
}

func TestServeUnix(t *testing.T) {
	defer goleak.VerifyNone(t)

	socket := filepath.Join(t.TempDir(), "erlmap.sock")
	d := &memoryDict{values: map[string]string{"alice@example.org": "a@x,b@x"}}

	s := NewSocketmapServer(common.ServerConfig{
		TimeoutSecond: 5,
		Transport:     common.ServerTransportConfig{Endpoint: socket},
	}, unix.NewUnixServerTransport())
	s.AddDict("aliases", d)

	done := make(chan error, 1)
	go func() {
		done <- s.Serve()
	}()

	c := unix.NewUnixClientTransport()
	require.Eventually(t, func() bool {
		return c.Connect([]string{socket}, 2) == nil
	}, 2*time.Second, 10*time.Millisecond)

	send := func(name, key string) *common.Response {
		payload, err := c.Send(common.NewRequest(name, key).Bytes())
		require.NoError(t, err)
		resp, err := common.ParseResponse(payload)
		require.NoError(t, err)
		return resp
	}

	resp := send("aliases", "alice@example.org")
	assert.Equal(t, common.StatusOK, resp.Status)
	assert.Equal(t, "a@x,b@x", resp.Data)

	assert.Equal(t, common.StatusNotFound, send("aliases", "bob@example.org").Status)
	assert.Equal(t, common.StatusTemp, send("aliases", "retry").Status)
	assert.Equal(t, common.StatusPerm, send("missing", "alice@example.org").Status)

	require.NoError(t, c.Close())
	require.NoError(t, s.Close())
	require.NoError(t, <-done)
	assert.True(t, d.closed)
}

func TestServeWithoutMaps(t *testing.T) {
	s := NewSocketmapServer(common.ServerConfig{}, unix.NewUnixServerTransport())
	assert.ErrorIs(t, s.Serve(), common.ErrConfiguration)
}
