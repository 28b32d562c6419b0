package common

import (
	"errors"
	"reflect"
	"strings"
	"testing"
)

func validClientConfig() ClientConfig {
	return ClientConfig{
		Nodes:         []string{"mail@node1", "mail@node2"},
		Cookie:        "secret-cookie",
		Module:        "aliases",
		Function:      "lookup",
		NodeName:      DefaultNodeName,
		TimeoutSecond: DefaultTimeoutSecond,
		Transport:     ClientTransportConfig{EPMDPort: DefaultEPMDPort},
	}
}

func TestSplitNodes(t *testing.T) {
	tests := []struct {
		in       string
		expected []string
	}{
		{"a@h1", []string{"a@h1"}},
		{"a@h1 b@h2", []string{"a@h1", "b@h2"}},
		{"a@h1,b@h2, c@h3", []string{"a@h1", "b@h2", "c@h3"}},
		{"  a@h1\tb@h2\n", []string{"a@h1", "b@h2"}},
		{"", []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got := SplitNodes(tt.in)
			if len(got) == 0 && len(tt.expected) == 0 {
				return
			}
			if !reflect.DeepEqual(got, tt.expected) {
				t.Errorf("Expected %v, got %v", tt.expected, got)
			}
		})
	}
}

func TestClientConfigValidate(t *testing.T) {
	c := validClientConfig()
	if err := c.Validate(); err != nil {
		t.Fatalf("Expected valid config, got %v", err)
	}

	tests := map[string]func(c *ClientConfig){
		"no nodes":       func(c *ClientConfig) { c.Nodes = nil },
		"no cookie":      func(c *ClientConfig) { c.Cookie = "" },
		"no module":      func(c *ClientConfig) { c.Module = "" },
		"no function":    func(c *ClientConfig) { c.Function = "" },
		"negative limit": func(c *ClientConfig) { c.ExpansionLimit = -1 },
	}

	for name, mutate := range tests {
		t.Run(name, func(t *testing.T) {
			c := validClientConfig()
			mutate(&c)
			if err := c.Validate(); !errors.Is(err, ErrConfiguration) {
				t.Errorf("Expected ErrConfiguration, got %v", err)
			}
		})
	}
}

func TestClientConfigString(t *testing.T) {
	c := validClientConfig()
	s := c.String()

	for _, expected := range []string{"mail@node1", "mail@node2", "aliases:lookup/1", DefaultNodeName} {
		if !strings.Contains(s, expected) {
			t.Errorf("Expected %q in %s", expected, s)
		}
	}
	if strings.Contains(s, c.Cookie) {
		t.Errorf("Cookie must not be printed: %s", s)
	}
}

func TestServerConfigString(t *testing.T) {
	c := ServerConfig{
		Maps:      map[string]string{"domains": "erlang:/b.cf", "aliases": "erlang:/a.cf"},
		Transport: ServerTransportConfig{Endpoint: "/tmp/erlmap.sock"},
		LogLevel:  "info",
	}
	s := c.String()

	if !strings.Contains(s, "/tmp/erlmap.sock") {
		t.Errorf("Expected endpoint in %s", s)
	}
	if strings.Index(s, "aliases") > strings.Index(s, "domains") {
		t.Errorf("Expected maps sorted by name: %s", s)
	}
}

func TestParseRequest(t *testing.T) {
	req, err := ParseRequest([]byte("aliases alice@example.com"))
	if err != nil {
		t.Fatalf("ParseRequest failed: %v", err)
	}
	if req.Name != "aliases" || req.Key != "alice@example.com" {
		t.Errorf("Unexpected request %+v", req)
	}

	// the key may contain spaces
	req, err = ParseRequest([]byte("aliases a b"))
	if err != nil || req.Key != "a b" {
		t.Errorf("Expected key with space, got %+v (%v)", req, err)
	}

	if string(NewRequest("aliases", "bob").Bytes()) != "aliases bob" {
		t.Errorf("Unexpected request encoding")
	}

	for _, invalid := range []string{"", "aliases", " bob", "aliases "} {
		if _, err := ParseRequest([]byte(invalid)); err == nil {
			t.Errorf("ParseRequest(%q): expected error", invalid)
		}
	}
}

func TestParseResponse(t *testing.T) {
	tests := []struct {
		resp *Response
		wire string
	}{
		{NewOKResponse("a@x,b@y"), "OK a@x,b@y"},
		{NewNotFoundResponse(), "NOTFOUND "},
		{NewTempResponse("all nodes down"), "TEMP all nodes down"},
		{NewPermResponse("value too long"), "PERM value too long"},
	}

	for _, tt := range tests {
		t.Run(tt.wire, func(t *testing.T) {
			if got := string(tt.resp.Bytes()); got != tt.wire {
				t.Errorf("Expected %q, got %q", tt.wire, got)
			}
			parsed, err := ParseResponse([]byte(tt.wire))
			if err != nil {
				t.Fatalf("ParseResponse failed: %v", err)
			}
			if *parsed != *tt.resp {
				t.Errorf("Expected %+v, got %+v", tt.resp, parsed)
			}
		})
	}

	if _, err := ParseResponse([]byte("MAYBE x")); err == nil {
		t.Errorf("Expected error for unknown status")
	}

	// NOTFOUND without the trailing space is accepted
	if resp, err := ParseResponse([]byte("NOTFOUND")); err != nil || resp.Status != StatusNotFound {
		t.Errorf("Expected NOTFOUND, got %+v (%v)", resp, err)
	}
}

func TestParseLogLevel(t *testing.T) {
	for _, level := range []string{"debug", "info", "warn", "warning", "ERROR"} {
		if _, err := ParseLogLevel(level); err != nil {
			t.Errorf("ParseLogLevel(%q) failed: %v", level, err)
		}
	}
	if _, err := ParseLogLevel("verbose"); err == nil {
		t.Errorf("Expected error for unknown level")
	}
}
