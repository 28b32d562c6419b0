package common

import (
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// ErrConfiguration is wrapped by every error that makes a configuration unusable
var ErrConfiguration = errors.New("configuration error")

// --------------------------------------------------------------------------
// Transport configuration structs
// --------------------------------------------------------------------------

// SocketConf holds socket buffer sizes (in bytes, 0 keeps the OS default)
type SocketConf struct {
	WriteBufferSize int
	ReadBufferSize  int
}

// TCPConf holds TCP specific socket options
type TCPConf struct {
	TCPNoDelay      bool
	TCPKeepAliveSec int
	TCPLingerSec    int
}

// ClientTransportConfig configures how connections to Erlang nodes are made
type ClientTransportConfig struct {
	// EPMDPort is the port of the Erlang port mapper daemon on every node host
	EPMDPort int
	SocketConf
	TCPConf
}

// ServerTransportConfig configures the socketmap listener
type ServerTransportConfig struct {
	// Endpoint is a host:port for tcp or a socket path for unix
	Endpoint string
	SocketConf
	TCPConf
}

// --------------------------------------------------------------------------
// Erlang client configuration struct
// --------------------------------------------------------------------------

const (
	DefaultEPMDPort      = 4369
	DefaultNodeName      = "erlmap"
	DefaultTimeoutSecond = 10
)

// ClientConfig holds all parameters of one Erlang lookup client
type ClientConfig struct {
	// Nodes is the ordered node set (name@host), fixed after construction
	Nodes []string
	// Cookie is the shared secret presented in every handshake
	Cookie string
	// Module and Function name the remote procedure that is called with [Key]
	Module   string
	Function string
	// NodeName is the local alive name, the host part is added automatically
	NodeName string

	TimeoutSecond int
	// ExpansionLimit caps the number of values in one reply (0 = unlimited)
	ExpansionLimit int

	Transport ClientTransportConfig
}

// SplitNodes splits a node list separated by spaces, commas, tabs or newlines
func SplitNodes(nodes string) []string {
	return strings.FieldsFunc(nodes, func(r rune) bool {
		return r == ' ' || r == ',' || r == '\t' || r == '\r' || r == '\n'
	})
}

// Validate checks that all mandatory fields are present
func (c *ClientConfig) Validate() error {
	if len(c.Nodes) == 0 {
		return fmt.Errorf("%w: no erlang nodes specified", ErrConfiguration)
	}
	if c.Cookie == "" {
		return fmt.Errorf("%w: no erlang cookie specified", ErrConfiguration)
	}
	if c.Module == "" {
		return fmt.Errorf("%w: no erlang module specified", ErrConfiguration)
	}
	if c.Function == "" {
		return fmt.Errorf("%w: no erlang function specified", ErrConfiguration)
	}
	if c.ExpansionLimit < 0 {
		return fmt.Errorf("%w: negative expansion limit %d", ErrConfiguration, c.ExpansionLimit)
	}
	return nil
}

// String returns a formatted string representation of the client configuration.
// The cookie is never printed.
func (c *ClientConfig) String() string {
	var sb strings.Builder

	// Create helper functions for consistent formatting
	addSection := func(title string) {
		sb.WriteString("\n")
		sb.WriteString(fmt.Sprintf("%s\n", strings.ToUpper(title)))
	}

	addField := func(name, value string) {
		sb.WriteString(fmt.Sprintf("  %-22s: %s\n", name, value))
	}

	// General Client Settings
	addSection("Client Configuration")
	addField("Local Node Name", c.NodeName)
	addField("Procedure", fmt.Sprintf("%s:%s/1", c.Module, c.Function))
	addField("Timeout", fmt.Sprintf("%d sec", c.TimeoutSecond))
	addField("Expansion Limit", strconv.Itoa(c.ExpansionLimit))
	addField("EPMD Port", strconv.Itoa(c.Transport.EPMDPort))

	// Nodes
	addSection("Nodes")
	for i, node := range c.Nodes {
		addField(strconv.Itoa(i), node)
	}

	return sb.String()
}

// --------------------------------------------------------------------------
// Socketmap server configuration struct
// --------------------------------------------------------------------------

// ServerConfig holds all configuration parameters for the socketmap server
type ServerConfig struct {
	// Maps maps the socketmap name to the map to open, e.g. "erlang:/etc/erlmap/aliases.cf"
	Maps map[string]string
	// FoldCase lowercases keys of every served map before lookup
	FoldCase bool

	// TimeoutSecond bounds reading a request and writing a response
	TimeoutSecond int64

	Transport ServerTransportConfig

	// MetricsEndpoint is the address of the prometheus endpoint (empty = disabled)
	MetricsEndpoint string

	// Logging configuration
	LogLevel string
}

// String returns a formatted string representation of the configuration
func (c *ServerConfig) String() string {
	var sb strings.Builder

	// Create helper functions for consistent formatting
	addSection := func(title string) {
		sb.WriteString("\n")
		sb.WriteString(fmt.Sprintf("%s\n", strings.ToUpper(title)))
	}

	addField := func(name, value string) {
		sb.WriteString(fmt.Sprintf("  %-22s: %s\n", name, value))
	}

	// Socketmap settings
	addSection("Socketmap Server")
	addField("Endpoint", c.Transport.Endpoint)
	addField("Timeout", fmt.Sprintf("%d sec", c.TimeoutSecond))
	addField("Fold Case", fmt.Sprintf("%t", c.FoldCase))
	if c.MetricsEndpoint != "" {
		addField("Metrics", c.MetricsEndpoint)
	}

	// Logging configuration
	addSection("Logging")
	addField("Log Level", c.LogLevel)

	// Maps, sorted for consistent output
	addSection("Maps")
	var names []string
	for name := range c.Maps {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		addField(name, c.Maps[name])
	}

	return sb.String()
}
