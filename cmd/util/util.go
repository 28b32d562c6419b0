package util

import (
	"fmt"
	"github.com/ValentinKolb/erlmap/lib/dict"
	"github.com/ValentinKolb/erlmap/lib/dict/erlang"
	"github.com/ValentinKolb/erlmap/lib/expand"
	"github.com/ValentinKolb/erlmap/rpc/common"
	"github.com/ValentinKolb/erlmap/rpc/transport"
	"github.com/ValentinKolb/erlmap/rpc/transport/dist"
	"github.com/ValentinKolb/erlmap/rpc/transport/http"
	"github.com/ValentinKolb/erlmap/rpc/transport/tcp"
	"github.com/ValentinKolb/erlmap/rpc/transport/unix"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"strings"
)

const (
	// Wrap is the number of characters to Wrap the help text at
	Wrap int = 50
)

// WrapString wraps a string at Wrap characters
func WrapString(text string) string {
	var wrappedLines []string
	var currentLine strings.Builder
	lineWidth := 0

	for _, word := range strings.Fields(text) {
		wordWidth := len(word)

		// Check if we need to wrap
		if lineWidth > 0 && lineWidth+1+wordWidth > Wrap {
			wrappedLines = append(wrappedLines, currentLine.String())
			currentLine.Reset()
			lineWidth = 0
		}

		// Add space before word (if not first word on line)
		if lineWidth > 0 {
			currentLine.WriteString(" ")
			lineWidth++
		}

		// Add the word
		currentLine.WriteString(word)
		lineWidth += wordWidth
	}

	// Add any remaining text
	if currentLine.Len() > 0 {
		wrappedLines = append(wrappedLines, currentLine.String())
	}

	return strings.Join(wrappedLines, "\n")
}

// InitConfig loads .env files and makes viper read ERLMAP_* environment variables
func InitConfig() {
	// load env files
	_ = godotenv.Load(".env")
	_ = godotenv.Load(".env.local")

	// initialize viper
	viper.SetEnvPrefix("erlmap")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv() // read in environment variables that match
}

// BindCommandFlags binds a command's flags to viper
func BindCommandFlags(cmd *cobra.Command) error {
	return viper.BindPFlags(cmd.Flags())
}

// InitLogging sets the level of all package loggers from the log-level flag
func InitLogging() error {
	return common.InitLoggers(viper.GetString("log-level"))
}

// --------------------------------------------------------------------------
// Erlang map flags
// --------------------------------------------------------------------------

// SetupErlangFlags adds the flags that configure an erlang map to a command
func SetupErlangFlags(cmd *cobra.Command) {
	key := "config"
	cmd.PersistentFlags().String(key, "", WrapString("Map configuration file (name = value lines). If set, the other map flags are ignored"))

	key = "nodes"
	cmd.PersistentFlags().String(key, "", WrapString("Erlang nodes to query (name@host), separated by space or comma"))

	key = "cookie"
	cmd.PersistentFlags().String(key, "", WrapString("The Erlang cookie shared with the nodes"))

	key = "module"
	cmd.PersistentFlags().String(key, "", WrapString("The module of the function to call"))

	key = "function"
	cmd.PersistentFlags().String(key, "", WrapString("The function to call with [Key]"))

	key = "node-name"
	cmd.PersistentFlags().String(key, common.DefaultNodeName, WrapString("The local node name, the host is added unless the name contains @"))

	key = "timeout"
	cmd.PersistentFlags().Int(key, common.DefaultTimeoutSecond, WrapString("Connect and rpc timeout in seconds"))

	key = "epmd-port"
	cmd.PersistentFlags().Int(key, common.DefaultEPMDPort, WrapString("The port of the Erlang port mapper daemon"))

	key = "domain"
	cmd.PersistentFlags().String(key, "", WrapString("Only look up keys local@domain for the listed domains"))

	key = "key-pattern"
	cmd.PersistentFlags().String(key, "", WrapString("Only look up keys matching this regular expression"))

	key = "result-format"
	cmd.PersistentFlags().String(key, expand.DefaultFormat, WrapString("Format of every returned value (%s, %u, %d of the value; %S, %U, %D, %1-%9 of the key)"))

	key = "expansion-limit"
	cmd.PersistentFlags().Int(key, 0, WrapString("Maximum number of values per reply (0 = unlimited)"))

	key = "fold-case"
	cmd.PersistentFlags().Bool(key, false, WrapString("Lowercase keys before the lookup"))

	key = "transport-tcp-nodelay"
	cmd.PersistentFlags().Bool(key, true, WrapString("Whether to enable TCP_NODELAY on node connections"))

	key = "transport-tcp-keepalive"
	cmd.PersistentFlags().Int(key, 0, WrapString("The keepalive interval for node connections (in seconds)"))
}

// GetErlangConfig reads the map configuration from the config file or the flags
func GetErlangConfig() (*erlang.Config, error) {
	if path := viper.GetString("config"); path != "" {
		return erlang.ParseConfig(path)
	}

	cfg := &erlang.Config{
		Client: common.ClientConfig{
			Nodes:          common.SplitNodes(viper.GetString("nodes")),
			Cookie:         viper.GetString("cookie"),
			Module:         viper.GetString("module"),
			Function:       viper.GetString("function"),
			NodeName:       viper.GetString("node-name"),
			TimeoutSecond:  viper.GetInt("timeout"),
			ExpansionLimit: viper.GetInt("expansion-limit"),
			Transport: common.ClientTransportConfig{
				EPMDPort: viper.GetInt("epmd-port"),
				TCPConf: common.TCPConf{
					TCPNoDelay:      viper.GetBool("transport-tcp-nodelay"),
					TCPKeepAliveSec: viper.GetInt("transport-tcp-keepalive"),
				},
			},
		},
		Domain:       viper.GetString("domain"),
		KeyPattern:   viper.GetString("key-pattern"),
		ResultFormat: viper.GetString("result-format"),
	}
	if err := cfg.Client.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// GetDictFlags returns the open flags selected on the command line
func GetDictFlags() dict.Flags {
	var flags dict.Flags
	if viper.GetBool("fold-case") {
		flags |= dict.FlagFoldFix
	}
	return flags
}

// OpenErlangDict creates an erlang map from the configuration on the command line
func OpenErlangDict() (*erlang.Dict, error) {
	cfg, err := GetErlangConfig()
	if err != nil {
		return nil, err
	}
	return erlang.New("erlang:cli", cfg, GetDictFlags(), dist.NewDistClientTransport())
}

// --------------------------------------------------------------------------
// Socketmap flags
// --------------------------------------------------------------------------

// SetupSocketmapClientFlags adds the flags of the socketmap client to a command
func SetupSocketmapClientFlags(cmd *cobra.Command) {
	key := "transport"
	cmd.PersistentFlags().String(key, "unix", WrapString("transport to use (http, tcp, unix)"))

	key = "endpoints"
	cmd.PersistentFlags().String(key, "/tmp/erlmap.sock", WrapString("The socketmap server address (e.g. /tmp/erlmap.sock, localhost:8080, http://localhost:8080), multiple endpoints are comma separated"))

	key = "timeout"
	cmd.PersistentFlags().Int(key, common.DefaultTimeoutSecond, WrapString("The timeout in seconds of the client"))
}

// GetSocketmapClientTransport creates the client transport based on configuration
func GetSocketmapClientTransport() (transport.ISocketmapClientTransport, error) {
	switch viper.GetString("transport") {
	case "http":
		return http.NewHttpClientTransport(), nil
	case "tcp":
		return tcp.NewTCPClientTransport(), nil
	case "unix":
		return unix.NewUnixClientTransport(), nil
	default:
		return nil, fmt.Errorf("invalid transport %s", viper.GetString("transport"))
	}
}

// GetSocketmapServerTransport creates the server transport based on configuration
func GetSocketmapServerTransport() (transport.IRPCServerTransport, error) {
	switch viper.GetString("transport") {
	case "http":
		return http.NewHttpServerTransport(), nil
	case "tcp":
		return tcp.NewTCPServerTransport(), nil
	case "unix":
		return unix.NewUnixServerTransport(), nil
	default:
		return nil, fmt.Errorf("invalid transport %s", viper.GetString("transport"))
	}
}

// ParseMaps parses a comma separated list of name=type:path pairs
func ParseMaps(maps string) (map[string]string, error) {
	result := make(map[string]string)
	for _, entry := range strings.Split(maps, ",") {
		entry = strings.TrimSpace(entry)
		if entry == "" {
			continue
		}
		name, spec, ok := strings.Cut(entry, "=")
		name, spec = strings.TrimSpace(name), strings.TrimSpace(spec)
		if !ok || name == "" || !strings.Contains(spec, ":") {
			return nil, fmt.Errorf("invalid map format: %s (expected NAME=TYPE:PATH)", entry)
		}
		if _, exists := result[name]; exists {
			return nil, fmt.Errorf("map %s specified twice", name)
		}
		result[name] = spec
	}
	if len(result) == 0 {
		return nil, fmt.Errorf("no maps specified")
	}
	return result, nil
}
