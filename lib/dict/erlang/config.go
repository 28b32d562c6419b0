package erlang

import (
	"fmt"
	"github.com/ValentinKolb/erlmap/lib/expand"
	"github.com/ValentinKolb/erlmap/rpc/common"
	"github.com/spf13/viper"
)

// Config is the parsed content of one map configuration file
type Config struct {
	Client       common.ClientConfig
	Domain       string
	KeyPattern   string
	ResultFormat string
}

// ParseConfig reads and validates a map configuration file
func ParseConfig(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(path)
	// "name = value" lines are read like a .env file
	v.SetConfigType("env")

	v.SetDefault("node_name", common.DefaultNodeName)
	v.SetDefault("result_format", expand.DefaultFormat)
	v.SetDefault("expansion_limit", 0)
	v.SetDefault("timeout", common.DefaultTimeoutSecond)
	v.SetDefault("epmd_port", common.DefaultEPMDPort)
	v.SetDefault("tcp_nodelay", true)
	v.SetDefault("tcp_keepalive", 0)

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("%w: cannot read %s: %v", common.ErrConfiguration, path, err)
	}

	cfg := &Config{
		Client: common.ClientConfig{
			Nodes:          common.SplitNodes(v.GetString("nodes")),
			Cookie:         v.GetString("cookie"),
			Module:         v.GetString("module"),
			Function:       v.GetString("function"),
			NodeName:       v.GetString("node_name"),
			TimeoutSecond:  v.GetInt("timeout"),
			ExpansionLimit: v.GetInt("expansion_limit"),
			Transport: common.ClientTransportConfig{
				EPMDPort: v.GetInt("epmd_port"),
				TCPConf: common.TCPConf{
					TCPNoDelay:      v.GetBool("tcp_nodelay"),
					TCPKeepAliveSec: v.GetInt("tcp_keepalive"),
				},
			},
		},
		Domain:       v.GetString("domain"),
		KeyPattern:   v.GetString("key_pattern"),
		ResultFormat: v.GetString("result_format"),
	}

	if err := cfg.Client.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	if cfg.Client.TimeoutSecond < 0 {
		return nil, fmt.Errorf("%s: %w: negative timeout %d", path, common.ErrConfiguration, cfg.Client.TimeoutSecond)
	}
	return cfg, nil
}
