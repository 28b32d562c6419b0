package erlang

import (
	"fmt"
	"github.com/ValentinKolb/erlmap/lib/dict"
	"github.com/ValentinKolb/erlmap/lib/expand"
	"github.com/ValentinKolb/erlmap/lib/filter"
	"github.com/ValentinKolb/erlmap/rpc/client"
	"github.com/ValentinKolb/erlmap/rpc/transport"
	"github.com/ValentinKolb/erlmap/rpc/transport/dist"
	"github.com/lni/dragonboat/v4/logger"
	"strings"
)

var Logger = logger.GetLogger("dict")

const DictType = "erlang"

func init() {
	dict.Register(DictType, Open)
}

// Open reads the configuration file path and creates the map.
// It is registered as dict type "erlang".
func Open(path string, flags dict.Flags) (dict.IDict, error) {
	cfg, err := ParseConfig(path)
	if err != nil {
		return nil, dict.NewError(dict.RetCConfig, err.Error())
	}
	return New(DictType+":"+path, cfg, flags, dist.NewDistClientTransport())
}

// Dict is an opened erlang map
type Dict struct {
	name     string
	foldCase bool
	filter   *filter.Filter
	client   *client.ErlangClient
}

// New creates an erlang map from a parsed configuration.
// No node is contacted before the first lookup.
func New(name string, cfg *Config, flags dict.Flags, transport transport.IRPCClientTransport) (*Dict, error) {
	f, err := filter.New(cfg.Domain, cfg.KeyPattern)
	if err != nil {
		return nil, dict.NewError(dict.RetCConfig, fmt.Sprintf("%s: %v", name, err))
	}
	e, err := expand.New(cfg.ResultFormat)
	if err != nil {
		return nil, dict.NewError(dict.RetCConfig, fmt.Sprintf("%s: %v", name, err))
	}
	c, err := client.NewErlangClient(cfg.Client, transport, e)
	if err != nil {
		return nil, dict.NewError(dict.RetCConfig, fmt.Sprintf("%s: %v", name, err))
	}

	return &Dict{
		name:     name,
		foldCase: flags&dict.FlagFoldFix != 0,
		filter:   f,
		client:   c,
	}, nil
}

// --------------------------------------------------------------------------
// Interface Methods (docu see dict.IDict)
// --------------------------------------------------------------------------

func (d *Dict) Lookup(key string) (string, bool, error) {
	if d.foldCase {
		key = strings.ToLower(key)
	}

	if !d.filter.Accept(key) {
		Logger.Debugf("%s: skipping lookup of %q", d.name, key)
		return "", false, nil
	}

	outcome := d.client.Query(key)
	switch outcome.Kind {
	case client.Found:
		return outcome.Value, true, nil
	case client.NotFound:
		return "", false, nil
	default:
		return "", false, dict.NewError(dict.RetCRetry, fmt.Sprintf("%s: lookup of %q failed: %v", d.name, key, outcome.Err))
	}
}

func (d *Dict) Name() string {
	return d.name
}

// Close is a no-op, every query closes its own connection
func (d *Dict) Close() error {
	return nil
}

// Client returns the underlying lookup client
func (d *Dict) Client() *client.ErlangClient {
	return d.client
}
