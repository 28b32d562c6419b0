package server

import (
	"fmt"
	"github.com/ValentinKolb/erlmap/lib/dict"
	"github.com/ValentinKolb/erlmap/rpc/common"
	"github.com/ValentinKolb/erlmap/rpc/transport"
	"github.com/VictoriaMetrics/metrics"
	"github.com/lni/dragonboat/v4/logger"
	"github.com/puzpuzpuz/xsync/v3"
	"sort"
)

var Logger = logger.GetLogger("server")

// serverDict is a map served by the socketmap server together with
// the adapter that handles requests for it
type serverDict struct {
	Dict    dict.IDict
	Adapter IRPCServerAdapter
}

// NewSocketmapServer creates a new socketmap server
// It takes a config and a transport as parameters
//
// Usage:
//
//	s := server.NewSocketmapServer(
//		*config,
//		unix.NewUnixServerTransport(),
//	)
//
//	if err := s.Serve(); err != nil {
//		panic(err)
//	}
func NewSocketmapServer(
	config common.ServerConfig,
	transport transport.IRPCServerTransport,
) *SocketmapServer {
	Logger.Infof("Created socketmap server")
	Logger.Infof(config.String())

	return &SocketmapServer{
		config:    config,
		transport: transport,
		dicts:     xsync.NewMapOf[string, serverDict](),
	}
}

// SocketmapServer answers socketmap lookups for a set of named maps
type SocketmapServer struct {
	config    common.ServerConfig
	transport transport.IRPCServerTransport
	dicts     *xsync.MapOf[string, serverDict]
}

// AddDict serves an already opened map under name
func (s *SocketmapServer) AddDict(name string, d dict.IDict) {
	s.dicts.Store(name, serverDict{
		Dict:    d,
		Adapter: NewDictServerAdapter(),
	})
	Logger.Infof("serving %s as %s", d.Name(), name)
}

// Names returns the names of all served maps, sorted
func (s *SocketmapServer) Names() []string {
	var names []string
	s.dicts.Range(func(name string, _ serverDict) bool {
		names = append(names, name)
		return true
	})
	sort.Strings(names)
	return names
}

// handle answers one request payload
func (s *SocketmapServer) handle(payload []byte) []byte {
	var resp *common.Response

	req, err := common.ParseRequest(payload)
	if err != nil {
		resp = common.NewPermResponse(err.Error())
	} else if d, ok := s.dicts.Load(req.Name); !ok {
		// Case map does not exist -> error
		resp = common.NewPermResponse(fmt.Sprintf("unknown map %s", req.Name))
	} else {
		// Let the adapter handle the request
		resp = d.Adapter.Handle(req, d.Dict)
	}

	metrics.GetOrCreateCounter(fmt.Sprintf(`erlmap_socketmap_requests_total{status=%q}`, resp.Status)).Inc()
	Logger.Debugf("%q -> %s", payload, resp)
	return resp.Bytes()
}

// init opens all configured maps
func (s *SocketmapServer) init() error {
	var flags dict.Flags
	if s.config.FoldCase {
		flags |= dict.FlagFoldFix
	}

	for name, spec := range s.config.Maps {
		d, err := dict.Open(spec, dict.ReadOnly, flags)
		if err != nil {
			return fmt.Errorf("failed to open map %s: %w", name, err)
		}
		s.AddDict(name, d)
	}

	if s.dicts.Size() == 0 {
		return fmt.Errorf("%w: no maps to serve", common.ErrConfiguration)
	}

	// Configure the transport layer
	s.transport.RegisterHandler(s.handle)
	return nil
}

// Serve opens all configured maps and starts the transport layer.
// It blocks until Close is called or the listener fails.
func (s *SocketmapServer) Serve() error {
	if err := s.init(); err != nil {
		return err
	}
	return s.transport.Listen(s.config)
}

// Close stops the transport layer and closes all maps
func (s *SocketmapServer) Close() error {
	err := s.transport.Close()
	s.dicts.Range(func(name string, d serverDict) bool {
		if closeErr := d.Dict.Close(); closeErr != nil {
			Logger.Warningf("failed to close map %s: %v", name, closeErr)
		}
		return true
	})
	return err
}
