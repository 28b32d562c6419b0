package serve

import (
	"errors"
	"fmt"
	cmdUtil "github.com/ValentinKolb/erlmap/cmd/util"
	"github.com/ValentinKolb/erlmap/rpc/common"
	"github.com/ValentinKolb/erlmap/rpc/server"
	httpTransport "github.com/ValentinKolb/erlmap/rpc/transport/http"
	"github.com/lni/dragonboat/v4/logger"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"net/http"
	"os"
	"os/signal"
	"syscall"
)

var Logger = logger.GetLogger("server")

var (
	serveCmdConfig = &common.ServerConfig{}
	ServeCmd       = &cobra.Command{
		Use:     "serve",
		Short:   "Start the socketmap server",
		Long:    `Start the socketmap server with the specified configuration. The configuration can be set via command line flags or environment variables. The format of the environment variables is ERLMAP_<flag> (e.g. ERLMAP_TIMEOUT=15)`,
		PreRunE: processConfig,
		RunE:    run,
	}
)

func init() {
	// initialize viper
	cobra.OnInitialize(cmdUtil.InitConfig)

	// add flags
	key := "maps"
	ServeCmd.PersistentFlags().String(key, "", cmdUtil.WrapString("Comma-separated list of maps to serve. Format: NAME=TYPE:PATH (e.g. aliases=erlang:/etc/erlmap/aliases.cf)"))

	key = "fold-case"
	ServeCmd.PersistentFlags().Bool(key, false, cmdUtil.WrapString("Lowercase keys before the lookup"))

	key = "transport"
	ServeCmd.PersistentFlags().String(key, "unix", cmdUtil.WrapString("transport to use (http, tcp, unix)"))

	key = "timeout"
	ServeCmd.PersistentFlags().Int64(key, 10, cmdUtil.WrapString("Idle timeout in seconds of a socketmap connection (0 = no timeout)"))

	key = "endpoint"
	ServeCmd.PersistentFlags().String(key, "/tmp/erlmap.sock", cmdUtil.WrapString("The address on which the socketmap server will listen (e.g. localhost:8080, /tmp/erlmap.sock, ...)"))

	key = "metrics-endpoint"
	ServeCmd.PersistentFlags().String(key, "", cmdUtil.WrapString("Address of the prometheus /metrics endpoint (e.g. localhost:9090, empty = disabled)"))

	key = "transport-tcp-nodelay"
	ServeCmd.PersistentFlags().Bool(key, true, cmdUtil.WrapString("Whether to enable TCP_NODELAY on socketmap connections"))

	key = "transport-tcp-keepalive"
	ServeCmd.PersistentFlags().Int(key, 0, cmdUtil.WrapString("The keepalive interval for socketmap connections (in seconds)"))

	key = "transport-tcp-linger"
	ServeCmd.PersistentFlags().Int(key, 0, cmdUtil.WrapString("The linger time for socketmap connections (in seconds)"))

	key = "transport-socket-write-buffer"
	ServeCmd.PersistentFlags().Int(key, 0, cmdUtil.WrapString("The socket write buffer size (0 = system default)"))

	key = "transport-socket-read-buffer"
	ServeCmd.PersistentFlags().Int(key, 0, cmdUtil.WrapString("The socket read buffer size (0 = system default)"))
}

// processConfig reads the configuration from the command line flags and environment variables and converts them to the server configuration
func processConfig(cmd *cobra.Command, _ []string) error {
	// bind the flags to viper
	if err := viper.BindPFlags(cmd.Flags()); err != nil {
		return err
	}

	// parse maps
	maps, err := cmdUtil.ParseMaps(viper.GetString("maps"))
	if err != nil {
		return err
	}
	serveCmdConfig.Maps = maps

	// read the configuration from the command line flags and environment variables
	serveCmdConfig.FoldCase = viper.GetBool("fold-case")
	serveCmdConfig.TimeoutSecond = viper.GetInt64("timeout")
	serveCmdConfig.MetricsEndpoint = viper.GetString("metrics-endpoint")
	serveCmdConfig.LogLevel = viper.GetString("log-level")
	serveCmdConfig.Transport = common.ServerTransportConfig{
		Endpoint: viper.GetString("endpoint"),
		SocketConf: common.SocketConf{
			WriteBufferSize: viper.GetInt("transport-socket-write-buffer"),
			ReadBufferSize:  viper.GetInt("transport-socket-read-buffer"),
		},
		TCPConf: common.TCPConf{
			TCPNoDelay:      viper.GetBool("transport-tcp-nodelay"),
			TCPKeepAliveSec: viper.GetInt("transport-tcp-keepalive"),
			TCPLingerSec:    viper.GetInt("transport-tcp-linger"),
		},
	}

	if serveCmdConfig.TimeoutSecond < 0 {
		return fmt.Errorf("timeout must not be negative")
	}

	return common.InitLoggers(serveCmdConfig.LogLevel)
}

// run starts the socketmap server
func run(_ *cobra.Command, _ []string) error {

	// Parse the transport
	t, err := cmdUtil.GetSocketmapServerTransport()
	if err != nil {
		return err
	}

	serv := server.NewSocketmapServer(
		*serveCmdConfig,
		t,
	)

	// expose metrics
	if endpoint := serveCmdConfig.MetricsEndpoint; endpoint != "" {
		go serveMetrics(endpoint)
	}

	// stop on signal
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigs
		Logger.Infof("received %v, shutting down", sig)
		if err := serv.Close(); err != nil {
			Logger.Warningf("failed to stop server: %v", err)
		}
	}()

	return serv.Serve()
}

// serveMetrics serves all metrics in the prometheus text format
func serveMetrics(endpoint string) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /metrics", httpTransport.MetricsHandler)

	Logger.Infof("metrics available at http://%s/metrics", endpoint)
	if err := http.ListenAndServe(endpoint, mux); err != nil && !errors.Is(err, http.ErrServerClosed) {
		Logger.Errorf("metrics endpoint failed: %v", err)
	}
}
