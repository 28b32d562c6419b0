package client

import (
	"fmt"
	"github.com/ValentinKolb/erlmap/cmd/util"
	"github.com/ValentinKolb/erlmap/rpc/common"
	"github.com/ValentinKolb/erlmap/rpc/transport"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"strings"
)

var (
	socketmapTransport transport.ISocketmapClientTransport

	// ClientCommands represents the socketmap client command group
	ClientCommands = &cobra.Command{
		Use:                "client",
		Short:              "Query a running socketmap server",
		PersistentPreRunE:  setupSocketmapClient,
		PersistentPostRunE: closeSocketmapClient,
	}

	getCmd = &cobra.Command{
		Use:   "get [map] [key]",
		Short: "Looks up a key in a map of the server",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			req := common.NewRequest(args[0], args[1])
			payload, err := socketmapTransport.Send(req.Bytes())
			if err != nil {
				return err
			}

			resp, err := common.ParseResponse(payload)
			if err != nil {
				return err
			}

			switch resp.Status {
			case common.StatusOK:
				fmt.Fprintln(cmd.OutOrStdout(), resp.Data)
			case common.StatusNotFound:
				fmt.Fprintln(cmd.OutOrStdout(), "not found")
			default:
				return fmt.Errorf("server replied %s %s", resp.Status, resp.Data)
			}
			return nil
		},
	}
)

func init() {
	// Initialize viper
	cobra.OnInitialize(util.InitConfig)

	// Add the socketmap flags
	util.SetupSocketmapClientFlags(ClientCommands)

	// Add subcommands
	ClientCommands.AddCommand(getCmd)
}

// setupSocketmapClient connects to the socketmap server
func setupSocketmapClient(cmd *cobra.Command, _ []string) error {
	// Bind command flags to viper
	if err := util.BindCommandFlags(cmd); err != nil {
		return err
	}

	if err := util.InitLogging(); err != nil {
		return err
	}

	t, err := util.GetSocketmapClientTransport()
	if err != nil {
		return err
	}

	endpoints := strings.Split(viper.GetString("endpoints"), ",")
	if err := t.Connect(endpoints, viper.GetInt("timeout")); err != nil {
		return err
	}
	socketmapTransport = t
	return nil
}

func closeSocketmapClient(_ *cobra.Command, _ []string) error {
	if socketmapTransport == nil {
		return nil
	}
	return socketmapTransport.Close()
}
