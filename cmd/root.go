package cmd

import (
	"fmt"
	"github.com/ValentinKolb/erlmap/cmd/client"
	"github.com/ValentinKolb/erlmap/cmd/query"
	"github.com/ValentinKolb/erlmap/cmd/serve"
	"github.com/ValentinKolb/erlmap/cmd/util"
	_ "github.com/ValentinKolb/erlmap/lib/dict/erlang"
	"github.com/spf13/cobra"
	"os"
)

const (
	Version = "0.3.0"
)

var (

	// RootCmd represents the base command when called without any subcommands
	RootCmd = &cobra.Command{
		Use:   "erlmap",
		Short: "key lookups backed by Erlang nodes",
		Long: fmt.Sprintf(`erlmap (v%s)

A read-only lookup table that resolves keys by calling a function on
a remote Erlang node. Keys can be queried directly or served to a mail
server over the socketmap protocol.`, Version),
		SilenceUsage: true,
	}
	versionCmd = &cobra.Command{
		Use:   "version",
		Short: "Print the version number of erlmap",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("erlmap v%s\n", Version)
		},
	}
)

func init() {
	// Add Commands
	RootCmd.AddCommand(serve.ServeCmd)
	RootCmd.AddCommand(query.QueryCommands)
	RootCmd.AddCommand(client.ClientCommands)
	RootCmd.AddCommand(versionCmd)

	// Add Flags
	key := "log-level"
	RootCmd.PersistentFlags().String(key, "warn", util.WrapString("LogLevel is the level at which logs will be output (debug, info, warn, error)"))
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the RootCmd.
func Execute() {
	if err := RootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
