package query

import (
	"fmt"
	"github.com/ValentinKolb/erlmap/cmd/util"
	"github.com/ValentinKolb/erlmap/lib/dict/erlang"
	"github.com/spf13/cobra"
)

var (
	erlangDict *erlang.Dict

	// QueryCommands looks up keys directly on the Erlang nodes
	QueryCommands = &cobra.Command{
		Use:   "query [key...]",
		Short: "Look up keys on the Erlang nodes",
		Long: util.WrapString(`Look up one or more keys by calling the configured function on the Erlang nodes.
The map can be configured with a config file (--config) or with flags and ERLMAP_<flag> environment variables.`),
		Args:              cobra.MinimumNArgs(1),
		PersistentPreRunE: setupErlangDict,
		PersistentPostRun: closeErlangDict,
		RunE:              runQuery,
	}
)

func init() {
	// Initialize viper
	cobra.OnInitialize(util.InitConfig)

	// Add the map flags
	util.SetupErlangFlags(QueryCommands)

	// Add subcommands
	QueryCommands.AddCommand(perfTestCmd)
}

// setupErlangDict initializes the erlang map
func setupErlangDict(cmd *cobra.Command, _ []string) error {
	// Bind command flags to viper
	if err := util.BindCommandFlags(cmd); err != nil {
		return err
	}

	if err := util.InitLogging(); err != nil {
		return err
	}

	var err error
	erlangDict, err = util.OpenErlangDict()
	return err
}

func closeErlangDict(_ *cobra.Command, _ []string) {
	if erlangDict != nil {
		_ = erlangDict.Close()
	}
}

// runQuery prints one line per key and fails if any lookup must be retried
func runQuery(cmd *cobra.Command, args []string) error {
	var failed int
	for _, key := range args {
		value, ok, err := erlangDict.Lookup(key)
		switch {
		case err != nil:
			failed++
			fmt.Fprintf(cmd.OutOrStdout(), "%s: error: %v\n", key, err)
		case !ok:
			fmt.Fprintf(cmd.OutOrStdout(), "%s: not found\n", key)
		default:
			fmt.Fprintf(cmd.OutOrStdout(), "%s: %s\n", key, value)
		}
	}

	if failed > 0 {
		return fmt.Errorf("%d of %d lookups failed", failed, len(args))
	}
	return nil
}

