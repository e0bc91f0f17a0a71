package sql

import (
	"os"

	"github.com/scribedb/scribe/cmd/util"
	"github.com/scribedb/scribe/lifecycle"
	"github.com/scribedb/scribe/rpc/client"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	rpcClient client.IClient

	// SQLCommands represents the sql command group
	SQLCommands = &cobra.Command{
		Use:               "sql",
		Short:             "Execute SQL statements through the write daemon",
		PersistentPreRunE: setupSQLClient,
	}
)

func init() {
	// Initialize viper
	cobra.OnInitialize(util.InitClientConfig)

	// Add common daemon connection flags to the sql command
	util.SetupRPCClientFlags(SQLCommands)

	SQLCommands.PersistentFlags().Bool("no-autostart", false,
		util.WrapString("Fail instead of starting the daemon when it is not running"))

	// Add subcommands
	SQLCommands.AddCommand(execCmd)
	SQLCommands.AddCommand(batchCmd)
}

// setupSQLClient initializes the daemon client, wiring in the lifecycle
// manager so a missing daemon is started transparently on first use.
func setupSQLClient(cmd *cobra.Command, _ []string) error {
	// Bind command flags to viper
	if err := util.BindCommandFlags(cmd); err != nil {
		return err
	}

	config := util.GetClientConfig()
	logger := util.GetLogger()

	s, err := util.GetSerializer()
	if err != nil {
		return err
	}
	t, err := util.GetClientTransport()
	if err != nil {
		return err
	}

	var starter client.IStarter
	if !viper.GetBool("no-autostart") {
		// the daemon is this same binary running "serve"
		self, err := os.Executable()
		if err != nil {
			return err
		}

		probe := client.NewRPCClient(*config, t, s, nil, nil)
		starter = lifecycle.NewManager(lifecycle.Config{
			BinaryPath: self,
			DBPath:     viper.GetString("db"),
			Endpoint:   config.Endpoint,
		}, probe, logger)
	}

	rpcClient = client.NewRPCClient(*config, t, s, starter, logger)
	return nil
}
