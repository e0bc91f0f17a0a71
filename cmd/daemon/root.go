package daemon

import (
	"github.com/scribedb/scribe/cmd/util"
	"github.com/scribedb/scribe/rpc/client"
	"github.com/spf13/cobra"
)

var (
	rpcClient client.IClient

	// DaemonCommands represents the daemon command group
	DaemonCommands = &cobra.Command{
		Use:               "daemon",
		Short:             "Inspect and control the scribed write daemon",
		PersistentPreRunE: setupDaemonClient,
	}
)

func init() {
	// Initialize viper
	cobra.OnInitialize(util.InitClientConfig)

	// Add common daemon connection flags
	util.SetupRPCClientFlags(DaemonCommands)

	// Add subcommands
	DaemonCommands.AddCommand(pingCmd)
	DaemonCommands.AddCommand(statusCmd)
	DaemonCommands.AddCommand(startCmd)
	DaemonCommands.AddCommand(shutdownCmd)
	DaemonCommands.AddCommand(installCmd)
	DaemonCommands.AddCommand(maintenanceCmd)
}

// setupDaemonClient initializes the daemon client. Control commands never
// auto-start the daemon: observing and healing must stay separate actions.
func setupDaemonClient(cmd *cobra.Command, _ []string) error {
	if err := util.BindCommandFlags(cmd); err != nil {
		return err
	}

	config := util.GetClientConfig()

	s, err := util.GetSerializer()
	if err != nil {
		return err
	}
	t, err := util.GetClientTransport()
	if err != nil {
		return err
	}

	rpcClient = client.NewRPCClient(*config, t, s, nil, util.GetLogger())
	return nil
}
