package daemon

import (
	"context"
	"fmt"
	"os"

	"github.com/scribedb/scribe/cmd/util"
	"github.com/scribedb/scribe/lifecycle"
	"github.com/scribedb/scribe/rpc/common"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	pingCmd = &cobra.Command{
		Use:   "ping",
		Short: "Check whether the daemon answers",
		RunE: func(cmd *cobra.Command, args []string) error {
			if !rpcClient.Ping() {
				return fmt.Errorf("daemon is not reachable at %s", viper.GetString("endpoint"))
			}
			rev, err := rpcClient.Rev()
			if err != nil {
				return err
			}
			fmt.Printf("daemon is running (rev: %d)\n", rev)
			return nil
		},
	}

	statusCmd = &cobra.Command{
		Use:   "status",
		Short: "Show install and liveness state of the daemon",
		RunE: func(cmd *cobra.Command, args []string) error {
			mgr, err := newManager()
			if err != nil {
				return err
			}

			state := mgr.State()
			fmt.Printf("installed: %v\n", state.Installed)
			fmt.Printf("running:   %v\n", state.Running)
			if state.PID > 0 {
				fmt.Printf("pid:       %d\n", state.PID)
			}
			return nil
		},
	}

	startCmd = &cobra.Command{
		Use:   "start",
		Short: "Start the daemon if it is not already running",
		RunE: func(cmd *cobra.Command, args []string) error {
			mgr, err := newManager()
			if err != nil {
				return err
			}
			if err := mgr.Start(); err != nil {
				return err
			}
			fmt.Println("daemon is running")
			return nil
		},
	}

	shutdownCmd = &cobra.Command{
		Use:   "shutdown",
		Short: "Ask the daemon to drain its queue and exit",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := rpcClient.Shutdown(); err != nil {
				return err
			}
			fmt.Println("daemon shut down")
			return nil
		},
	}

	installCmd = &cobra.Command{
		Use:   "install",
		Short: "Download and install the daemon binary",
		Long:  `Download the daemon binary, verify it against the given SHA-256 digest and install it atomically. Installs without a digest are refused.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			url, _ := cmd.Flags().GetString("url")
			sha, _ := cmd.Flags().GetString("sha256")
			path, _ := cmd.Flags().GetString("path")

			mgr := lifecycle.NewManager(lifecycle.Config{
				BinaryPath:  path,
				DownloadURL: url,
				SHA256:      sha,
			}, rpcClient, util.GetLogger())

			if err := mgr.EnsureInstalled(context.Background()); err != nil {
				return err
			}
			fmt.Printf("installed %s\n", path)
			return nil
		},
	}

	maintenanceCmd = &cobra.Command{
		Use:   "maintenance [checkpoint|close|reopen]",
		Short: "Run a storage maintenance operation on the daemon",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var op common.MaintenanceOp
			switch args[0] {
			case "checkpoint":
				op = common.OpCheckpoint
			case "close":
				op = common.OpClose
			case "reopen":
				op = common.OpReopen
			default:
				return fmt.Errorf("unknown maintenance op: %s", args[0])
			}

			if err := rpcClient.Maintenance(op); err != nil {
				return err
			}
			fmt.Printf("%s done\n", args[0])
			return nil
		},
	}
)

func init() {
	installCmd.Flags().String("url", "", "download URL of the daemon binary")
	installCmd.Flags().String("sha256", "", "hex SHA-256 digest the binary must match")
	installCmd.Flags().String("path", "", "install path of the daemon binary")
	_ = installCmd.MarkFlagRequired("url")
	_ = installCmd.MarkFlagRequired("sha256")
	_ = installCmd.MarkFlagRequired("path")
}

// newManager builds a lifecycle manager that spawns this same binary with
// the serve subcommand.
func newManager() (*lifecycle.Manager, error) {
	self, err := os.Executable()
	if err != nil {
		return nil, err
	}
	return lifecycle.NewManager(lifecycle.Config{
		BinaryPath: self,
		DBPath:     viper.GetString("db"),
		Endpoint:   viper.GetString("endpoint"),
	}, rpcClient, util.GetLogger()), nil
}
