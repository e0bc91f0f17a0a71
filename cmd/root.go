package cmd

import (
	"fmt"
	"os"

	"github.com/scribedb/scribe/cmd/daemon"
	"github.com/scribedb/scribe/cmd/serve"
	"github.com/scribedb/scribe/cmd/sql"
	"github.com/scribedb/scribe/cmd/util"
	"github.com/spf13/cobra"
)

const (
	Version = "1.0.0"
)

var (

	// RootCmd represents the base command when called without any subcommands
	RootCmd = &cobra.Command{
		Use:   "scribe",
		Short: "write-serialized embedded SQLite",
		Long: fmt.Sprintf(`scribe (v%s)

A write-serialization layer for embedded SQLite: all writers talk to a
single background daemon (scribed) that owns the database file, executes
batches in FIFO order and survives its clients.`, Version),
	}

	versionCmd = &cobra.Command{
		Use:   "version",
		Short: "Print the version number of scribe",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("scribe v%s\n", Version)
		},
	}
)

func init() {
	// Add Commands
	RootCmd.AddCommand(serve.ServeCmd)
	RootCmd.AddCommand(sql.SQLCommands)
	RootCmd.AddCommand(daemon.DaemonCommands)
	RootCmd.AddCommand(versionCmd)

	// Add Flags
	key := "serializer"
	RootCmd.PersistentFlags().String(key, "json", util.WrapString("serializer to use (json, gob)"))
	key = "transport"
	RootCmd.PersistentFlags().String(key, "unix", util.WrapString("transport to use (unix, tcp)"))
	key = "log-level"
	RootCmd.PersistentFlags().String(key, "info", util.WrapString("level at which logs are emitted (trace, debug, info, warn, error)"))
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the RootCmd.
func Execute() {
	if err := RootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
