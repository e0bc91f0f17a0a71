package serve

import (
	"fmt"
	"os"
	"time"

	cmdUtil "github.com/scribedb/scribe/cmd/util"
	"github.com/scribedb/scribe/rpc/common"
	"github.com/scribedb/scribe/rpc/server"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	serveCmdConfig = &common.ServerConfig{}
	ServeCmd       = &cobra.Command{
		Use:     "serve",
		Short:   "Run the scribed write daemon",
		Long:    `Run the scribed write daemon in the foreground. The daemon takes exclusive ownership of the database file and serves write batches over its channel until it receives a shutdown request. Configuration can be set via command line flags or environment variables; the format of the environment variables is SCRIBE_<flag> (e.g. SCRIBE_TIMEOUT=15).`,
		PreRunE: processConfig,
		RunE:    run,
	}
)

func init() {
	// initialize viper
	cobra.OnInitialize(cmdUtil.InitClientConfig)

	// add flags
	key := "db"
	ServeCmd.PersistentFlags().String(key, "scribe.db", cmdUtil.WrapString("Path of the database file the daemon takes exclusive ownership of"))

	key = "endpoint"
	ServeCmd.PersistentFlags().String(key, common.DefaultSocketPath(), cmdUtil.WrapString("The channel address to listen on (socket path for unix, host:port for tcp)"))

	key = "timeout"
	ServeCmd.PersistentFlags().Int(key, 10, cmdUtil.WrapString("Timeout in seconds for reads, writes and a single batch execution"))

	key = "max-frame-size"
	ServeCmd.PersistentFlags().Int(key, common.DefaultMaxFrameSize, cmdUtil.WrapString("Maximum size of a single frame payload in bytes"))

	key = "replay-ttl"
	ServeCmd.PersistentFlags().Duration(key, 5*time.Minute, cmdUtil.WrapString("How long completed request IDs are remembered for the replay guard"))

	key = "metrics-endpoint"
	ServeCmd.PersistentFlags().String(key, "", cmdUtil.WrapString("Optional HTTP address to expose Prometheus metrics on (e.g. localhost:9090)"))
}

// processConfig reads the configuration from the command line flags and
// environment variables and converts them to the server configuration
func processConfig(cmd *cobra.Command, _ []string) error {
	// bind the flags to viper
	if err := viper.BindPFlags(cmd.Flags()); err != nil {
		return err
	}

	serveCmdConfig.DBPath = viper.GetString("db")
	serveCmdConfig.Endpoint = viper.GetString("endpoint")
	serveCmdConfig.TimeoutSecond = viper.GetInt("timeout")
	serveCmdConfig.MaxFrameSize = viper.GetInt("max-frame-size")
	serveCmdConfig.ReplayTTL = viper.GetDuration("replay-ttl")
	serveCmdConfig.MetricsEndpoint = viper.GetString("metrics-endpoint")
	serveCmdConfig.LogLevel = viper.GetString("log-level")

	if serveCmdConfig.DBPath == "" {
		return fmt.Errorf("--db must not be empty")
	}
	return nil
}

// run starts the daemon and maps its terminal error to the process exit
// code so supervisors can tell a lost lock race from a broken database.
func run(_ *cobra.Command, _ []string) error {
	logger := cmdUtil.GetLogger()

	transport, err := cmdUtil.GetServerTransport(logger)
	if err != nil {
		return err
	}
	serializer, err := cmdUtil.GetSerializer()
	if err != nil {
		return err
	}

	s := server.NewRPCServer(*serveCmdConfig, transport, serializer, logger)
	if err := s.Serve(); err != nil {
		logger.Error("daemon.exit", "error", err.Error())
		os.Exit(server.ExitCode(err))
	}
	return nil
}
