package util

import (
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/scribedb/scribe/rpc/common"
	"github.com/scribedb/scribe/rpc/serializer"
	"github.com/scribedb/scribe/rpc/transport"
	"github.com/scribedb/scribe/rpc/transport/tcp"
	"github.com/scribedb/scribe/rpc/transport/unix"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"pkt.systems/pslog"
)

const (
	// Wrap is the number of characters to Wrap the help text at
	Wrap int = 50
)

// WrapString wraps a string at Wrap characters
func WrapString(text string) string {
	var wrappedLines []string
	var currentLine strings.Builder
	lineWidth := 0

	for _, word := range strings.Fields(text) {
		wordWidth := len(word)

		// Check if we need to wrap
		if lineWidth > 0 && lineWidth+1+wordWidth > Wrap {
			wrappedLines = append(wrappedLines, currentLine.String())
			currentLine.Reset()
			lineWidth = 0
		}

		// Add space before word (if not first word on line)
		if lineWidth > 0 {
			currentLine.WriteString(" ")
			lineWidth++
		}

		// Add the word
		currentLine.WriteString(word)
		lineWidth += wordWidth
	}

	// Add any remaining text
	if currentLine.Len() > 0 {
		wrappedLines = append(wrappedLines, currentLine.String())
	}

	return strings.Join(wrappedLines, "\n")
}

// SetupRPCClientFlags adds common daemon connection flags to a command
func SetupRPCClientFlags(cmd *cobra.Command) {
	key := "db"
	cmd.PersistentFlags().String(key, "scribe.db", WrapString("Path of the database file the daemon serves"))

	key = "endpoint"
	cmd.PersistentFlags().String(key, common.DefaultSocketPath(), WrapString("The channel address of the daemon (socket path for unix, host:port for tcp)"))

	key = "timeout"
	cmd.PersistentFlags().Int(key, 10, WrapString("The timeout in seconds for a single exchange"))

	key = "max-idle-conns"
	cmd.PersistentFlags().Int(key, 4, WrapString("How many idle connections the client keeps pooled"))

	key = "max-frame-size"
	cmd.PersistentFlags().Int(key, common.DefaultMaxFrameSize, WrapString("Maximum size of a single frame payload in bytes"))
}

// InitClientConfig initializes configuration from environment variables
func InitClientConfig() {
	// load env files
	_ = godotenv.Load(".env")
	_ = godotenv.Load(".env.local")

	// initialize viper
	viper.SetEnvPrefix("scribe")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv() // read in environment variables that match
}

// GetClientConfig reads client configuration from viper
func GetClientConfig() *common.ClientConfig {
	return &common.ClientConfig{
		Endpoint:      viper.GetString("endpoint"),
		TimeoutSecond: viper.GetInt("timeout"),
		MaxIdleConns:  viper.GetInt("max-idle-conns"),
		MaxFrameSize:  viper.GetInt("max-frame-size"),
	}
}

// GetSerializer creates a serializer based on configuration
func GetSerializer() (serializer.IRPCSerializer, error) {
	switch viper.GetString("serializer") {
	case "json":
		return serializer.NewJSONSerializer(), nil
	case "gob":
		return serializer.NewGOBSerializer(), nil
	default:
		return nil, fmt.Errorf("invalid serializer %s", viper.GetString("serializer"))
	}
}

// GetClientTransport creates a client transport based on configuration
func GetClientTransport() (transport.IRPCClientTransport, error) {
	switch viper.GetString("transport") {
	case "unix":
		return unix.NewUnixClientTransport(), nil
	case "tcp":
		return tcp.NewTCPClientTransport(), nil
	default:
		return nil, fmt.Errorf("invalid transport %s", viper.GetString("transport"))
	}
}

// GetServerTransport creates a server transport based on configuration
func GetServerTransport(logger pslog.Logger) (transport.IRPCServerTransport, error) {
	switch viper.GetString("transport") {
	case "unix":
		return unix.NewUnixServerTransport(logger), nil
	case "tcp":
		return tcp.NewTCPServerTransport(logger), nil
	default:
		return nil, fmt.Errorf("invalid transport %s", viper.GetString("transport"))
	}
}

// GetLogger creates a structured logger for the configured log level
func GetLogger() pslog.Logger {
	logger := pslog.NewStructured(os.Stderr)
	if level, ok := pslog.ParseLevel(viper.GetString("log-level")); ok {
		logger = logger.LogLevel(level)
	}
	return logger
}

// BindCommandFlags binds a command's flags (own and inherited) to viper
func BindCommandFlags(cmd *cobra.Command) error {
	if err := viper.BindPFlags(cmd.Flags()); err != nil {
		return err
	}
	return viper.BindPFlags(cmd.InheritedFlags())
}
