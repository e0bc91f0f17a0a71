package common

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// --------------------------------------------------------------------------
// Daemon Identity and Address Derivation
// --------------------------------------------------------------------------

const (
	// DaemonName is the fixed daemon identifier.
	DaemonName = "scribed"

	// ProtocolVersion tags the wire protocol. It is baked into the channel
	// address so incompatible daemon versions never share an address.
	ProtocolVersion = "v1"
)

// DefaultSocketPath derives the local channel address from the daemon
// identifier and the protocol version tag. The socket lives in
// XDG_RUNTIME_DIR when set, otherwise in the system temp directory.
func DefaultSocketPath() string {
	name := fmt.Sprintf("%s-%s.sock", DaemonName, ProtocolVersion)
	if dir := os.Getenv("XDG_RUNTIME_DIR"); dir != "" {
		return filepath.Join(dir, name)
	}
	return filepath.Join(os.TempDir(), name)
}

// --------------------------------------------------------------------------
// Framing Limits
// --------------------------------------------------------------------------

// DefaultMaxFrameSize bounds the payload of a single frame. A length field
// of zero or above this limit is a protocol error: it signals a framing or
// version mismatch, not a transient fault.
const DefaultMaxFrameSize = 16 * 1024 * 1024 // 16 MB

// --------------------------------------------------------------------------
// Server configuration struct
// --------------------------------------------------------------------------

// ServerConfig holds all configuration parameters for the daemon process.
type ServerConfig struct {
	// DBPath is the SQLite file the daemon owns exclusively
	DBPath string

	// Endpoint is the channel address to listen on (socket path or host:port)
	Endpoint string

	// TimeoutSecond bounds per-connection reads and writes; 0 disables
	TimeoutSecond int

	// MaxFrameSize bounds a single frame payload (0 = DefaultMaxFrameSize)
	MaxFrameSize int

	// ReplayTTL is how long completed request IDs are remembered for the
	// replay guard (0 = 5 minutes)
	ReplayTTL time.Duration

	// MetricsEndpoint optionally exposes Prometheus metrics over HTTP
	MetricsEndpoint string

	// LogLevel is the level at which logs are emitted (trace, debug, info, warn, error)
	LogLevel string
}

// String returns a formatted representation of the configuration for the
// startup log.
func (c *ServerConfig) String() string {
	var sb strings.Builder

	addSection := func(title string) {
		sb.WriteString("\n")
		sb.WriteString(fmt.Sprintf("%s\n", strings.ToUpper(title)))
	}

	addField := func(name, value string) {
		sb.WriteString(fmt.Sprintf("  %-22s: %s\n", name, value))
	}

	addSection("Daemon")
	addField("Database", c.DBPath)
	addField("Endpoint", c.Endpoint)
	addField("Timeout", fmt.Sprintf("%d sec", c.TimeoutSecond))
	addField("Max Frame Size", fmt.Sprintf("%d bytes", c.MaxFrameSize))
	addField("Replay TTL", c.ReplayTTL.String())

	addSection("Logging")
	addField("Log Level", c.LogLevel)

	if c.MetricsEndpoint != "" {
		addSection("Metrics")
		addField("Endpoint", c.MetricsEndpoint)
	}

	return sb.String()
}

// --------------------------------------------------------------------------
// Client configuration struct
// --------------------------------------------------------------------------

// ClientConfig holds all configuration parameters for the client side.
type ClientConfig struct {
	// Endpoint is the channel address of the daemon
	Endpoint string

	// TimeoutSecond bounds the wait for a single response; 0 disables
	TimeoutSecond int

	// MaxIdleConns caps the idle connection pool (0 = 4)
	MaxIdleConns int

	// MaxFrameSize bounds a single frame payload (0 = DefaultMaxFrameSize)
	MaxFrameSize int
}

// String returns a formatted representation of the client configuration.
func (c *ClientConfig) String() string {
	var sb strings.Builder
	sb.WriteString("\nCLIENT CONFIGURATION\n")
	sb.WriteString(fmt.Sprintf("  %-22s: %s\n", "Endpoint", c.Endpoint))
	sb.WriteString(fmt.Sprintf("  %-22s: %d sec\n", "Timeout", c.TimeoutSecond))
	sb.WriteString(fmt.Sprintf("  %-22s: %d\n", "Max Idle Connections", c.MaxIdleConns))
	return sb.String()
}
