package lifecycle

import (
	"context"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/shirou/gopsutil/v4/process"
	"pkt.systems/pslog"
)

// --------------------------------------------------------------------------
// Manager
// --------------------------------------------------------------------------

// Pinger probes daemon liveness over the wire. The rpc client satisfies
// this; tests inject fakes.
type Pinger interface {
	Ping() bool
}

// Config holds all parameters of the daemon lifecycle.
type Config struct {
	// BinaryPath is where the daemon executable is (or gets) installed
	BinaryPath string

	// DownloadURL is where EnsureInstalled fetches the daemon binary from
	DownloadURL string

	// SHA256 is the hex digest the downloaded binary must match. Installs
	// without a digest are refused.
	SHA256 string

	// DBPath and Endpoint are passed to the spawned daemon
	DBPath   string
	Endpoint string

	// StartTimeout bounds the wait for a spawned daemon to answer pings
	// (0 = 5 seconds)
	StartTimeout time.Duration

	// HealthInterval is the period of the health check loop (0 = 30 seconds)
	HealthInterval time.Duration

	// RestartCooldown is the minimum gap between automatic restarts
	// (0 = 1 minute)
	RestartCooldown time.Duration
}

// DaemonState is a point-in-time snapshot of the managed daemon.
type DaemonState struct {
	Installed       bool
	Running         bool
	PID             int
	LastHealthCheck time.Time
}

// Manager installs, starts and watches the scribed daemon. It satisfies
// the client's IStarter interface, which is how a failed write turns into
// an auto-start cycle.
type Manager struct {
	config Config
	pinger Pinger
	logger pslog.Logger

	// startFn is m.Start; tests swap it to observe restart decisions
	startFn func() error

	mu          sync.Mutex
	lastRestart time.Time
	lastCheck   time.Time
}

// NewManager creates a lifecycle manager. A nil logger is replaced with a
// no-op logger.
func NewManager(config Config, pinger Pinger, logger pslog.Logger) *Manager {
	if logger == nil {
		logger = pslog.NoopLogger()
	}
	if config.StartTimeout <= 0 {
		config.StartTimeout = 5 * time.Second
	}
	if config.HealthInterval <= 0 {
		config.HealthInterval = 30 * time.Second
	}
	if config.RestartCooldown <= 0 {
		config.RestartCooldown = time.Minute
	}

	m := &Manager{
		config: config,
		pinger: pinger,
		logger: logger,
	}
	m.startFn = m.Start
	return m
}

// IsRunning reports whether the daemon currently answers pings.
func (m *Manager) IsRunning() bool {
	return m.pinger.Ping()
}

// PID returns the pid recorded in the daemon's lock file, if that process
// is still alive.
func (m *Manager) PID() (int, bool) {
	data, err := os.ReadFile(m.config.DBPath + ".lock")
	if err != nil {
		return 0, false
	}
	pid, err := strconv.Atoi(strings.TrimSpace(string(data)))
	if err != nil || pid <= 0 {
		return 0, false
	}
	alive, err := process.PidExists(int32(pid))
	if err != nil || !alive {
		return 0, false
	}
	return pid, true
}

// State returns a snapshot of the daemon's lifecycle state.
func (m *Manager) State() DaemonState {
	m.mu.Lock()
	lastCheck := m.lastCheck
	m.mu.Unlock()

	pid, _ := m.PID()
	installed := false
	if _, err := os.Stat(m.config.BinaryPath); err == nil {
		installed = true
	}

	return DaemonState{
		Installed:       installed,
		Running:         m.IsRunning(),
		PID:             pid,
		LastHealthCheck: lastCheck,
	}
}

// Run is the health check loop. It probes the daemon every HealthInterval
// and restarts it at most once per RestartCooldown. The loop exits when
// ctx is canceled.
func (m *Manager) Run(ctx context.Context) {
	ticker := time.NewTicker(m.config.HealthInterval)
	defer ticker.Stop()

	m.logger.Info("lifecycle.health.started", "interval", m.config.HealthInterval.String())

	for {
		select {
		case <-ctx.Done():
			m.logger.Info("lifecycle.health.stopped")
			return
		case <-ticker.C:
			m.checkOnce()
		}
	}
}

// checkOnce runs a single health probe and, when it fails, decides whether
// a restart is due.
func (m *Manager) checkOnce() {
	m.mu.Lock()
	m.lastCheck = time.Now()
	m.mu.Unlock()

	if m.pinger.Ping() {
		m.logger.Debug("lifecycle.health.ok")
		return
	}

	m.logger.Warn("lifecycle.health.unreachable", "endpoint", m.config.Endpoint)

	m.mu.Lock()
	due := time.Since(m.lastRestart) >= m.config.RestartCooldown
	if due {
		m.lastRestart = time.Now()
	}
	m.mu.Unlock()

	if !due {
		m.logger.Debug("lifecycle.health.restart_suppressed")
		return
	}

	if err := m.startFn(); err != nil {
		m.logger.Error("lifecycle.health.restart_failed", "error", err.Error())
	} else {
		m.logger.Info("lifecycle.health.restarted")
	}
}
