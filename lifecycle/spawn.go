package lifecycle

import (
	"fmt"
	"os"
	"os/exec"
	"time"

	"github.com/scribedb/scribe/rpc/common"
	"github.com/shirou/gopsutil/v4/process"
)

// --------------------------------------------------------------------------
// Spawn
// --------------------------------------------------------------------------

const readyProbeInterval = 200 * time.Millisecond

// Start launches the daemon and blocks until it answers pings. When a
// daemon is already running for this database, Start is a no-op: either
// the initial ping succeeds, or our spawn loses the writer-lock race and
// exits while the winner answers the readiness probes.
func (m *Manager) Start() error {
	if m.pinger.Ping() {
		return nil
	}

	cmd := exec.Command(m.config.BinaryPath,
		"serve",
		"--db", m.config.DBPath,
		"--endpoint", m.config.Endpoint,
	)

	// detach: own session, no controlling terminal, no inherited stdio
	cmd.SysProcAttr = sysProcAttr()
	devNull, err := os.OpenFile(os.DevNull, os.O_RDWR, 0)
	if err != nil {
		return common.WrapError(common.ErrKindLifecycle, "failed to open /dev/null", err)
	}
	defer devNull.Close()
	cmd.Stdin = devNull
	cmd.Stdout = devNull
	cmd.Stderr = devNull

	if err := cmd.Start(); err != nil {
		return common.WrapError(common.ErrKindLifecycle, "failed to spawn daemon", err)
	}

	pid := cmd.Process.Pid
	if err := cmd.Process.Release(); err != nil {
		m.logger.Warn("lifecycle.spawn.release_failed", "error", err.Error())
	}

	m.logger.Info("lifecycle.spawn.started", "pid", pid, "endpoint", m.config.Endpoint)
	return m.awaitReady(pid)
}

// awaitReady polls the daemon until it answers a ping or the start timeout
// elapses. A spawned process that died without anyone answering is
// reported immediately instead of waiting out the timeout.
func (m *Manager) awaitReady(pid int) error {
	deadline := time.Now().Add(m.config.StartTimeout)

	for {
		if m.pinger.Ping() {
			return nil
		}
		if time.Now().After(deadline) {
			return common.NewError(common.ErrKindLifecycle,
				fmt.Sprintf("daemon did not become ready within %s", m.config.StartTimeout))
		}

		if alive, err := process.PidExists(int32(pid)); err == nil && !alive {
			// the spawn may have lost the lock race to a healthy daemon;
			// one more ping decides
			if m.pinger.Ping() {
				return nil
			}
			return common.NewError(common.ErrKindLifecycle, "daemon exited before becoming ready")
		}

		time.Sleep(readyProbeInterval)
	}
}
