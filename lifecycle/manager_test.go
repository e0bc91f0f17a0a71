package lifecycle

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestStartIsNoopWhenDaemonAnswers(t *testing.T) {
	// the binary path does not exist; Start must not try to spawn it
	m := NewManager(Config{
		BinaryPath: filepath.Join(t.TempDir(), "missing"),
	}, &stubPinger{alive: true}, nil)

	if err := m.Start(); err != nil {
		t.Fatalf("expected no-op start, got %v", err)
	}
}

func TestHealthCheckRestartsAtMostOncePerCooldown(t *testing.T) {
	m := NewManager(Config{
		RestartCooldown: time.Hour,
	}, &stubPinger{alive: false}, nil)

	starts := 0
	m.startFn = func() error { starts++; return nil }

	for i := 0; i < 5; i++ {
		m.checkOnce()
	}
	if starts != 1 {
		t.Errorf("expected exactly 1 restart within the cooldown, got %d", starts)
	}
}

func TestHealthCheckRestartsAgainAfterCooldown(t *testing.T) {
	m := NewManager(Config{
		RestartCooldown: 10 * time.Millisecond,
	}, &stubPinger{alive: false}, nil)

	starts := 0
	m.startFn = func() error { starts++; return nil }

	m.checkOnce()
	time.Sleep(20 * time.Millisecond)
	m.checkOnce()

	if starts != 2 {
		t.Errorf("expected a second restart after the cooldown, got %d", starts)
	}
}

func TestHealthCheckSkipsRestartWhileHealthy(t *testing.T) {
	m := NewManager(Config{}, &stubPinger{alive: true}, nil)

	m.startFn = func() error {
		t.Error("restart attempted on a healthy daemon")
		return nil
	}
	m.checkOnce()

	if m.State().LastHealthCheck.IsZero() {
		t.Error("health check did not record its timestamp")
	}
}

func TestPIDFromLockFile(t *testing.T) {
	dir := t.TempDir()
	dbPath := filepath.Join(dir, "test.db")

	m := NewManager(Config{DBPath: dbPath}, &stubPinger{}, nil)

	// no lock file yet
	if _, ok := m.PID(); ok {
		t.Error("expected no pid without a lock file")
	}

	// our own pid is guaranteed to be alive
	if err := os.WriteFile(dbPath+".lock", []byte(fmt.Sprintf("%d\n", os.Getpid())), 0o644); err != nil {
		t.Fatal(err)
	}
	pid, ok := m.PID()
	if !ok || pid != os.Getpid() {
		t.Errorf("expected own pid %d, got %d (ok=%v)", os.Getpid(), pid, ok)
	}

	// garbage content is not a pid
	if err := os.WriteFile(dbPath+".lock", []byte("not-a-pid"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, ok := m.PID(); ok {
		t.Error("expected no pid for malformed lock file")
	}
}

func TestStateReflectsInstallAndLiveness(t *testing.T) {
	dir := t.TempDir()
	binPath := filepath.Join(dir, "scribed")
	pinger := &stubPinger{alive: false}

	m := NewManager(Config{BinaryPath: binPath, DBPath: filepath.Join(dir, "test.db")}, pinger, nil)

	state := m.State()
	if state.Installed || state.Running {
		t.Errorf("expected pristine state, got %+v", state)
	}

	if err := os.WriteFile(binPath, []byte("bin"), 0o755); err != nil {
		t.Fatal(err)
	}
	pinger.alive = true

	state = m.State()
	if !state.Installed || !state.Running {
		t.Errorf("expected installed and running, got %+v", state)
	}
}
