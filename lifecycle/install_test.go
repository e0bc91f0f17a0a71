package lifecycle

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"

	"github.com/scribedb/scribe/rpc/common"
)

// stubPinger is a Pinger with a fixed answer.
type stubPinger struct {
	alive bool
}

func (p *stubPinger) Ping() bool { return p.alive }

func digestOf(data []byte) string {
	h := sha256.Sum256(data)
	return hex.EncodeToString(h[:])
}

// newDownloadServer serves the given payload and counts requests.
func newDownloadServer(t *testing.T, payload []byte) (*httptest.Server, *atomic.Int64) {
	t.Helper()
	var hits atomic.Int64
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		hits.Add(1)
		_, _ = w.Write(payload)
	}))
	t.Cleanup(srv.Close)
	return srv, &hits
}

func TestEnsureInstalledDownloadsAndVerifies(t *testing.T) {
	payload := []byte("#!/bin/sh\nexit 0\n")
	srv, hits := newDownloadServer(t, payload)

	binPath := filepath.Join(t.TempDir(), "bin", "scribed")
	m := NewManager(Config{
		BinaryPath:  binPath,
		DownloadURL: srv.URL,
		SHA256:      digestOf(payload),
	}, &stubPinger{}, nil)

	if err := m.EnsureInstalled(context.Background()); err != nil {
		t.Fatalf("install failed: %v", err)
	}

	data, err := os.ReadFile(binPath)
	if err != nil {
		t.Fatalf("binary not installed: %v", err)
	}
	if string(data) != string(payload) {
		t.Error("installed binary differs from download")
	}

	info, err := os.Stat(binPath)
	if err != nil {
		t.Fatal(err)
	}
	if info.Mode()&0o100 == 0 {
		t.Errorf("binary is not executable: %v", info.Mode())
	}

	// a second call must verify the existing binary, not re-download
	if err := m.EnsureInstalled(context.Background()); err != nil {
		t.Fatalf("re-install check failed: %v", err)
	}
	if got := hits.Load(); got != 1 {
		t.Errorf("expected exactly 1 download, got %d", got)
	}
}

func TestEnsureInstalledRejectsChecksumMismatch(t *testing.T) {
	srv, _ := newDownloadServer(t, []byte("evil payload"))

	binPath := filepath.Join(t.TempDir(), "scribed")
	m := NewManager(Config{
		BinaryPath:  binPath,
		DownloadURL: srv.URL,
		SHA256:      digestOf([]byte("expected payload")),
	}, &stubPinger{}, nil)

	err := m.EnsureInstalled(context.Background())
	if !common.IsKind(err, common.ErrKindLifecycle) {
		t.Fatalf("expected lifecycle error, got %v", err)
	}

	// nothing may have been installed
	if _, err := os.Stat(binPath); !os.IsNotExist(err) {
		t.Error("binary was installed despite checksum mismatch")
	}
}

func TestEnsureInstalledRequiresChecksum(t *testing.T) {
	m := NewManager(Config{
		BinaryPath:  filepath.Join(t.TempDir(), "scribed"),
		DownloadURL: "http://localhost:0/never-used",
	}, &stubPinger{}, nil)

	if err := m.EnsureInstalled(context.Background()); !common.IsKind(err, common.ErrKindLifecycle) {
		t.Fatalf("expected lifecycle error without checksum, got %v", err)
	}
}

func TestEnsureInstalledReplacesMismatchedBinary(t *testing.T) {
	payload := []byte("the real daemon")
	srv, hits := newDownloadServer(t, payload)

	binPath := filepath.Join(t.TempDir(), "scribed")
	if err := os.WriteFile(binPath, []byte("stale or tampered"), 0o755); err != nil {
		t.Fatal(err)
	}

	m := NewManager(Config{
		BinaryPath:  binPath,
		DownloadURL: srv.URL,
		SHA256:      digestOf(payload),
	}, &stubPinger{}, nil)

	if err := m.EnsureInstalled(context.Background()); err != nil {
		t.Fatalf("install failed: %v", err)
	}
	if got := hits.Load(); got != 1 {
		t.Errorf("expected 1 download, got %d", got)
	}

	data, _ := os.ReadFile(binPath)
	if string(data) != string(payload) {
		t.Error("mismatched binary was not replaced")
	}
}
