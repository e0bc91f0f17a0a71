package lifecycle

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"

	"github.com/scribedb/scribe/rpc/common"
)

// --------------------------------------------------------------------------
// Install
// --------------------------------------------------------------------------

// EnsureInstalled makes sure the daemon binary exists at BinaryPath and
// matches the configured digest. A binary that is already present and
// verifies is left alone; anything else is downloaded and installed
// atomically (temp file, then rename), so a concurrent reader never sees a
// half-written executable.
func (m *Manager) EnsureInstalled(ctx context.Context) error {
	if m.config.SHA256 == "" {
		return common.NewError(common.ErrKindLifecycle, "refusing to install without a checksum")
	}

	if ok, err := m.verifyBinary(); err != nil {
		return err
	} else if ok {
		m.logger.Debug("lifecycle.install.verified", "path", m.config.BinaryPath)
		return nil
	}

	if m.config.DownloadURL == "" {
		return common.NewError(common.ErrKindLifecycle, "daemon binary missing and no download URL configured")
	}

	m.logger.Info("lifecycle.install.downloading", "url", m.config.DownloadURL)
	if err := m.download(ctx); err != nil {
		return err
	}
	m.logger.Info("lifecycle.install.installed", "path", m.config.BinaryPath)
	return nil
}

// verifyBinary reports whether the installed binary matches the configured
// digest. A missing file is not an error, just "not installed".
func (m *Manager) verifyBinary() (bool, error) {
	f, err := os.Open(m.config.BinaryPath)
	if os.IsNotExist(err) {
		return false, nil
	}
	if err != nil {
		return false, common.WrapError(common.ErrKindLifecycle, "failed to open installed binary", err)
	}
	defer f.Close()

	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return false, common.WrapError(common.ErrKindLifecycle, "failed to hash installed binary", err)
	}
	return hex.EncodeToString(h.Sum(nil)) == m.config.SHA256, nil
}

// download fetches the binary, checks its digest and swaps it into place.
func (m *Manager) download(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, m.config.DownloadURL, nil)
	if err != nil {
		return common.WrapError(common.ErrKindLifecycle, "invalid download URL", err)
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return common.WrapError(common.ErrKindLifecycle, "download failed", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return common.NewError(common.ErrKindLifecycle,
			fmt.Sprintf("download failed with status %d", resp.StatusCode))
	}

	dir := filepath.Dir(m.config.BinaryPath)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return common.WrapError(common.ErrKindLifecycle, "failed to create install directory", err)
	}

	// the temp file lives in the target directory so the final rename
	// stays on one filesystem and therefore atomic
	tmp, err := os.CreateTemp(dir, ".scribed-download-*")
	if err != nil {
		return common.WrapError(common.ErrKindLifecycle, "failed to create temp file", err)
	}
	defer func() {
		tmp.Close()
		os.Remove(tmp.Name())
	}()

	h := sha256.New()
	if _, err := io.Copy(io.MultiWriter(tmp, h), resp.Body); err != nil {
		return common.WrapError(common.ErrKindLifecycle, "download interrupted", err)
	}

	if got := hex.EncodeToString(h.Sum(nil)); got != m.config.SHA256 {
		return common.NewError(common.ErrKindLifecycle,
			fmt.Sprintf("checksum mismatch: got %s, want %s", got, m.config.SHA256))
	}

	if err := tmp.Chmod(0o755); err != nil {
		return common.WrapError(common.ErrKindLifecycle, "failed to mark binary executable", err)
	}
	if err := tmp.Close(); err != nil {
		return common.WrapError(common.ErrKindLifecycle, "failed to flush binary", err)
	}

	if err := os.Rename(tmp.Name(), m.config.BinaryPath); err != nil {
		return common.WrapError(common.ErrKindLifecycle, "failed to install binary", err)
	}
	return nil
}
