package client

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/scribedb/scribe/rpc/common"
	"github.com/scribedb/scribe/rpc/serializer"
	"github.com/scribedb/scribe/rpc/transport/unix"
)

// fakeManager records lifecycle interactions from the handle.
type fakeManager struct {
	runStarted chan struct{}
	runStopped chan struct{}
}

func newFakeManager() *fakeManager {
	return &fakeManager{
		runStarted: make(chan struct{}),
		runStopped: make(chan struct{}),
	}
}

func (m *fakeManager) Start() error { return nil }

func (m *fakeManager) Run(ctx context.Context) {
	close(m.runStarted)
	<-ctx.Done()
	close(m.runStopped)
}

func TestHandleDrivesHealthLoop(t *testing.T) {
	mgr := newFakeManager()
	h := NewHandle(common.ClientConfig{}, unix.NewUnixClientTransport(),
		serializer.NewJSONSerializer(), mgr, nil)

	select {
	case <-mgr.runStarted:
	case <-time.After(time.Second):
		t.Fatal("health loop was not started")
	}

	if err := h.Close(); err != nil {
		t.Fatalf("close failed: %v", err)
	}

	select {
	case <-mgr.runStopped:
	case <-time.After(time.Second):
		t.Fatal("health loop was not stopped on close")
	}

	// closing twice is harmless
	if err := h.Close(); err != nil {
		t.Errorf("second close failed: %v", err)
	}
}

func TestHandleSharedAcrossGoroutines(t *testing.T) {
	dir := t.TempDir()
	sock := filepath.Join(dir, "test.sock")
	d := launchDaemon(t, filepath.Join(dir, "test.db"), sock)

	h := NewHandle(common.ClientConfig{Endpoint: sock, TimeoutSecond: 5},
		unix.NewUnixClientTransport(), serializer.NewJSONSerializer(), nil, nil)
	defer func() {
		_ = h.Client().Shutdown()
		_ = h.Close()
		<-d.done
	}()

	if _, err := h.Client().Exec(common.NewStatement(
		"CREATE TABLE events (id INTEGER PRIMARY KEY, src TEXT)")); err != nil {
		t.Fatalf("setup failed: %v", err)
	}

	const writers = 6
	var wg sync.WaitGroup
	errs := make(chan error, writers)
	for w := 0; w < writers; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			for i := 0; i < 10; i++ {
				_, err := h.Client().Exec(common.NewStatement(
					"INSERT INTO events (src) VALUES (?)", fmt.Sprintf("writer-%d", w)))
				if err != nil {
					errs <- err
					return
				}
			}
		}(w)
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		t.Fatal(err)
	}

	res, err := h.Client().Exec(common.NewStatement("SELECT COUNT(*) FROM events"))
	if err != nil {
		t.Fatalf("count failed: %v", err)
	}
	if fmt.Sprint(res.Rows[0][0]) != "60" {
		t.Errorf("expected 60 rows, got %v", res.Rows[0][0])
	}
}
