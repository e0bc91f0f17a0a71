package client

import (
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/scribedb/scribe/rpc/common"
	"github.com/scribedb/scribe/rpc/serializer"
	"github.com/scribedb/scribe/rpc/server"
	"github.com/scribedb/scribe/rpc/transport"
	"github.com/scribedb/scribe/rpc/transport/unix"
)

// daemonHandle controls a daemon running inside the test process.
type daemonHandle struct {
	config common.ServerConfig
	done   chan error
}

// launchDaemon starts a daemon for the given paths and waits for readiness.
func launchDaemon(t *testing.T, dbPath, socketPath string) *daemonHandle {
	t.Helper()

	cfg := common.ServerConfig{DBPath: dbPath, Endpoint: socketPath, TimeoutSecond: 5}
	srv := server.NewRPCServer(cfg, unix.NewUnixServerTransport(nil), serializer.NewJSONSerializer(), nil)

	h := &daemonHandle{config: cfg, done: make(chan error, 1)}
	go func() { h.done <- srv.Serve() }()

	probe := NewRPCClient(common.ClientConfig{Endpoint: socketPath, TimeoutSecond: 5},
		unix.NewUnixClientTransport(), serializer.NewJSONSerializer(), nil, nil)
	defer probe.Close()

	for i := 0; i < 100; i++ {
		if probe.Ping() {
			return h
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatal("daemon did not become ready")
	return nil
}

// newTestClient creates a client for a running daemon.
func newTestClient(t *testing.T, socketPath string, starter IStarter) IClient {
	t.Helper()
	c := NewRPCClient(common.ClientConfig{Endpoint: socketPath, TimeoutSecond: 5},
		unix.NewUnixClientTransport(), serializer.NewJSONSerializer(), starter, nil)
	t.Cleanup(func() { _ = c.Close() })
	return c
}

func TestExecAndQuery(t *testing.T) {
	dir := t.TempDir()
	sock := filepath.Join(dir, "test.sock")
	h := launchDaemon(t, filepath.Join(dir, "test.db"), sock)
	c := newTestClient(t, sock, nil)
	defer func() { _ = c.Shutdown(); <-h.done }()

	if !c.Ping() {
		t.Fatal("expected daemon to answer pings")
	}

	res, err := c.ExecBatch([]common.Statement{
		common.NewStatement("CREATE TABLE kv (k TEXT PRIMARY KEY, v TEXT)"),
		common.NewStatement("INSERT INTO kv VALUES (?, ?)", "a", "1"),
		common.NewStatement("INSERT INTO kv VALUES (?, ?)", "b", "2"),
	}, common.ModeAtomic)
	if err != nil {
		t.Fatalf("batch failed: %v", err)
	}
	if res.RowsAffected != 2 || res.Succeeded != 3 {
		t.Errorf("unexpected result: %+v", res)
	}

	rev, err := c.Rev()
	if err != nil {
		t.Fatalf("rev failed: %v", err)
	}
	if rev != res.Rev {
		t.Errorf("ping rev %d does not match batch rev %d", rev, res.Rev)
	}

	query, err := c.Exec(common.NewStatement("SELECT v FROM kv WHERE k = ?", "b"))
	if err != nil {
		t.Fatalf("query failed: %v", err)
	}
	if len(query.Rows) != 1 || query.Rows[0][0] != "2" {
		t.Errorf("unexpected query result: %v", query.Rows)
	}
}

func TestEngineErrorsCarryStatementIndex(t *testing.T) {
	dir := t.TempDir()
	sock := filepath.Join(dir, "test.sock")
	h := launchDaemon(t, filepath.Join(dir, "test.db"), sock)
	c := newTestClient(t, sock, nil)
	defer func() { _ = c.Shutdown(); <-h.done }()

	if _, err := c.Exec(common.NewStatement("CREATE TABLE t (n INTEGER NOT NULL)")); err != nil {
		t.Fatalf("setup failed: %v", err)
	}

	_, err := c.ExecBatch([]common.Statement{
		common.NewStatement("INSERT INTO t VALUES (1)"),
		common.NewStatement("INSERT INTO t VALUES (NULL)"),
	}, common.ModeAtomic)
	if err == nil {
		t.Fatal("expected batch to fail")
	}
	if !common.IsKind(err, common.ErrKindEngine) {
		t.Fatalf("expected engine error, got %v", err)
	}

	var ce *common.Error
	if !errors.As(err, &ce) || ce.StatementIndex != 1 {
		t.Errorf("expected statement index 1, got %+v", err)
	}
}

func TestDisconnectDoesNotPoisonLaterCalls(t *testing.T) {
	dir := t.TempDir()
	sock := filepath.Join(dir, "test.sock")
	h := launchDaemon(t, filepath.Join(dir, "test.db"), sock)
	c := newTestClient(t, sock, nil)
	defer func() { _ = c.Shutdown(); <-h.done }()

	if err := c.Disconnect(); err != nil {
		t.Fatalf("disconnect failed: %v", err)
	}

	// the daemon hung up on the disconnect's connection; the client must not
	// try to reuse it
	if _, err := c.Exec(common.NewStatement("SELECT 1")); err != nil {
		t.Fatalf("exec after disconnect failed: %v", err)
	}
}

func TestPingWithoutDaemon(t *testing.T) {
	c := newTestClient(t, filepath.Join(t.TempDir(), "nothing.sock"), nil)

	if c.Ping() {
		t.Error("expected ping to fail without a daemon")
	}
	if _, err := c.Exec(common.NewStatement("SELECT 1")); !common.IsKind(err, common.ErrKindConnectionLost) {
		t.Errorf("expected connection_lost without a starter, got %v", err)
	}
}

// testStarter launches a real daemon on first use and counts invocations.
type testStarter struct {
	t      *testing.T
	db     string
	socket string
	calls  int
	handle *daemonHandle
}

func (s *testStarter) Start() error {
	s.calls++
	s.handle = launchDaemon(s.t, s.db, s.socket)
	return nil
}

func TestAutoStartRetriesExactlyOnce(t *testing.T) {
	dir := t.TempDir()
	sock := filepath.Join(dir, "test.sock")
	starter := &testStarter{t: t, db: filepath.Join(dir, "test.db"), socket: sock}
	c := newTestClient(t, sock, starter)

	// no daemon is running; the exec must trigger one start cycle
	res, err := c.Exec(common.NewStatement("SELECT 1 AS one"))
	if err != nil {
		t.Fatalf("exec with autostart failed: %v", err)
	}
	if len(res.Rows) != 1 {
		t.Errorf("unexpected result: %+v", res)
	}
	if starter.calls != 1 {
		t.Errorf("expected exactly one start call, got %d", starter.calls)
	}

	// with the daemon up, further calls must not start anything
	if _, err := c.Exec(common.NewStatement("SELECT 1")); err != nil {
		t.Fatalf("exec failed: %v", err)
	}
	if starter.calls != 1 {
		t.Errorf("expected no further start calls, got %d", starter.calls)
	}

	_ = c.Shutdown()
	<-starter.handle.done
}

// fakeTransport answers every send with a canned payload.
type fakeTransport struct {
	resp []byte
}

func (f *fakeTransport) Configure(common.ClientConfig) {}
func (f *fakeTransport) Send(_ []byte) ([]byte, error) { return f.resp, nil }
func (f *fakeTransport) Close() error                  { return nil }

var _ transport.IRPCClientTransport = (*fakeTransport)(nil)

func TestMismatchedResponseIDIsProtocolError(t *testing.T) {
	ser := serializer.NewJSONSerializer()
	respBytes, err := ser.SerializeResponse(common.NewOkResponse("someone-else", 7))
	if err != nil {
		t.Fatal(err)
	}

	c := NewRPCClient(common.ClientConfig{}, &fakeTransport{resp: respBytes}, ser, nil, nil)
	if _, err := c.Exec(common.NewStatement("SELECT 1")); !common.IsKind(err, common.ErrKindProtocol) {
		t.Errorf("expected protocol error on ID mismatch, got %v", err)
	}
}
