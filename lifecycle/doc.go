// Package lifecycle manages the scribed daemon process: installing the
// binary, spawning it detached, probing readiness and watching its health.
//
// Installation is checksum-gated. EnsureInstalled refuses to run without a
// SHA-256 digest, verifies downloads against it and swaps the binary into
// place with an atomic rename. Start spawns the daemon in its own session
// and polls it with pings until it is ready; a spawn that loses the
// writer-lock race to an already-running daemon counts as success. The
// health loop restarts an unreachable daemon at most once per cooldown so
// a crash-looping binary cannot melt the machine.
//
// The Manager satisfies the rpc client's IStarter interface; wiring it
// into a client is what enables transparent auto-start on first write.
package lifecycle
