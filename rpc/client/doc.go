// Package client implements the application-side handle to the scribed
// daemon.
//
// Every call is one framed request/response exchange with a generated
// correlation ID. When the daemon is not running, write calls run exactly
// one auto-start cycle: launch the daemon through the injected IStarter,
// then retry the original request once with the same ID. The daemon's
// replay guard turns that retry into a cache hit if the first attempt did
// apply before the channel broke, so the cycle never double-executes a
// batch. Ping deliberately never auto-starts: liveness probes must observe,
// not heal.
//
// Applications embedding scribe construct one Handle at startup and share
// it across all writers; Close tears down the health loop and the pooled
// connections in one place. Reads never go through the handle - they open
// the storage file directly and see the latest committed state.
package client
