// Package cmd implements the command-line interface of scribe. It provides
// a hierarchical command structure for running the write daemon and for
// talking to it as a client.
//
// The package is organized into several subpackages:
//
//   - sql: Commands for executing statements and batches through the daemon
//   - daemon: Commands for inspecting and controlling the daemon
//     (ping, status, start, shutdown, install, maintenance)
//   - serve: The daemon process itself
//   - util: Shared utilities for command-line processing and configuration (internal use)
//
// See scribe -help for a list of all commands.
package cmd
