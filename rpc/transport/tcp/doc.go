// Package tcp provides transport connectors over TCP. It exists for
// platforms and setups where Unix domain sockets are unavailable; for
// local daemons the unix package is preferred.
package tcp
