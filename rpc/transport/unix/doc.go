// Package unix provides transport connectors over Unix domain sockets,
// the default channel between the scribe client and the scribed daemon.
package unix
