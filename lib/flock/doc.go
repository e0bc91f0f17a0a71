// Package flock implements the exclusive-writer lock of the scribed
// daemon. Exactly one daemon per database file may run at a time; the
// lock - not the socket - is what enforces that. It is an advisory fcntl
// lock, so the kernel releases it automatically if the daemon dies,
// leaving no stale state behind.
package flock
