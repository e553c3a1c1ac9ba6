// Package broadcast implements the live-update fan-out registry using the
// actor pattern: a single goroutine owns the connection set and processes
// commands from a channel, so register, unregister, and broadcast need no
// mutexes. Each connection gets its own writer goroutine with a buffered
// send channel; a slow or broken connection is dropped without affecting
// delivery to the others.
//
// Delivery is at-most-once and best-effort. There is no backlog or replay:
// a client that connects after an event was emitted never receives it.
package broadcast
