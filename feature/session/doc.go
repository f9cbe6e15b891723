// Package session manages cooperative counting sessions and their
// participants: creation by a host device, invitation and joining over the
// visual transport, and the strictly forward status lifecycle
// (active, finalizing, locked). A locked session accepts no further events
// or merges anywhere in the system.
package session
