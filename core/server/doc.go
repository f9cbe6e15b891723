// Package server holds the HTTP server configuration consumed by the start
// command and the auth middleware.
package server
