// Package middleware groups the Fiber middlewares used by the HTTP server:
// rayid (request correlation ids) and auth (static API-key guard).
package middleware
