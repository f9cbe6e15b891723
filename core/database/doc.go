// Package database provides the GORM connection factory for the local
// count-event store.
//
// Two drivers are supported:
//   - sqlite: the default for handheld devices; each device owns a private
//     file-backed store (or :memory: for tests).
//   - mysql: for a coordinating host that keeps its log in a shared server.
//
// The returned *gorm.DB is injected into feature services; packages never
// open their own connections.
package database
