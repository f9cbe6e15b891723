// Package count implements the core of the cooperative inventory counter:
// the append-only count-event log, the merge/reconciliation engine, and the
// sync orchestration that ties them to the transport providers.
//
// # Event log
//
// Every quantity adjustment is an immutable CountEvent, written once by the
// authoring device and marked pending until a transport confirms it was
// exchanged. The Store never demotes a settled event, and re-appending a
// known event_id is a no-op, which makes the log safe under duplicate
// delivery.
//
// # Merge
//
// Merge folds received events into the log: events for unknown or locked
// sessions are rejected (surfaced as a session state error, never silently
// dropped), unknown event ids are appended as settled, and totals are
// recomputed as the sum of delta_qty over the distinct event set. The fold
// is commutative and idempotent, so devices converge on identical totals
// regardless of exchange order.
//
// # Sync
//
// SyncNow resolves a transport provider from the device preference with
// capability fallback, hands it the pending events, settles only what the
// provider confirmed, and merges whatever came back. The transports
// themselves live in the sync subpackage.
package count
