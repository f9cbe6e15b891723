package models

import "time"

// Sync states of a locally stored count event. The event itself is
// immutable; this flag is local bookkeeping only and never travels on the
// wire.
const (
	// SyncStatePending marks an event not yet confirmed exchanged with any
	// peer or host.
	SyncStatePending = "pending"
	// SyncStateSettled marks an event confirmed exchanged. Settled is
	// terminal; a settled event never goes back to pending.
	SyncStateSettled = "settled"
)

// CountEvent is an immutable fact: one signed quantity adjustment for one
// catalog item within one counting session, authored exactly once by the
// device identified by ActorID.
type CountEvent struct {
	EventID   string `gorm:"primaryKey;size:64" json:"event_id"`
	SessionID string `gorm:"size:64;index:idx_event_session;index:idx_event_session_state,priority:1" json:"session_id"`
	ActorID   string `gorm:"size:64" json:"actor_id"`
	SystemID  string `gorm:"size:64" json:"system_id"`
	DeltaQty  int    `gorm:"column:delta_qty" json:"delta_qty"`
	// Timestamp is the authoring time in unix milliseconds. Milliseconds
	// keep the wire format exact across devices regardless of locale.
	Timestamp int64 `json:"timestamp"`
	// SyncState is local-only and deliberately excluded from JSON.
	SyncState string `gorm:"size:16;default:pending;index:idx_event_session_state,priority:2" json:"-"`
}

// TableName provides the explicit table binding for GORM.
func (CountEvent) TableName() string {
	return "count_events"
}

// ItemTotal is the derived quantity for one catalog item: the sum of
// delta_qty over every distinct event observed for that system_id.
type ItemTotal struct {
	SystemID string `json:"system_id"`
	Qty      int    `json:"qty"`
}

// TotalsSnapshot caches the last computed totals for a session so a view
// can render before the next sync completes. It is always recomputable
// from the event log.
type TotalsSnapshot struct {
	SessionID string    `gorm:"primaryKey;size:64" json:"session_id"`
	Totals    string    `gorm:"type:text" json:"-"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName provides the explicit table binding for GORM.
func (TotalsSnapshot) TableName() string {
	return "count_snapshots"
}
