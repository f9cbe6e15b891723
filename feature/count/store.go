package count

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"coop-inventory/feature/count/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Store is the append-only local event log plus the cached totals snapshot,
// scoped per session. Each device runs a single logical writer over its own
// store, so operations are sequenced by the caller.
type Store struct {
	db *gorm.DB
}

// NewStore creates a store over the given database handle.
func NewStore(db *gorm.DB) *Store {
	return &Store{db: db}
}

// Migrate creates the event log tables if needed.
func (s *Store) Migrate() error {
	if err := s.db.AutoMigrate(&models.CountEvent{}, &models.TotalsSnapshot{}); err != nil {
		return &StorageError{Op: "migrate", Err: err}
	}
	return nil
}

// Append inserts a locally-authored event with sync state pending.
// Re-appending a known event_id is a no-op: events are immutable, and in
// particular a settled event is never demoted back to pending.
func (s *Store) Append(ctx context.Context, event *models.CountEvent) error {
	return s.insert(ctx, event, models.SyncStatePending)
}

// AppendSettled inserts an event received from a peer. Peer events are by
// definition already exchanged, so they are never pending outbound here.
func (s *Store) AppendSettled(ctx context.Context, event *models.CountEvent) error {
	return s.insert(ctx, event, models.SyncStateSettled)
}

func (s *Store) insert(ctx context.Context, event *models.CountEvent, state string) error {
	row := *event
	row.SyncState = state
	// DoNothing keeps the existing row (and its sync state) on event_id
	// conflict, which is exactly the idempotency the merge rule needs.
	err := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "event_id"}},
		DoNothing: true,
	}).Create(&row).Error
	if err != nil {
		return &StorageError{Op: "append", Err: err}
	}
	return nil
}

// EventsForSession returns all events for a session regardless of sync state.
func (s *Store) EventsForSession(ctx context.Context, sessionID string) ([]models.CountEvent, error) {
	var events []models.CountEvent
	err := s.db.WithContext(ctx).Where("session_id = ?", sessionID).Find(&events).Error
	if err != nil {
		return nil, &StorageError{Op: "read", Err: err}
	}
	return events, nil
}

// PendingEvents returns the events not yet confirmed exchanged, in no
// particular order.
func (s *Store) PendingEvents(ctx context.Context, sessionID string) ([]models.CountEvent, error) {
	var events []models.CountEvent
	err := s.db.WithContext(ctx).
		Where("session_id = ? AND sync_state = ?", sessionID, models.SyncStatePending).
		Find(&events).Error
	if err != nil {
		return nil, &StorageError{Op: "read", Err: err}
	}
	return events, nil
}

// MarkSettled transitions the listed events to settled. Already-settled ids
// are idempotent; unknown ids are a no-op.
func (s *Store) MarkSettled(ctx context.Context, eventIDs []string) error {
	if len(eventIDs) == 0 {
		return nil
	}
	err := s.db.WithContext(ctx).Model(&models.CountEvent{}).
		Where("event_id IN ?", eventIDs).
		Update("sync_state", models.SyncStateSettled).Error
	if err != nil {
		return &StorageError{Op: "settle", Err: err}
	}
	return nil
}

// SaveSnapshot caches the computed totals for fast reload.
func (s *Store) SaveSnapshot(ctx context.Context, sessionID string, totals []models.ItemTotal) error {
	raw, err := json.Marshal(totals)
	if err != nil {
		return &StorageError{Op: "snapshot encode", Err: err}
	}
	snap := models.TotalsSnapshot{
		SessionID: sessionID,
		Totals:    string(raw),
		UpdatedAt: time.Now().UTC(),
	}
	err = s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "session_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"totals", "updated_at"}),
	}).Create(&snap).Error
	if err != nil {
		return &StorageError{Op: "snapshot write", Err: err}
	}
	return nil
}

// ReadSnapshot retrieves the cached totals and their timestamp. A session
// without a snapshot returns nil totals and a zero time, not an error.
func (s *Store) ReadSnapshot(ctx context.Context, sessionID string) ([]models.ItemTotal, time.Time, error) {
	var snap models.TotalsSnapshot
	err := s.db.WithContext(ctx).First(&snap, "session_id = ?", sessionID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, time.Time{}, nil
	}
	if err != nil {
		return nil, time.Time{}, &StorageError{Op: "snapshot read", Err: err}
	}

	var totals []models.ItemTotal
	if err := json.Unmarshal([]byte(snap.Totals), &totals); err != nil {
		return nil, time.Time{}, &StorageError{Op: "snapshot decode", Err: err}
	}
	return totals, snap.UpdatedAt, nil
}

// ClearSession purges all events and the snapshot for a session, used when
// a session is abandoned locally.
func (s *Store) ClearSession(ctx context.Context, sessionID string) error {
	if err := s.db.WithContext(ctx).Where("session_id = ?", sessionID).Delete(&models.CountEvent{}).Error; err != nil {
		return &StorageError{Op: "clear", Err: err}
	}
	if err := s.db.WithContext(ctx).Where("session_id = ?", sessionID).Delete(&models.TotalsSnapshot{}).Error; err != nil {
		return &StorageError{Op: "clear", Err: err}
	}
	return nil
}
