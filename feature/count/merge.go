package count

import (
	"context"
	"sort"

	"coop-inventory/feature/count/models"

	"go.uber.org/zap"
)

// SessionGate validates that a session may still receive merged events.
// The session feature implements it; the merge engine only needs this one
// question answered.
type SessionGate interface {
	// EnsureMergeable returns a state error when the session is unknown
	// or locked.
	EnsureMergeable(ctx context.Context, sessionID string) error
}

// ComputeTotals folds a set of events into per-item totals: the sum of
// delta_qty per system_id. Summation is commutative and associative, so
// any permutation or partitioning of the same distinct event set yields
// identical totals. Output is sorted by system_id for determinism.
func ComputeTotals(events []models.CountEvent) []models.ItemTotal {
	sums := make(map[string]int)
	seen := make(map[string]bool, len(events))
	for _, e := range events {
		// Fold over the set of distinct events; duplicates by event_id
		// contribute exactly once.
		if seen[e.EventID] {
			continue
		}
		seen[e.EventID] = true
		sums[e.SystemID] += e.DeltaQty
	}

	totals := make([]models.ItemTotal, 0, len(sums))
	for systemID, qty := range sums {
		totals = append(totals, models.ItemTotal{SystemID: systemID, Qty: qty})
	}
	sort.Slice(totals, func(i, j int) bool {
		return totals[i].SystemID < totals[j].SystemID
	})
	return totals
}

// Merger folds received events into the local log and recomputes totals.
type Merger struct {
	store    *Store
	sessions SessionGate
	logger   *zap.Logger
}

// NewMerger creates a merge engine over the local store.
func NewMerger(store *Store, sessions SessionGate, logger *zap.Logger) *Merger {
	return &Merger{store: store, sessions: sessions, logger: logger}
}

// Merge folds newly-received events into the session's log and returns the
// recomputed totals.
//
// The whole batch is validated before anything is written: every event must
// target the given session, and the session must exist and not be locked.
// A rejected batch merges nothing, so totals stay unchanged. Events already
// known by event_id are no-ops; unknown events are appended as settled
// (peer events are by definition already exchanged). The fold is pure and
// order-independent: the same event set, in any order or split across any
// number of Merge calls, yields identical totals.
func (m *Merger) Merge(ctx context.Context, sessionID string, incoming []models.CountEvent) ([]models.ItemTotal, error) {
	if err := m.sessions.EnsureMergeable(ctx, sessionID); err != nil {
		return nil, err
	}
	for _, e := range incoming {
		if e.SessionID != sessionID {
			// An event smuggled in for another session gets the same
			// treatment it would get on its own: its session is validated,
			// and the whole batch is rejected rather than partially merged.
			if err := m.sessions.EnsureMergeable(ctx, e.SessionID); err != nil {
				return nil, err
			}
		}
	}

	for i := range incoming {
		if err := m.store.AppendSettled(ctx, &incoming[i]); err != nil {
			return nil, err
		}
	}

	events, err := m.store.EventsForSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	totals := ComputeTotals(events)

	if err := m.store.SaveSnapshot(ctx, sessionID, totals); err != nil {
		return nil, err
	}

	m.logger.Debug("Merge completed",
		zap.String("session_id", sessionID),
		zap.Int("received", len(incoming)),
		zap.Int("items", len(totals)),
	)
	return totals, nil
}
