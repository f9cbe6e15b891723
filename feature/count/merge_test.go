package count

import (
	"context"
	"math/rand"
	"testing"

	"coop-inventory/feature/count/models"
	"coop-inventory/feature/session"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// fakeSessions is an in-memory SessionDirectory for merge and service tests.
type fakeSessions struct {
	known   map[string]bool
	locked  map[string]bool
	touched int
}

func newFakeSessions(ids ...string) *fakeSessions {
	f := &fakeSessions{known: map[string]bool{}, locked: map[string]bool{}}
	for _, id := range ids {
		f.known[id] = true
	}
	return f
}

func (f *fakeSessions) EnsureMergeable(_ context.Context, sessionID string) error {
	if !f.known[sessionID] {
		return &session.StateError{SessionID: sessionID, Reason: "unknown session"}
	}
	if f.locked[sessionID] {
		return &session.StateError{SessionID: sessionID, Reason: "session is locked"}
	}
	return nil
}

func (f *fakeSessions) TouchParticipant(_ context.Context, _, _ string, _ int) error {
	f.touched++
	return nil
}

func TestComputeTotals(t *testing.T) {
	events := []models.CountEvent{
		event("ev-1", "s", "a", "1002", 4),
		event("ev-2", "s", "a", "1001", 3),
		event("ev-3", "s", "b", "1001", -1),
		event("ev-2", "s", "a", "1001", 3), // duplicate id counts once
	}

	totals := ComputeTotals(events)
	require.Len(t, totals, 2)
	assert.Equal(t, models.ItemTotal{SystemID: "1001", Qty: 2}, totals[0])
	assert.Equal(t, models.ItemTotal{SystemID: "1002", Qty: 4}, totals[1])
}

func TestMergeIsIdempotent(t *testing.T) {
	store := testStore(t)
	sessions := newFakeSessions("sess-1")
	merger := NewMerger(store, sessions, zap.NewNop())
	ctx := context.Background()

	batch := []models.CountEvent{
		event("ev-1", "sess-1", "dev-b", "1001", 3),
		event("ev-2", "sess-1", "dev-b", "1001", -1),
	}

	first, err := merger.Merge(ctx, "sess-1", batch)
	require.NoError(t, err)

	// Replaying the exact same packet changes nothing.
	second, err := merger.Merge(ctx, "sess-1", batch)
	require.NoError(t, err)
	assert.Equal(t, first, second)
	require.Len(t, second, 1)
	assert.Equal(t, 2, second[0].Qty)
}

func TestMergeIsOrderIndependent(t *testing.T) {
	events := []models.CountEvent{
		event("ev-1", "sess-1", "dev-a", "1001", 3),
		event("ev-2", "sess-1", "dev-b", "1001", -1),
		event("ev-3", "sess-1", "dev-b", "1002", 7),
		event("ev-4", "sess-1", "dev-c", "1001", 2),
		event("ev-5", "sess-1", "dev-c", "1002", -7),
	}

	var want []models.ItemTotal
	rng := rand.New(rand.NewSource(11))
	for trial := 0; trial < 5; trial++ {
		store := testStore(t)
		merger := NewMerger(store, newFakeSessions("sess-1"), zap.NewNop())

		shuffled := append([]models.CountEvent(nil), events...)
		rng.Shuffle(len(shuffled), func(i, j int) {
			shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
		})

		// Split the shuffled set into two merges to cover partitioning too.
		cut := 1 + rng.Intn(len(shuffled)-1)
		_, err := merger.Merge(context.Background(), "sess-1", shuffled[:cut])
		require.NoError(t, err)
		totals, err := merger.Merge(context.Background(), "sess-1", shuffled[cut:])
		require.NoError(t, err)

		if want == nil {
			want = totals
			continue
		}
		assert.Equal(t, want, totals, "trial %d", trial)
	}
}

func TestMergeRejectsLockedSessionAtomically(t *testing.T) {
	store := testStore(t)
	sessions := newFakeSessions("sess-1")
	merger := NewMerger(store, sessions, zap.NewNop())
	ctx := context.Background()

	_, err := merger.Merge(ctx, "sess-1", []models.CountEvent{
		event("ev-1", "sess-1", "dev-b", "1001", 3),
	})
	require.NoError(t, err)

	sessions.locked["sess-1"] = true

	_, err = merger.Merge(ctx, "sess-1", []models.CountEvent{
		event("ev-2", "sess-1", "dev-b", "1001", 5),
	})
	var stateErr *session.StateError
	require.ErrorAs(t, err, &stateErr)

	// Nothing from the rejected batch landed; totals are unchanged.
	events, err := store.EventsForSession(ctx, "sess-1")
	require.NoError(t, err)
	require.Len(t, events, 1)

	totals, _, err := store.ReadSnapshot(ctx, "sess-1")
	require.NoError(t, err)
	assert.Equal(t, []models.ItemTotal{{SystemID: "1001", Qty: 3}}, totals)
}

func TestMergeRejectsUnknownSession(t *testing.T) {
	store := testStore(t)
	merger := NewMerger(store, newFakeSessions("sess-1"), zap.NewNop())

	_, err := merger.Merge(context.Background(), "sess-nope", nil)
	var stateErr *session.StateError
	require.ErrorAs(t, err, &stateErr)
}

func TestMergeRejectsBatchWithForeignUnknownSession(t *testing.T) {
	store := testStore(t)
	merger := NewMerger(store, newFakeSessions("sess-1"), zap.NewNop())

	_, err := merger.Merge(context.Background(), "sess-1", []models.CountEvent{
		event("ev-1", "sess-1", "dev-b", "1001", 3),
		event("ev-2", "sess-unknown", "dev-b", "1001", 3),
	})
	var stateErr *session.StateError
	require.ErrorAs(t, err, &stateErr)

	events, err := store.EventsForSession(context.Background(), "sess-1")
	require.NoError(t, err)
	assert.Empty(t, events, "a rejected batch merges nothing")
}

// Two devices count the same shelf offline, exchange in both directions, and
// land on identical totals: +3 on one device, -1 on the other, converging to 2.
func TestMergeTwoDeviceConvergence(t *testing.T) {
	ctx := context.Background()

	storeA := testStore(t)
	storeB := testStore(t)
	mergerA := NewMerger(storeA, newFakeSessions("sess-1"), zap.NewNop())
	mergerB := NewMerger(storeB, newFakeSessions("sess-1"), zap.NewNop())

	eventA := event("ev-a", "sess-1", "dev-a", "1001", 3)
	eventB := event("ev-b", "sess-1", "dev-b", "1001", -1)

	require.NoError(t, storeA.Append(ctx, &eventA))
	require.NoError(t, storeB.Append(ctx, &eventB))

	// Exchange in opposite orders.
	totalsA, err := mergerA.Merge(ctx, "sess-1", []models.CountEvent{eventB})
	require.NoError(t, err)
	totalsB, err := mergerB.Merge(ctx, "sess-1", []models.CountEvent{eventA})
	require.NoError(t, err)

	want := []models.ItemTotal{{SystemID: "1001", Qty: 2}}
	assert.Equal(t, want, totalsA)
	assert.Equal(t, want, totalsB)

	// A second exchange round with the full logs is a no-op on both sides.
	eventsA, err := storeA.EventsForSession(ctx, "sess-1")
	require.NoError(t, err)
	totalsB, err = mergerB.Merge(ctx, "sess-1", eventsA)
	require.NoError(t, err)
	assert.Equal(t, want, totalsB)
}
