package count

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"coop-inventory/core/device"
	"coop-inventory/feature/count/models"
	countsync "coop-inventory/feature/count/sync"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// SessionDirectory is what the count feature needs from the session
// collaborator: merge eligibility plus participant bookkeeping.
type SessionDirectory interface {
	SessionGate
	// TouchParticipant records a successful sync involving a participant.
	TouchParticipant(ctx context.Context, sessionID, participantID string, eventDelta int) error
}

// Service orchestrates the count core: local delta capture, transport
// selection, and merge of received packets.
type Service struct {
	store    *Store
	merger   *Merger
	sessions SessionDirectory
	central  countsync.Central
	device   device.Config
	logger   *zap.Logger

	// assembler holds the in-progress chunk transfer when this device acts
	// as a wireless host. One transfer at a time; the local store has a
	// single logical writer.
	assembler *countsync.Assembler
}

// NewService creates a new count service.
func NewService(db *gorm.DB, sessions SessionDirectory, central countsync.Central, cfg device.Config, logger *zap.Logger) *Service {
	store := NewStore(db)
	return &Service{
		store:     store,
		merger:    NewMerger(store, sessions, logger),
		sessions:  sessions,
		central:   central,
		device:    cfg,
		logger:    logger,
		assembler: countsync.NewAssembler(),
	}
}

// Store exposes the underlying event log to collaborators (e.g. the totals
// export feature reads snapshots through it).
func (s *Service) Store() *Store {
	return s.store
}

// Migrate creates the event log tables if needed.
func (s *Service) Migrate() error {
	return s.store.Migrate()
}

// RecordDelta captures one local quantity adjustment as an immutable
// pending event. New deltas may keep arriving while a sync is in flight;
// they simply stay pending for the next round.
func (s *Service) RecordDelta(ctx context.Context, sessionID, systemID string, delta int) (*models.CountEvent, error) {
	if strings.TrimSpace(systemID) == "" {
		return nil, fmt.Errorf("count delta requires a system_id")
	}
	if err := s.sessions.EnsureMergeable(ctx, sessionID); err != nil {
		return nil, err
	}

	event := &models.CountEvent{
		EventID:   uuid.NewString(),
		SessionID: sessionID,
		ActorID:   s.device.ActorID,
		SystemID:  strings.TrimSpace(systemID),
		DeltaQty:  delta,
		Timestamp: time.Now().UnixMilli(),
		SyncState: models.SyncStatePending,
	}
	if err := s.store.Append(ctx, event); err != nil {
		return nil, err
	}
	return event, nil
}

// Totals returns the session's current totals. The cached snapshot is
// served when present; otherwise totals are recomputed from the log and
// cached for the next reload.
func (s *Service) Totals(ctx context.Context, sessionID string) ([]models.ItemTotal, time.Time, error) {
	totals, updatedAt, err := s.store.ReadSnapshot(ctx, sessionID)
	if err != nil {
		return nil, time.Time{}, err
	}
	if totals != nil {
		return totals, updatedAt, nil
	}

	events, err := s.store.EventsForSession(ctx, sessionID)
	if err != nil {
		return nil, time.Time{}, err
	}
	totals = ComputeTotals(events)
	if err := s.store.SaveSnapshot(ctx, sessionID, totals); err != nil {
		return nil, time.Time{}, err
	}
	return totals, time.Now().UTC(), nil
}

// SyncNow runs one sync round for the session: resolve a transport from
// the device preference (with capability fallback to visual), hand it the
// pending events, and fold whatever came back.
//
// Pending events are marked settled only after the provider reports them
// in SyncedEventIDs with OK. Expected transport failures come back inside
// the Result, not as an error.
func (s *Service) SyncNow(ctx context.Context, sessionID string, isHost bool) (countsync.Result, error) {
	pending, err := s.store.PendingEvents(ctx, sessionID)
	if err != nil {
		return countsync.Result{}, err
	}

	providers := []countsync.Provider{
		countsync.NewWirelessProvider(s.central, sessionID, s.device.ActorID, isHost, s.logger),
		countsync.NewVisualProvider(sessionID, s.device.ActorID),
	}
	provider := countsync.Select(s.device.PreferredTransport, providers)

	result := provider.SyncNow(ctx, pending)
	if !result.OK {
		s.logger.Warn("Sync round failed",
			zap.String("session_id", sessionID),
			zap.String("provider", result.Provider),
			zap.String("message", result.Message),
		)
		return result, nil
	}

	if err := s.store.MarkSettled(ctx, result.SyncedEventIDs); err != nil {
		return countsync.Result{}, err
	}
	if len(result.ImportedEvents) > 0 {
		if _, err := s.merger.Merge(ctx, sessionID, result.ImportedEvents); err != nil {
			return countsync.Result{}, err
		}
	} else if result.Snapshot != nil {
		// Optimistic refresh from the host's authoritative view.
		if err := s.store.SaveSnapshot(ctx, sessionID, result.Snapshot); err != nil {
			return countsync.Result{}, err
		}
	}
	if err := s.sessions.TouchParticipant(ctx, sessionID, s.device.ActorID, len(result.SyncedEventIDs)); err != nil {
		return countsync.Result{}, err
	}

	s.logger.Info("Sync round completed",
		zap.String("session_id", sessionID),
		zap.String("provider", result.Provider),
		zap.Int("settled", len(result.SyncedEventIDs)),
	)
	return result, nil
}

// ImportPacket folds one scanned/received data packet into the local log
// and returns the packet plus the recomputed totals. Acknowledged outbound
// events are settled, and the sender's participant record is touched.
func (s *Service) ImportPacket(ctx context.Context, encoded string) (*countsync.Packet, []models.ItemTotal, error) {
	packet, err := countsync.DecodePacket(encoded)
	if err != nil {
		return nil, nil, err
	}

	totals, err := s.merger.Merge(ctx, packet.SessionID, packet.Events)
	if err != nil {
		return nil, nil, err
	}
	if err := s.store.MarkSettled(ctx, packet.AckEventIDs); err != nil {
		return nil, nil, err
	}
	if err := s.sessions.TouchParticipant(ctx, packet.SessionID, packet.ActorID, len(packet.Events)); err != nil {
		return nil, nil, err
	}
	return packet, totals, nil
}

// ExportPacket produces the outbound packet string for the visual
// exchange: the session's pending events plus current totals, with the
// already-known event ids acknowledged back to the scanner.
func (s *Service) ExportPacket(ctx context.Context, sessionID string) (string, error) {
	pending, err := s.store.PendingEvents(ctx, sessionID)
	if err != nil {
		return "", err
	}
	totals, _, err := s.Totals(ctx, sessionID)
	if err != nil {
		return "", err
	}
	packet := &countsync.Packet{
		SessionID:   sessionID,
		ActorID:     s.device.ActorID,
		GeneratedAt: time.Now().UnixMilli(),
		Events:      pending,
		Totals:      totals,
	}
	return countsync.EncodePacket(packet)
}

// IngestChunk feeds one wireless chunk frame into the host-side assembler.
// When the final chunk lands, the reassembled packet is merged like any
// other and the assembler resets for the next transfer. A mid-transfer
// abort is handled by ResetTransfer; retries resend the full chunk set.
func (s *Service) IngestChunk(ctx context.Context, frame []byte) (bool, []models.ItemTotal, error) {
	var chunk countsync.Chunk
	if err := json.Unmarshal(frame, &chunk); err != nil {
		return false, nil, &countsync.ValidationError{Reason: "chunk frame is not valid JSON"}
	}

	done, err := s.assembler.Add(chunk)
	if err != nil {
		s.assembler.Reset()
		return false, nil, err
	}
	if !done {
		return false, nil, nil
	}

	payload, err := s.assembler.Payload()
	s.assembler.Reset()
	if err != nil {
		return false, nil, err
	}

	_, totals, err := s.ImportPacket(ctx, payload)
	if err != nil {
		return false, nil, err
	}
	return true, totals, nil
}

// ResetTransfer discards a partially received wireless chunk set.
func (s *Service) ResetTransfer() {
	s.assembler.Reset()
}

// SnapshotPayload renders the session totals as the JSON payload served on
// the wireless snapshot characteristic.
func (s *Service) SnapshotPayload(ctx context.Context, sessionID string) ([]byte, error) {
	totals, _, err := s.Totals(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	return json.Marshal(totals)
}

// ClearSession purges the local log and snapshot for an abandoned session.
func (s *Service) ClearSession(ctx context.Context, sessionID string) error {
	return s.store.ClearSession(ctx, sessionID)
}
