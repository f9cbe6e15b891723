package session

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"coop-inventory/feature/session/models"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Service handles session and participant lifecycle operations.
type Service struct {
	db     *gorm.DB
	logger *zap.Logger
}

// NewService creates a new session service.
func NewService(db *gorm.DB, logger *zap.Logger) *Service {
	return &Service{db: db, logger: logger}
}

// Migrate creates the session tables if needed.
func (s *Service) Migrate() error {
	return s.db.AutoMigrate(&models.Session{}, &models.Participant{})
}

// Create starts a new counting session hosted by hostID. The host is
// registered as the first participant of its own session.
func (s *Service) Create(ctx context.Context, name, hostID, hostName, baselineID string) (*models.Session, error) {
	if strings.TrimSpace(hostID) == "" {
		return nil, fmt.Errorf("session requires a host id")
	}

	sess := &models.Session{
		ID:                uuid.NewString(),
		SessionName:       name,
		HostID:            hostID,
		CreatedBy:         hostID,
		Status:            models.StatusActive,
		BaselineSessionID: baselineID,
	}
	if err := s.db.WithContext(ctx).Create(sess).Error; err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}

	if _, err := s.Join(ctx, sess.ID, hostID, hostName); err != nil {
		return nil, err
	}

	s.logger.Info("Session created",
		zap.String("session_id", sess.ID),
		zap.String("host_id", hostID),
	)
	return sess, nil
}

// Get returns a session by id, or a StateError if it does not exist.
func (s *Service) Get(ctx context.Context, id string) (*models.Session, error) {
	var sess models.Session
	err := s.db.WithContext(ctx).First(&sess, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, &StateError{SessionID: id, Reason: "unknown session"}
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load session %s: %w", id, err)
	}
	return &sess, nil
}

// EnsureMergeable verifies that events may still be merged into the
// session: it must exist and must not be locked.
func (s *Service) EnsureMergeable(ctx context.Context, id string) error {
	sess, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	if sess.Status == models.StatusLocked {
		return &StateError{SessionID: id, Reason: "session is locked"}
	}
	return nil
}

// Join registers a device as a participant of a session. Joining twice is
// idempotent and refreshes last_seen_at.
func (s *Service) Join(ctx context.Context, sessionID, participantID, displayName string) (*models.Participant, error) {
	if _, err := s.Get(ctx, sessionID); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	p := &models.Participant{
		SessionID:     sessionID,
		ParticipantID: participantID,
		DisplayName:   displayName,
		JoinedAt:      now,
		LastSeenAt:    now,
	}
	err := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "session_id"}, {Name: "participant_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"display_name", "last_seen_at"}),
	}).Create(p).Error
	if err != nil {
		return nil, fmt.Errorf("failed to join session %s: %w", sessionID, err)
	}
	return p, nil
}

// Advance moves a session's status forward. Only the host may advance, and
// transitions are strictly one-directional (active -> finalizing -> locked).
func (s *Service) Advance(ctx context.Context, sessionID, actorID, next string) (*models.Session, error) {
	sess, err := s.Get(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	if actorID != sess.HostID {
		return nil, &StateError{SessionID: sessionID, Reason: "only the host may advance session status"}
	}
	if !models.IsValidStatus(next) {
		return nil, &StateError{SessionID: sessionID, Reason: fmt.Sprintf("unknown status %q", next)}
	}
	if !models.IsForwardTransition(sess.Status, next) {
		return nil, &StateError{SessionID: sessionID, Reason: fmt.Sprintf("illegal transition %s -> %s", sess.Status, next)}
	}

	updates := map[string]any{"status": next, "updated_at": time.Now().UTC()}
	if next == models.StatusLocked {
		now := time.Now().UTC()
		updates["locked_at"] = &now
	}
	if err := s.db.WithContext(ctx).Model(sess).Updates(updates).Error; err != nil {
		return nil, fmt.Errorf("failed to advance session %s: %w", sessionID, err)
	}

	s.logger.Info("Session status advanced",
		zap.String("session_id", sessionID),
		zap.String("status", next),
	)
	return s.Get(ctx, sessionID)
}

// TouchParticipant records a successful sync involving a participant:
// last_seen_at is refreshed and event_count incremented by the number of
// events the participant contributed.
func (s *Service) TouchParticipant(ctx context.Context, sessionID, participantID string, eventDelta int) error {
	res := s.db.WithContext(ctx).Model(&models.Participant{}).
		Where("session_id = ? AND participant_id = ?", sessionID, participantID).
		Updates(map[string]any{
			"last_seen_at": time.Now().UTC(),
			"event_count":  gorm.Expr("event_count + ?", eventDelta),
		})
	if res.Error != nil {
		return fmt.Errorf("failed to touch participant %s: %w", participantID, res.Error)
	}
	return nil
}

// Participants lists all participants of a session.
func (s *Service) Participants(ctx context.Context, sessionID string) ([]models.Participant, error) {
	var out []models.Participant
	if err := s.db.WithContext(ctx).Where("session_id = ?", sessionID).Order("joined_at").Find(&out).Error; err != nil {
		return nil, fmt.Errorf("failed to list participants for %s: %w", sessionID, err)
	}
	return out, nil
}
