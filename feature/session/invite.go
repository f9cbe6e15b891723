package session

import (
	"context"
	"errors"
	"fmt"
	"time"

	countsync "coop-inventory/feature/count/sync"
	"coop-inventory/feature/session/models"

	"go.uber.org/zap"
)

// Invite renders a join invitation for the session, encoded for the visual
// transport so participants without a network can scan their way in.
func (s *Service) Invite(ctx context.Context, sessionID string) (string, error) {
	sess, err := s.Get(ctx, sessionID)
	if err != nil {
		return "", err
	}
	if sess.Status == models.StatusLocked {
		return "", &StateError{SessionID: sessionID, Reason: "cannot invite into a locked session"}
	}

	return countsync.EncodeJoinPacket(&countsync.JoinPacket{
		SessionID:   sess.ID,
		SessionName: sess.SessionName,
		HostID:      sess.HostID,
		GeneratedAt: time.Now().UnixMilli(),
	})
}

// JoinByInvite accepts a scanned invitation on a participant device. The
// session described by the invite is mirrored into the local store if this
// device has never seen it, then the device is registered as a participant.
func (s *Service) JoinByInvite(ctx context.Context, encoded, participantID, displayName string) (*models.Session, *models.Participant, error) {
	invite, err := countsync.DecodeJoinPacket(encoded)
	if err != nil {
		return nil, nil, err
	}

	sess, err := s.Get(ctx, invite.SessionID)
	var stateErr *StateError
	if errors.As(err, &stateErr) {
		// First contact with this session: mirror it locally so events and
		// merges have a session row to validate against.
		sess = &models.Session{
			ID:          invite.SessionID,
			SessionName: invite.SessionName,
			HostID:      invite.HostID,
			CreatedBy:   invite.HostID,
			Status:      models.StatusActive,
		}
		if err := s.db.WithContext(ctx).Create(sess).Error; err != nil {
			return nil, nil, fmt.Errorf("failed to mirror session %s: %w", invite.SessionID, err)
		}
		s.logger.Info("Session mirrored from invite",
			zap.String("session_id", invite.SessionID),
			zap.String("host_id", invite.HostID),
		)
	} else if err != nil {
		return nil, nil, err
	}

	if sess.Status == models.StatusLocked {
		return nil, nil, &StateError{SessionID: sess.ID, Reason: "session is locked"}
	}

	p, err := s.Join(ctx, sess.ID, participantID, displayName)
	if err != nil {
		return nil, nil, err
	}
	return sess, p, nil
}
