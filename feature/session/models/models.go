package models

import "time"

// Session statuses. Transitions are strictly forward:
// active -> finalizing -> locked. Locked is terminal.
const (
	StatusActive     = "active"
	StatusFinalizing = "finalizing"
	StatusLocked     = "locked"
)

// statusRank orders session statuses for forward-only transition checks.
var statusRank = map[string]int{
	StatusActive:     0,
	StatusFinalizing: 1,
	StatusLocked:     2,
}

// IsValidStatus reports whether s is a known session status.
func IsValidStatus(s string) bool {
	_, ok := statusRank[s]
	return ok
}

// IsForwardTransition reports whether moving from one status to another is
// allowed (strictly forward, never backward or same).
func IsForwardTransition(from, to string) bool {
	fr, okFrom := statusRank[from]
	tr, okTo := statusRank[to]
	return okFrom && okTo && tr > fr
}

// Session is one cooperative counting session, created and owned by the
// host device.
type Session struct {
	ID                string     `gorm:"primaryKey;size:64" json:"id"`
	SessionName       string     `gorm:"size:255" json:"session_name"`
	HostID            string     `gorm:"size:64" json:"host_id"`
	CreatedBy         string     `gorm:"size:64" json:"created_by"`
	Status            string     `gorm:"size:16;default:active" json:"status"`
	BaselineSessionID string     `gorm:"size:64" json:"baseline_session_id,omitempty"`
	CreatedAt         time.Time  `json:"created_at"`
	UpdatedAt         time.Time  `json:"updated_at"`
	LockedAt          *time.Time `json:"locked_at,omitempty"`
}

// TableName provides the explicit table binding for GORM.
func (Session) TableName() string {
	return "inventory_sessions"
}

// Participant is one device's membership in a session. The host joins its
// own session like any other participant.
type Participant struct {
	ID            uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	SessionID     string    `gorm:"size:64;uniqueIndex:idx_session_participant,priority:1" json:"session_id"`
	ParticipantID string    `gorm:"size:64;uniqueIndex:idx_session_participant,priority:2" json:"participant_id"`
	DisplayName   string    `gorm:"size:255" json:"display_name"`
	JoinedAt      time.Time `json:"joined_at"`
	LastSeenAt    time.Time `json:"last_seen_at"`
	EventCount    int       `json:"event_count"`
}

// TableName provides the explicit table binding for GORM.
func (Participant) TableName() string {
	return "inventory_participants"
}
