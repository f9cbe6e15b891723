package sync

import (
	"encoding/base64"
	"encoding/json"
	"strings"

	"coop-inventory/feature/count/models"
)

// JoinPrefix tags a session-join invitation so a scanner can tell it from a
// data packet before attempting a decode.
const JoinPrefix = "coop-inv-join:"

// TypeSessionJoin is the type discriminator inside a join packet body.
const TypeSessionJoin = "session_join"

// Packet is the unit exchanged between devices: the sender's events plus
// optional totals and acknowledgements.
type Packet struct {
	SessionID   string              `json:"session_id"`
	ActorID     string              `json:"actor_id"`
	GeneratedAt int64               `json:"generated_at"`
	Events      []models.CountEvent `json:"events"`
	Totals      []models.ItemTotal  `json:"totals,omitempty"`
	AckEventIDs []string            `json:"ack_event_ids,omitempty"`
}

// JoinPacket is a lightweight session invitation, carried only through the
// visual transport.
type JoinPacket struct {
	Type        string `json:"type"`
	SessionID   string `json:"session_id"`
	SessionName string `json:"session_name,omitempty"`
	HostID      string `json:"host_id,omitempty"`
	GeneratedAt int64  `json:"generated_at"`
}

// EncodePacket serializes a sync packet into the compact textual encoding:
// canonical JSON wrapped in the URL-safe, padding-free base64 alphabet so
// the result embeds in a 2D barcode or clipboard text.
func EncodePacket(p *Packet) (string, error) {
	if p.Events == nil {
		p.Events = []models.CountEvent{}
	}
	raw, err := json.Marshal(p)
	if err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(raw), nil
}

// DecodePacket reverses EncodePacket. Missing required fields surface as a
// *ValidationError; an absent or malformed events array degrades to empty
// rather than failing the whole packet.
func DecodePacket(encoded string) (*Packet, error) {
	raw, err := base64.RawURLEncoding.DecodeString(strings.TrimSpace(encoded))
	if err != nil {
		return nil, &ValidationError{Reason: "payload is not valid base64url"}
	}

	// Events are unmarshalled separately so a malformed array degrades to
	// empty instead of rejecting the rest of the packet.
	var head struct {
		SessionID   string             `json:"session_id"`
		ActorID     string             `json:"actor_id"`
		GeneratedAt int64              `json:"generated_at"`
		Events      json.RawMessage    `json:"events"`
		Totals      []models.ItemTotal `json:"totals"`
		AckEventIDs []string           `json:"ack_event_ids"`
	}
	if err := json.Unmarshal(raw, &head); err != nil {
		return nil, &ValidationError{Reason: "payload is not valid JSON"}
	}
	if head.SessionID == "" {
		return nil, &ValidationError{Reason: "missing session_id"}
	}
	if head.ActorID == "" {
		return nil, &ValidationError{Reason: "missing actor_id"}
	}

	events := []models.CountEvent{}
	if len(head.Events) > 0 {
		if err := json.Unmarshal(head.Events, &events); err != nil {
			events = []models.CountEvent{}
		}
	}

	return &Packet{
		SessionID:   head.SessionID,
		ActorID:     head.ActorID,
		GeneratedAt: head.GeneratedAt,
		Events:      events,
		Totals:      head.Totals,
		AckEventIDs: head.AckEventIDs,
	}, nil
}

// EncodeJoinPacket serializes a session invitation and tags it with the
// join prefix.
func EncodeJoinPacket(j *JoinPacket) (string, error) {
	j.Type = TypeSessionJoin
	raw, err := json.Marshal(j)
	if err != nil {
		return "", err
	}
	return JoinPrefix + base64.RawURLEncoding.EncodeToString(raw), nil
}

// IsJoinPacket reports whether a scanned string carries the join prefix.
func IsJoinPacket(encoded string) bool {
	return strings.HasPrefix(strings.TrimSpace(encoded), JoinPrefix)
}

// DecodeJoinPacket decodes a session invitation. The join prefix is
// accepted but not required, so callers that already stripped it still
// decode. The body must carry type "session_join" and a session_id.
func DecodeJoinPacket(encoded string) (*JoinPacket, error) {
	encoded = strings.TrimPrefix(strings.TrimSpace(encoded), JoinPrefix)

	raw, err := base64.RawURLEncoding.DecodeString(encoded)
	if err != nil {
		return nil, &ValidationError{Reason: "join payload is not valid base64url"}
	}

	var j JoinPacket
	if err := json.Unmarshal(raw, &j); err != nil {
		return nil, &ValidationError{Reason: "join payload is not valid JSON"}
	}
	if j.Type != TypeSessionJoin {
		return nil, &ValidationError{Reason: "not a session_join packet"}
	}
	if j.SessionID == "" {
		return nil, &ValidationError{Reason: "missing session_id"}
	}
	return &j, nil
}
