package sync

import (
	"context"
	"time"

	"coop-inventory/core/device"
	"coop-inventory/feature/count/models"
)

// VisualProvider implements the visual packet exchange: it turns outgoing
// events into one compact packet string. Rendering the barcode and running
// the camera capture loop are UI-layer concerns; the core contract ends at
// producing/consuming one packet string.
type VisualProvider struct {
	sessionID string
	actorID   string
}

// NewVisualProvider creates a visual provider bound to one session and the
// local actor.
func NewVisualProvider(sessionID, actorID string) *VisualProvider {
	return &VisualProvider{sessionID: sessionID, actorID: actorID}
}

// ID returns the transport tag.
func (p *VisualProvider) ID() string {
	return device.TransportVisual
}

// IsSupported always reports true; the visual transport has no hardware
// dependency.
func (p *VisualProvider) IsSupported() bool {
	return true
}

// SyncNow encodes the outgoing events into a compact packet and returns it
// in Message. The encoded event ids are reported as synced: the hand-off
// to the physical display/scan channel is the exchange.
func (p *VisualProvider) SyncNow(ctx context.Context, events []models.CountEvent) Result {
	packet := &Packet{
		SessionID:   p.sessionID,
		ActorID:     p.actorID,
		GeneratedAt: time.Now().UnixMilli(),
		Events:      events,
	}

	encoded, err := EncodePacket(packet)
	if err != nil {
		return Result{
			OK:             false,
			Provider:       p.ID(),
			SyncedEventIDs: []string{},
			Message:        "failed to encode packet: " + err.Error(),
		}
	}

	return Result{
		OK:             true,
		Provider:       p.ID(),
		SyncedEventIDs: eventIDs(events),
		Message:        encoded,
	}
}
