package sync

import (
	"context"

	"coop-inventory/core/device"
	"coop-inventory/feature/count/models"
)

// Result is what a provider reports back from one sync attempt. Expected
// failures are encoded as OK=false with a message; a provider never lets
// them escape as returned errors.
type Result struct {
	OK             bool                `json:"ok"`
	Provider       string              `json:"provider"`
	SyncedEventIDs []string            `json:"synced_event_ids"`
	ImportedEvents []models.CountEvent `json:"imported_events,omitempty"`
	Snapshot       []models.ItemTotal  `json:"snapshot,omitempty"`
	Message        string              `json:"message,omitempty"`
}

// Provider is one transport capable of moving sync packets between devices.
type Provider interface {
	// ID returns the transport tag (device.TransportWireless or
	// device.TransportVisual).
	ID() string
	// IsSupported is a pure capability probe with no side effects.
	IsSupported() bool
	// SyncNow performs one sync exchange for the given outgoing events.
	SyncNow(ctx context.Context, events []models.CountEvent) Result
}

// Select resolves the provider for a sync round. The preferred transport is
// chosen only if its capability probe succeeds; otherwise selection falls
// back to the visual provider, the only transport guaranteed available.
func Select(preferred string, providers []Provider) Provider {
	var fallback Provider
	for _, p := range providers {
		if p.ID() == device.TransportVisual {
			fallback = p
		}
	}
	for _, p := range providers {
		if p.ID() == preferred && p.IsSupported() {
			return p
		}
	}
	return fallback
}

func eventIDs(events []models.CountEvent) []string {
	ids := make([]string, 0, len(events))
	for _, e := range events {
		ids = append(ids, e.EventID)
	}
	return ids
}
