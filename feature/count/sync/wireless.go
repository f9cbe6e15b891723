package sync

import (
	"context"
	"encoding/json"
	"time"

	"coop-inventory/core/device"
	"coop-inventory/feature/count/models"

	"go.uber.org/zap"
)

// Fixed GATT identifiers of the host sync service. A participant central
// connects to ServiceUUID, writes the chunked batch to the push
// characteristic, then reads the snapshot characteristic for the host's
// current totals.
const (
	ServiceUUID                = "7a1e8e10-6b2d-4c8a-9f3e-0c2b1a4d5e6f"
	PushCharacteristicUUID     = "7a1e8e11-6b2d-4c8a-9f3e-0c2b1a4d5e6f"
	SnapshotCharacteristicUUID = "7a1e8e12-6b2d-4c8a-9f3e-0c2b1a4d5e6f"
)

// Peripheral is an open connection to the host's advertised sync service.
// Implementations wrap the platform BLE stack; tests use the mock in
// sync/mocks.
type Peripheral interface {
	// WriteCharacteristic writes one payload to a characteristic.
	WriteCharacteristic(ctx context.Context, charUUID string, payload []byte) error
	// ReadCharacteristic reads the current value of a characteristic.
	ReadCharacteristic(ctx context.Context, charUUID string) ([]byte, error)
	// Disconnect releases the connection. Safe to call on every exit path.
	Disconnect() error
}

// Central is the platform's central-role BLE capability. A nil or
// unavailable central fails the capability probe and the selector falls
// back to the visual transport.
type Central interface {
	// Available is a pure capability probe with no side effects.
	Available() bool
	// Connect opens a connection to a previously-advertised host service.
	Connect(ctx context.Context, serviceUUID string) (Peripheral, error)
}

// WirelessProvider implements the short-range wireless burst transport.
// Only a participant device ever initiates: reliable peripheral advertising
// from a handheld session is not guaranteed, so a host refuses the role.
type WirelessProvider struct {
	central   Central
	sessionID string
	actorID   string
	isHost    bool
	chunkSize int
	logger    *zap.Logger
}

// NewWirelessProvider creates a wireless provider bound to one session and
// the local actor. central may be nil on platforms without BLE.
func NewWirelessProvider(central Central, sessionID, actorID string, isHost bool, logger *zap.Logger) *WirelessProvider {
	return &WirelessProvider{
		central:   central,
		sessionID: sessionID,
		actorID:   actorID,
		isHost:    isHost,
		chunkSize: DefaultChunkSize,
		logger:    logger,
	}
}

// ID returns the transport tag.
func (p *WirelessProvider) ID() string {
	return device.TransportWireless
}

// IsSupported probes for a central-role BLE API without side effects.
func (p *WirelessProvider) IsSupported() bool {
	return p.central != nil && p.central.Available()
}

// SyncNow pushes the chunked outgoing batch to the host and reads back the
// host's totals snapshot as an optimistic immediate refresh.
//
// Every failure path returns OK=false with a human-readable message and an
// empty synced id list; a wireless sync never reports partial success. An
// aborted transfer leaves nothing settled, and a retry resends the full
// chunk set.
func (p *WirelessProvider) SyncNow(ctx context.Context, events []models.CountEvent) Result {
	fail := func(msg string) Result {
		return Result{OK: false, Provider: p.ID(), SyncedEventIDs: []string{}, Message: msg}
	}

	if p.isHost {
		return fail("host devices cannot initiate a wireless sync; wait for participants to push")
	}
	if !p.IsSupported() {
		return fail(ErrUnsupportedTransport.Error())
	}

	packet := &Packet{
		SessionID:   p.sessionID,
		ActorID:     p.actorID,
		GeneratedAt: time.Now().UnixMilli(),
		Events:      events,
	}
	encoded, err := EncodePacket(packet)
	if err != nil {
		return fail("failed to encode packet: " + err.Error())
	}

	peripheral, err := p.central.Connect(ctx, ServiceUUID)
	if err != nil {
		ioErr := &TransportIOError{Op: "connect", Err: err}
		return fail(ioErr.Error())
	}
	// Release the hardware handle on every exit path.
	defer peripheral.Disconnect()

	for _, chunk := range SplitChunks(encoded, p.chunkSize) {
		if err := ctx.Err(); err != nil {
			return fail("sync aborted: " + err.Error())
		}
		frame, err := json.Marshal(chunk)
		if err != nil {
			return fail("failed to marshal chunk: " + err.Error())
		}
		if err := peripheral.WriteCharacteristic(ctx, PushCharacteristicUUID, frame); err != nil {
			ioErr := &TransportIOError{Op: "push write", Err: err}
			return fail(ioErr.Error())
		}
	}

	raw, err := peripheral.ReadCharacteristic(ctx, SnapshotCharacteristicUUID)
	if err != nil {
		ioErr := &TransportIOError{Op: "snapshot read", Err: err}
		return fail(ioErr.Error())
	}

	var snapshot []models.ItemTotal
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &snapshot); err != nil {
			return fail("host snapshot is not valid JSON")
		}
	}

	p.logger.Debug("Wireless sync completed",
		zap.String("session_id", p.sessionID),
		zap.Int("events", len(events)),
	)

	return Result{
		OK:             true,
		Provider:       p.ID(),
		SyncedEventIDs: eventIDs(events),
		Snapshot:       snapshot,
	}
}
