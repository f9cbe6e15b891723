package sync_test

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"coop-inventory/feature/count/models"
	countsync "coop-inventory/feature/count/sync"
	"coop-inventory/feature/count/sync/mocks"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func wirelessEvents() []models.CountEvent {
	return []models.CountEvent{
		{EventID: "e1", SessionID: "S1", ActorID: "device-a", SystemID: "SKU1", DeltaQty: 3, Timestamp: 1},
		{EventID: "e2", SessionID: "S1", ActorID: "device-a", SystemID: "SKU2", DeltaQty: -1, Timestamp: 2},
	}
}

func TestWirelessSyncNow(t *testing.T) {
	logger := zap.NewNop()

	t.Run("Successful push and snapshot read", func(t *testing.T) {
		central := new(mocks.Central)
		peripheral := new(mocks.Peripheral)

		central.On("Available").Return(true)
		central.On("Connect", mock.Anything, countsync.ServiceUUID).Return(peripheral, nil)

		// Capture written frames so we can verify the chunk protocol.
		var frames [][]byte
		peripheral.On("WriteCharacteristic", mock.Anything, countsync.PushCharacteristicUUID, mock.Anything).
			Run(func(args mock.Arguments) {
				frames = append(frames, args.Get(2).([]byte))
			}).Return(nil)

		snapshot, _ := json.Marshal([]models.ItemTotal{{SystemID: "SKU1", Qty: 2}})
		peripheral.On("ReadCharacteristic", mock.Anything, countsync.SnapshotCharacteristicUUID).Return(snapshot, nil)
		peripheral.On("Disconnect").Return(nil)

		provider := countsync.NewWirelessProvider(central, "S1", "device-a", false, logger)
		result := provider.SyncNow(context.Background(), wirelessEvents())

		require.True(t, result.OK)
		assert.Equal(t, []string{"e1", "e2"}, result.SyncedEventIDs)
		require.Len(t, result.Snapshot, 1)
		assert.Equal(t, 2, result.Snapshot[0].Qty)
		peripheral.AssertCalled(t, "Disconnect")

		// Every frame is a well-formed chunk, and the set reassembles into
		// the original packet.
		asm := countsync.NewAssembler()
		for _, frame := range frames {
			var c countsync.Chunk
			require.NoError(t, json.Unmarshal(frame, &c))
			assert.Equal(t, countsync.TypeEventBatchChunk, c.Type)
			_, err := asm.Add(c)
			require.NoError(t, err)
		}
		payload, err := asm.Payload()
		require.NoError(t, err)
		packet, err := countsync.DecodePacket(payload)
		require.NoError(t, err)
		assert.Len(t, packet.Events, 2)
	})

	t.Run("Host role is refused", func(t *testing.T) {
		central := new(mocks.Central)
		provider := countsync.NewWirelessProvider(central, "S1", "host-1", true, logger)

		result := provider.SyncNow(context.Background(), wirelessEvents())
		assert.False(t, result.OK)
		assert.Empty(t, result.SyncedEventIDs)
		assert.Contains(t, result.Message, "host")
		central.AssertNotCalled(t, "Connect")
	})

	t.Run("Unsupported hardware", func(t *testing.T) {
		central := new(mocks.Central)
		central.On("Available").Return(false)
		provider := countsync.NewWirelessProvider(central, "S1", "device-a", false, logger)

		result := provider.SyncNow(context.Background(), wirelessEvents())
		assert.False(t, result.OK)
		assert.Empty(t, result.SyncedEventIDs)
	})

	t.Run("Connect failure", func(t *testing.T) {
		central := new(mocks.Central)
		central.On("Available").Return(true)
		central.On("Connect", mock.Anything, countsync.ServiceUUID).Return(nil, errors.New("no host in range"))

		provider := countsync.NewWirelessProvider(central, "S1", "device-a", false, logger)
		result := provider.SyncNow(context.Background(), wirelessEvents())

		assert.False(t, result.OK)
		assert.Contains(t, result.Message, "connect")
	})

	t.Run("Write failure never reports partial success", func(t *testing.T) {
		central := new(mocks.Central)
		peripheral := new(mocks.Peripheral)

		central.On("Available").Return(true)
		central.On("Connect", mock.Anything, countsync.ServiceUUID).Return(peripheral, nil)
		peripheral.On("WriteCharacteristic", mock.Anything, countsync.PushCharacteristicUUID, mock.Anything).
			Return(errors.New("characteristic write rejected"))
		peripheral.On("Disconnect").Return(nil)

		provider := countsync.NewWirelessProvider(central, "S1", "device-a", false, logger)
		result := provider.SyncNow(context.Background(), wirelessEvents())

		assert.False(t, result.OK)
		assert.Empty(t, result.SyncedEventIDs)
		peripheral.AssertCalled(t, "Disconnect")
	})

	t.Run("Cancelled context aborts before writes", func(t *testing.T) {
		central := new(mocks.Central)
		peripheral := new(mocks.Peripheral)

		central.On("Available").Return(true)
		central.On("Connect", mock.Anything, countsync.ServiceUUID).Return(peripheral, nil)
		peripheral.On("Disconnect").Return(nil)

		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		provider := countsync.NewWirelessProvider(central, "S1", "device-a", false, logger)
		result := provider.SyncNow(ctx, wirelessEvents())

		assert.False(t, result.OK)
		assert.Empty(t, result.SyncedEventIDs)
		peripheral.AssertNotCalled(t, "WriteCharacteristic", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("Garbage snapshot fails the sync", func(t *testing.T) {
		central := new(mocks.Central)
		peripheral := new(mocks.Peripheral)

		central.On("Available").Return(true)
		central.On("Connect", mock.Anything, countsync.ServiceUUID).Return(peripheral, nil)
		peripheral.On("WriteCharacteristic", mock.Anything, countsync.PushCharacteristicUUID, mock.Anything).Return(nil)
		peripheral.On("ReadCharacteristic", mock.Anything, countsync.SnapshotCharacteristicUUID).Return([]byte("{{{"), nil)
		peripheral.On("Disconnect").Return(nil)

		provider := countsync.NewWirelessProvider(central, "S1", "device-a", false, logger)
		result := provider.SyncNow(context.Background(), wirelessEvents())

		assert.False(t, result.OK)
	})
}
