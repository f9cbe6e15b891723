package count

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"coop-inventory/core/device"
	"coop-inventory/feature/count/models"
	countsync "coop-inventory/feature/count/sync"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func testApp(t *testing.T, sessions SessionDirectory) (*fiber.App, *Service) {
	t.Helper()
	svc := testService(t, sessions, nil, deviceConfig("dev-a", device.TransportVisual))
	handler := NewHandler(svc, zap.NewNop())

	app := fiber.New()
	handler.RegisterRoutes(app)
	return app, svc
}

func postJSON(t *testing.T, app *fiber.App, path string, body any) *http.Response {
	t.Helper()
	raw, err := json.Marshal(body)
	require.NoError(t, err)

	req := httptest.NewRequest(fiber.MethodPost, path, bytes.NewReader(raw))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)
	require.NoError(t, err)
	return resp
}

func TestHandleRecordDelta(t *testing.T) {
	app, _ := testApp(t, newFakeSessions("sess-1"))

	resp := postJSON(t, app, "/sessions/sess-1/counts", fiber.Map{
		"system_id": "1001",
		"delta_qty": 3,
	})
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	var ev models.CountEvent
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&ev))
	assert.NotEmpty(t, ev.EventID)
	assert.Equal(t, "1001", ev.SystemID)
	assert.Equal(t, 3, ev.DeltaQty)
}

func TestHandleRecordDeltaLockedSessionIsConflict(t *testing.T) {
	sessions := newFakeSessions("sess-1")
	sessions.locked["sess-1"] = true
	app, _ := testApp(t, sessions)

	resp := postJSON(t, app, "/sessions/sess-1/counts", fiber.Map{
		"system_id": "1001",
		"delta_qty": 1,
	})
	assert.Equal(t, fiber.StatusConflict, resp.StatusCode)
}

func TestHandleTotals(t *testing.T) {
	app, _ := testApp(t, newFakeSessions("sess-1"))

	resp := postJSON(t, app, "/sessions/sess-1/counts", fiber.Map{"system_id": "1001", "delta_qty": 2})
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	req := httptest.NewRequest(fiber.MethodGet, "/sessions/sess-1/totals", nil)
	getResp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, getResp.StatusCode)

	var body struct {
		Totals []models.ItemTotal `json:"totals"`
	}
	require.NoError(t, json.NewDecoder(getResp.Body).Decode(&body))
	assert.Equal(t, []models.ItemTotal{{SystemID: "1001", Qty: 2}}, body.Totals)
}

func TestHandleSyncNow(t *testing.T) {
	app, svc := testApp(t, newFakeSessions("sess-1"))

	resp := postJSON(t, app, "/sessions/sess-1/counts", fiber.Map{"system_id": "1001", "delta_qty": 2})
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	syncResp := postJSON(t, app, "/sessions/sess-1/sync", fiber.Map{})
	require.Equal(t, fiber.StatusOK, syncResp.StatusCode)

	var result countsync.Result
	require.NoError(t, json.NewDecoder(syncResp.Body).Decode(&result))
	assert.True(t, result.OK)
	assert.Equal(t, device.TransportVisual, result.Provider)
	assert.Len(t, result.SyncedEventIDs, 1)

	pending, err := svc.Store().PendingEvents(context.Background(), "sess-1")
	require.NoError(t, err)
	assert.Empty(t, pending)
}

func TestHandleImportPacket(t *testing.T) {
	app, _ := testApp(t, newFakeSessions("sess-1"))

	encoded, err := countsync.EncodePacket(&countsync.Packet{
		SessionID:   "sess-1",
		ActorID:     "dev-b",
		GeneratedAt: time.Now().UnixMilli(),
		Events:      []models.CountEvent{event("ev-b", "sess-1", "dev-b", "1001", -1)},
	})
	require.NoError(t, err)

	resp := postJSON(t, app, "/packets/import", fiber.Map{"packet": encoded})
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	var body struct {
		SessionID string             `json:"session_id"`
		Merged    int                `json:"merged"`
		Totals    []models.ItemTotal `json:"totals"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "sess-1", body.SessionID)
	assert.Equal(t, 1, body.Merged)
	assert.Equal(t, []models.ItemTotal{{SystemID: "1001", Qty: -1}}, body.Totals)
}

func TestHandleImportPacketValidation(t *testing.T) {
	app, _ := testApp(t, newFakeSessions("sess-1"))

	t.Run("Garbage packet", func(t *testing.T) {
		resp := postJSON(t, app, "/packets/import", fiber.Map{"packet": "!!! not a packet"})
		assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
	})

	t.Run("Join packet is redirected", func(t *testing.T) {
		joined, err := countsync.EncodeJoinPacket(&countsync.JoinPacket{
			SessionID:   "sess-1",
			SessionName: "Aisle Count",
			HostID:      "dev-host",
			GeneratedAt: time.Now().UnixMilli(),
		})
		require.NoError(t, err)

		resp := postJSON(t, app, "/packets/import", fiber.Map{"packet": joined})
		assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
	})
}

func TestHandleIngestChunk(t *testing.T) {
	app, _ := testApp(t, newFakeSessions("sess-1"))

	encoded, err := countsync.EncodePacket(&countsync.Packet{
		SessionID:   "sess-1",
		ActorID:     "dev-b",
		GeneratedAt: time.Now().UnixMilli(),
		Events:      []models.CountEvent{event("ev-b", "sess-1", "dev-b", "1001", 2)},
	})
	require.NoError(t, err)

	chunks := countsync.SplitChunks(encoded, 64)
	for i, chunk := range chunks {
		resp := postJSON(t, app, "/packets/chunks", chunk)
		require.Equal(t, fiber.StatusOK, resp.StatusCode, fmt.Sprintf("chunk %d", i))

		var body struct {
			Complete bool `json:"complete"`
		}
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
		assert.Equal(t, i == len(chunks)-1, body.Complete)
	}
}

func TestHandleClearSession(t *testing.T) {
	app, svc := testApp(t, newFakeSessions("sess-1"))

	resp := postJSON(t, app, "/sessions/sess-1/counts", fiber.Map{"system_id": "1001", "delta_qty": 1})
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	req := httptest.NewRequest(fiber.MethodDelete, "/sessions/sess-1/events", nil)
	delResp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusNoContent, delResp.StatusCode)

	events, err := svc.Store().EventsForSession(context.Background(), "sess-1")
	require.NoError(t, err)
	assert.Empty(t, events)
}
