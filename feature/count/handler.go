package count

import (
	"errors"

	"coop-inventory/core/logger"
	countsync "coop-inventory/feature/count/sync"
	"coop-inventory/feature/session"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// Handler handles HTTP requests for the count core.
type Handler struct {
	service *Service
	logger  *zap.Logger
}

// NewHandler creates a new HTTP handler.
func NewHandler(service *Service, logger *zap.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

// RegisterRoutes registers the count routes.
func (h *Handler) RegisterRoutes(app fiber.Router) {
	group := app.Group("/sessions/:id")
	group.Post("/counts", h.HandleRecordDelta)
	group.Get("/totals", h.HandleTotals)
	group.Post("/sync", h.HandleSyncNow)
	group.Get("/packet", h.HandleExportPacket)
	group.Delete("/events", h.HandleClearSession)

	packets := app.Group("/packets")
	packets.Post("/import", h.HandleImportPacket)
	packets.Post("/chunks", h.HandleIngestChunk)
}

// fail maps the core error kinds onto HTTP statuses: rejected session
// state is a conflict, malformed packets are bad requests, and storage
// failures stay 500s (retryable, not data loss).
func (h *Handler) fail(c *fiber.Ctx, err error) error {
	l := logger.WithRayID(h.logger, c)

	var stateErr *session.StateError
	if errors.As(err, &stateErr) {
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": stateErr.Error()})
	}
	var validationErr *countsync.ValidationError
	if errors.As(err, &validationErr) {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": validationErr.Error()})
	}

	l.Error("Count operation failed", zap.Error(err))
	return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
}

// HandleRecordDelta captures one local quantity adjustment.
// @Summary Record Count Delta
// @Description Append a signed quantity adjustment for a catalog item to the session's local event log.
// @Tags count
// @Accept json
// @Produce json
// @Param id path string true "Session ID"
// @Param delta body object true "system_id and delta_qty"
// @Success 200 {object} models.CountEvent
// @Failure 400 {object} map[string]string "Bad Request"
// @Failure 409 {object} map[string]string "Session locked or unknown"
// @Router /sessions/{id}/counts [post]
func (h *Handler) HandleRecordDelta(c *fiber.Ctx) error {
	var body struct {
		SystemID string `json:"system_id"`
		DeltaQty int    `json:"delta_qty"`
	}
	if err := c.BodyParser(&body); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid delta payload"})
	}

	event, err := h.service.RecordDelta(c.Context(), c.Params("id"), body.SystemID, body.DeltaQty)
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(event)
}

// HandleTotals returns the session's current per-item totals.
// @Summary Session Totals
// @Description Current per-item totals (cached snapshot, recomputed when absent).
// @Tags count
// @Produce json
// @Param id path string true "Session ID"
// @Success 200 {object} map[string]any
// @Router /sessions/{id}/totals [get]
func (h *Handler) HandleTotals(c *fiber.Ctx) error {
	totals, updatedAt, err := h.service.Totals(c.Context(), c.Params("id"))
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(fiber.Map{"totals": totals, "updated_at": updatedAt})
}

// HandleSyncNow runs one sync round over the selected transport.
// @Summary Sync Now
// @Description Run one sync round: pending events out, received events merged in. Transport failures are reported in the result, not as HTTP errors.
// @Tags count
// @Accept json
// @Produce json
// @Param id path string true "Session ID"
// @Success 200 {object} countsync.Result
// @Router /sessions/{id}/sync [post]
func (h *Handler) HandleSyncNow(c *fiber.Ctx) error {
	var body struct {
		Host bool `json:"host"`
	}
	// An empty body means a plain participant sync.
	_ = c.BodyParser(&body)

	result, err := h.service.SyncNow(c.Context(), c.Params("id"), body.Host)
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(result)
}

// HandleExportPacket produces the outbound visual packet string.
// @Summary Export Packet
// @Description Encode the session's pending events and totals as a compact packet string for barcode rendering.
// @Tags count
// @Produce json
// @Param id path string true "Session ID"
// @Success 200 {object} map[string]string
// @Router /sessions/{id}/packet [get]
func (h *Handler) HandleExportPacket(c *fiber.Ctx) error {
	encoded, err := h.service.ExportPacket(c.Context(), c.Params("id"))
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(fiber.Map{"packet": encoded})
}

// HandleImportPacket folds one scanned packet into the local log.
// @Summary Import Packet
// @Description Decode a scanned data packet and merge its events into the local log.
// @Tags count
// @Accept json
// @Produce json
// @Success 200 {object} map[string]any
// @Failure 400 {object} map[string]string "Validation Error"
// @Failure 409 {object} map[string]string "Session locked or unknown"
// @Router /packets/import [post]
func (h *Handler) HandleImportPacket(c *fiber.Ctx) error {
	var body struct {
		Packet string `json:"packet"`
	}
	if err := c.BodyParser(&body); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid import payload"})
	}
	if countsync.IsJoinPacket(body.Packet) {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "join packets are handled by POST /sessions/join",
		})
	}

	packet, totals, err := h.service.ImportPacket(c.Context(), body.Packet)
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(fiber.Map{
		"session_id": packet.SessionID,
		"actor_id":   packet.ActorID,
		"merged":     len(packet.Events),
		"totals":     totals,
	})
}

// HandleIngestChunk feeds one wireless chunk frame into the host assembler.
// @Summary Ingest Wireless Chunk
// @Description Feed one event_batch_chunk frame into the host-side reassembler; merges the packet once the set completes.
// @Tags count
// @Accept json
// @Produce json
// @Success 200 {object} map[string]any
// @Failure 400 {object} map[string]string "Validation Error"
// @Router /packets/chunks [post]
func (h *Handler) HandleIngestChunk(c *fiber.Ctx) error {
	done, totals, err := h.service.IngestChunk(c.Context(), c.Body())
	if err != nil {
		return h.fail(c, err)
	}
	if !done {
		return c.JSON(fiber.Map{"complete": false})
	}
	return c.JSON(fiber.Map{"complete": true, "totals": totals})
}

// HandleClearSession purges the local log for an abandoned session.
// @Summary Clear Session Log
// @Description Purge all local events and the snapshot for a session.
// @Tags count
// @Param id path string true "Session ID"
// @Success 204
// @Router /sessions/{id}/events [delete]
func (h *Handler) HandleClearSession(c *fiber.Ctx) error {
	if err := h.service.ClearSession(c.Context(), c.Params("id")); err != nil {
		return h.fail(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}
