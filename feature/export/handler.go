package export

import (
	"coop-inventory/core/logger"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// Handler handles HTTP requests for session exports.
type Handler struct {
	service *Service
	logger  *zap.Logger
}

// NewHandler creates a new HTTP handler.
func NewHandler(service *Service, logger *zap.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

// RegisterRoutes registers the export routes.
func (h *Handler) RegisterRoutes(app fiber.Router) {
	group := app.Group("/sessions/:id/export")
	group.Post("/", h.HandleUpload)
	group.Get("/", h.HandleDownload)
	group.Delete("/", h.HandleDelete)
}

// HandleUpload exports the session's totals to object storage.
// @Summary Export Session Totals
// @Description Upload the session's reconciled totals as a JSON report to object storage.
// @Tags export
// @Produce json
// @Param id path string true "Session ID"
// @Success 200 {object} map[string]string
// @Failure 500 {object} map[string]string "Upload failed"
// @Router /sessions/{id}/export [post]
func (h *Handler) HandleUpload(c *fiber.Ctx) error {
	l := logger.WithRayID(h.logger, c)

	key, err := h.service.Upload(c.Context(), c.Params("id"))
	if err != nil {
		l.Error("Export failed", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}
	return c.JSON(fiber.Map{"object": key})
}

// HandleDownload fetches a previously exported report.
// @Summary Fetch Exported Report
// @Tags export
// @Produce json
// @Param id path string true "Session ID"
// @Success 200 {object} Report
// @Failure 500 {object} map[string]string "Fetch failed"
// @Router /sessions/{id}/export [get]
func (h *Handler) HandleDownload(c *fiber.Ctx) error {
	l := logger.WithRayID(h.logger, c)

	report, err := h.service.Download(c.Context(), c.Params("id"))
	if err != nil {
		l.Error("Report fetch failed", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}
	return c.JSON(report)
}

// HandleDelete removes an exported report.
// @Summary Delete Exported Report
// @Tags export
// @Param id path string true "Session ID"
// @Success 204
// @Router /sessions/{id}/export [delete]
func (h *Handler) HandleDelete(c *fiber.Ctx) error {
	l := logger.WithRayID(h.logger, c)

	if err := h.service.Delete(c.Context(), c.Params("id")); err != nil {
		l.Error("Report delete failed", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}
	return c.SendStatus(fiber.StatusNoContent)
}
