package catalog

import (
	"bytes"

	"coop-inventory/core/logger"
	"coop-inventory/feature/catalog/models"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// Handler handles HTTP requests for the catalog.
type Handler struct {
	service *Service
	logger  *zap.Logger
}

// NewHandler creates a new HTTP handler.
func NewHandler(service *Service, logger *zap.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

// RegisterRoutes registers the catalog routes.
func (h *Handler) RegisterRoutes(app fiber.Router) {
	group := app.Group("/catalog")
	group.Get("/", h.HandleList)
	group.Post("/", h.HandleUpsert)
	group.Post("/import", h.HandleImportCSV)
	group.Get("/resolve/:code", h.HandleResolve)
}

// HandleList returns all catalog items.
// @Summary List Catalog
// @Description List all known catalog items.
// @Tags catalog
// @Produce json
// @Success 200 {array} models.Item
// @Router /catalog [get]
func (h *Handler) HandleList(c *fiber.Ctx) error {
	l := logger.WithRayID(h.logger, c)

	items, err := h.service.List(c.Context())
	if err != nil {
		l.Error("Catalog list failed", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": err.Error(),
		})
	}
	return c.JSON(items)
}

// HandleUpsert inserts or updates a catalog item.
// @Summary Upsert Catalog Item
// @Description Insert or update a catalog item keyed by system_id.
// @Tags catalog
// @Accept json
// @Produce json
// @Param item body models.Item true "Catalog Item"
// @Success 200 {object} models.Item
// @Failure 400 {object} map[string]string "Bad Request"
// @Router /catalog [post]
func (h *Handler) HandleUpsert(c *fiber.Ctx) error {
	l := logger.WithRayID(h.logger, c)

	var item models.Item
	if err := c.BodyParser(&item); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "invalid item payload",
		})
	}

	if err := h.service.Upsert(c.Context(), &item); err != nil {
		l.Error("Catalog upsert failed", zap.Error(err))
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": err.Error(),
		})
	}
	return c.JSON(item)
}

// HandleImportCSV bulk-imports catalog items from a CSV request body.
// @Summary Import Catalog CSV
// @Description Bulk import catalog items from CSV (header row required).
// @Tags catalog
// @Accept text/csv
// @Produce json
// @Success 200 {object} map[string]int "imported / skipped counts"
// @Failure 400 {object} map[string]string "Bad Request"
// @Router /catalog/import [post]
func (h *Handler) HandleImportCSV(c *fiber.Ctx) error {
	l := logger.WithRayID(h.logger, c)

	imported, skipped, err := h.service.ImportCSV(c.Context(), bytes.NewReader(c.Body()))
	if err != nil {
		l.Error("Catalog import failed", zap.Error(err))
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": err.Error(),
		})
	}
	return c.JSON(fiber.Map{"imported": imported, "skipped": skipped})
}

// HandleResolve maps a scanned/typed code to a catalog item.
// @Summary Resolve Identifier
// @Description Resolve a scanned or typed code to a catalog item using the fixed identifier priority (upc, ean, system_id, custom_sku, manufact_sku).
// @Tags catalog
// @Produce json
// @Param code path string true "Scanned Code"
// @Success 200 {object} models.Item
// @Failure 404 {object} map[string]string "No Match"
// @Router /catalog/resolve/{code} [get]
func (h *Handler) HandleResolve(c *fiber.Ctx) error {
	l := logger.WithRayID(h.logger, c)

	item, err := h.service.ResolveCode(c.Context(), c.Params("code"))
	if err != nil {
		l.Error("Identifier resolution failed", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": err.Error(),
		})
	}
	if item == nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "no catalog item matches code",
		})
	}
	return c.JSON(item)
}
