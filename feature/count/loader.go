package count

import (
	"coop-inventory/core/device"
	countsync "coop-inventory/feature/count/sync"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Feature implements the loader.Feature interface.
type Feature struct {
	service *Service
	handler *Handler
}

// NewFeature creates the count feature. central may be nil on platforms
// without a BLE stack; the visual transport remains available.
func NewFeature(db *gorm.DB, sessions SessionDirectory, central countsync.Central, cfg device.Config, logger *zap.Logger) *Feature {
	svc := NewService(db, sessions, central, cfg, logger)
	h := NewHandler(svc, logger)
	return &Feature{service: svc, handler: h}
}

// Service exposes the count service for collaborators wired in cmd.
func (f *Feature) Service() *Service {
	return f.service
}

// Name returns the name of the feature.
func (f *Feature) Name() string {
	return "count"
}

// IsEnabled checks if the feature is enabled.
func (f *Feature) IsEnabled() bool {
	return true
}

// Load migrates the schema and registers the feature's routes.
func (f *Feature) Load(app fiber.Router) error {
	if err := f.service.Migrate(); err != nil {
		return err
	}
	f.handler.RegisterRoutes(app)
	return nil
}
