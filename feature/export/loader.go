package export

import (
	"coop-inventory/core/storage"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// Feature implements the loader.Feature interface.
type Feature struct {
	handler *Handler
	enabled bool
}

// NewFeature creates the export feature. A nil storage client disables the
// feature; counting and syncing never depend on object storage.
func NewFeature(client storage.Client, cfg storage.Config, totals TotalsSource, logger *zap.Logger) *Feature {
	if client == nil {
		return &Feature{enabled: false}
	}
	svc := NewService(client, cfg, totals, logger)
	return &Feature{handler: NewHandler(svc, logger), enabled: true}
}

// Name returns the name of the feature.
func (f *Feature) Name() string {
	return "export"
}

// IsEnabled checks if the feature is enabled.
func (f *Feature) IsEnabled() bool {
	return f.enabled
}

// Load registers the feature's routes.
func (f *Feature) Load(app fiber.Router) error {
	f.handler.RegisterRoutes(app)
	return nil
}
