package catalog

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"strings"

	"coop-inventory/core/utils"
	"coop-inventory/feature/catalog/models"

	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Service handles catalog operations.
type Service struct {
	db     *gorm.DB
	logger *zap.Logger
}

// NewService creates a new catalog service.
func NewService(db *gorm.DB, logger *zap.Logger) *Service {
	return &Service{db: db, logger: logger}
}

// Migrate creates the catalog table if needed.
func (s *Service) Migrate() error {
	return s.db.AutoMigrate(&models.Item{})
}

// List returns all catalog items.
func (s *Service) List(ctx context.Context) ([]models.Item, error) {
	var items []models.Item
	if err := s.db.WithContext(ctx).Order("system_id").Find(&items).Error; err != nil {
		return nil, fmt.Errorf("failed to list catalog items: %w", err)
	}
	return items, nil
}

// Upsert inserts or updates an item keyed by system_id.
func (s *Service) Upsert(ctx context.Context, item *models.Item) error {
	if strings.TrimSpace(item.SystemID) == "" {
		return fmt.Errorf("catalog item requires a system_id")
	}
	err := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "system_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"name", "upc", "ean", "custom_sku", "manufact_sku", "price_cents", "updated_at"}),
	}).Create(item).Error
	if err != nil {
		return fmt.Errorf("failed to upsert catalog item %s: %w", item.SystemID, err)
	}
	return nil
}

// ResolveCode loads the catalog and resolves a scanned/typed code against it.
// A nil item with nil error means "no match".
func (s *Service) ResolveCode(ctx context.Context, code string) (*models.Item, error) {
	items, err := s.List(ctx)
	if err != nil {
		return nil, err
	}
	return Resolve(code, items), nil
}

// ImportCSV bulk-loads catalog items from CSV. The first row is a header;
// recognized columns are system_id, name, upc, ean, custom_sku,
// manufact_sku and price_cents, in any order. Rows without a system_id are
// skipped and counted separately.
func (s *Service) ImportCSV(ctx context.Context, r io.Reader) (imported, skipped int, err error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		return 0, 0, fmt.Errorf("failed to read csv header: %w", err)
	}

	cols := make(map[string]int, len(header))
	for i, name := range header {
		cols[strings.ToLower(strings.TrimSpace(name))] = i
	}
	if _, ok := cols["system_id"]; !ok {
		return 0, 0, fmt.Errorf("csv header missing required column system_id")
	}

	cell := func(record []string, name string) string {
		idx, ok := cols[name]
		if !ok || idx >= len(record) {
			return ""
		}
		return strings.TrimSpace(record[idx])
	}

	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return imported, skipped, fmt.Errorf("failed to read csv record: %w", err)
		}

		item := models.Item{
			SystemID:    cell(record, "system_id"),
			Name:        cell(record, "name"),
			UPC:         cell(record, "upc"),
			EAN:         cell(record, "ean"),
			CustomSKU:   cell(record, "custom_sku"),
			ManufactSKU: cell(record, "manufact_sku"),
			PriceCents:  utils.ToInt(cell(record, "price_cents")),
		}
		if item.SystemID == "" {
			skipped++
			continue
		}
		if err := s.Upsert(ctx, &item); err != nil {
			return imported, skipped, err
		}
		imported++
	}

	s.logger.Info("Catalog import finished",
		zap.Int("imported", imported),
		zap.Int("skipped", skipped),
	)
	return imported, skipped, nil
}
