package catalog

import (
	"context"
	"strings"
	"testing"

	"coop-inventory/core/database"
	"coop-inventory/feature/catalog/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

var testItem = models.Item{
	SystemID:   "SKU1",
	Name:       "Widget",
	UPC:        "012345678905",
	PriceCents: 1999,
}

func setupService(t *testing.T) *Service {
	db, err := database.Connect(database.Config{Driver: "sqlite", Name: ":memory:"})
	require.NoError(t, err)

	svc := NewService(db, zap.NewNop())
	require.NoError(t, svc.Migrate())
	return svc
}

func TestServiceUpsert(t *testing.T) {
	svc := setupService(t)
	ctx := context.Background()

	item := &testItem
	require.NoError(t, svc.Upsert(ctx, item))

	// Upsert again with a changed name; must update, not duplicate.
	updated := testItem
	updated.Name = "Renamed Widget"
	require.NoError(t, svc.Upsert(ctx, &updated))

	items, err := svc.List(ctx)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "Renamed Widget", items[0].Name)

	t.Run("Rejects missing system_id", func(t *testing.T) {
		bad := testItem
		bad.SystemID = "  "
		assert.Error(t, svc.Upsert(ctx, &bad))
	})
}

func TestServiceImportCSV(t *testing.T) {
	svc := setupService(t)
	ctx := context.Background()

	csvBody := strings.Join([]string{
		"system_id,name,upc,ean,custom_sku,manufact_sku,price_cents",
		"SKU1,Widget,012345678905,,,,1999",
		"SKU2,Gadget,,4006381333931,,GAD-7,250",
		",Orphan row without system id,,,,,",
	}, "\n")

	imported, skipped, err := svc.ImportCSV(ctx, strings.NewReader(csvBody))
	require.NoError(t, err)
	assert.Equal(t, 2, imported)
	assert.Equal(t, 1, skipped)

	items, err := svc.List(ctx)
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, 1999, items[0].PriceCents)

	t.Run("Missing system_id column", func(t *testing.T) {
		_, _, err := svc.ImportCSV(ctx, strings.NewReader("name,upc\nWidget,1"))
		assert.Error(t, err)
	})
}

func TestServiceResolveCode(t *testing.T) {
	svc := setupService(t)
	ctx := context.Background()

	require.NoError(t, svc.Upsert(ctx, &testItem))

	item, err := svc.ResolveCode(ctx, "012345678905")
	require.NoError(t, err)
	require.NotNil(t, item)
	assert.Equal(t, "SKU1", item.SystemID)

	missing, err := svc.ResolveCode(ctx, "nope")
	require.NoError(t, err)
	assert.Nil(t, missing)
}
