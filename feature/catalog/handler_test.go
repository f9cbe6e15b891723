package catalog

import (
	"context"
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func setupTestApp(t *testing.T) (*fiber.App, *Service) {
	app := fiber.New()
	svc := setupService(t)
	handler := NewHandler(svc, zap.NewNop())
	handler.RegisterRoutes(app)
	return app, svc
}

func TestHandleResolve(t *testing.T) {
	app, svc := setupTestApp(t)
	require.NoError(t, svc.Upsert(context.Background(), &testItem))

	t.Run("Found", func(t *testing.T) {
		resp, err := app.Test(httptest.NewRequest("GET", "/catalog/resolve/012345678905", nil))
		require.NoError(t, err)
		assert.Equal(t, 200, resp.StatusCode)

		var body map[string]any
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
		assert.Equal(t, "SKU1", body["system_id"])
	})

	t.Run("No match is 404", func(t *testing.T) {
		resp, err := app.Test(httptest.NewRequest("GET", "/catalog/resolve/unknown-code", nil))
		require.NoError(t, err)
		assert.Equal(t, 404, resp.StatusCode)
	})
}

func TestHandleImportCSV(t *testing.T) {
	app, _ := setupTestApp(t)

	csvBody := "system_id,name,upc\nSKU9,Doohickey,111222333\n"
	req := httptest.NewRequest("POST", "/catalog/import", strings.NewReader(csvBody))
	req.Header.Set("Content-Type", "text/csv")

	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, 200, resp.StatusCode)

	var body map[string]int
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, 1, body["imported"])
}

func TestHandleUpsert(t *testing.T) {
	app, _ := setupTestApp(t)

	req := httptest.NewRequest("POST", "/catalog/", strings.NewReader(`{"system_id":"SKU5","name":"Whatsit"}`))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, 200, resp.StatusCode)

	t.Run("Missing system_id rejected", func(t *testing.T) {
		req := httptest.NewRequest("POST", "/catalog/", strings.NewReader(`{"name":"Nameless"}`))
		req.Header.Set("Content-Type", "application/json")
		resp, err := app.Test(req)
		require.NoError(t, err)
		assert.Equal(t, 400, resp.StatusCode)
	})
}

func TestLoader(t *testing.T) {
	svc := setupService(t)
	feature := &Feature{service: svc, handler: NewHandler(svc, zap.NewNop())}

	assert.Equal(t, "catalog", feature.Name())
	assert.True(t, feature.IsEnabled())

	app := fiber.New()
	err := feature.Load(app)
	assert.NoError(t, err)
}
