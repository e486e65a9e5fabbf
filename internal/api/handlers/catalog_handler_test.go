package handlers_test

import (
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bhamfamilies/directory/internal/api/handlers"
)

func TestGetCatalog_ServesChildcareFromCentersFile(t *testing.T) {
	dataDir := t.TempDir()
	payload := `[{"id": "sunny-days", "name": "Sunny Days"}]`
	require.NoError(t, os.WriteFile(filepath.Join(dataDir, "centers.json"), []byte(payload), 0o644))

	handler := handlers.NewCatalogHandler(dataDir)

	req := httptest.NewRequest(http.MethodGet, "/api/catalog/childcare", nil)
	req.SetPathValue("directory", "childcare")
	rr := httptest.NewRecorder()
	handler.GetCatalog(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "no-cache", rr.Header().Get("Cache-Control"))
	assert.JSONEq(t, payload, rr.Body.String())
}

func TestGetCatalog_UnknownDirectoryIs404(t *testing.T) {
	handler := handlers.NewCatalogHandler(t.TempDir())

	req := httptest.NewRequest(http.MethodGet, "/api/catalog/plumbers", nil)
	req.SetPathValue("directory", "plumbers")
	rr := httptest.NewRecorder()
	handler.GetCatalog(rr, req)

	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestGetCatalog_MissingFileIs404(t *testing.T) {
	handler := handlers.NewCatalogHandler(t.TempDir())

	req := httptest.NewRequest(http.MethodGet, "/api/catalog/dentists", nil)
	req.SetPathValue("directory", "dentists")
	rr := httptest.NewRecorder()
	handler.GetCatalog(rr, req)

	assert.Equal(t, http.StatusNotFound, rr.Code)
}
