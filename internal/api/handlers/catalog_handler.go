package handlers

import (
	"fmt"
	"net/http"
	"os"
	"path/filepath"

	"github.com/bhamfamilies/directory/internal/domain/entities"
)

// CatalogHandler serves the directory catalog JSON files. Clients append a
// version query parameter for cache busting, so responses carry no-cache
// headers and let the version do the work.
type CatalogHandler struct {
	dataDir string
}

// NewCatalogHandler creates a catalog handler serving files from dataDir.
func NewCatalogHandler(dataDir string) *CatalogHandler {
	return &CatalogHandler{
		dataDir: dataDir,
	}
}

// GetCatalog handles GET /api/catalog/{directory}
func (h *CatalogHandler) GetCatalog(w http.ResponseWriter, r *http.Request) {
	directory := entities.Directory(r.PathValue("directory"))
	if !directory.Valid() {
		respondWithError(w, http.StatusNotFound, "unknown directory")
		return
	}

	path := filepath.Join(h.dataDir, directory.CatalogFile()+".json")
	if _, err := os.Stat(path); err != nil {
		respondWithError(w, http.StatusNotFound,
			fmt.Sprintf("catalog for %s not available", directory))
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "no-cache")
	http.ServeFile(w, r, path)
}
