package providers

import (
	"context"

	"github.com/bhamfamilies/directory/internal/domain/entities"
)

// CatalogProvider defines the interface for fetching a directory's catalog.
// The catalog is an external, versioned JSON resource; implementations
// normalize its heterogeneous records into Listings.
type CatalogProvider interface {
	// Fetch retrieves and normalizes the catalog for one directory
	Fetch(ctx context.Context, directory entities.Directory) ([]entities.Listing, error)
}
