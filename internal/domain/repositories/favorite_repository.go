package repositories

import (
	"context"

	"github.com/bhamfamilies/directory/internal/domain/entities"
)

// FavoriteRepository defines the interface for favorite persistence
type FavoriteRepository interface {
	// Add stores a favorite for a user. Adding an existing
	// (user, directory, listing) favorite returns the existing record
	// rather than an error or a duplicate.
	Add(ctx context.Context, favorite *entities.Favorite) (*entities.Favorite, error)

	// Remove deletes a favorite; removing one that does not exist is a no-op
	Remove(ctx context.Context, userID string, directory entities.Directory, listingID string) error

	// ListByUser retrieves a user's favorites, optionally scoped to one
	// directory (empty directory means all)
	ListByUser(ctx context.Context, userID string, directory entities.Directory) ([]*entities.Favorite, error)

	// IsFavorite reports whether the user has favorited the listing
	IsFavorite(ctx context.Context, userID string, directory entities.Directory, listingID string) (bool, error)
}
