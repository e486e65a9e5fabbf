package providers

import (
	"context"

	"github.com/bhamfamilies/directory/internal/domain/entities"
)

// FavoritesClient is the abstract client for the remote favorites source.
// All operations require an authenticated session; implementations map a
// missing session to an unauthorized AppError so callers can prompt for
// sign-in.
type FavoritesClient interface {
	// CurrentUser returns the signed-in user, or an unauthorized error
	CurrentUser(ctx context.Context) (*entities.User, error)

	// List retrieves the user's favorites, optionally scoped to one
	// directory (empty directory means all)
	List(ctx context.Context, directory entities.Directory) ([]*entities.Favorite, error)

	// Add favorites a listing; adding an existing favorite returns the
	// existing record
	Add(ctx context.Context, directory entities.Directory, listingID string) (*entities.Favorite, error)

	// Remove unfavorites a listing; removing a non-existent favorite is a
	// no-op
	Remove(ctx context.Context, directory entities.Directory, listingID string) error
}
