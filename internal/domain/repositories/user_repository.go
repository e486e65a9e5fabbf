package repositories

import (
	"context"

	"github.com/bhamfamilies/directory/internal/domain/entities"
)

// UserRepository defines the interface for user data operations. Profiles
// originate at the identity provider, so writes go through Upsert rather
// than separate create and update paths.
type UserRepository interface {
	// GetByID retrieves a user by ID
	GetByID(ctx context.Context, id string) (*entities.User, error)

	// Upsert inserts or refreshes the mirrored profile for a user
	Upsert(ctx context.Context, user *entities.User) (*entities.User, error)
}
