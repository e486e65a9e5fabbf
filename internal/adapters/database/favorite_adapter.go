package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/doug-martin/goqu/v9"
	_ "github.com/doug-martin/goqu/v9/dialect/postgres"
	"github.com/google/uuid"

	"github.com/bhamfamilies/directory/internal/domain/entities"
	"github.com/bhamfamilies/directory/internal/domain/repositories"
	"github.com/bhamfamilies/directory/internal/infrastructure/clients/postgres"
	apperrors "github.com/bhamfamilies/directory/pkg/errors"
)

// FavoriteAdapter implements favorite persistence in Postgres.
type FavoriteAdapter struct {
	client *postgres.Client
	db     *goqu.Database
}

// NewFavoriteAdapter creates a new favorite adapter.
func NewFavoriteAdapter(client *postgres.Client) repositories.FavoriteRepository {
	return &FavoriteAdapter{
		client: client,
		db:     goqu.New("postgres", client.DB()),
	}
}

// Add stores a favorite. When the (user, directory, listing) row already
// exists the stored record is returned unchanged, so repeated adds are safe.
func (a *FavoriteAdapter) Add(ctx context.Context, favorite *entities.Favorite) (*entities.Favorite, error) {
	if favorite == nil {
		return nil, apperrors.NewInternalError("favorite is nil", fmt.Errorf("favorite is nil"))
	}

	existing, err := a.get(ctx, favorite.UserID, favorite.Directory, favorite.ListingID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return existing, nil
	}

	stored := &entities.Favorite{
		ID:        uuid.NewString(),
		UserID:    favorite.UserID,
		Directory: favorite.Directory,
		ListingID: favorite.ListingID,
		CreatedAt: time.Now().UTC(),
	}

	record := goqu.Record{
		"id":         stored.ID,
		"user_id":    stored.UserID,
		"directory":  string(stored.Directory),
		"listing_id": stored.ListingID,
		"created_at": stored.CreatedAt,
	}

	query, args, err := a.db.Insert("favorites").Rows(record).ToSQL()
	if err != nil {
		return nil, apperrors.NewInternalError("failed to build favorite insert query", err)
	}

	if _, err := a.client.DB().ExecContext(ctx, query, args...); err != nil {
		// A concurrent add can beat us to the unique index; the stored row
		// is the answer either way.
		if winner, getErr := a.get(ctx, favorite.UserID, favorite.Directory, favorite.ListingID); getErr == nil && winner != nil {
			return winner, nil
		}
		return nil, apperrors.NewInternalError("failed to create favorite", err)
	}

	return stored, nil
}

// Remove deletes a favorite. A missing row is not an error.
func (a *FavoriteAdapter) Remove(ctx context.Context, userID string, directory entities.Directory, listingID string) error {
	query, args, err := a.db.Delete("favorites").Where(
		goqu.Ex{
			"user_id":    userID,
			"directory":  string(directory),
			"listing_id": listingID,
		},
	).ToSQL()
	if err != nil {
		return apperrors.NewInternalError("failed to build favorite delete query", err)
	}

	if _, err := a.client.DB().ExecContext(ctx, query, args...); err != nil {
		return apperrors.NewInternalError("failed to delete favorite", err)
	}
	return nil
}

// ListByUser retrieves a user's favorites, newest first. An empty directory
// returns favorites across every directory.
func (a *FavoriteAdapter) ListByUser(ctx context.Context, userID string, directory entities.Directory) ([]*entities.Favorite, error) {
	where := goqu.Ex{"user_id": userID}
	if directory != "" {
		where["directory"] = string(directory)
	}

	query, args, err := a.db.From("favorites").
		Select("id", "user_id", "directory", "listing_id", "created_at").
		Where(where).
		Order(goqu.C("created_at").Desc()).
		ToSQL()
	if err != nil {
		return nil, apperrors.NewInternalError("failed to build favorites list query", err)
	}

	rows, err := a.client.DB().QueryContext(ctx, query, args...)
	if err != nil {
		return nil, apperrors.NewInternalError("failed to list favorites", err)
	}
	defer rows.Close()

	var favorites []*entities.Favorite
	for rows.Next() {
		var f entities.Favorite
		var dir string
		if err := rows.Scan(&f.ID, &f.UserID, &dir, &f.ListingID, &f.CreatedAt); err != nil {
			return nil, apperrors.NewInternalError("failed to scan favorite row", err)
		}
		f.Directory = entities.Directory(dir)
		favorites = append(favorites, &f)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewInternalError("failed to iterate favorite rows", err)
	}
	return favorites, nil
}

// IsFavorite reports whether the user has favorited the listing.
func (a *FavoriteAdapter) IsFavorite(ctx context.Context, userID string, directory entities.Directory, listingID string) (bool, error) {
	fav, err := a.get(ctx, userID, directory, listingID)
	if err != nil {
		return false, err
	}
	return fav != nil, nil
}

func (a *FavoriteAdapter) get(ctx context.Context, userID string, directory entities.Directory, listingID string) (*entities.Favorite, error) {
	query, args, err := a.db.From("favorites").
		Select("id", "user_id", "directory", "listing_id", "created_at").
		Where(goqu.Ex{
			"user_id":    userID,
			"directory":  string(directory),
			"listing_id": listingID,
		}).
		Limit(1).
		ToSQL()
	if err != nil {
		return nil, apperrors.NewInternalError("failed to build favorite lookup query", err)
	}

	var f entities.Favorite
	var dir string
	err = a.client.DB().QueryRowContext(ctx, query, args...).
		Scan(&f.ID, &f.UserID, &dir, &f.ListingID, &f.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, apperrors.NewInternalError("failed to look up favorite", err)
	}
	f.Directory = entities.Directory(dir)
	return &f, nil
}
