package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/doug-martin/goqu/v9"

	"github.com/bhamfamilies/directory/internal/domain/entities"
	"github.com/bhamfamilies/directory/internal/domain/repositories"
	"github.com/bhamfamilies/directory/internal/infrastructure/clients/postgres"
	apperrors "github.com/bhamfamilies/directory/pkg/errors"
)

// UserAdapter implements user persistence in Postgres.
type UserAdapter struct {
	client *postgres.Client
	db     *goqu.Database
}

// NewUserAdapter creates a new user adapter.
func NewUserAdapter(client *postgres.Client) repositories.UserRepository {
	return &UserAdapter{
		client: client,
		db:     goqu.New("postgres", client.DB()),
	}
}

// GetByID retrieves a user by ID.
func (a *UserAdapter) GetByID(ctx context.Context, id string) (*entities.User, error) {
	query, args, err := a.db.From("users").
		Select("id", "email", "first_name", "last_name", "profile_image_url", "created_at", "updated_at").
		Where(goqu.Ex{"id": id}).
		Limit(1).
		ToSQL()
	if err != nil {
		return nil, apperrors.NewInternalError("failed to build user lookup query", err)
	}

	var u entities.User
	var email, firstName, lastName, profileImageURL sql.NullString
	err = a.client.DB().QueryRowContext(ctx, query, args...).
		Scan(&u.ID, &email, &firstName, &lastName, &profileImageURL, &u.CreatedAt, &u.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, apperrors.NewNotFoundError(fmt.Sprintf("user %s not found", id))
	}
	if err != nil {
		return nil, apperrors.NewInternalError("failed to look up user", err)
	}

	u.Email = email.String
	u.FirstName = firstName.String
	u.LastName = lastName.String
	u.ProfileImageURL = profileImageURL.String
	return &u, nil
}

// Upsert creates the user or refreshes an existing profile. The identity
// provider hands the profile back on every login, so the row always tracks
// the latest claims.
func (a *UserAdapter) Upsert(ctx context.Context, user *entities.User) (*entities.User, error) {
	if user == nil || user.ID == "" {
		return nil, apperrors.NewValidationError("user id is required")
	}

	now := time.Now().UTC()
	record := goqu.Record{
		"id":                user.ID,
		"email":             sql.NullString{String: user.Email, Valid: user.Email != ""},
		"first_name":        sql.NullString{String: user.FirstName, Valid: user.FirstName != ""},
		"last_name":         sql.NullString{String: user.LastName, Valid: user.LastName != ""},
		"profile_image_url": sql.NullString{String: user.ProfileImageURL, Valid: user.ProfileImageURL != ""},
		"created_at":        now,
		"updated_at":        now,
	}

	query, args, err := a.db.Insert("users").
		Rows(record).
		OnConflict(goqu.DoUpdate("id", goqu.Record{
			"email":             record["email"],
			"first_name":        record["first_name"],
			"last_name":         record["last_name"],
			"profile_image_url": record["profile_image_url"],
			"updated_at":        now,
		})).
		ToSQL()
	if err != nil {
		return nil, apperrors.NewInternalError("failed to build user upsert query", err)
	}

	if _, err := a.client.DB().ExecContext(ctx, query, args...); err != nil {
		return nil, apperrors.NewInternalError("failed to upsert user", err)
	}

	return a.GetByID(ctx, user.ID)
}
