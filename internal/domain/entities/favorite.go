package entities

import (
	"time"
)

// Favorite marks one listing as saved by one user. The set is keyed by the
// (user, directory, listingId) composite: identifiers are only unique within
// a directory, so a favorite never crosses directory types even when ids
// collide.
type Favorite struct {
	ID        string    `json:"id" db:"id"`
	UserID    string    `json:"userId" db:"user_id"`
	Directory Directory `json:"directory" db:"directory"`
	ListingID string    `json:"listingId" db:"listing_id"`
	CreatedAt time.Time `json:"createdAt" db:"created_at"`
}

// Key returns the directory-scoped identity used by the client-side mirror.
func (f *Favorite) Key() string {
	return FavoriteKey(f.Directory, f.ListingID)
}

// FavoriteKey builds the composite mirror key for a (directory, listing) pair.
func FavoriteKey(directory Directory, listingID string) string {
	return string(directory) + ":" + listingID
}
