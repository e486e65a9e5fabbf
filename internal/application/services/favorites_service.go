package services

import (
	"context"
	"errors"
	"sync"

	"github.com/bhamfamilies/directory/internal/domain/entities"
	"github.com/bhamfamilies/directory/internal/domain/providers"
	apperrors "github.com/bhamfamilies/directory/pkg/errors"
)

// ErrToggleInFlight is returned when a favorite toggle arrives for a key
// whose previous toggle has not finished its round trip. The optimistic
// rollback model assumes one in-flight mutation per key; callers should
// disable the control until the first toggle settles.
var ErrToggleInFlight = errors.New("favorite toggle already in flight for this listing")

// FavoritesService mirrors the remote favorites source for fast membership
// checks. Toggles are optimistic: local state flips immediately and rolls
// back if the remote write fails, so the mirror is never left disagreeing
// with the source of truth. The mirror is per-navigation state and is
// discarded with the session that owns it.
type FavoritesService struct {
	client providers.FavoritesClient

	mu       sync.Mutex
	entries  map[string]struct{}
	inflight map[string]struct{}
	loaded   bool
}

// NewFavoritesService creates a favorites mirror backed by the given client.
func NewFavoritesService(client providers.FavoritesClient) *FavoritesService {
	return &FavoritesService{
		client:   client,
		entries:  make(map[string]struct{}),
		inflight: make(map[string]struct{}),
	}
}

// Load replaces the mirror with the remote favorites set. An unauthorized
// response leaves an empty mirror without error: an anonymous visitor
// simply has no favorites.
func (s *FavoritesService) Load(ctx context.Context, directory entities.Directory) error {
	favorites, err := s.client.List(ctx, directory)
	if err != nil {
		if apperrors.IsUnauthorized(err) {
			s.replace(nil)
			return nil
		}
		return err
	}

	s.replace(favorites)
	return nil
}

func (s *FavoritesService) replace(favorites []*entities.Favorite) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.entries = make(map[string]struct{}, len(favorites))
	for _, fav := range favorites {
		s.entries[fav.Key()] = struct{}{}
	}
	s.loaded = true
}

// IsFavorite reports whether the (directory, listing) pair is favorited.
func (s *FavoritesService) IsFavorite(directory entities.Directory, listingID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, ok := s.entries[entities.FavoriteKey(directory, listingID)]
	return ok
}

// Count returns the mirror size, scoped to one directory when given.
func (s *FavoritesService) Count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}

// Toggle flips the favorite state for a listing and returns the new state.
// The local flip happens before the remote call; a remote failure rolls it
// back and returns the error (unauthorized means the caller should prompt
// for sign-in). Adding an existing favorite or removing a missing one is a
// no-op on the remote side, so a toggle pair always returns to the starting
// state.
func (s *FavoritesService) Toggle(ctx context.Context, directory entities.Directory, listingID string) (bool, error) {
	key := entities.FavoriteKey(directory, listingID)

	s.mu.Lock()
	if _, busy := s.inflight[key]; busy {
		_, current := s.entries[key]
		s.mu.Unlock()
		return current, ErrToggleInFlight
	}
	s.inflight[key] = struct{}{}

	_, wasFavorite := s.entries[key]
	adding := !wasFavorite
	if adding {
		s.entries[key] = struct{}{}
	} else {
		delete(s.entries, key)
	}
	s.mu.Unlock()

	var err error
	if adding {
		_, err = s.client.Add(ctx, directory, listingID)
	} else {
		err = s.client.Remove(ctx, directory, listingID)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.inflight, key)

	if err != nil {
		// Roll back the optimistic flip.
		if wasFavorite {
			s.entries[key] = struct{}{}
		} else {
			delete(s.entries, key)
		}
		return wasFavorite, err
	}

	return adding, nil
}
