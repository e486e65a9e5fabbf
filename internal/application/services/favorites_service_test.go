package services_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bhamfamilies/directory/internal/application/services"
	"github.com/bhamfamilies/directory/internal/domain/entities"
	apperrors "github.com/bhamfamilies/directory/pkg/errors"
)

type fakeFavoritesClient struct {
	mu       sync.Mutex
	remote   map[string]struct{}
	addErr   error
	remErr   error
	listErr  error
	addGate  chan struct{}
	addCalls int
	remCalls int
}

func newFakeFavoritesClient() *fakeFavoritesClient {
	return &fakeFavoritesClient{remote: make(map[string]struct{})}
}

func (c *fakeFavoritesClient) CurrentUser(ctx context.Context) (*entities.User, error) {
	return &entities.User{ID: "user-1"}, nil
}

func (c *fakeFavoritesClient) List(ctx context.Context, directory entities.Directory) ([]*entities.Favorite, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.listErr != nil {
		return nil, c.listErr
	}
	var out []*entities.Favorite
	for key := range c.remote {
		fav := favoriteFromKey(key)
		if directory != "" && fav.Directory != directory {
			continue
		}
		out = append(out, fav)
	}
	return out, nil
}

func (c *fakeFavoritesClient) Add(ctx context.Context, directory entities.Directory, listingID string) (*entities.Favorite, error) {
	if c.addGate != nil {
		<-c.addGate
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.addCalls++
	if c.addErr != nil {
		return nil, c.addErr
	}
	key := entities.FavoriteKey(directory, listingID)
	c.remote[key] = struct{}{}
	return &entities.Favorite{Directory: directory, ListingID: listingID}, nil
}

func (c *fakeFavoritesClient) Remove(ctx context.Context, directory entities.Directory, listingID string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.remCalls++
	if c.remErr != nil {
		return c.remErr
	}
	delete(c.remote, entities.FavoriteKey(directory, listingID))
	return nil
}

func favoriteFromKey(key string) *entities.Favorite {
	for i := 0; i < len(key); i++ {
		if key[i] == ':' {
			return &entities.Favorite{
				Directory: entities.Directory(key[:i]),
				ListingID: key[i+1:],
			}
		}
	}
	return &entities.Favorite{ListingID: key}
}

func TestFavoritesService_LoadPopulatesMirror(t *testing.T) {
	client := newFakeFavoritesClient()
	client.remote[entities.FavoriteKey(entities.DirectoryChildcare, "sunny-days")] = struct{}{}
	client.remote[entities.FavoriteKey(entities.DirectoryDentists, "dr-smile")] = struct{}{}

	svc := services.NewFavoritesService(client)
	require.NoError(t, svc.Load(context.Background(), ""))

	assert.True(t, svc.IsFavorite(entities.DirectoryChildcare, "sunny-days"))
	assert.True(t, svc.IsFavorite(entities.DirectoryDentists, "dr-smile"))
	assert.False(t, svc.IsFavorite(entities.DirectoryChildcare, "abc-kids"))
	assert.Equal(t, 2, svc.Count())
}

func TestFavoritesService_LoadUnauthorizedLeavesEmptyMirror(t *testing.T) {
	client := newFakeFavoritesClient()
	client.listErr = apperrors.NewUnauthorizedError("sign in required")

	svc := services.NewFavoritesService(client)
	require.NoError(t, svc.Load(context.Background(), ""))
	assert.Equal(t, 0, svc.Count())
}

func TestFavoritesService_LoadPropagatesOtherErrors(t *testing.T) {
	client := newFakeFavoritesClient()
	client.listErr = apperrors.NewExternalError("favorites service unavailable", nil)

	svc := services.NewFavoritesService(client)
	assert.Error(t, svc.Load(context.Background(), ""))
}

func TestFavoritesService_ToggleAddsThenRemoves(t *testing.T) {
	client := newFakeFavoritesClient()
	svc := services.NewFavoritesService(client)

	on, err := svc.Toggle(context.Background(), entities.DirectoryChildcare, "sunny-days")
	require.NoError(t, err)
	assert.True(t, on)
	assert.True(t, svc.IsFavorite(entities.DirectoryChildcare, "sunny-days"))

	off, err := svc.Toggle(context.Background(), entities.DirectoryChildcare, "sunny-days")
	require.NoError(t, err)
	assert.False(t, off)
	assert.False(t, svc.IsFavorite(entities.DirectoryChildcare, "sunny-days"))

	assert.Equal(t, 1, client.addCalls)
	assert.Equal(t, 1, client.remCalls)
}

func TestFavoritesService_ToggleRollsBackOnAddFailure(t *testing.T) {
	client := newFakeFavoritesClient()
	client.addErr = apperrors.NewExternalError("write failed", nil)

	svc := services.NewFavoritesService(client)
	on, err := svc.Toggle(context.Background(), entities.DirectoryChildcare, "sunny-days")
	assert.Error(t, err)
	assert.False(t, on)
	assert.False(t, svc.IsFavorite(entities.DirectoryChildcare, "sunny-days"))
}

func TestFavoritesService_ToggleRollsBackOnRemoveFailure(t *testing.T) {
	client := newFakeFavoritesClient()
	svc := services.NewFavoritesService(client)

	_, err := svc.Toggle(context.Background(), entities.DirectoryChildcare, "sunny-days")
	require.NoError(t, err)

	client.remErr = apperrors.NewExternalError("write failed", nil)
	on, err := svc.Toggle(context.Background(), entities.DirectoryChildcare, "sunny-days")
	assert.Error(t, err)
	assert.True(t, on)
	assert.True(t, svc.IsFavorite(entities.DirectoryChildcare, "sunny-days"))
}

func TestFavoritesService_ToggleUnauthorizedRollsBack(t *testing.T) {
	client := newFakeFavoritesClient()
	client.addErr = apperrors.NewUnauthorizedError("sign in required")

	svc := services.NewFavoritesService(client)
	on, err := svc.Toggle(context.Background(), entities.DirectoryChildcare, "sunny-days")
	require.Error(t, err)
	assert.True(t, apperrors.IsUnauthorized(err))
	assert.False(t, on)
	assert.False(t, svc.IsFavorite(entities.DirectoryChildcare, "sunny-days"))
}

func TestFavoritesService_ConcurrentToggleSameKeyRefused(t *testing.T) {
	client := newFakeFavoritesClient()
	client.addGate = make(chan struct{})

	svc := services.NewFavoritesService(client)

	done := make(chan struct{})
	go func() {
		defer close(done)
		_, err := svc.Toggle(context.Background(), entities.DirectoryChildcare, "sunny-days")
		assert.NoError(t, err)
	}()

	// The first toggle is parked inside the client; a second toggle on the
	// same key must be refused while reporting the optimistic state.
	assert.Eventually(t, func() bool {
		return svc.IsFavorite(entities.DirectoryChildcare, "sunny-days")
	}, 2*time.Second, 5*time.Millisecond)

	on, err := svc.Toggle(context.Background(), entities.DirectoryChildcare, "sunny-days")
	assert.ErrorIs(t, err, services.ErrToggleInFlight)
	assert.True(t, on)

	close(client.addGate)
	<-done

	// After the first toggle settles, the key is free again.
	off, err := svc.Toggle(context.Background(), entities.DirectoryChildcare, "sunny-days")
	require.NoError(t, err)
	assert.False(t, off)
}

func TestFavoritesService_ToggleDifferentKeysRunIndependently(t *testing.T) {
	client := newFakeFavoritesClient()
	svc := services.NewFavoritesService(client)

	_, err := svc.Toggle(context.Background(), entities.DirectoryChildcare, "sunny-days")
	require.NoError(t, err)
	_, err = svc.Toggle(context.Background(), entities.DirectoryDentists, "sunny-days")
	require.NoError(t, err)

	assert.True(t, svc.IsFavorite(entities.DirectoryChildcare, "sunny-days"))
	assert.True(t, svc.IsFavorite(entities.DirectoryDentists, "sunny-days"))
	assert.Equal(t, 2, svc.Count())
}
