package services_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bhamfamilies/directory/internal/application/services"
	"github.com/bhamfamilies/directory/internal/domain/entities"
	queryservices "github.com/bhamfamilies/directory/internal/query/services"
	apperrors "github.com/bhamfamilies/directory/pkg/errors"
)

func boolPtr(b bool) *bool { return &b }

type fakeCatalog struct {
	mu       sync.Mutex
	listings map[entities.Directory][]entities.Listing
	err      error
	gate     chan struct{}
	calls    int
}

func (c *fakeCatalog) Fetch(ctx context.Context, directory entities.Directory) ([]entities.Listing, error) {
	c.mu.Lock()
	c.calls++
	gate := c.gate
	c.gate = nil
	err := c.err
	listings := c.listings[directory]
	c.mu.Unlock()

	if gate != nil {
		select {
		case <-gate:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if err != nil {
		return nil, err
	}
	return listings, nil
}

func childcareListings() []entities.Listing {
	return []entities.Listing{
		{
			ID:           "sunny-days",
			Directory:    entities.DirectoryChildcare,
			DisplayName:  "Sunny Days Learning Center",
			City:         "Homewood",
			Neighborhood: "Edgewood",
			AgesServed:   []string{"infant", "toddler"},
			Programs:     []string{"full-time"},
			Hours:        &entities.Hours{Open: "06:30", Close: "18:00"},
			OpeningsNow:  boolPtr(true),
			QRIS:         "4",
		},
		{
			ID:          "abc-kids",
			Directory:   entities.DirectoryChildcare,
			DisplayName: "ABC Kids Academy",
			City:        "Vestavia Hills",
			AgesServed:  []string{"preschool"},
			Programs:    []string{"part-time"},
			Hours:       &entities.Hours{Open: "07:00", Close: "17:30"},
			Waitlist:    true,
		},
	}
}

func newSession(t *testing.T, catalog *fakeCatalog) (*services.DirectorySessionService, *fakeFavoritesClient) {
	t.Helper()
	client := newFakeFavoritesClient()
	favorites := services.NewFavoritesService(client)
	session := services.NewDirectorySessionService(
		entities.DirectoryChildcare, catalog, favorites, zerolog.Nop())
	return session, client
}

func TestSession_LoadAndResults(t *testing.T) {
	catalog := &fakeCatalog{listings: map[entities.Directory][]entities.Listing{
		entities.DirectoryChildcare: childcareListings(),
	}}
	session, _ := newSession(t, catalog)

	require.NoError(t, session.Load(context.Background()))

	results := session.Results()
	require.Len(t, results, 2)
	// Default sort is case-insensitive name order.
	assert.Equal(t, "abc-kids", results[0].ID)
	assert.Equal(t, "sunny-days", results[1].ID)
}

func TestSession_LoadFailureSurfacesOnViewModel(t *testing.T) {
	catalog := &fakeCatalog{err: apperrors.NewExternalError("catalog fetch failed", nil)}
	session, _ := newSession(t, catalog)

	assert.Error(t, session.Load(context.Background()))

	vm := session.Render()
	assert.Empty(t, vm.Cards)
	assert.Zero(t, vm.ResultsCount)
	assert.Contains(t, vm.LoadError, "catalog fetch failed")
}

func TestSession_NewerLoadSupersedesOlder(t *testing.T) {
	gate := make(chan struct{})
	catalog := &fakeCatalog{
		gate: gate,
		listings: map[entities.Directory][]entities.Listing{
			entities.DirectoryChildcare: childcareListings(),
		},
	}
	session, _ := newSession(t, catalog)

	firstDone := make(chan error, 1)
	go func() {
		firstDone <- session.Load(context.Background())
	}()

	// Wait until the first fetch is parked behind the gate, then issue a
	// second Load that should cancel and supersede it.
	assert.Eventually(t, func() bool {
		catalog.mu.Lock()
		defer catalog.mu.Unlock()
		return catalog.calls == 1
	}, time.Second, 5*time.Millisecond)

	require.NoError(t, session.Load(context.Background()))
	require.NoError(t, <-firstDone)
	close(gate)

	assert.Len(t, session.Results(), 2)
	assert.Empty(t, session.Render().LoadError)
}

func TestSession_ApplyFragmentFiltersResults(t *testing.T) {
	catalog := &fakeCatalog{listings: map[entities.Directory][]entities.Listing{
		entities.DirectoryChildcare: childcareListings(),
	}}
	session, _ := newSession(t, catalog)
	require.NoError(t, session.Load(context.Background()))

	session.ApplyFragment("#location=Homewood")

	results := session.Results()
	require.Len(t, results, 1)
	assert.Equal(t, "sunny-days", results[0].ID)
	assert.Equal(t, "location=Homewood", session.Fragment())
}

func TestSession_FragmentRoundTrip(t *testing.T) {
	catalog := &fakeCatalog{}
	session, _ := newSession(t, catalog)

	session.SetLocations([]string{"Homewood", "Vestavia Hills"})
	session.SetOpeningsNow(boolPtr(true))
	session.SetSortKey(queryservices.SortByTuitionLow)

	fragment := session.Fragment()
	state, sortKey := queryservices.DecodeFragment(fragment)
	assert.Equal(t, session.Filters(), state)
	assert.Equal(t, queryservices.SortByTuitionLow, sortKey)
}

func TestSession_SearchIsDebounced(t *testing.T) {
	catalog := &fakeCatalog{listings: map[entities.Directory][]entities.Listing{
		entities.DirectoryChildcare: childcareListings(),
	}}
	session, _ := newSession(t, catalog)
	require.NoError(t, session.Load(context.Background()))

	session.SetSearch("sun")
	session.SetSearch("sunny")

	// Nothing applied until the quiet period ends or the search is flushed.
	assert.Empty(t, session.Filters().Search)

	session.FlushSearch()
	assert.Equal(t, "sunny", session.Filters().Search)

	results := session.Results()
	require.Len(t, results, 1)
	assert.Equal(t, "sunny-days", results[0].ID)
}

func TestSession_ClearFiltersResetsEverything(t *testing.T) {
	catalog := &fakeCatalog{}
	session, _ := newSession(t, catalog)

	session.SetSearch("pending")
	session.SetLocations([]string{"Homewood"})
	session.SetAcceptsSubsidy(boolPtr(true))
	session.SetSortKey(queryservices.SortByHoursEarly)

	session.ClearFilters()

	clearedFilters := session.Filters()
	assert.True(t, clearedFilters.IsZero())
	assert.Equal(t, queryservices.DefaultSortKey, session.SortKey())
	assert.Equal(t, "", session.Fragment())

	// The pending debounced search was dropped, not deferred.
	session.FlushSearch()
	assert.Empty(t, session.Filters().Search)
}

func TestSession_RenderCarriesDirectoryCopy(t *testing.T) {
	catalog := &fakeCatalog{listings: map[entities.Directory][]entities.Listing{
		entities.DirectoryChildcare: childcareListings(),
	}}
	session, _ := newSession(t, catalog)
	require.NoError(t, session.Load(context.Background()))

	vm := session.Render()
	assert.Equal(t, "Birmingham Childcare Directory", vm.Title)
	assert.Equal(t, "centers", vm.ResultsLabel)
	assert.Equal(t, "2 centers", vm.ResultsSummary())
	assert.Equal(t, 2, vm.ResultsCount)
	assert.Zero(t, vm.ActiveFilterCount)
	require.Len(t, vm.Cards, 2)
	assert.Equal(t, "ABC Kids Academy", vm.Cards[0].Name)
	assert.Contains(t, vm.Cards[0].Badges, "Waitlist")
	assert.Contains(t, vm.Cards[1].Badges, "Openings Now")
	assert.Contains(t, vm.Cards[1].Badges, "QRIS 4")
}

func TestSession_ToggleFavoriteReflectsInRender(t *testing.T) {
	catalog := &fakeCatalog{listings: map[entities.Directory][]entities.Listing{
		entities.DirectoryChildcare: childcareListings(),
	}}
	session, _ := newSession(t, catalog)
	require.NoError(t, session.Load(context.Background()))

	on, err := session.ToggleFavorite(context.Background(), "sunny-days")
	require.NoError(t, err)
	assert.True(t, on)

	vm := session.Render()
	require.Len(t, vm.Cards, 2)
	assert.False(t, vm.Cards[0].Favorite)
	assert.True(t, vm.Cards[1].Favorite)
}

func TestSession_SwitchDirectoryClearsFilters(t *testing.T) {
	catalog := &fakeCatalog{listings: map[entities.Directory][]entities.Listing{
		entities.DirectoryChildcare: childcareListings(),
		entities.DirectoryDentists: {
			{
				ID:           "bright-smiles",
				Directory:    entities.DirectoryDentists,
				PracticeName: "Bright Smiles Pediatric Dentistry",
				City:         "Hoover",
				Specialty:    "Pediatric Dentistry",
			},
		},
	}}
	session, _ := newSession(t, catalog)
	require.NoError(t, session.Load(context.Background()))
	session.SetLocations([]string{"Homewood"})

	require.NoError(t, session.SwitchDirectory(context.Background(), entities.DirectoryDentists))

	assert.Equal(t, entities.DirectoryDentists, session.Directory())
	switchedFilters := session.Filters()
	assert.True(t, switchedFilters.IsZero())

	results := session.Results()
	require.Len(t, results, 1)
	assert.Equal(t, "bright-smiles", results[0].ID)

	vm := session.Render()
	assert.Equal(t, "Birmingham Pediatric Dentist Directory", vm.Title)
	assert.Contains(t, vm.Cards[0].Badges, "Pediatric Dentistry")
}
