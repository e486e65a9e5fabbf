package services

import (
	"context"
	"sync"

	"github.com/rs/zerolog"

	"github.com/bhamfamilies/directory/internal/domain/entities"
	"github.com/bhamfamilies/directory/internal/domain/providers"
	queryservices "github.com/bhamfamilies/directory/internal/query/services"
)

// DirectorySessionService owns the state of one directory view: the loaded
// catalog, the active filters, the sort order and the favorites mirror. All
// methods are safe for concurrent use. Filtering and sorting never touch
// I/O; only Load and the favorites toggle go over the wire.
type DirectorySessionService struct {
	catalog   providers.CatalogProvider
	favorites *FavoritesService
	query     *queryservices.ListingQueryService
	debouncer *Debouncer
	logger    zerolog.Logger

	mu         sync.Mutex
	directory  entities.Directory
	listings   []entities.Listing
	filters    queryservices.FilterState
	sortKey    queryservices.SortKey
	loadErr    error
	generation uint64
	cancelLoad context.CancelFunc
	onChange   func()
}

// NewDirectorySessionService builds a session for the given directory.
func NewDirectorySessionService(
	directory entities.Directory,
	catalog providers.CatalogProvider,
	favorites *FavoritesService,
	logger zerolog.Logger,
) *DirectorySessionService {
	return &DirectorySessionService{
		catalog:   catalog,
		favorites: favorites,
		query:     queryservices.NewListingQueryService(),
		debouncer: NewDebouncer(DefaultSearchDebounce),
		logger:    logger.With().Str("directory", string(directory)).Logger(),
		directory: directory,
		sortKey:   queryservices.DefaultSortKey,
	}
}

// Directory returns the directory this session serves.
func (s *DirectorySessionService) Directory() entities.Directory {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.directory
}

// SetOnChange registers a callback invoked after any state mutation that
// changes the visible results, including the debounced search commit.
func (s *DirectorySessionService) SetOnChange(fn func()) {
	s.mu.Lock()
	s.onChange = fn
	s.mu.Unlock()
}

func (s *DirectorySessionService) notify() {
	s.mu.Lock()
	fn := s.onChange
	s.mu.Unlock()
	if fn != nil {
		fn()
	}
}

// Load fetches the catalog for the session's directory and refreshes the
// favorites mirror. A Load issued while a previous one is still in flight
// cancels it; the stale response is discarded even if it arrives after
// cancellation. A catalog failure leaves an empty result set with the
// error recorded on the view model, not a panic or partial state.
func (s *DirectorySessionService) Load(ctx context.Context) error {
	s.mu.Lock()
	if s.cancelLoad != nil {
		s.cancelLoad()
	}
	s.generation++
	gen := s.generation
	loadCtx, cancel := context.WithCancel(ctx)
	s.cancelLoad = cancel
	directory := s.directory
	s.mu.Unlock()

	listings, err := s.catalog.Fetch(loadCtx, directory)

	s.mu.Lock()
	if gen != s.generation {
		// A newer Load superseded this one.
		s.mu.Unlock()
		cancel()
		return nil
	}
	s.cancelLoad = nil
	if err != nil {
		s.listings = nil
		s.loadErr = err
		s.mu.Unlock()
		cancel()
		s.logger.Error().Err(err).Msg("catalog load failed")
		s.notify()
		return err
	}
	s.listings = listings
	s.loadErr = nil
	s.mu.Unlock()
	cancel()

	if favErr := s.favorites.Load(ctx, directory); favErr != nil {
		// Favorites are decoration on the results; a failed refresh must
		// not take down the catalog view.
		s.logger.Warn().Err(favErr).Msg("favorites refresh failed")
	}

	s.logger.Debug().Int("listings", len(listings)).Msg("catalog loaded")
	s.notify()
	return nil
}

// SwitchDirectory points the session at another directory and clears
// filter state, then reloads.
func (s *DirectorySessionService) SwitchDirectory(ctx context.Context, directory entities.Directory) error {
	s.mu.Lock()
	s.directory = directory
	s.filters = queryservices.FilterState{}
	s.sortKey = queryservices.DefaultSortKey
	s.logger = s.logger.With().Str("directory", string(directory)).Logger()
	s.mu.Unlock()
	return s.Load(ctx)
}

// ApplyFragment replaces the whole filter and sort state from a URL
// fragment. Unknown keys and malformed values are ignored.
func (s *DirectorySessionService) ApplyFragment(fragment string) {
	state, sortKey := queryservices.DecodeFragment(fragment)
	s.mu.Lock()
	s.filters = state
	s.sortKey = sortKey
	s.mu.Unlock()
	s.notify()
}

// Fragment encodes the current filter and sort state for the address bar.
func (s *DirectorySessionService) Fragment() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return queryservices.EncodeFragment(s.filters, s.sortKey)
}

// SetSearch updates the search term through the debouncer, so a burst of
// keystrokes commits once after the typing pause.
func (s *DirectorySessionService) SetSearch(term string) {
	s.debouncer.Trigger(func() {
		s.mu.Lock()
		s.filters.Search = term
		s.mu.Unlock()
		s.notify()
	})
}

// FlushSearch commits a pending debounced search immediately.
func (s *DirectorySessionService) FlushSearch() {
	s.debouncer.Flush()
}

// SetLocations replaces the location facet selection.
func (s *DirectorySessionService) SetLocations(values []string) {
	s.setState(func(f *queryservices.FilterState) { f.Location = values })
}

// SetAgeRanges replaces the age-range facet selection.
func (s *DirectorySessionService) SetAgeRanges(values []string) {
	s.setState(func(f *queryservices.FilterState) { f.AgeRange = values })
}

// SetProgramTypes replaces the program-type facet selection.
func (s *DirectorySessionService) SetProgramTypes(values []string) {
	s.setState(func(f *queryservices.FilterState) { f.ProgramType = values })
}

// SetAccreditations replaces the accreditation facet selection.
func (s *DirectorySessionService) SetAccreditations(values []string) {
	s.setState(func(f *queryservices.FilterState) { f.Accreditation = values })
}

// SetOpenTime sets the opens-by constraint ("" clears it).
func (s *DirectorySessionService) SetOpenTime(v string) {
	s.setState(func(f *queryservices.FilterState) { f.OpenTime = v })
}

// SetCloseTime sets the closes-after constraint ("" clears it).
func (s *DirectorySessionService) SetCloseTime(v string) {
	s.setState(func(f *queryservices.FilterState) { f.CloseTime = v })
}

// SetOpeningsNow sets the openings tri-state (nil clears it).
func (s *DirectorySessionService) SetOpeningsNow(v *bool) {
	s.setState(func(f *queryservices.FilterState) { f.OpeningsNow = v })
}

// SetAcceptsSubsidy sets the subsidy tri-state (nil clears it).
func (s *DirectorySessionService) SetAcceptsSubsidy(v *bool) {
	s.setState(func(f *queryservices.FilterState) { f.AcceptsSubsidy = v })
}

// SetFirstClassPreK sets the pre-K tri-state (nil clears it).
func (s *DirectorySessionService) SetFirstClassPreK(v *bool) {
	s.setState(func(f *queryservices.FilterState) { f.FirstClassPreK = v })
}

// SetSortKey changes the active sort order. Unknown keys fall back to the
// default name sort.
func (s *DirectorySessionService) SetSortKey(key queryservices.SortKey) {
	s.mu.Lock()
	s.sortKey = queryservices.ParseSortKey(string(key))
	s.mu.Unlock()
	s.notify()
}

// ClearFilters resets every filter and the sort order, and drops any
// pending debounced search.
func (s *DirectorySessionService) ClearFilters() {
	s.debouncer.Cancel()
	s.mu.Lock()
	s.filters = queryservices.FilterState{}
	s.sortKey = queryservices.DefaultSortKey
	s.mu.Unlock()
	s.notify()
}

func (s *DirectorySessionService) setState(mutate func(*queryservices.FilterState)) {
	s.mu.Lock()
	mutate(&s.filters)
	s.mu.Unlock()
	s.notify()
}

// Filters returns a copy of the current filter state.
func (s *DirectorySessionService) Filters() queryservices.FilterState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.filters.Clone()
}

// SortKey returns the active sort order.
func (s *DirectorySessionService) SortKey() queryservices.SortKey {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sortKey
}

// Results applies the current filters and sort to the loaded catalog and
// returns the visible listings in order.
func (s *DirectorySessionService) Results() []entities.Listing {
	s.mu.Lock()
	listings := s.listings
	state := s.filters.Clone()
	sortKey := s.sortKey
	directory := s.directory
	s.mu.Unlock()

	filtered := s.query.Filter(listings, state, directory)
	s.query.Sort(filtered, sortKey)
	return filtered
}

// ToggleFavorite flips the favorite state of one visible listing.
func (s *DirectorySessionService) ToggleFavorite(ctx context.Context, listingID string) (bool, error) {
	s.mu.Lock()
	directory := s.directory
	s.mu.Unlock()
	on, err := s.favorites.Toggle(ctx, directory, listingID)
	if err == nil {
		s.notify()
	}
	return on, err
}

// Render produces the full view description for the current state. It is
// pure with respect to the session: no I/O, safe to call on every change.
func (s *DirectorySessionService) Render() ViewModel {
	results := s.Results()

	s.mu.Lock()
	directory := s.directory
	activeCount := s.filters.ActiveCount()
	fragment := queryservices.EncodeFragment(s.filters, s.sortKey)
	loadErr := s.loadErr
	s.mu.Unlock()

	pc := CopyFor(directory)
	vm := ViewModel{
		Directory:         directory,
		Title:             pc.Title,
		Subtitle:          pc.Subtitle,
		SearchPlaceholder: pc.SearchPlaceholder,
		FiltersTitle:      pc.FiltersTitle,
		ResultsLabel:      pc.ResultsLabel,
		ResultsCount:      len(results),
		ActiveFilterCount: activeCount,
		Fragment:          fragment,
		Cards:             make([]ListingCard, 0, len(results)),
	}
	if loadErr != nil {
		vm.LoadError = loadErr.Error()
	}
	for _, l := range results {
		vm.Cards = append(vm.Cards, cardFor(l, s.favorites.IsFavorite(directory, l.ID)))
	}
	return vm
}
