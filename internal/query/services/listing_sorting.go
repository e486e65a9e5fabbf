package services

import (
	"slices"
	"strings"

	"github.com/bhamfamilies/directory/internal/domain/entities"
)

// SortKey selects the active ordering for the result list.
type SortKey string

const (
	SortByName       SortKey = "name"
	SortByTuitionLow SortKey = "tuition-low"
	SortByHoursEarly SortKey = "hours-early"
	SortByHoursLate  SortKey = "hours-late"
)

// DefaultSortKey is the ordering used when none is selected.
const DefaultSortKey = SortByName

// ParseSortKey maps a serialized sort token to a SortKey, falling back to
// the default for anything unrecognized.
func ParseSortKey(s string) SortKey {
	switch SortKey(s) {
	case SortByName, SortByTuitionLow, SortByHoursEarly, SortByHoursLate:
		return SortKey(s)
	}
	return DefaultSortKey
}

// Sort orders listings in place by the given key. The sort is explicitly
// stable: listings comparing equal keep their relative input order.
//
// The hours orderings compare only when both sides carry structured hours;
// a listing without hours compares equal to anything, so it stays near its
// neighbors instead of sinking to one end. That matches the long-standing
// behavior of the directory and is covered by tests, so keep it.
func (s *ListingQueryService) Sort(listings []entities.Listing, key SortKey) {
	switch key {
	case SortByTuitionLow:
		slices.SortStableFunc(listings, func(a, b entities.Listing) int {
			return a.TuitionLow() - b.TuitionLow()
		})
	case SortByHoursEarly:
		slices.SortStableFunc(listings, func(a, b entities.Listing) int {
			if !hasOpen(&a) || !hasOpen(&b) {
				return 0
			}
			return strings.Compare(a.Hours.Open, b.Hours.Open)
		})
	case SortByHoursLate:
		slices.SortStableFunc(listings, func(a, b entities.Listing) int {
			if !hasClose(&a) || !hasClose(&b) {
				return 0
			}
			return strings.Compare(b.Hours.Close, a.Hours.Close)
		})
	default:
		slices.SortStableFunc(listings, func(a, b entities.Listing) int {
			return strings.Compare(strings.ToLower(a.Name()), strings.ToLower(b.Name()))
		})
	}
}

func hasOpen(l *entities.Listing) bool {
	return l.Hours != nil && l.Hours.Open != ""
}

func hasClose(l *entities.Listing) bool {
	return l.Hours != nil && l.Hours.Close != ""
}
