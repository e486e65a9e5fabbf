package services

import (
	"slices"
	"strings"

	"github.com/bhamfamilies/directory/internal/domain/entities"
)

// FilterState holds every filter the directory view understands. The zero
// value means "no constraint": empty strings, empty slices and nil booleans
// all pass everything through. Tri-state quick filters use *bool so that
// "require false" and "no constraint" stay distinct.
type FilterState struct {
	Search         string
	Location       []string
	AgeRange       []string
	ProgramType    []string
	Accreditation  []string
	OpenTime       string
	CloseTime      string
	OpeningsNow    *bool
	AcceptsSubsidy *bool
	FirstClassPreK *bool
}

// IsZero reports whether no filter is active.
func (f *FilterState) IsZero() bool {
	return f.ActiveCount() == 0
}

// ActiveCount returns how many filters are active, for the "(n)" badge on
// the filters toggle.
func (f *FilterState) ActiveCount() int {
	count := 0
	if f.Search != "" {
		count++
	}
	for _, set := range [][]string{f.Location, f.AgeRange, f.ProgramType, f.Accreditation} {
		if len(set) > 0 {
			count++
		}
	}
	if f.OpenTime != "" {
		count++
	}
	if f.CloseTime != "" {
		count++
	}
	for _, b := range []*bool{f.OpeningsNow, f.AcceptsSubsidy, f.FirstClassPreK} {
		if b != nil {
			count++
		}
	}
	return count
}

// Clone returns a deep copy, so a caller can stage changes without mutating
// the live state.
func (f *FilterState) Clone() FilterState {
	out := *f
	out.Location = slices.Clone(f.Location)
	out.AgeRange = slices.Clone(f.AgeRange)
	out.ProgramType = slices.Clone(f.ProgramType)
	out.Accreditation = slices.Clone(f.Accreditation)
	out.OpeningsNow = cloneBool(f.OpeningsNow)
	out.AcceptsSubsidy = cloneBool(f.AcceptsSubsidy)
	out.FirstClassPreK = cloneBool(f.FirstClassPreK)
	return out
}

func cloneBool(b *bool) *bool {
	if b == nil {
		return nil
	}
	v := *b
	return &v
}

// ListingQueryService evaluates filter and sort state against an in-memory
// catalog. It is pure: no I/O, no stored state, safe to share.
type ListingQueryService struct{}

// NewListingQueryService creates a new listing query service
func NewListingQueryService() *ListingQueryService {
	return &ListingQueryService{}
}

// Filter returns the stable subsequence of listings satisfying every active
// constraint. Childcare-only filters are a mode switch: for any other
// directory they are skipped entirely, not evaluated against missing fields.
// A record that lacks a field an active filter needs fails that filter
// (fails closed) without aborting the pass.
func (s *ListingQueryService) Filter(listings []entities.Listing, state FilterState, directory entities.Directory) []entities.Listing {
	result := make([]entities.Listing, 0, len(listings))
	for _, listing := range listings {
		if s.matches(&listing, &state, directory) {
			result = append(result, listing)
		}
	}
	return result
}

func (s *ListingQueryService) matches(l *entities.Listing, f *FilterState, directory entities.Directory) bool {
	if f.Search != "" && !strings.Contains(searchableText(l, directory), strings.ToLower(f.Search)) {
		return false
	}

	if len(f.Location) > 0 && !slices.Contains(f.Location, l.City) {
		return false
	}

	if !directory.IsChildcare() {
		return true
	}

	if len(f.AgeRange) > 0 && !anyOverlap(f.AgeRange, l.AgesServed) {
		return false
	}

	if len(f.ProgramType) > 0 && !anyOverlap(f.ProgramType, l.Programs) {
		return false
	}

	if len(f.Accreditation) > 0 && !matchesAccreditation(f.Accreditation, l) {
		return false
	}

	// Hours filters want doors open by OpenTime and still open at
	// CloseTime. A listing without structured hours cannot prove either,
	// so it is excluded once the filter is active.
	if f.OpenTime != "" {
		if l.Hours == nil || l.Hours.Open == "" || l.Hours.Open > f.OpenTime {
			return false
		}
	}
	if f.CloseTime != "" {
		if l.Hours == nil || l.Hours.Close == "" || l.Hours.Close < f.CloseTime {
			return false
		}
	}

	if !matchesTriState(f.OpeningsNow, l.OpeningsNow) {
		return false
	}
	if !matchesTriState(f.AcceptsSubsidy, l.AcceptsSubsidy) {
		return false
	}
	if !matchesTriState(f.FirstClassPreK, l.FirstClassPreK) {
		return false
	}

	return true
}

// searchableText concatenates the directory-specific searchable fields,
// lowercased once per record.
func searchableText(l *entities.Listing, directory entities.Directory) string {
	var parts []string
	if directory.IsChildcare() {
		parts = []string{
			l.Name(),
			l.City,
			l.Neighborhood,
			strings.Join(l.Programs, " "),
			l.Blurb,
		}
	} else {
		parts = []string{
			l.Name(),
			l.ProviderName,
			l.City,
			l.Specialty,
			l.Blurb,
			l.Services,
		}
	}
	return strings.ToLower(strings.Join(parts, " "))
}

// anyOverlap reports whether any selected value appears in the listing's
// values (OR within the facet).
func anyOverlap(selected, have []string) bool {
	for _, want := range selected {
		if slices.Contains(have, want) {
			return true
		}
	}
	return false
}

// matchesAccreditation implements the accreditation facet, where each
// criterion checks a different part of the record.
func matchesAccreditation(selected []string, l *entities.Listing) bool {
	for _, acc := range selected {
		switch acc {
		case "NAEYC":
			if slices.Contains(l.Accreditations, "NAEYC") {
				return true
			}
		case "First Class Pre-K":
			if l.FirstClassPreK != nil && *l.FirstClassPreK {
				return true
			}
		case "QRIS":
			if l.QRIS != "" {
				return true
			}
		}
	}
	return false
}

// matchesTriState passes when the filter is inactive; otherwise the record
// must carry the field and match it exactly.
func matchesTriState(want, have *bool) bool {
	if want == nil {
		return true
	}
	return have != nil && *have == *want
}
