package services_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bhamfamilies/directory/internal/domain/entities"
	services "github.com/bhamfamilies/directory/internal/query/services"
)

func boolPtr(b bool) *bool { return &b }

func childcareCatalog() []entities.Listing {
	return []entities.Listing{
		{
			ID:           "sunny-days",
			Directory:    entities.DirectoryChildcare,
			DisplayName:  "Sunny Days",
			City:         "Homewood",
			Neighborhood: "Edgewood",
			AgesServed:   []string{"Infant", "Toddler"},
			Programs:     []string{"Full-time", "Part-time"},
			Accreditations: []string{
				"NAEYC",
			},
			Hours:                  &entities.Hours{Open: "06:30", Close: "18:00"},
			TuitionRangeMonthlyUSD: []int{800, 1200},
			OpeningsNow:            boolPtr(true),
			AcceptsSubsidy:         boolPtr(true),
			FirstClassPreK:         boolPtr(false),
		},
		{
			ID:                     "abc-kids",
			Directory:              entities.DirectoryChildcare,
			DisplayName:            "ABC Kids",
			City:                   "Vestavia",
			AgesServed:             []string{"Pre-K"},
			Programs:               []string{"Part-time"},
			Hours:                  &entities.Hours{Open: "07:30", Close: "17:30"},
			TuitionRangeMonthlyUSD: []int{600, 900},
			OpeningsNow:            boolPtr(false),
			FirstClassPreK:         boolPtr(true),
			QRIS:                   "3-star",
		},
		{
			ID:          "little-steps",
			Directory:   entities.DirectoryChildcare,
			DisplayName: "Little Steps",
			City:        "Homewood",
			AgesServed:  []string{"Toddler", "Pre-K"},
			Programs:    []string{"Full-time"},
			// no hours, no tuition, no quick-filter fields
		},
	}
}

func ids(listings []entities.Listing) []string {
	out := make([]string, len(listings))
	for i, l := range listings {
		out[i] = l.ID
	}
	return out
}

func TestFilter_EmptyStateMatchesAll(t *testing.T) {
	svc := services.NewListingQueryService()
	catalog := childcareCatalog()

	got := svc.Filter(catalog, services.FilterState{}, entities.DirectoryChildcare)

	assert.Equal(t, ids(catalog), ids(got), "no constraint must pass everything through in input order")
}

func TestFilter_SearchIsCaseInsensitiveSubstring(t *testing.T) {
	svc := services.NewListingQueryService()

	got := svc.Filter(childcareCatalog(), services.FilterState{Search: "sunny"}, entities.DirectoryChildcare)

	assert.Equal(t, []string{"sunny-days"}, ids(got))
}

func TestFilter_SearchCoversNeighborhoodAndPrograms(t *testing.T) {
	svc := services.NewListingQueryService()

	byNeighborhood := svc.Filter(childcareCatalog(), services.FilterState{Search: "edgewood"}, entities.DirectoryChildcare)
	assert.Equal(t, []string{"sunny-days"}, ids(byNeighborhood))

	byProgram := svc.Filter(childcareCatalog(), services.FilterState{Search: "part-time"}, entities.DirectoryChildcare)
	assert.Equal(t, []string{"sunny-days", "abc-kids"}, ids(byProgram))
}

func TestFilter_LocationFacet(t *testing.T) {
	svc := services.NewListingQueryService()

	got := svc.Filter(childcareCatalog(), services.FilterState{Location: []string{"Homewood"}}, entities.DirectoryChildcare)

	assert.Equal(t, []string{"sunny-days", "little-steps"}, ids(got))
}

func TestFilter_AgeRangeAnyMatch(t *testing.T) {
	svc := services.NewListingQueryService()

	got := svc.Filter(childcareCatalog(), services.FilterState{AgeRange: []string{"Infant", "Pre-K"}}, entities.DirectoryChildcare)

	// OR within the facet: Infant matches sunny-days, Pre-K matches the rest.
	assert.Equal(t, []string{"sunny-days", "abc-kids", "little-steps"}, ids(got))
}

func TestFilter_AccreditationCriteria(t *testing.T) {
	svc := services.NewListingQueryService()
	catalog := childcareCatalog()

	naeyc := svc.Filter(catalog, services.FilterState{Accreditation: []string{"NAEYC"}}, entities.DirectoryChildcare)
	assert.Equal(t, []string{"sunny-days"}, ids(naeyc))

	firstClass := svc.Filter(catalog, services.FilterState{Accreditation: []string{"First Class Pre-K"}}, entities.DirectoryChildcare)
	assert.Equal(t, []string{"abc-kids"}, ids(firstClass))

	qris := svc.Filter(catalog, services.FilterState{Accreditation: []string{"QRIS"}}, entities.DirectoryChildcare)
	assert.Equal(t, []string{"abc-kids"}, ids(qris))

	either := svc.Filter(catalog, services.FilterState{Accreditation: []string{"NAEYC", "QRIS"}}, entities.DirectoryChildcare)
	assert.Equal(t, []string{"sunny-days", "abc-kids"}, ids(either))
}

func TestFilter_TriStateExactMatch(t *testing.T) {
	svc := services.NewListingQueryService()
	catalog := childcareCatalog()

	requireTrue := svc.Filter(catalog, services.FilterState{OpeningsNow: boolPtr(true)}, entities.DirectoryChildcare)
	assert.Equal(t, []string{"sunny-days"}, ids(requireTrue), "a record without the field must not match")

	requireFalse := svc.Filter(catalog, services.FilterState{OpeningsNow: boolPtr(false)}, entities.DirectoryChildcare)
	assert.Equal(t, []string{"abc-kids"}, ids(requireFalse))
}

func TestFilter_HoursFailClosed(t *testing.T) {
	svc := services.NewListingQueryService()
	catalog := childcareCatalog()

	open := svc.Filter(catalog, services.FilterState{OpenTime: "07:00"}, entities.DirectoryChildcare)
	assert.Equal(t, []string{"sunny-days"}, ids(open),
		"abc-kids opens too late and little-steps has no hours at all")

	closeLate := svc.Filter(catalog, services.FilterState{CloseTime: "17:45"}, entities.DirectoryChildcare)
	assert.Equal(t, []string{"sunny-days"}, ids(closeLate))
}

func TestFilter_ChildcareFiltersSkippedForProviders(t *testing.T) {
	svc := services.NewListingQueryService()
	providers := []entities.Listing{
		{ID: "dr-a", Directory: entities.DirectoryPediatricians, DisplayName: "Dr. A", City: "Homewood"},
		{ID: "dr-b", Directory: entities.DirectoryPediatricians, PracticeName: "B Pediatrics", City: "Hoover"},
	}

	state := services.FilterState{
		AgeRange:       []string{"Infant"},
		ProgramType:    []string{"Full-time"},
		Accreditation:  []string{"NAEYC"},
		OpenTime:       "07:00",
		CloseTime:      "17:00",
		OpeningsNow:    boolPtr(true),
		AcceptsSubsidy: boolPtr(true),
	}

	got := svc.Filter(providers, state, entities.DirectoryPediatricians)

	assert.Equal(t, ids(providers), ids(got), "childcare-only filters must be a mode switch, not a field fallback")
}

func TestFilter_ProviderSearchFields(t *testing.T) {
	svc := services.NewListingQueryService()
	providers := []entities.Listing{
		{ID: "dr-a", Directory: entities.DirectoryPediatricians, DisplayName: "Valley Pediatrics", ProviderName: "Dr. Amy Adams", City: "Homewood", Specialty: "Adolescent medicine"},
		{ID: "dr-b", Directory: entities.DirectoryPediatricians, PracticeName: "B Pediatrics", City: "Hoover", Services: "well visits, immunizations"},
	}

	bySpecialty := svc.Filter(providers, services.FilterState{Search: "adolescent"}, entities.DirectoryPediatricians)
	assert.Equal(t, []string{"dr-a"}, ids(bySpecialty))

	byServices := svc.Filter(providers, services.FilterState{Search: "immunization"}, entities.DirectoryPediatricians)
	assert.Equal(t, []string{"dr-b"}, ids(byServices))
}

func TestFilter_AddingConstraintNeverGrowsResult(t *testing.T) {
	svc := services.NewListingQueryService()
	catalog := childcareCatalog()

	base := services.FilterState{Location: []string{"Homewood"}}
	narrowed := base.Clone()
	narrowed.OpeningsNow = boolPtr(true)

	baseLen := len(svc.Filter(catalog, base, entities.DirectoryChildcare))
	narrowedLen := len(svc.Filter(catalog, narrowed, entities.DirectoryChildcare))

	assert.LessOrEqual(t, narrowedLen, baseLen)
}

func TestFilterState_ActiveCount(t *testing.T) {
	state := services.FilterState{
		Search:      "sunny",
		Location:    []string{"Homewood"},
		OpeningsNow: boolPtr(false),
	}

	assert.Equal(t, 3, state.ActiveCount())
	assert.False(t, state.IsZero())
	assert.True(t, (&services.FilterState{}).IsZero())
}

func TestFilterState_CloneIsIndependent(t *testing.T) {
	orig := services.FilterState{
		Location:    []string{"Homewood"},
		OpeningsNow: boolPtr(true),
	}

	clone := orig.Clone()
	clone.Location[0] = "Hoover"
	*clone.OpeningsNow = false

	require.Equal(t, "Homewood", orig.Location[0])
	require.True(t, *orig.OpeningsNow)
}
