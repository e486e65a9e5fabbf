package services

import (
	"strconv"

	"github.com/bhamfamilies/directory/internal/domain/entities"
)

// PageCopy is the static hero copy for one directory.
type PageCopy struct {
	Title             string
	Subtitle          string
	SearchPlaceholder string
	FiltersTitle      string
	ResultsLabel      string
}

var pageCopy = map[entities.Directory]PageCopy{
	entities.DirectoryChildcare: {
		Title:             "Birmingham Childcare Directory",
		Subtitle:          "Find quality childcare across the Birmingham metro—compare programs, locations, costs, and openings.",
		SearchPlaceholder: "Search by name, neighborhood, or keyword...",
		FiltersTitle:      "Find Your Perfect Childcare",
		ResultsLabel:      "centers",
	},
	entities.DirectoryPediatricians: {
		Title:             "Birmingham Pediatrician Directory",
		Subtitle:          "Find trusted pediatric care across the Birmingham metro—compare practices, specialties, and insurance accepted.",
		SearchPlaceholder: "Search by doctor name, practice, or specialty...",
		FiltersTitle:      "Find Your Pediatrician",
		ResultsLabel:      "providers",
	},
	entities.DirectoryDentists: {
		Title:             "Birmingham Pediatric Dentist Directory",
		Subtitle:          "Find trusted pediatric dental care across the Birmingham metro—compare practices, specialties, and patient reviews.",
		SearchPlaceholder: "Search by dentist name, practice, or location...",
		FiltersTitle:      "Find Your Pediatric Dentist",
		ResultsLabel:      "dentists",
	},
	entities.DirectoryTherapists: {
		Title:             "Birmingham Speech & OT Therapist Directory",
		Subtitle:          "Find speech and occupational therapy providers across the Birmingham metro—compare specialties, services, and insurance accepted.",
		SearchPlaceholder: "Search by therapist name, specialty, or location...",
		FiltersTitle:      "Find Your Therapist",
		ResultsLabel:      "therapists",
	},
}

// CopyFor returns the hero copy for a directory, falling back to the
// childcare copy for unknown values.
func CopyFor(directory entities.Directory) PageCopy {
	if pc, ok := pageCopy[directory]; ok {
		return pc
	}
	return pageCopy[entities.DirectoryChildcare]
}

// ListingCard is one rendered result: display strings only, with every
// fallback label already applied. Rendering a card never fails, whatever
// fields the underlying record is missing.
type ListingCard struct {
	ID           string   `json:"id"`
	Name         string   `json:"name"`
	City         string   `json:"city"`
	Neighborhood string   `json:"neighborhood,omitempty"`
	Blurb        string   `json:"blurb"`
	Hours        string   `json:"hours"`
	Tuition      string   `json:"tuition,omitempty"`
	Insurance    string   `json:"insurance,omitempty"`
	Ages         string   `json:"ages"`
	Rating       string   `json:"rating,omitempty"`
	Phone        string   `json:"phone,omitempty"`
	Website      string   `json:"website,omitempty"`
	Address      string   `json:"address,omitempty"`
	Badges       []string `json:"badges"`
	Favorite     bool     `json:"favorite"`
}

// ViewModel is the full render description for one directory view.
type ViewModel struct {
	Directory         entities.Directory `json:"directory"`
	Title             string             `json:"title"`
	Subtitle          string             `json:"subtitle"`
	SearchPlaceholder string             `json:"searchPlaceholder"`
	FiltersTitle      string             `json:"filtersTitle"`
	ResultsLabel      string             `json:"resultsLabel"`
	ResultsCount      int                `json:"resultsCount"`
	ActiveFilterCount int                `json:"activeFilterCount"`
	Fragment          string             `json:"fragment"`
	LoadError         string             `json:"loadError,omitempty"`
	Cards             []ListingCard      `json:"cards"`
}

// badgesFor reproduces the card badge rules per directory mode.
func badgesFor(l entities.Listing) []string {
	var badges []string
	switch l.Directory {
	case entities.DirectoryChildcare:
		if l.OpeningsNow != nil && *l.OpeningsNow {
			badges = append(badges, "Openings Now")
		}
		if l.Waitlist {
			badges = append(badges, "Waitlist")
		}
		if l.AcceptsSubsidy != nil && *l.AcceptsSubsidy {
			badges = append(badges, "Accepts Subsidy")
		}
		for _, acc := range l.Accreditations {
			if acc == "NAEYC" {
				badges = append(badges, "NAEYC")
				break
			}
		}
		if l.FirstClassPreK != nil && *l.FirstClassPreK {
			badges = append(badges, "First Class Pre-K")
		}
		if l.QRIS != "" {
			badges = append(badges, "QRIS "+l.QRIS)
		}
		if l.FaithBased {
			badges = append(badges, "Faith-based")
		}
	case entities.DirectoryPediatricians:
		if l.AcceptingNewPatients != nil && *l.AcceptingNewPatients {
			badges = append(badges, "Accepting New Patients")
		}
		for _, cert := range l.Certifications {
			if cert == "FAAP" {
				badges = append(badges, "Board Certified")
				break
			}
		}
	default:
		if l.AcceptingNewPatients != nil && *l.AcceptingNewPatients {
			badges = append(badges, "Accepting New Patients")
		}
		if l.Specialty != "" {
			badges = append(badges, l.Specialty)
		}
	}
	return badges
}

func cardFor(l entities.Listing, favorite bool) ListingCard {
	card := ListingCard{
		ID:           l.ID,
		Name:         l.Name(),
		City:         l.City,
		Neighborhood: l.Neighborhood,
		Blurb:        l.BlurbOrDefault(),
		Hours:        l.FormatHours(),
		Ages:         l.AgesLabel(),
		Phone:        l.Phone,
		Website:      l.Website,
		Address:      l.Address,
		Badges:       badgesFor(l),
		Favorite:     favorite,
	}
	if l.Directory.IsChildcare() {
		card.Tuition = l.TuitionLabel()
	} else {
		card.Insurance = l.InsuranceLabel()
		card.Rating = l.RatingLabel()
	}
	return card
}

// ResultsSummary renders the "N centers" line under the hero search box.
func (vm ViewModel) ResultsSummary() string {
	return strconv.Itoa(vm.ResultsCount) + " " + vm.ResultsLabel
}
