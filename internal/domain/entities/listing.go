package entities

import (
	"fmt"
	"strconv"
	"strings"
)

// Hours is a daily opening window in zero-padded 24-hour "HH:MM" strings,
// which makes lexical comparison equivalent to chronological comparison.
type Hours struct {
	Open  string `json:"open"`
	Close string `json:"close"`
}

// Listing is one directory entry. The catalog is heterogeneous: childcare
// centers, medical practices and therapy providers share the common fields
// and carry their own optional ones. Only ID and Directory are guaranteed;
// every accessor below tolerates missing data with a directory-appropriate
// fallback, because search, sort and rendering all assume non-null strings.
type Listing struct {
	ID        string    `json:"id"`
	Directory Directory `json:"directory"`

	// Common fields
	DisplayName  string   `json:"displayName"`
	City         string   `json:"city"`
	Neighborhood string   `json:"neighborhood,omitempty"`
	Address      string   `json:"address,omitempty"`
	Zip          string   `json:"zip,omitempty"`
	Phone        string   `json:"phone,omitempty"`
	Website      string   `json:"website,omitempty"`
	Email        string   `json:"email,omitempty"`
	Latitude     *float64 `json:"latitude,omitempty"`
	Longitude    *float64 `json:"longitude,omitempty"`
	Blurb        string   `json:"blurb,omitempty"`

	// Childcare-specific
	AgesServed             []string `json:"agesServed,omitempty"`
	Programs               []string `json:"programs,omitempty"`
	Accreditations         []string `json:"accreditations,omitempty"`
	Hours                  *Hours   `json:"hours,omitempty"`
	TuitionRangeMonthlyUSD []int    `json:"tuitionRangeMonthlyUSD,omitempty"`
	OpeningsNow            *bool    `json:"openingsNow,omitempty"`
	AcceptsSubsidy         *bool    `json:"acceptsSubsidy,omitempty"`
	FirstClassPreK         *bool    `json:"firstClassPreK,omitempty"`
	QRIS                   string   `json:"qris,omitempty"`
	Waitlist               bool     `json:"waitlist,omitempty"`
	FaithBased             bool     `json:"faithBased,omitempty"`

	// Provider-specific (pediatricians, dentists, therapists)
	PracticeName         string   `json:"practiceName,omitempty"`
	ProviderName         string   `json:"providerName,omitempty"`
	Specialty            string   `json:"specialty,omitempty"`
	Services             string   `json:"services,omitempty"`
	InsuranceAccepted    []string `json:"insuranceAccepted,omitempty"`
	Certifications       []string `json:"certifications,omitempty"`
	AcceptingNewPatients *bool    `json:"acceptingNewPatients,omitempty"`
	AgeRange             string   `json:"ageRange,omitempty"`
	Rating               *float64 `json:"rating,omitempty"`
	ReviewsCount         *int     `json:"reviewsCount,omitempty"`
}

// Name returns the best available display name, falling back through the
// per-directory name fields so sorting and search never see an empty name
// unless the record truly has none.
func (l *Listing) Name() string {
	if l.DisplayName != "" {
		return l.DisplayName
	}
	if l.PracticeName != "" {
		return l.PracticeName
	}
	return l.ProviderName
}

// FormatHours renders the opening window for display. Listings without
// structured hours say so rather than showing an empty string.
func (l *Listing) FormatHours() string {
	if l.Hours == nil || l.Hours.Open == "" || l.Hours.Close == "" {
		return "Call for hours"
	}
	return fmt.Sprintf("%s - %s", formatTime(l.Hours.Open), formatTime(l.Hours.Close))
}

// TuitionLabel renders the monthly tuition range, or a contact prompt when
// the catalog has no pricing for the listing.
func (l *Listing) TuitionLabel() string {
	if len(l.TuitionRangeMonthlyUSD) == 2 {
		return fmt.Sprintf("$%d-$%d/mo", l.TuitionRangeMonthlyUSD[0], l.TuitionRangeMonthlyUSD[1])
	}
	return "Contact for pricing"
}

// TuitionLow returns the lower bound of the tuition range, treating a
// missing range as zero so such listings sort first under tuition-low.
func (l *Listing) TuitionLow() int {
	if len(l.TuitionRangeMonthlyUSD) > 0 {
		return l.TuitionRangeMonthlyUSD[0]
	}
	return 0
}

// InsuranceLabel renders up to three accepted insurers for provider cards.
func (l *Listing) InsuranceLabel() string {
	if len(l.InsuranceAccepted) == 0 {
		return "Call for insurance info"
	}
	insurers := l.InsuranceAccepted
	if len(insurers) > 3 {
		insurers = insurers[:3]
	}
	return strings.Join(insurers, ", ")
}

// AgesLabel renders the age coverage. Childcare listings show the first two
// age bands; provider listings carry a free-form range with a pediatric
// default.
func (l *Listing) AgesLabel() string {
	if l.Directory.IsChildcare() {
		ages := l.AgesServed
		if len(ages) > 2 {
			ages = ages[:2]
		}
		return strings.Join(ages, ", ")
	}
	if l.AgeRange != "" {
		return l.AgeRange
	}
	return "Newborn to 21"
}

// RatingLabel renders the review summary, empty when the listing has none.
func (l *Listing) RatingLabel() string {
	if l.Rating == nil {
		return ""
	}
	label := strconv.FormatFloat(*l.Rating, 'f', -1, 64)
	if l.ReviewsCount != nil {
		label = fmt.Sprintf("%s (%d reviews)", label, *l.ReviewsCount)
	}
	return label
}

// BlurbOrDefault returns the listing description with a per-directory
// fallback line.
func (l *Listing) BlurbOrDefault() string {
	if l.Blurb != "" {
		return l.Blurb
	}
	switch l.Directory {
	case DirectoryPediatricians:
		return "Pediatric care for local families."
	case DirectoryDentists:
		return "Pediatric dental care for local families."
	case DirectoryTherapists:
		return "Speech and occupational therapy for local families."
	}
	return ""
}

// formatTime converts "HH:MM" to a 12-hour clock label; unparseable input
// is returned unchanged.
func formatTime(t string) string {
	parts := strings.SplitN(t, ":", 2)
	if len(parts) != 2 {
		return t
	}
	hour, err := strconv.Atoi(parts[0])
	if err != nil {
		return t
	}
	period := "AM"
	if hour >= 12 {
		period = "PM"
	}
	display := hour % 12
	if display == 0 {
		display = 12
	}
	return fmt.Sprintf("%d:%s %s", display, parts[1], period)
}
