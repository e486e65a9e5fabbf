package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/bhamfamilies/directory/internal/domain/entities"
	"github.com/bhamfamilies/directory/internal/infrastructure/observability"
	apperrors "github.com/bhamfamilies/directory/pkg/errors"
	"github.com/bhamfamilies/directory/pkg/retry"
)

// HTTPAdapter fetches directory catalogs as versioned JSON documents.
// Catalog files are published by different tools over time, so the decoder
// accepts both field spellings in use (name vs displayName, programs vs
// type) and normalizes them into one Listing shape.
type HTTPAdapter struct {
	baseURL    string
	version    string
	httpClient *http.Client
	logger     zerolog.Logger
	metrics    *observability.Metrics
}

// NewHTTPAdapter creates a catalog adapter. The version string is appended
// as a cache-busting query parameter on every fetch. Metrics may be nil.
func NewHTTPAdapter(baseURL, version string, logger zerolog.Logger, metrics *observability.Metrics) *HTTPAdapter {
	return &HTTPAdapter{
		baseURL: strings.TrimRight(baseURL, "/"),
		version: version,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
		logger:  logger.With().Str("component", "catalog").Logger(),
		metrics: metrics,
	}
}

// rawListing tolerates every catalog file shape currently in the wild.
type rawListing struct {
	ID                     string          `json:"id"`
	Name                   string          `json:"name"`
	DisplayName            string          `json:"displayName"`
	PracticeName           string          `json:"practiceName"`
	ProviderName           string          `json:"providerName"`
	City                   string          `json:"city"`
	Neighborhood           string          `json:"neighborhood"`
	Address                string          `json:"address"`
	Zip                    string          `json:"zip"`
	Phone                  string          `json:"phone"`
	Website                string          `json:"website"`
	Email                  string          `json:"email"`
	Latitude               *float64        `json:"lat"`
	Longitude              *float64        `json:"lng"`
	Blurb                  string          `json:"blurb"`
	Description            string          `json:"description"`
	AgesServed             []string        `json:"agesServed"`
	Programs               []string        `json:"programs"`
	Type                   []string        `json:"type"`
	Accreditations         []string        `json:"accreditations"`
	Hours                  *rawHours       `json:"hours"`
	TuitionRangeMonthlyUSD []int           `json:"tuitionRangeMonthlyUSD"`
	OpeningsNow            *bool           `json:"openingsNow"`
	AcceptsSubsidy         *bool           `json:"acceptsSubsidy"`
	FirstClassPreK         *bool           `json:"firstClassPreK"`
	QRIS                   json.RawMessage `json:"qris"`
	Waitlist               bool            `json:"waitlist"`
	FaithBased             bool            `json:"faithBased"`
	Specialty              string          `json:"specialty"`
	Services               string          `json:"services"`
	InsuranceAccepted      []string        `json:"insuranceAccepted"`
	Certifications         []string        `json:"certifications"`
	AcceptingNewPatients   *bool           `json:"acceptingNewPatients"`
	AgeRange               string          `json:"ageRange"`
	Rating                 *float64        `json:"rating"`
	ReviewsCount           *int            `json:"reviewsCount"`
}

type rawHours struct {
	Open  string `json:"open"`
	Close string `json:"close"`
}

// Fetch downloads and normalizes the catalog for one directory. Records
// without an id are skipped with a warning; a record that fails to decode
// never fails the whole catalog.
func (a *HTTPAdapter) Fetch(ctx context.Context, directory entities.Directory) ([]entities.Listing, error) {
	endpoint := fmt.Sprintf("%s/%s.json", a.baseURL, directory.CatalogFile())
	if a.version != "" {
		endpoint = fmt.Sprintf("%s?v=%s", endpoint, url.QueryEscape(a.version))
	}

	start := time.Now()
	var raw []json.RawMessage
	err := retry.DoWithLog(ctx, retry.FetchConfig(), func() error {
		return a.fetchJSON(ctx, endpoint, &raw)
	}, func(attempt int, err error, nextDelay time.Duration) {
		a.logger.Warn().
			Err(err).
			Int("attempt", attempt).
			Dur("next_delay", nextDelay).
			Str("endpoint", endpoint).
			Msg("catalog fetch failed, retrying")
	})
	observability.RecordCatalogFetch(ctx, a.metrics, string(directory), time.Since(start))
	if err != nil {
		return nil, apperrors.NewExternalError(
			fmt.Sprintf("failed to fetch %s catalog", directory), err)
	}

	listings := make([]entities.Listing, 0, len(raw))
	for i, msg := range raw {
		var r rawListing
		if err := json.Unmarshal(msg, &r); err != nil {
			a.logger.Warn().Err(err).Int("index", i).Msg("skipping undecodable catalog record")
			continue
		}
		if r.ID == "" {
			a.logger.Warn().Int("index", i).Msg("skipping catalog record without id")
			continue
		}
		listings = append(listings, normalize(r, directory))
	}
	return listings, nil
}

func (a *HTTPAdapter) fetchJSON(ctx context.Context, endpoint string, out *[]json.RawMessage) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return err
	}

	resp, err := a.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("catalog endpoint returned status %d", resp.StatusCode)
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

func normalize(r rawListing, directory entities.Directory) entities.Listing {
	displayName := r.DisplayName
	if displayName == "" {
		displayName = r.Name
	}
	programs := r.Programs
	if len(programs) == 0 {
		programs = r.Type
	}
	blurb := r.Blurb
	if blurb == "" {
		blurb = r.Description
	}

	var hours *entities.Hours
	if r.Hours != nil {
		hours = &entities.Hours{Open: r.Hours.Open, Close: r.Hours.Close}
	}

	return entities.Listing{
		ID:                     r.ID,
		Directory:              directory,
		DisplayName:            displayName,
		City:                   r.City,
		Neighborhood:           r.Neighborhood,
		Address:                r.Address,
		Zip:                    r.Zip,
		Phone:                  r.Phone,
		Website:                r.Website,
		Email:                  r.Email,
		Latitude:               r.Latitude,
		Longitude:              r.Longitude,
		Blurb:                  blurb,
		AgesServed:             r.AgesServed,
		Programs:               programs,
		Accreditations:         r.Accreditations,
		Hours:                  hours,
		TuitionRangeMonthlyUSD: r.TuitionRangeMonthlyUSD,
		OpeningsNow:            r.OpeningsNow,
		AcceptsSubsidy:         r.AcceptsSubsidy,
		FirstClassPreK:         r.FirstClassPreK,
		QRIS:                   qrisString(r.QRIS),
		Waitlist:               r.Waitlist,
		FaithBased:             r.FaithBased,
		PracticeName:           r.PracticeName,
		ProviderName:           r.ProviderName,
		Specialty:              r.Specialty,
		Services:               r.Services,
		InsuranceAccepted:      r.InsuranceAccepted,
		Certifications:         r.Certifications,
		AcceptingNewPatients:   r.AcceptingNewPatients,
		AgeRange:               r.AgeRange,
		Rating:                 r.Rating,
		ReviewsCount:           r.ReviewsCount,
	}
}

// qrisString accepts null, a string, or a bare number. Older catalog files
// publish QRIS tiers as numbers, newer ones as strings.
func qrisString(raw json.RawMessage) string {
	if len(raw) == 0 || string(raw) == "null" {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	var n json.Number
	if err := json.Unmarshal(raw, &n); err == nil {
		return n.String()
	}
	return ""
}
