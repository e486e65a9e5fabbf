package favoritesapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"
	"time"

	"github.com/bhamfamilies/directory/internal/domain/entities"
	"github.com/bhamfamilies/directory/internal/domain/providers"
	apperrors "github.com/bhamfamilies/directory/pkg/errors"
)

// Client talks to the favorites API with a cookie session. A 401 from any
// endpoint maps to an unauthorized AppError so the caller can prompt for
// sign-in instead of treating it as an outage.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

type mutationRequest struct {
	Directory string `json:"directory"`
	ListingID string `json:"listingId"`
}

// NewClient creates a favorites API client. The cookie jar carries the
// session cookie across calls, matching how a browser holds the session.
func NewClient(baseURL string) (*Client, error) {
	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create cookie jar: %w", err)
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
			Jar:     jar,
		},
	}, nil
}

var _ providers.FavoritesClient = (*Client)(nil)

// CurrentUser returns the signed-in user for the session cookie.
func (c *Client) CurrentUser(ctx context.Context) (*entities.User, error) {
	user := &entities.User{}
	if err := c.doJSON(ctx, http.MethodGet, c.baseURL+"/api/auth/user", nil, user); err != nil {
		return nil, err
	}
	return user, nil
}

// List retrieves the user's favorites, optionally scoped to one directory.
func (c *Client) List(ctx context.Context, directory entities.Directory) ([]*entities.Favorite, error) {
	endpoint := c.baseURL + "/api/favorites"
	if directory != "" {
		endpoint = fmt.Sprintf("%s?directory=%s", endpoint, url.QueryEscape(string(directory)))
	}
	var favorites []*entities.Favorite
	if err := c.doJSON(ctx, http.MethodGet, endpoint, nil, &favorites); err != nil {
		return nil, err
	}
	return favorites, nil
}

// Add favorites a listing. The server answers an add of an existing
// favorite with the stored record, so Add is safe to repeat.
func (c *Client) Add(ctx context.Context, directory entities.Directory, listingID string) (*entities.Favorite, error) {
	body, err := json.Marshal(mutationRequest{
		Directory: string(directory),
		ListingID: listingID,
	})
	if err != nil {
		return nil, apperrors.NewInternalError("failed to encode favorite request", err)
	}

	favorite := &entities.Favorite{}
	if err := c.doJSON(ctx, http.MethodPost, c.baseURL+"/api/favorites", bytes.NewReader(body), favorite); err != nil {
		return nil, err
	}
	return favorite, nil
}

// Remove unfavorites a listing. Removing a non-existent favorite succeeds.
func (c *Client) Remove(ctx context.Context, directory entities.Directory, listingID string) error {
	body, err := json.Marshal(mutationRequest{
		Directory: string(directory),
		ListingID: listingID,
	})
	if err != nil {
		return apperrors.NewInternalError("failed to encode favorite request", err)
	}
	return c.doJSON(ctx, http.MethodDelete, c.baseURL+"/api/favorites", bytes.NewReader(body), nil)
}

func (c *Client) doJSON(ctx context.Context, method, endpoint string, body io.Reader, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, method, endpoint, body)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return apperrors.NewExternalError("favorites api request failed", err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusUnauthorized:
		return apperrors.NewUnauthorizedError("not signed in")
	case resp.StatusCode == http.StatusConflict && method == http.MethodPost:
		// The favorite already exists; decode whatever record the server
		// returned and report success.
	case resp.StatusCode < 200 || resp.StatusCode >= 300:
		return apperrors.NewExternalError(
			fmt.Sprintf("favorites api returned status %d", resp.StatusCode), nil)
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return apperrors.NewExternalError("failed to decode favorites api response", err)
	}
	return nil
}
