// Package geocode resolves free-form addresses to coordinates through a
// MapQuest-compatible HTTP API.
package geocode

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/devcamper/devcamper-api/internal/platform/cache"
)

// ErrNoMatch indicates the provider returned no usable location.
var ErrNoMatch = errors.New("geocode: no match")

// Location is a resolved address.
type Location struct {
	Latitude         float64 `json:"latitude"`
	Longitude        float64 `json:"longitude"`
	FormattedAddress string  `json:"formattedAddress"`
	Street           string  `json:"street"`
	City             string  `json:"city"`
	State            string  `json:"state"`
	Zipcode          string  `json:"zipcode"`
	Country          string  `json:"country"`
}

// Geocoder resolves an address.
type Geocoder interface {
	Geocode(ctx context.Context, address string) (Location, error)
}

// Client wraps interactions with the geocoding API.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	cache      *cache.JSONCache
	group      singleflight.Group
}

// NewClient constructs a new client. cache may be nil.
func NewClient(baseURL, apiKey string, c *cache.JSONCache) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
		cache: c,
	}
}

// Geocode resolves address, sharing in-flight lookups and cached results.
func (c *Client) Geocode(ctx context.Context, address string) (Location, error) {
	key := strings.ToLower(strings.TrimSpace(address))
	if key == "" {
		return Location{}, ErrNoMatch
	}
	v, err, _ := c.group.Do(key, func() (any, error) {
		var loc Location
		err := c.cache.Fetch(ctx, key, &loc, func(ctx context.Context) (any, error) {
			return c.lookup(ctx, address)
		})
		return loc, err
	})
	if err != nil {
		return Location{}, err
	}
	return v.(Location), nil
}

type mapquestResponse struct {
	Results []struct {
		Locations []struct {
			Street     string `json:"street"`
			AdminArea5 string `json:"adminArea5"`
			AdminArea3 string `json:"adminArea3"`
			AdminArea1 string `json:"adminArea1"`
			PostalCode string `json:"postalCode"`
			LatLng     struct {
				Lat float64 `json:"lat"`
				Lng float64 `json:"lng"`
			} `json:"latLng"`
		} `json:"locations"`
	} `json:"results"`
}

func (c *Client) lookup(ctx context.Context, address string) (Location, error) {
	q := url.Values{}
	q.Set("key", c.apiKey)
	q.Set("location", address)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/geocoding/v1/address?"+q.Encode(), nil)
	if err != nil {
		return Location{}, err
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return Location{}, fmt.Errorf("geocode: request: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()
	if resp.StatusCode >= 400 {
		return Location{}, fmt.Errorf("geocode: provider returned status %d", resp.StatusCode)
	}

	var payload mapquestResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return Location{}, fmt.Errorf("geocode: decode: %w", err)
	}
	if len(payload.Results) == 0 || len(payload.Results[0].Locations) == 0 {
		return Location{}, ErrNoMatch
	}
	l := payload.Results[0].Locations[0]
	formatted := strings.Join(nonEmpty(l.Street, l.AdminArea5, strings.TrimSpace(l.AdminArea3+" "+l.PostalCode), l.AdminArea1), ", ")
	return Location{
		Latitude:         l.LatLng.Lat,
		Longitude:        l.LatLng.Lng,
		FormattedAddress: formatted,
		Street:           l.Street,
		City:             l.AdminArea5,
		State:            l.AdminArea3,
		Zipcode:          l.PostalCode,
		Country:          l.AdminArea1,
	}, nil
}

func nonEmpty(parts ...string) []string {
	out := parts[:0]
	for _, p := range parts {
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}
