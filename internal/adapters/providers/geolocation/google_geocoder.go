package geolocation

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/kaayakalpa/healthfinder/internal/domain/providers"
)

const (
	googleGeocodeURL       = "https://maps.googleapis.com/maps/api/geocode/json"
	defaultGeocodeCacheTTL = 60 * 60 * 24 * 30
	defaultHTTPTimeout     = 8 * time.Second
)

// GoogleGeocoder resolves center addresses with the Google Geocoding API.
// Results are cached by normalized address.
type GoogleGeocoder struct {
	apiKey     string
	region     string
	baseURL    string
	httpClient *http.Client
	cache      providers.CacheProvider
}

var _ providers.Geocoder = (*GoogleGeocoder)(nil)

// NewGoogleGeocoder creates a geocoder. cache may be nil; an empty baseURL
// selects the public endpoint.
func NewGoogleGeocoder(apiKey, region, baseURL string, cache providers.CacheProvider) *GoogleGeocoder {
	if strings.TrimSpace(baseURL) == "" {
		baseURL = googleGeocodeURL
	}
	return &GoogleGeocoder{
		apiKey:     apiKey,
		region:     region,
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: defaultHTTPTimeout},
		cache:      cache,
	}
}

// Geocode returns the coordinates of the best match for address
func (g *GoogleGeocoder) Geocode(ctx context.Context, address string) (*providers.Coordinates, error) {
	trimmed := strings.TrimSpace(address)
	if trimmed == "" {
		return nil, fmt.Errorf("address is required")
	}
	if g.apiKey == "" {
		return nil, fmt.Errorf("google maps api key is required")
	}

	cacheKey := "geo:geocode:" + hashKey(strings.ToLower(trimmed))
	if g.cache != nil {
		if cached, err := g.cache.Get(ctx, cacheKey); err == nil {
			var coords providers.Coordinates
			if err := json.Unmarshal(cached, &coords); err == nil && (coords.Latitude != 0 || coords.Longitude != 0) {
				return &coords, nil
			}
		}
	}

	params := url.Values{}
	params.Set("address", trimmed)
	params.Set("key", g.apiKey)
	if g.region != "" {
		params.Set("region", g.region)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, g.baseURL+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build geocode request: %w", err)
	}

	resp, err := g.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("geocode request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("geocode request returned status %d", resp.StatusCode)
	}

	var payload googleGeocodeResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("failed to decode geocode response: %w", err)
	}

	switch {
	case payload.Status == "ZERO_RESULTS" || (payload.Status == "OK" && len(payload.Results) == 0):
		return nil, fmt.Errorf("no results for address")
	case payload.Status != "OK":
		if payload.ErrorMessage != "" {
			return nil, fmt.Errorf("geocode request failed: %s - %s", payload.Status, payload.ErrorMessage)
		}
		return nil, fmt.Errorf("geocode request failed: %s", payload.Status)
	}

	location := payload.Results[0].Geometry.Location
	coords := &providers.Coordinates{Latitude: location.Lat, Longitude: location.Lng}

	if g.cache != nil {
		if encoded, err := json.Marshal(coords); err == nil {
			_ = g.cache.Set(ctx, cacheKey, encoded, defaultGeocodeCacheTTL)
		}
	}
	return coords, nil
}

func hashKey(value string) string {
	sum := sha256.Sum256([]byte(value))
	return hex.EncodeToString(sum[:])
}

type googleGeocodeResponse struct {
	Status       string                `json:"status"`
	ErrorMessage string                `json:"error_message,omitempty"`
	Results      []googleGeocodeResult `json:"results"`
}

type googleGeocodeResult struct {
	FormattedAddress string         `json:"formatted_address"`
	Geometry         googleGeometry `json:"geometry"`
}

type googleGeometry struct {
	Location googleLocation `json:"location"`
}

type googleLocation struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}
