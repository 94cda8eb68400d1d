package geocode

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"walk-scheduler/internal/domain"
	"walk-scheduler/internal/platform/obs"
	"walk-scheduler/internal/ports"
)

// NominatimGeocoder implements ports.Geocoder against a Nominatim
// (OpenStreetMap) search endpoint. Requests are retried with backoff;
// callers wanting caching wrap it in a CachedGeocoder.
//
// The geocoder is safe for concurrent use.
type NominatimGeocoder struct {
	session   *http.Client
	baseURL   string
	userAgent string
}

var _ ports.Geocoder = (*NominatimGeocoder)(nil)

func NewNominatimGeocoder(baseURL string) *NominatimGeocoder {
	if baseURL == "" {
		baseURL = "https://nominatim.openstreetmap.org"
	}
	return &NominatimGeocoder{
		session:   &http.Client{Timeout: 10 * time.Second},
		baseURL:   strings.TrimRight(baseURL, "/"),
		userAgent: "walk-scheduler/1.0",
	}
}

// normalize ensures consistent lookups by collapsing whitespace.
func (g *NominatimGeocoder) normalize(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

type nominatimResult struct {
	Lat string `json:"lat"`
	Lon string `json:"lon"`
}

func (g *NominatimGeocoder) Geocode(ctx context.Context, address string) (_ domain.Location, err error) {
	defer obs.Time(ctx, "geocode.lookup")(&err)

	norm := g.normalize(address)
	if norm == "" {
		return domain.Location{}, errors.New("geocode: address must be non-empty")
	}

	endpoint := g.baseURL + "/search"

	resp, err := g.doWithRetry(ctx, func() (*http.Request, error) {
		req, err := g.newRequest(ctx, endpoint)
		if err != nil {
			return nil, err
		}
		q := req.URL.Query()
		q.Set("q", norm)
		q.Set("format", "json")
		q.Set("limit", "1")
		req.URL.RawQuery = q.Encode()
		return req, nil
	})
	if err != nil {
		return domain.Location{}, fmt.Errorf("geocode %q: execute request: %w", norm, err)
	}
	defer resp.Body.Close()

	var decoded []nominatimResult
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return domain.Location{}, fmt.Errorf("geocode %q: decode response: %w", norm, err)
	}
	if len(decoded) == 0 {
		return domain.Location{}, fmt.Errorf("geocode %q: no results", norm)
	}

	lat, err := strconv.ParseFloat(decoded[0].Lat, 64)
	if err != nil {
		return domain.Location{}, fmt.Errorf("geocode %q: invalid latitude %q: %w", norm, decoded[0].Lat, err)
	}
	lng, err := strconv.ParseFloat(decoded[0].Lon, 64)
	if err != nil {
		return domain.Location{}, fmt.Errorf("geocode %q: invalid longitude %q: %w", norm, decoded[0].Lon, err)
	}

	loc := domain.Location{Lat: lat, Lng: lng}
	if !loc.Valid() {
		return domain.Location{}, fmt.Errorf("geocode %q: coordinates out of range: %.6f, %.6f", norm, lat, lng)
	}

	return loc, nil
}
