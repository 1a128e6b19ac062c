// Package carbon estimates delivery route distance and transport
// emissions using external geocoding and routing services. Everything
// here is best-effort: failures surface as ErrUnavailable and must
// never abort a marketplace transaction.
package carbon

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/sethvargo/go-retry"
)

// ErrUnavailable marks a geocoding or routing provider failure.
var ErrUnavailable = errors.New("route service unavailable")

const (
	defaultGeocodeURL    = "https://nominatim.openstreetmap.org/search"
	defaultDirectionsURL = "https://api.openrouteservice.org/v2/directions/driving-car"

	// Nominatim's usage policy allows at most one request per second.
	geocodeMinInterval = time.Second
)

// RouteFinder resolves addresses to coordinates and road routes to
// distances. Safe for concurrent use; geocoding calls are serialized to
// respect the provider's rate limit.
type RouteFinder struct {
	APIKey        string
	Client        *http.Client
	GeocodeURL    string
	DirectionsURL string

	mu          sync.Mutex
	lastGeocode time.Time
}

// NewRouteFinder creates a RouteFinder against the public Nominatim and
// OpenRouteService endpoints.
func NewRouteFinder(apiKey string) *RouteFinder {
	return &RouteFinder{
		APIKey:        apiKey,
		Client:        &http.Client{Timeout: 15 * time.Second},
		GeocodeURL:    defaultGeocodeURL,
		DirectionsURL: defaultDirectionsURL,
	}
}

// Coords is a latitude/longitude pair.
type Coords struct {
	Lat float64
	Lon float64
}

// Geocode resolves a free-form address to coordinates. Requests are
// spaced at least a second apart and retried with backoff on transient
// failures so the provider is never hammered.
func (f *RouteFinder) Geocode(ctx context.Context, address string) (Coords, error) {
	f.mu.Lock()
	if wait := geocodeMinInterval - time.Since(f.lastGeocode); wait > 0 {
		select {
		case <-time.After(wait):
		case <-ctx.Done():
			f.mu.Unlock()
			return Coords{}, ctx.Err()
		}
	}
	f.lastGeocode = time.Now()
	f.mu.Unlock()

	var coords Coords
	backoff := retry.WithMaxRetries(3, retry.NewFibonacci(time.Second))
	err := retry.Do(ctx, backoff, func(ctx context.Context) error {
		c, err := f.geocodeOnce(ctx, address)
		if err != nil {
			return err
		}
		coords = c
		return nil
	})
	if err != nil {
		return Coords{}, err
	}
	return coords, nil
}

func (f *RouteFinder) geocodeOnce(ctx context.Context, address string) (Coords, error) {
	q := url.Values{}
	q.Set("q", address)
	q.Set("format", "json")
	q.Set("limit", "1")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, f.GeocodeURL+"?"+q.Encode(), nil)
	if err != nil {
		return Coords{}, fmt.Errorf("building geocode request: %w", err)
	}
	req.Header.Set("User-Agent", "farmerchain/1.0")

	resp, err := f.Client.Do(req)
	if err != nil {
		return Coords{}, retry.RetryableError(fmt.Errorf("%w: %v", ErrUnavailable, err))
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500 {
		return Coords{}, retry.RetryableError(fmt.Errorf("%w: geocoder returned %d", ErrUnavailable, resp.StatusCode))
	}
	if resp.StatusCode != http.StatusOK {
		return Coords{}, fmt.Errorf("%w: geocoder returned %d", ErrUnavailable, resp.StatusCode)
	}

	var results []struct {
		Lat string `json:"lat"`
		Lon string `json:"lon"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&results); err != nil {
		return Coords{}, fmt.Errorf("%w: decoding geocode response: %v", ErrUnavailable, err)
	}
	if len(results) == 0 {
		return Coords{}, fmt.Errorf("address not found: %s", address)
	}

	var c Coords
	if _, err := fmt.Sscanf(results[0].Lat, "%f", &c.Lat); err != nil {
		return Coords{}, fmt.Errorf("%w: bad latitude %q", ErrUnavailable, results[0].Lat)
	}
	if _, err := fmt.Sscanf(results[0].Lon, "%f", &c.Lon); err != nil {
		return Coords{}, fmt.Errorf("%w: bad longitude %q", ErrUnavailable, results[0].Lon)
	}
	return c, nil
}

// RoadDistanceKm returns the driving distance between two addresses in
// kilometers.
func (f *RouteFinder) RoadDistanceKm(ctx context.Context, startAddr, endAddr string) (float64, error) {
	start, err := f.Geocode(ctx, startAddr)
	if err != nil {
		return 0, err
	}
	end, err := f.Geocode(ctx, endAddr)
	if err != nil {
		return 0, err
	}

	// OpenRouteService expects [lon, lat] pairs.
	body, err := json.Marshal(map[string]any{
		"coordinates": [][]float64{{start.Lon, start.Lat}, {end.Lon, end.Lat}},
	})
	if err != nil {
		return 0, fmt.Errorf("encoding directions request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, f.DirectionsURL, bytes.NewReader(body))
	if err != nil {
		return 0, fmt.Errorf("building directions request: %w", err)
	}
	req.Header.Set("Authorization", f.APIKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := f.Client.Do(req)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return 0, fmt.Errorf("%w: directions API returned %d", ErrUnavailable, resp.StatusCode)
	}

	var directions struct {
		Routes []struct {
			Summary struct {
				Distance float64 `json:"distance"` // meters
			} `json:"summary"`
		} `json:"routes"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&directions); err != nil {
		return 0, fmt.Errorf("%w: decoding directions response: %v", ErrUnavailable, err)
	}
	if len(directions.Routes) == 0 {
		return 0, fmt.Errorf("%w: no route found", ErrUnavailable)
	}

	return directions.Routes[0].Summary.Distance / 1000, nil
}
