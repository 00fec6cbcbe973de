package ors

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"
)

const defaultBaseURL = "https://api.openrouteservice.org"

// Client calls the openrouteservice geocoding and directions endpoints.
type Client struct {
	BaseURL    string
	APIKey     string
	HTTPClient *http.Client
}

// NewClient creates a Client for the given API key. An empty baseURL selects
// the public openrouteservice endpoint.
func NewClient(apiKey, baseURL string) *Client {
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	return &Client{
		BaseURL:    baseURL,
		APIKey:     apiKey,
		HTTPClient: &http.Client{Timeout: 15 * time.Second},
	}
}

// Autocomplete resolves free text into place candidates, biased toward the
// focus coordinate.
func (c *Client) Autocomplete(ctx context.Context, text string, focusLat, focusLon float64) ([]Place, error) {
	params := url.Values{}
	params.Set("api_key", c.APIKey)
	params.Set("text", text)
	params.Set("focus.point.lon", formatCoord(focusLon))
	params.Set("focus.point.lat", formatCoord(focusLat))
	return c.geocode(ctx, "/geocode/autocomplete", params)
}

// Search geocodes free text into place candidates anchored near the given
// point. Used by the re-geocode sub-flow for events stored without
// coordinates.
func (c *Client) Search(ctx context.Context, text string, pointLat, pointLon float64) ([]Place, error) {
	params := url.Values{}
	params.Set("api_key", c.APIKey)
	params.Set("text", text)
	params.Set("point.lon", formatCoord(pointLon))
	params.Set("point.lat", formatCoord(pointLat))
	return c.geocode(ctx, "/geocode/search", params)
}

// Directions requests a route between two coordinates for the given profile.
// Returns ErrNoRoute when the provider answers with an empty feature list.
func (c *Client) Directions(ctx context.Context, mode string, startLat, startLon, endLat, endLon float64) (*RouteSummary, error) {
	params := url.Values{}
	params.Set("api_key", c.APIKey)
	params.Set("start", fmt.Sprintf("%s,%s", formatCoord(startLon), formatCoord(startLat)))
	params.Set("end", fmt.Sprintf("%s,%s", formatCoord(endLon), formatCoord(endLat)))
	params.Set("format", "geojson")
	params.Set("instructions", "false")

	var fc featureCollection
	if err := c.get(ctx, "/v2/directions/"+mode, params, &fc); err != nil {
		return nil, err
	}
	if len(fc.Features) == 0 {
		return nil, ErrNoRoute
	}

	route := fc.Features[0]
	geometry, ok := route.Geometry.line()
	if !ok {
		return nil, &UpstreamError{Message: "malformed route geometry"}
	}
	return &RouteSummary{
		DurationSeconds: route.Properties.Summary.Duration,
		DistanceMeters:  route.Properties.Summary.Distance,
		Geometry:        geometry,
	}, nil
}

func (c *Client) geocode(ctx context.Context, path string, params url.Values) ([]Place, error) {
	var fc featureCollection
	if err := c.get(ctx, path, params, &fc); err != nil {
		return nil, err
	}

	places := make([]Place, 0, len(fc.Features))
	for _, f := range fc.Features {
		coords, ok := f.Geometry.point()
		if !ok {
			// Candidates without coordinates cannot become a destination.
			continue
		}
		places = append(places, Place{
			Label:     f.Properties.Label,
			Longitude: coords[0],
			Latitude:  coords[1],
		})
	}
	return places, nil
}

func (c *Client) get(ctx context.Context, path string, params url.Values, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.BaseURL+path+"?"+params.Encode(), nil)
	if err != nil {
		return err
	}

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return &UpstreamError{NoResponse: true, Err: err}
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return &UpstreamError{StatusCode: resp.StatusCode, Err: err}
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var apiErr struct {
			Error struct {
				Message string `json:"message"`
			} `json:"error"`
		}
		_ = json.Unmarshal(data, &apiErr)
		return &UpstreamError{StatusCode: resp.StatusCode, Message: apiErr.Error.Message}
	}

	if err := json.Unmarshal(data, out); err != nil {
		return &UpstreamError{StatusCode: resp.StatusCode, Message: "malformed response body", Err: err}
	}
	return nil
}

func formatCoord(v float64) string {
	return fmt.Sprintf("%g", v)
}
