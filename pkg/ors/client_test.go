package ors

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAutocomplete(t *testing.T) {
	var gotQuery map[string]string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/geocode/autocomplete", r.URL.Path)
		gotQuery = map[string]string{
			"api_key":         r.URL.Query().Get("api_key"),
			"text":            r.URL.Query().Get("text"),
			"focus.point.lat": r.URL.Query().Get("focus.point.lat"),
			"focus.point.lon": r.URL.Query().Get("focus.point.lon"),
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{
			"features": [
				{"properties": {"label": "Empire State Building, New York, NY"},
				 "geometry": {"type": "Point", "coordinates": [-73.9857, 40.7484]}},
				{"properties": {"label": "Nowhere"},
				 "geometry": {"type": "Point"}}
			]
		}`))
	}))
	defer server.Close()

	c := NewClient("test-key", server.URL)
	places, err := c.Autocomplete(context.Background(), "empire", 40.7128, -74.0060)
	require.NoError(t, err)

	assert.Equal(t, "test-key", gotQuery["api_key"])
	assert.Equal(t, "empire", gotQuery["text"])
	assert.Equal(t, "40.7128", gotQuery["focus.point.lat"])
	assert.Equal(t, "-74.006", gotQuery["focus.point.lon"])

	// The candidate without coordinates is dropped.
	require.Len(t, places, 1)
	assert.Equal(t, "Empire State Building, New York, NY", places[0].Label)
	assert.Equal(t, 40.7484, places[0].Latitude)
	assert.Equal(t, -73.9857, places[0].Longitude)
}

func TestSearch(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/geocode/search", r.URL.Path)
		assert.Equal(t, "40.7128", r.URL.Query().Get("point.lat"))
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"features": []}`))
	}))
	defer server.Close()

	c := NewClient("test-key", server.URL)
	places, err := c.Search(context.Background(), "central park", 40.7128, -74.0060)
	require.NoError(t, err)
	assert.Empty(t, places)
}

func TestDirections(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/v2/directions/driving-car", r.URL.Path)

		// Coordinates go over the wire as lon,lat.
		assert.Equal(t, "-74.006,40.7128", r.URL.Query().Get("start"))
		assert.Equal(t, "-73.9857,40.7484", r.URL.Query().Get("end"))
		assert.Equal(t, "geojson", r.URL.Query().Get("format"))

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{
			"features": [
				{"properties": {"summary": {"duration": 1250.5, "distance": 8046.7}},
				 "geometry": {"type": "LineString", "coordinates": [[-74.006, 40.7128], [-73.9857, 40.7484]]}}
			]
		}`))
	}))
	defer server.Close()

	c := NewClient("test-key", server.URL)
	summary, err := c.Directions(context.Background(), "driving-car", 40.7128, -74.0060, 40.7484, -73.9857)
	require.NoError(t, err)

	assert.Equal(t, 1250.5, summary.DurationSeconds)
	assert.Equal(t, 8046.7, summary.DistanceMeters)
	require.Len(t, summary.Geometry, 2)
	assert.Equal(t, [2]float64{-74.006, 40.7128}, summary.Geometry[0])
}

func TestDirectionsNoRoute(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"features": []}`))
	}))
	defer server.Close()

	c := NewClient("test-key", server.URL)
	_, err := c.Directions(context.Background(), "driving-car", 0, 0, 1, 1)
	assert.ErrorIs(t, err, ErrNoRoute)
}

func TestDirectionsUpstreamError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		w.Write([]byte(`{"error": {"message": "Quota exceeded"}}`))
	}))
	defer server.Close()

	c := NewClient("test-key", server.URL)
	_, err := c.Directions(context.Background(), "driving-car", 0, 0, 1, 1)

	var upstream *UpstreamError
	require.ErrorAs(t, err, &upstream)
	assert.Equal(t, http.StatusForbidden, upstream.StatusCode)
	assert.Contains(t, upstream.Error(), "Quota exceeded")
}

func TestDirectionsNoResponse(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	server.Close() // nothing listening

	c := NewClient("test-key", server.URL)
	_, err := c.Directions(context.Background(), "driving-car", 0, 0, 1, 1)

	var upstream *UpstreamError
	require.ErrorAs(t, err, &upstream)
	assert.True(t, upstream.NoResponse)
}

func TestUpstreamErrorMessagePrecedence(t *testing.T) {
	tests := []struct {
		name string
		err  *UpstreamError
		want string
	}{
		{"provider message", &UpstreamError{StatusCode: 403, Message: "Quota exceeded"}, "Quota exceeded"},
		{"status only", &UpstreamError{StatusCode: 502}, "502"},
		{"no response", &UpstreamError{NoResponse: true, Err: errors.New("dial tcp: refused")}, "no response"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Contains(t, tt.err.Error(), tt.want)
		})
	}
}
