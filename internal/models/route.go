package models

import "fmt"

// TravelMode selects the routing profile sent to the directions API.
type TravelMode string

const (
	ModeDriving TravelMode = "driving-car"
	ModeWalking TravelMode = "foot-walking"
	// ModeTransit is a placeholder. Selecting it never triggers a route
	// computation; callers get an explicit not-implemented notice.
	ModeTransit TravelMode = "public-transit"
)

// TravelModes lists the selectable modes in display order.
var TravelModes = []TravelMode{ModeDriving, ModeWalking, ModeTransit}

// ValidTravelMode reports whether m is a known mode.
func ValidTravelMode(m TravelMode) bool {
	for _, v := range TravelModes {
		if v == m {
			return true
		}
	}
	return false
}

// Point is a coordinate plus a display label.
type Point struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	Label     string  `json:"label"`
}

// Degenerate reports whether the point carries the {0,0} sentinel that marks
// an unresolved location.
func (p Point) Degenerate() bool {
	return p.Latitude == 0 && p.Longitude == 0
}

// CoordLabel formats a bare coordinate pair the way the start-location field
// displays a GPS fix.
func CoordLabel(lat, lon float64) string {
	return fmt.Sprintf("%.4f, %.4f", lat, lon)
}

// RouteResult is the reduced directions response: whole minutes, miles to one
// decimal, and the route geometry in (latitude, longitude) order. It is
// ephemeral and recomputed whenever start, destination, or mode changes.
type RouteResult struct {
	DurationMinutes int     `json:"durationMinutes"`
	DistanceMiles   string  `json:"distanceMiles"`
	Polyline        []Point `json:"polyline"`
}
