package ors

import "encoding/json"

// Place is one geocoding candidate: a display label plus its coordinates.
type Place struct {
	Label     string  `json:"label"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// RouteSummary is the raw directions result before display reduction:
// duration in seconds, distance in meters, and the route geometry exactly as
// the provider returns it, in (longitude, latitude) order.
type RouteSummary struct {
	DurationSeconds float64
	DistanceMeters  float64
	Geometry        [][2]float64
}

// geoJSON wire types shared by the geocode and directions endpoints. The
// geometry payload is a [lon,lat] point for geocoding and a [lon,lat] line
// for directions, so coordinates stay raw until the caller knows the shape.
type featureCollection struct {
	Features []feature `json:"features"`
}

type feature struct {
	Properties featureProperties `json:"properties"`
	Geometry   featureGeometry   `json:"geometry"`
}

type featureProperties struct {
	Label   string       `json:"label"`
	Summary routeSummary `json:"summary"`
}

type routeSummary struct {
	Duration float64 `json:"duration"`
	Distance float64 `json:"distance"`
}

type featureGeometry struct {
	Type        string          `json:"type"`
	Coordinates json.RawMessage `json:"coordinates"`
}

func (g featureGeometry) point() ([2]float64, bool) {
	var coords [2]float64
	if len(g.Coordinates) == 0 {
		return coords, false
	}
	if err := json.Unmarshal(g.Coordinates, &coords); err != nil {
		return coords, false
	}
	return coords, true
}

func (g featureGeometry) line() ([][2]float64, bool) {
	var coords [][2]float64
	if len(g.Coordinates) == 0 {
		return nil, false
	}
	if err := json.Unmarshal(g.Coordinates, &coords); err != nil {
		return nil, false
	}
	return coords, true
}
