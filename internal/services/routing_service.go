package services

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
	"sync"

	"github.com/CosmicTeamNYIT/COSMIC-v1.0/internal/models"
	"github.com/CosmicTeamNYIT/COSMIC-v1.0/pkg/ors"
)

// DefaultStartLocation is the fixed fallback start point used when no GPS
// fix is available.
var DefaultStartLocation = models.Point{
	Latitude:  40.7128,
	Longitude: -74.0060,
	Label:     "Default Location (e.g., New York City)",
}

// MetersPerMileFactor converts meters to miles.
const MetersPerMileFactor = 0.000621371

// Routing failure taxonomy.
var (
	ErrPermissionDenied       = errors.New("routing: permission to access location was denied")
	ErrLocationUnavailable    = errors.New("routing: could not get the current device location")
	ErrTransitNotImplemented  = errors.New("routing: public transit is not yet implemented")
	ErrInvalidEndpoints       = errors.New("routing: invalid destination or start location coordinates")
	ErrGeocodeRequired        = errors.New("routing: event has no stored coordinates; geocoding needed")
	ErrUnknownTravelMode      = errors.New("routing: unknown travel mode")
	ErrDestinationNotResolved = errors.New("routing: no geocode candidate was selected")
)

// RouteState is the routing workflow's current phase.
type RouteState string

const (
	StateNoDestination        RouteState = "no_destination"
	StateResolvingCoordinates RouteState = "resolving_coordinates"
	StateRoutePending         RouteState = "route_pending"
	StateRouteReady           RouteState = "route_ready"
	StateRouteError           RouteState = "route_error"
)

// RoutingClient is the slice of the routing provider the planner uses.
type RoutingClient interface {
	Autocomplete(ctx context.Context, text string, focusLat, focusLon float64) ([]ors.Place, error)
	Search(ctx context.Context, text string, pointLat, pointLon float64) ([]ors.Place, error)
	Directions(ctx context.Context, mode string, startLat, startLon, endLat, endLon float64) (*ors.RouteSummary, error)
}

// LocationSource yields the device's last-known position.
type LocationSource interface {
	Current(ctx context.Context) (lat, lon float64, err error)
}

// RouteSnapshot is the planner's externally visible state.
type RouteSnapshot struct {
	State             RouteState          `json:"state"`
	Start             *models.Point       `json:"start,omitempty"`
	UsingDefaultStart bool                `json:"usingDefaultStart"`
	Destination       *models.Point       `json:"destination,omitempty"`
	Mode              models.TravelMode   `json:"mode"`
	Result            *models.RouteResult `json:"result,omitempty"`
	Error             string              `json:"error,omitempty"`
	ErrorKind         string              `json:"errorKind,omitempty"`
}

// RoutePlanner drives one routing-resolution workflow instance: destination
// resolution, start-point selection, and automatic route recomputation
// whenever the (start, destination, mode) triple changes.
//
// Every directions request carries a monotonic sequence number; a response
// belonging to anything but the latest request is discarded, so a slow early
// request can never overwrite a faster later one.
type RoutePlanner struct {
	client RoutingClient

	mu           sync.Mutex
	state        RouteState
	start        *models.Point
	usingDefault bool
	destination  *models.Point
	pendingEvent *models.Event
	mode         models.TravelMode
	result       *models.RouteResult
	routeErr     error
	seq          uint64
}

// NewRoutePlanner creates a planner with no destination and the driving mode
// selected.
func NewRoutePlanner(client RoutingClient) *RoutePlanner {
	return &RoutePlanner{
		client: client,
		state:  StateNoDestination,
		mode:   models.ModeDriving,
	}
}

// Snapshot returns the planner's current state.
func (p *RoutePlanner) Snapshot() RouteSnapshot {
	p.mu.Lock()
	defer p.mu.Unlock()

	snap := RouteSnapshot{
		State:             p.state,
		Start:             p.start,
		UsingDefaultStart: p.usingDefault,
		Destination:       p.destination,
		Mode:              p.mode,
		Result:            p.result,
	}
	if p.routeErr != nil {
		snap.Error = p.routeErr.Error()
		snap.ErrorKind = ClassifyRouteError(p.routeErr)
	}
	return snap
}

// Autocomplete resolves free destination text into place candidates, biased
// toward the current start point (or the default location).
func (p *RoutePlanner) Autocomplete(ctx context.Context, text string) ([]ors.Place, error) {
	focus := p.focusPoint()
	return p.client.Autocomplete(ctx, text, focus.Latitude, focus.Longitude)
}

// SetStart selects an explicit start location, which takes priority over any
// GPS fix, and recomputes the route.
func (p *RoutePlanner) SetStart(ctx context.Context, start models.Point) {
	p.mu.Lock()
	p.start = &start
	p.usingDefault = false
	p.mu.Unlock()
	p.recompute(ctx)
}

// UseDeviceFix sets the start point from the device location source. On
// permission denial or an unavailable fix, the start falls back to the fixed
// default location and the returned error tells the caller to surface a
// warning; the fallback is always applied.
func (p *RoutePlanner) UseDeviceFix(ctx context.Context, src LocationSource) error {
	lat, lon, err := src.Current(ctx)

	p.mu.Lock()
	if err != nil {
		fallback := DefaultStartLocation
		p.start = &fallback
		p.usingDefault = true
	} else {
		p.start = &models.Point{
			Latitude:  lat,
			Longitude: lon,
			Label:     models.CoordLabel(lat, lon),
		}
		p.usingDefault = false
	}
	p.mu.Unlock()

	p.recompute(ctx)
	return err
}

// SetDestination selects a resolved destination point and recomputes the
// route. A degenerate {0,0} destination is refused.
func (p *RoutePlanner) SetDestination(ctx context.Context, dest models.Point) error {
	if dest.Degenerate() {
		return ErrInvalidEndpoints
	}
	p.mu.Lock()
	p.destination = &dest
	p.pendingEvent = nil
	p.mu.Unlock()
	p.recompute(ctx)
	return nil
}

// SelectEvent picks an event as the destination. Events with stored
// coordinates are used directly. An event with the {0,0} sentinel forces the
// re-geocode sub-flow: the planner enters the resolving-coordinates state,
// clears any stale route, and returns ErrGeocodeRequired; the caller must
// search candidates and choose one before a destination exists.
func (p *RoutePlanner) SelectEvent(ctx context.Context, event *models.Event) error {
	if event.HasCoordinates() {
		return p.SetDestination(ctx, models.Point{
			Latitude:  event.Latitude,
			Longitude: event.Longitude,
			Label:     eventLabel(event),
		})
	}

	p.mu.Lock()
	p.state = StateResolvingCoordinates
	p.pendingEvent = event
	p.destination = nil
	p.result = nil
	p.routeErr = nil
	p.mu.Unlock()
	return ErrGeocodeRequired
}

// GeocodeCandidates searches the stored location text of the event pending
// resolution (or any explicit text) and returns the candidates the user must
// choose from.
func (p *RoutePlanner) GeocodeCandidates(ctx context.Context, text string) ([]ors.Place, error) {
	if text == "" {
		p.mu.Lock()
		pending := p.pendingEvent
		p.mu.Unlock()
		if pending == nil {
			return nil, ErrDestinationNotResolved
		}
		text = pending.Location
		if text == "" {
			text = pending.Name
		}
	}
	focus := p.focusPoint()
	return p.client.Search(ctx, text, focus.Latitude, focus.Longitude)
}

// ChooseCandidate completes the re-geocode sub-flow with the user's explicit
// selection.
func (p *RoutePlanner) ChooseCandidate(ctx context.Context, place ors.Place) error {
	return p.SetDestination(ctx, models.Point{
		Latitude:  place.Latitude,
		Longitude: place.Longitude,
		Label:     place.Label,
	})
}

// ClearDestination drops the destination and any computed route.
func (p *RoutePlanner) ClearDestination() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.destination = nil
	p.pendingEvent = nil
	p.result = nil
	p.routeErr = nil
	p.state = StateNoDestination
}

// SetMode switches the travel mode and recomputes when a destination is set.
// The transit placeholder is refused with an explicit notice and the current
// mode stays selected; a mode change with no destination computes nothing.
func (p *RoutePlanner) SetMode(ctx context.Context, mode models.TravelMode) error {
	if mode == models.ModeTransit {
		return ErrTransitNotImplemented
	}
	if !models.ValidTravelMode(mode) {
		return ErrUnknownTravelMode
	}

	p.mu.Lock()
	p.mode = mode
	hasDestination := p.destination != nil && !p.destination.Degenerate()
	p.mu.Unlock()

	if hasDestination {
		p.recompute(ctx)
	}
	return nil
}

// recompute fires a directions request for the current triple. It runs in
// the caller's goroutine; the lock is released around the network call and
// the response is committed only if no newer request was dispatched since.
func (p *RoutePlanner) recompute(ctx context.Context) {
	p.mu.Lock()
	if p.destination == nil || p.destination.Degenerate() {
		p.result = nil
		p.routeErr = nil
		if p.pendingEvent == nil {
			p.state = StateNoDestination
		}
		p.mu.Unlock()
		return
	}

	start := p.start
	if start == nil {
		fallback := DefaultStartLocation
		start = &fallback
	}
	dest := *p.destination
	mode := p.mode

	p.seq++
	seq := p.seq
	p.state = StateRoutePending
	p.result = nil
	p.routeErr = nil
	p.mu.Unlock()

	summary, err := p.client.Directions(ctx, string(mode), start.Latitude, start.Longitude, dest.Latitude, dest.Longitude)

	p.mu.Lock()
	defer p.mu.Unlock()
	if seq != p.seq {
		// A newer request was dispatched while this one was in flight.
		return
	}
	if err != nil {
		p.state = StateRouteError
		p.routeErr = err
		p.result = nil
		return
	}
	result := ReduceRoute(summary)
	p.state = StateRouteReady
	p.result = &result
}

func (p *RoutePlanner) focusPoint() models.Point {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.start != nil {
		return *p.start
	}
	return DefaultStartLocation
}

// ReduceRoute converts a raw directions summary into display form: seconds
// rounded to the nearest whole minute, meters to miles at one decimal place,
// and the geometry swapped from (lon, lat) to (lat, lon).
func ReduceRoute(summary *ors.RouteSummary) models.RouteResult {
	polyline := make([]models.Point, len(summary.Geometry))
	for i, coord := range summary.Geometry {
		polyline[i] = models.Point{Latitude: coord[1], Longitude: coord[0]}
	}
	return models.RouteResult{
		DurationMinutes: int(math.Round(summary.DurationSeconds / 60)),
		DistanceMiles:   fmt.Sprintf("%.1f", summary.DistanceMeters*MetersPerMileFactor),
		Polyline:        polyline,
	}
}

// ClassifyRouteError maps a routing failure onto the surfaced taxonomy.
func ClassifyRouteError(err error) string {
	var upstream *ors.UpstreamError
	switch {
	case errors.Is(err, ErrPermissionDenied):
		return "permission_denied"
	case errors.Is(err, ErrLocationUnavailable):
		return "location_unavailable"
	case errors.Is(err, ErrTransitNotImplemented):
		return "transit_not_implemented"
	case errors.Is(err, ErrInvalidEndpoints):
		return "invalid_input"
	case errors.Is(err, ors.ErrNoRoute):
		return "no_route"
	case errors.As(err, &upstream):
		return "upstream"
	default:
		return "unknown"
	}
}

// SearchEvents filters events whose name or location contains the query,
// mirroring the merged place-and-event destination search.
func SearchEvents(query string, events []models.Event) []models.Event {
	query = strings.ToLower(strings.TrimSpace(query))
	if query == "" {
		return nil
	}
	var matches []models.Event
	for _, event := range events {
		if strings.Contains(strings.ToLower(event.Name), query) ||
			strings.Contains(strings.ToLower(event.Location), query) {
			matches = append(matches, event)
		}
	}
	return matches
}

func eventLabel(event *models.Event) string {
	if event.Location != "" {
		return event.Location
	}
	return event.Name
}
