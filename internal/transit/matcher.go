package transit

import (
	"transitrank/internal/geo"
	"transitrank/internal/gtfs"
)

// twoTransferDistanceM is the stop-to-stop distance beyond which the fallback
// assumes a second transfer is needed.
const twoTransferDistanceM = 10_000

// MatchKind tags the journey shape the matcher inferred.
type MatchKind int

const (
	// MatchNone means no trip or route evidence connects the stops.
	MatchNone MatchKind = iota
	// MatchDirectTrip means one scheduled trip serves both stops in order.
	MatchDirectTrip
	// MatchSameRoute means a route serves both stops but no loaded trip
	// covers the pair; transfer-free by inference, not by schedule.
	MatchSameRoute
	// MatchOneTransfer is a synthesized two-leg itinerary.
	MatchOneTransfer
	// MatchTwoTransfer is a synthesized itinerary for far-apart stops.
	MatchTwoTransfer
)

// RouteMatch describes an inferred journey between two stops. Routes holds
// the route of each leg in order. ScheduledMinutes is only meaningful when
// HasSchedule is set (direct trips with parseable times). Everything below
// MatchDirectTrip is a heuristic estimate, not a guaranteed connection.
type RouteMatch struct {
	Kind             MatchKind
	Routes           []*gtfs.Route
	ScheduledMinutes int
	HasSchedule      bool
}

// Transfers returns the number of vehicle changes the match implies.
func (m *RouteMatch) Transfers() int {
	switch m.Kind {
	case MatchOneTransfer:
		return 1
	case MatchTwoTransfer:
		return 2
	default:
		return 0
	}
}

// FindRoute finds a scheduled trip serving both stops in order, preferring
// the smallest scheduled elapsed time. When no direct trip exists in the
// loaded stop-times prefix it falls back to route-overlap heuristics.
// Returns nil when neither stop has any route evidence.
func (e *Engine) FindRoute(fromStopID, toStopID string) *RouteMatch {
	if m := e.matchDirectTrip(fromStopID, toStopID); m != nil {
		return m
	}
	return e.matchByRouteOverlap(fromStopID, toStopID)
}

// matchDirectTrip scans every loaded trip visiting the origin stop and keeps
// the one that also visits the destination at a later sequence with the
// smallest elapsed time. Trips with unparsable times are excluded.
func (e *Engine) matchDirectTrip(fromStopID, toStopID string) *RouteMatch {
	bestMinutes := -1
	var bestRoute *gtfs.Route

	for _, dep := range e.store.StopTimesAt(fromStopID) {
		arr, ok := e.store.StopTimeOnTrip(dep.TripID, toStopID)
		if !ok || dep.Sequence >= arr.Sequence {
			continue
		}
		minutes, ok := gtfs.TripDuration(dep.Departure, arr.Arrival)
		if !ok {
			continue
		}
		routeID, ok := e.store.TripRoute(dep.TripID)
		if !ok {
			continue
		}
		route, ok := e.store.RouteByID(routeID)
		if !ok || route.DisplayName == "" {
			continue
		}
		if bestMinutes < 0 || minutes < bestMinutes {
			bestMinutes = minutes
			bestRoute = route
		}
	}

	if bestRoute == nil {
		return nil
	}
	return &RouteMatch{
		Kind:             MatchDirectTrip,
		Routes:           []*gtfs.Route{bestRoute},
		ScheduledMinutes: bestMinutes,
		HasSchedule:      true,
	}
}

// matchByRouteOverlap synthesizes an itinerary from the routes serving each
// stop independently. A shared route id means transfer-free; otherwise one
// leg per endpoint with a transfer between them, escalating to two transfers
// when the stops are more than 10 km apart.
func (e *Engine) matchByRouteOverlap(fromStopID, toStopID string) *RouteMatch {
	fromRoutes := e.store.RoutesAtStop(fromStopID, 10)
	toRoutes := e.store.RoutesAtStop(toStopID, 10)

	switch {
	case len(fromRoutes) == 0 && len(toRoutes) == 0:
		return nil
	case len(fromRoutes) == 0:
		return &RouteMatch{Kind: MatchSameRoute, Routes: toRoutes[:1]}
	case len(toRoutes) == 0:
		return &RouteMatch{Kind: MatchSameRoute, Routes: fromRoutes[:1]}
	}

	for _, fr := range fromRoutes {
		for _, tr := range toRoutes {
			if fr.ID == tr.ID {
				return &RouteMatch{Kind: MatchSameRoute, Routes: []*gtfs.Route{fr}}
			}
		}
	}

	first := fromRoutes[0]
	second := toRoutes[0]

	if e.stopDistance(fromStopID, toStopID) > twoTransferDistanceM {
		legs := []*gtfs.Route{first, second}
		// try a third leg on a secondary route at the destination
		for _, tr := range toRoutes[1:] {
			if tr.ID != second.ID {
				legs = append(legs, tr)
				break
			}
		}
		return &RouteMatch{Kind: MatchTwoTransfer, Routes: legs}
	}

	return &RouteMatch{Kind: MatchOneTransfer, Routes: []*gtfs.Route{first, second}}
}

func (e *Engine) stopDistance(fromStopID, toStopID string) float64 {
	from, ok1 := e.store.StopByID(fromStopID)
	to, ok2 := e.store.StopByID(toStopID)
	if !ok1 || !ok2 {
		return 0
	}
	return geo.Haversine(from.Lat, from.Lon, to.Lat, to.Lon)
}
