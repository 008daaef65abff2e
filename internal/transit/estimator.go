package transit

import (
	"transitrank/internal/geo"
)

// RouteLeg is one human-readable segment of an inferred journey.
type RouteLeg struct {
	Mode string `json:"mode"`
	Name string `json:"name"`
	From string `json:"from"`
	To   string `json:"to"`
}

// CommuteResult is one end-to-end commute estimate. Transit fields are nil
// when no transit estimate exists; TotalMinutes then degrades to the walking
// legs that could be computed. When all three components are present,
// TotalMinutes equals their sum.
type CommuteResult struct {
	Err string `json:"error,omitempty"` // empty when both stop lookups succeeded

	Origin      *NearestStopResult `json:"-"`
	Destination *NearestStopResult `json:"-"`

	WalkToStopMinutes   float64  `json:"walking_time_minutes"`
	TransitMinutes      *float64 `json:"transit_time_minutes"`
	WalkFromStopMinutes float64  `json:"walking_from_stop_minutes"`
	TotalMinutes        *float64 `json:"total_commute_minutes"`

	Transfers *int       `json:"transfers"`
	Modes     []string   `json:"modes"`
	Legs      []RouteLeg `json:"route_details"`
}

const errNoStops = "no transit stop within radius"

// EstimateCommute computes a full commute estimate between a residence and a
// destination. Missing data never fails the call: an unreachable endpoint
// yields a walking-only result with Err set.
func (e *Engine) EstimateCommute(originLat, originLon, destLat, destLon float64) CommuteResult {
	radius := e.cfg.StopRadiusMeters
	origin := e.FindNearestStop(originLat, originLon, radius)
	dest := e.FindNearestStop(destLat, destLon, radius)

	if origin == nil || dest == nil {
		return e.walkingOnlyResult(origin, dest)
	}

	walkTo := origin.DistanceM / e.cfg.WalkingSpeed()
	walkFrom := dest.DistanceM / e.cfg.WalkingSpeed()

	match := e.FindRoute(origin.Stop.ID, dest.Stop.ID)
	legs, modes := buildItinerary(match, origin.Stop.Name, dest.Stop.Name)

	transfers := 0
	if match != nil {
		transfers = match.Transfers()
	}

	var transit float64
	if match != nil && match.HasSchedule {
		transit = float64(match.ScheduledMinutes)
	} else {
		stopDist := geo.Haversine(origin.Stop.Lat, origin.Stop.Lon, dest.Stop.Lat, dest.Stop.Lon)
		transit = stopDist/e.cfg.TransitSpeed() + float64(transfers)*e.cfg.TransferPenaltyMin
	}

	total := walkTo + transit + walkFrom
	return CommuteResult{
		Origin:              origin,
		Destination:         dest,
		WalkToStopMinutes:   walkTo,
		TransitMinutes:      &transit,
		WalkFromStopMinutes: walkFrom,
		TotalMinutes:        &total,
		Transfers:           &transfers,
		Modes:               modes,
		Legs:                legs,
	}
}

// walkingOnlyResult covers the cases where one or both stop lookups failed.
func (e *Engine) walkingOnlyResult(origin, dest *NearestStopResult) CommuteResult {
	res := CommuteResult{Err: errNoStops, Origin: origin, Destination: dest}
	var total float64
	if origin != nil {
		res.WalkToStopMinutes = origin.DistanceM / e.cfg.WalkingSpeed()
		total += res.WalkToStopMinutes
	}
	if dest != nil {
		res.WalkFromStopMinutes = dest.DistanceM / e.cfg.WalkingSpeed()
		total += res.WalkFromStopMinutes
	}
	if origin != nil || dest != nil {
		res.TotalMinutes = &total
	}
	return res
}

// buildItinerary turns a route match into display legs and the ordered set of
// mode names used. A nil match gets the generic public-transport label so the
// journey is still presentable.
func buildItinerary(match *RouteMatch, fromName, toName string) ([]RouteLeg, []string) {
	if match == nil || len(match.Routes) == 0 {
		return nil, []string{"public_transport"}
	}

	var legs []RouteLeg
	switch match.Kind {
	case MatchDirectTrip, MatchSameRoute:
		r := match.Routes[0]
		legs = []RouteLeg{{Mode: string(r.Mode), Name: r.DisplayName, From: fromName, To: toName}}
	case MatchOneTransfer:
		r1, r2 := match.Routes[0], match.Routes[1]
		legs = []RouteLeg{
			{Mode: string(r1.Mode), Name: r1.DisplayName, From: fromName, To: "Transfer point 1"},
			{Mode: string(r2.Mode), Name: r2.DisplayName, From: "Transfer point 1", To: toName},
		}
	case MatchTwoTransfer:
		r1, r2 := match.Routes[0], match.Routes[1]
		legs = []RouteLeg{
			{Mode: string(r1.Mode), Name: r1.DisplayName, From: fromName, To: "Transfer point 1"},
		}
		if len(match.Routes) > 2 {
			r3 := match.Routes[2]
			legs = append(legs,
				RouteLeg{Mode: string(r2.Mode), Name: r2.DisplayName, From: "Transfer point 1", To: "Transfer point 2"},
				RouteLeg{Mode: string(r3.Mode), Name: r3.DisplayName, From: "Transfer point 2", To: toName},
			)
		} else {
			legs = append(legs,
				RouteLeg{Mode: string(r2.Mode), Name: r2.DisplayName, From: "Transfer point 1", To: toName},
			)
		}
	}

	var modes []string
	seen := make(map[string]bool)
	for _, leg := range legs {
		if !seen[leg.Mode] {
			seen[leg.Mode] = true
			modes = append(modes, leg.Mode)
		}
	}
	return legs, modes
}
