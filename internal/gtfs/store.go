package gtfs

import (
	"log/slog"
	"path/filepath"
	"strconv"
	"strings"
	"sync"

	"transitrank/internal/config"
)

// Store loads and indexes the static schedule tables. Each table is read from
// disk at most once per Store; a missing or malformed file leaves its table
// empty so lookups degrade to "no data" instead of failing. All tables are
// read-only after load and safe for concurrent readers.
type Store struct {
	dir            string
	bounds         config.Bounds
	stopTimesLimit int
	logger         *slog.Logger

	stopsOnce sync.Once
	stops     []Stop
	stopIdx   map[string]int

	routesOnce sync.Once
	routes     map[string]*Route

	tripsOnce sync.Once
	tripRoute map[string]string

	stopTimesOnce sync.Once
	stopTimes     []StopTime
	byStop        map[string][]int
	byTripStop    map[tripStopKey]int
}

type tripStopKey struct {
	tripID string
	stopID string
}

// NewStore creates a feed store over the GTFS directory. Nothing is read
// until the first lookup.
func NewStore(dir string, bounds config.Bounds, stopTimesLimit int, logger *slog.Logger) *Store {
	return &Store{
		dir:            dir,
		bounds:         bounds,
		stopTimesLimit: stopTimesLimit,
		logger:         logger,
	}
}

// Stops returns all feed stops inside the configured bounding box.
func (s *Store) Stops() []Stop {
	s.stopsOnce.Do(s.loadStops)
	return s.stops
}

// StopByID looks up a stop by its feed identifier.
func (s *Store) StopByID(id string) (Stop, bool) {
	s.stopsOnce.Do(s.loadStops)
	i, ok := s.stopIdx[id]
	if !ok {
		return Stop{}, false
	}
	return s.stops[i], true
}

// RouteByID looks up a route with its derived display metadata.
func (s *Store) RouteByID(id string) (*Route, bool) {
	s.routesOnce.Do(s.loadRoutes)
	r, ok := s.routes[id]
	return r, ok
}

// TripRoute returns the route id a trip belongs to.
func (s *Store) TripRoute(tripID string) (string, bool) {
	s.tripsOnce.Do(s.loadTrips)
	r, ok := s.tripRoute[tripID]
	return r, ok
}

// StopTimesAt returns every loaded stop-time row at the given stop. Coverage
// is bounded by the stop-times row cap; callers must tolerate trips missing
// from the prefix.
func (s *Store) StopTimesAt(stopID string) []StopTime {
	s.stopTimesOnce.Do(s.loadStopTimes)
	idxs := s.byStop[stopID]
	if len(idxs) == 0 {
		return nil
	}
	out := make([]StopTime, len(idxs))
	for i, idx := range idxs {
		out[i] = s.stopTimes[idx]
	}
	return out
}

// StopTimeOnTrip returns the first loaded visit of a trip at a stop.
func (s *Store) StopTimeOnTrip(tripID, stopID string) (StopTime, bool) {
	s.stopTimesOnce.Do(s.loadStopTimes)
	idx, ok := s.byTripStop[tripStopKey{tripID, stopID}]
	if !ok {
		return StopTime{}, false
	}
	return s.stopTimes[idx], true
}

// RoutesAtStop returns up to max distinct named routes serving a stop,
// in first-encountered order. Routes without a display name are skipped.
func (s *Store) RoutesAtStop(stopID string, max int) []*Route {
	var out []*Route
	seen := make(map[string]bool)
	for _, st := range s.StopTimesAt(stopID) {
		routeID, ok := s.TripRoute(st.TripID)
		if !ok || seen[routeID] {
			continue
		}
		seen[routeID] = true
		route, ok := s.RouteByID(routeID)
		if !ok || route.DisplayName == "" {
			continue
		}
		out = append(out, route)
		if len(out) >= max {
			break
		}
	}
	return out
}

func (s *Store) loadStops() {
	records, err := parseFile[stopRecord](
		filepath.Join(s.dir, "stops.txt"),
		[]string{"stop_id", "stop_name", "stop_lat", "stop_lon"},
		0,
	)
	if err != nil {
		s.logger.Warn("stops table unavailable", "error", err)
		s.stopIdx = map[string]int{}
		return
	}

	s.stopIdx = make(map[string]int, len(records))
	for _, rec := range records {
		lat, err1 := strconv.ParseFloat(rec.StopLat, 64)
		lon, err2 := strconv.ParseFloat(rec.StopLon, 64)
		if err1 != nil || err2 != nil {
			continue
		}
		if !s.bounds.Contains(lat, lon) {
			continue
		}
		if _, dup := s.stopIdx[rec.StopID]; dup {
			continue
		}
		s.stopIdx[rec.StopID] = len(s.stops)
		s.stops = append(s.stops, Stop{
			ID:   rec.StopID,
			Name: rec.StopName,
			Lat:  lat,
			Lon:  lon,
		})
	}
	s.logger.Info("GTFS stops loaded", "total", len(records), "in_bounds", len(s.stops))
}

func (s *Store) loadRoutes() {
	s.routes = map[string]*Route{}
	records, err := parseFile[routeRecord](
		filepath.Join(s.dir, "routes.txt"),
		[]string{"route_id"},
		0,
	)
	if err != nil {
		s.logger.Warn("routes table unavailable", "error", err)
		return
	}

	for _, rec := range records {
		typeCode := 3
		if n, err := strconv.Atoi(strings.TrimSpace(rec.RouteType)); err == nil {
			typeCode = n
		}
		short := strings.TrimSpace(rec.RouteShortName)
		long := strings.TrimSpace(rec.RouteLongName)
		display := short
		if display == "" {
			display = long
		}
		s.routes[rec.RouteID] = &Route{
			ID:          rec.RouteID,
			ShortName:   short,
			LongName:    long,
			Mode:        DetectMode(display, typeCode),
			TypeCode:    typeCode,
			Color:       rec.RouteColor,
			TextColor:   rec.RouteTextColor,
			DisplayName: display,
		}
	}
	s.logger.Info("GTFS routes loaded", "routes", len(s.routes))
}

func (s *Store) loadTrips() {
	s.tripRoute = map[string]string{}
	records, err := parseFile[tripRecord](
		filepath.Join(s.dir, "trips.txt"),
		[]string{"trip_id", "route_id"},
		0,
	)
	if err != nil {
		s.logger.Warn("trips table unavailable", "error", err)
		return
	}
	for _, rec := range records {
		s.tripRoute[rec.TripID] = rec.RouteID
	}
	s.logger.Info("GTFS trips loaded", "trips", len(s.tripRoute))
}

func (s *Store) loadStopTimes() {
	s.byStop = map[string][]int{}
	s.byTripStop = map[tripStopKey]int{}
	records, err := parseFile[stopTimeRecord](
		filepath.Join(s.dir, "stop_times.txt"),
		[]string{"trip_id", "stop_id", "stop_sequence", "arrival_time", "departure_time"},
		s.stopTimesLimit,
	)
	if err != nil {
		s.logger.Warn("stop_times table unavailable", "error", err)
		return
	}

	for _, rec := range records {
		seq, err := strconv.Atoi(strings.TrimSpace(rec.StopSequence))
		if err != nil {
			continue
		}
		idx := len(s.stopTimes)
		s.stopTimes = append(s.stopTimes, StopTime{
			TripID:    rec.TripID,
			StopID:    rec.StopID,
			Sequence:  seq,
			Arrival:   rec.ArrivalTime,
			Departure: rec.DepartureTime,
		})
		s.byStop[rec.StopID] = append(s.byStop[rec.StopID], idx)
		key := tripStopKey{rec.TripID, rec.StopID}
		if _, dup := s.byTripStop[key]; !dup {
			s.byTripStop[key] = idx
		}
	}
	s.logger.Info("GTFS stop_times loaded",
		"rows", len(s.stopTimes),
		"capped", s.stopTimesLimit > 0 && len(records) == s.stopTimesLimit,
	)
}
