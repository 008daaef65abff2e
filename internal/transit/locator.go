package transit

import (
	"log/slog"

	"transitrank/internal/config"
	"transitrank/internal/geo"
	"transitrank/internal/gtfs"
)

// NearestStopResult is one nearest-stop lookup hit. Computed per query and
// never cached here; callers may cache by coordinate key.
type NearestStopResult struct {
	Stop      gtfs.Stop
	DistanceM float64
}

// Engine answers nearest-stop, route-match and commute queries over a loaded
// feed store. All lookups are pure in-memory computation and safe to run
// concurrently once the store has loaded.
type Engine struct {
	store  *gtfs.Store
	cfg    *config.Config
	logger *slog.Logger
}

func NewEngine(store *gtfs.Store, cfg *config.Config, logger *slog.Logger) *Engine {
	return &Engine{store: store, cfg: cfg, logger: logger}
}

// FindNearestStop returns the closest feed stop within radiusMeters of the
// point, or nil when none is in range. A cheap rectangular prefilter using
// fixed regional degree conversions cuts the candidate set before the exact
// haversine pass; ties go to the first minimum in feed order.
func (e *Engine) FindNearestStop(lat, lon, radiusMeters float64) *NearestStopResult {
	latDeg, lonDeg := geo.DegreeOffsets(radiusMeters, e.cfg.MetersPerLatDegree, e.cfg.MetersPerLonDegree)

	var best *NearestStopResult
	for _, stop := range e.store.Stops() {
		if stop.Lat < lat-latDeg || stop.Lat > lat+latDeg ||
			stop.Lon < lon-lonDeg || stop.Lon > lon+lonDeg {
			continue
		}
		d := geo.Haversine(lat, lon, stop.Lat, stop.Lon)
		if d > radiusMeters {
			continue
		}
		if best == nil || d < best.DistanceM {
			best = &NearestStopResult{Stop: stop, DistanceM: d}
		}
	}
	return best
}
