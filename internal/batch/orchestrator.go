// Package batch runs the commute and mobility pipeline over a full set of
// housing listings.
package batch

import (
	"context"
	"encoding/json"
	"log/slog"
	"strings"
	"sync"

	"golang.org/x/sync/errgroup"

	"transitrank/internal/config"
	"transitrank/internal/listing"
	"transitrank/internal/mobility"
	"transitrank/internal/transit"
)

// CommuteEstimator computes an end-to-end commute estimate.
type CommuteEstimator interface {
	EstimateCommute(originLat, originLon, destLat, destLon float64) transit.CommuteResult
}

// MobilityScorer computes a composite walkability score for a coordinate.
type MobilityScorer interface {
	ScoreMobility(ctx context.Context, lat, lon float64, walkToStopMeters *float64) mobility.Score
}

// ResultCache persists per-coordinate results across runs. A nil cache
// disables persistence.
type ResultCache interface {
	GetCommute(ctx context.Context, lat, lon, destLat, destLon float64) (string, bool, error)
	PutCommute(ctx context.Context, lat, lon, destLat, destLon float64, result string) error
	GetMobility(ctx context.Context, lat, lon float64) (string, bool, error)
	PutMobility(ctx context.Context, lat, lon float64, result string) error
}

// Progress reports batch advancement after each geocoded row.
type Progress func(processed, total, cacheHits, newComputations int)

// Orchestrator enriches listings with commute and mobility data. The transit
// engine holds the feed store, so GTFS tables load once per process no matter
// how many rows run.
type Orchestrator struct {
	estimator CommuteEstimator
	scorer    MobilityScorer
	cache     ResultCache
	cfg       *config.Config
	logger    *slog.Logger
}

func New(estimator CommuteEstimator, scorer MobilityScorer, cache ResultCache, cfg *config.Config, logger *slog.Logger) *Orchestrator {
	return &Orchestrator{
		estimator: estimator,
		scorer:    scorer,
		cache:     cache,
		cfg:       cfg,
		logger:    logger,
	}
}

// commuteRecord is the cache payload for one commute. The nearest-stop fields
// are denormalized in so a cache hit can still fill the output columns.
type commuteRecord struct {
	transit.CommuteResult

	NearestStopName      *string  `json:"nearest_stop_name"`
	NearestStopDistanceM *float64 `json:"nearest_stop_distance_m"`
	FinalStopName        *string  `json:"final_stop_name"`
	FinalStopDistanceM   *float64 `json:"final_stop_distance_m"`
}

func newCommuteRecord(res transit.CommuteResult) commuteRecord {
	rec := commuteRecord{CommuteResult: res}
	if res.Origin != nil {
		rec.NearestStopName = &res.Origin.Stop.Name
		rec.NearestStopDistanceM = &res.Origin.DistanceM
	}
	if res.Destination != nil {
		rec.FinalStopName = &res.Destination.Stop.Name
		rec.FinalStopDistanceM = &res.Destination.DistanceM
	}
	return rec
}

// Run processes every listing and returns the rows in input order. Rows
// without coordinates pass through with empty result columns and do not count
// toward progress. Cancellation is checked per row, so a stopped run still
// returns cleanly between rows rather than mid-computation.
func (o *Orchestrator) Run(ctx context.Context, listings []listing.Listing, progress Progress) ([]listing.Enriched, error) {
	rows := make([]listing.Enriched, len(listings))
	total := len(listings)

	var mu sync.Mutex
	processed, cacheHits, newComputations := 0, 0, 0

	g, gctx := errgroup.WithContext(ctx)
	limit := o.cfg.ScorerConcurrency
	if limit < 1 {
		limit = 1
	}
	g.SetLimit(limit)

	for i := range listings {
		i := i
		l := listings[i]
		rows[i].Listing = l

		if !l.HasCoordinates() {
			o.logger.Debug("skipping listing without coordinates", "index", i, "address", l.Address)
			continue
		}

		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}

			rec, hit := o.commuteFor(gctx, *l.Lat, *l.Lon)
			score := o.mobilityFor(gctx, *l.Lat, *l.Lon, rec.NearestStopDistanceM)
			fillRow(&rows[i], rec, score)

			mu.Lock()
			processed++
			if hit {
				cacheHits++
			} else {
				newComputations++
			}
			p, h, n := processed, cacheHits, newComputations
			mu.Unlock()

			if progress != nil {
				progress(p, total, h, n)
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return rows, err
	}
	return rows, nil
}

// commuteFor returns the cached commute for a coordinate, computing and
// storing it on a miss. The second return reports whether the cache served it.
func (o *Orchestrator) commuteFor(ctx context.Context, lat, lon float64) (commuteRecord, bool) {
	destLat, destLon := o.cfg.DestinationLat, o.cfg.DestinationLon

	if o.cache != nil {
		payload, ok, err := o.cache.GetCommute(ctx, lat, lon, destLat, destLon)
		if err != nil {
			o.logger.Warn("commute cache lookup failed", "error", err)
		} else if ok {
			var rec commuteRecord
			if err := json.Unmarshal([]byte(payload), &rec); err == nil {
				return rec, true
			}
			o.logger.Warn("discarding unreadable commute cache row", "lat", lat, "lon", lon, "error", err)
		}
	}

	rec := newCommuteRecord(o.estimator.EstimateCommute(lat, lon, destLat, destLon))

	if o.cache != nil {
		payload, err := json.Marshal(rec)
		if err == nil {
			err = o.cache.PutCommute(ctx, lat, lon, destLat, destLon, string(payload))
		}
		if err != nil {
			o.logger.Warn("commute cache store failed", "error", err)
		}
	}
	return rec, false
}

func (o *Orchestrator) mobilityFor(ctx context.Context, lat, lon float64, walkToStopMeters *float64) mobility.Score {
	if o.cache != nil {
		payload, ok, err := o.cache.GetMobility(ctx, lat, lon)
		if err != nil {
			o.logger.Warn("mobility cache lookup failed", "error", err)
		} else if ok {
			var score mobility.Score
			if err := json.Unmarshal([]byte(payload), &score); err == nil {
				return score
			}
			o.logger.Warn("discarding unreadable mobility cache row", "lat", lat, "lon", lon, "error", err)
		}
	}

	score := o.scorer.ScoreMobility(ctx, lat, lon, walkToStopMeters)

	if o.cache != nil {
		payload, err := json.Marshal(score)
		if err == nil {
			err = o.cache.PutMobility(ctx, lat, lon, string(payload))
		}
		if err != nil {
			o.logger.Warn("mobility cache store failed", "error", err)
		}
	}
	return score
}

// fillRow maps a commute record and mobility score onto output columns.
func fillRow(row *listing.Enriched, rec commuteRecord, score mobility.Score) {
	row.NearestStopName = rec.NearestStopName
	row.NearestStopDistanceM = rec.NearestStopDistanceM
	row.FinalStopName = rec.FinalStopName
	row.FinalStopDistanceM = rec.FinalStopDistanceM

	if rec.NearestStopName != nil {
		walkTo := rec.WalkToStopMinutes
		row.WalkingTimeMinutes = &walkTo
	}
	if rec.FinalStopName != nil {
		walkFrom := rec.WalkFromStopMinutes
		row.WalkingFromStopMinutes = &walkFrom
	}
	row.TransitTimeMinutes = rec.TransitMinutes
	row.TotalCommuteMinutes = rec.TotalMinutes
	row.Transfers = rec.Transfers
	row.TransportModes = strings.Join(rec.Modes, ", ")
	if len(rec.Legs) > 0 {
		if payload, err := json.Marshal(rec.Legs); err == nil {
			row.RouteDetails = string(payload)
		}
	}

	row.Mobility = &score
}
