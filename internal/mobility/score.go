package mobility

import (
	"context"
	"log/slog"
)

// POISummary holds per-category point-of-interest counts within the POI
// radius, with nearest distances for a subset of categories.
type POISummary struct {
	Grocery     int `json:"grocery_stores_500m"`
	Restaurants int `json:"restaurants_500m"`
	Cafes       int `json:"cafes_500m"`
	Gyms        int `json:"gyms_500m"`
	Pharmacies  int `json:"pharmacies_500m"`
	Banks       int `json:"banks_500m"`
	Libraries   int `json:"libraries_500m"`
	Bars        int `json:"bars_500m"`

	NearestGroceryM *float64 `json:"nearest_grocery_m"`
	NearestCafeM    *float64 `json:"nearest_cafe_m"`
	NearestGymM     *float64 `json:"nearest_gym_m"`
}

// Total returns the POI count across all categories.
func (p POISummary) Total() int {
	return p.Grocery + p.Restaurants + p.Cafes + p.Gyms +
		p.Pharmacies + p.Banks + p.Libraries + p.Bars
}

// BikeSummary holds cycling infrastructure found within the bike radius.
type BikeSummary struct {
	Lanes         int `json:"bike_lanes_1000m"`
	ShareStations int `json:"bike_share_stations_1000m"`

	NearestLaneM  *float64 `json:"nearest_bike_lane_m"`
	NearestShareM *float64 `json:"nearest_bike_share_m"`
}

// AccessibilityScore grades bike infrastructure 0-100 by proximity bands.
func (b BikeSummary) AccessibilityScore() int {
	score := 0
	if b.NearestLaneM != nil {
		switch d := *b.NearestLaneM; {
		case d <= 100:
			score += 40
		case d <= 300:
			score += 30
		case d <= 500:
			score += 20
		case d <= 1000:
			score += 10
		}
	}
	if b.NearestShareM != nil {
		switch d := *b.NearestShareM; {
		case d <= 200:
			score += 30
		case d <= 500:
			score += 20
		case d <= 1000:
			score += 10
		}
	}
	if score > 100 {
		score = 100
	}
	return score
}

// Score is the composite mobility result for one coordinate.
type Score struct {
	POI  POISummary  `json:"poi"`
	Bike BikeSummary `json:"bike"`

	BikeAccessibilityScore int     `json:"bike_accessibility_score"`
	POIDensityScore        int     `json:"poi_density_score"`
	EssentialServicesScore int     `json:"essential_services_score"`
	TransitProximityScore  int     `json:"transit_accessibility_score"`
	BikeContributionScore  float64 `json:"bike_contribution_score"`
	WalkabilityScore       int     `json:"walkability_score"`
}

// PoiSource answers point-of-interest queries around a coordinate.
type PoiSource interface {
	POIs(ctx context.Context, lat, lon, radiusMeters float64) (POISummary, error)
}

// BikeInfraSource answers cycling-infrastructure queries around a coordinate.
type BikeInfraSource interface {
	BikeInfra(ctx context.Context, lat, lon, radiusMeters float64) (BikeSummary, error)
}

// Scorer derives composite walkability scores from external POI and bike
// infrastructure sources. Source failures degrade to zero counts.
type Scorer struct {
	poi        PoiSource
	bike       BikeInfraSource
	poiRadius  float64
	bikeRadius float64
	logger     *slog.Logger
}

func NewScorer(poi PoiSource, bike BikeInfraSource, poiRadius, bikeRadius float64, logger *slog.Logger) *Scorer {
	return &Scorer{
		poi:        poi,
		bike:       bike,
		poiRadius:  poiRadius,
		bikeRadius: bikeRadius,
		logger:     logger,
	}
}

// ScoreMobility queries both sources and combines the results into a 0-100
// walkability score. walkToStopMeters is the walking distance to the nearest
// transit stop, nil when no stop was found.
func (s *Scorer) ScoreMobility(ctx context.Context, lat, lon float64, walkToStopMeters *float64) Score {
	poi, err := s.poi.POIs(ctx, lat, lon, s.poiRadius)
	if err != nil {
		s.logger.Warn("POI query failed, scoring with zero counts", "lat", lat, "lon", lon, "error", err)
		poi = POISummary{}
	}

	bike, err := s.bike.BikeInfra(ctx, lat, lon, s.bikeRadius)
	if err != nil {
		s.logger.Warn("bike infrastructure query failed, scoring with zero counts", "lat", lat, "lon", lon, "error", err)
		bike = BikeSummary{}
	}

	return Combine(poi, bike, walkToStopMeters)
}

// Combine folds POI, bike and transit-proximity inputs into the composite
// score. Pure; exposed so the batch path can reuse cached summaries.
func Combine(poi POISummary, bike BikeSummary, walkToStopMeters *float64) Score {
	sc := Score{
		POI:                    poi,
		Bike:                   bike,
		BikeAccessibilityScore: bike.AccessibilityScore(),
	}

	switch total := poi.Total(); {
	case total >= 20:
		sc.POIDensityScore = 40
	case total >= 15:
		sc.POIDensityScore = 35
	case total >= 10:
		sc.POIDensityScore = 30
	case total >= 5:
		sc.POIDensityScore = 20
	case total >= 3:
		sc.POIDensityScore = 10
	}

	switch {
	case poi.Grocery >= 2:
		sc.EssentialServicesScore += 10
	case poi.Grocery >= 1:
		sc.EssentialServicesScore += 5
	}
	if poi.Pharmacies >= 1 {
		sc.EssentialServicesScore += 5
	}
	if poi.Banks >= 1 {
		sc.EssentialServicesScore += 5
	}
	switch {
	case poi.Cafes >= 3:
		sc.EssentialServicesScore += 10
	case poi.Cafes >= 1:
		sc.EssentialServicesScore += 5
	}

	if walkToStopMeters != nil {
		switch d := *walkToStopMeters; {
		case d <= 200:
			sc.TransitProximityScore = 20
		case d <= 400:
			sc.TransitProximityScore = 15
		case d <= 600:
			sc.TransitProximityScore = 10
		case d <= 1000:
			sc.TransitProximityScore = 5
		}
	}

	sc.BikeContributionScore = float64(sc.BikeAccessibilityScore) / 10

	total := float64(sc.POIDensityScore+sc.EssentialServicesScore+sc.TransitProximityScore) + sc.BikeContributionScore
	if total > 100 {
		total = 100
	}
	if total < 0 {
		total = 0
	}
	sc.WalkabilityScore = int(total)
	return sc
}
