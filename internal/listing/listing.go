// Package listing reads housing listing CSVs and writes them back out
// enriched with commute and mobility columns.
package listing

import (
	"encoding/csv"
	"fmt"
	"os"
	"strconv"
	"strings"

	"transitrank/internal/mobility"
)

// Listing is one housing listing row. Lat, Lon and Rent are nil when the
// source column is absent or unparsable.
type Listing struct {
	Address  string
	District string
	Provider string
	Rent     *float64
	Lat      *float64
	Lon      *float64
}

// HasCoordinates reports whether the listing can be geoprocessed.
func (l Listing) HasCoordinates() bool {
	return l.Lat != nil && l.Lon != nil
}

// Enriched is a listing with the computed commute and mobility columns
// attached. Nil pointer fields serialize as empty cells.
type Enriched struct {
	Listing

	NearestStopName        *string
	NearestStopDistanceM   *float64
	WalkingTimeMinutes     *float64
	FinalStopName          *string
	FinalStopDistanceM     *float64
	WalkingFromStopMinutes *float64
	TransitTimeMinutes     *float64
	TotalCommuteMinutes    *float64
	Transfers              *int
	TransportModes         string
	RouteDetails           string

	Mobility *mobility.Score
}

// Column aliases accepted in listing CSV headers. Real scraped datasets name
// the same column differently per provider.
var columnAliases = map[string][]string{
	"address":  {"address", "title", "name", "street"},
	"district": {"district", "neighborhood", "area", "bezirk"},
	"provider": {"provider", "source", "portal"},
	"rent":     {"rent", "price", "cost", "miete", "warmmiete"},
	"lat":      {"latitude", "lat"},
	"lon":      {"longitude", "lon", "lng"},
}

// ReadFile loads listings from a CSV file. Header matching is
// case-insensitive and alias-aware; rows with unparsable coordinates keep
// nil Lat/Lon rather than being dropped.
func ReadFile(path string) ([]Listing, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open listings: %w", err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1

	records, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read listings: %w", err)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("listings file %s is empty", path)
	}

	idx := mapColumns(records[0])
	if _, ok := idx["lat"]; !ok {
		return nil, fmt.Errorf("listings file %s has no latitude column", path)
	}
	if _, ok := idx["lon"]; !ok {
		return nil, fmt.Errorf("listings file %s has no longitude column", path)
	}

	listings := make([]Listing, 0, len(records)-1)
	for _, rec := range records[1:] {
		l := Listing{
			Address:  field(rec, idx, "address"),
			District: field(rec, idx, "district"),
			Provider: field(rec, idx, "provider"),
			Rent:     parseRent(field(rec, idx, "rent")),
			Lat:      parseFloat(field(rec, idx, "lat")),
			Lon:      parseFloat(field(rec, idx, "lon")),
		}
		listings = append(listings, l)
	}
	return listings, nil
}

func mapColumns(header []string) map[string]int {
	idx := make(map[string]int)
	for i, col := range header {
		name := strings.ToLower(strings.TrimSpace(strings.TrimPrefix(col, "\ufeff")))
		for canonical, aliases := range columnAliases {
			if _, taken := idx[canonical]; taken {
				continue
			}
			for _, alias := range aliases {
				if name == alias || strings.Contains(name, alias) {
					idx[canonical] = i
					break
				}
			}
		}
	}
	return idx
}

func field(rec []string, idx map[string]int, name string) string {
	i, ok := idx[name]
	if !ok || i >= len(rec) {
		return ""
	}
	return strings.TrimSpace(rec[i])
}

func parseFloat(s string) *float64 {
	if s == "" {
		return nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil
	}
	return &v
}

// parseRent strips currency decoration before parsing. Scraped rent cells
// look like "650 €", "EUR 720", or "1.050,50".
func parseRent(s string) *float64 {
	for _, junk := range []string{"€", "EUR", "eur", "Euro", "euro"} {
		s = strings.ReplaceAll(s, junk, "")
	}
	s = strings.TrimSpace(s)
	if strings.Contains(s, ",") {
		// German decimal comma; dots before it are thousands separators.
		s = strings.ReplaceAll(s, ".", "")
		s = strings.ReplaceAll(s, ",", ".")
	}
	var clean strings.Builder
	for _, r := range s {
		if (r >= '0' && r <= '9') || r == '.' {
			clean.WriteRune(r)
		}
	}
	return parseFloat(clean.String())
}

var outputHeader = []string{
	"address", "district", "provider", "rent", "latitude", "longitude",
	"nearest_stop_name", "nearest_stop_distance_m", "walking_time_minutes",
	"final_stop_name", "final_stop_distance_m", "walking_from_stop_minutes",
	"transit_time_minutes", "total_commute_minutes", "transfers",
	"transport_modes", "route_details",
	"grocery_stores_500m", "restaurants_500m", "cafes_500m", "gyms_500m",
	"pharmacies_500m", "banks_500m", "libraries_500m", "bars_500m",
	"total_pois_500m",
	"nearest_grocery_m", "nearest_cafe_m", "nearest_gym_m",
	"bike_lanes_1000m", "bike_share_stations_1000m",
	"nearest_bike_lane_m", "nearest_bike_share_m",
	"poi_density_score", "essential_services_score",
	"transit_accessibility_score", "bike_contribution_score",
	"bike_accessibility_score", "walkability_score",
}

// WriteFile writes enriched listings to a CSV file with a fixed column set.
func WriteFile(path string, rows []Enriched) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create output: %w", err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(outputHeader); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	for _, row := range rows {
		if err := w.Write(row.record()); err != nil {
			return fmt.Errorf("write row: %w", err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("flush output: %w", err)
	}
	return nil
}

func (e Enriched) record() []string {
	rec := []string{
		e.Address,
		e.District,
		e.Provider,
		fmtFloatPtr(e.Rent),
		fmtFloatPtr(e.Lat),
		fmtFloatPtr(e.Lon),
		strPtr(e.NearestStopName),
		fmtFloatPtr(e.NearestStopDistanceM),
		fmtFloatPtr(e.WalkingTimeMinutes),
		strPtr(e.FinalStopName),
		fmtFloatPtr(e.FinalStopDistanceM),
		fmtFloatPtr(e.WalkingFromStopMinutes),
		fmtFloatPtr(e.TransitTimeMinutes),
		fmtFloatPtr(e.TotalCommuteMinutes),
		fmtIntPtr(e.Transfers),
		e.TransportModes,
		e.RouteDetails,
	}
	return append(rec, mobilityCells(e.Mobility)...)
}

// mobilityCells serializes the 22 mobility columns, all empty when the row
// was never scored.
func mobilityCells(m *mobility.Score) []string {
	if m == nil {
		return make([]string, 22)
	}
	return []string{
		strconv.Itoa(m.POI.Grocery),
		strconv.Itoa(m.POI.Restaurants),
		strconv.Itoa(m.POI.Cafes),
		strconv.Itoa(m.POI.Gyms),
		strconv.Itoa(m.POI.Pharmacies),
		strconv.Itoa(m.POI.Banks),
		strconv.Itoa(m.POI.Libraries),
		strconv.Itoa(m.POI.Bars),
		strconv.Itoa(m.POI.Total()),
		fmtFloatPtr(m.POI.NearestGroceryM),
		fmtFloatPtr(m.POI.NearestCafeM),
		fmtFloatPtr(m.POI.NearestGymM),
		strconv.Itoa(m.Bike.Lanes),
		strconv.Itoa(m.Bike.ShareStations),
		fmtFloatPtr(m.Bike.NearestLaneM),
		fmtFloatPtr(m.Bike.NearestShareM),
		strconv.Itoa(m.POIDensityScore),
		strconv.Itoa(m.EssentialServicesScore),
		strconv.Itoa(m.TransitProximityScore),
		strconv.FormatFloat(m.BikeContributionScore, 'f', -1, 64),
		strconv.Itoa(m.BikeAccessibilityScore),
		strconv.Itoa(m.WalkabilityScore),
	}
}

func strPtr(p *string) string {
	if p == nil {
		return ""
	}
	return *p
}

func fmtFloatPtr(p *float64) string {
	if p == nil {
		return ""
	}
	return strconv.FormatFloat(*p, 'f', -1, 64)
}

func fmtIntPtr(p *int) string {
	if p == nil {
		return ""
	}
	return strconv.Itoa(*p)
}
