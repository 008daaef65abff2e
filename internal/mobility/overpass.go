package mobility

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"transitrank/internal/geo"
)

// OverpassClient queries the Overpass API (OpenStreetMap data) for POIs and
// cycling infrastructure. Requests are rate-limited to respect the service's
// fair-use policy and results are cached in memory per coordinate.
type OverpassClient struct {
	baseURL    string
	userAgent  string
	httpClient *http.Client
	limiter    *rate.Limiter
	cache      *queryCache
}

// NewOverpassClient creates a client with a politeness delay between calls.
// userAgent identifies the application per the API usage policy.
func NewOverpassClient(baseURL, userAgent string, delay time.Duration) *OverpassClient {
	limit := rate.Inf
	if delay > 0 {
		limit = rate.Every(delay)
	}
	return &OverpassClient{
		baseURL:    baseURL,
		userAgent:  userAgent,
		httpClient: &http.Client{Timeout: 30 * time.Second},
		limiter:    rate.NewLimiter(limit, 1),
		cache:      newQueryCache(15 * time.Minute),
	}
}

var _ PoiSource = (*OverpassClient)(nil)
var _ BikeInfraSource = (*OverpassClient)(nil)

// POIs counts amenities of the eight tracked categories around the point.
func (c *OverpassClient) POIs(ctx context.Context, lat, lon, radiusMeters float64) (POISummary, error) {
	key := fmt.Sprintf("poi:%.6f:%.6f:%.0f", lat, lon, radiusMeters)
	if cached, ok := c.cache.get(key); ok {
		return cached.(POISummary), nil
	}

	elements, err := c.query(ctx, poiQuery(lat, lon, radiusMeters))
	if err != nil {
		return POISummary{}, err
	}

	var summary POISummary
	var grocery, cafe, gym []float64
	for _, el := range elements {
		elLat, elLon, ok := el.coordinates()
		if !ok {
			continue
		}
		d := geo.Haversine(lat, lon, elLat, elLon)
		switch {
		case el.Tags["shop"] == "supermarket":
			summary.Grocery++
			grocery = append(grocery, d)
		case el.Tags["amenity"] == "restaurant":
			summary.Restaurants++
		case el.Tags["amenity"] == "cafe":
			summary.Cafes++
			cafe = append(cafe, d)
		case el.Tags["leisure"] == "fitness_centre", el.Tags["amenity"] == "gym":
			summary.Gyms++
			gym = append(gym, d)
		case el.Tags["amenity"] == "pharmacy":
			summary.Pharmacies++
		case el.Tags["amenity"] == "bank":
			summary.Banks++
		case el.Tags["amenity"] == "library":
			summary.Libraries++
		case el.Tags["amenity"] == "bar":
			summary.Bars++
		}
	}
	summary.NearestGroceryM = minDistance(grocery)
	summary.NearestCafeM = minDistance(cafe)
	summary.NearestGymM = minDistance(gym)

	c.cache.set(key, summary)
	return summary, nil
}

// BikeInfra counts bike lanes and bike-share stations around the point.
func (c *OverpassClient) BikeInfra(ctx context.Context, lat, lon, radiusMeters float64) (BikeSummary, error) {
	key := fmt.Sprintf("bike:%.6f:%.6f:%.0f", lat, lon, radiusMeters)
	if cached, ok := c.cache.get(key); ok {
		return cached.(BikeSummary), nil
	}

	elements, err := c.query(ctx, bikeQuery(lat, lon, radiusMeters))
	if err != nil {
		return BikeSummary{}, err
	}

	var summary BikeSummary
	var lanes, stations []float64
	for _, el := range elements {
		elLat, elLon, ok := el.coordinates()
		if !ok {
			continue
		}
		d := geo.Haversine(lat, lon, elLat, elLon)
		switch {
		case el.Type == "way" && (el.Tags["highway"] == "cycleway" ||
			el.Tags["cycleway"] != "" || el.Tags["bicycle"] == "designated"):
			summary.Lanes++
			lanes = append(lanes, d)
		case el.Tags["amenity"] == "bicycle_rental":
			summary.ShareStations++
			stations = append(stations, d)
		}
	}
	summary.NearestLaneM = minDistance(lanes)
	summary.NearestShareM = minDistance(stations)

	c.cache.set(key, summary)
	return summary, nil
}

type overpassElement struct {
	Type   string            `json:"type"`
	Lat    float64           `json:"lat"`
	Lon    float64           `json:"lon"`
	Center *overpassCenter   `json:"center"`
	Tags   map[string]string `json:"tags"`
}

type overpassCenter struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// coordinates returns the element's point, preferring the node position and
// falling back to a way/relation center.
func (el overpassElement) coordinates() (lat, lon float64, ok bool) {
	if el.Lat != 0 || el.Lon != 0 {
		return el.Lat, el.Lon, true
	}
	if el.Center != nil {
		return el.Center.Lat, el.Center.Lon, true
	}
	return 0, 0, false
}

func (c *OverpassClient) query(ctx context.Context, ql string) ([]overpassElement, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	form := url.Values{"data": {ql}}.Encode()
	req, err := http.NewRequestWithContext(ctx, "POST", c.baseURL, strings.NewReader(form))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("overpass request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("overpass status %d", resp.StatusCode)
	}

	var result struct {
		Elements []overpassElement `json:"elements"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("overpass decode: %w", err)
	}
	return result.Elements, nil
}

func poiQuery(lat, lon, radius float64) string {
	var b strings.Builder
	b.WriteString("[out:json][timeout:25];\n(\n")
	fmt.Fprintf(&b, "  node[\"shop\"=\"supermarket\"](around:%.0f,%f,%f);\n", radius, lat, lon)
	fmt.Fprintf(&b, "  way[\"shop\"=\"supermarket\"](around:%.0f,%f,%f);\n", radius, lat, lon)
	for _, amenity := range []string{"restaurant", "cafe", "pharmacy", "bank", "library", "bar", "gym"} {
		fmt.Fprintf(&b, "  node[\"amenity\"=%q](around:%.0f,%f,%f);\n", amenity, radius, lat, lon)
		fmt.Fprintf(&b, "  way[\"amenity\"=%q](around:%.0f,%f,%f);\n", amenity, radius, lat, lon)
	}
	fmt.Fprintf(&b, "  node[\"leisure\"=\"fitness_centre\"](around:%.0f,%f,%f);\n", radius, lat, lon)
	fmt.Fprintf(&b, "  way[\"leisure\"=\"fitness_centre\"](around:%.0f,%f,%f);\n", radius, lat, lon)
	b.WriteString(");\nout center;\n")
	return b.String()
}

func bikeQuery(lat, lon, radius float64) string {
	var b strings.Builder
	b.WriteString("[out:json][timeout:25];\n(\n")
	fmt.Fprintf(&b, "  way[\"highway\"=\"cycleway\"](around:%.0f,%f,%f);\n", radius, lat, lon)
	fmt.Fprintf(&b, "  way[\"cycleway\"](around:%.0f,%f,%f);\n", radius, lat, lon)
	fmt.Fprintf(&b, "  way[\"bicycle\"=\"designated\"](around:%.0f,%f,%f);\n", radius, lat, lon)
	fmt.Fprintf(&b, "  node[\"amenity\"=\"bicycle_rental\"](around:%.0f,%f,%f);\n", radius, lat, lon)
	b.WriteString(");\nout center;\n")
	return b.String()
}

func minDistance(ds []float64) *float64 {
	if len(ds) == 0 {
		return nil
	}
	min := ds[0]
	for _, d := range ds[1:] {
		if d < min {
			min = d
		}
	}
	return &min
}
