package mobility

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

const overpassPOIResponse = `{
	"elements": [
		{"type": "node", "lat": 52.5205, "lon": 13.4095, "tags": {"shop": "supermarket"}},
		{"type": "way", "center": {"lat": 52.5210, "lon": 13.4100}, "tags": {"shop": "supermarket"}},
		{"type": "node", "lat": 52.5200, "lon": 13.4090, "tags": {"amenity": "cafe"}},
		{"type": "node", "lat": 52.5195, "lon": 13.4085, "tags": {"amenity": "restaurant"}},
		{"type": "node", "lat": 52.5198, "lon": 13.4088, "tags": {"amenity": "pharmacy"}},
		{"type": "node", "lat": 52.5202, "lon": 13.4092, "tags": {"leisure": "fitness_centre"}},
		{"type": "node", "lat": 52.5203, "lon": 13.4093, "tags": {"amenity": "gym"}},
		{"type": "way", "tags": {"amenity": "bank"}},
		{"type": "node", "lat": 52.5201, "lon": 13.4091, "tags": {"amenity": "parking"}}
	]
}`

const overpassBikeResponse = `{
	"elements": [
		{"type": "way", "center": {"lat": 52.5201, "lon": 13.4091}, "tags": {"highway": "cycleway"}},
		{"type": "way", "center": {"lat": 52.5215, "lon": 13.4110}, "tags": {"highway": "residential", "cycleway": "lane"}},
		{"type": "node", "lat": 52.5208, "lon": 13.4098, "tags": {"amenity": "bicycle_rental"}},
		{"type": "node", "lat": 52.5209, "lon": 13.4099, "tags": {"amenity": "bicycle_parking"}}
	]
}`

func newOverpassTestServer(t *testing.T, calls *int) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		*calls++
		if r.Method != http.MethodPost {
			t.Errorf("expected POST, got %s", r.Method)
		}
		if err := r.ParseForm(); err != nil {
			t.Fatalf("parsing form: %v", err)
		}
		ql := r.PostFormValue("data")
		if ql == "" {
			t.Error("missing data form field")
		}
		w.Header().Set("Content-Type", "application/json")
		if strings.Contains(ql, "cycleway") {
			w.Write([]byte(overpassBikeResponse))
		} else {
			w.Write([]byte(overpassPOIResponse))
		}
	}))
}

func TestOverpassClientPOIs(t *testing.T) {
	calls := 0
	srv := newOverpassTestServer(t, &calls)
	defer srv.Close()

	client := NewOverpassClient(srv.URL, "transitrank-test", 0)
	summary, err := client.POIs(context.Background(), 52.5200, 13.4090, 500)
	if err != nil {
		t.Fatalf("POIs: %v", err)
	}

	if summary.Grocery != 2 {
		t.Errorf("grocery = %d, want 2 (node plus way with center)", summary.Grocery)
	}
	if summary.Cafes != 1 || summary.Restaurants != 1 || summary.Pharmacies != 1 {
		t.Errorf("unexpected counts: %+v", summary)
	}
	if summary.Gyms != 2 {
		t.Errorf("gyms = %d, want 2 (fitness_centre plus gym amenity)", summary.Gyms)
	}
	if summary.Banks != 0 {
		t.Errorf("banks = %d, want 0 (way without coordinates is skipped)", summary.Banks)
	}
	if summary.NearestCafeM == nil || *summary.NearestCafeM != 0 {
		t.Errorf("nearest cafe = %v, want 0 (query point)", summary.NearestCafeM)
	}
	if summary.NearestGroceryM == nil || *summary.NearestGroceryM <= 0 {
		t.Errorf("nearest grocery = %v, want positive distance", summary.NearestGroceryM)
	}
}

func TestOverpassClientBikeInfra(t *testing.T) {
	calls := 0
	srv := newOverpassTestServer(t, &calls)
	defer srv.Close()

	client := NewOverpassClient(srv.URL, "transitrank-test", 0)
	summary, err := client.BikeInfra(context.Background(), 52.5200, 13.4090, 1000)
	if err != nil {
		t.Fatalf("BikeInfra: %v", err)
	}

	if summary.Lanes != 2 {
		t.Errorf("lanes = %d, want 2 (cycleway highway plus cycleway-tagged way)", summary.Lanes)
	}
	if summary.ShareStations != 1 {
		t.Errorf("share stations = %d, want 1 (parking is not rental)", summary.ShareStations)
	}
	if summary.NearestLaneM == nil {
		t.Fatal("expected nearest lane distance")
	}
}

func TestOverpassClientCachesByCoordinate(t *testing.T) {
	calls := 0
	srv := newOverpassTestServer(t, &calls)
	defer srv.Close()

	client := NewOverpassClient(srv.URL, "transitrank-test", 0)
	ctx := context.Background()

	if _, err := client.POIs(ctx, 52.5200, 13.4090, 500); err != nil {
		t.Fatalf("first POIs: %v", err)
	}
	if _, err := client.POIs(ctx, 52.5200, 13.4090, 500); err != nil {
		t.Fatalf("second POIs: %v", err)
	}
	if calls != 1 {
		t.Errorf("expected 1 upstream call for repeated coordinate, got %d", calls)
	}

	if _, err := client.POIs(ctx, 52.5300, 13.4090, 500); err != nil {
		t.Fatalf("third POIs: %v", err)
	}
	if calls != 2 {
		t.Errorf("expected new coordinate to miss cache, got %d calls", calls)
	}
}

func TestOverpassClientErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "too many requests", http.StatusTooManyRequests)
	}))
	defer srv.Close()

	client := NewOverpassClient(srv.URL, "transitrank-test", 0)
	if _, err := client.POIs(context.Background(), 52.52, 13.40, 500); err == nil {
		t.Fatal("expected error on non-200 status")
	}
}
