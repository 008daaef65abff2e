package transit

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"transitrank/internal/config"
	"transitrank/internal/gtfs"
)

// The fixture network, all inside the Berlin bounding box:
//
//	A, B    share trip T1 on U1 (08:00 -> 08:12) and a slower T1b (08:00 -> 08:20)
//	N1, N2  share the overnight trip TN (23:50 -> 24:05)
//	E, F    ~2.8 km apart, disjoint routes (one-transfer fallback)
//	X, Y    ~29 km apart, disjoint routes, Y served by two (two-transfer fallback)
//	G1, G2  equidistant from the tie-break query point
//	Z1, Z2  no service at all
const (
	stopsCSV = "stop_id,stop_name,stop_lat,stop_lon\n" +
		"A,Stop A,52.5000,13.4000\n" +
		"B,Stop B,52.5050,13.4100\n" +
		"N1,Night One,52.6000,13.5000\n" +
		"N2,Night Two,52.6050,13.5100\n" +
		"E,Stop E,52.5100,13.4200\n" +
		"F,Stop F,52.5150,13.4600\n" +
		"X,Stop X,52.5300,13.3000\n" +
		"Y,Stop Y,52.4200,13.7000\n" +
		"G1,Tie One,52.5000,13.6010\n" +
		"G2,Tie Two,52.5000,13.5990\n" +
		"Z1,Silent One,52.3500,13.0500\n" +
		"Z2,Silent Two,52.3600,13.0600\n"

	routesCSV = "route_id,route_short_name,route_long_name,route_type,route_color,route_text_color\n" +
		"U1,U1,,1,,\n" +
		"NE,N8,,3,,\n" +
		"RE1,M41,,3,,\n" +
		"RF1,194,,3,,\n" +
		"RX,S42,,109,,\n" +
		"RY1,U5,,400,,\n" +
		"RY2,Tram 21,,0,,\n"

	tripsCSV = "trip_id,route_id\n" +
		"T1,U1\n" +
		"T1b,U1\n" +
		"TN,NE\n" +
		"TE,RE1\n" +
		"TF,RF1\n" +
		"TX,RX\n" +
		"TY1,RY1\n" +
		"TY2,RY2\n"

	stopTimesCSV = "trip_id,arrival_time,departure_time,stop_id,stop_sequence\n" +
		"T1,08:00:00,08:00:00,A,1\n" +
		"T1,08:12:00,08:12:00,B,4\n" +
		"T1b,08:00:00,08:00:00,A,1\n" +
		"T1b,08:20:00,08:20:00,B,7\n" +
		"TN,23:50:00,23:50:00,N1,1\n" +
		"TN,24:05:00,24:05:00,N2,2\n" +
		"TE,09:00:00,09:00:00,E,1\n" +
		"TF,09:00:00,09:00:00,F,1\n" +
		"TX,10:00:00,10:00:00,X,1\n" +
		"TY1,10:00:00,10:00:00,Y,1\n" +
		"TY2,10:05:00,10:05:00,Y,2\n"
)

func newTestEngine(t *testing.T) *Engine {
	t.Helper()
	dir := t.TempDir()
	files := map[string]string{
		"stops.txt":      stopsCSV,
		"routes.txt":     routesCSV,
		"trips.txt":      tripsCSV,
		"stop_times.txt": stopTimesCSV,
	}
	for name, body := range files {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(body), 0o644); err != nil {
			t.Fatal(err)
		}
	}

	cfg := config.Load()
	cfg.GTFSDir = dir
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	store := gtfs.NewStore(dir, cfg.Bounds, cfg.StopTimesRowLimit, logger)
	return NewEngine(store, cfg, logger)
}
