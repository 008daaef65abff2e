package gtfs

// Stop is a fixed transit boarding location. Immutable once loaded.
type Stop struct {
	ID   string
	Name string
	Lat  float64
	Lon  float64
}

// Route is a named transit line with display metadata derived at load.
type Route struct {
	ID        string
	ShortName string
	LongName  string
	Mode      Mode
	TypeCode  int
	Color     string
	TextColor string

	// DisplayName is the short name when present, the long name otherwise.
	DisplayName string
}

// Trip links one scheduled vehicle run to its route.
type Trip struct {
	ID      string
	RouteID string
}

// StopTime is one scheduled visit of a trip at a stop. Arrival and Departure
// keep the raw HH:MM:SS schedule strings; hours may exceed 24 for trips that
// run past midnight.
type StopTime struct {
	TripID    string
	StopID    string
	Sequence  int
	Arrival   string
	Departure string
}

// raw CSV records, decoded by tag before conversion

type stopRecord struct {
	StopID   string `csv:"stop_id"`
	StopName string `csv:"stop_name"`
	StopLat  string `csv:"stop_lat"`
	StopLon  string `csv:"stop_lon"`
}

type routeRecord struct {
	RouteID        string `csv:"route_id"`
	RouteShortName string `csv:"route_short_name"`
	RouteLongName  string `csv:"route_long_name"`
	RouteType      string `csv:"route_type"`
	RouteColor     string `csv:"route_color"`
	RouteTextColor string `csv:"route_text_color"`
}

type tripRecord struct {
	TripID  string `csv:"trip_id"`
	RouteID string `csv:"route_id"`
}

type stopTimeRecord struct {
	TripID        string `csv:"trip_id"`
	StopID        string `csv:"stop_id"`
	StopSequence  string `csv:"stop_sequence"`
	ArrivalTime   string `csv:"arrival_time"`
	DepartureTime string `csv:"departure_time"`
}
