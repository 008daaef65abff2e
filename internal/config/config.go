package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// Bounds is a geographic bounding box used to filter feed stops.
type Bounds struct {
	North float64 `yaml:"north"`
	South float64 `yaml:"south"`
	East  float64 `yaml:"east"`
	West  float64 `yaml:"west"`
}

// Contains reports whether the point lies inside the box.
func (b Bounds) Contains(lat, lon float64) bool {
	return lat >= b.South && lat <= b.North && lon >= b.West && lon <= b.East
}

// Config holds engine configuration. Values come from defaults, an optional
// YAML file, and environment variable overrides, in that order.
type Config struct {
	GTFSDir   string `yaml:"gtfsDir" validate:"required"`
	CachePath string `yaml:"cachePath"`

	ListingsPath string `yaml:"listingsPath"`
	OutputPath   string `yaml:"outputPath"`

	DestinationLat float64 `yaml:"destinationLat"`
	DestinationLon float64 `yaml:"destinationLon"`

	Bounds Bounds `yaml:"bounds"`

	StopRadiusMeters    float64 `yaml:"stopRadiusMeters" validate:"gt=0"`
	WalkingSpeedKmh     float64 `yaml:"walkingSpeedKmh" validate:"gt=0"`
	TransitSpeedKmh     float64 `yaml:"transitSpeedKmh" validate:"gt=0"`
	TransferPenaltyMin  float64 `yaml:"transferPenaltyMinutes" validate:"gte=0"`
	StopTimesRowLimit   int     `yaml:"stopTimesRowLimit" validate:"gt=0"`
	MetersPerLatDegree  float64 `yaml:"metersPerLatDegree" validate:"gt=0"`
	MetersPerLonDegree  float64 `yaml:"metersPerLonDegree" validate:"gt=0"`
	POIRadiusMeters     float64 `yaml:"poiRadiusMeters" validate:"gt=0"`
	BikeRadiusMeters    float64 `yaml:"bikeRadiusMeters" validate:"gt=0"`
	OverpassURL         string  `yaml:"overpassURL" validate:"omitempty,url"`
	OverpassDelayMS     int     `yaml:"overpassDelayMS" validate:"gte=0"`
	ScorerConcurrency   int     `yaml:"scorerConcurrency" validate:"gt=0"`
}

// Load builds a Config from defaults and environment variables.
func Load() *Config {
	return &Config{
		GTFSDir:   envStr("TRANSITRANK_GTFS_DIR", "./GTFS"),
		CachePath: envStr("TRANSITRANK_CACHE_PATH", "./transitrank.db"),

		ListingsPath: envStr("TRANSITRANK_LISTINGS", "./data/listings.csv"),
		OutputPath:   envStr("TRANSITRANK_OUTPUT", "./data/listings_ranked.csv"),

		// Technische Universität Berlin main campus
		DestinationLat: envFloat("TRANSITRANK_DEST_LAT", 52.5125),
		DestinationLon: envFloat("TRANSITRANK_DEST_LON", 13.3269),

		// Berlin metro area; stops outside are dropped at load
		Bounds: Bounds{North: 52.7, South: 52.3, East: 13.8, West: 13.0},

		StopRadiusMeters:   envFloat("TRANSITRANK_STOP_RADIUS_M", 2000),
		WalkingSpeedKmh:    5.0,
		TransitSpeedKmh:    30.0,
		TransferPenaltyMin: 5,
		StopTimesRowLimit:  500_000,

		// Fixed degree conversions for the Berlin latitude band.
		MetersPerLatDegree: 111_000,
		MetersPerLonDegree: 67_000,

		POIRadiusMeters:   500,
		BikeRadiusMeters:  1000,
		OverpassURL:       envStr("TRANSITRANK_OVERPASS_URL", "https://overpass-api.de/api/interpreter"),
		OverpassDelayMS:   envInt("TRANSITRANK_OVERPASS_DELAY_MS", 500),
		ScorerConcurrency: envInt("TRANSITRANK_SCORER_CONCURRENCY", 1),
	}
}

// LoadFile overlays YAML settings from path onto the config.
func (c *Config) LoadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("parse config file: %w", err)
	}
	return nil
}

// Validate rejects configurations that indicate a programming error
// (non-positive radius, negative delay) before any work starts.
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	if c.Bounds.North <= c.Bounds.South || c.Bounds.East <= c.Bounds.West {
		return fmt.Errorf("invalid configuration: degenerate bounding box")
	}
	return nil
}

// WalkingSpeed returns the walking speed in meters per minute.
func (c *Config) WalkingSpeed() float64 {
	return c.WalkingSpeedKmh * 1000 / 60
}

// TransitSpeed returns the assumed in-vehicle speed in meters per minute.
func (c *Config) TransitSpeed() float64 {
	return c.TransitSpeedKmh * 1000 / 60
}

// OverpassDelay returns the politeness delay between external queries.
func (c *Config) OverpassDelay() time.Duration {
	return time.Duration(c.OverpassDelayMS) * time.Millisecond
}

func envStr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func envFloat(key string, fallback float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return fallback
}
