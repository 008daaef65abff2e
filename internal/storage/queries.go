package storage

import (
	"context"
	"database/sql"
	"fmt"
	"math"
)

// roundCoord truncates a coordinate to 6 decimal places so lookups for the
// same address always hit the same row regardless of float noise.
func roundCoord(v float64) float64 {
	return math.Round(v*1e6) / 1e6
}

// GetCommute returns the cached commute result JSON for an origin/destination
// pair, or ok=false on a miss.
func (db *DB) GetCommute(ctx context.Context, lat, lon, destLat, destLon float64) (string, bool, error) {
	var result string
	err := db.QueryRowContext(ctx,
		`SELECT result FROM commute_cache WHERE lat = ? AND lon = ? AND dest_lat = ? AND dest_lon = ?`,
		roundCoord(lat), roundCoord(lon), roundCoord(destLat), roundCoord(destLon),
	).Scan(&result)
	if err == sql.ErrNoRows {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("commute cache lookup: %w", err)
	}
	return result, true, nil
}

// PutCommute stores a commute result JSON for an origin/destination pair.
func (db *DB) PutCommute(ctx context.Context, lat, lon, destLat, destLon float64, result string) error {
	_, err := db.ExecContext(ctx,
		`INSERT OR REPLACE INTO commute_cache (lat, lon, dest_lat, dest_lon, result) VALUES (?, ?, ?, ?, ?)`,
		roundCoord(lat), roundCoord(lon), roundCoord(destLat), roundCoord(destLon), result)
	if err != nil {
		return fmt.Errorf("commute cache store: %w", err)
	}
	return nil
}

// GetMobility returns the cached mobility score JSON for a coordinate, or
// ok=false on a miss.
func (db *DB) GetMobility(ctx context.Context, lat, lon float64) (string, bool, error) {
	var result string
	err := db.QueryRowContext(ctx,
		`SELECT result FROM mobility_cache WHERE lat = ? AND lon = ?`,
		roundCoord(lat), roundCoord(lon),
	).Scan(&result)
	if err == sql.ErrNoRows {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("mobility cache lookup: %w", err)
	}
	return result, true, nil
}

// PutMobility stores a mobility score JSON for a coordinate.
func (db *DB) PutMobility(ctx context.Context, lat, lon float64, result string) error {
	_, err := db.ExecContext(ctx,
		`INSERT OR REPLACE INTO mobility_cache (lat, lon, result) VALUES (?, ?, ?)`,
		roundCoord(lat), roundCoord(lon), result)
	if err != nil {
		return fmt.Errorf("mobility cache store: %w", err)
	}
	return nil
}

// Counts returns the number of cached commute and mobility rows.
func (db *DB) Counts(ctx context.Context) (commutes, mobility int, err error) {
	if err = db.QueryRowContext(ctx, `SELECT COUNT(*) FROM commute_cache`).Scan(&commutes); err != nil {
		return 0, 0, fmt.Errorf("count commute cache: %w", err)
	}
	if err = db.QueryRowContext(ctx, `SELECT COUNT(*) FROM mobility_cache`).Scan(&mobility); err != nil {
		return 0, 0, fmt.Errorf("count mobility cache: %w", err)
	}
	return commutes, mobility, nil
}
