package storage

import "fmt"

// migrate creates the cache schema if it doesn't exist.
func (db *DB) migrate() error {
	for i, stmt := range migrations {
		if _, err := db.Exec(stmt); err != nil {
			return fmt.Errorf("migration %d: %w", i, err)
		}
	}
	db.logger.Info("database migrations applied")
	return nil
}

var migrations = []string{
	// Commute estimates, keyed by origin rounded to 6 decimal places
	`CREATE TABLE IF NOT EXISTS commute_cache (
		lat        REAL NOT NULL,
		lon        REAL NOT NULL,
		dest_lat   REAL NOT NULL,
		dest_lon   REAL NOT NULL,
		result     TEXT NOT NULL,
		created_at TEXT NOT NULL DEFAULT (datetime('now')),
		PRIMARY KEY (lat, lon, dest_lat, dest_lon)
	)`,

	// Mobility scores, keyed by coordinate rounded to 6 decimal places
	`CREATE TABLE IF NOT EXISTS mobility_cache (
		lat        REAL NOT NULL,
		lon        REAL NOT NULL,
		result     TEXT NOT NULL,
		created_at TEXT NOT NULL DEFAULT (datetime('now')),
		PRIMARY KEY (lat, lon)
	)`,
}
