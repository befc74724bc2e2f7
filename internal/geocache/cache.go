// Package geocache memoizes geocoding results in a local SQLite database.
package geocache

import (
	"context"
	"crypto/sha256"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	_ "modernc.org/sqlite"

	"github.com/proxima-gis/proximity/internal/proximity"
)

const migration = `
CREATE TABLE IF NOT EXISTS geocode_cache (
	address_hash TEXT PRIMARY KEY,
	latitude     REAL NOT NULL,
	longitude    REAL NOT NULL,
	cached_at    DATETIME NOT NULL DEFAULT (datetime('now'))
);
`

// Cache wraps a Geocoder, serving repeated addresses from SQLite. Only
// successful resolutions are stored; misses and upstream failures always go
// back to the live provider so their error kinds keep surfacing.
type Cache struct {
	db   *sql.DB
	ttl  time.Duration
	next proximity.Geocoder
}

// Open creates or opens the cache database at path. A ttl of zero keeps
// entries forever.
func Open(path string, ttl time.Duration, next proximity.Geocoder) (*Cache, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, eris.Wrap(err, "geocache: open")
	}
	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA synchronous=NORMAL",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, eris.Wrapf(err, "geocache: exec %s", pragma)
		}
	}
	if _, err := db.Exec(migration); err != nil {
		db.Close()
		return nil, eris.Wrap(err, "geocache: migrate")
	}
	return &Cache{db: db, ttl: ttl, next: next}, nil
}

// Close releases the underlying database handle.
func (c *Cache) Close() error {
	return c.db.Close()
}

// Geocode implements proximity.Geocoder.
func (c *Cache) Geocode(ctx context.Context, address string) (float64, float64, error) {
	key := cacheKey(address)

	if lat, lon, ok := c.lookup(ctx, key); ok {
		return lat, lon, nil
	}

	lat, lon, err := c.next.Geocode(ctx, address)
	if err != nil {
		return 0, 0, err
	}
	if storeErr := c.store(ctx, key, lat, lon); storeErr != nil {
		zap.L().Warn("geocache: store failed", zap.Error(storeErr))
	}
	return lat, lon, nil
}

func (c *Cache) lookup(ctx context.Context, key string) (lat, lon float64, ok bool) {
	query := "SELECT latitude, longitude FROM geocode_cache WHERE address_hash = ?"
	args := []any{key}
	if c.ttl > 0 {
		query += " AND cached_at > ?"
		args = append(args, time.Now().UTC().Add(-c.ttl))
	}

	row := c.db.QueryRowContext(ctx, query, args...)
	if err := row.Scan(&lat, &lon); err != nil {
		return 0, 0, false
	}
	zap.L().Debug("geocache hit", zap.String("key", key[:12]))
	return lat, lon, true
}

func (c *Cache) store(ctx context.Context, key string, lat, lon float64) error {
	_, err := c.db.ExecContext(ctx, `
		INSERT INTO geocode_cache (address_hash, latitude, longitude, cached_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT (address_hash) DO UPDATE SET
			latitude  = excluded.latitude,
			longitude = excluded.longitude,
			cached_at = excluded.cached_at`,
		key, lat, lon, time.Now().UTC(),
	)
	return eris.Wrap(err, "geocache: store")
}

// cacheKey returns SHA-256 hex of the normalized address.
func cacheKey(address string) string {
	normalized := strings.ToLower(strings.TrimSpace(address))
	h := sha256.Sum256([]byte(normalized))
	return fmt.Sprintf("%x", h)
}
