package store

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/aqstack/air-quality-aggregation/internal/aqi"
)

var schemaDDL = []string{`
CREATE TABLE IF NOT EXISTS aqi_records (
	id          UUID PRIMARY KEY,
	ts          TIMESTAMPTZ NOT NULL,
	source      TEXT NOT NULL,
	aqi         INTEGER NOT NULL,
	category    TEXT NOT NULL,
	dominant    TEXT NOT NULL,
	pm25_raw    DOUBLE PRECISION,
	pm10_raw    DOUBLE PRECISION,
	co_raw      DOUBLE PRECISION,
	no2_raw     DOUBLE PRECISION,
	so2_raw     DOUBLE PRECISION,
	o3_raw      DOUBLE PRECISION,
	nh3_raw     DOUBLE PRECISION,
	pb_raw      DOUBLE PRECISION
)`,
	`CREATE INDEX IF NOT EXISTS aqi_records_ts_idx ON aqi_records (ts DESC)`,
	`CREATE INDEX IF NOT EXISTS aqi_records_source_ts_idx ON aqi_records (source, ts DESC)`,
}

// PostgresStore persists records in PostgreSQL through a pgx pool.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgresStore connects to the database and ensures the schema exists.
func NewPostgresStore(ctx context.Context, databaseURL string) (*PostgresStore, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}
	for _, ddl := range schemaDDL {
		if _, err := pool.Exec(ctx, ddl); err != nil {
			pool.Close()
			return nil, fmt.Errorf("ensure schema: %w", err)
		}
	}
	return &PostgresStore{pool: pool}, nil
}

// Close releases the underlying connection pool.
func (s *PostgresStore) Close() {
	s.pool.Close()
}

// Put inserts one record. Inserts are atomic per record; duplicates under
// retry are acceptable and not deduplicated here.
func (s *PostgresStore) Put(ctx context.Context, rec aqi.Record) error {
	_, err := s.pool.Exec(ctx, `
INSERT INTO aqi_records
	(id, ts, source, aqi, category, dominant,
	 pm25_raw, pm10_raw, co_raw, no2_raw, so2_raw, o3_raw, nh3_raw, pb_raw)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14)`,
		rec.ID, rec.Timestamp, rec.Source, rec.AQI, rec.Category, rec.Dominant,
		rec.Raw[aqi.PM25], rec.Raw[aqi.PM10], rec.Raw[aqi.CO], rec.Raw[aqi.NO2],
		rec.Raw[aqi.SO2], rec.Raw[aqi.O3], rec.Raw[aqi.NH3], rec.Raw[aqi.PB])
	if err != nil {
		return fmt.Errorf("insert record: %w", err)
	}
	return nil
}

// Query returns matching records newest first, up to f.Limit.
func (s *PostgresStore) Query(ctx context.Context, f aqi.Filter) ([]aqi.Record, error) {
	rows, err := s.pool.Query(ctx, `
SELECT id, ts, source, aqi, category, dominant,
       pm25_raw, pm10_raw, co_raw, no2_raw, so2_raw, o3_raw, nh3_raw, pb_raw
FROM aqi_records
WHERE $1 = '' OR source = $1
ORDER BY ts DESC
LIMIT $2`, f.Source, f.Limit)
	if err != nil {
		return nil, fmt.Errorf("query records: %w", err)
	}
	defer rows.Close()

	var result []aqi.Record
	for rows.Next() {
		var rec aqi.Record
		var pm25, pm10, co, no2, so2, o3, nh3, pb *float64
		if err := rows.Scan(&rec.ID, &rec.Timestamp, &rec.Source, &rec.AQI,
			&rec.Category, &rec.Dominant,
			&pm25, &pm10, &co, &no2, &so2, &o3, &nh3, &pb); err != nil {
			return nil, fmt.Errorf("scan record: %w", err)
		}
		rec.Raw = aqi.Readings{
			aqi.PM25: pm25, aqi.PM10: pm10, aqi.CO: co, aqi.NO2: no2,
			aqi.SO2: so2, aqi.O3: o3, aqi.NH3: nh3, aqi.PB: pb,
		}
		result = append(result, rec)
	}
	return result, rows.Err()
}
