package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	stations "chargewatch/internal/stations/domain"
)

const defaultStationsTable = "charging_stations"

// DBTX abstracts *sql.DB and *sql.Tx.
type DBTX interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// StationRepository is a Postgres implementation of stations.Repository.
type StationRepository struct {
	db    DBTX
	table string
}

// Option configures the repository.
type Option func(*StationRepository)

// WithTable overrides the default table name.
func WithTable(table string) Option {
	return func(repo *StationRepository) {
		if table != "" {
			repo.table = table
		}
	}
}

// NewStationRepository constructs a repository.
func NewStationRepository(db DBTX, opts ...Option) *StationRepository {
	repo := &StationRepository{db: db, table: defaultStationsTable}
	for _, opt := range opts {
		opt(repo)
	}
	return repo
}

// KnownIDs loads the stored identifier set for a provider.
func (r *StationRepository) KnownIDs(ctx context.Context, providerID int) (map[int64]struct{}, error) {
	if r == nil || r.db == nil {
		return nil, &stations.StoreError{Op: "known ids", Err: errors.New("nil db")}
	}

	query := fmt.Sprintf(`
SELECT station_id
FROM %s
WHERE provider = $1`, r.table)

	rows, err := r.db.QueryContext(ctx, query, providerID)
	if err != nil {
		return nil, &stations.StoreError{Op: "known ids", Err: err}
	}
	defer rows.Close()

	ids := make(map[int64]struct{})
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, &stations.StoreError{Op: "known ids", Err: err}
		}
		ids[id] = struct{}{}
	}
	if err := rows.Err(); err != nil {
		return nil, &stations.StoreError{Op: "known ids", Err: err}
	}
	return ids, nil
}

// SaveNew persists newly discovered station records for a provider.
func (r *StationRepository) SaveNew(ctx context.Context, providerID int, records []stations.Record) error {
	if r == nil || r.db == nil {
		return &stations.StoreError{Op: "save new", Err: errors.New("nil db")}
	}

	query := fmt.Sprintf(`
INSERT INTO %s (
	station_id,
	provider,
	friendly_name,
	address,
	location
) VALUES (
	$1, $2, $3, $4, $5
)
ON CONFLICT (provider, station_id) DO NOTHING`, r.table)

	for i := range records {
		rec := &records[i]
		rec.ProviderID = providerID
		if err := rec.Validate(); err != nil {
			return &stations.StoreError{Op: "save new", Err: err}
		}
		if _, err := r.db.ExecContext(ctx, query, rec.StationID, providerID, rec.FriendlyName, rec.Address, rec.Location); err != nil {
			return &stations.StoreError{Op: "save new", Err: err}
		}
		if rec.CreatedAt.IsZero() {
			rec.CreatedAt = time.Now().UTC()
		}
	}
	return nil
}

// List returns all stored stations.
func (r *StationRepository) List(ctx context.Context) ([]stations.Record, error) {
	if r == nil || r.db == nil {
		return nil, &stations.StoreError{Op: "list", Err: errors.New("nil db")}
	}

	query := fmt.Sprintf(`
SELECT id, station_id, provider, friendly_name, address, location, created_at
FROM %s
ORDER BY id ASC`, r.table)

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, &stations.StoreError{Op: "list", Err: err}
	}
	defer rows.Close()

	var out []stations.Record
	for rows.Next() {
		rec, err := scanRecord(rows.Scan)
		if err != nil {
			return nil, &stations.StoreError{Op: "list", Err: err}
		}
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, &stations.StoreError{Op: "list", Err: err}
	}
	return out, nil
}

// Get loads a stored station by its internal id; nil when absent.
func (r *StationRepository) Get(ctx context.Context, id int64) (*stations.Record, error) {
	if r == nil || r.db == nil {
		return nil, &stations.StoreError{Op: "get", Err: errors.New("nil db")}
	}

	query := fmt.Sprintf(`
SELECT id, station_id, provider, friendly_name, address, location, created_at
FROM %s
WHERE id = $1
LIMIT 1`, r.table)

	rec, err := scanRecord(func(dest ...any) error {
		return r.db.QueryRowContext(ctx, query, id).Scan(dest...)
	})
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, &stations.StoreError{Op: "get", Err: err}
	}
	return &rec, nil
}

// Update rewrites a stored station.
func (r *StationRepository) Update(ctx context.Context, record *stations.Record) error {
	if r == nil || r.db == nil {
		return &stations.StoreError{Op: "update", Err: errors.New("nil db")}
	}
	if record == nil {
		return &stations.StoreError{Op: "update", Err: errors.New("nil record")}
	}
	if err := record.Validate(); err != nil {
		return &stations.StoreError{Op: "update", Err: err}
	}

	query := fmt.Sprintf(`
UPDATE %s SET
	station_id = $2,
	provider = $3,
	friendly_name = $4,
	address = $5,
	location = $6
WHERE id = $1`, r.table)

	if _, err := r.db.ExecContext(ctx, query, record.ID, record.StationID, record.ProviderID, record.FriendlyName, record.Address, record.Location); err != nil {
		return &stations.StoreError{Op: "update", Err: err}
	}
	return nil
}

// Delete removes a stored station, reporting whether a row existed.
func (r *StationRepository) Delete(ctx context.Context, id int64) (bool, error) {
	if r == nil || r.db == nil {
		return false, &stations.StoreError{Op: "delete", Err: errors.New("nil db")}
	}

	query := fmt.Sprintf(`DELETE FROM %s WHERE id = $1`, r.table)
	res, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return false, &stations.StoreError{Op: "delete", Err: err}
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, &stations.StoreError{Op: "delete", Err: err}
	}
	return affected > 0, nil
}

func scanRecord(scan func(dest ...any) error) (stations.Record, error) {
	var rec stations.Record
	if err := scan(
		&rec.ID,
		&rec.StationID,
		&rec.ProviderID,
		&rec.FriendlyName,
		&rec.Address,
		&rec.Location,
		&rec.CreatedAt,
	); err != nil {
		return stations.Record{}, err
	}
	rec.CreatedAt = rec.CreatedAt.UTC()
	return rec, nil
}
