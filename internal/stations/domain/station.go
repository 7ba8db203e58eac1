package stations

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// Record is the persisted shape of a charging station. Records are created
// once for each newly discovered station and never mutated by the watcher;
// updates and deletes happen only through the administrative REST surface.
type Record struct {
	ID           int64     `json:"id"`
	ProviderID   int       `json:"provider"`
	StationID    int64     `json:"stationId"`
	FriendlyName string    `json:"friendlyName"`
	Address      string    `json:"address"`
	Location     string    `json:"location"`
	CreatedAt    time.Time `json:"createdAt"`
}

// Validate checks record invariants.
func (r Record) Validate() error {
	if r.ProviderID <= 0 {
		return errors.New("stations: record missing provider id")
	}
	if r.StationID == 0 {
		return errors.New("stations: record missing external station id")
	}
	return nil
}

// StoreError reports a persistence failure. Write failures corrupt future
// diffs if swallowed, so callers must surface them loudly.
type StoreError struct {
	Op  string
	Err error
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("stations: store %s: %v", e.Op, e.Err)
}

func (e *StoreError) Unwrap() error { return e.Err }

// Repository is the persistence gateway for station records.
type Repository interface {
	// KnownIDs returns the external station ids already stored for a provider.
	KnownIDs(ctx context.Context, providerID int) (map[int64]struct{}, error)
	// SaveNew persists records for newly discovered stations.
	SaveNew(ctx context.Context, providerID int, records []Record) error
	List(ctx context.Context) ([]Record, error)
	Get(ctx context.Context, id int64) (*Record, error)
	Update(ctx context.Context, record *Record) error
	Delete(ctx context.Context, id int64) (bool, error)
}
