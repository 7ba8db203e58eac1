package memory

import (
	"context"
	"sync"
	"time"

	stations "chargewatch/internal/stations/domain"
)

// StationRepository is an in-memory implementation of stations.Repository.
type StationRepository struct {
	mu     sync.RWMutex
	nextID int64
	data   map[int64]stations.Record
}

// NewStationRepository constructs a repository.
func NewStationRepository() *StationRepository {
	return &StationRepository{nextID: 1, data: make(map[int64]stations.Record)}
}

// KnownIDs returns the stored external ids for a provider.
func (r *StationRepository) KnownIDs(ctx context.Context, providerID int) (map[int64]struct{}, error) {
	_ = ctx
	r.mu.RLock()
	defer r.mu.RUnlock()
	ids := make(map[int64]struct{})
	for _, rec := range r.data {
		if rec.ProviderID == providerID {
			ids[rec.StationID] = struct{}{}
		}
	}
	return ids, nil
}

// SaveNew stores records for newly discovered stations.
func (r *StationRepository) SaveNew(ctx context.Context, providerID int, records []stations.Record) error {
	_ = ctx
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, rec := range records {
		rec.ProviderID = providerID
		if err := rec.Validate(); err != nil {
			return &stations.StoreError{Op: "save new", Err: err}
		}
		rec.ID = r.nextID
		r.nextID++
		if rec.CreatedAt.IsZero() {
			rec.CreatedAt = time.Now().UTC()
		}
		r.data[rec.ID] = rec
	}
	return nil
}

// List returns all stored stations ordered by internal id.
func (r *StationRepository) List(ctx context.Context) ([]stations.Record, error) {
	_ = ctx
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]stations.Record, 0, len(r.data))
	for id := int64(1); id < r.nextID; id++ {
		if rec, ok := r.data[id]; ok {
			out = append(out, rec)
		}
	}
	return out, nil
}

// Get loads a station by internal id; nil when absent.
func (r *StationRepository) Get(ctx context.Context, id int64) (*stations.Record, error) {
	_ = ctx
	r.mu.RLock()
	defer r.mu.RUnlock()
	rec, ok := r.data[id]
	if !ok {
		return nil, nil
	}
	return &rec, nil
}

// Update rewrites a stored station.
func (r *StationRepository) Update(ctx context.Context, record *stations.Record) error {
	_ = ctx
	if record == nil {
		return &stations.StoreError{Op: "update", Err: errNilRecord}
	}
	if err := record.Validate(); err != nil {
		return &stations.StoreError{Op: "update", Err: err}
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.data[record.ID]; !ok {
		return &stations.StoreError{Op: "update", Err: errNotFound}
	}
	r.data[record.ID] = *record
	return nil
}

// Delete removes a stored station.
func (r *StationRepository) Delete(ctx context.Context, id int64) (bool, error) {
	_ = ctx
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.data[id]; !ok {
		return false, nil
	}
	delete(r.data, id)
	return true, nil
}

var (
	errNilRecord = stationsError("nil record")
	errNotFound  = stationsError("record not found")
)

type stationsError string

func (e stationsError) Error() string { return string(e) }
