package application

import (
	"context"
	"errors"
	"log"
	"sync"
	"time"

	"chargewatch/internal/apiclient"
	providers "chargewatch/internal/providers/domain"
	"chargewatch/internal/providers/geo"
	"chargewatch/internal/providers/schema"
	"chargewatch/internal/reconcile"
	stations "chargewatch/internal/stations/domain"
	watchermetrics "chargewatch/internal/watcher/metrics"
	"chargewatch/internal/watcher/notify"
	"chargewatch/internal/watcher/snapshot"
)

// ErrCycleInFlight is returned when a reconciliation for the same provider is
// still running; at most one cycle per provider may run at a time.
var ErrCycleInFlight = errors.New("watcher: provider cycle already running")

// CycleResult summarizes one provider reconciliation cycle.
type CycleResult struct {
	Provider  providers.Descriptor
	Fetched   int
	Accepted  int
	NewIDs    []int64
	Persisted int
}

// Runner executes provider reconciliation cycles.
type Runner struct {
	registry *providers.Registry
	client   *apiclient.Client
	repo     stations.Repository
	notifier notify.Notifier
	archive  *snapshot.Archive
	metrics  *watchermetrics.Metrics
	logger   *log.Logger

	mu       sync.Mutex
	inFlight map[int]*sync.Mutex
}

// NewRunner constructs a Runner. Notifier, archive, metrics and logger may be
// nil; the corresponding steps are skipped.
func NewRunner(registry *providers.Registry, client *apiclient.Client, repo stations.Repository, notifier notify.Notifier, archive *snapshot.Archive, m *watchermetrics.Metrics, logger *log.Logger) (*Runner, error) {
	if registry == nil {
		return nil, errors.New("watcher: nil registry")
	}
	if client == nil {
		return nil, errors.New("watcher: nil api client")
	}
	if repo == nil {
		return nil, errors.New("watcher: nil station repository")
	}
	return &Runner{
		registry: registry,
		client:   client,
		repo:     repo,
		notifier: notifier,
		archive:  archive,
		metrics:  m,
		logger:   logger,
		inFlight: make(map[int]*sync.Mutex),
	}, nil
}

// RunAll runs one cycle for every registered provider in declaration order.
// A failing provider is logged and never blocks the remaining providers. The
// run may be aborted between providers via ctx.
func (r *Runner) RunAll(ctx context.Context) error {
	for _, desc := range r.registry.All() {
		if err := ctx.Err(); err != nil {
			return err
		}
		result, err := r.RunProvider(ctx, desc)
		if err != nil {
			r.logf("provider %s: cycle failed: %v", desc.Name, err)
			continue
		}
		if len(result.NewIDs) == 0 {
			r.logf("provider %s: no new stations (fetched %d)", desc.Name, result.Fetched)
			continue
		}
		r.logf("provider %s: found %d new stations, persisted %d", desc.Name, len(result.NewIDs), result.Persisted)
	}
	return nil
}

// RunProvider executes one reconciliation cycle for a single provider.
func (r *Runner) RunProvider(ctx context.Context, desc providers.Descriptor) (CycleResult, error) {
	result := CycleResult{Provider: desc}
	lock := r.providerLock(desc.ID)
	if !lock.TryLock() {
		r.observe(desc, watchermetrics.StatusSkipped, time.Time{})
		return result, ErrCycleInFlight
	}
	defer lock.Unlock()
	started := time.Now()

	adapter, err := schema.ForKind(desc.Schema)
	if err != nil {
		r.observe(desc, watchermetrics.StatusFailed, started)
		return result, err
	}

	current, err := r.fetchCurrent(ctx, desc, adapter)
	if err != nil {
		r.observe(desc, watchermetrics.StatusFailed, started)
		return result, err
	}
	result.Fetched = len(current)
	if r.metrics != nil {
		r.metrics.StationsFetched.WithLabelValues(desc.Name).Set(float64(len(current)))
	}

	// The filter runs before identifier extraction so excluded stations
	// never participate in the diff.
	if desc.NeedsGeoFilter {
		current = geo.Filter(current)
	}
	result.Accepted = len(current)

	currentIDs := reconcile.IDSet(current)
	storedIDs, err := r.repo.KnownIDs(ctx, desc.ID)
	if err != nil {
		r.observe(desc, watchermetrics.StatusStoreError, started)
		return result, err
	}

	newSet := reconcile.Diff(currentIDs, storedIDs)
	if removed := reconcile.Removed(currentIDs, storedIDs); len(removed) > 0 {
		// Diagnostic only; removals are never applied to the store.
		r.logf("provider %s: %d stored stations absent from feed", desc.Name, len(removed))
	}
	if len(newSet) == 0 {
		r.observe(desc, watchermetrics.StatusNoop, started)
		return result, nil
	}
	result.NewIDs = reconcile.SortedIDs(newSet)

	records, err := r.buildRecords(ctx, desc, current, result.NewIDs, newSet)
	if err != nil {
		r.observe(desc, watchermetrics.StatusFailed, started)
		return result, err
	}
	if len(records) == 0 {
		// Every new station was dropped by the roaming post-filter.
		r.logf("provider %s: all %d new stations excluded as roaming", desc.Name, len(result.NewIDs))
		r.observe(desc, watchermetrics.StatusNoop, started)
		return result, nil
	}

	if err := r.repo.SaveNew(ctx, desc.ID, records); err != nil {
		// Losing a successful reconciliation corrupts future diffs; this
		// failure class must stay visible.
		r.logf("provider %s: PERSIST FAILED, stored id set unchanged: %v", desc.Name, err)
		r.observe(desc, watchermetrics.StatusStoreError, started)
		return result, err
	}
	result.Persisted = len(records)
	if r.metrics != nil {
		r.metrics.NewStationsTotal.WithLabelValues(desc.Name).Add(float64(len(records)))
	}

	snapshotPath := ""
	if r.archive != nil {
		path, err := r.archive.WriteNewStations(desc.Name, records)
		if err != nil {
			r.logf("provider %s: snapshot write failed: %v", desc.Name, err)
		} else {
			snapshotPath = path
		}
	}

	if r.notifier != nil {
		event := notify.Event{
			ProviderID:   desc.ID,
			ProviderName: desc.Name,
			NewCount:     len(records),
			StationIDs:   result.NewIDs,
			Records:      records,
			SnapshotPath: snapshotPath,
		}
		if err := r.notifier.Notify(ctx, event); err != nil {
			if r.metrics != nil {
				r.metrics.NotifyFailures.Inc()
			}
			r.logf("provider %s: notify failed: %v", desc.Name, err)
		}
	}

	r.observe(desc, watchermetrics.StatusOK, started)
	return result, nil
}

// fetchCurrent fetches every list window and unions the decoded lists. The
// first occurrence of an id wins; duplicates across windows collapse.
func (r *Runner) fetchCurrent(ctx context.Context, desc providers.Descriptor, adapter schema.Adapter) ([]providers.Station, error) {
	windows := desc.Windows
	if len(windows) == 0 {
		windows = []string{""}
	}
	var merged []providers.Station
	seen := make(map[int64]struct{})
	for _, window := range windows {
		raw, err := r.client.FetchList(ctx, desc, window)
		if err != nil {
			return nil, err
		}
		decoded, err := adapter.Decode(raw)
		if err != nil {
			return nil, err
		}
		for _, st := range decoded {
			if _, ok := seen[st.ID]; ok {
				continue
			}
			seen[st.ID] = struct{}{}
			merged = append(merged, st)
		}
	}
	return merged, nil
}

// buildRecords produces the persistable records for the new ids: via the
// detail enrichment fetch for two-phase providers, directly from the list
// entries otherwise.
func (r *Runner) buildRecords(ctx context.Context, desc providers.Descriptor, current []providers.Station, newIDs []int64, newSet map[int64]struct{}) ([]stations.Record, error) {
	if desc.TwoPhase() {
		body, err := EnrichBody(newIDs)
		if err != nil {
			return nil, err
		}
		raw, err := r.client.FetchDetail(ctx, desc, body)
		if err != nil {
			return nil, err
		}
		locations, err := DecodeDetail(raw)
		if err != nil {
			return nil, err
		}
		return recordsFromDetail(locations), nil
	}

	records := make([]stations.Record, 0, len(newIDs))
	for _, st := range current {
		if _, ok := newSet[st.ID]; !ok {
			continue
		}
		records = append(records, stations.Record{
			StationID:    st.ID,
			FriendlyName: st.Name,
			Address:      st.Address,
			Location:     st.Location,
		})
	}
	return records, nil
}

func (r *Runner) providerLock(providerID int) *sync.Mutex {
	r.mu.Lock()
	defer r.mu.Unlock()
	lock, ok := r.inFlight[providerID]
	if !ok {
		lock = &sync.Mutex{}
		r.inFlight[providerID] = lock
	}
	return lock
}

func (r *Runner) observe(desc providers.Descriptor, status string, started time.Time) {
	if r.metrics == nil {
		return
	}
	r.metrics.CyclesTotal.WithLabelValues(desc.Name, status).Inc()
	if !started.IsZero() {
		r.metrics.CycleDuration.Observe(time.Since(started).Seconds())
	}
}

func (r *Runner) logf(format string, args ...any) {
	if r.logger != nil {
		r.logger.Printf(format, args...)
	}
}
