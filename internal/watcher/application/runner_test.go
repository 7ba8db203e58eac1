package application

import (
	"context"
	"encoding/json"
	"io"
	"log"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"chargewatch/internal/apiclient"
	providers "chargewatch/internal/providers/domain"
	stations "chargewatch/internal/stations/domain"
	"chargewatch/internal/stations/infrastructure/memory"
	"chargewatch/internal/watcher/notify"
	"chargewatch/internal/watcher/snapshot"
)

type captureNotifier struct {
	events []notify.Event
}

func (c *captureNotifier) Notify(ctx context.Context, event notify.Event) error {
	c.events = append(c.events, event)
	return nil
}

func newTestRunner(t *testing.T, registry *providers.Registry, repo stations.Repository, notifier notify.Notifier) *Runner {
	t.Helper()
	archive, err := snapshot.NewArchive(t.TempDir())
	if err != nil {
		t.Fatalf("archive: %v", err)
	}
	runner, err := NewRunner(registry, apiclient.NewClient(), repo, notifier, archive, nil, log.New(io.Discard, "", 0))
	if err != nil {
		t.Fatalf("runner: %v", err)
	}
	return runner
}

func mustRegistry(t *testing.T, descriptors ...providers.Descriptor) *providers.Registry {
	t.Helper()
	registry, err := providers.NewRegistry(descriptors...)
	if err != nil {
		t.Fatalf("registry: %v", err)
	}
	return registry
}

func TestRunProviderPersistsOnlyNewStations(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`[
			{"Id": 10, "FriendlyName": "Old A", "Access": {"GPSLatitude": 46.1, "GPSLongitude": 14.8}},
			{"Id": 11, "FriendlyName": "Old B", "Access": {"GPSLatitude": 46.2, "GPSLongitude": 14.9}},
			{"Id": 12, "FriendlyName": "Fresh", "Access": {"GPSLatitude": 46.3, "GPSLongitude": 15.0}}
		]`))
	}))
	defer server.Close()

	desc := providers.Descriptor{ID: 3, Name: "MoonCharge", ListURL: server.URL, Schema: providers.SchemaFlatArray}
	repo := memory.NewStationRepository()
	seed := []stations.Record{
		{StationID: 10, FriendlyName: "Old A"},
		{StationID: 11, FriendlyName: "Old B"},
	}
	if err := repo.SaveNew(context.Background(), desc.ID, seed); err != nil {
		t.Fatalf("seed: %v", err)
	}

	notifier := &captureNotifier{}
	runner := newTestRunner(t, mustRegistry(t, desc), repo, notifier)

	result, err := runner.RunProvider(context.Background(), desc)
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if result.Fetched != 3 {
		t.Fatalf("expected 3 fetched, got %d", result.Fetched)
	}
	if len(result.NewIDs) != 1 || result.NewIDs[0] != 12 {
		t.Fatalf("unexpected new ids %v", result.NewIDs)
	}
	if result.Persisted != 1 {
		t.Fatalf("expected 1 persisted, got %d", result.Persisted)
	}

	known, err := repo.KnownIDs(context.Background(), desc.ID)
	if err != nil {
		t.Fatalf("known ids: %v", err)
	}
	if len(known) != 3 {
		t.Fatalf("expected 3 stored ids, got %d", len(known))
	}

	if len(notifier.events) != 1 {
		t.Fatalf("expected 1 notification, got %d", len(notifier.events))
	}
	event := notifier.events[0]
	if event.ProviderName != "MoonCharge" || event.NewCount != 1 {
		t.Fatalf("unexpected event %+v", event)
	}
	if event.SnapshotPath == "" {
		t.Fatal("expected snapshot path in event")
	}
	if _, err := os.Stat(event.SnapshotPath); err != nil {
		t.Fatalf("snapshot file missing: %v", err)
	}
	if filepath.Ext(event.SnapshotPath) != ".json" {
		t.Fatalf("unexpected snapshot name %q", event.SnapshotPath)
	}

	// A second identical run must be a noop.
	result, err = runner.RunProvider(context.Background(), desc)
	if err != nil {
		t.Fatalf("second run: %v", err)
	}
	if len(result.NewIDs) != 0 || result.Persisted != 0 {
		t.Fatalf("second run not idempotent: %+v", result)
	}
	if len(notifier.events) != 1 {
		t.Fatalf("noop run must not notify, got %d events", len(notifier.events))
	}
}

func TestRunProviderTwoPhaseWithGeoFilter(t *testing.T) {
	var detailBody []byte
	mux := http.NewServeMux()
	mux.HandleFunc("/pins", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"pins": [
			{"id": 7, "geo": "46.35,15.11"},
			{"id": 8, "geo": "48.21,16.37"},
			{"id": 9, "geo": "45.51,13.58"}
		]}`))
	})
	mux.HandleFunc("/locations", func(w http.ResponseWriter, r *http.Request) {
		detailBody, _ = io.ReadAll(r.Body)
		_, _ = w.Write([]byte(`{"locations": [
			{"id": 7, "name": "Own", "address": "A 1", "location": "46.35,15.11", "zones": [{"evses": [{"roamingEvseId": null}]}]},
			{"id": 9, "name": "Roamed", "address": "B 2", "location": "45.51,13.58", "zones": [{"evses": [{"roamingEvseId": "SI-X-1"}]}]}
		]}`))
	})
	server := httptest.NewServer(mux)
	defer server.Close()

	desc := providers.Descriptor{
		ID:             1,
		Name:           "GremoNaElektriko",
		ListURL:        server.URL + "/pins",
		DetailURL:      server.URL + "/locations",
		Schema:         providers.SchemaPinsList,
		NeedsGeoFilter: true,
	}
	repo := memory.NewStationRepository()
	runner := newTestRunner(t, mustRegistry(t, desc), repo, nil)

	result, err := runner.RunProvider(context.Background(), desc)
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if result.Fetched != 3 || result.Accepted != 2 {
		t.Fatalf("expected 3 fetched / 2 accepted, got %d / %d", result.Fetched, result.Accepted)
	}
	if len(result.NewIDs) != 2 {
		t.Fatalf("unexpected new ids %v", result.NewIDs)
	}

	var enrich struct {
		Locations map[string]any `json:"locations"`
	}
	if err := json.Unmarshal(detailBody, &enrich); err != nil {
		t.Fatalf("enrich body: %v", err)
	}
	if len(enrich.Locations) != 2 {
		t.Fatalf("expected 2 enrich keys, got %v", enrich.Locations)
	}
	if _, ok := enrich.Locations["8"]; ok {
		t.Fatal("geo-excluded station leaked into detail request")
	}

	// The roaming location is dropped after enrichment.
	if result.Persisted != 1 {
		t.Fatalf("expected 1 persisted, got %d", result.Persisted)
	}
	known, _ := repo.KnownIDs(context.Background(), desc.ID)
	if _, ok := known[7]; !ok {
		t.Fatal("expected station 7 stored")
	}
	if _, ok := known[9]; ok {
		t.Fatal("roaming station must not be stored")
	}
}

func TestRunProviderUnionsWindows(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Query().Get("window") {
		case "west":
			_, _ = w.Write([]byte(`[
				{"Id": 1, "FriendlyName": "W1", "Access": {"GPSLatitude": 46.0, "GPSLongitude": 14.0}},
				{"Id": 2, "FriendlyName": "Shared", "Access": {"GPSLatitude": 46.1, "GPSLongitude": 14.5}}
			]`))
		case "east":
			_, _ = w.Write([]byte(`[
				{"Id": 2, "FriendlyName": "Shared", "Access": {"GPSLatitude": 46.1, "GPSLongitude": 14.5}},
				{"Id": 3, "FriendlyName": "E1", "Access": {"GPSLatitude": 46.2, "GPSLongitude": 15.7}}
			]`))
		default:
			http.Error(w, "missing window", http.StatusBadRequest)
		}
	}))
	defer server.Close()

	desc := providers.Descriptor{
		ID:      2,
		Name:    "Petrol",
		ListURL: server.URL,
		Windows: []string{"window=west", "window=east"},
		Schema:  providers.SchemaFlatArray,
	}
	repo := memory.NewStationRepository()
	runner := newTestRunner(t, mustRegistry(t, desc), repo, nil)

	result, err := runner.RunProvider(context.Background(), desc)
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if result.Fetched != 3 {
		t.Fatalf("expected union of 3 stations, got %d", result.Fetched)
	}
	if result.Persisted != 3 {
		t.Fatalf("expected 3 persisted, got %d", result.Persisted)
	}
}

func TestRunAllIsolatesProviderFailures(t *testing.T) {
	okServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`[{"Id": 5, "FriendlyName": "OK", "Access": {"GPSLatitude": 46.0, "GPSLongitude": 14.0}}]`))
	}))
	defer okServer.Close()
	badServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer badServer.Close()

	registry := mustRegistry(t,
		providers.Descriptor{ID: 1, Name: "Broken", ListURL: badServer.URL, Schema: providers.SchemaFlatArray},
		providers.Descriptor{ID: 2, Name: "Healthy", ListURL: okServer.URL, Schema: providers.SchemaFlatArray},
	)
	repo := memory.NewStationRepository()
	runner := newTestRunner(t, registry, repo, nil)

	if err := runner.RunAll(context.Background()); err != nil {
		t.Fatalf("run all: %v", err)
	}
	known, err := repo.KnownIDs(context.Background(), 2)
	if err != nil {
		t.Fatalf("known ids: %v", err)
	}
	if len(known) != 1 {
		t.Fatal("healthy provider must persist despite the broken one")
	}
}

func TestRunProviderInFlight(t *testing.T) {
	desc := providers.Descriptor{ID: 6, Name: "Avant2Go", ListURL: "http://example.invalid", Schema: providers.SchemaNestedResults}
	runner := newTestRunner(t, mustRegistry(t, desc), memory.NewStationRepository(), nil)

	lock := runner.providerLock(desc.ID)
	lock.Lock()
	defer lock.Unlock()

	_, err := runner.RunProvider(context.Background(), desc)
	if err != ErrCycleInFlight {
		t.Fatalf("expected ErrCycleInFlight, got %v", err)
	}
}

func TestRunAllStopsOnCancelledContext(t *testing.T) {
	desc := providers.Descriptor{ID: 7, Name: "Implera", ListURL: "http://example.invalid", Schema: providers.SchemaMarkerXML}
	runner := newTestRunner(t, mustRegistry(t, desc), memory.NewStationRepository(), nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := runner.RunAll(ctx); err == nil {
		t.Fatal("expected context error")
	}
}
