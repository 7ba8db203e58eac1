package notify

import (
	"context"

	stations "chargewatch/internal/stations/domain"
)

// Event describes one batch of newly persisted stations for a provider.
type Event struct {
	ProviderID   int               `json:"provider_id"`
	ProviderName string            `json:"provider"`
	NewCount     int               `json:"new_count"`
	StationIDs   []int64           `json:"station_ids"`
	Records      []stations.Record `json:"records,omitempty"`
	SnapshotPath string            `json:"snapshot_path,omitempty"`
}

// Notifier delivers new-station events. Delivery is best effort: the caller
// logs failures and never propagates them into the provider cycle.
type Notifier interface {
	Notify(ctx context.Context, event Event) error
}
