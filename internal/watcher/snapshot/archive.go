// Package snapshot archives each batch of newly discovered stations as a
// timestamped JSON file per provider.
package snapshot

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"time"
)

const timestampLayout = "2006.01.02@15.04.05"

// Archive writes snapshot files under a root directory.
type Archive struct {
	root string
	now  func() time.Time
}

// NewArchive constructs an archive rooted at dir.
func NewArchive(dir string) (*Archive, error) {
	if dir == "" {
		return nil, errors.New("snapshot: empty archive root")
	}
	return &Archive{root: dir, now: time.Now}, nil
}

// WriteNewStations writes one snapshot file
// (<root>/<provider>/<provider>_<timestamp>.json) and returns its path.
func (a *Archive) WriteNewStations(providerName string, payload any) (string, error) {
	if a == nil {
		return "", errors.New("snapshot: nil archive")
	}
	if providerName == "" {
		return "", errors.New("snapshot: empty provider name")
	}
	dir := filepath.Join(a.root, providerName)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", err
	}
	name := providerName + "_" + a.now().UTC().Format(timestampLayout) + ".json"
	path := filepath.Join(dir, name)
	data, err := json.MarshalIndent(payload, "", "  ")
	if err != nil {
		return "", err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", err
	}
	return path, nil
}
