package application

import (
	"encoding/json"
	"errors"
	"strconv"

	"chargewatch/internal/providers/schema"
	stations "chargewatch/internal/stations/domain"
)

// EnrichBody builds the batch detail request payload, a JSON object with a
// single "locations" key mapping each new id (as a string key) to null. The
// body is built by structured serialization; an empty id set is rejected
// explicitly rather than producing a malformed document.
func EnrichBody(ids []int64) ([]byte, error) {
	if len(ids) == 0 {
		return nil, errors.New("watcher: enrich body requires at least one id")
	}
	locations := make(map[string]any, len(ids))
	for _, id := range ids {
		locations[strconv.FormatInt(id, 10)] = nil
	}
	return json.Marshal(map[string]any{"locations": locations})
}

// DetailedLocation is one enriched station record from the detail response.
type DetailedLocation struct {
	ID       int64        `json:"id"`
	Name     string       `json:"name"`
	Address  string       `json:"address"`
	Location string       `json:"location"`
	Zones    []DetailZone `json:"zones"`
}

// DetailZone groups the charge points of a location.
type DetailZone struct {
	Evses []DetailEvse `json:"evses"`
}

// DetailEvse is one charge point; RoamingEvseID is non-null for stations
// operated under a third-party roaming agreement.
type DetailEvse struct {
	RoamingEvseID *string `json:"roamingEvseId"`
}

type detailResponse struct {
	Locations []DetailedLocation `json:"locations"`
}

// DecodeDetail decodes a detail response body.
func DecodeDetail(raw []byte) ([]DetailedLocation, error) {
	var resp detailResponse
	if err := json.Unmarshal(raw, &resp); err != nil {
		return nil, &schema.DecodeError{Kind: "detail-locations", Err: err}
	}
	return resp.Locations, nil
}

// Roaming reports whether the location's first reported charge point carries
// a roaming identifier. Such stations are not directly operated by the
// queried provider and are dropped before persistence.
func (l DetailedLocation) Roaming() bool {
	if len(l.Zones) == 0 || len(l.Zones[0].Evses) == 0 {
		return false
	}
	return l.Zones[0].Evses[0].RoamingEvseID != nil
}

// recordsFromDetail converts non-roaming detailed locations into persistable
// records, preserving the input order.
func recordsFromDetail(locations []DetailedLocation) []stations.Record {
	out := make([]stations.Record, 0, len(locations))
	for _, loc := range locations {
		if loc.Roaming() {
			continue
		}
		out = append(out, stations.Record{
			StationID:    loc.ID,
			FriendlyName: loc.Name,
			Address:      loc.Address,
			Location:     loc.Location,
		})
	}
	return out
}
