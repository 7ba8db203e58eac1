package schema

import (
	"encoding/json"
	"strings"

	providers "chargewatch/internal/providers/domain"
)

// FlatArrayAdapter decodes a top-level JSON array of station objects, the
// shape served by the Dusky white-label API (Petrol, MoonCharge).
type FlatArrayAdapter struct{}

type flatStation struct {
	ID           int64       `json:"Id"`
	FriendlyName string      `json:"FriendlyName"`
	Access       flatAccess  `json:"Access"`
	Address      flatAddress `json:"Address"`
}

type flatAccess struct {
	GPSLatitude  float64 `json:"GPSLatitude"`
	GPSLongitude float64 `json:"GPSLongitude"`
}

type flatAddress struct {
	StreetName  string `json:"StreetName"`
	HouseNumber string `json:"HouseNumber"`
	PostNumber  string `json:"PostNumber"`
	CityName    string `json:"CityName"`
}

// Decode implements Adapter.
func (FlatArrayAdapter) Decode(raw []byte) ([]providers.Station, error) {
	var entries []flatStation
	if err := json.Unmarshal(raw, &entries); err != nil {
		return nil, &DecodeError{Kind: providers.SchemaFlatArray, Err: err}
	}
	out := make([]providers.Station, 0, len(entries))
	for _, e := range entries {
		geo := coordString(e.Access.GPSLatitude, e.Access.GPSLongitude)
		out = append(out, providers.Station{
			ID:       e.ID,
			Geo:      geo,
			Name:     e.FriendlyName,
			Address:  e.Address.join(),
			Location: geo,
		})
	}
	return out, nil
}

func (a flatAddress) join() string {
	street := strings.TrimSpace(a.StreetName + " " + a.HouseNumber)
	city := strings.TrimSpace(a.PostNumber + " " + a.CityName)
	switch {
	case street == "":
		return city
	case city == "":
		return street
	default:
		return street + ", " + city
	}
}
