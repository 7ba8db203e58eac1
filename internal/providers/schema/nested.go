package schema

import (
	"crypto/sha256"
	"encoding/binary"
	"encoding/json"
	"strings"

	providers "chargewatch/internal/providers/domain"
)

// NestedResultsAdapter decodes a JSON object with a "results" array
// (Avant2Go). The feed exposes no stable numeric id, so station identity is a
// content hash over the canonical field tuple. Unlike an identity hash, the
// derived id is stable across process restarts.
type NestedResultsAdapter struct{}

type nestedDocument struct {
	Results []nestedResult `json:"results"`
}

type nestedResult struct {
	Name    string `json:"name"`
	Address struct {
		Address1 string `json:"address1"`
		ZipCode  string `json:"zipCode"`
		City     string `json:"city"`
	} `json:"address"`
	GeoLocation struct {
		Lat float64 `json:"lat"`
		Lng float64 `json:"lng"`
	} `json:"geoLocation"`
}

// Decode implements Adapter.
func (NestedResultsAdapter) Decode(raw []byte) ([]providers.Station, error) {
	var doc nestedDocument
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, &DecodeError{Kind: providers.SchemaNestedResults, Err: err}
	}
	out := make([]providers.Station, 0, len(doc.Results))
	for _, res := range doc.Results {
		geo := coordString(res.GeoLocation.Lat, res.GeoLocation.Lng)
		out = append(out, providers.Station{
			ID:       contentID(res.Name, res.Address.Address1, res.Address.City, geo),
			Geo:      geo,
			Name:     res.Name,
			Address:  joinNonEmpty(res.Address.Address1, res.Address.ZipCode+" "+res.Address.City),
			Location: geo,
		})
	}
	return out, nil
}

// contentID derives a stable non-negative surrogate id from the canonical
// field tuple: the first 8 bytes of its sha256 digest with the sign bit
// cleared.
func contentID(fields ...string) int64 {
	sum := sha256.Sum256([]byte(strings.Join(fields, "|")))
	return int64(binary.BigEndian.Uint64(sum[:8]) &^ (1 << 63))
}

func joinNonEmpty(parts ...string) string {
	var kept []string
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			kept = append(kept, p)
		}
	}
	return strings.Join(kept, ", ")
}
