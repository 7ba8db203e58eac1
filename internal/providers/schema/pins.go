package schema

import (
	"encoding/json"

	providers "chargewatch/internal/providers/domain"
)

// PinsListAdapter decodes a JSON object with a "pins" array of lightweight
// records (Ampeco platform: GremoNaElektriko, eFrend, MegaTel). Pins carry
// only an id and a coordinate string; full records come from the detail
// enrichment phase.
type PinsListAdapter struct{}

type pinsDocument struct {
	Pins []pin `json:"pins"`
}

type pin struct {
	ID  int64  `json:"id"`
	Geo string `json:"geo"`
}

// Decode implements Adapter.
func (PinsListAdapter) Decode(raw []byte) ([]providers.Station, error) {
	var doc pinsDocument
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, &DecodeError{Kind: providers.SchemaPinsList, Err: err}
	}
	out := make([]providers.Station, 0, len(doc.Pins))
	for _, p := range doc.Pins {
		out = append(out, providers.Station{ID: p.ID, Geo: p.Geo})
	}
	return out, nil
}
