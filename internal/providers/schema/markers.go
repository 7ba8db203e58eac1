package schema

import (
	"encoding/xml"

	providers "chargewatch/internal/providers/domain"
)

// MarkerXMLAdapter decodes an XML document with repeated marker elements
// (Implera). encoding/xml skips elements and attributes with no matching
// field, which gives the required forward-compatible decoding for free.
type MarkerXMLAdapter struct{}

type markerDocument struct {
	XMLName xml.Name `xml:"markers"`
	Markers []marker `xml:"marker"`
}

type marker struct {
	ID      int64   `xml:"id"`
	Name    string  `xml:"name"`
	Address string  `xml:"address"`
	Town    string  `xml:"town"`
	Lat     float64 `xml:"lat"`
	Lng     float64 `xml:"lng"`
}

// Decode implements Adapter.
func (MarkerXMLAdapter) Decode(raw []byte) ([]providers.Station, error) {
	var doc markerDocument
	if err := xml.Unmarshal(raw, &doc); err != nil {
		return nil, &DecodeError{Kind: providers.SchemaMarkerXML, Err: err}
	}
	out := make([]providers.Station, 0, len(doc.Markers))
	for _, m := range doc.Markers {
		geo := coordString(m.Lat, m.Lng)
		out = append(out, providers.Station{
			ID:       m.ID,
			Geo:      geo,
			Name:     m.Name,
			Address:  joinNonEmpty(m.Address, m.Town),
			Location: geo,
		})
	}
	return out, nil
}
