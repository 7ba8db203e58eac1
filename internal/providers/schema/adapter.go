// Package schema decodes heterogeneous provider payloads into the canonical
// station list. Adapters tolerate unknown fields; only structurally invalid
// input fails, with a *DecodeError.
package schema

import (
	"fmt"
	"strconv"

	providers "chargewatch/internal/providers/domain"
)

// Adapter decodes one raw list response body.
type Adapter interface {
	Decode(raw []byte) ([]providers.Station, error)
}

// DecodeError reports a payload that is not parseable as the expected shape.
type DecodeError struct {
	Kind providers.SchemaKind
	Err  error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("schema: decode %s payload: %v", e.Kind, e.Err)
}

func (e *DecodeError) Unwrap() error { return e.Err }

// ForKind returns the adapter for a schema kind.
func ForKind(kind providers.SchemaKind) (Adapter, error) {
	switch kind {
	case providers.SchemaFlatArray:
		return FlatArrayAdapter{}, nil
	case providers.SchemaNestedResults:
		return NestedResultsAdapter{}, nil
	case providers.SchemaPinsList:
		return PinsListAdapter{}, nil
	case providers.SchemaMarkerXML:
		return MarkerXMLAdapter{}, nil
	default:
		return nil, fmt.Errorf("schema: no adapter for kind %q", kind)
	}
}

func coordString(lat, lng float64) string {
	return strconv.FormatFloat(lat, 'f', -1, 64) + "," + strconv.FormatFloat(lng, 'f', -1, 64)
}
