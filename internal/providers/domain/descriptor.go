package providers

import "errors"

// SchemaKind selects the adapter used to decode a provider's list payload.
type SchemaKind string

const (
	// SchemaFlatArray is a top-level JSON array of station objects.
	SchemaFlatArray SchemaKind = "flat-array"
	// SchemaNestedResults is a JSON object with a "results" array and no
	// stable station id field.
	SchemaNestedResults SchemaKind = "nested-results"
	// SchemaPinsList is a JSON object with a "pins" array of lightweight
	// records that require a follow-up detail fetch.
	SchemaPinsList SchemaKind = "pins-list"
	// SchemaMarkerXML is an XML document with repeated marker elements.
	SchemaMarkerXML SchemaKind = "marker-xml"
)

// ErrUnknownProvider is returned by registry lookups for ids not in the table.
var ErrUnknownProvider = errors.New("providers: unknown provider")

// Descriptor describes one upstream charging-station provider. Descriptors
// are immutable and defined once at process start.
type Descriptor struct {
	// ID is the stable small integer used as the persistence foreign key.
	ID int
	// Name is the stable display name used in filenames and messages.
	Name string
	// ListURL is the list endpoint.
	ListURL string
	// DetailURL is the batch detail endpoint; empty for single-phase providers.
	DetailURL string
	// Windows holds extra query fragments for providers whose upstream caps
	// result counts per search window. One list request is issued per window
	// and the decoded lists are unioned. Empty means a single plain request.
	Windows []string
	// Schema selects the decode adapter.
	Schema SchemaKind
	// NeedsGeoFilter marks providers that return stations outside the region
	// of interest.
	NeedsGeoFilter bool
}

// Validate checks descriptor invariants.
func (d Descriptor) Validate() error {
	if d.ID <= 0 {
		return errors.New("providers: descriptor id must be positive")
	}
	if d.Name == "" {
		return errors.New("providers: empty descriptor name")
	}
	if d.ListURL == "" {
		return errors.New("providers: empty list url")
	}
	switch d.Schema {
	case SchemaFlatArray, SchemaNestedResults, SchemaPinsList, SchemaMarkerXML:
	default:
		return errors.New("providers: unknown schema kind")
	}
	return nil
}

// TwoPhase reports whether the provider requires a detail enrichment fetch.
func (d Descriptor) TwoPhase() bool {
	return d.DetailURL != ""
}
