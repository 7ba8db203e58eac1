package providers

// Station is the canonical shape every schema adapter decodes into. The ID is
// unique within a provider only, never across providers.
type Station struct {
	ID int64
	// Geo is the raw "<lat>,<lon>" coordinate string when the payload carries
	// one; empty otherwise.
	Geo string
	// Raw descriptive fields, populated as far as the list payload allows so
	// single-phase providers can be persisted without enrichment.
	Name     string
	Address  string
	Location string
}
