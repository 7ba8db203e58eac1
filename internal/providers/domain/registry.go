package providers

import "fmt"

// Registry is the static catalog of provider descriptors. Iteration order is
// the declaration order and determines processing order within a run.
type Registry struct {
	ordered []Descriptor
	byID    map[int]Descriptor
}

// NewRegistry builds a registry from descriptors, preserving order.
func NewRegistry(descriptors ...Descriptor) (*Registry, error) {
	r := &Registry{byID: make(map[int]Descriptor, len(descriptors))}
	for _, d := range descriptors {
		if err := d.Validate(); err != nil {
			return nil, err
		}
		if _, ok := r.byID[d.ID]; ok {
			return nil, fmt.Errorf("providers: duplicate provider id %d", d.ID)
		}
		r.byID[d.ID] = d
		r.ordered = append(r.ordered, d)
	}
	return r, nil
}

// All returns descriptors in declaration order.
func (r *Registry) All() []Descriptor {
	out := make([]Descriptor, len(r.ordered))
	copy(out, r.ordered)
	return out
}

// DescriptorFor looks up a descriptor by provider id.
func (r *Registry) DescriptorFor(id int) (Descriptor, error) {
	d, ok := r.byID[id]
	if !ok {
		return Descriptor{}, fmt.Errorf("%w: id %d", ErrUnknownProvider, id)
	}
	return d, nil
}

// Default returns the production provider table.
func Default() *Registry {
	r, err := NewRegistry(
		Descriptor{
			ID:             1,
			Name:           "GremoNaElektriko",
			ListURL:        "https://cp.emobility.gremonaelektriko.si/api/v2/app/pins?includeAvailability=false",
			DetailURL:      "https://cp.emobility.gremonaelektriko.si/api/v2/app/locations",
			Schema:         SchemaPinsList,
			NeedsGeoFilter: true,
		},
		Descriptor{
			ID:      2,
			Name:    "Petrol",
			ListURL: "https://onecharge.eu/DuskyWebApi/api/locations?showAlsoRoaming=false&onlyCurrentlyAvailable=false&onlyFreeOfCharge=false",
			// The upstream caps results per search circle, so western and
			// eastern Slovenia are queried separately and unioned.
			Windows: []string{
				"searchLatitude=46.050000&searchLongitude=14.000000&searchRadius=250",
				"searchLatitude=46.200000&searchLongitude=15.700000&searchRadius=250",
			},
			Schema: SchemaFlatArray,
		},
		Descriptor{
			ID:      3,
			Name:    "MoonCharge",
			ListURL: "https://charge.moon-power.si/DuskyWebApi/api/locations?searchLatitude=46.119944&searchLongitude=14.815333&searchRadius=200&showAlsoRoaming=false&onlyCurrentlyAvailable=false&onlyFreeOfCharge=false",
			Schema:  SchemaFlatArray,
		},
		Descriptor{
			ID:             4,
			Name:           "eFrend",
			ListURL:        "https://efrend.eu.charge.ampeco.tech/api/v2/app/pins",
			DetailURL:      "https://efrend.eu.charge.ampeco.tech/api/v2/app/locations",
			Schema:         SchemaPinsList,
			NeedsGeoFilter: true,
		},
		Descriptor{
			ID:             5,
			Name:           "MegaTel",
			ListURL:        "https://megatel.eu.charge.ampeco.tech/api/v2/app/pins",
			DetailURL:      "https://megatel.eu.charge.ampeco.tech/api/v2/app/locations",
			Schema:         SchemaPinsList,
			NeedsGeoFilter: true,
		},
		Descriptor{
			ID:      6,
			Name:    "Avant2Go",
			ListURL: "https://api.avant2go.com/api/locations?providerID=58ee0cc36d818563a9ff46af&populate=%5B%22companyID%22,%22providerID%22,%22regionID%22%5D&filters=%7B%22chargers%22%3A%5B1%5D%7D&limit=1000&position=14.815333%2C46.119944&searchFields=name%2Caddress.city%2Caddress.address1",
			Schema:  SchemaNestedResults,
		},
		Descriptor{
			ID:      7,
			Name:    "Implera",
			ListURL: "https://napolni.me/app/_get_P_data_xml.php?lat=46.119944&lng=14.815333&radius=200000",
			Schema:  SchemaMarkerXML,
		},
	)
	if err != nil {
		// The table above is a compile-time constant in all but syntax.
		panic(err)
	}
	return r
}
