package providers

import (
	"errors"
	"testing"
)

func TestDefaultRegistryOrder(t *testing.T) {
	registry := Default()
	all := registry.All()
	if len(all) != 7 {
		t.Fatalf("expected 7 providers, got %d", len(all))
	}
	for i, desc := range all {
		if desc.ID != i+1 {
			t.Fatalf("expected id %d at position %d, got %d", i+1, i, desc.ID)
		}
	}
	petrol := all[1]
	if petrol.Name != "Petrol" || len(petrol.Windows) != 2 {
		t.Fatalf("unexpected Petrol descriptor %+v", petrol)
	}
	if !all[0].TwoPhase() || all[2].TwoPhase() {
		t.Fatal("unexpected two-phase flags")
	}
}

func TestDescriptorForUnknown(t *testing.T) {
	registry := Default()
	_, err := registry.DescriptorFor(99)
	if !errors.Is(err, ErrUnknownProvider) {
		t.Fatalf("expected ErrUnknownProvider, got %v", err)
	}
}

func TestNewRegistryRejectsDuplicateID(t *testing.T) {
	valid := Descriptor{ID: 1, Name: "a", ListURL: "http://a", Schema: SchemaFlatArray}
	_, err := NewRegistry(valid, Descriptor{ID: 1, Name: "b", ListURL: "http://b", Schema: SchemaFlatArray})
	if err == nil {
		t.Fatal("expected duplicate id error")
	}
}

func TestDescriptorValidate(t *testing.T) {
	cases := []struct {
		name string
		desc Descriptor
	}{
		{"zero id", Descriptor{Name: "a", ListURL: "http://a", Schema: SchemaFlatArray}},
		{"empty name", Descriptor{ID: 1, ListURL: "http://a", Schema: SchemaFlatArray}},
		{"empty url", Descriptor{ID: 1, Name: "a", Schema: SchemaFlatArray}},
		{"bad schema", Descriptor{ID: 1, Name: "a", ListURL: "http://a", Schema: "nope"}},
	}
	for _, tc := range cases {
		if err := tc.desc.Validate(); err == nil {
			t.Errorf("%s: expected validation error", tc.name)
		}
	}
}
