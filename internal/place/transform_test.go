package place

import (
	"encoding/json"
	"reflect"
	"testing"

	"github.com/munisearch/lienportal-core/internal/govmetric"
	"github.com/munisearch/lienportal-core/internal/infrastructure/logging"
)

func newTestTransformer(t *testing.T) *Transformer {
	t.Helper()
	return NewTransformer("FL", logging.Default())
}

func rawServices(t *testing.T, services []govmetric.PlaceService) json.RawMessage {
	t.Helper()
	b, err := json.Marshal(services)
	if err != nil {
		t.Fatalf("marshalling services: %v", err)
	}
	return b
}

func TestTransformPlaces_OnePerPlace(t *testing.T) {
	tr := newTestTransformer(t)

	places := []govmetric.Place{
		{PlaceID: 3, PlaceName: "Broward", PlaceStatus: "Active"},
		{PlaceID: 1, PlaceName: "Miami-Dade", PlaceStatus: "Active"},
		{PlaceID: 2, PlaceName: "Palm Beach", PlaceStatus: "Inactive"},
	}

	counties := tr.TransformPlaces(places)
	if len(counties) != 3 {
		t.Fatalf("got %d counties, want 3", len(counties))
	}

	// Order preserved, PlaceID mapped to string ID.
	wantIDs := []string{"3", "1", "2"}
	for i, want := range wantIDs {
		if counties[i].ID != want {
			t.Errorf("counties[%d].ID = %q, want %q", i, counties[i].ID, want)
		}
	}
	for _, c := range counties {
		if c.State != "FL" {
			t.Errorf("county %s State = %q, want FL", c.ID, c.State)
		}
	}
}

func TestTransformPlaces_EmptyInput(t *testing.T) {
	tr := newTestTransformer(t)

	for _, places := range [][]govmetric.Place{nil, {}} {
		counties := tr.TransformPlaces(places)
		if counties == nil {
			t.Error("TransformPlaces returned nil, want empty slice")
		}
		if len(counties) != 0 {
			t.Errorf("got %d counties, want 0", len(counties))
		}
	}
}

func TestTransformPlaces_MissingSubPlaceVariants(t *testing.T) {
	tr := newTestTransformer(t)

	// Absent, null, and empty SubPlace all decode to the same thing and
	// must all yield an empty municipality list.
	tests := []struct {
		name     string
		subPlace []govmetric.SubPlace
	}{
		{"nil", nil},
		{"empty", []govmetric.SubPlace{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			counties := tr.TransformPlaces([]govmetric.Place{
				{PlaceID: 1, PlaceName: "Monroe", PlaceStatus: "Active", SubPlace: tt.subPlace},
			})
			if len(counties) != 1 {
				t.Fatalf("got %d counties, want 1", len(counties))
			}
			if counties[0].Municipalities == nil {
				t.Error("Municipalities is nil, want empty slice")
			}
			if len(counties[0].Municipalities) != 0 {
				t.Errorf("got %d municipalities, want 0", len(counties[0].Municipalities))
			}
		})
	}
}

func TestTransformPlaces_SkipsMalformedSubPlaces(t *testing.T) {
	tr := newTestTransformer(t)

	good := rawServices(t, []govmetric.PlaceService{{PlaceServiceName: "Lien Search"}})

	places := []govmetric.Place{
		{
			PlaceID:     5,
			PlaceName:   "Orange",
			PlaceStatus: "Active",
			SubPlace: []govmetric.SubPlace{
				{SubPlaceName: "", SubPlaceStatus: "Active", Service: good},
				{SubPlaceName: "Orlando", SubPlaceStatus: "Active", Service: good},
				{SubPlaceName: "Winter Park", SubPlaceStatus: "Active", Service: json.RawMessage(`"oops"`)},
				{SubPlaceName: "Apopka", SubPlaceStatus: "Active", Service: json.RawMessage(`null`)},
				{SubPlaceName: "Ocoee", SubPlaceStatus: "Active"},
			},
		},
	}

	counties := tr.TransformPlaces(places)
	if len(counties) != 1 {
		t.Fatalf("got %d counties, want 1", len(counties))
	}

	// Only the one valid sibling survives; the rest are skipped without
	// failing the county.
	munis := counties[0].Municipalities
	if len(munis) != 1 {
		t.Fatalf("got %d municipalities, want 1", len(munis))
	}
	if munis[0].Name != "Orlando" {
		t.Errorf("municipality name = %q, want Orlando", munis[0].Name)
	}
	if munis[0].ID != "5-Orlando" {
		t.Errorf("municipality ID = %q, want 5-Orlando", munis[0].ID)
	}
	if munis[0].CountyID != "5" {
		t.Errorf("municipality CountyID = %q, want 5", munis[0].CountyID)
	}
}

func TestTransformServices_Flags(t *testing.T) {
	tr := newTestTransformer(t)

	tests := []struct {
		name     string
		services []govmetric.PlaceService
		want     ServiceFlags
	}{
		{
			name:     "code enforcement",
			services: []govmetric.PlaceService{{PlaceServiceName: "Code Enforcement"}},
			want:     ServiceFlags{Code: true},
		},
		{
			name:     "enforcement only",
			services: []govmetric.PlaceService{{PlaceServiceName: "Enforcement Review"}},
			want:     ServiceFlags{Code: true},
		},
		{
			name:     "permits",
			services: []govmetric.PlaceService{{PlaceServiceName: "Open Permits"}},
			want:     ServiceFlags{Permits: true},
		},
		{
			name:     "liens",
			services: []govmetric.PlaceService{{PlaceServiceName: "Lien Search"}},
			want:     ServiceFlags{Liens: true},
		},
		{
			name:     "municipal maps to liens",
			services: []govmetric.PlaceService{{PlaceServiceName: "Municipal Records"}},
			want:     ServiceFlags{Liens: true},
		},
		{
			name:     "utilities",
			services: []govmetric.PlaceService{{PlaceServiceName: "Utility Billing"}},
			want:     ServiceFlags{Utilities: true},
		},
		{
			name:     "case insensitive",
			services: []govmetric.PlaceService{{PlaceServiceName: "OPEN PERMITS"}},
			want:     ServiceFlags{Permits: true},
		},
		{
			name:     "unknown name ignored",
			services: []govmetric.PlaceService{{PlaceServiceName: "Parking Tickets"}},
			want:     ServiceFlags{},
		},
		{
			name: "flags OR across services",
			services: []govmetric.PlaceService{
				{PlaceServiceName: "Lien Search"},
				{PlaceServiceName: "Open Permits"},
				{PlaceServiceName: "Parking Tickets"},
				{PlaceServiceName: "Municipal Lien"},
			},
			want: ServiceFlags{Permits: true, Liens: true},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := tr.transformServices(rawServices(t, tt.services))
			if !ok {
				t.Fatal("transformServices returned ok=false for valid array")
			}
			if got != tt.want {
				t.Errorf("flags = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestTransformServices_NotAnArray(t *testing.T) {
	tr := newTestTransformer(t)

	tests := []struct {
		name string
		raw  json.RawMessage
	}{
		{"missing", nil},
		{"null", json.RawMessage(`null`)},
		{"object", json.RawMessage(`{"PlaceServiceName":"Lien Search"}`)},
		{"string", json.RawMessage(`"Lien Search"`)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, ok := tr.transformServices(tt.raw); ok {
				t.Error("transformServices returned ok=true, want false")
			}
		})
	}
}

func TestTransformReportTypes(t *testing.T) {
	tr := newTestTransformer(t)

	reports := []govmetric.PlaceReport{
		{SubPlaceOrderReportType: "1"},
		{SubPlaceOrderReportType: "0"},
		{SubPlaceOrderReportType: "7"},
		{SubPlaceOrderReportType: "1"},
	}

	got := tr.transformReportTypes("1", "Miami", reports)

	// Unknown codes skipped, order and duplicates preserved.
	want := []ReportType{ReportFull, ReportCard, ReportFull}
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("reportTypes[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestMapStatus(t *testing.T) {
	tests := []struct {
		raw  string
		want StatusType
	}{
		{"Active", StatusActive},
		{"active", StatusActive},
		{"AVAILABLE", StatusActive},
		{"Inactive", StatusInactive},
		{"Unavailable", StatusUnavailable},
		{"down", StatusUnavailable},
		{"Maintenance", StatusUnavailable},
		{"error", StatusUnavailable},
		{"", StatusInactive},
		{"something else", StatusInactive},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			if got := MapStatus(tt.raw); got != tt.want {
				t.Errorf("MapStatus(%q) = %q, want %q", tt.raw, got, tt.want)
			}
		})
	}
}

func TestAlertMessage_Fallback(t *testing.T) {
	tr := newTestTransformer(t)

	counties := tr.TransformPlaces([]govmetric.Place{
		{PlaceID: 1, PlaceName: "Monroe", PlaceStatus: "Unavailable", PlaceStatusMessage: ""},
		{PlaceID: 2, PlaceName: "Lee", PlaceStatus: "Unavailable", PlaceStatusMessage: "Back Monday"},
		{PlaceID: 3, PlaceName: "Collier", PlaceStatus: "Active", PlaceStatusMessage: ""},
	})

	if counties[0].AlertMessage == "" {
		t.Error("unavailable county without message should get fallback alert")
	}
	if counties[1].AlertMessage != "Back Monday" {
		t.Errorf("AlertMessage = %q, want upstream message", counties[1].AlertMessage)
	}
	if counties[2].AlertMessage != "" {
		t.Errorf("active county AlertMessage = %q, want empty", counties[2].AlertMessage)
	}
}

// TestTransformPlaces_MiamiDade exercises the full path on a realistic
// single-county payload.
func TestTransformPlaces_DuplicateNamesKeepFirst(t *testing.T) {
	tr := newTestTransformer(t)

	places := []govmetric.Place{
		{
			PlaceID:     1,
			PlaceName:   "Miami-Dade",
			PlaceStatus: "Active",
			SubPlace: []govmetric.SubPlace{
				{
					SubPlaceName:   "Miami",
					SubPlaceStatus: "Active",
					Service:        rawServices(t, []govmetric.PlaceService{{PlaceServiceName: "Lien Search"}}),
				},
				{
					SubPlaceName:   "Miami",
					SubPlaceStatus: "Inactive",
					Service:        rawServices(t, []govmetric.PlaceService{{PlaceServiceName: "Permit Review"}}),
				},
				{
					SubPlaceName:   "Hialeah",
					SubPlaceStatus: "Active",
					Service:        rawServices(t, []govmetric.PlaceService{{PlaceServiceName: "Lien Search"}}),
				},
			},
		},
	}

	counties := tr.TransformPlaces(places)
	if len(counties) != 1 {
		t.Fatalf("got %d counties, want 1", len(counties))
	}

	munis := counties[0].Municipalities
	if len(munis) != 2 {
		t.Fatalf("got %d municipalities, want 2", len(munis))
	}
	if munis[0].ID != "1-Miami" || munis[1].ID != "1-Hialeah" {
		t.Errorf("municipality IDs = [%s, %s]", munis[0].ID, munis[1].ID)
	}
	// First occurrence wins: the duplicate's fields are discarded.
	if munis[0].Status != StatusActive || !munis[0].AvailableServices.Liens {
		t.Errorf("kept municipality = %+v, want the first occurrence", munis[0])
	}
	if munis[0].AvailableServices.Permits {
		t.Error("duplicate occurrence leaked its service flags")
	}
}

func TestTransformPlaces_Deterministic(t *testing.T) {
	tr := newTestTransformer(t)

	// Mixed input: healthy records alongside ones the transformer skips.
	places := []govmetric.Place{
		{
			PlaceID:     1,
			PlaceName:   "Miami-Dade",
			PlaceStatus: "Active",
			SubPlace: []govmetric.SubPlace{
				{
					SubPlaceName:   "Miami",
					SubPlaceStatus: "Active",
					Service: rawServices(t, []govmetric.PlaceService{
						{PlaceServiceName: "Lien Search"},
						{PlaceServiceName: "Permit Review"},
					}),
					Report: []govmetric.PlaceReport{
						{SubPlaceOrderReportType: "1"},
						{SubPlaceOrderReportType: "9"},
					},
				},
				{SubPlaceStatus: "Active"}, // no name, skipped
				{
					SubPlaceName: "Hialeah",
					Service:      json.RawMessage(`"not an array"`), // skipped
				},
			},
		},
		{PlaceID: 2, PlaceName: "Broward", PlaceStatus: "Down"},
	}

	first := tr.TransformPlaces(places)
	second := tr.TransformPlaces(places)

	if !reflect.DeepEqual(first, second) {
		t.Errorf("repeated transformation diverged:\nfirst:  %+v\nsecond: %+v", first, second)
	}
}

func TestTransformPlaces_MiamiDade(t *testing.T) {
	tr := newTestTransformer(t)

	places := []govmetric.Place{
		{
			PlaceID:            1,
			PlaceName:          "Miami-Dade",
			PlaceStatus:        "Active",
			PlaceStatusMessage: "",
			SubPlace: []govmetric.SubPlace{
				{
					SubPlaceName:   "Miami",
					SubPlaceStatus: "Active",
					Service: rawServices(t, []govmetric.PlaceService{
						{PlaceService: "x", PlaceServiceName: "Code Enforcement"},
					}),
					Report: []govmetric.PlaceReport{{SubPlaceOrderReportType: "1"}},
				},
			},
		},
	}

	counties := tr.TransformPlaces(places)
	if len(counties) != 1 {
		t.Fatalf("got %d counties, want 1", len(counties))
	}

	c := counties[0]
	if c.Name != "Miami-Dade" || c.Status != StatusActive {
		t.Errorf("county = %+v, want Miami-Dade active", c)
	}
	if len(c.Municipalities) != 1 {
		t.Fatalf("got %d municipalities, want 1", len(c.Municipalities))
	}

	m := c.Municipalities[0]
	if m.Name != "Miami" {
		t.Errorf("municipality name = %q, want Miami", m.Name)
	}
	want := ServiceFlags{Code: true}
	if m.AvailableServices != want {
		t.Errorf("availableServices = %+v, want only code", m.AvailableServices)
	}
	if len(m.ReportTypes) != 1 || m.ReportTypes[0] != ReportFull {
		t.Errorf("reportTypes = %v, want [full]", m.ReportTypes)
	}
}
