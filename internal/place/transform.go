package place

import (
	"encoding/json"
	"strconv"
	"strings"

	"github.com/munisearch/lienportal-core/internal/govmetric"
	"github.com/munisearch/lienportal-core/internal/infrastructure/logging"
)

// fallbackAlertMessage is shown when a place is unavailable but the
// upstream supplied no message.
const fallbackAlertMessage = "This area is temporarily unavailable. Please check back later."

// Transformer converts raw upstream places into the County view-model.
//
// Malformed records are skipped and logged at per-record granularity;
// the transformation itself never fails.
type Transformer struct {
	state string
	log   *logging.Logger
}

// NewTransformer creates a Transformer.
//
// Parameters:
//   - state: Two-letter state code stamped on every county (e.g. "FL")
//   - log: Logger for skipped-record diagnostics
func NewTransformer(state string, log *logging.Logger) *Transformer {
	return &Transformer{
		state: state,
		log:   log.With("component", "place"),
	}
}

// TransformPlaces converts raw places into counties.
//
// One County is produced per input Place, preserving input order.
// A nil input yields an empty slice, never nil dereference or error.
//
// Parameters:
//   - places: Raw places from the upstream
//
// Returns:
//   - []County: Transformed counties, possibly empty, never nil
func (t *Transformer) TransformPlaces(places []govmetric.Place) []County {
	counties := make([]County, 0, len(places))

	for _, p := range places {
		countyID := strconv.Itoa(p.PlaceID)
		status := MapStatus(p.PlaceStatus)

		county := County{
			ID:             countyID,
			Name:           p.PlaceName,
			State:          t.state,
			Status:         status,
			AlertMessage:   alertMessage(status, p.PlaceStatusMessage),
			Municipalities: t.transformMunicipalities(countyID, p.SubPlace),
		}
		counties = append(counties, county)
	}

	return counties
}

// transformMunicipalities maps a Place's SubPlace list. Absent, null,
// and empty lists are equivalent: all yield an empty slice.
func (t *Transformer) transformMunicipalities(countyID string, subPlaces []govmetric.SubPlace) []Municipality {
	municipalities := make([]Municipality, 0, len(subPlaces))
	seen := make(map[string]struct{}, len(subPlaces))

	for _, sp := range subPlaces {
		if sp.SubPlaceName == "" {
			t.log.Warn("skipping municipality without name", "county_id", countyID)
			continue
		}

		// The derived ID is "{countyID}-{name}": a repeated name would
		// collide, so the first occurrence wins.
		if _, dup := seen[sp.SubPlaceName]; dup {
			t.log.Warn("skipping municipality with duplicate name",
				"county_id", countyID,
				"name", sp.SubPlaceName,
			)
			continue
		}
		seen[sp.SubPlaceName] = struct{}{}

		services, ok := t.transformServices(sp.Service)
		if !ok {
			t.log.Warn("skipping municipality with malformed services",
				"county_id", countyID,
				"name", sp.SubPlaceName,
			)
			continue
		}

		status := MapStatus(sp.SubPlaceStatus)

		municipalities = append(municipalities, Municipality{
			ID:                countyID + "-" + sp.SubPlaceName,
			Name:              sp.SubPlaceName,
			CountyID:          countyID,
			Status:            status,
			AlertMessage:      alertMessage(status, sp.SubPlaceStatusMessage),
			AvailableServices: services,
			ReportTypes:       t.transformReportTypes(countyID, sp.SubPlaceName, sp.Report),
		})
	}

	return municipalities
}

// transformServices derives service flags from a SubPlace's raw
// Service field. All service-name substring matching lives here.
//
// Returns ok=false when the field is missing, null, or not a JSON
// array; the caller skips the whole municipality.
func (t *Transformer) transformServices(raw json.RawMessage) (ServiceFlags, bool) {
	var flags ServiceFlags

	trimmed := strings.TrimSpace(string(raw))
	if trimmed == "" || trimmed == "null" {
		return flags, false
	}

	var services []govmetric.PlaceService
	if err := json.Unmarshal(raw, &services); err != nil {
		return flags, false
	}

	for _, svc := range services {
		name := strings.ToLower(svc.PlaceServiceName)
		if strings.Contains(name, "code") || strings.Contains(name, "enforcement") {
			flags.Code = true
		}
		if strings.Contains(name, "permit") {
			flags.Permits = true
		}
		if strings.Contains(name, "lien") || strings.Contains(name, "municipal") {
			flags.Liens = true
		}
		if strings.Contains(name, "utility") || strings.Contains(name, "utilities") {
			flags.Utilities = true
		}
	}

	return flags, true
}

// transformReportTypes maps raw report entries to report types.
// Unknown codes are logged and skipped; duplicates are preserved.
func (t *Transformer) transformReportTypes(countyID, name string, reports []govmetric.PlaceReport) []ReportType {
	types := make([]ReportType, 0, len(reports))

	for _, r := range reports {
		switch r.SubPlaceOrderReportType {
		case "1":
			types = append(types, ReportFull)
		case "0":
			types = append(types, ReportCard)
		default:
			t.log.Warn("skipping unknown report type",
				"county_id", countyID,
				"name", name,
				"report_type", r.SubPlaceOrderReportType,
			)
		}
	}

	return types
}

// MapStatus normalises a raw upstream status string.
//
// Matching is case-insensitive. Unrecognised values map to inactive,
// not an error.
func MapStatus(raw string) StatusType {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "active", "available":
		return StatusActive
	case "inactive":
		return StatusInactive
	case "unavailable", "down", "maintenance", "error":
		return StatusUnavailable
	default:
		return StatusInactive
	}
}

// alertMessage selects the message to surface for a place. Unavailable
// places always get a message, falling back when the upstream gave none.
func alertMessage(status StatusType, upstream string) string {
	if upstream != "" {
		return upstream
	}
	if status == StatusUnavailable {
		return fallbackAlertMessage
	}
	return ""
}
