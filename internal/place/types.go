package place

// StatusType is the normalised availability state of a county or
// municipality.
type StatusType string

const (
	// StatusActive means orders can be placed.
	StatusActive StatusType = "active"

	// StatusInactive means the place is not currently offered.
	StatusInactive StatusType = "inactive"

	// StatusUnavailable means the place is temporarily out of service
	// and an alert message should be shown.
	StatusUnavailable StatusType = "unavailable"
)

// ReportType identifies the kind of report a municipality can produce.
type ReportType string

const (
	// ReportFull is a full lien search report.
	ReportFull ReportType = "full"

	// ReportCard is a summary card report.
	ReportCard ReportType = "card"
)

// ServiceFlags records which search services a municipality offers.
// Flags are OR'd across the municipality's raw service list and are
// never unset once true.
type ServiceFlags struct {
	Code      bool `json:"code"`
	Permits   bool `json:"permits"`
	Liens     bool `json:"liens"`
	Utilities bool `json:"utilities"`
}

// County is the flattened view-model for one Place.
type County struct {
	// ID is the upstream PlaceID rendered as text. Unique across counties.
	ID string `json:"id"`

	Name  string `json:"name"`
	State string `json:"state"`

	Status StatusType `json:"status"`

	// AlertMessage is shown when the county is unavailable.
	AlertMessage string `json:"alertMessage,omitempty"`

	// Municipalities are ordered as received from the upstream.
	Municipalities []Municipality `json:"municipalities"`
}

// Municipality is the flattened view-model for one SubPlace.
type Municipality struct {
	// ID is "{PlaceID}-{SubPlaceName}", unique within a county.
	ID string `json:"id"`

	Name string `json:"name"`

	// CountyID references the parent County.ID.
	CountyID string `json:"countyId"`

	Status StatusType `json:"status"`

	AlertMessage string `json:"alertMessage,omitempty"`

	AvailableServices ServiceFlags `json:"availableServices"`

	// ReportTypes follow input order; duplicates are preserved.
	ReportTypes []ReportType `json:"reportTypes"`
}
