package govmetric

import "encoding/json"

// Place is a raw county record as returned by GetPlaces.
// Field names mirror the upstream JSON exactly.
type Place struct {
	PlaceID            int        `json:"PlaceID"`
	PlaceName          string     `json:"PlaceName"`
	PlaceStatus        string     `json:"PlaceStatus"`
	PlaceStatusMessage string     `json:"PlaceStatusMessage"`
	SubPlace           []SubPlace `json:"SubPlace"`
}

// SubPlace is a raw municipality record nested under a Place.
//
// Service is kept as raw JSON because the upstream occasionally emits
// it as something other than an array; decoding is deferred so a bad
// Service field skips only the one record.
type SubPlace struct {
	SubPlaceName          string          `json:"SubPlaceName"`
	SubPlaceStatus        string          `json:"SubPlaceStatus"`
	SubPlaceStatusMessage string          `json:"SubPlaceStatusMessage"`
	Service               json.RawMessage `json:"Service"`
	Report                []PlaceReport   `json:"Report"`
}

// PlaceService is one entry of a SubPlace's Service array.
type PlaceService struct {
	PlaceService     string `json:"PlaceService"`
	PlaceServiceName string `json:"PlaceServiceName"`
}

// PlaceReport is one entry of a SubPlace's Report array.
// SubPlaceOrderReportType is "1" for full reports and "0" for card reports.
type PlaceReport struct {
	SubPlaceOrderReportType string `json:"SubPlaceOrderReportType"`
}

// LoginResponse is the upstream reply to GovmetricLogin.
//
// RoleId, RoleName and UserTimeZone have no stable upstream type and
// are carried opaquely.
type LoginResponse struct {
	LoginIsValid     bool         `json:"LoginIsValid"`
	UserID           string       `json:"UserID"`
	OrganizationID   int          `json:"OrganizationID"`
	OrganizationName string       `json:"OrganizationName"`
	RoleID           any          `json:"RoleId"`
	RoleName         any          `json:"RoleName"`
	UserTimeZone     any          `json:"UserTimeZone"`
	Error            []ErrorEntry `json:"Error"`
}

// ErrorEntry is one structured error message in a login response.
type ErrorEntry struct {
	Message string `json:"Message"`
}

// FirstErrorMessage returns the first structured error message, or ""
// when the upstream supplied none.
func (r *LoginResponse) FirstErrorMessage() string {
	if len(r.Error) > 0 {
		return r.Error[0].Message
	}
	return ""
}
