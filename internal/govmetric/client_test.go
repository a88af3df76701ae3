package govmetric

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/munisearch/lienportal-core/internal/infrastructure/logging"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()

	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	return New(Config{
		BaseURL: srv.URL,
		Timeout: 5 * time.Second,
	}, logging.Default())
}

func TestGetPlaces(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/GovMetricAPI/GetPlaces" {
			t.Errorf("unexpected path %q", r.URL.Path)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`[
			{
				"PlaceID": 1,
				"PlaceName": "Miami-Dade",
				"PlaceStatus": "Active",
				"PlaceStatusMessage": "",
				"SubPlace": [
					{
						"SubPlaceName": "Miami",
						"SubPlaceStatus": "Active",
						"SubPlaceStatusMessage": "",
						"Service": [{"PlaceService": "x", "PlaceServiceName": "Code Enforcement"}],
						"Report": [{"SubPlaceOrderReportType": "1"}]
					}
				]
			}
		]`))
	})

	places, err := client.GetPlaces(context.Background())
	if err != nil {
		t.Fatalf("GetPlaces() error = %v", err)
	}
	if len(places) != 1 {
		t.Fatalf("got %d places, want 1", len(places))
	}
	if places[0].PlaceID != 1 || places[0].PlaceName != "Miami-Dade" {
		t.Errorf("unexpected place %+v", places[0])
	}
	if len(places[0].SubPlace) != 1 {
		t.Fatalf("got %d subplaces, want 1", len(places[0].SubPlace))
	}
	if len(places[0].SubPlace[0].Report) != 1 {
		t.Errorf("got %d reports, want 1", len(places[0].SubPlace[0].Report))
	}
}

func TestGetPlaces_UpstreamError(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	})

	_, err := client.GetPlaces(context.Background())
	if !errors.Is(err, ErrUnavailable) {
		t.Errorf("error = %v, want ErrUnavailable", err)
	}
}

func TestGetPlaces_BadJSON(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{not valid`))
	})

	_, err := client.GetPlaces(context.Background())
	if !errors.Is(err, ErrBadResponse) {
		t.Errorf("error = %v, want ErrBadResponse", err)
	}
}

func TestLogin(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/GovMetricAPI/GovmetricLogin" {
			t.Errorf("unexpected path %q", r.URL.Path)
		}
		q := r.URL.Query()
		if q.Get("iUserName") != "user@example.com" {
			t.Errorf("iUserName = %q", q.Get("iUserName"))
		}
		if q.Get("iUserPassword") != "secret" {
			t.Errorf("iUserPassword = %q", q.Get("iUserPassword"))
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{
			"LoginIsValid": true,
			"UserID": "u-42",
			"OrganizationID": 7,
			"OrganizationName": "Acme Title",
			"RoleId": 3,
			"RoleName": "Searcher",
			"UserTimeZone": "America/New_York"
		}`))
	})

	resp, err := client.Login(context.Background(), "user@example.com", "secret")
	if err != nil {
		t.Fatalf("Login() error = %v", err)
	}
	if !resp.LoginIsValid {
		t.Error("LoginIsValid = false, want true")
	}
	if resp.UserID != "u-42" {
		t.Errorf("UserID = %q, want u-42", resp.UserID)
	}
	if resp.OrganizationID != 7 {
		t.Errorf("OrganizationID = %d, want 7", resp.OrganizationID)
	}
}

func TestLogin_InvalidCredentials(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"LoginIsValid": false, "Error": [{"Message": "Bad password"}]}`))
	})

	resp, err := client.Login(context.Background(), "user@example.com", "wrong")
	if err != nil {
		t.Fatalf("Login() error = %v", err)
	}
	if resp.LoginIsValid {
		t.Error("LoginIsValid = true, want false")
	}
	if got := resp.FirstErrorMessage(); got != "Bad password" {
		t.Errorf("FirstErrorMessage() = %q, want %q", got, "Bad password")
	}
}

func TestFirstErrorMessage_Empty(t *testing.T) {
	resp := &LoginResponse{}
	if got := resp.FirstErrorMessage(); got != "" {
		t.Errorf("FirstErrorMessage() = %q, want empty", got)
	}
}

func TestGetPlaces_ContextCancelled(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := client.GetPlaces(ctx)
	if err == nil {
		t.Error("expected error from cancelled context")
	}
}
