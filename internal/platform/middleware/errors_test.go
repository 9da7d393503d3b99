package middleware

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
)

func runErrorHandler(t *testing.T, method, path string, err error) *httptest.ResponseRecorder {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(method, path, nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	ErrorHandler(zerolog.Nop())(err, c)
	return rec
}

func TestErrorHandler_PlainRoute(t *testing.T) {
	rec := runErrorHandler(t, http.MethodGet, "/search", echo.NewHTTPError(http.StatusBadRequest, "query must be at least 2 characters"))

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
	var body ErrorBody
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("failed to unmarshal response: %v", err)
	}
	if body.Error != "query must be at least 2 characters" {
		t.Errorf("unexpected error message: %q", body.Error)
	}
	if body.StatusCode != http.StatusBadRequest {
		t.Errorf("expected status_code 400, got %d", body.StatusCode)
	}
	if body.Timestamp == "" {
		t.Error("expected timestamp")
	}
}

func TestErrorHandler_FHIRRoute(t *testing.T) {
	rec := runErrorHandler(t, http.MethodGet, "/fhir/CodeSystem/loinc", echo.NewHTTPError(http.StatusNotFound, "CodeSystem/loinc not found"))

	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
	if ct := rec.Header().Get(echo.HeaderContentType); ct != "application/fhir+json; charset=utf-8" {
		t.Errorf("expected FHIR content type, got %q", ct)
	}
	var outcome map[string]interface{}
	if err := json.Unmarshal(rec.Body.Bytes(), &outcome); err != nil {
		t.Fatalf("failed to unmarshal response: %v", err)
	}
	if outcome["resourceType"] != "OperationOutcome" {
		t.Fatalf("expected OperationOutcome, got %v", outcome["resourceType"])
	}
	issue := outcome["issue"].([]interface{})[0].(map[string]interface{})
	if issue["code"] != "not-found" {
		t.Errorf("expected not-found issue, got %v", issue["code"])
	}
	if issue["diagnostics"] != "CodeSystem/loinc not found" {
		t.Errorf("unexpected diagnostics: %v", issue["diagnostics"])
	}
}

func TestErrorHandler_HidesInternalErrors(t *testing.T) {
	rec := runErrorHandler(t, http.MethodGet, "/statistics", errors.New("pq: connection refused"))

	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", rec.Code)
	}
	var body ErrorBody
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("failed to unmarshal response: %v", err)
	}
	if body.Error != "internal server error" {
		t.Errorf("expected generic message, got %q", body.Error)
	}
}

func TestErrorHandler_HeadHasNoBody(t *testing.T) {
	rec := runErrorHandler(t, http.MethodHead, "/health", echo.ErrServiceUnavailable)
	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503, got %d", rec.Code)
	}
	if rec.Body.Len() != 0 {
		t.Errorf("expected empty body, got %q", rec.Body.String())
	}
}

func TestOutcomeIssueType(t *testing.T) {
	tests := map[int]string{
		http.StatusBadRequest:            "invalid",
		http.StatusNotFound:              "not-found",
		http.StatusMethodNotAllowed:      "not-supported",
		http.StatusRequestEntityTooLarge: "too-costly",
		http.StatusTooManyRequests:       "throttled",
		http.StatusGatewayTimeout:        "timeout",
		http.StatusInternalServerError:   "exception",
		http.StatusConflict:              "processing",
	}
	for code, want := range tests {
		if got := outcomeIssueType(code); got != want {
			t.Errorf("outcomeIssueType(%d) = %q, want %q", code, got, want)
		}
	}
}

func TestIsFHIRPath(t *testing.T) {
	cases := map[string]bool{
		"/fhir":                        true,
		"/fhir/ConceptMap":             true,
		"/fhirish":                     false,
		"/ConceptMap/namaste-to-icd11": false,
	}
	for path, want := range cases {
		if got := IsFHIRPath(path); got != want {
			t.Errorf("IsFHIRPath(%q) = %v, want %v", path, got, want)
		}
	}
}
