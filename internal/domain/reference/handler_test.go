package reference

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
)

func newTestHandler() (*Handler, *echo.Echo) {
	s := NewMemoryStore()
	LoadDemoData(s)
	return NewHandler(s), echo.New()
}

func TestHandler_GetPatient(t *testing.T) {
	h, e := newTestHandler()

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("id")
	c.SetParamValues("1")

	if err := h.GetPatient(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", rec.Code)
	}

	var body map[string]any
	json.Unmarshal(rec.Body.Bytes(), &body)
	if body["date_of_birth"] != "1990-01-15" || body["sex"] != "male" {
		t.Errorf("unexpected body: %v", body)
	}
}

func TestHandler_GetPatient_NotFound(t *testing.T) {
	h, e := newTestHandler()

	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), httptest.NewRecorder())
	c.SetParamNames("id")
	c.SetParamValues("999")

	err := h.GetPatient(c)
	var httpErr *echo.HTTPError
	if !errors.As(err, &httpErr) {
		t.Fatalf("expected HTTPError, got %v", err)
	}
	if httpErr.Code != http.StatusNotFound || httpErr.Message != "Patient with id 999 not found" {
		t.Errorf("unexpected error: %d %v", httpErr.Code, httpErr.Message)
	}
}

func TestHandler_GetPatient_InvalidID(t *testing.T) {
	h, e := newTestHandler()

	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), httptest.NewRecorder())
	c.SetParamNames("id")
	c.SetParamValues("abc")

	err := h.GetPatient(c)
	var httpErr *echo.HTTPError
	if !errors.As(err, &httpErr) || httpErr.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %v", err)
	}
}

func TestHandler_GetClinicianAndMedication(t *testing.T) {
	h, e := newTestHandler()

	rec := httptest.NewRecorder()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), rec)
	c.SetParamNames("registration_id")
	c.SetParamValues("MD12345")
	if err := h.GetClinician(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	var cl Clinician
	json.Unmarshal(rec.Body.Bytes(), &cl)
	if cl.LastName != "House" {
		t.Errorf("expected House, got %s", cl.LastName)
	}

	c = e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), httptest.NewRecorder())
	c.SetParamNames("code")
	c.SetParamValues("NOPE")
	err := h.GetMedication(c)
	var httpErr *echo.HTTPError
	if !errors.As(err, &httpErr) || httpErr.Message != "Medication with code NOPE not found" {
		t.Fatalf("expected medication not found, got %v", err)
	}
}
