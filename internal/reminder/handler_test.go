package reminder

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
)

func newTestHandler(t *testing.T) (*Handler, *Manager) {
	t.Helper()
	src := &stubPrescriptions{meds: map[string][]Medicine{
		"p1": {{Name: "Aspirin", Dose: "100mg", Times: []string{"08:00"}, Frequency: 1}},
	}}
	m, _ := newTestManager(t, src)
	return NewHandler(m), m
}

func TestStartSessionHandler(t *testing.T) {
	h, _ := newTestHandler(t)
	e := echo.New()

	req := httptest.NewRequest(http.MethodPost, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("patientId")
	c.SetParamValues("p1")

	if err := h.StartSession(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}

	var snap Snapshot
	if err := json.Unmarshal(rec.Body.Bytes(), &snap); err != nil {
		t.Fatalf("unmarshal response: %v", err)
	}
	if snap.PatientID != "p1" || len(snap.Medicines) != 1 || snap.Medicines[0].Name != "Aspirin" {
		t.Errorf("snapshot: %+v", snap)
	}
}

func TestGetRemindersNoSession(t *testing.T) {
	h, _ := newTestHandler(t)
	e := echo.New()

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("patientId")
	c.SetParamValues("p1")

	err := h.GetReminders(c)
	var he *echo.HTTPError
	if !errors.As(err, &he) || he.Code != http.StatusNotFound {
		t.Fatalf("error = %v, want 404", err)
	}
}

func TestRespondIntakeValidation(t *testing.T) {
	h, _ := newTestHandler(t)
	e := echo.New()

	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"patientId":"p1"}`))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	err := h.RespondIntake(c)
	var he *echo.HTTPError
	if !errors.As(err, &he) || he.Code != http.StatusBadRequest {
		t.Fatalf("error = %v, want 400", err)
	}
}

func TestRespondIntakeNotPrompting(t *testing.T) {
	h, m := newTestHandler(t)
	if _, err := m.Start(context.Background(), "p1"); err != nil {
		t.Fatalf("start: %v", err)
	}

	e := echo.New()
	body := `{"patientId":"p1","medicineName":"Aspirin","taken":true}`
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	// The countdown has not run out, so there is no prompt to answer.
	err := h.RespondIntake(c)
	var he *echo.HTTPError
	if !errors.As(err, &he) || he.Code != http.StatusConflict {
		t.Fatalf("error = %v, want 409", err)
	}
}

func TestRespondIntakeNoSession(t *testing.T) {
	h, _ := newTestHandler(t)

	e := echo.New()
	body := `{"patientId":"p2","medicineName":"Aspirin","taken":true}`
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	err := h.RespondIntake(c)
	var he *echo.HTTPError
	if !errors.As(err, &he) || he.Code != http.StatusNotFound {
		t.Fatalf("error = %v, want 404", err)
	}
}
