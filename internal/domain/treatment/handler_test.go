package treatment

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
)

func newTestServer() (*echo.Echo, *Service) {
	svc, _ := newTestService()
	h := NewHandler(svc)

	e := echo.New()
	h.RegisterRoutes(e.Group(""))
	return e, svc
}

func doRequest(e *echo.Echo, method, target, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, target, nil)
	} else {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func seedRecord(t *testing.T, svc *Service) *PatientRecord {
	t.Helper()
	return mustCreate(t, svc, activeRecord())
}

func TestHandler_CreatePatient(t *testing.T) {
	e, _ := newTestServer()

	rec := doRequest(e, http.MethodPost, "/patients", `{
		"name": "João Silva",
		"location": "UTI-01",
		"drug": "Meropenem",
		"start": "2025-01-10",
		"duration": 7
	}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}

	var got PatientRecord
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatalf("bad response body: %v", err)
	}
	if got.ID == "" {
		t.Error("expected id in response")
	}
	if got.Status != StatusActive {
		t.Errorf("expected active status, got %s", got.Status)
	}
}

func TestHandler_CreatePatient_Validation(t *testing.T) {
	e, _ := newTestServer()

	rec := doRequest(e, http.MethodPost, "/patients", `{"name": "João Silva"}`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}

	var body struct {
		Message map[string]string `json:"message"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("bad response body: %v", err)
	}
	if body.Message["reason"] != string(MissingRequiredField) {
		t.Errorf("unexpected reason: %v", body.Message)
	}
}

func TestHandler_GetPatient_NotFound(t *testing.T) {
	e, _ := newTestServer()

	rec := doRequest(e, http.MethodGet, "/patients/missing", "")
	if rec.Code != http.StatusNotFound {
		t.Errorf("expected 404, got %d", rec.Code)
	}
}

func TestHandler_ListBoard(t *testing.T) {
	e, svc := newTestServer()
	seedRecord(t, svc)

	rec := doRequest(e, http.MethodGet, "/patients", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var board struct {
		Active    []*PatientRecord `json:"active"`
		Completed []*PatientRecord `json:"completed"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &board); err != nil {
		t.Fatalf("bad response body: %v", err)
	}
	if len(board.Active) != 1 {
		t.Errorf("expected one active record, got %d", len(board.Active))
	}
	if board.Completed == nil {
		t.Error("completed partition must be present even when empty")
	}
}

func TestHandler_ViewBoard(t *testing.T) {
	e, svc := newTestServer()
	seedRecord(t, svc)

	rec := doRequest(e, http.MethodGet, "/patients/view?tab=active&limit=10", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var view struct {
		Tab  Tab `json:"tab"`
		Page struct {
			Data    []BoardCard `json:"data"`
			Total   int         `json:"total"`
			Limit   int         `json:"limit"`
			HasMore bool        `json:"has_more"`
		} `json:"page"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &view); err != nil {
		t.Fatalf("bad response body: %v", err)
	}
	if view.Tab != TabActive {
		t.Errorf("expected active tab, got %s", view.Tab)
	}
	if view.Page.Total != 1 || len(view.Page.Data) != 1 {
		t.Fatalf("expected one card, got total=%d data=%d", view.Page.Total, len(view.Page.Data))
	}
	if view.Page.Data[0].Status == nil {
		t.Error("active cards must carry computed status")
	}
}

func TestHandler_ViewBoard_HistoryOmitsStatus(t *testing.T) {
	e, svc := newTestServer()
	rec := seedRecord(t, svc)
	if _, err := svc.Discharge(context.Background(), rec.ID); err != nil {
		t.Fatalf("discharge failed: %v", err)
	}

	res := doRequest(e, http.MethodGet, "/patients/view?tab=history", "")
	if res.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", res.Code)
	}

	var view struct {
		Tab  Tab `json:"tab"`
		Page struct {
			Data []BoardCard `json:"data"`
		} `json:"page"`
	}
	if err := json.Unmarshal(res.Body.Bytes(), &view); err != nil {
		t.Fatalf("bad response body: %v", err)
	}
	if view.Tab != TabHistory {
		t.Errorf("expected history tab, got %s", view.Tab)
	}
	if len(view.Page.Data) != 1 {
		t.Fatalf("expected one card, got %d", len(view.Page.Data))
	}
	if view.Page.Data[0].Status != nil {
		t.Error("history cards must not carry computed status")
	}
	if view.Page.Data[0].Record.EndDate == "" {
		t.Error("history cards must carry the stored end date")
	}
}

func TestHandler_DischargeRestoreFlow(t *testing.T) {
	e, svc := newTestServer()
	rec := seedRecord(t, svc)

	res := doRequest(e, http.MethodPost, "/patients/"+rec.ID+"/discharge", "")
	if res.Code != http.StatusOK {
		t.Fatalf("discharge: expected 200, got %d", res.Code)
	}
	var got PatientRecord
	if err := json.Unmarshal(res.Body.Bytes(), &got); err != nil {
		t.Fatalf("bad response body: %v", err)
	}
	if got.Status != StatusHistory || got.EndDate == "" {
		t.Errorf("unexpected record after discharge: status=%s endDate=%q", got.Status, got.EndDate)
	}

	// Restoring an already-active record conflicts; restoring this one works.
	res = doRequest(e, http.MethodPost, "/patients/"+rec.ID+"/restore", "")
	if res.Code != http.StatusOK {
		t.Fatalf("restore: expected 200, got %d", res.Code)
	}
	res = doRequest(e, http.MethodPost, "/patients/"+rec.ID+"/restore", "")
	if res.Code != http.StatusConflict {
		t.Errorf("second restore: expected 409, got %d", res.Code)
	}
}

func TestHandler_DeleteRules(t *testing.T) {
	e, svc := newTestServer()
	rec := seedRecord(t, svc)

	res := doRequest(e, http.MethodDelete, "/patients/"+rec.ID, "")
	if res.Code != http.StatusConflict {
		t.Fatalf("delete active: expected 409, got %d", res.Code)
	}

	doRequest(e, http.MethodPost, "/patients/"+rec.ID+"/discharge", "")
	res = doRequest(e, http.MethodDelete, "/patients/"+rec.ID, "")
	if res.Code != http.StatusNoContent {
		t.Fatalf("delete from history: expected 204, got %d", res.Code)
	}

	res = doRequest(e, http.MethodGet, "/patients/"+rec.ID, "")
	if res.Code != http.StatusNotFound {
		t.Errorf("expected 404 after delete, got %d", res.Code)
	}
}

func TestHandler_RelocateAndExtend(t *testing.T) {
	e, svc := newTestServer()
	rec := seedRecord(t, svc)

	res := doRequest(e, http.MethodPost, "/patients/"+rec.ID+"/relocate", `{"location": "Leito 210"}`)
	if res.Code != http.StatusOK {
		t.Fatalf("relocate: expected 200, got %d: %s", res.Code, res.Body.String())
	}

	res = doRequest(e, http.MethodPost, "/patients/"+rec.ID+"/extend", `{"days": 3}`)
	if res.Code != http.StatusOK {
		t.Fatalf("extend: expected 200, got %d", res.Code)
	}
	var got PatientRecord
	if err := json.Unmarshal(res.Body.Bytes(), &got); err != nil {
		t.Fatalf("bad response body: %v", err)
	}
	if got.Location != "Leito 210" || got.Duration != 10 {
		t.Errorf("unexpected record: location=%s duration=%d", got.Location, got.Duration)
	}

	res = doRequest(e, http.MethodPost, "/patients/"+rec.ID+"/extend", `{"days": 0}`)
	if res.Code != http.StatusBadRequest {
		t.Errorf("extend by zero: expected 400, got %d", res.Code)
	}
}

func TestHandler_Messages(t *testing.T) {
	e, svc := newTestServer()
	rec := seedRecord(t, svc)

	res := doRequest(e, http.MethodPost, "/patients/"+rec.ID+"/messages", `{
		"author": "Dr. Fernando",
		"role": "Médico(a)",
		"content": "Avaliar função renal amanhã.",
		"type": "alert"
	}`)
	if res.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", res.Code, res.Body.String())
	}

	res = doRequest(e, http.MethodPost, "/patients/"+rec.ID+"/messages", `{"author": "Dr. Fernando", "content": "ok"}`)
	if res.Code != http.StatusBadRequest {
		t.Errorf("short content: expected 400, got %d", res.Code)
	}

	res = doRequest(e, http.MethodGet, "/patients/"+rec.ID+"/messages", "")
	if res.Code != http.StatusOK {
		t.Fatalf("list: expected 200, got %d", res.Code)
	}
	var msgs []*Message
	if err := json.Unmarshal(res.Body.Bytes(), &msgs); err != nil {
		t.Fatalf("bad response body: %v", err)
	}
	if len(msgs) != 1 || msgs[0].Type != MessageAlert {
		t.Errorf("unexpected messages: %+v", msgs)
	}
}

func TestHandler_MessageMeta(t *testing.T) {
	e, _ := newTestServer()

	res := doRequest(e, http.MethodGet, "/messages/meta", "")
	if res.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", res.Code)
	}

	var meta struct {
		Roles []string      `json:"roles"`
		Types []MessageType `json:"types"`
	}
	if err := json.Unmarshal(res.Body.Bytes(), &meta); err != nil {
		t.Fatalf("bad response body: %v", err)
	}
	if len(meta.Roles) != len(KnownRoles) {
		t.Errorf("expected %d roles, got %v", len(KnownRoles), meta.Roles)
	}
	if len(meta.Types) != 3 {
		t.Errorf("expected 3 types, got %v", meta.Types)
	}
}

func TestHandler_ExportCSV(t *testing.T) {
	e, svc := newTestServer()
	seedRecord(t, svc)

	res := doRequest(e, http.MethodGet, "/reports/treatments.csv?tab=active", "")
	if res.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", res.Code)
	}
	if ct := res.Header().Get(echo.HeaderContentType); !strings.HasPrefix(ct, "text/csv") {
		t.Errorf("unexpected content type %q", ct)
	}
	if cd := res.Header().Get(echo.HeaderContentDisposition); !strings.Contains(cd, "treatments_active.csv") {
		t.Errorf("unexpected content disposition %q", cd)
	}

	lines := strings.Split(strings.TrimSpace(res.Body.String()), "\n")
	if len(lines) != 2 {
		t.Fatalf("expected header plus one row, got %d lines", len(lines))
	}
	if !strings.HasPrefix(lines[0], "Patient,") {
		t.Errorf("unexpected header row %q", lines[0])
	}
	if !strings.Contains(lines[1], "João Silva") {
		t.Errorf("unexpected data row %q", lines[1])
	}
}
