package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/md-rashed-zaman/apptintake/internal/model"
	"github.com/md-rashed-zaman/apptintake/internal/submit"
)

type fakeStore struct {
	id    string
	err   error
	calls int
}

func (s *fakeStore) InsertDocument(_ context.Context, _ string, _ any) (string, error) {
	s.calls++
	if s.err != nil {
		return "", s.err
	}
	return s.id, nil
}

type fakeChannel struct {
	name       string
	configured bool
	token      string
	err        error
	calls      int
}

func (c *fakeChannel) Name() string     { return c.name }
func (c *fakeChannel) Configured() bool { return c.configured }

func (c *fakeChannel) Attempt(_ context.Context, _ model.AppointmentRequest) (string, error) {
	c.calls++
	if c.err != nil {
		return "", c.err
	}
	return c.token, nil
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newHandler(store *fakeStore, sheets, whatsapp *fakeChannel) *AppointmentsHandler {
	var sheetsCh, waCh submit.Channel
	if sheets != nil {
		sheetsCh = sheets
	}
	if whatsapp != nil {
		waCh = whatsapp
	}
	o := submit.NewOrchestrator(store, sheetsCh, waCh, testLogger())
	return NewAppointmentsHandler(o, testLogger())
}

func postAppointment(t *testing.T, h *AppointmentsHandler, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/appointments", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rw := httptest.NewRecorder()
	h.Create(rw, req)
	return rw
}

func TestCreate_NoChannelsConfigured(t *testing.T) {
	store := &fakeStore{id: "doc-1"}
	rw := postAppointment(t, newHandler(store, &fakeChannel{name: "google_sheets"}, &fakeChannel{name: "whatsapp"}),
		`{"name":"A","email":"a@x.com","phone":"1","department":"D"}`)

	if rw.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rw.Code, rw.Body.String())
	}
	if ct := rw.Header().Get("Content-Type"); ct != "application/json" {
		t.Fatalf("expected json content type, got %q", ct)
	}

	var resp struct {
		OK           bool   `json:"ok"`
		ID           string `json:"id"`
		GoogleSheets bool   `json:"google_sheets"`
		WhatsApp     bool   `json:"whatsapp"`
	}
	if err := json.Unmarshal(rw.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid response body: %v", err)
	}
	if !resp.OK || resp.ID == "" {
		t.Fatalf("expected ok with non-empty id, got %+v", resp)
	}
	if resp.GoogleSheets || resp.WhatsApp {
		t.Fatalf("unconfigured channels must report false, got %+v", resp)
	}
}

func TestCreate_ChannelFailureStillSucceeds(t *testing.T) {
	store := &fakeStore{id: "doc-1"}
	sheets := &fakeChannel{name: "google_sheets", configured: true, err: errors.New("api rejected")}
	wa := &fakeChannel{name: "whatsapp", configured: true, token: "SM1"}
	rw := postAppointment(t, newHandler(store, sheets, wa),
		`{"name":"A","email":"a@x.com","phone":"1","department":"D"}`)

	if rw.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rw.Code, rw.Body.String())
	}
	var resp map[string]any
	if err := json.Unmarshal(rw.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid response body: %v", err)
	}
	if resp["google_sheets"] != false {
		t.Fatalf("failed channel must report false: %v", resp)
	}
	if resp["whatsapp"] != true {
		t.Fatalf("other channel must be unaffected: %v", resp)
	}
	if resp["id"] == "" {
		t.Fatalf("expected a valid id: %v", resp)
	}
}

func TestCreate_PersistenceFailure(t *testing.T) {
	store := &fakeStore{err: errors.New("connection refused")}
	sheets := &fakeChannel{name: "google_sheets", configured: true}
	wa := &fakeChannel{name: "whatsapp", configured: true}
	rw := postAppointment(t, newHandler(store, sheets, wa),
		`{"name":"A","email":"a@x.com","phone":"1","department":"D"}`)

	if rw.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", rw.Code)
	}
	if !strings.Contains(rw.Body.String(), "Database error:") {
		t.Fatalf("expected Database error detail, got %s", rw.Body.String())
	}
	if sheets.calls != 0 || wa.calls != 0 {
		t.Fatalf("no notification attempt allowed after persistence failure, got %d and %d", sheets.calls, wa.calls)
	}
}

func TestCreate_MissingRequiredField(t *testing.T) {
	store := &fakeStore{id: "doc-1"}
	rw := postAppointment(t, newHandler(store, &fakeChannel{name: "google_sheets"}, &fakeChannel{name: "whatsapp"}),
		`{"email":"a@x.com","phone":"1","department":"D"}`)

	if rw.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rw.Code)
	}
	if !strings.Contains(rw.Body.String(), "name") {
		t.Fatalf("detail should name the missing field: %s", rw.Body.String())
	}
	if store.calls != 0 {
		t.Fatalf("nothing may be persisted on validation failure, got %d calls", store.calls)
	}
}

func TestCreate_InvalidJSON(t *testing.T) {
	rw := postAppointment(t, newHandler(&fakeStore{id: "x"}, nil, nil), `{not json`)
	if rw.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rw.Code)
	}
}

func TestCreate_MethodNotAllowed(t *testing.T) {
	h := newHandler(&fakeStore{id: "x"}, nil, nil)
	req := httptest.NewRequest(http.MethodGet, "/appointments", nil)
	rw := httptest.NewRecorder()
	h.Create(rw, req)
	if rw.Code != http.StatusMethodNotAllowed {
		t.Fatalf("expected 405, got %d", rw.Code)
	}
}
