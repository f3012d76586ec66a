package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestRoot(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rw := httptest.NewRecorder()
	Root(rw, req)
	if rw.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rw.Code)
	}
	var resp messageResponse
	if err := json.Unmarshal(rw.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid body: %v", err)
	}
	if resp.Message == "" {
		t.Fatal("expected a greeting message")
	}
}

func TestRoot_UnknownPath(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/nope", nil)
	rw := httptest.NewRecorder()
	Root(rw, req)
	if rw.Code != http.StatusNotFound {
		t.Fatalf("expected 404 for unmatched path, got %d", rw.Code)
	}
}

func TestHello(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/api/hello", nil)
	rw := httptest.NewRecorder()
	Hello(rw, req)
	if rw.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rw.Code)
	}
	var resp messageResponse
	if err := json.Unmarshal(rw.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid body: %v", err)
	}
	if resp.Message == "" {
		t.Fatal("expected a greeting message")
	}
}
