package e2e

import (
	"net/http"
	"testing"
)

func TestHealth(t *testing.T) {
	ta := setupApp(t)

	resp, err := doRequest(ta.app, http.MethodGet, "/health", "")
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}

	assertStatus(t, resp, http.StatusOK)

	body := parseJSON(t, resp)
	if body["status"] != "ok" {
		t.Errorf("expected status 'ok', got %v", body["status"])
	}
	if body["mode"] != "inline" {
		t.Errorf("expected mode 'inline', got %v", body["mode"])
	}
}

func TestListStems(t *testing.T) {
	ta := setupApp(t)

	resp, err := doRequest(ta.app, http.MethodGet, "/api/stems", "")
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}

	assertStatus(t, resp, http.StatusOK)

	body := parseJSON(t, resp)
	if body["count"] != float64(1) {
		t.Errorf("expected 1 stem, got %v", body["count"])
	}
	stems, ok := body["stems"].([]interface{})
	if !ok || len(stems) != 1 {
		t.Fatalf("expected one stem entry, got %v", body["stems"])
	}
	stem := stems[0].(map[string]interface{})
	if stem["id"] != "rain" {
		t.Errorf("expected stem id 'rain', got %v", stem["id"])
	}
}

func TestListVideos(t *testing.T) {
	ta := setupApp(t)

	resp, err := doRequest(ta.app, http.MethodGet, "/api/videos", "")
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}

	assertStatus(t, resp, http.StatusOK)

	body := parseJSON(t, resp)
	if body["count"] != float64(1) {
		t.Errorf("expected 1 video, got %v", body["count"])
	}
}
