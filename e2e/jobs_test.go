package e2e

import (
	"net/http"
	"testing"
)

func TestJobStatus_InlineMode(t *testing.T) {
	ta := setupApp(t)

	// Inline submissions resolve synchronously; there is no record to query.
	resp, err := doRequest(ta.app, http.MethodGet, "/api/jobs/audio/0b6c0c3e-missing", "")
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}

	assertStatus(t, resp, http.StatusNotFound)
	if code := errorCode(t, parseJSON(t, resp)); code != "JOB_NOT_FOUND" {
		t.Errorf("expected JOB_NOT_FOUND, got %s", code)
	}
}

func TestJobStatus_UnknownKind(t *testing.T) {
	ta := setupApp(t)

	resp, err := doRequest(ta.app, http.MethodGet, "/api/jobs/image/some-id", "")
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}

	assertStatus(t, resp, http.StatusBadRequest)
}

func TestJobResult_InlineMode(t *testing.T) {
	ta := setupApp(t)

	resp, err := doRequest(ta.app, http.MethodGet, "/api/jobs/0b6c0c3e-missing/result", "")
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}

	assertStatus(t, resp, http.StatusNotFound)
}
