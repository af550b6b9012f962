package e2e

import (
	"net/http"
	"testing"
)

func TestMixGenerate_Inline(t *testing.T) {
	ta := setupApp(t)

	body := `{
		"stems": [{"stemId": "rain", "volume": 0.5}],
		"duration": 120,
		"volatility": 0.3,
		"spatialDrift": 0.2
	}`
	resp, err := doRequest(ta.app, http.MethodPost, "/api/mix/generate", body)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}

	assertStatus(t, resp, http.StatusOK)

	outcome := parseJSON(t, resp)
	if outcome["status"] != "completed" {
		t.Fatalf("expected status 'completed', got %v", outcome)
	}
	result, ok := outcome["result"].(map[string]interface{})
	if !ok {
		t.Fatalf("expected 'result' object, got %v", outcome)
	}
	if result["stemCount"] != float64(1) {
		t.Errorf("expected stemCount 1, got %v", result["stemCount"])
	}
	if result["duration"] != float64(120) {
		t.Errorf("expected duration 120, got %v", result["duration"])
	}
	if result["fileName"] == "" {
		t.Error("expected a generated file name")
	}
}

func TestMixGenerate_InvalidBody(t *testing.T) {
	ta := setupApp(t)

	resp, err := doRequest(ta.app, http.MethodPost, "/api/mix/generate", `{not json`)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}

	assertStatus(t, resp, http.StatusBadRequest)
	if code := errorCode(t, parseJSON(t, resp)); code != "VALIDATION_ERROR" {
		t.Errorf("expected VALIDATION_ERROR, got %s", code)
	}
}

func TestMixGenerate_NoStems(t *testing.T) {
	ta := setupApp(t)

	resp, err := doRequest(ta.app, http.MethodPost, "/api/mix/generate", `{"stems": [], "duration": 120}`)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}

	assertStatus(t, resp, http.StatusBadRequest)
}

func TestMixGenerate_DurationTooShort(t *testing.T) {
	ta := setupApp(t)

	body := `{"stems": [{"stemId": "rain"}], "duration": 30}`
	resp, err := doRequest(ta.app, http.MethodPost, "/api/mix/generate", body)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}

	assertStatus(t, resp, http.StatusBadRequest)
}

func TestMixGenerate_UnknownStem(t *testing.T) {
	ta := setupApp(t)

	body := `{"stems": [{"stemId": "lava"}], "duration": 120}`
	resp, err := doRequest(ta.app, http.MethodPost, "/api/mix/generate", body)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}

	assertStatus(t, resp, http.StatusNotFound)
	if code := errorCode(t, parseJSON(t, resp)); code != "NOT_FOUND" {
		t.Errorf("expected NOT_FOUND, got %s", code)
	}
}
