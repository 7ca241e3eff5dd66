package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/kozaktomas/carecam/internal/config"
	"github.com/kozaktomas/carecam/internal/emotion"
)

func getConfig(t *testing.T, cfg *config.Config) ConfigResponse {
	t.Helper()
	handler := NewConfigHandler(cfg, emotion.NewCatalog(cfg.Emotions))
	recorder := httptest.NewRecorder()

	handler.Get(recorder, httptest.NewRequest("GET", "/api/v1/config", nil))

	if recorder.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, recorder.Code)
	}
	var result ConfigResponse
	if err := json.Unmarshal(recorder.Body.Bytes(), &result); err != nil {
		t.Fatalf("failed to unmarshal response: %v", err)
	}
	return result
}

func TestConfigHandler_Get(t *testing.T) {
	setupSnapshotStore(t)
	result := getConfig(t, testConfig())

	if !result.CaptureEnabled || !result.AIEnabled {
		t.Errorf("expected both flags on, got %+v", result)
	}
	if result.Provider != config.ProviderService {
		t.Errorf("expected provider '%s', got '%s'", config.ProviderService, result.Provider)
	}
	if result.SwitchThreshold != 2 {
		t.Errorf("expected threshold 2, got %v", result.SwitchThreshold)
	}
	if result.SnapshotBackend != "mock" {
		t.Errorf("expected backend 'mock', got '%s'", result.SnapshotBackend)
	}
	if len(result.Emotions) != 2 || result.Emotions[0] != "happy" {
		t.Errorf("unexpected emotions %v", result.Emotions)
	}
	if len(result.Providers) != 5 {
		t.Errorf("expected 5 providers, got %d", len(result.Providers))
	}
}

func TestConfigHandler_ProviderAvailability(t *testing.T) {
	cfg := testConfig()
	cfg.AI.OpenAI.Token = "sk-test-token"

	result := getConfig(t, cfg)

	available := make(map[string]bool)
	for _, p := range result.Providers {
		available[p.Name] = p.Available
	}
	if !available[config.ProviderOpenAI] {
		t.Error("expected openai to be available with a token")
	}
	if available[config.ProviderGemini] {
		t.Error("expected gemini to be unavailable without a key")
	}
	if !available[config.ProviderOllama] || !available[config.ProviderService] {
		t.Error("expected local providers to be available")
	}
}

func TestConfigHandler_DoesNotLeakSecrets(t *testing.T) {
	cfg := testConfig()
	cfg.AI.OpenAI.Token = "sk-secret-value"
	handler := NewConfigHandler(cfg, emotion.NewCatalog(cfg.Emotions))
	recorder := httptest.NewRecorder()

	handler.Get(recorder, httptest.NewRequest("GET", "/api/v1/config", nil))

	if strings.Contains(recorder.Body.String(), "sk-secret-value") {
		t.Error("response leaks the API token")
	}
}
