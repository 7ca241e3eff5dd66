package config

import (
	"strings"
	"testing"
	"time"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.Camera.Enabled {
		t.Error("expected capture to be disabled by default")
	}
	if cfg.AI.Enabled {
		t.Error("expected AI to be disabled by default")
	}
	if cfg.Detector.SwitchThreshold != 2*time.Second {
		t.Errorf("expected switch threshold 2s, got %v", cfg.Detector.SwitchThreshold)
	}
	if cfg.Camera.ReadTimeout != 5*time.Second {
		t.Errorf("expected read timeout 5s, got %v", cfg.Camera.ReadTimeout)
	}
	if cfg.Snapshot.Dir != "snapshots" {
		t.Errorf("expected snapshot dir 'snapshots', got '%s'", cfg.Snapshot.Dir)
	}
	if cfg.Snapshot.JPEGQuality != 90 {
		t.Errorf("expected jpeg quality 90, got %d", cfg.Snapshot.JPEGQuality)
	}
	if cfg.Database.Driver != DriverSQLite {
		t.Errorf("expected sqlite driver, got '%s'", cfg.Database.Driver)
	}
	if cfg.AI.Provider != ProviderService {
		t.Errorf("expected service provider, got '%s'", cfg.AI.Provider)
	}
}

func TestLoad_FeatureFlags(t *testing.T) {
	t.Setenv("CARECAM_CAPTURE_ENABLED", "true")
	t.Setenv("CARECAM_AI_ENABLED", "true")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !cfg.Camera.Enabled {
		t.Error("expected capture to be enabled")
	}
	if !cfg.AI.Enabled {
		t.Error("expected AI to be enabled")
	}
}

func TestLoad_CustomThreshold(t *testing.T) {
	t.Setenv("CARECAM_SWITCH_THRESHOLD", "500ms")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.Detector.SwitchThreshold != 500*time.Millisecond {
		t.Errorf("expected 500ms, got %v", cfg.Detector.SwitchThreshold)
	}
}

func TestLoad_InvalidBool(t *testing.T) {
	t.Setenv("CARECAM_CAPTURE_ENABLED", "maybe")

	if _, err := Load(); err == nil {
		t.Error("expected error for invalid boolean")
	}
}

func TestLoad_AllowedOrigins(t *testing.T) {
	t.Setenv("WEB_ALLOWED_ORIGINS", "https://a.example.com,https://b.example.com")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(cfg.Web.AllowedOrigins) != 2 {
		t.Fatalf("expected 2 origins, got %d", len(cfg.Web.AllowedOrigins))
	}
	if cfg.Web.AllowedOrigins[1] != "https://b.example.com" {
		t.Errorf("unexpected second origin '%s'", cfg.Web.AllowedOrigins[1])
	}
}

func TestLoad_EmotionCatalog(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := map[string]bool{
		"angry": true, "disgust": true, "fear": true, "happy": true,
		"sad": true, "surprise": true, "neutral": true,
	}
	if len(cfg.Emotions) != len(want) {
		t.Fatalf("expected %d emotions, got %d", len(want), len(cfg.Emotions))
	}
	for _, e := range cfg.Emotions {
		if !want[e.Name] {
			t.Errorf("unexpected emotion '%s'", e.Name)
		}
	}
}

func TestValidate(t *testing.T) {
	base := func() Config {
		return Config{
			AI:       AIConfig{Provider: ProviderService},
			Database: DatabaseConfig{Driver: DriverSQLite},
			Detector: DetectorConfig{SwitchThreshold: 2 * time.Second},
			Snapshot: SnapshotConfig{JPEGQuality: 90},
		}
	}

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"valid", func(*Config) {}, ""},
		{"unknown provider", func(c *Config) { c.AI.Provider = "deepface" }, "unknown AI provider"},
		{"unknown driver", func(c *Config) { c.Database.Driver = "oracle" }, "unknown database driver"},
		{"negative threshold", func(c *Config) { c.Detector.SwitchThreshold = -time.Second }, "must not be negative"},
		{"zero threshold", func(c *Config) { c.Detector.SwitchThreshold = 0 }, ""},
		{"quality too high", func(c *Config) { c.Snapshot.JPEGQuality = 101 }, "out of range"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := base()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Errorf("unexpected error: %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("expected error containing '%s', got %v", tt.wantErr, err)
			}
		})
	}
}

func TestProviderAvailable(t *testing.T) {
	tests := []struct {
		name string
		cfg  AIConfig
		want bool
	}{
		{"service needs nothing", AIConfig{Provider: ProviderService}, true},
		{"ollama needs nothing", AIConfig{Provider: ProviderOllama}, true},
		{"openai without token", AIConfig{Provider: ProviderOpenAI}, false},
		{"openai with token", AIConfig{Provider: ProviderOpenAI, OpenAI: OpenAIConfig{Token: "sk-x"}}, true},
		{"gemini without key", AIConfig{Provider: ProviderGemini}, false},
		{"gemini with key", AIConfig{Provider: ProviderGemini, Gemini: GeminiConfig{APIKey: "k"}}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.cfg.ProviderAvailable(); got != tt.want {
				t.Errorf("ProviderAvailable() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestWebAddr(t *testing.T) {
	cfg := WebConfig{Host: "127.0.0.1", Port: 9090}
	if got := cfg.Addr(); got != "127.0.0.1:9090" {
		t.Errorf("expected '127.0.0.1:9090', got '%s'", got)
	}
}
