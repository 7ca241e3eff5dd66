package handlers

import (
	"net/http"

	"github.com/kozaktomas/carecam/internal/config"
	"github.com/kozaktomas/carecam/internal/database"
	"github.com/kozaktomas/carecam/internal/emotion"
)

// ConfigHandler handles configuration endpoints
type ConfigHandler struct {
	config  *config.Config
	catalog *emotion.Catalog
}

// NewConfigHandler creates a new config handler
func NewConfigHandler(cfg *config.Config, catalog *emotion.Catalog) *ConfigHandler {
	return &ConfigHandler{
		config:  cfg,
		catalog: catalog,
	}
}

// ConfigResponse represents the configuration response
type ConfigResponse struct {
	CaptureEnabled  bool           `json:"capture_enabled"`
	AIEnabled       bool           `json:"ai_enabled"`
	Provider        string         `json:"provider"`
	Providers       []ProviderInfo `json:"providers"`
	SwitchThreshold float64        `json:"switch_threshold_seconds"`
	SnapshotBackend string         `json:"snapshot_backend,omitempty"`
	Emotions        []string       `json:"emotions"`
}

// ProviderInfo represents information about an AI provider
type ProviderInfo struct {
	Name      string `json:"name"`
	Available bool   `json:"available"`
}

// Get returns the effective configuration without secrets
func (h *ConfigHandler) Get(w http.ResponseWriter, r *http.Request) {
	names := []string{
		config.ProviderService,
		config.ProviderOpenAI,
		config.ProviderGemini,
		config.ProviderOllama,
		config.ProviderLlamaCpp,
	}
	providers := make([]ProviderInfo, 0, len(names))
	for _, name := range names {
		aiCfg := h.config.AI
		aiCfg.Provider = name
		providers = append(providers, ProviderInfo{Name: name, Available: aiCfg.ProviderAvailable()})
	}

	respondJSON(w, http.StatusOK, ConfigResponse{
		CaptureEnabled:  h.config.Camera.Enabled,
		AIEnabled:       h.config.AI.Enabled,
		Provider:        h.config.AI.Provider,
		Providers:       providers,
		SwitchThreshold: h.config.Detector.SwitchThreshold.Seconds(),
		SnapshotBackend: database.BackendName(),
		Emotions:        h.catalog.Names(),
	})
}
