package ai

import (
	"context"
	"fmt"
	"sync"

	"github.com/kozaktomas/carecam/internal/config"
)

// Model is a backend that estimates facial emotions in a JPEG image.
// Callers size the image with EncodeImage; backends send it as given.
// Implementations never enforce face detection: a frame without a clearly
// detected face still yields a best-effort result where the backend can give one.
type Model interface {
	Name() string
	AnalyzeEmotion(ctx context.Context, jpegData []byte) ([]FaceEmotion, error)
}

// UsageReporter is implemented by backends that are billed per token.
type UsageReporter interface {
	GetUsage() Usage
}

// FaceEmotion is the analysis of one face.
type FaceEmotion struct {
	// Dominant is the highest scoring emotion label, as returned by the backend.
	Dominant string `json:"dominant_emotion"`
	// Scores maps emotion labels to confidence. Scales differ by backend.
	Scores map[string]float64 `json:"emotion,omitempty"`
	Region *Region            `json:"region,omitempty"`
}

// Region is a face bounding box in pixels.
type Region struct {
	X int `json:"x"`
	Y int `json:"y"`
	W int `json:"w"`
	H int `json:"h"`
}

// Usage tracks token usage.
type Usage struct {
	Requests     int `json:"requests"`
	InputTokens  int `json:"input_tokens"`
	OutputTokens int `json:"output_tokens"`
}

type usageTracker struct {
	mu    sync.Mutex
	usage Usage
}

func (u *usageTracker) track(inputTokens, outputTokens int) {
	u.mu.Lock()
	defer u.mu.Unlock()
	u.usage.Requests++
	u.usage.InputTokens += inputTokens
	u.usage.OutputTokens += outputTokens
}

func (u *usageTracker) GetUsage() Usage {
	u.mu.Lock()
	defer u.mu.Unlock()
	return u.usage
}

// New builds the backend selected in cfg. Construction only validates settings
// and creates clients; no network call is made.
func New(ctx context.Context, cfg config.AIConfig) (Model, error) {
	switch cfg.Provider {
	case config.ProviderService:
		return NewServiceModel(cfg.Service.URL, cfg.Timeout)
	case config.ProviderOpenAI:
		if cfg.OpenAI.Token == "" {
			return nil, fmt.Errorf("OPENAI_TOKEN is required for the %s provider", cfg.Provider)
		}
		return NewOpenAIModel(cfg.OpenAI.Token, cfg.OpenAI.Model), nil
	case config.ProviderGemini:
		if cfg.Gemini.APIKey == "" {
			return nil, fmt.Errorf("GEMINI_API_KEY is required for the %s provider", cfg.Provider)
		}
		return NewGeminiModel(ctx, cfg.Gemini.APIKey, cfg.Gemini.Model)
	case config.ProviderOllama:
		return NewOllamaModel(cfg.Ollama.URL, cfg.Ollama.Model, cfg.Timeout), nil
	case config.ProviderLlamaCpp:
		return NewLlamaCppModel(cfg.LlamaCpp.URL, cfg.LlamaCpp.Model, cfg.Timeout)
	default:
		return nil, fmt.Errorf("unknown AI provider %q", cfg.Provider)
	}
}
