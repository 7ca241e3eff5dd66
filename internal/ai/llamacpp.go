package ai

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/kozaktomas/carecam/internal/constants"
)

const (
	defaultLlamaCppURL   = "http://localhost:8080"
	defaultLlamaCppModel = "llava"
)

// LlamaCppModel implements Model using a llama.cpp server.
type LlamaCppModel struct {
	parsedURL *url.URL
	model     string
	client    *http.Client
	usageTracker
}

// NewLlamaCppModel creates a new llama.cpp backend with the given config.
func NewLlamaCppModel(baseURL, model string, timeout time.Duration) (*LlamaCppModel, error) {
	if baseURL == "" {
		baseURL = defaultLlamaCppURL
	}
	if model == "" {
		model = defaultLlamaCppModel
	}
	parsed, err := url.Parse(strings.TrimSuffix(baseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("invalid llama.cpp URL: %w", err)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return nil, fmt.Errorf("invalid llama.cpp URL scheme %q: must be http or https", parsed.Scheme)
	}
	if parsed.Host == "" {
		return nil, errors.New("invalid llama.cpp URL: missing host")
	}
	return &LlamaCppModel{
		parsedURL: parsed,
		model:     model,
		client:    &http.Client{Timeout: timeout},
	}, nil
}

// Name returns the backend name.
func (p *LlamaCppModel) Name() string {
	return "llamacpp/" + p.model
}

// llamaCppRequest represents a request to the llama.cpp OpenAI-compatible API.
type llamaCppRequest struct {
	Model       string            `json:"model"`
	Messages    []llamaCppMessage `json:"messages"`
	MaxTokens   int               `json:"max_tokens,omitempty"`
	Temperature float64           `json:"temperature,omitempty"`
	Stream      bool              `json:"stream"`
}

type llamaCppMessage struct {
	Role    string                 `json:"role"`
	Content llamaCppMessageContent `json:"content"`
}

// llamaCppMessageContent can be a string or an array of content parts.
type llamaCppMessageContent any

type llamaCppContentPart struct {
	Type     string            `json:"type"`
	Text     string            `json:"text,omitempty"`
	ImageURL *llamaCppImageURL `json:"image_url,omitempty"`
}

type llamaCppImageURL struct {
	URL string `json:"url"`
}

// llamaCppResponse represents a response from the llama.cpp OpenAI-compatible API.
type llamaCppResponse struct {
	Model   string `json:"model"`
	Choices []struct {
		Index   int `json:"index"`
		Message struct {
			Role    string `json:"role"`
			Content string `json:"content"`
		} `json:"message"`
		FinishReason string `json:"finish_reason"`
	} `json:"choices"`
	Usage struct {
		PromptTokens     int `json:"prompt_tokens"`
		CompletionTokens int `json:"completion_tokens"`
	} `json:"usage"`
}

// AnalyzeEmotion sends a frame to llama.cpp and returns the per-face emotions.
func (p *LlamaCppModel) AnalyzeEmotion(ctx context.Context, jpegData []byte) ([]FaceEmotion, error) {
	imageURL := "data:image/jpeg;base64," + base64.StdEncoding.EncodeToString(jpegData)
	messages := []llamaCppMessage{
		{Role: "system", Content: emotionPrompt},
		{
			Role: "user",
			Content: []llamaCppContentPart{
				{Type: "text", Text: userInstruction},
				{Type: "image_url", ImageURL: &llamaCppImageURL{URL: imageURL}},
			},
		},
	}

	var lastError error
	var lastResponse string

	for range constants.MaxJSONRetries {
		resp, err := p.sendRequest(ctx, messages)
		if err != nil {
			return nil, fmt.Errorf("llama.cpp API error: %w", err)
		}
		p.track(resp.Usage.PromptTokens, resp.Usage.CompletionTokens)

		if len(resp.Choices) == 0 {
			return nil, errors.New("no response from llama.cpp")
		}

		content := resp.Choices[0].Message.Content
		lastResponse = content

		faces, err := parseEmotionAnalysis(content)
		if err != nil {
			lastError = err
			messages = append(messages,
				llamaCppMessage{Role: "assistant", Content: content},
				llamaCppMessage{Role: "user", Content: retryInstruction(err)},
			)
			continue
		}

		return faces, nil
	}

	return nil, fmt.Errorf(
		"failed to parse emotion JSON after %d attempts: %w (last response: %s)",
		constants.MaxJSONRetries, lastError, lastResponse,
	)
}

func (p *LlamaCppModel) sendRequest(ctx context.Context, messages []llamaCppMessage) (*llamaCppResponse, error) {
	reqBody := llamaCppRequest{
		Model:       p.model,
		Messages:    messages,
		MaxTokens:   300,
		Temperature: 0.1,
		Stream:      false,
	}

	jsonBody, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	reqURL := p.parsedURL.JoinPath("/v1/chat/completions")
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, reqURL.String(), bytes.NewReader(jsonBody))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("API error (status %d): %s", resp.StatusCode, string(body))
	}

	var llamaResp llamaCppResponse
	if err := json.Unmarshal(body, &llamaResp); err != nil {
		return nil, fmt.Errorf("failed to parse response: %w", err)
	}

	return &llamaResp, nil
}
