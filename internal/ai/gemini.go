package ai

import (
	"context"
	"errors"
	"fmt"

	"google.golang.org/genai"

	"github.com/kozaktomas/carecam/internal/constants"
)

const defaultGeminiModel = "gemini-2.5-flash"

type GeminiModel struct {
	client *genai.Client
	model  string
	usageTracker
}

func NewGeminiModel(ctx context.Context, apiKey, model string) (*GeminiModel, error) {
	if model == "" {
		model = defaultGeminiModel
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	return &GeminiModel{
		client: client,
		model:  model,
	}, nil
}

func (p *GeminiModel) Name() string {
	return "gemini/" + p.model
}

func (p *GeminiModel) AnalyzeEmotion(ctx context.Context, jpegData []byte) ([]FaceEmotion, error) {
	contents := []*genai.Content{
		{
			Role: "user",
			Parts: []*genai.Part{
				{Text: emotionPrompt + "\n\n" + userInstruction},
				{InlineData: &genai.Blob{Data: jpegData, MIMEType: "image/jpeg"}},
			},
		},
	}

	config := &genai.GenerateContentConfig{
		ResponseMIMEType: "application/json",
	}

	var lastError error
	var lastResponse string

	for range constants.MaxJSONRetries {
		result, err := p.client.Models.GenerateContent(ctx, p.model, contents, config)
		if err != nil {
			return nil, fmt.Errorf("gemini API error: %w", err)
		}

		if result.UsageMetadata != nil {
			p.track(int(result.UsageMetadata.PromptTokenCount), int(result.UsageMetadata.CandidatesTokenCount))
		}

		content := result.Text()
		if content == "" {
			return nil, errors.New("no response from Gemini")
		}
		lastResponse = content

		faces, err := parseEmotionAnalysis(content)
		if err != nil {
			lastError = err
			contents = append(contents,
				&genai.Content{
					Role:  "model",
					Parts: []*genai.Part{{Text: content}},
				},
				&genai.Content{
					Role:  "user",
					Parts: []*genai.Part{{Text: retryInstruction(err)}},
				},
			)
			continue
		}

		return faces, nil
	}

	return nil, fmt.Errorf("failed to parse emotion JSON after %d attempts: %w (last response: %s)",
		constants.MaxJSONRetries, lastError, lastResponse)
}
