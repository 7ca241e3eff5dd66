package ai

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/openai/openai-go/shared"

	"github.com/kozaktomas/carecam/internal/constants"
)

const defaultOpenAIModel = openai.ChatModelGPT4_1Mini

type OpenAIModel struct {
	client *openai.Client
	model  string
	usageTracker
}

// NewOpenAIModel creates an OpenAI vision backend. Extra request options are
// appended after the API key and may override it.
func NewOpenAIModel(apiKey, model string, opts ...option.RequestOption) *OpenAIModel {
	if model == "" {
		model = defaultOpenAIModel
	}
	client := openai.NewClient(append([]option.RequestOption{option.WithAPIKey(apiKey)}, opts...)...)
	return &OpenAIModel{
		client: &client,
		model:  model,
	}
}

func (p *OpenAIModel) Name() string {
	return "openai/" + p.model
}

func (p *OpenAIModel) AnalyzeEmotion(ctx context.Context, jpegData []byte) ([]FaceEmotion, error) {
	imageURL := "data:image/jpeg;base64," + base64.StdEncoding.EncodeToString(jpegData)

	messages := []openai.ChatCompletionMessageParamUnion{
		openai.SystemMessage(emotionPrompt),
		{
			OfUser: &openai.ChatCompletionUserMessageParam{
				Content: openai.ChatCompletionUserMessageParamContentUnion{
					OfArrayOfContentParts: []openai.ChatCompletionContentPartUnionParam{
						openai.TextContentPart(userInstruction),
						openai.ImageContentPart(openai.ChatCompletionContentPartImageImageURLParam{
							URL:    imageURL,
							Detail: "low",
						}),
					},
				},
			},
		},
	}

	var lastError error
	var lastResponse string

	for range constants.MaxJSONRetries {
		resp, err := p.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
			Model:    p.model,
			Messages: messages,
			ResponseFormat: openai.ChatCompletionNewParamsResponseFormatUnion{
				OfJSONObject: &shared.ResponseFormatJSONObjectParam{},
			},
			MaxTokens: openai.Int(300),
		})
		if err != nil {
			return nil, fmt.Errorf("OpenAI API error: %w", err)
		}

		if len(resp.Choices) == 0 {
			return nil, errors.New("no response from OpenAI")
		}
		p.track(int(resp.Usage.PromptTokens), int(resp.Usage.CompletionTokens))

		content := resp.Choices[0].Message.Content
		lastResponse = content

		faces, err := parseEmotionAnalysis(content)
		if err != nil {
			lastError = err
			messages = append(messages,
				openai.AssistantMessage(content),
				openai.UserMessage(retryInstruction(err)),
			)
			continue
		}

		return faces, nil
	}

	return nil, fmt.Errorf("failed to parse emotion JSON after %d attempts: %w (last response: %s)",
		constants.MaxJSONRetries, lastError, lastResponse)
}
