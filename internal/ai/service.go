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
)

const defaultServiceURL = "http://localhost:5005"

// ServiceModel calls an HTTP face analysis service with a DeepFace compatible
// /analyze endpoint.
type ServiceModel struct {
	parsedURL *url.URL
	client    *http.Client
}

func NewServiceModel(baseURL string, timeout time.Duration) (*ServiceModel, error) {
	if baseURL == "" {
		baseURL = defaultServiceURL
	}
	parsed, err := url.Parse(strings.TrimSuffix(baseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("invalid emotion service URL: %w", err)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return nil, fmt.Errorf("invalid emotion service URL scheme %q: must be http or https", parsed.Scheme)
	}
	if parsed.Host == "" {
		return nil, errors.New("invalid emotion service URL: missing host")
	}
	return &ServiceModel{
		parsedURL: parsed,
		client:    &http.Client{Timeout: timeout},
	}, nil
}

func (p *ServiceModel) Name() string {
	return "service/" + p.parsedURL.Host
}

type serviceRequest struct {
	Img              string   `json:"img"`
	Actions          []string `json:"actions"`
	EnforceDetection bool     `json:"enforce_detection"`
}

type serviceEnvelope struct {
	Results []FaceEmotion `json:"results"`
}

func (p *ServiceModel) AnalyzeEmotion(ctx context.Context, jpegData []byte) ([]FaceEmotion, error) {
	jsonBody, err := json.Marshal(serviceRequest{
		Img:              "data:image/jpeg;base64," + base64.StdEncoding.EncodeToString(jpegData),
		Actions:          []string{"emotion"},
		EnforceDetection: false,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	reqURL := p.parsedURL.JoinPath("/analyze")
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, reqURL.String(), bytes.NewReader(jsonBody))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("emotion service request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("emotion service error (status %d): %s", resp.StatusCode, string(body))
	}

	return parseServiceResponse(body)
}

// parseServiceResponse accepts a single face object, a list of faces, or a
// {"results": [...]} envelope.
func parseServiceResponse(body []byte) ([]FaceEmotion, error) {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 {
		return nil, errors.New("empty response from emotion service")
	}

	if trimmed[0] == '[' {
		var faces []FaceEmotion
		if err := json.Unmarshal(trimmed, &faces); err != nil {
			return nil, fmt.Errorf("failed to parse response: %w", err)
		}
		return faces, nil
	}

	var envelope serviceEnvelope
	if err := json.Unmarshal(trimmed, &envelope); err != nil {
		return nil, fmt.Errorf("failed to parse response: %w", err)
	}
	if envelope.Results != nil {
		return envelope.Results, nil
	}

	var face FaceEmotion
	if err := json.Unmarshal(trimmed, &face); err != nil {
		return nil, fmt.Errorf("failed to parse response: %w", err)
	}
	if face.Dominant == "" {
		return nil, nil
	}
	return []FaceEmotion{face}, nil
}
