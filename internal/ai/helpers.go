package ai

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"strings"
)

//go:embed prompts/emotion.txt
var emotionPrompt string

// emotionAnalysis is the JSON document LLM backends are asked to produce.
type emotionAnalysis struct {
	Faces []FaceEmotion `json:"faces"`
}

const userInstruction = "Classify the facial emotion of every face in this frame."

// parseEmotionAnalysis extracts and decodes the JSON document from an LLM reply.
func parseEmotionAnalysis(content string) ([]FaceEmotion, error) {
	var analysis emotionAnalysis
	if err := json.Unmarshal([]byte(extractJSON(content)), &analysis); err != nil {
		return nil, err
	}
	return analysis.Faces, nil
}

// retryInstruction is sent back to an LLM after it produced JSON that does not parse.
func retryInstruction(parseErr error) string {
	return fmt.Sprintf(
		"JSON parse error: %v. Please fix the JSON and try again."+
			" Output ONLY valid JSON, no other text.", parseErr,
	)
}

// extractJSON attempts to extract JSON from a response that may contain extra text
func extractJSON(content string) string {
	start := strings.Index(content, "{")
	if start == -1 {
		return content
	}

	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(content); i++ {
		c := content[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}
		switch c {
		case '"':
			inString = true
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return content[start : i+1]
			}
		}
	}

	// No matching brace, let the decoder report the error.
	return content[start:]
}
