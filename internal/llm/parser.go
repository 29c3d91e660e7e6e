package llm

import (
	"encoding/json"
	"fmt"
	"strings"
)

// parseClassification extracts the classification from a raw LLM
// response. Providers sometimes wrap JSON in markdown fences despite
// being told not to, so that wrapper is stripped first.
func parseClassification(content string) (ClassificationResponse, error) {
	var jsonResp struct {
		Type       string  `json:"type"`
		Confidence float64 `json:"confidence"`
		Reasoning  string  `json:"reasoning,omitempty"`
	}

	content = cleanMarkdownWrapper(content)

	if err := json.Unmarshal([]byte(content), &jsonResp); err != nil {
		return ClassificationResponse{}, fmt.Errorf("failed to parse JSON response: %w", err)
	}

	if jsonResp.Type == "" {
		return ClassificationResponse{}, fmt.Errorf("no classification type found in response")
	}

	return ClassificationResponse{
		Type:       jsonResp.Type,
		Confidence: jsonResp.Confidence,
		Reasoning:  jsonResp.Reasoning,
	}, nil
}

// cleanMarkdownWrapper strips ```json ... ``` fences around a response.
func cleanMarkdownWrapper(content string) string {
	content = strings.TrimSpace(content)
	if strings.HasPrefix(content, "```") {
		content = strings.TrimPrefix(content, "```json")
		content = strings.TrimPrefix(content, "```")
		content = strings.TrimSuffix(content, "```")
		content = strings.TrimSpace(content)
	}
	return content
}
