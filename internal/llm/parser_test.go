package llm

import (
	"testing"

	"github.com/notabene-app/notabene/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseClassification(t *testing.T) {
	resp, err := parseClassification(`{"type": "client", "confidence": 0.85, "reasoning": "acme.com attendees"}`)
	require.NoError(t, err)
	assert.Equal(t, "client", resp.Type)
	assert.InDelta(t, 0.85, resp.Confidence, 1e-9)
	assert.Equal(t, "acme.com attendees", resp.Reasoning)
}

func TestParseClassificationStripsMarkdownFences(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{
			name:    "json fence",
			content: "```json\n{\"type\": \"internal\", \"confidence\": 0.7}\n```",
		},
		{
			name:    "bare fence",
			content: "```\n{\"type\": \"internal\", \"confidence\": 0.7}\n```",
		},
		{
			name:    "surrounding whitespace",
			content: "  \n{\"type\": \"internal\", \"confidence\": 0.7}\n  ",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, err := parseClassification(tt.content)
			require.NoError(t, err)
			assert.Equal(t, "internal", resp.Type)
		})
	}
}

func TestParseClassificationErrors(t *testing.T) {
	_, err := parseClassification("the meeting looks internal to me")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to parse JSON response")

	_, err = parseClassification(`{"confidence": 0.9}`)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no classification type")
}

func TestToAIResult(t *testing.T) {
	result, err := toAIResult(ClassificationResponse{Type: " Client ", Confidence: 0.8, Reasoning: "r"})
	require.NoError(t, err)
	assert.Equal(t, model.TypeClient, result.Type)

	_, err = toAIResult(ClassificationResponse{Type: "meeting", Confidence: 0.8})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid classification type")

	_, err = toAIResult(ClassificationResponse{Type: "client", Confidence: 1.2})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "confidence out of range")
}

func TestFactsFingerprintDiscriminates(t *testing.T) {
	base := model.NewMeetingFacts(model.MeetingInput{
		Title:     "Planning",
		Attendees: []model.Attendee{{Email: "a@acme.com"}},
	})
	same := model.NewMeetingFacts(model.MeetingInput{
		Title:     "Planning",
		Attendees: []model.Attendee{{Email: "a@acme.com"}},
	})
	different := model.NewMeetingFacts(model.MeetingInput{
		Title:     "Planning",
		Attendees: []model.Attendee{{Email: "b@acme.com"}},
	})

	assert.Equal(t, factsFingerprint(base), factsFingerprint(same))
	assert.NotEqual(t, factsFingerprint(base), factsFingerprint(different))
}
