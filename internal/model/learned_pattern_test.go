package model

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPatternListObserve(t *testing.T) {
	now := time.Date(2026, 8, 1, 10, 0, 0, 0, time.UTC)
	list := NewPatternList(nil)

	updated := list.Observe("meetings with acme.com", "file under client Acme", now)
	assert.False(t, updated)
	require.Equal(t, 1, list.Len())

	p := list.Patterns()[0]
	assert.Equal(t, LearnedPatternInitialConfidence, p.Confidence)
	assert.Equal(t, 1, p.TimesApplied)
	assert.Equal(t, now, p.CreatedAt)

	// Case-insensitive recurrence bumps the entry instead of appending.
	later := now.Add(time.Hour)
	updated = list.Observe("Meetings With ACME.com", "file under client Acme", later)
	assert.True(t, updated)
	require.Equal(t, 1, list.Len())

	p = list.Patterns()[0]
	assert.InDelta(t, LearnedPatternInitialConfidence+LearnedPatternConfidenceStep, p.Confidence, 1e-9)
	assert.Equal(t, 2, p.TimesApplied)
	assert.Equal(t, later, p.LastApplied)
	assert.Equal(t, now, p.CreatedAt)
}

func TestPatternListConfidenceCeiling(t *testing.T) {
	now := time.Now()
	list := NewPatternList(nil)
	list.Observe("recurring", "file as internal", now)

	// Enough recurrences to exceed the ceiling if it weren't enforced.
	for i := 0; i < 10; i++ {
		list.Observe("recurring", "file as internal", now)
	}

	assert.InDelta(t, LearnedPatternMaxConfidence, list.Patterns()[0].Confidence, 1e-9)
}

func TestPatternListEviction(t *testing.T) {
	now := time.Now()
	list := NewPatternList(nil)

	for i := 0; i < MaxLearnedPatterns; i++ {
		list.Observe(fmt.Sprintf("pattern-%d", i), "file as internal", now)
	}
	require.Equal(t, MaxLearnedPatterns, list.Len())

	list.Observe("one-too-many", "file as internal", now)

	assert.Equal(t, MaxLearnedPatterns, list.Len())
	patterns := list.Patterns()
	assert.Equal(t, "pattern-1", patterns[0].Pattern, "oldest entry evicted")
	assert.Equal(t, "one-too-many", patterns[len(patterns)-1].Pattern)
}

func TestNewPatternListTrimsOverflow(t *testing.T) {
	oversized := make([]LearnedPattern, MaxLearnedPatterns+5)
	for i := range oversized {
		oversized[i] = LearnedPattern{Pattern: fmt.Sprintf("p-%d", i)}
	}

	list := NewPatternList(oversized)
	assert.Equal(t, MaxLearnedPatterns, list.Len())
	assert.Equal(t, "p-5", list.Patterns()[0].Pattern)
}

func TestDeriveCorrectionTypes(t *testing.T) {
	clientA := int64(1)
	clientB := int64(2)

	original := ClassificationResult{Type: TypeClient, ClientID: &clientA}
	corrected := ClassificationResult{Type: TypeClient, ClientID: &clientB}
	assert.Equal(t, []CorrectionType{CorrectionClientChange}, DeriveCorrectionTypes(original, corrected))

	typeAndTeam := DeriveCorrectionTypes(
		ClassificationResult{Type: TypeExternal},
		ClassificationResult{Type: TypeInternal, InternalTeam: "platform"},
	)
	assert.Equal(t, []CorrectionType{CorrectionTypeChange, CorrectionTeamChange}, typeAndTeam)

	// Identical verdicts still produce a category.
	same := ClassificationResult{Type: TypePersonal}
	assert.Equal(t, []CorrectionType{CorrectionOther}, DeriveCorrectionTypes(same, same))
}
