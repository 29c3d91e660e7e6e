package model

import (
	"strings"
	"time"
)

// Learned-pattern invariants.
const (
	// MaxLearnedPatterns caps the per-user pattern list; the oldest
	// entry is evicted when the cap is exceeded.
	MaxLearnedPatterns = 50
	// LearnedPatternInitialConfidence is assigned to a freshly
	// observed pattern.
	LearnedPatternInitialConfidence = 0.7
	// LearnedPatternConfidenceStep is added each time a pattern
	// recurs.
	LearnedPatternConfidenceStep = 0.05
	// LearnedPatternMaxConfidence is the hard ceiling; learned
	// patterns are advisory and never reach full certainty.
	LearnedPatternMaxConfidence = 0.95
)

// LearnedPattern is a per-user heuristic inferred from repeated
// corrections. Advisory only: patterns influence suggestions, never
// auto-filing directly.
type LearnedPattern struct {
	CreatedAt    time.Time `json:"created_at"`
	LastApplied  time.Time `json:"last_applied"`
	Pattern      string    `json:"pattern"`
	Action       string    `json:"action"`
	Confidence   float64   `json:"confidence"`
	TimesApplied int       `json:"times_applied"`
}

// PatternList is a user's bounded learned-pattern collection. The
// eviction invariant (FIFO at MaxLearnedPatterns) is enforced here so
// callers cannot grow the list past the cap.
type PatternList struct {
	patterns []LearnedPattern
}

// NewPatternList builds a list from stored patterns, trimming oldest
// entries if the stored data somehow exceeds the cap.
func NewPatternList(patterns []LearnedPattern) *PatternList {
	if len(patterns) > MaxLearnedPatterns {
		patterns = patterns[len(patterns)-MaxLearnedPatterns:]
	}
	list := &PatternList{patterns: make([]LearnedPattern, len(patterns))}
	copy(list.patterns, patterns)
	return list
}

// Patterns returns a copy of the current entries, oldest first.
func (l *PatternList) Patterns() []LearnedPattern {
	out := make([]LearnedPattern, len(l.patterns))
	copy(out, l.patterns)
	return out
}

// Len returns the number of stored patterns.
func (l *PatternList) Len() int {
	return len(l.patterns)
}

// Observe records one occurrence of a pattern. A case-insensitive match
// on the pattern text bumps the existing entry's confidence and use
// count; otherwise a new entry is appended and the oldest evicted if
// the cap is exceeded. Returns true when an existing entry was updated.
func (l *PatternList) Observe(pattern, action string, now time.Time) bool {
	for i := range l.patterns {
		if strings.EqualFold(l.patterns[i].Pattern, pattern) {
			l.patterns[i].Confidence += LearnedPatternConfidenceStep
			if l.patterns[i].Confidence > LearnedPatternMaxConfidence {
				l.patterns[i].Confidence = LearnedPatternMaxConfidence
			}
			l.patterns[i].TimesApplied++
			l.patterns[i].LastApplied = now
			l.patterns[i].Action = action
			return true
		}
	}

	l.patterns = append(l.patterns, LearnedPattern{
		Pattern:      pattern,
		Action:       action,
		Confidence:   LearnedPatternInitialConfidence,
		TimesApplied: 1,
		LastApplied:  now,
		CreatedAt:    now,
	})
	if len(l.patterns) > MaxLearnedPatterns {
		l.patterns = l.patterns[1:]
	}
	return false
}
