package engine

import (
	"strings"

	"github.com/notabene-app/notabene/internal/model"
)

// EvaluateCondition evaluates one condition against precomputed meeting
// facts. It never errors: unsupported field/operator combinations and
// arity mismatches fail closed and return false.
func EvaluateCondition(c model.Condition, facts model.MeetingFacts) bool {
	switch c.Field {
	case model.FieldTitle:
		return evaluateText(facts.Title, c)
	case model.FieldDescription:
		switch c.Operator {
		case model.OpContains, model.OpEquals, model.OpStartsWith:
			return evaluateText(facts.Description, c)
		}
		return false
	case model.FieldAttendeeDomains:
		return evaluateDomains(facts, c)
	case model.FieldOrganizer:
		return evaluateOrganizer(facts.Organizer, c)
	case model.FieldAllAttendeesDomain:
		if c.Operator != model.OpEquals {
			return false
		}
		return facts.AllDomainsEqual(conditionValue(c))
	}
	return false
}

// evaluateText handles the title/description operators.
func evaluateText(text string, c model.Condition) bool {
	switch c.Operator {
	case model.OpContains:
		v := conditionValue(c)
		return v != "" && strings.Contains(text, v)
	case model.OpEquals:
		return text == conditionValue(c)
	case model.OpStartsWith:
		v := conditionValue(c)
		return v != "" && strings.HasPrefix(text, v)
	case model.OpContainsAny:
		// Scalar values where a list is expected never match.
		for _, v := range conditionValues(c) {
			if v != "" && strings.Contains(text, v) {
				return true
			}
		}
		return false
	}
	return false
}

// evaluateDomains tests membership in the attendee domain set. contains
// takes a single domain; intersects is true when any listed domain is
// present.
func evaluateDomains(facts model.MeetingFacts, c model.Condition) bool {
	switch c.Operator {
	case model.OpContains:
		v := conditionValue(c)
		return v != "" && facts.HasDomain(v)
	case model.OpIntersects:
		for _, v := range conditionValues(c) {
			if facts.HasDomain(v) {
				return true
			}
		}
	}
	return false
}

// evaluateOrganizer handles exact and domain-suffix organizer matches.
func evaluateOrganizer(organizer string, c model.Condition) bool {
	if organizer == "" {
		return false
	}
	switch c.Operator {
	case model.OpEquals:
		return organizer == conditionValue(c)
	case model.OpEndsWith:
		v := conditionValue(c)
		return v != "" && strings.HasSuffix(organizer, v)
	}
	return false
}

func conditionValue(c model.Condition) string {
	return strings.ToLower(strings.TrimSpace(c.Value))
}

func conditionValues(c model.Condition) []string {
	values := make([]string, 0, len(c.Values))
	for _, v := range c.Values {
		values = append(values, strings.ToLower(strings.TrimSpace(v)))
	}
	return values
}
