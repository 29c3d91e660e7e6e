package engine

import (
	"github.com/notabene-app/notabene/internal/model"
)

// MatchResult reports a rule evaluation with per-condition diagnostics.
// Condition order is preserved so authors can see exactly which line of
// their rule held or failed.
type MatchResult struct {
	MatchedConditions []string `json:"matched_conditions"`
	FailedConditions  []string `json:"failed_conditions"`
	Matched           bool     `json:"matched"`
}

// MatchRule folds a rule's condition group into a single verdict. Every
// condition is evaluated independently; AND matches iff nothing failed,
// OR iff anything matched. A rule with no conditions never matches.
//
// This function is the single matcher shared by live classification and
// the dry-run rule tester; the two must never drift.
func MatchRule(rule model.Rule, facts model.MeetingFacts) MatchResult {
	var result MatchResult

	if len(rule.Group.Conditions) == 0 {
		result.FailedConditions = []string{"rule has no conditions"}
		return result
	}

	for _, cond := range rule.Group.Conditions {
		if EvaluateCondition(cond, facts) {
			result.MatchedConditions = append(result.MatchedConditions, cond.String())
		} else {
			result.FailedConditions = append(result.FailedConditions, cond.String())
		}
	}

	switch rule.Group.Operator {
	case model.GroupAnd:
		result.Matched = len(result.FailedConditions) == 0
	case model.GroupOr:
		result.Matched = len(result.MatchedConditions) > 0
	}

	return result
}
