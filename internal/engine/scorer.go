package engine

import (
	"github.com/notabene-app/notabene/internal/model"
)

// Default signal weights. Tunable per deployment via configuration; the
// defaults keep domain > rule > internal > external ordering.
const (
	DefaultDomainMatchWeight    = 0.75
	DefaultProjectKeywordBonus  = 0.15
	DefaultProjectKeywordWeight = 0.60
	DefaultClientKeywordWeight  = 0.50
	DefaultRuleMatchWeight      = 0.60
	DefaultInternalMatchWeight  = 0.50
	DefaultExternalMatchWeight  = 0.30
	// DefaultWeakSignalFloor is the accumulated-confidence level below
	// which the engine defers to the AI fallback.
	DefaultWeakSignalFloor = 0.50
)

// Weights are the additive confidence contributions of each signal.
type Weights struct {
	DomainMatch    float64
	ProjectBonus   float64
	ProjectKeyword float64
	ClientKeyword  float64
	RuleMatch      float64
	InternalMatch  float64
	ExternalMatch  float64
	WeakFloor      float64
}

// DefaultWeights returns the default signal weights.
func DefaultWeights() Weights {
	return Weights{
		DomainMatch:    DefaultDomainMatchWeight,
		ProjectBonus:   DefaultProjectKeywordBonus,
		ProjectKeyword: DefaultProjectKeywordWeight,
		ClientKeyword:  DefaultClientKeywordWeight,
		RuleMatch:      DefaultRuleMatchWeight,
		InternalMatch:  DefaultInternalMatchWeight,
		ExternalMatch:  DefaultExternalMatchWeight,
		WeakFloor:      DefaultWeakSignalFloor,
	}
}

// signals are the locally-computed inputs to scoring.
type signals struct {
	domainClient *model.Client
	keyword      keywordHit
	rule         *model.Rule
	ruleClient   *model.Client
	ruleProject  *model.Project
	ruleTeam     string
}

// score merges signals into a classification. The first applicable
// signal wins the type; confidence accumulates from every contributing
// signal, clamped to [0, 1]. The AI fallback is layered on separately
// by the engine.
func score(sig signals, facts model.MeetingFacts, w Weights, internalDomain string) model.ClassificationResult {
	var result model.ClassificationResult
	result.Method = model.MethodDefault
	result.Type = model.TypeUncategorized

	switch {
	case sig.domainClient != nil:
		result.Type = model.TypeClient
		result.Method = model.MethodDomain
		setClient(&result, sig.domainClient)
		result.Confidence = w.DomainMatch
		if sig.keyword.Project != nil && sig.keyword.Project.ClientID == sig.domainClient.ID {
			setProject(&result, sig.keyword.Project)
			result.Confidence += w.ProjectBonus
		}
		if sig.rule != nil {
			result.Confidence += sig.rule.ConfidenceBoost
		}

	case sig.keyword.Client != nil:
		result.Type = model.TypeClient
		result.Method = model.MethodKeyword
		setClient(&result, sig.keyword.Client)
		if sig.keyword.Project != nil {
			setProject(&result, sig.keyword.Project)
			result.Confidence = w.ProjectKeyword
		} else {
			result.Confidence = w.ClientKeyword
		}
		if sig.rule != nil {
			result.Confidence += sig.rule.ConfidenceBoost
		}

	case sig.rule != nil:
		result.Type = sig.rule.Actions.ClassifyAs
		result.Method = model.MethodRule
		result.Confidence = w.RuleMatch + sig.rule.ConfidenceBoost
		if sig.ruleClient != nil {
			setClient(&result, sig.ruleClient)
		}
		if sig.ruleProject != nil {
			setProject(&result, sig.ruleProject)
		}
		result.InternalTeam = sig.ruleTeam

	case internalDomain != "" && facts.AllDomainsEqual(internalDomain):
		result.Type = model.TypeInternal
		result.Confidence = w.InternalMatch

	case internalDomain != "" && len(facts.AttendeeDomains) > 0:
		result.Type = model.TypeExternal
		result.Confidence = w.ExternalMatch
	}

	if sig.rule != nil {
		id := sig.rule.ID
		result.MatchedRuleID = &id
	}

	result.Confidence = clampConfidence(result.Confidence)
	return result
}

func setClient(r *model.ClassificationResult, c *model.Client) {
	id := c.ID
	r.ClientID = &id
	r.ClientName = c.Name
}

func setProject(r *model.ClassificationResult, p *model.Project) {
	id := p.ID
	r.ProjectID = &id
	r.ProjectName = p.Name
}

func clampConfidence(c float64) float64 {
	if c < 0 {
		return 0
	}
	if c > 1 {
		return 1
	}
	return c
}
