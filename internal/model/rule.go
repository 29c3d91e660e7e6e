package model

import (
	"encoding/json"
	"fmt"
	"time"
)

// ConditionField names the meeting attribute a condition tests.
type ConditionField string

// Condition field constants.
const (
	FieldTitle              ConditionField = "title"
	FieldDescription        ConditionField = "description"
	FieldAttendeeDomains    ConditionField = "attendee_domains"
	FieldOrganizer          ConditionField = "organizer"
	FieldAllAttendeesDomain ConditionField = "all_attendees_domain"
)

// ConditionOperator is the comparison applied to a condition's field.
type ConditionOperator string

// Condition operator constants.
const (
	OpContains    ConditionOperator = "contains"
	OpEquals      ConditionOperator = "equals"
	OpStartsWith  ConditionOperator = "starts_with"
	OpEndsWith    ConditionOperator = "ends_with"
	OpContainsAny ConditionOperator = "contains_any"
	OpIntersects  ConditionOperator = "intersects"
)

// validOperators is the closed field/operator matrix. Combinations
// outside it are rejected at the boundary by Validate; the evaluator
// additionally fails closed if one slips through.
var validOperators = map[ConditionField]map[ConditionOperator]bool{
	FieldTitle:              {OpContains: true, OpEquals: true, OpStartsWith: true, OpContainsAny: true},
	FieldDescription:        {OpContains: true, OpEquals: true, OpStartsWith: true},
	FieldAttendeeDomains:    {OpContains: true, OpIntersects: true},
	FieldOrganizer:          {OpEquals: true, OpEndsWith: true},
	FieldAllAttendeesDomain: {OpEquals: true},
}

// listOperators marks operators whose value must be a list.
var listOperators = map[ConditionOperator]bool{
	OpContainsAny: true,
	OpIntersects:  true,
}

// Condition is a single typed predicate over meeting facts. Exactly one
// of Value/Values is populated, depending on the operator.
type Condition struct {
	Field    ConditionField    `json:"field"`
	Operator ConditionOperator `json:"operator"`
	Value    string            `json:"-"`
	Values   []string          `json:"-"`
}

// conditionJSON is the wire shape: value may be a string or a list.
type conditionJSON struct {
	Field    ConditionField    `json:"field"`
	Operator ConditionOperator `json:"operator"`
	Value    json.RawMessage   `json:"value"`
}

// MarshalJSON encodes the value as a scalar or list to match the
// operator's arity.
func (c Condition) MarshalJSON() ([]byte, error) {
	var raw json.RawMessage
	var err error
	if listOperators[c.Operator] {
		raw, err = json.Marshal(c.Values)
	} else {
		raw, err = json.Marshal(c.Value)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to marshal condition value: %w", err)
	}
	return json.Marshal(conditionJSON{Field: c.Field, Operator: c.Operator, Value: raw})
}

// UnmarshalJSON accepts either a scalar or a list value. Arity
// mismatches are preserved as-is so Validate can reject them.
func (c *Condition) UnmarshalJSON(data []byte) error {
	var cj conditionJSON
	if err := json.Unmarshal(data, &cj); err != nil {
		return fmt.Errorf("failed to unmarshal condition: %w", err)
	}
	c.Field = cj.Field
	c.Operator = cj.Operator
	c.Value = ""
	c.Values = nil

	if len(cj.Value) == 0 {
		return nil
	}
	var list []string
	if err := json.Unmarshal(cj.Value, &list); err == nil {
		c.Values = list
		return nil
	}
	var scalar string
	if err := json.Unmarshal(cj.Value, &scalar); err != nil {
		return fmt.Errorf("condition value must be a string or string list")
	}
	c.Value = scalar
	return nil
}

// Validate rejects unknown fields, operators invalid for the field, and
// scalar/list arity mismatches.
func (c Condition) Validate() error {
	ops, ok := validOperators[c.Field]
	if !ok {
		return fmt.Errorf("unknown condition field %q", c.Field)
	}
	if !ops[c.Operator] {
		return fmt.Errorf("operator %q is not valid for field %q", c.Operator, c.Field)
	}
	if listOperators[c.Operator] {
		if len(c.Values) == 0 {
			return fmt.Errorf("operator %q requires a non-empty list value", c.Operator)
		}
	} else if c.Value == "" {
		return fmt.Errorf("operator %q requires a string value", c.Operator)
	}
	return nil
}

// String renders a condition for match diagnostics.
func (c Condition) String() string {
	if listOperators[c.Operator] {
		return fmt.Sprintf("%s %s %v", c.Field, c.Operator, c.Values)
	}
	return fmt.Sprintf("%s %s %q", c.Field, c.Operator, c.Value)
}

// GroupOperator combines a rule's conditions.
type GroupOperator string

// Group operator constants.
const (
	GroupAnd GroupOperator = "AND"
	GroupOr  GroupOperator = "OR"
)

// ConditionGroup is a rule's boolean condition tree: a single operator
// over an ordered list of conditions.
type ConditionGroup struct {
	Operator   GroupOperator `json:"operator"`
	Conditions []Condition   `json:"conditions"`
}

// Validate rejects unknown group operators and invalid conditions. An
// empty condition list is allowed here (the matcher treats it as
// never-matching) so a rule can be saved while still being authored.
func (g ConditionGroup) Validate() error {
	if g.Operator != GroupAnd && g.Operator != GroupOr {
		return fmt.Errorf("unknown group operator %q", g.Operator)
	}
	for i, c := range g.Conditions {
		if err := c.Validate(); err != nil {
			return fmt.Errorf("condition %d: %w", i, err)
		}
	}
	return nil
}

// RuleStatus controls whether a rule participates in classification.
type RuleStatus string

// Rule status constants. Testing rules are only evaluated in dry-run
// contexts and never affect auto-filing.
const (
	RuleActive   RuleStatus = "active"
	RuleDisabled RuleStatus = "disabled"
	RuleTesting  RuleStatus = "testing"
)

// RuleStats tracks how often a rule fired and how often humans
// corrected its verdict.
type RuleStats struct {
	LastApplied    *time.Time `json:"last_applied,omitempty"`
	TimesApplied   int        `json:"times_applied"`
	TimesCorrected int        `json:"times_corrected"`
}

// Rule is a prioritized, named condition group plus the actions to take
// when it matches. Only status fields and stats are mutated after
// creation; the engine itself never deletes rules.
type Rule struct {
	CreatedAt       time.Time      `json:"created_at"`
	UpdatedAt       time.Time      `json:"updated_at"`
	Name            string         `json:"name"`
	Description     string         `json:"description,omitempty"`
	Status          RuleStatus     `json:"status"`
	Group           ConditionGroup `json:"conditions"`
	Actions         ActionSet      `json:"actions"`
	Stats           RuleStats      `json:"stats"`
	ID              int64          `json:"id"`
	Priority        int            `json:"priority"`
	ConfidenceBoost float64        `json:"confidence_boost"`
}

// Validate checks the whole rule document at the boundary.
func (r Rule) Validate() error {
	if r.Name == "" {
		return fmt.Errorf("rule name is required")
	}
	switch r.Status {
	case RuleActive, RuleDisabled, RuleTesting:
	default:
		return fmt.Errorf("unknown rule status %q", r.Status)
	}
	if r.ConfidenceBoost < 0 || r.ConfidenceBoost > 0.5 {
		return fmt.Errorf("confidence boost must be between 0 and 0.5, got %.2f", r.ConfidenceBoost)
	}
	if err := r.Group.Validate(); err != nil {
		return fmt.Errorf("invalid condition group: %w", err)
	}
	if err := r.Actions.Validate(); err != nil {
		return fmt.Errorf("invalid action set: %w", err)
	}
	return nil
}
