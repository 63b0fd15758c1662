package classifier

import (
	"context"
	"strings"

	"github.com/siftlabs/sift/pkg/types"
)

// Confidence scoring for the rule based adapter. A note that matches
// no intent vocabulary scores the floor; otherwise each matched
// keyword of the winning intent adds a step, up to the cap.
const (
	confidenceFloor = 0.3
	confidenceStep  = 0.2
	confidenceCap   = 0.9
)

// RuleBased classifies notes by keyword lookup against an ordered
// rule set. It is deterministic, allocation light, and needs no
// network, which makes it the default adapter.
type RuleBased struct {
	rules *RuleSet
}

// NewRuleBased builds a classifier over the given rules. The rule
// set must already be validated; DefaultRules and LoadRules both
// guarantee that.
func NewRuleBased(rules *RuleSet) *RuleBased {
	return &RuleBased{rules: rules}
}

// Name implements Classifier.
func (r *RuleBased) Name() string {
	return AdapterRuleBased
}

// Triage implements Classifier. Matching is case insensitive
// substring containment over the whole note.
func (r *RuleBased) Triage(_ context.Context, note string) (types.Classification, error) {
	text := strings.ToLower(note)

	intent := types.IntentOther
	matched := 0
	for _, rule := range r.rules.Intents {
		found := 0
		for _, kw := range rule.Keywords {
			if strings.Contains(text, kw) {
				found++
			}
		}
		if found > 0 {
			intent = rule.Intent
			matched = found
			break
		}
	}

	var priority types.Priority
	for _, rule := range r.rules.Priorities {
		if containsAny(text, rule.Keywords) {
			priority = rule.Priority
			break
		}
	}
	if priority == "" {
		priority = r.rules.Defaults[intent]
	}
	if priority == "" {
		priority = types.PriorityP2
	}

	action := types.ActionQualify
	if byPriority, ok := r.rules.Actions[intent]; ok {
		if a, ok := byPriority[priority]; ok {
			action = a
		}
	}

	confidence := confidenceFloor
	if intent != types.IntentOther {
		confidence = confidenceFloor + confidenceStep*float64(matched)
		if confidence > confidenceCap {
			confidence = confidenceCap
		}
	}

	tags := types.Tags{}
	for _, rule := range r.rules.Tags {
		if containsAny(text, rule.Keywords) {
			tags = append(tags, rule.Tag)
		}
	}

	return types.Classification{
		Intent:     intent,
		Priority:   priority,
		NextAction: action,
		Confidence: confidence,
		Tags:       tags,
	}, nil
}

func containsAny(text string, keywords []string) bool {
	for _, kw := range keywords {
		if strings.Contains(text, kw) {
			return true
		}
	}
	return false
}
