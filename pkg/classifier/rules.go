package classifier

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/siftlabs/sift/pkg/types"
)

// IntentRule binds an intent to its keyword vocabulary. Intents are
// evaluated in slice order and the first rule with any keyword match
// wins, so more specific vocabularies belong earlier.
type IntentRule struct {
	Intent   types.Intent `yaml:"intent"`
	Keywords []string     `yaml:"keywords"`
}

// PriorityRule binds a priority to its keyword vocabulary, evaluated
// in slice order.
type PriorityRule struct {
	Priority types.Priority `yaml:"priority"`
	Keywords []string       `yaml:"keywords"`
}

// TagRule adds a tag when any of its keywords appear in the note.
// Unlike intents and priorities, every tag rule is evaluated.
type TagRule struct {
	Tag      string   `yaml:"tag"`
	Keywords []string `yaml:"keywords"`
}

// RuleSet is the full decision table for the rule based classifier.
// Slices keep evaluation order explicit and deterministic.
type RuleSet struct {
	Intents    []IntentRule                                         `yaml:"intents"`
	Priorities []PriorityRule                                       `yaml:"priorities"`
	Defaults   map[types.Intent]types.Priority                      `yaml:"default_priorities"`
	Actions    map[types.Intent]map[types.Priority]types.NextAction `yaml:"actions"`
	Tags       []TagRule                                            `yaml:"tags"`
}

// DefaultRules returns the built-in bilingual rule set.
func DefaultRules() *RuleSet {
	return &RuleSet{
		Intents: []IntentRule{
			{Intent: types.IntentBuy, Keywords: []string{
				"цена", "стоимость", "купить", "заказ", "прайс", "стоит", "price", "cost", "buy",
			}},
			{Intent: types.IntentSupport, Keywords: []string{
				"помощь", "сломал", "ошибка", "не работает", "bug", "help", "support",
			}},
			{Intent: types.IntentJob, Keywords: []string{
				"вакансия", "резюме", "работа", "карьера", "job", "career",
			}},
			{Intent: types.IntentSpam, Keywords: []string{
				"http://", "https://", "www.", ".com", "реклама", "spam",
			}},
		},
		Priorities: []PriorityRule{
			{Priority: types.PriorityP0, Keywords: []string{
				"срочно", "urgent", "asap", "немедленно", "критично",
			}},
			{Priority: types.PriorityP1, Keywords: []string{
				"скоро", "soon", "ближайшее время", "недолго",
			}},
			{Priority: types.PriorityP3, Keywords: []string{
				"когда-нибудь", "потом", "не спеша",
			}},
		},
		Defaults: map[types.Intent]types.Priority{
			types.IntentBuy:     types.PriorityP1,
			types.IntentSupport: types.PriorityP2,
			types.IntentJob:     types.PriorityP3,
			types.IntentSpam:    types.PriorityP3,
			types.IntentOther:   types.PriorityP2,
		},
		Actions: map[types.Intent]map[types.Priority]types.NextAction{
			types.IntentBuy: {
				types.PriorityP0: types.ActionCall,
				types.PriorityP1: types.ActionEmail,
				types.PriorityP2: types.ActionEmail,
				types.PriorityP3: types.ActionQualify,
			},
			types.IntentSupport: {
				types.PriorityP0: types.ActionCall,
				types.PriorityP1: types.ActionEmail,
				types.PriorityP2: types.ActionEmail,
				types.PriorityP3: types.ActionEmail,
			},
			types.IntentJob: {
				types.PriorityP0: types.ActionEmail,
				types.PriorityP1: types.ActionEmail,
				types.PriorityP2: types.ActionEmail,
				types.PriorityP3: types.ActionIgnore,
			},
			types.IntentSpam: {
				types.PriorityP0: types.ActionIgnore,
				types.PriorityP1: types.ActionIgnore,
				types.PriorityP2: types.ActionIgnore,
				types.PriorityP3: types.ActionIgnore,
			},
			types.IntentOther: {
				types.PriorityP0: types.ActionQualify,
				types.PriorityP1: types.ActionQualify,
				types.PriorityP2: types.ActionQualify,
				types.PriorityP3: types.ActionIgnore,
			},
		},
		Tags: []TagRule{
			{Tag: "urgent", Keywords: []string{"срочно", "urgent", "asap"}},
			{Tag: "enterprise", Keywords: []string{"предприятие", "бизнес", "enterprise"}},
			{Tag: "trial", Keywords: []string{"пробный", "trial", "демо"}},
		},
	}
}

// LoadRules reads a rule set from a YAML file and validates it.
func LoadRules(path string) (*RuleSet, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read rules file: %w", err)
	}

	var rules RuleSet
	if err := yaml.Unmarshal(raw, &rules); err != nil {
		return nil, fmt.Errorf("failed to parse rules file: %w", err)
	}
	if err := rules.Validate(); err != nil {
		return nil, err
	}
	return &rules, nil
}

// Validate checks enum references and keyword lists. Matching is
// case insensitive, so keywords are normalized to lower case here.
func (r *RuleSet) Validate() error {
	if len(r.Intents) == 0 {
		return fmt.Errorf("rules define no intents")
	}

	for i := range r.Intents {
		rule := &r.Intents[i]
		if !rule.Intent.Valid() {
			return fmt.Errorf("invalid intent %q", rule.Intent)
		}
		if len(rule.Keywords) == 0 {
			return fmt.Errorf("intent %q has no keywords", rule.Intent)
		}
		lowerKeywords(rule.Keywords)
	}

	for i := range r.Priorities {
		rule := &r.Priorities[i]
		if !rule.Priority.Valid() {
			return fmt.Errorf("invalid priority %q", rule.Priority)
		}
		if len(rule.Keywords) == 0 {
			return fmt.Errorf("priority %q has no keywords", rule.Priority)
		}
		lowerKeywords(rule.Keywords)
	}

	for intent, priority := range r.Defaults {
		if !intent.Valid() || !priority.Valid() {
			return fmt.Errorf("invalid default priority %q for intent %q", priority, intent)
		}
	}
	if _, ok := r.Defaults[types.IntentOther]; !ok {
		return fmt.Errorf("rules define no default priority for intent %q", types.IntentOther)
	}

	for intent, byPriority := range r.Actions {
		if !intent.Valid() {
			return fmt.Errorf("invalid intent %q in actions", intent)
		}
		for priority, action := range byPriority {
			if !priority.Valid() {
				return fmt.Errorf("invalid priority %q in actions for intent %q", priority, intent)
			}
			if !action.Valid() {
				return fmt.Errorf("invalid action %q for intent %q priority %q", action, intent, priority)
			}
		}
	}

	for i := range r.Tags {
		rule := &r.Tags[i]
		if rule.Tag == "" {
			return fmt.Errorf("tag rule %d has no tag", i)
		}
		if len(rule.Keywords) == 0 {
			return fmt.Errorf("tag %q has no keywords", rule.Tag)
		}
		lowerKeywords(rule.Keywords)
	}

	return nil
}

func lowerKeywords(keywords []string) {
	for i, kw := range keywords {
		keywords[i] = strings.ToLower(kw)
	}
}
