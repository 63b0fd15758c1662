// Package classifier turns free text lead notes into structured
// triage classifications: an intent, a priority, a recommended next
// action, a confidence score, and descriptive tags.
//
// The package defines the Classifier interface consumed by the
// triage worker and ships one production adapter, the rule based
// keyword classifier. Adapters are selected by name at startup; an
// unknown name fails fast instead of degrading silently, so a typo
// in configuration cannot swap the classifier out from under the
// pipeline.
//
// # Decision Flow
//
//	note text (lowercased)
//	   │
//	   ▼
//	intents, in order ──── first vocabulary hit ────▶ intent
//	buy → support → job → spam        (none)  ────▶ other
//	   │
//	   ▼
//	priorities, in order ─ first vocabulary hit ───▶ priority
//	P0 → P1 → P3                      (none)  ────▶ default for intent
//	   │
//	   ▼
//	action table (intent, priority) ───────────────▶ next action
//	   │
//	   ▼
//	tag rules, all evaluated ──────────────────────▶ tags
//
// Evaluation order is part of the contract. A note that mentions
// both a purchase and a link is a lead with a link, not spam,
// because the buy vocabulary is checked first. Likewise "не
// работает" resolves to support before the job vocabulary can see
// its "работа" stem.
//
// Matching is case insensitive substring containment, which keeps
// the classifier deterministic and tolerant of inflected forms that
// contain a keyword ("pricing" matches "price") at the cost of no
// stemming for forms that do not.
//
// # Confidence
//
// A note that matches no intent vocabulary scores 0.3. Otherwise the
// score is 0.3 plus 0.2 per matched keyword of the winning intent,
// capped at 0.9. The cap keeps rule based output below certainty; a
// future model backed adapter owns the range above it.
//
// # Rule Sets
//
// DefaultRules returns the built-in bilingual (Russian and English)
// vocabulary. Deployments can replace it with a YAML file:
//
//	intents:
//	  - intent: buy
//	    keywords: [price, cost, buy]
//	  - intent: support
//	    keywords: [bug, help]
//	priorities:
//	  - priority: P0
//	    keywords: [urgent, asap]
//	default_priorities:
//	  buy: P1
//	  support: P2
//	  other: P2
//	actions:
//	  buy:
//	    P0: call
//	    P1: email
//	tags:
//	  - tag: urgent
//	    keywords: [urgent, asap]
//
// Loaded rules are validated against the enum sets and normalized to
// lower case before use. Missing action cells fall back to qualify.
//
// # Usage
//
//	c, err := classifier.New(cfg.Adapter, cfg.RulesPath)
//	if err != nil {
//		return err
//	}
//
//	result, err := c.Triage(ctx, lead.Note)
//
// # Integration Points
//
//   - pkg/worker: calls Triage for every consumed lead event
//   - pkg/types: Classification and the enum sets validated against
//   - pkg/config: LLM_ADAPTER and RULES_PATH select and override
package classifier
