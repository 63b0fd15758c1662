package classifier

import (
	"context"
	"fmt"

	"github.com/siftlabs/sift/pkg/types"
)

// Adapter names accepted by New.
const (
	AdapterRuleBased = "rule_based"
)

// Classifier derives a triage classification from the free text note
// of a lead. Implementations must be deterministic for a given note
// and safe for concurrent use.
type Classifier interface {
	// Triage classifies a note. The note is used as submitted;
	// implementations handle casing and normalization themselves.
	Triage(ctx context.Context, note string) (types.Classification, error)

	// Name identifies the adapter, for logs and metrics labels.
	Name() string
}

// New builds the classifier selected by adapter name. An unknown
// name is a configuration error and fails startup rather than
// silently falling back. For the rule based adapter, rulesPath
// optionally replaces the built-in rule set with a YAML file.
func New(adapter, rulesPath string) (Classifier, error) {
	switch adapter {
	case AdapterRuleBased:
		rules := DefaultRules()
		if rulesPath != "" {
			loaded, err := LoadRules(rulesPath)
			if err != nil {
				return nil, fmt.Errorf("failed to load rules from %s: %w", rulesPath, err)
			}
			rules = loaded
		}
		return NewRuleBased(rules), nil
	default:
		return nil, fmt.Errorf("unknown classifier adapter %q", adapter)
	}
}
