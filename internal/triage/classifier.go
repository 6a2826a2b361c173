package triage

import (
	"strings"

	"github.com/spec-kit/support-case-service/internal/domain"
)

// Classifier maps flagged-content context to a risk tier. Implementations
// must be pure and deterministic; the tier is assigned once at case creation
// and never revised automatically.
type Classifier interface {
	Tier(contextExcerpt string) domain.RiskTier
}

// KeywordClassifier is the default coarse heuristic: marker phrases for
// active self-harm intent escalate to tier 3, self-harm-adjacent language to
// tier 2, everything else stays at tier 1. A smarter classifier can replace
// it behind the same interface.
type KeywordClassifier struct {
	criticalMarkers []string
	elevatedMarkers []string
}

// NewKeywordClassifier builds the default policy.
func NewKeywordClassifier() *KeywordClassifier {
	return &KeywordClassifier{
		criticalMarkers: []string{"suicide", "kill myself"},
		elevatedMarkers: []string{"self-harm", "harm"},
	}
}

// Tier classifies the excerpt. Matching is case-insensitive; an empty excerpt
// is tier 1.
func (c *KeywordClassifier) Tier(contextExcerpt string) domain.RiskTier {
	text := strings.ToLower(contextExcerpt)
	for _, marker := range c.criticalMarkers {
		if strings.Contains(text, marker) {
			return domain.RiskTierCritical
		}
	}
	for _, marker := range c.elevatedMarkers {
		if strings.Contains(text, marker) {
			return domain.RiskTierElevated
		}
	}
	return domain.RiskTierLow
}
