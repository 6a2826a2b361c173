package triage

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/spec-kit/support-case-service/internal/domain"
)

func TestKeywordClassifierTier(t *testing.T) {
	classifier := NewKeywordClassifier()

	tests := []struct {
		name    string
		excerpt string
		want    domain.RiskTier
	}{
		{name: "suicide marker", excerpt: "I have been thinking about suicide", want: domain.RiskTierCritical},
		{name: "kill myself marker", excerpt: "sometimes I want to kill myself", want: domain.RiskTierCritical},
		{name: "case insensitive", excerpt: "SUICIDE came up in the chat", want: domain.RiskTierCritical},
		{name: "critical wins over elevated", excerpt: "self-harm and suicide both mentioned", want: domain.RiskTierCritical},
		{name: "self-harm marker", excerpt: "worried about Self-Harm", want: domain.RiskTierElevated},
		{name: "harm marker", excerpt: "afraid I might harm someone", want: domain.RiskTierElevated},
		{name: "neutral text", excerpt: "stressed about exams and sleep", want: domain.RiskTierLow},
		{name: "empty excerpt", excerpt: "", want: domain.RiskTierLow},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			require.Equal(t, tc.want, classifier.Tier(tc.excerpt))
		})
	}
}
