package casenet

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRiskFromAmount_Thresholds(t *testing.T) {
	cases := []struct {
		amount float64
		want   RiskLevel
	}{
		{999_999, RiskHigh},
		{1_000_000, RiskCritical},
		{1_200_000, RiskCritical},
		{500_000, RiskHigh},
		{499_999, RiskMedium},
		{100_000, RiskMedium},
		{99_999, RiskLow},
		{0, RiskLow},
		{-5, RiskLow},
	}

	for _, tc := range cases {
		assert.Equal(t, tc.want, RiskFromAmount(tc.amount), "amount %v", tc.amount)
	}
}

func TestRiskFromSeverity_CaseInsensitive(t *testing.T) {
	assert.Equal(t, RiskCritical, RiskFromSeverity("CRITICAL"))
	assert.Equal(t, RiskCritical, RiskFromSeverity("critical"))
	assert.Equal(t, RiskHigh, RiskFromSeverity(" High "))
	assert.Equal(t, RiskMedium, RiskFromSeverity("medium"))
	assert.Equal(t, RiskLow, RiskFromSeverity("LOW"))
	assert.Equal(t, RiskLow, RiskFromSeverity(""))
	assert.Equal(t, RiskLow, RiskFromSeverity("unknown"))
}

func TestParseRiskLevel(t *testing.T) {
	level, ok := ParseRiskLevel("Critical")
	assert.True(t, ok)
	assert.Equal(t, RiskCritical, level)

	_, ok = ParseRiskLevel("severe")
	assert.False(t, ok)
}

func TestGraphNode_RiskIsDerived(t *testing.T) {
	amount := 600_000.0
	tx := GraphNode{ID: "transaction:T-1", Type: NodeTransaction, Amount: &amount}

	risk, ok := tx.Risk()
	assert.True(t, ok)
	assert.Equal(t, RiskHigh, risk)

	// Changing the input changes the answer; nothing is cached.
	amount = 1_000_000
	risk, _ = tx.Risk()
	assert.Equal(t, RiskCritical, risk)

	_, ok = GraphNode{Type: NodeEmployee}.Risk()
	assert.False(t, ok)
	_, ok = GraphNode{Type: NodeMerchant}.Risk()
	assert.False(t, ok)

	risk, ok = GraphNode{Type: NodeCase, Severity: "high"}.Risk()
	assert.True(t, ok)
	assert.Equal(t, RiskHigh, risk)
}
