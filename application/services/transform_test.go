package services

import (
	"encoding/json"
	"fmt"
	"testing"
	"time"

	"casegraph/application/ports"
	"casegraph/application/ports/portstest"
	"casegraph/domain/casenet"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func assertStatsConsistent(t *testing.T, g casenet.GraphData) {
	t.Helper()
	assert.Equal(t, len(g.Nodes), g.Stats.NodeCount)
	assert.Equal(t, len(g.Links), g.Stats.LinkCount)
	assert.Equal(t, casenet.PlaceholderClusterCount, g.Stats.ClusterCount)

	withRisk := 0
	for _, n := range g.Nodes {
		if _, ok := n.Risk(); ok {
			withRisk++
		}
	}
	// Employees and merchants carry no risk and are left out of the sum
	assert.Equal(t, withRisk, g.Stats.RiskDistribution.Total())
}

func incomingLinks(g casenet.GraphData, target string, kind casenet.LinkType) []casenet.GraphEdge {
	var out []casenet.GraphEdge
	for _, l := range g.LinksOfType(kind) {
		if l.Target == target {
			out = append(out, l)
		}
	}
	return out
}

func TestTransformCaseNetwork_EmptyInput(t *testing.T) {
	want := `{"nodes":[],"links":[],"stats":{"nodeCount":0,"linkCount":0,"clusterCount":1,` +
		`"riskDistribution":{"critical":0,"high":0,"medium":0,"low":0}}}`

	for name, raw := range map[string]*ports.RawCaseNetwork{
		"nil":   nil,
		"empty": {},
	} {
		t.Run(name, func(t *testing.T) {
			g := TransformCaseNetwork(raw)

			data, err := json.Marshal(g)
			require.NoError(t, err)
			assert.JSONEq(t, want, string(data))
		})
	}
}

func TestTransformCaseNetwork_EndToEnd(t *testing.T) {
	// Arrange
	raw := portstest.NewNetwork("C-100", "HIGH").
		WithTransaction("T-1", 1200000, portstest.BaseTime).
		WithEmployee("E-1", "Kim Minji").
		WithMerchant("M-1").
		WithRelated("T-2", 1150000, portstest.BaseTime.Add(5*time.Hour), "M-1", 5, 4, 91).
		Build()

	// Act
	g := TransformCaseNetwork(raw)

	// Assert
	require.Len(t, g.Nodes, 5)
	ids := make([]string, len(g.Nodes))
	for i, n := range g.Nodes {
		ids[i] = n.ID
	}
	assert.ElementsMatch(t, []string{
		"case:C-100", "transaction:T-1", "employee:E-1", "merchant:M-1", "transaction:T-2",
	}, ids)

	t1, ok := g.Node("transaction:T-1")
	require.True(t, ok)
	risk, _ := t1.Risk()
	assert.Equal(t, casenet.RiskCritical, risk)

	t2, ok := g.Node("transaction:T-2")
	require.True(t, ok)
	risk, _ = t2.Risk()
	assert.Equal(t, casenet.RiskCritical, risk)

	atMerchant := incomingLinks(g, "merchant:M-1", casenet.LinkAtMerchant)
	require.Len(t, atMerchant, 2)
	assert.ElementsMatch(t, []string{"transaction:T-1", "transaction:T-2"},
		[]string{atMerchant[0].Source, atMerchant[1].Source})

	assert.Equal(t, 2, g.Stats.RiskDistribution.Critical)
	assert.Equal(t, 1, g.Stats.RiskDistribution.High)
	assertStatsConsistent(t, g)
}

func TestTransformCaseNetwork_NodeStyling(t *testing.T) {
	raw := portstest.NewNetwork("C-100", "critical").
		WithTransaction("T-1", 250000, portstest.BaseTime).
		WithEmployee("E-1", "Kim Minji").
		WithMerchant("M-1").
		WithRelated("T-2", 240000, portstest.BaseTime.Add(2*time.Hour), "M-2", 2, 4, 94).
		Build()

	g := TransformCaseNetwork(raw)

	c, ok := g.Node("case:C-100")
	require.True(t, ok)
	risk, _ := c.Risk()
	assert.Equal(t, casenet.RiskCritical, risk)
	assert.Equal(t, casenet.CaseColor, c.Color)
	assert.Equal(t, casenet.CaseNodeSize, c.Size)
	assert.Equal(t, "C-100", c.Label)

	tx, _ := g.Node("transaction:T-1")
	assert.Equal(t, "₩250,000", tx.Label)
	assert.Equal(t, casenet.TransactionSize(250000), tx.Size)
	assert.Equal(t, casenet.NodeColor(casenet.NodeTransaction, casenet.RiskMedium), tx.Color)

	emp, _ := g.Node("employee:E-1")
	_, hasRisk := emp.Risk()
	assert.False(t, hasRisk)
	assert.Equal(t, "Kim Minji", emp.Label)
	assert.Equal(t, "Sales", emp.Department)
	assert.Equal(t, casenet.EmployeeNodeSize, emp.Size)

	primary, _ := g.Node("merchant:M-1")
	assert.Equal(t, casenet.MerchantNodeSize, primary.Size)
	group, _ := primary.Metadata[MetaMCCRiskGroup].AsString()
	assert.Equal(t, "HIGH", group)

	related, _ := g.Node("merchant:M-2")
	assert.Equal(t, casenet.RelatedMerchantNodeSize, related.Size)
	assert.Equal(t, casenet.NodeColor(casenet.NodeMerchant, casenet.RiskLow), related.Color)

	relTx, _ := g.Node("transaction:T-2")
	score, _ := relTx.Metadata[MetaSimilarityScore].AsNumber()
	assert.Equal(t, 94.0, score)

	for _, l := range g.Links {
		if l.Source == "transaction:T-2" || l.Target == "transaction:T-2" {
			assert.Equal(t, casenet.RelatedLinkWidth, l.Width, l.Key())
		} else {
			assert.Equal(t, casenet.PrimaryLinkWidth, l.Width, l.Key())
		}
		assert.NotNil(t, l.Metadata)
	}
}

func TestTransformCaseNetwork_SharedMerchantCollapses(t *testing.T) {
	// Arrange: N related transactions at the primary merchant
	const n = 4
	b := portstest.NewNetwork("C-7", "MEDIUM").
		WithTransaction("T-0", 80000, portstest.BaseTime).
		WithEmployee("E-1", "Kim Minji").
		WithMerchant("Shared Bar")
	for i := 1; i <= n; i++ {
		b.WithRelated(fmt.Sprintf("T-%d", i), 80000, portstest.BaseTime.Add(time.Duration(i)*time.Hour), "Shared Bar", i, 0, 100-i)
	}

	// Act
	g := TransformCaseNetwork(b.Build())

	// Assert
	merchants := g.NodesOfType(casenet.NodeMerchant)
	require.Len(t, merchants, 1)
	assert.Equal(t, "merchant:Shared Bar", merchants[0].ID)
	assert.Len(t, incomingLinks(g, "merchant:Shared Bar", casenet.LinkAtMerchant), n+1)
	assertStatsConsistent(t, g)
}

func TestTransformCaseNetwork_DistinctMerchantsWithSameNameCollapse(t *testing.T) {
	raw := portstest.NewNetwork("C-8", "LOW").
		WithTransaction("T-1", 5000, portstest.BaseTime).
		WithEmployee("E-1", "Kim Minji").
		WithMerchant("Starlight").
		WithRelated("T-2", 5000, portstest.BaseTime.Add(time.Hour), "Starlight", 1, 0, 99).
		Build()
	raw.Related[0].Merchant.Properties[ports.PropCity] = "Busan"

	g := TransformCaseNetwork(raw)

	// Known limitation: merchants are keyed by display name
	merchants := g.NodesOfType(casenet.NodeMerchant)
	require.Len(t, merchants, 1)
	city, _ := merchants[0].Metadata[MetaCity].AsString()
	assert.Equal(t, "Seoul", city)
}

func TestTransformCaseNetwork_DeduplicatesRelatedTransactions(t *testing.T) {
	raw := portstest.NewNetwork("C-9", "LOW").
		WithTransaction("T-1", 5000, portstest.BaseTime).
		WithEmployee("E-1", "Kim Minji").
		WithRelated("T-2", 5000, portstest.BaseTime.Add(time.Hour), "A", 1, 0, 99).
		WithRelated("T-2", 5000, portstest.BaseTime.Add(time.Hour), "A", 1, 0, 99).
		WithRelated("T-1", 5000, portstest.BaseTime, "A", 0, 0, 100).
		Build()

	g := TransformCaseNetwork(raw)

	assert.Len(t, g.NodesOfType(casenet.NodeTransaction), 2)
	assert.Len(t, g.LinksOfType(casenet.LinkMadeTransaction), 2)
	seen := map[string]bool{}
	for _, n := range g.Nodes {
		assert.False(t, seen[n.ID], "duplicate node %s", n.ID)
		seen[n.ID] = true
	}
	assertStatsConsistent(t, g)
}

func TestTransformCaseNetwork_CaseWithoutTransaction(t *testing.T) {
	raw := portstest.NewNetwork("C-10", "MEDIUM").Build()

	g := TransformCaseNetwork(raw)

	require.Len(t, g.Nodes, 1)
	assert.Empty(t, g.Links)
	assert.Equal(t, 1, g.Stats.RiskDistribution.Medium)
}

func TestTransformCaseNetwork_RelatedNeedsEmployee(t *testing.T) {
	raw := portstest.NewNetwork("C-11", "LOW").
		WithTransaction("T-1", 5000, portstest.BaseTime).
		WithRelated("T-2", 5000, portstest.BaseTime.Add(time.Hour), "A", 1, 0, 99).
		Build()

	g := TransformCaseNetwork(raw)

	_, ok := g.Node("transaction:T-2")
	assert.False(t, ok)
	assertStatsConsistent(t, g)
}

func TestTransformCaseNetwork_MalformedRecordsAreSkipped(t *testing.T) {
	// Arrange
	raw := portstest.NewNetwork("C-12", "HIGH").
		WithTransaction("T-1", 5000, portstest.BaseTime).
		WithEmployee("E-1", "Kim Minji").
		WithMerchant("M-1").
		WithRelated("", 5000, portstest.BaseTime.Add(time.Hour), "M-2", 1, 0, 99).
		Build()
	delete(raw.Merchant.Properties, ports.PropName)
	raw.Related = append(raw.Related, ports.RelatedTransaction{})

	// Act
	g, report := TransformCaseNetworkWithReport(raw)

	// Assert
	assert.Empty(t, g.NodesOfType(casenet.NodeMerchant))
	assert.Empty(t, g.LinksOfType(casenet.LinkAtMerchant))
	assert.Len(t, g.Nodes, 3)
	assert.Len(t, report.Skipped, 2)
	assertStatsConsistent(t, g)
}

func TestTransformCaseNetwork_UncoercibleAmountDisplaysAsZero(t *testing.T) {
	raw := portstest.NewNetwork("C-13", "LOW").
		WithTransaction("T-1", 0, portstest.BaseTime).
		Build()
	raw.Transaction.Properties[ports.PropAmount] = map[string]any{"low": 1}

	g := TransformCaseNetwork(raw)

	tx, ok := g.Node("transaction:T-1")
	require.True(t, ok)
	assert.Equal(t, "₩0", tx.Label)
	assert.Equal(t, casenet.TransactionNodeSize, tx.Size)
	risk, _ := tx.Risk()
	assert.Equal(t, casenet.RiskLow, risk)
}

func TestTransformCaseNetwork_IsDeterministic(t *testing.T) {
	raw := portstest.NewNetwork("C-100", "HIGH").
		WithTransaction("T-1", 1200000, portstest.BaseTime).
		WithEmployee("E-1", "Kim Minji").
		WithMerchant("M-1").
		WithRelated("T-2", 1150000, portstest.BaseTime.Add(5*time.Hour), "M-1", 5, 4, 91).
		WithRelated("T-3", 1100000, portstest.BaseTime.Add(7*time.Hour), "M-3", 7, 8, 85).
		Build()

	first, err := json.Marshal(TransformCaseNetwork(raw))
	require.NoError(t, err)
	second, err := json.Marshal(TransformCaseNetwork(raw))
	require.NoError(t, err)

	assert.Equal(t, string(first), string(second))
}

func TestTransformCaseNetwork_DetectionReason(t *testing.T) {
	tests := []struct {
		name  string
		value any
		want  string
	}{
		{"json document", `{"reason":"Split payment","rules":["R-1"]}`, "Split payment"},
		{"decoded map", map[string]any{"reason": "Weekend spend"}, "Weekend spend"},
		{"plain text", "Manual referral", "Manual referral"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			raw := portstest.NewNetwork("C-14", "LOW").Build()
			raw.Case.Properties[ports.PropDetectionReasoning] = tt.value

			g := TransformCaseNetwork(raw)

			c, _ := g.Node("case:C-14")
			reason, ok := c.Metadata[MetaDetectionReason].AsString()
			require.True(t, ok)
			assert.Equal(t, tt.want, reason)
		})
	}
}

func TestTransformEmployeeNetwork(t *testing.T) {
	// Arrange
	raw := &ports.RawEmployeeNetwork{
		Employee: portstest.Employee("E-1", "Kim Minji"),
		Transactions: []ports.EmployeeTransaction{
			{
				Transaction: portstest.Transaction("T-1", 600000, portstest.BaseTime),
				Merchant:    portstest.Merchant("M-1"),
				MCC:         portstest.MCC("5813", "HIGH"),
				Cases:       []*ports.Entity{portstest.Case("C-1", "HIGH"), portstest.Case("C-2", "LOW")},
			},
			{
				Transaction: portstest.Transaction("T-2", 3000, portstest.BaseTime.Add(-time.Hour)),
				Merchant:    portstest.Merchant("M-1"),
				Cases:       []*ports.Entity{portstest.Case("C-1", "HIGH")},
			},
			{Transaction: nil},
		},
	}

	// Act
	g := TransformEmployeeNetwork(raw)

	// Assert
	assert.Len(t, g.NodesOfType(casenet.NodeEmployee), 1)
	assert.Len(t, g.NodesOfType(casenet.NodeTransaction), 2)
	assert.Len(t, g.NodesOfType(casenet.NodeMerchant), 1)
	assert.Len(t, g.NodesOfType(casenet.NodeCase), 2)
	assert.Len(t, g.LinksOfType(casenet.LinkMadeTransaction), 2)
	assert.Len(t, g.LinksOfType(casenet.LinkAtMerchant), 2)
	assert.Len(t, g.LinksOfType(casenet.LinkInvolvesTransaction), 3)
	assert.Equal(t, 2, g.Stats.RiskDistribution.High)
	assert.Equal(t, 2, g.Stats.RiskDistribution.Low)
	assertStatsConsistent(t, g)

	empty := TransformEmployeeNetwork(nil)
	assert.True(t, empty.IsEmpty())
}
