package casenet

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ptr(f float64) *float64 { return &f }

func TestEmptyGraph(t *testing.T) {
	g := EmptyGraph()

	data, err := json.Marshal(g)
	require.NoError(t, err)

	assert.JSONEq(t, `{
		"nodes": [],
		"links": [],
		"stats": {
			"nodeCount": 0,
			"linkCount": 0,
			"clusterCount": 1,
			"riskDistribution": {"critical": 0, "high": 0, "medium": 0, "low": 0}
		}
	}`, string(data))
}

func TestComputeStats_ExcludesNodesWithoutRisk(t *testing.T) {
	nodes := []GraphNode{
		{ID: "case:C-1", Type: NodeCase, Severity: "CRITICAL"},
		{ID: "transaction:T-1", Type: NodeTransaction, Amount: ptr(150_000)},
		{ID: "employee:E-1", Type: NodeEmployee},
		{ID: "merchant:Cafe", Type: NodeMerchant},
	}
	links := []GraphEdge{{Source: "case:C-1", Target: "transaction:T-1", Type: LinkInvolvesTransaction}}

	stats := ComputeStats(nodes, links)

	assert.Equal(t, 4, stats.NodeCount)
	assert.Equal(t, 1, stats.LinkCount)
	assert.Equal(t, 1, stats.ClusterCount)
	assert.Equal(t, 1, stats.RiskDistribution.Critical)
	assert.Equal(t, 1, stats.RiskDistribution.Medium)
	// Employees and merchants carry no risk, so the distribution covers two of four nodes.
	assert.Equal(t, 2, stats.RiskDistribution.Total())
}

func TestGraphNode_JSONShape(t *testing.T) {
	node := GraphNode{
		ID:       "transaction:T-1",
		Label:    "₩1,200,000",
		Type:     NodeTransaction,
		Amount:   ptr(1_200_000),
		Color:    "#ef4444",
		Size:     20.8,
		Metadata: Metadata{"category": StringValue("travel")},
	}

	data, err := json.Marshal(node)
	require.NoError(t, err)

	assert.JSONEq(t, `{
		"id": "transaction:T-1",
		"label": "₩1,200,000",
		"type": "transaction",
		"risk": "critical",
		"amount": 1200000,
		"color": "#ef4444",
		"size": 20.8,
		"metadata": {"category": "travel"}
	}`, string(data))
}

func TestGraphNode_DecodeRestoresCaseRisk(t *testing.T) {
	var node GraphNode
	require.NoError(t, json.Unmarshal([]byte(`{"id":"case:C-1","label":"C-1","type":"case","risk":"high"}`), &node))

	risk, ok := node.Risk()
	assert.True(t, ok)
	assert.Equal(t, RiskHigh, risk)
	assert.Equal(t, "HIGH", node.Severity)
}

func TestGraphEdge_Key(t *testing.T) {
	e := GraphEdge{Source: "a", Target: "b", Type: LinkAtMerchant}
	assert.Equal(t, "a-b", e.Key())
	assert.True(t, e.Touches("a"))
	assert.False(t, e.Touches("c"))
}
