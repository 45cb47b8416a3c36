package memory

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"casegraph/application/ports"
	"casegraph/application/services"
	pkgerrors "casegraph/pkg/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const fixtureYAML = `
cases:
  - case_id: C-100
    severity: CRITICAL
    transaction_id: T-1
  - case_id: C-200
    severity: LOW
transactions:
  - {id: T-1, amount: 1200000, transacted_at: "2024-03-15T09:00:00Z", employee_id: E-1, merchant: M-1}
  - {id: T-2, amount: 1150000, transacted_at: "2024-03-15T14:00:00Z", employee_id: E-1, merchant: M-1}
  - {id: T-3, amount: 1190000, transacted_at: "2024-03-17T09:00:00Z", employee_id: E-1, merchant: M-1}
employees:
  - {id: E-1, name: Kim Minjun, department: Sales}
merchants:
  - {name: M-1, city: Seoul, mcc: "5813"}
mccs:
  - {code: "5813", risk_group: HIGH}
`

func writeFixture(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func newTestRepository(t *testing.T) *Repository {
	t.Helper()
	repo, err := NewFileRepository(writeFixture(t, "fixture.yaml", fixtureYAML), zap.NewNop())
	require.NoError(t, err)
	return repo
}

func TestFetchCaseNetwork(t *testing.T) {
	repo := newTestRepository(t)

	network, err := repo.FetchCaseNetwork(context.Background(), "C-100")

	require.NoError(t, err)
	assert.Equal(t, "T-1", network.Transaction.StringProp(ports.PropID))
	assert.Equal(t, "E-1", network.Employee.StringProp(ports.PropID))
	assert.Equal(t, "M-1", network.Merchant.StringProp(ports.PropName))
	assert.Equal(t, "HIGH", network.MCC.StringProp(ports.PropRiskGroup))
	assert.Nil(t, network.Case.Prop(linkTransactionID), "link fields are not entity properties")
}

func TestFetchCaseNetwork_CaseWithoutTransaction(t *testing.T) {
	repo := newTestRepository(t)

	network, err := repo.FetchCaseNetwork(context.Background(), "C-200")

	require.NoError(t, err)
	assert.NotNil(t, network.Case)
	assert.Nil(t, network.Transaction)
	assert.Nil(t, network.Employee)
}

func TestFetchCaseNetwork_NotFound(t *testing.T) {
	repo := newTestRepository(t)

	_, err := repo.FetchCaseNetwork(context.Background(), "C-404")

	assert.True(t, pkgerrors.IsNotFound(err))
}

func TestFindEmployeeTransactions_WindowAndExclusion(t *testing.T) {
	repo := newTestRepository(t)
	ref := time.Date(2024, 3, 15, 9, 0, 0, 0, time.UTC)

	candidates, err := repo.FindEmployeeTransactions(context.Background(), "E-1", "T-1", ref.Add(-24*time.Hour), ref.Add(24*time.Hour))

	require.NoError(t, err)
	require.Len(t, candidates, 1)
	assert.Equal(t, "T-2", candidates[0].Transaction.StringProp(ports.PropID))
	assert.Equal(t, "M-1", candidates[0].Merchant.StringProp(ports.PropName))
}

func TestFetchEmployeeNetwork(t *testing.T) {
	repo := newTestRepository(t)

	network, err := repo.FetchEmployeeNetwork(context.Background(), "E-1", 2)

	require.NoError(t, err)
	require.Len(t, network.Transactions, 2)
	assert.Equal(t, "T-3", network.Transactions[0].Transaction.StringProp(ports.PropID), "most recent first")
	assert.Equal(t, "T-2", network.Transactions[1].Transaction.StringProp(ports.PropID))

	_, err = repo.FetchEmployeeNetwork(context.Background(), "E-404", 2)
	assert.True(t, pkgerrors.IsNotFound(err))
}

func TestReturnedEntitiesAreCopies(t *testing.T) {
	repo := newTestRepository(t)
	first, err := repo.FetchCaseNetwork(context.Background(), "C-100")
	require.NoError(t, err)

	first.Transaction.Properties[ports.PropAmount] = 1

	second, err := repo.FetchCaseNetwork(context.Background(), "C-100")
	require.NoError(t, err)
	assert.Equal(t, 1200000, second.Transaction.Prop(ports.PropAmount))
}

func TestReload(t *testing.T) {
	// Arrange
	path := writeFixture(t, "fixture.yaml", fixtureYAML)
	repo, err := NewFileRepository(path, zap.NewNop())
	require.NoError(t, err)

	// Act
	require.NoError(t, os.WriteFile(path, []byte("cases:\n  - case_id: C-300\n"), 0o600))
	require.NoError(t, repo.Reload())

	// Assert
	_, err = repo.FetchCaseNetwork(context.Background(), "C-100")
	assert.True(t, pkgerrors.IsNotFound(err))
	_, err = repo.FetchCaseNetwork(context.Background(), "C-300")
	assert.NoError(t, err)
}

func TestReload_KeepsPreviousDataOnError(t *testing.T) {
	path := writeFixture(t, "fixture.yaml", fixtureYAML)
	repo, err := NewFileRepository(path, zap.NewNop())
	require.NoError(t, err)

	require.NoError(t, os.WriteFile(path, []byte("cases:\n  - severity: LOW\n"), 0o600))

	assert.Error(t, repo.Reload())
	_, err = repo.FetchCaseNetwork(context.Background(), "C-100")
	assert.NoError(t, err)
}

func TestLoadFixture_JSON(t *testing.T) {
	path := writeFixture(t, "fixture.json", `{
		"cases": [{"case_id": "C-1", "transaction_id": "T-1"}],
		"transactions": [{"id": "T-1", "amount": 250000, "transacted_at": "2024-03-15T09:00:00Z"}]
	}`)
	repo, err := NewFileRepository(path, zap.NewNop())
	require.NoError(t, err)

	network, err := repo.FetchCaseNetwork(context.Background(), "C-1")

	require.NoError(t, err)
	graph := services.TransformCaseNetwork(network)
	require.Len(t, graph.Nodes, 2)
	assert.Equal(t, 1, graph.Stats.RiskDistribution.Medium)
}

func TestDemoFixture_CaseNetworkScenario(t *testing.T) {
	// Arrange
	repo, err := NewFileRepository(filepath.Join("..", "..", "..", "fixtures", "demo.yaml"), zap.NewNop())
	require.NoError(t, err)
	scorer := services.NewSimilarityScorer(repo, nil, zap.NewNop())

	network, err := repo.FetchCaseNetwork(context.Background(), "C-100")
	require.NoError(t, err)
	ref, ok := services.ReferenceFromNetwork(network)
	require.True(t, ok)

	// Act
	related, err := scorer.FindRelated(context.Background(), ref)
	require.NoError(t, err)
	network.Related = related
	graph := services.TransformCaseNetwork(network)

	// Assert
	require.Len(t, related, 1)
	assert.Equal(t, 5, related[0].HoursDiff)
	assert.Equal(t, 5, graph.Stats.NodeCount)
	assert.Equal(t, 2, graph.Stats.RiskDistribution.Critical)
}
