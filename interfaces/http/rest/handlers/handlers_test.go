package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"casegraph/application/queries"
	querybus "casegraph/application/queries/bus"
	"casegraph/domain/casenet"
	pkgerrors "casegraph/pkg/errors"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func sampleGraph() *casenet.GraphData {
	amount := 1200000.0
	nodes := []casenet.GraphNode{
		{ID: "case:C-100", Label: "Case C-100", Type: casenet.NodeCase, Severity: "HIGH"},
		{ID: "transaction:T-1", Label: "T-1", Type: casenet.NodeTransaction, Amount: &amount},
	}
	links := []casenet.GraphEdge{
		{Source: "case:C-100", Target: "transaction:T-1", Type: casenet.LinkInvolvesTransaction},
	}
	return &casenet.GraphData{Nodes: nodes, Links: links, Stats: casenet.ComputeStats(nodes, links)}
}

// graphRouter mounts a GraphHandler on a bus whose handlers are replaced
// with the given functions.
func graphRouter(t *testing.T, handlers map[querybus.Query]querybus.QueryHandlerFunc) http.Handler {
	t.Helper()

	bus := querybus.NewQueryBus()
	for q, h := range handlers {
		require.NoError(t, bus.Register(q, h))
	}

	h := NewGraphHandler(bus, pkgerrors.NewErrorHandler(zap.NewNop(), false), zap.NewNop())
	r := chi.NewRouter()
	r.Get("/api/graph/case/{caseId}", h.GetCaseNetwork)
	r.Get("/api/graph/case/{caseId}/view", h.ViewCaseNetwork)
	r.Get("/api/graph/case/{caseId}/svg", h.GetCaseNetworkSVG)
	r.Get("/api/graph/employee/{employeeId}", h.GetEmployeeNetwork)
	r.Get("/api/cases/{caseId}/related", h.GetRelatedTransactions)
	return r
}

func caseNetworkReturning(graph *casenet.GraphData, err error) map[querybus.Query]querybus.QueryHandlerFunc {
	return map[querybus.Query]querybus.QueryHandlerFunc{
		queries.GetCaseNetworkQuery{}: func(ctx context.Context, q querybus.Query) (interface{}, error) {
			if err != nil {
				return nil, err
			}
			return graph, nil
		},
	}
}

func serve(h http.Handler, path string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
	return rec
}

func TestGetCaseNetwork_Success(t *testing.T) {
	// Arrange
	var asked queries.GetCaseNetworkQuery
	router := graphRouter(t, map[querybus.Query]querybus.QueryHandlerFunc{
		queries.GetCaseNetworkQuery{}: func(ctx context.Context, q querybus.Query) (interface{}, error) {
			asked = q.(queries.GetCaseNetworkQuery)
			return sampleGraph(), nil
		},
	})

	// Act
	rec := serve(router, "/api/graph/case/C-100")

	// Assert
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	assert.Equal(t, "C-100", asked.CaseID)

	var body struct {
		Nodes []map[string]any `json:"nodes"`
		Links []map[string]any `json:"links"`
		Stats casenet.Stats    `json:"stats"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Len(t, body.Nodes, 2)
	assert.Len(t, body.Links, 1)
	assert.Equal(t, 2, body.Stats.NodeCount)
	assert.Equal(t, 1, body.Stats.ClusterCount)
}

func TestGetCaseNetwork_Errors(t *testing.T) {
	tests := []struct {
		name       string
		path       string
		err        error
		wantStatus int
		wantBody   string
	}{
		{
			name:       "unknown case",
			path:       "/api/graph/case/C-404",
			err:        pkgerrors.NewNotFoundError("case"),
			wantStatus: http.StatusNotFound,
			wantBody:   `{"error":"Case not found"}`,
		},
		{
			name:       "store failure never leaks its cause",
			path:       "/api/graph/case/C-100",
			err:        pkgerrors.NewDatabaseError("fetch case network", errors.New("bolt: connection reset")),
			wantStatus: http.StatusInternalServerError,
			wantBody:   `{"error":"Internal server error"}`,
		},
		{
			name:       "store timeout",
			path:       "/api/graph/case/C-100",
			err:        pkgerrors.NewTimeoutError("FetchCaseNetwork"),
			wantStatus: http.StatusInternalServerError,
			wantBody:   `{"error":"Internal server error"}`,
		},
		{
			name:       "circuit open",
			path:       "/api/graph/case/C-100",
			err:        pkgerrors.NewUnavailableError("graph-store"),
			wantStatus: http.StatusInternalServerError,
			wantBody:   `{"error":"Internal server error"}`,
		},
		{
			name:       "plain error",
			path:       "/api/graph/case/C-100",
			err:        errors.New("boom"),
			wantStatus: http.StatusInternalServerError,
			wantBody:   `{"error":"Internal server error"}`,
		},
		{
			name:       "case id too long",
			path:       "/api/graph/case/" + strings.Repeat("C", 129),
			wantStatus: http.StatusBadRequest,
			wantBody:   `{"error":"case id must be at most 128 characters"}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Arrange
			router := graphRouter(t, caseNetworkReturning(nil, tt.err))

			// Act
			rec := serve(router, tt.path)

			// Assert
			assert.Equal(t, tt.wantStatus, rec.Code)
			assert.JSONEq(t, tt.wantBody, rec.Body.String())
		})
	}
}

func TestGetCaseNetwork_UnexpectedResultIsInternal(t *testing.T) {
	router := graphRouter(t, map[querybus.Query]querybus.QueryHandlerFunc{
		queries.GetCaseNetworkQuery{}: func(ctx context.Context, q querybus.Query) (interface{}, error) {
			return "not a graph", nil
		},
	})

	rec := serve(router, "/api/graph/case/C-100")

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.JSONEq(t, `{"error":"Internal server error"}`, rec.Body.String())
}

func TestGetRelatedTransactions(t *testing.T) {
	// Arrange
	router := graphRouter(t, map[querybus.Query]querybus.QueryHandlerFunc{
		queries.GetRelatedTransactionsQuery{}: func(ctx context.Context, q querybus.Query) (interface{}, error) {
			caseID := q.(queries.GetRelatedTransactionsQuery).CaseID
			if caseID == "C-404" {
				return nil, pkgerrors.NewNotFoundError("case")
			}
			return &queries.GetRelatedTransactionsResult{
				CaseID:        caseID,
				TransactionID: "T-1",
				Related: []queries.RelatedTransactionView{{
					Transaction:   queries.TransactionSummary{ID: "T-2", Amount: 1150000},
					Merchant:      &queries.MerchantSummary{Name: "Coupang"},
					HoursDiff:     5,
					AmountDiffPct: 4,
					Score:         85,
				}},
			}, nil
		},
	})

	// Act
	ok := serve(router, "/api/cases/C-100/related")
	missing := serve(router, "/api/cases/C-404/related")

	// Assert
	require.Equal(t, http.StatusOK, ok.Code)
	var result queries.GetRelatedTransactionsResult
	require.NoError(t, json.Unmarshal(ok.Body.Bytes(), &result))
	assert.Equal(t, "C-100", result.CaseID)
	require.Len(t, result.Related, 1)
	assert.Equal(t, 85, result.Related[0].Score)

	assert.Equal(t, http.StatusNotFound, missing.Code)
	assert.JSONEq(t, `{"error":"Case not found"}`, missing.Body.String())
}

func TestGetEmployeeNetwork(t *testing.T) {
	var asked queries.GetEmployeeNetworkQuery
	router := graphRouter(t, map[querybus.Query]querybus.QueryHandlerFunc{
		queries.GetEmployeeNetworkQuery{}: func(ctx context.Context, q querybus.Query) (interface{}, error) {
			asked = q.(queries.GetEmployeeNetworkQuery)
			if asked.EmployeeID == "E-404" {
				return nil, pkgerrors.NewNotFoundError("employee")
			}
			return sampleGraph(), nil
		},
	})

	t.Run("limit is forwarded", func(t *testing.T) {
		rec := serve(router, "/api/graph/employee/E-1?limit=25")

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "E-1", asked.EmployeeID)
		assert.Equal(t, 25, asked.Limit)
	})

	t.Run("non numeric limit", func(t *testing.T) {
		rec := serve(router, "/api/graph/employee/E-1?limit=lots")

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.JSONEq(t, `{"error":"limit must be a number"}`, rec.Body.String())
	})

	t.Run("limit out of range is rejected by the query", func(t *testing.T) {
		rec := serve(router, "/api/graph/employee/E-1?limit=9999")

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("unknown employee", func(t *testing.T) {
		rec := serve(router, "/api/graph/employee/E-404")

		assert.Equal(t, http.StatusNotFound, rec.Code)
		assert.JSONEq(t, `{"error":"Employee not found"}`, rec.Body.String())
	})
}

func TestRenderedViews(t *testing.T) {
	router := graphRouter(t, caseNetworkReturning(sampleGraph(), nil))

	t.Run("html", func(t *testing.T) {
		rec := serve(router, "/api/graph/case/C-100/view?selected=transaction:T-1")

		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "text/html; charset=utf-8", rec.Header().Get("Content-Type"))
		assert.Contains(t, rec.Body.String(), "Case C-100")
	})

	t.Run("svg", func(t *testing.T) {
		rec := serve(router, "/api/graph/case/C-100/svg?width=400&height=300")

		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "image/svg+xml", rec.Header().Get("Content-Type"))
		assert.Contains(t, rec.Body.String(), "<svg")
		assert.Contains(t, rec.Body.String(), `width="400"`)
	})

	t.Run("size out of range", func(t *testing.T) {
		rec := serve(router, "/api/graph/case/C-100/svg?width=5")

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.JSONEq(t, `{"error":"width must be a number between 100 and 4000"}`, rec.Body.String())
	})

	t.Run("unknown case", func(t *testing.T) {
		missing := graphRouter(t, caseNetworkReturning(nil, pkgerrors.NewNotFoundError("case")))
		rec := serve(missing, "/api/graph/case/C-404/view")

		assert.Equal(t, http.StatusNotFound, rec.Code)
		assert.JSONEq(t, `{"error":"Case not found"}`, rec.Body.String())
	})
}

type stubPinger struct{ err error }

func (p stubPinger) Ping(context.Context) error { return p.err }

func TestHealthHandler(t *testing.T) {
	tests := []struct {
		name       string
		pinger     stubPinger
		handler    func(*HealthHandler) http.HandlerFunc
		wantStatus int
		wantBody   string
	}{
		{
			name:       "health ignores the store",
			pinger:     stubPinger{err: errors.New("down")},
			handler:    func(h *HealthHandler) http.HandlerFunc { return h.Health },
			wantStatus: http.StatusOK,
			wantBody:   `{"status":"healthy"}`,
		},
		{
			name:       "ready",
			handler:    func(h *HealthHandler) http.HandlerFunc { return h.Ready },
			wantStatus: http.StatusOK,
			wantBody:   `{"status":"ready"}`,
		},
		{
			name:       "store unreachable",
			pinger:     stubPinger{err: errors.New("dial tcp: refused")},
			handler:    func(h *HealthHandler) http.HandlerFunc { return h.Ready },
			wantStatus: http.StatusServiceUnavailable,
			wantBody:   `{"status":"unavailable"}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := NewHealthHandler(tt.pinger, zap.NewNop())
			rec := httptest.NewRecorder()

			tt.handler(h)(rec, httptest.NewRequest(http.MethodGet, "/", nil))

			assert.Equal(t, tt.wantStatus, rec.Code)
			assert.JSONEq(t, tt.wantBody, rec.Body.String())
		})
	}
}
