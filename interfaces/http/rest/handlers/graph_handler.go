package handlers

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"casegraph/application/queries"
	querybus "casegraph/application/queries/bus"
	"casegraph/domain/casenet"
	"casegraph/interfaces/render"
	"casegraph/pkg/auth"
	pkgerrors "casegraph/pkg/errors"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// Default render viewport in pixels
const (
	DefaultRenderWidth  = 800
	DefaultRenderHeight = 600

	minRenderSize = 100
	maxRenderSize = 4000
)

// GraphHandler handles case and employee network requests
type GraphHandler struct {
	queryBus       *querybus.QueryBus
	caseErrors     *pkgerrors.ErrorHandler
	employeeErrors *pkgerrors.ErrorHandler
	logger         *zap.Logger
}

// NewGraphHandler creates a new graph handler
func NewGraphHandler(queryBus *querybus.QueryBus, errorHandler *pkgerrors.ErrorHandler, logger *zap.Logger) *GraphHandler {
	return &GraphHandler{
		queryBus:       queryBus,
		caseErrors:     errorHandler.WithNotFoundMessage("Case not found").WithServerErrorStatus(http.StatusInternalServerError),
		employeeErrors: errorHandler.WithNotFoundMessage("Employee not found"),
		logger:         logger,
	}
}

// GetCaseNetwork handles GET /api/graph/case/{caseId}
func (h *GraphHandler) GetCaseNetwork(w http.ResponseWriter, r *http.Request) {
	caseID := chi.URLParam(r, "caseId")

	graph, err := h.caseNetwork(r, caseID)
	if err != nil {
		h.caseErrors.Handle(w, r, err, zap.String("caseID", caseID))
		return
	}

	h.respondJSON(w, http.StatusOK, graph)
}

// GetRelatedTransactions handles GET /api/cases/{caseId}/related
func (h *GraphHandler) GetRelatedTransactions(w http.ResponseWriter, r *http.Request) {
	caseID := chi.URLParam(r, "caseId")

	result, err := h.queryBus.Ask(r.Context(), queries.GetRelatedTransactionsQuery{
		CaseID:   caseID,
		ViewerID: auth.ViewerID(r.Context()),
	})
	if err != nil {
		h.caseErrors.Handle(w, r, err, zap.String("caseID", caseID))
		return
	}

	related, ok := result.(*queries.GetRelatedTransactionsResult)
	if !ok {
		h.caseErrors.Handle(w, r, unexpectedResult(result), zap.String("caseID", caseID))
		return
	}

	h.respondJSON(w, http.StatusOK, related)
}

// GetEmployeeNetwork handles GET /api/graph/employee/{employeeId}
func (h *GraphHandler) GetEmployeeNetwork(w http.ResponseWriter, r *http.Request) {
	employeeID := chi.URLParam(r, "employeeId")

	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			h.employeeErrors.Handle(w, r, pkgerrors.NewValidationError("limit must be a number"))
			return
		}
		limit = parsed
	}

	result, err := h.queryBus.Ask(r.Context(), queries.GetEmployeeNetworkQuery{
		EmployeeID: employeeID,
		Limit:      limit,
		ViewerID:   auth.ViewerID(r.Context()),
	})
	if err != nil {
		h.employeeErrors.Handle(w, r, err, zap.String("employeeID", employeeID))
		return
	}

	graph, ok := result.(*casenet.GraphData)
	if !ok {
		h.employeeErrors.Handle(w, r, unexpectedResult(result), zap.String("employeeID", employeeID))
		return
	}

	h.respondJSON(w, http.StatusOK, graph)
}

// ViewCaseNetwork handles GET /api/graph/case/{caseId}/view
func (h *GraphHandler) ViewCaseNetwork(w http.ResponseWriter, r *http.Request) {
	h.renderCase(w, r, render.NewHTMLPainter())
}

// GetCaseNetworkSVG handles GET /api/graph/case/{caseId}/svg
func (h *GraphHandler) GetCaseNetworkSVG(w http.ResponseWriter, r *http.Request) {
	h.renderCase(w, r, render.NewSVGPainter())
}

func (h *GraphHandler) renderCase(w http.ResponseWriter, r *http.Request, painter render.Painter) {
	caseID := chi.URLParam(r, "caseId")

	width, err := renderSize(r, "width", DefaultRenderWidth)
	if err != nil {
		h.caseErrors.Handle(w, r, err)
		return
	}
	height, err := renderSize(r, "height", DefaultRenderHeight)
	if err != nil {
		h.caseErrors.Handle(w, r, err)
		return
	}

	graph, err := h.caseNetwork(r, caseID)
	if err != nil {
		h.caseErrors.Handle(w, r, err, zap.String("caseID", caseID))
		return
	}

	var buf bytes.Buffer
	title := "Case " + caseID
	if err := render.RenderCase(&buf, painter, title, *graph, width, height, r.URL.Query().Get("selected")); err != nil {
		h.caseErrors.Handle(w, r, pkgerrors.Wrap(err, "failed to render case network"),
			zap.String("caseID", caseID))
		return
	}

	w.Header().Set("Content-Type", painter.ContentType())
	w.WriteHeader(http.StatusOK)
	w.Write(buf.Bytes())
}

func (h *GraphHandler) caseNetwork(r *http.Request, caseID string) (*casenet.GraphData, error) {
	result, err := h.queryBus.Ask(r.Context(), queries.GetCaseNetworkQuery{
		CaseID:   caseID,
		ViewerID: auth.ViewerID(r.Context()),
	})
	if err != nil {
		return nil, err
	}
	graph, ok := result.(*casenet.GraphData)
	if !ok {
		return nil, unexpectedResult(result)
	}
	return graph, nil
}

func renderSize(r *http.Request, param string, fallback float64) (float64, error) {
	raw := r.URL.Query().Get(param)
	if raw == "" {
		return fallback, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v < minRenderSize || v > maxRenderSize {
		return 0, pkgerrors.NewValidationError(
			fmt.Sprintf("%s must be a number between %d and %d", param, minRenderSize, maxRenderSize))
	}
	return float64(v), nil
}

func unexpectedResult(result any) error {
	return pkgerrors.NewInternalError(fmt.Sprintf("unexpected query result %T", result))
}

// respondJSON sends a JSON response
func (h *GraphHandler) respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.logger.Error("Failed to encode response", zap.Error(err))
	}
}
