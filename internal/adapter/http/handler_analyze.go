package http

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/qaforge/qaforge/internal/usecase"
	"github.com/qaforge/qaforge/pkg/apperror"
)

// AnalyzeService runs AI analyses over submitted requirements
type AnalyzeService interface {
	Analyze(ctx context.Context, req usecase.AnalyzeRequest) (*usecase.AnalyzeResponse, error)
	AnalysisTypes() []string
}

// AnalyzeHandler handles HTTP requests for AI analysis
type AnalyzeHandler struct {
	analyze AnalyzeService
}

// NewAnalyzeHandler creates a new analyze handler
func NewAnalyzeHandler(analyze AnalyzeService) *AnalyzeHandler {
	return &AnalyzeHandler{analyze: analyze}
}

// RegisterRoutes registers analysis routes
func (h *AnalyzeHandler) RegisterRoutes(router *mux.Router) {
	router.HandleFunc("/analyze", h.Analyze).Methods("POST")
	router.HandleFunc("/analysis-types", h.AnalysisTypes).Methods("GET")
}

// Analyze runs the requested analysis through the chosen AI provider
func (h *AnalyzeHandler) Analyze(w http.ResponseWriter, r *http.Request) {
	var req usecase.AnalyzeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, apperror.NewBadRequest("invalid request body"))
		return
	}

	response, err := h.analyze.Analyze(r.Context(), req)
	if err != nil {
		writeError(w, err)
		return
	}

	writeSuccess(w, http.StatusOK, response)
}

// AnalysisTypes lists the supported analysis types
func (h *AnalyzeHandler) AnalysisTypes(w http.ResponseWriter, r *http.Request) {
	writeSuccess(w, http.StatusOK, map[string]interface{}{
		"types": h.analyze.AnalysisTypes(),
	})
}
