package http

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/qaforge/qaforge/internal/usecase"
	"github.com/qaforge/qaforge/pkg/apperror"
)

// BugService drafts and creates bug reports in the tracker
type BugService interface {
	CreateBug(ctx context.Context, req usecase.CreateBugRequest) (*usecase.CreateBugResponse, error)
}

// BugHandler handles HTTP requests for bug creation
type BugHandler struct {
	bugs BugService
}

// NewBugHandler creates a new bug handler
func NewBugHandler(bugs BugService) *BugHandler {
	return &BugHandler{bugs: bugs}
}

// RegisterRoutes registers bug routes
func (h *BugHandler) RegisterRoutes(router *mux.Router) {
	router.HandleFunc("/bug/create", h.CreateBug).Methods("POST")
}

// CreateBug structures the free-form description through AI and creates
// the issue in the tracker
func (h *BugHandler) CreateBug(w http.ResponseWriter, r *http.Request) {
	var req usecase.CreateBugRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, apperror.NewBadRequest("invalid request body"))
		return
	}

	response, err := h.bugs.CreateBug(r.Context(), req)
	if err != nil {
		writeError(w, err)
		return
	}

	writeSuccess(w, http.StatusCreated, response)
}
