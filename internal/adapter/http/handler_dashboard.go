package http

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/qaforge/qaforge/internal/ports"
	"github.com/qaforge/qaforge/internal/usecase"
	"github.com/qaforge/qaforge/pkg/apperror"
)

// DashboardService defines the behavior the handler depends on.
// Using an interface here makes the handler easily testable with mocks.
type DashboardService interface {
	GetDashboard(ctx context.Context, req usecase.DashboardRequest) (*usecase.DashboardResponse, error)
	ListProjects(ctx context.Context) ([]ports.Project, error)
}

// StatusTimeService builds the time-in-status report
type StatusTimeService interface {
	BuildReport(ctx context.Context, req usecase.StatusTimeRequest) (*usecase.StatusTimeResponse, error)
}

// DashboardHandler handles HTTP requests for the QA dashboard
type DashboardHandler struct {
	dashboard  DashboardService
	statusTime StatusTimeService
}

// NewDashboardHandler creates a new dashboard handler
func NewDashboardHandler(dashboard DashboardService, statusTime StatusTimeService) *DashboardHandler {
	return &DashboardHandler{
		dashboard:  dashboard,
		statusTime: statusTime,
	}
}

// RegisterRoutes registers dashboard routes
func (h *DashboardHandler) RegisterRoutes(router *mux.Router) {
	router.HandleFunc("/dashboard", h.Dashboard).Methods("POST")
	router.HandleFunc("/dashboard/status-time", h.StatusTime).Methods("POST")
}

type dashboardRequestBody struct {
	Action string `json:"action"`
	usecase.DashboardRequest
}

// Dashboard dispatches on the action field: "projects" lists the visible
// projects, "dashboard" computes the defect metrics for a period
func (h *DashboardHandler) Dashboard(w http.ResponseWriter, r *http.Request) {
	var body dashboardRequestBody
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, apperror.NewBadRequest("invalid request body"))
		return
	}

	switch body.Action {
	case "projects":
		projects, err := h.dashboard.ListProjects(r.Context())
		if err != nil {
			writeError(w, err)
			return
		}
		writeSuccess(w, http.StatusOK, map[string]interface{}{"projects": projects})
	case "dashboard", "":
		response, err := h.dashboard.GetDashboard(r.Context(), body.DashboardRequest)
		if err != nil {
			writeError(w, err)
			return
		}
		writeSuccess(w, http.StatusOK, response)
	default:
		writeError(w, apperror.NewBadRequest("unknown action: "+body.Action))
	}
}

// StatusTime computes the time-in-status report for a period
func (h *DashboardHandler) StatusTime(w http.ResponseWriter, r *http.Request) {
	var req usecase.StatusTimeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, apperror.NewBadRequest("invalid request body"))
		return
	}

	response, err := h.statusTime.BuildReport(r.Context(), req)
	if err != nil {
		writeError(w, err)
		return
	}

	writeSuccess(w, http.StatusOK, response)
}
