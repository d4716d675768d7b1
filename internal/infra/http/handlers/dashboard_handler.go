package handlers

import (
	"net/http"

	"github.com/xavierca1/ligue-crm/internal/usecase"
)

type DashboardHandler struct {
	DashboardUseCase *usecase.DashboardUseCase
}

func NewDashboardHandler(uc *usecase.DashboardUseCase) *DashboardHandler {
	return &DashboardHandler{DashboardUseCase: uc}
}

func (h *DashboardHandler) Stats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.DashboardUseCase.Stats(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, Response{Success: true, Data: stats})
}
