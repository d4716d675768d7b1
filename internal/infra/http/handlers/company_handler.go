package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/xavierca1/ligue-crm/internal/usecase"
)

type CompanyHandler struct {
	CompanyUseCase *usecase.CompanyUseCase
}

func NewCompanyHandler(uc *usecase.CompanyUseCase) *CompanyHandler {
	return &CompanyHandler{CompanyUseCase: uc}
}

func (h *CompanyHandler) List(w http.ResponseWriter, r *http.Request) {
	companies, err := h.CompanyUseCase.List(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, Response{Success: true, Data: companies})
}

// Get answers with {company, leads}.
func (h *CompanyHandler) Get(w http.ResponseWriter, r *http.Request) {
	detail, err := h.CompanyUseCase.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, Response{Success: true, Data: detail})
}

func (h *CompanyHandler) Create(w http.ResponseWriter, r *http.Request) {
	var input usecase.CreateCompanyInput
	if !decodeJSON(w, r, &input) {
		return
	}

	company, err := h.CompanyUseCase.Create(r.Context(), input)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, Response{Success: true, Data: company, Message: "Company created successfully"})
}

func (h *CompanyHandler) Update(w http.ResponseWriter, r *http.Request) {
	var input usecase.UpdateCompanyInput
	if !decodeJSON(w, r, &input) {
		return
	}

	company, err := h.CompanyUseCase.Update(r.Context(), chi.URLParam(r, "id"), input)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, Response{Success: true, Data: company, Message: "Company updated successfully"})
}

func (h *CompanyHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.CompanyUseCase.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, Response{Success: true, Message: "Company deleted successfully"})
}
