package handlers

import (
	"net/http"

	"github.com/xavierca1/ligue-crm/internal/entity"
	"github.com/xavierca1/ligue-crm/internal/infra/http/middleware"
	"github.com/xavierca1/ligue-crm/internal/usecase"
)

type AuthHandler struct {
	AuthUseCase *usecase.AuthUseCase
}

func NewAuthHandler(uc *usecase.AuthUseCase) *AuthHandler {
	return &AuthHandler{AuthUseCase: uc}
}

type AuthResponse struct {
	Success bool         `json:"success"`
	User    *entity.User `json:"user"`
	Token   string       `json:"token,omitempty"`
}

func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var input usecase.RegisterInput
	if !decodeJSON(w, r, &input) {
		return
	}

	session, err := h.AuthUseCase.Register(r.Context(), input)
	if err != nil {
		middleware.RecordAuthAttempt("register", "rejected")
		writeError(w, err)
		return
	}

	middleware.RecordAuthAttempt("register", "ok")
	writeJSON(w, http.StatusCreated, AuthResponse{Success: true, User: session.User, Token: session.Token})
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var input usecase.LoginInput
	if !decodeJSON(w, r, &input) {
		return
	}

	session, err := h.AuthUseCase.Login(r.Context(), input)
	if err != nil {
		middleware.RecordAuthAttempt("login", "rejected")
		writeError(w, err)
		return
	}

	middleware.RecordAuthAttempt("login", "ok")
	writeJSON(w, http.StatusOK, AuthResponse{Success: true, User: session.User, Token: session.Token})
}

// Me returns the user the bearer token belongs to.
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, AuthResponse{Success: true, User: middleware.UserFromContext(r.Context())})
}
