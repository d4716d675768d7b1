package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xavierca1/ligue-crm/internal/entity"
	"github.com/xavierca1/ligue-crm/internal/infra/http/middleware"
	"github.com/xavierca1/ligue-crm/internal/infra/memory"
	"github.com/xavierca1/ligue-crm/internal/usecase"
)

func withURLParam(req *http.Request, key, value string) *http.Request {
	chiCtx := chi.NewRouteContext()
	chiCtx.URLParams.Add(key, value)
	return req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, chiCtx))
}

func decode(t *testing.T, w *httptest.ResponseRecorder) Response {
	t.Helper()
	var resp Response
	require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
	return resp
}

func TestLeadHandlerGetNotFound(t *testing.T) {
	store := memory.NewStore()
	handler := NewLeadHandler(usecase.NewLeadUseCase(store.Leads(), nil))

	req := withURLParam(httptest.NewRequest("GET", "/api/leads/missing", nil), "id", "missing")
	w := httptest.NewRecorder()

	handler.Get(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
	resp := decode(t, w)
	assert.False(t, resp.Success)
	assert.Equal(t, "Lead not found", resp.Message)
}

func TestLeadHandlerCreateValidation(t *testing.T) {
	store := memory.NewStore()
	handler := NewLeadHandler(usecase.NewLeadUseCase(store.Leads(), nil))

	body, _ := json.Marshal(map[string]string{"name": "Ann"})
	req := httptest.NewRequest("POST", "/api/leads", bytes.NewReader(body))
	w := httptest.NewRecorder()

	handler.Create(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	resp := decode(t, w)
	require.Len(t, resp.Errors, 1)
	assert.Equal(t, "email", resp.Errors[0].Field)
}

func TestLeadHandlerCreateInvalidJSON(t *testing.T) {
	handler := NewLeadHandler(usecase.NewLeadUseCase(memory.NewStore().Leads(), nil))

	req := httptest.NewRequest("POST", "/api/leads", bytes.NewReader([]byte("{")))
	w := httptest.NewRecorder()

	handler.Create(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Invalid JSON", decode(t, w).Message)
}

func TestTaskHandlerUpdateStatusUsesContextUser(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	owner, err := entity.NewUser("Owner", "owner@example.com", "hash")
	require.NoError(t, err)
	require.NoError(t, store.Users().Create(ctx, owner))
	lead, err := entity.NewLead("Ann", "ann@example.com", "")
	require.NoError(t, err)
	require.NoError(t, store.Leads().Create(ctx, lead))

	uc := usecase.NewTaskUseCase(store.Tasks(), nil, time.UTC)
	task, err := uc.Create(ctx, owner.ID, usecase.CreateTaskInput{
		Title: "Call", Lead: lead.ID, AssignedTo: owner.ID, DueDate: "2026-03-10",
	})
	require.NoError(t, err)

	handler := NewTaskHandler(uc)
	body, _ := json.Marshal(map[string]string{"status": "In Progress"})
	req := withURLParam(httptest.NewRequest("PATCH", "/api/tasks/"+task.ID+"/status", bytes.NewReader(body)), "id", task.ID)
	req = req.WithContext(middleware.WithUser(req.Context(), owner))
	w := httptest.NewRecorder()

	handler.UpdateStatus(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	stored, err := store.Tasks().FindByID(ctx, task.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.TaskStatusInProgress, stored.Status)
}

func TestWriteErrorHidesTechnicalDetails(t *testing.T) {
	w := httptest.NewRecorder()

	writeError(w, &usecase.TechnicalError{Code: usecase.CodeInternal, Message: "failed", Err: errors.New("pq: password leaked")})

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, "Internal server error", decode(t, w).Message)
}

func TestWriteErrorStatusMapping(t *testing.T) {
	cases := map[string]int{
		usecase.CodeValidation:      http.StatusBadRequest,
		usecase.CodeUnauthenticated: http.StatusUnauthorized,
		usecase.CodeForbidden:       http.StatusForbidden,
		usecase.CodeNotFound:        http.StatusNotFound,
		usecase.CodeConflict:        http.StatusBadRequest,
	}
	for code, status := range cases {
		w := httptest.NewRecorder()
		writeError(w, &usecase.DomainError{Code: code, Message: code})
		assert.Equal(t, status, w.Code, code)
	}
}

type closedBroker struct{}

func (closedBroker) IsClosed() bool { return true }

func TestHealthDegradedWhenBrokerClosed(t *testing.T) {
	handler := NewHealthHandler(memory.NewStore(), closedBroker{}, "test")
	w := httptest.NewRecorder()

	handler.Handle(w, httptest.NewRequest("GET", "/health", nil))

	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	var resp HealthResponse
	require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
	assert.Equal(t, "degraded", resp.Status)
}
