package router

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/xavierca1/ligue-crm/internal/infra/http/handlers"
	"github.com/xavierca1/ligue-crm/internal/infra/http/middleware"
	"github.com/xavierca1/ligue-crm/internal/infra/memory"
	"github.com/xavierca1/ligue-crm/internal/infra/security"
	"github.com/xavierca1/ligue-crm/internal/usecase"
)

type envelope struct {
	Success    bool               `json:"success"`
	Data       json.RawMessage    `json:"data"`
	Message    string             `json:"message"`
	Pagination usecase.Pagination `json:"pagination"`
	Token      string             `json:"token"`
	User       struct {
		ID    string `json:"id"`
		Email string `json:"email"`
	} `json:"user"`
}

func newTestServer(t *testing.T, authLimit int) *httptest.Server {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	store := memory.NewStore()
	tokens, err := security.NewTokenService("test-secret", time.Hour)
	require.NoError(t, err)

	srv := httptest.NewServer(New(Deps{
		Auth:           usecase.NewAuthUseCase(store.Users(), security.NewHasher(bcrypt.MinCost), tokens),
		Users:          usecase.NewUserUseCase(store.Users()),
		Leads:          usecase.NewLeadUseCase(store.Leads(), nil),
		Companies:      usecase.NewCompanyUseCase(store.Companies(), store.Leads()),
		Tasks:          usecase.NewTaskUseCase(store.Tasks(), nil, time.UTC),
		Dashboard:      usecase.NewDashboardUseCase(store.Leads(), store.Tasks(), store.Companies(), time.UTC),
		Health:         handlers.NewHealthHandler(store, nil, "test"),
		AuthLimiter:    middleware.NewRateLimiter(ctx, authLimit, time.Minute),
		AllowedOrigins: []string{"*"},
	}))
	t.Cleanup(srv.Close)
	return srv
}

func call(t *testing.T, srv *httptest.Server, method, path, token string, body any) (int, envelope) {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req, err := http.NewRequest(method, srv.URL+path, &buf)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := srv.Client().Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	var env envelope
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&env))
	return resp.StatusCode, env
}

func register(t *testing.T, srv *httptest.Server, name, email string) envelope {
	t.Helper()
	status, env := call(t, srv, http.MethodPost, "/api/auth/register", "", map[string]string{
		"name": name, "email": email, "password": "secret1",
	})
	require.Equal(t, http.StatusCreated, status, env.Message)
	return env
}

func TestAuthFlow(t *testing.T) {
	srv := newTestServer(t, 100)

	reg := register(t, srv, "Ann", "ann@example.com")
	assert.True(t, reg.Success)
	assert.NotEmpty(t, reg.Token)

	status, env := call(t, srv, http.MethodPost, "/api/auth/register", "", map[string]string{
		"name": "Ann", "email": "ANN@example.com", "password": "secret1",
	})
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "User already exists", env.Message)

	status, env = call(t, srv, http.MethodPost, "/api/auth/login", "", map[string]string{
		"email": "ann@example.com", "password": "wrong1",
	})
	assert.Equal(t, http.StatusUnauthorized, status)
	assert.Equal(t, "Invalid credentials", env.Message)

	status, login := call(t, srv, http.MethodPost, "/api/auth/login", "", map[string]string{
		"email": "ann@example.com", "password": "secret1",
	})
	require.Equal(t, http.StatusOK, status)

	status, me := call(t, srv, http.MethodGet, "/api/auth/me", login.Token, nil)
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, reg.User.ID, me.User.ID)
}

func TestProtectedRoutesRequireToken(t *testing.T) {
	srv := newTestServer(t, 100)

	status, env := call(t, srv, http.MethodGet, "/api/leads", "", nil)
	assert.Equal(t, http.StatusUnauthorized, status)
	assert.Equal(t, "No token provided", env.Message)

	status, env = call(t, srv, http.MethodGet, "/api/leads", "forged", nil)
	assert.Equal(t, http.StatusUnauthorized, status)
	assert.Equal(t, "Invalid token", env.Message)
}

func TestLeadLifecycleOverHTTP(t *testing.T) {
	srv := newTestServer(t, 100)
	token := register(t, srv, "Owner", "owner@example.com").Token

	status, created := call(t, srv, http.MethodPost, "/api/leads", token, map[string]string{
		"name": "Ann", "email": "ann@example.com",
	})
	require.Equal(t, http.StatusCreated, status, created.Message)
	var lead struct {
		ID        string `json:"id"`
		Status    string `json:"status"`
		IsDeleted bool   `json:"isDeleted"`
	}
	require.NoError(t, json.Unmarshal(created.Data, &lead))
	assert.Equal(t, "New", lead.Status)

	status, list := call(t, srv, http.MethodGet, "/api/leads?page=1&limit=10&search=ANN", token, nil)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, 1, list.Pagination.TotalLeads)
	assert.Equal(t, 1, list.Pagination.TotalPages)

	status, _ = call(t, srv, http.MethodDelete, "/api/leads/"+lead.ID, token, nil)
	assert.Equal(t, http.StatusOK, status)

	status, env := call(t, srv, http.MethodGet, "/api/leads/"+lead.ID, token, nil)
	assert.Equal(t, http.StatusNotFound, status)
	assert.Equal(t, "Lead not found", env.Message)

	status, _ = call(t, srv, http.MethodDelete, "/api/leads/"+lead.ID, token, nil)
	assert.Equal(t, http.StatusNotFound, status)

	status, list = call(t, srv, http.MethodGet, "/api/leads", token, nil)
	require.Equal(t, http.StatusOK, status)
	assert.JSONEq(t, "[]", string(list.Data))
}

func TestTaskStatusOnlyAssigneeOverHTTP(t *testing.T) {
	srv := newTestServer(t, 100)
	u1 := register(t, srv, "U1", "u1@example.com")
	u2 := register(t, srv, "U2", "u2@example.com")

	_, created := call(t, srv, http.MethodPost, "/api/leads", u1.Token, map[string]string{"name": "Ann", "email": "ann@example.com"})
	var lead struct{ ID string }
	require.NoError(t, json.Unmarshal(created.Data, &lead))

	status, taskEnv := call(t, srv, http.MethodPost, "/api/tasks", u1.Token, map[string]string{
		"title": "Call", "lead": lead.ID, "assignedTo": u1.User.ID, "dueDate": "2026-03-10",
	})
	require.Equal(t, http.StatusCreated, status, taskEnv.Message)
	var task struct{ ID string }
	require.NoError(t, json.Unmarshal(taskEnv.Data, &task))

	status, env := call(t, srv, http.MethodPatch, "/api/tasks/"+task.ID+"/status", u2.Token, map[string]string{"status": "Completed"})
	assert.Equal(t, http.StatusForbidden, status)
	assert.Equal(t, "Not authorized to update this task status", env.Message)

	status, env = call(t, srv, http.MethodPut, "/api/tasks/"+task.ID, u2.Token, map[string]string{"status": "Completed"})
	assert.Equal(t, http.StatusForbidden, status)
	assert.Equal(t, "Not authorized to update this task status", env.Message)

	status, _ = call(t, srv, http.MethodPatch, "/api/tasks/"+task.ID+"/status", u1.Token, map[string]string{"status": "Finished"})
	assert.Equal(t, http.StatusBadRequest, status)

	status, _ = call(t, srv, http.MethodPatch, "/api/tasks/ghost/status", u1.Token, map[string]string{"status": "Completed"})
	assert.Equal(t, http.StatusNotFound, status)

	status, env = call(t, srv, http.MethodPatch, "/api/tasks/"+task.ID+"/status", u1.Token, map[string]string{"status": "Completed"})
	require.Equal(t, http.StatusOK, status)
	var updated struct{ Status string }
	require.NoError(t, json.Unmarshal(env.Data, &updated))
	assert.Equal(t, "Completed", updated.Status)

	status, stats := call(t, srv, http.MethodGet, "/api/leads/stats/dashboard", u2.Token, nil)
	require.Equal(t, http.StatusOK, status)
	var dashboard usecase.DashboardStats
	require.NoError(t, json.Unmarshal(stats.Data, &dashboard))
	assert.Equal(t, 1, dashboard.TotalLeads)
	assert.Equal(t, 1, dashboard.CompletedTasks)
}

func TestAuthRateLimit(t *testing.T) {
	srv := newTestServer(t, 2)
	body := map[string]string{"email": "x@example.com", "password": "nope"}

	for i := 0; i < 2; i++ {
		status, _ := call(t, srv, http.MethodPost, "/api/auth/login", "", body)
		assert.Equal(t, http.StatusUnauthorized, status)
	}
	status, env := call(t, srv, http.MethodPost, "/api/auth/login", "", body)
	assert.Equal(t, http.StatusTooManyRequests, status)
	assert.False(t, env.Success)
}

func TestHealth(t *testing.T) {
	srv := newTestServer(t, 100)

	resp, err := srv.Client().Get(srv.URL + "/health")
	require.NoError(t, err)
	defer resp.Body.Close()

	var health handlers.HealthResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&health))
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "healthy", health.Status)
	assert.Equal(t, "healthy", health.Dependencies["database"])
	assert.Equal(t, "not configured", health.Dependencies["rabbitmq"])
}

func TestDirectoryCompaniesAndTasksOverHTTP(t *testing.T) {
	srv := newTestServer(t, 100)
	u1 := register(t, srv, "U1", "u1@example.com")
	u2 := register(t, srv, "U2", "u2@example.com")

	status, users := call(t, srv, http.MethodGet, "/api/users", u1.Token, nil)
	require.Equal(t, http.StatusOK, status)
	var directory []map[string]any
	require.NoError(t, json.Unmarshal(users.Data, &directory))
	assert.Len(t, directory, 2)
	assert.NotContains(t, directory[0], "passwordHash")

	status, companyEnv := call(t, srv, http.MethodPost, "/api/companies", u1.Token, map[string]string{"name": "Acme"})
	require.Equal(t, http.StatusCreated, status, companyEnv.Message)
	var company struct{ ID string }
	require.NoError(t, json.Unmarshal(companyEnv.Data, &company))

	_, leadEnv := call(t, srv, http.MethodPost, "/api/leads", u1.Token, map[string]string{
		"name": "Ann", "email": "ann@example.com", "company": company.ID,
	})
	var lead struct{ ID string }
	require.NoError(t, json.Unmarshal(leadEnv.Data, &lead))

	status, detailEnv := call(t, srv, http.MethodGet, "/api/companies/"+company.ID, u1.Token, nil)
	require.Equal(t, http.StatusOK, status)
	var detail struct {
		Company struct{ Name string } `json:"company"`
		Leads   []struct{ ID string } `json:"leads"`
	}
	require.NoError(t, json.Unmarshal(detailEnv.Data, &detail))
	assert.Equal(t, "Acme", detail.Company.Name)
	require.Len(t, detail.Leads, 1)
	assert.Equal(t, lead.ID, detail.Leads[0].ID)

	_, taskEnv := call(t, srv, http.MethodPost, "/api/tasks", u1.Token, map[string]string{
		"title": "Call", "lead": lead.ID, "assignedTo": u1.User.ID, "dueDate": "2026-03-10",
	})
	var task struct{ ID string }
	require.NoError(t, json.Unmarshal(taskEnv.Data, &task))

	status, updatedEnv := call(t, srv, http.MethodPut, "/api/tasks/"+task.ID, u2.Token, map[string]string{
		"title": "Call back", "assignedTo": u2.User.ID,
	})
	require.Equal(t, http.StatusOK, status, updatedEnv.Message)
	var updated struct {
		Title      string
		AssignedTo struct{ ID, Name string } `json:"assignedTo"`
	}
	require.NoError(t, json.Unmarshal(updatedEnv.Data, &updated))
	assert.Equal(t, "Call back", updated.Title)
	assert.Equal(t, u2.User.ID, updated.AssignedTo.ID)
	assert.Equal(t, "U2", updated.AssignedTo.Name)

	status, listEnv := call(t, srv, http.MethodGet, "/api/tasks?assignedTo="+u1.User.ID, u1.Token, nil)
	require.Equal(t, http.StatusOK, status)
	assert.JSONEq(t, "[]", string(listEnv.Data))

	status, _ = call(t, srv, http.MethodDelete, "/api/tasks/"+task.ID, u1.Token, nil)
	assert.Equal(t, http.StatusOK, status)
	status, _ = call(t, srv, http.MethodGet, "/api/tasks/"+task.ID, u1.Token, nil)
	assert.Equal(t, http.StatusNotFound, status)

	status, _ = call(t, srv, http.MethodDelete, "/api/companies/"+company.ID, u1.Token, nil)
	assert.Equal(t, http.StatusOK, status)
	status, _ = call(t, srv, http.MethodGet, "/api/leads/"+lead.ID, u1.Token, nil)
	assert.Equal(t, http.StatusOK, status)
}
