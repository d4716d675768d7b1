package usecase

import (
	"time"

	"github.com/xavierca1/ligue-crm/internal/entity"
)

const (
	DefaultPage  = 1
	DefaultLimit = 10
	MaxLimit     = 100
)

type RegisterInput struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type LoginInput struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Session is what a successful register or login hands back to the client.
// The client keeps it until logout; the server keeps nothing.
type Session struct {
	User      *entity.User `json:"user"`
	Token     string       `json:"token"`
	ExpiresAt time.Time    `json:"expiresAt"`
}

type ListLeadsInput struct {
	Page       int
	Limit      int
	Search     string
	Status     string
	AssignedTo string
}

type CreateLeadInput struct {
	Name       string `json:"name"`
	Email      string `json:"email"`
	Phone      string `json:"phone"`
	Status     string `json:"status"`
	AssignedTo string `json:"assignedTo"`
	Company    string `json:"company"`
}

// UpdateLeadInput is a partial update: nil fields are left untouched.
// An empty AssignedTo or Company clears the reference.
type UpdateLeadInput struct {
	Name       *string `json:"name"`
	Email      *string `json:"email"`
	Phone      *string `json:"phone"`
	Status     *string `json:"status"`
	AssignedTo *string `json:"assignedTo"`
	Company    *string `json:"company"`
}

type Pagination struct {
	CurrentPage int `json:"currentPage"`
	TotalPages  int `json:"totalPages"`
	TotalLeads  int `json:"totalLeads"`
	Limit       int `json:"limit"`
}

type LeadPage struct {
	Leads      []*entity.Lead
	Pagination Pagination
}

type CreateCompanyInput struct {
	Name        string `json:"name"`
	Industry    string `json:"industry"`
	Location    string `json:"location"`
	Website     string `json:"website"`
	Phone       string `json:"phone"`
	Description string `json:"description"`
}

type UpdateCompanyInput struct {
	Name        *string `json:"name"`
	Industry    *string `json:"industry"`
	Location    *string `json:"location"`
	Website     *string `json:"website"`
	Phone       *string `json:"phone"`
	Description *string `json:"description"`
}

type CompanyDetail struct {
	Company *entity.Company `json:"company"`
	Leads   []*entity.Lead  `json:"leads"`
}

type ListTasksInput struct {
	Status     string
	AssignedTo string
}

type CreateTaskInput struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Lead        string `json:"lead"`
	AssignedTo  string `json:"assignedTo"`
	DueDate     string `json:"dueDate"`
	Status      string `json:"status"`
	Priority    string `json:"priority"`
}

type UpdateTaskInput struct {
	Title       *string `json:"title"`
	Description *string `json:"description"`
	Lead        *string `json:"lead"`
	AssignedTo  *string `json:"assignedTo"`
	DueDate     *string `json:"dueDate"`
	Status      *string `json:"status"`
	Priority    *string `json:"priority"`
}

type UpdateTaskStatusInput struct {
	Status string `json:"status"`
}

type DashboardStats struct {
	TotalLeads     int `json:"totalLeads"`
	QualifiedLeads int `json:"qualifiedLeads"`
	TasksDueToday  int `json:"tasksDueToday"`
	CompletedTasks int `json:"completedTasks"`
	TotalCompanies int `json:"totalCompanies"`
	TotalTasks     int `json:"totalTasks"`
}
