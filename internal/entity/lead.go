package entity

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
)

type LeadStatus string

const (
	LeadStatusNew       LeadStatus = "New"
	LeadStatusContacted LeadStatus = "Contacted"
	LeadStatusQualified LeadStatus = "Qualified"
	LeadStatusLost      LeadStatus = "Lost"
	LeadStatusWon       LeadStatus = "Won"
)

var LeadStatuses = []LeadStatus{
	LeadStatusNew,
	LeadStatusContacted,
	LeadStatusQualified,
	LeadStatusLost,
	LeadStatusWon,
}

func (s LeadStatus) Valid() bool {
	for _, v := range LeadStatuses {
		if s == v {
			return true
		}
	}
	return false
}

// Lead is a prospective customer tracked through the status pipeline.
// Deleted leads stay in storage with IsDeleted set and are hidden from every read path.
type Lead struct {
	ID         string     `json:"id"`
	Name       string     `json:"name"`
	Email      string     `json:"email"`
	Phone      string     `json:"phone,omitempty"`
	Status     LeadStatus `json:"status"`
	AssignedTo *Ref       `json:"assignedTo"`
	Company    *Ref       `json:"company"`
	IsDeleted  bool       `json:"isDeleted"`
	DeletedAt  *time.Time `json:"deletedAt"`
	CreatedAt  time.Time  `json:"createdAt"`
	UpdatedAt  time.Time  `json:"updatedAt"`
}

// NewLead builds a lead with defaults applied. Email is stored lowercase.
func NewLead(name, email, phone string) (*Lead, error) {
	now := time.Now().UTC()
	lead := &Lead{
		ID:        uuid.New().String(),
		Name:      strings.TrimSpace(name),
		Email:     NormalizeEmail(email),
		Phone:     strings.TrimSpace(phone),
		Status:    LeadStatusNew,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := lead.Validate(); err != nil {
		return nil, err
	}

	return lead, nil
}

func (l *Lead) Validate() error {
	if l.Name == "" {
		return errors.New("name is required")
	}
	if l.Email == "" {
		return errors.New("email is required")
	}
	if !l.Status.Valid() {
		return errors.New("status is invalid")
	}
	return nil
}

// AssignedToID returns the referenced user id or "".
func (l *Lead) AssignedToID() string {
	return l.AssignedTo.RefID()
}

// CompanyID returns the referenced company id or "".
func (l *Lead) CompanyID() string {
	return l.Company.RefID()
}

// LeadFilter narrows a lead listing. Empty fields do not filter.
// Search matches name or email, case-insensitively, as a literal substring.
type LeadFilter struct {
	Search     string
	Status     LeadStatus
	AssignedTo string
	CompanyID  string
	Offset     int
	Limit      int
}

// LeadRepository never returns soft-deleted leads, and Update/SoftDelete
// only affect leads that are still visible.
type LeadRepository interface {
	Create(ctx context.Context, lead *Lead) error
	FindByID(ctx context.Context, id string) (*Lead, error)
	List(ctx context.Context, filter LeadFilter) ([]*Lead, int, error)
	Update(ctx context.Context, lead *Lead) error
	SoftDelete(ctx context.Context, id string, at time.Time) error
	Count(ctx context.Context) (int, error)
	CountByStatus(ctx context.Context, status LeadStatus) (int, error)
}

func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
