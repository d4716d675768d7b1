package entity

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
)

type Company struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Industry    string    `json:"industry,omitempty"`
	Location    string    `json:"location,omitempty"`
	Website     string    `json:"website,omitempty"`
	Phone       string    `json:"phone,omitempty"`
	Description string    `json:"description,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

func NewCompany(name string) (*Company, error) {
	now := time.Now().UTC()
	company := &Company{
		ID:        uuid.New().String(),
		Name:      strings.TrimSpace(name),
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := company.Validate(); err != nil {
		return nil, err
	}

	return company, nil
}

func (c *Company) Validate() error {
	if c.Name == "" {
		return errors.New("name is required")
	}
	return nil
}

type CompanyRepository interface {
	Create(ctx context.Context, company *Company) error
	FindByID(ctx context.Context, id string) (*Company, error)
	List(ctx context.Context) ([]*Company, error)
	Update(ctx context.Context, company *Company) error
	Delete(ctx context.Context, id string) error
	Count(ctx context.Context) (int, error)
}
