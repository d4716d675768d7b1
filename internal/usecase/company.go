package usecase

import (
	"context"
	"strings"
	"time"

	"github.com/xavierca1/ligue-crm/internal/entity"
)

const msgCompanyNotFound = "Company not found"

type CompanyUseCase struct {
	Companies entity.CompanyRepository
	Leads     entity.LeadRepository
}

func NewCompanyUseCase(companies entity.CompanyRepository, leads entity.LeadRepository) *CompanyUseCase {
	return &CompanyUseCase{Companies: companies, Leads: leads}
}

func (uc *CompanyUseCase) List(ctx context.Context) ([]*entity.Company, error) {
	companies, err := uc.Companies.List(ctx)
	if err != nil {
		return nil, internal("failed to list companies", err)
	}
	if companies == nil {
		companies = []*entity.Company{}
	}
	return companies, nil
}

// Get returns the company together with its visible leads.
func (uc *CompanyUseCase) Get(ctx context.Context, id string) (*CompanyDetail, error) {
	company, err := uc.Companies.FindByID(ctx, id)
	if err != nil {
		return nil, internal("failed to load company", err)
	}
	if company == nil {
		return nil, notFound(msgCompanyNotFound)
	}

	leads, _, err := uc.Leads.List(ctx, entity.LeadFilter{CompanyID: company.ID})
	if err != nil {
		return nil, internal("failed to load company leads", err)
	}
	if leads == nil {
		leads = []*entity.Lead{}
	}

	return &CompanyDetail{Company: company, Leads: leads}, nil
}

func (uc *CompanyUseCase) Create(ctx context.Context, input CreateCompanyInput) (*entity.Company, error) {
	if errs := ValidateCreateCompanyInput(input); len(errs) > 0 {
		return nil, newValidationError(errs)
	}

	company, err := entity.NewCompany(input.Name)
	if err != nil {
		return nil, newValidationError([]ValidationError{{"name", err.Error()}})
	}
	company.Industry = strings.TrimSpace(input.Industry)
	company.Location = strings.TrimSpace(input.Location)
	company.Website = strings.TrimSpace(input.Website)
	company.Phone = strings.TrimSpace(input.Phone)
	company.Description = strings.TrimSpace(input.Description)

	if err := uc.Companies.Create(ctx, company); err != nil {
		return nil, storeError(err, msgCompanyNotFound, "failed to create company")
	}
	return company, nil
}

func (uc *CompanyUseCase) Update(ctx context.Context, id string, input UpdateCompanyInput) (*entity.Company, error) {
	company, err := uc.Companies.FindByID(ctx, id)
	if err != nil {
		return nil, internal("failed to load company", err)
	}
	if company == nil {
		return nil, notFound(msgCompanyNotFound)
	}

	if input.Name != nil {
		company.Name = strings.TrimSpace(*input.Name)
	}
	if input.Industry != nil {
		company.Industry = strings.TrimSpace(*input.Industry)
	}
	if input.Location != nil {
		company.Location = strings.TrimSpace(*input.Location)
	}
	if input.Website != nil {
		company.Website = strings.TrimSpace(*input.Website)
	}
	if input.Phone != nil {
		company.Phone = strings.TrimSpace(*input.Phone)
	}
	if input.Description != nil {
		company.Description = strings.TrimSpace(*input.Description)
	}
	if err := company.Validate(); err != nil {
		return nil, newValidationError([]ValidationError{{"name", "is required"}})
	}
	company.UpdatedAt = time.Now().UTC()

	if err := uc.Companies.Update(ctx, company); err != nil {
		return nil, storeError(err, msgCompanyNotFound, "failed to update company")
	}
	return company, nil
}

// Delete removes the company. Leads that referenced it lose the reference.
func (uc *CompanyUseCase) Delete(ctx context.Context, id string) error {
	if err := uc.Companies.Delete(ctx, id); err != nil {
		return storeError(err, msgCompanyNotFound, "failed to delete company")
	}
	return nil
}
