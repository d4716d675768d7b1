package usecase

import (
	"context"
	"errors"
	"math"
	"strings"
	"time"

	"github.com/xavierca1/ligue-crm/internal/entity"
)

const msgLeadNotFound = "Lead not found"

type LeadUseCase struct {
	Leads  entity.LeadRepository
	Events EventPublisher
}

func NewLeadUseCase(leads entity.LeadRepository, events EventPublisher) *LeadUseCase {
	if events == nil {
		events = NoopPublisher{}
	}
	return &LeadUseCase{Leads: leads, Events: events}
}

// List returns one page of visible leads, newest first.
func (uc *LeadUseCase) List(ctx context.Context, input ListLeadsInput) (*LeadPage, error) {
	page := input.Page
	if page < 1 {
		page = DefaultPage
	}
	limit := input.Limit
	if limit < 1 {
		limit = DefaultLimit
	}
	if limit > MaxLimit {
		limit = MaxLimit
	}
	// past this page the offset no longer fits in an int; every such page is empty anyway
	if maxPage := math.MaxInt/limit + 1; page > maxPage {
		page = maxPage
	}

	status := entity.LeadStatus(strings.TrimSpace(input.Status))
	if status != "" && !status.Valid() {
		return nil, newValidationError([]ValidationError{{"status", "must be one of " + joinStatuses(entity.LeadStatuses)}})
	}

	leads, total, err := uc.Leads.List(ctx, entity.LeadFilter{
		Search:     strings.TrimSpace(input.Search),
		Status:     status,
		AssignedTo: strings.TrimSpace(input.AssignedTo),
		Offset:     (page - 1) * limit,
		Limit:      limit,
	})
	if err != nil {
		return nil, internal("failed to list leads", err)
	}
	if leads == nil {
		leads = []*entity.Lead{}
	}

	return &LeadPage{
		Leads: leads,
		Pagination: Pagination{
			CurrentPage: page,
			TotalPages:  (total + limit - 1) / limit,
			TotalLeads:  total,
			Limit:       limit,
		},
	}, nil
}

func (uc *LeadUseCase) Get(ctx context.Context, id string) (*entity.Lead, error) {
	lead, err := uc.Leads.FindByID(ctx, id)
	if err != nil {
		return nil, internal("failed to load lead", err)
	}
	if lead == nil {
		return nil, notFound(msgLeadNotFound)
	}
	return lead, nil
}

func (uc *LeadUseCase) Create(ctx context.Context, actorID string, input CreateLeadInput) (*entity.Lead, error) {
	if errs := ValidateCreateLeadInput(input); len(errs) > 0 {
		return nil, newValidationError(errs)
	}

	lead, err := entity.NewLead(input.Name, input.Email, input.Phone)
	if err != nil {
		return nil, newValidationError([]ValidationError{{"lead", err.Error()}})
	}
	if input.Status != "" {
		lead.Status = entity.LeadStatus(input.Status)
	}
	lead.AssignedTo = entity.NewRef(strings.TrimSpace(input.AssignedTo))
	lead.Company = entity.NewRef(strings.TrimSpace(input.Company))

	if err := uc.Leads.Create(ctx, lead); err != nil {
		return nil, storeError(err, msgLeadNotFound, "failed to create lead")
	}

	publish(ctx, uc.Events, entity.ActivityEvent{
		Type:     entity.EventLeadCreated,
		EntityID: lead.ID,
		ActorID:  actorID,
		Name:     lead.Name,
		Email:    lead.Email,
		Status:   string(lead.Status),
	})

	return uc.reload(ctx, lead), nil
}

func (uc *LeadUseCase) Update(ctx context.Context, id string, input UpdateLeadInput) (*entity.Lead, error) {
	lead, err := uc.Leads.FindByID(ctx, id)
	if err != nil {
		return nil, internal("failed to load lead", err)
	}
	if lead == nil {
		return nil, notFound(msgLeadNotFound)
	}

	applyLeadPatch(lead, input)
	if errs := validateLead(lead); len(errs) > 0 {
		return nil, newValidationError(errs)
	}
	lead.UpdatedAt = time.Now().UTC()

	if err := uc.Leads.Update(ctx, lead); err != nil {
		return nil, storeError(err, msgLeadNotFound, "failed to update lead")
	}

	return uc.reload(ctx, lead), nil
}

// Delete hides the lead from every read path. Deleting twice reports NotFound.
func (uc *LeadUseCase) Delete(ctx context.Context, actorID, id string) error {
	if err := uc.Leads.SoftDelete(ctx, id, time.Now().UTC()); err != nil {
		return storeError(err, msgLeadNotFound, "failed to delete lead")
	}

	publish(ctx, uc.Events, entity.ActivityEvent{
		Type:     entity.EventLeadDeleted,
		EntityID: id,
		ActorID:  actorID,
	})
	return nil
}

// reload re-reads lead so reference labels are filled. Falls back to lead itself.
func (uc *LeadUseCase) reload(ctx context.Context, lead *entity.Lead) *entity.Lead {
	fresh, err := uc.Leads.FindByID(ctx, lead.ID)
	if err != nil || fresh == nil {
		return lead
	}
	return fresh
}

func applyLeadPatch(lead *entity.Lead, input UpdateLeadInput) {
	if input.Name != nil {
		lead.Name = strings.TrimSpace(*input.Name)
	}
	if input.Email != nil {
		lead.Email = entity.NormalizeEmail(*input.Email)
	}
	if input.Phone != nil {
		lead.Phone = strings.TrimSpace(*input.Phone)
	}
	if input.Status != nil {
		lead.Status = entity.LeadStatus(strings.TrimSpace(*input.Status))
	}
	if input.AssignedTo != nil {
		lead.AssignedTo = entity.NewRef(strings.TrimSpace(*input.AssignedTo))
	}
	if input.Company != nil {
		lead.Company = entity.NewRef(strings.TrimSpace(*input.Company))
	}
}

// storeError translates repository sentinels into domain errors.
func storeError(err error, notFoundMsg, failMsg string) error {
	switch {
	case errors.Is(err, entity.ErrRecordNotFound):
		return notFound(notFoundMsg)
	case errors.Is(err, entity.ErrInvalidReference):
		field := "reference"
		var refErr *entity.ReferenceError
		if errors.As(err, &refErr) {
			field = refErr.Field
		}
		return newValidationError([]ValidationError{{field, "points to a record that does not exist"}})
	default:
		return internal(failMsg, err)
	}
}
