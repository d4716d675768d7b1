package usecase

import (
	"context"
	"time"

	"github.com/xavierca1/ligue-crm/internal/entity"
)

// DashboardUseCase derives counts from the store on every call.
type DashboardUseCase struct {
	Leads     entity.LeadRepository
	Tasks     entity.TaskRepository
	Companies entity.CompanyRepository
	Location  *time.Location
	Now       func() time.Time
}

func NewDashboardUseCase(leads entity.LeadRepository, tasks entity.TaskRepository, companies entity.CompanyRepository, loc *time.Location) *DashboardUseCase {
	if loc == nil {
		loc = time.UTC
	}
	return &DashboardUseCase{
		Leads:     leads,
		Tasks:     tasks,
		Companies: companies,
		Location:  loc,
		Now:       time.Now,
	}
}

func (uc *DashboardUseCase) Stats(ctx context.Context) (*DashboardStats, error) {
	var stats DashboardStats
	var err error

	if stats.TotalLeads, err = uc.Leads.Count(ctx); err != nil {
		return nil, internal("failed to count leads", err)
	}
	if stats.QualifiedLeads, err = uc.Leads.CountByStatus(ctx, entity.LeadStatusQualified); err != nil {
		return nil, internal("failed to count qualified leads", err)
	}

	start, end := DayBounds(uc.Now(), uc.Location)
	if stats.TasksDueToday, err = uc.Tasks.CountDueBetween(ctx, start, end); err != nil {
		return nil, internal("failed to count tasks due today", err)
	}
	if stats.CompletedTasks, err = uc.Tasks.CountByStatus(ctx, entity.TaskStatusCompleted); err != nil {
		return nil, internal("failed to count completed tasks", err)
	}
	if stats.TotalTasks, err = uc.Tasks.Count(ctx); err != nil {
		return nil, internal("failed to count tasks", err)
	}
	if stats.TotalCompanies, err = uc.Companies.Count(ctx); err != nil {
		return nil, internal("failed to count companies", err)
	}

	return &stats, nil
}

// DayBounds returns [start of day, start of next day) for now in loc.
func DayBounds(now time.Time, loc *time.Location) (time.Time, time.Time) {
	local := now.In(loc)
	start := time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, loc)
	return start, start.AddDate(0, 0, 1)
}
