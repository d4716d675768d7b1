package usecase_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xavierca1/ligue-crm/internal/entity"
	"github.com/xavierca1/ligue-crm/internal/infra/memory"
	"github.com/xavierca1/ligue-crm/internal/usecase"
)

func TestDashboardStats(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	owner := seedUser(t, store, "Owner")
	leads := usecase.NewLeadUseCase(store.Leads(), nil)
	tasks := usecase.NewTaskUseCase(store.Tasks(), nil, time.UTC)
	companies := usecase.NewCompanyUseCase(store.Companies(), store.Leads())

	var first *entity.Lead
	for i, input := range []usecase.CreateLeadInput{
		{Name: "Ann", Email: "ann@example.com", Status: "Qualified"},
		{Name: "Bob", Email: "bob@example.com"},
		{Name: "Cid", Email: "cid@example.com", Status: "Won"},
	} {
		lead, err := leads.Create(ctx, owner.ID, input)
		require.NoError(t, err)
		if i == 0 {
			first = lead
		}
	}
	deleted, err := leads.Create(ctx, owner.ID, usecase.CreateLeadInput{Name: "Gone", Email: "gone@example.com", Status: "Qualified"})
	require.NoError(t, err)
	require.NoError(t, leads.Delete(ctx, owner.ID, deleted.ID))

	_, err = companies.Create(ctx, usecase.CreateCompanyInput{Name: "Acme"})
	require.NoError(t, err)

	today, err := tasks.Create(ctx, owner.ID, usecase.CreateTaskInput{Title: "Today", Lead: first.ID, AssignedTo: owner.ID, DueDate: "2026-03-10T09:30:00Z"})
	require.NoError(t, err)
	_, err = tasks.UpdateStatus(ctx, owner.ID, today.ID, usecase.UpdateTaskStatusInput{Status: "Completed"})
	require.NoError(t, err)
	_, err = tasks.Create(ctx, owner.ID, usecase.CreateTaskInput{Title: "Tomorrow", Lead: first.ID, AssignedTo: owner.ID, DueDate: "2026-03-11"})
	require.NoError(t, err)

	uc := usecase.NewDashboardUseCase(store.Leads(), store.Tasks(), store.Companies(), time.UTC)
	uc.Now = func() time.Time { return time.Date(2026, 3, 10, 15, 0, 0, 0, time.UTC) }

	stats, err := uc.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, usecase.DashboardStats{
		TotalLeads:     3,
		QualifiedLeads: 1,
		TasksDueToday:  1,
		CompletedTasks: 1,
		TotalCompanies: 1,
		TotalTasks:     2,
	}, *stats)
}

func TestDashboardTasksDueTodayWestOfUTC(t *testing.T) {
	ctx := context.Background()
	loc := time.FixedZone("BRT", -3*60*60)
	store := memory.NewStore()
	owner := seedUser(t, store, "Owner")
	lead, err := usecase.NewLeadUseCase(store.Leads(), nil).Create(ctx, owner.ID, usecase.CreateLeadInput{Name: "Ann", Email: "ann@example.com"})
	require.NoError(t, err)

	tasks := usecase.NewTaskUseCase(store.Tasks(), nil, loc)
	task, err := tasks.Create(ctx, owner.ID, usecase.CreateTaskInput{Title: "Call", Lead: lead.ID, AssignedTo: owner.ID, DueDate: "2026-03-10"})
	require.NoError(t, err)
	assert.True(t, task.DueDate.Equal(time.Date(2026, 3, 10, 0, 0, 0, 0, loc)))

	uc := usecase.NewDashboardUseCase(store.Leads(), store.Tasks(), store.Companies(), loc)
	for _, now := range []time.Time{
		time.Date(2026, 3, 10, 0, 0, 0, 0, loc),
		time.Date(2026, 3, 10, 12, 0, 0, 0, loc),
		time.Date(2026, 3, 10, 23, 59, 0, 0, loc),
	} {
		uc.Now = func() time.Time { return now }
		stats, err := uc.Stats(ctx)
		require.NoError(t, err)
		assert.Equal(t, 1, stats.TasksDueToday, now.String())
	}

	uc.Now = func() time.Time { return time.Date(2026, 3, 9, 23, 0, 0, 0, loc) }
	stats, err := uc.Stats(ctx)
	require.NoError(t, err)
	assert.Zero(t, stats.TasksDueToday)
}

func TestDayBounds(t *testing.T) {
	loc := time.FixedZone("BRT", -3*60*60)
	now := time.Date(2026, 3, 11, 1, 0, 0, 0, time.UTC)

	start, end := usecase.DayBounds(now, loc)

	assert.Equal(t, time.Date(2026, 3, 10, 0, 0, 0, 0, loc), start)
	assert.Equal(t, 24*time.Hour, end.Sub(start))
}
