package worker

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/xavierca1/ligue-crm/internal/entity"
	"github.com/xavierca1/ligue-crm/internal/infra/memory"
	"github.com/xavierca1/ligue-crm/internal/usecase"
)

// MockEventPublisher
type MockEventPublisher struct {
	mock.Mock
}

func (m *MockEventPublisher) Publish(ctx context.Context, event entity.ActivityEvent) error {
	return m.Called(ctx, event).Error(0)
}

func TestTaskReminderWorkerPublishesOpenTasksDueToday(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()

	user, err := entity.NewUser("U1", "u1@example.com", "hash")
	require.NoError(t, err)
	require.NoError(t, store.Users().Create(ctx, user))
	lead, err := entity.NewLead("Ann", "ann@example.com", "")
	require.NoError(t, err)
	require.NoError(t, store.Leads().Create(ctx, lead))

	tasks := usecase.NewTaskUseCase(store.Tasks(), nil, time.UTC)
	create := func(title, due string) *entity.Task {
		task, err := tasks.Create(ctx, user.ID, usecase.CreateTaskInput{Title: title, Lead: lead.ID, AssignedTo: user.ID, DueDate: due})
		require.NoError(t, err)
		return task
	}
	open := create("Open today", "2026-03-10T14:00:00Z")
	done := create("Done today", "2026-03-10T09:00:00Z")
	create("Tomorrow", "2026-03-11")
	_, err = tasks.UpdateStatus(ctx, user.ID, done.ID, usecase.UpdateTaskStatusInput{Status: "Completed"})
	require.NoError(t, err)

	events := new(MockEventPublisher)
	events.On("Publish", mock.Anything, mock.MatchedBy(func(e entity.ActivityEvent) bool {
		return e.Type == entity.EventTaskReminder && e.EntityID == open.ID && e.Email == "u1@example.com"
	})).Return(nil).Once()

	w := NewTaskReminderWorker(store.Tasks(), events, time.UTC, time.Hour)
	w.now = func() time.Time { return time.Date(2026, 3, 10, 8, 0, 0, 0, time.UTC) }

	assert.Equal(t, 1, w.remind(ctx))
	events.AssertExpectations(t)
}

func TestTaskReminderWorkerStopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	w := NewTaskReminderWorker(memory.NewStore().Tasks(), new(MockEventPublisher), nil, time.Hour)

	done := make(chan struct{})
	go func() {
		w.Start(ctx)
		close(done)
	}()
	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("worker did not stop")
	}
}

func TestTaskReminderWorkerUsesLocalDay(t *testing.T) {
	ctx := context.Background()
	loc := time.FixedZone("BRT", -3*60*60)
	store := memory.NewStore()

	user, err := entity.NewUser("U1", "u1@example.com", "hash")
	require.NoError(t, err)
	require.NoError(t, store.Users().Create(ctx, user))
	lead, err := entity.NewLead("Ann", "ann@example.com", "")
	require.NoError(t, err)
	require.NoError(t, store.Leads().Create(ctx, lead))

	tasks := usecase.NewTaskUseCase(store.Tasks(), nil, loc)
	task, err := tasks.Create(ctx, user.ID, usecase.CreateTaskInput{Title: "Call", Lead: lead.ID, AssignedTo: user.ID, DueDate: "2026-03-10"})
	require.NoError(t, err)

	events := new(MockEventPublisher)
	events.On("Publish", mock.Anything, mock.MatchedBy(func(e entity.ActivityEvent) bool {
		return e.EntityID == task.ID && e.DueDate.Format("2006-01-02") == "2026-03-10"
	})).Return(nil).Once()

	w := NewTaskReminderWorker(store.Tasks(), events, loc, time.Hour)
	// 22:00 local is already the next day in UTC
	w.now = func() time.Time { return time.Date(2026, 3, 10, 22, 0, 0, 0, loc) }

	assert.Equal(t, 1, w.remind(ctx))
	events.AssertExpectations(t)
}
