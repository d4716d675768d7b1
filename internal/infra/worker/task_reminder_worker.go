package worker

import (
	"context"
	"log"
	"time"

	"github.com/xavierca1/ligue-crm/internal/entity"
	"github.com/xavierca1/ligue-crm/internal/usecase"
)

// TaskReminderWorker publishes a task.reminder event for every open task due today.
type TaskReminderWorker struct {
	tasks        entity.TaskRepository
	events       usecase.EventPublisher
	location     *time.Location
	tickInterval time.Duration
	now          func() time.Time
}

func NewTaskReminderWorker(tasks entity.TaskRepository, events usecase.EventPublisher, loc *time.Location, interval time.Duration) *TaskReminderWorker {
	if loc == nil {
		loc = time.UTC
	}
	if interval <= 0 {
		interval = 24 * time.Hour
	}
	return &TaskReminderWorker{
		tasks:        tasks,
		events:       events,
		location:     loc,
		tickInterval: interval,
		now:          time.Now,
	}
}

func (w *TaskReminderWorker) Start(ctx context.Context) {
	log.Printf("🕒 task reminder worker started (every %s)", w.tickInterval)

	ticker := time.NewTicker(w.tickInterval)
	defer ticker.Stop()

	w.remind(ctx)

	for {
		select {
		case <-ctx.Done():
			log.Println("⚠️ task reminder worker stopped")
			return
		case <-ticker.C:
			w.remind(ctx)
		}
	}
}

// remind returns the number of reminders published.
func (w *TaskReminderWorker) remind(ctx context.Context) int {
	start, end := usecase.DayBounds(w.now(), w.location)

	tasks, err := w.tasks.ListDueBetween(ctx, start, end)
	if err != nil {
		log.Printf("❌ failed to load tasks due today: %v", err)
		return 0
	}

	sent := 0
	for _, task := range tasks {
		if task.Status == entity.TaskStatusCompleted || task.AssignedTo == nil {
			continue
		}

		err := w.events.Publish(ctx, entity.ActivityEvent{
			Type:       entity.EventTaskReminder,
			EntityID:   task.ID,
			Title:      task.Title,
			Status:     string(task.Status),
			DueDate:    task.DueDate.In(w.location),
			Recipient:  task.AssignedTo.ID,
			Email:      task.AssignedTo.Email,
			Name:       task.AssignedTo.Name,
			OccurredAt: w.now().UTC(),
		})
		if err != nil {
			log.Printf("⚠️ reminder for task %s not published: %v", task.ID, err)
			continue
		}
		sent++
	}

	if sent > 0 {
		log.Printf("✅ %d task reminder(s) published", sent)
	}
	return sent
}
