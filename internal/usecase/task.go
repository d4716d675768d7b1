package usecase

import (
	"context"
	"strings"
	"time"

	"github.com/xavierca1/ligue-crm/internal/entity"
)

const (
	msgTaskNotFound  = "Task not found"
	msgTaskForbidden = "Not authorized to update this task status"
)

type TaskUseCase struct {
	Tasks  entity.TaskRepository
	Events EventPublisher
	// Location is where a date-only due date starts. It must match the
	// location the dashboard and the reminder worker use for "today".
	Location *time.Location
}

func NewTaskUseCase(tasks entity.TaskRepository, events EventPublisher, loc *time.Location) *TaskUseCase {
	if events == nil {
		events = NoopPublisher{}
	}
	if loc == nil {
		loc = time.UTC
	}
	return &TaskUseCase{Tasks: tasks, Events: events, Location: loc}
}

// List returns every matching task ordered by due date, soonest first.
func (uc *TaskUseCase) List(ctx context.Context, input ListTasksInput) ([]*entity.Task, error) {
	status := entity.TaskStatus(strings.TrimSpace(input.Status))
	if status != "" && !status.Valid() {
		return nil, newValidationError([]ValidationError{{"status", "must be one of " + joinStatuses(entity.TaskStatuses)}})
	}

	tasks, err := uc.Tasks.List(ctx, entity.TaskFilter{
		Status:     status,
		AssignedTo: strings.TrimSpace(input.AssignedTo),
	})
	if err != nil {
		return nil, internal("failed to list tasks", err)
	}
	if tasks == nil {
		tasks = []*entity.Task{}
	}
	return tasks, nil
}

func (uc *TaskUseCase) Get(ctx context.Context, id string) (*entity.Task, error) {
	task, err := uc.Tasks.FindByID(ctx, id)
	if err != nil {
		return nil, internal("failed to load task", err)
	}
	if task == nil {
		return nil, notFound(msgTaskNotFound)
	}
	return task, nil
}

func (uc *TaskUseCase) Create(ctx context.Context, actorID string, input CreateTaskInput) (*entity.Task, error) {
	if errs := ValidateCreateTaskInput(input); len(errs) > 0 {
		return nil, newValidationError(errs)
	}

	due, _ := parseDueDate(input.DueDate, uc.Location)
	task, err := entity.NewTask(input.Title, input.Description, strings.TrimSpace(input.Lead), strings.TrimSpace(input.AssignedTo), due)
	if err != nil {
		return nil, newValidationError([]ValidationError{{"task", err.Error()}})
	}
	if input.Status != "" {
		task.Status = entity.TaskStatus(input.Status)
	}
	if input.Priority != "" {
		task.Priority = entity.TaskPriority(input.Priority)
	}

	if err := uc.Tasks.Create(ctx, task); err != nil {
		return nil, storeError(err, msgTaskNotFound, "failed to create task")
	}

	task = uc.reload(ctx, task)
	uc.publishAssigned(ctx, actorID, task)
	return task, nil
}

// Update replaces any subset of fields. Any authenticated user may edit a task,
// but a status change is held to the same rule as UpdateStatus: only the
// assignee stored before this update may make it.
func (uc *TaskUseCase) Update(ctx context.Context, actorID, id string, input UpdateTaskInput) (*entity.Task, error) {
	task, err := uc.Tasks.FindByID(ctx, id)
	if err != nil {
		return nil, internal("failed to load task", err)
	}
	if task == nil {
		return nil, notFound(msgTaskNotFound)
	}

	previousAssignee := task.AssignedToID()
	previousStatus := task.Status
	mayTransition := entity.CanTransition(task, actorID)

	if errs := applyTaskPatch(task, input, uc.Location); len(errs) > 0 {
		return nil, newValidationError(errs)
	}
	if errs := validateTask(task); len(errs) > 0 {
		return nil, newValidationError(errs)
	}

	statusChanged := task.Status != previousStatus
	if statusChanged && !mayTransition {
		return nil, forbidden(msgTaskForbidden)
	}
	task.UpdatedAt = time.Now().UTC()

	if statusChanged {
		ok, err := uc.Tasks.UpdateIfAssignee(ctx, task, previousAssignee)
		if err != nil {
			return nil, storeError(err, msgTaskNotFound, "failed to update task")
		}
		if !ok {
			return nil, uc.statusDenied(ctx, id)
		}
	} else if err := uc.Tasks.Update(ctx, task); err != nil {
		return nil, storeError(err, msgTaskNotFound, "failed to update task")
	}

	task = uc.reload(ctx, task)
	if task.AssignedToID() != previousAssignee {
		uc.publishAssigned(ctx, actorID, task)
	}
	if statusChanged {
		uc.publishStatusChanged(ctx, actorID, task)
	}
	return task, nil
}

// UpdateStatus lets the assignee, and only the assignee, move a task through its statuses.
func (uc *TaskUseCase) UpdateStatus(ctx context.Context, actorID, id string, input UpdateTaskStatusInput) (*entity.Task, error) {
	status := entity.TaskStatus(strings.TrimSpace(input.Status))
	if !status.Valid() {
		return nil, newValidationError([]ValidationError{{"status", "must be one of " + joinStatuses(entity.TaskStatuses)}})
	}

	task, err := uc.Tasks.FindByID(ctx, id)
	if err != nil {
		return nil, internal("failed to load task", err)
	}
	if task == nil {
		return nil, notFound(msgTaskNotFound)
	}
	if !entity.CanTransition(task, actorID) {
		return nil, forbidden(msgTaskForbidden)
	}

	// the write re-checks the assignee so a reassignment in between is not overwritten
	ok, err := uc.Tasks.UpdateStatusIfAssignee(ctx, id, actorID, status, time.Now().UTC())
	if err != nil {
		return nil, internal("failed to update task status", err)
	}
	if !ok {
		return nil, uc.statusDenied(ctx, id)
	}

	task.Status = status
	task = uc.reload(ctx, task)
	uc.publishStatusChanged(ctx, actorID, task)
	return task, nil
}

// statusDenied explains a guarded write that matched nothing: the task is
// gone or belongs to someone else now.
func (uc *TaskUseCase) statusDenied(ctx context.Context, id string) error {
	current, err := uc.Tasks.FindByID(ctx, id)
	if err != nil {
		return internal("failed to load task", err)
	}
	if current == nil {
		return notFound(msgTaskNotFound)
	}
	return forbidden(msgTaskForbidden)
}

func (uc *TaskUseCase) Delete(ctx context.Context, id string) error {
	if err := uc.Tasks.Delete(ctx, id); err != nil {
		return storeError(err, msgTaskNotFound, "failed to delete task")
	}
	return nil
}

func (uc *TaskUseCase) reload(ctx context.Context, task *entity.Task) *entity.Task {
	fresh, err := uc.Tasks.FindByID(ctx, task.ID)
	if err != nil || fresh == nil {
		return task
	}
	return fresh
}

func (uc *TaskUseCase) publishAssigned(ctx context.Context, actorID string, task *entity.Task) {
	publish(ctx, uc.Events, entity.ActivityEvent{
		Type:      entity.EventTaskAssigned,
		EntityID:  task.ID,
		ActorID:   actorID,
		Title:     task.Title,
		Status:    string(task.Status),
		DueDate:   task.DueDate.In(uc.Location),
		Recipient: task.AssignedToID(),
		Email:     task.AssignedTo.Email,
		Name:      task.AssignedTo.Name,
	})
}

func (uc *TaskUseCase) publishStatusChanged(ctx context.Context, actorID string, task *entity.Task) {
	publish(ctx, uc.Events, entity.ActivityEvent{
		Type:     entity.EventTaskStatusChanged,
		EntityID: task.ID,
		ActorID:  actorID,
		Title:    task.Title,
		Status:   string(task.Status),
	})
}

func applyTaskPatch(task *entity.Task, input UpdateTaskInput, loc *time.Location) []ValidationError {
	var errors []ValidationError

	if input.Title != nil {
		task.Title = strings.TrimSpace(*input.Title)
	}
	if input.Description != nil {
		task.Description = strings.TrimSpace(*input.Description)
	}
	if input.Lead != nil {
		task.Lead = entity.NewRef(strings.TrimSpace(*input.Lead))
	}
	if input.AssignedTo != nil {
		task.AssignedTo = entity.NewRef(strings.TrimSpace(*input.AssignedTo))
	}
	if input.DueDate != nil {
		due, err := parseDueDate(*input.DueDate, loc)
		if err != nil {
			errors = append(errors, ValidationError{"dueDate", "must be a valid date (YYYY-MM-DD or RFC3339)"})
		} else {
			task.DueDate = due
		}
	}
	if input.Status != nil {
		task.Status = entity.TaskStatus(strings.TrimSpace(*input.Status))
	}
	if input.Priority != nil {
		task.Priority = entity.TaskPriority(strings.TrimSpace(*input.Priority))
	}

	return errors
}
