package entity

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
)

type TaskStatus string

const (
	TaskStatusPending    TaskStatus = "Pending"
	TaskStatusInProgress TaskStatus = "In Progress"
	TaskStatusCompleted  TaskStatus = "Completed"
)

var TaskStatuses = []TaskStatus{TaskStatusPending, TaskStatusInProgress, TaskStatusCompleted}

func (s TaskStatus) Valid() bool {
	for _, v := range TaskStatuses {
		if s == v {
			return true
		}
	}
	return false
}

type TaskPriority string

const (
	TaskPriorityLow    TaskPriority = "Low"
	TaskPriorityMedium TaskPriority = "Medium"
	TaskPriorityHigh   TaskPriority = "High"
)

var TaskPriorities = []TaskPriority{TaskPriorityLow, TaskPriorityMedium, TaskPriorityHigh}

func (p TaskPriority) Valid() bool {
	for _, v := range TaskPriorities {
		if p == v {
			return true
		}
	}
	return false
}

// Task is a follow-up on a lead owned by one assignee. Tasks are hard deleted.
type Task struct {
	ID          string       `json:"id"`
	Title       string       `json:"title"`
	Description string       `json:"description,omitempty"`
	Lead        *Ref         `json:"lead"`
	AssignedTo  *Ref         `json:"assignedTo"`
	DueDate     time.Time    `json:"dueDate"`
	Status      TaskStatus   `json:"status"`
	Priority    TaskPriority `json:"priority"`
	CreatedAt   time.Time    `json:"createdAt"`
	UpdatedAt   time.Time    `json:"updatedAt"`
}

func NewTask(title, description, leadID, assignedTo string, dueDate time.Time) (*Task, error) {
	now := time.Now().UTC()
	task := &Task{
		ID:          uuid.New().String(),
		Title:       strings.TrimSpace(title),
		Description: strings.TrimSpace(description),
		Lead:        NewRef(leadID),
		AssignedTo:  NewRef(assignedTo),
		DueDate:     dueDate,
		Status:      TaskStatusPending,
		Priority:    TaskPriorityMedium,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := task.Validate(); err != nil {
		return nil, err
	}

	return task, nil
}

func (t *Task) Validate() error {
	if t.Title == "" {
		return errors.New("title is required")
	}
	if t.Lead.RefID() == "" {
		return errors.New("lead is required")
	}
	if t.AssignedTo.RefID() == "" {
		return errors.New("assignedTo is required")
	}
	if t.DueDate.IsZero() {
		return errors.New("dueDate is required")
	}
	if !t.Status.Valid() {
		return errors.New("status is invalid")
	}
	if !t.Priority.Valid() {
		return errors.New("priority is invalid")
	}
	return nil
}

func (t *Task) LeadID() string {
	return t.Lead.RefID()
}

func (t *Task) AssignedToID() string {
	return t.AssignedTo.RefID()
}

// CanTransition reports whether actingUserID may change the status of task.
// Only the assignee can.
func CanTransition(task *Task, actingUserID string) bool {
	if task == nil || actingUserID == "" {
		return false
	}
	return task.AssignedToID() == actingUserID
}

type TaskFilter struct {
	Status     TaskStatus
	AssignedTo string
}

type TaskRepository interface {
	Create(ctx context.Context, task *Task) error
	FindByID(ctx context.Context, id string) (*Task, error)
	List(ctx context.Context, filter TaskFilter) ([]*Task, error)
	Update(ctx context.Context, task *Task) error
	// UpdateIfAssignee writes every field of task only when the stored task is
	// still assigned to assigneeID. It reports false when no row matched.
	UpdateIfAssignee(ctx context.Context, task *Task, assigneeID string) (bool, error)
	// UpdateStatusIfAssignee writes status only when the task is still assigned
	// to assigneeID. It reports false when no row matched.
	UpdateStatusIfAssignee(ctx context.Context, id, assigneeID string, status TaskStatus, at time.Time) (bool, error)
	Delete(ctx context.Context, id string) error
	Count(ctx context.Context) (int, error)
	CountByStatus(ctx context.Context, status TaskStatus) (int, error)
	// ListDueBetween returns tasks with from <= dueDate < to.
	ListDueBetween(ctx context.Context, from, to time.Time) ([]*Task, error)
	CountDueBetween(ctx context.Context, from, to time.Time) (int, error)
}
