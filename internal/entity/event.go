package entity

import "time"

type EventType string

const (
	EventLeadCreated       EventType = "lead.created"
	EventLeadDeleted       EventType = "lead.deleted"
	EventTaskAssigned      EventType = "task.assigned"
	EventTaskStatusChanged EventType = "task.status_changed"
	EventTaskReminder      EventType = "task.reminder"
)

// ActivityEvent is the message published after a successful write.
// Recipient fields are filled for events that notify a user.
type ActivityEvent struct {
	Type       EventType `json:"type"`
	EntityID   string    `json:"entity_id"`
	ActorID    string    `json:"actor_id,omitempty"`
	Title      string    `json:"title,omitempty"`
	Status     string    `json:"status,omitempty"`
	DueDate    time.Time `json:"due_date,omitempty"`
	Recipient  string    `json:"recipient_id,omitempty"`
	Email      string    `json:"email,omitempty"`
	Name       string    `json:"name,omitempty"`
	OccurredAt time.Time `json:"occurred_at"`
}
