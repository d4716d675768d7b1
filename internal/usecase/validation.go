package usecase

import (
	"fmt"
	"net/mail"
	"strings"
	"time"

	"github.com/xavierca1/ligue-crm/internal/entity"
)

type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func ValidateRegisterInput(input RegisterInput) []ValidationError {
	var errors []ValidationError

	if strings.TrimSpace(input.Name) == "" {
		errors = append(errors, ValidationError{"name", "is required"})
	}
	errors = append(errors, validateEmail(input.Email)...)
	if input.Password == "" {
		errors = append(errors, ValidationError{"password", "is required"})
	} else if len(input.Password) < 6 {
		errors = append(errors, ValidationError{"password", "must have at least 6 characters"})
	}

	return errors
}

func ValidateCreateLeadInput(input CreateLeadInput) []ValidationError {
	var errors []ValidationError

	if strings.TrimSpace(input.Name) == "" {
		errors = append(errors, ValidationError{"name", "is required"})
	}
	errors = append(errors, validateEmail(input.Email)...)
	if input.Status != "" && !entity.LeadStatus(input.Status).Valid() {
		errors = append(errors, ValidationError{"status", "must be one of " + joinStatuses(entity.LeadStatuses)})
	}

	return errors
}

// validateLead checks a lead after a partial update was applied to it.
func validateLead(lead *entity.Lead) []ValidationError {
	var errors []ValidationError

	if lead.Name == "" {
		errors = append(errors, ValidationError{"name", "is required"})
	}
	errors = append(errors, validateEmail(lead.Email)...)
	if !lead.Status.Valid() {
		errors = append(errors, ValidationError{"status", "must be one of " + joinStatuses(entity.LeadStatuses)})
	}

	return errors
}

func ValidateCreateCompanyInput(input CreateCompanyInput) []ValidationError {
	var errors []ValidationError

	if strings.TrimSpace(input.Name) == "" {
		errors = append(errors, ValidationError{"name", "is required"})
	}

	return errors
}

func ValidateCreateTaskInput(input CreateTaskInput) []ValidationError {
	var errors []ValidationError

	if strings.TrimSpace(input.Title) == "" {
		errors = append(errors, ValidationError{"title", "is required"})
	}
	if strings.TrimSpace(input.Lead) == "" {
		errors = append(errors, ValidationError{"lead", "is required"})
	}
	if strings.TrimSpace(input.AssignedTo) == "" {
		errors = append(errors, ValidationError{"assignedTo", "is required"})
	}
	if strings.TrimSpace(input.DueDate) == "" {
		errors = append(errors, ValidationError{"dueDate", "is required"})
	} else if _, err := parseDueDate(input.DueDate, time.UTC); err != nil {
		errors = append(errors, ValidationError{"dueDate", "must be a valid date (YYYY-MM-DD or RFC3339)"})
	}
	if input.Status != "" && !entity.TaskStatus(input.Status).Valid() {
		errors = append(errors, ValidationError{"status", "must be one of " + joinStatuses(entity.TaskStatuses)})
	}
	if input.Priority != "" && !entity.TaskPriority(input.Priority).Valid() {
		errors = append(errors, ValidationError{"priority", "must be one of " + joinStatuses(entity.TaskPriorities)})
	}

	return errors
}

func validateTask(task *entity.Task) []ValidationError {
	var errors []ValidationError

	if task.Title == "" {
		errors = append(errors, ValidationError{"title", "is required"})
	}
	if task.LeadID() == "" {
		errors = append(errors, ValidationError{"lead", "is required"})
	}
	if task.AssignedToID() == "" {
		errors = append(errors, ValidationError{"assignedTo", "is required"})
	}
	if task.DueDate.IsZero() {
		errors = append(errors, ValidationError{"dueDate", "is required"})
	}
	if !task.Status.Valid() {
		errors = append(errors, ValidationError{"status", "must be one of " + joinStatuses(entity.TaskStatuses)})
	}
	if !task.Priority.Valid() {
		errors = append(errors, ValidationError{"priority", "must be one of " + joinStatuses(entity.TaskPriorities)})
	}

	return errors
}

func validateEmail(email string) []ValidationError {
	email = strings.TrimSpace(email)
	if email == "" {
		return []ValidationError{{"email", "is required"}}
	}
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email {
		return []ValidationError{{"email", "is invalid"}}
	}
	return nil
}

// parseDueDate reads a date-only value as midnight in loc. Timestamps keep
// their own offset. Results are in UTC.
func parseDueDate(value string, loc *time.Location) (time.Time, error) {
	value = strings.TrimSpace(value)
	if t, err := time.ParseInLocation("2006-01-02", value, loc); err == nil {
		return t.UTC(), nil
	}
	if t, err := time.Parse(time.RFC3339Nano, value); err == nil {
		return t.UTC(), nil
	}
	return time.Time{}, fmt.Errorf("invalid date %q", value)
}

func joinStatuses[T ~string](values []T) string {
	parts := make([]string, len(values))
	for i, v := range values {
		parts[i] = string(v)
	}
	return strings.Join(parts, ", ")
}
