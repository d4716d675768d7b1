package database

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/xavierca1/ligue-crm/internal/entity"
)

const taskSelect = `
	SELECT t.id, t.title, t.description,
	       t.lead_id, l.name, l.email,
	       t.assigned_to, u.name, u.email,
	       t.due_date, t.status, t.priority, t.created_at, t.updated_at
	FROM tasks t
	LEFT JOIN leads l ON l.id = t.lead_id
	LEFT JOIN users u ON u.id = t.assigned_to`

const taskOrder = ` ORDER BY t.due_date ASC, t.created_at ASC`

type TaskRepository struct {
	DB *sql.DB
}

func NewTaskRepository(db *sql.DB) *TaskRepository {
	return &TaskRepository{DB: db}
}

func (r *TaskRepository) Create(ctx context.Context, t *entity.Task) error {
	if err := errors.Join(refID("lead", t.Lead), refID("assignedTo", t.AssignedTo)); err != nil {
		return err
	}
	query := `
		INSERT INTO tasks (id, title, description, lead_id, assigned_to, due_date, status, priority, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`

	_, err := r.DB.ExecContext(ctx, query,
		t.ID,
		t.Title,
		t.Description,
		nullRef(t.Lead),
		nullRef(t.AssignedTo),
		t.DueDate,
		t.Status,
		t.Priority,
		t.CreatedAt,
		t.UpdatedAt,
	)
	if err != nil {
		return mapPgError(err)
	}
	return nil
}

func (r *TaskRepository) FindByID(ctx context.Context, id string) (*entity.Task, error) {
	if !validID(id) {
		return nil, nil
	}
	task, err := scanTask(r.DB.QueryRowContext(ctx, taskSelect+` WHERE t.id = $1`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	return task, err
}

func (r *TaskRepository) List(ctx context.Context, filter entity.TaskFilter) ([]*entity.Task, error) {
	where := &whereClause{}
	if filter.Status != "" {
		where.and("t.status = ?", string(filter.Status))
	}
	if filter.AssignedTo != "" {
		if !validID(filter.AssignedTo) {
			return []*entity.Task{}, nil
		}
		where.and("t.assigned_to = ?", filter.AssignedTo)
	}
	return r.query(ctx, taskSelect+where.String()+taskOrder, where.args...)
}

func (r *TaskRepository) Update(ctx context.Context, t *entity.Task) error {
	if err := errors.Join(refID("lead", t.Lead), refID("assignedTo", t.AssignedTo)); err != nil {
		return err
	}
	query := `
		UPDATE tasks
		SET title = $2, description = $3, lead_id = $4, assigned_to = $5, due_date = $6,
		    status = $7, priority = $8, updated_at = $9
		WHERE id = $1
	`

	res, err := r.DB.ExecContext(ctx, query,
		t.ID,
		t.Title,
		t.Description,
		nullRef(t.Lead),
		nullRef(t.AssignedTo),
		t.DueDate,
		t.Status,
		t.Priority,
		t.UpdatedAt,
	)
	if err != nil {
		return mapPgError(err)
	}
	return expectRow(res)
}

// UpdateIfAssignee guards a full update with the stored assignee, like
// UpdateStatusIfAssignee does for the status alone.
func (r *TaskRepository) UpdateIfAssignee(ctx context.Context, t *entity.Task, assigneeID string) (bool, error) {
	if err := errors.Join(refID("lead", t.Lead), refID("assignedTo", t.AssignedTo)); err != nil {
		return false, err
	}
	if !validID(t.ID) || !validID(assigneeID) {
		return false, nil
	}
	query := `
		UPDATE tasks
		SET title = $2, description = $3, lead_id = $4, assigned_to = $5, due_date = $6,
		    status = $7, priority = $8, updated_at = $9
		WHERE id = $1 AND assigned_to = $10
	`

	res, err := r.DB.ExecContext(ctx, query,
		t.ID,
		t.Title,
		t.Description,
		nullRef(t.Lead),
		nullRef(t.AssignedTo),
		t.DueDate,
		t.Status,
		t.Priority,
		t.UpdatedAt,
		assigneeID,
	)
	if err != nil {
		return false, mapPgError(err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// UpdateStatusIfAssignee is a single conditional UPDATE, so a concurrent
// reassignment makes it match zero rows instead of writing.
func (r *TaskRepository) UpdateStatusIfAssignee(ctx context.Context, id, assigneeID string, status entity.TaskStatus, at time.Time) (bool, error) {
	if !validID(id) || !validID(assigneeID) {
		return false, nil
	}
	res, err := r.DB.ExecContext(ctx,
		`UPDATE tasks SET status = $3, updated_at = $4 WHERE id = $1 AND assigned_to = $2`,
		id, assigneeID, status, at,
	)
	if err != nil {
		return false, mapPgError(err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func (r *TaskRepository) Delete(ctx context.Context, id string) error {
	if !validID(id) {
		return entity.ErrRecordNotFound
	}
	res, err := r.DB.ExecContext(ctx, `DELETE FROM tasks WHERE id = $1`, id)
	if err != nil {
		return mapPgError(err)
	}
	return expectRow(res)
}

func (r *TaskRepository) Count(ctx context.Context) (int, error) {
	var n int
	err := r.DB.QueryRowContext(ctx, `SELECT COUNT(*) FROM tasks`).Scan(&n)
	return n, err
}

func (r *TaskRepository) CountByStatus(ctx context.Context, status entity.TaskStatus) (int, error) {
	var n int
	err := r.DB.QueryRowContext(ctx, `SELECT COUNT(*) FROM tasks WHERE status = $1`, status).Scan(&n)
	return n, err
}

func (r *TaskRepository) ListDueBetween(ctx context.Context, from, to time.Time) ([]*entity.Task, error) {
	return r.query(ctx, taskSelect+` WHERE t.due_date >= $1 AND t.due_date < $2`+taskOrder, from, to)
}

func (r *TaskRepository) CountDueBetween(ctx context.Context, from, to time.Time) (int, error) {
	var n int
	err := r.DB.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM tasks WHERE due_date >= $1 AND due_date < $2`, from, to,
	).Scan(&n)
	return n, err
}

func (r *TaskRepository) query(ctx context.Context, query string, args ...any) ([]*entity.Task, error) {
	rows, err := r.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	tasks := []*entity.Task{}
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, t)
	}
	return tasks, rows.Err()
}

func scanTask(s scanner) (*entity.Task, error) {
	var (
		t                   entity.Task
		leadName, leadEmail sql.NullString
		userName, userEmail sql.NullString
		leadID, assigneeID  string
	)

	err := s.Scan(
		&t.ID, &t.Title, &t.Description,
		&leadID, &leadName, &leadEmail,
		&assigneeID, &userName, &userEmail,
		&t.DueDate, &t.Status, &t.Priority, &t.CreatedAt, &t.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	t.Lead = &entity.Ref{ID: leadID, Name: leadName.String, Email: leadEmail.String}
	t.AssignedTo = &entity.Ref{ID: assigneeID, Name: userName.String, Email: userEmail.String}
	t.DueDate = t.DueDate.UTC()
	return &t, nil
}
