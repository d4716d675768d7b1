package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/xavierca1/ligue-crm/internal/entity"
)

const leadSelect = `
	SELECT l.id, l.name, l.email, l.phone, l.status,
	       l.assigned_to, u.name, u.email,
	       l.company_id, c.name,
	       l.is_deleted, l.deleted_at, l.created_at, l.updated_at
	FROM leads l
	LEFT JOIN users u ON u.id = l.assigned_to
	LEFT JOIN companies c ON c.id = l.company_id`

type LeadRepository struct {
	DB *sql.DB
}

func NewLeadRepository(db *sql.DB) *LeadRepository {
	return &LeadRepository{DB: db}
}

func (r *LeadRepository) Create(ctx context.Context, lead *entity.Lead) error {
	if err := errors.Join(refID("assignedTo", lead.AssignedTo), refID("company", lead.Company)); err != nil {
		return err
	}
	query := `
		INSERT INTO leads (id, name, email, phone, status, assigned_to, company_id, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`

	_, err := r.DB.ExecContext(ctx, query,
		lead.ID,
		lead.Name,
		lead.Email,
		lead.Phone,
		lead.Status,
		nullRef(lead.AssignedTo),
		nullRef(lead.Company),
		lead.CreatedAt,
		lead.UpdatedAt,
	)
	if err != nil {
		return mapPgError(err)
	}
	return nil
}

func (r *LeadRepository) FindByID(ctx context.Context, id string) (*entity.Lead, error) {
	if !validID(id) {
		return nil, nil
	}
	where := leadScope().and("l.id = ?", id)

	lead, err := scanLead(r.DB.QueryRowContext(ctx, leadSelect+where.String(), where.args...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	return lead, err
}

// List returns one page ordered newest first plus the total number of matches.
func (r *LeadRepository) List(ctx context.Context, filter entity.LeadFilter) ([]*entity.Lead, int, error) {
	where, err := leadFilterClause(filter)
	if err != nil {
		return []*entity.Lead{}, 0, nil
	}

	var total int
	if err := r.DB.QueryRowContext(ctx, `SELECT COUNT(*) FROM leads l`+where.String(), where.args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := leadSelect + where.String() + ` ORDER BY l.created_at DESC, l.id DESC`
	args := where.args
	if filter.Limit > 0 {
		query += fmt.Sprintf(" LIMIT %d OFFSET %d", filter.Limit, max(filter.Offset, 0))
	}

	rows, err := r.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	leads := []*entity.Lead{}
	for rows.Next() {
		lead, err := scanLead(rows)
		if err != nil {
			return nil, 0, err
		}
		leads = append(leads, lead)
	}
	return leads, total, rows.Err()
}

var errNoMatch = errors.New("filter cannot match")

// leadFilterClause builds the WHERE clause for a listing. Ids that are not
// uuids cannot match any row, which is reported as errNoMatch.
func leadFilterClause(filter entity.LeadFilter) (*whereClause, error) {
	where := leadScope()
	if filter.Search != "" {
		where.and("(l.name ILIKE ? OR l.email ILIKE ?)", containsPattern(filter.Search))
	}
	if filter.Status != "" {
		where.and("l.status = ?", string(filter.Status))
	}
	if filter.AssignedTo != "" {
		if !validID(filter.AssignedTo) {
			return nil, errNoMatch
		}
		where.and("l.assigned_to = ?", filter.AssignedTo)
	}
	if filter.CompanyID != "" {
		if !validID(filter.CompanyID) {
			return nil, errNoMatch
		}
		where.and("l.company_id = ?", filter.CompanyID)
	}
	return where, nil
}

func (r *LeadRepository) Update(ctx context.Context, lead *entity.Lead) error {
	if err := errors.Join(refID("assignedTo", lead.AssignedTo), refID("company", lead.Company)); err != nil {
		return err
	}
	query := `
		UPDATE leads
		SET name = $2, email = $3, phone = $4, status = $5, assigned_to = $6, company_id = $7, updated_at = $8
		WHERE id = $1 AND is_deleted = false
	`

	res, err := r.DB.ExecContext(ctx, query,
		lead.ID,
		lead.Name,
		lead.Email,
		lead.Phone,
		lead.Status,
		nullRef(lead.AssignedTo),
		nullRef(lead.Company),
		lead.UpdatedAt,
	)
	if err != nil {
		return mapPgError(err)
	}
	return expectRow(res)
}

// SoftDelete flags the lead. A lead that is already deleted is not found.
func (r *LeadRepository) SoftDelete(ctx context.Context, id string, at time.Time) error {
	if !validID(id) {
		return entity.ErrRecordNotFound
	}
	query := `
		UPDATE leads
		SET is_deleted = true, deleted_at = $2, updated_at = $2
		WHERE id = $1 AND is_deleted = false
	`

	res, err := r.DB.ExecContext(ctx, query, id, at)
	if err != nil {
		return mapPgError(err)
	}
	return expectRow(res)
}

func (r *LeadRepository) Count(ctx context.Context) (int, error) {
	return r.count(ctx, leadScope())
}

func (r *LeadRepository) CountByStatus(ctx context.Context, status entity.LeadStatus) (int, error) {
	return r.count(ctx, leadScope().and("l.status = ?", string(status)))
}

func (r *LeadRepository) count(ctx context.Context, where *whereClause) (int, error) {
	var n int
	err := r.DB.QueryRowContext(ctx, `SELECT COUNT(*) FROM leads l`+where.String(), where.args...).Scan(&n)
	return n, err
}

func scanLead(s scanner) (*entity.Lead, error) {
	var (
		l                      entity.Lead
		assignedID, userName   sql.NullString
		userEmail              sql.NullString
		companyID, companyName sql.NullString
		deletedAt              sql.NullTime
	)

	err := s.Scan(
		&l.ID, &l.Name, &l.Email, &l.Phone, &l.Status,
		&assignedID, &userName, &userEmail,
		&companyID, &companyName,
		&l.IsDeleted, &deletedAt, &l.CreatedAt, &l.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if assignedID.Valid {
		l.AssignedTo = &entity.Ref{ID: assignedID.String, Name: userName.String, Email: userEmail.String}
	}
	if companyID.Valid {
		l.Company = &entity.Ref{ID: companyID.String, Name: companyName.String}
	}
	if deletedAt.Valid {
		l.DeletedAt = &deletedAt.Time
	}
	return &l, nil
}
