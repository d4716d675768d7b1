package database

import (
	"context"
	"database/sql"
	"errors"

	"github.com/xavierca1/ligue-crm/internal/entity"
)

const companyColumns = `id, name, industry, location, website, phone, description, created_at, updated_at`

type CompanyRepository struct {
	DB *sql.DB
}

func NewCompanyRepository(db *sql.DB) *CompanyRepository {
	return &CompanyRepository{DB: db}
}

func (r *CompanyRepository) Create(ctx context.Context, c *entity.Company) error {
	query := `
		INSERT INTO companies (id, name, industry, location, website, phone, description, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`

	_, err := r.DB.ExecContext(ctx, query,
		c.ID, c.Name, c.Industry, c.Location, c.Website, c.Phone, c.Description, c.CreatedAt, c.UpdatedAt,
	)
	if err != nil {
		return mapPgError(err)
	}
	return nil
}

func (r *CompanyRepository) FindByID(ctx context.Context, id string) (*entity.Company, error) {
	if !validID(id) {
		return nil, nil
	}
	row := r.DB.QueryRowContext(ctx, `SELECT `+companyColumns+` FROM companies WHERE id = $1`, id)

	c, err := scanCompany(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	return c, err
}

func (r *CompanyRepository) List(ctx context.Context) ([]*entity.Company, error) {
	rows, err := r.DB.QueryContext(ctx, `SELECT `+companyColumns+` FROM companies ORDER BY created_at DESC, id DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var companies []*entity.Company
	for rows.Next() {
		c, err := scanCompany(rows)
		if err != nil {
			return nil, err
		}
		companies = append(companies, c)
	}
	return companies, rows.Err()
}

func (r *CompanyRepository) Update(ctx context.Context, c *entity.Company) error {
	query := `
		UPDATE companies
		SET name = $2, industry = $3, location = $4, website = $5, phone = $6, description = $7, updated_at = $8
		WHERE id = $1
	`

	res, err := r.DB.ExecContext(ctx, query,
		c.ID, c.Name, c.Industry, c.Location, c.Website, c.Phone, c.Description, c.UpdatedAt,
	)
	if err != nil {
		return mapPgError(err)
	}
	return expectRow(res)
}

// Delete removes the company. The schema clears leads.company_id.
func (r *CompanyRepository) Delete(ctx context.Context, id string) error {
	if !validID(id) {
		return entity.ErrRecordNotFound
	}
	res, err := r.DB.ExecContext(ctx, `DELETE FROM companies WHERE id = $1`, id)
	if err != nil {
		return mapPgError(err)
	}
	return expectRow(res)
}

func (r *CompanyRepository) Count(ctx context.Context) (int, error) {
	var n int
	err := r.DB.QueryRowContext(ctx, `SELECT COUNT(*) FROM companies`).Scan(&n)
	return n, err
}

func scanCompany(s scanner) (*entity.Company, error) {
	var c entity.Company
	err := s.Scan(&c.ID, &c.Name, &c.Industry, &c.Location, &c.Website, &c.Phone, &c.Description, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// expectRow maps "nothing updated" to ErrRecordNotFound.
func expectRow(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return entity.ErrRecordNotFound
	}
	return nil
}
