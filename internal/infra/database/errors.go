package database

import (
	"errors"
	"log"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/xavierca1/ligue-crm/internal/entity"
)

const (
	pgUniqueViolation     = "23505"
	pgForeignKeyViolation = "23503"
	pgInvalidTextRepr     = "22P02"
)

// fkFields maps the default foreign key names of the schema to request fields.
var fkFields = map[string]string{
	"leads_assigned_to_fkey": "assignedTo",
	"leads_company_id_fkey":  "company",
	"tasks_lead_id_fkey":     "lead",
	"tasks_assigned_to_fkey": "assignedTo",
}

// mapPgError turns constraint violations into entity sentinels.
func mapPgError(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case pgUniqueViolation:
			return entity.ErrEmailAlreadyExists
		case pgForeignKeyViolation:
			if field, ok := fkFields[pgErr.ConstraintName]; ok {
				return &entity.ReferenceError{Field: field}
			}
			return entity.ErrInvalidReference
		case pgInvalidTextRepr:
			return entity.ErrInvalidReference
		}
	}

	log.Printf("❌ database error: %v", err)
	return err
}

// validID reports whether id can be compared against a uuid column.
func validID(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil
}

// refID rejects a reference whose id can never match a uuid column.
func refID(field string, ref *entity.Ref) error {
	if ref == nil || ref.ID == "" || validID(ref.ID) {
		return nil
	}
	return &entity.ReferenceError{Field: field}
}

func nullRef(ref *entity.Ref) any {
	if ref == nil || ref.ID == "" {
		return nil
	}
	return ref.ID
}
