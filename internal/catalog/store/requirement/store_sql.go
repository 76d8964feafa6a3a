package requirement

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/moag1000/Little-ISMS-Helper-sub006/internal/catalog/models"
	"github.com/moag1000/Little-ISMS-Helper-sub006/internal/platform/sqldb"
	"github.com/moag1000/Little-ISMS-Helper-sub006/pkg/platform/sentinel"
)

const (
	requirementColumns = `id, framework_id, framework_code, requirement_id, title, description, category,
	priority, requirement_type, parent_requirement_id, data_source_mapping, created_at, updated_at`
	requirementPlaceholders = `(?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
)

// SQLStore persists requirements in compliance_requirements. Calls join the
// transaction carried by ctx when there is one.
type SQLStore struct {
	db      *sql.DB
	dialect sqldb.Dialect
}

func NewSQL(db *sql.DB, dialect sqldb.Dialect) *SQLStore {
	return &SQLStore{db: db, dialect: dialect}
}

func (s *SQLStore) FindByRequirementID(ctx context.Context, frameworkID uuid.UUID, requirementID string) (*models.Requirement, error) {
	query := s.dialect.Rebind(`SELECT ` + requirementColumns + ` FROM compliance_requirements
		WHERE framework_id = ? AND requirement_id = ?`)
	r, err := scanRequirement(sqldb.Conn(ctx, s.db).QueryRowContext(ctx, query, frameworkID, requirementID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("find requirement: %w", err)
	}
	return r, nil
}

// InsertBatch writes all records with one multi-row INSERT.
func (s *SQLStore) InsertBatch(ctx context.Context, reqs []*models.Requirement) error {
	if len(reqs) == 0 {
		return nil
	}
	var b strings.Builder
	b.WriteString(`INSERT INTO compliance_requirements (` + requirementColumns + `) VALUES `)
	args := make([]any, 0, len(reqs)*13)
	for i, r := range reqs {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(requirementPlaceholders)
		args = append(args,
			r.ID, r.FrameworkID, r.FrameworkCode, r.RequirementID, r.Title, r.Description, r.Category,
			string(r.Priority), string(r.Type), r.ParentRequirementID, r.DataSourceMapping,
			s.dialect.TimeArg(r.CreatedAt), s.dialect.TimeArg(r.UpdatedAt),
		)
	}
	if _, err := sqldb.Conn(ctx, s.db).ExecContext(ctx, s.dialect.Rebind(b.String()), args...); err != nil {
		if sqldb.IsUniqueViolation(err) {
			return sentinel.ErrConflict
		}
		return fmt.Errorf("insert requirements: %w", err)
	}
	return nil
}

// UpdateBatch overwrites the descriptive columns of each record by ID.
func (s *SQLStore) UpdateBatch(ctx context.Context, reqs []*models.Requirement) error {
	query := s.dialect.Rebind(`
		UPDATE compliance_requirements
		SET title = ?, description = ?, category = ?, priority = ?, requirement_type = ?,
			parent_requirement_id = ?, data_source_mapping = ?, updated_at = ?
		WHERE id = ?
	`)
	conn := sqldb.Conn(ctx, s.db)
	for _, r := range reqs {
		res, err := conn.ExecContext(ctx, query,
			r.Title, r.Description, r.Category, string(r.Priority), string(r.Type),
			r.ParentRequirementID, r.DataSourceMapping, s.dialect.TimeArg(r.UpdatedAt),
			r.ID,
		)
		if err != nil {
			return fmt.Errorf("update requirement %s: %w", r.RequirementID, err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return fmt.Errorf("update requirement %s rows affected: %w", r.RequirementID, err)
		}
		if n == 0 {
			return sentinel.ErrNotFound
		}
	}
	return nil
}

func (s *SQLStore) CountByFramework(ctx context.Context, frameworkID uuid.UUID) (int, error) {
	var n int
	query := s.dialect.Rebind(`SELECT COUNT(*) FROM compliance_requirements WHERE framework_id = ?`)
	if err := sqldb.Conn(ctx, s.db).QueryRowContext(ctx, query, frameworkID).Scan(&n); err != nil {
		return 0, fmt.Errorf("count requirements: %w", err)
	}
	return n, nil
}

// ListByFramework returns the framework's requirements ordered by natural key.
func (s *SQLStore) ListByFramework(ctx context.Context, frameworkID uuid.UUID) ([]*models.Requirement, error) {
	query := s.dialect.Rebind(`SELECT ` + requirementColumns + ` FROM compliance_requirements
		WHERE framework_id = ? ORDER BY requirement_id`)
	rows, err := sqldb.Conn(ctx, s.db).QueryContext(ctx, query, frameworkID)
	if err != nil {
		return nil, fmt.Errorf("list requirements: %w", err)
	}
	defer rows.Close()

	var out []*models.Requirement
	for rows.Next() {
		r, err := scanRequirement(rows)
		if err != nil {
			return nil, fmt.Errorf("scan requirement: %w", err)
		}
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate requirements: %w", err)
	}
	return out, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRequirement(row rowScanner) (*models.Requirement, error) {
	var (
		r        models.Requirement
		priority string
		reqType  string
	)
	err := row.Scan(
		&r.ID, &r.FrameworkID, &r.FrameworkCode, &r.RequirementID, &r.Title, &r.Description, &r.Category,
		&priority, &reqType, &r.ParentRequirementID, &r.DataSourceMapping,
		sqldb.ScanTime(&r.CreatedAt), sqldb.ScanTime(&r.UpdatedAt),
	)
	if err != nil {
		return nil, err
	}
	r.Priority = models.Priority(priority)
	r.Type = models.RequirementType(reqType)
	return &r, nil
}
