package framework

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/moag1000/Little-ISMS-Helper-sub006/internal/catalog/models"
	"github.com/moag1000/Little-ISMS-Helper-sub006/internal/platform/sqldb"
	"github.com/moag1000/Little-ISMS-Helper-sub006/pkg/platform/sentinel"
)

const frameworkColumns = `id, code, name, description, version, applicable_industry, regulatory_body,
	mandatory, scope_description, active, created_at, updated_at`

// SQLStore persists frameworks in compliance_frameworks. Calls join the
// transaction carried by ctx when there is one.
type SQLStore struct {
	db      *sql.DB
	dialect sqldb.Dialect
}

func NewSQL(db *sql.DB, dialect sqldb.Dialect) *SQLStore {
	return &SQLStore{db: db, dialect: dialect}
}

func (s *SQLStore) FindByCode(ctx context.Context, code string) (*models.Framework, error) {
	query := s.dialect.Rebind(`SELECT ` + frameworkColumns + ` FROM compliance_frameworks WHERE code = ?`)
	fw, err := scanFramework(sqldb.Conn(ctx, s.db).QueryRowContext(ctx, query, code))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("find framework by code: %w", err)
	}
	return fw, nil
}

func (s *SQLStore) Create(ctx context.Context, fw *models.Framework) error {
	query := s.dialect.Rebind(`
		INSERT INTO compliance_frameworks (` + frameworkColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	_, err := sqldb.Conn(ctx, s.db).ExecContext(ctx, query,
		fw.ID, fw.Code, fw.Name, fw.Description, fw.Version, fw.ApplicableIndustry, fw.RegulatoryBody,
		fw.Mandatory, fw.ScopeDescription, fw.Active,
		s.dialect.TimeArg(fw.CreatedAt), s.dialect.TimeArg(fw.UpdatedAt),
	)
	if err != nil {
		if sqldb.IsUniqueViolation(err) {
			return sentinel.ErrConflict
		}
		return fmt.Errorf("create framework: %w", err)
	}
	return nil
}

func (s *SQLStore) Touch(ctx context.Context, id uuid.UUID, at time.Time) error {
	query := s.dialect.Rebind(`UPDATE compliance_frameworks SET updated_at = ? WHERE id = ?`)
	res, err := sqldb.Conn(ctx, s.db).ExecContext(ctx, query, s.dialect.TimeArg(at), id)
	if err != nil {
		return fmt.Errorf("touch framework: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("touch framework rows affected: %w", err)
	}
	if n == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}

// List returns every framework ordered by code.
func (s *SQLStore) List(ctx context.Context) ([]*models.Framework, error) {
	rows, err := sqldb.Conn(ctx, s.db).QueryContext(ctx, `SELECT `+frameworkColumns+` FROM compliance_frameworks ORDER BY code`)
	if err != nil {
		return nil, fmt.Errorf("list frameworks: %w", err)
	}
	defer rows.Close()

	var out []*models.Framework
	for rows.Next() {
		fw, err := scanFramework(rows)
		if err != nil {
			return nil, fmt.Errorf("scan framework: %w", err)
		}
		out = append(out, fw)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate frameworks: %w", err)
	}
	return out, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanFramework(row rowScanner) (*models.Framework, error) {
	var fw models.Framework
	err := row.Scan(
		&fw.ID, &fw.Code, &fw.Name, &fw.Description, &fw.Version, &fw.ApplicableIndustry, &fw.RegulatoryBody,
		&fw.Mandatory, &fw.ScopeDescription, &fw.Active,
		sqldb.ScanTime(&fw.CreatedAt), sqldb.ScanTime(&fw.UpdatedAt),
	)
	if err != nil {
		return nil, err
	}
	return &fw, nil
}
