package auditlog

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/moag1000/Little-ISMS-Helper-sub006/internal/platform/sqldb"
	"github.com/moag1000/Little-ISMS-Helper-sub006/internal/retention/models"
	"github.com/moag1000/Little-ISMS-Helper-sub006/pkg/platform/sentinel"
)

// SQLStore persists entries in audit_log.
type SQLStore struct {
	db      *sql.DB
	dialect sqldb.Dialect
}

func NewSQL(db *sql.DB, dialect sqldb.Dialect) *SQLStore {
	return &SQLStore{db: db, dialect: dialect}
}

// Append inserts entry, assigning an ID when it has none.
func (s *SQLStore) Append(ctx context.Context, entry *models.AuditLogEntry) error {
	if entry.ID == "" {
		entry.ID = uuid.NewString()
	}
	query := s.dialect.Rebind(`
		INSERT INTO audit_log (id, entity_type, entity_id, action, user_name, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`)
	_, err := sqldb.Conn(ctx, s.db).ExecContext(ctx, query,
		entry.ID, entry.EntityType, entry.EntityID, entry.Action, entry.UserName, s.dialect.TimeArg(entry.CreatedAt))
	if err != nil {
		if sqldb.IsUniqueViolation(err) {
			return sentinel.ErrConflict
		}
		return fmt.Errorf("append audit log entry: %w", err)
	}
	return nil
}

func (s *SQLStore) CountOlderThan(ctx context.Context, cutoff time.Time) (int, error) {
	query := s.dialect.Rebind(`SELECT COUNT(*) FROM audit_log WHERE created_at < ?`)
	var n int
	if err := sqldb.Conn(ctx, s.db).QueryRowContext(ctx, query, s.dialect.TimeArg(cutoff)).Scan(&n); err != nil {
		return 0, fmt.Errorf("count audit log entries: %w", err)
	}
	return n, nil
}

// ListOlderThan returns up to limit entries ordered oldest first. limit <= 0
// returns all of them.
func (s *SQLStore) ListOlderThan(ctx context.Context, cutoff time.Time, limit int) ([]*models.AuditLogEntry, error) {
	query := `SELECT id, entity_type, entity_id, action, user_name, created_at
		FROM audit_log WHERE created_at < ? ORDER BY created_at, id`
	args := []any{s.dialect.TimeArg(cutoff)}
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}
	rows, err := sqldb.Conn(ctx, s.db).QueryContext(ctx, s.dialect.Rebind(query), args...)
	if err != nil {
		return nil, fmt.Errorf("list audit log entries: %w", err)
	}
	defer rows.Close()

	var out []*models.AuditLogEntry
	for rows.Next() {
		var e models.AuditLogEntry
		if err := rows.Scan(&e.ID, &e.EntityType, &e.EntityID, &e.Action, &e.UserName, sqldb.ScanTime(&e.CreatedAt)); err != nil {
			return nil, fmt.Errorf("scan audit log entry: %w", err)
		}
		out = append(out, &e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate audit log entries: %w", err)
	}
	return out, nil
}

// DeleteOlderThan removes every matching entry in one statement.
func (s *SQLStore) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int, error) {
	query := s.dialect.Rebind(`DELETE FROM audit_log WHERE created_at < ?`)
	res, err := sqldb.Conn(ctx, s.db).ExecContext(ctx, query, s.dialect.TimeArg(cutoff))
	if err != nil {
		return 0, fmt.Errorf("delete audit log entries: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("delete audit log entries rows affected: %w", err)
	}
	return int(n), nil
}
