package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/tempora-app/tempora/internal/db"
	"github.com/tempora-app/tempora/internal/domain"
)

// entryColumns is the canonical SELECT column list for time_entries.
const entryColumns = `id, tenant_id, user_id, project_id, started_at, stopped_at,
		seconds, source, note, is_overrun, created_at`

// SQLiteEntryRepo implements EntryRepo using a SQLite database.
type SQLiteEntryRepo struct {
	db db.DBTX
}

// NewSQLiteEntryRepo creates a new SQLiteEntryRepo.
func NewSQLiteEntryRepo(conn db.DBTX) *SQLiteEntryRepo {
	return &SQLiteEntryRepo{db: conn}
}

func (r *SQLiteEntryRepo) Create(ctx context.Context, e *domain.TimeEntry) error {
	query := `INSERT INTO time_entries (` + entryColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	_, err := r.db.ExecContext(ctx, query,
		e.ID,
		e.TenantID,
		e.UserID,
		e.ProjectID,
		e.StartedAt.Format(time.RFC3339),
		nullableTimeToString(e.StoppedAt, time.RFC3339),
		nullableIntToValue(e.Seconds),
		string(e.Source),
		e.Note,
		boolToInt(e.IsOverrun),
		e.CreatedAt.Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("inserting time entry: %w", err)
	}
	return nil
}

func (r *SQLiteEntryRepo) GetByID(ctx context.Context, tenantID, id string) (*domain.TimeEntry, error) {
	query := `SELECT ` + entryColumns + ` FROM time_entries WHERE id = ? AND tenant_id = ?`
	return r.scanEntry(r.db.QueryRowContext(ctx, query, id, tenantID))
}

func (r *SQLiteEntryRepo) GetOpen(ctx context.Context, id domain.Identity) (*domain.TimeEntry, error) {
	query := `SELECT ` + entryColumns + ` FROM time_entries
		WHERE tenant_id = ? AND user_id = ? AND stopped_at IS NULL AND is_overrun = 0`
	return r.scanEntry(r.db.QueryRowContext(ctx, query, id.TenantID, id.UserID))
}

func (r *SQLiteEntryRepo) Close(ctx context.Context, entryID string, stoppedAt time.Time, seconds int, source domain.EntrySource) error {
	query := `UPDATE time_entries SET stopped_at = ?, seconds = ?, source = ?
		WHERE id = ? AND stopped_at IS NULL`
	res, err := r.db.ExecContext(ctx, query,
		stoppedAt.UTC().Format(time.RFC3339), seconds, string(source), entryID)
	if err != nil {
		return fmt.Errorf("closing time entry: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("closing time entry: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("open time entry: %w", ErrNotFound)
	}
	return nil
}

func (r *SQLiteEntryRepo) SumClosedSeconds(ctx context.Context, tenantID, projectID string) (int, error) {
	query := `SELECT COALESCE(SUM(seconds), 0) FROM time_entries
		WHERE tenant_id = ? AND project_id = ? AND stopped_at IS NOT NULL AND is_overrun = 0`
	var total int
	if err := r.db.QueryRowContext(ctx, query, tenantID, projectID).Scan(&total); err != nil {
		return 0, fmt.Errorf("summing closed seconds: %w", err)
	}
	return total, nil
}

func (r *SQLiteEntryRepo) ListByUser(ctx context.Context, id domain.Identity, limit int) ([]*domain.TimeEntry, error) {
	query := `SELECT ` + entryColumns + ` FROM time_entries
		WHERE tenant_id = ? AND user_id = ?
		ORDER BY started_at DESC LIMIT ?`
	rows, err := r.db.QueryContext(ctx, query, id.TenantID, id.UserID, limit)
	if err != nil {
		return nil, fmt.Errorf("listing time entries: %w", err)
	}
	defer rows.Close()

	var entries []*domain.TimeEntry
	for rows.Next() {
		e, err := r.scanEntryRow(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating time entries: %w", err)
	}
	return entries, nil
}

func (r *SQLiteEntryRepo) scanEntry(row *sql.Row) (*domain.TimeEntry, error) {
	var e domain.TimeEntry
	var startedAtStr, createdAtStr, source string
	var stoppedAt sql.NullString
	var seconds sql.NullInt64
	var isOverrun int

	err := row.Scan(
		&e.ID, &e.TenantID, &e.UserID, &e.ProjectID,
		&startedAtStr, &stoppedAt, &seconds, &source, &e.Note, &isOverrun, &createdAtStr,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("time entry: %w", ErrNotFound)
		}
		return nil, fmt.Errorf("scanning time entry: %w", err)
	}
	return r.populateEntry(&e, startedAtStr, createdAtStr, source, stoppedAt, seconds, isOverrun)
}

func (r *SQLiteEntryRepo) scanEntryRow(rows *sql.Rows) (*domain.TimeEntry, error) {
	var e domain.TimeEntry
	var startedAtStr, createdAtStr, source string
	var stoppedAt sql.NullString
	var seconds sql.NullInt64
	var isOverrun int

	err := rows.Scan(
		&e.ID, &e.TenantID, &e.UserID, &e.ProjectID,
		&startedAtStr, &stoppedAt, &seconds, &source, &e.Note, &isOverrun, &createdAtStr,
	)
	if err != nil {
		return nil, fmt.Errorf("scanning time entry row: %w", err)
	}
	return r.populateEntry(&e, startedAtStr, createdAtStr, source, stoppedAt, seconds, isOverrun)
}

func (r *SQLiteEntryRepo) populateEntry(e *domain.TimeEntry, startedAtStr, createdAtStr, source string, stoppedAt sql.NullString, seconds sql.NullInt64, isOverrun int) (*domain.TimeEntry, error) {
	var parseErr error
	e.StartedAt, parseErr = time.Parse(time.RFC3339, startedAtStr)
	if parseErr != nil {
		return nil, fmt.Errorf("parsing started_at: %w", parseErr)
	}
	e.CreatedAt, parseErr = time.Parse(time.RFC3339, createdAtStr)
	if parseErr != nil {
		return nil, fmt.Errorf("parsing created_at: %w", parseErr)
	}
	e.StoppedAt = parseNullableTime(stoppedAt, time.RFC3339)
	e.Seconds = intFromNull(seconds)
	e.Source = domain.EntrySource(source)
	e.IsOverrun = intToBool(isOverrun)
	return e, nil
}
