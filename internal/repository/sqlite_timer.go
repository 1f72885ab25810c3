package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/tempora-app/tempora/internal/db"
	"github.com/tempora-app/tempora/internal/domain"
)

// timerColumns is the canonical SELECT column list for running_timers.
const timerColumns = `id, tenant_id, user_id, project_id, started_at, last_heartbeat_at,
		awaiting_ack, ack_shown_at, next_interrupt_at,
		overrun_alert_sent_at, budget_warning_sent_at, budget_warning_kind, nudge_sent_at,
		pomodoro_phase, pomodoro_phase_end, created_at, updated_at`

// timerColumnsAliased is the same column list prefixed with "t." for join queries.
const timerColumnsAliased = `t.id, t.tenant_id, t.user_id, t.project_id, t.started_at, t.last_heartbeat_at,
		t.awaiting_ack, t.ack_shown_at, t.next_interrupt_at,
		t.overrun_alert_sent_at, t.budget_warning_sent_at, t.budget_warning_kind, t.nudge_sent_at,
		t.pomodoro_phase, t.pomodoro_phase_end, t.created_at, t.updated_at`

// SQLiteTimerRepo implements TimerRepo using a SQLite database.
type SQLiteTimerRepo struct {
	db db.DBTX
}

// NewSQLiteTimerRepo creates a new SQLiteTimerRepo.
func NewSQLiteTimerRepo(conn db.DBTX) *SQLiteTimerRepo {
	return &SQLiteTimerRepo{db: conn}
}

func (r *SQLiteTimerRepo) Create(ctx context.Context, t *domain.RunningTimer) error {
	query := `INSERT INTO running_timers (` + timerColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	_, err := r.db.ExecContext(ctx, query,
		t.ID,
		t.TenantID,
		t.UserID,
		t.ProjectID,
		t.StartedAt.Format(time.RFC3339),
		t.LastHeartbeatAt.Format(time.RFC3339),
		boolToInt(t.AwaitingAck),
		nullableTimeToString(t.AckShownAt, time.RFC3339),
		nullableTimeToString(t.NextInterruptAt, time.RFC3339),
		nullableTimeToString(t.OverrunAlertSentAt, time.RFC3339),
		nullableTimeToString(t.BudgetWarningSentAt, time.RFC3339),
		string(t.BudgetWarningKind),
		nullableTimeToString(t.NudgeSentAt, time.RFC3339),
		string(t.PomodoroPhase),
		nullableTimeToString(t.PomodoroPhaseEnd, time.RFC3339),
		t.CreatedAt.Format(time.RFC3339),
		t.UpdatedAt.Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("inserting running timer: %w", err)
	}
	return nil
}

func (r *SQLiteTimerRepo) GetByUser(ctx context.Context, id domain.Identity) (*domain.RunningTimer, error) {
	query := `SELECT ` + timerColumns + ` FROM running_timers WHERE tenant_id = ? AND user_id = ?`
	return r.scanTimer(r.db.QueryRowContext(ctx, query, id.TenantID, id.UserID))
}

func (r *SQLiteTimerRepo) GetView(ctx context.Context, id domain.Identity) (*TimerView, error) {
	query := `SELECT ` + timerColumnsAliased + `, p.name, p.hourly_rate, COALESCE(c.name, '')
		FROM running_timers t
		JOIN projects p ON p.id = t.project_id
		LEFT JOIN clients c ON c.id = p.client_id
		WHERE t.tenant_id = ? AND t.user_id = ?`
	row := r.db.QueryRowContext(ctx, query, id.TenantID, id.UserID)

	var v TimerView
	var raw timerScanTarget
	dest := raw.destinations(&v.Timer)
	dest = append(dest, &v.ProjectName, &v.HourlyRate, &v.ClientName)
	if err := row.Scan(dest...); err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("running timer: %w", ErrNotFound)
		}
		return nil, fmt.Errorf("scanning timer view: %w", err)
	}
	if err := raw.populate(&v.Timer); err != nil {
		return nil, err
	}
	return &v, nil
}

func (r *SQLiteTimerRepo) Update(ctx context.Context, t *domain.RunningTimer) error {
	query := `UPDATE running_timers SET
		project_id = ?, started_at = ?, last_heartbeat_at = ?,
		awaiting_ack = ?, ack_shown_at = ?, next_interrupt_at = ?,
		overrun_alert_sent_at = ?, budget_warning_sent_at = ?, budget_warning_kind = ?, nudge_sent_at = ?,
		pomodoro_phase = ?, pomodoro_phase_end = ?, updated_at = ?
		WHERE id = ?`
	_, err := r.db.ExecContext(ctx, query,
		t.ProjectID,
		t.StartedAt.Format(time.RFC3339),
		t.LastHeartbeatAt.Format(time.RFC3339),
		boolToInt(t.AwaitingAck),
		nullableTimeToString(t.AckShownAt, time.RFC3339),
		nullableTimeToString(t.NextInterruptAt, time.RFC3339),
		nullableTimeToString(t.OverrunAlertSentAt, time.RFC3339),
		nullableTimeToString(t.BudgetWarningSentAt, time.RFC3339),
		string(t.BudgetWarningKind),
		nullableTimeToString(t.NudgeSentAt, time.RFC3339),
		string(t.PomodoroPhase),
		nullableTimeToString(t.PomodoroPhaseEnd, time.RFC3339),
		time.Now().UTC().Format(time.RFC3339),
		t.ID,
	)
	if err != nil {
		return fmt.Errorf("updating running timer: %w", err)
	}
	return nil
}

func (r *SQLiteTimerRepo) Delete(ctx context.Context, timerID string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM running_timers WHERE id = ?`, timerID)
	if err != nil {
		return fmt.Errorf("deleting running timer: %w", err)
	}
	return nil
}

func (r *SQLiteTimerRepo) ListAwaitingAckBefore(ctx context.Context, cutoff time.Time) ([]*domain.RunningTimer, error) {
	query := `SELECT ` + timerColumns + ` FROM running_timers
		WHERE awaiting_ack = 1 AND ack_shown_at IS NOT NULL AND ack_shown_at <= ?
		ORDER BY ack_shown_at`
	rows, err := r.db.QueryContext(ctx, query, cutoff.UTC().Format(time.RFC3339))
	if err != nil {
		return nil, fmt.Errorf("listing timers awaiting ack: %w", err)
	}
	defer rows.Close()
	return r.scanTimers(rows)
}

func (r *SQLiteTimerRepo) ListRunningSince(ctx context.Context, startedBefore time.Time) ([]*domain.RunningTimer, error) {
	query := `SELECT ` + timerColumns + ` FROM running_timers
		WHERE awaiting_ack = 0 AND started_at <= ?
		ORDER BY started_at`
	rows, err := r.db.QueryContext(ctx, query, startedBefore.UTC().Format(time.RFC3339))
	if err != nil {
		return nil, fmt.Errorf("listing long-running timers: %w", err)
	}
	defer rows.Close()
	return r.scanTimers(rows)
}

func (r *SQLiteTimerRepo) ListInterruptDueBefore(ctx context.Context, cutoff time.Time) ([]*domain.RunningTimer, error) {
	query := `SELECT ` + timerColumns + ` FROM running_timers
		WHERE awaiting_ack = 0 AND next_interrupt_at IS NOT NULL AND next_interrupt_at <= ?
		ORDER BY next_interrupt_at`
	rows, err := r.db.QueryContext(ctx, query, cutoff.UTC().Format(time.RFC3339))
	if err != nil {
		return nil, fmt.Errorf("listing interrupt-due timers: %w", err)
	}
	defer rows.Close()
	return r.scanTimers(rows)
}

// timerScanTarget holds the raw string columns read before parsing.
type timerScanTarget struct {
	startedAt       string
	lastHeartbeatAt string
	awaitingAck     int
	ackShownAt      sql.NullString
	nextInterruptAt sql.NullString
	overrunSentAt   sql.NullString
	warningSentAt   sql.NullString
	warningKind     string
	nudgeSentAt     sql.NullString
	pomodoroPhase   string
	pomodoroEnd     sql.NullString
	createdAt       string
	updatedAt       string
}

func (s *timerScanTarget) destinations(t *domain.RunningTimer) []any {
	return []any{
		&t.ID, &t.TenantID, &t.UserID, &t.ProjectID,
		&s.startedAt, &s.lastHeartbeatAt,
		&s.awaitingAck, &s.ackShownAt, &s.nextInterruptAt,
		&s.overrunSentAt, &s.warningSentAt, &s.warningKind, &s.nudgeSentAt,
		&s.pomodoroPhase, &s.pomodoroEnd, &s.createdAt, &s.updatedAt,
	}
}

func (s *timerScanTarget) populate(t *domain.RunningTimer) error {
	var err error
	if t.StartedAt, err = time.Parse(time.RFC3339, s.startedAt); err != nil {
		return fmt.Errorf("parsing started_at: %w", err)
	}
	if t.LastHeartbeatAt, err = time.Parse(time.RFC3339, s.lastHeartbeatAt); err != nil {
		return fmt.Errorf("parsing last_heartbeat_at: %w", err)
	}
	t.AwaitingAck = intToBool(s.awaitingAck)
	t.AckShownAt = parseNullableTime(s.ackShownAt, time.RFC3339)
	t.NextInterruptAt = parseNullableTime(s.nextInterruptAt, time.RFC3339)
	t.OverrunAlertSentAt = parseNullableTime(s.overrunSentAt, time.RFC3339)
	t.BudgetWarningSentAt = parseNullableTime(s.warningSentAt, time.RFC3339)
	t.BudgetWarningKind = domain.WarningType(s.warningKind)
	t.NudgeSentAt = parseNullableTime(s.nudgeSentAt, time.RFC3339)
	t.PomodoroPhase = domain.PomodoroPhase(s.pomodoroPhase)
	t.PomodoroPhaseEnd = parseNullableTime(s.pomodoroEnd, time.RFC3339)
	if t.CreatedAt, err = time.Parse(time.RFC3339, s.createdAt); err != nil {
		return fmt.Errorf("parsing created_at: %w", err)
	}
	if t.UpdatedAt, err = time.Parse(time.RFC3339, s.updatedAt); err != nil {
		return fmt.Errorf("parsing updated_at: %w", err)
	}
	return nil
}

func (r *SQLiteTimerRepo) scanTimer(row *sql.Row) (*domain.RunningTimer, error) {
	var t domain.RunningTimer
	var raw timerScanTarget
	if err := row.Scan(raw.destinations(&t)...); err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("running timer: %w", ErrNotFound)
		}
		return nil, fmt.Errorf("scanning running timer: %w", err)
	}
	if err := raw.populate(&t); err != nil {
		return nil, err
	}
	return &t, nil
}

func (r *SQLiteTimerRepo) scanTimers(rows *sql.Rows) ([]*domain.RunningTimer, error) {
	var timers []*domain.RunningTimer
	for rows.Next() {
		var t domain.RunningTimer
		var raw timerScanTarget
		if err := rows.Scan(raw.destinations(&t)...); err != nil {
			return nil, fmt.Errorf("scanning timer row: %w", err)
		}
		if err := raw.populate(&t); err != nil {
			return nil, err
		}
		timers = append(timers, &t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating timers: %w", err)
	}
	return timers, nil
}
