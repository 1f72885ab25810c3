package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/tempora-app/tempora/internal/db"
	"github.com/tempora-app/tempora/internal/domain"
)

const prefsColumns = `tenant_id, user_id, push_enabled, email_enabled, sms_enabled, chat_enabled,
		email_address, phone_number, chat_webhook_url,
		quiet_start_min, quiet_end_min, escalation_delay_min, do_not_disturb,
		warnings_enabled, warn_threshold_hours, warn_threshold_amount,
		interrupt_enabled, interrupt_interval_min, created_at, updated_at`

// SQLitePrefsRepo implements PrefsRepo using a SQLite database.
type SQLitePrefsRepo struct {
	db db.DBTX
}

// NewSQLitePrefsRepo creates a new SQLitePrefsRepo.
func NewSQLitePrefsRepo(conn db.DBTX) *SQLitePrefsRepo {
	return &SQLitePrefsRepo{db: conn}
}

func (r *SQLitePrefsRepo) GetOrDefault(ctx context.Context, id domain.Identity, now time.Time) (*domain.NotificationPreferences, error) {
	p, err := r.get(ctx, id)
	if err == nil {
		return p, nil
	}
	if !errors.Is(err, ErrNotFound) {
		return nil, err
	}

	defaults := domain.DefaultPreferences(id, now.UTC())
	if err := r.Upsert(ctx, defaults); err != nil {
		return nil, err
	}
	return defaults, nil
}

func (r *SQLitePrefsRepo) get(ctx context.Context, id domain.Identity) (*domain.NotificationPreferences, error) {
	query := `SELECT ` + prefsColumns + ` FROM notification_prefs WHERE tenant_id = ? AND user_id = ?`
	row := r.db.QueryRowContext(ctx, query, id.TenantID, id.UserID)

	var p domain.NotificationPreferences
	var pushEnabled, emailEnabled, smsEnabled, chatEnabled, dnd, warnEnabled, intEnabled int
	var quietStart, quietEnd sql.NullInt64
	var createdAtStr, updatedAtStr string

	err := row.Scan(
		&p.TenantID, &p.UserID, &pushEnabled, &emailEnabled, &smsEnabled, &chatEnabled,
		&p.EmailAddress, &p.PhoneNumber, &p.ChatWebhookURL,
		&quietStart, &quietEnd, &p.EscalationDelayMin, &dnd,
		&warnEnabled, &p.WarnThresholdHours, &p.WarnThresholdAmount,
		&intEnabled, &p.InterruptIntervalMin, &createdAtStr, &updatedAtStr,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("notification preferences: %w", ErrNotFound)
		}
		return nil, fmt.Errorf("scanning notification preferences: %w", err)
	}

	p.PushEnabled = intToBool(pushEnabled)
	p.EmailEnabled = intToBool(emailEnabled)
	p.SMSEnabled = intToBool(smsEnabled)
	p.ChatEnabled = intToBool(chatEnabled)
	p.DoNotDisturb = intToBool(dnd)
	p.WarningsEnabled = intToBool(warnEnabled)
	p.InterruptEnabled = intToBool(intEnabled)
	p.QuietHours = domain.QuietHours{StartMin: intFromNull(quietStart), EndMin: intFromNull(quietEnd)}

	var parseErr error
	p.CreatedAt, parseErr = time.Parse(time.RFC3339, createdAtStr)
	if parseErr != nil {
		return nil, fmt.Errorf("parsing created_at: %w", parseErr)
	}
	p.UpdatedAt, parseErr = time.Parse(time.RFC3339, updatedAtStr)
	if parseErr != nil {
		return nil, fmt.Errorf("parsing updated_at: %w", parseErr)
	}
	return &p, nil
}

func (r *SQLitePrefsRepo) Upsert(ctx context.Context, p *domain.NotificationPreferences) error {
	query := `INSERT INTO notification_prefs (` + prefsColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(tenant_id, user_id) DO UPDATE SET
			push_enabled = excluded.push_enabled,
			email_enabled = excluded.email_enabled,
			sms_enabled = excluded.sms_enabled,
			chat_enabled = excluded.chat_enabled,
			email_address = excluded.email_address,
			phone_number = excluded.phone_number,
			chat_webhook_url = excluded.chat_webhook_url,
			quiet_start_min = excluded.quiet_start_min,
			quiet_end_min = excluded.quiet_end_min,
			escalation_delay_min = excluded.escalation_delay_min,
			do_not_disturb = excluded.do_not_disturb,
			warnings_enabled = excluded.warnings_enabled,
			warn_threshold_hours = excluded.warn_threshold_hours,
			warn_threshold_amount = excluded.warn_threshold_amount,
			interrupt_enabled = excluded.interrupt_enabled,
			interrupt_interval_min = excluded.interrupt_interval_min,
			updated_at = excluded.updated_at`
	_, err := r.db.ExecContext(ctx, query,
		p.TenantID,
		p.UserID,
		boolToInt(p.PushEnabled),
		boolToInt(p.EmailEnabled),
		boolToInt(p.SMSEnabled),
		boolToInt(p.ChatEnabled),
		p.EmailAddress,
		p.PhoneNumber,
		p.ChatWebhookURL,
		nullableIntToValue(p.QuietHours.StartMin),
		nullableIntToValue(p.QuietHours.EndMin),
		p.EscalationDelayMin,
		boolToInt(p.DoNotDisturb),
		boolToInt(p.WarningsEnabled),
		p.WarnThresholdHours,
		p.WarnThresholdAmount,
		boolToInt(p.InterruptEnabled),
		p.InterruptIntervalMin,
		p.CreatedAt.Format(time.RFC3339),
		p.UpdatedAt.Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("upserting notification preferences: %w", err)
	}
	return nil
}
