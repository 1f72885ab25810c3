package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/tempora-app/tempora/internal/db"
	"github.com/tempora-app/tempora/internal/domain"
)

const subscriptionColumns = `id, tenant_id, user_id, endpoint, p256dh_key, auth_key,
		device_name, is_active, last_used_at, created_at`

// SQLiteSubscriptionRepo implements SubscriptionRepo using a SQLite database.
type SQLiteSubscriptionRepo struct {
	db db.DBTX
}

// NewSQLiteSubscriptionRepo creates a new SQLiteSubscriptionRepo.
func NewSQLiteSubscriptionRepo(conn db.DBTX) *SQLiteSubscriptionRepo {
	return &SQLiteSubscriptionRepo{db: conn}
}

func (r *SQLiteSubscriptionRepo) Create(ctx context.Context, s *domain.PushSubscription) error {
	query := `INSERT INTO push_subscriptions (` + subscriptionColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	_, err := r.db.ExecContext(ctx, query,
		s.ID,
		s.TenantID,
		s.UserID,
		s.Endpoint,
		s.P256dhKey,
		s.AuthKey,
		s.DeviceName,
		boolToInt(s.IsActive),
		nullableTimeToString(s.LastUsedAt, time.RFC3339),
		s.CreatedAt.Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("inserting push subscription: %w", err)
	}
	return nil
}

func (r *SQLiteSubscriptionRepo) ListActive(ctx context.Context, id domain.Identity) ([]*domain.PushSubscription, error) {
	query := `SELECT ` + subscriptionColumns + ` FROM push_subscriptions
		WHERE tenant_id = ? AND user_id = ? AND is_active = 1
		ORDER BY created_at`
	rows, err := r.db.QueryContext(ctx, query, id.TenantID, id.UserID)
	if err != nil {
		return nil, fmt.Errorf("listing active push subscriptions: %w", err)
	}
	defer rows.Close()

	var subs []*domain.PushSubscription
	for rows.Next() {
		var s domain.PushSubscription
		var isActive int
		var lastUsed sql.NullString
		var createdAtStr string

		err := rows.Scan(
			&s.ID, &s.TenantID, &s.UserID, &s.Endpoint, &s.P256dhKey, &s.AuthKey,
			&s.DeviceName, &isActive, &lastUsed, &createdAtStr,
		)
		if err != nil {
			return nil, fmt.Errorf("scanning push subscription: %w", err)
		}
		s.IsActive = intToBool(isActive)
		s.LastUsedAt = parseNullableTime(lastUsed, time.RFC3339)
		if s.CreatedAt, err = time.Parse(time.RFC3339, createdAtStr); err != nil {
			return nil, fmt.Errorf("parsing created_at: %w", err)
		}
		subs = append(subs, &s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating push subscriptions: %w", err)
	}
	return subs, nil
}

func (r *SQLiteSubscriptionRepo) Deactivate(ctx context.Context, subID string) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE push_subscriptions SET is_active = 0 WHERE id = ?`, subID)
	if err != nil {
		return fmt.Errorf("deactivating push subscription: %w", err)
	}
	return nil
}

func (r *SQLiteSubscriptionRepo) TouchLastUsed(ctx context.Context, subID string, at time.Time) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE push_subscriptions SET last_used_at = ? WHERE id = ?`,
		at.UTC().Format(time.RFC3339), subID)
	if err != nil {
		return fmt.Errorf("stamping push subscription last_used_at: %w", err)
	}
	return nil
}
