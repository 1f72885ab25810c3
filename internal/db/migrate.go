package db

import (
	"database/sql"
	"fmt"
	"strings"
)

// Migrate runs all schema migrations.
func Migrate(db *sql.DB) error {
	for i, stmt := range migrations {
		if _, err := db.Exec(stmt); err != nil {
			// Tolerate "duplicate column name" errors from ALTER TABLE
			// since the migration system re-runs all statements.
			if strings.Contains(err.Error(), "duplicate column name") {
				continue
			}
			return fmt.Errorf("migration %d: %w", i, err)
		}
	}
	return nil
}

var migrations = []string{
	`CREATE TABLE IF NOT EXISTS clients (
		id         TEXT PRIMARY KEY,
		tenant_id  TEXT NOT NULL,
		name       TEXT NOT NULL,
		created_at TEXT NOT NULL
	)`,

	`CREATE INDEX IF NOT EXISTS idx_clients_tenant ON clients(tenant_id)`,

	`CREATE TABLE IF NOT EXISTS projects (
		id           TEXT PRIMARY KEY,
		tenant_id    TEXT NOT NULL,
		client_id    TEXT NOT NULL DEFAULT '',
		name         TEXT NOT NULL,
		hourly_rate  REAL NOT NULL DEFAULT 0,
		budget_type  TEXT NOT NULL DEFAULT 'none'
		             CHECK(budget_type IN ('none','hours','amount')),
		budget_value REAL,
		archived_at  TEXT,
		created_at   TEXT NOT NULL,
		updated_at   TEXT NOT NULL
	)`,

	`CREATE INDEX IF NOT EXISTS idx_projects_tenant ON projects(tenant_id)`,
	`CREATE INDEX IF NOT EXISTS idx_projects_client ON projects(client_id)`,

	`CREATE TABLE IF NOT EXISTS running_timers (
		id                     TEXT PRIMARY KEY,
		tenant_id              TEXT NOT NULL,
		user_id                TEXT NOT NULL,
		project_id             TEXT NOT NULL REFERENCES projects(id),
		started_at             TEXT NOT NULL,
		last_heartbeat_at      TEXT NOT NULL,
		awaiting_ack           INTEGER NOT NULL DEFAULT 0,
		ack_shown_at           TEXT,
		next_interrupt_at      TEXT,
		overrun_alert_sent_at  TEXT,
		budget_warning_sent_at TEXT,
		budget_warning_kind    TEXT NOT NULL DEFAULT '',
		nudge_sent_at          TEXT,
		pomodoro_phase         TEXT NOT NULL DEFAULT '',
		pomodoro_phase_end     TEXT,
		created_at             TEXT NOT NULL,
		updated_at             TEXT NOT NULL,
		UNIQUE(tenant_id, user_id)
	)`,

	`CREATE INDEX IF NOT EXISTS idx_running_timers_ack ON running_timers(awaiting_ack, ack_shown_at)`,
	`CREATE INDEX IF NOT EXISTS idx_running_timers_started ON running_timers(started_at)`,
	`CREATE INDEX IF NOT EXISTS idx_running_timers_interrupt ON running_timers(awaiting_ack, next_interrupt_at)`,

	`CREATE TABLE IF NOT EXISTS time_entries (
		id         TEXT PRIMARY KEY,
		tenant_id  TEXT NOT NULL,
		user_id    TEXT NOT NULL,
		project_id TEXT NOT NULL REFERENCES projects(id),
		started_at TEXT NOT NULL,
		stopped_at TEXT,
		seconds    INTEGER,
		source     TEXT NOT NULL DEFAULT 'timer'
		           CHECK(source IN ('manual','timer','auto_stop','overrun')),
		note       TEXT NOT NULL DEFAULT '',
		is_overrun INTEGER NOT NULL DEFAULT 0,
		created_at TEXT NOT NULL
	)`,

	`CREATE INDEX IF NOT EXISTS idx_time_entries_user ON time_entries(tenant_id, user_id)`,
	`CREATE INDEX IF NOT EXISTS idx_time_entries_project ON time_entries(project_id)`,
	`CREATE INDEX IF NOT EXISTS idx_time_entries_open ON time_entries(tenant_id, user_id, stopped_at)`,

	`CREATE TABLE IF NOT EXISTS notification_prefs (
		tenant_id             TEXT NOT NULL,
		user_id               TEXT NOT NULL,
		push_enabled          INTEGER NOT NULL DEFAULT 1,
		email_enabled         INTEGER NOT NULL DEFAULT 0,
		sms_enabled           INTEGER NOT NULL DEFAULT 0,
		chat_enabled          INTEGER NOT NULL DEFAULT 0,
		email_address         TEXT NOT NULL DEFAULT '',
		phone_number          TEXT NOT NULL DEFAULT '',
		chat_webhook_url      TEXT NOT NULL DEFAULT '',
		quiet_start_min       INTEGER,
		quiet_end_min         INTEGER,
		escalation_delay_min  INTEGER NOT NULL DEFAULT 2,
		do_not_disturb        INTEGER NOT NULL DEFAULT 0,
		warnings_enabled      INTEGER NOT NULL DEFAULT 1,
		warn_threshold_hours  REAL NOT NULL DEFAULT 0.5,
		warn_threshold_amount REAL NOT NULL DEFAULT 50,
		interrupt_enabled     INTEGER NOT NULL DEFAULT 1,
		interrupt_interval_min INTEGER NOT NULL DEFAULT 60,
		created_at            TEXT NOT NULL,
		updated_at            TEXT NOT NULL,
		PRIMARY KEY (tenant_id, user_id)
	)`,

	`CREATE TABLE IF NOT EXISTS push_subscriptions (
		id           TEXT PRIMARY KEY,
		tenant_id    TEXT NOT NULL,
		user_id      TEXT NOT NULL,
		endpoint     TEXT NOT NULL,
		p256dh_key   TEXT NOT NULL DEFAULT '',
		auth_key     TEXT NOT NULL DEFAULT '',
		device_name  TEXT NOT NULL DEFAULT '',
		is_active    INTEGER NOT NULL DEFAULT 1,
		last_used_at TEXT,
		created_at   TEXT NOT NULL
	)`,

	`CREATE INDEX IF NOT EXISTS idx_push_subscriptions_user ON push_subscriptions(tenant_id, user_id, is_active)`,
}
