package db

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestMigrate_Idempotent(t *testing.T) {
	database, err := OpenDB(":memory:")
	require.NoError(t, err)
	defer database.Close()

	// OpenDB already migrated; a second run must be a no-op.
	require.NoError(t, Migrate(database))

	for _, table := range []string{
		"clients", "projects", "running_timers",
		"time_entries", "notification_prefs", "push_subscriptions",
	} {
		var name string
		err := database.QueryRow(
			`SELECT name FROM sqlite_master WHERE type = 'table' AND name = ?`, table,
		).Scan(&name)
		require.NoError(t, err, "table %s should exist", table)
	}
}

func TestRunningTimers_UniquePerUser(t *testing.T) {
	database, err := OpenDB(":memory:")
	require.NoError(t, err)
	defer database.Close()

	_, err = database.Exec(`INSERT INTO projects (id, tenant_id, name, created_at, updated_at)
		VALUES ('p1', 't1', 'Proj', '2025-01-01T00:00:00Z', '2025-01-01T00:00:00Z')`)
	require.NoError(t, err)

	insert := `INSERT INTO running_timers (id, tenant_id, user_id, project_id, started_at, last_heartbeat_at, created_at, updated_at)
		VALUES (?, 't1', 'u1', 'p1', '2025-01-01T00:00:00Z', '2025-01-01T00:00:00Z', '2025-01-01T00:00:00Z', '2025-01-01T00:00:00Z')`
	_, err = database.Exec(insert, "timer-1")
	require.NoError(t, err)

	_, err = database.Exec(insert, "timer-2")
	require.Error(t, err, "second running timer for the same user must violate the unique constraint")
}
