package repository

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tempora-app/tempora/internal/domain"
	"github.com/tempora-app/tempora/internal/testutil"
)

func TestPrefsRepo_GetOrDefault_CreatesRow(t *testing.T) {
	database := testutil.NewTestDB(t)
	repo := NewSQLitePrefsRepo(database)
	ctx := context.Background()
	id := testutil.TestIdentity()

	p, err := repo.GetOrDefault(ctx, id, time.Now().UTC())
	require.NoError(t, err)
	assert.True(t, p.PushEnabled)
	assert.True(t, p.InterruptEnabled)
	assert.Equal(t, domain.DefaultInterruptIntervalMin, p.InterruptIntervalMin)
	assert.Equal(t, domain.DefaultEscalationDelayMin, p.EscalationDelayMin)
	assert.False(t, p.QuietHours.Configured())

	// Second read returns the persisted row, not a fresh default.
	again, err := repo.GetOrDefault(ctx, id, time.Now().UTC())
	require.NoError(t, err)
	assert.Equal(t, p.CreatedAt.Unix(), again.CreatedAt.Unix())
}

func TestPrefsRepo_UpsertRoundTrip(t *testing.T) {
	database := testutil.NewTestDB(t)
	repo := NewSQLitePrefsRepo(database)
	ctx := context.Background()
	id := testutil.TestIdentity()

	p, err := repo.GetOrDefault(ctx, id, time.Now().UTC())
	require.NoError(t, err)

	start, end := 22*60, 6*60
	p.QuietHours = domain.QuietHours{StartMin: &start, EndMin: &end}
	p.EmailEnabled = true
	p.EmailAddress = "dev@example.com"
	p.DoNotDisturb = true
	p.WarnThresholdHours = 1.5
	require.NoError(t, repo.Upsert(ctx, p))

	fetched, err := repo.GetOrDefault(ctx, id, time.Now().UTC())
	require.NoError(t, err)
	require.True(t, fetched.QuietHours.Configured())
	assert.Equal(t, start, *fetched.QuietHours.StartMin)
	assert.Equal(t, end, *fetched.QuietHours.EndMin)
	assert.True(t, fetched.EmailEnabled)
	assert.Equal(t, "dev@example.com", fetched.EmailAddress)
	assert.True(t, fetched.DoNotDisturb)
	assert.Equal(t, 1.5, fetched.WarnThresholdHours)
}

func TestPrefsRepo_IsolatedPerUser(t *testing.T) {
	database := testutil.NewTestDB(t)
	repo := NewSQLitePrefsRepo(database)
	ctx := context.Background()

	a := testutil.TestIdentity()
	b := domain.Identity{TenantID: a.TenantID, UserID: "user-2"}

	pa, err := repo.GetOrDefault(ctx, a, time.Now().UTC())
	require.NoError(t, err)
	pa.DoNotDisturb = true
	require.NoError(t, repo.Upsert(ctx, pa))

	pb, err := repo.GetOrDefault(ctx, b, time.Now().UTC())
	require.NoError(t, err)
	assert.False(t, pb.DoNotDisturb)
}
