package cli

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tempora-app/tempora/internal/config"
	"github.com/tempora-app/tempora/internal/timer"
)

func TestApp_Identity_FromFlags(t *testing.T) {
	app := &App{Config: &config.Config{}}
	app.tenantFlag = "acme"
	app.userFlag = "u-1"

	id, err := app.Identity()
	require.NoError(t, err)
	assert.Equal(t, "acme", id.TenantID)
	assert.Equal(t, "u-1", id.UserID)
}

func TestApp_Identity_FallsBackToConfig(t *testing.T) {
	app := &App{Config: &config.Config{
		Defaults: config.DefaultsConfig{Tenant: "acme", User: "u-1"},
	}}

	id, err := app.Identity()
	require.NoError(t, err)
	assert.Equal(t, "acme", id.TenantID)
	assert.Equal(t, "u-1", id.UserID)

	// A flag overrides only the part it names.
	app.userFlag = "u-2"
	id, err = app.Identity()
	require.NoError(t, err)
	assert.Equal(t, "acme", id.TenantID)
	assert.Equal(t, "u-2", id.UserID)
}

func TestApp_Identity_MissingIsUnauthenticated(t *testing.T) {
	app := &App{Config: &config.Config{}}

	_, err := app.Identity()
	assert.ErrorIs(t, err, timer.ErrUnauthenticated)

	app.tenantFlag = "acme" // tenant alone is not an identity
	_, err = app.Identity()
	assert.ErrorIs(t, err, timer.ErrUnauthenticated)
}
