package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"plansey/internal/model"
)

func TestDashboardPlanner(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	user := env.register(t, "anna@example.com", model.RolePlanner)

	d, err := env.dashboards.Build(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, model.RolePlanner, d.Role)
	assert.Equal(t, "Anna", d.FirstName)
	require.NotNil(t, d.Planner)
	assert.Nil(t, d.Vendor)
	assert.Nil(t, d.Storyteller)
	assert.True(t, d.Planner.IsFirstLogin)
	assert.Nil(t, d.Planner.Wedding)
	assert.Equal(t, 5, d.Planner.Progress.Total)

	wedding, err := env.weddings.Create(ctx, user.ID, WeddingInput{})
	require.NoError(t, err)
	_, err = env.checklists.UpdateStatus(ctx, user.ID, wedding.ID, 1, StatusUpdate{Status: model.StatusDone})
	require.NoError(t, err)

	d, err = env.dashboards.Build(ctx, user.ID)
	require.NoError(t, err)
	assert.False(t, d.Planner.IsFirstLogin)
	require.NotNil(t, d.Planner.Wedding)
	assert.Equal(t, wedding.ID, d.Planner.Wedding.ID)
	assert.Equal(t, 20, d.Planner.Progress.Percent)
	assert.NotEmpty(t, d.Planner.Links)
}

func TestDashboardVendorAndStoryteller(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	vendor := env.register(t, "vendor@example.com", model.RoleVendor)
	story := env.register(t, "story@example.com", model.RoleStoryteller)

	d, err := env.dashboards.Build(ctx, vendor.ID)
	require.NoError(t, err)
	require.NotNil(t, d.Vendor)
	assert.Nil(t, d.Planner)
	assert.Equal(t, "Anna", d.Vendor.Name)
	assert.Equal(t, "Basic", d.Vendor.Type)

	d, err = env.dashboards.Build(ctx, story.ID)
	require.NoError(t, err)
	require.NotNil(t, d.Storyteller)
	assert.Nil(t, d.Planner)
	assert.Nil(t, d.Vendor)
}

func TestDashboardUnknownUser(t *testing.T) {
	env := newTestEnv(t)
	_, err := env.dashboards.Build(context.Background(), 42)
	assert.ErrorIs(t, err, ErrUnauthenticated)
}
