package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTaskStatusNextCycles(t *testing.T) {
	assert.Equal(t, StatusInprogress, StatusNew.Next())
	assert.Equal(t, StatusDone, StatusInprogress.Next())
	assert.Equal(t, StatusNew, StatusDone.Next())
}

func TestTaskStatusThreeStepsReturnToStart(t *testing.T) {
	for _, start := range []TaskStatus{StatusNew, StatusInprogress, StatusDone} {
		assert.Equal(t, start, start.Next().Next().Next(), "start %s", start)
	}
}

func TestParseTaskStatus(t *testing.T) {
	st, err := ParseTaskStatus("Inprogress")
	require.NoError(t, err)
	assert.Equal(t, StatusInprogress, st)

	for _, raw := range []string{"", "done", "InProgress", "Archived", " New"} {
		_, err := ParseTaskStatus(raw)
		assert.Error(t, err, "raw %q", raw)
	}
}

func TestRoleValid(t *testing.T) {
	assert.True(t, RolePlanner.Valid())
	assert.True(t, RoleVendor.Valid())
	assert.True(t, RoleStoryteller.Valid())
	assert.False(t, Role("admin").Valid())
	assert.False(t, Role("").Valid())
}

func TestUserDisplayName(t *testing.T) {
	last := "Meyer"
	assert.Equal(t, "Anna Meyer", User{FirstName: "Anna", LastName: &last}.DisplayName())
	assert.Equal(t, "Anna", User{FirstName: "Anna"}.DisplayName())
	assert.Equal(t, "a@example.com", User{Email: "a@example.com"}.DisplayName())
}
