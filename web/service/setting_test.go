package service

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, path string, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func TestSettingGoalParsing(t *testing.T) {
	s := newTestSetting(t, `
timezone = "UTC"

[global-daily-goals]
50 = ["broadcast fifty"]
10 = ["broadcast ten"]
oops = ["never"]
100 = ["broadcast hundred", "give @a cookie"]
`)

	snap := s.Get()
	require.Len(t, snap.GlobalDailyGoals, 3)
	assert.Equal(t, 10, snap.GlobalDailyGoals[0].Value)
	assert.Equal(t, 50, snap.GlobalDailyGoals[1].Value)
	assert.Equal(t, 100, snap.GlobalDailyGoals[2].Value)
	assert.Equal(t, []string{"broadcast hundred", "give @a cookie"}, snap.GlobalDailyGoals[2].Commands)
}

func TestSettingInvalidTimezoneFallsBack(t *testing.T) {
	s := newTestSetting(t, `timezone = "Mars/Olympus"`)

	snap := s.Get()
	assert.Equal(t, defaultTimezone, snap.Timezone)
	require.NotNil(t, snap.Location)
	assert.Equal(t, defaultTimezone, snap.Location.String())
}

func TestSettingDefaults(t *testing.T) {
	s := NewSettingService(filepath.Join(t.TempDir(), "missing.toml"))
	require.NoError(t, s.Load())

	snap := s.Get()
	assert.Equal(t, defaultTimezone, snap.Timezone)
	assert.Equal(t, 5000, snap.BusyTimeoutMs)
	assert.Equal(t, 10, snap.SuspiciousWindowSeconds)
	assert.True(t, snap.BroadcastOnVote)
	assert.True(t, snap.MonthlyDrawEnabled)
	assert.Equal(t, 1, snap.MonthlyDrawMinVotes)
	assert.Equal(t, "lp user <player> parent addtemp arcano 30d", snap.MonthlyDrawRewardCmd)
	assert.Equal(t, 5, snap.MonthlyDrawCheckMinutes)
	assert.Empty(t, snap.VoteRewards)
	assert.Empty(t, snap.GlobalDailyGoals)
}

func TestSettingExplicitFalseOverridesDefaults(t *testing.T) {
	s := newTestSetting(t, `
broadcast-on-vote = false

[monthly-draw]
enabled = false
`)

	snap := s.Get()
	assert.False(t, snap.BroadcastOnVote)
	assert.False(t, snap.MonthlyDrawEnabled)
}

func TestSettingMalformedFileIsError(t *testing.T) {
	path := filepath.Join(t.TempDir(), "vvotes.toml")
	writeFile(t, path, "timezone = [broken")

	s := NewSettingService(path)
	assert.Error(t, s.Load())
}

func TestSettingReloadSwapsSnapshot(t *testing.T) {
	path := filepath.Join(t.TempDir(), "vvotes.toml")
	writeFile(t, path, `suspicious-window-seconds = 30`)

	s := NewSettingService(path)
	require.NoError(t, s.Load())
	old := s.Get()
	assert.Equal(t, 30, old.SuspiciousWindowSeconds)

	writeFile(t, path, `suspicious-window-seconds = 60`)
	require.NoError(t, s.Reload())

	assert.Equal(t, 60, s.Get().SuspiciousWindowSeconds)
	// The previously captured snapshot is untouched.
	assert.Equal(t, 30, old.SuspiciousWindowSeconds)
}
