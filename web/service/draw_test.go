package service

import (
	"strings"
	"testing"
	"time"

	"vvotes/database"
	"vvotes/database/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func insertSnapshot(t *testing.T, uuid string, name string, monthKey string, votes float64) {
	t.Helper()
	require.NoError(t, database.GetDB().Create(&model.MonthlySnapshot{
		Uuid:            uuid,
		MonthKey:        monthKey,
		PlayerName:      name,
		Votes:           votes,
		LastUpdateEpoch: 1,
	}).Error)
}

const drawSettings = `
timezone = "UTC"

[monthly-draw]
enabled = true
min-votes = 1
reward-command = "lp user <player> parent addtemp arcano 30d"
`

func TestDrawTieBreak(t *testing.T) {
	f := newVoteFixture(t, drawSettings)

	insertSnapshot(t, "22222222-2222-2222-2222-222222222222", "alice", "2024-03", 10)
	insertSnapshot(t, "33333333-3333-3333-3333-333333333333", "bob", "2024-03", 10)
	insertSnapshot(t, "44444444-4444-4444-4444-444444444444", "carol", "2024-03", 7)

	// Candidates are the two tied at 10, enumerated by name; pin the pick.
	f.draw.pick = func(n int) int {
		assert.Equal(t, 2, n)
		return 1
	}

	result := f.draw.DrawMonthly("2024-03", "tester")
	assert.Equal(t, DrawSuccess, result.Status)
	assert.Equal(t, "bob", result.WinnerName)
	assert.Equal(t, 10.0, result.TopVotes)
	assert.Equal(t, 2, result.Candidates)

	// Reward dispatched with placeholders expanded.
	require.NotEmpty(t, *f.dispatched)
	assert.Equal(t, "lp user bob parent addtemp arcano 30d", (*f.dispatched)[0])

	// Second draw for the same month is refused and changes nothing.
	before := countDraws(t)
	again := f.draw.DrawMonthly("2024-03", "tester")
	assert.Equal(t, DrawAlreadyDrawn, again.Status)
	assert.Equal(t, before, countDraws(t))
}

func countDraws(t *testing.T) int64 {
	t.Helper()
	var count int64
	require.NoError(t, database.GetDB().Model(&model.MonthlyDraw{}).Count(&count).Error)
	return count
}

func TestDrawRecordsHistory(t *testing.T) {
	f := newVoteFixture(t, drawSettings)

	insertSnapshot(t, testUuid, "Steve", "2024-01", 4)
	result := f.draw.DrawMonthly("2024-01", "console")
	require.Equal(t, DrawSuccess, result.Status)

	var record model.MonthlyDraw
	require.NoError(t, database.GetDB().Where("month_key = ?", "2024-01").First(&record).Error)
	assert.Equal(t, testUuid, record.WinnerUuid)
	assert.Equal(t, "Steve", record.WinnerName)
	assert.Equal(t, 4.0, record.TopVotes)
	assert.Equal(t, 1, record.CandidatesCount)
	assert.Equal(t, "console", record.ExecutedBy)
	assert.True(t, strings.Contains(record.RewardCommand, "<player>"))
}

func TestDrawNoParticipants(t *testing.T) {
	f := newVoteFixture(t, drawSettings)

	result := f.draw.DrawMonthly("2024-03", "tester")
	assert.Equal(t, DrawNoParticipants, result.Status)
	assert.Zero(t, result.TopVotes)
	assert.Zero(t, countDraws(t))
}

func TestDrawBelowMinimum(t *testing.T) {
	f := newVoteFixture(t, drawSettings)

	insertSnapshot(t, testUuid, "Steve", "2024-03", 0)
	result := f.draw.DrawMonthly("2024-03", "tester")
	assert.Equal(t, DrawNoParticipants, result.Status)
	assert.Equal(t, 0.0, result.TopVotes)
}

func TestDrawDisabled(t *testing.T) {
	f := newVoteFixture(t, `
timezone = "UTC"

[monthly-draw]
enabled = false
`)

	result := f.draw.DrawMonthly("2024-03", "tester")
	assert.Equal(t, DrawDisabled, result.Status)
	assert.Zero(t, countDraws(t))
}

func TestDrawInvalidMonth(t *testing.T) {
	f := newVoteFixture(t, drawSettings)

	for _, key := range []string{"2024-13", "march", "2024-03-01"} {
		result := f.draw.DrawMonthly(key, "tester")
		assert.Equal(t, DrawInvalidMonth, result.Status, key)
	}
}

func TestDrawDefaultsToPreviousMonth(t *testing.T) {
	f := newVoteFixture(t, drawSettings)
	f.now = time.Date(2024, 3, 2, 8, 0, 0, 0, time.UTC)

	insertSnapshot(t, testUuid, "Steve", "2024-02", 6)

	result := f.draw.DrawMonthly("", "tester")
	assert.Equal(t, DrawSuccess, result.Status)
	assert.Equal(t, "2024-02", result.MonthKey)
}

func TestAutoDrawTargetsPreviousMonth(t *testing.T) {
	f := newVoteFixture(t, drawSettings)
	f.now = time.Date(2024, 1, 5, 8, 0, 0, 0, time.UTC)

	insertSnapshot(t, testUuid, "Steve", "2023-12", 3)

	result := f.draw.RunAutoDrawIfNeeded()
	assert.Equal(t, DrawSuccess, result.Status)
	assert.Equal(t, "2023-12", result.MonthKey)

	// The scheduled check is expected to no-op afterwards.
	again := f.draw.RunAutoDrawIfNeeded()
	assert.Equal(t, DrawAlreadyDrawn, again.Status)
}
