package service

import (
	"os"
	"sort"
	"strconv"
	"time"

	"vvotes/logger"
	"vvotes/util/common"

	"github.com/pelletier/go-toml/v2"
	"go.uber.org/atomic"
)

const defaultTimezone = "America/Santiago"

// settingsFile mirrors the on-disk TOML layout. Goal tables are keyed
// by the threshold rendered as a string, the way TOML tables force it.
type settingsFile struct {
	Timezone                string              `toml:"timezone"`
	BusyTimeoutMs           int                 `toml:"busy-timeout-ms"`
	BroadcastOnVote         *bool               `toml:"broadcast-on-vote"`
	SuspiciousWindowSeconds int                 `toml:"suspicious-window-seconds"`
	VoteRewards             []string            `toml:"vote-rewards"`
	GlobalDailyGoals        map[string][]string `toml:"global-daily-goals"`
	PlayerMonthlyGoals      map[string][]string `toml:"player-monthly-goals"`
	MonthlyStreakRewards    map[string][]string `toml:"monthly-streak-rewards"`
	GlobalRecurring         recurringSection    `toml:"global-recurring"`
	MonthlyDraw             drawSection         `toml:"monthly-draw"`
}

type recurringSection struct {
	StartAfter int      `toml:"start-after"`
	Every      int      `toml:"every"`
	Commands   []string `toml:"commands"`
}

// Enabled-by-default keys are pointers so an absent key is told apart
// from an explicit false.
type drawSection struct {
	Enabled          *bool  `toml:"enabled"`
	MinVotes         int    `toml:"min-votes"`
	RewardCommand    string `toml:"reward-command"`
	AutoCheckMinutes int    `toml:"auto-check-minutes"`
}

// GoalTier is one configured threshold with its reward command templates.
type GoalTier struct {
	Value    int
	Commands []string
}

// Settings is an immutable snapshot handed to each transaction. Goal
// slices are sorted ascending by threshold.
type Settings struct {
	Timezone                string
	Location                *time.Location
	BusyTimeoutMs           int
	BroadcastOnVote         bool
	SuspiciousWindowSeconds int
	VoteRewards             []string
	GlobalDailyGoals        []GoalTier
	PlayerMonthlyGoals      []GoalTier
	MonthlyStreakRewards    []GoalTier
	GlobalRecurringStart    int
	GlobalRecurringEvery    int
	GlobalRecurringCommands []string
	MonthlyDrawEnabled      bool
	MonthlyDrawMinVotes     int
	MonthlyDrawRewardCmd    string
	MonthlyDrawCheckMinutes int
}

// SettingService loads the settings file and publishes an immutable
// snapshot. Reload swaps the pointer atomically so an in-flight
// transaction never observes a half-reloaded configuration.
type SettingService struct {
	path     string
	snapshot atomic.Pointer[Settings]
}

func NewSettingService(path string) *SettingService {
	return &SettingService{path: path}
}

// Load parses the settings file. A missing file yields defaults with a
// warning; a malformed file is an error.
func (s *SettingService) Load() error {
	var file settingsFile
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			logger.Warning("settings file not found, using defaults:", s.path)
		} else {
			return err
		}
	} else if err := toml.Unmarshal(data, &file); err != nil {
		return common.NewErrorf("parse settings %s: %v", s.path, err)
	}
	s.snapshot.Store(buildSettings(&file))
	return nil
}

// Reload re-reads the file and swaps the snapshot.
func (s *SettingService) Reload() error {
	return s.Load()
}

// Get returns the current immutable snapshot. Callers capture it once
// per operation and never re-read mid-transaction.
func (s *SettingService) Get() *Settings {
	snap := s.snapshot.Load()
	if snap == nil {
		snap = buildSettings(&settingsFile{})
		s.snapshot.Store(snap)
	}
	return snap
}

func buildSettings(file *settingsFile) *Settings {
	tz := file.Timezone
	if tz == "" {
		tz = defaultTimezone
	}
	loc, err := time.LoadLocation(tz)
	if err != nil {
		logger.Warningf("invalid timezone %q, falling back to %s", tz, defaultTimezone)
		tz = defaultTimezone
		loc, _ = time.LoadLocation(defaultTimezone)
	}

	busyTimeout := file.BusyTimeoutMs
	if busyTimeout <= 0 {
		busyTimeout = 5000
	}
	suspicious := file.SuspiciousWindowSeconds
	if suspicious <= 0 {
		suspicious = 10
	}

	broadcastOnVote := true
	if file.BroadcastOnVote != nil {
		broadcastOnVote = *file.BroadcastOnVote
	}

	draw := file.MonthlyDraw
	drawEnabled := true
	if draw.Enabled != nil {
		drawEnabled = *draw.Enabled
	}
	if draw.MinVotes <= 0 {
		draw.MinVotes = 1
	}
	if draw.RewardCommand == "" {
		draw.RewardCommand = "lp user <player> parent addtemp arcano 30d"
	}
	if draw.AutoCheckMinutes <= 0 {
		draw.AutoCheckMinutes = 5
	}

	return &Settings{
		Timezone:                tz,
		Location:                loc,
		BusyTimeoutMs:           busyTimeout,
		BroadcastOnVote:         broadcastOnVote,
		SuspiciousWindowSeconds: suspicious,
		VoteRewards:             file.VoteRewards,
		GlobalDailyGoals:        parseGoalTiers(file.GlobalDailyGoals),
		PlayerMonthlyGoals:      parseGoalTiers(file.PlayerMonthlyGoals),
		MonthlyStreakRewards:    parseGoalTiers(file.MonthlyStreakRewards),
		GlobalRecurringStart:    file.GlobalRecurring.StartAfter,
		GlobalRecurringEvery:    file.GlobalRecurring.Every,
		GlobalRecurringCommands: file.GlobalRecurring.Commands,
		MonthlyDrawEnabled:      drawEnabled,
		MonthlyDrawMinVotes:     draw.MinVotes,
		MonthlyDrawRewardCmd:    draw.RewardCommand,
		MonthlyDrawCheckMinutes: draw.AutoCheckMinutes,
	}
}

func parseGoalTiers(raw map[string][]string) []GoalTier {
	tiers := make([]GoalTier, 0, len(raw))
	for key, commands := range raw {
		value, err := strconv.Atoi(key)
		if err != nil {
			logger.Warningf("ignoring goal with non-numeric threshold %q", key)
			continue
		}
		tiers = append(tiers, GoalTier{Value: value, Commands: commands})
	}
	sort.Slice(tiers, func(i, j int) bool { return tiers[i].Value < tiers[j].Value })
	return tiers
}
