package service

import (
	"fmt"
	"math"
	"strconv"

	"vvotes/database"
	"vvotes/database/model"
	"vvotes/logger"
	"vvotes/util/common"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// VoteService settles scoring events: one atomic transaction per event
// covering counter updates, period rollover, streaks, snapshot upkeep,
// reward claims and the audit log. Reward commands queue inside the
// transaction and dispatch only after commit.
type VoteService struct {
	settingService *SettingService
	clock          *PeriodClock
	rewardService  *RewardService
	tgbot          adminNotifier
}

func NewVoteService(settingService *SettingService, clock *PeriodClock, rewardService *RewardService) *VoteService {
	return &VoteService{
		settingService: settingService,
		clock:          clock,
		rewardService:  rewardService,
		tgbot:          new(Tgbot),
	}
}

// HandleVote settles a vote-relay notification. Failures are logged
// and the vote is dropped; nothing propagates to the notifier.
func (s *VoteService) HandleVote(uuid string, name string, serviceName string) {
	if err := s.Settle(uuid, name, serviceName, 1, true); err != nil {
		logger.Errorf("error settling vote for %s: %v", name, err)
		s.tgbot.SendMsgToAdmins(fmt.Sprintf("⚠️ Vote settlement failed for %s: %v", name, err))
	}
}

// AddManualVotes credits votes from an admin. Standard per-vote
// rewards are skipped; the error is surfaced to the caller.
func (s *VoteService) AddManualVotes(uuid string, name string, amount float64) error {
	return s.Settle(uuid, name, "manual", amount, false)
}

// Settle applies one scoring event. Non-positive amounts are a no-op.
func (s *VoteService) Settle(uuid string, name string, serviceName string, amount float64, voteRewards bool) error {
	if amount <= 0 {
		return nil
	}

	snap := s.settingService.Get()
	ctx := s.clock.Current()

	var pending [][]string
	var recurringReached []int
	placeholders := make(map[string]string)
	suspiciousDiff := int64(-1)
	highestMilestone := 0

	err := database.GetDB().Transaction(func(tx *gorm.DB) error {
		player, err := fetchOrCreatePlayer(tx, uuid, name)
		if err != nil {
			return err
		}
		player, err = normalizePlayer(tx, player, ctx)
		if err != nil {
			return err
		}

		if player.LastVoteEpoch > 0 {
			diff := ctx.Epoch - player.LastVoteEpoch
			if diff <= int64(snap.SuspiciousWindowSeconds) {
				suspiciousDiff = diff
				logger.Warningf("suspicious vote: player=%s service=%s diff=%ds", name, serviceName, diff)
			}
		}

		streak := computeMonthlyStreak(player.StreakMonthly, player.LastMonthKey, ctx.MonthKey)
		newTotal := player.TotalVotes + amount
		newDaily := player.DailyVotes + amount
		newMonthly := player.MonthlyVotes + amount

		err = updatePlayer(tx, uuid, name, newTotal, newDaily, newMonthly, streak, ctx.DayKey, ctx.MonthKey, ctx.Epoch)
		if err != nil {
			return err
		}
		if err := upsertMonthlySnapshot(tx, uuid, name, ctx.MonthKey, newMonthly, ctx.Epoch); err != nil {
			return err
		}

		prevGlobal, err := fetchGlobalDaily(tx, ctx)
		if err != nil {
			return err
		}
		newGlobal := prevGlobal + amount
		err = tx.Model(&model.GlobalStat{}).Where("id = 1").
			Updates(map[string]any{"daily_votes": newGlobal, "last_daily_reset": ctx.DayKey}).Error
		if err != nil {
			return err
		}

		voteLog := model.VoteLog{
			Uuid:         uuid,
			PlayerName:   name,
			ServiceName:  serviceName,
			Amount:       amount,
			Multiplier:   amount,
			CreatedEpoch: ctx.Epoch,
		}
		if err := tx.Create(&voteLog).Error; err != nil {
			return err
		}

		fillPlaceholders(placeholders, uuid, name, serviceName, amount, newTotal, newDaily, newMonthly, streak, newGlobal)

		if voteRewards {
			pending = append(pending, snap.VoteRewards)
		}

		for _, tier := range snap.MonthlyStreakRewards {
			if streak != tier.Value {
				continue
			}
			claimed, err := claimPlayerGoal(tx, uuid, "streak_monthly", tier.Value, ctx.MonthKey)
			if err != nil {
				return err
			}
			if claimed {
				pending = append(pending, tier.Commands)
			}
		}

		for _, tier := range snap.PlayerMonthlyGoals {
			if newMonthly < float64(tier.Value) {
				continue
			}
			claimed, err := claimPlayerGoal(tx, uuid, "monthly", tier.Value, ctx.MonthKey)
			if err != nil {
				return err
			}
			if claimed {
				pending = append(pending, tier.Commands)
				if tier.Value > highestMilestone {
					highestMilestone = tier.Value
				}
			}
		}

		for _, tier := range snap.GlobalDailyGoals {
			if newGlobal < float64(tier.Value) {
				continue
			}
			claimed, err := claimGlobalGoal(tx, "global_daily", tier.Value, ctx.DayKey)
			if err != nil {
				return err
			}
			if claimed {
				pending = append(pending, tier.Commands)
			}
		}

		if snap.GlobalRecurringStart > 0 && snap.GlobalRecurringEvery > 0 && len(snap.GlobalRecurringCommands) > 0 {
			goalType := "global_recurring_" + strconv.Itoa(snap.GlobalRecurringEvery)
			start := snap.GlobalRecurringStart + snap.GlobalRecurringEvery
			first := nextRecurringThreshold(int(math.Floor(prevGlobal)), snap.GlobalRecurringEvery)
			if first < start {
				first = start
			}
			last := int(math.Floor(newGlobal))
			for threshold := first; threshold <= last; threshold += snap.GlobalRecurringEvery {
				claimed, err := claimGlobalGoal(tx, goalType, threshold, ctx.DayKey)
				if err != nil {
					return err
				}
				if claimed {
					recurringReached = append(recurringReached, threshold)
				}
			}
		}

		return nil
	})
	if err != nil {
		return err
	}

	// Post-commit side effects only from here on. A failure below can
	// no longer roll anything back.
	if suspiciousDiff >= 0 {
		s.tgbot.SendMsgToAdmins(fmt.Sprintf("🚨 Suspicious vote: %s via %s, %ds since last", name, serviceName, suspiciousDiff))
	}
	if voteRewards && snap.BroadcastOnVote {
		s.tgbot.SendMsgToAdmins(fmt.Sprintf("🗳 %s voted on %s (total %s)", name, serviceName, placeholders["total"]))
	}
	if highestMilestone > 0 {
		placeholders["monthly_milestone"] = strconv.Itoa(highestMilestone)
	}
	for _, commands := range pending {
		s.rewardService.Dispatch(commands, placeholders)
	}
	for _, threshold := range recurringReached {
		recurringPlaceholders := make(map[string]string, len(placeholders)+1)
		for k, v := range placeholders {
			recurringPlaceholders[k] = v
		}
		recurringPlaceholders["goal"] = strconv.Itoa(threshold)
		s.rewardService.Dispatch(snap.GlobalRecurringCommands, recurringPlaceholders)
	}
	return nil
}

// GetStats returns the player's record normalized for the current
// period, creating a zeroed record on first observation.
func (s *VoteService) GetStats(uuid string, name string) (*model.Player, error) {
	ctx := s.clock.Current()
	var player *model.Player
	err := database.GetDB().Transaction(func(tx *gorm.DB) error {
		p, err := fetchOrCreatePlayer(tx, uuid, name)
		if err != nil {
			return err
		}
		player, err = normalizePlayer(tx, p, ctx)
		return err
	})
	if err != nil {
		return nil, err
	}
	return player, nil
}

// GetGlobalDailyVotes returns the server-wide counter, reading stale
// state as zero without rewriting it.
func (s *VoteService) GetGlobalDailyVotes() (float64, error) {
	ctx := s.clock.Current()
	return fetchGlobalDaily(database.GetDB(), ctx)
}

// NextGlobalGoal returns the smallest configured global-daily threshold
// strictly above current, or -1.
func (s *VoteService) NextGlobalGoal(current float64) int {
	for _, tier := range s.settingService.Get().GlobalDailyGoals {
		if current < float64(tier.Value) {
			return tier.Value
		}
	}
	return -1
}

// NextMonthlyGoal is the per-player monthly counterpart of NextGlobalGoal.
func (s *VoteService) NextMonthlyGoal(current float64) int {
	for _, tier := range s.settingService.Get().PlayerMonthlyGoals {
		if current < float64(tier.Value) {
			return tier.Value
		}
	}
	return -1
}

// ForceResetGlobalDaily zeroes the global daily counter for today.
func (s *VoteService) ForceResetGlobalDaily() error {
	ctx := s.clock.Current()
	return database.GetDB().Model(&model.GlobalStat{}).Where("id = 1").
		Updates(map[string]any{"daily_votes": 0, "last_daily_reset": ctx.DayKey}).Error
}

// ForceResetPlayerMonthly zeroes one player's monthly counter for the
// current month.
func (s *VoteService) ForceResetPlayerMonthly(uuid string) error {
	ctx := s.clock.Current()
	return database.GetDB().Model(&model.Player{}).Where("uuid = ?", uuid).
		Updates(map[string]any{"monthly_votes": 0, "last_month_key": ctx.MonthKey}).Error
}

// computeMonthlyStreak applies the consecutive-month participation rule:
// first participation starts at 1, a same-month repeat keeps the value,
// the directly preceding month increments it, any gap resets to 1.
func computeMonthlyStreak(prevStreak int, prevMonthKey string, currentMonthKey string) int {
	if prevMonthKey == "" {
		return 1
	}
	if prevMonthKey == currentMonthKey {
		return prevStreak
	}
	if prevMonthKey == monthBefore(currentMonthKey) {
		return prevStreak + 1
	}
	return 1
}

func nextRecurringThreshold(value int, step int) int {
	mod := value % step
	if mod == 0 {
		return value + step
	}
	return value + (step - mod)
}

func fetchOrCreatePlayer(tx *gorm.DB, uuid string, name string) (*model.Player, error) {
	var player model.Player
	err := tx.Where("uuid = ?", uuid).First(&player).Error
	if err == nil {
		return &player, nil
	}
	if !database.IsNotFound(err) {
		return nil, err
	}
	player = model.Player{Uuid: uuid, Name: name}
	if err := tx.Create(&player).Error; err != nil {
		return nil, err
	}
	return &player, nil
}

// normalizePlayer zeroes counters whose period key no longer matches
// the current period, persisting immediately. Period keys themselves
// stay untouched until the next settlement writes new ones.
func normalizePlayer(tx *gorm.DB, player *model.Player, ctx PeriodContext) (*model.Player, error) {
	changed := false
	daily := player.DailyVotes
	monthly := player.MonthlyVotes

	if player.LastVoteDay != ctx.DayKey {
		daily = 0
		changed = true
	}
	if player.LastMonthKey != ctx.MonthKey {
		monthly = 0
		changed = true
	}
	if !changed {
		return player, nil
	}

	err := updatePlayer(tx, player.Uuid, player.Name, player.TotalVotes, daily, monthly,
		player.StreakMonthly, player.LastVoteDay, player.LastMonthKey, player.LastVoteEpoch)
	if err != nil {
		return nil, err
	}
	normalized := *player
	normalized.DailyVotes = daily
	normalized.MonthlyVotes = monthly
	return &normalized, nil
}

func updatePlayer(tx *gorm.DB, uuid string, name string, total float64, daily float64, monthly float64,
	streak int, lastVoteDay string, lastMonthKey string, epoch int64,
) error {
	return tx.Model(&model.Player{}).Where("uuid = ?", uuid).Updates(map[string]any{
		"name":            name,
		"total_votes":     total,
		"daily_votes":     daily,
		"monthly_votes":   monthly,
		"streak_monthly":  streak,
		"last_vote_day":   lastVoteDay,
		"last_month_key":  lastMonthKey,
		"last_vote_epoch": epoch,
	}).Error
}

func upsertMonthlySnapshot(tx *gorm.DB, uuid string, name string, monthKey string, votes float64, epoch int64) error {
	snapshot := model.MonthlySnapshot{
		Uuid:            uuid,
		MonthKey:        monthKey,
		PlayerName:      name,
		Votes:           votes,
		LastUpdateEpoch: epoch,
	}
	return tx.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "uuid"}, {Name: "month_key"}},
		DoUpdates: clause.AssignmentColumns([]string{"player_name", "votes", "last_update_epoch"}),
	}).Create(&snapshot).Error
}

// fetchGlobalDaily reads the singleton counter, treating a mismatched
// reset day as zero.
func fetchGlobalDaily(tx *gorm.DB, ctx PeriodContext) (float64, error) {
	var global model.GlobalStat
	err := tx.Where("id = 1").First(&global).Error
	if err != nil {
		if database.IsNotFound(err) {
			return 0, nil
		}
		return 0, err
	}
	if global.LastDailyReset != ctx.DayKey {
		return 0, nil
	}
	return global.DailyVotes, nil
}

func claimGlobalGoal(tx *gorm.DB, goalType string, value int, dayKey string) (bool, error) {
	result := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&model.GlobalGoalClaim{
		GoalType:  goalType,
		GoalValue: value,
		DayKey:    dayKey,
	})
	return result.RowsAffected > 0, result.Error
}

func claimPlayerGoal(tx *gorm.DB, uuid string, goalType string, value int, periodKey string) (bool, error) {
	result := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&model.PlayerGoalClaim{
		Uuid:      uuid,
		GoalType:  goalType,
		GoalValue: value,
		PeriodKey: periodKey,
	})
	return result.RowsAffected > 0, result.Error
}

func fillPlaceholders(placeholders map[string]string, uuid string, name string, serviceName string,
	amount float64, total float64, daily float64, monthly float64, streak int, globalDaily float64,
) {
	placeholders["player"] = name
	placeholders["uuid"] = uuid
	placeholders["service"] = serviceName
	placeholders["amount"] = common.FormatAmount(amount)
	placeholders["multiplier"] = "1"
	placeholders["total"] = common.FormatAmount(total)
	placeholders["daily"] = common.FormatAmount(daily)
	placeholders["monthly"] = common.FormatAmount(monthly)
	placeholders["streak_monthly"] = strconv.Itoa(streak)
	placeholders["daily_global"] = common.FormatAmount(globalDaily)
}
