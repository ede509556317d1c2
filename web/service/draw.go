package service

import (
	"fmt"

	"vvotes/database"
	"vvotes/database/model"
	"vvotes/logger"
	"vvotes/util/common"

	"gorm.io/gorm"
)

type DrawStatus string

const (
	DrawSuccess        DrawStatus = "success"
	DrawNoParticipants DrawStatus = "no_participants"
	DrawAlreadyDrawn   DrawStatus = "already_drawn"
	DrawDisabled       DrawStatus = "disabled"
	DrawInvalidMonth   DrawStatus = "invalid_month"
	DrawError          DrawStatus = "error"
)

// DrawResult is the outcome of a monthly draw attempt. Every status
// except DrawError is an expected domain outcome, not a failure.
type DrawResult struct {
	Status     DrawStatus `json:"status"`
	MonthKey   string     `json:"monthKey"`
	WinnerName string     `json:"winnerName,omitempty"`
	TopVotes   float64    `json:"topVotes"`
	Candidates int        `json:"candidates"`
	Err        string     `json:"error,omitempty"`
}

// DrawService runs the monthly lottery: picks one winner uniformly
// among the month's top scorers and records the draw permanently. The
// existence check and the record insert share one transaction, so a
// month can be drawn at most once even under concurrent triggers.
type DrawService struct {
	settingService *SettingService
	clock          *PeriodClock
	rewardService  *RewardService
	tgbot          adminNotifier

	// pick selects an index in [0, n); overridable for deterministic tests.
	pick func(n int) int
}

func NewDrawService(settingService *SettingService, clock *PeriodClock, rewardService *RewardService) *DrawService {
	return &DrawService{
		settingService: settingService,
		clock:          clock,
		rewardService:  rewardService,
		tgbot:          new(Tgbot),
		pick:           common.RandomInt,
	}
}

// RunAutoDrawIfNeeded draws the previous calendar month. Scheduled
// ticks call this; it is expected to mostly return DrawAlreadyDrawn.
func (s *DrawService) RunAutoDrawIfNeeded() DrawResult {
	if !s.settingService.Get().MonthlyDrawEnabled {
		return DrawResult{Status: DrawDisabled}
	}
	return s.DrawMonthly(s.clock.PreviousMonthKey(), "auto")
}

// DrawMonthly draws the given month (previous month when empty) on
// behalf of executedBy.
func (s *DrawService) DrawMonthly(monthKey string, executedBy string) DrawResult {
	snap := s.settingService.Get()
	if !snap.MonthlyDrawEnabled {
		return DrawResult{Status: DrawDisabled}
	}
	if monthKey == "" {
		monthKey = s.clock.PreviousMonthKey()
	}
	if !ValidMonthKey(monthKey) {
		return DrawResult{Status: DrawInvalidMonth, MonthKey: monthKey}
	}

	var winner model.MonthlySnapshot
	var maxVotes float64
	var candidateCount int

	err := database.GetDB().Transaction(func(tx *gorm.DB) error {
		var existing model.MonthlyDraw
		err := tx.Where("month_key = ?", monthKey).First(&existing).Error
		if err == nil {
			return errAlreadyDrawn
		}
		if !database.IsNotFound(err) {
			return err
		}

		err = tx.Model(&model.MonthlySnapshot{}).Where("month_key = ?", monthKey).
			Select("COALESCE(MAX(votes), 0)").Scan(&maxVotes).Error
		if err != nil {
			return err
		}
		if maxVotes < float64(snap.MonthlyDrawMinVotes) {
			return errNoParticipants
		}

		var candidates []model.MonthlySnapshot
		err = tx.Where("month_key = ? AND votes = ?", monthKey, maxVotes).
			Order("player_name asc").Find(&candidates).Error
		if err != nil {
			return err
		}
		if len(candidates) == 0 {
			return errNoParticipants
		}

		candidateCount = len(candidates)
		winner = candidates[s.pick(candidateCount)]

		return tx.Create(&model.MonthlyDraw{
			MonthKey:        monthKey,
			WinnerUuid:      winner.Uuid,
			WinnerName:      winner.PlayerName,
			TopVotes:        maxVotes,
			CandidatesCount: candidateCount,
			ExecutedBy:      executedBy,
			ExecutedEpoch:   s.clock.Current().Epoch,
			RewardCommand:   snap.MonthlyDrawRewardCmd,
		}).Error
	})

	switch err {
	case nil:
	case errAlreadyDrawn:
		return DrawResult{Status: DrawAlreadyDrawn, MonthKey: monthKey}
	case errNoParticipants:
		return DrawResult{Status: DrawNoParticipants, MonthKey: monthKey, TopVotes: maxVotes}
	default:
		logger.Errorf("monthly draw failed for %s: %v", monthKey, err)
		return DrawResult{Status: DrawError, MonthKey: monthKey, Err: err.Error()}
	}

	// The record is durable; reward and announcement are best-effort.
	placeholders := map[string]string{
		"player":     winner.PlayerName,
		"uuid":       winner.Uuid,
		"month":      monthKey,
		"votes":      common.FormatAmount(maxVotes),
		"candidates": fmt.Sprintf("%d", candidateCount),
	}
	s.rewardService.Dispatch([]string{snap.MonthlyDrawRewardCmd}, placeholders)
	s.tgbot.SendMsgToAdmins(fmt.Sprintf("🎉 Monthly draw %s: winner %s with %s votes (%d candidates)",
		monthKey, winner.PlayerName, common.FormatAmount(maxVotes), candidateCount))

	return DrawResult{
		Status:     DrawSuccess,
		MonthKey:   monthKey,
		WinnerName: winner.PlayerName,
		TopVotes:   maxVotes,
		Candidates: candidateCount,
	}
}

var (
	errAlreadyDrawn   = common.NewError("month already drawn")
	errNoParticipants = common.NewError("no participants")
)
