package job

import (
	"fmt"

	"vvotes/database"
	"vvotes/database/model"
	"vvotes/logger"
	"vvotes/util/common"
	"vvotes/web/service"
)

// DailySummaryJob sends a once-a-day activity digest to the admin
// chats. Read-only; notification delivery is best-effort.
type DailySummaryJob struct {
	voteService *service.VoteService
	clock       *service.PeriodClock
	tgbot       service.Tgbot
}

func NewDailySummaryJob(voteService *service.VoteService, clock *service.PeriodClock) *DailySummaryJob {
	return &DailySummaryJob{voteService: voteService, clock: clock}
}

func (j *DailySummaryJob) Run() {
	defer common.Recover("daily summary job")

	if !j.tgbot.IsRunning() {
		return
	}

	globalDaily, err := j.voteService.GetGlobalDailyVotes()
	if err != nil {
		logger.Warning("daily summary: reading global counter failed:", err)
		return
	}

	msg := fmt.Sprintf("📊 Daily summary\nGlobal votes today: %s", common.FormatAmount(globalDaily))

	var top model.MonthlySnapshot
	err = database.GetDB().Where("month_key = ?", j.clock.Current().MonthKey).
		Order("votes desc").First(&top).Error
	if err == nil {
		msg += fmt.Sprintf("\nTop this month: %s (%s votes)", top.PlayerName, common.FormatAmount(top.Votes))
	} else if !database.IsNotFound(err) {
		logger.Warning("daily summary: reading top snapshot failed:", err)
	}

	j.tgbot.SendMsgToAdmins(msg)
}
