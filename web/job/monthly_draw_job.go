package job

import (
	"vvotes/logger"
	"vvotes/util/common"
	"vvotes/web/service"
)

// MonthlyDrawJob periodically checks whether the previous month still
// needs its lottery drawn. Most runs find the month already drawn and
// do nothing.
type MonthlyDrawJob struct {
	drawService *service.DrawService
}

func NewMonthlyDrawJob(drawService *service.DrawService) *MonthlyDrawJob {
	return &MonthlyDrawJob{drawService: drawService}
}

func (j *MonthlyDrawJob) Run() {
	defer common.Recover("monthly draw job")

	result := j.drawService.RunAutoDrawIfNeeded()
	switch result.Status {
	case service.DrawSuccess:
		logger.Infof("auto monthly draw executed for %s, winner: %s", result.MonthKey, result.WinnerName)
	case service.DrawError:
		logger.Error("auto monthly draw failed:", result.Err)
	}
}
