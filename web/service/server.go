package service

import (
	"time"

	"vvotes/database"
	"vvotes/database/model"
	"vvotes/logger"
	"vvotes/web/global"

	"github.com/shirou/gopsutil/v4/host"
	"github.com/shirou/gopsutil/v4/load"
	"github.com/shirou/gopsutil/v4/mem"
)

var startTime = time.Now()

// Status is the runtime snapshot served by the status endpoint.
type Status struct {
	T      time.Time `json:"-"`
	Uptime uint64    `json:"uptime"`
	Loads  []float64 `json:"loads"`
	Mem    struct {
		Current uint64 `json:"current"`
		Total   uint64 `json:"total"`
	} `json:"mem"`
	AppUptime  uint64   `json:"appUptime"`
	Players    int64    `json:"players"`
	VoteLogs   int64    `json:"voteLogs"`
	CronJobs   int      `json:"cronJobs"`
	RecentLogs []string `json:"recentLogs"`
}

type ServerService struct{}

func (s *ServerService) GetStatus() *Status {
	now := time.Now()
	status := &Status{T: now}

	if uptime, err := host.Uptime(); err != nil {
		logger.Warning("get uptime failed:", err)
	} else {
		status.Uptime = uptime
	}

	if avgState, err := load.Avg(); err != nil {
		logger.Warning("get load avg failed:", err)
	} else {
		status.Loads = []float64{avgState.Load1, avgState.Load5, avgState.Load15}
	}

	if memInfo, err := mem.VirtualMemory(); err != nil {
		logger.Warning("get memory info failed:", err)
	} else {
		status.Mem.Current = memInfo.Used
		status.Mem.Total = memInfo.Total
	}

	status.AppUptime = uint64(now.Sub(startTime).Seconds())

	if server := global.GetWebServer(); server != nil {
		if c := server.GetCron(); c != nil {
			status.CronJobs = len(c.Entries())
		}
	}
	status.RecentLogs = logger.GetLogs(20, "info")

	db := database.GetDB()
	if err := db.Model(&model.Player{}).Count(&status.Players).Error; err != nil {
		logger.Warning("count players failed:", err)
	}
	if err := db.Model(&model.VoteLog{}).Count(&status.VoteLogs).Error; err != nil {
		logger.Warning("count vote logs failed:", err)
	}

	return status
}
