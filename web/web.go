package web

import (
	"context"
	"fmt"
	"io"
	"net"
	"net/http"

	"vvotes/config"
	"vvotes/logger"
	"vvotes/util/common"
	"vvotes/web/controller"
	"vvotes/web/job"
	"vvotes/web/service"

	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	"github.com/robfig/cron/v3"
)

type Server struct {
	httpServer *http.Server
	listener   net.Listener

	api *controller.APIController

	settingService *service.SettingService
	voteService    *service.VoteService
	drawService    *service.DrawService
	rewardService  *service.RewardService
	clock          *service.PeriodClock
	tgbot          service.Tgbot

	cron *cron.Cron

	ctx    context.Context
	cancel context.CancelFunc
}

func NewServer(settingService *service.SettingService) *Server {
	ctx, cancel := context.WithCancel(context.Background())
	clock := service.NewPeriodClock(settingService)
	rewardService := service.NewRewardService()
	return &Server{
		settingService: settingService,
		clock:          clock,
		rewardService:  rewardService,
		voteService:    service.NewVoteService(settingService, clock, rewardService),
		drawService:    service.NewDrawService(settingService, clock, rewardService),
		ctx:            ctx,
		cancel:         cancel,
	}
}

func (s *Server) initRouter() (*gin.Engine, error) {
	if config.IsDebug() {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.DefaultWriter = io.Discard
		gin.DefaultErrorWriter = io.Discard
		gin.SetMode(gin.ReleaseMode)
	}

	engine := gin.Default()
	engine.Use(gzip.Gzip(gzip.DefaultCompression))

	g := engine.Group("/")
	s.api = controller.NewAPIController(g, s.voteService, s.drawService, s.settingService)

	return engine, nil
}

func (s *Server) startTask() {
	snap := s.settingService.Get()

	if snap.MonthlyDrawEnabled {
		spec := fmt.Sprintf("@every %dm", snap.MonthlyDrawCheckMinutes)
		_, err := s.cron.AddJob(spec, job.NewMonthlyDrawJob(s.drawService))
		if err != nil {
			logger.Warning("add monthly draw job failed:", err)
		}
	}

	_, err := s.cron.AddJob("@daily", job.NewDailySummaryJob(s.voteService, s.clock))
	if err != nil {
		logger.Warning("add daily summary job failed:", err)
	}
}

func (s *Server) Start() (err error) {
	defer func() {
		if err != nil {
			s.Stop()
		}
	}()

	loc := s.settingService.Get().Location
	s.cron = cron.New(cron.WithLocation(loc))
	s.cron.Start()

	engine, err := s.initRouter()
	if err != nil {
		return err
	}

	if err := s.tgbot.Start(); err != nil {
		logger.Warning("telegram notifier not started:", err)
	}

	listenAddr := net.JoinHostPort(config.GetListen(), config.GetPort())
	listener, err := net.Listen("tcp", listenAddr)
	if err != nil {
		return err
	}
	s.listener = listener
	logger.Info("web server running on", listener.Addr())

	s.httpServer = &http.Server{
		Handler: engine,
	}

	go func() {
		s.httpServer.Serve(listener)
	}()

	s.startTask()

	return nil
}

func (s *Server) Stop() error {
	s.cancel()
	if s.cron != nil {
		s.cron.Stop()
	}
	if s.tgbot.IsRunning() {
		s.tgbot.Stop()
	}
	var err1 error
	var err2 error
	if s.httpServer != nil {
		err1 = s.httpServer.Shutdown(s.ctx)
	}
	if s.listener != nil {
		err2 = s.listener.Close()
	}
	return common.Combine(err1, err2)
}

func (s *Server) GetCtx() context.Context {
	return s.ctx
}

func (s *Server) GetCron() *cron.Cron {
	return s.cron
}
