package main

import (
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"vvotes/config"
	"vvotes/database"
	"vvotes/logger"
	"vvotes/web"
	"vvotes/web/global"
	"vvotes/web/service"

	"github.com/joho/godotenv"
	"github.com/op/go-logging"
)

func runWebServer() {
	switch config.GetLogLevel() {
	case config.Debug:
		logger.InitLogger(logging.DEBUG)
	case config.Info:
		logger.InitLogger(logging.INFO)
	case config.Warn:
		logger.InitLogger(logging.WARNING)
	case config.Error:
		logger.InitLogger(logging.ERROR)
	default:
		fmt.Println("unknown log level:", config.GetLogLevel())
		return
	}

	settingService := service.NewSettingService(config.GetSettingsPath())
	if err := settingService.Load(); err != nil {
		logger.Error("load settings failed:", err)
		return
	}

	err := database.InitDB(config.GetDBPath(), settingService.Get().BusyTimeoutMs)
	if err != nil {
		logger.Error("init database failed:", err)
		return
	}

	server := web.NewServer(settingService)
	global.SetWebServer(server)
	if err := server.Start(); err != nil {
		logger.Error("start web server failed:", err)
		return
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGHUP, syscall.SIGTERM, syscall.SIGINT)
	for sig := range sigCh {
		if sig == syscall.SIGHUP {
			logger.Info("reloading settings on SIGHUP")
			if err := settingService.Reload(); err != nil {
				logger.Error("reload settings failed:", err)
			}
			continue
		}
		logger.Infof("shutting down on signal %v", sig)
		err := server.Stop()
		if err != nil {
			logger.Warning("stop web server failed:", err)
		}
		if err := database.Checkpoint(); err != nil {
			logger.Warning("wal checkpoint failed:", err)
		}
		if err := database.CloseDB(); err != nil {
			logger.Warning("close database failed:", err)
		}
		return
	}
}

func main() {
	if len(os.Args) > 1 && (os.Args[1] == "-v" || os.Args[1] == "--version") {
		fmt.Println(config.GetVersion())
		return
	}

	flag.Parse()

	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		fmt.Println("load .env failed:", err)
	}

	runWebServer()
}
