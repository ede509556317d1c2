package config

import (
	_ "embed"
	"fmt"
	"os"
	"strings"
)

//go:embed version
var version string

//go:embed name
var name string

type LogLevel string

const (
	Debug LogLevel = "debug"
	Info  LogLevel = "info"
	Warn  LogLevel = "warn"
	Error LogLevel = "error"
)

func GetVersion() string {
	return strings.TrimSpace(version)
}

func GetName() string {
	return strings.TrimSpace(name)
}

func GetLogLevel() LogLevel {
	if IsDebug() {
		return Debug
	}
	logLevel := os.Getenv("VVOTES_LOG_LEVEL")
	if logLevel == "" {
		return Info
	}
	return LogLevel(logLevel)
}

func IsDebug() bool {
	return os.Getenv("VVOTES_DEBUG") == "true"
}

func GetDBFolderPath() string {
	dbFolderPath := os.Getenv("VVOTES_DB_FOLDER")
	if dbFolderPath == "" {
		dbFolderPath = "/etc/vvotes"
	}
	return dbFolderPath
}

func GetDBPath() string {
	return fmt.Sprintf("%s/%s.db", GetDBFolderPath(), GetName())
}

func GetSettingsPath() string {
	settingsPath := os.Getenv("VVOTES_SETTINGS_FILE")
	if settingsPath == "" {
		settingsPath = fmt.Sprintf("%s/%s.toml", GetDBFolderPath(), GetName())
	}
	return settingsPath
}

func GetListen() string {
	listen := os.Getenv("VVOTES_LISTEN")
	if listen == "" {
		listen = "127.0.0.1"
	}
	return listen
}

func GetPort() string {
	port := os.Getenv("VVOTES_PORT")
	if port == "" {
		port = "8123"
	}
	return port
}

// GetAPIToken returns the shared secret protecting the HTTP surface.
// An empty token disables authentication, which is only sane behind a
// loopback listener.
func GetAPIToken() string {
	return os.Getenv("VVOTES_API_TOKEN")
}

func GetRconAddr() string {
	return os.Getenv("VVOTES_RCON_ADDR")
}

func GetRconPassword() string {
	return os.Getenv("VVOTES_RCON_PASSWORD")
}

func GetTgBotToken() string {
	return os.Getenv("VVOTES_TG_TOKEN")
}

// GetTgBotChatIds returns the comma separated admin chat id list.
func GetTgBotChatIds() string {
	return os.Getenv("VVOTES_TG_CHAT_IDS")
}
