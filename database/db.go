package database

import (
	"fmt"
	"log"
	"os"
	"path"

	"vvotes/config"
	"vvotes/database/model"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

var db *gorm.DB

// InitDB opens (creating if needed) the sqlite database with WAL
// journaling and the configured busy timeout, then migrates the schema
// and seeds the global_stats singleton. The busy timeout is the only
// mutual-exclusion mechanism: concurrent transactions wait up to this
// long for a conflicting writer before failing.
func InitDB(dbPath string, busyTimeoutMs int) error {
	dir := path.Dir(dbPath)
	err := os.MkdirAll(dir, 0o755)
	if err != nil {
		return err
	}

	var gormLogger gormlogger.Interface
	if config.IsDebug() {
		gormLogger = gormlogger.New(log.New(os.Stdout, "\r\n", log.LstdFlags), gormlogger.Config{LogLevel: gormlogger.Info})
	} else {
		gormLogger = gormlogger.Discard
	}

	dsn := fmt.Sprintf("%s?_busy_timeout=%d&_journal_mode=WAL&_synchronous=NORMAL&_foreign_keys=on", dbPath, busyTimeoutMs)
	db, err = gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: gormLogger,
	})
	if err != nil {
		return err
	}

	if err := initModels(); err != nil {
		return err
	}
	return seedGlobalStat()
}

func initModels() error {
	models := []any{
		&model.Player{},
		&model.GlobalStat{},
		&model.GlobalGoalClaim{},
		&model.PlayerGoalClaim{},
		&model.VoteLog{},
		&model.MonthlySnapshot{},
		&model.MonthlyDraw{},
	}
	for _, m := range models {
		if err := db.AutoMigrate(m); err != nil {
			return err
		}
	}
	return nil
}

// seedGlobalStat ensures the singleton row exists so settlement can
// always UPDATE it inside the transaction.
func seedGlobalStat() error {
	return db.Where(&model.GlobalStat{Id: 1}).
		Attrs(&model.GlobalStat{DailyVotes: 0, LastDailyReset: ""}).
		FirstOrCreate(&model.GlobalStat{}).Error
}

func GetDB() *gorm.DB {
	return db
}

func IsNotFound(err error) bool {
	return err == gorm.ErrRecordNotFound
}

// Checkpoint flushes the WAL into the main database file.
func Checkpoint() error {
	return db.Exec("PRAGMA wal_checkpoint;").Error
}

func CloseDB() error {
	if db == nil {
		return nil
	}
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
