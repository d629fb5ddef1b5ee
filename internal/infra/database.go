package infra

import (
	"context"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// gormWriter sends GORM's log lines to zerolog.
type gormWriter struct{ level zerolog.Level }

func (w gormWriter) Printf(format string, args ...interface{}) {
	log.WithLevel(w.level).Str("component", "gorm").Msgf(format, args...)
}

// NewDatabase opens the GORM connection behind the postgres document
// backend and checks it answers within 5s. With debug every statement is
// logged, otherwise only slow ones and errors. The documentos table itself
// is migrated by pgstore.New.
func NewDatabase(ctx context.Context, dsn string, debug bool) (*gorm.DB, error) {
	lc := logger.Config{
		SlowThreshold:             200 * time.Millisecond,
		LogLevel:                  logger.Warn,
		IgnoreRecordNotFoundError: true,
	}
	wl := zerolog.WarnLevel
	if debug {
		lc.LogLevel = logger.Info
		wl = zerolog.DebugLevel
	}
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: logger.New(gormWriter{level: wl}, lc),
	})
	if err != nil {
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(25)
	sqlDB.SetMaxIdleConns(5)
	sqlDB.SetConnMaxIdleTime(5 * time.Minute)

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := sqlDB.PingContext(ctx); err != nil {
		_ = sqlDB.Close()
		return nil, err
	}
	return db, nil
}
