package database

import (
	"context"
	"errors"
	"fmt"
	"time"

	gormlogger "gorm.io/gorm/logger"

	"github.com/scribely/scribely/logger"
)

// gormLogger adapts the service logger to GORM's logger interface.
// Queries above the slow threshold are logged at warn level.
type gormLogger struct {
	log  *logger.Logger
	slow time.Duration
}

func newGormLogger(log *logger.Logger, slow time.Duration) gormlogger.Interface {
	return &gormLogger{log: log.WithComponent("gorm"), slow: slow}
}

// LogMode is a no-op; levels are controlled by the service logger.
func (l *gormLogger) LogMode(gormlogger.LogLevel) gormlogger.Interface {
	return l
}

func (l *gormLogger) Info(_ context.Context, msg string, args ...interface{}) {
	l.log.Info(fmt.Sprintf(msg, args...))
}

func (l *gormLogger) Warn(_ context.Context, msg string, args ...interface{}) {
	l.log.Warn(fmt.Sprintf(msg, args...))
}

func (l *gormLogger) Error(_ context.Context, msg string, args ...interface{}) {
	l.log.Error(fmt.Sprintf(msg, args...))
}

func (l *gormLogger) Trace(_ context.Context, begin time.Time, fc func() (string, int64), err error) {
	elapsed := time.Since(begin)
	switch {
	case err != nil && !errors.Is(err, gormlogger.ErrRecordNotFound):
		sql, rows := fc()
		l.log.Error("Query failed", map[string]interface{}{
			"error":       err.Error(),
			"sql":         sql,
			"rows":        rows,
			"duration_ms": elapsed.Milliseconds(),
		})
	case l.slow > 0 && elapsed > l.slow:
		sql, rows := fc()
		l.log.Warn("Slow query", map[string]interface{}{
			"sql":         sql,
			"rows":        rows,
			"duration_ms": elapsed.Milliseconds(),
		})
	}
}
