// SPDX-License-Identifier: EPL-2.0

package store

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const maxSQLLogLength = 200

// slogGormLogger implements GORM's logger.Interface using slog.
type slogGormLogger struct {
	logger *slog.Logger
	level  logger.LogLevel
}

func newGormLogger(log *slog.Logger) *slogGormLogger {
	return &slogGormLogger{logger: log, level: logger.Warn}
}

func (l *slogGormLogger) LogMode(level logger.LogLevel) logger.Interface {
	return &slogGormLogger{logger: l.logger, level: level}
}

func (l *slogGormLogger) Info(ctx context.Context, msg string, args ...any) {
	if l.level >= logger.Info {
		l.logger.InfoContext(ctx, fmt.Sprintf(msg, args...))
	}
}

func (l *slogGormLogger) Warn(ctx context.Context, msg string, args ...any) {
	if l.level >= logger.Warn {
		l.logger.WarnContext(ctx, fmt.Sprintf(msg, args...))
	}
}

func (l *slogGormLogger) Error(ctx context.Context, msg string, args ...any) {
	if l.level >= logger.Error {
		l.logger.ErrorContext(ctx, fmt.Sprintf(msg, args...))
	}
}

func (l *slogGormLogger) Trace(ctx context.Context, begin time.Time, fc func() (sql string, rowsAffected int64), err error) {
	if l.level <= logger.Silent {
		return
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		err = nil
	}
	// segment inserts carry megabytes of parameters; only build the SQL
	// string when it will be written
	if err == nil && !l.logger.Enabled(ctx, slog.LevelDebug) {
		return
	}

	sqlStr, rows := fc()
	if len(sqlStr) > maxSQLLogLength {
		sqlStr = sqlStr[:maxSQLLogLength] + "... (truncated)"
	}

	attrs := []any{
		slog.String("sql", sqlStr),
		slog.Int64("rows", rows),
		slog.Duration("elapsed", time.Since(begin)),
	}
	if err != nil {
		l.logger.ErrorContext(ctx, "database error", append(attrs, slog.String("error", err.Error()))...)
		return
	}
	l.logger.DebugContext(ctx, "database query", attrs...)
}
