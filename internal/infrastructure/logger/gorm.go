package logger

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
	gormlogger "gorm.io/gorm/logger"
)

// GormConfig configures the zap backed GORM logger
type GormConfig struct {
	Level         gormlogger.LogLevel
	SlowThreshold time.Duration
	// MaxSQLLength caps the logged statement; batch upserts of a sync pass
	// can carry hundreds of rows. Zero logs statements in full.
	MaxSQLLength int
	// LogRecordNotFound reports lookups that found nothing as errors
	LogRecordNotFound bool
}

// DefaultGormConfig returns warn level with a 200ms slow threshold
func DefaultGormConfig() GormConfig {
	return GormConfig{
		Level:         gormlogger.Warn,
		SlowThreshold: 200 * time.Millisecond,
		MaxSQLLength:  2048,
	}
}

// GormLogger writes GORM statements to zap with the request and sync run
// fields of the query context
type GormLogger struct {
	logger *zap.Logger
	cfg    GormConfig
}

// NewGormLogger creates a new GORM logger backed by zap
func NewGormLogger(zapLogger *zap.Logger, cfg GormConfig) *GormLogger {
	if zapLogger == nil {
		zapLogger = zap.NewNop()
	}
	return &GormLogger{logger: zapLogger.Named("gorm"), cfg: cfg}
}

// LogMode implements gormlogger.Interface
func (l *GormLogger) LogMode(level gormlogger.LogLevel) gormlogger.Interface {
	clone := *l
	clone.cfg.Level = level
	return &clone
}

// Info implements gormlogger.Interface
func (l *GormLogger) Info(ctx context.Context, msg string, data ...any) {
	if l.cfg.Level >= gormlogger.Info {
		l.logger.Info(fmt.Sprintf(msg, data...), queryFields(ctx)...)
	}
}

// Warn implements gormlogger.Interface
func (l *GormLogger) Warn(ctx context.Context, msg string, data ...any) {
	if l.cfg.Level >= gormlogger.Warn {
		l.logger.Warn(fmt.Sprintf(msg, data...), queryFields(ctx)...)
	}
}

// Error implements gormlogger.Interface
func (l *GormLogger) Error(ctx context.Context, msg string, data ...any) {
	if l.cfg.Level >= gormlogger.Error {
		l.logger.Error(fmt.Sprintf(msg, data...), queryFields(ctx)...)
	}
}

// Trace implements gormlogger.Interface. Failures log at error, slow
// statements at warn and everything else at debug.
func (l *GormLogger) Trace(ctx context.Context, begin time.Time, fc func() (sql string, rowsAffected int64), err error) {
	if l.cfg.Level <= gormlogger.Silent {
		return
	}

	elapsed := time.Since(begin)
	failed := err != nil && l.cfg.Level >= gormlogger.Error &&
		(l.cfg.LogRecordNotFound || !errors.Is(err, gormlogger.ErrRecordNotFound))
	slow := l.cfg.SlowThreshold > 0 && elapsed > l.cfg.SlowThreshold && l.cfg.Level >= gormlogger.Warn
	if !failed && !slow && l.cfg.Level < gormlogger.Info {
		return
	}

	sql, rows := fc()
	fields := append(queryFields(ctx),
		zap.Duration("elapsed", elapsed),
		zap.Int64("rows", rows),
		zap.String("sql", l.truncate(sql)),
	)

	switch {
	case failed:
		l.logger.Error("SQL failed", append(fields, zap.Error(err))...)
	case slow:
		l.logger.Warn("Slow SQL", append(fields, zap.Duration("threshold", l.cfg.SlowThreshold))...)
	case err == nil:
		l.logger.Debug("SQL", fields...)
	}
}

func (l *GormLogger) truncate(sql string) string {
	if l.cfg.MaxSQLLength <= 0 || len(sql) <= l.cfg.MaxSQLLength {
		return sql
	}
	return fmt.Sprintf("%s... (%d bytes)", sql[:l.cfg.MaxSQLLength], len(sql))
}

// queryFields adds the sync run to the context fields. The GORM logger is
// shared, so the run id only reaches it through ctx.
func queryFields(ctx context.Context) []zap.Field {
	fields := contextFields(ctx)
	if run := GetSyncRun(ctx); run != "" {
		fields = append(fields, zap.String("sync_run", run))
	}
	return fields
}

// ParseGormLevel maps a config value to a GORM log level. debug is an alias
// of info.
func ParseGormLevel(level string) (gormlogger.LogLevel, error) {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "silent":
		return gormlogger.Silent, nil
	case "error":
		return gormlogger.Error, nil
	case "warn", "":
		return gormlogger.Warn, nil
	case "info", "debug":
		return gormlogger.Info, nil
	default:
		return gormlogger.Warn, fmt.Errorf("unknown gorm log level %q", level)
	}
}
