package logger

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"
)

type Config struct {
	Level    string
	FilePath string
	FileName string
}

type ctxKey struct{}

var requestIDKey ctxKey

// SetupLogger installs a JSON slog handler as the process default. Logs go to
// FilePath/FileName, or to stdout when FilePath is empty.
func SetupLogger(cfg Config, serviceName string) error {
	var out io.Writer = os.Stdout

	if cfg.FilePath != "" {
		if err := os.MkdirAll(cfg.FilePath, 0755); err != nil {
			return fmt.Errorf("failed to create log directory: %w", err)
		}

		if cfg.FileName == "" {
			cfg.FileName = fmt.Sprintf("%s.log", serviceName)
		}

		fullPath := filepath.Join(cfg.FilePath, cfg.FileName)

		logFile, err := os.OpenFile(fullPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0666)
		if err != nil {
			return fmt.Errorf("failed to open log file: %w", err)
		}
		out = logFile
	}

	opts := &slog.HandlerOptions{
		Level:     ParseLevel(cfg.Level),
		AddSource: true,
		ReplaceAttr: func(groups []string, a slog.Attr) slog.Attr {
			if a.Key == slog.TimeKey {
				a.Value = slog.StringValue(a.Value.Time().Format(time.RFC3339))
			}
			return a
		},
	}

	logger := slog.New(slog.NewJSONHandler(out, opts)).With(
		slog.String("service", serviceName),
	)

	slog.SetDefault(logger)

	return nil
}

func ParseLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func ContextWithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, requestIDKey, requestID)
}

func RequestIDFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	if requestID, ok := ctx.Value(requestIDKey).(string); ok {
		return requestID
	}
	return ""
}

func LogHTTPRequest(ctx context.Context, method, path, userAgent string, duration time.Duration, statusCode int) {
	if ctx == nil {
		ctx = context.Background()
	}

	attrs := []slog.Attr{
		slog.String("type", "http_request"),
		slog.String("method", method),
		slog.String("path", path),
		slog.String("user_agent", userAgent),
		slog.String("request_id", RequestIDFromContext(ctx)),
		slog.Duration("duration", duration),
		slog.Int("status_code", statusCode),
	}

	if statusCode >= 500 {
		slog.LogAttrs(ctx, slog.LevelError, "HTTP Request", attrs...)
	} else if statusCode >= 400 {
		slog.LogAttrs(ctx, slog.LevelWarn, "HTTP Request", attrs...)
	} else {
		slog.LogAttrs(ctx, slog.LevelInfo, "HTTP Request", attrs...)
	}
}

func LogGRPCRequest(ctx context.Context, method string, duration time.Duration, err error) {
	attrs := []slog.Attr{
		slog.String("type", "grpc_request"),
		slog.String("method", method),
		slog.String("request_id", RequestIDFromContext(ctx)),
		slog.Duration("duration", duration),
	}

	if err != nil {
		attrs = append(attrs, slog.String("error", err.Error()))
		slog.LogAttrs(ctx, slog.LevelError, "gRPC Request Failed", attrs...)
	} else {
		slog.LogAttrs(ctx, slog.LevelDebug, "gRPC Request", attrs...)
	}
}

func LogDatabaseQuery(ctx context.Context, operation, query string, duration time.Duration, err error) {
	attrs := []slog.Attr{
		slog.String("type", "database_query"),
		slog.String("operation", operation),
		slog.String("query", strings.Join(strings.Fields(query), " ")),
		slog.Duration("duration", duration),
	}

	if err != nil {
		attrs = append(attrs, slog.String("error", err.Error()))
		slog.LogAttrs(ctx, slog.LevelError, "Database Query Failed", attrs...)
	} else {
		slog.LogAttrs(ctx, slog.LevelDebug, "Database Query", attrs...)
	}
}

func LogDatabaseConnection(ctx context.Context, dsn string, operation string, err error) {
	attrs := []slog.Attr{
		slog.String("type", "database_connection"),
		slog.String("dsn", MaskPassword(dsn)),
		slog.String("operation", operation),
	}

	if err != nil {
		attrs = append(attrs, slog.String("error", err.Error()))
		slog.LogAttrs(ctx, slog.LevelError, "Database Connection Failed", attrs...)
	} else {
		slog.LogAttrs(ctx, slog.LevelInfo, "Database Connection", attrs...)
	}
}

func LogSession(ctx context.Context, outcome string, duration time.Duration, err error) {
	attrs := []slog.Attr{
		slog.String("type", "database_session"),
		slog.String("outcome", outcome),
		slog.String("request_id", RequestIDFromContext(ctx)),
		slog.Duration("duration", duration),
	}

	if err != nil {
		attrs = append(attrs, slog.String("error", err.Error()))
		slog.LogAttrs(ctx, slog.LevelWarn, "Database Session Rolled Back", attrs...)
	} else {
		slog.LogAttrs(ctx, slog.LevelDebug, "Database Session Released", attrs...)
	}
}

func LogRedisCacheHit(ctx context.Context, key string, hit bool, duration time.Duration) {
	attrs := []slog.Attr{
		slog.String("type", "cache_event"),
		slog.String("key", key),
		slog.Bool("cache_hit", hit),
		slog.Duration("duration", duration),
	}

	if hit {
		slog.LogAttrs(ctx, slog.LevelDebug, "Cache Hit", attrs...)
	} else {
		slog.LogAttrs(ctx, slog.LevelDebug, "Cache Miss", attrs...)
	}
}

func LogError(ctx context.Context, err error, operation string, additionalFields ...slog.Attr) {
	attrs := []slog.Attr{
		slog.String("type", "error"),
		slog.String("operation", operation),
		slog.String("request_id", RequestIDFromContext(ctx)),
		slog.String("error", err.Error()),
	}
	attrs = append(attrs, additionalFields...)

	slog.LogAttrs(ctx, slog.LevelError, "Operation Error", attrs...)
}

// LogTaskOperation records one service-level task operation. Not-found
// outcomes are expected traffic and are logged at warn rather than error.
func LogTaskOperation(ctx context.Context, operation, taskID string, duration time.Duration, err error, notFound bool) {
	attrs := []slog.Attr{
		slog.String("type", "task_operation"),
		slog.String("operation", operation),
		slog.String("task_id", taskID),
		slog.String("request_id", RequestIDFromContext(ctx)),
		slog.Duration("duration", duration),
	}

	switch {
	case err == nil:
		slog.LogAttrs(ctx, slog.LevelInfo, "Task Operation", attrs...)
	case notFound:
		attrs = append(attrs, slog.String("error", err.Error()))
		slog.LogAttrs(ctx, slog.LevelWarn, "Task Not Found", attrs...)
	default:
		attrs = append(attrs, slog.String("error", err.Error()))
		slog.LogAttrs(ctx, slog.LevelError, "Task Operation Failed", attrs...)
	}
}

// MaskPassword hides the password in both keyword/value and URL style DSNs.
func MaskPassword(dsn string) string {
	if dsn == "" {
		return dsn
	}

	if start := strings.Index(dsn, "password="); start != -1 {
		start += len("password=")
		end := start
		for end < len(dsn) && dsn[end] != ' ' && dsn[end] != '&' {
			end++
		}
		return dsn[:start] + "***" + dsn[end:]
	}

	scheme := strings.Index(dsn, "://")
	at := strings.LastIndex(dsn, "@")
	if scheme == -1 || at == -1 || at < scheme {
		return dsn
	}
	userInfo := dsn[scheme+3 : at]
	colon := strings.Index(userInfo, ":")
	if colon == -1 {
		return dsn
	}
	return dsn[:scheme+3] + userInfo[:colon] + ":***" + dsn[at:]
}

func LogSlowOperation(ctx context.Context, operation string, duration time.Duration, threshold time.Duration) {
	if duration <= threshold {
		return
	}

	attrs := []slog.Attr{
		slog.String("type", "slow_operation"),
		slog.String("operation", operation),
		slog.Duration("duration", duration),
		slog.Duration("threshold", threshold),
	}

	slog.LogAttrs(ctx, slog.LevelWarn, "Slow Operation Detected", attrs...)
}

func LogServiceStart(serviceName string, config map[string]interface{}) {
	attrs := []slog.Attr{
		slog.String("type", "service_lifecycle"),
		slog.String("event", "start"),
		slog.String("service", serviceName),
		slog.Any("config", config),
	}

	slog.LogAttrs(context.Background(), slog.LevelInfo, "Service Starting", attrs...)
}

func LogServiceStop(serviceName string, reason string) {
	attrs := []slog.Attr{
		slog.String("type", "service_lifecycle"),
		slog.String("event", "stop"),
		slog.String("service", serviceName),
		slog.String("reason", reason),
	}

	slog.LogAttrs(context.Background(), slog.LevelInfo, "Service Stopping", attrs...)
}

func LogRedisShardConnection(ctx context.Context, shardIndex int, addr string, err error) {
	attrs := []slog.Attr{
		slog.String("type", "redis_shard_connection"),
		slog.Int("shard_index", shardIndex),
		slog.String("address", addr),
	}

	if err != nil {
		attrs = append(attrs, slog.String("error", err.Error()))
		slog.LogAttrs(ctx, slog.LevelError, "Redis Shard Connection Failed", attrs...)
	} else {
		slog.LogAttrs(ctx, slog.LevelInfo, "Redis Shard Connected", attrs...)
	}
}

func LogCacheOperation(ctx context.Context, operation, key string, shardIndex int, duration time.Duration, err error) {
	attrs := []slog.Attr{
		slog.String("type", "cache_operation"),
		slog.String("operation", operation),
		slog.String("key", key),
		slog.Int("shard_index", shardIndex),
		slog.Duration("duration", duration),
	}

	if err != nil {
		attrs = append(attrs, slog.String("error", err.Error()))
		slog.LogAttrs(ctx, slog.LevelError, "Cache Operation Failed", attrs...)
	} else {
		slog.LogAttrs(ctx, slog.LevelDebug, "Cache Operation Success", attrs...)
	}
}

func LogCacheInvalidation(ctx context.Context, keys []string, reason string, err error) {
	attrs := []slog.Attr{
		slog.String("type", "cache_invalidation"),
		slog.Any("keys", keys),
		slog.String("reason", reason),
	}

	if err != nil {
		attrs = append(attrs, slog.String("error", err.Error()))
		slog.LogAttrs(ctx, slog.LevelWarn, "Cache Invalidation Failed", attrs...)
	} else {
		slog.LogAttrs(ctx, slog.LevelDebug, "Cache Invalidated", attrs...)
	}
}

func LogCacheStatus(ctx context.Context, enabled bool, shardCount int, ttl time.Duration) {
	attrs := []slog.Attr{
		slog.String("type", "cache_status"),
		slog.Bool("enabled", enabled),
		slog.Int("shard_count", shardCount),
		slog.Duration("default_ttl", ttl),
	}

	if enabled {
		slog.LogAttrs(ctx, slog.LevelInfo, "Cache Initialized", attrs...)
	} else {
		slog.LogAttrs(ctx, slog.LevelInfo, "Cache Disabled", attrs...)
	}
}
