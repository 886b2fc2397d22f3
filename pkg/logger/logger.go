// Package logger 基于log/slog的结构化日志
//
// 用法：
//
//	log, err := logger.New(logger.Options{Level: "info", Format: "json", Output: "stdout"})
//	ctx = logger.WithRequestID(ctx, requestID)
//	logger.FromContext(ctx, log).Info("order created", "order_id", id)
package logger

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/xiebiao/bookstore-core/pkg/tracing"
)

// Options 日志配置
type Options struct {
	Level        string // debug | info | warn | error
	Format       string // text | json
	Output       string // stdout | stderr | /path/to/file
	EnableCaller bool
}

// New 创建Logger
// 返回的closer用于关闭日志文件（stdout/stderr时为空操作）
func New(opts Options) (*slog.Logger, func() error, error) {
	level, err := parseLevel(opts.Level)
	if err != nil {
		return nil, nil, err
	}

	var (
		w      io.Writer
		closer = func() error { return nil }
	)
	switch opts.Output {
	case "", "stdout":
		w = os.Stdout
	case "stderr":
		w = os.Stderr
	default:
		f, err := os.OpenFile(opts.Output, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return nil, nil, fmt.Errorf("打开日志文件失败: %w", err)
		}
		w = f
		closer = f.Close
	}

	return NewWithWriter(w, opts.Format, level, opts.EnableCaller), closer, nil
}

// NewWithWriter 指定输出目标创建Logger（测试中常用bytes.Buffer）
func NewWithWriter(w io.Writer, format string, level slog.Level, addSource bool) *slog.Logger {
	handlerOpts := &slog.HandlerOptions{Level: level, AddSource: addSource}
	if format == "json" {
		return slog.New(slog.NewJSONHandler(w, handlerOpts))
	}
	return slog.New(slog.NewTextHandler(w, handlerOpts))
}

// Discard 丢弃所有输出
func Discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func parseLevel(s string) (slog.Level, error) {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug, nil
	case "", "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("未知的日志级别: %s", s)
	}
}

type requestIDKey struct{}

// WithRequestID 将请求ID写入context
func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, requestIDKey{}, requestID)
}

// RequestID 读取请求ID
func RequestID(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey{}).(string)
	return id
}

// FromContext 附带request_id和trace_id
func FromContext(ctx context.Context, l *slog.Logger) *slog.Logger {
	if id := RequestID(ctx); id != "" {
		l = l.With("request_id", id)
	}
	if traceID := tracing.ExtractTraceID(ctx); traceID != "" {
		l = l.With("trace_id", traceID)
	}
	return l
}
