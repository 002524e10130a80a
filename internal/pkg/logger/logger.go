package logger

import (
	"context"
	"os"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"go.opentelemetry.io/otel/trace"
)

// Init 配置全局 zerolog。debug 为 true 时输出人类可读格式。
func Init(serviceName string, debug bool) {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix

	var base zerolog.Logger
	if debug {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
		base = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger()
	} else {
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
		base = zerolog.New(os.Stderr).With().Timestamp().Logger()
	}

	log.Logger = base.With().Str("service", serviceName).Logger()
}

// Ctx 返回一个带上当前 trace id 的 logger，方便日志和链路互查。
func Ctx(ctx context.Context) zerolog.Logger {
	l := log.Logger
	if span := trace.SpanContextFromContext(ctx); span.IsValid() {
		l = l.With().Str("trace_id", span.TraceID().String()).Logger()
	}
	return l
}
