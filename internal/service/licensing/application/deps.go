package application

import (
	"context"
	"time"

	"casbridge/internal/pkg/httpclient"
	"casbridge/internal/pkg/logger"
	"casbridge/internal/pkg/metrics"
)

// Executor 是各门面对共享 HTTP 客户端的依赖面。
// 测试里用桩实现替换。
type Executor interface {
	Execute(
		ctx context.Context,
		method, rawURL string,
		body any,
		accepts []int,
		headers map[string]string,
	) (*httpclient.Response, error)
}

// HostResolver 提供当前应使用的 API 基地址。
// 解析失败时实现方负责回退到主入口，因此这里不返回错误。
type HostResolver interface {
	BaseURL(ctx context.Context) string
}

// StaticHost 是固定基地址的 HostResolver，测试和开发环境用。
type StaticHost string

func (h StaticHost) BaseURL(context.Context) string { return string(h) }

// logSwallowed 是门面边界统一的"记日志并吞掉"出口。
// 某些运行模式下这条日志就是失败的唯一信号，不让任何错误穿回上层应用。
func logSwallowed(ctx context.Context, operation, contextMsg string, err error) {
	l := logger.Ctx(ctx)
	evt := l.Warn().Str("operation", operation).Err(err)
	if contextMsg != "" {
		evt = evt.Str("context", contextMsg)
	}
	evt.Msg("cassandra call did not succeed")
}

// observe 统一上报一次远端操作的计数和耗时。
func observe(operation, outcome string, start time.Time) {
	metrics.ObserveAPIRequest(operation, outcome, time.Since(start).Seconds())
}

const (
	outcomeSuccess  = "success"
	outcomeFailure  = "failure"
	outcomeDenied   = "denied"
	outcomeNotFound = "not_found"
)
