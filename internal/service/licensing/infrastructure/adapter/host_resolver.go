package adapter

import (
	"context"
	"net"
	"net/url"
	"sync"

	"golang.org/x/sync/singleflight"

	"casbridge/internal/pkg/constants"
	"casbridge/internal/pkg/logger"
	"casbridge/internal/service/licensing/domain/port"
)

// CassandraHostResolver 决定每次调用应使用的 API 基地址。
//
// 背景是 CloudFlare Flexible SSL: 主入口域名走 HTTPS 没有问题，
// 但当商城和后端同机部署、域名在本机解析为 127.0.0.1 时，
// 服务器内部其实并没有监听 443，必须改走纯 HTTP 的备用入口。
//
// 解析出的 IP 进程内缓存一份，同时写进 OptionStore 以便跨进程复用；
// singleflight 保证并发请求下只做一次 DNS 解析。
type CassandraHostResolver struct {
	options     port.OptionStore
	overrideURL string // 调试模式下的直连地址，优先于一切
	debug       bool

	// 可注入的解析函数，测试用
	lookupHost func(host string) ([]string, error)

	group    singleflight.Group
	mu       sync.RWMutex
	cachedIP string
}

// NewCassandraHostResolver 创建解析器。overrideURL 仅在 debug 为 true 时生效。
func NewCassandraHostResolver(options port.OptionStore, overrideURL string, debug bool) *CassandraHostResolver {
	return &CassandraHostResolver{
		options:     options,
		overrideURL: overrideURL,
		debug:       debug,
		lookupHost:  net.LookupHost,
	}
}

// BaseURL 返回当前应使用的基地址。解析失败一律回退主入口，绝不报错。
func (r *CassandraHostResolver) BaseURL(ctx context.Context) string {
	ip := r.resolveIP(ctx)

	if r.debug && r.overrideURL != "" {
		return r.overrideURL
	}
	if ip == constants.LoopbackIPAddress {
		return constants.AlternateHostAPIURL
	}
	return constants.HostAPIURL
}

// Invalidate 丢弃内存和 OptionStore 里的缓存 IP，下次调用重新解析。
func (r *CassandraHostResolver) Invalidate(ctx context.Context) {
	r.mu.Lock()
	r.cachedIP = ""
	r.mu.Unlock()

	if r.options != nil {
		if err := r.options.DeleteOption(ctx, constants.OptionCassandraIPAddress); err != nil {
			l := logger.Ctx(ctx)
			l.Warn().Err(err).Msg("failed to drop cached cassandra ip from option store")
		}
	}
}

func (r *CassandraHostResolver) resolveIP(ctx context.Context) string {
	r.mu.RLock()
	ip := r.cachedIP
	r.mu.RUnlock()
	if ip != "" {
		return ip
	}

	v, _, _ := r.group.Do("resolve", func() (any, error) {
		return r.resolveIPSlow(ctx), nil
	})
	return v.(string)
}

func (r *CassandraHostResolver) resolveIPSlow(ctx context.Context) string {
	if r.options != nil {
		if stored, err := r.options.GetOption(ctx, constants.OptionCassandraIPAddress); err == nil && stored != "" {
			r.remember(stored)
			return stored
		}
	}

	host := apiHostname()
	if host == "" {
		return ""
	}
	addrs, err := r.lookupHost(host)
	if err != nil || len(addrs) == 0 {
		l := logger.Ctx(ctx)
		l.Warn().Err(err).Str("host", host).Msg("cassandra host resolution failed")
		return ""
	}

	ip := addrs[0]
	r.remember(ip)
	if r.options != nil {
		if err := r.options.SetOption(ctx, constants.OptionCassandraIPAddress, ip); err != nil {
			l := logger.Ctx(ctx)
			l.Warn().Err(err).Msg("failed to persist cassandra ip to option store")
		}
	}
	return ip
}

func (r *CassandraHostResolver) remember(ip string) {
	r.mu.Lock()
	r.cachedIP = ip
	r.mu.Unlock()
}

// apiHostname 从主入口 URL 里取主机名。
func apiHostname() string {
	u, err := url.Parse(constants.HostAPIURL)
	if err != nil {
		return ""
	}
	return u.Hostname()
}
