package port

import "context"

// OptionStore 是一个具名配置值的键值存储。
// 对应商城侧的 option 表；桥接服务里用 Redis 实现。
type OptionStore interface {
	// GetOption 返回键对应的值。键不存在时返回空串，不报错。
	GetOption(ctx context.Context, name string) (string, error)
	// SetOption 写入或覆盖键对应的值。
	SetOption(ctx context.Context, name, value string) error
	// DeleteOption 删除键。键不存在不算错误。
	DeleteOption(ctx context.Context, name string) error
}
