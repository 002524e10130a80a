package adapter

import (
	"context"
	"errors"
	"fmt"

	goredis "github.com/redis/go-redis/v9"

	"casbridge/internal/pkg/redis"
)

const optionKeyPrefix = "casbridge:option:"

// OptionsRedisAdapter 是 port.OptionStore 的 Redis 实现。
// 对应商城侧 wp_options 表扮演的角色。
type OptionsRedisAdapter struct {
	client *redis.Client
}

// NewOptionsRedisAdapter 创建一个新的选项存储适配器。
func NewOptionsRedisAdapter(client *redis.Client) *OptionsRedisAdapter {
	return &OptionsRedisAdapter{client: client}
}

// GetOption 返回键对应的值，键不存在时返回空串。
func (a *OptionsRedisAdapter) GetOption(ctx context.Context, name string) (string, error) {
	value, err := a.client.GetClient().Get(ctx, optionKeyPrefix+name).Result()
	if errors.Is(err, goredis.Nil) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to read option %q: %w", name, err)
	}
	return value, nil
}

// SetOption 写入或覆盖键对应的值。选项不设过期。
func (a *OptionsRedisAdapter) SetOption(ctx context.Context, name, value string) error {
	if err := a.client.GetClient().Set(ctx, optionKeyPrefix+name, value, 0).Err(); err != nil {
		return fmt.Errorf("failed to write option %q: %w", name, err)
	}
	return nil
}

// DeleteOption 删除键。键不存在不算错误。
func (a *OptionsRedisAdapter) DeleteOption(ctx context.Context, name string) error {
	if err := a.client.GetClient().Del(ctx, optionKeyPrefix+name).Err(); err != nil {
		return fmt.Errorf("failed to delete option %q: %w", name, err)
	}
	return nil
}
