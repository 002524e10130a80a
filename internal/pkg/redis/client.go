package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Client 封装了 go-redis 客户端，统一连接参数和健康检查。
type Client struct {
	rdb *redis.Client
}

// NewClient 创建并探活一个 Redis 连接。
func NewClient(addr, password string, db int) (*Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to redis at %s: %w", addr, err)
	}

	return &Client{rdb: rdb}, nil
}

// GetClient 暴露底层客户端给需要原生 API 的调用方。
func (c *Client) GetClient() *redis.Client { return c.rdb }

// Close 关闭连接。
func (c *Client) Close() error { return c.rdb.Close() }
