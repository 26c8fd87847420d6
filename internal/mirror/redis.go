package mirror

import (
	"context"
	"encoding/json"

	"github.com/kucun-next/internal/logger"

	"github.com/redis/go-redis/v9"
)

// RedisClient 基于 Redis 的远端镜像实现。
// 每个集合存为一个 hash（<prefix>:mirror:<集合名>，field 为记录 ID），
// 每次写入或删除后向 <prefix>:mirror:changed:<集合名> 发布通知，
// 订阅端收到通知后重新读取整个 hash 并交付完整快照。
type RedisClient struct {
	client *redis.Client
	prefix string
	gate   Gate
}

// NewRedisClient 创建 Redis 镜像客户端
func NewRedisClient(client *redis.Client, prefix string, gate Gate) *RedisClient {
	if prefix == "" {
		prefix = "kc"
	}
	return &RedisClient{client: client, prefix: prefix, gate: gate}
}

func (c *RedisClient) available() bool {
	if c == nil || c.client == nil {
		return false
	}
	if c.gate == nil {
		return true
	}
	return c.gate.Available()
}

func (c *RedisClient) collectionKey(name string) string {
	return c.prefix + ":mirror:" + name
}

func (c *RedisClient) changeChannel(name string) string {
	return c.prefix + ":mirror:changed:" + name
}

// ReadCollection 读取远端集合的完整快照
func (c *RedisClient) ReadCollection(ctx context.Context, name string) (map[string]json.RawMessage, error) {
	if !c.available() {
		return nil, ErrUnavailable
	}
	values, err := c.client.HGetAll(ctx, c.collectionKey(name)).Result()
	if err != nil {
		return nil, err
	}
	snapshot := make(map[string]json.RawMessage, len(values))
	for id, raw := range values {
		snapshot[id] = json.RawMessage(raw)
	}
	return snapshot, nil
}

// WriteRecord 写入单条记录并广播变更
func (c *RedisClient) WriteRecord(ctx context.Context, name, id string, record json.RawMessage) error {
	if !c.available() {
		return ErrUnavailable
	}
	if err := c.client.HSet(ctx, c.collectionKey(name), id, string(record)).Err(); err != nil {
		return err
	}
	return c.client.Publish(ctx, c.changeChannel(name), id).Err()
}

// DeleteRecord 删除单条记录并广播变更
func (c *RedisClient) DeleteRecord(ctx context.Context, name, id string) error {
	if !c.available() {
		return ErrUnavailable
	}
	if err := c.client.HDel(ctx, c.collectionKey(name), id).Err(); err != nil {
		return err
	}
	return c.client.Publish(ctx, c.changeChannel(name), id).Err()
}

// Subscribe 订阅集合变更；每次变更后交付该集合最新的完整快照。
// 返回的取消函数负责关闭订阅，登出或离线时必须调用。
func (c *RedisClient) Subscribe(ctx context.Context, name string, onChange func(map[string]json.RawMessage)) (func(), error) {
	if !c.available() {
		return nil, ErrUnavailable
	}
	pubsub := c.client.Subscribe(ctx, c.changeChannel(name))
	if _, err := pubsub.Receive(ctx); err != nil {
		_ = pubsub.Close()
		return nil, err
	}

	go func() {
		for range pubsub.Channel() {
			snapshot, err := c.ReadCollection(ctx, name)
			if err != nil {
				logger.Warnw("mirror_subscription_read_failed", "collection", name, "error", err)
				continue
			}
			onChange(snapshot)
		}
	}()

	return func() {
		if err := pubsub.Close(); err != nil {
			logger.Warnw("mirror_subscription_close_failed", "collection", name, "error", err)
		}
	}, nil
}

// Ping 探测远端连通性（网络探测器使用，不受闸门限制）
func (c *RedisClient) Ping(ctx context.Context) error {
	if c == nil || c.client == nil {
		return ErrUnavailable
	}
	return c.client.Ping(ctx).Err()
}
