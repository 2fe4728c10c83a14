package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/singleflight"

	"ai-novel-api/pkg/logger"
	"ai-novel-api/pkg/metrics"
)

var cacheTracer = otel.Tracer("redis.cache")

// DefaultLoadTimeout 共享加载的默认上限
const DefaultLoadTimeout = 65 * time.Second

// Cache 生成结果缓存
type Cache struct {
	client      *Client
	group       singleflight.Group
	loadTimeout time.Duration
}

// NewCache 创建缓存服务，loadTimeout 限制同键共享加载的最长时间
func NewCache(client *Client, loadTimeout time.Duration) *Cache {
	if loadTimeout <= 0 {
		loadTimeout = DefaultLoadTimeout
	}
	return &Cache{client: client, loadTimeout: loadTimeout}
}

// Get 读取并解析缓存值，未命中返回 false
func (c *Cache) Get(ctx context.Context, key string, dest any) (bool, error) {
	ctx, span := cacheTracer.Start(ctx, "cache.Get",
		trace.WithAttributes(attribute.String("cache.key", key)))
	defer span.End()

	val, err := c.client.rdb.Get(ctx, key).Bytes()
	if err != nil {
		if IsNil(err) {
			span.SetAttributes(attribute.Bool("cache.hit", false))
			return false, nil
		}
		span.RecordError(err)
		return false, err
	}
	if err := json.Unmarshal(val, dest); err != nil {
		span.RecordError(err)
		return false, fmt.Errorf("failed to unmarshal cached value: %w", err)
	}

	span.SetAttributes(attribute.Bool("cache.hit", true))
	return true, nil
}

// Set 写入缓存值
func (c *Cache) Set(ctx context.Context, key string, value any, ttl time.Duration) error {
	ctx, span := cacheTracer.Start(ctx, "cache.Set",
		trace.WithAttributes(
			attribute.String("cache.key", key),
			attribute.Int64("cache.ttl_ms", ttl.Milliseconds()),
		))
	defer span.End()

	bytes, err := json.Marshal(value)
	if err != nil {
		span.RecordError(err)
		return fmt.Errorf("failed to marshal value: %w", err)
	}
	if err := c.client.rdb.Set(ctx, key, bytes, ttl).Err(); err != nil {
		span.RecordError(err)
		return err
	}
	return nil
}

// GetOrLoad 读穿缓存，singleflight 合并同键并发加载
// 共享加载脱离发起者的取消信号，每个调用方只按自己的 ctx 放弃等待
// Redis 故障只记录日志并直接加载；loader 返回 store=false 时不回写
func (c *Cache) GetOrLoad(ctx context.Context, key string, ttl time.Duration, dest any,
	loader func(ctx context.Context) (any, bool, error)) (bool, error) {
	ctx, span := cacheTracer.Start(ctx, "cache.GetOrLoad",
		trace.WithAttributes(attribute.String("cache.key", key)))
	defer span.End()

	hit, err := c.Get(ctx, key, dest)
	if err != nil {
		metrics.GenerationCacheTotal.WithLabelValues("error").Inc()
		logger.Warn(ctx, "generation cache read failed", "error", err.Error())
	}
	if hit {
		return true, nil
	}

	loadCtx := context.WithoutCancel(ctx)
	ch := c.group.DoChan(key, func() (any, error) {
		ctx, cancel := context.WithTimeout(loadCtx, c.loadTimeout)
		defer cancel()

		value, store, err := loader(ctx)
		if err != nil {
			return nil, err
		}
		bytes, err := json.Marshal(value)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal value: %w", err)
		}
		if store {
			if setErr := c.client.rdb.Set(ctx, key, bytes, ttl).Err(); setErr != nil {
				metrics.GenerationCacheTotal.WithLabelValues("error").Inc()
				logger.Warn(ctx, "generation cache write failed", "error", setErr.Error())
			}
		}
		return bytes, nil
	})

	select {
	case <-ctx.Done():
		span.RecordError(ctx.Err())
		return false, ctx.Err()
	case res := <-ch:
		span.SetAttributes(attribute.Bool("cache.shared", res.Shared))
		if res.Err != nil {
			span.RecordError(res.Err)
			return false, res.Err
		}
		return false, json.Unmarshal(res.Val.([]byte), dest)
	}
}

// Delete 删除缓存
func (c *Cache) Delete(ctx context.Context, keys ...string) error {
	ctx, span := cacheTracer.Start(ctx, "cache.Delete",
		trace.WithAttributes(attribute.Int("cache.key_count", len(keys))))
	defer span.End()

	return c.client.rdb.Del(ctx, keys...).Err()
}

// InvalidatePattern 按模式使缓存失效，例如 ai_gen:*
func (c *Cache) InvalidatePattern(ctx context.Context, pattern string) (int, error) {
	ctx, span := cacheTracer.Start(ctx, "cache.InvalidatePattern",
		trace.WithAttributes(attribute.String("cache.pattern", pattern)))
	defer span.End()

	iter := c.client.rdb.Scan(ctx, 0, pattern, 0).Iterator()
	var keys []string
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		span.RecordError(err)
		return 0, err
	}
	if len(keys) == 0 {
		return 0, nil
	}

	span.SetAttributes(attribute.Int("cache.invalidated_count", len(keys)))
	if err := c.Delete(ctx, keys...); err != nil {
		return 0, err
	}
	return len(keys), nil
}
