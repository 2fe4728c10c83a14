package wire

import (
	"context"
	"fmt"
	"os"
	"time"

	"ai-novel-api/internal/application/generation"
	"ai-novel-api/internal/config"
	"ai-novel-api/internal/domain/repository"
	"ai-novel-api/internal/infrastructure/llm"
	"ai-novel-api/internal/infrastructure/messaging"
	"ai-novel-api/internal/infrastructure/persistence/postgres"
	"ai-novel-api/internal/infrastructure/persistence/redis"
	"ai-novel-api/internal/interfaces/http/handler"
	"ai-novel-api/internal/interfaces/http/middleware"
	"ai-novel-api/pkg/logger"
)

// Worker job-worker 依赖容器
type Worker struct {
	Consumer *messaging.Consumer
	TaskRepo *postgres.TaskRepository
}

// Migrator bootstrap 依赖容器
type Migrator struct {
	PgClient *postgres.Client
}

// ProvidePostgresClient 提供 PostgreSQL 客户端，连接失败时返回错误
func ProvidePostgresClient(cfg *config.Config) (*postgres.Client, func(), error) {
	client, err := postgres.NewClient(&cfg.Database.Postgres)
	if err != nil {
		return nil, nil, err
	}
	cleanup := func() {
		_ = client.Close()
	}
	return client, cleanup, nil
}

// ProvideRedisClient 提供 Redis 客户端，连接失败时返回错误
func ProvideRedisClient(cfg *config.Config) (*redis.Client, func(), error) {
	client, err := redis.NewClient(&cfg.Cache.Redis)
	if err != nil {
		return nil, nil, err
	}
	cleanup := func() {
		_ = client.Close()
	}
	return client, cleanup, nil
}

// ProvidePostgresClientOptional 未配置或不可达时返回 nil，生成链路不依赖数据库
func ProvidePostgresClientOptional(ctx context.Context, cfg *config.Config) (*postgres.Client, func(), error) {
	if !cfg.Database.Postgres.Configured() {
		return nil, func() {}, nil
	}
	client, cleanup, err := ProvidePostgresClient(cfg)
	if err != nil {
		logger.Warn(ctx, "postgres not available, task records disabled", "error", err.Error())
		return nil, func() {}, nil
	}
	return client, cleanup, nil
}

// ProvideRedisClientOptional 未配置或不可达时返回 nil，缓存与限流随之关闭
func ProvideRedisClientOptional(ctx context.Context, cfg *config.Config) (*redis.Client, func(), error) {
	if !cfg.Cache.Redis.Configured() {
		return nil, func() {}, nil
	}
	client, cleanup, err := ProvideRedisClient(cfg)
	if err != nil {
		logger.Warn(ctx, "redis not available, cache and rate limit disabled", "error", err.Error())
		return nil, func() {}, nil
	}
	return client, cleanup, nil
}

// ProvideTaskRepositoryOptional 数据库不可用时返回空接口
func ProvideTaskRepositoryOptional(pg *postgres.Client) repository.GenerationTaskRepository {
	if pg == nil {
		return nil
	}
	return postgres.NewTaskRepository(pg)
}

// ProvideResultCache 生成结果缓存
func ProvideResultCache(cfg *config.Config, rc *redis.Client, provider llm.ProviderConfig) generation.ResultCache {
	if rc == nil || !cfg.Features.GenerationCache.Enabled {
		return nil
	}
	return redis.NewCache(rc, provider.EffectiveTimeout()+5*time.Second)
}

// ProvideRateLimiter Redis 滑动窗口限流器
func ProvideRateLimiter(rc *redis.Client) middleware.RateLimiter {
	if rc == nil {
		return nil
	}
	return redis.NewRateLimiter(rc)
}

// ProvideMessagingProducer 提供任务记录流的生产者
func ProvideMessagingProducer(cfg *config.Config, rc *redis.Client) *messaging.Producer {
	if rc == nil {
		return nil
	}
	rs := cfg.Messaging.RedisStream
	return messaging.NewProducer(rc.Redis(), messaging.Stream(rs.Stream), int64(rs.MaxLen))
}

// ProvideTaskRecorder 按配置选择任务记录方式，依赖缺失时退化为日志
func ProvideTaskRecorder(ctx context.Context, cfg *config.Config, producer *messaging.Producer, repo repository.GenerationTaskRepository) generation.TaskRecorder {
	tr := cfg.Features.TaskRecord
	if !tr.Enabled {
		return generation.LogRecorder{}
	}
	switch tr.Mode {
	case config.TaskRecordModeStream:
		if producer != nil {
			return generation.NewStreamRecorder(producer)
		}
	case config.TaskRecordModeDatabase:
		if repo != nil {
			return generation.NewRepositoryRecorder(repo)
		}
	case config.TaskRecordModeLog, "":
		return generation.LogRecorder{}
	}
	logger.Warn(ctx, "task record backend unavailable, falling back to log", "mode", tr.Mode)
	return generation.LogRecorder{}
}

// ProvideProviderConfig 由配置生成模型调用参数
func ProvideProviderConfig(cfg *config.Config) llm.ProviderConfig {
	c := cfg.LLM
	return llm.ProviderConfig{
		APIURL:           c.APIURL,
		APIKey:           c.APIKey,
		Model:            c.Model,
		Temperature:      c.Temperature,
		TopP:             c.TopP,
		FrequencyPenalty: c.FrequencyPenalty,
		PresencePenalty:  c.PresencePenalty,
		MaxTokensCap:     c.MaxTokensCap,
		Timeout:          c.Timeout,
	}
}

// ProvideServiceConfig 生成服务配置
func ProvideServiceConfig(cfg *config.Config, provider llm.ProviderConfig) generation.ServiceConfig {
	sc := generation.ServiceConfig{
		Provider:      provider,
		RecordTimeout: cfg.Features.TaskRecord.Timeout,
	}
	if cfg.Features.GenerationCache.Enabled {
		sc.CacheTTL = cfg.Features.GenerationCache.TTL
	}
	return sc
}

// ProvideSynthesizer 兜底内容生成器
func ProvideSynthesizer() *generation.Synthesizer {
	return generation.NewDefaultSynthesizer()
}

// ProvideAnalyzer 内容统计分析器
func ProvideAnalyzer() *generation.Analyzer {
	return generation.NewAnalyzer(nil)
}

// ProvideHealthHandler 健康检查处理器，未启用的依赖显示为 disabled
func ProvideHealthHandler(cfg *config.Config, pg *postgres.Client, rc *redis.Client) *handler.HealthHandler {
	deps := map[string]handler.HealthChecker{
		"postgres": nil,
		"redis":    nil,
	}
	if pg != nil {
		deps["postgres"] = pg
	}
	if rc != nil {
		deps["redis"] = rc
	}
	return handler.NewHealthHandler(cfg.App.Service, cfg.App.Version, deps)
}

// ProvideConsumer 任务记录流的消费者
func ProvideConsumer(cfg *config.Config, rc *redis.Client) *messaging.Consumer {
	rs := cfg.Messaging.RedisStream
	return messaging.NewConsumer(rc.Redis(), messaging.ConsumerConfig{
		Stream:        messaging.Stream(rs.Stream),
		Group:         messaging.ConsumerGroup(rs.Group),
		ConsumerName:  hostnameConsumerName(),
		BlockTimeout:  rs.BlockTimeout,
		ClaimInterval: rs.ClaimInterval,
		ClaimMinIdle:  rs.ClaimMinIdle,
		RetryLimit:    rs.RetryLimit,
		Backoff: messaging.BackoffConfig{
			Initial:    rs.RetryBackoff.Initial,
			Max:        rs.RetryBackoff.Max,
			Multiplier: rs.RetryBackoff.Multiplier,
		},
	})
}

func hostnameConsumerName() string {
	host, err := os.Hostname()
	if err != nil || host == "" {
		host = "worker"
	}
	return fmt.Sprintf("%s-%d", host, os.Getpid())
}
