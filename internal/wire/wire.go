//go:build wireinject
// +build wireinject

// Package wire 提供依赖注入配置
package wire

import (
	"context"

	"github.com/google/wire"

	"ai-novel-api/internal/application/generation"
	"ai-novel-api/internal/config"
	"ai-novel-api/internal/infrastructure/llm"
	"ai-novel-api/internal/infrastructure/persistence/postgres"
	"ai-novel-api/internal/interfaces/http/handler"
	"ai-novel-api/internal/interfaces/http/router"
)

// InitializeApp 初始化 API 网关，Postgres/Redis 均为可选依赖
func InitializeApp(ctx context.Context, cfg *config.Config) (*router.Router, func(), error) {
	wire.Build(
		OptionalDataSet,
		GenerationSet,
		RouterSet,
	)
	return nil, nil, nil
}

// InitializeWorker 初始化 job-worker，Postgres 与 Redis 均为必需
func InitializeWorker(ctx context.Context, cfg *config.Config) (*Worker, func(), error) {
	wire.Build(
		ProvidePostgresClient,
		ProvideRedisClient,
		postgres.NewTaskRepository,
		ProvideConsumer,
		wire.Struct(new(Worker), "*"),
	)
	return nil, nil, nil
}

// InitializeMigrator 仅初始化 PostgreSQL（用于 bootstrap）
func InitializeMigrator(ctx context.Context, cfg *config.Config) (*Migrator, func(), error) {
	wire.Build(
		ProvidePostgresClient,
		wire.Struct(new(Migrator), "*"),
	)
	return nil, nil, nil
}

// OptionalDataSet 可选的数据层
var OptionalDataSet = wire.NewSet(
	ProvidePostgresClientOptional,
	ProvideRedisClientOptional,
	ProvideTaskRepositoryOptional,
	ProvideResultCache,
	ProvideRateLimiter,
	ProvideMessagingProducer,
)

// GenerationSet 生成链路
var GenerationSet = wire.NewSet(
	ProvideProviderConfig,
	ProvideServiceConfig,
	ProvideSynthesizer,
	ProvideAnalyzer,
	ProvideTaskRecorder,
	llm.NewEinoFactory,
	wire.Bind(new(generation.ChatModelFactory), new(*llm.EinoFactory)),
	generation.NewInvoker,
	generation.NewService,
)

// RouterSet 路由器提供者集合
var RouterSet = wire.NewSet(
	ProvideHealthHandler,
	handler.NewGenerationHandler,
	handler.NewTaskHandler,
	wire.Bind(new(handler.Generator), new(*generation.Service)),
	wire.Struct(new(router.Handlers), "*"),
	router.New,
)
