// Package main 一次性初始化数据库表结构
package main

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/joho/godotenv"

	"ai-novel-api/internal/config"
	"ai-novel-api/internal/wire"
)

func main() {
	_ = godotenv.Load()

	fmt.Println("Starting schema bootstrap...")

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	if !cfg.Database.Postgres.Configured() {
		log.Fatalf("postgres is not configured, set DATABASE_URL or database.postgres.enabled")
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	migrator, cleanup, err := wire.InitializeMigrator(ctx, cfg)
	if err != nil {
		log.Fatalf("failed to initialize postgres: %v", err)
	}
	defer cleanup()

	if err := migrator.PgClient.Migrate(ctx); err != nil {
		log.Fatalf("failed to migrate: %v", err)
	}

	fmt.Println("Bootstrap completed successfully.")
}
