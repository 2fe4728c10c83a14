package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, dir, name, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o600))
}

func TestLoadFrom_DefaultsWithoutFiles(t *testing.T) {
	cfg, err := LoadFrom(t.TempDir())
	require.NoError(t, err)

	assert.Equal(t, "ai-generation", cfg.App.Service)
	assert.Equal(t, "1.0.0", cfg.App.Version)
	assert.Equal(t, 8080, cfg.Server.HTTP.Port)
	assert.Equal(t, "https://api.openai.com/v1/chat/completions", cfg.LLM.APIURL)
	assert.Equal(t, "gpt-3.5-turbo", cfg.LLM.Model)
	assert.InDelta(t, 0.8, cfg.LLM.Temperature, 1e-9)
	assert.InDelta(t, 0.9, cfg.LLM.TopP, 1e-9)
	assert.InDelta(t, 0.1, cfg.LLM.FrequencyPenalty, 1e-9)
	assert.InDelta(t, 0.1, cfg.LLM.PresencePenalty, 1e-9)
	assert.Equal(t, 4000, cfg.LLM.MaxTokensCap)
	assert.Equal(t, 60*time.Second, cfg.LLM.Timeout)
	assert.Equal(t, 24*time.Hour, cfg.Features.GenerationCache.TTL)
	assert.Equal(t, TaskRecordModeStream, cfg.Features.TaskRecord.Mode)
	assert.False(t, cfg.Database.Postgres.Configured())
	assert.False(t, cfg.Cache.Redis.Configured())
	assert.Equal(t, []string{"*"}, cfg.Security.CORS.AllowedOrigins)
}

func TestLoadFrom_LegacyEnvNames(t *testing.T) {
	t.Setenv("AI_API_KEY", "sk-test")
	t.Setenv("AI_MODEL", "gpt-4o-mini")
	t.Setenv("AI_TEMPERATURE", "0.3")
	t.Setenv("DATABASE_URL", "postgres://u:p@db:5432/novel")
	t.Setenv("REDIS_URL", "redis://cache:6379/1")

	cfg, err := LoadFrom(t.TempDir())
	require.NoError(t, err)

	assert.Equal(t, "sk-test", cfg.LLM.APIKey)
	assert.Equal(t, "gpt-4o-mini", cfg.LLM.Model)
	assert.InDelta(t, 0.3, cfg.LLM.Temperature, 1e-9)
	assert.True(t, cfg.Database.Postgres.Configured())
	assert.Equal(t, "postgres://u:p@db:5432/novel", cfg.Database.Postgres.ConnString())
	assert.True(t, cfg.Cache.Redis.Configured())
}

func TestLoadFrom_OpenAIKeyFallback(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "sk-openai")

	cfg, err := LoadFrom(t.TempDir())
	require.NoError(t, err)
	assert.Equal(t, "sk-openai", cfg.LLM.APIKey)
}

func TestLoadFrom_FileWithPlaceholders(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("NOVEL_TEST_PORT", "9090")
	writeConfig(t, dir, "config.yaml", `
server:
  http:
    port: ${NOVEL_TEST_PORT:8081}
llm:
  model: ${NOVEL_TEST_MODEL:qwen-plus}
  timeout: 15s
`)

	cfg, err := LoadFrom(dir)
	require.NoError(t, err)
	assert.Equal(t, 9090, cfg.Server.HTTP.Port)
	assert.Equal(t, "qwen-plus", cfg.LLM.Model)
	assert.Equal(t, 15*time.Second, cfg.LLM.Timeout)
}

func TestLoadFrom_EnvFileOverridesBase(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("APP_ENV", "staging")
	writeConfig(t, dir, "config.yaml", "features:\n  task_record:\n    mode: stream\n")
	writeConfig(t, dir, "config.staging.yaml", "features:\n  task_record:\n    mode: log\n")

	cfg, err := LoadFrom(dir)
	require.NoError(t, err)
	assert.Equal(t, TaskRecordModeLog, cfg.Features.TaskRecord.Mode)
}

func TestLoadFrom_InvalidTaskRecordMode(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, "config.yaml", "features:\n  task_record:\n    mode: kafka\n")

	_, err := LoadFrom(dir)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "task_record.mode")
}

func TestExpandEnv(t *testing.T) {
	t.Setenv("NOVEL_SET", "value")

	tests := []struct {
		in   string
		want string
	}{
		{"${NOVEL_SET}", "value"},
		{"${NOVEL_SET:other}", "value"},
		{"${NOVEL_UNSET:fallback}", "fallback"},
		{"${NOVEL_UNSET:}", ""},
		{"${NOVEL_UNSET}", "${NOVEL_UNSET}"},
		{"a-${NOVEL_SET}-b", "a-value-b"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, expandEnv(tt.in), tt.in)
	}
}

func TestPostgresConfig_ConnStringFromFields(t *testing.T) {
	c := PostgresConfig{Host: "db", Port: 5432, User: "u", Password: "p", Database: "novel", SSLMode: "disable"}
	assert.Equal(t, "host=db port=5432 user=u password=p dbname=novel sslmode=disable", c.ConnString())
}
