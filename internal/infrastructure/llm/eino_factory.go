// Package llm 基于 Eino 的 OpenAI 兼容 ChatModel 管理
package llm

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/cloudwego/eino-ext/components/model/openai"
	"github.com/cloudwego/eino/components/model"
)

// DefaultTimeout 未配置超时时的单次调用上限
const DefaultTimeout = 60 * time.Second

// ProviderConfig 一次生成调用使用的模型服务配置，调用时显式传入
type ProviderConfig struct {
	// APIURL 完整的 chat completions 端点
	APIURL           string
	APIKey           string
	Model            string
	Temperature      float64
	TopP             float64
	FrequencyPenalty float64
	PresencePenalty  float64
	MaxTokensCap     int
	Timeout          time.Duration
}

// HasCredential 是否配置了 API Key
func (c ProviderConfig) HasCredential() bool {
	return strings.TrimSpace(c.APIKey) != ""
}

// EffectiveTimeout 返回有效超时
func (c ProviderConfig) EffectiveTimeout() time.Duration {
	if c.Timeout <= 0 {
		return DefaultTimeout
	}
	return c.Timeout
}

// BaseURL 由完整端点推出 SDK 需要的 base url
func (c ProviderConfig) BaseURL() string {
	u := strings.TrimRight(strings.TrimSpace(c.APIURL), "/")
	return strings.TrimSuffix(u, "/chat/completions")
}

// cacheKey 不同凭据、端点或采样参数使用不同的客户端实例
func (c ProviderConfig) cacheKey() string {
	return fmt.Sprintf("%s|%s|%s|%g|%g|%g|%g|%s",
		c.BaseURL(), c.APIKey, c.Model, c.Temperature, c.TopP, c.FrequencyPenalty, c.PresencePenalty, c.EffectiveTimeout())
}

// EinoFactory 缓存 Eino ChatModel 实例
type EinoFactory struct {
	models map[string]model.BaseChatModel
	mu     sync.RWMutex
}

// NewEinoFactory 创建工厂
func NewEinoFactory() *EinoFactory {
	return &EinoFactory{
		models: make(map[string]model.BaseChatModel),
	}
}

// Get 获取与配置对应的 ChatModel，首次使用时创建
func (f *EinoFactory) Get(ctx context.Context, cfg ProviderConfig) (model.BaseChatModel, error) {
	if !cfg.HasCredential() {
		return nil, fmt.Errorf("llm api key not configured")
	}
	key := cfg.cacheKey()

	f.mu.RLock()
	m, ok := f.models[key]
	f.mu.RUnlock()
	if ok {
		return m, nil
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	if m, ok = f.models[key]; ok {
		return m, nil
	}

	chatModel, err := openai.NewChatModel(ctx, &openai.ChatModelConfig{
		APIKey:           cfg.APIKey,
		BaseURL:          cfg.BaseURL(),
		Model:            cfg.Model,
		Temperature:      ptrFloat32(cfg.Temperature),
		TopP:             ptrFloat32(cfg.TopP),
		FrequencyPenalty: ptrFloat32(cfg.FrequencyPenalty),
		PresencePenalty:  ptrFloat32(cfg.PresencePenalty),
		Timeout:          cfg.EffectiveTimeout(),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create eino chat model for %s: %w", cfg.Model, err)
	}

	f.models[key] = chatModel
	return chatModel, nil
}

func ptrFloat32(f float64) *float32 {
	v := float32(f)
	return &v
}
