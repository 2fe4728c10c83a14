package generation

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"

	"ai-novel-api/internal/domain/entity"
	"ai-novel-api/internal/infrastructure/llm"
	einoobs "ai-novel-api/internal/observability/eino"
	"ai-novel-api/pkg/logger"
)

// SystemPersona 发送给模型的系统消息
const SystemPersona = "你是一个专业的中文小说创作助手，擅长各种文学风格的创作。"

// ChatModelFactory 应用层对 ChatModel 的最小依赖，由 llm.EinoFactory 实现
type ChatModelFactory interface {
	Get(ctx context.Context, cfg llm.ProviderConfig) (model.BaseChatModel, error)
}

// Output 生成结果
type Output struct {
	Content          string
	Source           entity.ContentSource
	Model            string
	PromptTokens     int
	CompletionTokens int
	// FallbackReason 使用兜底内容的原因，模型生成时为空
	FallbackReason string
}

// Invoker 调用模型生成内容，任何失败都转为兜底生成，不重试
type Invoker struct {
	factory     ChatModelFactory
	synthesizer *Synthesizer
}

// NewInvoker 创建调用器
func NewInvoker(factory ChatModelFactory, synthesizer *Synthesizer) *Invoker {
	if synthesizer == nil {
		synthesizer = NewDefaultSynthesizer()
	}
	return &Invoker{factory: factory, synthesizer: synthesizer}
}

// Generate 未配置凭据时直接兜底；调用方取消请求时返回 context 错误
func (inv *Invoker) Generate(ctx context.Context, prompt string, settings entity.GenerationSettings, provider llm.ProviderConfig) (*Output, error) {
	if !provider.HasCredential() || inv.factory == nil {
		logger.Debug(ctx, "llm credential not configured, using fallback content")
		return inv.fallback(settings, "no_credential"), nil
	}

	out, err := inv.callModel(ctx, prompt, settings, provider)
	if err == nil {
		return out, nil
	}
	if ctxErr := ctx.Err(); ctxErr != nil {
		return nil, fmt.Errorf("generation aborted: %w", ctxErr)
	}

	logger.Warn(ctx, "llm generation failed, using fallback content",
		"model", provider.Model,
		"error", err.Error(),
	)
	return inv.fallback(settings, fallbackReason(err)), nil
}

func (inv *Invoker) callModel(ctx context.Context, prompt string, settings entity.GenerationSettings, provider llm.ProviderConfig) (*Output, error) {
	callCtx, cancel := context.WithTimeout(ctx, provider.EffectiveTimeout())
	defer cancel()

	chatModel, err := inv.factory.Get(callCtx, provider)
	if err != nil {
		return nil, err
	}

	msgs := []*schema.Message{
		schema.SystemMessage(SystemPersona),
		schema.UserMessage(prompt),
	}

	callCtx = einoobs.WithChatModelRun(callCtx, "generation")
	outMsg, err := chatModel.Generate(callCtx, msgs, buildModelOptions(settings, provider)...)
	if err != nil {
		return nil, err
	}
	if outMsg == nil {
		return nil, errEmptyCompletion
	}

	content := strings.TrimSpace(outMsg.Content)
	if content == "" {
		return nil, errEmptyCompletion
	}

	out := &Output{
		Content: content,
		Source:  entity.SourceModel,
		Model:   provider.Model,
	}
	if outMsg.ResponseMeta != nil && outMsg.ResponseMeta.Usage != nil {
		out.PromptTokens = outMsg.ResponseMeta.Usage.PromptTokens
		out.CompletionTokens = outMsg.ResponseMeta.Usage.CompletionTokens
	}
	return out, nil
}

func (inv *Invoker) fallback(settings entity.GenerationSettings, reason string) *Output {
	return &Output{
		Content:        inv.synthesizer.Synthesize(settings),
		Source:         entity.SourceFallback,
		FallbackReason: reason,
	}
}

var errEmptyCompletion = errors.New("llm returned empty completion")

func fallbackReason(err error) string {
	switch {
	case errors.Is(err, errEmptyCompletion):
		return "empty_completion"
	case errors.Is(err, context.DeadlineExceeded):
		return "timeout"
	default:
		return "provider_error"
	}
}

// MaxTokens 目标字数的两倍，不超过上限
func MaxTokens(targetWordCount, limit int) int {
	n := targetWordCount * 2
	if limit > 0 && n > limit {
		return limit
	}
	return n
}

func buildModelOptions(settings entity.GenerationSettings, provider llm.ProviderConfig) []model.Option {
	opts := []model.Option{
		model.WithTemperature(float32(provider.Temperature)),
		model.WithTopP(float32(provider.TopP)),
		model.WithMaxTokens(MaxTokens(settings.TargetWordCount, provider.MaxTokensCap)),
	}
	if m := strings.TrimSpace(provider.Model); m != "" {
		opts = append(opts, model.WithModel(m))
	}
	return opts
}
