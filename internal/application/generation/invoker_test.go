package generation

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ai-novel-api/internal/domain/entity"
	"ai-novel-api/internal/infrastructure/llm"
)

type fakeChatModel struct {
	reply    *schema.Message
	err      error
	block    bool
	calls    int
	messages []*schema.Message
	options  *model.Options
}

func (m *fakeChatModel) Generate(ctx context.Context, input []*schema.Message, opts ...model.Option) (*schema.Message, error) {
	m.calls++
	m.messages = input
	m.options = model.GetCommonOptions(&model.Options{}, opts...)
	if m.block {
		<-ctx.Done()
		return nil, ctx.Err()
	}
	return m.reply, m.err
}

func (m *fakeChatModel) Stream(ctx context.Context, input []*schema.Message, opts ...model.Option) (*schema.StreamReader[*schema.Message], error) {
	return nil, errors.New("not implemented")
}

type fakeFactory struct {
	model model.BaseChatModel
	err   error
	calls int
	last  llm.ProviderConfig
}

func (f *fakeFactory) Get(ctx context.Context, cfg llm.ProviderConfig) (model.BaseChatModel, error) {
	f.calls++
	f.last = cfg
	if f.err != nil {
		return nil, f.err
	}
	return f.model, nil
}

func testProvider() llm.ProviderConfig {
	return llm.ProviderConfig{
		APIURL:           "https://api.openai.com/v1/chat/completions",
		APIKey:           "sk-test",
		Model:            "gpt-3.5-turbo",
		Temperature:      0.8,
		TopP:             0.9,
		FrequencyPenalty: 0.1,
		PresencePenalty:  0.1,
		MaxTokensCap:     4000,
		Timeout:          time.Second,
	}
}

func newTestInvoker(t *testing.T, f ChatModelFactory) *Invoker {
	t.Helper()
	synth, err := NewSynthesizer(DefaultCorpus, fixedPick(0))
	require.NoError(t, err)
	return NewInvoker(f, synth)
}

func TestInvoker_NoCredentialUsesFallback(t *testing.T) {
	f := &fakeFactory{model: &fakeChatModel{}}
	inv := newTestInvoker(t, f)

	p := testProvider()
	p.APIKey = ""
	out, err := inv.Generate(context.Background(), "prompt", settingsWithTarget(50), p)
	require.NoError(t, err)

	assert.Equal(t, entity.SourceFallback, out.Source)
	assert.Equal(t, "no_credential", out.FallbackReason)
	assert.NotEmpty(t, out.Content)
	assert.Zero(t, f.calls)
}

func TestInvoker_ModelSuccess(t *testing.T) {
	reply := schema.AssistantMessage("  生成的正文。  ", nil)
	reply.ResponseMeta = &schema.ResponseMeta{Usage: &schema.TokenUsage{PromptTokens: 120, CompletionTokens: 80}}
	cm := &fakeChatModel{reply: reply}
	f := &fakeFactory{model: cm}
	inv := newTestInvoker(t, f)

	out, err := inv.Generate(context.Background(), "写一章", settingsWithTarget(1000), testProvider())
	require.NoError(t, err)

	assert.Equal(t, "生成的正文。", out.Content)
	assert.Equal(t, entity.SourceModel, out.Source)
	assert.Equal(t, "gpt-3.5-turbo", out.Model)
	assert.Equal(t, 120, out.PromptTokens)
	assert.Equal(t, 80, out.CompletionTokens)

	require.Len(t, cm.messages, 2)
	assert.Equal(t, schema.System, cm.messages[0].Role)
	assert.Equal(t, SystemPersona, cm.messages[0].Content)
	assert.Equal(t, schema.User, cm.messages[1].Role)
	assert.Equal(t, "写一章", cm.messages[1].Content)

	require.NotNil(t, cm.options.MaxTokens)
	assert.Equal(t, 2000, *cm.options.MaxTokens)
	require.NotNil(t, cm.options.Temperature)
	assert.InDelta(t, 0.8, *cm.options.Temperature, 1e-6)
	require.NotNil(t, cm.options.TopP)
	assert.InDelta(t, 0.9, *cm.options.TopP, 1e-6)
	require.NotNil(t, cm.options.Model)
	assert.Equal(t, "gpt-3.5-turbo", *cm.options.Model)
}

func TestInvoker_MaxTokensCapped(t *testing.T) {
	cm := &fakeChatModel{reply: schema.AssistantMessage("ok", nil)}
	inv := newTestInvoker(t, &fakeFactory{model: cm})

	_, err := inv.Generate(context.Background(), "p", settingsWithTarget(5000), testProvider())
	require.NoError(t, err)
	assert.Equal(t, 4000, *cm.options.MaxTokens)
}

func TestInvoker_FailuresFallBackWithoutRetry(t *testing.T) {
	tests := []struct {
		name   string
		model  *fakeChatModel
		reason string
	}{
		{"transport error", &fakeChatModel{err: errors.New("status 502")}, "provider_error"},
		{"empty content", &fakeChatModel{reply: schema.AssistantMessage("   ", nil)}, "empty_completion"},
		{"nil message", &fakeChatModel{}, "empty_completion"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			inv := newTestInvoker(t, &fakeFactory{model: tt.model})

			out, err := inv.Generate(context.Background(), "p", settingsWithTarget(50), testProvider())
			require.NoError(t, err)
			assert.Equal(t, entity.SourceFallback, out.Source)
			assert.Equal(t, tt.reason, out.FallbackReason)
			assert.NotEmpty(t, out.Content)
			assert.Equal(t, 1, tt.model.calls)
		})
	}
}

func TestInvoker_FactoryErrorFallsBack(t *testing.T) {
	inv := newTestInvoker(t, &fakeFactory{err: errors.New("bad config")})

	out, err := inv.Generate(context.Background(), "p", settingsWithTarget(50), testProvider())
	require.NoError(t, err)
	assert.Equal(t, entity.SourceFallback, out.Source)
}

func TestInvoker_TimeoutFallsBack(t *testing.T) {
	cm := &fakeChatModel{block: true}
	inv := newTestInvoker(t, &fakeFactory{model: cm})

	p := testProvider()
	p.Timeout = 20 * time.Millisecond
	out, err := inv.Generate(context.Background(), "p", settingsWithTarget(50), p)
	require.NoError(t, err)
	assert.Equal(t, entity.SourceFallback, out.Source)
	assert.Equal(t, "timeout", out.FallbackReason)
}

func TestInvoker_CallerCancellationAborts(t *testing.T) {
	cm := &fakeChatModel{block: true}
	inv := newTestInvoker(t, &fakeFactory{model: cm})

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(20 * time.Millisecond)
		cancel()
	}()

	_, err := inv.Generate(ctx, "p", settingsWithTarget(50), testProvider())
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestMaxTokens(t *testing.T) {
	assert.Equal(t, 100, MaxTokens(50, 4000))
	assert.Equal(t, 4000, MaxTokens(2000, 4000))
	assert.Equal(t, 4000, MaxTokens(2001, 4000))
	assert.Equal(t, 6000, MaxTokens(3000, 0))
}
