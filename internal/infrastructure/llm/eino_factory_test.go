package llm

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProviderConfig_BaseURL(t *testing.T) {
	tests := []struct {
		url  string
		want string
	}{
		{"https://api.openai.com/v1/chat/completions", "https://api.openai.com/v1"},
		{"https://api.openai.com/v1/chat/completions/", "https://api.openai.com/v1"},
		{"https://dashscope.aliyuncs.com/compatible-mode/v1", "https://dashscope.aliyuncs.com/compatible-mode/v1"},
		{" http://localhost:11434/v1/chat/completions ", "http://localhost:11434/v1"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, ProviderConfig{APIURL: tt.url}.BaseURL(), tt.url)
	}
}

func TestProviderConfig_Timeout(t *testing.T) {
	assert.Equal(t, DefaultTimeout, ProviderConfig{}.EffectiveTimeout())
	assert.Equal(t, 5*time.Second, ProviderConfig{Timeout: 5 * time.Second}.EffectiveTimeout())
}

func TestEinoFactory_RequiresCredential(t *testing.T) {
	_, err := NewEinoFactory().Get(context.Background(), ProviderConfig{APIKey: "  "})
	require.Error(t, err)
}

func TestEinoFactory_CachesByConfig(t *testing.T) {
	f := NewEinoFactory()
	cfg := ProviderConfig{
		APIURL: "https://api.openai.com/v1/chat/completions",
		APIKey: "sk-test",
		Model:  "gpt-3.5-turbo",
	}

	m1, err := f.Get(context.Background(), cfg)
	require.NoError(t, err)
	m2, err := f.Get(context.Background(), cfg)
	require.NoError(t, err)
	assert.Same(t, m1, m2)

	cfg.Model = "gpt-4o-mini"
	m3, err := f.Get(context.Background(), cfg)
	require.NoError(t, err)
	assert.NotSame(t, m1, m3)
	assert.Len(t, f.models, 2)
}
