package redis

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ai-novel-api/internal/config"
)

func TestOptions_URLTakesPrecedence(t *testing.T) {
	opts, err := options(&config.RedisConfig{
		URL:      "redis://:secret@cache:6380/2",
		Host:     "ignored",
		Port:     6379,
		PoolSize: 7,
	})
	require.NoError(t, err)

	assert.Equal(t, "cache:6380", opts.Addr)
	assert.Equal(t, "secret", opts.Password)
	assert.Equal(t, 2, opts.DB)
	assert.Equal(t, 7, opts.PoolSize)
}

func TestOptions_HostFields(t *testing.T) {
	opts, err := options(&config.RedisConfig{Host: "localhost", Port: 6379, DB: 1, DialTimeout: 2 * time.Second})
	require.NoError(t, err)

	assert.Equal(t, "localhost:6379", opts.Addr)
	assert.Equal(t, 1, opts.DB)
	assert.Equal(t, 2*time.Second, opts.DialTimeout)
}

func TestOptions_InvalidURL(t *testing.T) {
	_, err := options(&config.RedisConfig{URL: "http://not-redis"})
	assert.Error(t, err)
}
