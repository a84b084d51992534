package config

import (
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	assert.Equal(t, "sqlite", cfg.DB.Driver)
	assert.Equal(t, 8090, cfg.Server.Port)
	assert.Equal(t, 30*time.Second, cfg.Server.ReadTimeout)
	assert.Equal(t, 120*time.Second, cfg.Server.WriteTimeout)
	assert.Equal(t, "deepseek", cfg.LLM.Provider)
	assert.Equal(t, "langchain", cfg.LLM.Client)
	assert.Equal(t, 60*time.Second, cfg.LLM.Timeout)
	assert.Equal(t, 0.3, cfg.Pipeline.ReviewTemperature)
	assert.Equal(t, 0.5, cfg.Pipeline.FixTemperature)
	assert.Equal(t, 4, cfg.Grading.Concurrency)
	assert.Equal(t, 24*time.Hour, cfg.Grading.CacheTTL)
	assert.Empty(t, cfg.Redis.Address)
}

func TestFromViper_Overrides(t *testing.T) {
	v := viper.New()
	setDefaults(v)
	v.Set("db.driver", "pgx")
	v.Set("llm.timeout", 5)
	v.Set("grading.cache_ttl", 60)

	cfg := fromViper(v)
	assert.Equal(t, "pgx", cfg.DB.Driver)
	assert.Equal(t, 5*time.Second, cfg.LLM.Timeout)
	assert.Equal(t, time.Minute, cfg.Grading.CacheTTL)
	assert.Equal(t, 0.7, cfg.Pipeline.GenerateTemperature)
}

func TestLoadConfig_EnvironmentOverrides(t *testing.T) {
	t.Setenv("DB_DRIVER", "pgx")
	t.Setenv("DB_DSN", "postgres://localhost/quizforge")
	t.Setenv("REDIS_ADDRESS", "redis:6379")
	t.Setenv("LLM_PROVIDER", "ollama")
	t.Setenv("LLM_MODEL", "qwen2.5")
	t.Setenv("LOG_LEVEL", "debug")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "pgx", cfg.DB.Driver)
	assert.Equal(t, "postgres://localhost/quizforge", cfg.DB.DSN)
	assert.Equal(t, "redis:6379", cfg.Redis.Address)
	assert.Equal(t, "ollama", cfg.LLM.Provider)
	assert.Equal(t, "qwen2.5", cfg.LLM.Model)
	assert.Equal(t, "debug", cfg.Logger.Level)
}
