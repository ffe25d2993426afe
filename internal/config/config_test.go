package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"resume-match-go/internal/matcher"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

// TestLoadConfigKeepsDefaults 文件中未出现的字段保留默认值
func TestLoadConfigKeepsDefaults(t *testing.T) {
	path := writeConfig(t, `
llm:
  model: "qwen-max"
  task_models:
    evaluate: "qwen-turbo"
  task_pacing:
    extract:
      skip_delay: true
matcher:
  mode: simple
server:
  api_keys: ["k1", "k2"]
`)
	config, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, "qwen-max", config.LLM.Model)
	assert.Equal(t, "https://dashscope.aliyuncs.com/compatible-mode/v1/chat/completions", config.LLM.APIURL)
	assert.Equal(t, 15000, config.LLM.ModelQPMLimits["qwen-plus"])
	assert.Equal(t, "qwen-turbo", config.GetModelForTask("evaluate"))
	assert.Equal(t, "qwen-max", config.GetModelForTask("extract"))
	assert.Equal(t, PacingConfig{SkipDelay: true}, config.LLM.TaskPacing["extract"])
	assert.Equal(t, []string{"k1", "k2"}, config.Server.APIKeys)
	assert.Equal(t, ":8080", config.Server.Address)

	weights, err := config.MatcherWeights()
	require.NoError(t, err)
	assert.Equal(t, matcher.SimpleWeights, weights)
}

func TestLoadConfigEnvOverrides(t *testing.T) {
	t.Setenv("LLM_API_KEY", "sk-env")
	t.Setenv("LLM_MODEL", "qwen-turbo")

	config, err := LoadConfig(writeConfig(t, "llm:\n  api_key: from-file\n"))
	require.NoError(t, err)
	assert.Equal(t, "sk-env", config.LLM.APIKey)
	assert.Equal(t, "qwen-turbo", config.LLM.Model)
}

func TestLoadConfigRejectsBadWeights(t *testing.T) {
	_, err := LoadConfig(writeConfig(t, `
matcher:
  weights:
    skills: 0.5
    experience: 0.3
`))
	require.Error(t, err)
	assert.ErrorIs(t, err, matcher.ErrInvalidWeights)

	config, err := LoadConfig(writeConfig(t, `
matcher:
  weights:
    skills: 0.5
    experience: 0.3
    education: 0.2
`))
	require.NoError(t, err)
	weights, err := config.MatcherWeights()
	require.NoError(t, err)
	assert.Equal(t, matcher.Weights{Skills: 0.5, Experience: 0.3, Education: 0.2}, weights)
}

func TestLoadConfigErrors(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)

	_, err = LoadConfig(writeConfig(t, "llm: [unclosed"))
	assert.Error(t, err)

	_, err = LoadConfig(writeConfig(t, "cache:\n  redis_enabled: true\nredis:\n  address: \"\"\n"))
	assert.Error(t, err)
}

func TestGetDuration(t *testing.T) {
	assert.Equal(t, 5*time.Minute, GetDuration("5m", time.Second))
	assert.Equal(t, time.Second, GetDuration("", time.Second))
	assert.Equal(t, time.Second, GetDuration("soon", time.Second))
}

func TestCreateSampleConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sample.yaml")
	require.NoError(t, CreateSampleConfig(path))
	assert.Error(t, CreateSampleConfig(path), "已存在的文件不应被覆盖")

	t.Setenv("LLM_API_KEY", "")
	t.Setenv("LLM_API_URL", "")
	t.Setenv("LLM_MODEL", "")
	config, err := LoadConfig(path)
	require.NoError(t, err)
	defaults := DefaultConfig()
	assert.Equal(t, defaults.LLM.ModelQPMLimits, config.LLM.ModelQPMLimits)
	assert.Equal(t, defaults.Retry, config.Retry)
	assert.Equal(t, defaults.Cache, config.Cache)
	assert.Equal(t, defaults.Redis, config.Redis)
}
