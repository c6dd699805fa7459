package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigFromFile(t *testing.T) {
	content := `
aliyun:
  api_key: "file_api_key"
  embedding:
    model: "text-embedding-v3"
    dimensions: 512
tika:
  server_url: "http://tika:9998"
  timeout_seconds: 30
server:
  address: ":9090"
mysql:
  host: "db.internal"
  port: 3307
rabbitmq:
  url: "amqp://guest:guest@mq:5672/"
`
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")
	require.NoError(t, os.WriteFile(configPath, []byte(content), 0644), "写入临时配置文件失败")

	cfg, err := LoadConfig(configPath)
	require.NoError(t, err, "加载配置不应失败")

	assert.Equal(t, "file_api_key", cfg.Aliyun.APIKey)
	assert.Equal(t, 512, cfg.Aliyun.Embedding.Dimensions)
	assert.Equal(t, "http://tika:9998", cfg.Tika.ServerURL)
	assert.Equal(t, ":9090", cfg.Server.Address)
	assert.Equal(t, "db.internal", cfg.MySQL.Host)
	assert.Equal(t, 3307, cfg.MySQL.Port)
}

func TestLoadConfigAppliesDefaults(t *testing.T) {
	content := `
aliyun:
  api_key: "key"
`
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")
	require.NoError(t, os.WriteFile(configPath, []byte(content), 0644))

	cfg, err := LoadConfig(configPath)
	require.NoError(t, err)

	// 未显式配置的字段应填充默认值
	assert.Equal(t, ":8080", cfg.Server.Address)
	assert.Equal(t, "text-embedding-v3", cfg.Aliyun.Embedding.Model)
	assert.Equal(t, 1024, cfg.Aliyun.Embedding.Dimensions)
	assert.InDelta(t, 0.25, cfg.Evaluator.HighlightThreshold, 1e-9)
	assert.Equal(t, "30s", cfg.Evaluator.EmbedTimeout)
	assert.Equal(t, "evaluation.events.exchange", cfg.RabbitMQ.EvaluationExchange)
	assert.Equal(t, "evaluation.completed", cfg.RabbitMQ.EvaluationCompletedKey)
	assert.Equal(t, "q.evaluation_archive", cfg.RabbitMQ.EvaluationArchiveQueue)
}

func TestLoadConfigEnvOverride(t *testing.T) {
	content := `
aliyun:
  api_key: "file_key"
server:
  api_key: "file_server_key"
`
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")
	require.NoError(t, os.WriteFile(configPath, []byte(content), 0644))

	t.Setenv("ALIYUN_API_KEY", "env_key")
	t.Setenv("SERVER_API_KEY", "env_server_key")

	cfg, err := LoadConfig(configPath)
	require.NoError(t, err)

	assert.Equal(t, "env_key", cfg.Aliyun.APIKey, "环境变量应覆盖文件中的API Key")
	assert.Equal(t, "env_server_key", cfg.Server.APIKey, "环境变量应覆盖文件中的服务端API Key")
}

func TestLoadConfigMissingFileInTestEnv(t *testing.T) {
	// 测试环境下文件不存在应回落到默认配置
	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "no_such_config.yaml"))
	require.NoError(t, err, "测试环境应回落到默认配置")
	assert.NotEmpty(t, cfg.Server.Address)
	assert.NotEmpty(t, cfg.Aliyun.Embedding.Model)
}

func TestGetDuration(t *testing.T) {
	assert.Equal(t, 45*time.Second, GetDuration("45s", time.Second))
	assert.Equal(t, time.Second, GetDuration("", time.Second), "空字符串应返回默认值")
	assert.Equal(t, time.Second, GetDuration("not-a-duration", time.Second), "非法格式应返回默认值")
}
