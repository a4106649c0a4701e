package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sherpa/internal/constants"
)

func writeConfigFile(t *testing.T, content string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

const validConfigYAML = `
server:
  port: 8080
queue:
  sqs:
    queue_url: "https://sqs.ap-northeast-1.amazonaws.com/123456789012/events.fifo"
    region: "ap-northeast-1"
secrets:
  signing_secret_id: "slack/signing-secret"
  bot_token_id: "slack/bot-token"
knowledge:
  knowledge_base_id: "KB123456"
`

func TestLoadConfig_Valid(t *testing.T) {
	path := writeConfigFile(t, validConfigYAML)

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "sqs", cfg.Queue.Type)
	assert.Equal(t, "https://sqs.ap-northeast-1.amazonaws.com/123456789012/events.fifo", cfg.Queue.SQS.QueueURL)
	assert.Equal(t, "slack/signing-secret", cfg.Secrets.SigningSecretID)
	assert.Equal(t, "KB123456", cfg.Knowledge.KnowledgeBaseID)
}

func TestLoadConfig_AppliesDefaults(t *testing.T) {
	path := writeConfigFile(t, validConfigYAML)

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, int(constants.DefaultSecretRefreshInterval.Seconds()), cfg.Secrets.RefreshIntervalSeconds)
	assert.Equal(t, constants.DefaultModelARN, cfg.Knowledge.ModelARN)
	assert.Equal(t, int32(constants.DefaultMaxBatchSize), cfg.Queue.SQS.MaxBatchSize)
	assert.Equal(t, int32(constants.DefaultReceiveWaitSeconds), cfg.Queue.SQS.WaitTimeSeconds)
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.Equal(t, "json", cfg.Logging.Format)
}

func TestLoadConfig_EnvOverrides(t *testing.T) {
	path := writeConfigFile(t, validConfigYAML)

	t.Setenv("QUEUE_SQS_QUEUE_URL", "https://sqs.us-east-1.amazonaws.com/123456789012/override.fifo")
	t.Setenv("SERVER_PORT", "9090")
	t.Setenv("LOGGING_LEVEL", "debug")

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, "https://sqs.us-east-1.amazonaws.com/123456789012/override.fifo", cfg.Queue.SQS.QueueURL)
	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, "debug", cfg.Logging.Level)
}

func TestLoadConfig_MissingFile(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"))

	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read config file")
}

func TestLoadConfig_ValidationFailures(t *testing.T) {
	tests := []struct {
		name     string
		yaml     string
		expected string
	}{
		{
			name: "port out of range",
			yaml: `
server:
  port: 99999
queue:
  sqs:
    queue_url: "https://example/queue.fifo"
`,
			expected: "server.port",
		},
		{
			name: "missing queue url",
			yaml: `
server:
  port: 8080
queue:
  type: sqs
`,
			expected: "queue.sqs.queue_url",
		},
		{
			name: "unknown queue type",
			yaml: `
server:
  port: 8080
queue:
  type: rabbitmq
  sqs:
    queue_url: "https://example/queue.fifo"
`,
			expected: "queue.type",
		},
		{
			name: "batch size too large",
			yaml: `
server:
  port: 8080
queue:
  sqs:
    queue_url: "https://example/queue.fifo"
    max_batch_size: 50
`,
			expected: "queue.sqs.max_batch_size",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeConfigFile(t, tt.yaml)

			_, err := LoadConfig(path)

			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.expected)
		})
	}
}

func TestValidationError(t *testing.T) {
	err := &ValidationError{Field: "server.port", Message: "port must be positive"}
	assert.Equal(t, "validation error for field 'server.port': port must be positive", err.Error())
}
