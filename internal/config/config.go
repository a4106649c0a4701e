package config

import (
	"time"
)

type Config struct {
	Server         ServerConfig
	Logging        LoggingConfig
	Queue          QueueConfig
	Secrets        SecretsConfig
	Knowledge      KnowledgeConfig
	CircuitBreaker CircuitBreakerConfig
}

type ServerConfig struct {
	Port                int `mapstructure:"port"`
	ReadTimeoutSeconds  int `mapstructure:"read_timeout_seconds"`
	WriteTimeoutSeconds int `mapstructure:"write_timeout_seconds"`
}

type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

type QueueConfig struct {
	Type string    `mapstructure:"type"`
	SQS  SQSConfig `mapstructure:"sqs"`
}

type SQSConfig struct {
	QueueURL        string      `mapstructure:"queue_url"`
	Region          string      `mapstructure:"region"`
	MaxBatchSize    int32       `mapstructure:"max_batch_size"`
	WaitTimeSeconds int32       `mapstructure:"wait_time_seconds"`
	Retry           RetryConfig `mapstructure:"retry"`
}

type RetryConfig struct {
	MaxAttempts     int           `mapstructure:"max_attempts"`
	InitialInterval time.Duration `mapstructure:"initial_interval"`
	MaxInterval     time.Duration `mapstructure:"max_interval"`
	Multiplier      float64       `mapstructure:"multiplier"`
	MaxElapsedTime  time.Duration `mapstructure:"max_elapsed_time"`
}

type SecretsConfig struct {
	SigningSecretID        string `mapstructure:"signing_secret_id"`
	BotTokenID             string `mapstructure:"bot_token_id"`
	RefreshIntervalSeconds int    `mapstructure:"refresh_interval_seconds"`
}

type KnowledgeConfig struct {
	KnowledgeBaseID string `mapstructure:"knowledge_base_id"`
	ModelARN        string `mapstructure:"model_arn"`
}

type CircuitBreakerConfig struct {
	Enabled      bool          `mapstructure:"enabled"`
	MaxRequests  uint32        `mapstructure:"max_requests"`
	Interval     time.Duration `mapstructure:"interval"`
	Timeout      time.Duration `mapstructure:"timeout"`
	FailureRatio float64       `mapstructure:"failure_ratio"`
	MinRequests  uint32        `mapstructure:"min_requests"`
}

func Load(configFile string) (*Config, error) {
	return LoadConfig(configFile)
}
