package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"

	"sherpa/internal/constants"
)

func LoadConfig(configFile string) (*Config, error) {
	viper.Reset()

	viper.SetConfigType("yaml")
	viper.SetConfigFile(configFile)

	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	bindEnvVariables()
	setDefaults()

	if err := viper.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", configFile, err)
	}

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	applyDefaults(&cfg)

	if err := ValidateStatic(&cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return &cfg, nil
}

func bindEnvVariables() {
	viper.BindEnv("queue.sqs.queue_url", "QUEUE_SQS_QUEUE_URL")
	viper.BindEnv("queue.sqs.region", "QUEUE_SQS_REGION")
	viper.BindEnv("queue.sqs.max_batch_size", "QUEUE_SQS_MAX_BATCH_SIZE")
	viper.BindEnv("queue.sqs.wait_time_seconds", "QUEUE_SQS_WAIT_TIME_SECONDS")

	viper.BindEnv("secrets.signing_secret_id", "SECRETS_SIGNING_SECRET_ID")
	viper.BindEnv("secrets.bot_token_id", "SECRETS_BOT_TOKEN_ID")
	viper.BindEnv("secrets.refresh_interval_seconds", "SECRETS_REFRESH_INTERVAL_SECONDS")

	viper.BindEnv("knowledge.knowledge_base_id", "KNOWLEDGE_KNOWLEDGE_BASE_ID")
	viper.BindEnv("knowledge.model_arn", "KNOWLEDGE_MODEL_ARN")

	viper.BindEnv("server.port", "SERVER_PORT")
	viper.BindEnv("server.read_timeout_seconds", "SERVER_READ_TIMEOUT_SECONDS")
	viper.BindEnv("server.write_timeout_seconds", "SERVER_WRITE_TIMEOUT_SECONDS")

	viper.BindEnv("logging.level", "LOGGING_LEVEL")
	viper.BindEnv("logging.format", "LOGGING_FORMAT")
}

func setDefaults() {
	viper.SetDefault("queue.type", "sqs")
	viper.SetDefault("logging.level", "info")
	viper.SetDefault("logging.format", "json")
}

func applyDefaults(cfg *Config) {
	if cfg.Secrets.RefreshIntervalSeconds <= 0 {
		cfg.Secrets.RefreshIntervalSeconds = int(constants.DefaultSecretRefreshInterval.Seconds())
	}

	if cfg.Knowledge.ModelARN == "" {
		cfg.Knowledge.ModelARN = constants.DefaultModelARN
	}

	if cfg.Queue.SQS.MaxBatchSize <= 0 {
		cfg.Queue.SQS.MaxBatchSize = constants.DefaultMaxBatchSize
	}

	if cfg.Queue.SQS.WaitTimeSeconds <= 0 {
		cfg.Queue.SQS.WaitTimeSeconds = constants.DefaultReceiveWaitSeconds
	}
}
