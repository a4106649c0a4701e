package config

import (
	"fmt"

	"sherpa/internal/constants"
)

type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation error for field '%s': %s", e.Field, e.Message)
}

func ValidateStatic(cfg *Config) error {
	var errors []error

	if err := validateServer(cfg.Server); err != nil {
		errors = append(errors, err)
	}

	if err := validateQueue(cfg.Queue); err != nil {
		errors = append(errors, err)
	}

	if err := validateSecrets(cfg.Secrets); err != nil {
		errors = append(errors, err)
	}

	if len(errors) > 0 {
		return fmt.Errorf("configuration validation failed: %v", errors)
	}

	return nil
}

func validateServer(cfg ServerConfig) error {
	if cfg.Port < 1 || cfg.Port > 65535 {
		return &ValidationError{
			Field:   "server.port",
			Message: fmt.Sprintf("port must be between 1 and 65535, got %d", cfg.Port),
		}
	}

	return nil
}

func validateQueue(cfg QueueConfig) error {
	if cfg.Type == "" {
		return &ValidationError{
			Field:   "queue.type",
			Message: "queue type is required",
		}
	}

	switch cfg.Type {
	case "sqs":
		return validateSQS(cfg.SQS)
	default:
		return &ValidationError{
			Field:   "queue.type",
			Message: fmt.Sprintf("unknown queue type: %s", cfg.Type),
		}
	}
}

func validateSQS(cfg SQSConfig) error {
	if cfg.QueueURL == "" {
		return &ValidationError{
			Field:   "queue.sqs.queue_url",
			Message: "queue URL is required",
		}
	}

	if cfg.MaxBatchSize < 1 || cfg.MaxBatchSize > constants.DefaultMaxBatchSize {
		return &ValidationError{
			Field:   "queue.sqs.max_batch_size",
			Message: fmt.Sprintf("max batch size must be between 1 and %d, got %d", constants.DefaultMaxBatchSize, cfg.MaxBatchSize),
		}
	}

	return nil
}

func validateSecrets(cfg SecretsConfig) error {
	if cfg.RefreshIntervalSeconds <= 0 {
		return &ValidationError{
			Field:   "secrets.refresh_interval_seconds",
			Message: "refresh interval must be positive",
		}
	}

	return nil
}
