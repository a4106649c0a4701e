package queue

import (
	"context"
	"fmt"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/sqs"

	"sherpa/internal/config"
	"sherpa/internal/logger"
)

func NewProducer(ctx context.Context, cfg config.QueueConfig, log logger.Logger) (Producer, error) {
	switch cfg.Type {
	case "sqs":
		client, err := NewSQSClient(ctx, cfg.SQS)
		if err != nil {
			return nil, err
		}
		return NewSQSProducer(client, cfg.SQS, log), nil
	default:
		return nil, fmt.Errorf("unknown queue type: %s", cfg.Type)
	}
}

func NewConsumer(ctx context.Context, cfg config.QueueConfig, log logger.Logger) (Consumer, error) {
	switch cfg.Type {
	case "sqs":
		client, err := NewSQSClient(ctx, cfg.SQS)
		if err != nil {
			return nil, err
		}
		return NewSQSConsumer(client, cfg.SQS, log), nil
	default:
		return nil, fmt.Errorf("unknown queue type: %s", cfg.Type)
	}
}

// NewSQSClient builds the raw SQS client, also used by health checks.
func NewSQSClient(ctx context.Context, cfg config.SQSConfig) (*sqs.Client, error) {
	opts := []func(*awsconfig.LoadOptions) error{}
	if cfg.Region != "" {
		opts = append(opts, awsconfig.WithRegion(cfg.Region))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	return sqs.NewFromConfig(awsCfg), nil
}
