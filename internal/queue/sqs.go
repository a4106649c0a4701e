package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	sqstypes "github.com/aws/aws-sdk-go-v2/service/sqs/types"

	"sherpa/internal/config"
	"sherpa/internal/constants"
	"sherpa/internal/logger"
	"sherpa/pkg/logging"
	"sherpa/pkg/metrics"
	"sherpa/pkg/models"
	"sherpa/pkg/retry"
)

// SQSAPI is the slice of the SQS client the queue layer uses. Narrowed so
// tests can substitute a fake.
type SQSAPI interface {
	SendMessage(ctx context.Context, params *sqs.SendMessageInput, optFns ...func(*sqs.Options)) (*sqs.SendMessageOutput, error)
	ReceiveMessage(ctx context.Context, params *sqs.ReceiveMessageInput, optFns ...func(*sqs.Options)) (*sqs.ReceiveMessageOutput, error)
	DeleteMessageBatch(ctx context.Context, params *sqs.DeleteMessageBatchInput, optFns ...func(*sqs.Options)) (*sqs.DeleteMessageBatchOutput, error)
}

type SQSProducer struct {
	client SQSAPI
	cfg    config.SQSConfig
	logger logger.Logger
}

func NewSQSProducer(client SQSAPI, cfg config.SQSConfig, log logger.Logger) *SQSProducer {
	return &SQSProducer{client: client, cfg: cfg, logger: log}
}

// Publish enqueues one work item. The event id is used verbatim as the FIFO
// deduplication id; the group id is the same for every message so the queue
// preserves submission order across the whole stream.
func (p *SQSProducer) Publish(ctx context.Context, item models.WorkItem) error {
	body, err := json.Marshal(item)
	if err != nil {
		return fmt.Errorf("failed to marshal work item: %w", err)
	}

	_, err = p.client.SendMessage(ctx, &sqs.SendMessageInput{
		QueueUrl:               aws.String(p.cfg.QueueURL),
		MessageBody:            aws.String(string(body)),
		MessageGroupId:         aws.String(constants.MessageGroupID),
		MessageDeduplicationId: aws.String(item.EventID),
	})
	if err != nil {
		return fmt.Errorf("failed to send queue message: %w", err)
	}

	return nil
}

func (p *SQSProducer) Close() error {
	return nil
}

type SQSConsumer struct {
	client      SQSAPI
	cfg         config.SQSConfig
	logger      logger.Logger
	serviceName string
}

func NewSQSConsumer(client SQSAPI, cfg config.SQSConfig, log logger.Logger) *SQSConsumer {
	return &SQSConsumer{
		client:      client,
		cfg:         cfg,
		logger:      log,
		serviceName: "unknown",
	}
}

func (c *SQSConsumer) SetServiceName(name string) {
	c.serviceName = name
}

// Consume long-polls the queue and hands each batch to the handler. Records
// the handler does not report as failed are deleted; failed records are left
// on the queue and reappear after the visibility timeout.
func (c *SQSConsumer) Consume(ctx context.Context, handler BatchHandlerFunc) error {
	consumeCtx := logging.WithServiceName(ctx, c.serviceName)
	c.logger.InfowCtx(consumeCtx, "Started consuming",
		"queue_url", c.cfg.QueueURL,
		"max_batch_size", c.cfg.MaxBatchSize,
		"wait_time_seconds", c.cfg.WaitTimeSeconds,
	)

	for {
		if err := ctx.Err(); err != nil {
			c.logger.InfowCtx(consumeCtx, "Stopped consuming",
				"reason", "context canceled",
			)
			return err
		}

		records, err := c.receiveBatch(ctx)
		if err != nil {
			if ctx.Err() != nil {
				continue
			}
			c.logger.ErrorwCtx(consumeCtx, "Error receiving queue messages after retries",
				"error", err,
			)
			continue
		}

		if len(records) == 0 {
			continue
		}

		metrics.WorkerBatchSize.Observe(float64(len(records)))

		result := handler(ctx, records)

		if err := c.acknowledge(ctx, records, result); err != nil {
			c.logger.ErrorwCtx(consumeCtx, "Failed to acknowledge batch",
				"error", err,
			)
		}
	}
}

func (c *SQSConsumer) receiveBatch(ctx context.Context) ([]Record, error) {
	var out *sqs.ReceiveMessageOutput

	policy := retry.DefaultPolicy()
	if c.cfg.Retry.MaxAttempts > 0 {
		policy.MaxAttempts = c.cfg.Retry.MaxAttempts
	}
	if c.cfg.Retry.InitialInterval > 0 {
		policy.InitialInterval = c.cfg.Retry.InitialInterval
	}
	if c.cfg.Retry.MaxInterval > 0 {
		policy.MaxInterval = c.cfg.Retry.MaxInterval
	}
	if c.cfg.Retry.Multiplier > 0 {
		policy.Multiplier = c.cfg.Retry.Multiplier
	}
	if c.cfg.Retry.MaxElapsedTime > 0 {
		policy.MaxElapsedTime = c.cfg.Retry.MaxElapsedTime
	}

	err := retry.RetryWithCallback(ctx, policy, func() error {
		var receiveErr error
		out, receiveErr = c.client.ReceiveMessage(ctx, &sqs.ReceiveMessageInput{
			QueueUrl:            aws.String(c.cfg.QueueURL),
			MaxNumberOfMessages: c.cfg.MaxBatchSize,
			WaitTimeSeconds:     c.cfg.WaitTimeSeconds,
		})
		if receiveErr != nil {
			metrics.QueueReceiveErrorsTotal.Inc()
		}
		return receiveErr
	}, func(attempt int, err error, nextDelay time.Duration) {
		metrics.RetryAttemptsTotal.WithLabelValues(c.serviceName, "receive").Inc()
		c.logger.WarnwCtx(ctx, "Retrying queue receive",
			"attempt", attempt,
			"next_delay", nextDelay,
			"error", err,
		)
	})
	if err != nil {
		return nil, err
	}

	records := make([]Record, 0, len(out.Messages))
	for _, m := range out.Messages {
		records = append(records, Record{
			MessageID:     aws.ToString(m.MessageId),
			Body:          aws.ToString(m.Body),
			ReceiptHandle: aws.ToString(m.ReceiptHandle),
		})
	}
	return records, nil
}

// acknowledge deletes every record not listed in the failure report.
func (c *SQSConsumer) acknowledge(ctx context.Context, records []Record, result BatchResult) error {
	entries := make([]sqstypes.DeleteMessageBatchRequestEntry, 0, len(records))
	for _, r := range records {
		if result.Failed(r.MessageID) {
			continue
		}
		entries = append(entries, sqstypes.DeleteMessageBatchRequestEntry{
			Id:            aws.String(r.MessageID),
			ReceiptHandle: aws.String(r.ReceiptHandle),
		})
	}

	if len(entries) == 0 {
		return nil
	}

	out, err := c.client.DeleteMessageBatch(ctx, &sqs.DeleteMessageBatchInput{
		QueueUrl: aws.String(c.cfg.QueueURL),
		Entries:  entries,
	})
	if err != nil {
		return fmt.Errorf("failed to delete queue messages: %w", err)
	}

	for _, f := range out.Failed {
		c.logger.WarnwCtx(ctx, "Failed to delete queue message, it will be redelivered",
			"message_id", aws.ToString(f.Id),
			"code", aws.ToString(f.Code),
		)
	}

	return nil
}

func (c *SQSConsumer) Close() error {
	return nil
}
