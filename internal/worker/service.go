package worker

import (
	"context"
	"encoding/json"
	"fmt"

	"sherpa/internal/chat"
	"sherpa/internal/knowledge"
	"sherpa/internal/logger"
	"sherpa/internal/queue"
	"sherpa/pkg/errors"
	"sherpa/pkg/logging"
	"sherpa/pkg/metrics"
	"sherpa/pkg/models"
)

// Record processing statuses, used as metric labels.
const (
	statusReplied  = "replied"
	statusFallback = "fallback"
	statusFailed   = "failed"
)

// Service consumes batches of work items, answers each query against the
// knowledge backend, and delivers the reply. Only records whose reply could
// not be delivered (or that failed before a reply was attempted) are reported
// back for redelivery.
type Service struct {
	retriever knowledge.Retriever
	poster    chat.Poster
	logger    logger.Logger
}

func NewService(retriever knowledge.Retriever, poster chat.Poster, log logger.Logger) *Service {
	return &Service{
		retriever: retriever,
		poster:    poster,
		logger:    log,
	}
}

// ProcessBatch handles records sequentially in delivery order and returns the
// partial-batch-failure report. A record that got a fallback apology delivered
// is a success; only undelivered records count as failed.
func (s *Service) ProcessBatch(ctx context.Context, records []queue.Record) queue.BatchResult {
	s.logger.InfowCtx(ctx, "Processing batch",
		"records", len(records),
	)

	var result queue.BatchResult

	for _, record := range records {
		recordCtx := logging.WithRecordID(ctx, record.MessageID)

		status, err := s.processRecord(recordCtx, record)
		metrics.WorkerRecordsTotal.WithLabelValues(status).Inc()

		if err != nil {
			s.logger.ErrorwCtx(recordCtx, "Error processing record",
				"error", err,
			)
			result.Failures = append(result.Failures, queue.BatchItemFailure{
				ItemIdentifier: record.MessageID,
			})
		}
	}

	return result
}

func (s *Service) processRecord(ctx context.Context, record queue.Record) (status string, err error) {
	defer func() {
		if r := recover(); r != nil {
			status = statusFailed
			err = errors.RecoverPanic(r)
		}
	}()

	var item models.WorkItem
	if err := json.Unmarshal([]byte(record.Body), &item); err != nil {
		return statusFailed, fmt.Errorf("failed to unmarshal work item: %w", err)
	}

	ctx = logging.WithEventID(ctx, item.EventID)

	query := ExtractQuery(item.Event.Text)
	s.logger.InfowCtx(ctx, "Resolving query",
		"query", query,
	)

	text, usedFallback := s.resolveAnswer(ctx, query)
	status = statusReplied
	if usedFallback {
		status = statusFallback
	}

	// Delivery errors are the one failure class surfaced to the queue: the
	// user got nothing, so the whole item is worth a redelivery.
	if err := s.poster.PostReply(ctx, item.Event.Channel, text, item.Event.TS); err != nil {
		return statusFailed, fmt.Errorf("failed to deliver reply: %w", err)
	}

	return status, nil
}

// resolveAnswer queries the knowledge backend and never fails: backend errors
// fall back to the canned apology so the user always receives a reply.
func (s *Service) resolveAnswer(ctx context.Context, query string) (string, bool) {
	answer, err := s.retriever.Retrieve(ctx, query)
	if err != nil {
		s.logger.ErrorwCtx(ctx, "Knowledge backend error, using fallback answer",
			"error", err,
		)
		return fallbackAnswer, true
	}

	return FormatAnswer(answer), false
}
