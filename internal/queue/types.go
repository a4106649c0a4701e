package queue

import (
	"context"

	"sherpa/pkg/models"
)

// Producer enqueues work items. Each item is published with its event id as
// the deduplication key and the fixed pipeline ordering group.
type Producer interface {
	Publish(ctx context.Context, item models.WorkItem) error
	Close() error
}

// Consumer delivers batches of records to a handler and acknowledges the
// records the handler did not report as failed.
type Consumer interface {
	Consume(ctx context.Context, handler BatchHandlerFunc) error
	Close() error
	SetServiceName(name string)
}

// Record is one delivered queue message.
type Record struct {
	MessageID     string
	Body          string
	ReceiptHandle string
}

// BatchItemFailure identifies a record that must be redelivered.
type BatchItemFailure struct {
	ItemIdentifier string `json:"itemIdentifier"`
}

// BatchResult is the partial-batch-failure report: records listed in Failures
// are kept for redelivery, everything else in the batch is acknowledged.
type BatchResult struct {
	Failures []BatchItemFailure `json:"batchItemFailures,omitempty"`
}

// Failed reports whether the record with the given id is in the failure list.
func (r BatchResult) Failed(messageID string) bool {
	for _, f := range r.Failures {
		if f.ItemIdentifier == messageID {
			return true
		}
	}
	return false
}

type BatchHandlerFunc func(ctx context.Context, records []Record) BatchResult
