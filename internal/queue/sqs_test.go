package queue

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	sqstypes "github.com/aws/aws-sdk-go-v2/service/sqs/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sherpa/internal/config"
	"sherpa/internal/logger"
	"sherpa/pkg/models"
)

type fakeSQSAPI struct {
	sendInput    *sqs.SendMessageInput
	sendErr      error
	receiveOut   []*sqs.ReceiveMessageOutput
	receiveCalls int
	deleteInput  *sqs.DeleteMessageBatchInput
	deleteOut    *sqs.DeleteMessageBatchOutput
	deleteErr    error
	cancel       context.CancelFunc
}

func (f *fakeSQSAPI) SendMessage(ctx context.Context, params *sqs.SendMessageInput, optFns ...func(*sqs.Options)) (*sqs.SendMessageOutput, error) {
	f.sendInput = params
	if f.sendErr != nil {
		return nil, f.sendErr
	}
	return &sqs.SendMessageOutput{MessageId: aws.String("m1")}, nil
}

func (f *fakeSQSAPI) ReceiveMessage(ctx context.Context, params *sqs.ReceiveMessageInput, optFns ...func(*sqs.Options)) (*sqs.ReceiveMessageOutput, error) {
	defer func() { f.receiveCalls++ }()
	if f.receiveCalls < len(f.receiveOut) {
		return f.receiveOut[f.receiveCalls], nil
	}
	// Out of scripted batches: stop the consumer loop.
	if f.cancel != nil {
		f.cancel()
	}
	return &sqs.ReceiveMessageOutput{}, nil
}

func (f *fakeSQSAPI) DeleteMessageBatch(ctx context.Context, params *sqs.DeleteMessageBatchInput, optFns ...func(*sqs.Options)) (*sqs.DeleteMessageBatchOutput, error) {
	f.deleteInput = params
	if f.deleteErr != nil {
		return nil, f.deleteErr
	}
	if f.deleteOut != nil {
		return f.deleteOut, nil
	}
	return &sqs.DeleteMessageBatchOutput{}, nil
}

func testSQSConfig() config.SQSConfig {
	return config.SQSConfig{
		QueueURL:        "https://sqs.ap-northeast-1.amazonaws.com/123456789012/events.fifo",
		MaxBatchSize:    10,
		WaitTimeSeconds: 0,
	}
}

func TestPublish_SetsDeduplicationAndGroupIDs(t *testing.T) {
	api := &fakeSQSAPI{}
	producer := NewSQSProducer(api, testSQSConfig(), logger.NopLogger())

	item := models.WorkItem{
		Event:     models.ChatEvent{Channel: "C01", Text: "hello", TS: "1.000"},
		EventID:   "Ev12345678",
		EventTime: "1714000000",
	}

	require.NoError(t, producer.Publish(context.Background(), item))

	require.NotNil(t, api.sendInput)
	assert.Equal(t, "https://sqs.ap-northeast-1.amazonaws.com/123456789012/events.fifo", aws.ToString(api.sendInput.QueueUrl))
	assert.Equal(t, "slack-events", aws.ToString(api.sendInput.MessageGroupId))
	assert.Equal(t, "Ev12345678", aws.ToString(api.sendInput.MessageDeduplicationId))

	var decoded models.WorkItem
	require.NoError(t, json.Unmarshal([]byte(aws.ToString(api.sendInput.MessageBody)), &decoded))
	assert.Equal(t, item, decoded)
}

func TestPublish_SendError(t *testing.T) {
	api := &fakeSQSAPI{sendErr: errors.New("queue unavailable")}
	producer := NewSQSProducer(api, testSQSConfig(), logger.NopLogger())

	err := producer.Publish(context.Background(), models.WorkItem{EventID: "Ev1"})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to send queue message")
}

func TestConsume_DeletesOnlySucceededRecords(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	api := &fakeSQSAPI{
		cancel: cancel,
		receiveOut: []*sqs.ReceiveMessageOutput{
			{Messages: []sqstypes.Message{
				{MessageId: aws.String("m1"), Body: aws.String("b1"), ReceiptHandle: aws.String("rh1")},
				{MessageId: aws.String("m2"), Body: aws.String("b2"), ReceiptHandle: aws.String("rh2")},
				{MessageId: aws.String("m3"), Body: aws.String("b3"), ReceiptHandle: aws.String("rh3")},
			}},
		},
	}
	consumer := NewSQSConsumer(api, testSQSConfig(), logger.NopLogger())
	consumer.SetServiceName("worker")

	var handled []Record
	err := consumer.Consume(ctx, func(ctx context.Context, records []Record) BatchResult {
		handled = records
		return BatchResult{Failures: []BatchItemFailure{{ItemIdentifier: "m2"}}}
	})

	assert.ErrorIs(t, err, context.Canceled)
	require.Len(t, handled, 3)
	assert.Equal(t, "b2", handled[1].Body)

	require.NotNil(t, api.deleteInput)
	require.Len(t, api.deleteInput.Entries, 2)
	assert.Equal(t, "m1", aws.ToString(api.deleteInput.Entries[0].Id))
	assert.Equal(t, "rh1", aws.ToString(api.deleteInput.Entries[0].ReceiptHandle))
	assert.Equal(t, "m3", aws.ToString(api.deleteInput.Entries[1].Id))
}

func TestConsume_AllFailedSkipsDelete(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	api := &fakeSQSAPI{
		cancel: cancel,
		receiveOut: []*sqs.ReceiveMessageOutput{
			{Messages: []sqstypes.Message{
				{MessageId: aws.String("m1"), Body: aws.String("b1"), ReceiptHandle: aws.String("rh1")},
			}},
		},
	}
	consumer := NewSQSConsumer(api, testSQSConfig(), logger.NopLogger())

	err := consumer.Consume(ctx, func(ctx context.Context, records []Record) BatchResult {
		return BatchResult{Failures: []BatchItemFailure{{ItemIdentifier: "m1"}}}
	})

	assert.ErrorIs(t, err, context.Canceled)
	assert.Nil(t, api.deleteInput, "failed records stay on the queue")
}

func TestConsume_EmptyReceiveSkipsHandler(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	api := &fakeSQSAPI{
		cancel:     cancel,
		receiveOut: []*sqs.ReceiveMessageOutput{{}},
	}
	consumer := NewSQSConsumer(api, testSQSConfig(), logger.NopLogger())

	called := false
	err := consumer.Consume(ctx, func(ctx context.Context, records []Record) BatchResult {
		called = true
		return BatchResult{}
	})

	assert.ErrorIs(t, err, context.Canceled)
	assert.False(t, called)
}

func TestBatchResultFailed(t *testing.T) {
	result := BatchResult{Failures: []BatchItemFailure{
		{ItemIdentifier: "m1"},
		{ItemIdentifier: "m3"},
	}}

	assert.True(t, result.Failed("m1"))
	assert.False(t, result.Failed("m2"))
	assert.True(t, result.Failed("m3"))
}

func TestBatchResultJSONShape(t *testing.T) {
	data, err := json.Marshal(BatchResult{Failures: []BatchItemFailure{{ItemIdentifier: "m1"}}})
	require.NoError(t, err)
	assert.JSONEq(t, `{"batchItemFailures":[{"itemIdentifier":"m1"}]}`, string(data))

	data, err = json.Marshal(BatchResult{})
	require.NoError(t, err)
	assert.JSONEq(t, `{}`, string(data))
}
