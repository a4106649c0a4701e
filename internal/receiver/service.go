package receiver

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"time"

	"github.com/slack-go/slack"

	"sherpa/internal/config"
	"sherpa/internal/constants"
	"sherpa/internal/logger"
	"sherpa/internal/queue"
	"sherpa/internal/secrets"
	"sherpa/pkg/logging"
	"sherpa/pkg/metrics"
	"sherpa/pkg/models"
)

// Service authenticates and normalizes inbound webhook events, suppresses
// platform retries and bot loops, and enqueues one work item per genuine user
// event.
type Service struct {
	producer queue.Producer
	secrets  secrets.Provider
	cfg      config.SecretsConfig
	logger   logger.Logger
}

func NewService(producer queue.Producer, secretProvider secrets.Provider, cfg config.SecretsConfig, log logger.Logger) *Service {
	return &Service{
		producer: producer,
		secrets:  secretProvider,
		cfg:      cfg,
		logger:   log,
	}
}

// Handle processes one webhook request. Once the signature is verified the
// response is always 200, whatever happens downstream, so the platform never
// retry-storms on payloads it cannot fix.
func (s *Service) Handle(ctx context.Context, req Request) Response {
	start := time.Now()

	resp, outcome := s.handle(ctx, req)

	metrics.ReceiverEventsTotal.WithLabelValues(outcome).Inc()
	metrics.ObserveReceiverRequest(time.Since(start), outcome)

	return resp
}

func (s *Service) handle(ctx context.Context, req Request) (Response, string) {
	if req.Headers.Get(constants.HeaderRetryNum) != "" {
		s.logger.DebugwCtx(ctx, "Suppressing platform retry",
			"retry_num", req.Headers.Get(constants.HeaderRetryNum),
		)
		return ack(), OutcomeRetrySuppressed
	}

	if err := s.verifySignature(ctx, req); err != nil {
		s.logger.WarnwCtx(ctx, "Signature verification failed",
			"error", err,
		)
		return Response{
			Status:      http.StatusUnauthorized,
			ContentType: "text/plain",
			Body:        "Invalid signature",
		}, OutcomeInvalidSignature
	}

	body := req.Body
	if req.IsBase64Encoded {
		decoded, err := base64.StdEncoding.DecodeString(body)
		if err != nil {
			s.logger.ErrorwCtx(ctx, "Failed to decode base64 body",
				"error", err,
			)
			return ack(), OutcomeMalformedBody
		}
		body = string(decoded)
	}

	var event models.InboundEvent
	if err := json.Unmarshal([]byte(body), &event); err != nil {
		s.logger.ErrorwCtx(ctx, "Failed to parse event body",
			"error", err,
		)
		return ack(), OutcomeMalformedBody
	}

	switch event.Type {
	case constants.EventTypeURLVerification:
		return Response{
			Status:      http.StatusOK,
			ContentType: "text/plain",
			Body:        event.Challenge,
		}, OutcomeChallenge

	case constants.EventTypeEventCallback:
		return s.handleEventCallback(ctx, event)

	default:
		s.logger.DebugwCtx(ctx, "Ignoring event",
			"type", event.Type,
		)
		return ack(), OutcomeIgnored
	}
}

func (s *Service) handleEventCallback(ctx context.Context, event models.InboundEvent) (Response, string) {
	ctx = logging.WithEventID(ctx, event.EventID)

	if event.Event.BotID != "" {
		s.logger.DebugwCtx(ctx, "Skipping bot-originated event",
			"bot_id", event.Event.BotID,
		)
		return ack(), OutcomeBotSkipped
	}

	item := models.WorkItem{
		Event:     event.Event,
		EventID:   event.EventID,
		EventTime: event.EventTime.String(),
	}

	// An enqueue failure silently drops the event: there is no compensating
	// path, and a non-200 here would only trigger a platform retry storm.
	if err := s.producer.Publish(ctx, item); err != nil {
		metrics.ReceiverEnqueueTotal.WithLabelValues("error").Inc()
		s.logger.ErrorwCtx(ctx, "Failed to enqueue event, dropping it",
			"error", err,
		)
		return ack(), OutcomeEnqueueFailed
	}

	metrics.ReceiverEnqueueTotal.WithLabelValues("ok").Inc()
	s.logger.InfowCtx(ctx, "Event enqueued",
		"channel", event.Event.Channel,
	)
	return ack(), OutcomeEnqueued
}

// verifySignature checks the platform HMAC over the raw body before anything
// is parsed. The signing secret comes through the time-boxed cache.
func (s *Service) verifySignature(ctx context.Context, req Request) error {
	secret, err := s.secrets.GetSecretString(ctx, s.cfg.SigningSecretID)
	if err != nil {
		return err
	}

	verifier, err := slack.NewSecretsVerifier(req.Headers, secret)
	if err != nil {
		return err
	}

	if _, err := verifier.Write([]byte(req.Body)); err != nil {
		return err
	}

	return verifier.Ensure()
}

func ack() Response {
	return Response{
		Status:      http.StatusOK,
		ContentType: "text/plain",
		Body:        "ok",
	}
}
