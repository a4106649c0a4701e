package constants

import "time"

// Slack webhook headers.
const (
	HeaderRetryNum         = "X-Slack-Retry-Num"
	HeaderSignature        = "X-Slack-Signature"
	HeaderRequestTimestamp = "X-Slack-Request-Timestamp"
)

// Inbound event types.
const (
	EventTypeURLVerification = "url_verification"
	EventTypeEventCallback   = "event_callback"
)

// MessageGroupID is the fixed ordering group shared by every work item, so the
// queue keeps FIFO order across the whole pipeline.
const MessageGroupID = "slack-events"

// MentionPrefix marks Slack mention tokens in message text, e.g. "<@U0ACXLUV9N2>".
const MentionPrefix = "<@"

const (
	DefaultSecretRefreshInterval = 300 * time.Second
	DefaultReceiveWaitSeconds    = 20
	DefaultMaxBatchSize          = 10
)

// DefaultModelARN is used when no generation model is configured.
const DefaultModelARN = "arn:aws:bedrock:ap-northeast-1::foundation-model/anthropic.claude-3-5-sonnet-20241022-v2:0"

const (
	ShutdownTimeout = 5 * time.Second
)
