package chat

import (
	"context"
	"fmt"
	"sync"

	"github.com/slack-go/slack"

	"sherpa/internal/logger"
	"sherpa/internal/secrets"
)

// Poster sends a threaded reply to a chat channel.
type Poster interface {
	PostReply(ctx context.Context, channel, text, threadTS string) error
}

// messageSender is the slice of the Slack client the poster uses.
type messageSender interface {
	PostMessageContext(ctx context.Context, channelID string, options ...slack.MsgOption) (string, string, error)
	AuthTestContext(ctx context.Context) (*slack.AuthTestResponse, error)
}

// SlackPoster posts replies with a bot token resolved through the secret
// provider on first use. Initialization is guarded so concurrent batches share
// one client.
type SlackPoster struct {
	provider   secrets.Provider
	botTokenID string
	logger     logger.Logger

	mu     sync.Mutex
	client messageSender

	// newClient is swappable in tests.
	newClient func(token string) messageSender
}

func NewSlackPoster(provider secrets.Provider, botTokenID string, log logger.Logger) *SlackPoster {
	return &SlackPoster{
		provider:   provider,
		botTokenID: botTokenID,
		logger:     log,
		newClient: func(token string) messageSender {
			return slack.New(token)
		},
	}
}

func (p *SlackPoster) getClient(ctx context.Context) (messageSender, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.client != nil {
		return p.client, nil
	}

	token, err := p.provider.GetSecretString(ctx, p.botTokenID)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve bot token: %w", err)
	}

	p.client = p.newClient(token)
	return p.client, nil
}

func (p *SlackPoster) PostReply(ctx context.Context, channel, text, threadTS string) error {
	client, err := p.getClient(ctx)
	if err != nil {
		return err
	}

	opts := []slack.MsgOption{
		slack.MsgOptionText(text, false),
	}
	if threadTS != "" {
		opts = append(opts, slack.MsgOptionTS(threadTS))
	}

	if _, _, err := client.PostMessageContext(ctx, channel, opts...); err != nil {
		return fmt.Errorf("failed to post chat message: %w", err)
	}

	p.logger.InfowCtx(ctx, "Message sent",
		"channel", channel,
	)
	return nil
}

// AuthTest verifies the bot token against the chat platform, for health
// checks.
func (p *SlackPoster) AuthTest(ctx context.Context) error {
	client, err := p.getClient(ctx)
	if err != nil {
		return err
	}

	if _, err := client.AuthTestContext(ctx); err != nil {
		return fmt.Errorf("auth test failed: %w", err)
	}
	return nil
}
