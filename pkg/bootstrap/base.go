package bootstrap

import (
	"context"
	"fmt"
	"io"

	"sherpa/internal/config"
	"sherpa/internal/logger"
)

// Base carries the pieces every service shares and aggregates shutdown of
// whatever resources a service registers.
type Base struct {
	Config  *config.Config
	Logger  logger.Logger
	closers []namedCloser
}

type namedCloser struct {
	name   string
	closer io.Closer
}

func NewBase(cfg *config.Config, log logger.Logger) *Base {
	return &Base{
		Config: cfg,
		Logger: log,
	}
}

// RegisterCloser adds a resource to close on shutdown. Resources are closed in
// reverse registration order.
func (b *Base) RegisterCloser(name string, closer io.Closer) {
	b.closers = append(b.closers, namedCloser{name: name, closer: closer})
}

func (b *Base) Shutdown(ctx context.Context, additionalShutdown func(ctx context.Context) []error) error {
	b.Logger.Info("Shutting down application...")

	var errs []error

	for i := len(b.closers) - 1; i >= 0; i-- {
		c := b.closers[i]
		if err := c.closer.Close(); err != nil {
			errs = append(errs, fmt.Errorf("%s close error: %w", c.name, err))
		}
	}

	if additionalShutdown != nil {
		errs = append(errs, additionalShutdown(ctx)...)
	}

	if len(errs) > 0 {
		return fmt.Errorf("shutdown errors: %v", errs)
	}

	b.Logger.Info("Application exited successfully")
	return nil
}
