package publisher

import (
	"context"
	"fmt"

	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/mamadbah2/pvoil/internal/domain/models"
)

// Publisher propagates a rewritten ledger to one destination.
type Publisher interface {
	Name() string
	Publish(ctx context.Context, update models.LedgerUpdate) error
}

// Chain runs every configured publisher. Failures are logged as warnings and
// never abort the chain.
type Chain struct {
	publishers []Publisher
	logger     *zap.Logger
}

// NewChain builds a publisher chain. Nil publishers are ignored.
func NewChain(logger *zap.Logger, publishers ...Publisher) *Chain {
	if logger == nil {
		logger = zap.NewNop()
	}

	enabled := make([]Publisher, 0, len(publishers))
	for _, p := range publishers {
		if p != nil {
			enabled = append(enabled, p)
		}
	}
	return &Chain{publishers: enabled, logger: logger}
}

// Len reports how many publishers are enabled.
func (c *Chain) Len() int {
	return len(c.publishers)
}

// Publish runs all publishers and reports whether every one of them succeeded.
// An empty chain reports false since nothing was published.
func (c *Chain) Publish(ctx context.Context, update models.LedgerUpdate) bool {
	if len(c.publishers) == 0 {
		c.logger.Info("no publishers configured, skipping publish")
		return false
	}

	var errs error
	for _, p := range c.publishers {
		if err := p.Publish(ctx, update); err != nil {
			c.logger.Warn("publish failed", zap.String("publisher", p.Name()), zap.Error(err))
			errs = multierr.Append(errs, fmt.Errorf("%s: %w", p.Name(), err))
			continue
		}
		c.logger.Info("published ledger", zap.String("publisher", p.Name()))
	}

	if errs != nil {
		c.logger.Warn("ledger published with errors",
			zap.Int("failed", len(multierr.Errors(errs))),
			zap.Int("publishers", len(c.publishers)))
		return false
	}
	return true
}
