package rulesource

import (
	"context"

	"github.com/kevin07696/error-mapping/internal/domain"
	"github.com/kevin07696/error-mapping/internal/domain/ports"
	"github.com/kevin07696/error-mapping/pkg/resilience"
)

// RetryingSource retries io failures of a remote source. Parse and mapping
// failures are returned at once since loading again won't fix them.
type RetryingSource struct {
	ports.RuleSource
	attempts int
	backoff  resilience.BackoffStrategy
	logger   ports.Logger
}

// WithRetry wraps src so Load makes up to attempts tries
func WithRetry(src ports.RuleSource, attempts int, backoff resilience.BackoffStrategy, logger ports.Logger) *RetryingSource {
	if backoff == nil {
		backoff = resilience.DefaultLoadBackoff()
	}
	return &RetryingSource{RuleSource: src, attempts: attempts, backoff: backoff, logger: logger}
}

// Load implements ports.RuleSource
func (s *RetryingSource) Load(ctx context.Context) ([]domain.Rule, error) {
	var rules []domain.Rule
	attempt := 0

	err := resilience.Retry(ctx, s.attempts, s.backoff, isTransient, func(ctx context.Context) error {
		attempt++
		loaded, err := s.RuleSource.Load(ctx)
		if err != nil {
			if isTransient(err) && attempt < s.attempts {
				s.logger.Warn("Rule load failed, retrying",
					ports.String("source", s.Name()),
					ports.Int("attempt", attempt),
					ports.Err(err),
				)
			}
			return err
		}
		rules = loaded
		return nil
	})
	if err != nil {
		return nil, err
	}
	return rules, nil
}

func isTransient(err error) bool {
	return domain.IsDomainError(err, domain.ErrorCodeConfigIO)
}
