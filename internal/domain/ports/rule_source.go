package ports

import (
	"context"

	"github.com/kevin07696/error-mapping/internal/domain"
)

// RuleSource loads the ordered error mapping rules at startup.
// Implementations return rules in precedence order and report failures
// with the CONFIG_* domain error codes.
type RuleSource interface {
	// Name identifies the source in logs, e.g. "file:/etc/errmap/rules.json"
	Name() string
	Load(ctx context.Context) ([]domain.Rule, error)
}
