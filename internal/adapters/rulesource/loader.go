package rulesource

import (
	"context"
	"time"

	"github.com/kevin07696/error-mapping/internal/domain"
	"github.com/kevin07696/error-mapping/internal/domain/ports"
	"github.com/kevin07696/error-mapping/internal/mapping"
)

// LoadRuleSet loads rules from src and validates them. Any error is fatal
// for startup; its domain code tells parse, mapping and io failures apart.
func LoadRuleSet(ctx context.Context, src ports.RuleSource, logger ports.Logger) (*mapping.RuleSet, error) {
	log := logger.With(ports.String("source", src.Name()))
	start := time.Now()

	rules, err := src.Load(ctx)
	if err == nil {
		set := mapping.NewRuleSet(rules)
		if err = set.Validate(); err == nil {
			log.Info("Error mapping rules loaded",
				ports.Int("rules", set.Len()),
				ports.Duration("elapsed", time.Since(start)),
			)
			return set, nil
		}
	}

	log.Error("Failed to load error mapping rules",
		ports.String("kind", string(domain.GetErrorCode(err))),
		ports.Err(err),
	)
	return nil, err
}
