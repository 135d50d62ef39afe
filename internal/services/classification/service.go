package classification

import (
	"context"
	"errors"
	"sync/atomic"
	"time"

	"github.com/kevin07696/error-mapping/internal/domain"
	"github.com/kevin07696/error-mapping/internal/domain/ports"
	"github.com/kevin07696/error-mapping/internal/mapping"
)

// Outcome labels a classification for logs and metrics
type Outcome string

const (
	OutcomeMapped       Outcome = "mapped"
	OutcomeUndefined    Outcome = "undefined"
	OutcomeUnavailable  Outcome = "unavailable"
	OutcomeUnexpected   Outcome = "unexpected"
	OutcomeInvalidInput Outcome = "invalid_input"
	OutcomeError        Outcome = "error"
)

// OutcomeOf returns the outcome of a Classify call from its error
func OutcomeOf(err error) Outcome {
	switch {
	case err == nil:
		return OutcomeMapped
	case errors.Is(err, domain.ErrResultUndefined):
		return OutcomeUndefined
	case errors.Is(err, domain.ErrResultUnavailable):
		return OutcomeUnavailable
	case errors.Is(err, domain.ErrResultUnexpected):
		return OutcomeUnexpected
	case errors.Is(err, domain.ErrInvalidInput):
		return OutcomeInvalidInput
	default:
		return OutcomeError
	}
}

// MetricsRecorder receives one observation per classification
type MetricsRecorder interface {
	RecordClassification(outcome, failureCode string, duration time.Duration)
	SetRulesLoaded(n int)
	RecordRuleLoadFailure(kind string)
}

// Service classifies provider results and reports what it saw
type Service struct {
	current       atomic.Pointer[mapping.ErrorMapping]
	reasonPattern string
	opts          []mapping.Option
	metrics       MetricsRecorder
	logger        ports.Logger
}

// NewService creates a classification service over rules. metrics may be nil.
func NewService(reasonPattern string, rules *mapping.RuleSet, metrics MetricsRecorder, logger ports.Logger, opts ...mapping.Option) *Service {
	s := &Service{
		reasonPattern: reasonPattern,
		opts:          opts,
		metrics:       metrics,
		logger:        logger,
	}
	s.swap(rules)
	return s
}

func (s *Service) swap(rules *mapping.RuleSet) {
	em := mapping.New(s.reasonPattern, rules, s.opts...)
	s.current.Store(em)
	if s.metrics != nil {
		s.metrics.SetRulesLoaded(em.Rules().Len())
	}
}

// Rules returns the active rule set
func (s *Service) Rules() *mapping.RuleSet {
	return s.current.Load().Rules()
}

// Reload loads rules from src and swaps them in. On failure the active rules are kept.
func (s *Service) Reload(ctx context.Context, src ports.RuleSource) error {
	rules, err := src.Load(ctx)
	if err == nil {
		set := mapping.NewRuleSet(rules)
		if err = set.Validate(); err == nil {
			s.swap(set)
			s.logger.Info("Error mapping rules reloaded",
				ports.String("source", src.Name()),
				ports.Int("rules", set.Len()),
			)
			return nil
		}
	}

	kind := string(domain.GetErrorCode(err))
	if s.metrics != nil {
		s.metrics.RecordRuleLoadFailure(kind)
	}
	s.logger.Error("Failed to reload error mapping rules, keeping active rules",
		ports.String("source", src.Name()),
		ports.String("kind", kind),
		ports.Err(err),
	)
	return err
}

// Classify matches req against the active rules. The returned error is one of
// the signals documented on mapping.ErrorMapping.Classify, or ctx's error.
func (s *Service) Classify(ctx context.Context, req mapping.Request) (*domain.Failure, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	start := time.Now()
	failure, err := s.current.Load().Classify(req)
	elapsed := time.Since(start)

	outcome := OutcomeOf(err)
	var failureCode string
	if failure != nil {
		failureCode = failure.Code
	}
	if s.metrics != nil {
		s.metrics.RecordClassification(string(outcome), failureCode, elapsed)
	}
	s.log(outcome, req, failure, err)

	return failure, err
}

func (s *Service) log(outcome Outcome, req mapping.Request, failure *domain.Failure, err error) {
	fields := []ports.Field{
		ports.String("outcome", string(outcome)),
		ports.String("code", domain.NullableString(req.Code)),
	}

	switch outcome {
	case OutcomeMapped:
		s.logger.Debug("Provider result mapped", append(fields, ports.String("failure", failure.String()))...)
	case OutcomeInvalidInput:
		s.logger.Debug("Provider result rejected", append(fields, ports.Err(err))...)
	case OutcomeUndefined, OutcomeUnavailable:
		s.logger.Warn("Provider result needs retry", append(fields, ports.Err(err))...)
	case OutcomeUnexpected:
		var unexpected *domain.UnexpectedError
		if errors.As(err, &unexpected) {
			fields = append(fields, ports.String("reason", unexpected.Definition.Reason))
		}
		s.logger.Warn("Unexpected provider result", fields...)
	default:
		s.logger.Error("Failed to classify provider result", append(fields, ports.Err(err))...)
	}
}
