package mapping

import (
	"fmt"

	"github.com/kevin07696/error-mapping/internal/domain"
)

// DefaultReasonPattern renders the failure reason from code and description
const DefaultReasonPattern = "'%s' - '%s'"

// Request is a raw provider error. Code is required, Description and State are optional.
type Request struct {
	Code        *string
	Description *string
	State       *string
}

// ErrorMapping classifies provider errors against an ordered RuleSet.
// It holds no mutable state and is safe for concurrent use.
type ErrorMapping struct {
	reasonPattern reasonFormat
	rules         *RuleSet
	failures      FailureMapper
}

// Option configures an ErrorMapping
type Option func(*ErrorMapping)

// WithFailureMapper replaces GeneralFailureMapper
func WithFailureMapper(m FailureMapper) Option {
	return func(em *ErrorMapping) {
		em.failures = m
	}
}

// New creates an ErrorMapping. An empty reasonPattern selects DefaultReasonPattern.
// The pattern takes the code and description in that order, either as plain
// %s verbs or positionally as %1$s and %2$s.
// Rule patterns are not validated here; see RuleSet.Validate.
func New(reasonPattern string, rules *RuleSet, opts ...Option) *ErrorMapping {
	if reasonPattern == "" {
		reasonPattern = DefaultReasonPattern
	}
	if rules == nil {
		rules = NewRuleSet(nil)
	}
	em := &ErrorMapping{
		reasonPattern: parseReasonPattern(reasonPattern),
		rules:         rules,
		failures:      GeneralFailureMapper,
	}
	for _, opt := range opts {
		opt(em)
	}
	return em
}

// Rules returns the rule set used for matching
func (m *ErrorMapping) Rules() *RuleSet {
	return m.rules
}

// MapFailure classifies a code with no description or state
func (m *ErrorMapping) MapFailure(code string) (*domain.Failure, error) {
	return m.Classify(Request{Code: &code})
}

// MapFailureWithDescription classifies a code and description with no state
func (m *ErrorMapping) MapFailureWithDescription(code, description string) (*domain.Failure, error) {
	return m.Classify(Request{Code: &code, Description: &description})
}

// MapFailureWithState classifies a code, description and state
func (m *ErrorMapping) MapFailureWithState(code, description, state string) (*domain.Failure, error) {
	return m.Classify(Request{Code: &code, Description: &description, State: &state})
}

// Classify returns the failure of the first matching rule.
//
// When no rule matches, or the rule maps to ResultUnexpected, it returns an
// *domain.UnexpectedError. ResultUnknown returns an *domain.UndefinedResultError
// and ResourceUnavailable an *domain.UnavailableResultError. A missing code
// returns a fresh error matching domain.ErrInvalidInput without looking at
// the rules.
func (m *ErrorMapping) Classify(req Request) (*domain.Failure, error) {
	if req.Code == nil {
		return nil, domain.NewDomainError(domain.ErrorCodeInvalidInput, "code must be set")
	}
	code := *req.Code

	e, err := m.rules.find(code, req.Description, req.State)
	if err != nil {
		return nil, err
	}
	if e == nil {
		return nil, newUnexpectedError(code, req.Description, req.State, nil)
	}

	switch e.mapping.Kind {
	case MappingUndefined:
		return nil, &domain.UndefinedResultError{ResultContext: resultContext(e, code, req.Description)}
	case MappingUnavailable:
		return nil, &domain.UnavailableResultError{ResultContext: resultContext(e, code, req.Description)}
	case MappingUnexpected:
		rule := e.rule.Clone()
		return nil, newUnexpectedError(code, req.Description, nil, &rule)
	}

	failure, err := m.failures.ToFailure(e.mapping.Key)
	if err != nil {
		return nil, fmt.Errorf("failed to map failure %q: %w", e.mapping.Key, err)
	}
	if failure == nil {
		return nil, domain.NewDomainError(domain.ErrorCodeMappingKeyInvalid, "failure mapper returned no failure").
			WithDetail("mapping", e.mapping.Key)
	}
	failure.SetReason(m.reason(code, req.Description))
	return failure, nil
}

func (m *ErrorMapping) reason(code string, description *string) string {
	args := []any{code, domain.NullableString(description)}
	return fmt.Sprintf(m.reasonPattern.pattern, args[:m.reasonPattern.args]...)
}

func resultContext(e *entry, code string, description *string) domain.ResultContext {
	return domain.ResultContext{Rule: e.rule.Clone(), Code: code, Description: description}
}

// newUnexpectedError builds the fallback signal. State shows up in the
// message only; the reason carries the ASCII safe code and description.
func newUnexpectedError(code string, description, state *string, rule *domain.Rule) *domain.UnexpectedError {
	return &domain.UnexpectedError{
		Message: fmt.Sprintf("Unexpected result, code = %s, description = %s, state = %s",
			code, domain.NullableString(description), domain.NullableString(state)),
		Definition: domain.ErrorDefinition{
			Source: domain.ErrorSourceInternal,
			Type:   domain.ErrorTypeUnexpected,
			Reason: fmt.Sprintf("code = %s, description = %s",
				domain.NullableString(MakeASCIISafe(&code)),
				domain.NullableString(MakeASCIISafe(description))),
		},
		Rule: rule,
	}
}
