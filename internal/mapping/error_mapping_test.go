package mapping

import (
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kevin07696/error-mapping/internal/domain"
)

func rule(codeRegex, mapping string) domain.Rule {
	return domain.Rule{CodeRegex: codeRegex, Mapping: mapping}
}

func ruleWithDescription(codeRegex, descriptionRegex, mapping string) domain.Rule {
	return domain.Rule{CodeRegex: codeRegex, DescriptionRegex: domain.StringPtr(descriptionRegex), Mapping: mapping}
}

func ruleWithState(codeRegex, state, mapping string) domain.Rule {
	return domain.Rule{CodeRegex: codeRegex, State: domain.StringPtr(state), Mapping: mapping}
}

func requireUnexpected(t *testing.T, err error) *domain.UnexpectedError {
	t.Helper()
	var unexpected *domain.UnexpectedError
	require.True(t, errors.As(err, &unexpected), "expected UnexpectedError, got %v", err)
	return unexpected
}

func TestErrorMapping_FirstMatchWins(t *testing.T) {
	r1 := ruleWithDescription("00001", "Invalid Merchant ID", "authorization_failed:unknown")
	r2 := ruleWithDescription("00002", "Invalid Merchant Name", "authorization_failed:provider_malfunction")

	em := New(DefaultReasonPattern, NewRuleSet([]domain.Rule{r1, r2}))

	_, err := em.MapFailure("unknown")
	requireUnexpected(t, err)

	// r1 needs a description, an absent one is matched as ""
	_, err = em.MapFailure("00001")
	requireUnexpected(t, err)

	r3 := rule("00001", "authorization_failed:insufficient_funds")
	full := New(DefaultReasonPattern, NewRuleSet([]domain.Rule{r1, r2, r3}))

	failure, err := full.MapFailure("00001")
	require.NoError(t, err)
	assert.Equal(t,
		"Failure(code:authorization_failed, reason:'00001' - 'null', sub:SubFailure(code:insufficient_funds))",
		failure.String())

	failure, err = full.MapFailureWithDescription("00001", "Invalid Merchant ID")
	require.NoError(t, err)
	assert.Equal(t, []string{"authorization_failed", "unknown"}, failure.Path())
	assert.Equal(t, "'00001' - 'Invalid Merchant ID'", *failure.Reason)
}

func TestErrorMapping_NoMatchReason(t *testing.T) {
	em := New(DefaultReasonPattern, NewRuleSet(nil))

	tests := []struct {
		name        string
		req         Request
		wantReason  string
		wantMessage string
	}{
		{
			name:        "ascii code",
			req:         Request{Code: domain.StringPtr("unknown")},
			wantReason:  "code = unknown, description = null",
			wantMessage: "Unexpected result, code = unknown, description = null, state = null",
		},
		{
			name:        "non ascii code",
			req:         Request{Code: domain.StringPtr("ы")},
			wantReason:  "code = base64:0Ys, description = null",
			wantMessage: "Unexpected result, code = ы, description = null, state = null",
		},
		{
			name: "non ascii description with state",
			req: Request{
				Code:        domain.StringPtr("51"),
				Description: domain.StringPtr("Ñ"),
				State:       domain.StringPtr("capture"),
			},
			wantReason:  "code = 51, description = base64:w5E",
			wantMessage: "Unexpected result, code = 51, description = Ñ, state = capture",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := em.Classify(tt.req)
			unexpected := requireUnexpected(t, err)
			assert.Equal(t, tt.wantReason, unexpected.Definition.Reason)
			assert.Equal(t, tt.wantMessage, unexpected.Error())
			assert.Equal(t, domain.ErrorSourceInternal, unexpected.Definition.Source)
			assert.Equal(t, domain.ErrorTypeUnexpected, unexpected.Definition.Type)
			assert.Nil(t, unexpected.Rule)
		})
	}
}

func TestErrorMapping_NullDescription(t *testing.T) {
	r := ruleWithDescription("01", "desc", "authorization_failed:unknown")
	em := New(DefaultReasonPattern, NewRuleSet([]domain.Rule{r}))

	_, err := em.MapFailure("01")
	requireUnexpected(t, err)

	r.DescriptionRegex = nil
	em = New(DefaultReasonPattern, NewRuleSet([]domain.Rule{r}))
	failure, err := em.MapFailure("01")
	require.NoError(t, err)
	assert.NotNil(t, failure)
}

func TestErrorMapping_DescriptionRegexMatchesEmpty(t *testing.T) {
	em := New(DefaultReasonPattern, NewRuleSet([]domain.Rule{
		ruleWithDescription("01", ".*", "authorization_failed:unknown"),
	}))

	failure, err := em.MapFailure("01")
	require.NoError(t, err)
	assert.Equal(t, "authorization_failed", failure.Code)
}

func TestErrorMapping_ReservedKeywords(t *testing.T) {
	rules := []domain.Rule{
		rule("91", KeywordResultUnknown),
		rule("96", KeywordResourceUnavailable),
		rule("99", KeywordResultUnexpected),
		rule("9.", "authorization_failed:unknown"),
	}
	em := New(DefaultReasonPattern, NewRuleSet(rules))

	t.Run("undefined", func(t *testing.T) {
		_, err := em.MapFailureWithDescription("91", "Issuer timeout")
		var undefined *domain.UndefinedResultError
		require.True(t, errors.As(err, &undefined))
		assert.Equal(t, rules[0], undefined.Rule)
		assert.Equal(t, "91", undefined.Code)
		assert.Equal(t, "Issuer timeout", *undefined.Description)
		assert.True(t, errors.Is(err, domain.ErrResultUndefined))
	})

	t.Run("unavailable", func(t *testing.T) {
		_, err := em.MapFailure("96")
		var unavailable *domain.UnavailableResultError
		require.True(t, errors.As(err, &unavailable))
		assert.Equal(t, rules[1], unavailable.Rule)
		assert.Nil(t, unavailable.Description)
	})

	t.Run("unexpected attributed to rule", func(t *testing.T) {
		_, err := em.MapFailureWithState("99", "Ñ", "auth")
		unexpected := requireUnexpected(t, err)
		require.NotNil(t, unexpected.Rule)
		assert.Equal(t, rules[2], *unexpected.Rule)
		assert.Equal(t, "code = 99, description = base64:w5E", unexpected.Definition.Reason)
		assert.Equal(t, "Unexpected result, code = 99, description = Ñ, state = null", unexpected.Error())
	})

	t.Run("later rule still maps", func(t *testing.T) {
		failure, err := em.MapFailure("95")
		require.NoError(t, err)
		assert.Equal(t, "authorization_failed", failure.Code)
	})
}

func TestErrorMapping_UndefinedShadowsLaterRules(t *testing.T) {
	em := New(DefaultReasonPattern, NewRuleSet([]domain.Rule{
		{
			CodeRegex:        "05",
			DescriptionRegex: domain.StringPtr("Do not honor"),
			State:            domain.StringPtr("auth"),
			Mapping:          KeywordResultUnknown,
		},
		rule("05", "authorization_failed:rejected_by_issuer"),
	}))

	_, err := em.MapFailureWithState("05", "Do not honor", "auth")
	assert.True(t, errors.Is(err, domain.ErrResultUndefined))

	failure, err := em.MapFailureWithState("05", "Do not honor", "capture")
	require.NoError(t, err)
	assert.Equal(t, "rejected_by_issuer", failure.Sub.Code)
}

func TestErrorMapping_StateIsWildcardWhenAbsent(t *testing.T) {
	em := New(DefaultReasonPattern, NewRuleSet([]domain.Rule{
		ruleWithState("51", "auth", "authorization_failed:insufficient_funds"),
	}))

	tests := []struct {
		name    string
		state   *string
		matched bool
	}{
		{name: "same state", state: domain.StringPtr("auth"), matched: true},
		{name: "absent state", state: nil, matched: true},
		{name: "other state", state: domain.StringPtr("capture"), matched: false},
		{name: "empty state", state: domain.StringPtr(""), matched: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := em.Classify(Request{Code: domain.StringPtr("51"), State: tt.state})
			if tt.matched {
				assert.NoError(t, err)
			} else {
				requireUnexpected(t, err)
			}
		})
	}

	// A rule without state accepts any request state
	stateless := New(DefaultReasonPattern, NewRuleSet([]domain.Rule{rule("51", "authorization_failed:insufficient_funds")}))
	_, err := stateless.MapFailureWithState("51", "", "refund")
	assert.NoError(t, err)
}

func TestErrorMapping_FullMatch(t *testing.T) {
	em := New(DefaultReasonPattern, NewRuleSet([]domain.Rule{
		rule("0", "authorization_failed:unknown"),
		ruleWithDescription("1\\d", "Timeout", "authorization_failed:timeout"),
		rule("5[0-9]|6[0-9]", "authorization_failed:rejected"),
	}))

	// "0" must match the whole code
	_, err := em.MapFailure("00")
	requireUnexpected(t, err)

	_, err = em.MapFailureWithDescription("12", "Timeout while waiting")
	requireUnexpected(t, err)

	failure, err := em.MapFailureWithDescription("12", "Timeout")
	require.NoError(t, err)
	assert.Equal(t, "timeout", failure.Sub.Code)

	// Alternation stays inside the anchors
	_, err = em.MapFailure("x59")
	requireUnexpected(t, err)
	_, err = em.MapFailure("61")
	assert.NoError(t, err)
}

func TestErrorMapping_InvalidInput(t *testing.T) {
	// Invalid pattern would blow up if the scan ran
	em := New(DefaultReasonPattern, NewRuleSet([]domain.Rule{rule("(", "a:b")}))

	_, err := em.Classify(Request{Description: domain.StringPtr("desc")})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	assert.Equal(t, domain.ErrorCodeInvalidInput, domain.GetErrorCode(err))

	var domainErr *domain.DomainError
	require.True(t, errors.As(err, &domainErr))
	domainErr.WithDetail("request_id", "r-1")
	assert.NotContains(t, domain.ErrInvalidInput.Details, "request_id", "sentinel must not be shared")

	_, again := em.Classify(Request{})
	assert.NotSame(t, err, again)
}

func TestErrorMapping_InvalidPatternIsLazy(t *testing.T) {
	em := New(DefaultReasonPattern, NewRuleSet([]domain.Rule{
		rule("00", "authorization_failed:unknown"),
		rule("(", "authorization_failed:unknown"),
	}))

	_, err := em.MapFailure("00")
	require.NoError(t, err, "broken rule behind the match is never compiled")

	_, err = em.MapFailure("01")
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrConfigMapping))
	assert.Contains(t, err.Error(), "rule 1 has an invalid pattern")
}

func TestErrorMapping_CustomReasonPattern(t *testing.T) {
	em := New("%s: %s", NewRuleSet([]domain.Rule{rule(".*", "authorization_failed:unknown")}))

	failure, err := em.MapFailureWithDescription("05", "Do not honor")
	require.NoError(t, err)
	assert.Equal(t, "05: Do not honor", *failure.Reason)

	defaulted := New("", em.Rules())
	failure, err = defaulted.MapFailure("05")
	require.NoError(t, err)
	assert.Equal(t, "'05' - 'null'", *failure.Reason)
}

func TestErrorMapping_RulesAreCopied(t *testing.T) {
	state := "auth"
	rules := []domain.Rule{{CodeRegex: "96", State: &state, Mapping: "authorization_failed:unknown"}}
	em := New(DefaultReasonPattern, NewRuleSet(rules))

	state = "capture"
	_, err := em.MapFailureWithState("96", "", "capture")
	requireUnexpected(t, err)

	got := em.Rules().Rules()
	*got[0].State = "capture"
	_, err = em.MapFailureWithState("96", "", "capture")
	requireUnexpected(t, err)

	_, err = em.MapFailureWithState("96", "", "auth")
	require.NoError(t, err)
}

func TestErrorMapping_SignalRuleIsCopied(t *testing.T) {
	em := New(DefaultReasonPattern, NewRuleSet([]domain.Rule{
		ruleWithState("91", "auth", "ResultUnknown"),
		ruleWithState("92", "auth", "ResultUnexpected"),
	}))

	_, err := em.MapFailureWithState("91", "", "auth")
	var undefined *domain.UndefinedResultError
	require.True(t, errors.As(err, &undefined))
	*undefined.Rule.State = "capture"

	_, err = em.MapFailureWithState("92", "", "auth")
	unexpected := requireUnexpected(t, err)
	require.NotNil(t, unexpected.Rule)
	*unexpected.Rule.State = "capture"

	_, err = em.MapFailureWithState("91", "", "auth")
	require.True(t, errors.As(err, &undefined))
	assert.Equal(t, "auth", *undefined.Rule.State)
	_, err = em.MapFailureWithState("92", "", "auth")
	assert.Equal(t, "auth", *requireUnexpected(t, err).Rule.State)
}

func TestErrorMapping_FailureMapper(t *testing.T) {
	var gotKey string
	mapper := FailureMapperFunc(func(key string) (*domain.Failure, error) {
		gotKey = key
		return &domain.Failure{Code: "custom"}, nil
	})
	em := New(DefaultReasonPattern, NewRuleSet([]domain.Rule{rule("05", "declined")}), WithFailureMapper(mapper))

	failure, err := em.MapFailure("05")
	require.NoError(t, err)
	assert.Equal(t, "declined", gotKey)
	assert.Equal(t, "custom", failure.Code)
	assert.Equal(t, "'05' - 'null'", *failure.Reason)

	broken := New(DefaultReasonPattern, NewRuleSet([]domain.Rule{rule("05", "a::b")}))
	_, err = broken.MapFailure("05")
	assert.True(t, errors.Is(err, domain.ErrMappingKeyInvalid))

	empty := New(DefaultReasonPattern, NewRuleSet([]domain.Rule{rule("05", "x")}),
		WithFailureMapper(FailureMapperFunc(func(string) (*domain.Failure, error) { return nil, nil })))
	_, err = empty.MapFailure("05")
	assert.True(t, errors.Is(err, domain.ErrMappingKeyInvalid))
}

func TestErrorMapping_ConcurrentClassify(t *testing.T) {
	em := New(DefaultReasonPattern, NewRuleSet([]domain.Rule{
		rule("9[0-9]", KeywordResourceUnavailable),
		rule("5[0-9]", "authorization_failed:insufficient_funds"),
	}))

	var wg sync.WaitGroup
	for i := 0; i < 32; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			if i%2 == 0 {
				f, err := em.MapFailure("51")
				assert.NoError(t, err)
				assert.Equal(t, "'51' - 'null'", *f.Reason)
				return
			}
			_, err := em.MapFailure("96")
			assert.True(t, errors.Is(err, domain.ErrResultUnavailable))
		}(i)
	}
	wg.Wait()
}
