package mapping

import (
	"errors"
	"fmt"
	"regexp"
	"sync"

	"github.com/kevin07696/error-mapping/internal/domain"
)

// RuleSet is an ordered, immutable list of rules. The first matching rule wins.
// Patterns are compiled on first use, so a RuleSet is cheap to build and an
// invalid pattern only surfaces once a request reaches that rule.
// A RuleSet is safe for concurrent use.
type RuleSet struct {
	entries []*entry
}

type entry struct {
	rule    domain.Rule
	mapping Mapping

	once        sync.Once
	code        *regexp.Regexp
	description *regexp.Regexp
	err         error
}

// NewRuleSet builds a RuleSet keeping the order of rules. The rules are
// copied, so later changes to them do not affect matching.
func NewRuleSet(rules []domain.Rule) *RuleSet {
	entries := make([]*entry, len(rules))
	for i, r := range rules {
		entries[i] = &entry{rule: r.Clone(), mapping: ParseMapping(r.Mapping)}
	}
	return &RuleSet{entries: entries}
}

// Len returns the number of rules
func (s *RuleSet) Len() int {
	return len(s.entries)
}

// Rules returns a copy of the rules in precedence order
func (s *RuleSet) Rules() []domain.Rule {
	rules := make([]domain.Rule, len(s.entries))
	for i, e := range s.entries {
		rules[i] = e.rule.Clone()
	}
	return rules
}

// Validate checks every rule eagerly: required fields are set and all
// patterns compile. Loaders call it at startup; the matcher never does.
func (s *RuleSet) Validate() error {
	var errs []error
	for i, e := range s.entries {
		if e.rule.CodeRegex == "" {
			errs = append(errs, fmt.Errorf("rule %d: codeRegex is required", i))
		}
		if e.rule.Mapping == "" {
			errs = append(errs, fmt.Errorf("rule %d: mapping is required", i))
		}
		if err := e.compile(); err != nil {
			errs = append(errs, fmt.Errorf("rule %d: %w", i, err))
		}
	}
	if len(errs) > 0 {
		return domain.WrapError(domain.ErrorCodeConfigMapping, "invalid error mapping rules", errors.Join(errs...)).
			WithDetail("invalid_rules", len(errs))
	}
	return nil
}

// find returns the first rule matching the request, or nil
func (s *RuleSet) find(code string, description, state *string) (*entry, error) {
	for i, e := range s.entries {
		ok, err := e.matches(code, description, state)
		if err != nil {
			return nil, domain.WrapError(domain.ErrorCodeConfigMapping,
				fmt.Sprintf("rule %d has an invalid pattern", i), err).
				WithDetail("rule", e.rule.String())
		}
		if ok {
			return e, nil
		}
	}
	return nil, nil
}

func (e *entry) compile() error {
	e.once.Do(func() {
		e.code, e.err = compileFull(e.rule.CodeRegex)
		if e.err != nil {
			e.err = fmt.Errorf("codeRegex: %w", e.err)
			return
		}
		if e.rule.DescriptionRegex != nil {
			e.description, e.err = compileFull(*e.rule.DescriptionRegex)
			if e.err != nil {
				e.err = fmt.Errorf("descriptionRegex: %w", e.err)
			}
		}
	})
	return e.err
}

func (e *entry) matches(code string, description, state *string) (bool, error) {
	if err := e.compile(); err != nil {
		return false, err
	}
	if !e.code.MatchString(code) {
		return false, nil
	}
	if e.description != nil {
		desc := ""
		if description != nil {
			desc = *description
		}
		if !e.description.MatchString(desc) {
			return false, nil
		}
	}
	// A missing state on either side matches anything
	if e.rule.State != nil && state != nil && *e.rule.State != *state {
		return false, nil
	}
	return true, nil
}

// compileFull compiles pattern so that it has to match the whole input
func compileFull(pattern string) (*regexp.Regexp, error) {
	// Compile on its own first so "a)|(b" can't escape the anchors
	if _, err := regexp.Compile(pattern); err != nil {
		return nil, err
	}
	return regexp.Compile(`^(?:` + pattern + `)$`)
}
