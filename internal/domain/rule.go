package domain

import "fmt"

// Rule is a single entry of the provider error mapping.
// DescriptionRegex and State are optional; nil matches anything.
type Rule struct {
	CodeRegex        string  `json:"codeRegex" yaml:"codeRegex"`
	DescriptionRegex *string `json:"descriptionRegex,omitempty" yaml:"descriptionRegex,omitempty"`
	State            *string `json:"state,omitempty" yaml:"state,omitempty"`
	Mapping          string  `json:"mapping" yaml:"mapping"`
}

// String renders the rule for diagnostics
func (r Rule) String() string {
	return fmt.Sprintf("Rule(codeRegex=%s, descriptionRegex=%s, state=%s, mapping=%s)",
		r.CodeRegex, NullableString(r.DescriptionRegex), NullableString(r.State), r.Mapping)
}

// NullableString renders an optional string, printing "null" when absent
func NullableString(s *string) string {
	if s == nil {
		return "null"
	}
	return *s
}

// StringPtr returns a pointer to s
func StringPtr(s string) *string {
	return &s
}

// Clone returns a copy of r that shares no memory with it
func (r Rule) Clone() Rule {
	if r.DescriptionRegex != nil {
		r.DescriptionRegex = StringPtr(*r.DescriptionRegex)
	}
	if r.State != nil {
		r.State = StringPtr(*r.State)
	}
	return r
}
