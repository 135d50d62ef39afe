package domain

import "strings"

// Failure is the normalized classification of a provider error.
// Code is the top-level failure class, Sub narrows it down.
type Failure struct {
	Code   string      `json:"code"`
	Reason *string     `json:"reason,omitempty"`
	Sub    *SubFailure `json:"sub,omitempty"`
}

// SubFailure is a nested refinement of a Failure code
type SubFailure struct {
	Code string      `json:"code"`
	Sub  *SubFailure `json:"sub,omitempty"`
}

// SetReason overwrites the human readable reason
func (f *Failure) SetReason(reason string) {
	f.Reason = &reason
}

// Path returns the codes from the top level down, e.g.
// ["authorization_failed", "insufficient_funds"]
func (f *Failure) Path() []string {
	path := []string{f.Code}
	for sub := f.Sub; sub != nil; sub = sub.Sub {
		path = append(path, sub.Code)
	}
	return path
}

// String renders the failure as
// Failure(code:authorization_failed, reason:..., sub:SubFailure(code:insufficient_funds))
func (f *Failure) String() string {
	var b strings.Builder
	b.WriteString("Failure(code:")
	b.WriteString(f.Code)
	if f.Reason != nil {
		b.WriteString(", reason:")
		b.WriteString(*f.Reason)
	}
	if f.Sub != nil {
		b.WriteString(", sub:")
		b.WriteString(f.Sub.String())
	}
	b.WriteString(")")
	return b.String()
}

func (s *SubFailure) String() string {
	var b strings.Builder
	b.WriteString("SubFailure(code:")
	b.WriteString(s.Code)
	if s.Sub != nil {
		b.WriteString(", sub:")
		b.WriteString(s.Sub.String())
	}
	b.WriteString(")")
	return b.String()
}
