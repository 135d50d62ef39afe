package mapping

// Reserved mapping keywords. Any other mapping value is a failure key
// handed to the FailureMapper.
const (
	KeywordResultUnknown       = "ResultUnknown"
	KeywordResourceUnavailable = "ResourceUnavailable"
	KeywordResultUnexpected    = "ResultUnexpected"
)

// MappingKind is the outcome a rule's mapping selects
type MappingKind int

const (
	// MappingFailure maps to a structured failure through the FailureMapper
	MappingFailure MappingKind = iota
	// MappingUndefined raises an undefined result
	MappingUndefined
	// MappingUnavailable raises an unavailable result
	MappingUnavailable
	// MappingUnexpected raises the unexpected fallback
	MappingUnexpected
)

func (k MappingKind) String() string {
	switch k {
	case MappingUndefined:
		return "undefined"
	case MappingUnavailable:
		return "unavailable"
	case MappingUnexpected:
		return "unexpected"
	default:
		return "failure"
	}
}

// Mapping is the parsed form of a rule's mapping field.
// Key is only meaningful for MappingFailure.
type Mapping struct {
	Kind MappingKind
	Key  string
}

// ParseMapping turns a raw mapping value into a Mapping
func ParseMapping(raw string) Mapping {
	switch raw {
	case KeywordResultUnknown:
		return Mapping{Kind: MappingUndefined}
	case KeywordResourceUnavailable:
		return Mapping{Kind: MappingUnavailable}
	case KeywordResultUnexpected:
		return Mapping{Kind: MappingUnexpected}
	default:
		return Mapping{Kind: MappingFailure, Key: raw}
	}
}
