package mapping

import (
	"strings"

	"github.com/kevin07696/error-mapping/internal/domain"
)

// FailureMapper turns a mapping key into a structured failure
type FailureMapper interface {
	ToFailure(key string) (*domain.Failure, error)
}

// FailureMapperFunc adapts a function to FailureMapper
type FailureMapperFunc func(key string) (*domain.Failure, error)

// ToFailure calls f(key)
func (f FailureMapperFunc) ToFailure(key string) (*domain.Failure, error) {
	return f(key)
}

// FailureSeparator separates the levels of a failure key
const FailureSeparator = ":"

// GeneralFailureMapper maps "a:b:c" to Failure{a, sub: {b, sub: {c}}}
var GeneralFailureMapper FailureMapper = FailureMapperFunc(toGeneralFailure)

func toGeneralFailure(key string) (*domain.Failure, error) {
	codes := strings.Split(key, FailureSeparator)
	for _, c := range codes {
		if c == "" {
			return nil, domain.NewDomainError(domain.ErrorCodeMappingKeyInvalid, "empty failure code in mapping key").
				WithDetail("mapping", key)
		}
	}

	failure := &domain.Failure{Code: codes[0]}
	var parent *domain.SubFailure
	for _, c := range codes[1:] {
		sub := &domain.SubFailure{Code: c}
		if parent == nil {
			failure.Sub = sub
		} else {
			parent.Sub = sub
		}
		parent = sub
	}
	return failure, nil
}
