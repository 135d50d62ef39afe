package mapping

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/kevin07696/error-mapping/internal/domain"
)

// Format is the serialization of a rule list
type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// ParseFormat parses a format name, accepting "yml" for YAML
func ParseFormat(name string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "json":
		return FormatJSON, nil
	case "yaml", "yml":
		return FormatYAML, nil
	default:
		return "", fmt.Errorf("unsupported rules format: %s", name)
	}
}

// FormatFromPath picks the format from a file extension, defaulting to JSON
func FormatFromPath(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML
	default:
		return FormatJSON
	}
}

// DecodeRules reads an ordered rule list. Unknown fields are ignored and
// descriptionRegex/state may be null or missing.
//
// Errors carry domain.ErrorCodeConfigIO when r fails, ErrorCodeConfigParse on
// malformed input and ErrorCodeConfigMapping when the data doesn't fit a rule list.
func DecodeRules(r io.Reader, format Format) ([]domain.Rule, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, domain.WrapError(domain.ErrorCodeConfigIO, "failed to read error mapping data", err)
	}

	var rules []domain.Rule
	switch format {
	case FormatYAML:
		err = decodeYAML(data, &rules)
	case FormatJSON, "":
		err = decodeJSON(data, &rules)
	default:
		return nil, domain.NewDomainError(domain.ErrorCodeConfigParse, fmt.Sprintf("unsupported rules format: %s", format))
	}
	if err != nil {
		return nil, err
	}
	return rules, nil
}

func decodeJSON(data []byte, rules *[]domain.Rule) error {
	err := json.Unmarshal(data, rules)
	if err == nil {
		return nil
	}
	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &typeErr) {
		return domain.WrapError(domain.ErrorCodeConfigMapping, "json can't map data to rules", err)
	}
	return domain.WrapError(domain.ErrorCodeConfigParse, "json can't parse data", err)
}

func decodeYAML(data []byte, rules *[]domain.Rule) error {
	err := yaml.Unmarshal(data, rules)
	if err == nil {
		return nil
	}
	var typeErr *yaml.TypeError
	if errors.As(err, &typeErr) {
		return domain.WrapError(domain.ErrorCodeConfigMapping, "yaml can't map data to rules", err)
	}
	return domain.WrapError(domain.ErrorCodeConfigParse, "yaml can't parse data", err)
}

// LoadRuleSet decodes and validates a rule set
func LoadRuleSet(r io.Reader, format Format) (*RuleSet, error) {
	rules, err := DecodeRules(r, format)
	if err != nil {
		return nil, err
	}
	set := NewRuleSet(rules)
	if err := set.Validate(); err != nil {
		return nil, err
	}
	return set, nil
}

// NewFromReader loads a rule set from r and builds an ErrorMapping with it
func NewFromReader(r io.Reader, format Format, reasonPattern string, opts ...Option) (*ErrorMapping, error) {
	set, err := LoadRuleSet(r, format)
	if err != nil {
		return nil, err
	}
	return New(reasonPattern, set, opts...), nil
}
