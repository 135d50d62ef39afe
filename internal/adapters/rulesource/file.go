package rulesource

import (
	"context"
	"os"

	"github.com/kevin07696/error-mapping/internal/domain"
	"github.com/kevin07696/error-mapping/internal/domain/ports"
	"github.com/kevin07696/error-mapping/internal/mapping"
)

// FileSource reads rules from a JSON or YAML file
type FileSource struct {
	path   string
	format mapping.Format
}

var _ ports.RuleSource = (*FileSource)(nil)

// NewFileSource creates a file source. An empty format is taken from the extension.
func NewFileSource(path string, format mapping.Format) *FileSource {
	if format == "" {
		format = mapping.FormatFromPath(path)
	}
	return &FileSource{path: path, format: format}
}

// Name implements ports.RuleSource
func (s *FileSource) Name() string {
	return "file:" + s.path
}

// Load implements ports.RuleSource
func (s *FileSource) Load(_ context.Context) ([]domain.Rule, error) {
	f, err := os.Open(s.path)
	if err != nil {
		return nil, domain.WrapError(domain.ErrorCodeConfigIO, "failed to open error mapping file", err).
			WithDetail("path", s.path)
	}
	defer f.Close()

	return mapping.DecodeRules(f, s.format)
}
