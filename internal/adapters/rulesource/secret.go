package rulesource

import (
	"context"
	"strings"

	adapterports "github.com/kevin07696/error-mapping/internal/adapters/ports"
	"github.com/kevin07696/error-mapping/internal/domain"
	"github.com/kevin07696/error-mapping/internal/domain/ports"
	"github.com/kevin07696/error-mapping/internal/mapping"
)

// SecretSource reads a serialized rule list stored as a secret value
type SecretSource struct {
	backend string
	secrets adapterports.SecretReader
	path    string
	format  mapping.Format
}

var _ ports.RuleSource = (*SecretSource)(nil)

// NewSecretSource creates a source reading path from secrets. backend names
// the secret store in logs ("aws", "vault"). An empty format means JSON.
func NewSecretSource(backend string, secrets adapterports.SecretReader, path string, format mapping.Format) *SecretSource {
	if format == "" {
		format = mapping.FormatJSON
	}
	return &SecretSource{backend: backend, secrets: secrets, path: path, format: format}
}

// Name implements ports.RuleSource
func (s *SecretSource) Name() string {
	return s.backend + ":" + s.path
}

// Load implements ports.RuleSource
func (s *SecretSource) Load(ctx context.Context) ([]domain.Rule, error) {
	secret, err := s.secrets.GetSecret(ctx, s.path)
	if err != nil {
		return nil, domain.WrapError(domain.ErrorCodeConfigIO, "failed to fetch error mapping secret", err).
			WithDetail("source", s.Name())
	}
	if secret == nil {
		return nil, domain.NewDomainError(domain.ErrorCodeConfigIO, "error mapping secret not found").
			WithDetail("source", s.Name())
	}
	return mapping.DecodeRules(strings.NewReader(secret.Value), s.format)
}
