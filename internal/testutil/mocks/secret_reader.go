package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/kevin07696/error-mapping/internal/adapters/ports"
)

// MockSecretReader is a testify mock of ports.SecretReader
type MockSecretReader struct {
	mock.Mock
}

// GetSecret returns the configured secret or error
func (m *MockSecretReader) GetSecret(ctx context.Context, path string) (*ports.Secret, error) {
	args := m.Called(ctx, path)
	secret, _ := args.Get(0).(*ports.Secret)
	return secret, args.Error(1)
}
