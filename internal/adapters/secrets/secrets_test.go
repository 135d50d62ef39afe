package secrets

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/secretsmanager"
	vault "github.com/hashicorp/vault/api"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type mockSecretsManager struct {
	mock.Mock
}

func (m *mockSecretsManager) GetSecretValue(ctx context.Context, params *secretsmanager.GetSecretValueInput, _ ...func(*secretsmanager.Options)) (*secretsmanager.GetSecretValueOutput, error) {
	args := m.Called(ctx, aws.ToString(params.SecretId))
	out, _ := args.Get(0).(*secretsmanager.GetSecretValueOutput)
	return out, args.Error(1)
}

type mockLogical struct {
	mock.Mock
}

func (m *mockLogical) ReadWithContext(ctx context.Context, path string) (*vault.Secret, error) {
	args := m.Called(ctx, path)
	out, _ := args.Get(0).(*vault.Secret)
	return out, args.Error(1)
}

func TestAWSSecretsManager_GetSecret(t *testing.T) {
	ctx := context.Background()
	created := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)

	client := &mockSecretsManager{}
	client.On("GetSecretValue", ctx, "error-mapping/north").Return(&secretsmanager.GetSecretValueOutput{
		SecretString: aws.String(`[{"codeRegex":"05","mapping":"a"}]`),
		VersionId:    aws.String("v-7"),
		ARN:          aws.String("arn:aws:secretsmanager:us-east-1:1:secret:error-mapping/north"),
		Name:         aws.String("error-mapping/north"),
		CreatedDate:  &created,
	}, nil)

	adapter := newAWSSecretsManagerAdapter(client, zap.NewNop())
	secret, err := adapter.GetSecret(ctx, "error-mapping/north")
	require.NoError(t, err)

	assert.Equal(t, `[{"codeRegex":"05","mapping":"a"}]`, secret.Value)
	assert.Equal(t, "v-7", secret.Version)
	assert.Equal(t, "2026-01-02T03:04:05Z", secret.CreatedAt)
	assert.Equal(t, "error-mapping/north", secret.Metadata["name"])
	client.AssertExpectations(t)
}

func TestAWSSecretsManager_Errors(t *testing.T) {
	ctx := context.Background()
	client := &mockSecretsManager{}
	client.On("GetSecretValue", ctx, "missing").Return(nil, errors.New("ResourceNotFoundException"))
	client.On("GetSecretValue", ctx, "binary").Return(&secretsmanager.GetSecretValueOutput{SecretBinary: []byte{1}}, nil)

	adapter := newAWSSecretsManagerAdapter(client, zap.NewNop())

	_, err := adapter.GetSecret(ctx, "missing")
	assert.ErrorContains(t, err, "failed to get secret missing")

	_, err = adapter.GetSecret(ctx, "binary")
	assert.ErrorContains(t, err, "has no string value")
}

func TestVault_GetSecretKVv2(t *testing.T) {
	ctx := context.Background()
	logical := &mockLogical{}
	logical.On("ReadWithContext", ctx, "secret/data/error-mapping/north").Return(&vault.Secret{
		Data: map[string]interface{}{
			"data": map[string]interface{}{"value": "[]"},
			"metadata": map[string]interface{}{
				"version":      json.Number("4"),
				"created_time": "2026-01-02T03:04:05Z",
			},
		},
	}, nil)

	adapter := newVaultAdapter(logical, DefaultVaultConfig("http://vault:8200"), zap.NewNop())
	secret, err := adapter.GetSecret(ctx, "error-mapping/north")
	require.NoError(t, err)

	assert.Equal(t, "[]", secret.Value)
	assert.Equal(t, "4", secret.Version)
	assert.Equal(t, "2026-01-02T03:04:05Z", secret.CreatedAt)
	logical.AssertExpectations(t)
}

func TestVault_GetSecretKVv1(t *testing.T) {
	ctx := context.Background()
	cfg := DefaultVaultConfig("http://vault:8200")
	cfg.KVVersion = "v1"
	cfg.MountPath = "kv"
	cfg.ValueKey = "rules"

	logical := &mockLogical{}
	logical.On("ReadWithContext", ctx, "kv/north").Return(&vault.Secret{
		Data: map[string]interface{}{"rules": "[]", "owner": "payments"},
	}, nil)

	secret, err := newVaultAdapter(logical, cfg, zap.NewNop()).GetSecret(ctx, "north")
	require.NoError(t, err)
	assert.Equal(t, "[]", secret.Value)
	assert.Equal(t, "1", secret.Version)
}

func TestVault_GetSecretErrors(t *testing.T) {
	ctx := context.Background()
	logical := &mockLogical{}
	logical.On("ReadWithContext", ctx, "secret/data/gone").Return(nil, nil)
	logical.On("ReadWithContext", ctx, "secret/data/flat").Return(&vault.Secret{Data: map[string]interface{}{"value": "x"}}, nil)
	logical.On("ReadWithContext", ctx, "secret/data/down").Return(nil, errors.New("connection refused"))

	adapter := newVaultAdapter(logical, DefaultVaultConfig("http://vault:8200"), zap.NewNop())

	_, err := adapter.GetSecret(ctx, "gone")
	assert.ErrorContains(t, err, "secret not found: gone")

	_, err = adapter.GetSecret(ctx, "flat")
	assert.ErrorContains(t, err, "invalid secret format")

	_, err = adapter.GetSecret(ctx, "down")
	assert.ErrorContains(t, err, "connection refused")
}

func TestExtractValue(t *testing.T) {
	v, err := extractValue(map[string]interface{}{"only": "x", "n": 1}, "value")
	require.NoError(t, err)
	assert.Equal(t, "x", v)

	_, err = extractValue(map[string]interface{}{"a": "x", "b": "y"}, "value")
	assert.ErrorContains(t, err, "[a b]")
}
