package ports

import (
	"context"
)

// Secret represents a retrieved secret with metadata
type Secret struct {
	Value     string            // The secret value, e.g. a JSON rule list
	Version   string            // Secret version identifier
	Metadata  map[string]string // Additional secret metadata
	CreatedAt string            // When this version was created
}

// SecretReader retrieves secrets from a secret management service.
// Path format depends on implementation:
//   - AWS: "error-mapping/provider-x" or a full ARN
//   - Vault: "error-mapping/provider-x" under the configured KV mount
type SecretReader interface {
	// GetSecret retrieves the current version of a secret.
	// Returns an error if the secret does not exist, access is denied or
	// the service can't be reached.
	GetSecret(ctx context.Context, path string) (*Secret, error)
}
