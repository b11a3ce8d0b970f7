package secrets

import (
	"fmt"
	"net/http"
	"time"

	"github.com/hashicorp/vault/api"
)

// VaultClient reads service credentials from HashiCorp Vault.
type VaultClient struct {
	client *api.Client
}

// NewVaultClient creates a Vault client against the given address and token.
func NewVaultClient(address, token string) (*VaultClient, error) {
	config := &api.Config{
		Address: address,
		HttpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}

	client, err := api.NewClient(config)
	if err != nil {
		return nil, fmt.Errorf("failed to create Vault client: %w", err)
	}
	client.SetToken(token)

	return &VaultClient{client: client}, nil
}

// getSecret reads a logical secret and returns its string fields.
func (v *VaultClient) getSecret(path string) (map[string]string, error) {
	secret, err := v.client.Logical().Read(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read secret from %s: %w", path, err)
	}
	if secret == nil || secret.Data == nil {
		return nil, fmt.Errorf("no secret data found at %s", path)
	}

	values := make(map[string]string)
	for key, value := range secret.Data {
		if str, ok := value.(string); ok {
			values[key] = str
		}
	}
	return values, nil
}

// GetDatabaseCredentials retrieves database credentials for a service.
func (v *VaultClient) GetDatabaseCredentials(serviceName string) (map[string]string, error) {
	return v.getSecret(fmt.Sprintf("tillpoint/%s/database", serviceName))
}

// GetRedisCredentials retrieves Redis credentials for a service.
func (v *VaultClient) GetRedisCredentials(serviceName string) (map[string]string, error) {
	return v.getSecret(fmt.Sprintf("tillpoint/%s/redis", serviceName))
}

// GetStripeSecretKey retrieves the payment processor API key for a service.
func (v *VaultClient) GetStripeSecretKey(serviceName string) (string, error) {
	values, err := v.getSecret(fmt.Sprintf("tillpoint/%s/stripe", serviceName))
	if err != nil {
		return "", err
	}
	return values["secret_key"], nil
}

// HealthCheck checks that Vault is reachable.
func (v *VaultClient) HealthCheck() error {
	if _, err := v.client.Sys().Health(); err != nil {
		return fmt.Errorf("vault health check failed: %w", err)
	}
	return nil
}
