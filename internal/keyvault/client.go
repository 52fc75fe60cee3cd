package keyvault

import (
	"context"
	"fmt"
	"strings"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore"
	"github.com/Azure/azure-sdk-for-go/sdk/azidentity"
	"github.com/Azure/azure-sdk-for-go/sdk/security/keyvault/azsecrets"

	"github.com/mhallin2/ansible-dev-tools/internal/config"
)

// SecretClientAPI defines the interface for Azure Key Vault operations.
// This allows for mocking in tests.
type SecretClientAPI interface {
	GetSecret(ctx context.Context, name string, version string, options *azsecrets.GetSecretOptions) (azsecrets.GetSecretResponse, error)
}

// newSecretClient creates an Azure Key Vault client with appropriate authentication
func newSecretClient(kv config.KeyVaultConfig) (*azsecrets.Client, error) {
	cred, err := newCredential(kv)
	if err != nil {
		return nil, fmt.Errorf("failed to create Azure credential: %w", err)
	}

	client, err := azsecrets.NewClient(kv.VaultURL(), cred, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create Key Vault client: %w", err)
	}

	return client, nil
}

// newCredential picks the credential type from configuration. With nothing
// configured this is the default chain, which includes the az CLI session
// the prerequisite check already validated.
func newCredential(kv config.KeyVaultConfig) (azcore.TokenCredential, error) {
	var cred azcore.TokenCredential
	var err error

	switch {
	case kv.UseManagedIdentity:
		if kv.UserAssignedID != "" {
			// User-assigned managed identity
			opts := azidentity.ManagedIdentityCredentialOptions{
				ID: azidentity.ClientID(kv.UserAssignedID),
			}
			cred, err = azidentity.NewManagedIdentityCredential(&opts)
		} else {
			// System-assigned managed identity
			cred, err = azidentity.NewManagedIdentityCredential(nil)
		}
	case kv.ClientSecret != "":
		// Service Principal with client secret
		if kv.TenantID == "" || kv.ClientID == "" {
			return nil, fmt.Errorf("tenant_id and client_id are required for service principal authentication")
		}
		cred, err = azidentity.NewClientSecretCredential(kv.TenantID, kv.ClientID, kv.ClientSecret, nil)
	default:
		cred, err = azidentity.NewDefaultAzureCredential(nil)
	}

	if err != nil {
		return nil, fmt.Errorf("failed to create Azure credential: %w", err)
	}

	return cred, nil
}

// getAzureErrorSuggestion provides helpful suggestions based on Azure errors
func getAzureErrorSuggestion(err error) string {
	errStr := strings.ToLower(err.Error())

	switch {
	case strings.Contains(errStr, "forbidden") || strings.Contains(errStr, "access denied"):
		return "Check Key Vault access policies: 'Get' permission is required for secrets"
	case strings.Contains(errStr, "secretnotfound") || strings.Contains(errStr, "404"):
		return "Verify the secret name and version exist in the Key Vault. Secret names are case-sensitive"
	case strings.Contains(errStr, "unauthorized") || strings.Contains(errStr, "401"):
		return "Check authentication: verify managed identity, service principal, or Azure CLI login"
	case strings.Contains(errStr, "vault not found") || strings.Contains(errStr, "no such host"):
		return "Check the vault name and that the Key Vault exists"
	case strings.Contains(errStr, "throttled") || strings.Contains(errStr, "429"):
		return "Request was throttled. Wait a moment and re-run"
	case strings.Contains(errStr, "tenant"):
		return "Check that the tenant ID is correct and the application is registered"
	default:
		return "Check Azure credentials, the vault name, and access policies"
	}
}
