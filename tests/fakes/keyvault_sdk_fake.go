package fakes

import (
	"context"
	"fmt"
	"time"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore"
	"github.com/Azure/azure-sdk-for-go/sdk/azcore/to"
	"github.com/Azure/azure-sdk-for-go/sdk/security/keyvault/azsecrets"
)

// FakeSecretClient is a mock implementation of the Key Vault secret API.
// It records every lookup so tests can assert how many calls left the
// fetcher, not just what came back.
type FakeSecretClient struct {
	// Secrets maps secret names to their data
	Secrets map[string]*SecretData
	// Errors maps secret names to errors to return
	Errors map[string]error
	// GetSecretFunc allows custom behavior for GetSecret
	GetSecretFunc func(ctx context.Context, name string, version string) (azsecrets.GetSecretResponse, error)
	// Calls records the (name, version) of every GetSecret invocation
	Calls []SecretCall
}

// SecretCall is one recorded GetSecret invocation
type SecretCall struct {
	Name    string
	Version string
}

// SecretData holds the data for a mock Key Vault secret
type SecretData struct {
	Value      *string
	ID         *string
	Attributes *azsecrets.SecretAttributes
	// Version-specific data
	Versions map[string]*SecretVersion
}

// SecretVersion holds version-specific data for a secret
type SecretVersion struct {
	Value      *string
	Attributes *azsecrets.SecretAttributes
}

// NewFakeSecretClient creates a new mock Key Vault client
func NewFakeSecretClient() *FakeSecretClient {
	return &FakeSecretClient{
		Secrets: make(map[string]*SecretData),
		Errors:  make(map[string]error),
	}
}

// AddSecretString adds a string secret to the mock client
func (f *FakeSecretClient) AddSecretString(name, value string) {
	now := time.Now()
	f.Secrets[name] = &SecretData{
		Value: to.Ptr(value),
		ID:    to.Ptr(fmt.Sprintf("https://test-vault.vault.azure.net/secrets/%s", name)),
		Attributes: &azsecrets.SecretAttributes{
			Enabled: to.Ptr(true),
			Created: &now,
			Updated: &now,
		},
		Versions: make(map[string]*SecretVersion),
	}
}

// AddSecretWithVersion adds a secret with a specific version
func (f *FakeSecretClient) AddSecretWithVersion(name, value, version string) {
	now := time.Now()

	if _, exists := f.Secrets[name]; !exists {
		f.Secrets[name] = &SecretData{
			Value: to.Ptr(value),
			ID:    to.Ptr(fmt.Sprintf("https://test-vault.vault.azure.net/secrets/%s/%s", name, version)),
			Attributes: &azsecrets.SecretAttributes{
				Enabled: to.Ptr(true),
				Created: &now,
				Updated: &now,
			},
			Versions: make(map[string]*SecretVersion),
		}
	}

	f.Secrets[name].Versions[version] = &SecretVersion{
		Value: to.Ptr(value),
		Attributes: &azsecrets.SecretAttributes{
			Enabled: to.Ptr(true),
			Created: &now,
			Updated: &now,
		},
	}
}

// AddError configures the mock to return an error for a specific secret
func (f *FakeSecretClient) AddError(name string, err error) {
	f.Errors[name] = err
}

// GetSecret mocks the GetSecret operation
func (f *FakeSecretClient) GetSecret(ctx context.Context, name string, version string, options *azsecrets.GetSecretOptions) (azsecrets.GetSecretResponse, error) {
	f.Calls = append(f.Calls, SecretCall{Name: name, Version: version})

	if f.GetSecretFunc != nil {
		return f.GetSecretFunc(ctx, name, version)
	}

	if err, exists := f.Errors[name]; exists {
		return azsecrets.GetSecretResponse{}, err
	}

	data, exists := f.Secrets[name]
	if !exists {
		return azsecrets.GetSecretResponse{}, SecretNotFoundError()
	}

	// Version-specific request
	if version != "" {
		versionData, versionExists := data.Versions[version]
		if !versionExists {
			return azsecrets.GetSecretResponse{}, SecretNotFoundError()
		}

		return azsecrets.GetSecretResponse{
			Secret: azsecrets.Secret{
				ID:         (*azsecrets.ID)(to.Ptr(fmt.Sprintf("https://test-vault.vault.azure.net/secrets/%s/%s", name, version))),
				Value:      versionData.Value,
				Attributes: versionData.Attributes,
			},
		}, nil
	}

	// Latest version
	return azsecrets.GetSecretResponse{
		Secret: azsecrets.Secret{
			ID:         (*azsecrets.ID)(data.ID),
			Value:      data.Value,
			Attributes: data.Attributes,
		},
	}, nil
}

// SecretNotFoundError creates a mock Key Vault not found error
func SecretNotFoundError() error {
	return &azcore.ResponseError{
		StatusCode:  404,
		ErrorCode:   "SecretNotFound",
		RawResponse: nil,
	}
}

// ForbiddenError creates a mock Key Vault forbidden error
func ForbiddenError() error {
	return &azcore.ResponseError{
		StatusCode:  403,
		ErrorCode:   "Forbidden",
		RawResponse: nil,
	}
}

// UnauthorizedError creates a mock Key Vault unauthorized error
func UnauthorizedError() error {
	return &azcore.ResponseError{
		StatusCode:  401,
		ErrorCode:   "Unauthorized",
		RawResponse: nil,
	}
}

// ThrottledError creates a mock Key Vault throttled error
func ThrottledError() error {
	return &azcore.ResponseError{
		StatusCode:  429,
		ErrorCode:   "TooManyRequests",
		RawResponse: nil,
	}
}
