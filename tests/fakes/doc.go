// Package fakes provides test doubles for the token updater's external
// dependencies.
//
// This package contains fake implementations of the Key Vault client and
// command runner interfaces that allow unit testing without an Azure
// subscription or an installed az CLI. Fakes are manually implemented
// (not generated) to provide precise control over test behavior.
//
// Usage:
//
//	fake := fakes.NewFakeSecretClient()
//	fake.AddSecretString("APIkey-Private-AAP-HUB", "glsa_abc123")
//	fetcher, _ := keyvault.NewFetcher(cfg, keyvault.WithSecretClient(fake))
//	// Test fetcher methods...
package fakes
