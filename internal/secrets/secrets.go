// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Tidemark Contributors

// Package secrets keeps credentials out of config files. A config value of
// the form keyring://service/key is replaced at load time by the secret
// stored under that service and key.
package secrets

// Store holds secrets by service and key.
type Store interface {
	Set(service, key, value string) error
	// Get returns a CodeSecretNotFound error when the key does not exist.
	Get(service, key string) (string, error)
	// Delete returns a CodeSecretNotFound error when the key does not exist.
	Delete(service, key string) error
}
