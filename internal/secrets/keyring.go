// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Tidemark Contributors

package secrets

import (
	"errors"

	"github.com/zalando/go-keyring"

	tmerr "github.com/tidemark-dev/tidemark/pkg/errors"
)

// KeyringStore stores secrets in the OS keyring: Keychain on macOS,
// secret-service on Linux, Credential Manager on Windows.
type KeyringStore struct{}

// NewKeyringStore returns a KeyringStore.
func NewKeyringStore() *KeyringStore {
	return &KeyringStore{}
}

func (s *KeyringStore) Set(service, key, value string) error {
	if err := checkKey("set", service, key); err != nil {
		return err
	}
	if err := keyring.Set(service, key, value); err != nil {
		return tmerr.Wrapf(err, tmerr.CodeSecretStoreFailure, "storing secret %s/%s", service, key)
	}
	return nil
}

func (s *KeyringStore) Get(service, key string) (string, error) {
	if err := checkKey("get", service, key); err != nil {
		return "", err
	}
	val, err := keyring.Get(service, key)
	if err != nil {
		if errors.Is(err, keyring.ErrNotFound) {
			return "", tmerr.Errorf(tmerr.CodeSecretNotFound, "secret %s/%s not found", service, key)
		}
		return "", tmerr.Wrapf(err, tmerr.CodeSecretStoreFailure, "reading secret %s/%s", service, key)
	}
	return val, nil
}

func (s *KeyringStore) Delete(service, key string) error {
	if err := checkKey("delete", service, key); err != nil {
		return err
	}
	if err := keyring.Delete(service, key); err != nil {
		if errors.Is(err, keyring.ErrNotFound) {
			return tmerr.Errorf(tmerr.CodeSecretNotFound, "secret %s/%s not found", service, key)
		}
		return tmerr.Wrapf(err, tmerr.CodeSecretDeleteFailure, "deleting secret %s/%s", service, key)
	}
	return nil
}

func checkKey(op, service, key string) error {
	if service == "" {
		return tmerr.Errorf(tmerr.CodeSecretInvalidInput, "secret %s: service must not be empty", op)
	}
	if key == "" {
		return tmerr.Errorf(tmerr.CodeSecretInvalidInput, "secret %s: key must not be empty", op)
	}
	return nil
}
