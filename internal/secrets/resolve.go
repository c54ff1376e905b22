// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Tidemark Contributors

package secrets

import (
	"log/slog"
	"strings"

	"github.com/spf13/viper"

	tmerr "github.com/tidemark-dev/tidemark/pkg/errors"
)

const keyringScheme = "keyring://"

// IsReference reports whether value is a keyring:// reference.
func IsReference(value string) bool {
	return strings.HasPrefix(value, keyringScheme)
}

// ParseReference splits keyring://service/key. The key may contain slashes.
func ParseReference(ref string) (service, key string, err error) {
	if !IsReference(ref) {
		return "", "", tmerr.Errorf(tmerr.CodeSecretInvalidInput, "not a keyring reference: %q", ref)
	}
	service, key, ok := strings.Cut(strings.TrimPrefix(ref, keyringScheme), "/")
	if !ok || service == "" || key == "" {
		return "", "", tmerr.Errorf(tmerr.CodeSecretInvalidInput,
			"invalid keyring reference %q: expected keyring://service/key", ref)
	}
	return service, key, nil
}

// Resolve returns the secret a reference points to. Other values are
// returned unchanged. A lookup failure keeps the store's code, so a missing
// secret is still IsNotFound.
func Resolve(store Store, value string) (string, error) {
	if !IsReference(value) {
		return value, nil
	}
	service, key, err := ParseReference(value)
	if err != nil {
		return "", err
	}
	secret, err := store.Get(service, key)
	if err != nil {
		return "", tmerr.With(err, tmerr.Field("reference", value))
	}
	return secret, nil
}

// ResolveViper replaces every keyring:// string value in v with its secret
// and returns the number of values replaced. A reference that cannot be
// resolved is logged and left in place; config validation rejects it later.
func ResolveViper(v *viper.Viper, store Store) int {
	resolved := 0
	for _, key := range v.AllKeys() {
		val, ok := v.Get(key).(string)
		if !ok || !IsReference(val) {
			continue
		}
		secret, err := Resolve(store, val)
		if err != nil {
			slog.Warn("keyring reference not resolved", "config_key", key, "error", err)
			continue
		}
		v.Set(key, secret)
		resolved++
	}
	return resolved
}
