package keys

import (
	"errors"

	"github.com/zalando/go-keyring"
)

const DefaultKeyringService = "marksmart"

// KeyringStore keeps credentials in the system keyring.
type KeyringStore struct {
	Service string
}

func (s *KeyringStore) Get(id string) (string, error) {
	val, err := keyring.Get(s.service(), id)
	if err != nil {
		if errors.Is(err, keyring.ErrNotFound) {
			return "", ErrKeyNotFound
		}
		return "", err
	}
	return val, nil
}

func (s *KeyringStore) Put(id string, secret string) error {
	return keyring.Set(s.service(), id, secret)
}

func (s *KeyringStore) Delete(id string) error {
	err := keyring.Delete(s.service(), id)
	if errors.Is(err, keyring.ErrNotFound) {
		return nil
	}
	return err
}

func (s *KeyringStore) service() string {
	if s != nil && s.Service != "" {
		return s.Service
	}
	return DefaultKeyringService
}

// KeyringAvailable reports whether a system keyring backend appears supported.
func KeyringAvailable() bool {
	_, err := keyring.Get(DefaultKeyringService, "_probe_")
	if err == nil || errors.Is(err, keyring.ErrNotFound) {
		return true
	}
	return !errors.Is(err, keyring.ErrUnsupportedPlatform)
}
