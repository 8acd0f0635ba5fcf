package keys

import (
	"errors"
	"os"
	"strings"

	"github.com/spf13/viper"
)

// APIKeyID names the text-transform credential inside a KeyStore.
const APIKeyID = "ai/api_key"

// KeyStore provides access to stored credentials.
type KeyStore interface {
	Get(id string) (string, error)
	Put(id string, secret string) error
	Delete(id string) error
}

var ErrKeyNotFound = errors.New("key not found")

// MemStore keeps credentials in memory.
type MemStore struct {
	Keys map[string]string
}

func (s *MemStore) Get(id string) (string, error) {
	if s == nil || s.Keys == nil {
		return "", ErrKeyNotFound
	}
	val, ok := s.Keys[id]
	if !ok || val == "" {
		return "", ErrKeyNotFound
	}
	return val, nil
}

func (s *MemStore) Put(id string, secret string) error {
	if s.Keys == nil {
		s.Keys = map[string]string{}
	}
	s.Keys[id] = secret
	return nil
}

func (s *MemStore) Delete(id string) error {
	if s == nil || s.Keys == nil {
		return nil
	}
	delete(s.Keys, id)
	return nil
}

// Source says where ResolveAPIKey found the credential.
type Source string

const (
	SourceNone    Source = ""
	SourceConfig  Source = "config"
	SourceEnv     Source = "env"
	SourceKeyring Source = "keyring"
)

// ResolveAPIKey looks for the credential in config (ai.api_key, which also
// covers MARKSMART_AI_API_KEY), then GEMINI_API_KEY, then store.
func ResolveAPIKey(v *viper.Viper, store KeyStore) (string, Source) {
	if v != nil {
		if k := strings.TrimSpace(v.GetString("ai.api_key")); k != "" {
			return k, SourceConfig
		}
	}
	if k := strings.TrimSpace(os.Getenv("GEMINI_API_KEY")); k != "" {
		return k, SourceEnv
	}
	if store != nil {
		if k, err := store.Get(APIKeyID); err == nil && strings.TrimSpace(k) != "" {
			return strings.TrimSpace(k), SourceKeyring
		}
	}
	return "", SourceNone
}
