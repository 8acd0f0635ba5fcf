package keys

import (
	"testing"

	"github.com/spf13/viper"
	"github.com/zalando/go-keyring"
)

func TestMemStoreRoundTrip(t *testing.T) {
	store := &MemStore{}
	value := "secret"

	if err := store.Put(APIKeyID, value); err != nil {
		t.Fatalf("put failed: %v", err)
	}
	got, err := store.Get(APIKeyID)
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if got != value {
		t.Fatalf("get mismatch: got %q want %q", got, value)
	}
	if err := store.Delete(APIKeyID); err != nil {
		t.Fatalf("delete failed: %v", err)
	}
	_, err = store.Get(APIKeyID)
	if err != ErrKeyNotFound {
		t.Fatalf("expected ErrKeyNotFound, got %v", err)
	}
}

func TestResolveAPIKeyPrecedence(t *testing.T) {
	t.Setenv("GEMINI_API_KEY", "")
	store := &MemStore{Keys: map[string]string{APIKeyID: "from-keyring"}}

	v := viper.New()
	if k, src := ResolveAPIKey(v, store); k != "from-keyring" || src != SourceKeyring {
		t.Fatalf("got %q from %q", k, src)
	}

	t.Setenv("GEMINI_API_KEY", "from-env")
	if k, src := ResolveAPIKey(v, store); k != "from-env" || src != SourceEnv {
		t.Fatalf("got %q from %q", k, src)
	}

	v.Set("ai.api_key", " from-config ")
	if k, src := ResolveAPIKey(v, store); k != "from-config" || src != SourceConfig {
		t.Fatalf("got %q from %q", k, src)
	}
}

func TestResolveAPIKeyMissing(t *testing.T) {
	t.Setenv("GEMINI_API_KEY", "")
	if k, src := ResolveAPIKey(viper.New(), &MemStore{}); k != "" || src != SourceNone {
		t.Fatalf("expected no key, got %q from %q", k, src)
	}
}

func TestKeyringStoreWithMockProvider(t *testing.T) {
	keyring.MockInit()
	s := &KeyringStore{}
	if _, err := s.Get(APIKeyID); err != ErrKeyNotFound {
		t.Fatalf("expected ErrKeyNotFound, got %v", err)
	}
	if err := s.Put(APIKeyID, "k"); err != nil {
		t.Fatalf("put: %v", err)
	}
	if got, err := s.Get(APIKeyID); err != nil || got != "k" {
		t.Fatalf("get: %q %v", got, err)
	}
	if err := s.Delete(APIKeyID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if err := s.Delete(APIKeyID); err != nil {
		t.Fatalf("second delete should be a no-op: %v", err)
	}
}
