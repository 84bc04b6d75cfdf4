package player

import (
	"errors"
	"strings"

	"github.com/zalando/go-keyring"
)

// DefaultCredentialKeys is the lookup order for the viewer token. The second
// key is a legacy name still written by older sessions.
var DefaultCredentialKeys = []string{"access_token", "token"}

// CredentialSource is a session store holding the viewer token
type CredentialSource interface {
	Lookup(key string) (string, bool)
}

// MapCredentials is an in-memory session store
type MapCredentials map[string]string

// Lookup returns the non-blank value stored under key
func (m MapCredentials) Lookup(key string) (string, bool) {
	v := strings.TrimSpace(m[key])
	return v, v != ""
}

// KeyringCredentials reads tokens from the system keyring under Service
type KeyringCredentials struct {
	Service string
}

// Lookup returns the token stored under key, treating keyring errors as absence
func (k KeyringCredentials) Lookup(key string) (string, bool) {
	v, err := keyring.Get(k.Service, key)
	if err != nil {
		return "", false
	}
	v = strings.TrimSpace(v)
	return v, v != ""
}

// Store persists token under key
func (k KeyringCredentials) Store(key, token string) error {
	return keyring.Set(k.Service, key, token)
}

// Remove deletes the token under key. A missing entry is not an error.
func (k KeyringCredentials) Remove(key string) error {
	if err := keyring.Delete(k.Service, key); err != nil && !errors.Is(err, keyring.ErrNotFound) {
		return err
	}
	return nil
}

// ChainCredentials consults each source in order
type ChainCredentials []CredentialSource

// Lookup returns the first match across the chained sources
func (c ChainCredentials) Lookup(key string) (string, bool) {
	for _, src := range c {
		if src == nil {
			continue
		}
		if v, ok := src.Lookup(key); ok {
			return v, true
		}
	}
	return "", false
}

// LookupToken walks keys in preference order and returns the first token found
// along with the key it was stored under
func LookupToken(src CredentialSource, keys []string) (token, key string, ok bool) {
	if src == nil {
		return "", "", false
	}
	for _, k := range keys {
		if v, found := src.Lookup(k); found {
			return v, k, true
		}
	}
	return "", "", false
}
