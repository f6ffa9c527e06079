package amadeus

import (
	"context"
	"sync"
	"time"
)

// TokenStore is an optional durable side-channel for bearer tokens, so a
// restart can reuse a still-valid token instead of hitting the network.
type TokenStore interface {
	Load(provider string) (token string, expiresAt time.Time, err error)
	Save(provider, token string, expiresAt time.Time) error
}

// TokenCache holds the current bearer token for one provider. The mutex is
// held across a refresh, so concurrent requests single-flight through one
// token exchange instead of racing.
type TokenCache struct {
	mu       sync.Mutex
	provider string
	token    string
	expiry   time.Time
	store    TokenStore
	refresh  func(ctx context.Context) (string, time.Time, error)
}

// NewTokenCache creates a token cache backed by the given refresh function
func NewTokenCache(provider string, store TokenStore, refresh func(ctx context.Context) (string, time.Time, error)) *TokenCache {
	return &TokenCache{
		provider: provider,
		store:    store,
		refresh:  refresh,
	}
}

// Get returns a valid token, consulting in order: the in-process value, the
// durable store, and finally a fresh network exchange.
func (tc *TokenCache) Get(ctx context.Context) (string, error) {
	tc.mu.Lock()
	defer tc.mu.Unlock()

	now := time.Now()
	if tc.token != "" && now.Before(tc.expiry) {
		return tc.token, nil
	}

	if tc.store != nil {
		if token, expiry, err := tc.store.Load(tc.provider); err == nil && now.Before(expiry) {
			tc.token = token
			tc.expiry = expiry
			return token, nil
		}
	}

	token, expiry, err := tc.refresh(ctx)
	if err != nil {
		return "", err
	}

	tc.token = token
	tc.expiry = expiry
	if tc.store != nil {
		// Best effort: an unwritable store only costs a refresh next restart
		_ = tc.store.Save(tc.provider, token, expiry)
	}

	return token, nil
}
