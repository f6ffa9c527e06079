package amadeus

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

type fakeTokenStore struct {
	token  string
	expiry time.Time
	saved  int
}

func (s *fakeTokenStore) Load(provider string) (string, time.Time, error) {
	if s.token == "" {
		return "", time.Time{}, errors.New("not found")
	}
	return s.token, s.expiry, nil
}

func (s *fakeTokenStore) Save(provider, token string, expiresAt time.Time) error {
	s.token = token
	s.expiry = expiresAt
	s.saved++
	return nil
}

func TestTokenCache_RefreshesOnce(t *testing.T) {
	refreshes := 0
	tc := NewTokenCache("amadeus", nil, func(ctx context.Context) (string, time.Time, error) {
		refreshes++
		return "tok", time.Now().Add(time.Hour), nil
	})

	for i := 0; i < 3; i++ {
		token, err := tc.Get(context.Background())
		assert.NoError(t, err)
		assert.Equal(t, "tok", token)
	}
	assert.Equal(t, 1, refreshes)
}

func TestTokenCache_RefreshesWhenExpired(t *testing.T) {
	refreshes := 0
	tc := NewTokenCache("amadeus", nil, func(ctx context.Context) (string, time.Time, error) {
		refreshes++
		// Already expired, so every Get refreshes
		return "tok", time.Now().Add(-time.Second), nil
	})

	tc.Get(context.Background())
	tc.Get(context.Background())
	assert.Equal(t, 2, refreshes)
}

func TestTokenCache_UsesDurableStore(t *testing.T) {
	store := &fakeTokenStore{token: "stored", expiry: time.Now().Add(time.Hour)}
	tc := NewTokenCache("amadeus", store, func(ctx context.Context) (string, time.Time, error) {
		t.Fatal("network refresh should not run when the store holds a valid token")
		return "", time.Time{}, nil
	})

	token, err := tc.Get(context.Background())
	assert.NoError(t, err)
	assert.Equal(t, "stored", token)
}

func TestTokenCache_SavesToStore(t *testing.T) {
	store := &fakeTokenStore{}
	tc := NewTokenCache("amadeus", store, func(ctx context.Context) (string, time.Time, error) {
		return "fresh", time.Now().Add(time.Hour), nil
	})

	token, err := tc.Get(context.Background())
	assert.NoError(t, err)
	assert.Equal(t, "fresh", token)
	assert.Equal(t, 1, store.saved)
	assert.Equal(t, "fresh", store.token)
}

func TestTokenCache_RefreshErrorPropagates(t *testing.T) {
	tc := NewTokenCache("amadeus", nil, func(ctx context.Context) (string, time.Time, error) {
		return "", time.Time{}, errors.New("boom")
	})

	_, err := tc.Get(context.Background())
	assert.Error(t, err)
}
