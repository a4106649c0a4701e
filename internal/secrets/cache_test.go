package secrets

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingProvider struct {
	values map[string]string
	err    error
	calls  int
}

func (p *countingProvider) GetSecretString(ctx context.Context, id string) (string, error) {
	p.calls++
	if p.err != nil {
		return "", p.err
	}
	value, ok := p.values[id]
	if !ok {
		return "", errors.New("secret not found")
	}
	return value, nil
}

func TestCache_ServesCachedValueWithinInterval(t *testing.T) {
	now := time.Date(2026, 9, 1, 12, 0, 0, 0, time.UTC)
	provider := &countingProvider{values: map[string]string{"signing": "s3cret"}}
	cache := NewCache(provider, 300*time.Second, WithClock(func() time.Time { return now }))

	for i := 0; i < 3; i++ {
		value, err := cache.GetSecretString(context.Background(), "signing")
		require.NoError(t, err)
		assert.Equal(t, "s3cret", value)
	}

	assert.Equal(t, 1, provider.calls)
}

func TestCache_RefetchesAfterInterval(t *testing.T) {
	now := time.Date(2026, 9, 1, 12, 0, 0, 0, time.UTC)
	provider := &countingProvider{values: map[string]string{"signing": "old"}}
	cache := NewCache(provider, 300*time.Second, WithClock(func() time.Time { return now }))

	value, err := cache.GetSecretString(context.Background(), "signing")
	require.NoError(t, err)
	assert.Equal(t, "old", value)

	provider.values["signing"] = "rotated"
	now = now.Add(301 * time.Second)

	value, err = cache.GetSecretString(context.Background(), "signing")
	require.NoError(t, err)
	assert.Equal(t, "rotated", value)
	assert.Equal(t, 2, provider.calls)
}

func TestCache_ServesStaleOnRefetchError(t *testing.T) {
	now := time.Date(2026, 9, 1, 12, 0, 0, 0, time.UTC)
	provider := &countingProvider{values: map[string]string{"signing": "s3cret"}}
	cache := NewCache(provider, 300*time.Second, WithClock(func() time.Time { return now }))

	_, err := cache.GetSecretString(context.Background(), "signing")
	require.NoError(t, err)

	provider.err = errors.New("secrets manager unavailable")
	now = now.Add(10 * time.Minute)

	value, err := cache.GetSecretString(context.Background(), "signing")
	require.NoError(t, err)
	assert.Equal(t, "s3cret", value)
}

func TestCache_FirstFetchErrorPropagates(t *testing.T) {
	provider := &countingProvider{err: errors.New("access denied")}
	cache := NewCache(provider, 300*time.Second)

	_, err := cache.GetSecretString(context.Background(), "signing")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "access denied")
}

func TestCache_KeysAreIndependent(t *testing.T) {
	provider := &countingProvider{values: map[string]string{
		"signing": "s1",
		"token":   "t1",
	}}
	cache := NewCache(provider, 300*time.Second)

	signing, err := cache.GetSecretString(context.Background(), "signing")
	require.NoError(t, err)
	token, err := cache.GetSecretString(context.Background(), "token")
	require.NoError(t, err)

	assert.Equal(t, "s1", signing)
	assert.Equal(t, "t1", token)
	assert.Equal(t, 2, provider.calls)
}
