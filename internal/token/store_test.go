package token

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"wechatkf-golang/refactor/internal/config"
)

func TestFileStore_RoundTripPerAppID(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "tokens.json")
	s := NewFileStore(path)
	ctx := context.Background()

	got, err := s.Load(ctx, "wx1")
	require.NoError(t, err)
	assert.Nil(t, got)

	require.NoError(t, s.Save(ctx, "wx1", &AccessToken{AccessToken: "A", ExpireTime: 1}))
	require.NoError(t, s.Save(ctx, "wx2", &AccessToken{AccessToken: "B", ExpireTime: 2}))

	reopened := NewFileStore(path)
	got, err = reopened.Load(ctx, "wx1")
	require.NoError(t, err)
	assert.Equal(t, &AccessToken{AccessToken: "A", ExpireTime: 1}, got)

	got, err = reopened.Load(ctx, "wx2")
	require.NoError(t, err)
	assert.Equal(t, "B", got.AccessToken)
}

func TestFileStore_CorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tokens.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o600))
	s := NewFileStore(path)

	_, err := s.Load(context.Background(), "wx1")
	require.Error(t, err)

	require.NoError(t, s.Save(context.Background(), "wx1", &AccessToken{AccessToken: "A", ExpireTime: 1}))
	got, err := s.Load(context.Background(), "wx1")
	require.NoError(t, err)
	assert.Equal(t, "A", got.AccessToken)
}

type fakeRedis struct {
	values map[string]string
	ttls   map[string]time.Duration
	err    error
	closed bool
}

func newFakeRedis() *fakeRedis {
	return &fakeRedis{values: map[string]string{}, ttls: map[string]time.Duration{}}
}

func (f *fakeRedis) Get(_ context.Context, key string) *redis.StringCmd {
	if f.err != nil {
		return redis.NewStringResult("", f.err)
	}
	v, ok := f.values[key]
	if !ok {
		return redis.NewStringResult("", redis.Nil)
	}
	return redis.NewStringResult(v, nil)
}

func (f *fakeRedis) Set(_ context.Context, key string, value any, expiration time.Duration) *redis.StatusCmd {
	if f.err != nil {
		return redis.NewStatusResult("", f.err)
	}
	f.values[key] = value.(string)
	f.ttls[key] = expiration
	return redis.NewStatusResult("OK", nil)
}

func (f *fakeRedis) Close() error {
	f.closed = true
	return nil
}

func TestRedisStore_Close(t *testing.T) {
	client := newFakeRedis()
	store := newRedisStore(client, "kf")

	var closer io.Closer = store
	require.NoError(t, closer.Close())
	assert.True(t, client.closed)
}

func TestRedisStore_SaveAndLoad(t *testing.T) {
	now := time.Unix(1700000000, 0)
	client := newFakeRedis()
	s := newRedisStore(client, "wechat:access_token")
	s.now = func() time.Time { return now }
	ctx := context.Background()

	got, err := s.Load(ctx, "wx1")
	require.NoError(t, err)
	assert.Nil(t, got)

	tok := &AccessToken{AccessToken: "A", ExpireTime: now.Add(time.Hour).UnixMilli()}
	require.NoError(t, s.Save(ctx, "wx1", tok))
	assert.Equal(t, time.Hour, client.ttls["wechat:access_token:wx1"])

	got, err = s.Load(ctx, "wx1")
	require.NoError(t, err)
	assert.Equal(t, tok, got)
}

func TestRedisStore_SkipsExpiredToken(t *testing.T) {
	now := time.Unix(1700000000, 0)
	client := newFakeRedis()
	s := newRedisStore(client, "kf")
	s.now = func() time.Time { return now }

	require.NoError(t, s.Save(context.Background(), "wx1", &AccessToken{AccessToken: "A", ExpireTime: now.UnixMilli()}))
	assert.Empty(t, client.values)
}

func TestRedisStore_Errors(t *testing.T) {
	client := newFakeRedis()
	client.err = errors.New("connection refused")
	s := newRedisStore(client, "kf")

	_, err := s.Load(context.Background(), "wx1")
	require.Error(t, err)
	assert.ErrorIs(t, err, client.err)

	client.err = nil
	client.values["kf:wx1"] = "garbage"
	_, err = s.Load(context.Background(), "wx1")
	require.Error(t, err)
}

func TestNewStore(t *testing.T) {
	s, err := NewStore(&config.Config{TokenStore: "memory"})
	require.NoError(t, err)
	assert.IsType(t, &MemoryStore{}, s)

	s, err = NewStore(&config.Config{TokenStore: "file", DataDir: t.TempDir()})
	require.NoError(t, err)
	assert.IsType(t, &FileStore{}, s)

	_, err = NewStore(&config.Config{TokenStore: "etcd"})
	require.Error(t, err)
}
