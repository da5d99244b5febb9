package lock

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocalLocker(t *testing.T) {
	l := NewLocalLocker()
	ctx := context.Background()

	release, err := l.Acquire(ctx, "auto-assign", time.Minute)
	require.NoError(t, err)

	_, err = l.Acquire(ctx, "auto-assign", time.Minute)
	assert.ErrorIs(t, err, ErrLocked)

	other, err := l.Acquire(ctx, "import", time.Minute)
	require.NoError(t, err)
	other()

	release()
	release()

	again, err := l.Acquire(ctx, "auto-assign", time.Minute)
	require.NoError(t, err)
	again()
}

func TestLocalLocker_Expiry(t *testing.T) {
	l := NewLocalLocker()
	now := time.Date(2026, 6, 1, 12, 0, 0, 0, time.UTC)
	l.now = func() time.Time { return now }
	ctx := context.Background()

	stale, err := l.Acquire(ctx, "k", time.Second)
	require.NoError(t, err)

	now = now.Add(2 * time.Second)
	fresh, err := l.Acquire(ctx, "k", time.Minute)
	require.NoError(t, err)

	// releasing the expired holder must not drop the new one
	stale()
	_, err = l.Acquire(ctx, "k", time.Minute)
	assert.ErrorIs(t, err, ErrLocked)
	fresh()
}

type fakeRedis struct {
	values  map[string]string
	setErr  error
	evalLog []string
}

func (f *fakeRedis) SetNX(_ context.Context, key string, value interface{}, _ time.Duration) *redis.BoolCmd {
	if f.setErr != nil {
		return redis.NewBoolResult(false, f.setErr)
	}
	if _, ok := f.values[key]; ok {
		return redis.NewBoolResult(false, nil)
	}
	f.values[key] = value.(string)
	return redis.NewBoolResult(true, nil)
}

func (f *fakeRedis) Eval(_ context.Context, _ string, keys []string, args ...interface{}) *redis.Cmd {
	f.evalLog = append(f.evalLog, keys[0])
	if f.values[keys[0]] == args[0].(string) {
		delete(f.values, keys[0])
		return redis.NewCmdResult(int64(1), nil)
	}
	return redis.NewCmdResult(int64(0), nil)
}

func TestRedisLocker(t *testing.T) {
	fake := &fakeRedis{values: map[string]string{}}
	l := NewRedisLocker(fake, zerolog.Nop())
	ctx := context.Background()

	release, err := l.Acquire(ctx, "auto-assign", time.Minute)
	require.NoError(t, err)
	assert.Contains(t, fake.values, "lock:auto-assign")

	_, err = l.Acquire(ctx, "auto-assign", time.Minute)
	assert.ErrorIs(t, err, ErrLocked)

	release()
	release()
	assert.NotContains(t, fake.values, "lock:auto-assign")
	assert.Len(t, fake.evalLog, 1)
}

func TestRedisLocker_SetError(t *testing.T) {
	fake := &fakeRedis{values: map[string]string{}, setErr: errors.New("connection refused")}
	l := NewRedisLocker(fake, zerolog.Nop())

	_, err := l.Acquire(context.Background(), "auto-assign", time.Minute)
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrLocked)
	assert.Contains(t, err.Error(), "connection refused")
}
