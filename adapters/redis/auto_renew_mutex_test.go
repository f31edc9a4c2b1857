package redis

import (
	"context"
	"testing"
	"time"

	"github.com/go-redsync/redsync/v4"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

const leaderKey = "gavel:scheduler-leader"

func TestNewAutoRenewMutex(t *testing.T) {
	tests := []struct {
		name string
		key  string
		opts []AutoRenewMutexOption
	}{
		{
			name: "default options",
			key:  leaderKey,
		},
		{
			name: "custom lease shape",
			key:  leaderKey,
			opts: []AutoRenewMutexOption{
				WithAutoRenewMutexExpiry(5 * time.Second),
				WithAutoRenewMutexRenewInterval(1 * time.Second),
				WithAutoRenewMutexRetryDelay(100 * time.Millisecond),
				WithAutoRenewMutexSkipLockError(true),
			},
		},
		{
			name: "zero expiry",
			key:  leaderKey,
			opts: []AutoRenewMutexOption{
				WithAutoRenewMutexExpiry(0),
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			defer goleak.VerifyNone(t)
			client, _, cleanup := setupTest(t)
			defer cleanup()

			mutex := NewAutoRenewMutex(client, tt.key, tt.opts...)
			require.NotNil(t, mutex)
		})
	}
}

func TestAutoRenewMutex_Lock(t *testing.T) {
	t.Run("wins the lease", func(t *testing.T) {
		defer goleak.VerifyNone(t)
		client, mock, cleanup := setupTest(t)
		defer cleanup()

		mock.Regexp().ExpectSetNX(leaderKey, ".*", 15*time.Second).SetVal(true)
		mock.Regexp().ExpectEvalSha(".*", []string{leaderKey}, []string{".*"}).SetVal(int64(1))

		mutex := NewAutoRenewMutex(client, leaderKey)
		leaseCtx, err := mutex.Lock(context.Background())
		assert.NoError(t, err)
		assert.NotNil(t, leaseCtx)

		// 釋放租約後，綁定的 context 必須被取消
		ok, err := mutex.Unlock()
		assert.NoError(t, err)
		assert.True(t, ok)

		select {
		case <-leaseCtx.Done():
		case <-time.After(100 * time.Millisecond):
			t.Error("lease context was not cancelled after unlock")
		}
	})

	t.Run("cancelled context stops the campaign", func(t *testing.T) {
		defer goleak.VerifyNone(t)
		client, _, cleanup := setupTest(t)
		defer cleanup()

		mutex := NewAutoRenewMutex(client, leaderKey)
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		leaseCtx, err := mutex.Lock(ctx)
		assert.ErrorIs(t, err, context.Canceled)
		assert.Nil(t, leaseCtx)
	})

	t.Run("redis error with skip enabled keeps campaigning", func(t *testing.T) {
		defer goleak.VerifyNone(t)
		client, mock, cleanup := setupTest(t)
		defer cleanup()

		mock.Regexp().ExpectSetNX(leaderKey, ".*", 15*time.Second).SetErr(redis.ErrClosed)
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()

		mutex := NewAutoRenewMutex(client, leaderKey, WithAutoRenewMutexSkipLockError(true))
		leaseCtx, err := mutex.Lock(ctx)
		assert.ErrorIs(t, err, context.DeadlineExceeded)
		assert.Nil(t, leaseCtx)
	})

	t.Run("redis error with skip disabled gives up", func(t *testing.T) {
		defer goleak.VerifyNone(t)
		client, mock, cleanup := setupTest(t)
		defer cleanup()

		mock.Regexp().ExpectSetNX(leaderKey, ".*", 15*time.Second).SetErr(redis.ErrClosed)

		mutex := NewAutoRenewMutex(client, leaderKey)
		leaseCtx, err := mutex.Lock(context.Background())
		assert.Error(t, err)
		assert.ErrorIs(t, err, redis.ErrClosed)
		assert.Nil(t, leaseCtx)
	})

	t.Run("held lease makes the rival wait", func(t *testing.T) {
		defer goleak.VerifyNone(t)
		client, mock, cleanup := setupTest(t)
		defer cleanup()

		// 第一次競選成功
		mock.Regexp().ExpectSetNX(leaderKey, ".*", 15*time.Second).SetVal(true)
		// 第二次競選輸給持有者
		mock.Regexp().ExpectSetNX(leaderKey, ".*", 15*time.Second).SetVal(false)
		mock.Regexp().ExpectEvalSha(".*", []string{leaderKey}, []string{".*"}).SetVal(int64(0))
		// 釋放
		mock.Regexp().ExpectEvalSha(".*", []string{leaderKey}, []string{".*"}).SetVal(int64(1))

		mutex := NewAutoRenewMutex(client, leaderKey, WithAutoRenewMutexRetryDelay(time.Second))
		leaseCtx, err := mutex.Lock(context.Background())
		require.NoError(t, err)
		assert.NotNil(t, leaseCtx)

		ctx, cancel := context.WithTimeout(context.Background(), 500*time.Millisecond)
		defer cancel()
		leaseCtx, err = mutex.Lock(ctx)
		assert.Error(t, err)
		assert.ErrorIs(t, err, context.DeadlineExceeded)
		assert.Nil(t, leaseCtx)

		ok, err := mutex.Unlock()
		assert.NoError(t, err)
		assert.True(t, ok)
	})
}

func TestAutoRenewMutex_AutoRenew(t *testing.T) {
	t.Run("renewal keeps the lease alive", func(t *testing.T) {
		defer goleak.VerifyNone(t)
		client, mock, cleanup := setupTest(t)
		defer cleanup()

		// 初始競選
		mock.Regexp().ExpectSetNX(leaderKey, ".*", 2*time.Second).SetVal(true)
		// 兩次續期
		mock.Regexp().ExpectEvalSha(".*", []string{leaderKey}, []string{".*", "2000"}).SetVal(int64(1))
		mock.Regexp().ExpectEvalSha(".*", []string{leaderKey}, []string{".*", "2000"}).SetVal(int64(1))
		// 釋放
		mock.Regexp().ExpectEvalSha(".*", []string{leaderKey}, []string{".*"}).SetVal(int64(1))

		mutex := NewAutoRenewMutex(client, leaderKey,
			WithAutoRenewMutexExpiry(2*time.Second),
			WithAutoRenewMutexRenewInterval(100*time.Millisecond))

		leaseCtx, err := mutex.Lock(context.Background())
		require.NoError(t, err)
		assert.NotNil(t, leaseCtx)

		time.Sleep(250 * time.Millisecond)
		assert.True(t, mutex.Valid())

		ok, err := mutex.Unlock()
		assert.NoError(t, err)
		assert.True(t, ok)

		select {
		case <-leaseCtx.Done():
		case <-time.After(100 * time.Millisecond):
			t.Error("lease context was not cancelled after unlock")
		}
	})

	t.Run("failed renewal drops the lease", func(t *testing.T) {
		defer goleak.VerifyNone(t)
		client, mock, cleanup := setupTest(t)
		defer cleanup()

		// 初始競選成功
		mock.Regexp().ExpectSetNX(leaderKey, ".*", 2*time.Second).SetVal(true)
		// 續期失敗
		mock.Regexp().ExpectEvalSha(".*", []string{leaderKey}, []string{".*", "2000"}).SetErr(redis.ErrClosed)
		// 釋放時租約已經過期
		mock.Regexp().ExpectEvalSha(".*", []string{leaderKey}, []string{".*"}).SetVal(int64(-1))

		mutex := NewAutoRenewMutex(client, leaderKey,
			WithAutoRenewMutexExpiry(2*time.Second),
			WithAutoRenewMutexRenewInterval(100*time.Millisecond))

		leaseCtx, err := mutex.Lock(context.Background())
		require.NoError(t, err)
		assert.NotNil(t, leaseCtx)

		// 續期失敗後 Valid 轉為 false，排程器據此讓出掃描權
		time.Sleep(150 * time.Millisecond)
		assert.False(t, mutex.Valid())

		ok, err := mutex.Unlock()
		assert.ErrorIs(t, err, redsync.ErrLockAlreadyExpired)
		assert.False(t, ok)

		select {
		case <-leaseCtx.Done():
		case <-time.After(100 * time.Millisecond):
			t.Error("lease context was not cancelled after unlock")
		}
	})
}

func TestAutoRenewMutex_Unlock(t *testing.T) {
	t.Run("unlock without holding the lease", func(t *testing.T) {
		defer goleak.VerifyNone(t)
		client, mock, cleanup := setupTest(t)
		defer cleanup()

		mock.Regexp().ExpectEvalSha(".*", []string{leaderKey}, []string{".*"}).SetVal(int64(-1))

		mutex := NewAutoRenewMutex(client, leaderKey)
		ok, err := mutex.Unlock()
		assert.Error(t, err)
		assert.ErrorIs(t, err, redsync.ErrLockAlreadyExpired)
		assert.False(t, ok)
	})

	t.Run("double unlock", func(t *testing.T) {
		defer goleak.VerifyNone(t)
		client, mock, cleanup := setupTest(t)
		defer cleanup()

		mock.Regexp().ExpectSetNX(leaderKey, ".*", 15*time.Second).SetVal(true)
		mock.Regexp().ExpectEvalSha(".*", []string{leaderKey}, []string{".*"}).SetVal(int64(1))
		mock.Regexp().ExpectEvalSha(".*", []string{leaderKey}, []string{".*"}).SetVal(int64(-1))

		mutex := NewAutoRenewMutex(client, leaderKey)
		leaseCtx, err := mutex.Lock(context.Background())
		require.NoError(t, err)
		assert.NotNil(t, leaseCtx)

		ok, err := mutex.Unlock()
		assert.NoError(t, err)
		assert.True(t, ok)

		select {
		case <-leaseCtx.Done():
		case <-time.After(100 * time.Millisecond):
			t.Error("lease context was not cancelled after unlock")
		}

		ok, err = mutex.Unlock()
		assert.Error(t, err)
		assert.ErrorIs(t, err, redsync.ErrLockAlreadyExpired)
		assert.False(t, ok)
	})
}

func TestAutoRenewMutex_Valid(t *testing.T) {
	t.Run("tracks the lease across its lifecycle", func(t *testing.T) {
		defer goleak.VerifyNone(t)
		client, mock, cleanup := setupTest(t)
		defer cleanup()

		mock.Regexp().ExpectSetNX(leaderKey, ".*", 2*time.Second).SetVal(true)
		mock.Regexp().ExpectEvalSha(".*", []string{leaderKey}, []string{".*"}).SetVal(int64(1))

		mutex := NewAutoRenewMutex(client, leaderKey,
			WithAutoRenewMutexExpiry(2*time.Second))

		// 還沒競選
		assert.False(t, mutex.Valid())

		// 持有租約
		leaseCtx, err := mutex.Lock(context.Background())
		require.NoError(t, err)
		assert.NotNil(t, leaseCtx)
		assert.True(t, mutex.Valid())

		// 釋放後
		ok, err := mutex.Unlock()
		assert.NoError(t, err)
		assert.True(t, ok)
		assert.False(t, mutex.Valid())

		select {
		case <-leaseCtx.Done():
		case <-time.After(100 * time.Millisecond):
			t.Error("lease context was not cancelled after unlock")
		}
	})
}
