package redis

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/go-redsync/redsync/v4"
	"github.com/go-redsync/redsync/v4/redis/goredis/v9"
	"github.com/redis/go-redis/v9"
)

// AutoRenewMutex 是帶自動續期的分散式租約，基於 redsync
// 排程器多副本部署時以它選出唯一的掃描者：
// 持有者在背景續期，副本當掉後租約自然過期，由其他副本接手
type AutoRenewMutex struct {
	*redsync.Mutex
	cancel   context.CancelFunc
	renewing bool
	mu       sync.Mutex
	wg       sync.WaitGroup
	options  autoRenewMutexOptions
}

type autoRenewMutexOptions struct {
	renewInterval time.Duration
	retryDelay    time.Duration
	expiry        time.Duration
	skipLockError bool
}

type AutoRenewMutexOption func(*autoRenewMutexOptions)

// WithAutoRenewMutexRenewInterval 設置自動續期間隔
func WithAutoRenewMutexRenewInterval(d time.Duration) AutoRenewMutexOption {
	return func(o *autoRenewMutexOptions) {
		o.renewInterval = d
	}
}

// WithAutoRenewMutexRetryDelay 設置搶租約失敗後的重試延遲
func WithAutoRenewMutexRetryDelay(d time.Duration) AutoRenewMutexOption {
	return func(o *autoRenewMutexOptions) {
		o.retryDelay = d
	}
}

// WithAutoRenewMutexExpiry 設置租約長度
func WithAutoRenewMutexExpiry(d time.Duration) AutoRenewMutexOption {
	return func(o *autoRenewMutexOptions) {
		o.expiry = d
	}
}

// WithAutoRenewMutexSkipLockError 設置是否忽略搶租約時的 Redis 錯誤
// 排程器的候選者通常打開這個選項：Redis 短暫不可用時繼續重試，而不是放棄競選
func WithAutoRenewMutexSkipLockError(skip bool) AutoRenewMutexOption {
	return func(o *autoRenewMutexOptions) {
		o.skipLockError = skip
	}
}

// NewAutoRenewMutex 建立自動續期的分散式租約
func NewAutoRenewMutex(client *redis.Client, key string, opts ...AutoRenewMutexOption) IAutoRenewMutex {
	// 默認選項：秒級租約配合排程器的掃描節奏，當掉的持有者在幾秒內被取代
	options := autoRenewMutexOptions{
		expiry:        15 * time.Second,
		retryDelay:    500 * time.Millisecond,
		renewInterval: 0, // 未設置時取租約長度的 1/3
		skipLockError: false,
	}

	// 應用自定義選項
	for _, opt := range opts {
		opt(&options)
	}

	if options.renewInterval <= 0 {
		options.renewInterval = options.expiry / 3
	}

	rs := redsync.New(goredis.NewPool(client))
	mutex := rs.NewMutex(
		key,
		redsync.WithExpiry(options.expiry),
		redsync.WithTries(1),
		redsync.WithRetryDelay(options.retryDelay),
	)

	return &AutoRenewMutex{
		Mutex:   mutex,
		options: options,
	}
}

// Lock 競選租約，成功後啟動背景續期
// 回傳的 context 綁定租約的存續：租約釋放或續期失敗時被取消
func (m *AutoRenewMutex) Lock(ctx context.Context) (context.Context, error) {
	for {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}

		err := m.Mutex.LockContext(ctx)
		if err == nil {
			leaseCtx, cancel := context.WithCancel(ctx)
			m.cancel = cancel
			m.startAutoRenew(leaseCtx)
			return leaseCtx, nil
		}

		// Redis 通訊錯誤視設定決定是放棄還是繼續重試；租約被別人持有時一律重試
		var commErr *redsync.RedisError
		if !m.options.skipLockError && errors.As(err, &commErr) {
			return nil, fmt.Errorf("fail to acquire lease, err=%w", err)
		}

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(m.options.retryDelay):
		}
	}
}

// Unlock 停止續期並釋放租約
func (m *AutoRenewMutex) Unlock() (bool, error) {
	m.stopAutoRenew()
	m.wg.Wait()
	return m.Mutex.Unlock()
}

// Valid 檢查租約是否仍然有效：續期迴圈還活著，而且還沒過期
func (m *AutoRenewMutex) Valid() bool {
	return time.Now().Before(m.Mutex.Until()) && m.renewing
}

func (m *AutoRenewMutex) startAutoRenew(ctx context.Context) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.renewing {
		return
	}

	m.renewing = true
	m.wg.Add(1)
	go func() {
		defer m.wg.Done()
		ticker := time.NewTicker(m.options.renewInterval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				// 續期失敗代表租約已經丟了，停止續期讓 Valid 轉為 false
				success, err := m.Mutex.Extend()
				if err != nil || !success {
					m.stopAutoRenew()
					return
				}
			}
		}
	}()
}

func (m *AutoRenewMutex) stopAutoRenew() {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.renewing {
		return
	}

	m.renewing = false
	if m.cancel != nil {
		m.cancel()
	}
}
