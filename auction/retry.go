package auction

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// withRetry 以固定的短暫延遲重試 fn，只針對 ErrVersionConflict 重試：
// 版本競爭的輸家會在下一輪重新讀取最新狀態，其餘錯誤一律直接回傳
// 重試額度耗盡時以 ErrTransient 呈現，讓呼叫端自行決定是否重新發起整個操作
func withRetry(ctx context.Context, attempts int, delay time.Duration, fn func() error) error {
	const op = "withRetry"
	var err error
	for i := 0; i < attempts; i++ {
		if err = fn(); err == nil || !errors.Is(err, ErrVersionConflict) {
			return err
		}
		if i == attempts-1 {
			break
		}
		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
	}
	return fmt.Errorf("[%s] retry budget exhausted after %d attempts, last=%v, err=%w", op, attempts, err, ErrTransient)
}
