package auction

import (
	"time"

	"gavel/models"
)

// CountdownPhase 是倒數計時的階段
type CountdownPhase string

const (
	CountdownStartsIn     CountdownPhase = "starts-in"
	CountdownEndsIn       CountdownPhase = "ends-in"
	CountdownPausedEndsIn CountdownPhase = "paused-ends-in"
	CountdownEndedAgo     CountdownPhase = "ended-ago"
)

// Countdown 是隨用隨算的倒數投影，不落地儲存
// 它只服務讀取端的呈現；出價的時間閘門一律以提交當下的伺服器時鐘裁決
type Countdown struct {
	Phase CountdownPhase
	Delta time.Duration
}

// ComputeCountdown 是 (now, startAt, endAt, status) 的純函數
// cancelled 與 settled 都以 endAt 為基準呈現 ended-ago
func ComputeCountdown(now, startAt, endAt time.Time, status models.Status) Countdown {
	switch status {
	case models.StatusScheduled:
		return Countdown{Phase: CountdownStartsIn, Delta: clampDelta(startAt.Sub(now))}
	case models.StatusPaused:
		return Countdown{Phase: CountdownPausedEndsIn, Delta: clampDelta(endAt.Sub(now))}
	case models.StatusActive:
		// 排程器還沒掃到的過期拍賣也要呈現為已結束
		if !now.Before(endAt) {
			return Countdown{Phase: CountdownEndedAgo, Delta: now.Sub(endAt)}
		}
		return Countdown{Phase: CountdownEndsIn, Delta: endAt.Sub(now)}
	default:
		return Countdown{Phase: CountdownEndedAgo, Delta: clampDelta(now.Sub(endAt))}
	}
}

func clampDelta(d time.Duration) time.Duration {
	if d < 0 {
		return 0
	}
	return d
}
