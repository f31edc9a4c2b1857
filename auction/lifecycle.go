package auction

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/samber/lo"

	"gavel/models"
)

type lifecycleOptions struct {
	logger        *slog.Logger
	authorizer    IAuthorizer
	now           func() time.Time
	retryAttempts int
	retryDelay    time.Duration
}

type LifecycleOption func(*lifecycleOptions)

// WithLifecycleLogger 設置日誌記錄器
func WithLifecycleLogger(logger *slog.Logger) LifecycleOption {
	return func(o *lifecycleOptions) {
		o.logger = logger
	}
}

// WithLifecycleAuthorizer 設置授權檢查（默認只允許賣家本人）
func WithLifecycleAuthorizer(authorizer IAuthorizer) LifecycleOption {
	return func(o *lifecycleOptions) {
		o.authorizer = authorizer
	}
}

// WithLifecycleClock 設置時鐘（主要用於測試）
func WithLifecycleClock(now func() time.Time) LifecycleOption {
	return func(o *lifecycleOptions) {
		o.now = now
	}
}

// WithLifecycleRetry 設置版本競爭的重試額度與延遲
func WithLifecycleRetry(attempts int, delay time.Duration) LifecycleOption {
	return func(o *lifecycleOptions) {
		o.retryAttempts = attempts
		o.retryDelay = delay
	}
}

// LifecycleController 驗證並套用賣家發起的狀態轉移
// 所有轉移都走 ApplyTransition，因此賣家的 cancel 與進行中的出價之間的競爭
// 會由版本權杖決定性地裁決：輸家重讀後看到新狀態，不會有出價被悄悄吞掉
type LifecycleController struct {
	store   IAuctionStore
	sink    IEventSink
	logger  *slog.Logger
	options lifecycleOptions
}

// NewLifecycleController 建立生命週期控制器
func NewLifecycleController(store IAuctionStore, sink IEventSink, opts ...LifecycleOption) (*LifecycleController, error) {
	if store == nil {
		return nil, errors.New("auction store cannot be nil")
	}
	if sink == nil {
		return nil, errors.New("event sink cannot be nil")
	}

	// 默認選項
	options := lifecycleOptions{
		logger:        slog.Default(),
		authorizer:    NewSellerAuthorizer(),
		now:           time.Now,
		retryAttempts: 5,
		retryDelay:    20 * time.Millisecond,
	}

	// 應用自定義選項
	for _, opt := range opts {
		opt(&options)
	}

	return &LifecycleController{
		store:   store,
		sink:    sink,
		logger:  options.logger.With(slog.String("caller", "LifecycleController")),
		options: options,
	}, nil
}

// ActivateNow 讓 scheduled 的拍賣跳過排程器立即開賣
// 開賣時間早於原訂 startAt 時會把 startAt 一併拉到現在，否則出價窗口不會真正打開
func (c *LifecycleController) ActivateNow(ctx context.Context, callerID, auctionID uuid.UUID) (*models.Auction, error) {
	return c.transition(ctx, callerID, auctionID, "activate-now",
		[]models.Status{models.StatusScheduled}, models.StatusActive,
		func(a *models.Auction, now time.Time) {
			if now.Before(a.StartAt) {
				a.StartAt = now
			}
		})
}

// Pause 暫停進行中的拍賣，暫停期間的出價一律以 StateError 拒絕
func (c *LifecycleController) Pause(ctx context.Context, callerID, auctionID uuid.UUID) (*models.Auction, error) {
	return c.transition(ctx, callerID, auctionID, "pause",
		[]models.Status{models.StatusActive}, models.StatusPaused, nil)
}

// Resume 讓暫停中的拍賣恢復受理出價
func (c *LifecycleController) Resume(ctx context.Context, callerID, auctionID uuid.UUID) (*models.Auction, error) {
	return c.transition(ctx, callerID, auctionID, "resume",
		[]models.Status{models.StatusPaused}, models.StatusActive, nil)
}

// Cancel 取消拍賣，任何非終態都可以取消；取消一旦贏得版本競爭便立即生效
func (c *LifecycleController) Cancel(ctx context.Context, callerID, auctionID uuid.UUID) (*models.Auction, error) {
	return c.transition(ctx, callerID, auctionID, "cancel",
		[]models.Status{models.StatusScheduled, models.StatusActive, models.StatusPaused}, models.StatusCancelled, nil)
}

// Extend 把進行中拍賣的 endAt 往後推指定的分鐘數
// 只會往後、絕不縮短，因此不存在「已受理的出價被事後縮短的窗口否定」的競爭
func (c *LifecycleController) Extend(ctx context.Context, callerID, auctionID uuid.UUID, minutes uint32) (*models.Auction, error) {
	if minutes == 0 {
		return nil, fmt.Errorf("%w: extend minutes must be positive", ErrValidation)
	}

	var out *models.Auction
	err := withRetry(ctx, c.options.retryAttempts, c.options.retryDelay, func() error {
		current, err := c.store.Get(ctx, auctionID)
		if err != nil {
			return err
		}
		// 授權檢查先於任何寫入
		if !c.options.authorizer.CanManage(callerID, current) {
			return fmt.Errorf("%w: caller %s is not the seller", ErrAuthorization, callerID)
		}
		if current.Status != models.StatusActive {
			return fmt.Errorf("%w: cannot extend a %s auction", ErrState, current.Status)
		}

		updated := *current
		updated.EndAt = current.EndAt.Add(time.Duration(minutes) * time.Minute)
		updated.ExtensionCount = current.ExtensionCount + 1
		if err := c.store.ApplyTransition(ctx, &updated, current.Version, nil); err != nil {
			return err
		}
		out = &updated
		return nil
	})
	if err != nil {
		return nil, err
	}

	now := c.options.now()
	endAt := out.EndAt
	c.sink.Notify(Event{
		Type:       EventExtended,
		AuctionID:  auctionID,
		Status:     out.Status,
		EndAt:      &endAt,
		OccurredAt: now,
	})
	c.logger.Info("auction extended",
		slog.String("auctionID", auctionID.String()),
		slog.Uint64("minutes", uint64(minutes)),
		slog.Time("endAt", out.EndAt),
	)
	return out, nil
}

// transition 是賣家指令的共用骨架：讀取、授權、查轉移表、CAS 提交（有界重試）
// allowedFrom 比轉移表更嚴格：resume 只接受 paused，即使 scheduled→active 這條邊存在，
// 對 scheduled 的拍賣呼叫 resume 仍然是 StateError
func (c *LifecycleController) transition(
	ctx context.Context,
	callerID, auctionID uuid.UUID,
	verb string,
	allowedFrom []models.Status,
	to models.Status,
	mutate func(*models.Auction, time.Time),
) (*models.Auction, error) {
	var out *models.Auction
	err := withRetry(ctx, c.options.retryAttempts, c.options.retryDelay, func() error {
		current, err := c.store.Get(ctx, auctionID)
		if err != nil {
			return err
		}
		// 授權檢查先於任何寫入
		if !c.options.authorizer.CanManage(callerID, current) {
			return fmt.Errorf("%w: caller %s is not the seller", ErrAuthorization, callerID)
		}
		if !lo.Contains(allowedFrom, current.Status) || !CanTransition(current.Status, to) {
			return fmt.Errorf("%w: cannot %s a %s auction", ErrState, verb, current.Status)
		}

		updated := *current
		updated.Status = to
		if mutate != nil {
			mutate(&updated, c.options.now())
		}
		if err := c.store.ApplyTransition(ctx, &updated, current.Version, nil); err != nil {
			return err
		}
		out = &updated
		return nil
	})
	if err != nil {
		return nil, err
	}

	c.sink.Notify(Event{
		Type:       EventStatusChanged,
		AuctionID:  auctionID,
		Status:     to,
		OccurredAt: c.options.now(),
	})
	c.logger.Info("lifecycle transition applied",
		slog.String("auctionID", auctionID.String()),
		slog.String("verb", verb),
		slog.String("to", string(to)),
	)
	return out, nil
}
