package scheduler

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"gavel/auction"
	"gavel/models"
)

// ILeaderLock 是排程器的分散式租約：多副本部署時只有持有租約的副本掃描
// 租約只是效率手段，不是正確性的前提：重複掃描會被版本權杖裁決掉
type ILeaderLock interface {
	Lock(ctx context.Context) (context.Context, error)
	Unlock() (bool, error)
	Valid() bool
}

type schedulerOptions struct {
	logger    *slog.Logger
	interval  time.Duration
	batchSize int
	leader    ILeaderLock
	now       func() time.Time
}

type Option func(*schedulerOptions)

// WithLogger 設置日誌記錄器
func WithLogger(logger *slog.Logger) Option {
	return func(o *schedulerOptions) {
		o.logger = logger
	}
}

// WithInterval 設置掃描間隔
func WithInterval(d time.Duration) Option {
	return func(o *schedulerOptions) {
		o.interval = d
	}
}

// WithBatchSize 設置單次掃描處理的上限
func WithBatchSize(n int) Option {
	return func(o *schedulerOptions) {
		o.batchSize = n
	}
}

// WithLeaderLock 設置分散式租約，未設置時排程器假設自己是唯一副本
func WithLeaderLock(lock ILeaderLock) Option {
	return func(o *schedulerOptions) {
		o.leader = lock
	}
}

// WithClock 設置時鐘（主要用於測試）
func WithClock(now func() time.Time) Option {
	return func(o *schedulerOptions) {
		o.now = now
	}
}

// Scheduler 驅動時間觸發的狀態轉移：
// scheduled 且 startAt 已到 → active；active 且 endAt 已到 → ended
// 掃描是 level-triggered 的：錯過的 tick 或當機重啟後，下一輪掃描自然補上，
// 不依賴任何預先註冊的 per-auction 計時器
type Scheduler struct {
	store      auction.IAuctionStore
	sink       auction.IEventSink
	cancelFunc context.CancelFunc
	wg         sync.WaitGroup
	closed     bool
	logger     *slog.Logger
	options    schedulerOptions
}

// NewScheduler 建立排程器
func NewScheduler(store auction.IAuctionStore, sink auction.IEventSink, opts ...Option) (*Scheduler, error) {
	if store == nil {
		return nil, errors.New("auction store cannot be nil")
	}
	if sink == nil {
		return nil, errors.New("event sink cannot be nil")
	}

	// 默認選項
	options := schedulerOptions{
		logger:    slog.Default(),
		interval:  time.Second,
		batchSize: 256,
		now:       time.Now,
	}

	// 應用自定義選項
	for _, opt := range opts {
		opt(&options)
	}

	return &Scheduler{
		store:   store,
		closed:  true,
		sink:    sink,
		logger:  options.logger.With(slog.String("caller", "Scheduler")),
		options: options,
	}, nil
}

func (s *Scheduler) Start() {
	if !s.closed {
		return
	}
	ctx, cancel := context.WithCancel(context.Background())
	s.cancelFunc = cancel
	s.closed = false
	s.logger.Info("starting deadline scheduler")

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		defer s.logger.Info("scheduler goroutine stopped")

		if s.options.leader != nil {
			lockCtx, err := s.options.leader.Lock(ctx)
			if err != nil {
				if !errors.Is(err, context.Canceled) {
					s.logger.Error("fail to acquire leader lease", slog.Any("error", err))
				}
				return
			}
			defer s.options.leader.Unlock()
			ctx = lockCtx
		}

		ticker := time.NewTicker(s.options.interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				s.tick(ctx)
			}
		}
	}()
}

func (s *Scheduler) Close() {
	if s.closed {
		return
	}
	s.logger.Info("closing deadline scheduler")
	s.closed = true
	s.cancelFunc()
	s.wg.Wait()
	s.logger.Info("deadline scheduler closed")
}

// tick 掃描所有到期的拍賣並逐筆套用轉移
// 與賣家指令或出價的版本競爭輸掉時只記錄並跳過：這一輪沒轉成的，下一輪會重新評估
func (s *Scheduler) tick(ctx context.Context) {
	now := s.options.now()
	due, err := s.store.ListDueTransitions(ctx, now, s.options.batchSize)
	if err != nil {
		if !errors.Is(err, context.Canceled) {
			s.logger.Error("fail to scan due auctions", slog.Any("error", err))
		}
		return
	}

	for i := range due {
		current := &due[i]
		var to models.Status
		switch {
		case current.Status == models.StatusScheduled && !current.StartAt.After(now):
			to = models.StatusActive
		case current.Status == models.StatusActive && !current.EndAt.After(now):
			to = models.StatusEnded
		default:
			continue
		}

		updated := *current
		updated.Status = to
		if err := s.store.ApplyTransition(ctx, &updated, current.Version, nil); err != nil {
			if errors.Is(err, auction.ErrVersionConflict) {
				// 競爭對手（出價、暫停、取消、延長）先改了這一列，下一輪重讀再裁決
				s.logger.Debug("lost transition race, will revisit",
					slog.String("auctionID", current.ID.String()))
				continue
			}
			if !errors.Is(err, context.Canceled) {
				s.logger.Error("fail to apply due transition",
					slog.String("auctionID", current.ID.String()), slog.Any("error", err))
			}
			continue
		}

		s.sink.Notify(auction.Event{
			Type:       auction.EventStatusChanged,
			AuctionID:  current.ID,
			Status:     to,
			OccurredAt: now,
		})
		s.logger.Info("due transition applied",
			slog.String("auctionID", current.ID.String()),
			slog.String("from", string(current.Status)),
			slog.String("to", string(to)),
		)
	}
}
