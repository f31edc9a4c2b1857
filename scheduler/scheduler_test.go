package scheduler

import (
	"context"
	"io"
	"log"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"gavel/adapters/memory"
	"gavel/auction"
	"gavel/models"
)

func init() {
	// 將日誌輸出重定向到io.Discard
	log.SetOutput(io.Discard)
	slog.SetDefault(slog.New(slog.NewTextHandler(io.Discard, nil)))
}

var baseTime = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

type recorderSink struct {
	mu     sync.Mutex
	events []auction.Event
}

func (r *recorderSink) Notify(event auction.Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, event)
}

func (r *recorderSink) Events() []auction.Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]auction.Event, len(r.events))
	copy(out, r.events)
	return out
}

func seedAuction(store *memory.Store, status models.Status, startAt, endAt time.Time) uuid.UUID {
	id := uuid.New()
	store.Seed(models.Auction{
		ID:           id,
		ItemID:       uuid.New(),
		SellerID:     uuid.New(),
		Status:       status,
		StartPrice:   decimal.NewFromInt(100),
		MinIncrement: decimal.NewFromInt(10),
		StartAt:      startAt,
		EndAt:        endAt,
	})
	return id
}

func TestScheduler_AppliesDueTransitions(t *testing.T) {
	defer goleak.VerifyNone(t)
	store := memory.NewStore()
	sink := &recorderSink{}

	dueStart := seedAuction(store, models.StatusScheduled, baseTime.Add(-time.Minute), baseTime.Add(time.Hour))
	dueEnd := seedAuction(store, models.StatusActive, baseTime.Add(-2*time.Hour), baseTime.Add(-time.Minute))
	notDue := seedAuction(store, models.StatusScheduled, baseTime.Add(time.Hour), baseTime.Add(2*time.Hour))
	paused := seedAuction(store, models.StatusPaused, baseTime.Add(-2*time.Hour), baseTime.Add(-time.Minute))

	sched, err := NewScheduler(store, sink,
		WithInterval(5*time.Millisecond),
		WithClock(func() time.Time { return baseTime }),
	)
	require.NoError(t, err)

	sched.Start()
	assert.Eventually(t, func() bool {
		started, err := store.Get(context.Background(), dueStart)
		if err != nil || started.Status != models.StatusActive {
			return false
		}
		ended, err := store.Get(context.Background(), dueEnd)
		return err == nil && ended.Status == models.StatusEnded
	}, time.Second, 10*time.Millisecond)
	sched.Close()

	// 未到期與暫停中的拍賣不受影響
	current, err := store.Get(context.Background(), notDue)
	require.NoError(t, err)
	assert.Equal(t, models.StatusScheduled, current.Status)
	current, err = store.Get(context.Background(), paused)
	require.NoError(t, err)
	assert.Equal(t, models.StatusPaused, current.Status)

	// 每筆轉移各發出一次事件，level-triggered 掃描不會重複套用
	events := sink.Events()
	assert.Len(t, events, 2)
	for _, event := range events {
		assert.Equal(t, auction.EventStatusChanged, event.Type)
	}
}

func TestScheduler_StartCloseIdempotent(t *testing.T) {
	defer goleak.VerifyNone(t)
	sched, err := NewScheduler(memory.NewStore(), &recorderSink{}, WithInterval(5*time.Millisecond))
	require.NoError(t, err)

	sched.Start()
	sched.Start() // no-op
	time.Sleep(20 * time.Millisecond)
	sched.Close()
	sched.Close() // no-op
}

type fakeLock struct {
	mu       sync.Mutex
	locked   bool
	unlocked bool
}

func (l *fakeLock) Lock(ctx context.Context) (context.Context, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.locked = true
	return ctx, nil
}

func (l *fakeLock) Unlock() (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.unlocked = true
	return true, nil
}

func (l *fakeLock) Valid() bool { return true }

func TestScheduler_LeaderLockLifecycle(t *testing.T) {
	defer goleak.VerifyNone(t)
	lock := &fakeLock{}
	sched, err := NewScheduler(memory.NewStore(), &recorderSink{},
		WithInterval(5*time.Millisecond),
		WithLeaderLock(lock),
	)
	require.NoError(t, err)

	sched.Start()
	assert.Eventually(t, func() bool {
		lock.mu.Lock()
		defer lock.mu.Unlock()
		return lock.locked
	}, time.Second, 5*time.Millisecond)
	sched.Close()

	lock.mu.Lock()
	defer lock.mu.Unlock()
	assert.True(t, lock.unlocked)
}

func TestScheduler_SkipsLostRaces(t *testing.T) {
	defer goleak.VerifyNone(t)
	store := memory.NewStore()
	sink := &recorderSink{}
	dueEnd := seedAuction(store, models.StatusActive, baseTime.Add(-2*time.Hour), baseTime.Add(-time.Minute))

	// 模擬賣家在掃描與提交之間搶先取消
	racing := &racingStore{Store: store, auctionID: dueEnd}
	sched, err := NewScheduler(racing, sink,
		WithInterval(5*time.Millisecond),
		WithClock(func() time.Time { return baseTime }),
	)
	require.NoError(t, err)

	sched.Start()
	assert.Eventually(t, func() bool {
		current, err := store.Get(context.Background(), dueEnd)
		return err == nil && current.Status == models.StatusCancelled
	}, time.Second, 10*time.Millisecond)
	sched.Close()

	// 取消贏得競爭後，這場拍賣已是終態，排程器不再碰它、也不代發事件
	current, err := store.Get(context.Background(), dueEnd)
	require.NoError(t, err)
	assert.Equal(t, models.StatusCancelled, current.Status)
	assert.Empty(t, sink.Events())
}

// racingStore 在排程器讀到到期清單之後、提交之前插入一筆取消
type racingStore struct {
	*memory.Store
	auctionID uuid.UUID
	once      sync.Once
}

func (s *racingStore) ListDueTransitions(ctx context.Context, now time.Time, limit int) ([]models.Auction, error) {
	due, err := s.Store.ListDueTransitions(ctx, now, limit)
	if err != nil {
		return nil, err
	}
	s.once.Do(func() {
		current, err := s.Store.Get(ctx, s.auctionID)
		if err != nil {
			return
		}
		updated := *current
		updated.Status = models.StatusCancelled
		_ = s.Store.ApplyTransition(ctx, &updated, current.Version, nil)
	})
	return due, nil
}
