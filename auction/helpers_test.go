package auction_test

import (
	"io"
	"log"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"gavel/adapters/memory"
	"gavel/auction"
	"gavel/models"
)

func init() {
	// 將日誌輸出重定向到io.Discard
	log.SetOutput(io.Discard)
	slog.SetDefault(slog.New(slog.NewTextHandler(io.Discard, nil)))
}

var (
	testSellerID = uuid.MustParse("0198b6a0-0000-7000-8000-000000000001")
	testBidderID = uuid.MustParse("0198b6a0-0000-7000-8000-000000000002")
	testOtherID  = uuid.MustParse("0198b6a0-0000-7000-8000-000000000003")
	testBaseTime = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
)

func d(v int64) decimal.Decimal {
	return decimal.NewFromInt(v)
}

// newTestAuction 建立一場 active、窗口 [base-1h, base+1h)、起標 100、加價幅度 10 的拍賣
func newTestAuction(status models.Status) models.Auction {
	return models.Auction{
		ID:           uuid.MustParse("0198b6a0-0000-7000-8000-0000000000aa"),
		ItemID:       uuid.MustParse("0198b6a0-0000-7000-8000-0000000000bb"),
		SellerID:     testSellerID,
		Status:       status,
		StartPrice:   d(100),
		ReservePrice: d(500),
		MinIncrement: d(10),
		StartAt:      testBaseTime.Add(-time.Hour),
		EndAt:        testBaseTime.Add(time.Hour),
	}
}

// recorderSink 收集引擎發出的事件
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

type engineFixture struct {
	store *memory.Store
	sink  *recorderSink
	now   time.Time
}

func fixedClock(f *engineFixture) func() time.Time {
	return func() time.Time { return f.now }
}

func newAdmissionFixture(status models.Status) (*auction.AdmissionEngine, *engineFixture) {
	fixture := &engineFixture{
		store: memory.NewStore(),
		sink:  &recorderSink{},
		now:   testBaseTime,
	}
	fixture.store.Seed(newTestAuction(status))
	engine, err := auction.NewAdmissionEngine(fixture.store, memory.NewLedger(0), fixture.sink,
		auction.WithAdmissionClock(fixedClock(fixture)),
		auction.WithAdmissionRetry(5, time.Millisecond),
	)
	if err != nil {
		panic(err)
	}
	return engine, fixture
}

func newLifecycleFixture(status models.Status) (*auction.LifecycleController, *engineFixture) {
	fixture := &engineFixture{
		store: memory.NewStore(),
		sink:  &recorderSink{},
		now:   testBaseTime,
	}
	fixture.store.Seed(newTestAuction(status))
	controller, err := auction.NewLifecycleController(fixture.store, fixture.sink,
		auction.WithLifecycleClock(fixedClock(fixture)),
		auction.WithLifecycleRetry(5, time.Millisecond),
	)
	if err != nil {
		panic(err)
	}
	return controller, fixture
}

func bidRequest(key string, amount int64) auction.BidRequest {
	return auction.BidRequest{
		AuctionID:      newTestAuction(models.StatusActive).ID,
		BidderID:       testBidderID,
		Amount:         d(amount),
		IdempotencyKey: key,
	}
}
