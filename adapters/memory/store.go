package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"gavel/auction"
	"gavel/models"
)

// Store 是 IAuctionStore 的記憶體實作，供測試與單機開發使用
// 與資料庫實作相同的語義：CAS 寫入、冪等鍵唯一、版本遞增全部在單一互斥鎖下成立
type Store struct {
	mu       sync.Mutex
	auctions map[uuid.UUID]*models.Auction
	bids     map[uuid.UUID][]models.Bid
	bidKeys  map[string]uuid.UUID
}

// NewStore 建立空的記憶體儲存
func NewStore() *Store {
	return &Store{
		auctions: make(map[uuid.UUID]*models.Auction),
		bids:     make(map[uuid.UUID][]models.Bid),
		bidKeys:  make(map[string]uuid.UUID),
	}
}

// Seed 直接放入一筆拍賣紀錄，僅供測試佈置初始狀態
func (s *Store) Seed(a models.Auction) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.auctions[a.ID] = cloneAuction(&a)
}

func (s *Store) Get(_ context.Context, auctionID uuid.UUID) (*models.Auction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	current, ok := s.auctions[auctionID]
	if !ok {
		return nil, fmt.Errorf("%w: auction %s", auction.ErrNotFound, auctionID)
	}
	return cloneAuction(current), nil
}

func (s *Store) ApplyTransition(_ context.Context, a *models.Auction, expectedVersion uint64, newBid *models.Bid) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	current, ok := s.auctions[a.ID]
	if !ok {
		return fmt.Errorf("%w: auction %s", auction.ErrNotFound, a.ID)
	}
	// 與資料庫相同的裁決順序：唯一索引先於版本檢查
	// 同鍵的重複提交即使帶著過期的版本號，也要回報 ErrDuplicateBid 讓引擎走重播路徑
	if newBid != nil {
		if _, exists := s.bidKeys[bidKey(newBid.AuctionID, newBid.BidderID, newBid.IdempotencyKey)]; exists {
			return fmt.Errorf("%w: key %s", auction.ErrDuplicateBid, newBid.IdempotencyKey)
		}
	}
	if current.Version != expectedVersion {
		return fmt.Errorf("%w: auction %s version is %d, expected %d",
			auction.ErrVersionConflict, a.ID, current.Version, expectedVersion)
	}
	if newBid != nil {
		if err := s.insertBid(newBid); err != nil {
			return err
		}
	}

	updated := cloneAuction(a)
	updated.Version = expectedVersion + 1
	s.auctions[a.ID] = updated
	a.Version = updated.Version
	return nil
}

func (s *Store) CreateBid(_ context.Context, bid *models.Bid) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.insertBid(bid)
}

func (s *Store) GetBidByKey(_ context.Context, auctionID, bidderID uuid.UUID, idempotencyKey string) (*models.Bid, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	bidID, ok := s.bidKeys[bidKey(auctionID, bidderID, idempotencyKey)]
	if !ok {
		return nil, fmt.Errorf("%w: bid with key %s", auction.ErrNotFound, idempotencyKey)
	}
	for _, bid := range s.bids[auctionID] {
		if bid.ID == bidID {
			out := bid
			return &out, nil
		}
	}
	return nil, fmt.Errorf("%w: bid %s", auction.ErrNotFound, bidID)
}

func (s *Store) ListBids(_ context.Context, auctionID uuid.UUID) ([]models.Bid, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]models.Bid, len(s.bids[auctionID]))
	copy(out, s.bids[auctionID])
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

func (s *Store) ListBidderBids(_ context.Context, auctionID, bidderID uuid.UUID) ([]models.Bid, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]models.Bid, 0)
	for _, bid := range s.bids[auctionID] {
		if bid.BidderID == bidderID {
			out = append(out, bid)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

func (s *Store) ListDueTransitions(_ context.Context, now time.Time, limit int) ([]models.Auction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]models.Auction, 0)
	for _, current := range s.auctions {
		if len(out) >= limit {
			break
		}
		switch {
		case current.Status == models.StatusScheduled && !current.StartAt.After(now):
			out = append(out, *cloneAuction(current))
		case current.Status == models.StatusActive && !current.EndAt.After(now):
			out = append(out, *cloneAuction(current))
		}
	}
	return out, nil
}

// insertBid 要求呼叫端已持有鎖
func (s *Store) insertBid(bid *models.Bid) error {
	key := bidKey(bid.AuctionID, bid.BidderID, bid.IdempotencyKey)
	if _, ok := s.bidKeys[key]; ok {
		return fmt.Errorf("%w: key %s", auction.ErrDuplicateBid, bid.IdempotencyKey)
	}
	s.bidKeys[key] = bid.ID
	s.bids[bid.AuctionID] = append(s.bids[bid.AuctionID], *bid)
	return nil
}

func bidKey(auctionID, bidderID uuid.UUID, idempotencyKey string) string {
	return auctionID.String() + ":" + bidderID.String() + ":" + idempotencyKey
}

func cloneAuction(a *models.Auction) *models.Auction {
	out := *a
	if a.HighestBidID != nil {
		id := *a.HighestBidID
		out.HighestBidID = &id
	}
	if a.HighestBidderID != nil {
		id := *a.HighestBidderID
		out.HighestBidderID = &id
	}
	if a.HighestAmount != nil {
		amount := *a.HighestAmount
		out.HighestAmount = &amount
	}
	out.HighestBid = nil
	out.BidRecords = nil
	return &out
}
