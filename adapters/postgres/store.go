package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"gavel/auction"
	"gavel/models"
)

// Store 是 IAuctionStore 的 PostgreSQL 實作
// CAS 的裁決靠單一 UPDATE 的 WHERE version = ? 完成，不需要 SELECT ... FOR UPDATE；
// 出價與拍賣列的變更包在同一筆交易中，要嘛一起提交、要嘛一起回滾
type Store struct {
	db *gorm.DB
}

// NewStore 建立 PostgreSQL 儲存，db 必須以 TranslateError 開啟，
// 唯一索引衝突才會以 gorm.ErrDuplicatedKey 呈現
func NewStore(db *gorm.DB) (*Store, error) {
	if db == nil {
		return nil, errors.New("db cannot be nil")
	}
	return &Store{db: db}, nil
}

func (s *Store) Get(ctx context.Context, auctionID uuid.UUID) (*models.Auction, error) {
	const op = "postgres.Store.Get"
	var current models.Auction
	if result := s.db.WithContext(ctx).Where("id = ?", auctionID).First(&current); result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: auction %s", auction.ErrNotFound, auctionID)
		}
		return nil, fmt.Errorf("[%s] fail to load auction, err=%w", op, result.Error)
	}
	return &current, nil
}

func (s *Store) ApplyTransition(ctx context.Context, a *models.Auction, expectedVersion uint64, newBid *models.Bid) error {
	const op = "postgres.Store.ApplyTransition"
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if newBid != nil {
			if result := tx.Create(newBid); result.Error != nil {
				if errors.Is(result.Error, gorm.ErrDuplicatedKey) {
					return fmt.Errorf("%w: key %s", auction.ErrDuplicateBid, newBid.IdempotencyKey)
				}
				return fmt.Errorf("[%s] fail to insert bid, err=%w", op, result.Error)
			}
		}

		// 以 map 更新，零值（例如歸零的 highest_bid_id）才不會被 gorm 靜默略過
		result := tx.Model(&models.Auction{}).
			Where("id = ? AND version = ?", a.ID, expectedVersion).
			Updates(map[string]any{
				"status":            a.Status,
				"start_at":          a.StartAt,
				"end_at":            a.EndAt,
				"highest_bid_id":    a.HighestBidID,
				"highest_bidder_id": a.HighestBidderID,
				"highest_amount":    a.HighestAmount,
				"extension_count":   a.ExtensionCount,
				"version":           expectedVersion + 1,
			})
		if result.Error != nil {
			return fmt.Errorf("[%s] fail to update auction, err=%w", op, result.Error)
		}
		if result.RowsAffected == 0 {
			// 版本已被別人推進（或拍賣不存在），交易回滾、出價一併撤銷
			return fmt.Errorf("%w: auction %s expected version %d",
				auction.ErrVersionConflict, a.ID, expectedVersion)
		}
		return nil
	})
	if err != nil {
		return err
	}
	a.Version = expectedVersion + 1
	return nil
}

func (s *Store) CreateBid(ctx context.Context, bid *models.Bid) error {
	const op = "postgres.Store.CreateBid"
	if result := s.db.WithContext(ctx).Create(bid); result.Error != nil {
		if errors.Is(result.Error, gorm.ErrDuplicatedKey) {
			return fmt.Errorf("%w: key %s", auction.ErrDuplicateBid, bid.IdempotencyKey)
		}
		return fmt.Errorf("[%s] fail to insert bid, err=%w", op, result.Error)
	}
	return nil
}

func (s *Store) GetBidByKey(ctx context.Context, auctionID, bidderID uuid.UUID, idempotencyKey string) (*models.Bid, error) {
	const op = "postgres.Store.GetBidByKey"
	var bid models.Bid
	result := s.db.WithContext(ctx).
		Where("auction_id = ? AND bidder_id = ? AND idempotency_key = ?", auctionID, bidderID, idempotencyKey).
		First(&bid)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: bid with key %s", auction.ErrNotFound, idempotencyKey)
		}
		return nil, fmt.Errorf("[%s] fail to load bid, err=%w", op, result.Error)
	}
	return &bid, nil
}

func (s *Store) ListBids(ctx context.Context, auctionID uuid.UUID) ([]models.Bid, error) {
	const op = "postgres.Store.ListBids"
	var bids []models.Bid
	result := s.db.WithContext(ctx).
		Where("auction_id = ?", auctionID).
		Order(clause.OrderByColumn{Column: clause.Column{Name: "created_at"}, Desc: true}).
		Find(&bids)
	if result.Error != nil {
		return nil, fmt.Errorf("[%s] fail to list bids, err=%w", op, result.Error)
	}
	return bids, nil
}

func (s *Store) ListBidderBids(ctx context.Context, auctionID, bidderID uuid.UUID) ([]models.Bid, error) {
	const op = "postgres.Store.ListBidderBids"
	var bids []models.Bid
	result := s.db.WithContext(ctx).
		Where("auction_id = ? AND bidder_id = ?", auctionID, bidderID).
		Order(clause.OrderByColumn{Column: clause.Column{Name: "created_at"}, Desc: true}).
		Find(&bids)
	if result.Error != nil {
		return nil, fmt.Errorf("[%s] fail to list bidder bids, err=%w", op, result.Error)
	}
	return bids, nil
}

func (s *Store) ListDueTransitions(ctx context.Context, now time.Time, limit int) ([]models.Auction, error) {
	const op = "postgres.Store.ListDueTransitions"
	var due []models.Auction
	result := s.db.WithContext(ctx).
		Where(s.db.Where("status = ? AND start_at <= ?", models.StatusScheduled, now)).
		Or(s.db.Where("status = ? AND end_at <= ?", models.StatusActive, now)).
		Order(clause.OrderByColumn{Column: clause.Column{Name: "end_at"}}).
		Limit(limit).
		Find(&due)
	if result.Error != nil {
		return nil, fmt.Errorf("[%s] fail to scan due auctions, err=%w", op, result.Error)
	}
	return due, nil
}
