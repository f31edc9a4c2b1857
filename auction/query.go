package auction

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"gavel/models"
)

type queryOptions struct {
	authorizer IAuthorizer
	now        func() time.Time
}

type QueryOption func(*queryOptions)

// WithQueryAuthorizer 設置授權檢查（默認只允許賣家本人看完整出價清單）
func WithQueryAuthorizer(authorizer IAuthorizer) QueryOption {
	return func(o *queryOptions) {
		o.authorizer = authorizer
	}
}

// WithQueryClock 設置時鐘（主要用於測試）
func WithQueryClock(now func() time.Time) QueryOption {
	return func(o *queryOptions) {
		o.now = now
	}
}

// QueryService 提供唯讀的投影：目前狀態、倒數、出價歷史
// 密封式拍賣的性質在這裡落實：領先出價只揭露金額，競標者身分不會流向其他競標者
type QueryService struct {
	store   IAuctionStore
	options queryOptions
}

// NewQueryService 建立查詢服務
func NewQueryService(store IAuctionStore, opts ...QueryOption) (*QueryService, error) {
	if store == nil {
		return nil, errors.New("auction store cannot be nil")
	}

	// 默認選項
	options := queryOptions{
		authorizer: NewSellerAuthorizer(),
		now:        time.Now,
	}

	// 應用自定義選項
	for _, opt := range opts {
		opt(&options)
	}

	return &QueryService{store: store, options: options}, nil
}

// AuctionView 是單場拍賣的唯讀投影
// ReservePrice 只有賣家看得到；HighestAmount 不附帶任何競標者身分
type AuctionView struct {
	AuctionID      uuid.UUID
	ItemID         uuid.UUID
	SellerID       uuid.UUID
	Status         models.Status
	StartPrice     decimal.Decimal
	MinIncrement   decimal.Decimal
	ReservePrice   *decimal.Decimal
	HighestAmount  *decimal.Decimal
	StartAt        time.Time
	EndAt          time.Time
	ExtensionCount uint32
	Countdown      Countdown
}

// BidView 是出價紀錄的唯讀投影
// BidderID 只出現在賣家的完整清單中，my-bids 不需要也不附帶
type BidView struct {
	BidID        uuid.UUID
	BidderID     *uuid.UUID
	Amount       decimal.Decimal
	Outcome      models.BidOutcome
	RejectReason string
	CreatedAt    time.Time
}

// GetAuction 回傳拍賣的目前投影（含倒數）
// callerID 可以是 uuid.Nil（未登入的瀏覽者），此時不揭露保留價
func (q *QueryService) GetAuction(ctx context.Context, callerID, auctionID uuid.UUID) (*AuctionView, error) {
	current, err := q.store.Get(ctx, auctionID)
	if err != nil {
		return nil, err
	}

	view := &AuctionView{
		AuctionID:      current.ID,
		ItemID:         current.ItemID,
		SellerID:       current.SellerID,
		Status:         current.Status,
		StartPrice:     current.StartPrice,
		MinIncrement:   current.MinIncrement,
		HighestAmount:  current.HighestAmount,
		StartAt:        current.StartAt,
		EndAt:          current.EndAt,
		ExtensionCount: current.ExtensionCount,
		Countdown:      ComputeCountdown(q.options.now(), current.StartAt, current.EndAt, current.Status),
	}
	if q.options.authorizer.CanManage(callerID, current) {
		reserve := current.ReservePrice
		view.ReservePrice = &reserve
	}
	return view, nil
}

// ListBids 回傳拍賣的完整出價歷史（含競標者身分），只開放給賣家
func (q *QueryService) ListBids(ctx context.Context, callerID, auctionID uuid.UUID) ([]BidView, error) {
	current, err := q.store.Get(ctx, auctionID)
	if err != nil {
		return nil, err
	}
	if !q.options.authorizer.CanManage(callerID, current) {
		return nil, fmt.Errorf("%w: bid history is only visible to the seller", ErrAuthorization)
	}

	bids, err := q.store.ListBids(ctx, auctionID)
	if err != nil {
		return nil, err
	}
	views := make([]BidView, len(bids))
	for i, bid := range bids {
		bidderID := bid.BidderID
		views[i] = BidView{
			BidID:        bid.ID,
			BidderID:     &bidderID,
			Amount:       bid.Amount,
			Outcome:      bid.Outcome,
			RejectReason: bid.RejectReason,
			CreatedAt:    bid.CreatedAt,
		}
	}
	return views, nil
}

// ListBidderBids 回傳競標者自己的出價歷史（my-bids）
func (q *QueryService) ListBidderBids(ctx context.Context, callerID, auctionID uuid.UUID) ([]BidView, error) {
	// 先確認拍賣存在，讓未知的拍賣一律回傳 NotFoundError
	if _, err := q.store.Get(ctx, auctionID); err != nil {
		return nil, err
	}

	bids, err := q.store.ListBidderBids(ctx, auctionID, callerID)
	if err != nil {
		return nil, err
	}
	views := make([]BidView, len(bids))
	for i, bid := range bids {
		views[i] = BidView{
			BidID:        bid.ID,
			Amount:       bid.Amount,
			Outcome:      bid.Outcome,
			RejectReason: bid.RejectReason,
			CreatedAt:    bid.CreatedAt,
		}
	}
	return views, nil
}
