package auction

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"gavel/models"
)

// LedgerKey 是冪等帳本的鍵，範圍限定在 (auctionID, bidderID) 之內：
// 不同競標者即使撞出相同的 idempotencyKey 也互不影響
type LedgerKey struct {
	AuctionID      uuid.UUID
	BidderID       uuid.UUID
	IdempotencyKey string
}

func (k LedgerKey) String() string {
	return k.AuctionID.String() + ":" + k.BidderID.String() + ":" + k.IdempotencyKey
}

// BidRequest 是提交出價的輸入
type BidRequest struct {
	AuctionID      uuid.UUID
	BidderID       uuid.UUID
	Amount         decimal.Decimal
	IdempotencyKey string
	Shipping       *models.ShippingSelection
}

// BidResult 是一次出價的最終結果，也是冪等帳本中儲存的值
// 同一個冪等鍵的重播永遠回傳第一次算出的結果
type BidResult struct {
	BidID        uuid.UUID
	AuctionID    uuid.UUID
	BidderID     uuid.UUID
	Amount       decimal.Decimal
	Accepted     bool
	RejectReason string
	CreatedAt    time.Time
}

// EventType 是事件的種類
type EventType string

const (
	EventBidAccepted   EventType = "bid-accepted"
	EventStatusChanged EventType = "status-changed"
	EventExtended      EventType = "extended"
)

// Event 是交給 IEventSink 的生命週期／出價事件
type Event struct {
	Type       EventType
	AuctionID  uuid.UUID
	Status     models.Status
	BidID      *uuid.UUID
	Amount     *decimal.Decimal
	EndAt      *time.Time
	OccurredAt time.Time
}

// sellerOnlyAuthorizer 是預設的授權檢查：只有拍賣的賣家本人可以管理拍賣
type sellerOnlyAuthorizer struct{}

func (sellerOnlyAuthorizer) CanManage(callerID uuid.UUID, a *models.Auction) bool {
	return callerID == a.SellerID
}

// NewSellerAuthorizer 建立預設的授權檢查
func NewSellerAuthorizer() IAuthorizer {
	return sellerOnlyAuthorizer{}
}

// resultFromBid 從既有的出價紀錄還原出當初的結果，供帳本淘汰後的重播使用
func resultFromBid(bid *models.Bid) BidResult {
	return BidResult{
		BidID:        bid.ID,
		AuctionID:    bid.AuctionID,
		BidderID:     bid.BidderID,
		Amount:       bid.Amount,
		Accepted:     bid.Outcome == models.BidAccepted,
		RejectReason: bid.RejectReason,
		CreatedAt:    bid.CreatedAt,
	}
}
