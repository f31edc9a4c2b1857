package models

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// BidOutcome 代表一筆出價紀錄的最終結果，寫入後不可變更
type BidOutcome string

const (
	BidAccepted BidOutcome = "accepted"
	BidRejected BidOutcome = "rejected"
)

// ShippingSelection 是競標者挑選的配送方式
// 對引擎而言完全不透明，僅轉存給後續的訂單建立流程使用
type ShippingSelection struct {
	UserAddressID  *uuid.UUID       `gorm:"type:uuid"`
	Courier        string           `gorm:"type:varchar(64)"`
	CourierService string           `gorm:"type:varchar(64)"`
	QuotedPrice    *decimal.Decimal `gorm:"type:numeric(20,2)"`
}

// Bid 代表拍賣的出價紀錄
// (auction_id, bidder_id, idempotency_key) 的唯一索引是 exactly-once 的持久後盾：
// 即使冪等帳本的快取已經淘汰，同一個鍵也永遠不會產生第二筆紀錄
type Bid struct {
	gorm.Model

	ID             uuid.UUID `gorm:"type:uuid;primaryKey"`
	AuctionID      uuid.UUID `gorm:"type:uuid;not null;<-:create;uniqueIndex:ux_bids_auction_bidder_key,priority:1"`
	BidderID       uuid.UUID `gorm:"type:uuid;not null;<-:create;uniqueIndex:ux_bids_auction_bidder_key,priority:2"`
	IdempotencyKey string    `gorm:"type:varchar(255);not null;<-:create;uniqueIndex:ux_bids_auction_bidder_key,priority:3"`

	Amount decimal.Decimal `gorm:"type:numeric(20,2);not null;<-:create"`

	Outcome      BidOutcome `gorm:"type:varchar(16);not null;<-:create"`
	RejectReason string     `gorm:"type:text;<-:create"`

	Shipping ShippingSelection `gorm:"embedded;embeddedPrefix:shipping_"`
}
