package models

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Status 代表拍賣的生命週期狀態
// 狀態是封閉的列舉，只能沿著轉移表的邊移動，不存在「未知狀態落入預設行為」的空間
type Status string

const (
	StatusScheduled Status = "scheduled"
	StatusActive    Status = "active"
	StatusPaused    Status = "paused"
	StatusEnded     Status = "ended"
	StatusCancelled Status = "cancelled"
	StatusSettled   Status = "settled"
)

// ParseStatus 將字串解析為封閉的狀態列舉，未知的字串會回傳錯誤
func ParseStatus(s string) (Status, error) {
	switch Status(s) {
	case StatusScheduled, StatusActive, StatusPaused, StatusEnded, StatusCancelled, StatusSettled:
		return Status(s), nil
	}
	return "", fmt.Errorf("unknown auction status: %q", s)
}

// Terminal 判斷狀態是否為終態，終態不允許任何後續轉移
func (s Status) Terminal() bool {
	return s == StatusEnded || s == StatusCancelled || s == StatusSettled
}

// Auction 代表一場單一商品、單一幣別的密封式拍賣
// 狀態、時程與領先出價只能透過 transition primitive 以 CAS 方式變更
type Auction struct {
	gorm.Model

	ID       uuid.UUID `gorm:"type:uuid;primaryKey"`
	ItemID   uuid.UUID `gorm:"type:uuid;not null;<-:create"`
	SellerID uuid.UUID `gorm:"type:uuid;not null;<-:create;index"`

	Status Status `gorm:"type:varchar(16);not null;index"`

	StartPrice   decimal.Decimal `gorm:"type:numeric(20,2);not null;<-:create"`
	ReservePrice decimal.Decimal `gorm:"type:numeric(20,2);not null;<-:create"`
	MinIncrement decimal.Decimal `gorm:"type:numeric(20,2);not null;<-:create"`

	StartAt time.Time `gorm:"type:timestamp with time zone;not null"`
	EndAt   time.Time `gorm:"type:timestamp with time zone;not null;index"`

	// 目前領先的出價（反正規化，與版本號在同一列上以 CAS 更新）
	HighestBidID    *uuid.UUID       `gorm:"type:uuid"`
	HighestBidderID *uuid.UUID       `gorm:"type:uuid"`
	HighestAmount   *decimal.Decimal `gorm:"type:numeric(20,2)"`

	// 樂觀併發控制的版本權杖，每次成功提交的變更都會遞增
	Version uint64 `gorm:"not null;default:0"`

	ExtensionCount uint32 `gorm:"not null;default:0"`

	// 外鍵關聯
	HighestBid *Bid  `gorm:"foreignKey:HighestBidID"`
	BidRecords []Bid `gorm:"foreignKey:AuctionID"`
}

// CurrentFloor 計算下一筆出價的最低可接受金額
// 已有領先出價時需要至少高出最低加價幅度，否則底線就是起標價
func (a *Auction) CurrentFloor() decimal.Decimal {
	if a.HighestAmount != nil {
		return a.HighestAmount.Add(a.MinIncrement)
	}
	return a.StartPrice
}
