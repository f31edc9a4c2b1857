package auction

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"gavel/models"
)

// IAuctionStore 是拍賣紀錄唯一的讀寫入口
// ApplyTransition 是唯一的寫入路徑：呼叫端先讀取紀錄（包含版本號）、
// 在複本上套用變更後提交；只有在儲存的版本仍等於 expectedVersion 時才會提交，
// 否則回傳 ErrVersionConflict，呼叫端必須重新讀取後重試
type IAuctionStore interface {
	// Get 讀取拍賣紀錄，不存在時回傳 ErrNotFound
	Get(ctx context.Context, auctionID uuid.UUID) (*models.Auction, error)
	// ApplyTransition 以 CAS 提交變更；newBid 不為 nil 時會在同一筆交易中寫入出價紀錄，
	// 撞上冪等鍵唯一索引時回傳 ErrDuplicateBid
	ApplyTransition(ctx context.Context, auction *models.Auction, expectedVersion uint64, newBid *models.Bid) error
	// CreateBid 寫入一筆不影響拍賣紀錄本身的出價（終態下的永久拒絕）
	CreateBid(ctx context.Context, bid *models.Bid) error
	// GetBidByKey 以冪等鍵查詢既有的出價紀錄，不存在時回傳 ErrNotFound
	GetBidByKey(ctx context.Context, auctionID, bidderID uuid.UUID, idempotencyKey string) (*models.Bid, error)
	// ListBids 列出拍賣的所有出價紀錄（新到舊）
	ListBids(ctx context.Context, auctionID uuid.UUID) ([]models.Bid, error)
	// ListBidderBids 列出單一競標者在該拍賣的出價紀錄（新到舊）
	ListBidderBids(ctx context.Context, auctionID, bidderID uuid.UUID) ([]models.Bid, error)
	// ListDueTransitions 掃描所有到期而需要轉移的拍賣：
	// scheduled 且 startAt <= now，或 active 且 endAt <= now
	ListDueTransitions(ctx context.Context, now time.Time, limit int) ([]models.Auction, error)
}

// ILedger 是冪等帳本：以 (auctionID, bidderID, idempotencyKey) 對應先前算出的出價結果
// 帳本只是重播的捷徑，保留期有限；淘汰不影響 Bid / Auction 紀錄的正確性
type ILedger interface {
	// Get 查詢既有的結果，未命中時回傳 (nil, nil)
	Get(ctx context.Context, key LedgerKey) (*BidResult, error)
	// Put 寫入結果，先寫者勝：回傳實際留存在帳本中的結果
	Put(ctx context.Context, key LedgerKey, result BidResult) (BidResult, error)
}

// IEventSink 接收生命週期與出價事件，供下游遞送（socket、email）與結算流程消費
// 對引擎而言是 fire-and-forget：不回傳錯誤，也絕不阻塞提交路徑
type IEventSink interface {
	Notify(event Event)
}

// IAuthorizer 判斷呼叫者是否有權管理某場拍賣
type IAuthorizer interface {
	CanManage(callerID uuid.UUID, auction *models.Auction) bool
}

// IShippingQuoter 查詢配送報價，結果僅供參考：引擎轉存報價但不做任何驗證
type IShippingQuoter interface {
	Quote(ctx context.Context, courier, courierService string) (*decimal.Decimal, error)
}
