package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"github.com/vmihailenco/msgpack/v5"

	"gavel/auction"
)

// putLedgerScript 以先寫者勝的語義寫入冪等帳本
//  KEYS[1] - 帳本鍵
//  ARGV[1] - 序列化後的結果
//  ARGV[2] - 保留毫秒數
//
// 返回值:
//  既有的值（先寫者已存在）或剛寫入的值
//
// 流程:
//  - 1. GET 帳本鍵
//  - 2a. 已存在，原封不動回傳既有的值
//  - 2b. 不存在，SET 帶 PX 後回傳剛寫入的值
var putLedgerScript = redis.NewScript(`
local existing = redis.call('GET', KEYS[1])
if existing then
    return existing
end
redis.call('SET', KEYS[1], ARGV[1], 'PX', ARGV[2])
return ARGV[1]
`)

// ledgerRecord 是帳本值的序列化形式
// 金額以字串儲存，避免跨版本的二進位小數編碼歧義
type ledgerRecord struct {
	BidID        string `msgpack:"bid_id"`
	AuctionID    string `msgpack:"auction_id"`
	BidderID     string `msgpack:"bidder_id"`
	Amount       string `msgpack:"amount"`
	Accepted     bool   `msgpack:"accepted"`
	RejectReason string `msgpack:"reject_reason,omitempty"`
	CreatedAt    int64  `msgpack:"created_at"`
}

type ledgerOptions struct {
	prefix string
	ttl    time.Duration
}

type LedgerOption func(*ledgerOptions)

// WithLedgerPrefix 設置帳本鍵的前綴
func WithLedgerPrefix(prefix string) LedgerOption {
	return func(o *ledgerOptions) {
		o.prefix = prefix
	}
}

// WithLedgerTTL 設置帳本項目的保留時間
func WithLedgerTTL(ttl time.Duration) LedgerOption {
	return func(o *ledgerOptions) {
		o.ttl = ttl
	}
}

// Ledger 是 ILedger 的 Redis 實作
// 只是重播的快取捷徑：項目淘汰後，資料庫的唯一索引仍然保證 exactly-once
type Ledger struct {
	client  *redis.Client
	options ledgerOptions
}

// NewLedger 建立 Redis 帳本
func NewLedger(client *redis.Client, opts ...LedgerOption) (*Ledger, error) {
	if client == nil {
		return nil, errors.New("redis client cannot be nil")
	}

	// 默認選項
	options := ledgerOptions{
		prefix: "gavel:",
		ttl:    30 * time.Minute,
	}

	// 應用自定義選項
	for _, opt := range opts {
		opt(&options)
	}

	return &Ledger{client: client, options: options}, nil
}

func (l *Ledger) Get(ctx context.Context, key auction.LedgerKey) (*auction.BidResult, error) {
	const op = "redis.Ledger.Get"
	raw, err := l.client.Get(ctx, l.redisKey(key)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, fmt.Errorf("[%s] fail to read ledger, err=%w", op, err)
	}
	result, err := decodeRecord(raw)
	if err != nil {
		return nil, fmt.Errorf("[%s] fail to decode ledger record, err=%w", op, err)
	}
	return result, nil
}

func (l *Ledger) Put(ctx context.Context, key auction.LedgerKey, result auction.BidResult) (auction.BidResult, error) {
	const op = "redis.Ledger.Put"
	raw, err := encodeRecord(result)
	if err != nil {
		return auction.BidResult{}, fmt.Errorf("[%s] fail to encode ledger record, err=%w", op, err)
	}

	stored, err := putLedgerScript.Run(ctx, l.client,
		[]string{l.redisKey(key)}, raw, l.options.ttl.Milliseconds()).Text()
	if err != nil {
		return auction.BidResult{}, fmt.Errorf("[%s] fail to write ledger, err=%w", op, err)
	}
	out, err := decodeRecord([]byte(stored))
	if err != nil {
		return auction.BidResult{}, fmt.Errorf("[%s] fail to decode stored record, err=%w", op, err)
	}
	return *out, nil
}

func (l *Ledger) redisKey(key auction.LedgerKey) string {
	return l.options.prefix + "ledger:" + key.String()
}

func encodeRecord(result auction.BidResult) ([]byte, error) {
	return msgpack.Marshal(ledgerRecord{
		BidID:        result.BidID.String(),
		AuctionID:    result.AuctionID.String(),
		BidderID:     result.BidderID.String(),
		Amount:       result.Amount.String(),
		Accepted:     result.Accepted,
		RejectReason: result.RejectReason,
		CreatedAt:    result.CreatedAt.UnixMilli(),
	})
}

func decodeRecord(raw []byte) (*auction.BidResult, error) {
	var record ledgerRecord
	if err := msgpack.Unmarshal(raw, &record); err != nil {
		return nil, err
	}
	bidID, err := uuid.Parse(record.BidID)
	if err != nil {
		return nil, err
	}
	auctionID, err := uuid.Parse(record.AuctionID)
	if err != nil {
		return nil, err
	}
	bidderID, err := uuid.Parse(record.BidderID)
	if err != nil {
		return nil, err
	}
	amount, err := decimal.NewFromString(record.Amount)
	if err != nil {
		return nil, err
	}
	return &auction.BidResult{
		BidID:        bidID,
		AuctionID:    auctionID,
		BidderID:     bidderID,
		Amount:       amount,
		Accepted:     record.Accepted,
		RejectReason: record.RejectReason,
		CreatedAt:    time.UnixMilli(record.CreatedAt),
	}, nil
}
