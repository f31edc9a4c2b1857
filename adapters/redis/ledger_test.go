package redis

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gavel/auction"
)

func setupLedgerTest(t *testing.T) (*Ledger, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	ledger, err := NewLedger(client, WithLedgerTTL(30*time.Minute))
	require.NoError(t, err)
	return ledger, mr
}

func sampleResult() auction.BidResult {
	return auction.BidResult{
		BidID:     uuid.New(),
		AuctionID: uuid.New(),
		BidderID:  uuid.New(),
		Amount:    decimal.RequireFromString("123.45"),
		Accepted:  true,
		CreatedAt: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC),
	}
}

func TestLedger_PutAndGet(t *testing.T) {
	ledger, _ := setupLedgerTest(t)
	ctx := context.Background()

	result := sampleResult()
	key := auction.LedgerKey{AuctionID: result.AuctionID, BidderID: result.BidderID, IdempotencyKey: "k-1"}

	stored, err := ledger.Put(ctx, key, result)
	require.NoError(t, err)
	assert.Equal(t, result.BidID, stored.BidID)

	cached, err := ledger.Get(ctx, key)
	require.NoError(t, err)
	require.NotNil(t, cached)
	assert.Equal(t, result.BidID, cached.BidID)
	assert.True(t, cached.Amount.Equal(result.Amount))
	assert.Equal(t, result.Accepted, cached.Accepted)
	assert.Equal(t, result.CreatedAt.UnixMilli(), cached.CreatedAt.UnixMilli())
}

func TestLedger_GetMissReturnsNil(t *testing.T) {
	ledger, _ := setupLedgerTest(t)

	cached, err := ledger.Get(context.Background(), auction.LedgerKey{
		AuctionID: uuid.New(), BidderID: uuid.New(), IdempotencyKey: "k-missing",
	})
	require.NoError(t, err)
	assert.Nil(t, cached)
}

func TestLedger_FirstWriterWins(t *testing.T) {
	ledger, _ := setupLedgerTest(t)
	ctx := context.Background()

	first := sampleResult()
	key := auction.LedgerKey{AuctionID: first.AuctionID, BidderID: first.BidderID, IdempotencyKey: "k-1"}
	_, err := ledger.Put(ctx, key, first)
	require.NoError(t, err)

	// 同鍵的第二個寫入者拿回第一個寫入者的結果
	second := first
	second.BidID = uuid.New()
	second.Amount = decimal.NewFromInt(999)
	stored, err := ledger.Put(ctx, key, second)
	require.NoError(t, err)
	assert.Equal(t, first.BidID, stored.BidID)
	assert.True(t, stored.Amount.Equal(first.Amount))
}

func TestLedger_EntriesCarryTTL(t *testing.T) {
	ledger, mr := setupLedgerTest(t)
	ctx := context.Background()

	result := sampleResult()
	key := auction.LedgerKey{AuctionID: result.AuctionID, BidderID: result.BidderID, IdempotencyKey: "k-1"}
	_, err := ledger.Put(ctx, key, result)
	require.NoError(t, err)

	ttl := mr.TTL(ledger.redisKey(key))
	assert.Equal(t, 30*time.Minute, ttl)

	// 項目淘汰後回到未命中
	mr.FastForward(31 * time.Minute)
	cached, err := ledger.Get(ctx, key)
	require.NoError(t, err)
	assert.Nil(t, cached)
}
