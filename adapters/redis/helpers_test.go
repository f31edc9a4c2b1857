package redis

import (
	"io"
	"log"
	"log/slog"
	"testing"

	"github.com/go-redis/redismock/v9"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
)

func init() {
	// 將日誌輸出重定向到io.Discard
	log.SetOutput(io.Discard)
	slog.SetDefault(slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func setupTest(t *testing.T) (*redis.Client, redismock.ClientMock, func()) {
	db, mock := redismock.NewClientMock()
	return db, mock, func() {
		assert.NoError(t, mock.ExpectationsWereMet())
		db.Close()
	}
}

// streamedBidEvent 對齊事件通知器寫進 stream 的 payload 形狀
type streamedBidEvent struct {
	Type       string `msgpack:"type"`
	AuctionID  string `msgpack:"auction_id"`
	Status     string `msgpack:"status"`
	BidID      string `msgpack:"bid_id,omitempty"`
	Amount     string `msgpack:"amount,omitempty"`
	OccurredAt int64  `msgpack:"occurred_at"`
}

func acceptedBidEvent() streamedBidEvent {
	return streamedBidEvent{
		Type:       "bid_accepted",
		AuctionID:  "0198b6a0-0000-7000-8000-0000000000aa",
		Status:     "active",
		BidID:      "0198b6a0-0000-7000-8000-0000000000cc",
		Amount:     "150",
		OccurredAt: 1772366400000,
	}
}
