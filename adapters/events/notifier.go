package events

import (
	"errors"
	"log/slog"

	"github.com/redis/go-redis/v9"

	redisAdapter "gavel/adapters/redis"
	"gavel/auction"
)

// StreamEvent 是寫入 Redis Stream 的事件形式
// 與帳本相同，金額以字串承載；下游（遞送服務、結算流程）自行解碼
type StreamEvent struct {
	Type       string `msgpack:"type"`
	AuctionID  string `msgpack:"auction_id"`
	Status     string `msgpack:"status"`
	BidID      string `msgpack:"bid_id,omitempty"`
	Amount     string `msgpack:"amount,omitempty"`
	EndAt      int64  `msgpack:"end_at,omitempty"`
	OccurredAt int64  `msgpack:"occurred_at"`
}

type notifierOptions struct {
	logger       *slog.Logger
	producerOpts []redisAdapter.ProducerOption[StreamEvent]
}

type NotifierOption func(*notifierOptions)

// WithNotifierLogger 設置日誌記錄器
func WithNotifierLogger(logger *slog.Logger) NotifierOption {
	return func(o *notifierOptions) {
		o.logger = logger
	}
}

// WithNotifierProducerOptions 傳遞底層 stream producer 的選項
func WithNotifierProducerOptions(opts ...redisAdapter.ProducerOption[StreamEvent]) NotifierOption {
	return func(o *notifierOptions) {
		o.producerOpts = opts
	}
}

// Notifier 把引擎的事件寫入 Redis Stream，是 IEventSink 的生產實作
// 對提交路徑而言是 fire-and-forget：序列化或發佈失敗只記錄，事件丟棄
type Notifier struct {
	producer redisAdapter.IProducer[StreamEvent]
	logger   *slog.Logger
}

// NewNotifier 建立事件通知器
func NewNotifier(client *redis.Client, stream string, opts ...NotifierOption) (*Notifier, error) {
	if client == nil {
		return nil, errors.New("redis client cannot be nil")
	}

	// 默認選項
	options := notifierOptions{
		logger: slog.Default(),
	}

	// 應用自定義選項
	for _, opt := range opts {
		opt(&options)
	}

	producerOpts := append(
		[]redisAdapter.ProducerOption[StreamEvent]{
			redisAdapter.WithProducerLogger[StreamEvent](options.logger),
		},
		options.producerOpts...,
	)
	producer, err := redisAdapter.NewProducer(client, stream, producerOpts...)
	if err != nil {
		return nil, err
	}

	return &Notifier{
		producer: producer,
		logger:   options.logger.With(slog.String("caller", "Notifier"), slog.String("stream", stream)),
	}, nil
}

func (n *Notifier) Start() {
	n.producer.Start()
}

func (n *Notifier) Close() {
	n.producer.Close()
}

// Notify 實作 auction.IEventSink
func (n *Notifier) Notify(event auction.Event) {
	out := StreamEvent{
		Type:       string(event.Type),
		AuctionID:  event.AuctionID.String(),
		Status:     string(event.Status),
		OccurredAt: event.OccurredAt.UnixMilli(),
	}
	if event.BidID != nil {
		out.BidID = event.BidID.String()
	}
	if event.Amount != nil {
		out.Amount = event.Amount.String()
	}
	if event.EndAt != nil {
		out.EndAt = event.EndAt.UnixMilli()
	}

	if err := n.producer.Publish(out); err != nil {
		n.logger.Warn("drop event", slog.String("type", out.Type), slog.Any("error", err))
	}
}
