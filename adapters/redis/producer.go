package redis

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/redis/go-redis/v9"
	"github.com/smallnest/chanx"
)

var ErrProducerClosed = errors.New("producer is closed")

type producerOptions[T any] struct {
	logger     *slog.Logger
	bufferSize int
	encodeFunc func(T) (map[string]any, error)
}

type ProducerOption[T any] func(*producerOptions[T])

// WithProducerLogger 設置日誌記錄器
func WithProducerLogger[T any](logger *slog.Logger) ProducerOption[T] {
	return func(o *producerOptions[T]) {
		o.logger = logger
	}
}

// WithProducerBufferSize 設置出口緩衝的初始容量
func WithProducerBufferSize[T any](size int) ProducerOption[T] {
	return func(o *producerOptions[T]) {
		o.bufferSize = size
	}
}

// WithProducerEncodeFunc 覆寫 payload 的編碼方式
func WithProducerEncodeFunc[T any](fn func(T) (map[string]any, error)) ProducerOption[T] {
	return func(o *producerOptions[T]) {
		o.encodeFunc = fn
	}
}

// Producer 把拍賣事件扇出到 Redis Stream
// Publish 只做編碼與入列，不會阻塞提交路徑；XAdd 由背景 goroutine 執行
type Producer[T any] struct {
	client     *redis.Client
	stream     string
	outbox     *chanx.UnboundedChan[map[string]any]
	cancelFunc context.CancelFunc
	wg         sync.WaitGroup
	closed     bool
	logger     *slog.Logger
	options    producerOptions[T]
}

func NewProducer[T any](client *redis.Client, stream string, opts ...ProducerOption[T]) (*Producer[T], error) {
	if client == nil {
		return nil, errors.New("redis client cannot be nil")
	}
	if stream == "" {
		return nil, errors.New("stream cannot be empty")
	}

	// 默認選項
	options := producerOptions[T]{
		logger:     slog.Default(),
		bufferSize: 100,
		encodeFunc: EncodeMessage[T],
	}

	// 應用自定義選項
	for _, opt := range opts {
		opt(&options)
	}

	return &Producer[T]{
		client:  client,
		stream:  stream,
		closed:  true,
		logger:  options.logger.With(slog.String("caller", "Producer"), slog.String("stream", stream)),
		options: options,
	}, nil
}

func (p *Producer[T]) Start() {
	if !p.closed {
		return
	}
	ctx, cancel := context.WithCancel(context.Background())
	p.outbox = chanx.NewUnboundedChan[map[string]any](ctx, p.options.bufferSize)
	p.cancelFunc = cancel
	p.closed = false
	p.logger.Info("starting stream producer")

	p.wg.Add(1)
	go func() {
		defer p.wg.Done()
		defer p.logger.Info("producer goroutine stopped")

		for {
			select {
			case <-ctx.Done():
				return
			case entry := <-p.outbox.Out:
				id, err := p.client.XAdd(ctx, &redis.XAddArgs{
					Stream: p.stream,
					Values: entry,
				}).Result()
				if err != nil {
					if errors.Is(err, context.Canceled) {
						return
					}
					// 扇出是 fire-and-forget，附加失敗只記錄，事件丟棄
					p.logger.Error("fail to append to stream", slog.Any("error", err))
					continue
				}
				p.logger.Debug("event appended", slog.String("entryID", id))
			}
		}
	}()
}

func (p *Producer[T]) Publish(data T) error {
	if p.closed {
		return ErrProducerClosed
	}

	entry, err := p.options.encodeFunc(data)
	if err != nil {
		return fmt.Errorf("encode event error: %w", err)
	}

	p.outbox.In <- entry
	return nil
}

func (p *Producer[T]) Close() {
	if p.closed {
		return
	}
	p.logger.Info("closing stream producer")
	p.closed = true
	p.cancelFunc()
	p.wg.Wait()
	p.logger.Info("stream producer closed")
}
