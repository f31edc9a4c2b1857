package redis

import (
	"context"
)

// IProducer 是事件扇出的操作介面，T 是寫入 stream 的 payload 形狀
type IProducer[T any] interface {
	Start()
	Publish(data T) error
	Close()
}

// IAutoRenewMutex 是自動續期租約的操作介面，排程器以它做 leader 選舉
type IAutoRenewMutex interface {
	Lock(ctx context.Context) (context.Context, error)
	Unlock() (bool, error)
	Valid() bool
}
