package redis

import (
	"encoding/base64"
	"errors"
	"fmt"
	"reflect"

	"github.com/vmihailenco/msgpack/v5"
)

var (
	ErrPointerPayload = errors.New("pointer payload is not allowed")
)

// 事件通知與帳本記錄共用同一種線上格式：
// msgpack 序列化後以 base64 收進單一 data 欄位
// Stream entry 的欄位值只能是字串，包一層讓 payload 結構演進時欄位佈局不變

// EncodeMessage 將 payload 封裝成 stream entry 的欄位集
func EncodeMessage[T any](payload T) (map[string]any, error) {
	// 指標會讓 nil 與零值在線上無法區分，一律擋下
	if reflect.TypeOf(payload).Kind() == reflect.Ptr {
		return nil, ErrPointerPayload
	}

	bytes, err := msgpack.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("msgpack marshal error: %w", err)
	}

	return map[string]any{
		"data": base64.StdEncoding.EncodeToString(bytes),
	}, nil
}

// DecodeMessage 從 stream entry 的欄位集還原 payload
func DecodeMessage[T any](message map[string]any) (T, error) {
	var payload T

	if reflect.TypeOf(payload).Kind() == reflect.Ptr {
		return payload, ErrPointerPayload
	}

	// 空 entry 還原成零值，交給呼叫端判斷
	if len(message) == 0 {
		return payload, nil
	}

	dataStr, ok := message["data"].(string)
	if !ok {
		return payload, fmt.Errorf("data field not found or invalid type")
	}

	bytes, err := base64.StdEncoding.DecodeString(dataStr)
	if err != nil {
		return payload, fmt.Errorf("base64 decode error: %w", err)
	}

	if err := msgpack.Unmarshal(bytes, &payload); err != nil {
		return payload, fmt.Errorf("msgpack unmarshal error: %w", err)
	}

	return payload, nil
}
