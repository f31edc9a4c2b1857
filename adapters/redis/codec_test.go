package redis

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncodeMessage(t *testing.T) {
	t.Run("event payload", func(t *testing.T) {
		entry, err := EncodeMessage(acceptedBidEvent())
		require.NoError(t, err)
		assert.Contains(t, entry, "data")
		assert.NotEmpty(t, entry["data"])
	})

	t.Run("zero-value payload", func(t *testing.T) {
		entry, err := EncodeMessage(streamedBidEvent{})
		require.NoError(t, err)
		assert.Contains(t, entry, "data")
		assert.NotEmpty(t, entry["data"])
	})

	t.Run("pointer payload is rejected", func(t *testing.T) {
		event := acceptedBidEvent()
		_, err := EncodeMessage(&event)
		assert.ErrorIs(t, err, ErrPointerPayload)

		var nilEvent *streamedBidEvent
		_, err = EncodeMessage(nilEvent)
		assert.ErrorIs(t, err, ErrPointerPayload)
	})
}

func TestDecodeMessage(t *testing.T) {
	t.Run("round trip", func(t *testing.T) {
		input := acceptedBidEvent()
		entry, err := EncodeMessage(input)
		require.NoError(t, err)

		decoded, err := DecodeMessage[streamedBidEvent](entry)
		require.NoError(t, err)
		assert.Equal(t, input, decoded)
	})

	t.Run("omitted fields come back empty", func(t *testing.T) {
		// 生命週期事件不帶出價欄位
		input := streamedBidEvent{
			Type:       "auction_paused",
			AuctionID:  "0198b6a0-0000-7000-8000-0000000000aa",
			Status:     "paused",
			OccurredAt: 1772366400000,
		}
		entry, err := EncodeMessage(input)
		require.NoError(t, err)

		decoded, err := DecodeMessage[streamedBidEvent](entry)
		require.NoError(t, err)
		assert.Empty(t, decoded.BidID)
		assert.Empty(t, decoded.Amount)
		assert.Equal(t, input, decoded)
	})

	t.Run("empty entry decodes to zero value", func(t *testing.T) {
		decoded, err := DecodeMessage[streamedBidEvent](map[string]any{})
		require.NoError(t, err)
		assert.Empty(t, decoded.Type)

		decoded, err = DecodeMessage[streamedBidEvent](nil)
		require.NoError(t, err)
		assert.Empty(t, decoded.Type)
	})

	t.Run("pointer payload is rejected", func(t *testing.T) {
		_, err := DecodeMessage[*streamedBidEvent](map[string]any{"data": "irrelevant"})
		assert.ErrorIs(t, err, ErrPointerPayload)
	})

	t.Run("missing data field", func(t *testing.T) {
		_, err := DecodeMessage[streamedBidEvent](map[string]any{"payload": "x"})
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "data field not found")
	})

	t.Run("data field with wrong type", func(t *testing.T) {
		_, err := DecodeMessage[streamedBidEvent](map[string]any{"data": 123})
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "invalid type")
	})

	t.Run("invalid base64", func(t *testing.T) {
		_, err := DecodeMessage[streamedBidEvent](map[string]any{"data": "not base64!"})
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "base64 decode error")
	})
}
