package memory

import (
	"context"
	"sync"
	"time"

	"gavel/auction"
)

type ledgerEntry struct {
	result    auction.BidResult
	expiresAt time.Time
}

// Ledger 是 ILedger 的記憶體實作，帶 TTL，語義與 Redis 版一致：
// Put 先寫者勝、Get 未命中回傳 (nil, nil)
type Ledger struct {
	mu      sync.Mutex
	ttl     time.Duration
	now     func() time.Time
	entries map[string]ledgerEntry
}

// NewLedger 建立記憶體帳本，ttl <= 0 表示永不淘汰
func NewLedger(ttl time.Duration) *Ledger {
	return &Ledger{
		ttl:     ttl,
		now:     time.Now,
		entries: make(map[string]ledgerEntry),
	}
}

func (l *Ledger) Get(_ context.Context, key auction.LedgerKey) (*auction.BidResult, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	entry, ok := l.entries[key.String()]
	if !ok {
		return nil, nil
	}
	if l.ttl > 0 && l.now().After(entry.expiresAt) {
		delete(l.entries, key.String())
		return nil, nil
	}
	out := entry.result
	return &out, nil
}

func (l *Ledger) Put(_ context.Context, key auction.LedgerKey, result auction.BidResult) (auction.BidResult, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if entry, ok := l.entries[key.String()]; ok && (l.ttl <= 0 || l.now().Before(entry.expiresAt)) {
		return entry.result, nil
	}
	l.entries[key.String()] = ledgerEntry{result: result, expiresAt: l.now().Add(l.ttl)}
	return result, nil
}
