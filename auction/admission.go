package auction

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"gavel/models"
)

type admissionOptions struct {
	logger        *slog.Logger
	quoter        IShippingQuoter
	now           func() time.Time
	retryAttempts int
	retryDelay    time.Duration
}

type AdmissionOption func(*admissionOptions)

// WithAdmissionLogger 設置日誌記錄器
func WithAdmissionLogger(logger *slog.Logger) AdmissionOption {
	return func(o *admissionOptions) {
		o.logger = logger
	}
}

// WithAdmissionQuoter 設置配送報價的查詢介面（報價僅供參考，失敗不影響出價）
func WithAdmissionQuoter(quoter IShippingQuoter) AdmissionOption {
	return func(o *admissionOptions) {
		o.quoter = quoter
	}
}

// WithAdmissionClock 設置時鐘（主要用於測試）
func WithAdmissionClock(now func() time.Time) AdmissionOption {
	return func(o *admissionOptions) {
		o.now = now
	}
}

// WithAdmissionRetry 設置版本競爭的重試額度與延遲
func WithAdmissionRetry(attempts int, delay time.Duration) AdmissionOption {
	return func(o *admissionOptions) {
		o.retryAttempts = attempts
		o.retryDelay = delay
	}
}

// AdmissionEngine 負責驗證並原子性地提交單筆出價
// 金額與時間窗的不變量一律由引擎在提交當下裁決，絕不信任客戶端的判斷
type AdmissionEngine struct {
	store   IAuctionStore
	ledger  ILedger
	sink    IEventSink
	logger  *slog.Logger
	options admissionOptions
}

// NewAdmissionEngine 建立出價提交引擎
func NewAdmissionEngine(store IAuctionStore, ledger ILedger, sink IEventSink, opts ...AdmissionOption) (*AdmissionEngine, error) {
	if store == nil {
		return nil, errors.New("auction store cannot be nil")
	}
	if ledger == nil {
		return nil, errors.New("idempotency ledger cannot be nil")
	}
	if sink == nil {
		return nil, errors.New("event sink cannot be nil")
	}

	// 默認選項
	options := admissionOptions{
		logger:        slog.Default(),
		now:           time.Now,
		retryAttempts: 5,
		retryDelay:    20 * time.Millisecond,
	}

	// 應用自定義選項
	for _, opt := range opts {
		opt(&options)
	}

	return &AdmissionEngine{
		store:   store,
		ledger:  ledger,
		sink:    sink,
		logger:  options.logger.With(slog.String("caller", "AdmissionEngine")),
		options: options,
	}, nil
}

// SubmitBid 提交一筆出價
// 流程：冪等帳本 → 資料庫唯一索引後盾 → 驗證不變量 → CAS 提交（有界重試）→ 帳本回寫與事件
// 回傳的 BidResult 在拒絕時也會帶出原因，錯誤種類見 errors.go 的分類法
func (e *AdmissionEngine) SubmitBid(ctx context.Context, req BidRequest) (BidResult, error) {
	// 基本輸入檢查
	if req.IdempotencyKey == "" {
		return BidResult{}, fmt.Errorf("%w: idempotency key is required", ErrValidation)
	}
	if req.Amount.IsNegative() {
		return BidResult{}, fmt.Errorf("%w: amount must be non-negative", ErrValidation)
	}

	key := LedgerKey{AuctionID: req.AuctionID, BidderID: req.BidderID, IdempotencyKey: req.IdempotencyKey}

	// 有界的 CAS 重試迴圈：版本競爭的輸家會重新讀取最新狀態，再完整驗證一次
	// 重播檢查放在 attempt 裡面，讓每一輪重試都重新執行
	var result BidResult
	err := withRetry(ctx, e.options.retryAttempts, e.options.retryDelay, func() error {
		var attemptErr error
		result, attemptErr = e.attempt(ctx, key, req)
		return attemptErr
	})
	return result, err
}

// attempt 執行單次「重播檢查、讀取、驗證、CAS 提交」
// 版本衝突以 ErrVersionConflict 回傳給外層的重試迴圈處理
// 帳本與唯一索引的重播檢查必須留在迴圈內：同鍵的併發對手可能在上一輪
// CAS 失敗之後才完成提交，這一輪要重播對手的結果，而不是拿升高後的底線重新裁決
func (e *AdmissionEngine) attempt(ctx context.Context, key LedgerKey, req BidRequest) (BidResult, error) {
	const op = "AdmissionEngine.attempt"
	logger := e.logger.With(slog.String("auctionID", req.AuctionID.String()), slog.String("bidderID", req.BidderID.String()))

	// 1. 先查冪等帳本；命中時以鍵為準原封不動地重播，金額不同本身就是 ConflictError
	if cached, err := e.ledger.Get(ctx, key); err != nil {
		// 帳本只是重播捷徑，查詢失敗時退回資料庫的唯一索引後盾
		logger.Warn("ledger lookup failed", slog.Any("error", err))
	} else if cached != nil {
		return e.replay(req, *cached)
	}

	// 2. 帳本可能已經淘汰，資料庫的唯一索引是持久的後盾
	existing, err := e.store.GetBidByKey(ctx, req.AuctionID, req.BidderID, req.IdempotencyKey)
	if err != nil && !errors.Is(err, ErrNotFound) {
		return BidResult{}, fmt.Errorf("[%s] fail to check existing bid, err=%w", op, err)
	}
	if existing != nil {
		return e.replay(req, resultFromBid(existing))
	}

	current, err := e.store.Get(ctx, req.AuctionID)
	if err != nil {
		return BidResult{}, err
	}
	now := e.options.now()

	// 終態下的拒絕是永久性的：寫入帳本與出價紀錄，讓之後的重試得到完全相同的結果
	if current.Status.Terminal() {
		return e.rejectTerminal(ctx, key, req, current, now)
	}

	// 不變量 1：只在 active 且 now ∈ [startAt, endAt) 之內受理出價
	// 這類失敗不寫入帳本，以免掩蓋之後帶著修正輸入的合法重試
	if current.Status != models.StatusActive {
		return BidResult{}, fmt.Errorf("%w: auction is %s", ErrState, current.Status)
	}
	if now.Before(current.StartAt) {
		return BidResult{}, fmt.Errorf("%w: auction has not started", ErrState)
	}
	if !now.Before(current.EndAt) {
		return BidResult{}, fmt.Errorf("%w: auction bidding window is closed", ErrState)
	}

	// 不變量 2 與 3：價格底線
	floor := current.CurrentFloor()
	if req.Amount.LessThan(floor) {
		return BidResult{}, fmt.Errorf("%w: amount %s is below required floor %s", ErrValidation, req.Amount, floor)
	}

	bid, err := e.buildBid(ctx, req, now, models.BidAccepted, "")
	if err != nil {
		return BidResult{}, fmt.Errorf("[%s] fail to build bid, err=%w", op, err)
	}

	// 在複本上套用新的領先出價，帶著讀到的版本號提交
	amount := req.Amount
	bidderID := req.BidderID
	updated := *current
	updated.HighestBidID = &bid.ID
	updated.HighestBidderID = &bidderID
	updated.HighestAmount = &amount
	if err := e.store.ApplyTransition(ctx, &updated, current.Version, bid); err != nil {
		if errors.Is(err, ErrDuplicateBid) {
			// 同鍵的併發重試在插入時撞上唯一索引，改走重播路徑
			return e.replayFromStore(ctx, req)
		}
		return BidResult{}, err
	}

	result := BidResult{
		BidID:     bid.ID,
		AuctionID: req.AuctionID,
		BidderID:  req.BidderID,
		Amount:    amount,
		Accepted:  true,
		CreatedAt: now,
	}
	e.writeLedger(ctx, key, result)
	e.sink.Notify(Event{
		Type:       EventBidAccepted,
		AuctionID:  req.AuctionID,
		Status:     updated.Status,
		BidID:      &bid.ID,
		Amount:     &amount,
		OccurredAt: now,
	})
	logger.Info("bid accepted", slog.String("bidID", bid.ID.String()), slog.String("amount", amount.String()))
	return result, nil
}

// rejectTerminal 處理拍賣已進入終態時的出價：
// 這種拒絕永遠不會因重試而改變，所以會寫入出價紀錄（供 my-bids 呈現）並快取在帳本中
func (e *AdmissionEngine) rejectTerminal(ctx context.Context, key LedgerKey, req BidRequest, current *models.Auction, now time.Time) (BidResult, error) {
	const op = "AdmissionEngine.rejectTerminal"

	reason := fmt.Sprintf("auction already %s", current.Status)
	bid, err := e.buildBid(ctx, req, now, models.BidRejected, reason)
	if err != nil {
		return BidResult{}, fmt.Errorf("[%s] fail to build bid, err=%w", op, err)
	}
	if err := e.store.CreateBid(ctx, bid); err != nil {
		if errors.Is(err, ErrDuplicateBid) {
			return e.replayFromStore(ctx, req)
		}
		return BidResult{}, fmt.Errorf("[%s] fail to record rejected bid, err=%w", op, err)
	}

	result := BidResult{
		BidID:        bid.ID,
		AuctionID:    req.AuctionID,
		BidderID:     req.BidderID,
		Amount:       req.Amount,
		Accepted:     false,
		RejectReason: reason,
		CreatedAt:    now,
	}
	// 先寫者勝：同鍵的併發提交以實際留存在帳本中的結果為準
	stored, err := e.ledger.Put(ctx, key, result)
	if err != nil {
		e.logger.Warn("ledger write failed", slog.String("key", key.String()), slog.Any("error", err))
		stored = result
	}
	return stored, fmt.Errorf("%w: %s", ErrState, stored.RejectReason)
}

// replay 以鍵為準重播先前的結果；同鍵但金額不同視為 ConflictError 而不是新的出價
func (e *AdmissionEngine) replay(req BidRequest, stored BidResult) (BidResult, error) {
	if !stored.Amount.Equal(req.Amount) {
		return BidResult{}, fmt.Errorf("%w: idempotency key was already used with amount %s", ErrConflict, stored.Amount)
	}
	if !stored.Accepted {
		return stored, fmt.Errorf("%w: %s", ErrState, stored.RejectReason)
	}
	return stored, nil
}

func (e *AdmissionEngine) replayFromStore(ctx context.Context, req BidRequest) (BidResult, error) {
	const op = "AdmissionEngine.replayFromStore"
	existing, err := e.store.GetBidByKey(ctx, req.AuctionID, req.BidderID, req.IdempotencyKey)
	if err != nil {
		return BidResult{}, fmt.Errorf("[%s] fail to load existing bid, err=%w", op, err)
	}
	return e.replay(req, resultFromBid(existing))
}

// buildBid 組出待寫入的出價紀錄；配送選擇對引擎不透明，報價僅供參考
func (e *AdmissionEngine) buildBid(ctx context.Context, req BidRequest, now time.Time, outcome models.BidOutcome, reason string) (*models.Bid, error) {
	bidID, err := uuid.NewV7()
	if err != nil {
		return nil, err
	}
	bid := &models.Bid{
		ID:             bidID,
		AuctionID:      req.AuctionID,
		BidderID:       req.BidderID,
		IdempotencyKey: req.IdempotencyKey,
		Amount:         req.Amount,
		Outcome:        outcome,
		RejectReason:   reason,
	}
	bid.CreatedAt = now
	if req.Shipping != nil {
		bid.Shipping = *req.Shipping
		if e.options.quoter != nil && req.Shipping.Courier != "" {
			if price, qErr := e.options.quoter.Quote(ctx, req.Shipping.Courier, req.Shipping.CourierService); qErr != nil {
				e.logger.Debug("shipping quote failed", slog.Any("error", qErr))
			} else {
				bid.Shipping.QuotedPrice = price
			}
		}
	}
	return bid, nil
}

// writeLedger 回寫帳本；寫入失敗只記錄，不影響已經提交的出價
func (e *AdmissionEngine) writeLedger(ctx context.Context, key LedgerKey, result BidResult) {
	if _, err := e.ledger.Put(ctx, key, result); err != nil {
		e.logger.Warn("ledger write failed", slog.String("key", key.String()), slog.Any("error", err))
	}
}
