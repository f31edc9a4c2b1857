package api

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	openapi_types "github.com/oapi-codegen/runtime/types"
	"github.com/samber/lo"
	"github.com/shopspring/decimal"

	"gavel/api/openapi"
	"gavel/auction"
	"gavel/models"
)

// RegisterHandlers 把產生的路由表掛上 router；路由與參數綁定以 openapi.yaml 為準
func RegisterHandlers(router gin.IRouter, impl *ServerImpl) {
	openapi.RegisterHandlersWithOptions(router, impl, openapi.GinServerOptions{
		// 路徑參數綁定失敗（不是合法的uuid）時維持一致的錯誤外形
		ErrorHandler: func(c *gin.Context, err error, statusCode int) {
			c.JSON(statusCode, openapi.ErrorResponse{Code: "validation", Message: err.Error()})
		},
	})
}

// writeEngineError 把引擎的錯誤分類法對應到HTTP狀態碼
// State 與 Conflict 同為 409，以 body 中的 code 區分
func writeEngineError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, auction.ErrValidation):
		c.JSON(http.StatusBadRequest, openapi.ErrorResponse{Code: "validation", Message: err.Error()})
	case errors.Is(err, auction.ErrAuthorization):
		c.JSON(http.StatusForbidden, openapi.ErrorResponse{Code: "authorization", Message: err.Error()})
	case errors.Is(err, auction.ErrNotFound):
		c.JSON(http.StatusNotFound, openapi.ErrorResponse{Code: "not-found", Message: err.Error()})
	case errors.Is(err, auction.ErrConflict):
		c.JSON(http.StatusConflict, openapi.ErrorResponse{Code: "conflict", Message: err.Error()})
	case errors.Is(err, auction.ErrState):
		c.JSON(http.StatusConflict, openapi.ErrorResponse{Code: "state", Message: err.Error()})
	case errors.Is(err, auction.ErrTransient):
		c.JSON(http.StatusServiceUnavailable, openapi.ErrorResponse{Code: "transient", Message: "temporary contention, please retry"})
	default:
		slog.Error("unhandled engine error", slog.Any("error", err))
		c.JSON(http.StatusInternalServerError, openapi.ErrorResponse{Code: "internal", Message: "internal error"})
	}
}

func writeUnauthenticated(c *gin.Context) {
	c.JSON(http.StatusUnauthorized, openapi.ErrorResponse{Code: "unauthenticated", Message: "a valid access token is required"})
}

// Submit a bid
// (POST /auction/{auctionID}/bids)
func (impl *ServerImpl) PostAuctionBid(c *gin.Context, auctionID openapi_types.UUID) {
	callerID, err := impl.callerID(c)
	if err != nil || callerID == uuid.Nil {
		writeUnauthenticated(c)
		return
	}

	var body openapi.BidRequestBody
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, openapi.ErrorResponse{Code: "validation", Message: err.Error()})
		return
	}
	amount, err := decimal.NewFromString(body.Amount)
	if err != nil {
		c.JSON(http.StatusBadRequest, openapi.ErrorResponse{Code: "validation", Message: "invalid amount"})
		return
	}

	req := auction.BidRequest{
		AuctionID:      uuid.UUID(auctionID),
		BidderID:       callerID,
		Amount:         amount,
		IdempotencyKey: body.IdempotencyKey,
	}
	// 配送選擇原樣透傳，引擎不做任何驗證
	if body.UserAddressId != nil || lo.FromPtr(body.Courier) != "" {
		shipping := models.ShippingSelection{
			Courier:        lo.FromPtr(body.Courier),
			CourierService: lo.FromPtr(body.CourierService),
		}
		if body.UserAddressId != nil {
			addressID, err := uuid.Parse(*body.UserAddressId)
			if err != nil {
				c.JSON(http.StatusBadRequest, openapi.ErrorResponse{Code: "validation", Message: "invalid address id"})
				return
			}
			shipping.UserAddressID = &addressID
		}
		req.Shipping = &shipping
	}

	result, err := impl.admission.SubmitBid(c.Request.Context(), req)
	if err != nil {
		// 重播出來的拒絕也帶有結果，讓重試的客戶端拿到與第一次相同的 body
		if errors.Is(err, auction.ErrState) && result.BidID != uuid.Nil {
			c.JSON(http.StatusConflict, toBidResultResponse(result))
			return
		}
		writeEngineError(c, err)
		return
	}
	c.JSON(http.StatusCreated, toBidResultResponse(result))
}

// Activate a scheduled auction immediately
// (POST /auction/{auctionID}/activate-now)
func (impl *ServerImpl) PostAuctionActivateNow(c *gin.Context, auctionID openapi_types.UUID) {
	impl.runLifecycle(c, auctionID, impl.lifecycle.ActivateNow)
}

// Pause an active auction
// (POST /auction/{auctionID}/pause)
func (impl *ServerImpl) PostAuctionPause(c *gin.Context, auctionID openapi_types.UUID) {
	impl.runLifecycle(c, auctionID, impl.lifecycle.Pause)
}

// Resume a paused auction
// (POST /auction/{auctionID}/resume)
func (impl *ServerImpl) PostAuctionResume(c *gin.Context, auctionID openapi_types.UUID) {
	impl.runLifecycle(c, auctionID, impl.lifecycle.Resume)
}

// Cancel an auction before settlement
// (POST /auction/{auctionID}/cancel)
func (impl *ServerImpl) PostAuctionCancel(c *gin.Context, auctionID openapi_types.UUID) {
	impl.runLifecycle(c, auctionID, impl.lifecycle.Cancel)
}

// runLifecycle 是賣家指令的共同骨架，verb 本身由呼叫端以方法值傳入
func (impl *ServerImpl) runLifecycle(c *gin.Context, auctionID openapi_types.UUID,
	verb func(ctx context.Context, callerID, auctionID uuid.UUID) (*models.Auction, error)) {
	callerID, err := impl.callerID(c)
	if err != nil || callerID == uuid.Nil {
		writeUnauthenticated(c)
		return
	}

	out, err := verb(c.Request.Context(), callerID, uuid.UUID(auctionID))
	if err != nil {
		writeEngineError(c, err)
		return
	}
	c.JSON(http.StatusOK, toTransitionResponse(out))
}

// Extend the bidding window (forward only)
// (POST /auction/{auctionID}/extend)
func (impl *ServerImpl) PostAuctionExtend(c *gin.Context, auctionID openapi_types.UUID) {
	callerID, err := impl.callerID(c)
	if err != nil || callerID == uuid.Nil {
		writeUnauthenticated(c)
		return
	}

	var body openapi.ExtendRequestBody
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, openapi.ErrorResponse{Code: "validation", Message: err.Error()})
		return
	}
	if body.Minutes <= 0 {
		c.JSON(http.StatusBadRequest, openapi.ErrorResponse{Code: "validation", Message: "minutes must be positive"})
		return
	}

	out, err := impl.lifecycle.Extend(c.Request.Context(), callerID, uuid.UUID(auctionID), uint32(body.Minutes))
	if err != nil {
		writeEngineError(c, err)
		return
	}
	c.JSON(http.StatusOK, toTransitionResponse(out))
}

// Get auction projection
// (GET /auction/{auctionID})
func (impl *ServerImpl) GetAuction(c *gin.Context, auctionID openapi_types.UUID) {
	// 匿名瀏覽者（沒有憑證）也能查詢，只是看不到保留價
	// 帶著無效憑證的請求則照常打回，不能降級成匿名放行
	callerID, err := impl.callerID(c)
	if err != nil {
		writeUnauthenticated(c)
		return
	}

	view, err := impl.query.GetAuction(c.Request.Context(), callerID, uuid.UUID(auctionID))
	if err != nil {
		writeEngineError(c, err)
		return
	}

	out := openapi.AuctionResponse{
		AuctionId:      view.AuctionID.String(),
		ItemId:         view.ItemID.String(),
		SellerId:       view.SellerID.String(),
		Status:         string(view.Status),
		StartPrice:     view.StartPrice.String(),
		MinIncrement:   view.MinIncrement.String(),
		StartAt:        view.StartAt,
		EndAt:          view.EndAt,
		ExtensionCount: int32(view.ExtensionCount),
		Countdown: openapi.CountdownResponse{
			Phase:   string(view.Countdown.Phase),
			Seconds: int64(view.Countdown.Delta / time.Second),
		},
	}
	if view.ReservePrice != nil {
		out.ReservePrice = lo.ToPtr(view.ReservePrice.String())
	}
	if view.HighestAmount != nil {
		out.HighestAmount = lo.ToPtr(view.HighestAmount.String())
	}
	c.JSON(http.StatusOK, out)
}

// Get full bid history (seller only)
// (GET /auction/{auctionID}/bids)
func (impl *ServerImpl) GetAuctionBids(c *gin.Context, auctionID openapi_types.UUID) {
	callerID, err := impl.callerID(c)
	if err != nil || callerID == uuid.Nil {
		writeUnauthenticated(c)
		return
	}

	views, err := impl.query.ListBids(c.Request.Context(), callerID, uuid.UUID(auctionID))
	if err != nil {
		writeEngineError(c, err)
		return
	}
	c.JSON(http.StatusOK, lo.Map(views, func(v auction.BidView, _ int) openapi.BidViewResponse {
		return toBidViewResponse(v)
	}))
}

// Get the caller's own bid history
// (GET /auction/{auctionID}/my-bids)
func (impl *ServerImpl) GetMyBids(c *gin.Context, auctionID openapi_types.UUID) {
	callerID, err := impl.callerID(c)
	if err != nil || callerID == uuid.Nil {
		writeUnauthenticated(c)
		return
	}

	views, err := impl.query.ListBidderBids(c.Request.Context(), callerID, uuid.UUID(auctionID))
	if err != nil {
		writeEngineError(c, err)
		return
	}
	c.JSON(http.StatusOK, lo.Map(views, func(v auction.BidView, _ int) openapi.BidViewResponse {
		return toBidViewResponse(v)
	}))
}

func toBidResultResponse(result auction.BidResult) openapi.BidResultResponse {
	out := openapi.BidResultResponse{
		BidId:     result.BidID.String(),
		AuctionId: result.AuctionID.String(),
		Amount:    result.Amount.String(),
		Accepted:  result.Accepted,
		CreatedAt: result.CreatedAt,
	}
	if result.RejectReason != "" {
		out.RejectReason = lo.ToPtr(result.RejectReason)
	}
	return out
}

func toBidViewResponse(v auction.BidView) openapi.BidViewResponse {
	out := openapi.BidViewResponse{
		BidId:     v.BidID.String(),
		Amount:    v.Amount.String(),
		Outcome:   string(v.Outcome),
		CreatedAt: v.CreatedAt,
	}
	if v.BidderID != nil {
		out.BidderId = lo.ToPtr(v.BidderID.String())
	}
	if v.RejectReason != "" {
		out.RejectReason = lo.ToPtr(v.RejectReason)
	}
	return out
}

func toTransitionResponse(a *models.Auction) openapi.TransitionResponse {
	return openapi.TransitionResponse{
		AuctionId:      a.ID.String(),
		Status:         string(a.Status),
		StartAt:        a.StartAt,
		EndAt:          a.EndAt,
		ExtensionCount: int32(a.ExtensionCount),
	}
}
