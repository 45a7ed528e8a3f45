package api

import (
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"gopherpay.com/internal/reward"
	"gopherpay.com/internal/settlement/service"
	"gopherpay.com/pkg/clock"
	"gopherpay.com/pkg/common"
	"gopherpay.com/pkg/xerr"
)

type Handler struct {
	rewards    *reward.Service
	referrals  *reward.ReferralService
	settlement *service.SettlementService
	clock      clock.Clock
}

func NewHandler(rewards *reward.Service, referrals *reward.ReferralService, settlement *service.SettlementService, c clock.Clock) *Handler {
	if c == nil {
		c = clock.System{}
	}
	return &Handler{rewards: rewards, referrals: referrals, settlement: settlement, clock: c}
}

type depositRequest struct {
	Amount    string `json:"amount" validate:"required,numeric"`
	ToAddress string `json:"to_address" validate:"max=128"`
	TxID      string `json:"tx_id" validate:"max=128"`
}

type withdrawalRequest struct {
	Amount    string `json:"amount" validate:"required,numeric"`
	ToAddress string `json:"to_address" validate:"required,max=128"`
}

type decisionRequest struct {
	Reason string `json:"reason" validate:"max=255"`
}

type pageQuery struct {
	Page  int `form:"page" json:"page" validate:"gte=0"`
	Limit int `form:"limit" json:"limit" validate:"gte=0,lte=100"`
}

func (h *Handler) DailyStatus(c *gin.Context) {
	st, err := h.rewards.DailyStatus(c.Request.Context(), userID(c), h.clock.Now())
	if err != nil {
		common.FailFromErr(c, err)
		return
	}
	common.Success(c, st)
}

func (h *Handler) ClaimDaily(c *gin.Context) {
	res, err := h.rewards.ClaimDaily(c.Request.Context(), userID(c), h.clock.Now())
	if err != nil {
		common.FailFromErr(c, err)
		return
	}
	common.Success(c, res)
}

func (h *Handler) RandomStatus(c *gin.Context) {
	st, err := h.rewards.RandomStatus(c.Request.Context(), userID(c), h.clock.Now())
	if err != nil {
		common.FailFromErr(c, err)
		return
	}
	common.Success(c, st)
}

func (h *Handler) ClaimRandom(c *gin.Context) {
	res, err := h.rewards.ClaimRandom(c.Request.Context(), userID(c), h.clock.Now())
	if err != nil {
		common.FailFromErr(c, err)
		return
	}
	common.Success(c, res)
}

func (h *Handler) ReferralStats(c *gin.Context) {
	st, err := h.referrals.Stats(c.Request.Context(), userID(c))
	if err != nil {
		common.FailFromErr(c, err)
		return
	}
	common.Success(c, st)
}

func (h *Handler) RequestDeposit(c *gin.Context) {
	var req depositRequest
	amount, ok := bindAmount(c, &req, func() string { return req.Amount })
	if !ok {
		return
	}
	d, err := h.settlement.RequestDeposit(c.Request.Context(), userID(c), amount, req.ToAddress, req.TxID)
	if err != nil {
		common.FailFromErr(c, err)
		return
	}
	common.Success(c, d)
}

func (h *Handler) RequestWithdrawal(c *gin.Context) {
	var req withdrawalRequest
	amount, ok := bindAmount(c, &req, func() string { return req.Amount })
	if !ok {
		return
	}
	w, err := h.settlement.RequestWithdrawal(c.Request.Context(), userID(c), amount, req.ToAddress, h.clock.Now())
	if err != nil {
		common.FailFromErr(c, err)
		return
	}
	common.Success(c, w)
}

func (h *Handler) PendingDeposits(c *gin.Context) {
	q, ok := bindPage(c)
	if !ok {
		return
	}
	if err := h.settlement.RequireStaff(c.Request.Context(), userID(c)); err != nil {
		common.FailFromErr(c, err)
		return
	}
	list, err := h.settlement.ListPendingDeposits(c.Request.Context(), q.Page, q.Limit)
	if err != nil {
		common.FailFromErr(c, err)
		return
	}
	common.Success(c, list)
}

func (h *Handler) PendingWithdrawals(c *gin.Context) {
	q, ok := bindPage(c)
	if !ok {
		return
	}
	if err := h.settlement.RequireStaff(c.Request.Context(), userID(c)); err != nil {
		common.FailFromErr(c, err)
		return
	}
	list, err := h.settlement.ListPendingWithdrawals(c.Request.Context(), q.Page, q.Limit)
	if err != nil {
		common.FailFromErr(c, err)
		return
	}
	common.Success(c, list)
}

func (h *Handler) ApproveDeposit(c *gin.Context) {
	h.decide(c, func(id int64, reason string) (interface{}, error) {
		return h.settlement.ApproveDeposit(c.Request.Context(), id, userID(c), reason)
	})
}

func (h *Handler) RejectDeposit(c *gin.Context) {
	h.decide(c, func(id int64, reason string) (interface{}, error) {
		return h.settlement.RejectDeposit(c.Request.Context(), id, userID(c), reason)
	})
}

func (h *Handler) ApproveWithdrawal(c *gin.Context) {
	h.decide(c, func(id int64, reason string) (interface{}, error) {
		return h.settlement.ApproveWithdrawal(c.Request.Context(), id, userID(c), reason)
	})
}

func (h *Handler) RejectWithdrawal(c *gin.Context) {
	h.decide(c, func(id int64, reason string) (interface{}, error) {
		return h.settlement.RejectWithdrawal(c.Request.Context(), id, userID(c), reason)
	})
}

// decide parses the :id path parameter and the optional reason body shared by
// the four moderation endpoints.
func (h *Handler) decide(c *gin.Context, fn func(id int64, reason string) (interface{}, error)) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		common.FailFromErr(c, xerr.New(xerr.RequestParamsError, "invalid id"))
		return
	}
	var req decisionRequest
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			common.FailFromErr(c, xerr.Wrap(err, xerr.RequestParamsError, "invalid request body"))
			return
		}
		if err := validate.Struct(&req); err != nil {
			common.FailFromErr(c, validationError(err))
			return
		}
	}
	out, err := fn(id, req.Reason)
	if err != nil {
		common.FailFromErr(c, err)
		return
	}
	common.Success(c, out)
}

func bindAmount(c *gin.Context, req interface{}, amount func() string) (decimal.Decimal, bool) {
	if err := c.ShouldBindJSON(req); err != nil {
		common.FailFromErr(c, xerr.Wrap(err, xerr.RequestParamsError, "invalid request body"))
		return decimal.Zero, false
	}
	if err := validate.Struct(req); err != nil {
		common.FailFromErr(c, validationError(err))
		return decimal.Zero, false
	}
	d, err := decimal.NewFromString(amount())
	if err != nil {
		common.FailFromErr(c, xerr.New(xerr.RequestParamsError, "amount must be a decimal number"))
		return decimal.Zero, false
	}
	return d, true
}

func bindPage(c *gin.Context) (pageQuery, bool) {
	var q pageQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		common.FailFromErr(c, xerr.Wrap(err, xerr.RequestParamsError, "invalid paging"))
		return q, false
	}
	if err := validate.Struct(&q); err != nil {
		common.FailFromErr(c, validationError(err))
		return q, false
	}
	return q, true
}
