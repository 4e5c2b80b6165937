package api

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"travelink/internal/domain"
	"travelink/internal/service/coin"
)

type CoinHandler struct {
	service coin.CoinUseCase
}

type topUpRequest struct {
	Amount int64  `json:"amount" binding:"required"`
	Notes  string `json:"notes"`
}

type rejectTopUpRequest struct {
	Reason string `json:"reason" binding:"required"`
}

func NewCoinHandler(service coin.CoinUseCase) *CoinHandler {
	return &CoinHandler{service: service}
}

func (h *CoinHandler) Register(router *gin.RouterGroup) {
	router.GET("/balance/:adminID", h.balance)
	router.GET("/transactions/:adminID", h.transactions)
	router.POST("/requests", h.createRequest)
	router.GET("/requests", h.listRequests)
	router.PUT("/requests/:id/approve", h.approveRequest)
	router.PUT("/requests/:id/reject", h.rejectRequest)
}

func (h *CoinHandler) balance(c *gin.Context) {
	balance, err := h.service.GetBalance(c.Request.Context(), actorFrom(c), c.Param("adminID"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"admin_id": c.Param("adminID"), "balance": balance})
}

func (h *CoinHandler) transactions(c *gin.Context) {
	limit := 100
	if raw := c.Query("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid limit"})
			return
		}
		limit = parsed
	}

	transactions, err := h.service.ListTransactions(c.Request.Context(), actorFrom(c), c.Param("adminID"), limit)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, transactions)
}

func (h *CoinHandler) createRequest(c *gin.Context) {
	var req topUpRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	request, err := h.service.CreateTopUpRequest(c.Request.Context(), actorFrom(c), req.Amount, req.Notes)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, request)
}

func (h *CoinHandler) listRequests(c *gin.Context) {
	status := domain.CoinRequestStatus(c.DefaultQuery("status", string(domain.CoinRequestStatusPending)))
	requests, err := h.service.ListTopUpRequests(c.Request.Context(), actorFrom(c), status)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, requests)
}

func (h *CoinHandler) approveRequest(c *gin.Context) {
	request, err := h.service.ApproveTopUp(c.Request.Context(), actorFrom(c), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, request)
}

func (h *CoinHandler) rejectRequest(c *gin.Context) {
	var req rejectTopUpRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	request, err := h.service.RejectTopUp(c.Request.Context(), actorFrom(c), c.Param("id"), req.Reason)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, request)
}
