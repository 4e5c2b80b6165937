package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"travelink/internal/domain"
	"travelink/internal/service/booking"
)

type ProofHandler struct {
	service booking.BookingUseCase
}

type submitProofRequest struct {
	ScheduleID     string                   `json:"schedule_id" binding:"required"`
	BookerPhone    string                   `json:"booker_phone" binding:"required"`
	PickupAddress  string                   `json:"pickup_address"`
	DropoffAddress string                   `json:"dropoff_address"`
	ProofURL       string                   `json:"proof_url" binding:"required"`
	Passengers     []booking.PassengerInput `json:"passengers" binding:"required"`
	Notes          string                   `json:"notes"`
}

type rejectProofRequest struct {
	Reason string `json:"reason" binding:"required"`
}

func NewProofHandler(service booking.BookingUseCase) *ProofHandler {
	return &ProofHandler{service: service}
}

func (h *ProofHandler) Register(router *gin.RouterGroup) {
	router.POST("/", h.submit)
	router.GET("/", h.list)
	router.GET("/:id", h.get)
	router.PUT("/:id/approve", h.approve)
	router.PUT("/:id/reject", h.reject)
	router.DELETE("/:id", h.remove)
}

func (h *ProofHandler) submit(c *gin.Context) {
	var req submitProofRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	proof, err := h.service.SubmitProof(c.Request.Context(), actorFrom(c), booking.SubmitProofInput{
		ScheduleID:     req.ScheduleID,
		BookerPhone:    req.BookerPhone,
		PickupAddress:  req.PickupAddress,
		DropoffAddress: req.DropoffAddress,
		ProofURL:       req.ProofURL,
		Passengers:     req.Passengers,
		Notes:          req.Notes,
	})
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, proof)
}

func (h *ProofHandler) list(c *gin.Context) {
	status := domain.PaymentProofStatus(c.DefaultQuery("status", string(domain.PaymentProofStatusPending)))
	proofs, err := h.service.ListProofs(c.Request.Context(), actorFrom(c), status)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, proofs)
}

func (h *ProofHandler) get(c *gin.Context) {
	proof, err := h.service.GetProof(c.Request.Context(), actorFrom(c), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, proof)
}

func (h *ProofHandler) approve(c *gin.Context) {
	ticket, err := h.service.ApproveProof(c.Request.Context(), actorFrom(c), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, ticket)
}

func (h *ProofHandler) reject(c *gin.Context) {
	var req rejectProofRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	proof, err := h.service.RejectProof(c.Request.Context(), actorFrom(c), c.Param("id"), req.Reason)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, proof)
}

func (h *ProofHandler) remove(c *gin.Context) {
	if err := h.service.RemoveProof(c.Request.Context(), actorFrom(c), c.Param("id")); err != nil {
		writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
