package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"travelink/internal/service/booking"
)

type TicketHandler struct {
	service booking.BookingUseCase
}

type createTicketRequest struct {
	ScheduleID     string                   `json:"schedule_id" binding:"required"`
	CustomerID     string                   `json:"customer_id"`
	BookerPhone    string                   `json:"booker_phone" binding:"required"`
	PickupAddress  string                   `json:"pickup_address"`
	DropoffAddress string                   `json:"dropoff_address"`
	Passengers     []booking.PassengerInput `json:"passengers" binding:"required"`
	Notes          string                   `json:"notes"`
}

func NewTicketHandler(service booking.BookingUseCase) *TicketHandler {
	return &TicketHandler{service: service}
}

func (h *TicketHandler) Register(router *gin.RouterGroup) {
	router.POST("/", h.create)
	router.GET("/", h.list)
	router.GET("/:id", h.get)
	router.PUT("/:id/confirm", h.confirm)
	router.PUT("/:id/complete", h.complete)
	router.PUT("/:id/cancel", h.cancel)
	router.DELETE("/:id", h.remove)
}

func (h *TicketHandler) create(c *gin.Context) {
	var req createTicketRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ticket, err := h.service.CreateTicket(c.Request.Context(), actorFrom(c), booking.CreateTicketInput{
		ScheduleID:     req.ScheduleID,
		CustomerID:     req.CustomerID,
		BookerPhone:    req.BookerPhone,
		PickupAddress:  req.PickupAddress,
		DropoffAddress: req.DropoffAddress,
		Passengers:     req.Passengers,
		Notes:          req.Notes,
	})
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, ticket)
}

func (h *TicketHandler) list(c *gin.Context) {
	tickets, err := h.service.ListTickets(c.Request.Context(), actorFrom(c))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, tickets)
}

func (h *TicketHandler) get(c *gin.Context) {
	ticket, err := h.service.GetTicket(c.Request.Context(), actorFrom(c), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, ticket)
}

func (h *TicketHandler) confirm(c *gin.Context) {
	ticket, err := h.service.ConfirmTicket(c.Request.Context(), actorFrom(c), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, ticket)
}

func (h *TicketHandler) complete(c *gin.Context) {
	ticket, err := h.service.CompleteTicket(c.Request.Context(), actorFrom(c), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, ticket)
}

func (h *TicketHandler) cancel(c *gin.Context) {
	ticket, err := h.service.CancelTicket(c.Request.Context(), actorFrom(c), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, ticket)
}

func (h *TicketHandler) remove(c *gin.Context) {
	if err := h.service.RemoveTicket(c.Request.Context(), actorFrom(c), c.Param("id")); err != nil {
		writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
