package api

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"travelink/internal/service/schedule"
)

type ScheduleHandler struct {
	service      schedule.ScheduleUseCase
	defaultLimit int
}

type createTripRequest struct {
	RouteID        string     `json:"route_id" binding:"required"`
	VehicleID      string     `json:"vehicle_id" binding:"required"`
	DriverID       string     `json:"driver_id"`
	DepartureTime  time.Time  `json:"departure_time" binding:"required"`
	ArrivalTime    *time.Time `json:"arrival_time"`
	Price          int64      `json:"price"`
	AvailableSeats int        `json:"available_seats"`
}

type updateTripRequest struct {
	RouteID        *string    `json:"route_id"`
	VehicleID      *string    `json:"vehicle_id"`
	DriverID       *string    `json:"driver_id"`
	DepartureTime  *time.Time `json:"departure_time"`
	ArrivalTime    *time.Time `json:"arrival_time"`
	Price          *int64     `json:"price"`
	AvailableSeats *int       `json:"available_seats"`
}

type assignDriverRequest struct {
	DriverID string `json:"driver_id" binding:"required"`
}

func NewScheduleHandler(service schedule.ScheduleUseCase, defaultLimit int) *ScheduleHandler {
	if defaultLimit <= 0 {
		defaultLimit = 50
	}
	return &ScheduleHandler{service: service, defaultLimit: defaultLimit}
}

func (h *ScheduleHandler) Register(router *gin.RouterGroup) {
	router.GET("/", h.list)
	router.GET("/:id", h.get)
	router.POST("/", h.create)
	router.PATCH("/:id", h.update)
	router.PUT("/:id/driver", h.assignDriver)
	router.PUT("/:id/depart", h.markDeparted)
	router.PUT("/:id/arrive", h.markArrived)
	router.PUT("/:id/cancel", h.cancel)
	router.DELETE("/:id", h.remove)
}

func (h *ScheduleHandler) list(c *gin.Context) {
	limit := h.defaultLimit
	if raw := c.Query("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid limit"})
			return
		}
		limit = parsed
	}

	schedules, err := h.service.ListUpcoming(c.Request.Context(), limit)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, schedules)
}

func (h *ScheduleHandler) get(c *gin.Context) {
	trip, err := h.service.GetTrip(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, trip)
}

func (h *ScheduleHandler) create(c *gin.Context) {
	var req createTripRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	trip, err := h.service.CreateTrip(c.Request.Context(), schedule.CreateTripInput{
		RouteID:        req.RouteID,
		VehicleID:      req.VehicleID,
		DriverID:       req.DriverID,
		DepartureTime:  req.DepartureTime,
		ArrivalTime:    req.ArrivalTime,
		Price:          req.Price,
		AvailableSeats: req.AvailableSeats,
	})
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, trip)
}

func (h *ScheduleHandler) update(c *gin.Context) {
	var req updateTripRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	trip, err := h.service.UpdateTrip(c.Request.Context(), c.Param("id"), schedule.UpdateTripInput{
		RouteID:        req.RouteID,
		VehicleID:      req.VehicleID,
		DriverID:       req.DriverID,
		DepartureTime:  req.DepartureTime,
		ArrivalTime:    req.ArrivalTime,
		Price:          req.Price,
		AvailableSeats: req.AvailableSeats,
	})
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, trip)
}

func (h *ScheduleHandler) assignDriver(c *gin.Context) {
	var req assignDriverRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	trip, err := h.service.AssignDriver(c.Request.Context(), c.Param("id"), req.DriverID)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, trip)
}

func (h *ScheduleHandler) markDeparted(c *gin.Context) {
	trip, err := h.service.MarkDeparted(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, trip)
}

func (h *ScheduleHandler) markArrived(c *gin.Context) {
	trip, err := h.service.MarkArrived(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, trip)
}

func (h *ScheduleHandler) cancel(c *gin.Context) {
	trip, err := h.service.CancelTrip(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, trip)
}

func (h *ScheduleHandler) remove(c *gin.Context) {
	if err := h.service.RemoveTrip(c.Request.Context(), c.Param("id")); err != nil {
		writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
