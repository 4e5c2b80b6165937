package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"travelink/internal/service/document"
)

type DocumentHandler struct {
	service document.DocumentUseCase
}

type issueDocumentRequest struct {
	TicketID string `json:"ticket_id" binding:"required"`
}

func NewDocumentHandler(service document.DocumentUseCase) *DocumentHandler {
	return &DocumentHandler{service: service}
}

func (h *DocumentHandler) Register(router *gin.RouterGroup) {
	router.POST("/", h.issue)
	router.GET("/", h.listByTicket)
	router.GET("/:id", h.get)
}

func (h *DocumentHandler) issue(c *gin.Context) {
	var req issueDocumentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	doc, err := h.service.Issue(c.Request.Context(), actorFrom(c), req.TicketID)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, doc)
}

func (h *DocumentHandler) listByTicket(c *gin.Context) {
	ticketID := c.Query("ticket_id")
	if ticketID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "ticket_id is required"})
		return
	}

	docs, err := h.service.ListByTicket(c.Request.Context(), ticketID)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, docs)
}

func (h *DocumentHandler) get(c *gin.Context) {
	doc, err := h.service.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, doc)
}
