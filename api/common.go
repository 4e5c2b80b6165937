package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"travelink/internal/domain"
)

// Authentication happens at the gateway; it forwards the verified identity in
// these headers.
const (
	headerUserID   = "X-User-Id"
	headerUserRole = "X-User-Role"
)

func actorFrom(c *gin.Context) domain.Actor {
	return domain.Actor{
		UserID: c.GetHeader(headerUserID),
		Role:   domain.UserRole(c.GetHeader(headerUserRole)),
	}
}

func statusFor(err error) int {
	switch domain.KindOf(err) {
	case domain.KindNotFound:
		return http.StatusNotFound
	case domain.KindValidation, domain.KindTemporalViolation:
		return http.StatusBadRequest
	case domain.KindPermissionDenied:
		return http.StatusForbidden
	case domain.KindInvalidState, domain.KindResourceConflict,
		domain.KindSeatConflict, domain.KindCapacityExceeded:
		return http.StatusConflict
	case domain.KindInsufficientBalance:
		return http.StatusUnprocessableEntity
	}
	return http.StatusInternalServerError
}

func writeError(c *gin.Context, err error) {
	c.JSON(statusFor(err), gin.H{
		"error": err.Error(),
		"kind":  string(domain.KindOf(err)),
	})
}
