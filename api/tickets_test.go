package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"travelink/internal/domain"
	"travelink/internal/service/booking"
)

type MockBookingUseCase struct {
	mock.Mock
}

func (m *MockBookingUseCase) CreateTicket(ctx context.Context, actor domain.Actor, input booking.CreateTicketInput) (*domain.Ticket, error) {
	args := m.Called(ctx, actor, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Ticket), args.Error(1)
}

func (m *MockBookingUseCase) GetTicket(ctx context.Context, actor domain.Actor, id string) (*domain.Ticket, error) {
	args := m.Called(ctx, actor, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Ticket), args.Error(1)
}

func (m *MockBookingUseCase) ListTickets(ctx context.Context, actor domain.Actor) ([]domain.Ticket, error) {
	args := m.Called(ctx, actor)
	return args.Get(0).([]domain.Ticket), args.Error(1)
}

func (m *MockBookingUseCase) ConfirmTicket(ctx context.Context, actor domain.Actor, id string) (*domain.Ticket, error) {
	args := m.Called(ctx, actor, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Ticket), args.Error(1)
}

func (m *MockBookingUseCase) CompleteTicket(ctx context.Context, actor domain.Actor, id string) (*domain.Ticket, error) {
	args := m.Called(ctx, actor, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Ticket), args.Error(1)
}

func (m *MockBookingUseCase) CancelTicket(ctx context.Context, actor domain.Actor, id string) (*domain.Ticket, error) {
	args := m.Called(ctx, actor, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Ticket), args.Error(1)
}

func (m *MockBookingUseCase) RemoveTicket(ctx context.Context, actor domain.Actor, id string) error {
	args := m.Called(ctx, actor, id)
	return args.Error(0)
}

func (m *MockBookingUseCase) SubmitProof(ctx context.Context, actor domain.Actor, input booking.SubmitProofInput) (*domain.PaymentProof, error) {
	args := m.Called(ctx, actor, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.PaymentProof), args.Error(1)
}

func (m *MockBookingUseCase) GetProof(ctx context.Context, actor domain.Actor, id string) (*domain.PaymentProof, error) {
	args := m.Called(ctx, actor, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.PaymentProof), args.Error(1)
}

func (m *MockBookingUseCase) ListProofs(ctx context.Context, actor domain.Actor, status domain.PaymentProofStatus) ([]domain.PaymentProof, error) {
	args := m.Called(ctx, actor, status)
	return args.Get(0).([]domain.PaymentProof), args.Error(1)
}

func (m *MockBookingUseCase) ApproveProof(ctx context.Context, actor domain.Actor, proofID string) (*domain.Ticket, error) {
	args := m.Called(ctx, actor, proofID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Ticket), args.Error(1)
}

func (m *MockBookingUseCase) RejectProof(ctx context.Context, actor domain.Actor, proofID, reason string) (*domain.PaymentProof, error) {
	args := m.Called(ctx, actor, proofID, reason)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.PaymentProof), args.Error(1)
}

func (m *MockBookingUseCase) RemoveProof(ctx context.Context, actor domain.Actor, id string) error {
	args := m.Called(ctx, actor, id)
	return args.Error(0)
}

func TestTicketHandler_create(t *testing.T) {
	mockService := &MockBookingUseCase{}
	handler := NewTicketHandler(mockService)

	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	body, _ := json.Marshal(createTicketRequest{
		ScheduleID:  "sched-1",
		BookerPhone: "081234",
		Passengers:  []booking.PassengerInput{{Name: "Andi", SeatNumber: "1"}},
	})
	c.Request = httptest.NewRequest("POST", "/tickets", bytes.NewReader(body))
	c.Request.Header.Set("Content-Type", "application/json")
	c.Request.Header.Set(headerUserID, "user-admin")
	c.Request.Header.Set(headerUserRole, string(domain.RoleAdmin))

	ticket := &domain.Ticket{
		ID:           "ticket-1",
		TicketNumber: "TKT-20260830-00001",
		ScheduleID:   "sched-1",
		Status:       domain.TicketStatusConfirmed,
	}
	actor := domain.Actor{UserID: "user-admin", Role: domain.RoleAdmin}
	mockService.On("CreateTicket", c.Request.Context(), actor, mock.AnythingOfType("booking.CreateTicketInput")).
		Return(ticket, nil)

	handler.create(c)

	assert.Equal(t, http.StatusCreated, w.Code)

	var response domain.Ticket
	err := json.Unmarshal(w.Body.Bytes(), &response)
	assert.NoError(t, err)
	assert.Equal(t, "TKT-20260830-00001", response.TicketNumber)
	assert.Equal(t, domain.TicketStatusConfirmed, response.Status)

	mockService.AssertExpectations(t)
}

func TestTicketHandler_create_InsufficientBalance(t *testing.T) {
	mockService := &MockBookingUseCase{}
	handler := NewTicketHandler(mockService)

	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	body, _ := json.Marshal(createTicketRequest{
		ScheduleID:  "sched-1",
		BookerPhone: "081234",
		Passengers:  []booking.PassengerInput{{Name: "Andi"}},
	})
	c.Request = httptest.NewRequest("POST", "/tickets", bytes.NewReader(body))
	c.Request.Header.Set("Content-Type", "application/json")
	c.Request.Header.Set(headerUserID, "user-admin")
	c.Request.Header.Set(headerUserRole, string(domain.RoleAdmin))

	mockService.On("CreateTicket", c.Request.Context(), mock.Anything, mock.Anything).
		Return(nil, domain.InsufficientBalancef("insufficient coin balance"))

	handler.create(c)

	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Contains(t, w.Body.String(), "INSUFFICIENT_BALANCE")
}

func TestTicketHandler_cancel(t *testing.T) {
	mockService := &MockBookingUseCase{}
	handler := NewTicketHandler(mockService)

	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	c.Params = gin.Params{{Key: "id", Value: "ticket-1"}}
	c.Request = httptest.NewRequest("PUT", "/tickets/ticket-1/cancel", nil)
	c.Request.Header.Set(headerUserID, "user-admin")
	c.Request.Header.Set(headerUserRole, string(domain.RoleAdmin))

	refunded := &domain.Ticket{ID: "ticket-1", Status: domain.TicketStatusRefunded}
	actor := domain.Actor{UserID: "user-admin", Role: domain.RoleAdmin}
	mockService.On("CancelTicket", c.Request.Context(), actor, "ticket-1").Return(refunded, nil)

	handler.cancel(c)

	assert.Equal(t, http.StatusOK, w.Code)

	var response domain.Ticket
	err := json.Unmarshal(w.Body.Bytes(), &response)
	assert.NoError(t, err)
	assert.Equal(t, domain.TicketStatusRefunded, response.Status)

	mockService.AssertExpectations(t)
}

func TestTicketHandler_get_Forbidden(t *testing.T) {
	mockService := &MockBookingUseCase{}
	handler := NewTicketHandler(mockService)

	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	c.Params = gin.Params{{Key: "id", Value: "ticket-1"}}
	c.Request = httptest.NewRequest("GET", "/tickets/ticket-1", nil)
	c.Request.Header.Set(headerUserID, "user-other")
	c.Request.Header.Set(headerUserRole, string(domain.RoleCustomer))

	mockService.On("GetTicket", c.Request.Context(), mock.Anything, "ticket-1").
		Return(nil, domain.PermissionDeniedf("ticket belongs to another customer"))

	handler.get(c)

	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestProofHandler_approve_SeatConflict(t *testing.T) {
	mockService := &MockBookingUseCase{}
	handler := NewProofHandler(mockService)

	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	c.Params = gin.Params{{Key: "id", Value: "proof-1"}}
	c.Request = httptest.NewRequest("PUT", "/proofs/proof-1/approve", nil)
	c.Request.Header.Set(headerUserID, "user-admin")
	c.Request.Header.Set(headerUserRole, string(domain.RoleAdmin))

	mockService.On("ApproveProof", c.Request.Context(), mock.Anything, "proof-1").
		Return(nil, domain.SeatConflictf("seat 2 is already taken"))

	handler.approve(c)

	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Contains(t, w.Body.String(), "SEAT_CONFLICT")
}

func TestProofHandler_reject_RequiresReason(t *testing.T) {
	mockService := &MockBookingUseCase{}
	handler := NewProofHandler(mockService)

	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	c.Params = gin.Params{{Key: "id", Value: "proof-1"}}
	c.Request = httptest.NewRequest("PUT", "/proofs/proof-1/reject", bytes.NewReader([]byte(`{}`)))
	c.Request.Header.Set("Content-Type", "application/json")

	handler.reject(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	mockService.AssertNotCalled(t, "RejectProof")
}
