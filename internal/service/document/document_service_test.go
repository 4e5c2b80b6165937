package document

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"travelink/internal/domain"
	"travelink/internal/service/coin"
)

type MockDocumentRepository struct {
	mock.Mock
}

func (m *MockDocumentRepository) Create(ctx context.Context, doc *domain.TravelDocument) error {
	args := m.Called(ctx, doc)
	return args.Error(0)
}

func (m *MockDocumentRepository) GetByID(ctx context.Context, id string) (*domain.TravelDocument, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.TravelDocument), args.Error(1)
}

func (m *MockDocumentRepository) ListByTicket(ctx context.Context, ticketID string) ([]domain.TravelDocument, error) {
	args := m.Called(ctx, ticketID)
	return args.Get(0).([]domain.TravelDocument), args.Error(1)
}

func (m *MockDocumentRepository) NextDocumentNumber(ctx context.Context, now time.Time) (string, error) {
	args := m.Called(ctx, now)
	return args.String(0), args.Error(1)
}

type MockTicketRepository struct {
	mock.Mock
}

func (m *MockTicketRepository) Create(ctx context.Context, ticket *domain.Ticket) error {
	args := m.Called(ctx, ticket)
	return args.Error(0)
}

func (m *MockTicketRepository) GetByID(ctx context.Context, id string) (*domain.Ticket, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Ticket), args.Error(1)
}

func (m *MockTicketRepository) UpdateStatus(ctx context.Context, id string, status domain.TicketStatus, paymentDate *time.Time) (*domain.Ticket, error) {
	args := m.Called(ctx, id, status, paymentDate)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Ticket), args.Error(1)
}

func (m *MockTicketRepository) ListByCustomer(ctx context.Context, customerID string) ([]domain.Ticket, error) {
	args := m.Called(ctx, customerID)
	return args.Get(0).([]domain.Ticket), args.Error(1)
}

func (m *MockTicketRepository) ListByAdmin(ctx context.Context, adminID string) ([]domain.Ticket, error) {
	args := m.Called(ctx, adminID)
	return args.Get(0).([]domain.Ticket), args.Error(1)
}

func (m *MockTicketRepository) NextTicketNumber(ctx context.Context, now time.Time) (string, error) {
	args := m.Called(ctx, now)
	return args.String(0), args.Error(1)
}

func (m *MockTicketRepository) Delete(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

type MockReferenceRepository struct {
	mock.Mock
}

func (m *MockReferenceRepository) GetVehicle(ctx context.Context, id string) (*domain.Vehicle, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Vehicle), args.Error(1)
}

func (m *MockReferenceRepository) GetDriver(ctx context.Context, id string) (*domain.Driver, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Driver), args.Error(1)
}

func (m *MockReferenceRepository) GetRoute(ctx context.Context, id string) (*domain.Route, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Route), args.Error(1)
}

func (m *MockReferenceRepository) GetAdmin(ctx context.Context, id string) (*domain.Admin, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Admin), args.Error(1)
}

func (m *MockReferenceRepository) GetAdminByUserID(ctx context.Context, userID string) (*domain.Admin, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Admin), args.Error(1)
}

func (m *MockReferenceRepository) GetCustomerByUserID(ctx context.Context, userID string) (*domain.Customer, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Customer), args.Error(1)
}

type MockLedger struct {
	mock.Mock
}

func (m *MockLedger) Debit(ctx context.Context, input coin.LedgerInput) (*domain.CoinTransaction, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.CoinTransaction), args.Error(1)
}

type MockRenderer struct {
	mock.Mock
}

func (m *MockRenderer) Render(ctx context.Context, ticket *domain.Ticket, documentNumber string) (string, error) {
	args := m.Called(ctx, ticket, documentNumber)
	return args.String(0), args.Error(1)
}

type MockTransactor struct {
	mock.Mock
}

func (m *MockTransactor) WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	args := m.Called(ctx)
	if args.Error(0) != nil {
		return args.Error(0)
	}
	return fn(ctx)
}

func TestDocumentService_Issue_Success(t *testing.T) {
	mockDocs := &MockDocumentRepository{}
	mockTickets := &MockTicketRepository{}
	mockRefs := &MockReferenceRepository{}
	mockLedger := &MockLedger{}
	mockRenderer := &MockRenderer{}
	mockTx := &MockTransactor{}

	service := NewDocumentService(mockDocs, mockTickets, mockRefs, mockLedger, mockRenderer, mockTx, 10000, nil)

	ctx := context.Background()
	actor := domain.Actor{UserID: "user-admin", Role: domain.RoleAdmin}
	admin := &domain.Admin{ID: "admin-1", UserID: "user-admin", Active: true}
	ticket := &domain.Ticket{ID: "ticket-1", TicketNumber: "TKT-20260830-00001", Status: domain.TicketStatusConfirmed}

	mockRefs.On("GetAdminByUserID", ctx, "user-admin").Return(admin, nil).Once()
	mockTickets.On("GetByID", ctx, "ticket-1").Return(ticket, nil).Once()
	mockDocs.On("NextDocumentNumber", ctx, mock.AnythingOfType("time.Time")).Return("DOC-20260830-00001", nil).Once()
	mockRenderer.On("Render", ctx, ticket, "DOC-20260830-00001").Return("https://files.example.com/DOC-20260830-00001.html", nil).Once()
	mockTx.On("WithinTransaction", ctx).Return(nil).Once()
	mockLedger.On("Debit", ctx, mock.MatchedBy(func(in coin.LedgerInput) bool {
		return in.AdminID == "admin-1" && in.Amount == 10000 && in.Reason == domain.CoinReasonDocumentIssued
	})).Return(&domain.CoinTransaction{}, nil).Once()
	mockDocs.On("Create", ctx, mock.AnythingOfType("*domain.TravelDocument")).Return(nil).Once()

	doc, err := service.Issue(ctx, actor, "ticket-1")

	assert.NoError(t, err)
	assert.NotNil(t, doc)
	assert.Equal(t, "DOC-20260830-00001", doc.DocumentNumber)
	assert.Equal(t, "admin-1", doc.IssuedBy)

	mockDocs.AssertExpectations(t)
	mockLedger.AssertExpectations(t)
	mockRenderer.AssertExpectations(t)
}

func TestDocumentService_Issue_UnconfirmedTicket(t *testing.T) {
	mockDocs := &MockDocumentRepository{}
	mockTickets := &MockTicketRepository{}
	mockRefs := &MockReferenceRepository{}
	mockLedger := &MockLedger{}

	service := NewDocumentService(mockDocs, mockTickets, mockRefs, mockLedger, &MockRenderer{}, &MockTransactor{}, 10000, nil)

	ctx := context.Background()
	actor := domain.Actor{UserID: "user-admin", Role: domain.RoleAdmin}
	admin := &domain.Admin{ID: "admin-1", UserID: "user-admin", Active: true}
	pending := &domain.Ticket{ID: "ticket-1", Status: domain.TicketStatusPendingPayment}

	mockRefs.On("GetAdminByUserID", ctx, "user-admin").Return(admin, nil).Once()
	mockTickets.On("GetByID", ctx, "ticket-1").Return(pending, nil).Once()

	doc, err := service.Issue(ctx, actor, "ticket-1")

	assert.Error(t, err)
	assert.Nil(t, doc)
	assert.True(t, domain.IsInvalidState(err))
	mockLedger.AssertNotCalled(t, "Debit")
	mockDocs.AssertNotCalled(t, "Create")
}

func TestDocumentService_Issue_CustomerForbidden(t *testing.T) {
	service := NewDocumentService(&MockDocumentRepository{}, &MockTicketRepository{}, &MockReferenceRepository{}, &MockLedger{}, &MockRenderer{}, &MockTransactor{}, 10000, nil)

	actor := domain.Actor{UserID: "user-cust", Role: domain.RoleCustomer}
	doc, err := service.Issue(context.Background(), actor, "ticket-1")

	assert.Error(t, err)
	assert.Nil(t, doc)
	assert.True(t, domain.IsPermissionDenied(err))
}

func TestDocumentService_Issue_InsufficientBalance(t *testing.T) {
	mockDocs := &MockDocumentRepository{}
	mockTickets := &MockTicketRepository{}
	mockRefs := &MockReferenceRepository{}
	mockLedger := &MockLedger{}
	mockRenderer := &MockRenderer{}
	mockTx := &MockTransactor{}

	service := NewDocumentService(mockDocs, mockTickets, mockRefs, mockLedger, mockRenderer, mockTx, 10000, nil)

	ctx := context.Background()
	actor := domain.Actor{UserID: "user-admin", Role: domain.RoleAdmin}
	admin := &domain.Admin{ID: "admin-1", UserID: "user-admin", Active: true}
	ticket := &domain.Ticket{ID: "ticket-1", Status: domain.TicketStatusConfirmed}

	mockRefs.On("GetAdminByUserID", ctx, "user-admin").Return(admin, nil).Once()
	mockTickets.On("GetByID", ctx, "ticket-1").Return(ticket, nil).Once()
	mockDocs.On("NextDocumentNumber", ctx, mock.AnythingOfType("time.Time")).Return("DOC-20260830-00002", nil).Once()
	mockRenderer.On("Render", ctx, ticket, "DOC-20260830-00002").Return("https://files.example.com/x.html", nil).Once()
	mockTx.On("WithinTransaction", ctx).Return(nil).Once()
	mockLedger.On("Debit", ctx, mock.Anything).
		Return(nil, domain.InsufficientBalancef("insufficient coin balance")).Once()

	doc, err := service.Issue(ctx, actor, "ticket-1")

	assert.Error(t, err)
	assert.Nil(t, doc)
	assert.True(t, domain.IsInsufficientBalance(err))
	mockDocs.AssertNotCalled(t, "Create")
}

func TestHTMLRenderer_Render(t *testing.T) {
	dir := t.TempDir()
	renderer := NewHTMLRenderer(dir, "https://files.example.com/docs/")

	ticket := &domain.Ticket{
		TicketNumber: "TKT-20260830-00001",
		BookerPhone:  "081234",
		Passengers: []domain.Passenger{
			{Name: "Andi", SeatNumber: "1"},
		},
	}

	url, err := renderer.Render(context.Background(), ticket, "DOC-20260830-00001")

	assert.NoError(t, err)
	assert.Equal(t, "https://files.example.com/docs/DOC-20260830-00001.html", url)
}
