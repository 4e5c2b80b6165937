package domain

import "time"

type CoinTransactionType string

const (
	CoinTransactionTypeTopUp     CoinTransactionType = "TOP_UP"
	CoinTransactionTypeDeduction CoinTransactionType = "DEDUCTION"
	CoinTransactionTypeRefund    CoinTransactionType = "REFUND"
)

type CoinTransactionReason string

const (
	CoinReasonTopUpApproved      CoinTransactionReason = "TOP_UP_APPROVED"
	CoinReasonTicketBooking      CoinTransactionReason = "TICKET_BOOKING"
	CoinReasonTicketCancellation CoinTransactionReason = "TICKET_CANCELLATION"
	CoinReasonDocumentIssued     CoinTransactionReason = "DOCUMENT_ISSUED"
	CoinReasonManualAdjustment   CoinTransactionReason = "MANUAL_ADJUSTMENT"
)

// CoinTransaction is one immutable row of the balance audit trail.
// BalanceAfter must always equal BalanceBefore + Amount.
type CoinTransaction struct {
	ID            string                `json:"id"`
	AdminID       string                `json:"admin_id"`
	Type          CoinTransactionType   `json:"type"`
	Reason        CoinTransactionReason `json:"reason"`
	Amount        int64                 `json:"amount"` // signed: negative for deductions
	BalanceBefore int64                 `json:"balance_before"`
	BalanceAfter  int64                 `json:"balance_after"`
	ReferenceID   string                `json:"reference_id,omitempty"`
	ReferenceType string                `json:"reference_type,omitempty"` // "ticket", "coin_request", "travel_document"
	Notes         string                `json:"notes,omitempty"`
	CreatedBy     string                `json:"created_by"` // user id
	CreatedAt     time.Time             `json:"created_at"`
}

type CoinRequestStatus string

const (
	CoinRequestStatusPending  CoinRequestStatus = "PENDING"
	CoinRequestStatusApproved CoinRequestStatus = "APPROVED"
	CoinRequestStatusRejected CoinRequestStatus = "REJECTED"
)

// CoinRequest is an admin's ask for a balance top-up, reviewed by a super admin.
type CoinRequest struct {
	ID              string            `json:"id"`
	AdminID         string            `json:"admin_id"`
	Amount          int64             `json:"amount"`
	Status          CoinRequestStatus `json:"status"`
	Notes           string            `json:"notes,omitempty"`
	RejectionReason string            `json:"rejection_reason,omitempty"`
	ReviewedBy      string            `json:"reviewed_by,omitempty"`
	ReviewedAt      *time.Time        `json:"reviewed_at,omitempty"`
	CreatedAt       time.Time         `json:"created_at"`
}

type UserRole string

const (
	RoleSuperAdmin UserRole = "SUPER_ADMIN"
	RoleAdmin      UserRole = "ADMIN"
	RoleCustomer   UserRole = "CUSTOMER"
	RoleDriver     UserRole = "DRIVER"
)

// Actor identifies the authenticated caller. Authentication itself happens
// upstream; ownership checks on financial operations are enforced again here.
type Actor struct {
	UserID string
	Role   UserRole
}

func (a Actor) SuperAdmin() bool { return a.Role == RoleSuperAdmin }

// Admin is the intermediary account whose coin wallet funds bookings.
type Admin struct {
	ID          string `json:"id"`
	UserID      string `json:"user_id"`
	Name        string `json:"name"`
	Phone       string `json:"phone"`
	CoinBalance int64  `json:"coin_balance"`
	Active      bool   `json:"active"`
}

type Customer struct {
	ID      string `json:"id"`
	UserID  string `json:"user_id"`
	Name    string `json:"name"`
	Phone   string `json:"phone"`
	Address string `json:"address"`
}
