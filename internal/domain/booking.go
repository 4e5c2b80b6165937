package domain

import "time"

type TicketStatus string

const (
	TicketStatusPendingPayment  TicketStatus = "PENDING_PAYMENT"
	TicketStatusPendingApproval TicketStatus = "PENDING_APPROVAL"
	TicketStatusConfirmed       TicketStatus = "CONFIRMED"
	TicketStatusCompleted       TicketStatus = "COMPLETED"
	TicketStatusCancelled       TicketStatus = "CANCELLED"
	TicketStatusRefunded        TicketStatus = "REFUNDED"
)

type BookingSource string

const (
	BookingSourceAdminPanel  BookingSource = "ADMIN_PANEL"
	BookingSourceCustomerApp BookingSource = "CUSTOMER_APP"
)

type Passenger struct {
	ID             string `json:"id"`
	Name           string `json:"name"`
	IdentityNumber string `json:"identity_number"`
	Phone          string `json:"phone"`
	SeatNumber     string `json:"seat_number,omitempty"` // empty for free seating
}

type Ticket struct {
	ID              string        `json:"id"`
	TicketNumber    string        `json:"ticket_number"`
	ScheduleID      string        `json:"schedule_id"`
	CustomerID      string        `json:"customer_id,omitempty"` // empty for walk-in admin bookings
	AdminID         string        `json:"admin_id,omitempty"`    // funding admin; empty for pure customer tickets
	BookingSource   BookingSource `json:"booking_source"`
	BookerPhone     string        `json:"booker_phone"`
	PickupAddress   string        `json:"pickup_address,omitempty"`
	DropoffAddress  string        `json:"dropoff_address,omitempty"`
	TotalPassengers int           `json:"total_passengers"`
	TotalPrice      int64         `json:"total_price"`
	Status          TicketStatus  `json:"status"`
	BookingDate     time.Time     `json:"booking_date"`
	PaymentDate     *time.Time    `json:"payment_date,omitempty"`
	Notes           string        `json:"notes,omitempty"`
	Passengers      []Passenger   `json:"passengers"`
	CreatedAt       time.Time     `json:"created_at"`
	UpdatedAt       time.Time     `json:"updated_at"`
}

// Terminal reports whether the ticket reached a state no mutation may leave.
func (t *Ticket) Terminal() bool {
	switch t.Status {
	case TicketStatusCompleted, TicketStatusCancelled, TicketStatusRefunded:
		return true
	}
	return false
}

// AdminFunded reports whether coins were debited for this ticket and a
// cancellation must refund them.
func (t *Ticket) AdminFunded() bool {
	return t.AdminID != ""
}

type PaymentProofStatus string

const (
	PaymentProofStatusPending  PaymentProofStatus = "PENDING"
	PaymentProofStatusApproved PaymentProofStatus = "APPROVED"
	PaymentProofStatusRejected PaymentProofStatus = "REJECTED"
)

// PaymentProof is the review-path booking request: a customer submits a
// transfer receipt, an admin turns it into a ticket or rejects it.
type PaymentProof struct {
	ID              string             `json:"id"`
	ProofNumber     string             `json:"proof_number"`
	ScheduleID      string             `json:"schedule_id"`
	CustomerID      string             `json:"customer_id"`
	BookerPhone     string             `json:"booker_phone"`
	PickupAddress   string             `json:"pickup_address,omitempty"`
	DropoffAddress  string             `json:"dropoff_address,omitempty"`
	TotalPassengers int                `json:"total_passengers"`
	TotalPrice      int64              `json:"total_price"`
	ProofURL        string             `json:"proof_url"`
	Status          PaymentProofStatus `json:"status"`
	Notes           string             `json:"notes,omitempty"`
	RejectionReason string             `json:"rejection_reason,omitempty"`
	ReviewedBy      string             `json:"reviewed_by,omitempty"` // user id of the reviewing admin
	ReviewedAt      *time.Time         `json:"reviewed_at,omitempty"`
	TicketID        string             `json:"ticket_id,omitempty"` // set once approved
	Passengers      []Passenger        `json:"passengers"`
	CreatedAt       time.Time          `json:"created_at"`
}

type TravelDocument struct {
	ID             string    `json:"id"`
	DocumentNumber string    `json:"document_number"`
	TicketID       string    `json:"ticket_id"`
	IssuedBy       string    `json:"issued_by"` // admin id
	FileURL        string    `json:"file_url"`
	CreatedAt      time.Time `json:"created_at"`
}
