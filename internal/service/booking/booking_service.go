package booking

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"travelink/internal/domain"
	"travelink/internal/kafka"
	"travelink/internal/observability"
	"travelink/internal/repository"
	"travelink/internal/service/coin"
)

type BookingUseCase interface {
	CreateTicket(ctx context.Context, actor domain.Actor, input CreateTicketInput) (*domain.Ticket, error)
	GetTicket(ctx context.Context, actor domain.Actor, id string) (*domain.Ticket, error)
	ListTickets(ctx context.Context, actor domain.Actor) ([]domain.Ticket, error)
	ConfirmTicket(ctx context.Context, actor domain.Actor, id string) (*domain.Ticket, error)
	CompleteTicket(ctx context.Context, actor domain.Actor, id string) (*domain.Ticket, error)
	CancelTicket(ctx context.Context, actor domain.Actor, id string) (*domain.Ticket, error)
	RemoveTicket(ctx context.Context, actor domain.Actor, id string) error

	SubmitProof(ctx context.Context, actor domain.Actor, input SubmitProofInput) (*domain.PaymentProof, error)
	GetProof(ctx context.Context, actor domain.Actor, id string) (*domain.PaymentProof, error)
	ListProofs(ctx context.Context, actor domain.Actor, status domain.PaymentProofStatus) ([]domain.PaymentProof, error)
	ApproveProof(ctx context.Context, actor domain.Actor, proofID string) (*domain.Ticket, error)
	RejectProof(ctx context.Context, actor domain.Actor, proofID, reason string) (*domain.PaymentProof, error)
	RemoveProof(ctx context.Context, actor domain.Actor, id string) error
}

// Ledger moves coins inside the caller's transaction context.
type Ledger interface {
	Debit(ctx context.Context, input coin.LedgerInput) (*domain.CoinTransaction, error)
	Refund(ctx context.Context, input coin.LedgerInput) (*domain.CoinTransaction, error)
}

// Cache holds short-lived seat claims so two customers filling the same form
// collide early instead of at approval time. Holds are advisory; the UNION
// query over persisted passengers stays the source of truth.
type Cache interface {
	AcquireSeatHold(ctx context.Context, scheduleID, seatNumber string, ttl time.Duration) (bool, error)
	ReleaseSeatHold(ctx context.Context, scheduleID, seatNumber string) error
}

type Producer interface {
	Publish(ctx context.Context, topic, key string, value interface{}) error
}

type BookingService struct {
	schedules          repository.ScheduleRepository
	tickets            repository.TicketRepository
	proofs             repository.ProofRepository
	refs               repository.ReferenceRepository
	ledger             Ledger
	tx                 repository.Transactor
	cache              Cache
	producer           Producer
	log                *zap.Logger
	bookingTopic       string
	notificationsTopic string
	coinCostPerSeat    int64
	seatHoldTTL        time.Duration
}

type PassengerInput struct {
	Name           string `json:"name"`
	IdentityNumber string `json:"identity_number"`
	Phone          string `json:"phone"`
	SeatNumber     string `json:"seat_number"`
}

type CreateTicketInput struct {
	ScheduleID     string           `json:"schedule_id"`
	CustomerID     string           `json:"customer_id"`
	BookerPhone    string           `json:"booker_phone"`
	PickupAddress  string           `json:"pickup_address"`
	DropoffAddress string           `json:"dropoff_address"`
	Passengers     []PassengerInput `json:"passengers"`
	Notes          string           `json:"notes"`
}

type SubmitProofInput struct {
	ScheduleID     string           `json:"schedule_id"`
	BookerPhone    string           `json:"booker_phone"`
	PickupAddress  string           `json:"pickup_address"`
	DropoffAddress string           `json:"dropoff_address"`
	ProofURL       string           `json:"proof_url"`
	Passengers     []PassengerInput `json:"passengers"`
	Notes          string           `json:"notes"`
}

type BookingServiceOption func(*BookingService)

func WithCache(cache Cache) BookingServiceOption {
	return func(s *BookingService) { s.cache = cache }
}

func WithProducer(producer Producer, bookingTopic, notificationsTopic string) BookingServiceOption {
	return func(s *BookingService) {
		s.producer = producer
		s.bookingTopic = bookingTopic
		s.notificationsTopic = notificationsTopic
	}
}

func WithSeatHoldTTL(ttl time.Duration) BookingServiceOption {
	return func(s *BookingService) { s.seatHoldTTL = ttl }
}

func NewBookingService(
	schedules repository.ScheduleRepository,
	tickets repository.TicketRepository,
	proofs repository.ProofRepository,
	refs repository.ReferenceRepository,
	ledger Ledger,
	tx repository.Transactor,
	coinCostPerSeat int64,
	log *zap.Logger,
	opts ...BookingServiceOption,
) *BookingService {
	if log == nil {
		log = zap.NewNop()
	}
	service := &BookingService{
		schedules:       schedules,
		tickets:         tickets,
		proofs:          proofs,
		refs:            refs,
		ledger:          ledger,
		tx:              tx,
		coinCostPerSeat: coinCostPerSeat,
		seatHoldTTL:     10 * time.Minute,
		log:             log,
	}
	for _, opt := range opts {
		opt(service)
	}
	return service
}

// CreateTicket is the direct booking path: an admin books on behalf of a
// walk-in or an existing customer. Seat reservation, ticket creation and the
// coin debit commit or roll back together.
func (s *BookingService) CreateTicket(ctx context.Context, actor domain.Actor, input CreateTicketInput) (*domain.Ticket, error) {
	if actor.Role != domain.RoleAdmin && actor.Role != domain.RoleSuperAdmin {
		return nil, domain.PermissionDeniedf("only admins may book tickets directly")
	}
	if err := validateBookingRequest(input.BookerPhone, input.Passengers); err != nil {
		return nil, err
	}

	admin, err := s.refs.GetAdminByUserID(ctx, actor.UserID)
	if err != nil {
		return nil, err
	}
	if !admin.Active {
		return nil, domain.InvalidStatef("admin account is inactive")
	}

	schedule, err := s.schedules.GetByID(ctx, input.ScheduleID)
	if err != nil {
		return nil, err
	}
	if err := s.checkBookable(schedule); err != nil {
		return nil, err
	}
	if err := s.checkSeatNumbers(ctx, schedule.ID, input.Passengers); err != nil {
		observability.SeatReservationFailures.WithLabelValues("seat_conflict").Inc()
		return nil, err
	}

	held, err := s.holdSeats(ctx, schedule.ID, input.Passengers)
	if err != nil {
		observability.SeatReservationFailures.WithLabelValues("seat_hold").Inc()
		return nil, err
	}
	defer s.releaseSeats(ctx, schedule.ID, held)

	now := time.Now()
	ticket := &domain.Ticket{
		ID:              uuid.NewString(),
		ScheduleID:      input.ScheduleID,
		CustomerID:      input.CustomerID,
		AdminID:         admin.ID,
		BookingSource:   domain.BookingSourceAdminPanel,
		BookerPhone:     input.BookerPhone,
		PickupAddress:   input.PickupAddress,
		DropoffAddress:  input.DropoffAddress,
		TotalPassengers: len(input.Passengers),
		TotalPrice:      schedule.Price * int64(len(input.Passengers)),
		Status:          domain.TicketStatusConfirmed,
		BookingDate:     now,
		PaymentDate:     &now,
		Notes:           input.Notes,
		Passengers:      buildPassengers(input.Passengers),
	}

	err = s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		if err := s.schedules.ReserveSeats(ctx, schedule.ID, len(input.Passengers)); err != nil {
			if domain.IsCapacityExceeded(err) {
				observability.SeatReservationFailures.WithLabelValues("capacity").Inc()
			}
			return err
		}
		number, err := s.tickets.NextTicketNumber(ctx, now)
		if err != nil {
			return err
		}
		ticket.TicketNumber = number
		if err := s.tickets.Create(ctx, ticket); err != nil {
			return err
		}
		_, err = s.ledger.Debit(ctx, coin.LedgerInput{
			AdminID:       admin.ID,
			Amount:        s.coinCostPerSeat * int64(len(input.Passengers)),
			Reason:        domain.CoinReasonTicketBooking,
			ReferenceID:   ticket.ID,
			ReferenceType: "ticket",
			CreatedBy:     actor.UserID,
		})
		return err
	})
	if err != nil {
		return nil, err
	}

	observability.TicketsCreated.WithLabelValues(string(domain.BookingSourceAdminPanel)).Inc()
	observability.CoinTransactions.WithLabelValues(string(domain.CoinTransactionTypeDeduction)).Inc()
	s.publishTicket(ctx, "ticket_created", ticket)
	s.log.Info("ticket created",
		zap.String("ticket_number", ticket.TicketNumber),
		zap.String("schedule_id", ticket.ScheduleID),
		zap.Int("passengers", ticket.TotalPassengers))
	return ticket, nil
}

func (s *BookingService) GetTicket(ctx context.Context, actor domain.Actor, id string) (*domain.Ticket, error) {
	ticket, err := s.tickets.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.authorizeTicketAccess(ctx, actor, ticket); err != nil {
		return nil, err
	}
	return ticket, nil
}

func (s *BookingService) ListTickets(ctx context.Context, actor domain.Actor) ([]domain.Ticket, error) {
	switch actor.Role {
	case domain.RoleCustomer:
		customer, err := s.refs.GetCustomerByUserID(ctx, actor.UserID)
		if err != nil {
			return nil, err
		}
		return s.tickets.ListByCustomer(ctx, customer.ID)
	case domain.RoleAdmin:
		admin, err := s.refs.GetAdminByUserID(ctx, actor.UserID)
		if err != nil {
			return nil, err
		}
		return s.tickets.ListByAdmin(ctx, admin.ID)
	case domain.RoleSuperAdmin:
		return s.tickets.ListByAdmin(ctx, "")
	}
	return nil, domain.PermissionDeniedf("role %s cannot list tickets", actor.Role)
}

func (s *BookingService) ConfirmTicket(ctx context.Context, actor domain.Actor, id string) (*domain.Ticket, error) {
	if actor.Role == domain.RoleCustomer || actor.Role == domain.RoleDriver {
		return nil, domain.PermissionDeniedf("only admins may confirm tickets")
	}
	ticket, err := s.tickets.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if ticket.Status != domain.TicketStatusPendingPayment && ticket.Status != domain.TicketStatusPendingApproval {
		return nil, domain.InvalidStatef("cannot confirm ticket with status %s", ticket.Status)
	}
	now := time.Now()
	updated, err := s.tickets.UpdateStatus(ctx, id, domain.TicketStatusConfirmed, &now)
	if err != nil {
		return nil, err
	}
	s.publishTicket(ctx, "ticket_confirmed", updated)
	return updated, nil
}

func (s *BookingService) CompleteTicket(ctx context.Context, actor domain.Actor, id string) (*domain.Ticket, error) {
	if actor.Role == domain.RoleCustomer {
		return nil, domain.PermissionDeniedf("only staff may complete tickets")
	}
	ticket, err := s.tickets.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if ticket.Status != domain.TicketStatusConfirmed {
		return nil, domain.InvalidStatef("cannot complete ticket with status %s", ticket.Status)
	}
	sched, err := s.schedules.GetByID(ctx, ticket.ScheduleID)
	if err != nil {
		return nil, err
	}
	if sched.Status != domain.ScheduleStatusArrived {
		return nil, domain.InvalidStatef("trip %s has not arrived", sched.ID)
	}
	updated, err := s.tickets.UpdateStatus(ctx, id, domain.TicketStatusCompleted, nil)
	if err != nil {
		return nil, err
	}
	s.publishTicket(ctx, "ticket_completed", updated)
	return updated, nil
}

// CancelTicket releases the seats and, for admin-funded tickets, refunds the
// coins, all in one transaction. Cancellation is only allowed while the trip
// has not departed.
func (s *BookingService) CancelTicket(ctx context.Context, actor domain.Actor, id string) (*domain.Ticket, error) {
	ticket, err := s.tickets.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.authorizeTicketAccess(ctx, actor, ticket); err != nil {
		return nil, err
	}
	if ticket.Terminal() {
		return nil, domain.InvalidStatef("ticket is already %s", ticket.Status)
	}

	schedule, err := s.schedules.GetByID(ctx, ticket.ScheduleID)
	if err != nil {
		return nil, err
	}
	if schedule.Status != domain.ScheduleStatusScheduled {
		return nil, domain.InvalidStatef("cannot cancel ticket: trip already %s", schedule.Status)
	}

	target := domain.TicketStatusCancelled
	if ticket.AdminFunded() {
		target = domain.TicketStatusRefunded
	}

	var updated *domain.Ticket
	err = s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		updated, err = s.tickets.UpdateStatus(ctx, id, target, nil)
		if err != nil {
			return err
		}
		if err := s.schedules.ReleaseSeats(ctx, ticket.ScheduleID, ticket.TotalPassengers); err != nil {
			return err
		}
		if ticket.AdminFunded() {
			_, err = s.ledger.Refund(ctx, coin.LedgerInput{
				AdminID:       ticket.AdminID,
				Amount:        s.coinCostPerSeat * int64(ticket.TotalPassengers),
				Reason:        domain.CoinReasonTicketCancellation,
				ReferenceID:   ticket.ID,
				ReferenceType: "ticket",
				CreatedBy:     actor.UserID,
			})
			return err
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	observability.TicketsCancelled.Inc()
	if ticket.AdminFunded() {
		observability.CoinTransactions.WithLabelValues(string(domain.CoinTransactionTypeRefund)).Inc()
	}
	s.publishTicket(ctx, "ticket_cancelled", updated)
	s.log.Info("ticket cancelled",
		zap.String("ticket_number", ticket.TicketNumber),
		zap.String("final_status", string(target)))
	return updated, nil
}

func (s *BookingService) RemoveTicket(ctx context.Context, actor domain.Actor, id string) error {
	if !actor.SuperAdmin() {
		return domain.PermissionDeniedf("only super admins may delete tickets")
	}
	ticket, err := s.tickets.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if ticket.Status != domain.TicketStatusCancelled && ticket.Status != domain.TicketStatusRefunded {
		return domain.InvalidStatef("only cancelled or refunded tickets may be deleted")
	}
	return s.tickets.Delete(ctx, id)
}

// SubmitProof is the review path entry point. It validates the request and
// records the proof but reserves nothing; seats stay free until approval.
func (s *BookingService) SubmitProof(ctx context.Context, actor domain.Actor, input SubmitProofInput) (*domain.PaymentProof, error) {
	if actor.Role != domain.RoleCustomer {
		return nil, domain.PermissionDeniedf("only customers submit payment proofs")
	}
	if input.ProofURL == "" {
		return nil, domain.Validationf("proof URL is required")
	}
	if err := validateBookingRequest(input.BookerPhone, input.Passengers); err != nil {
		return nil, err
	}

	customer, err := s.refs.GetCustomerByUserID(ctx, actor.UserID)
	if err != nil {
		return nil, err
	}

	schedule, err := s.schedules.GetByID(ctx, input.ScheduleID)
	if err != nil {
		return nil, err
	}
	if err := s.checkBookable(schedule); err != nil {
		return nil, err
	}
	if len(input.Passengers) > schedule.AvailableSeats {
		return nil, domain.CapacityExceededf("only %d seat(s) left on this trip", schedule.AvailableSeats)
	}
	if err := s.checkSeatNumbers(ctx, schedule.ID, input.Passengers); err != nil {
		return nil, err
	}

	// The holds stay in place (up to the TTL) until the proof is reviewed;
	// approval and rejection release them.
	held, err := s.holdSeats(ctx, schedule.ID, input.Passengers)
	if err != nil {
		observability.SeatReservationFailures.WithLabelValues("seat_hold").Inc()
		return nil, err
	}

	now := time.Now()
	number, err := s.proofs.NextProofNumber(ctx, now)
	if err != nil {
		s.releaseSeats(ctx, schedule.ID, held)
		return nil, err
	}

	proof := &domain.PaymentProof{
		ID:              uuid.NewString(),
		ProofNumber:     number,
		ScheduleID:      input.ScheduleID,
		CustomerID:      customer.ID,
		BookerPhone:     input.BookerPhone,
		PickupAddress:   input.PickupAddress,
		DropoffAddress:  input.DropoffAddress,
		TotalPassengers: len(input.Passengers),
		TotalPrice:      schedule.Price * int64(len(input.Passengers)),
		ProofURL:        input.ProofURL,
		Status:          domain.PaymentProofStatusPending,
		Notes:           input.Notes,
		Passengers:      buildPassengers(input.Passengers),
	}
	if err := s.proofs.Create(ctx, proof); err != nil {
		s.releaseSeats(ctx, schedule.ID, held)
		return nil, err
	}

	observability.ProofsSubmitted.Inc()
	s.publishProof(ctx, "proof_submitted", proof)
	s.log.Info("payment proof submitted",
		zap.String("proof_number", proof.ProofNumber),
		zap.String("schedule_id", proof.ScheduleID))
	return proof, nil
}

func (s *BookingService) GetProof(ctx context.Context, actor domain.Actor, id string) (*domain.PaymentProof, error) {
	proof, err := s.proofs.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.authorizeProofAccess(ctx, actor, proof); err != nil {
		return nil, err
	}
	return proof, nil
}

func (s *BookingService) ListProofs(ctx context.Context, actor domain.Actor, status domain.PaymentProofStatus) ([]domain.PaymentProof, error) {
	if actor.Role == domain.RoleCustomer {
		customer, err := s.refs.GetCustomerByUserID(ctx, actor.UserID)
		if err != nil {
			return nil, err
		}
		return s.proofs.ListByCustomer(ctx, customer.ID)
	}
	return s.proofs.ListByStatus(ctx, status)
}

// ApproveProof turns a pending proof into a confirmed ticket. Everything the
// submission skipped happens here, inside one transaction: bookability and
// seat checks are re-run against current state, seats are reserved, the
// reviewing admin's wallet is debited.
func (s *BookingService) ApproveProof(ctx context.Context, actor domain.Actor, proofID string) (*domain.Ticket, error) {
	if actor.Role != domain.RoleAdmin && actor.Role != domain.RoleSuperAdmin {
		return nil, domain.PermissionDeniedf("only admins may review payment proofs")
	}
	admin, err := s.refs.GetAdminByUserID(ctx, actor.UserID)
	if err != nil {
		return nil, err
	}

	proof, err := s.proofs.GetByID(ctx, proofID)
	if err != nil {
		return nil, err
	}
	if proof.Status != domain.PaymentProofStatusPending {
		return nil, domain.InvalidStatef("payment proof is already %s", proof.Status)
	}

	now := time.Now()
	ticket := &domain.Ticket{
		ID:              uuid.NewString(),
		ScheduleID:      proof.ScheduleID,
		CustomerID:      proof.CustomerID,
		AdminID:         admin.ID,
		BookingSource:   domain.BookingSourceCustomerApp,
		BookerPhone:     proof.BookerPhone,
		PickupAddress:   proof.PickupAddress,
		DropoffAddress:  proof.DropoffAddress,
		TotalPassengers: proof.TotalPassengers,
		TotalPrice:      proof.TotalPrice,
		Status:          domain.TicketStatusConfirmed,
		BookingDate:     proof.CreatedAt,
		PaymentDate:     &now,
		Notes:           proof.Notes,
		Passengers:      copyPassengers(proof.Passengers),
	}

	err = s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		schedule, err := s.schedules.GetByID(ctx, proof.ScheduleID)
		if err != nil {
			return err
		}
		if err := s.checkBookable(schedule); err != nil {
			return err
		}
		if err := s.checkTakenSeats(ctx, schedule.ID, proof.Passengers); err != nil {
			observability.SeatReservationFailures.WithLabelValues("seat_conflict").Inc()
			return err
		}
		if err := s.schedules.ReserveSeats(ctx, schedule.ID, proof.TotalPassengers); err != nil {
			if domain.IsCapacityExceeded(err) {
				observability.SeatReservationFailures.WithLabelValues("capacity").Inc()
			}
			return err
		}
		number, err := s.tickets.NextTicketNumber(ctx, now)
		if err != nil {
			return err
		}
		ticket.TicketNumber = number
		if err := s.tickets.Create(ctx, ticket); err != nil {
			return err
		}
		if _, err := s.ledger.Debit(ctx, coin.LedgerInput{
			AdminID:       admin.ID,
			Amount:        s.coinCostPerSeat * int64(proof.TotalPassengers),
			Reason:        domain.CoinReasonTicketBooking,
			ReferenceID:   ticket.ID,
			ReferenceType: "ticket",
			CreatedBy:     actor.UserID,
		}); err != nil {
			return err
		}
		_, err = s.proofs.MarkApproved(ctx, proofID, actor.UserID, ticket.ID, now)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.releaseSeats(ctx, proof.ScheduleID, seatNumbers(proof.Passengers))

	observability.TicketsCreated.WithLabelValues(string(domain.BookingSourceCustomerApp)).Inc()
	observability.ProofsReviewed.WithLabelValues("approved").Inc()
	observability.CoinTransactions.WithLabelValues(string(domain.CoinTransactionTypeDeduction)).Inc()
	s.publishTicket(ctx, "ticket_created", ticket)
	s.log.Info("payment proof approved",
		zap.String("proof_number", proof.ProofNumber),
		zap.String("ticket_number", ticket.TicketNumber))
	return ticket, nil
}

func (s *BookingService) RejectProof(ctx context.Context, actor domain.Actor, proofID, reason string) (*domain.PaymentProof, error) {
	if actor.Role != domain.RoleAdmin && actor.Role != domain.RoleSuperAdmin {
		return nil, domain.PermissionDeniedf("only admins may review payment proofs")
	}
	if reason == "" {
		return nil, domain.Validationf("rejection reason is required")
	}

	proof, err := s.proofs.GetByID(ctx, proofID)
	if err != nil {
		return nil, err
	}
	if proof.Status != domain.PaymentProofStatusPending {
		return nil, domain.InvalidStatef("payment proof is already %s", proof.Status)
	}

	rejected, err := s.proofs.MarkRejected(ctx, proofID, actor.UserID, reason, time.Now())
	if err != nil {
		return nil, err
	}

	s.releaseSeats(ctx, proof.ScheduleID, seatNumbers(proof.Passengers))
	observability.ProofsReviewed.WithLabelValues("rejected").Inc()
	s.publishProof(ctx, "proof_rejected", rejected)
	return rejected, nil
}

func (s *BookingService) RemoveProof(ctx context.Context, actor domain.Actor, id string) error {
	if !actor.SuperAdmin() {
		return domain.PermissionDeniedf("only super admins may delete payment proofs")
	}
	proof, err := s.proofs.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if proof.Status != domain.PaymentProofStatusRejected {
		return domain.InvalidStatef("only rejected payment proofs may be deleted")
	}
	return s.proofs.Delete(ctx, id)
}

func (s *BookingService) checkBookable(schedule *domain.Schedule) error {
	now := time.Now()
	if schedule.Status != domain.ScheduleStatusScheduled {
		return domain.InvalidStatef("trip is %s and cannot be booked", schedule.Status)
	}
	if !schedule.DepartureTime.After(now) {
		return domain.TemporalViolationf("trip has already departed")
	}
	return nil
}

// checkSeatNumbers rejects duplicates within the request and collisions with
// seats already claimed by active tickets or pending proofs.
func (s *BookingService) checkSeatNumbers(ctx context.Context, scheduleID string, passengers []PassengerInput) error {
	seen := make(map[string]bool, len(passengers))
	for _, p := range passengers {
		if p.SeatNumber == "" {
			continue
		}
		if seen[p.SeatNumber] {
			return domain.SeatConflictf("seat %s is requested twice", p.SeatNumber)
		}
		seen[p.SeatNumber] = true
	}
	if len(seen) == 0 {
		return nil
	}

	taken, err := s.schedules.TakenSeatNumbers(ctx, scheduleID)
	if err != nil {
		return err
	}
	for _, seat := range taken {
		if seen[seat] {
			return domain.SeatConflictf("seat %s is already taken", seat)
		}
	}
	return nil
}

func (s *BookingService) checkTakenSeats(ctx context.Context, scheduleID string, passengers []domain.Passenger) error {
	requested := make(map[string]bool, len(passengers))
	for _, p := range passengers {
		if p.SeatNumber != "" {
			requested[p.SeatNumber] = true
		}
	}
	if len(requested) == 0 {
		return nil
	}

	taken, err := s.schedules.TakenSeatNumbers(ctx, scheduleID)
	if err != nil {
		return err
	}
	for _, seat := range taken {
		if requested[seat] {
			return domain.SeatConflictf("seat %s is already taken", seat)
		}
	}
	return nil
}

func (s *BookingService) authorizeTicketAccess(ctx context.Context, actor domain.Actor, ticket *domain.Ticket) error {
	switch actor.Role {
	case domain.RoleSuperAdmin:
		return nil
	case domain.RoleAdmin:
		admin, err := s.refs.GetAdminByUserID(ctx, actor.UserID)
		if err != nil {
			return err
		}
		if ticket.AdminID != admin.ID {
			return domain.PermissionDeniedf("ticket belongs to another admin")
		}
		return nil
	case domain.RoleCustomer:
		customer, err := s.refs.GetCustomerByUserID(ctx, actor.UserID)
		if err != nil {
			return err
		}
		if ticket.CustomerID != customer.ID {
			return domain.PermissionDeniedf("ticket belongs to another customer")
		}
		return nil
	}
	return domain.PermissionDeniedf("role %s cannot access tickets", actor.Role)
}

func (s *BookingService) authorizeProofAccess(ctx context.Context, actor domain.Actor, proof *domain.PaymentProof) error {
	if actor.Role != domain.RoleCustomer {
		return nil
	}
	customer, err := s.refs.GetCustomerByUserID(ctx, actor.UserID)
	if err != nil {
		return err
	}
	if proof.CustomerID != customer.ID {
		return domain.PermissionDeniedf("payment proof belongs to another customer")
	}
	return nil
}

// holdSeats takes redis holds on the requested seat numbers so that two
// same-instant requests cannot both pass the database seat check. A denied
// hold means another request is mid-flight with that seat; any holds already
// taken for this request are released before failing. Redis being down is
// not fatal; the conditional reserve in the database still holds the line.
func (s *BookingService) holdSeats(ctx context.Context, scheduleID string, passengers []PassengerInput) ([]string, error) {
	if s.cache == nil {
		return nil, nil
	}
	var held []string
	for _, p := range passengers {
		if p.SeatNumber == "" {
			continue
		}
		ok, err := s.cache.AcquireSeatHold(ctx, scheduleID, p.SeatNumber, s.seatHoldTTL)
		if err != nil {
			s.log.Warn("seat hold", zap.String("seat", p.SeatNumber), zap.Error(err))
			continue
		}
		if !ok {
			s.releaseSeats(ctx, scheduleID, held)
			return nil, domain.SeatConflictf("seat %s is held by another booking in progress", p.SeatNumber)
		}
		held = append(held, p.SeatNumber)
	}
	return held, nil
}

func (s *BookingService) releaseSeats(ctx context.Context, scheduleID string, seats []string) {
	if s.cache == nil {
		return
	}
	for _, seat := range seats {
		if err := s.cache.ReleaseSeatHold(ctx, scheduleID, seat); err != nil {
			s.log.Warn("seat hold release", zap.String("seat", seat), zap.Error(err))
		}
	}
}

func (s *BookingService) publishTicket(ctx context.Context, eventType string, ticket *domain.Ticket) {
	if s.producer == nil || s.bookingTopic == "" {
		return
	}
	event := kafka.TicketEvent{
		Type:            eventType,
		TicketID:        ticket.ID,
		TicketNumber:    ticket.TicketNumber,
		ScheduleID:      ticket.ScheduleID,
		CustomerID:      ticket.CustomerID,
		AdminID:         ticket.AdminID,
		Status:          string(ticket.Status),
		TotalPassengers: ticket.TotalPassengers,
		TotalPrice:      ticket.TotalPrice,
		OccurredAt:      time.Now(),
	}
	if err := s.producer.Publish(ctx, s.bookingTopic, ticket.ID, event); err != nil {
		s.log.Warn("publish ticket event", zap.String("type", eventType), zap.Error(err))
	}
	if s.notificationsTopic != "" {
		if err := s.producer.Publish(ctx, s.notificationsTopic, ticket.ID, event); err != nil {
			s.log.Warn("publish ticket notification", zap.String("type", eventType), zap.Error(err))
		}
	}
}

func (s *BookingService) publishProof(ctx context.Context, eventType string, proof *domain.PaymentProof) {
	if s.producer == nil || s.bookingTopic == "" {
		return
	}
	event := kafka.ProofEvent{
		Type:            eventType,
		ProofID:         proof.ID,
		ProofNumber:     proof.ProofNumber,
		ScheduleID:      proof.ScheduleID,
		CustomerID:      proof.CustomerID,
		Status:          string(proof.Status),
		RejectionReason: proof.RejectionReason,
		TicketID:        proof.TicketID,
		OccurredAt:      time.Now(),
	}
	if err := s.producer.Publish(ctx, s.bookingTopic, proof.ID, event); err != nil {
		s.log.Warn("publish proof event", zap.String("type", eventType), zap.Error(err))
	}
	if s.notificationsTopic != "" {
		if err := s.producer.Publish(ctx, s.notificationsTopic, proof.ID, event); err != nil {
			s.log.Warn("publish proof notification", zap.String("type", eventType), zap.Error(err))
		}
	}
}

func validateBookingRequest(bookerPhone string, passengers []PassengerInput) error {
	if bookerPhone == "" {
		return domain.Validationf("booker phone is required")
	}
	if len(passengers) == 0 {
		return domain.Validationf("at least one passenger is required")
	}
	for i, p := range passengers {
		if p.Name == "" {
			return domain.Validationf("passenger %d: name is required", i+1)
		}
	}
	return nil
}

func buildPassengers(inputs []PassengerInput) []domain.Passenger {
	passengers := make([]domain.Passenger, 0, len(inputs))
	for _, in := range inputs {
		passengers = append(passengers, domain.Passenger{
			ID:             uuid.NewString(),
			Name:           in.Name,
			IdentityNumber: in.IdentityNumber,
			Phone:          in.Phone,
			SeatNumber:     in.SeatNumber,
		})
	}
	return passengers
}

func copyPassengers(src []domain.Passenger) []domain.Passenger {
	passengers := make([]domain.Passenger, 0, len(src))
	for _, p := range src {
		p.ID = uuid.NewString()
		passengers = append(passengers, p)
	}
	return passengers
}

func seatNumbers(passengers []domain.Passenger) []string {
	var seats []string
	for _, p := range passengers {
		if p.SeatNumber != "" {
			seats = append(seats, p.SeatNumber)
		}
	}
	return seats
}

var _ BookingUseCase = (*BookingService)(nil)
