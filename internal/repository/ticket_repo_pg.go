package repository

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"travelink/internal/domain"
)

type TicketRepository interface {
	Create(ctx context.Context, ticket *domain.Ticket) error
	GetByID(ctx context.Context, id string) (*domain.Ticket, error)
	UpdateStatus(ctx context.Context, id string, status domain.TicketStatus, paymentDate *time.Time) (*domain.Ticket, error)
	ListByCustomer(ctx context.Context, customerID string) ([]domain.Ticket, error)
	ListByAdmin(ctx context.Context, adminID string) ([]domain.Ticket, error)
	NextTicketNumber(ctx context.Context, now time.Time) (string, error)
	Delete(ctx context.Context, id string) error
}

type PGTicketRepository struct {
	db *pgxpool.Pool
}

func NewTicketRepository(db *pgxpool.Pool) TicketRepository {
	return &PGTicketRepository{db: db}
}

const ticketColumns = `id, ticket_number, schedule_id, COALESCE(customer_id,''), COALESCE(admin_id,''), booking_source,
	booker_phone, pickup_address, dropoff_address, total_passengers, total_price, status, booking_date, payment_date,
	COALESCE(notes,''), created_at, updated_at`

func scanTicket(row pgx.Row) (*domain.Ticket, error) {
	var t domain.Ticket
	if err := row.Scan(&t.ID, &t.TicketNumber, &t.ScheduleID, &t.CustomerID, &t.AdminID, &t.BookingSource,
		&t.BookerPhone, &t.PickupAddress, &t.DropoffAddress, &t.TotalPassengers, &t.TotalPrice, &t.Status,
		&t.BookingDate, &t.PaymentDate, &t.Notes, &t.CreatedAt, &t.UpdatedAt); err != nil {
		return nil, err
	}
	return &t, nil
}

func (r *PGTicketRepository) Create(ctx context.Context, ticket *domain.Ticket) error {
	q := queryerFor(ctx, r.db)

	var customerID, adminID *string
	if ticket.CustomerID != "" {
		customerID = &ticket.CustomerID
	}
	if ticket.AdminID != "" {
		adminID = &ticket.AdminID
	}

	err := q.QueryRow(ctx, `INSERT INTO tickets (id, ticket_number, schedule_id, customer_id, admin_id, booking_source,
			booker_phone, pickup_address, dropoff_address, total_passengers, total_price, status, booking_date, payment_date, notes)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15)
		RETURNING created_at, updated_at`,
		ticket.ID, ticket.TicketNumber, ticket.ScheduleID, customerID, adminID, ticket.BookingSource,
		ticket.BookerPhone, ticket.PickupAddress, ticket.DropoffAddress, ticket.TotalPassengers, ticket.TotalPrice,
		ticket.Status, ticket.BookingDate, ticket.PaymentDate, ticket.Notes).
		Scan(&ticket.CreatedAt, &ticket.UpdatedAt)
	if err != nil {
		return domain.StorageError("create ticket", err)
	}

	for i := range ticket.Passengers {
		p := &ticket.Passengers[i]
		if _, err := q.Exec(ctx, `INSERT INTO ticket_passengers (id, ticket_id, name, identity_number, phone, seat_number)
			VALUES ($1,$2,$3,$4,$5,$6)`,
			p.ID, ticket.ID, p.Name, p.IdentityNumber, p.Phone, p.SeatNumber); err != nil {
			return domain.StorageError("create ticket passenger", err)
		}
	}
	return nil
}

func (r *PGTicketRepository) GetByID(ctx context.Context, id string) (*domain.Ticket, error) {
	q := queryerFor(ctx, r.db)
	t, err := scanTicket(q.QueryRow(ctx, `SELECT `+ticketColumns+` FROM tickets WHERE id=$1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.NotFoundf("ticket %s not found", id)
		}
		return nil, domain.StorageError("get ticket", err)
	}

	rows, err := q.Query(ctx, `SELECT id, name, COALESCE(identity_number,''), COALESCE(phone,''), COALESCE(seat_number,'')
		FROM ticket_passengers WHERE ticket_id=$1 ORDER BY created_at ASC, id ASC`, id)
	if err != nil {
		return nil, domain.StorageError("list ticket passengers", err)
	}
	defer rows.Close()
	for rows.Next() {
		var p domain.Passenger
		if err := rows.Scan(&p.ID, &p.Name, &p.IdentityNumber, &p.Phone, &p.SeatNumber); err != nil {
			return nil, domain.StorageError("scan passenger", err)
		}
		t.Passengers = append(t.Passengers, p)
	}
	if err := rows.Err(); err != nil {
		return nil, domain.StorageError("list ticket passengers", err)
	}
	return t, nil
}

func (r *PGTicketRepository) UpdateStatus(ctx context.Context, id string, status domain.TicketStatus, paymentDate *time.Time) (*domain.Ticket, error) {
	row := queryerFor(ctx, r.db).QueryRow(ctx, `UPDATE tickets
		SET status=$2, payment_date=COALESCE($3, payment_date), updated_at=now()
		WHERE id=$1 RETURNING `+ticketColumns, id, status, paymentDate)
	t, err := scanTicket(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.NotFoundf("ticket %s not found", id)
		}
		return nil, domain.StorageError("update ticket status", err)
	}
	return t, nil
}

func (r *PGTicketRepository) ListByCustomer(ctx context.Context, customerID string) ([]domain.Ticket, error) {
	return r.list(ctx, `WHERE customer_id=$1`, customerID)
}

// ListByAdmin with an empty adminID returns every ticket.
func (r *PGTicketRepository) ListByAdmin(ctx context.Context, adminID string) ([]domain.Ticket, error) {
	return r.list(ctx, `WHERE admin_id=$1 OR $1=''`, adminID)
}

func (r *PGTicketRepository) list(ctx context.Context, where, arg string) ([]domain.Ticket, error) {
	rows, err := queryerFor(ctx, r.db).Query(ctx, `SELECT `+ticketColumns+` FROM tickets `+where+` ORDER BY booking_date DESC`, arg)
	if err != nil {
		return nil, domain.StorageError("list tickets", err)
	}
	defer rows.Close()
	var tickets []domain.Ticket
	for rows.Next() {
		t, err := scanTicket(rows)
		if err != nil {
			return nil, domain.StorageError("scan ticket", err)
		}
		tickets = append(tickets, *t)
	}
	return tickets, rows.Err()
}

// NextTicketNumber produces TKT-YYYYMMDD-XXXXX, sequenced by tickets created
// the same day.
func (r *PGTicketRepository) NextTicketNumber(ctx context.Context, now time.Time) (string, error) {
	return nextDailyNumber(ctx, queryerFor(ctx, r.db), "tickets", "ticket_number", "TKT", now)
}

func (r *PGTicketRepository) Delete(ctx context.Context, id string) error {
	tag, err := queryerFor(ctx, r.db).Exec(ctx, `DELETE FROM tickets WHERE id=$1`, id)
	if err != nil {
		return domain.StorageError("delete ticket", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.NotFoundf("ticket %s not found", id)
	}
	return nil
}

// nextDailyNumber issues PREFIX-YYYYMMDD-XXXXX numbers. Sequencing off the
// highest number issued that day, not a row count, keeps numbers unique
// after same-day deletes.
func nextDailyNumber(ctx context.Context, q querier, table, column, prefix string, now time.Time) (string, error) {
	day := now.Format("20060102")

	var last string
	err := q.QueryRow(ctx, `SELECT COALESCE(MAX(`+column+`), '') FROM `+table+` WHERE `+column+` LIKE $1`,
		fmt.Sprintf("%s-%s-%%", prefix, day)).Scan(&last)
	if err != nil {
		return "", domain.StorageError("next "+table+" number", err)
	}
	return fmt.Sprintf("%s-%s-%05d", prefix, day, dailySequence(last)+1), nil
}

// dailySequence extracts the numeric suffix of an issued number, 0 when the
// number is empty or malformed.
func dailySequence(number string) int {
	i := strings.LastIndexByte(number, '-')
	if i < 0 {
		return 0
	}
	n, err := strconv.Atoi(number[i+1:])
	if err != nil {
		return 0
	}
	return n
}

var _ TicketRepository = (*PGTicketRepository)(nil)
