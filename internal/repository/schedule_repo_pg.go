package repository

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"travelink/internal/domain"
)

type ScheduleRepository interface {
	Create(ctx context.Context, schedule *domain.Schedule) error
	GetByID(ctx context.Context, id string) (*domain.Schedule, error)
	Update(ctx context.Context, schedule *domain.Schedule) error
	UpdateStatus(ctx context.Context, id string, status domain.ScheduleStatus) (*domain.Schedule, error)
	ListUpcoming(ctx context.Context, limit int) ([]domain.Schedule, error)
	ListActiveByVehicle(ctx context.Context, vehicleID string) ([]domain.Schedule, error)
	ListActiveByDriver(ctx context.Context, driverID string) ([]domain.Schedule, error)
	ListDueForDeparture(ctx context.Context, now time.Time) ([]domain.Schedule, error)
	ReserveSeats(ctx context.Context, scheduleID string, count int) error
	ReleaseSeats(ctx context.Context, scheduleID string, count int) error
	TakenSeatNumbers(ctx context.Context, scheduleID string) ([]string, error)
	CountActiveTickets(ctx context.Context, scheduleID string) (int, error)
	Delete(ctx context.Context, id string) error
}

type PGScheduleRepository struct {
	db *pgxpool.Pool
}

func NewScheduleRepository(db *pgxpool.Pool) ScheduleRepository {
	return &PGScheduleRepository{db: db}
}

const scheduleColumns = `id, route_id, COALESCE(driver_id, ''), vehicle_id, departure_time, arrival_time, price, available_seats, status, created_at, updated_at`

func scanSchedule(row pgx.Row) (*domain.Schedule, error) {
	var s domain.Schedule
	if err := row.Scan(&s.ID, &s.RouteID, &s.DriverID, &s.VehicleID, &s.DepartureTime, &s.ArrivalTime,
		&s.Price, &s.AvailableSeats, &s.Status, &s.CreatedAt, &s.UpdatedAt); err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *PGScheduleRepository) Create(ctx context.Context, schedule *domain.Schedule) error {
	var driverID *string
	if schedule.DriverID != "" {
		driverID = &schedule.DriverID
	}
	err := queryerFor(ctx, r.db).QueryRow(ctx, `INSERT INTO schedules (id, route_id, vehicle_id, driver_id, departure_time, arrival_time, price, available_seats, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING created_at, updated_at`,
		schedule.ID, schedule.RouteID, schedule.VehicleID, driverID, schedule.DepartureTime,
		schedule.ArrivalTime, schedule.Price, schedule.AvailableSeats, schedule.Status).
		Scan(&schedule.CreatedAt, &schedule.UpdatedAt)
	if err != nil {
		return domain.StorageError("create schedule", err)
	}
	return nil
}

func (r *PGScheduleRepository) GetByID(ctx context.Context, id string) (*domain.Schedule, error) {
	row := queryerFor(ctx, r.db).QueryRow(ctx, `SELECT `+scheduleColumns+` FROM schedules WHERE id=$1`, id)
	s, err := scanSchedule(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.NotFoundf("schedule %s not found", id)
		}
		return nil, domain.StorageError("get schedule", err)
	}
	return s, nil
}

func (r *PGScheduleRepository) Update(ctx context.Context, schedule *domain.Schedule) error {
	var driverID *string
	if schedule.DriverID != "" {
		driverID = &schedule.DriverID
	}
	tag, err := queryerFor(ctx, r.db).Exec(ctx, `UPDATE schedules
		SET route_id=$2, vehicle_id=$3, driver_id=$4, departure_time=$5, arrival_time=$6, price=$7, available_seats=$8, updated_at=now()
		WHERE id=$1`,
		schedule.ID, schedule.RouteID, schedule.VehicleID, driverID, schedule.DepartureTime,
		schedule.ArrivalTime, schedule.Price, schedule.AvailableSeats)
	if err != nil {
		return domain.StorageError("update schedule", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.NotFoundf("schedule %s not found", schedule.ID)
	}
	return nil
}

func (r *PGScheduleRepository) UpdateStatus(ctx context.Context, id string, status domain.ScheduleStatus) (*domain.Schedule, error) {
	row := queryerFor(ctx, r.db).QueryRow(ctx, `UPDATE schedules SET status=$2, updated_at=now() WHERE id=$1
		RETURNING `+scheduleColumns, id, status)
	s, err := scanSchedule(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.NotFoundf("schedule %s not found", id)
		}
		return nil, domain.StorageError("update schedule status", err)
	}
	return s, nil
}

func (r *PGScheduleRepository) ListUpcoming(ctx context.Context, limit int) ([]domain.Schedule, error) {
	rows, err := queryerFor(ctx, r.db).Query(ctx, `SELECT `+scheduleColumns+` FROM schedules
		WHERE status=$1 AND departure_time > now() AND available_seats > 0
		ORDER BY departure_time ASC LIMIT $2`, domain.ScheduleStatusScheduled, limit)
	if err != nil {
		return nil, domain.StorageError("list upcoming schedules", err)
	}
	return collectSchedules(rows)
}

func (r *PGScheduleRepository) ListActiveByVehicle(ctx context.Context, vehicleID string) ([]domain.Schedule, error) {
	rows, err := queryerFor(ctx, r.db).Query(ctx, `SELECT `+scheduleColumns+` FROM schedules
		WHERE vehicle_id=$1 AND status = ANY($2) ORDER BY departure_time ASC`,
		vehicleID, activeScheduleStatuses())
	if err != nil {
		return nil, domain.StorageError("list schedules by vehicle", err)
	}
	return collectSchedules(rows)
}

func (r *PGScheduleRepository) ListActiveByDriver(ctx context.Context, driverID string) ([]domain.Schedule, error) {
	rows, err := queryerFor(ctx, r.db).Query(ctx, `SELECT `+scheduleColumns+` FROM schedules
		WHERE driver_id=$1 AND status = ANY($2) ORDER BY departure_time ASC`,
		driverID, activeScheduleStatuses())
	if err != nil {
		return nil, domain.StorageError("list schedules by driver", err)
	}
	return collectSchedules(rows)
}

func (r *PGScheduleRepository) ListDueForDeparture(ctx context.Context, now time.Time) ([]domain.Schedule, error) {
	rows, err := queryerFor(ctx, r.db).Query(ctx, `SELECT `+scheduleColumns+` FROM schedules
		WHERE status=$1 AND departure_time <= $2 ORDER BY departure_time ASC`,
		domain.ScheduleStatusScheduled, now)
	if err != nil {
		return nil, domain.StorageError("list due schedules", err)
	}
	return collectSchedules(rows)
}

// ReserveSeats decrements the seat counter only when enough seats remain; the
// capacity check and the write are one statement, never a read-then-write pair.
func (r *PGScheduleRepository) ReserveSeats(ctx context.Context, scheduleID string, count int) error {
	var remaining int
	err := queryerFor(ctx, r.db).QueryRow(ctx, `UPDATE schedules
		SET available_seats = available_seats - $2, updated_at = now()
		WHERE id = $1 AND status = $3 AND available_seats >= $2
		RETURNING available_seats`,
		scheduleID, count, domain.ScheduleStatusScheduled).Scan(&remaining)
	if err == nil {
		return nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return domain.StorageError("reserve seats", err)
	}

	// The conditional update matched nothing; figure out why.
	s, getErr := r.GetByID(ctx, scheduleID)
	if getErr != nil {
		return getErr
	}
	if s.Status != domain.ScheduleStatusScheduled {
		return domain.InvalidStatef("cannot reserve seats on schedule with status %s", s.Status)
	}
	return domain.CapacityExceededf("not enough seats available: requested %d, available %d", count, s.AvailableSeats)
}

// ReleaseSeats increments the counter, refusing to go past the vehicle capacity.
func (r *PGScheduleRepository) ReleaseSeats(ctx context.Context, scheduleID string, count int) error {
	var remaining int
	err := queryerFor(ctx, r.db).QueryRow(ctx, `UPDATE schedules s
		SET available_seats = s.available_seats + $2, updated_at = now()
		FROM vehicles v
		WHERE s.id = $1 AND v.id = s.vehicle_id AND s.available_seats + $2 <= v.capacity
		RETURNING s.available_seats`,
		scheduleID, count).Scan(&remaining)
	if err == nil {
		return nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return domain.StorageError("release seats", err)
	}
	if _, getErr := r.GetByID(ctx, scheduleID); getErr != nil {
		return getErr
	}
	return domain.InvalidStatef("releasing %d seat(s) would exceed vehicle capacity", count)
}

// TakenSeatNumbers returns every seat number currently held on the schedule,
// by active tickets and by pending payment proofs, in one canonical query.
func (r *PGScheduleRepository) TakenSeatNumbers(ctx context.Context, scheduleID string) ([]string, error) {
	rows, err := queryerFor(ctx, r.db).Query(ctx, `
		SELECT p.seat_number FROM ticket_passengers p
		JOIN tickets t ON t.id = p.ticket_id
		WHERE t.schedule_id = $1 AND t.status = ANY($2) AND p.seat_number <> ''
		UNION
		SELECT p.seat_number FROM proof_passengers p
		JOIN payment_proofs pr ON pr.id = p.proof_id
		WHERE pr.schedule_id = $1 AND pr.status = $3 AND p.seat_number <> ''`,
		scheduleID,
		[]string{string(domain.TicketStatusPendingPayment), string(domain.TicketStatusPendingApproval), string(domain.TicketStatusConfirmed)},
		domain.PaymentProofStatusPending)
	if err != nil {
		return nil, domain.StorageError("list taken seats", err)
	}
	defer rows.Close()

	var seats []string
	for rows.Next() {
		var seat string
		if err := rows.Scan(&seat); err != nil {
			return nil, domain.StorageError("scan taken seat", err)
		}
		seats = append(seats, seat)
	}
	return seats, rows.Err()
}

func (r *PGScheduleRepository) CountActiveTickets(ctx context.Context, scheduleID string) (int, error) {
	var n int
	err := queryerFor(ctx, r.db).QueryRow(ctx, `SELECT COUNT(*) FROM tickets
		WHERE schedule_id=$1 AND status = ANY($2)`,
		scheduleID,
		[]string{string(domain.TicketStatusPendingPayment), string(domain.TicketStatusPendingApproval), string(domain.TicketStatusConfirmed)}).Scan(&n)
	if err != nil {
		return 0, domain.StorageError("count active tickets", err)
	}
	return n, nil
}

func (r *PGScheduleRepository) Delete(ctx context.Context, id string) error {
	tag, err := queryerFor(ctx, r.db).Exec(ctx, `DELETE FROM schedules WHERE id=$1`, id)
	if err != nil {
		return domain.StorageError("delete schedule", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.NotFoundf("schedule %s not found", id)
	}
	return nil
}

func activeScheduleStatuses() []string {
	return []string{string(domain.ScheduleStatusScheduled), string(domain.ScheduleStatusDeparted)}
}

func collectSchedules(rows pgx.Rows) ([]domain.Schedule, error) {
	defer rows.Close()
	var schedules []domain.Schedule
	for rows.Next() {
		s, err := scanSchedule(rows)
		if err != nil {
			return nil, domain.StorageError("scan schedule", err)
		}
		schedules = append(schedules, *s)
	}
	return schedules, rows.Err()
}

var _ ScheduleRepository = (*PGScheduleRepository)(nil)
