package repository

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"travelink/internal/domain"
)

type ProofRepository interface {
	Create(ctx context.Context, proof *domain.PaymentProof) error
	GetByID(ctx context.Context, id string) (*domain.PaymentProof, error)
	ListByStatus(ctx context.Context, status domain.PaymentProofStatus) ([]domain.PaymentProof, error)
	ListByCustomer(ctx context.Context, customerID string) ([]domain.PaymentProof, error)
	MarkApproved(ctx context.Context, id, reviewerUserID, ticketID string, reviewedAt time.Time) (*domain.PaymentProof, error)
	MarkRejected(ctx context.Context, id, reviewerUserID, reason string, reviewedAt time.Time) (*domain.PaymentProof, error)
	NextProofNumber(ctx context.Context, now time.Time) (string, error)
	Delete(ctx context.Context, id string) error
}

type PGProofRepository struct {
	db *pgxpool.Pool
}

func NewProofRepository(db *pgxpool.Pool) ProofRepository {
	return &PGProofRepository{db: db}
}

const proofColumns = `id, proof_number, schedule_id, customer_id, booker_phone, pickup_address, dropoff_address,
	total_passengers, total_price, proof_url, status, COALESCE(notes,''), COALESCE(rejection_reason,''),
	COALESCE(reviewed_by,''), reviewed_at, COALESCE(ticket_id,''), created_at`

func scanProof(row pgx.Row) (*domain.PaymentProof, error) {
	var p domain.PaymentProof
	if err := row.Scan(&p.ID, &p.ProofNumber, &p.ScheduleID, &p.CustomerID, &p.BookerPhone, &p.PickupAddress,
		&p.DropoffAddress, &p.TotalPassengers, &p.TotalPrice, &p.ProofURL, &p.Status, &p.Notes,
		&p.RejectionReason, &p.ReviewedBy, &p.ReviewedAt, &p.TicketID, &p.CreatedAt); err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *PGProofRepository) Create(ctx context.Context, proof *domain.PaymentProof) error {
	q := queryerFor(ctx, r.db)

	err := q.QueryRow(ctx, `INSERT INTO payment_proofs (id, proof_number, schedule_id, customer_id, booker_phone,
			pickup_address, dropoff_address, total_passengers, total_price, proof_url, status, notes)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12)
		RETURNING created_at`,
		proof.ID, proof.ProofNumber, proof.ScheduleID, proof.CustomerID, proof.BookerPhone,
		proof.PickupAddress, proof.DropoffAddress, proof.TotalPassengers, proof.TotalPrice,
		proof.ProofURL, proof.Status, proof.Notes).
		Scan(&proof.CreatedAt)
	if err != nil {
		return domain.StorageError("create payment proof", err)
	}

	for i := range proof.Passengers {
		p := &proof.Passengers[i]
		if _, err := q.Exec(ctx, `INSERT INTO proof_passengers (id, proof_id, name, identity_number, phone, seat_number)
			VALUES ($1,$2,$3,$4,$5,$6)`,
			p.ID, proof.ID, p.Name, p.IdentityNumber, p.Phone, p.SeatNumber); err != nil {
			return domain.StorageError("create proof passenger", err)
		}
	}
	return nil
}

func (r *PGProofRepository) GetByID(ctx context.Context, id string) (*domain.PaymentProof, error) {
	q := queryerFor(ctx, r.db)
	p, err := scanProof(q.QueryRow(ctx, `SELECT `+proofColumns+` FROM payment_proofs WHERE id=$1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.NotFoundf("payment proof %s not found", id)
		}
		return nil, domain.StorageError("get payment proof", err)
	}

	rows, err := q.Query(ctx, `SELECT id, name, COALESCE(identity_number,''), COALESCE(phone,''), COALESCE(seat_number,'')
		FROM proof_passengers WHERE proof_id=$1 ORDER BY created_at ASC, id ASC`, id)
	if err != nil {
		return nil, domain.StorageError("list proof passengers", err)
	}
	defer rows.Close()
	for rows.Next() {
		var pass domain.Passenger
		if err := rows.Scan(&pass.ID, &pass.Name, &pass.IdentityNumber, &pass.Phone, &pass.SeatNumber); err != nil {
			return nil, domain.StorageError("scan proof passenger", err)
		}
		p.Passengers = append(p.Passengers, pass)
	}
	if err := rows.Err(); err != nil {
		return nil, domain.StorageError("list proof passengers", err)
	}
	return p, nil
}

func (r *PGProofRepository) ListByStatus(ctx context.Context, status domain.PaymentProofStatus) ([]domain.PaymentProof, error) {
	return r.list(ctx, `WHERE status=$1`, string(status))
}

func (r *PGProofRepository) ListByCustomer(ctx context.Context, customerID string) ([]domain.PaymentProof, error) {
	return r.list(ctx, `WHERE customer_id=$1`, customerID)
}

func (r *PGProofRepository) list(ctx context.Context, where, arg string) ([]domain.PaymentProof, error) {
	rows, err := queryerFor(ctx, r.db).Query(ctx, `SELECT `+proofColumns+` FROM payment_proofs `+where+` ORDER BY created_at DESC`, arg)
	if err != nil {
		return nil, domain.StorageError("list payment proofs", err)
	}
	defer rows.Close()
	var proofs []domain.PaymentProof
	for rows.Next() {
		p, err := scanProof(rows)
		if err != nil {
			return nil, domain.StorageError("scan payment proof", err)
		}
		proofs = append(proofs, *p)
	}
	return proofs, rows.Err()
}

// MarkApproved flips a PENDING proof to APPROVED and links the created ticket.
// The status guard in the WHERE clause makes concurrent reviews lose cleanly.
func (r *PGProofRepository) MarkApproved(ctx context.Context, id, reviewerUserID, ticketID string, reviewedAt time.Time) (*domain.PaymentProof, error) {
	row := queryerFor(ctx, r.db).QueryRow(ctx, `UPDATE payment_proofs
		SET status=$2, reviewed_by=$3, reviewed_at=$4, ticket_id=$5
		WHERE id=$1 AND status=$6
		RETURNING `+proofColumns,
		id, domain.PaymentProofStatusApproved, reviewerUserID, reviewedAt, ticketID, domain.PaymentProofStatusPending)
	return r.afterReview(ctx, row, id)
}

func (r *PGProofRepository) MarkRejected(ctx context.Context, id, reviewerUserID, reason string, reviewedAt time.Time) (*domain.PaymentProof, error) {
	row := queryerFor(ctx, r.db).QueryRow(ctx, `UPDATE payment_proofs
		SET status=$2, reviewed_by=$3, reviewed_at=$4, rejection_reason=$5
		WHERE id=$1 AND status=$6
		RETURNING `+proofColumns,
		id, domain.PaymentProofStatusRejected, reviewerUserID, reviewedAt, reason, domain.PaymentProofStatusPending)
	return r.afterReview(ctx, row, id)
}

func (r *PGProofRepository) afterReview(ctx context.Context, row pgx.Row, id string) (*domain.PaymentProof, error) {
	p, err := scanProof(row)
	if err == nil {
		return p, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.StorageError("review payment proof", err)
	}
	current, getErr := r.GetByID(ctx, id)
	if getErr != nil {
		return nil, getErr
	}
	return nil, domain.InvalidStatef("cannot review payment proof with status %s", current.Status)
}

func (r *PGProofRepository) NextProofNumber(ctx context.Context, now time.Time) (string, error) {
	return nextDailyNumber(ctx, queryerFor(ctx, r.db), "payment_proofs", "proof_number", "PAY", now)
}

func (r *PGProofRepository) Delete(ctx context.Context, id string) error {
	tag, err := queryerFor(ctx, r.db).Exec(ctx, `DELETE FROM payment_proofs WHERE id=$1`, id)
	if err != nil {
		return domain.StorageError("delete payment proof", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.NotFoundf("payment proof %s not found", id)
	}
	return nil
}

var _ ProofRepository = (*PGProofRepository)(nil)
