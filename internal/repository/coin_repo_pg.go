package repository

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"travelink/internal/domain"
)

type CoinRepository interface {
	// ApplyTransaction moves the wallet balance by tx.Amount and appends the
	// audit row in one go. It fills BalanceBefore/BalanceAfter/CreatedAt.
	ApplyTransaction(ctx context.Context, tx *domain.CoinTransaction) error
	GetBalance(ctx context.Context, adminID string) (int64, error)
	ListTransactions(ctx context.Context, adminID string, limit int) ([]domain.CoinTransaction, error)
	CreateRequest(ctx context.Context, req *domain.CoinRequest) error
	GetRequest(ctx context.Context, id string) (*domain.CoinRequest, error)
	ListRequests(ctx context.Context, adminID string, status domain.CoinRequestStatus) ([]domain.CoinRequest, error)
	MarkRequestApproved(ctx context.Context, id, reviewerUserID string, reviewedAt time.Time) (*domain.CoinRequest, error)
	MarkRequestRejected(ctx context.Context, id, reviewerUserID, reason string, reviewedAt time.Time) (*domain.CoinRequest, error)
}

type PGCoinRepository struct {
	db *pgxpool.Pool
}

func NewCoinRepository(db *pgxpool.Pool) CoinRepository {
	return &PGCoinRepository{db: db}
}

// ApplyTransaction guards the balance in the UPDATE itself: a debit that would
// go negative matches no row and nothing is written. The audit row is derived
// from the post-update balance, so balance_after = balance_before + amount
// holds by construction.
func (r *PGCoinRepository) ApplyTransaction(ctx context.Context, tx *domain.CoinTransaction) error {
	q := queryerFor(ctx, r.db)

	var after int64
	err := q.QueryRow(ctx, `UPDATE admins
		SET coin_balance = coin_balance + $2
		WHERE id = $1 AND coin_balance + $2 >= 0
		RETURNING coin_balance`,
		tx.AdminID, tx.Amount).Scan(&after)
	if err != nil {
		if !errors.Is(err, pgx.ErrNoRows) {
			return domain.StorageError("update coin balance", err)
		}
		var exists bool
		if checkErr := q.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM admins WHERE id=$1)`, tx.AdminID).Scan(&exists); checkErr != nil {
			return domain.StorageError("check admin", checkErr)
		}
		if !exists {
			return domain.NotFoundf("admin %s not found", tx.AdminID)
		}
		return domain.InsufficientBalancef("insufficient coin balance for debit of %d", -tx.Amount)
	}

	tx.BalanceAfter = after
	tx.BalanceBefore = after - tx.Amount

	err = q.QueryRow(ctx, `INSERT INTO coin_transactions (id, admin_id, type, reason, amount, balance_before, balance_after,
			reference_id, reference_type, notes, created_by)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11)
		RETURNING created_at`,
		tx.ID, tx.AdminID, tx.Type, tx.Reason, tx.Amount, tx.BalanceBefore, tx.BalanceAfter,
		tx.ReferenceID, tx.ReferenceType, tx.Notes, tx.CreatedBy).
		Scan(&tx.CreatedAt)
	if err != nil {
		return domain.StorageError("insert coin transaction", err)
	}
	return nil
}

func (r *PGCoinRepository) GetBalance(ctx context.Context, adminID string) (int64, error) {
	var balance int64
	err := queryerFor(ctx, r.db).QueryRow(ctx, `SELECT coin_balance FROM admins WHERE id=$1`, adminID).Scan(&balance)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, domain.NotFoundf("admin %s not found", adminID)
		}
		return 0, domain.StorageError("get coin balance", err)
	}
	return balance, nil
}

const coinTxColumns = `id, admin_id, type, reason, amount, balance_before, balance_after,
	COALESCE(reference_id,''), COALESCE(reference_type,''), COALESCE(notes,''), COALESCE(created_by,''), created_at`

func (r *PGCoinRepository) ListTransactions(ctx context.Context, adminID string, limit int) ([]domain.CoinTransaction, error) {
	rows, err := queryerFor(ctx, r.db).Query(ctx, `SELECT `+coinTxColumns+` FROM coin_transactions
		WHERE admin_id=$1 ORDER BY created_at DESC LIMIT $2`, adminID, limit)
	if err != nil {
		return nil, domain.StorageError("list coin transactions", err)
	}
	defer rows.Close()

	var txs []domain.CoinTransaction
	for rows.Next() {
		var t domain.CoinTransaction
		if err := rows.Scan(&t.ID, &t.AdminID, &t.Type, &t.Reason, &t.Amount, &t.BalanceBefore, &t.BalanceAfter,
			&t.ReferenceID, &t.ReferenceType, &t.Notes, &t.CreatedBy, &t.CreatedAt); err != nil {
			return nil, domain.StorageError("scan coin transaction", err)
		}
		txs = append(txs, t)
	}
	return txs, rows.Err()
}

const coinRequestColumns = `id, admin_id, amount, status, COALESCE(notes,''), COALESCE(rejection_reason,''),
	COALESCE(reviewed_by,''), reviewed_at, created_at`

func scanCoinRequest(row pgx.Row) (*domain.CoinRequest, error) {
	var req domain.CoinRequest
	if err := row.Scan(&req.ID, &req.AdminID, &req.Amount, &req.Status, &req.Notes, &req.RejectionReason,
		&req.ReviewedBy, &req.ReviewedAt, &req.CreatedAt); err != nil {
		return nil, err
	}
	return &req, nil
}

func (r *PGCoinRepository) CreateRequest(ctx context.Context, req *domain.CoinRequest) error {
	err := queryerFor(ctx, r.db).QueryRow(ctx, `INSERT INTO coin_requests (id, admin_id, amount, status, notes)
		VALUES ($1,$2,$3,$4,$5) RETURNING created_at`,
		req.ID, req.AdminID, req.Amount, req.Status, req.Notes).Scan(&req.CreatedAt)
	if err != nil {
		return domain.StorageError("create coin request", err)
	}
	return nil
}

func (r *PGCoinRepository) GetRequest(ctx context.Context, id string) (*domain.CoinRequest, error) {
	req, err := scanCoinRequest(queryerFor(ctx, r.db).QueryRow(ctx,
		`SELECT `+coinRequestColumns+` FROM coin_requests WHERE id=$1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.NotFoundf("coin request %s not found", id)
		}
		return nil, domain.StorageError("get coin request", err)
	}
	return req, nil
}

func (r *PGCoinRepository) ListRequests(ctx context.Context, adminID string, status domain.CoinRequestStatus) ([]domain.CoinRequest, error) {
	where := `WHERE 1=1`
	args := []any{}
	if adminID != "" {
		args = append(args, adminID)
		where += ` AND admin_id=$1`
	}
	if status != "" {
		args = append(args, string(status))
		if len(args) == 2 {
			where += ` AND status=$2`
		} else {
			where += ` AND status=$1`
		}
	}

	rows, err := queryerFor(ctx, r.db).Query(ctx, `SELECT `+coinRequestColumns+` FROM coin_requests `+where+` ORDER BY created_at DESC`, args...)
	if err != nil {
		return nil, domain.StorageError("list coin requests", err)
	}
	defer rows.Close()

	var reqs []domain.CoinRequest
	for rows.Next() {
		req, err := scanCoinRequest(rows)
		if err != nil {
			return nil, domain.StorageError("scan coin request", err)
		}
		reqs = append(reqs, *req)
	}
	return reqs, rows.Err()
}

func (r *PGCoinRepository) MarkRequestApproved(ctx context.Context, id, reviewerUserID string, reviewedAt time.Time) (*domain.CoinRequest, error) {
	row := queryerFor(ctx, r.db).QueryRow(ctx, `UPDATE coin_requests
		SET status=$2, reviewed_by=$3, reviewed_at=$4
		WHERE id=$1 AND status=$5
		RETURNING `+coinRequestColumns,
		id, domain.CoinRequestStatusApproved, reviewerUserID, reviewedAt, domain.CoinRequestStatusPending)
	return r.afterRequestReview(ctx, row, id)
}

func (r *PGCoinRepository) MarkRequestRejected(ctx context.Context, id, reviewerUserID, reason string, reviewedAt time.Time) (*domain.CoinRequest, error) {
	row := queryerFor(ctx, r.db).QueryRow(ctx, `UPDATE coin_requests
		SET status=$2, reviewed_by=$3, reviewed_at=$4, rejection_reason=$5
		WHERE id=$1 AND status=$6
		RETURNING `+coinRequestColumns,
		id, domain.CoinRequestStatusRejected, reviewerUserID, reviewedAt, reason, domain.CoinRequestStatusPending)
	return r.afterRequestReview(ctx, row, id)
}

func (r *PGCoinRepository) afterRequestReview(ctx context.Context, row pgx.Row, id string) (*domain.CoinRequest, error) {
	req, err := scanCoinRequest(row)
	if err == nil {
		return req, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.StorageError("review coin request", err)
	}
	current, getErr := r.GetRequest(ctx, id)
	if getErr != nil {
		return nil, getErr
	}
	return nil, domain.InvalidStatef("cannot review coin request with status %s", current.Status)
}

var _ CoinRepository = (*PGCoinRepository)(nil)
