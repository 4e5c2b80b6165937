package coin

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"travelink/internal/domain"
	"travelink/internal/kafka"
	"travelink/internal/repository"
)

type CoinUseCase interface {
	Debit(ctx context.Context, input LedgerInput) (*domain.CoinTransaction, error)
	Credit(ctx context.Context, input LedgerInput) (*domain.CoinTransaction, error)
	Refund(ctx context.Context, input LedgerInput) (*domain.CoinTransaction, error)
	GetBalance(ctx context.Context, actor domain.Actor, adminID string) (int64, error)
	ListTransactions(ctx context.Context, actor domain.Actor, adminID string, limit int) ([]domain.CoinTransaction, error)
	CreateTopUpRequest(ctx context.Context, actor domain.Actor, amount int64, notes string) (*domain.CoinRequest, error)
	ApproveTopUp(ctx context.Context, actor domain.Actor, requestID string) (*domain.CoinRequest, error)
	RejectTopUp(ctx context.Context, actor domain.Actor, requestID, reason string) (*domain.CoinRequest, error)
	ListTopUpRequests(ctx context.Context, actor domain.Actor, status domain.CoinRequestStatus) ([]domain.CoinRequest, error)
}

// LedgerInput describes one balance movement. Amount is always positive; the
// operation picks the sign.
type LedgerInput struct {
	AdminID       string
	Amount        int64
	Reason        domain.CoinTransactionReason
	ReferenceID   string
	ReferenceType string
	Notes         string
	CreatedBy     string
}

// Producer publishes wallet events. Ledger movements are money, so publishes
// retry before giving up.
type Producer interface {
	PublishWithRetry(ctx context.Context, topic, key string, value interface{}, maxRetries int) error
}

type CoinService struct {
	coins    repository.CoinRepository
	refs     repository.ReferenceRepository
	tx       repository.Transactor
	producer Producer
	topic    string
	log      *zap.Logger
}

type CoinServiceOption func(*CoinService)

func WithProducer(producer Producer, topic string) CoinServiceOption {
	return func(s *CoinService) {
		s.producer = producer
		s.topic = topic
	}
}

func NewCoinService(coins repository.CoinRepository, refs repository.ReferenceRepository, tx repository.Transactor, log *zap.Logger, opts ...CoinServiceOption) *CoinService {
	if log == nil {
		log = zap.NewNop()
	}
	service := &CoinService{coins: coins, refs: refs, tx: tx, log: log}
	for _, opt := range opts {
		opt(service)
	}
	return service
}

// Debit removes coins from the wallet. The conditional balance update in the
// repository rejects the movement when funds are insufficient.
func (s *CoinService) Debit(ctx context.Context, input LedgerInput) (*domain.CoinTransaction, error) {
	return s.apply(ctx, domain.CoinTransactionTypeDeduction, -input.Amount, input)
}

func (s *CoinService) Credit(ctx context.Context, input LedgerInput) (*domain.CoinTransaction, error) {
	return s.apply(ctx, domain.CoinTransactionTypeTopUp, input.Amount, input)
}

func (s *CoinService) Refund(ctx context.Context, input LedgerInput) (*domain.CoinTransaction, error) {
	return s.apply(ctx, domain.CoinTransactionTypeRefund, input.Amount, input)
}

func (s *CoinService) apply(ctx context.Context, txType domain.CoinTransactionType, signedAmount int64, input LedgerInput) (*domain.CoinTransaction, error) {
	if input.Amount <= 0 {
		return nil, domain.Validationf("amount must be positive")
	}
	entry := &domain.CoinTransaction{
		ID:            uuid.NewString(),
		AdminID:       input.AdminID,
		Type:          txType,
		Reason:        input.Reason,
		Amount:        signedAmount,
		ReferenceID:   input.ReferenceID,
		ReferenceType: input.ReferenceType,
		Notes:         input.Notes,
		CreatedBy:     input.CreatedBy,
	}
	if err := s.coins.ApplyTransaction(ctx, entry); err != nil {
		return nil, err
	}
	s.publishCoin(ctx, entry)
	s.log.Info("coin transaction applied",
		zap.String("admin_id", entry.AdminID),
		zap.String("type", string(entry.Type)),
		zap.Int64("amount", entry.Amount),
		zap.Int64("balance_after", entry.BalanceAfter))
	return entry, nil
}

var coinEventTypes = map[domain.CoinTransactionType]string{
	domain.CoinTransactionTypeTopUp:     "coin_credited",
	domain.CoinTransactionTypeDeduction: "coin_debited",
	domain.CoinTransactionTypeRefund:    "coin_refunded",
}

func (s *CoinService) publishCoin(ctx context.Context, entry *domain.CoinTransaction) {
	if s.producer == nil || s.topic == "" {
		return
	}
	event := kafka.CoinEvent{
		Type:          coinEventTypes[entry.Type],
		TransactionID: entry.ID,
		AdminID:       entry.AdminID,
		Amount:        entry.Amount,
		BalanceAfter:  entry.BalanceAfter,
		Reason:        string(entry.Reason),
		OccurredAt:    time.Now(),
	}
	if err := s.producer.PublishWithRetry(ctx, s.topic, entry.AdminID, event, 3); err != nil {
		s.log.Warn("publish coin event", zap.String("type", event.Type), zap.Error(err))
	}
}

func (s *CoinService) GetBalance(ctx context.Context, actor domain.Actor, adminID string) (int64, error) {
	if err := s.authorizeWalletAccess(ctx, actor, adminID); err != nil {
		return 0, err
	}
	return s.coins.GetBalance(ctx, adminID)
}

func (s *CoinService) ListTransactions(ctx context.Context, actor domain.Actor, adminID string, limit int) ([]domain.CoinTransaction, error) {
	if err := s.authorizeWalletAccess(ctx, actor, adminID); err != nil {
		return nil, err
	}
	return s.coins.ListTransactions(ctx, adminID, limit)
}

func (s *CoinService) CreateTopUpRequest(ctx context.Context, actor domain.Actor, amount int64, notes string) (*domain.CoinRequest, error) {
	if actor.SuperAdmin() {
		return nil, domain.PermissionDeniedf("super admins adjust balances directly and cannot request top-ups")
	}
	if amount <= 0 {
		return nil, domain.Validationf("amount must be positive")
	}

	admin, err := s.refs.GetAdminByUserID(ctx, actor.UserID)
	if err != nil {
		return nil, err
	}
	if !admin.Active {
		return nil, domain.InvalidStatef("admin account is inactive")
	}

	req := &domain.CoinRequest{
		ID:      uuid.NewString(),
		AdminID: admin.ID,
		Amount:  amount,
		Status:  domain.CoinRequestStatusPending,
		Notes:   notes,
	}
	if err := s.coins.CreateRequest(ctx, req); err != nil {
		return nil, err
	}
	s.log.Info("top-up requested",
		zap.String("request_id", req.ID),
		zap.String("admin_id", req.AdminID),
		zap.Int64("amount", amount))
	return req, nil
}

// ApproveTopUp credits the wallet and closes the request in one transaction.
// The status guard on the request row makes a second concurrent review fail.
func (s *CoinService) ApproveTopUp(ctx context.Context, actor domain.Actor, requestID string) (*domain.CoinRequest, error) {
	if !actor.SuperAdmin() {
		return nil, domain.PermissionDeniedf("only super admins may review top-up requests")
	}

	req, err := s.coins.GetRequest(ctx, requestID)
	if err != nil {
		return nil, err
	}
	if req.Status != domain.CoinRequestStatusPending {
		return nil, domain.InvalidStatef("top-up request is already %s", req.Status)
	}

	var approved *domain.CoinRequest
	err = s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		approved, err = s.coins.MarkRequestApproved(ctx, requestID, actor.UserID, time.Now())
		if err != nil {
			return err
		}
		_, err = s.Credit(ctx, LedgerInput{
			AdminID:       req.AdminID,
			Amount:        req.Amount,
			Reason:        domain.CoinReasonTopUpApproved,
			ReferenceID:   req.ID,
			ReferenceType: "coin_request",
			CreatedBy:     actor.UserID,
		})
		return err
	})
	if err != nil {
		return nil, err
	}

	s.log.Info("top-up approved",
		zap.String("request_id", requestID),
		zap.String("admin_id", req.AdminID),
		zap.Int64("amount", req.Amount))
	return approved, nil
}

func (s *CoinService) RejectTopUp(ctx context.Context, actor domain.Actor, requestID, reason string) (*domain.CoinRequest, error) {
	if !actor.SuperAdmin() {
		return nil, domain.PermissionDeniedf("only super admins may review top-up requests")
	}
	if reason == "" {
		return nil, domain.Validationf("rejection reason is required")
	}

	req, err := s.coins.GetRequest(ctx, requestID)
	if err != nil {
		return nil, err
	}
	if req.Status != domain.CoinRequestStatusPending {
		return nil, domain.InvalidStatef("top-up request is already %s", req.Status)
	}

	return s.coins.MarkRequestRejected(ctx, requestID, actor.UserID, reason, time.Now())
}

func (s *CoinService) ListTopUpRequests(ctx context.Context, actor domain.Actor, status domain.CoinRequestStatus) ([]domain.CoinRequest, error) {
	if actor.SuperAdmin() {
		return s.coins.ListRequests(ctx, "", status)
	}
	admin, err := s.refs.GetAdminByUserID(ctx, actor.UserID)
	if err != nil {
		return nil, err
	}
	return s.coins.ListRequests(ctx, admin.ID, status)
}

// authorizeWalletAccess lets a super admin see any wallet and an admin only
// their own.
func (s *CoinService) authorizeWalletAccess(ctx context.Context, actor domain.Actor, adminID string) error {
	if actor.SuperAdmin() {
		return nil
	}
	admin, err := s.refs.GetAdmin(ctx, adminID)
	if err != nil {
		return err
	}
	if admin.UserID != actor.UserID {
		return domain.PermissionDeniedf("cannot access another admin's wallet")
	}
	return nil
}

var _ CoinUseCase = (*CoinService)(nil)
