package document

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"travelink/internal/domain"
	"travelink/internal/repository"
	"travelink/internal/service/coin"
)

type DocumentUseCase interface {
	Issue(ctx context.Context, actor domain.Actor, ticketID string) (*domain.TravelDocument, error)
	Get(ctx context.Context, id string) (*domain.TravelDocument, error)
	ListByTicket(ctx context.Context, ticketID string) ([]domain.TravelDocument, error)
}

// Renderer produces the document file and returns where it was stored.
type Renderer interface {
	Render(ctx context.Context, ticket *domain.Ticket, documentNumber string) (fileURL string, err error)
}

// Ledger is the subset of the coin service the issuer needs.
type Ledger interface {
	Debit(ctx context.Context, input coin.LedgerInput) (*domain.CoinTransaction, error)
}

type DocumentService struct {
	documents repository.DocumentRepository
	tickets   repository.TicketRepository
	refs      repository.ReferenceRepository
	ledger    Ledger
	renderer  Renderer
	tx        repository.Transactor
	coinCost  int64
	log       *zap.Logger
}

func NewDocumentService(
	documents repository.DocumentRepository,
	tickets repository.TicketRepository,
	refs repository.ReferenceRepository,
	ledger Ledger,
	renderer Renderer,
	tx repository.Transactor,
	coinCost int64,
	log *zap.Logger,
) *DocumentService {
	if log == nil {
		log = zap.NewNop()
	}
	return &DocumentService{
		documents: documents,
		tickets:   tickets,
		refs:      refs,
		ledger:    ledger,
		renderer:  renderer,
		tx:        tx,
		coinCost:  coinCost,
		log:       log,
	}
}

// Issue renders a travel document for a confirmed ticket and charges the
// issuing admin's wallet. The debit and the document row commit together.
func (s *DocumentService) Issue(ctx context.Context, actor domain.Actor, ticketID string) (*domain.TravelDocument, error) {
	if actor.Role != domain.RoleAdmin && actor.Role != domain.RoleSuperAdmin {
		return nil, domain.PermissionDeniedf("only admins may issue travel documents")
	}

	admin, err := s.refs.GetAdminByUserID(ctx, actor.UserID)
	if err != nil {
		return nil, err
	}

	ticket, err := s.tickets.GetByID(ctx, ticketID)
	if err != nil {
		return nil, err
	}
	if ticket.Status != domain.TicketStatusConfirmed && ticket.Status != domain.TicketStatusCompleted {
		return nil, domain.InvalidStatef("cannot issue document for ticket with status %s", ticket.Status)
	}

	now := time.Now()
	number, err := s.documents.NextDocumentNumber(ctx, now)
	if err != nil {
		return nil, err
	}

	fileURL, err := s.renderer.Render(ctx, ticket, number)
	if err != nil {
		return nil, err
	}

	doc := &domain.TravelDocument{
		ID:             uuid.NewString(),
		DocumentNumber: number,
		TicketID:       ticket.ID,
		IssuedBy:       admin.ID,
		FileURL:        fileURL,
	}

	err = s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		if _, err := s.ledger.Debit(ctx, coin.LedgerInput{
			AdminID:       admin.ID,
			Amount:        s.coinCost,
			Reason:        domain.CoinReasonDocumentIssued,
			ReferenceID:   doc.ID,
			ReferenceType: "travel_document",
			CreatedBy:     actor.UserID,
		}); err != nil {
			return err
		}
		return s.documents.Create(ctx, doc)
	})
	if err != nil {
		return nil, err
	}

	s.log.Info("travel document issued",
		zap.String("document_number", doc.DocumentNumber),
		zap.String("ticket_id", ticket.ID))
	return doc, nil
}

func (s *DocumentService) Get(ctx context.Context, id string) (*domain.TravelDocument, error) {
	return s.documents.GetByID(ctx, id)
}

func (s *DocumentService) ListByTicket(ctx context.Context, ticketID string) ([]domain.TravelDocument, error) {
	return s.documents.ListByTicket(ctx, ticketID)
}

var _ DocumentUseCase = (*DocumentService)(nil)
