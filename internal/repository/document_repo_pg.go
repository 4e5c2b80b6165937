package repository

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"travelink/internal/domain"
)

type DocumentRepository interface {
	Create(ctx context.Context, doc *domain.TravelDocument) error
	GetByID(ctx context.Context, id string) (*domain.TravelDocument, error)
	ListByTicket(ctx context.Context, ticketID string) ([]domain.TravelDocument, error)
	NextDocumentNumber(ctx context.Context, now time.Time) (string, error)
}

type PGDocumentRepository struct {
	db *pgxpool.Pool
}

func NewDocumentRepository(db *pgxpool.Pool) DocumentRepository {
	return &PGDocumentRepository{db: db}
}

func (r *PGDocumentRepository) Create(ctx context.Context, doc *domain.TravelDocument) error {
	err := queryerFor(ctx, r.db).QueryRow(ctx, `INSERT INTO travel_documents (id, document_number, ticket_id, issued_by, file_url)
		VALUES ($1,$2,$3,$4,$5) RETURNING created_at`,
		doc.ID, doc.DocumentNumber, doc.TicketID, doc.IssuedBy, doc.FileURL).Scan(&doc.CreatedAt)
	if err != nil {
		return domain.StorageError("create travel document", err)
	}
	return nil
}

func (r *PGDocumentRepository) GetByID(ctx context.Context, id string) (*domain.TravelDocument, error) {
	var doc domain.TravelDocument
	err := queryerFor(ctx, r.db).QueryRow(ctx, `SELECT id, document_number, ticket_id, issued_by, COALESCE(file_url,''), created_at
		FROM travel_documents WHERE id=$1`, id).
		Scan(&doc.ID, &doc.DocumentNumber, &doc.TicketID, &doc.IssuedBy, &doc.FileURL, &doc.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.NotFoundf("travel document %s not found", id)
		}
		return nil, domain.StorageError("get travel document", err)
	}
	return &doc, nil
}

func (r *PGDocumentRepository) ListByTicket(ctx context.Context, ticketID string) ([]domain.TravelDocument, error) {
	rows, err := queryerFor(ctx, r.db).Query(ctx, `SELECT id, document_number, ticket_id, issued_by, COALESCE(file_url,''), created_at
		FROM travel_documents WHERE ticket_id=$1 ORDER BY created_at DESC`, ticketID)
	if err != nil {
		return nil, domain.StorageError("list travel documents", err)
	}
	defer rows.Close()

	var docs []domain.TravelDocument
	for rows.Next() {
		var doc domain.TravelDocument
		if err := rows.Scan(&doc.ID, &doc.DocumentNumber, &doc.TicketID, &doc.IssuedBy, &doc.FileURL, &doc.CreatedAt); err != nil {
			return nil, domain.StorageError("scan travel document", err)
		}
		docs = append(docs, doc)
	}
	return docs, rows.Err()
}

func (r *PGDocumentRepository) NextDocumentNumber(ctx context.Context, now time.Time) (string, error) {
	return nextDailyNumber(ctx, queryerFor(ctx, r.db), "travel_documents", "document_number", "DOC", now)
}

var _ DocumentRepository = (*PGDocumentRepository)(nil)
