package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/segmentio/kafka-go"
)

// TicketEvent is emitted after a booking-path state change commits.
type TicketEvent struct {
	Type            string    `json:"type"`
	TicketID        string    `json:"ticket_id"`
	TicketNumber    string    `json:"ticket_number"`
	ScheduleID      string    `json:"schedule_id"`
	CustomerID      string    `json:"customer_id,omitempty"`
	AdminID         string    `json:"admin_id,omitempty"`
	Status          string    `json:"status"`
	TotalPassengers int       `json:"total_passengers"`
	TotalPrice      int64     `json:"total_price"`
	OccurredAt      time.Time `json:"occurred_at"`
}

// ProofEvent is emitted when a payment proof is submitted or reviewed.
type ProofEvent struct {
	Type            string    `json:"type"`
	ProofID         string    `json:"proof_id"`
	ProofNumber     string    `json:"proof_number"`
	ScheduleID      string    `json:"schedule_id"`
	CustomerID      string    `json:"customer_id"`
	Status          string    `json:"status"`
	RejectionReason string    `json:"rejection_reason,omitempty"`
	TicketID        string    `json:"ticket_id,omitempty"`
	OccurredAt      time.Time `json:"occurred_at"`
}

// CoinEvent is emitted when a wallet balance moves.
type CoinEvent struct {
	Type          string    `json:"type"`
	TransactionID string    `json:"transaction_id"`
	AdminID       string    `json:"admin_id"`
	Amount        int64     `json:"amount"`
	BalanceAfter  int64     `json:"balance_after"`
	Reason        string    `json:"reason"`
	OccurredAt    time.Time `json:"occurred_at"`
}

type Producer struct {
	brokers []string
	writer  *kafka.Writer
}

func NewProducer(brokers []string) *Producer {
	writer := &kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Balancer:     &kafka.LeastBytes{},
		BatchTimeout: 50 * time.Millisecond,
		RequiredAcks: kafka.RequireOne,
		Async:        false,
	}
	return &Producer{brokers: brokers, writer: writer}
}

func (p *Producer) Publish(ctx context.Context, topic, key string, payload interface{}) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal payload: %w", err)
	}

	message := kafka.Message{
		Topic: topic,
		Key:   []byte(key),
		Value: data,
		Time:  time.Now(),
	}
	if err := p.writer.WriteMessages(ctx, message); err != nil {
		return fmt.Errorf("failed to write message to Kafka: %w", err)
	}
	return nil
}

func (p *Producer) PublishWithRetry(ctx context.Context, topic, key string, payload interface{}, maxRetries int) error {
	var lastErr error
	for i := 0; i < maxRetries; i++ {
		if err := p.Publish(ctx, topic, key, payload); err == nil {
			return nil
		} else {
			lastErr = err
		}
		if i < maxRetries-1 {
			time.Sleep(time.Duration(i+1) * 500 * time.Millisecond)
		}
	}
	return fmt.Errorf("failed after %d retries: %w", maxRetries, lastErr)
}

func (p *Producer) Close() error {
	if p.writer != nil {
		return p.writer.Close()
	}
	return nil
}

func (p *Producer) CheckConnection(ctx context.Context) error {
	conn, err := kafka.DialContext(ctx, "tcp", p.brokers[0])
	if err != nil {
		return fmt.Errorf("failed to connect to Kafka: %w", err)
	}
	defer conn.Close()

	if _, err := conn.ReadPartitions(); err != nil {
		return fmt.Errorf("failed to read partitions: %w", err)
	}
	return nil
}
