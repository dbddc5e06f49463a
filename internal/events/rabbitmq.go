package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/spbu-ds-practicum-2025/ledger-service/internal/domain"
)

// transactionCommittedEvent is the wire format of the event published after
// a transaction commits.
type transactionCommittedEvent struct {
	EventType     string `json:"eventType"`
	TransactionID string `json:"transactionId"`
	AccountID     int64  `json:"accountId"`
	Amount        int64  `json:"amount"`
	Kind          string `json:"kind"`
	Description   string `json:"description"`
	NewBalance    int64  `json:"newBalance"`
	CommittedAt   string `json:"committedAt"`
}

// RabbitMQPublisher implements domain.EventPublisher on top of a durable
// topic exchange.
type RabbitMQPublisher struct {
	conn       *amqp.Connection
	channel    *amqp.Channel
	exchange   string
	routingKey string
}

// NewRabbitMQPublisher connects to RabbitMQ and declares the exchange.
func NewRabbitMQPublisher(url, exchange, routingKey string) (*RabbitMQPublisher, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to RabbitMQ: %w", err)
	}

	channel, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to open channel: %w", err)
	}

	err = channel.ExchangeDeclare(
		exchange, // name
		"topic",  // type
		true,     // durable
		false,    // auto-deleted
		false,    // internal
		false,    // no-wait
		nil,      // arguments
	)
	if err != nil {
		channel.Close()
		conn.Close()
		return nil, fmt.Errorf("failed to declare exchange: %w", err)
	}

	return &RabbitMQPublisher{
		conn:       conn,
		channel:    channel,
		exchange:   exchange,
		routingKey: routingKey,
	}, nil
}

// PublishTransactionCommitted publishes a transaction.committed event.
func (p *RabbitMQPublisher) PublishTransactionCommitted(ctx context.Context, tx *domain.Transaction, newBalance int64) error {
	event := transactionCommittedEvent{
		EventType:     "transaction.committed",
		TransactionID: tx.ID.String(),
		AccountID:     tx.AccountID,
		Amount:        tx.Amount,
		Kind:          string(tx.Kind),
		Description:   tx.Description,
		NewBalance:    newBalance,
		CommittedAt:   tx.CreatedAt.UTC().Format(time.RFC3339Nano),
	}

	body, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	err = p.channel.PublishWithContext(ctx,
		p.exchange,
		p.routingKey,
		false, // mandatory
		false, // immediate
		amqp.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp.Persistent,
			Timestamp:    time.Now(),
			Body:         body,
		},
	)
	if err != nil {
		return fmt.Errorf("failed to publish event: %w", err)
	}

	return nil
}

// Close releases the channel and connection.
func (p *RabbitMQPublisher) Close() error {
	if err := p.channel.Close(); err != nil {
		p.conn.Close()
		return fmt.Errorf("failed to close channel: %w", err)
	}
	if err := p.conn.Close(); err != nil {
		return fmt.Errorf("failed to close connection: %w", err)
	}
	return nil
}
