package mq

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
)

// ErrPermanent помечает ошибку обработчика, повтор которой бесполезен:
// сообщение сразу уходит в DLQ.
var ErrPermanent = errors.New("permanent failure")

// Handler обрабатывает сообщение. nil - ack.
//
// Ошибка с ErrPermanent отправляет сообщение в DLQ. Прочие ошибки
// возвращают сообщение в очередь один раз, повторный отказ отправляет в DLQ.
type Handler func(ctx context.Context, d *Delivery) error

// Delivery - входящее сообщение.
type Delivery struct {
	ID        string          `json:"id"`
	Type      MessageType     `json:"type"`
	Payload   json.RawMessage `json:"payload"`
	Timestamp time.Time       `json:"timestamp"`

	Redelivered bool `json:"-"`
}

// ParsePayload декодирует payload сообщения в T.
func ParsePayload[T any](d *Delivery) (T, error) {
	var result T
	if len(d.Payload) == 0 {
		return result, fmt.Errorf("%w: empty payload", ErrPermanent)
	}
	if err := json.Unmarshal(d.Payload, &result); err != nil {
		return result, fmt.Errorf("%w: unmarshal payload: %w", ErrPermanent, err)
	}
	return result, nil
}

// ConsumerConfig - конфигурация consumer.
type ConsumerConfig struct {
	Queue    Queue
	Handler  Handler
	Prefetch int
}

// Consumer потребляет сообщения из очереди.
type Consumer struct {
	conn     *Connection
	logger   *slog.Logger
	queue    Queue
	handler  Handler
	prefetch int
}

// NewConsumer создаёт Consumer.
func NewConsumer(conn *Connection, logger *slog.Logger, cfg ConsumerConfig) *Consumer {
	prefetch := cfg.Prefetch
	if prefetch <= 0 {
		prefetch = 1
	}
	return &Consumer{
		conn:     conn,
		logger:   logger.With("queue", cfg.Queue),
		queue:    cfg.Queue,
		handler:  cfg.Handler,
		prefetch: prefetch,
	}
}

// Run потребляет сообщения до отмены ctx, переживая переподключения.
func (c *Consumer) Run(ctx context.Context) error {
	for {
		deliveries, err := c.subscribe()
		if err == nil {
			c.logger.Info("consumer started")
			err = c.drain(ctx, deliveries)
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
		c.logger.Warn("consumer interrupted, waiting for reconnect", "error", err)

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-c.conn.ReconnectNotify():
		}
	}
}

func (c *Consumer) subscribe() (<-chan amqp.Delivery, error) {
	ch := c.conn.Channel()
	if ch == nil {
		return nil, ErrNoChannel
	}
	if err := ch.Qos(c.prefetch, 0, false); err != nil {
		return nil, fmt.Errorf("set qos: %w", err)
	}

	deliveries, err := ch.Consume(
		string(c.queue),
		"",    // consumer tag
		false, // auto-ack
		false, // exclusive
		false, // no-local
		false, // no-wait
		nil,
	)
	if err != nil {
		return nil, fmt.Errorf("consume %s: %w", c.queue, err)
	}
	return deliveries, nil
}

func (c *Consumer) drain(ctx context.Context, deliveries <-chan amqp.Delivery) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case raw, ok := <-deliveries:
			if !ok {
				return errors.New("deliveries channel closed")
			}
			c.dispatch(ctx, raw)
		}
	}
}

// dispatch декодирует и обрабатывает одно сообщение, затем ack/nack.
func (c *Consumer) dispatch(ctx context.Context, raw amqp.Delivery) {
	var d Delivery
	if err := json.Unmarshal(raw.Body, &d); err != nil {
		c.logger.Error("failed to unmarshal message", "error", err, "body", string(raw.Body))
		_ = raw.Nack(false, false)
		return
	}
	d.Redelivered = raw.Redelivered

	switch err := c.handler(ctx, &d); {
	case err == nil:
		_ = raw.Ack(false)
	case errors.Is(err, ErrPermanent) || raw.Redelivered:
		c.logger.Error("message rejected", "message_id", d.ID, "type", d.Type, "error", err)
		_ = raw.Nack(false, false)
	default:
		c.logger.Warn("message requeued", "message_id", d.ID, "type", d.Type, "error", err)
		_ = raw.Nack(false, true)
	}
}
