package mq

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/shaiso/produccion/internal/domain"
	"github.com/shaiso/produccion/internal/engine"
)

// MessageType - тип сообщения в очереди.
type MessageType string

// Типы сообщений.
const (
	MessageTypePlanRequested MessageType = "lot.plan_requested"
	MessageTypeLotChanged    MessageType = "lot.changed"
	MessageTypeDailySummary  MessageType = "report.daily"
)

// Message - конверт сообщения.
type Message struct {
	ID        string      `json:"id"`
	Type      MessageType `json:"type"`
	Payload   any         `json:"payload"`
	Timestamp time.Time   `json:"timestamp"`
}

// PlanRequestedPayload - запрос генерации плана для партии.
type PlanRequestedPayload struct {
	LotID     uuid.UUID `json:"lot_id"`
	ProductID uuid.UUID `json:"product_id"`
}

// LotChangedPayload - снимок партии после изменения.
type LotChangedPayload struct {
	LotID                uuid.UUID        `json:"lot_id"`
	OrderID              uuid.UUID        `json:"order_id"`
	Code                 string           `json:"code"`
	Quantity             int              `json:"quantity"`
	Status               domain.LotStatus `json:"status"`
	Reason               string           `json:"reason"`
	CurrentProcessID     *uuid.UUID       `json:"current_process_id,omitempty"`
	CurrentWorkshopID    *uuid.UUID       `json:"current_workshop_id,omitempty"`
	CurrentTransporterID *uuid.UUID       `json:"current_transporter_id,omitempty"`
}

// NewLotChangedPayload снимает payload с партии.
func NewLotChangedPayload(lot *domain.Lot, reason string) LotChangedPayload {
	return LotChangedPayload{
		LotID:                lot.ID,
		OrderID:              lot.OrderID,
		Code:                 lot.Code,
		Quantity:             lot.Quantity,
		Status:               lot.Status,
		Reason:               reason,
		CurrentProcessID:     lot.CurrentProcessID,
		CurrentWorkshopID:    lot.CurrentWorkshopID,
		CurrentTransporterID: lot.CurrentTransporterID,
	}
}

// Sender публикует готовое сообщение. Реализуется Publisher.
type Sender interface {
	Publish(ctx context.Context, exchange Exchange, routingKey RoutingKey, msg *Message) error
}

// NewMessage создаёт конверт с новым ID и текущим временем.
func NewMessage(msgType MessageType, payload any) *Message {
	return &Message{
		ID:        uuid.New().String(),
		Type:      msgType,
		Payload:   payload,
		Timestamp: time.Now().UTC(),
	}
}

// Publisher публикует сообщения в RabbitMQ.
type Publisher struct {
	conn   *Connection
	logger *slog.Logger
}

// NewPublisher создаёт новый Publisher.
func NewPublisher(conn *Connection, logger *slog.Logger) *Publisher {
	return &Publisher{conn: conn, logger: logger}
}

// Publish публикует сообщение в exchange с routing key.
func (p *Publisher) Publish(ctx context.Context, exchange Exchange, routingKey RoutingKey, msg *Message) error {
	body, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("marshal message: %w", err)
	}

	return p.conn.WithChannel(ctx, func(ch *amqp.Channel) error {
		err := ch.PublishWithContext(ctx, string(exchange), string(routingKey), false, false, amqp.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp.Persistent,
			MessageId:    msg.ID,
			Type:         string(msg.Type),
			Timestamp:    msg.Timestamp,
			Body:         body,
		})
		if err != nil {
			return fmt.Errorf("publish to %s/%s: %w", exchange, routingKey, err)
		}

		p.logger.Debug("published message",
			"exchange", exchange,
			"routing_key", routingKey,
			"message_id", msg.ID,
			"type", msg.Type,
		)
		return nil
	})
}

// PublishPlanRequested ставит партию в очередь генерации плана.
// Потребитель: produccion-worker.
func PublishPlanRequested(ctx context.Context, s Sender, lotID, productID uuid.UUID) error {
	msg := NewMessage(MessageTypePlanRequested, PlanRequestedPayload{LotID: lotID, ProductID: productID})
	return s.Publish(ctx, ExchangeLots, RoutingKeyPlan, msg)
}

// PublishLotChanged публикует снимок изменённой партии.
func PublishLotChanged(ctx context.Context, s Sender, lot *domain.Lot, reason string) error {
	msg := NewMessage(MessageTypeLotChanged, NewLotChangedPayload(lot, reason))
	return s.Publish(ctx, ExchangeLots, RoutingKeyChanged, msg)
}

// PublishDailySummary публикует дневную сводку.
func PublishDailySummary(ctx context.Context, s Sender, summary *engine.DailySummary) error {
	msg := NewMessage(MessageTypeDailySummary, summary)
	return s.Publish(ctx, ExchangeReports, RoutingKeyDaily, msg)
}
