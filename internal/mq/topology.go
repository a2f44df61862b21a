package mq

import (
	"context"
	"fmt"

	amqp "github.com/rabbitmq/amqp091-go"
)

// Exchange - тип для имени обменника.
type Exchange string

// Queue - тип для имени очереди.
type Queue string

// RoutingKey - тип для ключа маршрутизации.
type RoutingKey string

// Exchanges - имена обменников.
const (
	ExchangeLots    Exchange = "produccion.lots"
	ExchangeReports Exchange = "produccion.reports"
	ExchangeDLQ     Exchange = "produccion.dlq"
)

// Queues - имена очередей.
const (
	QueueLotsPlan     Queue = "lots.plan"
	QueueLotsEvents   Queue = "lots.events"
	QueueReportsDaily Queue = "reports.daily"
	QueueDLQPlan      Queue = "dlq.plan"
)

// Routing keys.
const (
	RoutingKeyPlan    RoutingKey = "plan"
	RoutingKeyChanged RoutingKey = "changed"
	RoutingKeyDaily   RoutingKey = "daily"
	RoutingKeyDLQPlan RoutingKey = "plan"
)

// SetupTopology объявляет обменники, очереди и привязки. Идемпотентна.
func SetupTopology(ctx context.Context, conn *Connection) error {
	return conn.WithChannel(ctx, func(ch *amqp.Channel) error {
		if err := declareExchanges(ch); err != nil {
			return err
		}
		if err := declareQueues(ch); err != nil {
			return err
		}
		return bindQueues(ch)
	})
}

func declareExchanges(ch *amqp.Channel) error {
	for _, name := range []Exchange{ExchangeLots, ExchangeReports, ExchangeDLQ} {
		err := ch.ExchangeDeclare(
			string(name),
			"direct",
			true,  // durable
			false, // auto-deleted
			false, // internal
			false, // no-wait
			nil,
		)
		if err != nil {
			return fmt.Errorf("declare exchange %s: %w", name, err)
		}
	}
	return nil
}

func declareQueues(ch *amqp.Channel) error {
	planArgs := amqp.Table{
		"x-dead-letter-exchange":    string(ExchangeDLQ),
		"x-dead-letter-routing-key": string(RoutingKeyDLQPlan),
	}

	queues := []struct {
		name Queue
		args amqp.Table
	}{
		// lots.plan - запросы генерации плана, отказавшие уходят в DLQ
		{QueueLotsPlan, planArgs},

		// lots.events и reports.daily - для внешних подписчиков
		{QueueLotsEvents, nil},
		{QueueReportsDaily, nil},

		{QueueDLQPlan, nil},
	}

	for _, q := range queues {
		_, err := ch.QueueDeclare(
			string(q.name),
			true,  // durable
			false, // delete when unused
			false, // exclusive
			false, // no-wait
			q.args,
		)
		if err != nil {
			return fmt.Errorf("declare queue %s: %w", q.name, err)
		}
	}
	return nil
}

func bindQueues(ch *amqp.Channel) error {
	bindings := []struct {
		queue      Queue
		routingKey RoutingKey
		exchange   Exchange
	}{
		{QueueLotsPlan, RoutingKeyPlan, ExchangeLots},
		{QueueLotsEvents, RoutingKeyChanged, ExchangeLots},
		{QueueReportsDaily, RoutingKeyDaily, ExchangeReports},
		{QueueDLQPlan, RoutingKeyDLQPlan, ExchangeDLQ},
	}

	for _, b := range bindings {
		if err := ch.QueueBind(string(b.queue), string(b.routingKey), string(b.exchange), false, nil); err != nil {
			return fmt.Errorf("bind queue %s to %s: %w", b.queue, b.exchange, err)
		}
	}
	return nil
}

// TopologyInfo возвращает описание топологии для логирования.
func TopologyInfo() string {
	return `
  Produccion RabbitMQ Topology:

    produccion.lots (direct)
    ├── lots.plan [routing: plan]
    │       Consumer: produccion-worker
    │       DLQ: dlq.plan
    └── lots.events [routing: changed]
            External subscribers

    produccion.reports (direct)
    └── reports.daily [routing: daily]
            External subscribers

    produccion.dlq (direct)
    └── dlq.plan [routing: plan]
            Manual processing
`
}
