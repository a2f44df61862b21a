// Package mq предоставляет инфраструктуру для работы с RabbitMQ.
//
// Структура:
//   - connection.go - соединение с RabbitMQ (reconnect, graceful shutdown)
//   - topology.go   - объявление exchanges, queues, bindings
//   - publisher.go  - публикация сообщений
//   - consumer.go   - потребление сообщений
//   - adapters.go   - реализации produccion.PlanDispatcher и produccion.EventPublisher
//
// Типы сообщений:
//   - lot.plan_requested - партии нужен план производства
//   - lot.changed        - партия изменилась
//   - report.daily       - дневная сводка по завершённым шагам
package mq
