// Package api содержит HTTP API сервер.
//
// Структура:
//   - handler.go         - Handler с DI (сервис, часовой пояс отчётов, logger)
//   - routes.go          - регистрация маршрутов
//   - middleware.go      - middleware (logging, recovery, metrics)
//   - response.go        - унифицированные JSON-ответы и обработка ошибок
//   - dto.go             - Data Transfer Objects (request/response)
//   - order_handler.go   - обработчики для /orders
//   - lot_handler.go     - обработчики для /lots и /workshops
//   - product_handler.go - обработчики для /products
//   - report_handler.go  - обработчики для /reports и /records
//   - dashboard_handler.go - сводные панели /dashboard
//
// Ошибки сервиса отображаются в статусы: валидация - 400, не найдено - 404,
// недопустимое состояние - 422, прочее - 500.
package api
