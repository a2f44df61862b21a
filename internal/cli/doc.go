// Package cli реализует инструмент командной строки для учёта производства.
//
// # Обзор
//
// CLI работает через HTTP API и не импортирует внутренние пакеты системы.
// Типы ответов дублируются в client.go.
//
// # Ключевые компоненты
//
// ## Client
//
// HTTP-клиент API. Разбирает DataResponse, ListResponse и ErrorResponse
// и превращает ошибки API в error вида "CODE: message".
//
//	client := cli.NewClient("http://localhost:8080")
//	order, err := client.TrackOrder(40)
//
// ## Output
//
// Таблицы (text/tabwriter) по умолчанию или JSON с флагом --json.
// Данные пишутся в stdout, сообщения в stderr:
//
//	produccion order metrics 40 --json | jq .progress
//
// ## Commands
//
//   - order: create, show, metrics
//   - lot: show, plan, advance, refresh, split, move, workshop
//   - product: create, update, show
//   - report: daily
//
// Каждая группа создаётся фабрикой (NewOrderCmd и т.д.), принимающей
// clientFn и outputFn для ленивого создания Client и Output после
// разбора PersistentFlags.
package cli
