// Package worker генерирует планы производства для новых партий.
//
// # Обзор
//
// produccion-api при PLAN_DISPATCH=queue не генерирует план сам, а публикует
// lot.plan_requested в очередь lots.plan. Worker потребляет очередь и
// вызывает Planner.GeneratePlan. Генерация идемпотентна, поэтому
// несколько воркеров и повторная доставка безопасны.
//
//	w := worker.New(worker.Config{
//	    Planner: svc,
//	    Conn:    mqConn,
//	    Logger:  logger,
//	})
//	w.Start(ctx)
//	defer w.Stop()
//
// # Опрос
//
// Если публикация не удалась или сообщение потеряно, партия остаётся без
// истории. Worker периодически запрашивает такие партии
// (Planner.PendingPlans) и генерирует для них планы.
//
// # Ошибки
//
//   - партия не найдена или уже завершена - сообщение подтверждается
//   - ошибка валидации - сообщение сразу уходит в DLQ (mq.ErrPermanent)
//   - ошибка хранилища - повторы в процессе по RetryPolicy с
//     экспоненциальной задержкой, затем одна повторная доставка, затем DLQ
package worker
