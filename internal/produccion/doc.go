// Package produccion реализует операции жизненного цикла партий.
//
// Операции:
//   - orders.go - создание заказа с корневыми партиями, отдельной партии, чтение
//   - plan.go - генерация плана производства из шаблона продукта
//   - advance.go - продвижение шага (PENDING → IN_PROGRESS → COMPLETED) и пересчёт состояния
//   - split.go - подразделение партии на дочерние
//   - move.go - ручное перемещение партии
//   - metrics.go - метрики заказа и дневная сводка
//   - products.go - продукты и их шаблоны
//
// Каждая изменяющая операция выполняется в одной транзакции domain.Store.
// Генерация планов после создания заказа запускается после фиксации
// через PlanDispatcher и не откатывает заказ при ошибке.
package produccion
