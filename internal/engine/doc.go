// Package engine содержит чистые вычисления над деревом партий.
//
// Включает:
//   - progress.go - доля выполнения партии и заказа
//   - eta.go      - оставшееся время и оценка даты завершения
//   - cost.go     - стоимость партии и заказа
//   - rollup.go   - вычисление производного состояния партии по истории
//   - split.go    - клонирование истории при подразделении партии
//   - report.go   - сводные метрики заказа
//   - summary.go  - дневная сводка завершённых шагов
//
// Функции пакета не выполняют I/O и не читают часы: текущее время
// передаётся аргументом. Их можно вызывать конкурентно без блокировок
// над уже загруженным снимком данных.
package engine
