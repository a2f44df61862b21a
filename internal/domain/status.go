package domain

import "fmt"

// LotStatus - сохранённый статус партии (лота).
//
// Жизненный цикл:
//
//	ACTIVE → SPLIT     (после подразделения на дочерние партии)
//	ACTIVE → FINISHED  (все шаги истории завершены или ручная отметка)
//
// FINISHED - терминальный: партию больше нельзя менять.
type LotStatus string

const (
	// LotStatusActive - партия в работе.
	LotStatusActive LotStatus = "ACTIVE"

	// LotStatusSplit - партия разделена, прогресс ведут дочерние партии.
	LotStatusSplit LotStatus = "SPLIT"

	// LotStatusFinished - партия завершена.
	LotStatusFinished LotStatus = "FINISHED"
)

// Valid проверяет, что статус входит в закрытый набор значений.
func (s LotStatus) Valid() bool {
	switch s {
	case LotStatusActive, LotStatusSplit, LotStatusFinished:
		return true
	default:
		return false
	}
}

// IsTerminal возвращает true для FINISHED.
func (s LotStatus) IsTerminal() bool {
	switch s {
	case LotStatusFinished:
		return true
	case LotStatusActive, LotStatusSplit:
		return false
	default:
		return false
	}
}

// ParseLotStatus парсит строку в LotStatus.
func ParseLotStatus(s string) (LotStatus, error) {
	status := LotStatus(s)
	if !status.Valid() {
		return "", fmt.Errorf("%w: unknown lot status %q", ErrValidation, s)
	}
	return status, nil
}

// EntryStatus - статус шага в истории процессов партии.
//
// Жизненный цикл:
//
//	PENDING → IN_PROGRESS → COMPLETED
//	        ↘ COMPLETED (сразу, в том числе автодозавершение)
//
// COMPLETED - терминальный. Пустой статус встречается только у
// записей старого формата (см. HistoryEntry.Completed).
type EntryStatus string

const (
	// EntryStatusLegacy - запись старого формата без явного статуса.
	EntryStatusLegacy EntryStatus = ""

	// EntryStatusPending - шаг запланирован.
	EntryStatusPending EntryStatus = "PENDING"

	// EntryStatusInProgress - шаг выполняется.
	EntryStatusInProgress EntryStatus = "IN_PROGRESS"

	// EntryStatusCompleted - шаг завершён.
	EntryStatusCompleted EntryStatus = "COMPLETED"
)

// Valid проверяет, что статус известен (включая пустой legacy).
func (s EntryStatus) Valid() bool {
	switch s {
	case EntryStatusLegacy, EntryStatusPending, EntryStatusInProgress, EntryStatusCompleted:
		return true
	default:
		return false
	}
}

// IsTerminal возвращает true для COMPLETED.
func (s EntryStatus) IsTerminal() bool {
	return s == EntryStatusCompleted
}

// ParseAdvanceTarget проверяет целевой статус для AdvanceProcess.
// Допустимы только IN_PROGRESS и COMPLETED.
func ParseAdvanceTarget(s string) (EntryStatus, error) {
	switch EntryStatus(s) {
	case EntryStatusInProgress:
		return EntryStatusInProgress, nil
	case EntryStatusCompleted:
		return EntryStatusCompleted, nil
	case EntryStatusLegacy, EntryStatusPending:
		return "", fmt.Errorf("%w: target state must be IN_PROGRESS or COMPLETED, got %q", ErrValidation, s)
	default:
		return "", fmt.Errorf("%w: unknown target state %q", ErrValidation, s)
	}
}

// ProgressStatus - производный статус партии, вычисляемый по её истории.
// Не хранится в БД, в отличие от LotStatus.
type ProgressStatus string

const (
	// ProgressPending - ни один шаг не начат.
	ProgressPending ProgressStatus = "PENDING"

	// ProgressInProgress - хотя бы один шаг выполняется.
	ProgressInProgress ProgressStatus = "IN_PROGRESS"

	// ProgressFinished - все шаги завершены.
	ProgressFinished ProgressStatus = "FINISHED"
)

// OrderStatus - производный статус заказа для сводной панели.
type OrderStatus string

const (
	// OrderInProcess - заказ в работе и укладывается в срок.
	OrderInProcess OrderStatus = "IN_PROCESS"

	// OrderDelayed - оставшееся время исчерпано, а заказ не готов.
	OrderDelayed OrderStatus = "DELAYED"

	// OrderCompleted - прогресс заказа достиг 1.
	OrderCompleted OrderStatus = "COMPLETED"
)

// Valid проверяет, что статус входит в закрытый набор значений.
func (s OrderStatus) Valid() bool {
	switch s {
	case OrderInProcess, OrderDelayed, OrderCompleted:
		return true
	default:
		return false
	}
}

// ParseOrderStatus парсит строку в OrderStatus.
func ParseOrderStatus(s string) (OrderStatus, error) {
	status := OrderStatus(s)
	if !status.Valid() {
		return "", fmt.Errorf("%w: unknown order status %q", ErrValidation, s)
	}
	return status, nil
}
