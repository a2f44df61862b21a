package engine

import (
	"math"
	"time"

	"github.com/google/uuid"
	"github.com/shaiso/produccion/internal/domain"
)

// Day - длительность одного дня для перевода дней в time.Duration.
const Day = 24 * time.Hour

// finiteOrZero возвращает 0 для NaN/Inf и отрицательных значений.
func finiteOrZero(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
		return 0
	}
	return v
}

// catalogOrders строит lookup processID → order.
func catalogOrders(catalog []domain.Process) map[uuid.UUID]int {
	orders := make(map[uuid.UUID]int, len(catalog))
	for _, p := range catalog {
		orders[p.ID] = p.Order
	}
	return orders
}

// lastCompletedOrder возвращает максимальный порядок процесса среди
// завершённых шагов партии или 0, если завершённых нет.
func lastCompletedOrder(lot *domain.Lot, orders map[uuid.UUID]int) int {
	last := 0
	for i := range lot.History {
		entry := &lot.History[i]
		if !entry.Completed() {
			continue
		}

		order, ok := entry.ProcessOrder()
		if !ok && entry.ProcessID != nil {
			order, ok = orders[*entry.ProcessID]
		}
		if ok && order > last {
			last = order
		}
	}
	return last
}

// LotRemainingDays возвращает оставшееся время партии в днях (≥ 0).
//
// Суммируются стандартные длительности всех процессов каталога с порядком
// строго больше последнего завершённого. Если завершённых шагов нет,
// учитывается весь каталог.
func LotRemainingDays(lot *domain.Lot, catalog []domain.Process) float64 {
	if lot.IsFinished() {
		return 0
	}

	last := lastCompletedOrder(lot, catalogOrders(catalog))

	var remaining float64
	for _, p := range catalog {
		if last == 0 || p.Order > last {
			remaining += finiteOrZero(p.StandardDurationDays)
		}
	}
	return math.Max(remaining, 0)
}

// OrderRemainingDays возвращает оставшееся время заказа в днях:
// взвешенное по количеству среднее LotRemainingDays.
func OrderRemainingDays(lots []domain.Lot, catalog []domain.Process) float64 {
	contributing := Contributing(lots)
	if len(contributing) == 0 {
		return 0
	}
	remaining := weightedByQuantity(contributing, func(l *domain.Lot) float64 {
		return LotRemainingDays(l, catalog)
	})
	return math.Max(remaining, 0)
}

// maxETADays - предел оставшихся дней, для которого ещё считается дата.
const maxETADays = math.MaxInt32

// LotEstimatedCompletion возвращает now + оставшиеся дни.
// Nil, если оставшееся время не является конечным числом или больше maxETADays.
func LotEstimatedCompletion(lot *domain.Lot, catalog []domain.Process, now time.Time) *time.Time {
	days := LotRemainingDays(lot, catalog)
	if math.IsNaN(days) || math.IsInf(days, 0) || days > maxETADays {
		return nil
	}
	eta := addDays(now, math.Max(days, 0))
	return &eta
}

// addDays прибавляет целые дни календарно, а дробную часть как Duration,
// чтобы большие значения не переполняли time.Duration.
func addDays(t time.Time, days float64) time.Time {
	whole, frac := math.Modf(days)
	return t.AddDate(0, 0, int(whole)).Add(time.Duration(frac * float64(Day)))
}
