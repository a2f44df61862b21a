package engine

import (
	"math"

	"github.com/shaiso/produccion/internal/domain"
)

// clamp01 ограничивает значение отрезком [0, 1].
func clamp01(v float64) float64 {
	if math.IsNaN(v) {
		return 0
	}
	return math.Min(1, math.Max(0, v))
}

// LotProgress возвращает долю выполнения партии в [0, 1].
//
//   - FINISHED → 1 независимо от истории
//   - пустая история → 0
//   - иначе доля шагов, завершённых или имеющих дату выхода
func LotProgress(lot *domain.Lot) float64 {
	if lot.IsFinished() {
		return 1
	}
	if len(lot.History) == 0 {
		return 0
	}

	done := 0
	for i := range lot.History {
		if lot.History[i].Done() {
			done++
		}
	}
	return clamp01(float64(done) / float64(len(lot.History)))
}

// Contributing возвращает партии, которые участвуют во взвешенных
// метриках заказа. Разделённые партии исключаются: их количество
// уже представлено дочерними партиями.
func Contributing(lots []domain.Lot) []domain.Lot {
	result := make([]domain.Lot, 0, len(lots))
	for i := range lots {
		if lots[i].IsSplit() {
			continue
		}
		result = append(result, lots[i])
	}
	return result
}

// weightedByQuantity считает среднее f по партиям с весом quantity / Σquantity.
// При нулевом суммарном количестве возвращает 0.
func weightedByQuantity(lots []domain.Lot, f func(*domain.Lot) float64) float64 {
	total := 0
	for i := range lots {
		total += lots[i].Quantity
	}
	if total == 0 {
		return 0
	}

	var acc float64
	for i := range lots {
		weight := float64(lots[i].Quantity) / float64(total)
		acc += f(&lots[i]) * weight
	}
	return acc
}

// OrderProgress возвращает долю выполнения заказа в [0, 1]:
// среднее LotProgress, взвешенное по количеству, по участвующим партиям.
func OrderProgress(lots []domain.Lot) float64 {
	contributing := Contributing(lots)
	if len(contributing) == 0 {
		return 0
	}
	return clamp01(weightedByQuantity(contributing, LotProgress))
}
