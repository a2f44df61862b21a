package engine

import (
	"time"

	"github.com/shaiso/produccion/internal/domain"
	"github.com/shopspring/decimal"
)

// LotMetrics - метрики одной партии.
type LotMetrics struct {
	Lot                 domain.Lot      `json:"lot"`
	Progress            float64         `json:"progress"`
	RemainingDays       float64         `json:"remaining_days"`
	EstimatedCompletion *time.Time      `json:"estimated_completion,omitempty"`
	Cost                decimal.Decimal `json:"cost"`
}

// OrderReport - метрики заказа и всех его партий.
type OrderReport struct {
	Order         domain.Order    `json:"order"`
	Lots          []LotMetrics    `json:"lots"`
	Progress      float64         `json:"progress"`
	RemainingDays float64         `json:"remaining_days"`
	Cost          decimal.Decimal `json:"cost"`

	// LastUpdated - самое позднее из: обновления заказа, обновления партий,
	// дат входа/выхода шагов истории.
	LastUpdated time.Time `json:"last_updated"`
}

// BuildOrderReport считает метрики заказа. order.Lots должны быть
// загружены вместе с историей.
func BuildOrderReport(order *domain.Order, catalog []domain.Process, now time.Time) OrderReport {
	report := OrderReport{
		Order:       *order,
		Lots:        make([]LotMetrics, 0, len(order.Lots)),
		LastUpdated: order.UpdatedAt,
	}

	for i := range order.Lots {
		lot := &order.Lots[i]
		report.Lots = append(report.Lots, LotMetrics{
			Lot:                 *lot,
			Progress:            LotProgress(lot),
			RemainingDays:       LotRemainingDays(lot, catalog),
			EstimatedCompletion: LotEstimatedCompletion(lot, catalog, now),
			Cost:                LotCost(lot),
		})

		report.LastUpdated = latest(report.LastUpdated, lot.UpdatedAt)
		for j := range lot.History {
			entry := &lot.History[j]
			switch {
			case entry.ExitDate != nil:
				report.LastUpdated = latest(report.LastUpdated, *entry.ExitDate)
			case entry.EntryDate != nil:
				report.LastUpdated = latest(report.LastUpdated, *entry.EntryDate)
			}
		}
	}

	report.Progress = OrderProgress(order.Lots)
	report.RemainingDays = OrderRemainingDays(order.Lots, catalog)
	report.Cost = OrderCost(order.Lots)
	return report
}

func latest(a, b time.Time) time.Time {
	if b.After(a) {
		return b
	}
	return a
}
