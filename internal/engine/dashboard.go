package engine

import (
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/shaiso/produccion/internal/domain"
)

// OrderSummary - строка сводной панели заказов.
type OrderSummary struct {
	ID            uuid.UUID          `json:"id"`
	Number        int                `json:"number"`
	ClientName    string             `json:"client_name"`
	Contact       string             `json:"contact,omitempty"`
	CreatedAt     time.Time          `json:"created_at"`
	UpdatedAt     time.Time          `json:"updated_at"`
	Progress      float64            `json:"progress"`
	RemainingDays float64            `json:"remaining_days"`
	Status        domain.OrderStatus `json:"status"`
}

// DeriveOrderStatus: COMPLETED при прогрессе ≥ 1, DELAYED если оставшееся
// время исчерпано, иначе IN_PROCESS.
func DeriveOrderStatus(progress, remainingDays float64) domain.OrderStatus {
	switch {
	case progress >= 1:
		return domain.OrderCompleted
	case remainingDays <= 0:
		return domain.OrderDelayed
	default:
		return domain.OrderInProcess
	}
}

// SummarizeOrder считает строку панели. order.Lots должны быть загружены
// вместе с историей.
func SummarizeOrder(order *domain.Order, catalog []domain.Process) OrderSummary {
	progress := OrderProgress(order.Lots)
	remaining := OrderRemainingDays(order.Lots, catalog)

	client := order.ClientName
	if client == "" {
		client = "N/A"
	}

	return OrderSummary{
		ID:            order.ID,
		Number:        order.Number,
		ClientName:    client,
		Contact:       order.Contact,
		CreatedAt:     order.CreatedAt,
		UpdatedAt:     order.UpdatedAt,
		Progress:      progress,
		RemainingDays: remaining,
		Status:        DeriveOrderStatus(progress, remaining),
	}
}

// BuildOrderDashboard строит строки панели в порядке orders.
// Пустой status - без фильтра.
func BuildOrderDashboard(orders []domain.Order, catalog []domain.Process, status domain.OrderStatus) []OrderSummary {
	result := make([]OrderSummary, 0, len(orders))
	for i := range orders {
		summary := SummarizeOrder(&orders[i], catalog)
		if status != "" && summary.Status != status {
			continue
		}
		result = append(result, summary)
	}
	return result
}

// WorkshopLoad - загрузка цеха: сколько партий в нём и сколько в них изделий.
type WorkshopLoad struct {
	WorkshopID uuid.UUID `json:"workshop_id"`
	ActiveLots int       `json:"active_lots"`
	TotalUnits int       `json:"total_units"`
}

// SummarizeWorkshops группирует партии по текущему цеху. Партии без цеха
// пропускаются. Результат отсортирован по убыванию числа партий.
func SummarizeWorkshops(lots []domain.Lot) []WorkshopLoad {
	byWorkshop := make(map[uuid.UUID]*WorkshopLoad)
	for i := range lots {
		lot := &lots[i]
		if lot.CurrentWorkshopID == nil {
			continue
		}
		load, ok := byWorkshop[*lot.CurrentWorkshopID]
		if !ok {
			load = &WorkshopLoad{WorkshopID: *lot.CurrentWorkshopID}
			byWorkshop[load.WorkshopID] = load
		}
		load.ActiveLots++
		load.TotalUnits += lot.Quantity
	}

	result := make([]WorkshopLoad, 0, len(byWorkshop))
	for _, load := range byWorkshop {
		result = append(result, *load)
	}
	sort.Slice(result, func(i, j int) bool {
		if result[i].ActiveLots != result[j].ActiveLots {
			return result[i].ActiveLots > result[j].ActiveLots
		}
		return result[i].WorkshopID.String() < result[j].WorkshopID.String()
	})
	return result
}
