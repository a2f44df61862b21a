package engine

import (
	"github.com/shaiso/produccion/internal/domain"
	"github.com/shopspring/decimal"
)

// LotCost возвращает сумму цен всех шагов истории (пустая цена = 0).
func LotCost(lot *domain.Lot) decimal.Decimal {
	total := decimal.Zero
	for i := range lot.History {
		if lot.History[i].Price.Valid {
			total = total.Add(lot.History[i].Price.Decimal)
		}
	}
	return total
}

// OrderCost возвращает сумму LotCost по всем партиям заказа, без весов.
func OrderCost(lots []domain.Lot) decimal.Decimal {
	total := decimal.Zero
	for i := range lots {
		total = total.Add(LotCost(&lots[i]))
	}
	return total
}
