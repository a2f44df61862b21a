package engine

import (
	"time"

	"github.com/google/uuid"
	"github.com/shaiso/produccion/internal/domain"
	"github.com/shopspring/decimal"
)

var baseTime = time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)

func ptrTime(t time.Time) *time.Time { return &t }

func ptrUUID(id uuid.UUID) *uuid.UUID { return &id }

// testCatalog - Corte(1) → Costura(2) → Planchado(3), по одному дню.
func testCatalog() []domain.Process {
	return []domain.Process{
		{ID: uuid.New(), Name: "Corte", Order: 1, StandardDurationDays: 1},
		{ID: uuid.New(), Name: "Costura", Order: 2, StandardDurationDays: 1},
		{ID: uuid.New(), Name: "Planchado", Order: 3, StandardDurationDays: 1},
	}
}

func entry(seq int64, p *domain.Process, status domain.EntryStatus) domain.HistoryEntry {
	e := domain.HistoryEntry{
		ID:     uuid.New(),
		Seq:    seq,
		Status: status,
	}
	if p != nil {
		e.ProcessID = ptrUUID(p.ID)
		e.Process = p
	}
	switch status {
	case domain.EntryStatusInProgress:
		e.EntryDate = ptrTime(baseTime)
	case domain.EntryStatusCompleted:
		e.EntryDate = ptrTime(baseTime)
		e.ExitDate = ptrTime(baseTime.Add(time.Hour))
	}
	return e
}

func priced(e domain.HistoryEntry, price string) domain.HistoryEntry {
	e.Price = decimal.NewNullDecimal(decimal.RequireFromString(price))
	return e
}

func lotWith(qty int, status domain.LotStatus, history ...domain.HistoryEntry) domain.Lot {
	return domain.Lot{
		ID:       uuid.New(),
		Code:     "40.1",
		Quantity: qty,
		Status:   status,
		History:  history,
	}
}
