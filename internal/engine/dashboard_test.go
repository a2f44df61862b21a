package engine

import (
	"testing"

	"github.com/google/uuid"
	"github.com/shaiso/produccion/internal/domain"
)

func TestDeriveOrderStatus(t *testing.T) {
	tests := []struct {
		progress  float64
		remaining float64
		want      domain.OrderStatus
	}{
		{1, 0, domain.OrderCompleted},
		{1, 2, domain.OrderCompleted},
		{0.5, 0, domain.OrderDelayed},
		{0, -1, domain.OrderDelayed},
		{0.5, 1.5, domain.OrderInProcess},
	}

	for _, tt := range tests {
		if got := DeriveOrderStatus(tt.progress, tt.remaining); got != tt.want {
			t.Errorf("progress=%v remaining=%v: expected %s, got %s", tt.progress, tt.remaining, tt.want, got)
		}
	}
}

func TestBuildOrderDashboard(t *testing.T) {
	catalog := testCatalog()

	fresh := domain.Order{
		ID:         uuid.New(),
		Number:     1,
		ClientName: "Hotel Sol",
		Lots:       []domain.Lot{lotWith(5, domain.LotStatusActive)},
	}
	// Все процессы каталога пройдены, но в истории остался шаг вне каталога.
	late := domain.Order{
		ID:     uuid.New(),
		Number: 2,
		Lots: []domain.Lot{lotWith(5, domain.LotStatusActive,
			entry(1, &catalog[0], domain.EntryStatusCompleted),
			entry(2, &catalog[1], domain.EntryStatusCompleted),
			entry(3, &catalog[2], domain.EntryStatusCompleted),
			entry(4, nil, domain.EntryStatusPending),
		)},
	}
	orders := []domain.Order{fresh, late}

	all := BuildOrderDashboard(orders, catalog, "")
	if len(all) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(all))
	}
	if all[0].Number != 1 || all[0].Status != domain.OrderInProcess {
		t.Errorf("unexpected first row %+v", all[0])
	}
	if !almostEqual(all[0].RemainingDays, 3) {
		t.Errorf("expected 3 remaining days, got %v", all[0].RemainingDays)
	}
	if all[1].ClientName != "N/A" {
		t.Errorf("expected N/A client, got %q", all[1].ClientName)
	}
	if all[1].Status != domain.OrderDelayed {
		t.Errorf("expected DELAYED, got %s", all[1].Status)
	}

	delayed := BuildOrderDashboard(orders, catalog, domain.OrderDelayed)
	if len(delayed) != 1 || delayed[0].Number != 2 {
		t.Errorf("expected only order 2, got %+v", delayed)
	}
}

func TestSummarizeWorkshops(t *testing.T) {
	w1, w2 := uuid.New(), uuid.New()

	at := func(qty int, workshop *uuid.UUID) domain.Lot {
		l := lotWith(qty, domain.LotStatusActive)
		l.CurrentWorkshopID = workshop
		return l
	}

	loads := SummarizeWorkshops([]domain.Lot{
		at(4, &w1),
		at(6, &w2),
		at(3, &w2),
		at(9, nil),
	})

	if len(loads) != 2 {
		t.Fatalf("expected 2 workshops, got %d", len(loads))
	}
	if loads[0].WorkshopID != w2 || loads[0].ActiveLots != 2 || loads[0].TotalUnits != 9 {
		t.Errorf("unexpected first load %+v", loads[0])
	}
	if loads[1].WorkshopID != w1 || loads[1].ActiveLots != 1 || loads[1].TotalUnits != 4 {
		t.Errorf("unexpected second load %+v", loads[1])
	}
}
