package engine

import (
	"math"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shaiso/produccion/internal/domain"
)

func TestLotRemainingDays(t *testing.T) {
	catalog := testCatalog()
	corte, costura, planchado := &catalog[0], &catalog[1], &catalog[2]

	// Процесс известен только по ID: порядок берётся из каталога.
	byID := entry(2, nil, domain.EntryStatusCompleted)
	byID.ProcessID = ptrUUID(costura.ID)

	legacy := entry(1, corte, domain.EntryStatusLegacy)
	legacy.ExitDate = ptrTime(baseTime)

	tests := []struct {
		name string
		lot  domain.Lot
		want float64
	}{
		{
			name: "finished",
			lot:  lotWith(5, domain.LotStatusFinished, entry(1, corte, domain.EntryStatusPending)),
			want: 0,
		},
		{
			name: "nothing completed counts whole catalog",
			lot:  lotWith(5, domain.LotStatusActive, entry(1, corte, domain.EntryStatusInProgress)),
			want: 3,
		},
		{
			name: "no history counts whole catalog",
			lot:  lotWith(5, domain.LotStatusActive),
			want: 3,
		},
		{
			name: "cut completed",
			lot: lotWith(5, domain.LotStatusActive,
				entry(1, corte, domain.EntryStatusCompleted),
				entry(2, costura, domain.EntryStatusPending),
				entry(3, planchado, domain.EntryStatusPending),
			),
			want: 2,
		},
		{
			name: "legacy completion",
			lot:  lotWith(5, domain.LotStatusActive, legacy),
			want: 2,
		},
		{
			name: "order resolved through catalog",
			lot:  lotWith(5, domain.LotStatusActive, byID),
			want: 1,
		},
		{
			name: "all completed but not yet finished",
			lot: lotWith(5, domain.LotStatusActive,
				entry(1, corte, domain.EntryStatusCompleted),
				entry(2, costura, domain.EntryStatusCompleted),
				entry(3, planchado, domain.EntryStatusCompleted),
			),
			want: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := LotRemainingDays(&tt.lot, catalog)
			if !almostEqual(got, tt.want) {
				t.Errorf("expected %v, got %v", tt.want, got)
			}
		})
	}
}

func TestLotRemainingDays_MalformedDurations(t *testing.T) {
	catalog := testCatalog()
	catalog[0].StandardDurationDays = -4
	catalog[1].StandardDurationDays = math.NaN()
	catalog[2].StandardDurationDays = 2.5

	lot := lotWith(1, domain.LotStatusActive)
	if got := LotRemainingDays(&lot, catalog); !almostEqual(got, 2.5) {
		t.Errorf("expected 2.5, got %v", got)
	}
}

func TestOrderRemainingDays_Weighted(t *testing.T) {
	catalog := testCatalog()
	a := lotWith(5, domain.LotStatusActive, entry(1, &catalog[0], domain.EntryStatusCompleted))
	b := lotWith(5, domain.LotStatusActive)

	got := OrderRemainingDays([]domain.Lot{a, b}, catalog)
	if !almostEqual(got, 2.5) {
		t.Errorf("expected 2.5, got %v", got)
	}

	zero := []domain.Lot{lotWith(0, domain.LotStatusActive)}
	if got := OrderRemainingDays(zero, catalog); got != 0 {
		t.Errorf("expected 0 for zero quantity, got %v", got)
	}
}

func TestLotEstimatedCompletion(t *testing.T) {
	catalog := testCatalog()
	lot := lotWith(5, domain.LotStatusActive, entry(1, &catalog[0], domain.EntryStatusCompleted))

	eta := LotEstimatedCompletion(&lot, catalog, baseTime)
	if eta == nil {
		t.Fatal("expected estimated completion")
	}
	if want := baseTime.Add(2 * Day); !eta.Equal(want) {
		t.Errorf("expected %v, got %v", want, *eta)
	}

	finished := lotWith(5, domain.LotStatusFinished)
	eta = LotEstimatedCompletion(&finished, catalog, baseTime)
	if eta == nil || !eta.Equal(baseTime) {
		t.Errorf("expected now for finished lot, got %v", eta)
	}
}

func TestLotEstimatedCompletion_LongDurations(t *testing.T) {
	now := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	lot := lotWith(1, domain.LotStatusActive)

	tests := []struct {
		name string
		days float64
		want *time.Time
	}{
		{name: "beyond duration range", days: 200000, want: ptrTime(now.AddDate(0, 0, 200000))},
		{name: "fractional remainder", days: 200000.5, want: ptrTime(now.AddDate(0, 0, 200000).Add(12 * time.Hour))},
		{name: "too far to represent", days: 1e12},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			catalog := []domain.Process{{ID: uuid.New(), Name: "Bordado", Order: 1, StandardDurationDays: tt.days}}

			eta := LotEstimatedCompletion(&lot, catalog, now)
			if tt.want == nil {
				if eta != nil {
					t.Errorf("expected no estimate, got %v", *eta)
				}
				return
			}
			if eta == nil {
				t.Fatal("expected estimated completion")
			}
			if !eta.Equal(*tt.want) {
				t.Errorf("expected %v, got %v", *tt.want, *eta)
			}
			if eta.Before(now) {
				t.Errorf("estimate %v is before now", *eta)
			}
		})
	}
}

func TestFinishedLotProperties(t *testing.T) {
	catalog := testCatalog()
	histories := [][]domain.HistoryEntry{
		nil,
		{entry(1, &catalog[0], domain.EntryStatusPending)},
		{entry(1, &catalog[0], domain.EntryStatusInProgress), entry(2, nil, domain.EntryStatusLegacy)},
	}

	for i, h := range histories {
		lot := lotWith(3, domain.LotStatusFinished, h...)
		if got := LotProgress(&lot); got != 1 {
			t.Errorf("case %d: expected progress 1, got %v", i, got)
		}
		if got := LotRemainingDays(&lot, catalog); got != 0 {
			t.Errorf("case %d: expected 0 remaining days, got %v", i, got)
		}
	}
}
