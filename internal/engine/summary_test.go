package engine

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shaiso/produccion/internal/domain"
)

func TestDayBounds(t *testing.T) {
	loc := time.FixedZone("ART", -3*60*60)
	start, end := DayBounds(time.Date(2025, 3, 10, 2, 0, 0, 0, time.UTC), loc)

	if want := time.Date(2025, 3, 9, 0, 0, 0, 0, loc); !start.Equal(want) {
		t.Errorf("expected start %v, got %v", want, start)
	}
	if want := time.Date(2025, 3, 10, 0, 0, 0, 0, loc).Add(-time.Nanosecond); !end.Equal(want) {
		t.Errorf("expected end %v, got %v", want, end)
	}

	start, _ = DayBounds(baseTime, nil)
	if start.Location() != time.UTC {
		t.Error("nil location should default to UTC")
	}
}

func TestSummarizeDay(t *testing.T) {
	catalog := testCatalog()
	w1, w2 := uuid.New(), uuid.New()

	mk := func(p *domain.Process, workshop *uuid.UUID) domain.HistoryEntry {
		e := entry(1, p, domain.EntryStatusCompleted)
		e.WorkshopID = workshop
		return e
	}

	summary := SummarizeDay(baseTime, []domain.HistoryEntry{
		mk(&catalog[0], &w1),
		mk(&catalog[0], &w1),
		mk(&catalog[1], &w2),
		mk(nil, nil),
	})

	if summary.Total != 4 {
		t.Errorf("expected total 4, got %d", summary.Total)
	}

	if len(summary.ByWorkshop) != 3 {
		t.Fatalf("expected 3 workshop groups, got %d", len(summary.ByWorkshop))
	}
	if *summary.ByWorkshop[0].ID != w1 || summary.ByWorkshop[0].Count != 2 {
		t.Errorf("expected w1 with 2 steps first, got %+v", summary.ByWorkshop[0])
	}
	if summary.ByWorkshop[2].ID != nil {
		t.Error("ungrouped entries should sort last among equal counts")
	}

	if len(summary.ByProcess) != 3 {
		t.Fatalf("expected 3 process groups, got %d", len(summary.ByProcess))
	}
	if summary.ByProcess[0].Name != "Corte" || summary.ByProcess[0].Count != 2 {
		t.Errorf("expected Corte with 2 steps first, got %+v", summary.ByProcess[0])
	}
}

func TestSummarizeDay_Empty(t *testing.T) {
	summary := SummarizeDay(baseTime, nil)
	if summary.Total != 0 || len(summary.ByWorkshop) != 0 || len(summary.ByProcess) != 0 {
		t.Errorf("expected empty summary, got %+v", summary)
	}
}
