package engine

import (
	"testing"

	"github.com/google/uuid"
	"github.com/shaiso/produccion/internal/domain"
	"github.com/shopspring/decimal"
)

func TestDeriveState_Empty(t *testing.T) {
	state, ok := DeriveState(nil)
	if ok {
		t.Error("expected ok=false for empty history")
	}
	if state.Status != domain.ProgressPending {
		t.Errorf("expected PENDING, got %s", state.Status)
	}
}

func TestDeriveState_AllCompleted(t *testing.T) {
	catalog := testCatalog()
	legacy := entry(2, &catalog[1], domain.EntryStatusLegacy)
	legacy.ExitDate = ptrTime(baseTime)

	state, ok := DeriveState([]domain.HistoryEntry{
		entry(1, &catalog[0], domain.EntryStatusCompleted),
		legacy,
	})
	if !ok {
		t.Fatal("expected ok=true")
	}
	if state.Status != domain.ProgressFinished {
		t.Errorf("expected FINISHED, got %s", state.Status)
	}
	if state.CurrentProcessID != nil || state.CurrentWorkshopID != nil || state.CurrentTransporterID != nil {
		t.Error("pointers should be cleared for finished lot")
	}
}

func TestDeriveState_PrefersInProgress(t *testing.T) {
	catalog := testCatalog()
	workshop := uuid.New()

	pending := entry(2, &catalog[1], domain.EntryStatusPending)
	running := entry(3, &catalog[2], domain.EntryStatusInProgress)
	running.WorkshopID = ptrUUID(workshop)

	// Порядок вставки важнее порядка в срезе.
	state, _ := DeriveState([]domain.HistoryEntry{
		running,
		entry(1, &catalog[0], domain.EntryStatusCompleted),
		pending,
	})

	if state.Status != domain.ProgressInProgress {
		t.Errorf("expected IN_PROGRESS, got %s", state.Status)
	}
	if state.CurrentProcessID == nil || *state.CurrentProcessID != catalog[2].ID {
		t.Errorf("expected current process %s", catalog[2].Name)
	}
	if state.CurrentWorkshopID == nil || *state.CurrentWorkshopID != workshop {
		t.Error("expected current workshop from in-progress entry")
	}
}

func TestDeriveState_FirstNotCompleted(t *testing.T) {
	catalog := testCatalog()
	state, _ := DeriveState([]domain.HistoryEntry{
		entry(1, &catalog[0], domain.EntryStatusCompleted),
		entry(2, &catalog[1], domain.EntryStatusPending),
		entry(3, &catalog[2], domain.EntryStatusPending),
	})

	if state.Status != domain.ProgressPending {
		t.Errorf("expected PENDING, got %s", state.Status)
	}
	if state.CurrentProcessID == nil || *state.CurrentProcessID != catalog[1].ID {
		t.Error("expected current process Costura")
	}
}

func TestDeriveState_TransporterOnlyFromTransportStep(t *testing.T) {
	catalog := testCatalog()
	transporter := uuid.New()

	step := entry(1, &catalog[0], domain.EntryStatusInProgress)
	step.TransporterID = ptrUUID(transporter)

	state, _ := DeriveState([]domain.HistoryEntry{step})
	if state.CurrentTransporterID != nil {
		t.Error("non-transport step must not set transporter")
	}

	step.IsTransport = true
	state, _ = DeriveState([]domain.HistoryEntry{step})
	if state.CurrentTransporterID == nil || *state.CurrentTransporterID != transporter {
		t.Error("transport step should set transporter")
	}
}

func TestLotCost(t *testing.T) {
	catalog := testCatalog()
	a := lotWith(5, domain.LotStatusActive,
		priced(entry(1, &catalog[0], domain.EntryStatusCompleted), "120.50"),
		entry(2, &catalog[1], domain.EntryStatusPending),
		priced(entry(3, &catalog[2], domain.EntryStatusPending), "30"),
	)
	b := lotWith(5, domain.LotStatusActive,
		priced(entry(1, &catalog[0], domain.EntryStatusPending), "10.25"),
	)

	if got := LotCost(&a); !got.Equal(decimal.RequireFromString("150.50")) {
		t.Errorf("expected 150.50, got %s", got)
	}
	if got := OrderCost([]domain.Lot{a, b}); !got.Equal(decimal.RequireFromString("160.75")) {
		t.Errorf("expected 160.75, got %s", got)
	}
	if got := OrderCost(nil); !got.IsZero() {
		t.Errorf("expected 0, got %s", got)
	}
}
