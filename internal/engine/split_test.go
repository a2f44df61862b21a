package engine

import (
	"testing"

	"github.com/google/uuid"
	"github.com/shaiso/produccion/internal/domain"
)

func TestCloneHistory(t *testing.T) {
	catalog := testCatalog()
	now := baseTime.Add(48 * Day)
	workshop := uuid.New()

	done := entry(1, &catalog[0], domain.EntryStatusCompleted)
	done.Notes = "ok"
	running := entry(2, &catalog[1], domain.EntryStatusInProgress)
	running.WorkshopID = ptrUUID(workshop)
	later := priced(entry(3, &catalog[2], domain.EntryStatusPending), "15")

	child := uuid.New()
	// Родительская история передаётся не по порядку процессов.
	clones := CloneHistory([]domain.HistoryEntry{later, running, done}, child, now)

	if len(clones) != 3 {
		t.Fatalf("expected 3 entries, got %d", len(clones))
	}

	wantStatus := []domain.EntryStatus{
		domain.EntryStatusCompleted,
		domain.EntryStatusInProgress,
		domain.EntryStatusPending,
	}
	for i, c := range clones {
		if c.Status != wantStatus[i] {
			t.Errorf("entry %d: expected %s, got %s", i, wantStatus[i], c.Status)
		}
		if c.LotID != child {
			t.Errorf("entry %d: expected lot %s", i, child)
		}
		if c.ID == done.ID || c.ID == running.ID || c.ID == later.ID {
			t.Errorf("entry %d: clone must get a new id", i)
		}
	}

	if !clones[0].EntryDate.Equal(*done.EntryDate) || !clones[0].ExitDate.Equal(*done.ExitDate) {
		t.Error("completed clone should keep original dates")
	}
	if clones[0].Notes != "ok" {
		t.Errorf("expected notes copied, got %q", clones[0].Notes)
	}

	if !clones[1].EntryDate.Equal(*running.EntryDate) || clones[1].ExitDate != nil {
		t.Error("in-progress clone should keep entry date and have no exit date")
	}
	if clones[1].WorkshopID == nil || *clones[1].WorkshopID != workshop {
		t.Error("workshop should be copied")
	}

	if clones[2].EntryDate != nil || clones[2].ExitDate != nil {
		t.Error("pending clone should have no dates")
	}
	if !clones[2].Price.Valid || clones[2].Price.Decimal.String() != "15" {
		t.Errorf("price should be copied, got %v", clones[2].Price)
	}
}

func TestCloneHistory_ActivePending(t *testing.T) {
	catalog := testCatalog()
	clones := CloneHistory([]domain.HistoryEntry{
		entry(1, &catalog[0], domain.EntryStatusCompleted),
		entry(2, &catalog[1], domain.EntryStatusPending),
	}, uuid.New(), baseTime)

	if clones[1].Status != domain.EntryStatusPending {
		t.Errorf("expected PENDING at active index, got %s", clones[1].Status)
	}
}

func TestCloneHistory_FillsMissingDates(t *testing.T) {
	catalog := testCatalog()
	legacy := entry(1, &catalog[0], domain.EntryStatusLegacy)
	legacy.ExitDate = ptrTime(baseTime)

	clones := CloneHistory([]domain.HistoryEntry{legacy}, uuid.New(), baseTime.Add(Day))

	if clones[0].Status != domain.EntryStatusCompleted {
		t.Fatalf("expected COMPLETED, got %s", clones[0].Status)
	}
	if clones[0].EntryDate == nil || !clones[0].EntryDate.Equal(baseTime.Add(Day)) {
		t.Error("missing entry date should be filled with now")
	}
	if !clones[0].ExitDate.Equal(baseTime) {
		t.Error("existing exit date should be kept")
	}
}

func TestCloneHistory_ProgressMatchesParent(t *testing.T) {
	catalog := testCatalog()
	parent := lotWith(10, domain.LotStatusActive,
		entry(1, &catalog[0], domain.EntryStatusCompleted),
		entry(2, &catalog[1], domain.EntryStatusInProgress),
		entry(3, &catalog[2], domain.EntryStatusPending),
	)

	child := lotWith(4, domain.LotStatusActive, CloneHistory(parent.History, uuid.New(), baseTime)...)

	if LotProgress(&child) != LotProgress(&parent) {
		t.Errorf("expected child progress %v, got %v", LotProgress(&parent), LotProgress(&child))
	}

	parentState, _ := DeriveState(parent.History)
	childState, _ := DeriveState(child.History)
	if parentState.Status != childState.Status {
		t.Errorf("expected child state %s, got %s", parentState.Status, childState.Status)
	}
}
