package engine

import (
	"sort"

	"github.com/shaiso/produccion/internal/domain"
)

// DeriveState вычисляет производное состояние партии по её истории.
//
// Второе значение false, если истории нет: в этом случае состояние
// PENDING, а партию менять не нужно.
//
//   - все шаги завершены → FINISHED, указатели очищаются
//   - есть шаг IN_PROGRESS → IN_PROGRESS
//   - иначе PENDING
//
// Текущими становятся процесс и цех первого незавершённого шага
// (предпочтительно выполняющегося). Перевозчик берётся только
// с транспортного шага.
func DeriveState(history []domain.HistoryEntry) (domain.LotState, bool) {
	if len(history) == 0 {
		return domain.LotState{Status: domain.ProgressPending}, false
	}

	entries := make([]domain.HistoryEntry, len(history))
	copy(entries, history)
	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].Seq < entries[j].Seq
	})

	allCompleted := true
	anyInProgress := false
	for i := range entries {
		if !entries[i].Completed() {
			allCompleted = false
		}
		if entries[i].InProgress() {
			anyInProgress = true
		}
	}

	if allCompleted {
		return domain.LotState{Status: domain.ProgressFinished}, true
	}

	state := domain.LotState{Status: domain.ProgressPending}
	if anyInProgress {
		state.Status = domain.ProgressInProgress
	}

	active := findActive(entries)
	if active != nil {
		state.CurrentProcessID = active.ProcessID
		state.CurrentWorkshopID = active.WorkshopID
		if active.IsTransport {
			state.CurrentTransporterID = active.TransporterID
		}
	}
	return state, true
}

// findActive возвращает первый выполняющийся шаг, а если такого нет -
// первый незавершённый.
func findActive(entries []domain.HistoryEntry) *domain.HistoryEntry {
	for i := range entries {
		if entries[i].InProgress() {
			return &entries[i]
		}
	}
	for i := range entries {
		if !entries[i].Completed() {
			return &entries[i]
		}
	}
	return nil
}
