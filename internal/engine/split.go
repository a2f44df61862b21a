package engine

import (
	"time"

	"github.com/google/uuid"
	"github.com/shaiso/produccion/internal/domain"
)

// ActiveIndex возвращает индекс первого незавершённого шага в упорядоченной
// по процессу истории или -1, если все шаги завершены.
func ActiveIndex(ordered []domain.HistoryEntry) int {
	for i := range ordered {
		if !ordered[i].Completed() {
			return i
		}
	}
	return -1
}

// CloneHistory копирует историю родительской партии на дочернюю.
//
// Записи копируются в порядке процессов:
//   - завершённые шаги копируются как COMPLETED со своими датами
//   - активный шаг (первый незавершённый) становится IN_PROGRESS, если он
//     выполнялся у родителя, иначе PENDING
//   - остальные шаги - PENDING без дат
//
// Пустые даты у копируемых завершённых или выполняющихся шагов заполняются now.
// Seq у копий не задан: его назначает хранилище при вставке.
func CloneHistory(parent []domain.HistoryEntry, childLotID uuid.UUID, now time.Time) []domain.HistoryEntry {
	ordered := make([]domain.HistoryEntry, len(parent))
	copy(ordered, parent)
	domain.SortHistoryByProcessOrder(ordered)

	active := ActiveIndex(ordered)

	clones := make([]domain.HistoryEntry, 0, len(ordered))
	for idx := range ordered {
		src := &ordered[idx]
		completed := src.Completed()
		running := idx == active && !completed && src.InProgress()

		clone := domain.HistoryEntry{
			ID:              uuid.New(),
			LotID:           childLotID,
			ProcessID:       src.ProcessID,
			Process:         src.Process,
			WorkshopID:      src.WorkshopID,
			TransporterID:   src.TransporterID,
			Status:          domain.EntryStatusPending,
			Notes:           src.Notes,
			Price:           src.Price,
			RequiresAdvance: src.RequiresAdvance,
			Specifications:  src.Specifications,
			IsTransport:     src.IsTransport,
			CreatedAt:       now,
			UpdatedAt:       now,
		}

		switch {
		case completed:
			clone.Status = domain.EntryStatusCompleted
			clone.EntryDate = timeOr(src.EntryDate, now)
			clone.ExitDate = timeOr(src.ExitDate, now)
		case running:
			clone.Status = domain.EntryStatusInProgress
			clone.EntryDate = timeOr(src.EntryDate, now)
		}

		clones = append(clones, clone)
	}
	return clones
}

func timeOr(t *time.Time, fallback time.Time) *time.Time {
	if t != nil {
		v := *t
		return &v
	}
	return &fallback
}
