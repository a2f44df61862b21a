package engine

import (
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/shaiso/produccion/internal/domain"
)

// StepCount - количество завершённых шагов в группе.
// ID == nil - группа записей без цеха или без процесса.
type StepCount struct {
	ID    *uuid.UUID `json:"id,omitempty"`
	Name  string     `json:"name,omitempty"`
	Count int        `json:"count"`
}

// DailySummary - сводка шагов, завершённых за день, и ручных записей дня.
type DailySummary struct {
	Day           time.Time             `json:"day"`
	Total         int                   `json:"total"`
	ByWorkshop    []StepCount           `json:"by_workshop"`
	ByProcess     []StepCount           `json:"by_process"`
	ManualRecords []domain.ManualRecord `json:"manual_records"`
}

// DayBounds возвращает начало и конец календарного дня в loc.
func DayBounds(day time.Time, loc *time.Location) (time.Time, time.Time) {
	if loc == nil {
		loc = time.UTC
	}
	d := day.In(loc)
	start := time.Date(d.Year(), d.Month(), d.Day(), 0, 0, 0, 0, loc)
	end := start.AddDate(0, 0, 1).Add(-time.Nanosecond)
	return start, end
}

// SummarizeDay группирует завершённые за день шаги по цеху и по процессу.
func SummarizeDay(day time.Time, entries []domain.HistoryEntry) DailySummary {
	byWorkshop := make(map[uuid.UUID]*StepCount)
	byProcess := make(map[uuid.UUID]*StepCount)
	var noWorkshop, noProcess StepCount

	for i := range entries {
		entry := &entries[i]

		if entry.WorkshopID == nil {
			noWorkshop.Count++
		} else {
			c, ok := byWorkshop[*entry.WorkshopID]
			if !ok {
				id := *entry.WorkshopID
				c = &StepCount{ID: &id}
				byWorkshop[id] = c
			}
			c.Count++
		}

		if entry.ProcessID == nil {
			noProcess.Count++
		} else {
			c, ok := byProcess[*entry.ProcessID]
			if !ok {
				id := *entry.ProcessID
				c = &StepCount{ID: &id, Name: entry.ProcessName()}
				byProcess[id] = c
			}
			c.Count++
		}
	}

	return DailySummary{
		Day:        day,
		Total:      len(entries),
		ByWorkshop: flatten(byWorkshop, noWorkshop),
		ByProcess:  flatten(byProcess, noProcess),

		ManualRecords: []domain.ManualRecord{},
	}
}

// flatten превращает группы в срез, отсортированный по убыванию количества.
func flatten(groups map[uuid.UUID]*StepCount, ungrouped StepCount) []StepCount {
	result := make([]StepCount, 0, len(groups)+1)
	for _, c := range groups {
		result = append(result, *c)
	}
	if ungrouped.Count > 0 {
		result = append(result, ungrouped)
	}

	sort.Slice(result, func(i, j int) bool {
		if result[i].Count != result[j].Count {
			return result[i].Count > result[j].Count
		}
		return keyOf(result[i]) < keyOf(result[j])
	})
	return result
}

func keyOf(c StepCount) string {
	if c.ID == nil {
		return "~"
	}
	return c.Name + c.ID.String()
}
