package produccion

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shaiso/produccion/internal/domain"
	"github.com/shaiso/produccion/internal/telemetry"
)

// MoveInput - ручное перемещение партии.
type MoveInput struct {
	LotID uuid.UUID

	// Новые указатели партии. Nil очищает указатель.
	ProcessID     *uuid.UUID
	WorkshopID    *uuid.UUID
	TransporterID *uuid.UUID

	// EntryDate - nil означает текущее время.
	EntryDate *time.Time

	// ExitDate - если задана, запись сразу COMPLETED, иначе IN_PROGRESS.
	ExitDate *time.Time

	Notes        string
	MarkFinished bool
}

// MoveResult - результат перемещения.
type MoveResult struct {
	Entry domain.HistoryEntry `json:"entry"`
	Lot   domain.Lot          `json:"lot"`
}

// MoveLot записывает перемещение партии в историю и переставляет её
// указатели на процесс, цех и перевозчика. С MarkFinished партия
// завершается.
func (s *Service) MoveLot(ctx context.Context, in MoveInput) (result *MoveResult, err error) {
	start := time.Now()
	ctx = telemetry.WithLogger(ctx, telemetry.WithLotID(s.logger, in.LotID.String()))
	defer func() { s.observe(ctx, opMove, start, err) }()

	if in.LotID == uuid.Nil {
		return nil, validationf("lot id is required")
	}

	now := s.now()
	entryDate := now
	if in.EntryDate != nil {
		entryDate = in.EntryDate.UTC()
	}
	var exitDate *time.Time
	if in.ExitDate != nil {
		exit := in.ExitDate.UTC()
		if exit.Before(entryDate) {
			return nil, validationf("exit date %s is before entry date %s",
				exit.Format(time.RFC3339), entryDate.Format(time.RFC3339))
		}
		exitDate = &exit
	}

	err = s.store.WithinTx(ctx, func(ctx context.Context, q domain.Queries) error {
		lot, err := q.GetLotForUpdate(ctx, in.LotID)
		if err != nil {
			return fmt.Errorf("lot %s: %w", in.LotID, err)
		}
		if err := lot.EnsureEditable(); err != nil {
			return err
		}

		var process *domain.Process
		if in.ProcessID != nil {
			process, err = findProcess(ctx, q, *in.ProcessID)
			if err != nil {
				return err
			}
		}

		entry := domain.HistoryEntry{
			LotID:         lot.ID,
			ProcessID:     in.ProcessID,
			Process:       process,
			WorkshopID:    in.WorkshopID,
			TransporterID: in.TransporterID,
			Status:        domain.EntryStatusInProgress,
			EntryDate:     &entryDate,
			ExitDate:      exitDate,
			Notes:         in.Notes,
			CreatedAt:     now,
			UpdatedAt:     now,
		}
		if exitDate != nil {
			entry.Status = domain.EntryStatusCompleted
		}
		if err := q.CreateHistoryEntry(ctx, &entry); err != nil {
			return err
		}

		lot.CurrentProcessID = in.ProcessID
		lot.CurrentWorkshopID = in.WorkshopID
		lot.CurrentTransporterID = in.TransporterID
		if in.MarkFinished {
			lot.Status = domain.LotStatusFinished
		}
		if err := q.UpdateLot(ctx, lot); err != nil {
			return err
		}

		lot.History = append(lot.History, entry)
		result = &MoveResult{Entry: entry, Lot: *lot}
		return nil
	})
	if err != nil {
		return nil, storageErr(err)
	}

	s.publish(ctx, &result.Lot, ReasonMoved)
	return result, nil
}

func findProcess(ctx context.Context, q domain.Queries, id uuid.UUID) (*domain.Process, error) {
	processes, err := q.ListProcesses(ctx)
	if err != nil {
		return nil, err
	}
	for i := range processes {
		if processes[i].ID == id {
			return &processes[i], nil
		}
	}
	return nil, fmt.Errorf("%w: process %s", domain.ErrNotFound, id)
}
