package produccion

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shaiso/produccion/internal/domain"
	"github.com/shaiso/produccion/internal/engine"
	"github.com/shaiso/produccion/internal/telemetry"
)

// AdvanceInput - продвижение шага партии.
type AdvanceInput struct {
	LotID uuid.UUID

	// ProcessName сравнивается с именем процесса без учёта регистра.
	ProcessName string

	// Target - IN_PROGRESS или COMPLETED.
	Target domain.EntryStatus

	// At - время операции; nil - текущее.
	At *time.Time

	WorkshopID    *uuid.UUID
	TransporterID *uuid.UUID
	Notes         *string
}

func (in *AdvanceInput) validate() error {
	if in.LotID == uuid.Nil {
		return validationf("lot id is required")
	}
	if strings.TrimSpace(in.ProcessName) == "" {
		return validationf("process name is required")
	}
	if _, err := domain.ParseAdvanceTarget(string(in.Target)); err != nil {
		return err
	}
	return nil
}

// AdvanceProcess переводит шаг партии в IN_PROGRESS или COMPLETED.
//
// При завершении шага все незавершённые шаги с меньшим порядком процесса
// завершаются автоматически. После изменения пересчитывается и
// сохраняется состояние партии, которое и возвращается.
func (s *Service) AdvanceProcess(ctx context.Context, in AdvanceInput) (state domain.LotState, err error) {
	start := time.Now()
	ctx = telemetry.WithLogger(ctx, telemetry.WithLotID(s.logger, in.LotID.String()))
	defer func() { s.observe(ctx, opAdvance, start, err) }()

	if err := in.validate(); err != nil {
		return state, err
	}

	at := s.now()
	if in.At != nil {
		at = in.At.UTC()
	}
	upd := domain.EntryUpdate{
		WorkshopID:    in.WorkshopID,
		TransporterID: in.TransporterID,
		Notes:         in.Notes,
	}

	var lot *domain.Lot
	err = s.store.WithinTx(ctx, func(ctx context.Context, q domain.Queries) error {
		l, err := q.GetLotForUpdate(ctx, in.LotID)
		if err != nil {
			return fmt.Errorf("lot %s: %w", in.LotID, err)
		}
		lot = l

		if err := l.EnsureAdvanceable(); err != nil {
			return err
		}

		target := findEntry(l.History, in.ProcessName)
		if target == nil {
			return fmt.Errorf("%w: process %q not found for lot %s", domain.ErrNotFound, in.ProcessName, l.Code)
		}

		switch in.Target {
		case domain.EntryStatusInProgress:
			if err := target.Start(at, upd); err != nil {
				return err
			}
		case domain.EntryStatusCompleted:
			if err := target.Complete(at, upd); err != nil {
				return err
			}
			if err := catchUp(ctx, q, l.History, target, at); err != nil {
				return err
			}
		case domain.EntryStatusLegacy, domain.EntryStatusPending:
			return validationf("target state must be IN_PROGRESS or COMPLETED")
		}

		if err := q.UpdateHistoryEntry(ctx, target); err != nil {
			return err
		}

		if target.IsTransport {
			l.CurrentTransporterID = target.TransporterID
		}

		state, err = rollUp(ctx, q, l)
		return err
	})
	if err != nil {
		return domain.LotState{}, storageErr(err)
	}

	s.publish(ctx, lot, ReasonAdvanced)
	return state, nil
}

// findEntry ищет шаг истории по имени процесса (без учёта регистра),
// первый по порядку вставки.
func findEntry(history []domain.HistoryEntry, name string) *domain.HistoryEntry {
	name = strings.TrimSpace(name)
	var found *domain.HistoryEntry
	for i := range history {
		e := &history[i]
		if e.Process == nil || !strings.EqualFold(e.Process.Name, name) {
			continue
		}
		if found == nil || e.Seq < found.Seq {
			found = e
		}
	}
	return found
}

// catchUp автоматически завершает незавершённые шаги с порядком процесса
// меньше, чем у target. Шаги с большим порядком и шаги без процесса
// не трогаются.
func catchUp(ctx context.Context, q domain.Queries, history []domain.HistoryEntry, target *domain.HistoryEntry, at time.Time) error {
	targetOrder, ok := target.ProcessOrder()
	if !ok {
		return nil
	}

	for i := range history {
		e := &history[i]
		if e.ID == target.ID || e.Completed() {
			continue
		}
		order, ok := e.ProcessOrder()
		if !ok || order >= targetOrder {
			continue
		}

		e.AutoComplete(at)
		if err := q.UpdateHistoryEntry(ctx, e); err != nil {
			return err
		}
	}
	return nil
}

// RefreshLotState пересчитывает и сохраняет производное состояние партии.
func (s *Service) RefreshLotState(ctx context.Context, lotID uuid.UUID) (state domain.LotState, err error) {
	start := time.Now()
	ctx = telemetry.WithLogger(ctx, telemetry.WithLotID(s.logger, lotID.String()))
	defer func() { s.observe(ctx, opRefresh, start, err) }()

	err = s.store.WithinTx(ctx, func(ctx context.Context, q domain.Queries) error {
		lot, err := q.GetLotForUpdate(ctx, lotID)
		if err != nil {
			return fmt.Errorf("lot %s: %w", lotID, err)
		}

		if lot.IsFinished() {
			state, _ = engine.DeriveState(lot.History)
			return nil
		}

		state, err = rollUp(ctx, q, lot)
		return err
	})
	if err != nil {
		return domain.LotState{}, storageErr(err)
	}
	return state, nil
}

// rollUp пересчитывает состояние по текущей (уже изменённой) истории партии
// и сохраняет партию. Партия без истории не меняется.
func rollUp(ctx context.Context, q domain.Queries, lot *domain.Lot) (domain.LotState, error) {
	state, ok := engine.DeriveState(lot.History)
	if !ok {
		return state, nil
	}
	lot.ApplyState(state)
	if err := q.UpdateLot(ctx, lot); err != nil {
		return state, err
	}
	return state, nil
}
