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

// SubLotInput - дочерняя партия при подразделении.
type SubLotInput struct {
	Code     string
	Quantity int
}

// SplitResult - результат подразделения.
type SplitResult struct {
	Parent   domain.Lot   `json:"parent"`
	Children []domain.Lot `json:"children"`
}

func validateSubLots(subs []SubLotInput) error {
	if len(subs) == 0 {
		return validationf("at least one sub-lot is required")
	}
	seen := make(map[string]struct{}, len(subs))
	for i, sub := range subs {
		code := strings.TrimSpace(sub.Code)
		if code == "" {
			return validationf("sub-lot %d: code is required", i+1)
		}
		if sub.Quantity <= 0 {
			return validationf("sub-lot %s: quantity must be positive, got %d", code, sub.Quantity)
		}
		if _, dup := seen[code]; dup {
			return validationf("sub-lot code %s is repeated", code)
		}
		seen[code] = struct{}{}
	}
	return nil
}

// SplitLot подразделяет партию на дочерние.
//
// Сумма количеств дочерних партий должна точно совпадать с количеством
// родителя. Родитель получает статус SPLIT, каждая дочерняя партия
// наследует указатели родителя и копию его истории (см. engine.CloneHistory).
// Если у родителя ещё нет истории, но есть продукт, сначала генерируется план.
func (s *Service) SplitLot(ctx context.Context, lotID uuid.UUID, subs []SubLotInput) (result *SplitResult, err error) {
	start := time.Now()
	ctx = telemetry.WithLogger(ctx, telemetry.WithLotID(s.logger, lotID.String()))
	defer func() { s.observe(ctx, opSplit, start, err) }()

	if err := validateSubLots(subs); err != nil {
		return nil, err
	}

	err = s.store.WithinTx(ctx, func(ctx context.Context, q domain.Queries) error {
		parent, err := q.GetLotForUpdate(ctx, lotID)
		if err != nil {
			return fmt.Errorf("lot %s: %w", lotID, err)
		}

		switch parent.Status {
		case domain.LotStatusActive:
		case domain.LotStatusFinished:
			return fmt.Errorf("%w: cannot split a finished lot %s", domain.ErrInvalidState, parent.Code)
		case domain.LotStatusSplit:
			return fmt.Errorf("%w: lot %s is already split", domain.ErrInvalidState, parent.Code)
		default:
			return fmt.Errorf("%w: unknown lot status %q", domain.ErrInvalidState, parent.Status)
		}

		total := 0
		for _, sub := range subs {
			total += sub.Quantity
		}
		if total != parent.Quantity {
			return validationf("sub-lot quantities sum to %d, lot %s has %d", total, parent.Code, parent.Quantity)
		}

		if len(parent.History) == 0 && parent.ProductID != nil {
			history, err := s.generatePlan(ctx, q, parent, *parent.ProductID)
			if err != nil {
				return err
			}
			parent.History = history
		}

		parent.Status = domain.LotStatusSplit
		if err := q.UpdateLot(ctx, parent); err != nil {
			return err
		}

		now := s.now()
		children := make([]domain.Lot, 0, len(subs))
		for _, sub := range subs {
			child := domain.Lot{
				Code:                 strings.TrimSpace(sub.Code),
				OrderID:              parent.OrderID,
				ParentID:             &parent.ID,
				ProductID:            parent.ProductID,
				Quantity:             sub.Quantity,
				Status:               domain.LotStatusActive,
				CurrentProcessID:     parent.CurrentProcessID,
				CurrentWorkshopID:    parent.CurrentWorkshopID,
				CurrentTransporterID: parent.CurrentTransporterID,
			}
			if err := q.CreateLot(ctx, &child); err != nil {
				return err
			}

			child.History = engine.CloneHistory(parent.History, child.ID, now)
			for i := range child.History {
				if err := q.CreateHistoryEntry(ctx, &child.History[i]); err != nil {
					return err
				}
			}

			if _, err := rollUp(ctx, q, &child); err != nil {
				return err
			}
			children = append(children, child)
		}

		result = &SplitResult{Parent: *parent, Children: children}
		return nil
	})
	if err != nil {
		return nil, storageErr(err)
	}

	telemetry.LotsCreated("split", len(result.Children))
	s.publish(ctx, &result.Parent, ReasonSplit)
	for i := range result.Children {
		s.publish(ctx, &result.Children[i], ReasonCreated)
	}
	return result, nil
}
