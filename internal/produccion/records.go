package produccion

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shaiso/produccion/internal/domain"
	"github.com/shopspring/decimal"
)

// RecordInput - ручная запись журнала.
type RecordInput struct {
	Kind        domain.RecordKind
	Description string
	Amount      decimal.NullDecimal

	// Date - nil означает текущее время.
	Date *time.Time

	User       string
	OrderID    *uuid.UUID
	WorkshopID *uuid.UUID
}

func (in *RecordInput) validate() error {
	if _, err := domain.ParseRecordKind(string(in.Kind)); err != nil {
		return err
	}
	if strings.TrimSpace(in.Description) == "" {
		return validationf("description is required")
	}
	if in.Amount.Valid && in.Amount.Decimal.IsNegative() {
		return validationf("amount must not be negative, got %s", in.Amount.Decimal)
	}
	return nil
}

// CreateManualRecord сохраняет ручную запись. Запись попадает в дневную
// сводку своего дня.
func (s *Service) CreateManualRecord(ctx context.Context, in RecordInput) (record *domain.ManualRecord, err error) {
	start := time.Now()
	defer func() { s.observe(ctx, opCreateRecord, start, err) }()

	if err := in.validate(); err != nil {
		return nil, err
	}

	record = &domain.ManualRecord{
		Kind:        in.Kind,
		Description: strings.TrimSpace(in.Description),
		Amount:      in.Amount,
		Date:        s.now(),
		User:        strings.TrimSpace(in.User),
		OrderID:     in.OrderID,
		WorkshopID:  in.WorkshopID,
	}
	if in.Date != nil {
		record.Date = in.Date.UTC()
	}

	err = s.store.WithinTx(ctx, func(ctx context.Context, q domain.Queries) error {
		if in.OrderID != nil {
			if _, err := q.GetOrder(ctx, *in.OrderID); err != nil {
				return fmt.Errorf("order %s: %w", *in.OrderID, err)
			}
		}
		return q.CreateManualRecord(ctx, record)
	})
	if err != nil {
		return nil, storageErr(err)
	}
	return record, nil
}
