package produccion

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shaiso/produccion/internal/domain"
	"github.com/shaiso/produccion/internal/telemetry"
)

// CreateOrderInput - данные нового заказа.
type CreateOrderInput struct {
	Number int

	// Клиент задаётся ID или именем. Клиент с неизвестным именем создаётся.
	ClientID   *uuid.UUID
	ClientName string

	Contact string
	Items   []OrderItemInput

	// CreateRootLots - создавать ли по партии на позицию. Nil - да.
	CreateRootLots *bool
}

// OrderItemInput - позиция заказа.
type OrderItemInput struct {
	ProductID uuid.UUID
	Quantity  int
}

func (in *CreateOrderInput) validate() error {
	if in.ClientID == nil && strings.TrimSpace(in.ClientName) == "" {
		return validationf("client id or client name is required")
	}
	if len(in.Items) == 0 {
		return validationf("order must have at least one item")
	}
	if in.Number <= 0 {
		return validationf("order number must be positive, got %d", in.Number)
	}
	for i, item := range in.Items {
		if item.ProductID == uuid.Nil {
			return validationf("item %d: product id is required", i+1)
		}
		if item.Quantity <= 0 {
			return validationf("item %d: quantity must be positive, got %d", i+1, item.Quantity)
		}
	}
	return nil
}

func (in *CreateOrderInput) createRootLots() bool {
	return in.CreateRootLots == nil || *in.CreateRootLots
}

// CreateOrder создаёт заказ, позиции и (по умолчанию) корневые партии
// с кодами "{номер}.{i}". После фиксации для каждой корневой партии
// запускается генерация плана.
func (s *Service) CreateOrder(ctx context.Context, in CreateOrderInput) (order *domain.Order, err error) {
	start := time.Now()
	ctx = telemetry.WithLogger(ctx, telemetry.WithOrderNumber(s.logger, in.Number))
	defer func() { s.observe(ctx, opCreateOrder, start, err) }()

	if err := in.validate(); err != nil {
		return nil, err
	}

	err = s.store.WithinTx(ctx, func(ctx context.Context, q domain.Queries) error {
		if _, err := q.GetOrderByNumber(ctx, in.Number); err == nil {
			return validationf("order number %d already exists", in.Number)
		} else if !errors.Is(err, domain.ErrNotFound) {
			return err
		}

		client, err := s.resolveClient(ctx, q, in.ClientID, in.ClientName)
		if err != nil {
			return err
		}

		for _, item := range in.Items {
			if _, err := q.GetProduct(ctx, item.ProductID); err != nil {
				return fmt.Errorf("product %s: %w", item.ProductID, err)
			}
		}

		o := &domain.Order{
			Number:   in.Number,
			ClientID: client.ID,
			Contact:  strings.TrimSpace(in.Contact),
			Items:    make([]domain.OrderItem, 0, len(in.Items)),
		}
		for _, item := range in.Items {
			o.Items = append(o.Items, domain.OrderItem{ProductID: item.ProductID, Quantity: item.Quantity})
		}
		if err := q.CreateOrder(ctx, o); err != nil {
			return err
		}
		o.ClientName = client.Name

		if in.createRootLots() {
			for i, item := range o.Items {
				productID := item.ProductID
				lot := domain.Lot{
					Code:      fmt.Sprintf("%d.%d", o.Number, i+1),
					OrderID:   o.ID,
					ProductID: &productID,
					Quantity:  item.Quantity,
					Status:    domain.LotStatusActive,
				}
				if err := q.CreateLot(ctx, &lot); err != nil {
					return err
				}
				o.Lots = append(o.Lots, lot)
			}
		}

		order = o
		return nil
	})
	if err != nil {
		return nil, storageErr(err)
	}

	telemetry.LotsCreated("order", len(order.Lots))
	for i := range order.Lots {
		lot := &order.Lots[i]
		s.publish(ctx, lot, ReasonCreated)
		s.dispatcher.DispatchPlan(ctx, lot.ID, *lot.ProductID)
	}
	return order, nil
}

// resolveClient находит клиента по ID или имени (без учёта регистра),
// создавая нового при отсутствии имени в базе.
func (s *Service) resolveClient(ctx context.Context, q domain.Queries, id *uuid.UUID, name string) (*domain.Client, error) {
	if id != nil {
		client, err := q.GetClient(ctx, *id)
		if err != nil {
			return nil, fmt.Errorf("client %s: %w", *id, err)
		}
		return client, nil
	}

	name = strings.TrimSpace(name)
	client, err := q.FindClientByName(ctx, name)
	if err == nil {
		return client, nil
	}
	if !errors.Is(err, domain.ErrNotFound) {
		return nil, err
	}

	client = &domain.Client{Name: name}
	if err := q.CreateClient(ctx, client); err != nil {
		return nil, err
	}
	return client, nil
}

// CreateLotInput - данные отдельной партии.
type CreateLotInput struct {
	OrderID   uuid.UUID
	Code      string
	Quantity  int
	ParentID  *uuid.UUID
	ProductID *uuid.UUID
}

// CreateLot создаёт отдельную партию в статусе ACTIVE. План не генерируется:
// он появится при первой работе с партией (GeneratePlan или SplitLot).
func (s *Service) CreateLot(ctx context.Context, in CreateLotInput) (lot *domain.Lot, err error) {
	start := time.Now()
	defer func() { s.observe(ctx, opCreateLot, start, err) }()

	code := strings.TrimSpace(in.Code)
	switch {
	case in.OrderID == uuid.Nil:
		return nil, validationf("order id is required")
	case code == "":
		return nil, validationf("lot code is required")
	case in.Quantity <= 0:
		return nil, validationf("quantity must be positive, got %d", in.Quantity)
	}

	err = s.store.WithinTx(ctx, func(ctx context.Context, q domain.Queries) error {
		if _, err := q.GetOrder(ctx, in.OrderID); err != nil {
			return fmt.Errorf("order %s: %w", in.OrderID, err)
		}
		if in.ParentID != nil {
			parent, err := q.GetLot(ctx, *in.ParentID)
			if err != nil {
				return fmt.Errorf("parent lot %s: %w", *in.ParentID, err)
			}
			if parent.OrderID != in.OrderID {
				return validationf("parent lot %s belongs to another order", parent.Code)
			}
		}
		if in.ProductID != nil {
			if _, err := q.GetProduct(ctx, *in.ProductID); err != nil {
				return fmt.Errorf("product %s: %w", *in.ProductID, err)
			}
		}

		l := &domain.Lot{
			Code:      code,
			OrderID:   in.OrderID,
			ParentID:  in.ParentID,
			ProductID: in.ProductID,
			Quantity:  in.Quantity,
			Status:    domain.LotStatusActive,
		}
		if err := q.CreateLot(ctx, l); err != nil {
			return err
		}
		lot = l
		return nil
	})
	if err != nil {
		return nil, storageErr(err)
	}

	telemetry.LotsCreated("adhoc", 1)
	s.publish(ctx, lot, ReasonCreated)
	return lot, nil
}

// GetLot возвращает партию с историей.
func (s *Service) GetLot(ctx context.Context, id uuid.UUID) (*domain.Lot, error) {
	var lot *domain.Lot
	err := s.store.WithinTx(ctx, func(ctx context.Context, q domain.Queries) error {
		l, err := q.GetLot(ctx, id)
		if err != nil {
			return fmt.Errorf("lot %s: %w", id, err)
		}
		lot = l
		return nil
	})
	if err != nil {
		return nil, storageErr(err)
	}
	return lot, nil
}

// TrackOrder возвращает заказ по номеру со всем деревом партий и их историей.
func (s *Service) TrackOrder(ctx context.Context, number int) (*domain.Order, error) {
	var order *domain.Order
	err := s.store.WithinTx(ctx, func(ctx context.Context, q domain.Queries) error {
		o, err := loadOrderTree(ctx, q, number)
		if err != nil {
			return err
		}
		order = o
		return nil
	})
	if err != nil {
		return nil, storageErr(err)
	}
	return order, nil
}

func loadOrderTree(ctx context.Context, q domain.Queries, number int) (*domain.Order, error) {
	order, err := q.GetOrderByNumber(ctx, number)
	if err != nil {
		return nil, fmt.Errorf("order %d: %w", number, err)
	}
	lots, err := q.ListLotsByOrder(ctx, order.ID)
	if err != nil {
		return nil, err
	}
	order.Lots = lots
	return order, nil
}

// LotsInWorkshop возвращает партии в цехе, которые ещё в работе (ACTIVE или SPLIT).
func (s *Service) LotsInWorkshop(ctx context.Context, workshopID uuid.UUID) ([]domain.Lot, error) {
	var lots []domain.Lot
	err := s.store.WithinTx(ctx, func(ctx context.Context, q domain.Queries) error {
		var err error
		lots, err = q.ListLotsByWorkshop(ctx, workshopID, []domain.LotStatus{
			domain.LotStatusActive,
			domain.LotStatusSplit,
		})
		return err
	})
	if err != nil {
		return nil, storageErr(err)
	}
	return lots, nil
}
