package produccion

import (
	"context"
	"strings"
	"time"

	"github.com/shaiso/produccion/internal/domain"
	"github.com/shaiso/produccion/internal/engine"
)

// DashboardQuery - фильтры сводной панели заказов.
type DashboardQuery struct {
	// ClientName - подстрока имени клиента без учёта регистра.
	ClientName string

	From *time.Time
	To   *time.Time

	// Status - пустой означает без фильтра.
	Status domain.OrderStatus
}

func (in *DashboardQuery) validate() error {
	if in.Status != "" && !in.Status.Valid() {
		return validationf("unknown order status %q", in.Status)
	}
	if in.From != nil && in.To != nil && in.To.Before(*in.From) {
		return validationf("date range end is before its start")
	}
	return nil
}

// OrderDashboard возвращает незавершённые заказы (с хотя бы одной
// не-FINISHED партией) с прогрессом, оставшимся временем и статусом,
// новые первыми.
func (s *Service) OrderDashboard(ctx context.Context, in DashboardQuery) ([]engine.OrderSummary, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}

	var (
		orders  []domain.Order
		catalog []domain.Process
	)
	err := s.store.WithinTx(ctx, func(ctx context.Context, q domain.Queries) error {
		var err error
		orders, err = s.loadOrders(ctx, q, domain.OrderFilter{
			ClientName:  strings.TrimSpace(in.ClientName),
			CreatedFrom: in.From,
			CreatedTo:   in.To,
			OpenOnly:    true,
		})
		if err != nil {
			return err
		}
		catalog, err = q.ListProcesses(ctx)
		return err
	})
	if err != nil {
		return nil, storageErr(err)
	}

	return engine.BuildOrderDashboard(orders, catalog, in.Status), nil
}

// SearchOrders ищет заказы по подстроке имени клиента и возвращает их
// вместе с партиями.
func (s *Service) SearchOrders(ctx context.Context, clientName string) ([]domain.Order, error) {
	clientName = strings.TrimSpace(clientName)
	if clientName == "" {
		return nil, validationf("client name is required")
	}

	var orders []domain.Order
	err := s.store.WithinTx(ctx, func(ctx context.Context, q domain.Queries) error {
		var err error
		orders, err = s.loadOrders(ctx, q, domain.OrderFilter{ClientName: clientName})
		return err
	})
	if err != nil {
		return nil, storageErr(err)
	}
	return orders, nil
}

// WorkshopDashboard возвращает загрузку цехов по партиям ACTIVE и SPLIT.
func (s *Service) WorkshopDashboard(ctx context.Context) ([]engine.WorkshopLoad, error) {
	var lots []domain.Lot
	err := s.store.WithinTx(ctx, func(ctx context.Context, q domain.Queries) error {
		var err error
		lots, err = q.ListLotsAtWorkshops(ctx, []domain.LotStatus{
			domain.LotStatusActive,
			domain.LotStatusSplit,
		})
		return err
	})
	if err != nil {
		return nil, storageErr(err)
	}
	return engine.SummarizeWorkshops(lots), nil
}

// loadOrders выбирает заказы и подгружает их партии с историей.
func (s *Service) loadOrders(ctx context.Context, q domain.Queries, f domain.OrderFilter) ([]domain.Order, error) {
	orders, err := q.ListOrders(ctx, f)
	if err != nil {
		return nil, err
	}
	for i := range orders {
		lots, err := q.ListLotsByOrder(ctx, orders[i].ID)
		if err != nil {
			return nil, err
		}
		orders[i].Lots = lots
	}
	return orders, nil
}
