package memstore

import (
	"context"
	"fmt"
	"slices"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shaiso/produccion/internal/domain"
)

var _ domain.Queries = (*queries)(nil)

func notFound(kind string, key any) error {
	return fmt.Errorf("%w: %s %v", domain.ErrNotFound, kind, key)
}

func alreadyExists(kind string, key any) error {
	return fmt.Errorf("%w: %s %v already exists", domain.ErrValidation, kind, key)
}

func stamp(id *uuid.UUID, created, updated *time.Time) {
	if *id == uuid.Nil {
		*id = uuid.New()
	}
	now := time.Now().UTC()
	if created != nil && created.IsZero() {
		*created = now
	}
	if updated != nil && updated.IsZero() {
		*updated = now
	}
}

// --- Клиенты ---

func (q *queries) GetClient(_ context.Context, id uuid.UUID) (*domain.Client, error) {
	c, ok := q.state.clients[id]
	if !ok {
		return nil, notFound("client", id)
	}
	return &c, nil
}

func (q *queries) FindClientByName(_ context.Context, name string) (*domain.Client, error) {
	for _, c := range q.state.clients {
		if strings.EqualFold(c.Name, name) {
			return &c, nil
		}
	}
	return nil, notFound("client", name)
}

func (q *queries) CreateClient(_ context.Context, c *domain.Client) error {
	stamp(&c.ID, &c.CreatedAt, nil)
	q.state.clients[c.ID] = *c
	return nil
}

// --- Заказы ---

func (q *queries) CreateOrder(_ context.Context, o *domain.Order) error {
	for _, existing := range q.state.orders {
		if existing.Number == o.Number {
			return alreadyExists("order", o.Number)
		}
	}
	if _, ok := q.state.clients[o.ClientID]; !ok {
		return notFound("client", o.ClientID)
	}
	for i := range o.Items {
		if _, ok := q.state.products[o.Items[i].ProductID]; !ok {
			return notFound("product", o.Items[i].ProductID)
		}
	}

	stamp(&o.ID, &o.CreatedAt, &o.UpdatedAt)
	for i := range o.Items {
		stamp(&o.Items[i].ID, nil, nil)
		o.Items[i].OrderID = o.ID
	}

	stored := *o
	stored.Items = append([]domain.OrderItem(nil), o.Items...)
	stored.Lots = nil
	stored.ClientName = ""
	q.state.orders[o.ID] = stored
	return nil
}

func (q *queries) GetOrder(_ context.Context, id uuid.UUID) (*domain.Order, error) {
	o, ok := q.state.orders[id]
	if !ok {
		return nil, notFound("order", id)
	}
	return q.loadOrder(o), nil
}

func (q *queries) GetOrderByNumber(_ context.Context, number int) (*domain.Order, error) {
	for _, o := range q.state.orders {
		if o.Number == number {
			return q.loadOrder(o), nil
		}
	}
	return nil, notFound("order", number)
}

func (q *queries) ListOrders(_ context.Context, f domain.OrderFilter) ([]domain.Order, error) {
	open := make(map[uuid.UUID]bool)
	for _, l := range q.state.lots {
		if l.Status != domain.LotStatusFinished {
			open[l.OrderID] = true
		}
	}

	needle := strings.ToLower(f.ClientName)
	var orders []domain.Order
	for _, o := range q.state.orders {
		if f.OpenOnly && !open[o.ID] {
			continue
		}
		if f.CreatedFrom != nil && o.CreatedAt.Before(*f.CreatedFrom) {
			continue
		}
		if f.CreatedTo != nil && o.CreatedAt.After(*f.CreatedTo) {
			continue
		}
		loaded := q.loadOrder(o)
		if needle != "" && !strings.Contains(strings.ToLower(loaded.ClientName), needle) {
			continue
		}
		orders = append(orders, *loaded)
	}

	sort.Slice(orders, func(i, j int) bool {
		if !orders[i].CreatedAt.Equal(orders[j].CreatedAt) {
			return orders[i].CreatedAt.After(orders[j].CreatedAt)
		}
		return orders[i].Number > orders[j].Number
	})
	return orders, nil
}

func (q *queries) loadOrder(o domain.Order) *domain.Order {
	o.Items = append([]domain.OrderItem(nil), o.Items...)
	if c, ok := q.state.clients[o.ClientID]; ok {
		o.ClientName = c.Name
	}
	return &o
}

// --- Партии ---

func (q *queries) CreateLot(_ context.Context, l *domain.Lot) error {
	if _, ok := q.state.orders[l.OrderID]; !ok {
		return notFound("order", l.OrderID)
	}
	if l.ParentID != nil {
		if _, ok := q.state.lots[*l.ParentID]; !ok {
			return notFound("lot", *l.ParentID)
		}
	}
	if l.ProductID != nil {
		if _, ok := q.state.products[*l.ProductID]; !ok {
			return notFound("product", *l.ProductID)
		}
	}

	stamp(&l.ID, &l.CreatedAt, &l.UpdatedAt)
	stored := *l
	stored.History = nil
	q.state.lots[l.ID] = stored
	return nil
}

func (q *queries) GetLot(_ context.Context, id uuid.UUID) (*domain.Lot, error) {
	l, ok := q.state.lots[id]
	if !ok {
		return nil, notFound("lot", id)
	}
	return q.loadLot(l), nil
}

// GetLotForUpdate совпадает с GetLot: транзакция и так держит мьютекс.
func (q *queries) GetLotForUpdate(ctx context.Context, id uuid.UUID) (*domain.Lot, error) {
	return q.GetLot(ctx, id)
}

func (q *queries) UpdateLot(_ context.Context, l *domain.Lot) error {
	existing, ok := q.state.lots[l.ID]
	if !ok {
		return notFound("lot", l.ID)
	}
	l.CreatedAt = existing.CreatedAt
	l.UpdatedAt = time.Now().UTC()

	stored := *l
	stored.History = nil
	q.state.lots[l.ID] = stored
	return nil
}

func (q *queries) ListLotsByOrder(_ context.Context, orderID uuid.UUID) ([]domain.Lot, error) {
	return q.listLots(func(l *domain.Lot) bool {
		return l.OrderID == orderID
	}), nil
}

func (q *queries) ListLotsByWorkshop(_ context.Context, workshopID uuid.UUID, statuses []domain.LotStatus) ([]domain.Lot, error) {
	return q.listLots(func(l *domain.Lot) bool {
		if l.CurrentWorkshopID == nil || *l.CurrentWorkshopID != workshopID {
			return false
		}
		return len(statuses) == 0 || slices.Contains(statuses, l.Status)
	}), nil
}

func (q *queries) ListLotsAtWorkshops(_ context.Context, statuses []domain.LotStatus) ([]domain.Lot, error) {
	lots := q.listLots(func(l *domain.Lot) bool {
		if l.CurrentWorkshopID == nil {
			return false
		}
		return len(statuses) == 0 || slices.Contains(statuses, l.Status)
	})
	for i := range lots {
		lots[i].History = nil
	}
	return lots, nil
}

func (q *queries) ListLotsPendingPlan(_ context.Context, limit int) ([]domain.Lot, error) {
	planned := make(map[uuid.UUID]bool)
	for _, e := range q.state.history {
		planned[e.LotID] = true
	}
	templated := make(map[uuid.UUID]bool)
	for _, s := range q.state.steps {
		templated[s.ProductID] = true
	}
	lots := q.listLots(func(l *domain.Lot) bool {
		return l.Status == domain.LotStatusActive && l.ProductID != nil &&
			templated[*l.ProductID] && !planned[l.ID]
	})
	if limit > 0 && len(lots) > limit {
		lots = lots[:limit]
	}
	return lots, nil
}

func (q *queries) listLots(match func(*domain.Lot) bool) []domain.Lot {
	var lots []domain.Lot
	for _, l := range q.state.lots {
		if match(&l) {
			lots = append(lots, *q.loadLot(l))
		}
	}
	sort.Slice(lots, func(i, j int) bool {
		if !lots[i].CreatedAt.Equal(lots[j].CreatedAt) {
			return lots[i].CreatedAt.Before(lots[j].CreatedAt)
		}
		return lots[i].Code < lots[j].Code
	})
	return lots
}

func (q *queries) loadLot(l domain.Lot) *domain.Lot {
	l.History = q.historyOf(func(e *domain.HistoryEntry) bool { return e.LotID == l.ID })
	return &l
}

// --- Ручные записи ---

func (q *queries) CreateManualRecord(_ context.Context, r *domain.ManualRecord) error {
	if r.OrderID != nil {
		if _, ok := q.state.orders[*r.OrderID]; !ok {
			return notFound("order", *r.OrderID)
		}
	}
	stamp(&r.ID, &r.CreatedAt, nil)
	q.state.records[r.ID] = *r
	return nil
}

func (q *queries) ListManualRecordsBetween(_ context.Context, from, to time.Time) ([]domain.ManualRecord, error) {
	records := []domain.ManualRecord{}
	for _, r := range q.state.records {
		if !r.Date.Before(from) && !r.Date.After(to) {
			records = append(records, r)
		}
	}
	sort.Slice(records, func(i, j int) bool {
		if !records[i].Date.Equal(records[j].Date) {
			return records[i].Date.Before(records[j].Date)
		}
		return records[i].CreatedAt.Before(records[j].CreatedAt)
	})
	return records, nil
}

// --- История процессов ---

func (q *queries) ListHistory(_ context.Context, lotID uuid.UUID) ([]domain.HistoryEntry, error) {
	return q.historyOf(func(e *domain.HistoryEntry) bool { return e.LotID == lotID }), nil
}

func (q *queries) ListHistoryByOrder(_ context.Context, orderID uuid.UUID) ([]domain.HistoryEntry, error) {
	return q.historyOf(func(e *domain.HistoryEntry) bool {
		l, ok := q.state.lots[e.LotID]
		return ok && l.OrderID == orderID
	}), nil
}

func (q *queries) ListEntriesExitedBetween(_ context.Context, from, to time.Time) ([]domain.HistoryEntry, error) {
	return q.historyOf(func(e *domain.HistoryEntry) bool {
		if e.ExitDate == nil || !e.Completed() {
			return false
		}
		return !e.ExitDate.Before(from) && !e.ExitDate.After(to)
	}), nil
}

// historyOf возвращает записи в порядке вставки, с подгруженным процессом.
func (q *queries) historyOf(match func(*domain.HistoryEntry) bool) []domain.HistoryEntry {
	var entries []domain.HistoryEntry
	for _, e := range q.state.history {
		if !match(&e) {
			continue
		}
		if e.ProcessID != nil {
			if p, ok := q.state.processes[*e.ProcessID]; ok {
				e.Process = &p
			}
		}
		entries = append(entries, e)
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Seq < entries[j].Seq })
	return entries
}

func (q *queries) CreateHistoryEntry(_ context.Context, e *domain.HistoryEntry) error {
	if _, ok := q.state.lots[e.LotID]; !ok {
		return notFound("lot", e.LotID)
	}
	if e.ProcessID != nil {
		if _, ok := q.state.processes[*e.ProcessID]; !ok {
			return notFound("process", *e.ProcessID)
		}
	}

	stamp(&e.ID, &e.CreatedAt, &e.UpdatedAt)
	q.state.seq++
	e.Seq = q.state.seq

	stored := *e
	stored.Process = nil
	q.state.history[e.ID] = stored
	return nil
}

func (q *queries) UpdateHistoryEntry(_ context.Context, e *domain.HistoryEntry) error {
	existing, ok := q.state.history[e.ID]
	if !ok {
		return notFound("history entry", e.ID)
	}
	e.Seq = existing.Seq
	e.LotID = existing.LotID
	e.CreatedAt = existing.CreatedAt
	e.UpdatedAt = time.Now().UTC()

	stored := *e
	stored.Process = nil
	q.state.history[e.ID] = stored
	return nil
}

// --- Каталог процессов ---

func (q *queries) UpsertProcess(_ context.Context, name string, order int, durationDays *float64) (*domain.Process, error) {
	for id, p := range q.state.processes {
		if p.Name != name {
			continue
		}
		p.Order = order
		if durationDays != nil {
			p.StandardDurationDays = *durationDays
		}
		q.state.processes[id] = p
		return &p, nil
	}

	p := domain.Process{
		Name:                 name,
		Order:                order,
		StandardDurationDays: 1,
	}
	if durationDays != nil {
		p.StandardDurationDays = *durationDays
	}
	stamp(&p.ID, &p.CreatedAt, nil)
	q.state.processes[p.ID] = p
	return &p, nil
}

func (q *queries) ListProcesses(_ context.Context) ([]domain.Process, error) {
	processes := make([]domain.Process, 0, len(q.state.processes))
	for _, p := range q.state.processes {
		processes = append(processes, p)
	}
	sort.Slice(processes, func(i, j int) bool {
		if processes[i].Order != processes[j].Order {
			return processes[i].Order < processes[j].Order
		}
		return processes[i].Name < processes[j].Name
	})
	return processes, nil
}

// --- Продукты и шаблоны ---

func (q *queries) CreateProduct(_ context.Context, p *domain.Product) error {
	for _, existing := range q.state.products {
		if existing.Code == p.Code {
			return alreadyExists("product", p.Code)
		}
	}
	stamp(&p.ID, &p.CreatedAt, &p.UpdatedAt)
	stored := *p
	stored.Template = nil
	q.state.products[p.ID] = stored
	return nil
}

func (q *queries) UpdateProduct(_ context.Context, p *domain.Product) error {
	existing, ok := q.state.products[p.ID]
	if !ok {
		return notFound("product", p.ID)
	}
	for id, other := range q.state.products {
		if id != p.ID && other.Code == p.Code {
			return alreadyExists("product", p.Code)
		}
	}
	p.CreatedAt = existing.CreatedAt
	p.UpdatedAt = time.Now().UTC()

	stored := *p
	stored.Template = nil
	q.state.products[p.ID] = stored
	return nil
}

func (q *queries) GetProduct(ctx context.Context, id uuid.UUID) (*domain.Product, error) {
	p, ok := q.state.products[id]
	if !ok {
		return nil, notFound("product", id)
	}
	p.Template, _ = q.ListTemplateSteps(ctx, id)
	return &p, nil
}

func (q *queries) ListTemplateSteps(_ context.Context, productID uuid.UUID) ([]domain.TemplateStep, error) {
	var steps []domain.TemplateStep
	for _, s := range q.state.steps {
		if s.ProductID == productID {
			steps = append(steps, s)
		}
	}
	sort.Slice(steps, func(i, j int) bool {
		if steps[i].Order != steps[j].Order {
			return steps[i].Order < steps[j].Order
		}
		return steps[i].Name < steps[j].Name
	})
	return steps, nil
}

func (q *queries) CreateTemplateStep(_ context.Context, s *domain.TemplateStep) error {
	if _, ok := q.state.products[s.ProductID]; !ok {
		return notFound("product", s.ProductID)
	}
	stamp(&s.ID, nil, nil)
	q.state.steps[s.ID] = *s
	return nil
}

func (q *queries) UpdateTemplateStep(_ context.Context, s *domain.TemplateStep) error {
	existing, ok := q.state.steps[s.ID]
	if !ok || existing.ProductID != s.ProductID {
		return notFound("template step", s.ID)
	}
	q.state.steps[s.ID] = *s
	return nil
}

func (q *queries) DeleteTemplateSteps(_ context.Context, ids []uuid.UUID) error {
	for _, id := range ids {
		delete(q.state.steps, id)
	}
	return nil
}
