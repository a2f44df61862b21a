package produccion_test

import (
	"context"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shaiso/produccion/internal/domain"
	"github.com/shaiso/produccion/internal/produccion"
	"github.com/shaiso/produccion/internal/repo/memstore"
	"github.com/shaiso/produccion/internal/telemetry"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

var baseTime = time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)

type fixture struct {
	svc      *produccion.Service
	store    *memstore.Store
	events   *recordingEvents
	workshop uuid.UUID
	product  *domain.Product
}

type recordingEvents struct {
	mu      sync.Mutex
	reasons []string
}

func (r *recordingEvents) LotChanged(_ context.Context, _ *domain.Lot, reason string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.reasons = append(r.reasons, reason)
	return nil
}

func (r *recordingEvents) Reasons() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.reasons...)
}

func ptrFloat(v float64) *float64 { return &v }

func ptrTime(t time.Time) *time.Time { return &t }

func price(v int64) decimal.NullDecimal {
	return decimal.NewNullDecimal(decimal.NewFromInt(v))
}

// newFixture создаёт сервис на хранилище в памяти и продукт
// "Sábana" с шаблоном Corte(1) → Costura(2) → Transporte(3) → Planchado(4).
func newFixture(t *testing.T) *fixture {
	t.Helper()

	f := &fixture{
		store:    memstore.New(),
		events:   &recordingEvents{},
		workshop: uuid.New(),
	}
	f.svc = produccion.NewService(produccion.Config{
		Store:  f.store,
		Events: f.events,
		Logger: telemetry.NewLogger(io.Discard, "DEBUG", "text"),
		Now:    func() time.Time { return baseTime },
	})

	product, err := f.svc.CreateProduct(context.Background(), produccion.ProductInput{
		Name: "Sábana",
		Code: "SAB-01",
		Template: []domain.TemplateStep{
			{Name: "Corte", Order: 1, EstimatedDurationDays: ptrFloat(1), DefaultWorkshopID: &f.workshop},
			{Name: "Costura", Order: 2, EstimatedDurationDays: ptrFloat(2), Price: price(100)},
			{Name: "Transporte", Order: 3, IsTransport: true},
			{Name: "Planchado", Order: 4, Price: price(50)},
		},
	})
	require.NoError(t, err)
	f.product = product
	return f
}

// createOrder создаёт заказ с одной позицией и ждёт генерации плана.
func (f *fixture) createOrder(t *testing.T, number, quantity int) *domain.Order {
	t.Helper()

	order, err := f.svc.CreateOrder(context.Background(), produccion.CreateOrderInput{
		Number:     number,
		ClientName: "ACME",
		Items:      []produccion.OrderItemInput{{ProductID: f.product.ID, Quantity: quantity}},
	})
	require.NoError(t, err)
	f.svc.Wait()
	return order
}

func (f *fixture) lot(t *testing.T, id uuid.UUID) *domain.Lot {
	t.Helper()
	lot, err := f.svc.GetLot(context.Background(), id)
	require.NoError(t, err)
	return lot
}

func (f *fixture) advance(lotID uuid.UUID, process string, target domain.EntryStatus) (domain.LotState, error) {
	return f.svc.AdvanceProcess(context.Background(), produccion.AdvanceInput{
		LotID:       lotID,
		ProcessName: process,
		Target:      target,
	})
}

func entryByName(t *testing.T, lot *domain.Lot, name string) domain.HistoryEntry {
	t.Helper()
	for _, e := range lot.History {
		if e.ProcessName() == name {
			return e
		}
	}
	t.Fatalf("entry %q not found in lot %s", name, lot.Code)
	return domain.HistoryEntry{}
}
