package worker

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shaiso/produccion/internal/domain"
	"github.com/shaiso/produccion/internal/mq"
	"github.com/shaiso/produccion/internal/produccion"
	"github.com/shaiso/produccion/internal/repo/memstore"
)

type fakePlanner struct {
	mu      sync.Mutex
	errs    []error // ошибки по очереди вызовов, дальше - успех
	calls   []uuid.UUID
	pending []domain.Lot
}

func (f *fakePlanner) GeneratePlan(_ context.Context, lotID, _ uuid.UUID) ([]domain.HistoryEntry, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, lotID)
	if len(f.errs) > 0 {
		err := f.errs[0]
		f.errs = f.errs[1:]
		if err != nil {
			return nil, err
		}
	}
	return []domain.HistoryEntry{{LotID: lotID}}, nil
}

func (f *fakePlanner) PendingPlans(_ context.Context, limit int) ([]domain.Lot, error) {
	if len(f.pending) > limit {
		return f.pending[:limit], nil
	}
	return f.pending, nil
}

func (f *fakePlanner) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

func newTestWorker(p Planner) *Worker {
	return New(Config{
		Planner: p,
		Retry:   RetryPolicy{MaxAttempts: 3, InitialDelay: time.Millisecond, MaxDelay: 2 * time.Millisecond},
		Logger:  slog.New(slog.NewTextHandler(io.Discard, nil)),
	})
}

// planDelivery собирает входящее сообщение так, как его отдаст consumer.
func planDelivery(t *testing.T, lotID uuid.UUID) *mq.Delivery {
	t.Helper()
	body, err := json.Marshal(mq.NewMessage(mq.MessageTypePlanRequested, mq.PlanRequestedPayload{LotID: lotID}))
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var d mq.Delivery
	if err := json.Unmarshal(body, &d); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	return &d
}

// --- Handler Tests ---

func TestHandlePlanRequested(t *testing.T) {
	storage := errors.New("connection reset")

	tests := []struct {
		name          string
		errs          []error
		wantCalls     int
		wantErr       bool
		wantPermanent bool
	}{
		{name: "success", wantCalls: 1},
		{name: "lot gone", errs: []error{domain.ErrNotFound}, wantCalls: 1},
		{name: "lot finished", errs: []error{domain.ErrInvalidState}, wantCalls: 1},
		{name: "validation", errs: []error{domain.ErrValidation}, wantCalls: 1, wantErr: true, wantPermanent: true},
		{name: "storage then success", errs: []error{storage, storage}, wantCalls: 3},
		{name: "storage exhausted", errs: []error{storage, storage, storage}, wantCalls: 3, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := &fakePlanner{errs: tt.errs}
			w := newTestWorker(p)

			err := w.HandlePlanRequested(context.Background(), planDelivery(t, uuid.New()))
			if (err != nil) != tt.wantErr {
				t.Fatalf("expected error=%v, got %v", tt.wantErr, err)
			}
			if got := errors.Is(err, mq.ErrPermanent); got != tt.wantPermanent {
				t.Errorf("expected permanent=%v, got %v", tt.wantPermanent, err)
			}
			if p.callCount() != tt.wantCalls {
				t.Errorf("expected %d calls, got %d", tt.wantCalls, p.callCount())
			}
		})
	}
}

func TestHandlePlanRequested_BadPayload(t *testing.T) {
	w := newTestWorker(&fakePlanner{})

	err := w.HandlePlanRequested(context.Background(), &mq.Delivery{Payload: json.RawMessage(`"nope"`)})
	if !errors.Is(err, mq.ErrPermanent) {
		t.Errorf("expected ErrPermanent, got %v", err)
	}

	err = w.HandlePlanRequested(context.Background(), &mq.Delivery{Payload: json.RawMessage(`{}`)})
	if !errors.Is(err, mq.ErrPermanent) {
		t.Errorf("expected ErrPermanent for nil lot id, got %v", err)
	}
}

func TestHandlePlanRequested_ContextCancel(t *testing.T) {
	p := &fakePlanner{errs: []error{errors.New("db down"), errors.New("db down")}}
	w := New(Config{
		Planner: p,
		Retry:   RetryPolicy{MaxAttempts: 5, InitialDelay: time.Hour},
		Logger:  slog.New(slog.NewTextHandler(io.Discard, nil)),
	})

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	err := w.HandlePlanRequested(ctx, planDelivery(t, uuid.New()))
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("expected deadline exceeded, got %v", err)
	}
}

// --- Poll Tests ---

func TestPoll(t *testing.T) {
	p := &fakePlanner{
		pending: []domain.Lot{{ID: uuid.New()}, {ID: uuid.New()}, {ID: uuid.New()}},
		errs:    []error{domain.ErrValidation},
	}
	w := newTestWorker(p)
	w.batchSize = 2

	if got := w.Poll(context.Background()); got != 1 {
		t.Errorf("expected 1 processed lot, got %d", got)
	}
	if p.callCount() != 2 {
		t.Errorf("expected 2 calls, got %d", p.callCount())
	}
}

type noopDispatcher struct{}

func (noopDispatcher) DispatchPlan(context.Context, uuid.UUID, uuid.UUID) {}

func TestPoll_RecoversLostPlans(t *testing.T) {
	ctx := context.Background()
	svc := produccion.NewService(produccion.Config{
		Store:      memstore.New(),
		Dispatcher: noopDispatcher{},
		Logger:     slog.New(slog.NewTextHandler(io.Discard, nil)),
	})

	product, err := svc.CreateProduct(ctx, produccion.ProductInput{
		Name: "Funda",
		Code: "FUN-01",
		Template: []domain.TemplateStep{
			{Name: "Corte", Order: 1},
			{Name: "Costura", Order: 2},
		},
	})
	if err != nil {
		t.Fatalf("create product: %v", err)
	}

	order, err := svc.CreateOrder(ctx, produccion.CreateOrderInput{
		Number:     12,
		ClientName: "Hotel Sol",
		Items:      []produccion.OrderItemInput{{ProductID: product.ID, Quantity: 20}},
	})
	if err != nil {
		t.Fatalf("create order: %v", err)
	}

	w := newTestWorker(svc)
	if got := w.Poll(ctx); got != 1 {
		t.Fatalf("expected 1 processed lot, got %d", got)
	}

	lot, err := svc.GetLot(ctx, order.Lots[0].ID)
	if err != nil {
		t.Fatalf("get lot: %v", err)
	}
	if len(lot.History) != 2 {
		t.Errorf("expected 2 history entries, got %d", len(lot.History))
	}

	if got := w.Poll(ctx); got != 0 {
		t.Errorf("expected nothing pending on second poll, got %d", got)
	}
}

func TestPoll_SkipsProductsWithoutTemplate(t *testing.T) {
	ctx := context.Background()
	svc := produccion.NewService(produccion.Config{
		Store:      memstore.New(),
		Dispatcher: noopDispatcher{},
		Logger:     slog.New(slog.NewTextHandler(io.Discard, nil)),
	})

	bare, err := svc.CreateProduct(ctx, produccion.ProductInput{Name: "Retazo", Code: "RET-01"})
	if err != nil {
		t.Fatalf("create product: %v", err)
	}
	planned, err := svc.CreateProduct(ctx, produccion.ProductInput{
		Name:     "Sábana",
		Code:     "SAB-01",
		Template: []domain.TemplateStep{{Name: "Corte", Order: 1}},
	})
	if err != nil {
		t.Fatalf("create product: %v", err)
	}

	var target domain.Order
	for i, productID := range []uuid.UUID{bare.ID, bare.ID, planned.ID} {
		order, err := svc.CreateOrder(ctx, produccion.CreateOrderInput{
			Number:     i + 1,
			ClientName: "Hostal Luna",
			Items:      []produccion.OrderItemInput{{ProductID: productID, Quantity: 5}},
		})
		if err != nil {
			t.Fatalf("create order %d: %v", i+1, err)
		}
		target = *order
	}

	w := newTestWorker(svc)
	w.batchSize = 2

	if got := w.Poll(ctx); got != 1 {
		t.Fatalf("expected 1 processed lot, got %d", got)
	}

	lot, err := svc.GetLot(ctx, target.Lots[0].ID)
	if err != nil {
		t.Fatalf("get lot: %v", err)
	}
	if len(lot.History) != 1 {
		t.Errorf("expected 1 history entry, got %d", len(lot.History))
	}

	pending, err := svc.PendingPlans(ctx, 10)
	if err != nil {
		t.Fatalf("pending plans: %v", err)
	}
	if len(pending) != 0 {
		t.Errorf("expected no pending lots, got %d", len(pending))
	}
	if got := w.Poll(ctx); got != 0 {
		t.Errorf("expected nothing processed on second poll, got %d", got)
	}
}

func TestPoll_EmptyPlanNotCounted(t *testing.T) {
	p := &emptyPlanner{pending: []domain.Lot{{ID: uuid.New()}}}
	w := newTestWorker(p)

	if got := w.Poll(context.Background()); got != 0 {
		t.Errorf("expected 0 processed lots, got %d", got)
	}
}

type emptyPlanner struct {
	pending []domain.Lot
}

func (emptyPlanner) GeneratePlan(context.Context, uuid.UUID, uuid.UUID) ([]domain.HistoryEntry, error) {
	return nil, nil
}

func (e emptyPlanner) PendingPlans(context.Context, int) ([]domain.Lot, error) {
	return e.pending, nil
}

// --- Retry Tests ---

func TestRetryPolicy_Backoff(t *testing.T) {
	policy := RetryPolicy{InitialDelay: time.Second, MaxDelay: 10 * time.Second}

	tests := []struct {
		attempt  int
		expected time.Duration
	}{
		{0, 1 * time.Second},
		{1, 1 * time.Second},
		{2, 2 * time.Second},
		{3, 4 * time.Second},
		{4, 8 * time.Second},
		{5, 10 * time.Second}, // capped at max
		{9, 10 * time.Second},
	}

	for _, tt := range tests {
		got := policy.Backoff(tt.attempt)
		if got != tt.expected {
			t.Errorf("attempt %d: expected %v, got %v", tt.attempt, tt.expected, got)
		}
	}
}

func TestNew_DefaultConfig(t *testing.T) {
	w := New(Config{Planner: &fakePlanner{}})

	if w.pollInterval != defaultPollInterval {
		t.Errorf("expected poll interval %v, got %v", defaultPollInterval, w.pollInterval)
	}
	if w.batchSize != defaultBatchSize {
		t.Errorf("expected batch size %d, got %d", defaultBatchSize, w.batchSize)
	}
	if w.retry.MaxAttempts != 3 {
		t.Errorf("expected 3 attempts, got %d", w.retry.MaxAttempts)
	}
}

func TestWorker_StartStop(t *testing.T) {
	p := &fakePlanner{pending: []domain.Lot{{ID: uuid.New()}}}
	w := newTestWorker(p)

	w.Start(context.Background())
	deadline := time.Now().Add(time.Second)
	for p.callCount() == 0 && time.Now().Before(deadline) {
		time.Sleep(time.Millisecond)
	}
	w.Stop()

	if p.callCount() == 0 {
		t.Error("expected initial poll to run")
	}
}
