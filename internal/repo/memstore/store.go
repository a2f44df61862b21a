// Package memstore - хранилище дерева партий в памяти.
//
// Используется в тестах сервисного слоя и в produccion-api при STORAGE=memory.
// Транзакции сериализуются одним мьютексом: fn работает с копией состояния,
// которая подменяет текущее только при успешном завершении.
package memstore

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"
	"github.com/shaiso/produccion/internal/domain"
)

var _ domain.Store = (*Store)(nil)

// Store - domain.Store в памяти.
type Store struct {
	mu    sync.Mutex
	state *state
}

// New создаёт пустое хранилище.
func New() *Store {
	return &Store{state: newState()}
}

type txKey struct{ store *Store }

// WithinTx выполняет fn атомарно.
func (s *Store) WithinTx(ctx context.Context, fn func(ctx context.Context, q domain.Queries) error) error {
	if q, ok := ctx.Value(txKey{s}).(*queries); ok && !q.closed.Load() {
		return fn(ctx, q)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	q := &queries{state: s.state.clone()}
	defer q.closed.Store(true)

	if err := fn(context.WithValue(ctx, txKey{s}, q), q); err != nil {
		return err
	}
	s.state = q.state
	return nil
}

// Counts возвращает количество партий и записей истории.
func (s *Store) Counts() (lots, entries int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.state.lots), len(s.state.history)
}

type state struct {
	seq int64

	clients   map[uuid.UUID]domain.Client
	orders    map[uuid.UUID]domain.Order
	lots      map[uuid.UUID]domain.Lot
	history   map[uuid.UUID]domain.HistoryEntry
	processes map[uuid.UUID]domain.Process
	products  map[uuid.UUID]domain.Product
	steps     map[uuid.UUID]domain.TemplateStep
	records   map[uuid.UUID]domain.ManualRecord
}

func newState() *state {
	return &state{
		clients:   make(map[uuid.UUID]domain.Client),
		orders:    make(map[uuid.UUID]domain.Order),
		lots:      make(map[uuid.UUID]domain.Lot),
		history:   make(map[uuid.UUID]domain.HistoryEntry),
		processes: make(map[uuid.UUID]domain.Process),
		products:  make(map[uuid.UUID]domain.Product),
		steps:     make(map[uuid.UUID]domain.TemplateStep),
		records:   make(map[uuid.UUID]domain.ManualRecord),
	}
}

// clone копирует состояние. Значения в картах - структуры без общих
// изменяемых срезов, кроме Items заказа, которые копируются отдельно.
func (st *state) clone() *state {
	c := newState()
	c.seq = st.seq
	for k, v := range st.clients {
		c.clients[k] = v
	}
	for k, v := range st.orders {
		v.Items = append([]domain.OrderItem(nil), v.Items...)
		c.orders[k] = v
	}
	for k, v := range st.lots {
		c.lots[k] = v
	}
	for k, v := range st.history {
		c.history[k] = v
	}
	for k, v := range st.processes {
		c.processes[k] = v
	}
	for k, v := range st.products {
		c.products[k] = v
	}
	for k, v := range st.steps {
		c.steps[k] = v
	}
	for k, v := range st.records {
		c.records[k] = v
	}
	return c
}

type queries struct {
	state  *state
	closed atomic.Bool
}
