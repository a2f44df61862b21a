package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Store - транзакционное хранилище дерева партий и каталога процессов.
//
// WithinTx выполняет fn атомарно: применяются либо все изменения, либо
// ни одного. Если ctx уже несёт транзакцию этого хранилища, fn выполняется
// внутри неё (вложенный вызов), так что операции ядра не различают
// верхний уровень и вложенность.
type Store interface {
	WithinTx(ctx context.Context, fn func(ctx context.Context, q Queries) error) error
}

// Queries - операции чтения и записи, доступные внутри транзакции.
//
// Методы Get* возвращают ошибку, удовлетворяющую errors.Is(err, ErrNotFound),
// если запись отсутствует.
type Queries interface {
	// Клиенты
	GetClient(ctx context.Context, id uuid.UUID) (*Client, error)
	FindClientByName(ctx context.Context, name string) (*Client, error)
	CreateClient(ctx context.Context, c *Client) error

	// Заказы
	CreateOrder(ctx context.Context, o *Order) error
	GetOrder(ctx context.Context, id uuid.UUID) (*Order, error)
	GetOrderByNumber(ctx context.Context, number int) (*Order, error)

	// ListOrders возвращает заказы без партий, новые первыми.
	ListOrders(ctx context.Context, f OrderFilter) ([]Order, error)

	// Партии
	CreateLot(ctx context.Context, l *Lot) error
	GetLot(ctx context.Context, id uuid.UUID) (*Lot, error)
	GetLotForUpdate(ctx context.Context, id uuid.UUID) (*Lot, error)
	UpdateLot(ctx context.Context, l *Lot) error
	ListLotsByOrder(ctx context.Context, orderID uuid.UUID) ([]Lot, error)
	ListLotsByWorkshop(ctx context.Context, workshopID uuid.UUID, statuses []LotStatus) ([]Lot, error)

	// ListLotsAtWorkshops возвращает партии, у которых задан текущий цех,
	// без истории. Пустой statuses - без фильтра по статусу.
	ListLotsAtWorkshops(ctx context.Context, statuses []LotStatus) ([]Lot, error)

	// ListLotsPendingPlan возвращает активные партии без истории, у продукта
	// которых есть шаги шаблона, старые первыми.
	ListLotsPendingPlan(ctx context.Context, limit int) ([]Lot, error)

	// История процессов
	ListHistory(ctx context.Context, lotID uuid.UUID) ([]HistoryEntry, error)
	ListHistoryByOrder(ctx context.Context, orderID uuid.UUID) ([]HistoryEntry, error)
	ListEntriesExitedBetween(ctx context.Context, from, to time.Time) ([]HistoryEntry, error)
	CreateHistoryEntry(ctx context.Context, e *HistoryEntry) error
	UpdateHistoryEntry(ctx context.Context, e *HistoryEntry) error

	// Ручные записи
	CreateManualRecord(ctx context.Context, r *ManualRecord) error
	ListManualRecordsBetween(ctx context.Context, from, to time.Time) ([]ManualRecord, error)

	// Каталог процессов
	UpsertProcess(ctx context.Context, name string, order int, durationDays *float64) (*Process, error)
	ListProcesses(ctx context.Context) ([]Process, error)

	// Продукты и шаблоны
	CreateProduct(ctx context.Context, p *Product) error
	UpdateProduct(ctx context.Context, p *Product) error
	GetProduct(ctx context.Context, id uuid.UUID) (*Product, error)
	ListTemplateSteps(ctx context.Context, productID uuid.UUID) ([]TemplateStep, error)
	CreateTemplateStep(ctx context.Context, s *TemplateStep) error
	UpdateTemplateStep(ctx context.Context, s *TemplateStep) error
	DeleteTemplateSteps(ctx context.Context, ids []uuid.UUID) error
}
