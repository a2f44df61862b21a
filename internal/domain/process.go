package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Process - запись каталога процессов (например, "Corte", "Costura").
//
// Каталог - справочные данные: процесс создаётся или обновляется по
// уникальному имени при генерации плана производства.
type Process struct {
	// ID - уникальный идентификатор процесса.
	ID uuid.UUID `json:"id"`

	// Name - уникальное имя процесса.
	Name string `json:"name"`

	// Order - позиция процесса в общей последовательности производства.
	Order int `json:"order"`

	// StandardDurationDays - стандартная длительность в днях.
	StandardDurationDays float64 `json:"standard_duration_days"`

	// CreatedAt - время создания.
	CreatedAt time.Time `json:"created_at"`
}

// Product - продукт с шаблоном шагов производства.
type Product struct {
	ID       uuid.UUID `json:"id"`
	Name     string    `json:"name"`
	Code     string    `json:"code"`
	HasSizes bool      `json:"has_sizes"`

	// Template - упорядоченные по Order шаги.
	Template []TemplateStep `json:"template,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TemplateStep - шаг шаблона продукта.
//
// При первой работе с партией каждый шаг шаблона превращается
// в запись HistoryEntry со статусом PENDING.
type TemplateStep struct {
	// ID - идентификатор шага. uuid.Nil для новых шагов при обновлении продукта.
	ID uuid.UUID `json:"id"`

	// ProductID - продукт-владелец.
	ProductID uuid.UUID `json:"product_id"`

	// Name - имя процесса; по нему ищется/создаётся запись каталога.
	Name string `json:"name"`

	// Order - порядок шага.
	Order int `json:"order"`

	// EstimatedDurationDays - оценка длительности. Nil - не задана.
	EstimatedDurationDays *float64 `json:"estimated_duration_days,omitempty"`

	// DefaultWorkshopID - цех по умолчанию.
	DefaultWorkshopID *uuid.UUID `json:"default_workshop_id,omitempty"`

	// IsTransport - шаг является перевозкой.
	IsTransport bool `json:"is_transport"`

	// Price - цена шага.
	Price decimal.NullDecimal `json:"price"`

	// RequiresAdvance - требуется предоплата.
	RequiresAdvance bool `json:"requires_advance"`

	// Specifications - свободный текст с техническими требованиями.
	Specifications string `json:"specifications,omitempty"`
}
