package api

import (
	"time"

	"github.com/google/uuid"
	"github.com/shaiso/produccion/internal/domain"
	"github.com/shaiso/produccion/internal/produccion"
	"github.com/shopspring/decimal"
)

// Order DTOs

// CreateOrderRequest - запрос на создание заказа.
type CreateOrderRequest struct {
	Number         int                `json:"number"`
	ClientID       *uuid.UUID         `json:"client_id,omitempty"`
	ClientName     string             `json:"client_name,omitempty"`
	Contact        string             `json:"contact,omitempty"`
	Items          []OrderItemRequest `json:"items"`
	CreateRootLots *bool              `json:"create_root_lots,omitempty"`
}

// OrderItemRequest - позиция заказа.
type OrderItemRequest struct {
	ProductID uuid.UUID `json:"product_id"`
	Quantity  int       `json:"quantity"`
}

func (r CreateOrderRequest) toInput() produccion.CreateOrderInput {
	in := produccion.CreateOrderInput{
		Number:         r.Number,
		ClientID:       r.ClientID,
		ClientName:     r.ClientName,
		Contact:        r.Contact,
		CreateRootLots: r.CreateRootLots,
		Items:          make([]produccion.OrderItemInput, len(r.Items)),
	}
	for i, item := range r.Items {
		in.Items[i] = produccion.OrderItemInput{ProductID: item.ProductID, Quantity: item.Quantity}
	}
	return in
}

// Lot DTOs

// CreateLotRequest - запрос на создание партии вне заказа.
type CreateLotRequest struct {
	OrderID   uuid.UUID  `json:"order_id"`
	Code      string     `json:"code"`
	Quantity  int        `json:"quantity"`
	ParentID  *uuid.UUID `json:"parent_id,omitempty"`
	ProductID *uuid.UUID `json:"product_id,omitempty"`
}

// GeneratePlanRequest - тело необязательно; без product_id берётся продукт партии.
type GeneratePlanRequest struct {
	ProductID *uuid.UUID `json:"product_id,omitempty"`
}

// AdvanceRequest - запрос на продвижение шага.
type AdvanceRequest struct {
	ProcessName   string     `json:"process_name"`
	Target        string     `json:"target"`
	At            *time.Time `json:"at,omitempty"`
	WorkshopID    *uuid.UUID `json:"workshop_id,omitempty"`
	TransporterID *uuid.UUID `json:"transporter_id,omitempty"`
	Notes         *string    `json:"notes,omitempty"`
}

// SplitRequest - запрос на подразделение партии.
type SplitRequest struct {
	SubLots []SubLotRequest `json:"sub_lots"`
}

// SubLotRequest - дочерняя партия.
type SubLotRequest struct {
	Code     string `json:"code"`
	Quantity int    `json:"quantity"`
}

// MoveRequest - запрос на ручное перемещение партии.
type MoveRequest struct {
	ProcessID     *uuid.UUID `json:"process_id,omitempty"`
	WorkshopID    *uuid.UUID `json:"workshop_id,omitempty"`
	TransporterID *uuid.UUID `json:"transporter_id,omitempty"`
	EntryDate     *time.Time `json:"entry_date,omitempty"`
	ExitDate      *time.Time `json:"exit_date,omitempty"`
	Notes         string     `json:"notes,omitempty"`
	MarkFinished  bool       `json:"mark_finished,omitempty"`
}

// Product DTOs

// ProductRequest - запрос на создание или обновление продукта.
type ProductRequest struct {
	Name     string                `json:"name"`
	Code     string                `json:"code"`
	HasSizes bool                  `json:"has_sizes"`
	Template []TemplateStepRequest `json:"template"`
}

// TemplateStepRequest - шаг шаблона. Без id при обновлении создаётся новый шаг.
type TemplateStepRequest struct {
	ID                    *uuid.UUID       `json:"id,omitempty"`
	Name                  string           `json:"name"`
	Order                 int              `json:"order"`
	EstimatedDurationDays *float64         `json:"estimated_duration_days,omitempty"`
	DefaultWorkshopID     *uuid.UUID       `json:"default_workshop_id,omitempty"`
	IsTransport           bool             `json:"is_transport,omitempty"`
	Price                 *decimal.Decimal `json:"price,omitempty"`
	RequiresAdvance       bool             `json:"requires_advance,omitempty"`
	Specifications        string           `json:"specifications,omitempty"`
}

func (r ProductRequest) toInput() produccion.ProductInput {
	in := produccion.ProductInput{
		Name:     r.Name,
		Code:     r.Code,
		HasSizes: r.HasSizes,
		Template: make([]domain.TemplateStep, len(r.Template)),
	}
	for i, s := range r.Template {
		step := domain.TemplateStep{
			Name:                  s.Name,
			Order:                 s.Order,
			EstimatedDurationDays: s.EstimatedDurationDays,
			DefaultWorkshopID:     s.DefaultWorkshopID,
			IsTransport:           s.IsTransport,
			RequiresAdvance:       s.RequiresAdvance,
			Specifications:        s.Specifications,
		}
		if s.ID != nil {
			step.ID = *s.ID
		}
		if s.Price != nil {
			step.Price = decimal.NewNullDecimal(*s.Price)
		}
		in.Template[i] = step
	}
	return in
}

// RecordRequest - ручная запись журнала.
type RecordRequest struct {
	Kind        string           `json:"kind"`
	Description string           `json:"description"`
	Amount      *decimal.Decimal `json:"amount,omitempty"`
	Date        *time.Time       `json:"date,omitempty"`
	User        string           `json:"user,omitempty"`
	OrderID     *uuid.UUID       `json:"order_id,omitempty"`
	WorkshopID  *uuid.UUID       `json:"workshop_id,omitempty"`
}

func (r RecordRequest) toInput() produccion.RecordInput {
	in := produccion.RecordInput{
		Kind:        domain.RecordKind(r.Kind),
		Description: r.Description,
		Date:        r.Date,
		User:        r.User,
		OrderID:     r.OrderID,
		WorkshopID:  r.WorkshopID,
	}
	if r.Amount != nil {
		in.Amount = decimal.NewNullDecimal(*r.Amount)
	}
	return in
}
