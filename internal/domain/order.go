package domain

import (
	"time"

	"github.com/google/uuid"
)

// Order - заказ клиента ("pedido").
//
// Заказ владеет позициями (Items) и, через партии, всем деревом производства.
type Order struct {
	// ID - уникальный идентификатор заказа.
	ID uuid.UUID `json:"id"`

	// Number - уникальный номер заказа (используется в кодах партий).
	Number int `json:"number"`

	// ClientID - клиент.
	ClientID uuid.UUID `json:"client_id"`

	// ClientName - имя клиента (подгружается при чтении).
	ClientName string `json:"client_name,omitempty"`

	// Contact - контакт для связи.
	Contact string `json:"contact,omitempty"`

	// Items - позиции заказа.
	Items []OrderItem `json:"items,omitempty"`

	// Lots - все партии заказа, включая дочерние (подгружаются при чтении).
	Lots []Lot `json:"lots,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// OrderFilter - условия выборки заказов.
type OrderFilter struct {
	// ClientName - подстрока имени клиента без учёта регистра.
	ClientName string

	// CreatedFrom, CreatedTo - границы даты создания включительно.
	CreatedFrom *time.Time
	CreatedTo   *time.Time

	// OpenOnly оставляет заказы, у которых есть незавершённая партия.
	OpenOnly bool
}

// OrderItem - позиция заказа.
type OrderItem struct {
	ID        uuid.UUID `json:"id"`
	OrderID   uuid.UUID `json:"order_id"`
	ProductID uuid.UUID `json:"product_id"`
	Quantity  int       `json:"quantity"`
}

// Client - клиент.
type Client struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
}
