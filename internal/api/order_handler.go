package api

import (
	"net/http"
	"strconv"

	"github.com/shaiso/produccion/internal/domain"
)

// CreateOrder создаёт заказ с корневыми партиями.
// POST /api/v1/orders
func (h *Handler) CreateOrder(w http.ResponseWriter, r *http.Request) {
	var req CreateOrderRequest
	if err := decode(r, &req, false); err != nil {
		BadRequest(w, "invalid request body")
		return
	}

	order, err := h.svc.CreateOrder(r.Context(), req.toInput())
	if HandleServiceError(w, h.logger, err) {
		return
	}

	Created(w, order)
}

// SearchOrders ищет заказы по подстроке имени клиента.
// GET /api/v1/orders?client=
func (h *Handler) SearchOrders(w http.ResponseWriter, r *http.Request) {
	orders, err := h.svc.SearchOrders(r.Context(), r.URL.Query().Get("client"))
	if HandleServiceError(w, h.logger, err) {
		return
	}
	if orders == nil {
		orders = []domain.Order{}
	}

	List(w, orders, len(orders))
}

// TrackOrder возвращает заказ со всем деревом партий.
// GET /api/v1/orders/{number}
func (h *Handler) TrackOrder(w http.ResponseWriter, r *http.Request) {
	number, ok := orderNumber(w, r)
	if !ok {
		return
	}

	order, err := h.svc.TrackOrder(r.Context(), number)
	if HandleServiceError(w, h.logger, err) {
		return
	}

	Success(w, order)
}

// OrderMetrics возвращает прогресс, оставшееся время и стоимость заказа.
// GET /api/v1/orders/{number}/metrics
func (h *Handler) OrderMetrics(w http.ResponseWriter, r *http.Request) {
	number, ok := orderNumber(w, r)
	if !ok {
		return
	}

	report, err := h.svc.OrderReport(r.Context(), number)
	if HandleServiceError(w, h.logger, err) {
		return
	}

	Success(w, report)
}

func orderNumber(w http.ResponseWriter, r *http.Request) (int, bool) {
	number, err := strconv.Atoi(r.PathValue("number"))
	if err != nil || number <= 0 {
		BadRequest(w, "invalid order number")
		return 0, false
	}
	return number, true
}
