package api

import (
	"net/http"
)

// RegisterRoutes регистрирует все маршруты API.
func (h *Handler) RegisterRoutes(mux *http.ServeMux) {
	chain := Chain(
		Recovery(h.logger),
		Metrics(),
		Logging(h.logger),
	)

	// Orders
	mux.Handle("POST /api/v1/orders", chain(http.HandlerFunc(h.CreateOrder)))
	mux.Handle("GET /api/v1/orders", chain(http.HandlerFunc(h.SearchOrders)))
	mux.Handle("GET /api/v1/orders/{number}", chain(http.HandlerFunc(h.TrackOrder)))
	mux.Handle("GET /api/v1/orders/{number}/metrics", chain(http.HandlerFunc(h.OrderMetrics)))

	// Lots
	mux.Handle("POST /api/v1/lots", chain(http.HandlerFunc(h.CreateLot)))
	mux.Handle("GET /api/v1/lots/{id}", chain(http.HandlerFunc(h.GetLot)))
	mux.Handle("POST /api/v1/lots/{id}/plan", chain(http.HandlerFunc(h.GeneratePlan)))
	mux.Handle("POST /api/v1/lots/{id}/advance", chain(http.HandlerFunc(h.AdvanceProcess)))
	mux.Handle("POST /api/v1/lots/{id}/refresh", chain(http.HandlerFunc(h.RefreshLotState)))
	mux.Handle("POST /api/v1/lots/{id}/split", chain(http.HandlerFunc(h.SplitLot)))
	mux.Handle("POST /api/v1/lots/{id}/move", chain(http.HandlerFunc(h.MoveLot)))

	// Workshops
	mux.Handle("GET /api/v1/workshops/{id}/lots", chain(http.HandlerFunc(h.LotsInWorkshop)))

	// Products
	mux.Handle("POST /api/v1/products", chain(http.HandlerFunc(h.CreateProduct)))
	mux.Handle("GET /api/v1/products/{id}", chain(http.HandlerFunc(h.GetProduct)))
	mux.Handle("PUT /api/v1/products/{id}", chain(http.HandlerFunc(h.UpdateProduct)))

	// Reports
	mux.Handle("GET /api/v1/reports/daily", chain(http.HandlerFunc(h.DailyReport)))
	mux.Handle("POST /api/v1/records", chain(http.HandlerFunc(h.CreateRecord)))

	// Dashboard
	mux.Handle("GET /api/v1/dashboard/orders", chain(http.HandlerFunc(h.OrderDashboard)))
	mux.Handle("GET /api/v1/dashboard/workshops", chain(http.HandlerFunc(h.WorkshopDashboard)))
}
