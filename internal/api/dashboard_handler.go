package api

import (
	"net/http"
	"time"

	"github.com/shaiso/produccion/internal/domain"
	"github.com/shaiso/produccion/internal/engine"
	"github.com/shaiso/produccion/internal/produccion"
)

// OrderDashboard возвращает сводку незавершённых заказов.
// GET /api/v1/dashboard/orders?client=&from=YYYY-MM-DD&to=YYYY-MM-DD&status=
func (h *Handler) OrderDashboard(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	in := produccion.DashboardQuery{
		ClientName: query.Get("client"),
		Status:     domain.OrderStatus(query.Get("status")),
	}

	if raw := query.Get("from"); raw != "" {
		from, err := time.ParseInLocation(time.DateOnly, raw, h.loc)
		if err != nil {
			BadRequest(w, "invalid from date, expected YYYY-MM-DD")
			return
		}
		in.From = &from
	}
	if raw := query.Get("to"); raw != "" {
		day, err := time.ParseInLocation(time.DateOnly, raw, h.loc)
		if err != nil {
			BadRequest(w, "invalid to date, expected YYYY-MM-DD")
			return
		}
		_, to := engine.DayBounds(day, h.loc)
		in.To = &to
	}

	rows, err := h.svc.OrderDashboard(r.Context(), in)
	if HandleServiceError(w, h.logger, err) {
		return
	}

	List(w, rows, len(rows))
}

// WorkshopDashboard возвращает загрузку цехов.
// GET /api/v1/dashboard/workshops
func (h *Handler) WorkshopDashboard(w http.ResponseWriter, r *http.Request) {
	loads, err := h.svc.WorkshopDashboard(r.Context())
	if HandleServiceError(w, h.logger, err) {
		return
	}

	List(w, loads, len(loads))
}
