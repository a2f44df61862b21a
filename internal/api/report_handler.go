package api

import (
	"net/http"
	"time"
)

// DailyReport возвращает сводку завершённых шагов за день.
// Без date - текущий день в часовом поясе отчётов.
// GET /api/v1/reports/daily?date=YYYY-MM-DD
func (h *Handler) DailyReport(w http.ResponseWriter, r *http.Request) {
	day := time.Now().In(h.loc)
	if raw := r.URL.Query().Get("date"); raw != "" {
		parsed, err := time.ParseInLocation(time.DateOnly, raw, h.loc)
		if err != nil {
			BadRequest(w, "invalid date, expected YYYY-MM-DD")
			return
		}
		day = parsed
	}

	summary, err := h.svc.DailySummary(r.Context(), day, h.loc)
	if HandleServiceError(w, h.logger, err) {
		return
	}

	Success(w, summary)
}

// CreateRecord сохраняет ручную запись журнала.
// POST /api/v1/records
func (h *Handler) CreateRecord(w http.ResponseWriter, r *http.Request) {
	var req RecordRequest
	if err := decode(r, &req, false); err != nil {
		BadRequest(w, "invalid request body")
		return
	}

	record, err := h.svc.CreateManualRecord(r.Context(), req.toInput())
	if HandleServiceError(w, h.logger, err) {
		return
	}

	Created(w, record)
}
