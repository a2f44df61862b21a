package api

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/shaiso/produccion/internal/domain"
	"github.com/shaiso/produccion/internal/produccion"
)

// CreateLot создаёт партию вне потока заказа.
// POST /api/v1/lots
func (h *Handler) CreateLot(w http.ResponseWriter, r *http.Request) {
	var req CreateLotRequest
	if err := decode(r, &req, false); err != nil {
		BadRequest(w, "invalid request body")
		return
	}

	lot, err := h.svc.CreateLot(r.Context(), produccion.CreateLotInput{
		OrderID:   req.OrderID,
		Code:      req.Code,
		Quantity:  req.Quantity,
		ParentID:  req.ParentID,
		ProductID: req.ProductID,
	})
	if HandleServiceError(w, h.logger, err) {
		return
	}

	Created(w, lot)
}

// GetLot возвращает партию с историей.
// GET /api/v1/lots/{id}
func (h *Handler) GetLot(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "lot")
	if !ok {
		return
	}

	lot, err := h.svc.GetLot(r.Context(), id)
	if HandleServiceError(w, h.logger, err) {
		return
	}

	Success(w, lot)
}

// GeneratePlan создаёт историю партии по шаблону продукта.
// POST /api/v1/lots/{id}/plan
func (h *Handler) GeneratePlan(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "lot")
	if !ok {
		return
	}

	var req GeneratePlanRequest
	if err := decode(r, &req, true); err != nil {
		BadRequest(w, "invalid request body")
		return
	}
	productID := uuid.Nil
	if req.ProductID != nil {
		productID = *req.ProductID
	}

	entries, err := h.svc.GeneratePlan(r.Context(), id, productID)
	if HandleServiceError(w, h.logger, err) {
		return
	}
	if entries == nil {
		entries = []domain.HistoryEntry{}
	}

	List(w, entries, len(entries))
}

// AdvanceProcess переводит шаг партии в IN_PROGRESS или COMPLETED.
// POST /api/v1/lots/{id}/advance
func (h *Handler) AdvanceProcess(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "lot")
	if !ok {
		return
	}

	var req AdvanceRequest
	if err := decode(r, &req, false); err != nil {
		BadRequest(w, "invalid request body")
		return
	}

	state, err := h.svc.AdvanceProcess(r.Context(), produccion.AdvanceInput{
		LotID:         id,
		ProcessName:   req.ProcessName,
		Target:        domain.EntryStatus(req.Target),
		At:            req.At,
		WorkshopID:    req.WorkshopID,
		TransporterID: req.TransporterID,
		Notes:         req.Notes,
	})
	if HandleServiceError(w, h.logger, err) {
		return
	}

	Success(w, state)
}

// RefreshLotState пересчитывает состояние партии по её истории.
// POST /api/v1/lots/{id}/refresh
func (h *Handler) RefreshLotState(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "lot")
	if !ok {
		return
	}

	state, err := h.svc.RefreshLotState(r.Context(), id)
	if HandleServiceError(w, h.logger, err) {
		return
	}

	Success(w, state)
}

// SplitLot подразделяет партию.
// POST /api/v1/lots/{id}/split
func (h *Handler) SplitLot(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "lot")
	if !ok {
		return
	}

	var req SplitRequest
	if err := decode(r, &req, false); err != nil {
		BadRequest(w, "invalid request body")
		return
	}

	subs := make([]produccion.SubLotInput, len(req.SubLots))
	for i, s := range req.SubLots {
		subs[i] = produccion.SubLotInput{Code: s.Code, Quantity: s.Quantity}
	}

	result, err := h.svc.SplitLot(r.Context(), id, subs)
	if HandleServiceError(w, h.logger, err) {
		return
	}

	Created(w, result)
}

// MoveLot записывает ручное перемещение партии.
// POST /api/v1/lots/{id}/move
func (h *Handler) MoveLot(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "lot")
	if !ok {
		return
	}

	var req MoveRequest
	if err := decode(r, &req, false); err != nil {
		BadRequest(w, "invalid request body")
		return
	}

	result, err := h.svc.MoveLot(r.Context(), produccion.MoveInput{
		LotID:         id,
		ProcessID:     req.ProcessID,
		WorkshopID:    req.WorkshopID,
		TransporterID: req.TransporterID,
		EntryDate:     req.EntryDate,
		ExitDate:      req.ExitDate,
		Notes:         req.Notes,
		MarkFinished:  req.MarkFinished,
	})
	if HandleServiceError(w, h.logger, err) {
		return
	}

	Success(w, result)
}

// LotsInWorkshop возвращает незавершённые партии в цехе.
// GET /api/v1/workshops/{id}/lots
func (h *Handler) LotsInWorkshop(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "workshop")
	if !ok {
		return
	}

	lots, err := h.svc.LotsInWorkshop(r.Context(), id)
	if HandleServiceError(w, h.logger, err) {
		return
	}
	if lots == nil {
		lots = []domain.Lot{}
	}

	List(w, lots, len(lots))
}

func pathID(w http.ResponseWriter, r *http.Request, kind string) (uuid.UUID, bool) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		BadRequest(w, "invalid "+kind+" id")
		return uuid.Nil, false
	}
	return id, true
}
