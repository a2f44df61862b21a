package api

import (
	"net/http"
)

// CreateProduct создаёт продукт с шаблоном.
// POST /api/v1/products
func (h *Handler) CreateProduct(w http.ResponseWriter, r *http.Request) {
	var req ProductRequest
	if err := decode(r, &req, false); err != nil {
		BadRequest(w, "invalid request body")
		return
	}

	product, err := h.svc.CreateProduct(r.Context(), req.toInput())
	if HandleServiceError(w, h.logger, err) {
		return
	}

	Created(w, product)
}

// GetProduct возвращает продукт с шаблоном.
// GET /api/v1/products/{id}
func (h *Handler) GetProduct(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "product")
	if !ok {
		return
	}

	product, err := h.svc.GetProduct(r.Context(), id)
	if HandleServiceError(w, h.logger, err) {
		return
	}

	Success(w, product)
}

// UpdateProduct обновляет продукт и сливает шаблон.
// PUT /api/v1/products/{id}
func (h *Handler) UpdateProduct(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "product")
	if !ok {
		return
	}

	var req ProductRequest
	if err := decode(r, &req, false); err != nil {
		BadRequest(w, "invalid request body")
		return
	}

	product, err := h.svc.UpdateProduct(r.Context(), id, req.toInput())
	if HandleServiceError(w, h.logger, err) {
		return
	}

	Success(w, product)
}
