package api

import (
	"net/http"

	"github.com/adfharrison1/docgate/pkg/domain"
)

// HandleCreateProduct handles POST /product
func (h *Handler) HandleCreateProduct(w http.ResponseWriter, r *http.Request) {
	var req productRequest
	if err := h.decodeRequest(w, r, &req); err != nil {
		WriteDomainError(w, r, "create product", err)
		return
	}

	doc, err := h.gateway.CreateProduct(r.Context(), domain.Product{
		Name:  req.Name,
		Price: *req.Price,
	})
	if err != nil {
		WriteDomainError(w, r, "create product", err)
		return
	}
	writeJSON(w, http.StatusCreated, doc)
}
