package api

import (
	"net/http"

	"github.com/gorilla/mux"
)

// HandleGetProduct handles GET /product/{id}
func (h *Handler) HandleGetProduct(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	doc, err := h.gateway.GetProduct(r.Context(), id)
	if err != nil {
		WriteDomainError(w, r, "get product", err)
		return
	}
	writeJSON(w, http.StatusOK, doc)
}
