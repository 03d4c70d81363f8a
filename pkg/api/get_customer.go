package api

import (
	"net/http"

	"github.com/gorilla/mux"
)

// HandleGetCustomer handles GET /customer/{id}
func (h *Handler) HandleGetCustomer(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	doc, err := h.gateway.GetCustomer(r.Context(), id)
	if err != nil {
		WriteDomainError(w, r, "get customer", err)
		return
	}
	writeJSON(w, http.StatusOK, doc)
}
