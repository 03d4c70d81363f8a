package api

import (
	"net/http"

	"github.com/gorilla/mux"
)

// HandleListCreditCards handles GET /customer/creditcards/{id}
func (h *Handler) HandleListCreditCards(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	cards, err := h.gateway.ListCreditCards(r.Context(), id)
	if err != nil {
		WriteDomainError(w, r, "list credit cards", err)
		return
	}
	writeJSON(w, http.StatusOK, cards)
}
