package api

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/adfharrison1/docgate/pkg/domain"
)

// HandleAddCreditCard handles PUT /customer/creditcard/{id} and responds
// with the appended card.
func (h *Handler) HandleAddCreditCard(w http.ResponseWriter, r *http.Request) {
	customerID := mux.Vars(r)["id"]

	var req creditCardRequest
	if err := h.decodeRequest(w, r, &req); err != nil {
		WriteDomainError(w, r, "add credit card", err)
		return
	}

	card, err := h.gateway.AddCreditCard(r.Context(), customerID, domain.CreditCard{
		Provider:   req.Provider,
		Number:     req.Number,
		Expiration: req.Expiration,
	})
	if err != nil {
		WriteDomainError(w, r, "add credit card", err)
		return
	}

	writeJSON(w, http.StatusOK, card)
}
