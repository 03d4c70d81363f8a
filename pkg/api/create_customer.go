package api

import (
	"net/http"

	"go.uber.org/zap"

	"github.com/adfharrison1/docgate/pkg/domain"
	"github.com/adfharrison1/docgate/pkg/logger"
)

// HandleCreateCustomer handles POST /customer
func (h *Handler) HandleCreateCustomer(w http.ResponseWriter, r *http.Request) {
	var req customerRequest
	if err := h.decodeRequest(w, r, &req); err != nil {
		WriteDomainError(w, r, "create customer", err)
		return
	}

	doc, err := h.gateway.CreateCustomer(r.Context(), domain.Customer{
		Firstname: req.Firstname,
		Lastname:  req.Lastname,
	})
	if err != nil {
		WriteDomainError(w, r, "create customer", err)
		return
	}

	logger.FromContext(r.Context()).Debug("Customer created", zap.String("id", doc.ID()))
	writeJSON(w, http.StatusCreated, doc)
}
