package api

import (
	"net/http"

	"go.uber.org/zap"

	"github.com/adfharrison1/docgate/pkg/logger"
)

// HandleCreateReceipt handles POST /receipt
func (h *Handler) HandleCreateReceipt(w http.ResponseWriter, r *http.Request) {
	var req receiptRequest
	if err := h.decodeRequest(w, r, &req); err != nil {
		WriteDomainError(w, r, "create receipt", err)
		return
	}

	receipt, err := h.gateway.CreateReceipt(r.Context(), req.CustomerID, req.ProductIDs)
	if err != nil {
		WriteDomainError(w, r, "create receipt", err)
		return
	}

	logger.FromContext(r.Context()).Info("Receipt created",
		zap.String("id", receipt.ID()), zap.String("customer", req.CustomerID))
	writeJSON(w, http.StatusCreated, receipt)
}
