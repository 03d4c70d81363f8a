package api

import (
	"context"
	"net/http"

	"go.uber.org/zap"

	"github.com/adfharrison1/docgate/pkg/domain"
	"github.com/adfharrison1/docgate/pkg/logger"
)

// HandleListCustomers handles GET /customers
func (h *Handler) HandleListCustomers(w http.ResponseWriter, r *http.Request) {
	h.list(w, r, "list customers", h.gateway.ListCustomers)
}

// HandleListProducts handles GET /products
func (h *Handler) HandleListProducts(w http.ResponseWriter, r *http.Request) {
	h.list(w, r, "list products", h.gateway.ListProducts)
}

// HandleListReceipts handles GET /receipts
func (h *Handler) HandleListReceipts(w http.ResponseWriter, r *http.Request) {
	h.list(w, r, "list receipts", h.gateway.ListReceipts)
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request, op string, fn func(context.Context) ([]domain.Document, error)) {
	docs, err := fn(r.Context())
	if err != nil {
		WriteDomainError(w, r, op, err)
		return
	}
	if docs == nil {
		docs = []domain.Document{}
	}

	logger.FromContext(r.Context()).Debug("Listed documents", logFields(op, zap.Int("count", len(docs)))...)
	writeJSON(w, http.StatusOK, docs)
}
