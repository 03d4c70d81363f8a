package api

import (
	"github.com/gorilla/mux"
)

// RegisterRoutes registers all API routes with the given router
func (h *Handler) RegisterRoutes(router *mux.Router) {
	router.HandleFunc("/", h.HandleRoot).Methods("GET")
	router.HandleFunc("/health", h.HandleHealth).Methods("GET")

	// Customers
	router.HandleFunc("/customer", h.HandleCreateCustomer).Methods("POST")
	router.HandleFunc("/customer/creditcard/{id}", h.HandleAddCreditCard).Methods("PUT")
	router.HandleFunc("/customer/creditcards/{id}", h.HandleListCreditCards).Methods("GET")
	router.HandleFunc("/customer/{id}", h.HandleGetCustomer).Methods("GET")
	router.HandleFunc("/customers", h.HandleListCustomers).Methods("GET")

	// Products
	router.HandleFunc("/product", h.HandleCreateProduct).Methods("POST")
	router.HandleFunc("/product/{id}", h.HandleGetProduct).Methods("GET")
	router.HandleFunc("/products", h.HandleListProducts).Methods("GET")

	// Receipts
	router.HandleFunc("/receipt", h.HandleCreateReceipt).Methods("POST")
	router.HandleFunc("/receipts", h.HandleListReceipts).Methods("GET")
}
