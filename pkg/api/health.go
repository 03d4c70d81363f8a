package api

import (
	"net/http"
)

// HealthResponse represents the health check response
type HealthResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
	Backend string `json:"backend,omitempty"`
}

// HandleHealth handles GET requests to the health check endpoint. The
// gateway is healthy while it runs; the backend state is informational.
func (h *Handler) HandleHealth(w http.ResponseWriter, r *http.Request) {
	response := HealthResponse{
		Status:  "healthy",
		Message: "docgate is running",
	}
	if h.status != nil {
		response.Backend = h.status()
	}
	writeJSON(w, http.StatusOK, response)
}

// HandleRoot answers the bare root path.
func (h *Handler) HandleRoot(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("docgate"))
}
