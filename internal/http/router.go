package http

import (
	"invoice-backend/internal/handlers"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func NewRouter(
	invoiceHandler *handlers.InvoiceHandler,
	pageHandler *handlers.PageHandler,
	healthHandler *handlers.HealthHandler,
) *mux.Router {
	r := mux.NewRouter()

	// Form page
	r.HandleFunc("/", pageHandler.FormPage).Methods("GET")

	// Invoice session API - every mutation returns the full recomputed view
	api := r.PathPrefix("/api/invoice").Subrouter()
	api.HandleFunc("", invoiceHandler.GetInvoice).Methods("GET")
	api.HandleFunc("/items", invoiceHandler.AddItem).Methods("POST")
	api.HandleFunc("/items/{index}", invoiceHandler.UpdateItem).Methods("PUT")
	api.HandleFunc("/items/{index}", invoiceHandler.RemoveItem).Methods("DELETE")
	api.HandleFunc("/details", invoiceHandler.UpdateDetails).Methods("PUT")
	api.HandleFunc("/generate", invoiceHandler.Generate).Methods("POST")

	// Health and metrics
	r.HandleFunc("/health", healthHandler.BasicHealth).Methods("GET")
	r.HandleFunc("/health/ready", healthHandler.ReadinessHealth).Methods("GET")
	r.Handle("/metrics", promhttp.Handler()).Methods("GET")

	return r
}
