package main

import (
	"flag"
	"fmt"
	"log"
	"net/http"
	"time"

	"invoice-backend/internal/cache"
	"invoice-backend/internal/config"
	"invoice-backend/internal/handlers"
	"invoice-backend/internal/health"
	h "invoice-backend/internal/http"
	"invoice-backend/internal/middleware"
	"invoice-backend/internal/monitoring"
	"invoice-backend/internal/repositories"
	"invoice-backend/internal/services"
)

func main() {
	port := flag.Int("port", 0, "Server port (overrides config)")
	flag.Parse()

	// Load configuration
	cfg := config.Load()
	if *port != 0 {
		cfg.Server.Port = *port
	}

	// Initialize Redis cache (optional - graceful fallback if unavailable)
	if err := cache.Init(); err != nil {
		log.Printf("[Redis] Cache unavailable: %v (sessions are memory-only)", err)
	} else {
		log.Println("[Redis] Cache connected successfully")
	}

	// Initialize repositories and services
	sessionRepo := repositories.NewSessionRepository(time.Duration(cfg.Session.TTLMinutes) * time.Minute)
	invoiceService := services.NewInvoiceService(sessionRepo)

	templateService, err := services.NewTemplateService()
	if err != nil {
		log.Fatalf("Failed to load invoice template: %v", err)
	}

	pdfService := services.NewPDFService(cfg.Renderer.WkhtmltopdfPath)

	// Initialize health checker
	healthChecker := health.NewHealthChecker(templateService, pdfService)

	// Start monitoring server in background
	go monitoring.NewMonitoringServer(cfg.Monitoring.Port).Start()

	// Initialize handlers
	invoiceHandler := handlers.NewInvoiceHandler(invoiceService, templateService, pdfService)
	pageHandler := handlers.NewPageHandler()
	healthHandler := handlers.NewHealthHandler(healthChecker)

	corsMiddleware := middleware.NewCORS(cfg)

	router := h.NewRouter(invoiceHandler, pageHandler, healthHandler)

	// Wrap with panic recovery and metrics middleware
	handler := middleware.PanicRecovery(middleware.MetricsMiddleware(corsMiddleware(router)))

	// Start server
	addr := fmt.Sprintf(":%d", cfg.Server.Port)
	log.Printf("Server running on %s (renderer: %s)", addr, pdfService.Backend())
	if err := http.ListenAndServe(addr, handler); err != nil {
		log.Fatalf("Server failed to start: %v", err)
	}
}
