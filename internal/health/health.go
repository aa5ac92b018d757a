package health

import (
	"invoice-backend/internal/services"
)

type HealthChecker struct {
	templates *services.TemplateService
	pdf       *services.PDFService
}

type HealthStatus struct {
	Status   string         `json:"status"`
	Template TemplateHealth `json:"template"`
	Renderer RendererHealth `json:"renderer"`
}

type TemplateHealth struct {
	Status string `json:"status"`
}

type RendererHealth struct {
	Status  string `json:"status"`
	Backend string `json:"backend"`
}

func NewHealthChecker(templates *services.TemplateService, pdf *services.PDFService) *HealthChecker {
	return &HealthChecker{templates: templates, pdf: pdf}
}

func (h *HealthChecker) CheckBasic() HealthStatus {
	tmpl := h.checkTemplate()

	status := "healthy"
	if tmpl.Status != "healthy" {
		status = "unhealthy"
	}

	return HealthStatus{
		Status:   status,
		Template: tmpl,
		Renderer: RendererHealth{
			Status:  "healthy",
			Backend: h.pdf.Backend(),
		},
	}
}

func (h *HealthChecker) checkTemplate() TemplateHealth {
	if h.templates == nil || !h.templates.HasItemsPlaceholder() {
		return TemplateHealth{Status: "unhealthy"}
	}
	return TemplateHealth{Status: "healthy"}
}
