package handlers

import (
	"html/template"
	"net/http"

	"invoice-backend/templates"
)

type PageHandler struct {
	templates *template.Template
}

func NewPageHandler() *PageHandler {
	// Parse page templates from the embedded filesystem. The invoice
	// template asset is excluded here: it uses literal placeholders, not
	// html/template syntax.
	templates := template.Must(template.ParseFS(templates.FS, "index.html"))

	return &PageHandler{
		templates: templates,
	}
}

// FormPage serves the invoice form page
func (h *PageHandler) FormPage(w http.ResponseWriter, r *http.Request) {
	h.templates.ExecuteTemplate(w, "index.html", nil)
}
