package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"invoice-backend/internal/metrics"
	"invoice-backend/internal/models"
	"invoice-backend/internal/services"
	"invoice-backend/pkg/utils"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
)

const sessionCookie = "invoice_session"

// InvoiceHandler exposes the item store operations and PDF generation. Every
// mutation responds with the full recomputed invoice view so the form can
// redraw from scratch after each action.
type InvoiceHandler struct {
	Invoices  *services.InvoiceService
	Templates *services.TemplateService
	PDF       *services.PDFService
}

func NewInvoiceHandler(invoices *services.InvoiceService, templates *services.TemplateService, pdf *services.PDFService) *InvoiceHandler {
	return &InvoiceHandler{Invoices: invoices, Templates: templates, PDF: pdf}
}

// sessionID returns the caller's session id, minting a cookie on first visit.
func (h *InvoiceHandler) sessionID(w http.ResponseWriter, r *http.Request) string {
	if c, err := r.Cookie(sessionCookie); err == nil && c.Value != "" {
		return c.Value
	}
	id := uuid.NewString()
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookie,
		Value:    id,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	return id
}

// GetInvoice returns the current invoice state.
func (h *InvoiceHandler) GetInvoice(w http.ResponseWriter, r *http.Request) {
	view := h.Invoices.View(r.Context(), h.sessionID(w, r))
	utils.JSON(w, http.StatusOK, view)
}

// AddItem appends a default line item.
func (h *InvoiceHandler) AddItem(w http.ResponseWriter, r *http.Request) {
	view, err := h.Invoices.AddItem(r.Context(), h.sessionID(w, r))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	utils.JSON(w, http.StatusCreated, view)
}

// UpdateItem edits the line item at {index} in place.
func (h *InvoiceHandler) UpdateItem(w http.ResponseWriter, r *http.Request) {
	index, err := strconv.Atoi(mux.Vars(r)["index"])
	if err != nil {
		utils.Error(w, http.StatusBadRequest, "Invalid item index")
		return
	}

	var req models.UpdateItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.Error(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	view, err := h.Invoices.UpdateItem(r.Context(), h.sessionID(w, r), index, req)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	utils.JSON(w, http.StatusOK, view)
}

// RemoveItem deletes the line item at {index}.
func (h *InvoiceHandler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	index, err := strconv.Atoi(mux.Vars(r)["index"])
	if err != nil {
		utils.Error(w, http.StatusBadRequest, "Invalid item index")
		return
	}

	view, err := h.Invoices.RemoveItem(r.Context(), h.sessionID(w, r), index)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	utils.JSON(w, http.StatusOK, view)
}

// UpdateDetails replaces the invoice header fields.
func (h *InvoiceHandler) UpdateDetails(w http.ResponseWriter, r *http.Request) {
	var details models.PartyInfo
	if err := json.NewDecoder(r.Body).Decode(&details); err != nil {
		utils.Error(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	view, err := h.Invoices.UpdateDetails(r.Context(), h.sessionID(w, r), details)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	utils.JSON(w, http.StatusOK, view)
}

// Generate runs the populate-render pipeline and streams the PDF back as a
// named download. Failures abort the action with the form state untouched.
func (h *InvoiceHandler) Generate(w http.ResponseWriter, r *http.Request) {
	sess := h.Invoices.Session(r.Context(), h.sessionID(w, r))

	html := h.Templates.Populate(sess.Details, sess.Items)
	pdfData, err := h.PDF.Generate(html, sess)
	if err != nil {
		utils.Error(w, http.StatusBadGateway, err.Error())
		return
	}
	metrics.InvoicesGeneratedTotal.Inc()

	filename := fmt.Sprintf("invoice_%s.pdf", safeFilename(sess.Details.InvoiceNumber))
	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	w.Header().Set("Content-Length", strconv.Itoa(len(pdfData)))
	w.Write(pdfData)
}

// safeFilename keeps the invoice number usable inside a download filename.
func safeFilename(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return "draft"
	}
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			return r
		case r == '-' || r == '_' || r == '.':
			return r
		default:
			return '-'
		}
	}, s)
}

func writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, services.ErrItemNotFound):
		utils.Error(w, http.StatusNotFound, err.Error())
	case errors.Is(err, services.ErrQuantityMin), errors.Is(err, services.ErrUnitPriceMin):
		utils.Error(w, http.StatusBadRequest, err.Error())
	default:
		utils.Error(w, http.StatusInternalServerError, err.Error())
	}
}
