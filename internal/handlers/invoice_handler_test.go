package handlers_test

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"invoice-backend/internal/handlers"
	"invoice-backend/internal/health"
	router "invoice-backend/internal/http"
	"invoice-backend/internal/models"
	"invoice-backend/internal/repositories"
	"invoice-backend/internal/services"
)

func newTestServer(t *testing.T) (*httptest.Server, *http.Client) {
	t.Helper()

	sessions := repositories.NewSessionRepository(time.Hour)
	t.Cleanup(sessions.Close)
	invoices := services.NewInvoiceService(sessions)
	templates, err := services.NewTemplateService()
	if err != nil {
		t.Fatalf("loading template: %v", err)
	}
	pdf := services.NewPDFServiceWith(services.NewGofpdfRenderer())

	r := router.NewRouter(
		handlers.NewInvoiceHandler(invoices, templates, pdf),
		handlers.NewPageHandler(),
		handlers.NewHealthHandler(health.NewHealthChecker(templates, pdf)),
	)

	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)

	jar, err := cookiejar.New(nil)
	if err != nil {
		t.Fatalf("cookie jar: %v", err)
	}
	return srv, &http.Client{Jar: jar}
}

func do(t *testing.T, client *http.Client, method, url string, body any) *http.Response {
	t.Helper()

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		reader = bytes.NewReader(data)
	}
	req, err := http.NewRequest(method, url, reader)
	if err != nil {
		t.Fatalf("build request: %v", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	res, err := client.Do(req)
	if err != nil {
		t.Fatalf("%s %s: %v", method, url, err)
	}
	return res
}

func decodeView(t *testing.T, res *http.Response) *models.InvoiceView {
	t.Helper()
	defer res.Body.Close()

	var view models.InvoiceView
	if err := json.NewDecoder(res.Body).Decode(&view); err != nil {
		t.Fatalf("decode view: %v", err)
	}
	return &view
}

func TestGetInvoice_Defaults(t *testing.T) {
	srv, client := newTestServer(t)

	res := do(t, client, http.MethodGet, srv.URL+"/api/invoice", nil)
	if res.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", res.StatusCode)
	}
	view := decodeView(t, res)

	if len(view.Items) != 2 {
		t.Fatalf("items = %d, want 2", len(view.Items))
	}
	if view.Items[0].Description != "Service 1" {
		t.Errorf("items[0] = %q, want Service 1", view.Items[0].Description)
	}
	if view.Totals.SubtotalDisplay != "₹5,000.00" {
		t.Errorf("subtotal = %q, want ₹5,000.00", view.Totals.SubtotalDisplay)
	}
	if view.Totals.GrandTotalDisplay != "₹5,900.00" {
		t.Errorf("grand total = %q, want ₹5,900.00", view.Totals.GrandTotalDisplay)
	}
	if view.Details.InvoiceNumber != "INV-001" {
		t.Errorf("invoice number = %q, want INV-001", view.Details.InvoiceNumber)
	}
}

func TestSessionCookie(t *testing.T) {
	srv, client := newTestServer(t)

	res := do(t, client, http.MethodGet, srv.URL+"/api/invoice", nil)
	res.Body.Close()

	var got *http.Cookie
	for _, c := range res.Cookies() {
		if c.Name == "invoice_session" {
			got = c
		}
	}
	if got == nil {
		t.Fatal("first visit did not set the invoice_session cookie")
	}
	if got.Value == "" || !got.HttpOnly {
		t.Errorf("cookie = %+v, want non-empty HttpOnly value", got)
	}

	// Second visit with the jarred cookie must not mint a new one.
	res = do(t, client, http.MethodGet, srv.URL+"/api/invoice", nil)
	res.Body.Close()
	for _, c := range res.Cookies() {
		if c.Name == "invoice_session" {
			t.Error("cookie re-issued on a returning visit")
		}
	}
}

func TestAddItem(t *testing.T) {
	srv, client := newTestServer(t)

	res := do(t, client, http.MethodPost, srv.URL+"/api/invoice/items", nil)
	if res.StatusCode != http.StatusCreated {
		t.Fatalf("status = %d, want 201", res.StatusCode)
	}
	view := decodeView(t, res)

	if len(view.Items) != 3 {
		t.Fatalf("items = %d, want 3", len(view.Items))
	}
	if view.Items[2].Description != "New Item" {
		t.Errorf("items[2] = %q, want New Item", view.Items[2].Description)
	}
	// 5000 + 100 default price
	if view.Totals.SubtotalDisplay != "₹5,100.00" {
		t.Errorf("subtotal = %q, want ₹5,100.00", view.Totals.SubtotalDisplay)
	}
}

func TestUpdateItem(t *testing.T) {
	srv, client := newTestServer(t)

	res := do(t, client, http.MethodPut, srv.URL+"/api/invoice/items/0", map[string]any{
		"quantity":   3,
		"unit_price": "250.50",
	})
	if res.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", res.StatusCode)
	}
	view := decodeView(t, res)

	if view.Items[0].Quantity != 3 {
		t.Errorf("quantity = %d, want 3", view.Items[0].Quantity)
	}
	if view.Items[0].TotalDisplay != "₹751.50" {
		t.Errorf("line total = %q, want ₹751.50", view.Items[0].TotalDisplay)
	}
}

func TestUpdateItem_Errors(t *testing.T) {
	tests := []struct {
		name       string
		path       string
		body       map[string]any
		wantStatus int
	}{
		{"index out of range", "/api/invoice/items/9", map[string]any{"quantity": 1}, http.StatusNotFound},
		{"non-numeric index", "/api/invoice/items/abc", map[string]any{"quantity": 1}, http.StatusBadRequest},
		{"quantity below minimum", "/api/invoice/items/0", map[string]any{"quantity": 0}, http.StatusBadRequest},
		{"price below minimum", "/api/invoice/items/0", map[string]any{"unit_price": "0"}, http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv, client := newTestServer(t)
			res := do(t, client, http.MethodPut, srv.URL+tt.path, tt.body)
			res.Body.Close()
			if res.StatusCode != tt.wantStatus {
				t.Errorf("status = %d, want %d", res.StatusCode, tt.wantStatus)
			}
		})
	}
}

func TestRemoveItem(t *testing.T) {
	srv, client := newTestServer(t)

	res := do(t, client, http.MethodDelete, srv.URL+"/api/invoice/items/0", nil)
	if res.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", res.StatusCode)
	}
	view := decodeView(t, res)

	if len(view.Items) != 1 {
		t.Fatalf("items = %d, want 1", len(view.Items))
	}
	if view.Items[0].Description != "Service 2" {
		t.Errorf("items[0] = %q, want Service 2", view.Items[0].Description)
	}
	if view.Totals.SubtotalDisplay != "₹4,000.00" {
		t.Errorf("subtotal = %q, want ₹4,000.00", view.Totals.SubtotalDisplay)
	}
}

func TestUpdateDetails(t *testing.T) {
	srv, client := newTestServer(t)

	res := do(t, client, http.MethodPut, srv.URL+"/api/invoice/details", map[string]any{
		"company_name":    "Acme Traders",
		"company_address": "1 Market Rd\nPune",
		"invoice_number":  "INV-042",
		"invoice_date":    "2026-08-29",
		"due_date":        "2026-09-12",
		"bill_to_name":    "Globex",
		"bill_to_address": "9 Docks\nMumbai",
	})
	if res.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", res.StatusCode)
	}
	view := decodeView(t, res)

	if view.Details.InvoiceNumber != "INV-042" {
		t.Errorf("invoice number = %q, want INV-042", view.Details.InvoiceNumber)
	}
	if view.Details.CompanyName != "Acme Traders" {
		t.Errorf("company = %q, want Acme Traders", view.Details.CompanyName)
	}
}

func TestGenerate(t *testing.T) {
	srv, client := newTestServer(t)

	res := do(t, client, http.MethodPost, srv.URL+"/api/invoice/generate", nil)
	defer res.Body.Close()
	if res.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", res.StatusCode)
	}

	if ct := res.Header.Get("Content-Type"); ct != "application/pdf" {
		t.Errorf("Content-Type = %q, want application/pdf", ct)
	}
	if cd := res.Header.Get("Content-Disposition"); !strings.Contains(cd, "invoice_INV-001.pdf") {
		t.Errorf("Content-Disposition = %q, want filename invoice_INV-001.pdf", cd)
	}

	data, err := io.ReadAll(res.Body)
	if err != nil {
		t.Fatalf("read body: %v", err)
	}
	if !bytes.HasPrefix(data, []byte("%PDF")) {
		t.Errorf("body does not start with %%PDF (got %q)", data[:min(8, len(data))])
	}
}

func TestGenerate_FilenameSanitized(t *testing.T) {
	srv, client := newTestServer(t)

	res := do(t, client, http.MethodPut, srv.URL+"/api/invoice/details", map[string]any{
		"invoice_number": "INV/2026 #7",
	})
	res.Body.Close()

	res = do(t, client, http.MethodPost, srv.URL+"/api/invoice/generate", nil)
	res.Body.Close()
	if cd := res.Header.Get("Content-Disposition"); !strings.Contains(cd, "invoice_INV-2026--7.pdf") {
		t.Errorf("Content-Disposition = %q, want sanitized filename", cd)
	}
}

func TestHealthEndpoints(t *testing.T) {
	srv, client := newTestServer(t)

	res := do(t, client, http.MethodGet, srv.URL+"/health", nil)
	res.Body.Close()
	if res.StatusCode != http.StatusOK {
		t.Errorf("/health status = %d, want 200", res.StatusCode)
	}

	res = do(t, client, http.MethodGet, srv.URL+"/health/ready", nil)
	defer res.Body.Close()
	if res.StatusCode != http.StatusOK {
		t.Errorf("/health/ready status = %d, want 200", res.StatusCode)
	}
	var status health.HealthStatus
	if err := json.NewDecoder(res.Body).Decode(&status); err != nil {
		t.Fatalf("decode readiness: %v", err)
	}
	if status.Renderer.Backend != "gofpdf" {
		t.Errorf("renderer backend = %q, want gofpdf", status.Renderer.Backend)
	}
}

func TestFormPage(t *testing.T) {
	srv, client := newTestServer(t)

	res := do(t, client, http.MethodGet, srv.URL+"/", nil)
	defer res.Body.Close()
	if res.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", res.StatusCode)
	}
	data, err := io.ReadAll(res.Body)
	if err != nil {
		t.Fatalf("read body: %v", err)
	}
	if !strings.Contains(string(data), "Invoice Generator") {
		t.Error("form page missing title")
	}
}
