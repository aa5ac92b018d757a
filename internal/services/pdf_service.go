package services

import (
	"bytes"
	"fmt"
	"log"
	"strings"
	"time"

	"invoice-backend/internal/currency"
	"invoice-backend/internal/metrics"
	"invoice-backend/internal/models"
	"invoice-backend/internal/timeutil"

	wkhtmltopdf "github.com/SebastiaanKlippert/go-wkhtmltopdf"
	"github.com/jung-kurt/gofpdf/v2"
	"github.com/shopspring/decimal"
)

// Renderer turns a populated invoice into PDF bytes. The wkhtmltopdf backend
// renders the HTML document itself; the gofpdf fallback lays the invoice out
// from the session data so generation keeps working without the binary.
type Renderer interface {
	Render(html string, sess *models.InvoiceSession) ([]byte, error)
	Name() string
}

// PDFService fronts the active renderer backend.
type PDFService struct {
	renderer Renderer
}

// NewPDFService picks wkhtmltopdf when the binary is available and falls back
// to the built-in gofpdf layout otherwise.
func NewPDFService(wkhtmltopdfPath string) *PDFService {
	if r, err := NewWkhtmltopdfRenderer(wkhtmltopdfPath); err == nil {
		log.Println("[PDF] Using wkhtmltopdf backend")
		return &PDFService{renderer: r}
	} else {
		log.Printf("[PDF] wkhtmltopdf unavailable (%v), using gofpdf backend", err)
	}
	return &PDFService{renderer: NewGofpdfRenderer()}
}

// NewPDFServiceWith wraps an explicit renderer.
func NewPDFServiceWith(r Renderer) *PDFService {
	return &PDFService{renderer: r}
}

// Backend names the active renderer.
func (s *PDFService) Backend() string {
	return s.renderer.Name()
}

// Generate renders the invoice and records timing.
func (s *PDFService) Generate(html string, sess *models.InvoiceSession) ([]byte, error) {
	start := time.Now()
	data, err := s.renderer.Render(html, sess)
	if err != nil {
		return nil, fmt.Errorf("rendering PDF (%s): %w", s.renderer.Name(), err)
	}
	metrics.PDFRenderDuration.WithLabelValues(s.renderer.Name()).Observe(time.Since(start).Seconds())
	return data, nil
}

type wkhtmltopdfRenderer struct{}

// NewWkhtmltopdfRenderer verifies the wkhtmltopdf binary is usable. An empty
// path leaves binary discovery to PATH lookup.
func NewWkhtmltopdfRenderer(path string) (Renderer, error) {
	if path != "" {
		wkhtmltopdf.SetPath(path)
	}
	if _, err := wkhtmltopdf.NewPDFGenerator(); err != nil {
		return nil, err
	}
	return &wkhtmltopdfRenderer{}, nil
}

func (r *wkhtmltopdfRenderer) Name() string { return "wkhtmltopdf" }

func (r *wkhtmltopdfRenderer) Render(html string, _ *models.InvoiceSession) ([]byte, error) {
	pdfg, err := wkhtmltopdf.NewPDFGenerator()
	if err != nil {
		return nil, err
	}
	pdfg.PageSize.Set(wkhtmltopdf.PageSizeA4)
	pdfg.Orientation.Set(wkhtmltopdf.OrientationPortrait)

	page := wkhtmltopdf.NewPageReader(strings.NewReader(html))
	pdfg.AddPage(page)

	if err := pdfg.Create(); err != nil {
		return nil, err
	}
	return pdfg.Bytes(), nil
}

type gofpdfRenderer struct{}

// NewGofpdfRenderer returns the dependency-free fallback backend.
func NewGofpdfRenderer() Renderer {
	return &gofpdfRenderer{}
}

func (r *gofpdfRenderer) Name() string { return "gofpdf" }

// Render lays out the invoice directly. The core PDF fonts have no rupee
// glyph, so amounts carry the "Rs." prefix here.
func (r *gofpdfRenderer) Render(_ string, sess *models.InvoiceSession) ([]byte, error) {
	totals := ComputeTotals(sess.Items)

	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(10, 10, 10)
	pdf.AddPage()

	// Header
	pdf.SetFont("Arial", "B", 16)
	pdf.CellFormat(190, 10, "INVOICE", "", 1, "C", false, 0, "")
	pdf.SetFont("Arial", "", 10)
	pdf.CellFormat(190, 6, fmt.Sprintf("Invoice #: %s", sess.Details.InvoiceNumber), "", 1, "C", false, 0, "")
	pdf.CellFormat(95, 6, fmt.Sprintf("Date: %s", timeutil.ReformatDate(sess.Details.InvoiceDate)), "", 0, "L", false, 0, "")
	pdf.CellFormat(95, 6, fmt.Sprintf("Due: %s", timeutil.ReformatDate(sess.Details.DueDate)), "", 1, "R", false, 0, "")
	pdf.Ln(4)

	// Parties
	pdf.SetFillColor(240, 240, 240)
	pdf.SetFont("Arial", "B", 11)
	pdf.CellFormat(95, 7, "From", "1", 0, "L", true, 0, "")
	pdf.CellFormat(95, 7, "Bill To", "1", 1, "L", true, 0, "")
	pdf.SetFont("Arial", "", 10)
	fromLines := addressLines(sess.Details.CompanyName, sess.Details.CompanyAddress)
	toLines := addressLines(sess.Details.BillToName, sess.Details.BillToAddress)
	for len(fromLines) < len(toLines) {
		fromLines = append(fromLines, "")
	}
	for len(toLines) < len(fromLines) {
		toLines = append(toLines, "")
	}
	for i := range fromLines {
		pdf.CellFormat(95, 6, fromLines[i], "LR", 0, "L", false, 0, "")
		pdf.CellFormat(95, 6, toLines[i], "LR", 1, "L", false, 0, "")
	}
	pdf.CellFormat(95, 0, "", "T", 0, "L", false, 0, "")
	pdf.CellFormat(95, 0, "", "T", 1, "L", false, 0, "")
	pdf.Ln(5)

	// Items table
	pdf.SetFont("Arial", "B", 10)
	pdf.SetFillColor(200, 200, 200)
	pdf.CellFormat(10, 7, "#", "1", 0, "C", true, 0, "")
	pdf.CellFormat(60, 7, "Description", "1", 0, "C", true, 0, "")
	pdf.CellFormat(15, 7, "Qty", "1", 0, "C", true, 0, "")
	pdf.CellFormat(30, 7, "Unit Price", "1", 0, "C", true, 0, "")
	pdf.CellFormat(25, 7, "Total", "1", 0, "C", true, 0, "")
	pdf.CellFormat(25, 7, "GST (18%)", "1", 0, "C", true, 0, "")
	pdf.CellFormat(25, 7, "Amount", "1", 1, "C", true, 0, "")

	pdf.SetFont("Arial", "", 10)
	for i, item := range sess.Items {
		row := ItemBreakdown(item)
		desc := truncateDescription(item.Description)
		pdf.CellFormat(10, 6, fmt.Sprintf("%d", i+1), "1", 0, "C", false, 0, "")
		pdf.CellFormat(60, 6, desc, "1", 0, "L", false, 0, "")
		pdf.CellFormat(15, 6, fmt.Sprintf("%d", item.Quantity), "1", 0, "C", false, 0, "")
		pdf.CellFormat(30, 6, rupees(item.UnitPrice), "1", 0, "R", false, 0, "")
		pdf.CellFormat(25, 6, rupees(row.Total), "1", 0, "R", false, 0, "")
		pdf.CellFormat(25, 6, rupees(row.Tax), "1", 0, "R", false, 0, "")
		pdf.CellFormat(25, 6, rupees(row.TotalWithTax), "1", 1, "R", false, 0, "")
	}
	pdf.Ln(5)

	// Totals
	pdf.SetFont("Arial", "", 11)
	pdf.CellFormat(140, 7, "", "", 0, "L", false, 0, "")
	pdf.CellFormat(50, 7, fmt.Sprintf("Subtotal: %s", rupees(totals.Subtotal)), "", 1, "R", false, 0, "")
	pdf.CellFormat(140, 7, "", "", 0, "L", false, 0, "")
	pdf.CellFormat(50, 7, fmt.Sprintf("Tax (18%%): %s", rupees(totals.Tax)), "", 1, "R", false, 0, "")
	pdf.SetFont("Arial", "B", 13)
	pdf.CellFormat(140, 9, "", "", 0, "L", false, 0, "")
	pdf.CellFormat(50, 9, fmt.Sprintf("Total: %s", rupees(totals.GrandTotal)), "T", 1, "R", false, 0, "")

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// truncateDescription shortens a description to fit its table cell. Cuts on
// runes so multi-byte text cannot be split into invalid UTF-8.
func truncateDescription(s string) string {
	r := []rune(s)
	if len(r) <= 32 {
		return s
	}
	return string(r[:29]) + "..."
}

func addressLines(name, address string) []string {
	lines := []string{name}
	address = strings.ReplaceAll(address, "\r\n", "\n")
	for _, l := range strings.Split(address, "\n") {
		lines = append(lines, l)
	}
	return lines
}

func rupees(d decimal.Decimal) string {
	return "Rs. " + strings.TrimPrefix(currency.Format(d), currency.Symbol)
}
