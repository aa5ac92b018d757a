package services

import (
	"fmt"
	"html"
	"strings"

	"invoice-backend/internal/currency"
	"invoice-backend/internal/models"
	"invoice-backend/internal/timeutil"
	"invoice-backend/templates"
)

// invoiceTemplateFile is the read-only HTML asset carrying the placeholders.
const invoiceTemplateFile = "invoice_template.html"

// TemplateService populates the invoice template. Substitution is literal,
// case-sensitive `{{key}}` replacement: unmatched placeholders are left
// untouched and population never fails. html/template is the wrong tool here
// on purpose - it errors on unknown keys and escapes the row fragment.
type TemplateService struct {
	tmpl string
}

// NewTemplateService loads the embedded invoice template.
func NewTemplateService() (*TemplateService, error) {
	data, err := templates.FS.ReadFile(invoiceTemplateFile)
	if err != nil {
		return nil, fmt.Errorf("loading invoice template: %w", err)
	}
	return &TemplateService{tmpl: string(data)}, nil
}

// HasItemsPlaceholder reports whether the loaded template still carries the
// repeating-row marker. Used by the health check.
func (s *TemplateService) HasItemsPlaceholder() bool {
	return strings.Contains(s.tmpl, "{{items}}")
}

// Populate merges header fields, totals and item rows into the template and
// returns the complete HTML document.
func (s *TemplateService) Populate(details models.PartyInfo, items []models.LineItem) string {
	return PopulateTemplate(s.tmpl, details, items)
}

// PopulateTemplate is the pure form of Populate, operating on any template
// string.
func PopulateTemplate(tmpl string, details models.PartyInfo, items []models.LineItem) string {
	html := Substitute(tmpl, headerValues(details))

	totals := ComputeTotals(items)
	html = Substitute(html, map[string]string{
		"subtotal":    currency.Format(totals.Subtotal),
		"tax":         currency.Format(totals.Tax),
		"grand_total": currency.Format(totals.GrandTotal),
	})

	return strings.ReplaceAll(html, "{{items}}", ItemRows(items))
}

// Substitute replaces every literal `{{key}}` occurrence for each entry in
// values. Keys missing from the template are a no-op.
func Substitute(tmpl string, values map[string]string) string {
	for key, val := range values {
		tmpl = strings.ReplaceAll(tmpl, "{{"+key+"}}", val)
	}
	return tmpl
}

// ItemRows renders the repeating table rows: 1-based sequence number,
// description (escaped, it is free text), integer quantity, then unit price,
// line total, item tax and item-with-tax, each formatted like the summary
// values.
func ItemRows(items []models.LineItem) string {
	var b strings.Builder
	for i, item := range items {
		row := ItemBreakdown(item)
		fmt.Fprintf(&b, `
            <tr>
                <td>%d</td>
                <td>%s</td>
                <td class="text-right">%d</td>
                <td class="text-right">%s</td>
                <td class="text-right">%s</td>
                <td class="text-right">%s</td>
                <td class="text-right">%s</td>
            </tr>`,
			i+1,
			html.EscapeString(item.Description),
			item.Quantity,
			currency.Format(item.UnitPrice),
			currency.Format(row.Total),
			currency.Format(row.Tax),
			currency.Format(row.TotalWithTax),
		)
	}
	return b.String()
}

// headerValues maps header fields to their placeholder values. Addresses get
// newline-to-line-break conversion, dates the DD-MM-YYYY invoice form.
func headerValues(details models.PartyInfo) map[string]string {
	return map[string]string{
		"company_name":    details.CompanyName,
		"company_address": toHTMLLines(details.CompanyAddress),
		"invoice_number":  details.InvoiceNumber,
		"invoice_date":    timeutil.ReformatDate(details.InvoiceDate),
		"due_date":        timeutil.ReformatDate(details.DueDate),
		"bill_to_name":    details.BillToName,
		"bill_to_address": toHTMLLines(details.BillToAddress),
	}
}

func toHTMLLines(s string) string {
	s = strings.ReplaceAll(s, "\r\n", "\n")
	return strings.ReplaceAll(s, "\n", "<br>")
}
