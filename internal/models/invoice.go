package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// LineItem represents one invoice row. Display order equals invoice row order.
type LineItem struct {
	Description string          `json:"description"`
	Quantity    int             `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
}

// Total returns quantity * unit price.
func (li LineItem) Total() decimal.Decimal {
	return li.UnitPrice.Mul(decimal.NewFromInt(int64(li.Quantity)))
}

// PartyInfo holds the free-text invoice header fields. Dates are kept in the
// HTML date-input form (YYYY-MM-DD) and reformatted at generation time.
type PartyInfo struct {
	CompanyName    string `json:"company_name"`
	CompanyAddress string `json:"company_address"`
	InvoiceNumber  string `json:"invoice_number"`
	InvoiceDate    string `json:"invoice_date"`
	DueDate        string `json:"due_date"`
	BillToName     string `json:"bill_to_name"`
	BillToAddress  string `json:"bill_to_address"`
}

// Totals is the aggregate computation over all line items.
type Totals struct {
	Subtotal   decimal.Decimal `json:"subtotal"`
	Tax        decimal.Decimal `json:"tax"`
	GrandTotal decimal.Decimal `json:"grand_total"`

	SubtotalDisplay   string `json:"subtotal_display"`
	TaxDisplay        string `json:"tax_display"`
	GrandTotalDisplay string `json:"grand_total_display"`
}

// ItemView is a line item with its derived amounts, as returned to the form.
type ItemView struct {
	Description  string          `json:"description"`
	Quantity     int             `json:"quantity"`
	UnitPrice    decimal.Decimal `json:"unit_price"`
	Total        decimal.Decimal `json:"total"`
	Tax          decimal.Decimal `json:"tax"`
	TotalWithTax decimal.Decimal `json:"total_with_tax"`

	TotalDisplay string `json:"total_display"`
}

// InvoiceView is the full recomputed state sent back after every action.
type InvoiceView struct {
	Items   []ItemView `json:"items"`
	Totals  Totals     `json:"totals"`
	Details PartyInfo  `json:"details"`
}

// UpdateItemRequest carries a partial in-place edit of one line item. Nil
// fields are left untouched.
type UpdateItemRequest struct {
	Description *string          `json:"description"`
	Quantity    *int             `json:"quantity"`
	UnitPrice   *decimal.Decimal `json:"unit_price"`
}

// InvoiceSession is one browser session's invoice state.
type InvoiceSession struct {
	ID        string     `json:"id"`
	Items     []LineItem `json:"items"`
	Details   PartyInfo  `json:"details"`
	UpdatedAt time.Time  `json:"updated_at"`
}
