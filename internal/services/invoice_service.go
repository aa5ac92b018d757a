package services

import (
	"context"
	"errors"

	"invoice-backend/internal/currency"
	"invoice-backend/internal/models"
	"invoice-backend/internal/repositories"

	"github.com/shopspring/decimal"
)

// TaxRate is the fixed GST rate applied uniformly at item and aggregate
// level. It is a business rule, not a configuration knob.
var TaxRate = decimal.NewFromFloat(0.18)

var (
	ErrItemNotFound = errors.New("line item index out of range")
	ErrQuantityMin  = errors.New("quantity must be at least 1")
	ErrUnitPriceMin = errors.New("unit price must be at least 0.01")
)

var minUnitPrice = decimal.NewFromFloat(0.01)

// Defaults for a freshly added line item.
var (
	defaultDescription = "New Item"
	defaultQuantity    = 1
	defaultUnitPrice   = decimal.NewFromInt(100)
)

// InvoiceService owns the item store operations and the totals computation.
type InvoiceService struct {
	sessions *repositories.SessionRepository
}

func NewInvoiceService(sessions *repositories.SessionRepository) *InvoiceService {
	return &InvoiceService{sessions: sessions}
}

// View returns the full recomputed invoice state for a session.
func (s *InvoiceService) View(ctx context.Context, sessionID string) *models.InvoiceView {
	sess := s.sessions.Get(ctx, sessionID)
	return buildView(sess)
}

// AddItem appends a default line item to the end of the store.
func (s *InvoiceService) AddItem(ctx context.Context, sessionID string) (*models.InvoiceView, error) {
	sess, err := s.sessions.Update(ctx, sessionID, func(sess *models.InvoiceSession) error {
		sess.Items = append(sess.Items, models.LineItem{
			Description: defaultDescription,
			Quantity:    defaultQuantity,
			UnitPrice:   defaultUnitPrice,
		})
		return nil
	})
	if err != nil {
		return nil, err
	}
	return buildView(sess), nil
}

// UpdateItem mutates fields of the item at index in place. Only non-nil
// request fields are applied; quantity and unit price re-check the widget
// minimums.
func (s *InvoiceService) UpdateItem(ctx context.Context, sessionID string, index int, req models.UpdateItemRequest) (*models.InvoiceView, error) {
	sess, err := s.sessions.Update(ctx, sessionID, func(sess *models.InvoiceSession) error {
		if index < 0 || index >= len(sess.Items) {
			return ErrItemNotFound
		}
		item := &sess.Items[index]
		if req.Description != nil {
			item.Description = *req.Description
		}
		if req.Quantity != nil {
			if *req.Quantity < 1 {
				return ErrQuantityMin
			}
			item.Quantity = *req.Quantity
		}
		if req.UnitPrice != nil {
			if req.UnitPrice.LessThan(minUnitPrice) {
				return ErrUnitPriceMin
			}
			item.UnitPrice = *req.UnitPrice
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return buildView(sess), nil
}

// RemoveItem deletes the item at index, shifting later items down.
func (s *InvoiceService) RemoveItem(ctx context.Context, sessionID string, index int) (*models.InvoiceView, error) {
	sess, err := s.sessions.Update(ctx, sessionID, func(sess *models.InvoiceSession) error {
		if index < 0 || index >= len(sess.Items) {
			return ErrItemNotFound
		}
		sess.Items = append(sess.Items[:index], sess.Items[index+1:]...)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return buildView(sess), nil
}

// UpdateDetails replaces the invoice header fields.
func (s *InvoiceService) UpdateDetails(ctx context.Context, sessionID string, details models.PartyInfo) (*models.InvoiceView, error) {
	sess, err := s.sessions.Update(ctx, sessionID, func(sess *models.InvoiceSession) error {
		sess.Details = details
		return nil
	})
	if err != nil {
		return nil, err
	}
	return buildView(sess), nil
}

// Session returns a copy of the raw session state (used by PDF generation).
func (s *InvoiceService) Session(ctx context.Context, sessionID string) *models.InvoiceSession {
	return s.sessions.Get(ctx, sessionID)
}

// ComputeTotals derives subtotal, tax and grand total from the line items.
// Values stay unrounded decimals; rounding happens only in formatting, which
// keeps the per-item taxes summing exactly to the aggregate tax.
func ComputeTotals(items []models.LineItem) models.Totals {
	subtotal := decimal.Zero
	for _, item := range items {
		subtotal = subtotal.Add(item.Total())
	}
	tax := subtotal.Mul(TaxRate)
	grand := subtotal.Add(tax)

	return models.Totals{
		Subtotal:          subtotal,
		Tax:               tax,
		GrandTotal:        grand,
		SubtotalDisplay:   currency.Format(subtotal),
		TaxDisplay:        currency.Format(tax),
		GrandTotalDisplay: currency.Format(grand),
	}
}

// ItemBreakdown derives the per-item amounts shown in the invoice table.
func ItemBreakdown(item models.LineItem) models.ItemView {
	total := item.Total()
	tax := total.Mul(TaxRate)
	return models.ItemView{
		Description:  item.Description,
		Quantity:     item.Quantity,
		UnitPrice:    item.UnitPrice,
		Total:        total,
		Tax:          tax,
		TotalWithTax: total.Add(tax),
		TotalDisplay: currency.Format(total),
	}
}

func buildView(sess *models.InvoiceSession) *models.InvoiceView {
	items := make([]models.ItemView, len(sess.Items))
	for i, item := range sess.Items {
		items[i] = ItemBreakdown(item)
	}
	return &models.InvoiceView{
		Items:   items,
		Totals:  ComputeTotals(sess.Items),
		Details: sess.Details,
	}
}
