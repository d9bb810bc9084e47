package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// ReceiptHeader holds the store header printed at the top of a receipt.
type ReceiptHeader struct {
	StoreName    string   `json:"store_name"`
	AddressLines []string `json:"address_lines,omitempty"`
	ContactLines []string `json:"contact_lines,omitempty"`
}

// ReceiptParty is the optional counterparty block.
type ReceiptParty struct {
	Name  string `json:"name,omitempty"`
	Phone string `json:"phone,omitempty"`
}

// ReceiptLine represents a single line item on a receipt.
type ReceiptLine struct {
	Label     string          `json:"label"`
	Quantity  int             `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	Discount  decimal.Decimal `json:"discount"`
	LineTotal decimal.Decimal `json:"line_total"`
}

// SummaryKind identifies a row of the monetary summary block.
type SummaryKind string

const (
	SummarySubtotal SummaryKind = "subtotal"
	SummaryDiscount SummaryKind = "discount"
	SummaryTax      SummaryKind = "tax"
	SummaryTotal    SummaryKind = "total"
)

// ReceiptAmount is one labelled amount of the summary block.
type ReceiptAmount struct {
	Kind   SummaryKind     `json:"kind"`
	Label  string          `json:"label"`
	Amount decimal.Decimal `json:"amount"`
}

// ReceiptDocument is a value object representing a printable receipt.
// It is NOT a database entity: it is composed from a transaction detail and
// the store profile at print time and never modified afterwards.
type ReceiptDocument struct {
	Header       ReceiptHeader   `json:"header"`
	Reference    string          `json:"reference"`
	IssuedAt     time.Time       `json:"issued_at"`
	Cashier      string          `json:"cashier,omitempty"`
	Customer     *ReceiptParty   `json:"customer,omitempty"`
	Items        []ReceiptLine   `json:"items"`
	Summary      []ReceiptAmount `json:"summary"`
	PaymentLabel string          `json:"payment_label"`
	Note         string          `json:"note,omitempty"`
	Voided       bool            `json:"voided,omitempty"`
	VoidReason   string          `json:"void_reason,omitempty"`
}

// SummaryAmount looks up a summary row by kind.
func (d *ReceiptDocument) SummaryAmount(kind SummaryKind) (decimal.Decimal, bool) {
	for _, s := range d.Summary {
		if s.Kind == kind {
			return s.Amount, true
		}
	}
	return decimal.Zero, false
}
