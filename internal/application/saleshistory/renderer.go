package saleshistory

import (
	"strconv"
	"strings"
	"time"

	"github.com/sangkips/salesdesk-api/internal/domain/entity"
	"github.com/sangkips/salesdesk-api/pkg/printer"
	"github.com/shopspring/decimal"
)

const (
	receiptFooter = "Thank you for your business!"
	voidedBanner  = "*** VOIDED ***"
	feedBeforeCut = 4
	timeLayout    = "2006-01-02 15:04"
)

// Rendered is a receipt laid out for one paper width: the ESC/POS job and
// its plain-text mirror.
type Rendered struct {
	Reference string   `json:"reference"`
	Width     int      `json:"width"`
	ESCPOS    []byte   `json:"-"`
	Lines     []string `json:"lines"`
}

// Text joins the plain-text lines.
func (r *Rendered) Text() string {
	return strings.Join(r.Lines, "\n") + "\n"
}

// Renderer lays receipts out in fixed character budgets.
type Renderer struct {
	loc *time.Location
}

// NewRenderer creates a renderer printing times in loc.
func NewRenderer(loc *time.Location) *Renderer {
	if loc == nil {
		loc = time.Local
	}
	return &Renderer{loc: loc}
}

// itemBudgets returns the quantity and unit price column widths. The line
// total takes the rest of the row.
func itemBudgets(width int) (qty, price int) {
	if width >= printer.Width80mm {
		return 6, 14
	}
	return 4, 9
}

// Render lays doc out for width characters per line. Unsupported widths
// fall back to 58mm paper.
func (r *Renderer) Render(doc *entity.ReceiptDocument, width int) *Rendered {
	if !printer.ValidWidth(width) {
		width = printer.Width58mm
	}
	l := printer.NewLayout(width)

	if doc.Header.StoreName != "" {
		l.Heading(doc.Header.StoreName)
	}
	for _, line := range doc.Header.AddressLines {
		l.Center(line)
	}
	for _, line := range doc.Header.ContactLines {
		l.Center(line)
	}
	l.Separator('=')

	if doc.Voided {
		l.Banner(voidedBanner)
	}
	l.KeyValue("Receipt", doc.Reference, false)
	l.KeyValue("Date", doc.IssuedAt.In(r.loc).Format(timeLayout), false)
	if doc.Cashier != "" {
		l.KeyValue("Cashier", doc.Cashier, false)
	}
	if doc.Customer != nil {
		if doc.Customer.Name != "" {
			l.KeyValue("Customer", doc.Customer.Name, false)
		}
		if doc.Customer.Phone != "" {
			l.KeyValue("Phone", doc.Customer.Phone, false)
		}
	}
	l.Separator('-')

	qtyW, priceW := itemBudgets(width)
	for _, item := range doc.Items {
		l.Wrapped(item.Label)
		l.Columns(
			printer.Column{Width: 2},
			printer.Column{Text: strconv.Itoa(item.Quantity), Width: qtyW, Right: true},
			printer.Column{Text: " x", Width: 3},
			printer.Column{Text: money(item.UnitPrice), Width: priceW, Right: true},
			printer.Column{Text: money(item.LineTotal), Right: true},
		)
		if item.Discount.IsPositive() {
			l.KeyValue("    Discount", "-"+money(item.Discount), false)
		}
	}
	l.Separator('-')

	for _, s := range doc.Summary {
		amount := money(s.Amount)
		if s.Kind == entity.SummaryDiscount {
			amount = "-" + amount
		}
		l.KeyValue(s.Label, amount, s.Kind == entity.SummaryTotal)
	}
	l.KeyValue("Payment", doc.PaymentLabel, false)

	if doc.Note != "" {
		l.Separator('-')
		l.Wrapped(doc.Note)
	}
	if doc.Voided && doc.VoidReason != "" {
		l.Wrapped("Void reason: " + doc.VoidReason)
	}

	l.Blank()
	l.Center(receiptFooter)

	return &Rendered{
		Reference: doc.Reference,
		Width:     width,
		ESCPOS:    l.ESCPOS(feedBeforeCut),
		Lines:     l.PlainLines(),
	}
}

// TestPage lays out a short page for checking the printer connection.
func (r *Renderer) TestPage(storeName string, width int, at time.Time) *Rendered {
	if !printer.ValidWidth(width) {
		width = printer.Width58mm
	}
	l := printer.NewLayout(width)
	if storeName != "" {
		l.Heading(storeName)
	}
	l.Banner("PRINTER TEST")
	l.Separator('-')
	l.KeyValue("Width", strconv.Itoa(width)+" chars", false)
	l.KeyValue("Time", at.In(r.loc).Format(timeLayout), false)
	l.Columns(
		printer.Column{Text: "left", Width: width / 2},
		printer.Column{Text: "right", Right: true},
	)
	l.Separator('-')
	l.Center("If you can read this, printing works.")

	return &Rendered{
		Reference: "test-page",
		Width:     width,
		ESCPOS:    l.ESCPOS(feedBeforeCut),
		Lines:     l.PlainLines(),
	}
}

func money(d decimal.Decimal) string {
	return d.StringFixed(2)
}
