package saleshistory

import (
	"strings"

	"github.com/sangkips/salesdesk-api/internal/domain/entity"
)

// Compose builds the receipt document of detail. Line items keep their
// recorded order and the discount row appears only for a positive discount.
// profile may be nil and cashier empty.
func Compose(detail *entity.Transaction, profile *entity.StoreProfile, cashier string) *entity.ReceiptDocument {
	doc := &entity.ReceiptDocument{
		Reference:    detail.Reference,
		IssuedAt:     detail.CreatedAt,
		Cashier:      strings.TrimSpace(cashier),
		Items:        make([]entity.ReceiptLine, 0, len(detail.Items)),
		PaymentLabel: detail.PaymentMethod.Label(),
		Voided:       detail.Voided,
	}

	if profile != nil {
		doc.Header = entity.ReceiptHeader{
			StoreName:    strings.TrimSpace(profile.Name),
			AddressLines: profile.AddressLines(),
			ContactLines: profile.ContactLines(),
		}
	}

	name, phone := detail.Customer()
	name, phone = strings.TrimSpace(name), strings.TrimSpace(phone)
	if name != "" || phone != "" {
		doc.Customer = &entity.ReceiptParty{Name: name, Phone: phone}
	}

	for _, item := range detail.Items {
		doc.Items = append(doc.Items, entity.ReceiptLine{
			Label:     productLabel(&item),
			Quantity:  item.Quantity,
			UnitPrice: item.UnitPrice,
			Discount:  item.Discount,
			LineTotal: item.LineTotal,
		})
	}

	doc.Summary = append(doc.Summary, entity.ReceiptAmount{Kind: entity.SummarySubtotal, Label: "Subtotal", Amount: detail.Subtotal})
	if detail.Discount.IsPositive() {
		doc.Summary = append(doc.Summary, entity.ReceiptAmount{Kind: entity.SummaryDiscount, Label: "Discount", Amount: detail.Discount})
	}
	doc.Summary = append(doc.Summary,
		entity.ReceiptAmount{Kind: entity.SummaryTax, Label: "Tax", Amount: detail.Tax},
		entity.ReceiptAmount{Kind: entity.SummaryTotal, Label: "Total", Amount: detail.Total},
	)

	if detail.Note != nil {
		doc.Note = strings.TrimSpace(*detail.Note)
	}
	if detail.Voided && detail.VoidReason != nil {
		doc.VoidReason = strings.TrimSpace(*detail.VoidReason)
	}
	return doc
}

func productLabel(item *entity.TransactionItem) string {
	if item.Product != nil {
		if name := strings.TrimSpace(item.Product.Name); name != "" {
			return name
		}
	}
	return "Product #" + item.ProductID.String()
}
