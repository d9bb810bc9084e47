package enum

import (
	"fmt"
	"strings"
)

// PaymentMethod is the tender a transaction was settled with
type PaymentMethod string

const (
	PaymentMethodCash   PaymentMethod = "cash"
	PaymentMethodCard   PaymentMethod = "card"
	PaymentMethodMobile PaymentMethod = "mobile"
	PaymentMethodCheck  PaymentMethod = "check"
)

// PaymentMethods lists every tender in display order.
var PaymentMethods = []PaymentMethod{
	PaymentMethodCash,
	PaymentMethodCard,
	PaymentMethodMobile,
	PaymentMethodCheck,
}

func (p PaymentMethod) String() string {
	return string(p)
}

// IsValid reports whether p is a known tender
func (p PaymentMethod) IsValid() bool {
	switch p {
	case PaymentMethodCash, PaymentMethodCard, PaymentMethodMobile, PaymentMethodCheck:
		return true
	}
	return false
}

// Label is the human-readable name printed on receipts
func (p PaymentMethod) Label() string {
	switch p {
	case PaymentMethodCash:
		return "Cash"
	case PaymentMethodCard:
		return "Card"
	case PaymentMethodMobile:
		return "Mobile Payment"
	case PaymentMethodCheck:
		return "Check"
	default:
		if p == "" {
			return "Unknown"
		}
		return strings.ToUpper(string(p[:1])) + string(p[1:])
	}
}

// ParsePaymentMethod parses a case-insensitive tender name
func ParsePaymentMethod(s string) (PaymentMethod, error) {
	p := PaymentMethod(strings.ToLower(strings.TrimSpace(s)))
	if !p.IsValid() {
		return "", fmt.Errorf("unknown payment method %q", s)
	}
	return p, nil
}
