package entity

import (
	"time"

	"github.com/google/uuid"
	"github.com/sangkips/salesdesk-api/internal/domain/enum"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Transaction is a completed sale as listed in the sales history. It is
// fetched read-only and replaced wholesale on refresh.
type Transaction struct {
	ID            uuid.UUID          `gorm:"type:uuid;primary_key" json:"id"`
	Reference     string             `gorm:"size:100;unique;not null" json:"reference"`
	Subtotal      decimal.Decimal    `gorm:"type:numeric(12,2);not null;default:0" json:"subtotal"`
	Tax           decimal.Decimal    `gorm:"type:numeric(12,2);not null;default:0" json:"tax"`
	Discount      decimal.Decimal    `gorm:"type:numeric(12,2);not null;default:0" json:"discount"`
	Total         decimal.Decimal    `gorm:"type:numeric(12,2);not null;default:0" json:"total"`
	Profit        decimal.Decimal    `gorm:"type:numeric(12,2);not null;default:0" json:"profit"`
	CustomerName  *string            `gorm:"size:255" json:"customer_name,omitempty"`
	CustomerPhone *string            `gorm:"size:50" json:"customer_phone,omitempty"`
	PaymentMethod enum.PaymentMethod `gorm:"size:20;not null;index" json:"payment_method"`
	ItemCount     int                `gorm:"default:0" json:"item_count"`
	Voided        bool               `gorm:"default:false;index" json:"voided"`
	VoidedAt      *time.Time         `json:"voided_at,omitempty"`
	VoidReason    *string            `gorm:"type:text" json:"void_reason,omitempty"`
	Note          *string            `gorm:"type:text" json:"note,omitempty"`
	CreatedAt     time.Time          `gorm:"index" json:"created_at"`
	UpdatedAt     time.Time          `json:"updated_at"`
	DeletedAt     gorm.DeletedAt     `gorm:"index" json:"-"`

	// Relationships
	Items []TransactionItem `gorm:"foreignKey:TransactionID" json:"items,omitempty"`
}

// BeforeCreate generates a UUID before creating a new transaction
func (t *Transaction) BeforeCreate(tx *gorm.DB) error {
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	return nil
}

// TableName returns the table name for the Transaction model
func (Transaction) TableName() string {
	return "transactions"
}

// Customer returns the counterparty name and phone, empty when absent.
func (t *Transaction) Customer() (name, phone string) {
	return deref(t.CustomerName), deref(t.CustomerPhone)
}

// TransactionItem is one line of a transaction
type TransactionItem struct {
	ID            uuid.UUID       `gorm:"type:uuid;primary_key" json:"id"`
	TransactionID uuid.UUID       `gorm:"type:uuid;not null;index" json:"transaction_id"`
	Position      int             `gorm:"not null;default:0" json:"position"`
	ProductID     uuid.UUID       `gorm:"type:uuid;not null;index" json:"product_id"`
	Quantity      int             `gorm:"not null;check:quantity >= 1" json:"quantity"`
	UnitPrice     decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"unit_price"`
	Discount      decimal.Decimal `gorm:"type:numeric(12,2);not null;default:0" json:"discount"`
	LineTotal     decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"line_total"`
	Tax           decimal.Decimal `gorm:"type:numeric(12,2);not null;default:0" json:"tax"`
	CostBasis     decimal.Decimal `gorm:"type:numeric(12,2);not null;default:0" json:"cost_basis"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
	DeletedAt     gorm.DeletedAt  `gorm:"index" json:"-"`

	// Relationships
	Product *Product `gorm:"foreignKey:ProductID" json:"product,omitempty"`
}

// BeforeCreate generates a UUID before creating a new transaction item
func (i *TransactionItem) BeforeCreate(tx *gorm.DB) error {
	if i.ID == uuid.Nil {
		i.ID = uuid.New()
	}
	return nil
}

// TableName returns the table name for the TransactionItem model
func (TransactionItem) TableName() string {
	return "transaction_items"
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
