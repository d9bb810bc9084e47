package repository

import (
	domainRepo "github.com/sangkips/salesdesk-api/internal/domain/repository"
	"github.com/sangkips/salesdesk-api/internal/domain/enum"
	"gorm.io/gorm"
)

// CreatedWithin returns a GORM scope restricting created_at to the range.
// Open bounds add no condition.
func CreatedWithin(r domainRepo.TimeRange) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		if r.From != nil {
			db = db.Where("created_at >= ?", *r.From)
		}
		if r.To != nil {
			db = db.Where("created_at < ?", *r.To)
		}
		return db
	}
}

// PaidWith returns a GORM scope filtering by payment method; nil matches all
func PaidWith(method *enum.PaymentMethod) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		if method == nil {
			return db
		}
		return db.Where("payment_method = ?", *method)
	}
}

// NotVoided excludes voided transactions
func NotVoided(db *gorm.DB) *gorm.DB {
	return db.Where("voided = ?", false)
}
