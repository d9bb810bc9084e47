package entity

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// StoreProfile holds the business identity printed at the top of receipts
type StoreProfile struct {
	ID        uuid.UUID `gorm:"type:uuid;primary_key" json:"id"`
	Name      string    `gorm:"size:255;not null" json:"name"`
	Address   string    `gorm:"size:255" json:"address"`
	City      string    `gorm:"size:100" json:"city"`
	State     string    `gorm:"size:100" json:"state"`
	Zip       string    `gorm:"size:20" json:"zip"`
	Phone     string    `gorm:"size:50" json:"phone"`
	Email     string    `gorm:"size:255" json:"email"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// BeforeCreate generates a UUID before creating a new profile
func (s *StoreProfile) BeforeCreate(tx *gorm.DB) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	return nil
}

// TableName returns the table name for the StoreProfile model
func (StoreProfile) TableName() string {
	return "store_profiles"
}

// AddressLines returns the street line and the "City, State Zip" line,
// skipping whatever is blank.
func (s *StoreProfile) AddressLines() []string {
	var lines []string
	if v := strings.TrimSpace(s.Address); v != "" {
		lines = append(lines, v)
	}

	locality := strings.TrimSpace(s.City)
	region := strings.TrimSpace(strings.TrimSpace(s.State) + " " + strings.TrimSpace(s.Zip))
	switch {
	case locality != "" && region != "":
		lines = append(lines, locality+", "+region)
	case locality != "":
		lines = append(lines, locality)
	case region != "":
		lines = append(lines, region)
	}
	return lines
}

// ContactLines returns phone and email, skipping blanks.
func (s *StoreProfile) ContactLines() []string {
	var lines []string
	if v := strings.TrimSpace(s.Phone); v != "" {
		lines = append(lines, v)
	}
	if v := strings.TrimSpace(s.Email); v != "" {
		lines = append(lines, v)
	}
	return lines
}
