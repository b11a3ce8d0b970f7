package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// TransactionStatusSucceeded marks transactions that count toward revenue.
const TransactionStatusSucceeded = "succeeded"

// Transaction is one payment transaction synced from the payment processor.
type Transaction struct {
	ID             uuid.UUID `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	OrganizationID string    `json:"organization_id" gorm:"not null;index"`
	ProviderID     string    `json:"provider_id"`
	ExternalID     string    `json:"external_id" gorm:"uniqueIndex"`

	// int64 cents to avoid floating point drift at rest
	AmountCents int64  `json:"amount_cents"`
	Currency    string `json:"currency" gorm:"default:'AUD'"`

	Status          string    `json:"status" gorm:"not null;index"`
	TransactionDate time.Time `json:"transaction_date" gorm:"not null;index"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Amount returns the transaction value in major currency units.
func (t *Transaction) Amount() float64 {
	return float64(t.AmountCents) / 100.0
}

func (t *Transaction) TableName() string { return "transactions" }

func (t *Transaction) BeforeCreate(tx *gorm.DB) error {
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	return nil
}
