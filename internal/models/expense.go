package models

import "time"

// PaymentMethod represents how an expense was paid.
type PaymentMethod string

const (
	PaymentMethodCash   PaymentMethod = "cash"
	PaymentMethodCredit PaymentMethod = "credit"
	PaymentMethodDebit  PaymentMethod = "debit"
	PaymentMethodUPI    PaymentMethod = "upi"
	PaymentMethodOther  PaymentMethod = "other"
)

// Expense represents a single spending transaction.
type Expense struct {
	Base
	UserID        uint          `gorm:"not null;index:idx_expenses_user_date;index:idx_expenses_user_category" json:"user_id"`
	Amount        float64       `gorm:"not null" json:"amount"`
	Category      Category      `gorm:"not null;index:idx_expenses_user_category" json:"category"`
	Description   string        `gorm:"size:200;not null" json:"description"`
	Date          time.Time     `gorm:"not null;index:idx_expenses_user_date" json:"date"`
	PaymentMethod PaymentMethod `gorm:"default:cash" json:"payment_method"`
	Notes         string        `gorm:"size:500" json:"notes,omitempty"`
	IsRecurring   bool          `gorm:"default:false" json:"is_recurring"`
}
