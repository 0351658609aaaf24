package models

// Budget represents a spending limit for one category in one calendar month.
// The "total" category holds the overall monthly budget.
type Budget struct {
	Base
	UserID         uint     `gorm:"not null;uniqueIndex:idx_budgets_user_category_period" json:"user_id"`
	Category       Category `gorm:"not null;uniqueIndex:idx_budgets_user_category_period" json:"category"`
	Limit          float64  `gorm:"not null" json:"limit"`
	Month          int      `gorm:"not null;uniqueIndex:idx_budgets_user_category_period" json:"month"`
	Year           int      `gorm:"not null;uniqueIndex:idx_budgets_user_category_period" json:"year"`
	AlertThreshold int      `gorm:"default:80" json:"alert_threshold"`
	Notes          string   `gorm:"size:200" json:"notes,omitempty"`
}
