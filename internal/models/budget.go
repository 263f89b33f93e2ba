package models

import "github.com/shopspring/decimal"

// MonthKeyLayout is the time layout of Budget.Month ("2006-01").
const MonthKeyLayout = "2006-01"

// Budget is the spending allowance for one category in one calendar month.
// (category, month) is unique; setting it again overwrites Amount.
type Budget struct {
	Base
	Category string          `gorm:"not null;uniqueIndex:idx_budgets_category_month" json:"category"`
	Amount   decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"amount"`
	Month    string          `gorm:"not null;size:7;uniqueIndex:idx_budgets_category_month" json:"month"`
}
