package models

import (
	"strings"
	"time"
	"unicode"

	"github.com/shopspring/decimal"
)

// Expense is a single recorded spending event. Rows are never updated; a
// deletion removes the row together with the receipt file it owns.
type Expense struct {
	Base
	Amount          decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"amount"`
	Category        string          `gorm:"not null;index" json:"category"`
	Description     string          `json:"description"`
	Date            time.Time       `gorm:"not null;index" json:"date"`
	ReceiptFilename *string         `json:"receipt"`
}

// HasReceipt reports whether the expense references a stored receipt file.
func (e *Expense) HasReceipt() bool {
	return e.ReceiptFilename != nil && *e.ReceiptFilename != ""
}

// Field limits for user-supplied expense and budget text.
const (
	MaxCategoryLength    = 100
	MaxDescriptionLength = 500
)

// MaxAmount is the largest amount a decimal(12,2) column holds.
var MaxAmount = decimal.RequireFromString("9999999999.99")

// ValidAmount reports whether d, already rounded to cents, is positive and
// fits the amount columns.
func ValidAmount(d decimal.Decimal) bool {
	return d.IsPositive() && d.LessThanOrEqual(MaxAmount)
}

// ValidCategory reports whether s, once trimmed, is usable as a category
// label: non-empty, at most MaxCategoryLength bytes, no control characters.
func ValidCategory(s string) bool {
	s = strings.TrimSpace(s)
	if s == "" || len(s) > MaxCategoryLength {
		return false
	}
	for _, r := range s {
		if unicode.IsControl(r) {
			return false
		}
	}
	return true
}
