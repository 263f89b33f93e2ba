package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Goal is a savings target. The table is migrated but no endpoint reads or
// writes it yet.
type Goal struct {
	Base
	TargetAmount  decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"target_amount"`
	CurrentAmount decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0" json:"current_amount"`
	Deadline      *time.Time      `json:"deadline,omitempty"`
	Description   string          `json:"description"`
}
