package models

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

const (
	PeriodDue           = "DUE"
	PeriodPartiallyPaid = "PARTIALLY_PAID"
	PeriodPaid          = "PAID"
	PeriodOverdue       = "OVERDUE"
)

// RentalPeriod is one month's billing obligation on an active reservation.
// Status is derived from the confirmed payments against it, never set by a
// client directly.
type RentalPeriod struct {
	gorm.Model
	ReservationID uint            `json:"reservationID" gorm:"index"`
	PeriodLabel   string          `json:"periodLabel" gorm:"size:7"` // YYYY-MM
	DueDate       time.Time       `json:"dueDate"`
	AmountDue     decimal.Decimal `json:"amountDue" gorm:"type:decimal(12,2)"`
	Status        string          `json:"status" gorm:"type:varchar(20);default:DUE;index"`

	Payments []Payment `json:"payments,omitempty"`
}
