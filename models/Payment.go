package models

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

const (
	PaymentPending   = "PENDING"
	PaymentConfirmed = "CONFIRMED"
	PaymentRejected  = "REJECTED"
)

type Payment struct {
	gorm.Model
	RentalPeriodID  uint            `json:"rentalPeriodID" gorm:"index"`
	ReservationID   uint            `json:"reservationID" gorm:"index"`
	StudentID       uint            `json:"studentID" gorm:"index"`
	Amount          decimal.Decimal `json:"amount" gorm:"type:decimal(12,2)"`
	PaymentMethod   string          `json:"paymentMethod"` // bank_transfer, cash, online
	ReferenceNumber string          `json:"referenceNumber"`
	ProofImageURL   string          `json:"proofImageURL"`
	Status          string          `json:"status" gorm:"type:varchar(20);default:PENDING;index"`
	PaidAt          time.Time       `json:"paidAt"`
	ConfirmedAt     *time.Time      `json:"confirmedAt"`
	RejectionReason string          `json:"rejectionReason"`
}
