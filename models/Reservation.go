package models

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const (
	ReservationPending   = "PENDING"
	ReservationActive    = "ACTIVE"
	ReservationRejected  = "REJECTED"
	ReservationCancelled = "CANCELLED"
	ReservationExpired   = "EXPIRED"
	ReservationCompleted = "COMPLETED"
)

// Reservation is a student's claim on a boarding. RentSnapshot and
// BoardingSnapshot are frozen at creation time so later edits to the listing
// don't change historical records.
type Reservation struct {
	gorm.Model
	StudentID        uint            `json:"studentID" gorm:"index"`
	BoardingID       uint            `json:"boardingID" gorm:"index"`
	Status           string          `json:"status" gorm:"type:varchar(20);default:PENDING;index"`
	MoveInDate       time.Time       `json:"moveInDate"`
	SpecialRequests  string          `json:"specialRequests"`
	RentSnapshot     decimal.Decimal `json:"rentSnapshot" gorm:"type:decimal(12,2)"`
	BoardingSnapshot datatypes.JSON  `json:"boardingSnapshot"`
	RejectionReason  string          `json:"rejectionReason"`
	ExpiresAt        time.Time       `json:"expiresAt"`

	Student       User           `json:"student,omitempty" gorm:"foreignKey:StudentID;references:ID"`
	Boarding      Boarding       `json:"boarding,omitempty"`
	RentalPeriods []RentalPeriod `json:"rentalPeriods,omitempty"`
}
