package models

import (
	"gorm.io/gorm"
)

// Review is written by the student of a COMPLETED reservation, one per
// reservation.
type Review struct {
	gorm.Model
	ReservationID uint   `json:"reservationID" gorm:"uniqueIndex"`
	StudentID     uint   `json:"studentID" gorm:"index"`
	BoardingID    uint   `json:"boardingID" gorm:"index"`
	Rating        int    `json:"rating"` // 1-5
	Comment       string `json:"comment"`

	Student User `json:"student,omitempty" gorm:"foreignKey:StudentID;references:ID"`
}
