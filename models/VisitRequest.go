package models

import (
	"time"

	"gorm.io/gorm"
)

const (
	VisitPending   = "PENDING"
	VisitApproved  = "APPROVED"
	VisitRejected  = "REJECTED"
	VisitCancelled = "CANCELLED"
	VisitExpired   = "EXPIRED"
)

type VisitRequest struct {
	gorm.Model
	StudentID        uint      `json:"studentID" gorm:"index"`
	BoardingID       uint      `json:"boardingID" gorm:"index"`
	Status           string    `json:"status" gorm:"type:varchar(20);default:PENDING;index"`
	RequestedStartAt time.Time `json:"requestedStartAt"`
	RequestedEndAt   time.Time `json:"requestedEndAt"`
	Message          string    `json:"message"`
	RejectionReason  string    `json:"rejectionReason"`
	ExpiresAt        time.Time `json:"expiresAt"`

	Student  User     `json:"student,omitempty" gorm:"foreignKey:StudentID;references:ID"`
	Boarding Boarding `json:"boarding,omitempty"`
}
