package models

import (
	"gorm.io/gorm"
)

type SavedBoarding struct {
	gorm.Model
	StudentID  uint `json:"studentID" gorm:"index:idx_saved_student_boarding,unique"`
	BoardingID uint `json:"boardingID" gorm:"index:idx_saved_student_boarding,unique"`

	Boarding Boarding `json:"boarding,omitempty"`
}
