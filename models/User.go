package models

import (
	"gorm.io/gorm"
)

const (
	RoleStudent = "STUDENT"
	RoleOwner   = "OWNER"
	RoleAdmin   = "ADMIN"
)

type User struct {
	gorm.Model
	FirstName       string     `json:"firstName"`
	LastName        string     `json:"lastName"`
	Email           string     `json:"email" gorm:"uniqueIndex"`
	Password        string     `json:"-"`
	Phone           string     `json:"phone"`
	University      string     `json:"university"`
	NICNumber       string     `json:"nicNumber"`
	ProfileImageURL string     `json:"profileImageURL"`
	Role            string     `json:"role" gorm:"type:varchar(20);default:STUDENT;index"` // STUDENT, OWNER, ADMIN
	IsActive        *bool      `json:"isActive" gorm:"default:true"`
	Boardings       []Boarding `json:"boardings,omitempty" gorm:"foreignKey:OwnerID;references:ID"`
}
