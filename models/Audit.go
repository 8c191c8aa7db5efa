package models

import (
	"time"
)

// AuditLog is one admin mutation on a moderated resource: account
// activation toggles and listing approval decisions. Actions are dotted
// resource.verb strings ("user.deactivate", "boarding.approve") and the
// before/after snapshots hold only the fields the action changed.
type AuditLog struct {
	ID           uint      `json:"id" gorm:"primaryKey"`
	AdminUserID  uint      `json:"adminUserID" gorm:"index;not null"`
	Action       string    `json:"action" gorm:"size:64;index"`
	ResourceType string    `json:"resourceType" gorm:"size:32;index"` // user, boarding
	ResourceID   uint      `json:"resourceID" gorm:"index"`
	BeforeJSON   string    `json:"beforeJSON" gorm:"type:text"`
	AfterJSON    string    `json:"afterJSON" gorm:"type:text"`
	IPAddress    string    `json:"ipAddress" gorm:"size:64"`
	CreatedAt    time.Time `json:"createdAt"`

	Admin User `json:"admin,omitempty" gorm:"foreignKey:AdminUserID;references:ID"`
}
