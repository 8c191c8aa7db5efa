package models

import (
	"encoding/json"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

const (
	BoardingDraft           = "DRAFT"
	BoardingPendingApproval = "PENDING_APPROVAL"
	BoardingActive          = "ACTIVE"
	BoardingRejected        = "REJECTED"
	BoardingInactive        = "INACTIVE"
)

type Boarding struct {
	gorm.Model
	OwnerID          uint            `json:"ownerID" gorm:"index"`
	Title            string          `json:"title"`
	Slug             string          `json:"slug" gorm:"uniqueIndex"`
	Description      string          `json:"description"`
	City             string          `json:"city" gorm:"index"`
	District         string          `json:"district" gorm:"index"`
	Address          string          `json:"address"`
	BoardingType     string          `json:"boardingType"` // single_room, shared_room, annex, hostel
	GenderPref       string          `json:"genderPref"`   // any, male, female
	MonthlyRent      decimal.Decimal `json:"monthlyRent" gorm:"type:decimal(12,2)"`
	IsFurnished      bool            `json:"isFurnished"`
	HasWifi          bool            `json:"hasWifi"`
	NearUniversity   string          `json:"nearUniversity"`
	Latitude         float64         `json:"latitude"`
	Longitude        float64         `json:"longitude"`
	MaxOccupants     int             `json:"maxOccupants"`
	CurrentOccupants int             `json:"currentOccupants"`
	Images           string          `json:"images"` // JSON array of URLs
	Rules            string          `json:"rules"`  // JSON array of house rules
	Status           string          `json:"status" gorm:"type:varchar(20);default:DRAFT;index"`
	RejectionReason  string          `json:"rejectionReason"`
	IsDeleted        bool            `json:"isDeleted" gorm:"default:false;index"`

	Owner        User          `json:"owner,omitempty" gorm:"foreignKey:OwnerID;references:ID"`
	Reservations []Reservation `json:"reservations,omitempty"`
	Reviews      []Review      `json:"reviews,omitempty"`
}

// Custom JSON marshaling to convert the Images and Rules strings to arrays
func (b *Boarding) MarshalJSON() ([]byte, error) {
	type Alias Boarding
	aux := &struct {
		Images []string `json:"images"`
		Rules  []string `json:"rules"`
		Owner  *User    `json:"owner,omitempty"`
		*Alias
	}{
		Images: []string{},
		Rules:  []string{},
		Alias:  (*Alias)(b),
	}

	if b.Images != "" {
		var images []string
		if err := json.Unmarshal([]byte(b.Images), &images); err == nil {
			aux.Images = images
		}
	}
	if b.Rules != "" {
		var rules []string
		if err := json.Unmarshal([]byte(b.Rules), &rules); err == nil {
			aux.Rules = rules
		}
	}

	// Only include the owner when loaded, without their listings to avoid a
	// circular reference.
	if b.Owner.ID > 0 {
		ownerCopy := b.Owner
		ownerCopy.Boardings = nil
		aux.Owner = &ownerCopy
	}

	return json.Marshal(aux)
}
