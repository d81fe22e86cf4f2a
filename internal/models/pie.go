package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Pie is a weighted investment bucket owned by a single user.
// TargetAllocation is a percentage of the user's whole portfolio; the sum
// over a user's active pies must stay at or below 100.
type Pie struct {
	ID               string          `gorm:"primaryKey;size:36" json:"id"`
	UserID           uint            `gorm:"index;not null" json:"user_id"`
	Name             string          `gorm:"size:100;not null" json:"name"`
	Description      string          `gorm:"size:500" json:"description"`
	Color            string          `gorm:"size:16" json:"color"`
	Icon             string          `gorm:"size:32" json:"icon"`
	TargetAllocation decimal.Decimal `gorm:"type:decimal(5,2);not null" json:"target_allocation"`
	DisplayOrder     int             `gorm:"default:0" json:"display_order"`
	IsActive         bool            `gorm:"default:true" json:"is_active"`
	CreatedAt        time.Time       `json:"created_at"`
	UpdatedAt        time.Time       `json:"updated_at"`

	// Deleting a pie deletes its slices.
	Slices []Slice `gorm:"constraint:OnDelete:CASCADE" json:"slices,omitempty"`
}

func (p *Pie) BeforeCreate(tx *gorm.DB) error {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	return nil
}
