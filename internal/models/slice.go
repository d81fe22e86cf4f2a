package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Slice is a single ticker holding inside a pie. A symbol may appear at
// most once per pie (enforced both pre-flight and by the unique index).
type Slice struct {
	ID           string          `gorm:"primaryKey;size:36" json:"id"`
	PieID        string          `gorm:"index;not null;size:36;uniqueIndex:uq_slice_pie_symbol" json:"pie_id"`
	Symbol       string          `gorm:"size:20;not null;uniqueIndex:uq_slice_pie_symbol" json:"symbol"`
	Name         string          `gorm:"size:100" json:"name"`
	TargetWeight decimal.Decimal `gorm:"type:decimal(5,2);not null" json:"target_weight"`
	DisplayOrder int             `gorm:"default:0" json:"display_order"`
	Notes        string          `gorm:"type:text" json:"notes"`
	IsActive     bool            `gorm:"default:true" json:"is_active"`
	CreatedAt    time.Time       `json:"created_at"`
	UpdatedAt    time.Time       `json:"updated_at"`
}

func (s *Slice) BeforeCreate(tx *gorm.DB) error {
	if s.ID == "" {
		s.ID = uuid.NewString()
	}
	return nil
}
