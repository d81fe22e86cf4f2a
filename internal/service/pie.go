package service

import (
	"errors"
	"fmt"

	"github.com/Diegod96/IBKR-Frontend-Refresh/internal/models"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// maxTotalAllocation caps the sum of target allocations over a user's
// active pies.
var maxTotalAllocation = decimal.NewFromInt(100)

// PieService manages a user's pies and guards the 100% allocation cap.
type PieService struct {
	DB *gorm.DB
}

func NewPieService(db *gorm.DB) *PieService {
	return &PieService{DB: db}
}

// CreatePieInput holds the fields for a new pie.
type CreatePieInput struct {
	Name             string
	Description      string
	Color            string
	Icon             string
	TargetAllocation decimal.Decimal
}

// PiePatch lists the optional fields of a partial update. Nil means
// "leave unchanged".
type PiePatch struct {
	Name             *string
	Description      *string
	Color            *string
	Icon             *string
	TargetAllocation *decimal.Decimal
	IsActive         *bool
}

// List returns the user's pies ordered by display order, each with its
// active slices preloaded. Inactive pies are included only on request.
func (s *PieService) List(userID uint, includeInactive bool) ([]models.Pie, error) {
	q := s.DB.Where("user_id = ?", userID)
	if !includeInactive {
		q = q.Where("is_active = ?", true)
	}
	var pies []models.Pie
	if err := q.
		Preload("Slices", "is_active = ?", true).
		Order("display_order ASC, created_at ASC").
		Find(&pies).Error; err != nil {
		return nil, fmt.Errorf("list pies: %w", err)
	}
	return pies, nil
}

// Get returns the pie if it exists and belongs to the user.
func (s *PieService) Get(pieID string, userID uint) (*models.Pie, error) {
	var pie models.Pie
	err := s.DB.
		Preload("Slices", "is_active = ?", true).
		Where("id = ? AND user_id = ?", pieID, userID).
		First(&pie).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, notFoundf("pie not found")
		}
		return nil, fmt.Errorf("get pie: %w", err)
	}
	return &pie, nil
}

// TotalAllocation sums target allocations over the user's active pies.
// Summed in Go: SQLite aggregates over decimal-typed text columns are
// not reliable.
func (s *PieService) TotalAllocation(userID uint) (decimal.Decimal, error) {
	var pies []models.Pie
	if err := s.DB.
		Select("target_allocation").
		Where("user_id = ? AND is_active = ?", userID, true).
		Find(&pies).Error; err != nil {
		return decimal.Zero, fmt.Errorf("total allocation: %w", err)
	}
	total := decimal.Zero
	for i := range pies {
		total = total.Add(pies[i].TargetAllocation)
	}
	return total, nil
}

// Create adds a new pie appended after the user's current display order.
// Fails with ValidationError when the user's active total would exceed
// 100%. The check-then-write runs inside one transaction; no row lock is
// taken, so concurrent creates for the same user rely on SQLite's writer
// serialization.
func (s *PieService) Create(userID uint, in CreatePieInput) (*models.Pie, error) {
	var pie models.Pie
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		total, err := (&PieService{DB: tx}).TotalAllocation(userID)
		if err != nil {
			return err
		}
		if total.Add(in.TargetAllocation).GreaterThan(maxTotalAllocation) {
			return invalidf("total allocation would exceed 100%%: current %s%%, requested %s%%",
				total.StringFixed(2), in.TargetAllocation.StringFixed(2))
		}

		maxOrder, err := nextDisplayOrder(tx.Model(&models.Pie{}).Where("user_id = ?", userID))
		if err != nil {
			return err
		}

		pie = models.Pie{
			UserID:           userID,
			Name:             in.Name,
			Description:      in.Description,
			Color:            in.Color,
			Icon:             in.Icon,
			TargetAllocation: in.TargetAllocation,
			DisplayOrder:     maxOrder,
			IsActive:         true,
		}
		if err := tx.Create(&pie).Error; err != nil {
			return fmt.Errorf("create pie: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &pie, nil
}

// Update applies a partial update. When the patch changes the target
// allocation, the user's total is recomputed with the pie's current
// allocation swapped for the new one and rejected above 100%.
func (s *PieService) Update(pieID string, userID uint, patch PiePatch) (*models.Pie, error) {
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		txSvc := &PieService{DB: tx}

		var pie models.Pie
		if err := tx.Where("id = ? AND user_id = ?", pieID, userID).First(&pie).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return notFoundf("pie not found")
			}
			return fmt.Errorf("get pie: %w", err)
		}

		updates := map[string]interface{}{}
		if patch.Name != nil {
			updates["name"] = *patch.Name
		}
		if patch.Description != nil {
			updates["description"] = *patch.Description
		}
		if patch.Color != nil {
			updates["color"] = *patch.Color
		}
		if patch.Icon != nil {
			updates["icon"] = *patch.Icon
		}
		if patch.IsActive != nil {
			updates["is_active"] = *patch.IsActive
		}
		if patch.TargetAllocation != nil {
			total, err := txSvc.TotalAllocation(userID)
			if err != nil {
				return err
			}
			// an inactive pie does not contribute to the current total
			if pie.IsActive {
				total = total.Sub(pie.TargetAllocation)
			}
			newTotal := total.Add(*patch.TargetAllocation)
			if newTotal.GreaterThan(maxTotalAllocation) {
				return invalidf("total allocation would exceed 100%%: new total would be %s%%",
					newTotal.StringFixed(2))
			}
			updates["target_allocation"] = *patch.TargetAllocation
		}

		if len(updates) == 0 {
			return nil
		}
		if err := tx.Model(&pie).Updates(updates).Error; err != nil {
			return fmt.Errorf("update pie: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return s.Get(pieID, userID)
}

// Delete hard-deletes the pie and all its slices. Returns false when no
// owned pie matched (idempotent).
func (s *PieService) Delete(pieID string, userID uint) (bool, error) {
	deleted := false
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		res := tx.Where("id = ? AND user_id = ?", pieID, userID).Delete(&models.Pie{})
		if res.Error != nil {
			return fmt.Errorf("delete pie: %w", res.Error)
		}
		if res.RowsAffected == 0 {
			return nil
		}
		if err := tx.Where("pie_id = ?", pieID).Delete(&models.Slice{}).Error; err != nil {
			return fmt.Errorf("delete slices: %w", err)
		}
		deleted = true
		return nil
	})
	return deleted, err
}

// Reorder assigns display_order = index for each id in the given order.
// Ids not owned by the user are skipped without error; the caller always
// supplies its full set (drag-and-drop semantics).
func (s *PieService) Reorder(userID uint, ids []string) error {
	return s.DB.Transaction(func(tx *gorm.DB) error {
		for i, id := range ids {
			if err := tx.Model(&models.Pie{}).
				Where("id = ? AND user_id = ?", id, userID).
				Update("display_order", i).Error; err != nil {
				return fmt.Errorf("reorder pies: %w", err)
			}
		}
		return nil
	})
}

// SetAllocation writes a pie's target allocation without the per-pie cap
// check. Used by the rebalance engine, which validates the whole batch
// total before applying; re-checking per pie would reject valid
// allocation swaps mid-batch.
func (s *PieService) SetAllocation(pieID string, userID uint, allocation decimal.Decimal) error {
	res := s.DB.Model(&models.Pie{}).
		Where("id = ? AND user_id = ?", pieID, userID).
		Update("target_allocation", allocation)
	if res.Error != nil {
		return fmt.Errorf("set allocation: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return notFoundf("pie not found")
	}
	return nil
}

// nextDisplayOrder returns max(display_order)+1 over the scoped query,
// starting at 0 for an empty scope.
func nextDisplayOrder(q *gorm.DB) (int, error) {
	var max *int
	if err := q.Select("MAX(display_order)").Scan(&max).Error; err != nil {
		return 0, fmt.Errorf("max display order: %w", err)
	}
	if max == nil {
		return 0, nil
	}
	return *max + 1, nil
}
