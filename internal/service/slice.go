package service

import (
	"errors"
	"fmt"
	"strings"

	"github.com/Diegod96/IBKR-Frontend-Refresh/internal/models"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// SliceService manages the slices inside a pie. Every operation verifies
// that the enclosing pie belongs to the requesting user.
type SliceService struct {
	DB *gorm.DB
}

func NewSliceService(db *gorm.DB) *SliceService {
	return &SliceService{DB: db}
}

// CreateSliceInput holds the fields for a new slice.
type CreateSliceInput struct {
	Symbol       string
	Name         string
	Notes        string
	TargetWeight decimal.Decimal
}

// SlicePatch lists the optional fields of a partial update. Nil means
// "leave unchanged".
type SlicePatch struct {
	Symbol       *string
	Name         *string
	Notes        *string
	TargetWeight *decimal.Decimal
	IsActive     *bool
}

// ownedPie loads the pie and checks ownership; a missing or foreign pie
// is NotFound.
func ownedPie(tx *gorm.DB, pieID string, userID uint) (*models.Pie, error) {
	var pie models.Pie
	err := tx.Where("id = ? AND user_id = ?", pieID, userID).First(&pie).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, notFoundf("pie not found")
		}
		return nil, fmt.Errorf("get pie: %w", err)
	}
	return &pie, nil
}

// List returns the pie's slices ordered by display order. Inactive
// slices are included only on request.
func (s *SliceService) List(pieID string, userID uint, includeInactive bool) ([]models.Slice, error) {
	if _, err := ownedPie(s.DB, pieID, userID); err != nil {
		return nil, err
	}
	q := s.DB.Where("pie_id = ?", pieID)
	if !includeInactive {
		q = q.Where("is_active = ?", true)
	}
	var slices []models.Slice
	if err := q.Order("display_order ASC, created_at ASC").Find(&slices).Error; err != nil {
		return nil, fmt.Errorf("list slices: %w", err)
	}
	return slices, nil
}

// Get returns the slice if it exists and its pie belongs to the user.
// When pieID is non-empty the slice must also belong to that pie.
func (s *SliceService) Get(sliceID, pieID string, userID uint) (*models.Slice, error) {
	var sl models.Slice
	if err := s.DB.Where("id = ?", sliceID).First(&sl).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, notFoundf("slice not found")
		}
		return nil, fmt.Errorf("get slice: %w", err)
	}
	if _, err := ownedPie(s.DB, sl.PieID, userID); err != nil {
		return nil, notFoundf("slice not found")
	}
	if pieID != "" && sl.PieID != pieID {
		return nil, notFoundf("slice not found")
	}
	return &sl, nil
}

// Create adds a slice to the pie, appended after the pie's current
// display order. A symbol already held by an active slice of the same
// pie is rejected before storage with a ValidationError.
func (s *SliceService) Create(pieID string, userID uint, in CreateSliceInput) (*models.Slice, error) {
	symbol := strings.ToUpper(strings.TrimSpace(in.Symbol))
	var sl models.Slice
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		if _, err := ownedPie(tx, pieID, userID); err != nil {
			return err
		}
		if err := checkDuplicateSymbol(tx, pieID, symbol, ""); err != nil {
			return err
		}
		maxOrder, err := nextDisplayOrder(tx.Model(&models.Slice{}).Where("pie_id = ?", pieID))
		if err != nil {
			return err
		}
		sl = models.Slice{
			PieID:        pieID,
			Symbol:       symbol,
			Name:         in.Name,
			Notes:        in.Notes,
			TargetWeight: in.TargetWeight,
			DisplayOrder: maxOrder,
			IsActive:     true,
		}
		if err := tx.Create(&sl).Error; err != nil {
			return fmt.Errorf("create slice: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &sl, nil
}

// Update applies a partial update, re-running the duplicate-symbol check
// when the symbol changes.
func (s *SliceService) Update(sliceID string, userID uint, patch SlicePatch) (*models.Slice, error) {
	var out models.Slice
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		sl, err := (&SliceService{DB: tx}).Get(sliceID, "", userID)
		if err != nil {
			return err
		}

		updates := map[string]interface{}{}
		if patch.Symbol != nil {
			symbol := strings.ToUpper(strings.TrimSpace(*patch.Symbol))
			if symbol != sl.Symbol {
				if err := checkDuplicateSymbol(tx, sl.PieID, symbol, sl.ID); err != nil {
					return err
				}
			}
			updates["symbol"] = symbol
		}
		if patch.Name != nil {
			updates["name"] = *patch.Name
		}
		if patch.Notes != nil {
			updates["notes"] = *patch.Notes
		}
		if patch.TargetWeight != nil {
			updates["target_weight"] = *patch.TargetWeight
		}
		if patch.IsActive != nil {
			updates["is_active"] = *patch.IsActive
		}

		if len(updates) > 0 {
			if err := tx.Model(sl).Updates(updates).Error; err != nil {
				return fmt.Errorf("update slice: %w", err)
			}
		}
		if err := tx.Where("id = ?", sliceID).First(&out).Error; err != nil {
			return fmt.Errorf("reload slice: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// Delete hard-deletes the slice. Returns false when no owned slice
// matched (idempotent).
func (s *SliceService) Delete(sliceID string, userID uint) (bool, error) {
	_, err := s.Get(sliceID, "", userID)
	if err != nil {
		if IsNotFound(err) {
			return false, nil
		}
		return false, err
	}
	res := s.DB.Where("id = ?", sliceID).Delete(&models.Slice{})
	if res.Error != nil {
		return false, fmt.Errorf("delete slice: %w", res.Error)
	}
	return res.RowsAffected > 0, nil
}

// Reorder assigns display_order = index for each id within the pie. The
// whole operation targets one pie, so a missing or foreign pie is an
// error rather than a silent skip.
func (s *SliceService) Reorder(pieID string, userID uint, ids []string) error {
	return s.DB.Transaction(func(tx *gorm.DB) error {
		if _, err := ownedPie(tx, pieID, userID); err != nil {
			return err
		}
		for i, id := range ids {
			if err := tx.Model(&models.Slice{}).
				Where("id = ? AND pie_id = ?", id, pieID).
				Update("display_order", i).Error; err != nil {
				return fmt.Errorf("reorder slices: %w", err)
			}
		}
		return nil
	})
}

// checkDuplicateSymbol rejects a symbol already held by another active
// slice of the pie, before the unique index can turn it into a storage
// error.
func checkDuplicateSymbol(tx *gorm.DB, pieID, symbol, excludeID string) error {
	q := tx.Model(&models.Slice{}).
		Where("pie_id = ? AND symbol = ? AND is_active = ?", pieID, symbol, true)
	if excludeID != "" {
		q = q.Where("id <> ?", excludeID)
	}
	var count int64
	if err := q.Count(&count).Error; err != nil {
		return fmt.Errorf("check symbol: %w", err)
	}
	if count > 0 {
		return invalidf("symbol %s already exists in this pie", symbol)
	}
	return nil
}
