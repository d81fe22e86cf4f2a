package handler

import (
	"encoding/csv"
	"fmt"
	"net/http"

	"github.com/Diegod96/IBKR-Frontend-Refresh/internal/models"
	"github.com/Diegod96/IBKR-Frontend-Refresh/internal/util"

	"github.com/gin-gonic/gin"
	"github.com/xuri/excelize/v2"
	"gorm.io/gorm"
)

// ExportHandler dumps a user's pies and slices as CSV or XLSX.
type ExportHandler struct {
	DB *gorm.DB
}

func NewExportHandler(db *gorm.DB) *ExportHandler {
	return &ExportHandler{DB: db}
}

// loadPies fetches all of the user's pies (inactive included) with all
// their slices, in display order.
func (h *ExportHandler) loadPies(userID uint) ([]models.Pie, error) {
	var pies []models.Pie
	err := h.DB.Where("user_id = ?", userID).
		Preload("Slices", func(db *gorm.DB) *gorm.DB {
			return db.Order("display_order ASC")
		}).
		Order("display_order ASC").
		Find(&pies).Error
	return pies, err
}

// ExportCSV streams one row per slice (pies without slices get a single
// row with empty slice columns).
func (h *ExportHandler) ExportCSV(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}

	pies, err := h.loadPies(user.ID)
	if err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "failed to load pies")
		return
	}

	c.Header("Content-Type", "text/csv; charset=utf-8")
	c.Header("Content-Disposition", `attachment; filename="pies.csv"`)

	w := csv.NewWriter(c.Writer)
	_ = w.Write([]string{
		"pie_id", "pie_name", "target_allocation", "pie_active",
		"symbol", "slice_name", "target_weight", "notes", "slice_active",
	})

	for i := range pies {
		pie := &pies[i]
		pieCols := []string{
			pie.ID, pie.Name, pie.TargetAllocation.StringFixed(2),
			fmt.Sprintf("%t", pie.IsActive),
		}
		if len(pie.Slices) == 0 {
			_ = w.Write(append(pieCols, "", "", "", "", ""))
			continue
		}
		for j := range pie.Slices {
			sl := &pie.Slices[j]
			_ = w.Write(append(pieCols,
				sl.Symbol, sl.Name, sl.TargetWeight.StringFixed(2),
				sl.Notes, fmt.Sprintf("%t", sl.IsActive),
			))
		}
	}
	w.Flush()
}

// ExportXLSX writes a workbook with a Pies sheet and a Slices sheet.
func (h *ExportHandler) ExportXLSX(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}

	pies, err := h.loadPies(user.ID)
	if err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "failed to load pies")
		return
	}

	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	_ = f.SetSheetName("Sheet1", "Pies")
	if _, err := f.NewSheet("Slices"); err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "failed to build workbook")
		return
	}

	_ = f.SetSheetRow("Pies", "A1", &[]interface{}{
		"ID", "Name", "Description", "Target Allocation", "Display Order", "Active",
	})
	_ = f.SetSheetRow("Slices", "A1", &[]interface{}{
		"ID", "Pie", "Symbol", "Name", "Target Weight", "Display Order", "Notes", "Active",
	})

	pieRow, sliceRow := 2, 2
	for i := range pies {
		pie := &pies[i]
		_ = f.SetSheetRow("Pies", fmt.Sprintf("A%d", pieRow), &[]interface{}{
			pie.ID, pie.Name, pie.Description,
			pie.TargetAllocation.StringFixed(2), pie.DisplayOrder, pie.IsActive,
		})
		pieRow++

		for j := range pie.Slices {
			sl := &pie.Slices[j]
			_ = f.SetSheetRow("Slices", fmt.Sprintf("A%d", sliceRow), &[]interface{}{
				sl.ID, pie.Name, sl.Symbol, sl.Name,
				sl.TargetWeight.StringFixed(2), sl.DisplayOrder, sl.Notes, sl.IsActive,
			})
			sliceRow++
		}
	}

	c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	c.Header("Content-Disposition", `attachment; filename="pies.xlsx"`)

	if err := f.Write(c.Writer); err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "failed to write workbook")
		return
	}
}
