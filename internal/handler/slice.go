package handler

import (
	"net/http"
	"strings"

	"github.com/Diegod96/IBKR-Frontend-Refresh/internal/service"
	"github.com/Diegod96/IBKR-Frontend-Refresh/internal/util"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

// SliceHandler serves slice CRUD and reordering inside a pie.
type SliceHandler struct {
	Slices *service.SliceService
}

func NewSliceHandler(slices *service.SliceService) *SliceHandler {
	return &SliceHandler{Slices: slices}
}

type createSliceReq struct {
	Symbol       string          `json:"symbol" binding:"required,max=20"`
	Name         string          `json:"name" binding:"max=100"`
	Notes        string          `json:"notes" binding:"max=1000"`
	TargetWeight decimal.Decimal `json:"target_weight"`
}

type updateSliceReq struct {
	Symbol       *string          `json:"symbol" binding:"omitempty,max=20"`
	Name         *string          `json:"name" binding:"omitempty,max=100"`
	Notes        *string          `json:"notes" binding:"omitempty,max=1000"`
	TargetWeight *decimal.Decimal `json:"target_weight"`
	IsActive     *bool            `json:"is_active"`
}

func (h *SliceHandler) ListSlices(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}

	includeInactive := c.Query("include_inactive") == "true"

	slices, err := h.Slices.List(c.Param("pie_id"), user.ID, includeInactive)
	if err != nil {
		serviceError(c, err)
		return
	}

	util.Success(c, util.Response{"slices": slices})
}

func (h *SliceHandler) GetSlice(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}

	sl, err := h.Slices.Get(c.Param("slice_id"), c.Param("pie_id"), user.ID)
	if err != nil {
		serviceError(c, err)
		return
	}

	util.Success(c, util.Response{"slice": sl})
}

func (h *SliceHandler) CreateSlice(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}

	var req createSliceReq
	if err := c.ShouldBindJSON(&req); err != nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "invalid request")
		return
	}
	symbol := strings.ToUpper(strings.TrimSpace(req.Symbol))
	if err := util.ValidateSymbol(symbol); err != nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, err.Error())
		return
	}
	if err := util.ValidatePercent("target_weight", req.TargetWeight); err != nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, err.Error())
		return
	}

	sl, err := h.Slices.Create(c.Param("pie_id"), user.ID, service.CreateSliceInput{
		Symbol:       symbol,
		Name:         req.Name,
		Notes:        req.Notes,
		TargetWeight: req.TargetWeight,
	})
	if err != nil {
		serviceError(c, err)
		return
	}

	util.Success(c, util.Response{"slice": sl})
}

func (h *SliceHandler) UpdateSlice(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}

	var req updateSliceReq
	if err := c.ShouldBindJSON(&req); err != nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "invalid request")
		return
	}
	if req.Symbol != nil {
		symbol := strings.ToUpper(strings.TrimSpace(*req.Symbol))
		if err := util.ValidateSymbol(symbol); err != nil {
			util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, err.Error())
			return
		}
		req.Symbol = &symbol
	}
	if req.TargetWeight != nil {
		if err := util.ValidatePercent("target_weight", *req.TargetWeight); err != nil {
			util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, err.Error())
			return
		}
	}

	// the slice must belong to the pie in the path
	if _, err := h.Slices.Get(c.Param("slice_id"), c.Param("pie_id"), user.ID); err != nil {
		serviceError(c, err)
		return
	}

	sl, err := h.Slices.Update(c.Param("slice_id"), user.ID, service.SlicePatch{
		Symbol:       req.Symbol,
		Name:         req.Name,
		Notes:        req.Notes,
		TargetWeight: req.TargetWeight,
		IsActive:     req.IsActive,
	})
	if err != nil {
		serviceError(c, err)
		return
	}

	util.Success(c, util.Response{"slice": sl})
}

func (h *SliceHandler) DeleteSlice(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}

	// the slice must belong to the pie in the path
	if _, err := h.Slices.Get(c.Param("slice_id"), c.Param("pie_id"), user.ID); err != nil {
		serviceError(c, err)
		return
	}

	deleted, err := h.Slices.Delete(c.Param("slice_id"), user.ID)
	if err != nil {
		serviceError(c, err)
		return
	}
	if !deleted {
		util.Error(c, http.StatusNotFound, util.CodeNotFound, "slice not found")
		return
	}

	util.Success(c, util.Response{"message": "slice deleted"})
}

func (h *SliceHandler) ReorderSlices(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}

	var req reorderReq
	if err := c.ShouldBindJSON(&req); err != nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "invalid request")
		return
	}

	if err := h.Slices.Reorder(c.Param("pie_id"), user.ID, req.IDs); err != nil {
		serviceError(c, err)
		return
	}

	util.Success(c, util.Response{"message": "slices reordered"})
}
