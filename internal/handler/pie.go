package handler

import (
	"net/http"

	"github.com/Diegod96/IBKR-Frontend-Refresh/internal/service"
	"github.com/Diegod96/IBKR-Frontend-Refresh/internal/util"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

// PieHandler serves pie CRUD and reordering.
type PieHandler struct {
	Pies *service.PieService
}

func NewPieHandler(pies *service.PieService) *PieHandler {
	return &PieHandler{Pies: pies}
}

type createPieReq struct {
	Name             string          `json:"name" binding:"required,max=100"`
	Description      string          `json:"description" binding:"max=500"`
	Color            string          `json:"color" binding:"max=16"`
	Icon             string          `json:"icon" binding:"max=32"`
	TargetAllocation decimal.Decimal `json:"target_allocation"`
}

type updatePieReq struct {
	Name             *string          `json:"name" binding:"omitempty,max=100"`
	Description      *string          `json:"description" binding:"omitempty,max=500"`
	Color            *string          `json:"color" binding:"omitempty,max=16"`
	Icon             *string          `json:"icon" binding:"omitempty,max=32"`
	TargetAllocation *decimal.Decimal `json:"target_allocation"`
	IsActive         *bool            `json:"is_active"`
}

type reorderReq struct {
	IDs []string `json:"ids" binding:"required"`
}

// ListPies returns the user's pies plus the running allocation total.
func (h *PieHandler) ListPies(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}

	includeInactive := c.Query("include_inactive") == "true"

	pies, err := h.Pies.List(user.ID, includeInactive)
	if err != nil {
		serviceError(c, err)
		return
	}
	total, err := h.Pies.TotalAllocation(user.ID)
	if err != nil {
		serviceError(c, err)
		return
	}

	util.Success(c, util.Response{
		"pies":             pies,
		"total_allocation": total,
	})
}

func (h *PieHandler) GetPie(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}

	pie, err := h.Pies.Get(c.Param("pie_id"), user.ID)
	if err != nil {
		serviceError(c, err)
		return
	}

	util.Success(c, util.Response{"pie": pie})
}

func (h *PieHandler) CreatePie(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}

	var req createPieReq
	if err := c.ShouldBindJSON(&req); err != nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "invalid request")
		return
	}
	if err := util.ValidatePercent("target_allocation", req.TargetAllocation); err != nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, err.Error())
		return
	}
	if err := util.ValidateColor(req.Color); err != nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, err.Error())
		return
	}

	pie, err := h.Pies.Create(user.ID, service.CreatePieInput{
		Name:             req.Name,
		Description:      req.Description,
		Color:            req.Color,
		Icon:             req.Icon,
		TargetAllocation: req.TargetAllocation,
	})
	if err != nil {
		serviceError(c, err)
		return
	}

	util.Success(c, util.Response{"pie": pie})
}

func (h *PieHandler) UpdatePie(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}

	var req updatePieReq
	if err := c.ShouldBindJSON(&req); err != nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "invalid request")
		return
	}
	if req.TargetAllocation != nil {
		if err := util.ValidatePercent("target_allocation", *req.TargetAllocation); err != nil {
			util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, err.Error())
			return
		}
	}
	if req.Color != nil {
		if err := util.ValidateColor(*req.Color); err != nil {
			util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, err.Error())
			return
		}
	}

	pie, err := h.Pies.Update(c.Param("pie_id"), user.ID, service.PiePatch{
		Name:             req.Name,
		Description:      req.Description,
		Color:            req.Color,
		Icon:             req.Icon,
		TargetAllocation: req.TargetAllocation,
		IsActive:         req.IsActive,
	})
	if err != nil {
		serviceError(c, err)
		return
	}

	util.Success(c, util.Response{"pie": pie})
}

func (h *PieHandler) DeletePie(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}

	deleted, err := h.Pies.Delete(c.Param("pie_id"), user.ID)
	if err != nil {
		serviceError(c, err)
		return
	}
	if !deleted {
		util.Error(c, http.StatusNotFound, util.CodeNotFound, "pie not found")
		return
	}

	util.Success(c, util.Response{"message": "pie deleted"})
}

func (h *PieHandler) ReorderPies(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}

	var req reorderReq
	if err := c.ShouldBindJSON(&req); err != nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "invalid request")
		return
	}

	if err := h.Pies.Reorder(user.ID, req.IDs); err != nil {
		serviceError(c, err)
		return
	}

	util.Success(c, util.Response{"message": "pies reordered"})
}
