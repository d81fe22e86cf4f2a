package handler

import (
	"net/http"

	"github.com/Diegod96/IBKR-Frontend-Refresh/internal/service"
	"github.com/Diegod96/IBKR-Frontend-Refresh/internal/util"

	"github.com/gin-gonic/gin"
)

// RebalanceHandler serves drift analysis and rebalance execution.
type RebalanceHandler struct {
	Rebalance *service.RebalanceService
}

func NewRebalanceHandler(rebalance *service.RebalanceService) *RebalanceHandler {
	return &RebalanceHandler{Rebalance: rebalance}
}

type executeRebalanceReq struct {
	Actions []service.RebalanceAction `json:"actions" binding:"required"`
}

// GetAnalysis returns current-vs-target drift for all pies and slices.
func (h *RebalanceHandler) GetAnalysis(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}

	analysis, err := h.Rebalance.Analyze(c.Param("portfolio_id"), user.ID)
	if err != nil {
		serviceError(c, err)
		return
	}

	util.Success(c, util.Response{"analysis": analysis})
}

// ExecuteRebalance applies a validated batch of allocation changes.
func (h *RebalanceHandler) ExecuteRebalance(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}

	var req executeRebalanceReq
	if err := c.ShouldBindJSON(&req); err != nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "invalid request")
		return
	}

	result, err := h.Rebalance.Execute(c.Param("portfolio_id"), user.ID, req.Actions)
	if err != nil {
		serviceError(c, err)
		return
	}

	util.Success(c, util.Response{"result": result})
}

// AutoRebalance checks ownership and recommends manual review.
func (h *RebalanceHandler) AutoRebalance(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}

	result, err := h.Rebalance.AutoRebalance(c.Param("portfolio_id"), user.ID)
	if err != nil {
		serviceError(c, err)
		return
	}

	util.Success(c, util.Response{"result": result})
}
