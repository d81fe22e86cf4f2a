package handler

import (
	"errors"
	"net/http"

	"github.com/Diegod96/IBKR-Frontend-Refresh/internal/models"
	"github.com/Diegod96/IBKR-Frontend-Refresh/internal/util"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// PortfolioHandler serves the portfolio containers the rebalance engine
// resolves against.
type PortfolioHandler struct {
	DB *gorm.DB
}

func NewPortfolioHandler(db *gorm.DB) *PortfolioHandler {
	return &PortfolioHandler{DB: db}
}

type createPortfolioReq struct {
	Name      string `json:"name" binding:"required,max=100"`
	IsDefault bool   `json:"is_default"`
}

func (h *PortfolioHandler) CreatePortfolio(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}

	var req createPortfolioReq
	if err := c.ShouldBindJSON(&req); err != nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "invalid request")
		return
	}

	p := models.Portfolio{
		UserID:    user.ID,
		Name:      req.Name,
		IsDefault: req.IsDefault,
	}
	if err := h.DB.Create(&p).Error; err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "failed to create portfolio")
		return
	}

	util.Success(c, util.Response{"portfolio": p})
}

func (h *PortfolioHandler) ListPortfolios(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}

	var portfolios []models.Portfolio
	if err := h.DB.Where("user_id = ?", user.ID).
		Order("created_at ASC").
		Find(&portfolios).Error; err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "failed to list portfolios")
		return
	}

	util.Success(c, util.Response{"portfolios": portfolios})
}

func (h *PortfolioHandler) GetPortfolio(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}

	var p models.Portfolio
	if err := h.DB.Where("id = ? AND user_id = ?", c.Param("portfolio_id"), user.ID).
		First(&p).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			util.Error(c, http.StatusNotFound, util.CodeNotFound, "portfolio not found")
		} else {
			util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "failed to load portfolio")
		}
		return
	}

	util.Success(c, util.Response{"portfolio": p})
}
